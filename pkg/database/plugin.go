// Copyright © 2021 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"context"

	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
)

var (
	// VersionConflict sentinel error
	VersionConflict = i18n.NewError(context.Background(), i18n.MsgDBVersionConflict)
	// DuplicateKey sentinel error
	DuplicateKey = i18n.NewError(context.Background(), i18n.MsgDBDuplicateKey)
)

// Plugin is the interface implemented by each plugin
type Plugin interface {
	PersistenceInterface // Split out to aid pluggability the next level down (SQL provider etc.)

	// Name returns the plugin name, as used in the database.type configuration
	Name() string

	// InitPrefix initializes the set of configuration options that are valid, with defaults. Called on all plugins.
	InitPrefix(prefix config.Prefix)

	// Init initializes the plugin, with configuration
	Init(ctx context.Context, prefix config.Prefix) error

	// Capabilities returns capabilities - not called until after Init
	Capabilities() *Capabilities

	// Close releases any connections
	Close()
}

type iBufferStateCollection interface {
	// InsertBufferState - Insert a new buffer state. Returns DuplicateKey if the name is in use
	InsertBufferState(ctx context.Context, state *fftypes.BufferState) (err error)

	// GetBufferState - Get a buffer state by name. Returns nil if not found
	GetBufferState(ctx context.Context, name string) (state *fftypes.BufferState, err error)

	// GetBufferStates - List buffer states, sorted by name
	GetBufferStates(ctx context.Context, skip, limit uint64) (states []*fftypes.BufferState, err error)

	// CommitBufferState - Replace the stored buffer state, only if the stored version is still expectedVersion.
	//                     On success state.Version is set to expectedVersion+1, and the optional mint record
	//                     is stored in the same atomic write. Returns VersionConflict if the stored record moved on.
	CommitBufferState(ctx context.Context, state *fftypes.BufferState, expectedVersion int64, mint *fftypes.MintRecord) (err error)
}

type iMintRecordCollection interface {
	// GetMintRecords - List the mint records of a buffer, newest first
	GetMintRecords(ctx context.Context, buffer string, skip, limit uint64) (records []*fftypes.MintRecord, err error)
}

// PersistenceInterface are the operations that must be implemented by a database interfavce plugin.
type PersistenceInterface interface {
	iBufferStateCollection
	iMintRecordCollection
}

// Capabilities defines the capabilities a plugin can report as implementing or not
type Capabilities struct {
	// SharedStorage is true when other processes can reach the same records, so version conflicts are possible
	SharedStorage bool
}
