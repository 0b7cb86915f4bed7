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

package assets

import (
	"context"

	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
)

// Plugin is the interface implemented by each assets plugin. A plugin provides both of the
// collaborators that a mint needs.
type Plugin interface {
	Issuer
	MetadataRecorder

	// Name returns the plugin name, as used in the assets.type configuration
	Name() string

	// InitPrefix initializes the set of configuration options that are valid, with defaults. Called on all plugins.
	InitPrefix(prefix config.Prefix)

	// Init initializes the plugin, with configuration
	Init(ctx context.Context, prefix config.Prefix) error
}

// Issuer creates unique assets
type Issuer interface {
	// CreateUniqueAsset creates a new asset with a total supply of exactly one unit, held by owner.
	// The creatorBump is opaque to the caller, and is only meaningful to the plugin.
	CreateUniqueAsset(ctx context.Context, owner string, creatorBump uint8) (*fftypes.AssetRef, error)
}

// MetadataRecorder durably attaches descriptive data to an issued asset
type MetadataRecorder interface {
	// AttachMetadata stores the record against the asset. Once it returns successfully no further
	// units of the asset can ever be issued.
	AttachMetadata(ctx context.Context, asset *fftypes.AssetRef, record *fftypes.DescriptiveRecord) error
}
