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

package buffer

import (
	"context"
	"sort"
	"sync"

	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/pkg/database"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
)

// memDB is a minimal in-memory store with the same compare-and-swap semantics as the real plugins
type memDB struct {
	mux    sync.Mutex
	states map[string]*fftypes.BufferState
	mints  map[string][]*fftypes.MintRecord
	// beforeCommit runs inside the commit, before the version check, to simulate a foreign writer
	beforeCommit func(stored *fftypes.BufferState)
	commits      int
}

func newMemDB() *memDB {
	return &memDB{
		states: make(map[string]*fftypes.BufferState),
		mints:  make(map[string][]*fftypes.MintRecord),
	}
}

func (m *memDB) Name() string { return "memory" }
func (m *memDB) InitPrefix(prefix config.Prefix) {}
func (m *memDB) Init(ctx context.Context, prefix config.Prefix) error { return nil }
func (m *memDB) Capabilities() *database.Capabilities { return &database.Capabilities{} }
func (m *memDB) Close() {}

func (m *memDB) InsertBufferState(ctx context.Context, state *fftypes.BufferState) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	if _, exists := m.states[state.Name]; exists {
		return database.DuplicateKey
	}
	m.states[state.Name] = state.Copy()
	return nil
}

func (m *memDB) GetBufferState(ctx context.Context, name string) (*fftypes.BufferState, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	if s, exists := m.states[name]; exists {
		return s.Copy(), nil
	}
	return nil, nil
}

func (m *memDB) GetBufferStates(ctx context.Context, skip, limit uint64) ([]*fftypes.BufferState, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	states := make([]*fftypes.BufferState, 0, len(m.states))
	for _, s := range m.states {
		states = append(states, s.Copy())
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Name < states[j].Name })
	return page(states, skip, limit), nil
}

func (m *memDB) CommitBufferState(ctx context.Context, state *fftypes.BufferState, expectedVersion int64, mint *fftypes.MintRecord) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.commits++
	stored := m.states[state.Name]
	if m.beforeCommit != nil {
		m.beforeCommit(stored)
	}
	if stored.Version != expectedVersion {
		return database.VersionConflict
	}
	state.Version = expectedVersion + 1
	m.states[state.Name] = state.Copy()
	if mint != nil {
		m.mints[state.Name] = append(m.mints[state.Name], mint)
	}
	return nil
}

func (m *memDB) GetMintRecords(ctx context.Context, buffer string, skip, limit uint64) ([]*fftypes.MintRecord, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	records := m.mints[buffer]
	newestFirst := make([]*fftypes.MintRecord, len(records))
	for i, r := range records {
		newestFirst[len(records)-1-i] = r
	}
	return page(newestFirst, skip, limit), nil
}

func page[T any](items []T, skip, limit uint64) []T {
	if skip >= uint64(len(items)) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < uint64(len(items)) {
		items = items[:limit]
	}
	return items
}
