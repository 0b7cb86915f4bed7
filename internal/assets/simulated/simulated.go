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

package simulated

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/akamensky/base58"
	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/internal/log"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
)

const (
	// SimulatedConfFailOn lists the operations that always fail: "issue" and/or "metadata"
	SimulatedConfFailOn = "failOn"
	// SimulatedConfLatency is added to every operation
	SimulatedConfLatency = "latency"

	OpIssue    = "issue"
	OpMetadata = "metadata"
)

// Asset is the ledger entry for an issued asset
type Asset struct {
	Ref      fftypes.AssetRef
	Supply   uint64
	Metadata *fftypes.DescriptiveRecord
}

// Simulated keeps an in-memory ledger of unique assets. Each asset has a supply of one,
// and accepts a descriptive record exactly once.
type Simulated struct {
	mux     sync.Mutex
	latency time.Duration
	failOn  map[string]bool
	assets  map[string]*Asset
}

func (s *Simulated) Name() string {
	return "simulated"
}

func (s *Simulated) InitPrefix(prefix config.Prefix) {
	prefix.AddKnownKey(SimulatedConfFailOn, []string{})
	prefix.AddKnownKey(SimulatedConfLatency, "0")
}

func (s *Simulated) Init(ctx context.Context, prefix config.Prefix) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.assets = make(map[string]*Asset)
	s.failOn = make(map[string]bool)
	for _, op := range prefix.GetStringSlice(SimulatedConfFailOn) {
		s.failOn[op] = true
	}
	s.latency = prefix.GetDuration(SimulatedConfLatency)
	log.L(ctx).Infof("Simulated assets plugin initialized (failOn=%v latency=%s)", prefix.GetStringSlice(SimulatedConfFailOn), s.latency)
	return nil
}

// SetFailure switches failure injection on or off for an operation
func (s *Simulated) SetFailure(op string, fail bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.failOn[op] = fail
}

// GetAsset returns a copy of the ledger entry, or nil
func (s *Simulated) GetAsset(id string) *Asset {
	s.mux.Lock()
	defer s.mux.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return nil
	}
	c := *a
	return &c
}

func (s *Simulated) Assets() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return len(s.assets)
}

func (s *Simulated) delay(ctx context.Context) error {
	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-ctx.Done():
			return i18n.WrapError(ctx, ctx.Err(), i18n.MsgContextCanceled)
		}
	}
	return nil
}

func newAssetID() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base58.Encode(b)
}

func (s *Simulated) CreateUniqueAsset(ctx context.Context, owner string, creatorBump uint8) (*fftypes.AssetRef, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.failOn[OpIssue] {
		return nil, i18n.NewError(ctx, i18n.MsgSimulatedAssetFailure, OpIssue)
	}
	id := newAssetID()
	ref := fftypes.AssetRef{
		ID:           id,
		Owner:        owner,
		TokenAccount: newAssetID(),
		Transaction:  fftypes.NewUUID().String(),
	}
	s.assets[id] = &Asset{Ref: ref, Supply: 1}
	log.L(ctx).Debugf("Issued simulated asset %s to %s (creator bump %d)", id, owner, creatorBump)
	r := ref
	return &r, nil
}

func (s *Simulated) AttachMetadata(ctx context.Context, asset *fftypes.AssetRef, record *fftypes.DescriptiveRecord) error {
	if err := s.delay(ctx); err != nil {
		return err
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.failOn[OpMetadata] {
		return i18n.NewError(ctx, i18n.MsgSimulatedAssetFailure, OpMetadata)
	}
	a, ok := s.assets[asset.ID]
	if !ok {
		return i18n.NewError(ctx, i18n.MsgAssetNotFound, asset.ID)
	}
	if a.Metadata != nil {
		return i18n.NewError(ctx, i18n.MsgAssetMetadataExists, asset.ID)
	}
	record.Transaction = fftypes.NewUUID().String()
	rc := *record
	a.Metadata = &rc
	return nil
}
