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
	"errors"
	"sync"
	"time"

	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/events"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/internal/log"
	"github.com/kaleido-io/mintbuffer/internal/metrics"
	"github.com/kaleido-io/mintbuffer/internal/retry"
	"github.com/kaleido-io/mintbuffer/pkg/assets"
	"github.com/kaleido-io/mintbuffer/pkg/database"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
	"github.com/karlseguin/ccache"
)

const (
	// RoyaltyBasisPoints is applied to every minted asset, whatever the descriptor carries
	RoyaltyBasisPoints uint16 = 500
	// CreatorShare is the share of the single verified creator
	CreatorShare uint8 = 100
)

// Manager runs the three buffer operations, plus the queries over buffers and their mints
type Manager interface {
	Initialize(ctx context.Context, input *fftypes.BufferInput) (*fftypes.BufferState, error)
	AddToBuffer(ctx context.Context, name string, input *fftypes.DescriptorInput) (*fftypes.BufferState, error)
	MintNFT(ctx context.Context, name string, input *fftypes.MintInput) (*fftypes.MintRecord, error)

	GetBufferState(ctx context.Context, name string) (*fftypes.BufferState, error)
	GetBuffers(ctx context.Context, skip, limit uint64) ([]*fftypes.BufferState, error)
	GetMintRecords(ctx context.Context, name string, skip, limit uint64) ([]*fftypes.MintRecord, error)
}

type bufferManager struct {
	database       database.Plugin
	assets         assets.Plugin
	publisher      events.Publisher
	metrics        metrics.Manager
	retry          *retry.Retry
	strictIdentity bool
	stateCache     *ccache.Cache
	stateCacheTTL  time.Duration
	lockMux        sync.Mutex
	locks          map[string]*sync.Mutex
}

func NewBufferManager(ctx context.Context, di database.Plugin, ai assets.Plugin, pub events.Publisher, mm metrics.Manager) (Manager, error) {
	if di == nil || ai == nil || pub == nil || mm == nil {
		return nil, i18n.NewError(ctx, i18n.MsgInitializationNilDepError, "BufferManager")
	}
	bm := &bufferManager{
		database:       di,
		assets:         ai,
		publisher:      pub,
		metrics:        mm,
		retry:          retry.NewFromConfig(),
		strictIdentity: config.GetBool(config.BufferIdentityStrict),
		stateCacheTTL:  config.GetDuration(config.BufferCacheTTL),
		locks:          make(map[string]*sync.Mutex),
	}
	bm.stateCache = ccache.New(
		ccache.Configure().MaxSize(config.GetInt64(config.BufferCacheSize)),
	)
	return bm, nil
}

// lock serializes the operations on one buffer within this process
func (bm *bufferManager) lock(name string) func() {
	bm.lockMux.Lock()
	l, ok := bm.locks[name]
	if !ok {
		l = &sync.Mutex{}
		bm.locks[name] = l
	}
	bm.lockMux.Unlock()
	l.Lock()
	return l.Unlock
}

func (bm *bufferManager) cacheState(state *fftypes.BufferState) {
	bm.stateCache.Set(state.Name, state.Copy(), bm.stateCacheTTL)
}

func (bm *bufferManager) Initialize(ctx context.Context, input *fftypes.BufferInput) (*fftypes.BufferState, error) {
	if err := fftypes.ValidateFFNameField(ctx, input.Name, "name"); err != nil {
		return nil, &kindError{kind: InvalidInput, error: err}
	}
	if err := fftypes.ValidateIdentity(ctx, input.Authority, "authority", bm.strictIdentity); err != nil {
		return nil, &kindError{kind: InvalidInput, error: err}
	}
	if err := fftypes.ValidateIdentity(ctx, input.CollectionMint, "collectionMint", bm.strictIdentity); err != nil {
		return nil, &kindError{kind: InvalidInput, error: err}
	}
	if input.BufferSize == 0 {
		return nil, newError(ctx, InvalidInput, i18n.MsgInvalidBufferSize, input.BufferSize)
	}
	if input.MinBufferThreshold > input.BufferSize {
		return nil, newError(ctx, InvalidInput, i18n.MsgInvalidThreshold, input.MinBufferThreshold, input.BufferSize)
	}

	now := fftypes.Now()
	state := &fftypes.BufferState{
		Name:               input.Name,
		Authority:          input.Authority,
		BufferSize:         input.BufferSize,
		MinBufferThreshold: input.MinBufferThreshold,
		CollectionMint:     input.CollectionMint,
		PendingNFTs:        fftypes.PendingQueue{},
		MintedCount:        0,
		Version:            1,
		Created:            now,
		Updated:            now,
	}
	if err := bm.database.InsertBufferState(ctx, state); err != nil {
		if errors.Is(err, database.DuplicateKey) {
			return nil, newError(ctx, BufferExists, i18n.MsgBufferExists, input.Name)
		}
		return nil, err
	}
	bm.cacheState(state)
	log.L(ctx).Infof("Initialized buffer '%s' size=%d threshold=%d authority=%s", state.Name, state.BufferSize, state.MinBufferThreshold, state.Authority)
	return state, nil
}

// loadState always reads through to the database, as the result is about to be mutated
func (bm *bufferManager) loadState(ctx context.Context, name string) (*fftypes.BufferState, error) {
	state, err := bm.database.GetBufferState(ctx, name)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, newError(ctx, BufferNotFound, i18n.MsgBufferNotFound, name)
	}
	return state, nil
}

func (bm *bufferManager) AddToBuffer(ctx context.Context, name string, input *fftypes.DescriptorInput) (*fftypes.BufferState, error) {
	ctx = log.WithLogField(ctx, "buffer", name)
	if _, err := bm.GetBufferState(ctx, name); err != nil {
		return nil, err
	}
	unlock := bm.lock(name)
	defer unlock()

	var result *fftypes.BufferState
	err := bm.retry.Do(ctx, "add to buffer", func(attempt int) (bool, error) {
		state, err := bm.loadState(ctx, name)
		if err != nil {
			return false, err
		}
		if input.Caller != state.Authority {
			bm.metrics.DescriptorRejected(name, "unauthorized")
			return false, newError(ctx, UnauthorizedAccess, i18n.MsgUnauthorizedAccess)
		}
		if state.Remaining() >= state.BufferSize {
			bm.metrics.DescriptorRejected(name, "full")
			return false, newError(ctx, BufferFull, i18n.MsgBufferFull)
		}

		staged := state.Copy()
		staged.PendingNFTs = append(staged.PendingNFTs, &fftypes.PendingDescriptor{
			URI:                  input.MetadataURI,
			Name:                 input.Name,
			Symbol:               input.Symbol,
			SellerFeeBasisPoints: input.SellerFeeBasisPoints,
			Minted:               false,
		})
		staged.Updated = fftypes.Now()
		err = bm.database.CommitBufferState(ctx, staged, state.Version, nil)
		if errors.Is(err, database.VersionConflict) {
			log.L(ctx).Warnf("Buffer '%s' changed underneath version %d (attempt %d)", name, state.Version, attempt)
			return true, newError(ctx, BufferStateConflict, i18n.MsgBufferStateConflict, name, state.Version)
		}
		if err != nil {
			return false, err
		}
		result = staged
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	bm.cacheState(result)
	bm.metrics.DescriptorAdded(result)
	log.L(ctx).Infof("Added '%s' to buffer '%s' (%d/%d)", input.Name, name, result.Remaining(), result.BufferSize)
	return result, nil
}

func (bm *bufferManager) MintNFT(ctx context.Context, name string, input *fftypes.MintInput) (*fftypes.MintRecord, error) {
	ctx = log.WithLogField(ctx, "buffer", name)
	started := time.Now()
	if _, err := bm.GetBufferState(ctx, name); err != nil {
		return nil, err
	}
	unlock := bm.lock(name)
	defer unlock()

	state, err := bm.loadState(ctx, name)
	if err != nil {
		return nil, err
	}
	if state.Remaining() == 0 {
		bm.metrics.MintRejected(name, "empty")
		return nil, newError(ctx, EmptyBuffer, i18n.MsgEmptyBuffer)
	}
	if err := fftypes.ValidateIdentity(ctx, input.Caller, "caller", bm.strictIdentity); err != nil {
		return nil, &kindError{kind: InvalidInput, error: err}
	}

	// Stage the pop on a copy. Until the commit below succeeds, the stored state is untouched
	// and an error return is the rollback.
	staged := state.Copy()
	head := staged.PendingNFTs[0]
	staged.PendingNFTs = staged.PendingNFTs[1:]
	if head.Minted {
		bm.metrics.MintRejected(name, "invalid_metadata")
		return nil, newError(ctx, InvalidMetadata, i18n.MsgInvalidMetadata)
	}

	asset, err := bm.assets.CreateUniqueAsset(ctx, input.Caller, input.CreatorBump)
	if err != nil {
		bm.metrics.MintRejected(name, "issue_failed")
		return nil, wrapError(ctx, MintFailed, err, i18n.MsgMintFailed)
	}
	log.L(ctx).Debugf("Issued asset %s to %s for descriptor '%s'", asset.ID, input.Caller, head.Name)

	if head.SellerFeeBasisPoints != RoyaltyBasisPoints {
		log.L(ctx).Debugf("Descriptor '%s' carries %d basis points, applying %d", head.Name, head.SellerFeeBasisPoints, RoyaltyBasisPoints)
	}
	record := &fftypes.DescriptiveRecord{
		Name:   input.MetadataTitle,
		Symbol: input.MetadataSymbol,
		URI:    input.MetadataURI,
		Creators: []*fftypes.Creator{
			{Identity: input.Caller, Verified: true, Share: CreatorShare},
		},
		SellerFeeBasisPoints: RoyaltyBasisPoints,
		Collection: &fftypes.CollectionRef{
			ID:       state.CollectionMint,
			Verified: false,
		},
	}
	if err := bm.assets.AttachMetadata(ctx, asset, record); err != nil {
		bm.metrics.MintRejected(name, "metadata_failed")
		log.L(ctx).Errorf("Asset %s was issued, but its descriptive record could not be attached: %s", asset.ID, err)
		return nil, wrapError(ctx, MintFailed, err, i18n.MsgMintFailed)
	}

	staged.MintedCount++
	staged.Updated = fftypes.Now()
	mint := &fftypes.MintRecord{
		ID:         fftypes.NewUUID(),
		Buffer:     name,
		Sequence:   staged.MintedCount,
		Owner:      input.Caller,
		Asset:      asset,
		Descriptor: head,
		Metadata:   record,
		Created:    staged.Updated,
	}
	err = bm.database.CommitBufferState(ctx, staged, state.Version, mint)
	if err != nil {
		log.L(ctx).Errorf("Asset %s was issued, but buffer '%s' could not be updated: %s", asset.ID, name, err)
		bm.metrics.MintRejected(name, "commit_failed")
		if errors.Is(err, database.VersionConflict) {
			return nil, wrapError(ctx, BufferStateConflict, err, i18n.MsgMintNotCommitted, asset.ID, name)
		}
		return nil, err
	}

	bm.cacheState(staged)
	bm.metrics.MintConfirmed(staged, started)
	log.L(ctx).Infof("Minted asset %s from buffer '%s' (sequence=%d remaining=%d)", asset.ID, name, mint.Sequence, staged.Remaining())

	if staged.Remaining() <= staged.MinBufferThreshold {
		event := fftypes.NewReplenishEvent(name, staged.Remaining(), staged.BufferSize)
		log.L(ctx).Infof("Buffer '%s' is at %d of %d, requesting replenishment", name, event.CurrentBufferSize, event.RequiredSize)
		bm.metrics.ReplenishRaised(event)
		bm.publisher.Publish(event)
	}
	return mint, nil
}

func (bm *bufferManager) GetBufferState(ctx context.Context, name string) (*fftypes.BufferState, error) {
	if cached := bm.stateCache.Get(name); cached != nil && !cached.Expired() {
		return cached.Value().(*fftypes.BufferState).Copy(), nil
	}
	state, err := bm.loadState(ctx, name)
	if err != nil {
		return nil, err
	}
	bm.cacheState(state)
	return state, nil
}

func (bm *bufferManager) GetBuffers(ctx context.Context, skip, limit uint64) ([]*fftypes.BufferState, error) {
	return bm.database.GetBufferStates(ctx, skip, limit)
}

func (bm *bufferManager) GetMintRecords(ctx context.Context, name string, skip, limit uint64) ([]*fftypes.MintRecord, error) {
	if _, err := bm.GetBufferState(ctx, name); err != nil {
		return nil, err
	}
	return bm.database.GetMintRecords(ctx, name, skip, limit)
}
