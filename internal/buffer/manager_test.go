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
	"fmt"
	"sync"
	"testing"

	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/metrics"
	"github.com/kaleido-io/mintbuffer/mocks/assetsmocks"
	"github.com/kaleido-io/mintbuffer/mocks/databasemocks"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const (
	testAuthority  = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	testCollection = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	testConsumer   = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	testStranger   = "11111111111111111111111111111111"
)

type testPublisher struct {
	mux    sync.Mutex
	events []*fftypes.ReplenishEvent
}

func (tp *testPublisher) Publish(event *fftypes.ReplenishEvent) {
	tp.mux.Lock()
	defer tp.mux.Unlock()
	tp.events = append(tp.events, event)
}

func (tp *testPublisher) published() []*fftypes.ReplenishEvent {
	tp.mux.Lock()
	defer tp.mux.Unlock()
	return append([]*fftypes.ReplenishEvent{}, tp.events...)
}

func newTestBufferManager(t *testing.T) (*bufferManager, *memDB, *assetsmocks.Plugin, *testPublisher) {
	config.Reset()
	config.Set(config.MetricsEnabled, false)
	config.Set(config.BufferRetryInitDelay, "1ms")
	config.Set(config.BufferRetryMaxDelay, "1ms")
	ctx := context.Background()
	db := newMemDB()
	ai := &assetsmocks.Plugin{}
	pub := &testPublisher{}
	bm, err := NewBufferManager(ctx, db, ai, pub, metrics.NewMetricsManager(ctx))
	assert.NoError(t, err)
	return bm.(*bufferManager), db, ai, pub
}

func initBuffer(t *testing.T, bm *bufferManager, name string, size, threshold uint64) {
	_, err := bm.Initialize(context.Background(), &fftypes.BufferInput{
		Name:               name,
		Authority:          testAuthority,
		BufferSize:         size,
		MinBufferThreshold: threshold,
		CollectionMint:     testCollection,
	})
	assert.NoError(t, err)
}

func addDescriptor(bm *bufferManager, name, uri string) (*fftypes.BufferState, error) {
	return bm.AddToBuffer(context.Background(), name, &fftypes.DescriptorInput{
		Caller:               testAuthority,
		MetadataURI:          uri,
		Name:                 "name-" + uri,
		Symbol:               "NEWS",
		SellerFeeBasisPoints: 250,
	})
}

func mintInput() *fftypes.MintInput {
	return &fftypes.MintInput{
		Caller:         testConsumer,
		CreatorBump:    254,
		MetadataTitle:  "Reward #1",
		MetadataSymbol: "RWRD",
		MetadataURI:    "https://example.com/reward1.json",
	}
}

func expectMintSuccess(ai *assetsmocks.Plugin) {
	ai.On("CreateUniqueAsset", mock.Anything, testConsumer, uint8(254)).Return(func(ctx context.Context, owner string, bump uint8) *fftypes.AssetRef {
		return &fftypes.AssetRef{ID: fftypes.NewUUID().String(), Owner: owner}
	}, nil)
	ai.On("AttachMetadata", mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

func TestNewBufferManagerMissingDeps(t *testing.T) {
	_, err := NewBufferManager(context.Background(), nil, nil, nil, nil)
	assert.Regexp(t, "FF10139", err)
}

func TestInitializeOK(t *testing.T) {
	bm, db, _, _ := newTestBufferManager(t)
	state, err := bm.Initialize(context.Background(), &fftypes.BufferInput{
		Name:               "buffer1",
		Authority:          testAuthority,
		BufferSize:         3,
		MinBufferThreshold: 1,
		CollectionMint:     testCollection,
	})
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), state.Remaining())
	assert.Equal(t, uint64(0), state.MintedCount)
	assert.NotNil(t, state.Created)

	stored, _ := db.GetBufferState(context.Background(), "buffer1")
	assert.Equal(t, testAuthority, stored.Authority)
	assert.Equal(t, uint64(3), stored.BufferSize)
	assert.Equal(t, uint64(1), stored.MinBufferThreshold)
	assert.Equal(t, testCollection, stored.CollectionMint)
}

func TestInitializeExists(t *testing.T) {
	bm, _, _, _ := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 3, 1)
	_, err := bm.Initialize(context.Background(), &fftypes.BufferInput{
		Name:           "buffer1",
		Authority:      testAuthority,
		BufferSize:     3,
		CollectionMint: testCollection,
	})
	assert.Regexp(t, "FF10206", err)
	assert.True(t, errors.Is(err, BufferExists))
}

func TestInitializeValidation(t *testing.T) {
	bm, _, _, _ := newTestBufferManager(t)
	valid := fftypes.BufferInput{
		Name:               "buffer1",
		Authority:          testAuthority,
		BufferSize:         3,
		MinBufferThreshold: 1,
		CollectionMint:     testCollection,
	}

	tests := []struct {
		name   string
		modify func(in *fftypes.BufferInput)
		regexp string
	}{
		{"zero size", func(in *fftypes.BufferInput) { in.BufferSize = 0 }, "FF10207"},
		{"threshold above size", func(in *fftypes.BufferInput) { in.MinBufferThreshold = 4 }, "FF10208"},
		{"bad name", func(in *fftypes.BufferInput) { in.Name = "-bad-" }, "FF10131"},
		{"uuid name", func(in *fftypes.BufferInput) { in.Name = fftypes.NewUUID().String() }, "FF10132"},
		{"bad authority", func(in *fftypes.BufferInput) { in.Authority = "0xabcd" }, "FF10133.*authority"},
		{"empty collection", func(in *fftypes.BufferInput) { in.CollectionMint = "" }, "FF10133.*collectionMint"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.modify(&in)
			_, err := bm.Initialize(context.Background(), &in)
			assert.Regexp(t, tc.regexp, err)
			assert.True(t, errors.Is(err, InvalidInput))
		})
	}

	// threshold equal to the size is allowed
	valid.MinBufferThreshold = 3
	_, err := bm.Initialize(context.Background(), &valid)
	assert.NoError(t, err)
}

func TestInitializeRelaxedIdentities(t *testing.T) {
	bm, _, _, _ := newTestBufferManager(t)
	bm.strictIdentity = false
	_, err := bm.Initialize(context.Background(), &fftypes.BufferInput{
		Name:           "buffer1",
		Authority:      "producer-app",
		BufferSize:     1,
		CollectionMint: "collection-1",
	})
	assert.NoError(t, err)
}

func TestInitializeInsertFail(t *testing.T) {
	bm, _, _, _ := newTestBufferManager(t)
	mdb := &databasemocks.Plugin{}
	bm.database = mdb
	mdb.On("InsertBufferState", mock.Anything, mock.Anything).Return(fmt.Errorf("pop"))
	_, err := bm.Initialize(context.Background(), &fftypes.BufferInput{
		Name:           "buffer1",
		Authority:      testAuthority,
		BufferSize:     1,
		CollectionMint: testCollection,
	})
	assert.EqualError(t, err, "pop")
	mdb.AssertExpectations(t)
}

func TestEndToEndScenario(t *testing.T) {
	bm, db, ai, pub := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 3, 1)

	_, err := addDescriptor(bm, "buffer1", "uri1")
	assert.NoError(t, err)
	state, err := addDescriptor(bm, "buffer1", "uri2")
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), state.Remaining())

	var order []string
	ai.On("CreateUniqueAsset", mock.Anything, testConsumer, uint8(254)).
		Run(func(args mock.Arguments) { order = append(order, "issue") }).
		Return(&fftypes.AssetRef{ID: "asset1", Owner: testConsumer}, nil)
	ai.On("AttachMetadata", mock.Anything, mock.MatchedBy(func(a *fftypes.AssetRef) bool {
		return a.ID == "asset1"
	}), mock.MatchedBy(func(r *fftypes.DescriptiveRecord) bool {
		return r.Name == "Reward #1" &&
			r.Symbol == "RWRD" &&
			r.URI == "https://example.com/reward1.json" &&
			r.SellerFeeBasisPoints == 500 &&
			len(r.Creators) == 1 &&
			r.Creators[0].Identity == testConsumer &&
			r.Creators[0].Verified &&
			r.Creators[0].Share == 100 &&
			r.Collection.ID == testCollection &&
			!r.Collection.Verified
	})).
		Run(func(args mock.Arguments) { order = append(order, "describe") }).
		Return(nil)

	mint, err := bm.MintNFT(context.Background(), "buffer1", mintInput())
	assert.NoError(t, err)
	assert.Equal(t, []string{"issue", "describe"}, order)
	assert.Equal(t, "uri1", mint.Descriptor.URI)
	assert.Equal(t, uint64(1), mint.Sequence)
	assert.Equal(t, "asset1", mint.Asset.ID)

	stored, _ := db.GetBufferState(context.Background(), "buffer1")
	assert.Equal(t, uint64(1), stored.MintedCount)
	assert.Len(t, stored.PendingNFTs, 1)
	assert.Equal(t, "uri2", stored.PendingNFTs[0].URI)

	events := pub.published()
	assert.Len(t, events, 1)
	assert.Equal(t, "buffer1", events[0].Buffer)
	assert.Equal(t, uint64(1), events[0].CurrentBufferSize)
	assert.Equal(t, uint64(3), events[0].RequiredSize)
	ai.AssertExpectations(t)
}

func TestThresholdSignalOnlyAtOrBelowThreshold(t *testing.T) {
	bm, _, ai, pub := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 5, 2)
	for i := 0; i < 5; i++ {
		_, err := addDescriptor(bm, "buffer1", fmt.Sprintf("uri%d", i))
		assert.NoError(t, err)
	}
	expectMintSuccess(ai)

	_, err := bm.MintNFT(context.Background(), "buffer1", mintInput())
	assert.NoError(t, err)
	_, err = bm.MintNFT(context.Background(), "buffer1", mintInput())
	assert.NoError(t, err)
	assert.Empty(t, pub.published())

	_, err = bm.MintNFT(context.Background(), "buffer1", mintInput())
	assert.NoError(t, err)
	events := pub.published()
	assert.Len(t, events, 1)
	assert.Equal(t, uint64(2), events[0].CurrentBufferSize)
	assert.Equal(t, uint64(5), events[0].RequiredSize)
	assert.Equal(t, uint64(3), events[0].Shortfall())
}

func TestSignalWithZeroThresholdOnlyWhenEmpty(t *testing.T) {
	bm, _, ai, pub := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 2, 0)
	_, _ = addDescriptor(bm, "buffer1", "uri1")
	_, _ = addDescriptor(bm, "buffer1", "uri2")
	expectMintSuccess(ai)

	_, err := bm.MintNFT(context.Background(), "buffer1", mintInput())
	assert.NoError(t, err)
	assert.Empty(t, pub.published())
	_, err = bm.MintNFT(context.Background(), "buffer1", mintInput())
	assert.NoError(t, err)
	assert.Len(t, pub.published(), 1)
	assert.Equal(t, uint64(0), pub.published()[0].CurrentBufferSize)
}

func TestCapacity(t *testing.T) {
	bm, db, _, _ := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 2, 0)
	_, err := addDescriptor(bm, "buffer1", "uri1")
	assert.NoError(t, err)
	_, err = addDescriptor(bm, "buffer1", "uri2")
	assert.NoError(t, err)
	before, _ := db.GetBufferState(context.Background(), "buffer1")

	_, err = addDescriptor(bm, "buffer1", "uri3")
	assert.Regexp(t, "FF10201", err)
	assert.True(t, errors.Is(err, BufferFull))

	after, _ := db.GetBufferState(context.Background(), "buffer1")
	assert.Equal(t, before, after)
}

func TestUnauthorizedProducer(t *testing.T) {
	bm, db, _, _ := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 2, 0)
	before, _ := db.GetBufferState(context.Background(), "buffer1")

	_, err := bm.AddToBuffer(context.Background(), "buffer1", &fftypes.DescriptorInput{
		Caller:      testStranger,
		MetadataURI: "uri1",
	})
	assert.Regexp(t, "FF10200", err)
	assert.True(t, errors.Is(err, UnauthorizedAccess))

	after, _ := db.GetBufferState(context.Background(), "buffer1")
	assert.Equal(t, before, after)
}

func TestAuthorityCheckedBeforeCapacity(t *testing.T) {
	bm, _, _, _ := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 1, 0)
	_, err := addDescriptor(bm, "buffer1", "uri1")
	assert.NoError(t, err)

	_, err = bm.AddToBuffer(context.Background(), "buffer1", &fftypes.DescriptorInput{
		Caller:      testStranger,
		MetadataURI: "uri2",
	})
	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, UnauthorizedAccess, kind)
}

func TestDescriptorTextNotValidated(t *testing.T) {
	bm, _, _, _ := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 1, 0)
	state, err := bm.AddToBuffer(context.Background(), "buffer1", &fftypes.DescriptorInput{
		Caller: testAuthority,
	})
	assert.NoError(t, err)
	assert.Equal(t, "", state.PendingNFTs[0].URI)
	assert.False(t, state.PendingNFTs[0].Minted)
}

func TestFIFOOrder(t *testing.T) {
	bm, _, ai, _ := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 3, 0)
	for _, uri := range []string{"A", "B", "C"} {
		_, err := addDescriptor(bm, "buffer1", uri)
		assert.NoError(t, err)
	}
	expectMintSuccess(ai)

	var popped []string
	for i := 0; i < 3; i++ {
		mint, err := bm.MintNFT(context.Background(), "buffer1", mintInput())
		assert.NoError(t, err)
		assert.Equal(t, uint64(i+1), mint.Sequence)
		popped = append(popped, mint.Descriptor.URI)
	}
	assert.Equal(t, []string{"A", "B", "C"}, popped)

	records, err := bm.GetMintRecords(context.Background(), "buffer1", 0, 10)
	assert.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, "C", records[0].Descriptor.URI)
}

func TestEmptyBuffer(t *testing.T) {
	bm, db, ai, pub := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 3, 1)

	_, err := bm.MintNFT(context.Background(), "buffer1", mintInput())
	assert.Regexp(t, "FF10202", err)
	assert.True(t, errors.Is(err, EmptyBuffer))
	assert.Empty(t, pub.published())
	assert.Equal(t, 0, db.commits)
	ai.AssertNotCalled(t, "CreateUniqueAsset", mock.Anything, mock.Anything, mock.Anything)
}

func TestMintedFlagRejected(t *testing.T) {
	bm, db, ai, _ := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 3, 1)
	db.states["buffer1"].PendingNFTs = fftypes.PendingQueue{
		{URI: "uri1", Minted: true},
	}

	_, err := bm.MintNFT(context.Background(), "buffer1", mintInput())
	assert.Regexp(t, "FF10203", err)
	assert.True(t, errors.Is(err, InvalidMetadata))

	after, _ := db.GetBufferState(context.Background(), "buffer1")
	assert.Len(t, after.PendingNFTs, 1)
	ai.AssertNotCalled(t, "CreateUniqueAsset", mock.Anything, mock.Anything, mock.Anything)
}

func TestMintIssueFailureRollsBack(t *testing.T) {
	bm, db, ai, pub := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 3, 2)
	_, _ = addDescriptor(bm, "buffer1", "uri1")
	before, _ := db.GetBufferState(context.Background(), "buffer1")

	ai.On("CreateUniqueAsset", mock.Anything, testConsumer, uint8(254)).Return(nil, fmt.Errorf("pop"))
	_, err := bm.MintNFT(context.Background(), "buffer1", mintInput())
	assert.Regexp(t, "FF10204.*pop", err)
	assert.True(t, errors.Is(err, MintFailed))

	after, _ := db.GetBufferState(context.Background(), "buffer1")
	assert.Equal(t, before, after)
	assert.Empty(t, pub.published())
	ai.AssertNotCalled(t, "AttachMetadata", mock.Anything, mock.Anything, mock.Anything)
}

func TestMintMetadataFailureRollsBack(t *testing.T) {
	bm, db, ai, pub := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 3, 2)
	_, _ = addDescriptor(bm, "buffer1", "uri1")
	before, _ := db.GetBufferState(context.Background(), "buffer1")

	ai.On("CreateUniqueAsset", mock.Anything, testConsumer, uint8(254)).Return(&fftypes.AssetRef{ID: "asset1"}, nil)
	ai.On("AttachMetadata", mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("pop"))
	_, err := bm.MintNFT(context.Background(), "buffer1", mintInput())
	assert.Regexp(t, "FF10204.*pop", err)

	after, _ := db.GetBufferState(context.Background(), "buffer1")
	assert.Equal(t, before, after)
	assert.Equal(t, uint64(0), after.MintedCount)
	assert.Empty(t, pub.published())
}

func TestMintCommitConflict(t *testing.T) {
	bm, db, ai, pub := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 3, 2)
	_, _ = addDescriptor(bm, "buffer1", "uri1")
	expectMintSuccess(ai)
	db.beforeCommit = func(stored *fftypes.BufferState) {
		stored.Version++
	}

	_, err := bm.MintNFT(context.Background(), "buffer1", mintInput())
	assert.Regexp(t, "FF10210", err)
	assert.True(t, errors.Is(err, BufferStateConflict))
	assert.Empty(t, pub.published())
	assert.Equal(t, 1, db.commits)
}

func TestMintCommitFail(t *testing.T) {
	bm, _, ai, _ := newTestBufferManager(t)
	mdb := &databasemocks.Plugin{}
	bm.database = mdb
	mdb.On("GetBufferState", mock.Anything, "buffer1").Return(&fftypes.BufferState{
		Name:        "buffer1",
		Authority:   testAuthority,
		BufferSize:  1,
		PendingNFTs: fftypes.PendingQueue{{URI: "uri1"}},
		Version:     1,
	}, nil)
	mdb.On("CommitBufferState", mock.Anything, mock.Anything, int64(1), mock.Anything).Return(fmt.Errorf("pop"))
	expectMintSuccess(ai)

	_, err := bm.MintNFT(context.Background(), "buffer1", mintInput())
	assert.EqualError(t, err, "pop")
	_, isKind := KindOf(err)
	assert.False(t, isKind)
}

func TestMintInvalidCaller(t *testing.T) {
	bm, db, ai, _ := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 3, 2)
	_, _ = addDescriptor(bm, "buffer1", "uri1")
	in := mintInput()
	in.Caller = "not-base58-0OIl"
	_, err := bm.MintNFT(context.Background(), "buffer1", in)
	assert.Regexp(t, "FF10133", err)
	assert.True(t, errors.Is(err, InvalidInput))
	after, _ := db.GetBufferState(context.Background(), "buffer1")
	assert.Len(t, after.PendingNFTs, 1)
	ai.AssertNotCalled(t, "CreateUniqueAsset", mock.Anything, mock.Anything, mock.Anything)
}

func TestMintEmptyBeforeCallerCheck(t *testing.T) {
	bm, _, _, _ := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 3, 2)
	in := mintInput()
	in.Caller = "not-base58-0OIl"
	_, err := bm.MintNFT(context.Background(), "buffer1", in)
	assert.Regexp(t, "FF10202", err)
	assert.True(t, errors.Is(err, EmptyBuffer))
}

func TestMintAnyCallerMayConsume(t *testing.T) {
	bm, _, ai, _ := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 3, 0)
	_, _ = addDescriptor(bm, "buffer1", "uri1")
	ai.On("CreateUniqueAsset", mock.Anything, testStranger, uint8(0)).Return(&fftypes.AssetRef{ID: "asset1", Owner: testStranger}, nil)
	ai.On("AttachMetadata", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	mint, err := bm.MintNFT(context.Background(), "buffer1", &fftypes.MintInput{Caller: testStranger})
	assert.NoError(t, err)
	assert.Equal(t, testStranger, mint.Owner)
	assert.Equal(t, testStranger, mint.Metadata.Creators[0].Identity)
}

func TestOperationsOnMissingBuffer(t *testing.T) {
	bm, _, _, _ := newTestBufferManager(t)
	ctx := context.Background()

	_, err := bm.AddToBuffer(ctx, "nope", &fftypes.DescriptorInput{Caller: testAuthority})
	assert.Regexp(t, "FF10205", err)
	_, err = bm.MintNFT(ctx, "nope", mintInput())
	assert.Regexp(t, "FF10205", err)
	_, err = bm.GetBufferState(ctx, "nope")
	assert.True(t, errors.Is(err, BufferNotFound))
	_, err = bm.GetMintRecords(ctx, "nope", 0, 10)
	assert.Regexp(t, "FF10205", err)
}

func TestAddRetriesOnVersionConflict(t *testing.T) {
	bm, db, _, _ := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 3, 0)
	conflicts := 0
	db.beforeCommit = func(stored *fftypes.BufferState) {
		if conflicts == 0 {
			conflicts++
			stored.Version++
		}
	}

	state, err := addDescriptor(bm, "buffer1", "uri1")
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), state.Remaining())
	assert.Equal(t, 2, db.commits)
}

func TestAddVersionConflictExhausted(t *testing.T) {
	bm, db, _, _ := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 3, 0)
	db.beforeCommit = func(stored *fftypes.BufferState) {
		stored.Version++
	}

	_, err := addDescriptor(bm, "buffer1", "uri1")
	assert.Regexp(t, "FF10209", err)
	assert.True(t, errors.Is(err, BufferStateConflict))
	assert.Equal(t, 5, db.commits)
}

func TestAddReadFail(t *testing.T) {
	bm, _, _, _ := newTestBufferManager(t)
	mdb := &databasemocks.Plugin{}
	bm.database = mdb
	mdb.On("GetBufferState", mock.Anything, "buffer1").Return(nil, fmt.Errorf("pop"))
	_, err := addDescriptor(bm, "buffer1", "uri1")
	assert.EqualError(t, err, "pop")
}

func TestConcurrentProducersRaceForLastSlot(t *testing.T) {
	bm, db, _, _ := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 3, 0)
	_, _ = addDescriptor(bm, "buffer1", "uri1")
	_, _ = addDescriptor(bm, "buffer1", "uri2")

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := addDescriptor(bm, "buffer1", fmt.Sprintf("race%d", i))
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded, full := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, BufferFull):
			full++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 9, full)
	stored, _ := db.GetBufferState(context.Background(), "buffer1")
	assert.Len(t, stored.PendingNFTs, 3)
}

func TestConcurrentConsumersRaceForLastItem(t *testing.T) {
	bm, db, ai, pub := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 3, 0)
	_, _ = addDescriptor(bm, "buffer1", "uri1")
	expectMintSuccess(ai)

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := bm.MintNFT(context.Background(), "buffer1", mintInput())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, empty := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, EmptyBuffer):
			empty++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 9, empty)
	ai.AssertNumberOfCalls(t, "CreateUniqueAsset", 1)

	stored, _ := db.GetBufferState(context.Background(), "buffer1")
	assert.Equal(t, uint64(1), stored.MintedCount)
	assert.Len(t, pub.published(), 1)
}

func TestMintedCountMonotonic(t *testing.T) {
	bm, db, ai, _ := newTestBufferManager(t)
	initBuffer(t, bm, "buffer1", 2, 0)
	expectMintSuccess(ai)

	last := uint64(0)
	for round := 0; round < 3; round++ {
		_, _ = addDescriptor(bm, "buffer1", "uriA")
		_, _ = addDescriptor(bm, "buffer1", "uriB")
		for i := 0; i < 2; i++ {
			_, err := bm.MintNFT(context.Background(), "buffer1", mintInput())
			assert.NoError(t, err)
			stored, _ := db.GetBufferState(context.Background(), "buffer1")
			assert.Equal(t, last+1, stored.MintedCount)
			last = stored.MintedCount
		}
		// a failed mint leaves the counter alone
		_, err := bm.MintNFT(context.Background(), "buffer1", mintInput())
		assert.True(t, errors.Is(err, EmptyBuffer))
	}
	assert.Equal(t, uint64(6), last)
}

func TestGetBufferStateCached(t *testing.T) {
	bm, _, _, _ := newTestBufferManager(t)
	mdb := &databasemocks.Plugin{}
	bm.database = mdb
	mdb.On("GetBufferState", mock.Anything, "buffer1").Return(&fftypes.BufferState{Name: "buffer1", BufferSize: 1}, nil).Once()

	s1, err := bm.GetBufferState(context.Background(), "buffer1")
	assert.NoError(t, err)
	s1.BufferSize = 99
	s2, err := bm.GetBufferState(context.Background(), "buffer1")
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), s2.BufferSize)
	mdb.AssertExpectations(t)
}

func TestGetBuffers(t *testing.T) {
	bm, _, _, _ := newTestBufferManager(t)
	initBuffer(t, bm, "bufferB", 1, 0)
	initBuffer(t, bm, "bufferA", 1, 0)
	states, err := bm.GetBuffers(context.Background(), 0, 10)
	assert.NoError(t, err)
	assert.Len(t, states, 2)
	assert.Equal(t, "bufferA", states[0].Name)

	states, err = bm.GetBuffers(context.Background(), 1, 10)
	assert.NoError(t, err)
	assert.Len(t, states, 1)
	assert.Equal(t, "bufferB", states[0].Name)
}

func TestKindOfForeignError(t *testing.T) {
	_, ok := KindOf(fmt.Errorf("pop"))
	assert.False(t, ok)
	assert.Equal(t, "BufferFull", BufferFull.Error())
}
