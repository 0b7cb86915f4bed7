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

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/internal/log"
	"github.com/kaleido-io/mintbuffer/pkg/database"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
	"github.com/redis/go-redis/v9"
)

const (
	// RedisConfURL is the redis:// connection URL
	RedisConfURL = "url"
	// RedisConfKeyPrefix is prepended to every key, so one server can hold several deployments
	RedisConfKeyPrefix = "keyPrefix"
)

// Redis stores each buffer state as a JSON value, with optimistic transactions (WATCH/MULTI/EXEC)
// checking the version on every commit. Mint records live in a sorted set per buffer, scored by sequence.
type Redis struct {
	client    *redis.Client
	keyPrefix string
}

func (r *Redis) Name() string {
	return "redis"
}

func (r *Redis) InitPrefix(prefix config.Prefix) {
	prefix.AddKnownKey(RedisConfURL, "redis://localhost:6379/0")
	prefix.AddKnownKey(RedisConfKeyPrefix, "mintbuffer")
}

func (r *Redis) Init(ctx context.Context, prefix config.Prefix) error {
	url := prefix.GetString(RedisConfURL)
	opts, err := redis.ParseURL(url)
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgInvalidURL, url)
	}
	r.client = redis.NewClient(opts)
	r.keyPrefix = prefix.GetString(RedisConfKeyPrefix)

	if err := r.client.Ping(ctx).Err(); err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgRedisOpFailed)
	}
	log.L(ctx).Infof("Redis database plugin connected to %s", opts.Addr)
	return nil
}

func (r *Redis) Capabilities() *database.Capabilities {
	return &database.Capabilities{SharedStorage: true}
}

func (r *Redis) Close() {
	if r.client != nil {
		err := r.client.Close()
		log.L(context.Background()).Debugf("Redis client closed (err=%v)", err)
	}
}

func (r *Redis) bufferKey(name string) string {
	return fmt.Sprintf("%s:buffer:%s", r.keyPrefix, name)
}

func (r *Redis) bufferIndexKey() string {
	return fmt.Sprintf("%s:buffers", r.keyPrefix)
}

func (r *Redis) mintsKey(buffer string) string {
	return fmt.Sprintf("%s:mints:%s", r.keyPrefix, buffer)
}

func (r *Redis) InsertBufferState(ctx context.Context, state *fftypes.BufferState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgDBSerializeFailed, "buffer")
	}
	key := r.bufferKey(state.Name)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return database.DuplicateKey
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			// Equal scores sort lexicographically, which gives the name ordering of GetBufferStates
			pipe.ZAdd(ctx, r.bufferIndexKey(), redis.Z{Score: 0, Member: state.Name})
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		// Another writer created the key between our check and EXEC
		return database.DuplicateKey
	}
	return r.mapError(ctx, err)
}

func (r *Redis) GetBufferState(ctx context.Context, name string) (*fftypes.BufferState, error) {
	payload, err := r.client.Get(ctx, r.bufferKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		log.L(ctx).Debugf("Buffer '%s' not found", name)
		return nil, nil
	}
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgRedisOpFailed)
	}
	return r.decodeBufferState(ctx, payload)
}

func (r *Redis) decodeBufferState(ctx context.Context, payload []byte) (*fftypes.BufferState, error) {
	var state fftypes.BufferState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, "buffers")
	}
	if state.PendingNFTs == nil {
		state.PendingNFTs = fftypes.PendingQueue{}
	}
	return &state, nil
}

func rangeBounds(skip, limit uint64) (int64, int64) {
	start := int64(skip)
	stop := int64(-1)
	if limit > 0 {
		stop = start + int64(limit) - 1
	}
	return start, stop
}

func (r *Redis) GetBufferStates(ctx context.Context, skip, limit uint64) ([]*fftypes.BufferState, error) {
	start, stop := rangeBounds(skip, limit)
	names, err := r.client.ZRange(ctx, r.bufferIndexKey(), start, stop).Result()
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgRedisOpFailed)
	}
	states := []*fftypes.BufferState{}
	if len(names) == 0 {
		return states, nil
	}
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = r.bufferKey(name)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgRedisOpFailed)
	}
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		state, err := r.decodeBufferState(ctx, []byte(s))
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, nil
}

func (r *Redis) CommitBufferState(ctx context.Context, state *fftypes.BufferState, expectedVersion int64, mint *fftypes.MintRecord) error {
	key := r.bufferKey(state.Name)
	staged := state.Copy()
	staged.Version = expectedVersion + 1
	payload, err := json.Marshal(staged)
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgDBSerializeFailed, "buffer")
	}
	var mintPayload []byte
	if mint != nil {
		if mintPayload, err = json.Marshal(mint); err != nil {
			return i18n.WrapError(ctx, err, i18n.MsgDBSerializeFailed, "mint")
		}
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return database.VersionConflict
		}
		if err != nil {
			return err
		}
		stored, err := r.decodeBufferState(ctx, current)
		if err != nil {
			return err
		}
		if stored.Version != expectedVersion {
			log.L(ctx).Debugf("Buffer '%s' is at version %d, not %d", state.Name, stored.Version, expectedVersion)
			return database.VersionConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			if mint != nil {
				pipe.ZAdd(ctx, r.mintsKey(state.Name), redis.Z{Score: float64(mint.Sequence), Member: mintPayload})
			}
			return nil
		})
		return err
	}, key)
	if err = r.mapError(ctx, err); err != nil {
		return err
	}
	state.Version = staged.Version
	return nil
}

func (r *Redis) GetMintRecords(ctx context.Context, buffer string, skip, limit uint64) ([]*fftypes.MintRecord, error) {
	start, stop := rangeBounds(skip, limit)
	values, err := r.client.ZRevRange(ctx, r.mintsKey(buffer), start, stop).Result()
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgRedisOpFailed)
	}
	records := make([]*fftypes.MintRecord, 0, len(values))
	for _, v := range values {
		var record fftypes.MintRecord
		if err := json.Unmarshal([]byte(v), &record); err != nil {
			return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, "mints")
		}
		records = append(records, &record)
	}
	return records, nil
}

// mapError passes the sentinel errors through, and reports a watched key changing under EXEC as a version conflict
func (r *Redis) mapError(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.DuplicateKey), errors.Is(err, database.VersionConflict):
		return err
	case errors.Is(err, redis.TxFailedErr):
		return database.VersionConflict
	default:
		return i18n.WrapError(ctx, err, i18n.MsgRedisOpFailed)
	}
}
