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

package events

import (
	"context"
	"encoding/json"

	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/internal/log"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
	"github.com/redis/go-redis/v9"
)

// RedisOption is used to override defaults when creating a new Redis sink
type RedisOption func(*RedisSink)

// WithRedisClient overrides the default client
func WithRedisClient(client *redis.Client) RedisOption {
	return func(s *RedisSink) {
		s.client = client
	}
}

// RedisSink publishes each event as JSON on a pub/sub channel
type RedisSink struct {
	channel string
	client  *redis.Client
}

// NewRedisSink connects to the server at url (redis://...) unless a client is supplied, and
// verifies the connection with a ping
func NewRedisSink(ctx context.Context, url, channel string, opts ...RedisOption) (*RedisSink, error) {
	s := &RedisSink{
		channel: channel,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		redisOpts, err := redis.ParseURL(url)
		if err != nil {
			return nil, i18n.WrapError(ctx, err, i18n.MsgInvalidURL, url)
		}
		s.client = redis.NewClient(redisOpts)
	}

	if err := s.client.Ping(ctx).Err(); err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgRedisOpFailed)
	}
	log.L(ctx).Infof("Replenishment events will be published to Redis channel '%s'", channel)
	return s, nil
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Deliver(ctx context.Context, event *fftypes.ReplenishEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgDBSerializeFailed, "event")
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgRedisPublishFailed, s.channel)
	}
	return nil
}

func (s *RedisSink) Close() {
	_ = s.client.Close()
}
