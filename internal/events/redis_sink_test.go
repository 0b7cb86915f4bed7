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
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisSinkPublish(t *testing.T) {
	s := miniredis.RunT(t)
	ctx := context.Background()

	rs, err := NewRedisSink(ctx, "redis://"+s.Addr(), "mintbuffer.replenish")
	assert.NoError(t, err)
	defer rs.Close()
	assert.Equal(t, "redis", rs.Name())

	listener := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer listener.Close()
	sub := listener.Subscribe(ctx, "mintbuffer.replenish")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	assert.NoError(t, err)

	ev := fftypes.NewReplenishEvent("buffer1", 1, 3)
	err = rs.Deliver(ctx, ev)
	assert.NoError(t, err)

	msg := <-sub.Channel()
	var received fftypes.ReplenishEvent
	err = json.Unmarshal([]byte(msg.Payload), &received)
	assert.NoError(t, err)
	assert.Equal(t, "buffer1", received.Buffer)
	assert.Equal(t, uint64(1), received.CurrentBufferSize)
	assert.Equal(t, uint64(3), received.RequiredSize)
	assert.Equal(t, *ev.ID, *received.ID)
}

func TestRedisSinkWithClient(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})

	rs, err := NewRedisSink(context.Background(), "", "channel1", WithRedisClient(client))
	assert.NoError(t, err)
	assert.Same(t, client, rs.client)
	rs.Close()
}

func TestRedisSinkBadURL(t *testing.T) {
	_, err := NewRedisSink(context.Background(), "::not a url", "channel1")
	assert.Regexp(t, "FF10162", err)
}

func TestRedisSinkPingFails(t *testing.T) {
	s := miniredis.RunT(t)
	addr := s.Addr()
	s.Close()

	_, err := NewRedisSink(context.Background(), "redis://"+addr, "channel1")
	assert.Regexp(t, "FF10128", err)
}

func TestRedisSinkPublishFails(t *testing.T) {
	s := miniredis.RunT(t)
	rs, err := NewRedisSink(context.Background(), "redis://"+s.Addr(), "channel1")
	assert.NoError(t, err)
	s.Close()

	err = rs.Deliver(context.Background(), fftypes.NewReplenishEvent("buffer1", 0, 3))
	assert.Regexp(t, "FF10179", err)
	rs.Close()
}
