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
	"sync"
	"sync/atomic"

	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/internal/log"
	"github.com/kaleido-io/mintbuffer/internal/metrics"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
)

// Publisher is the only part of the bus the buffer manager sees. Publish never blocks.
type Publisher interface {
	Publish(event *fftypes.ReplenishEvent)
}

// Bus fans replenishment events out to subscribers. A subscriber whose channel is full
// misses the event, and the miss is counted against it.
type Bus interface {
	Publisher
	Subscribe(id string, ch chan<- *fftypes.ReplenishEvent) error
	Unsubscribe(id string) error
	Stats(id string) (*SubscriberStats, error)
	Close()
}

// SubscriberStats counts what a subscriber received and what it missed
type SubscriberStats struct {
	Sent    uint64 `json:"sent"`
	Dropped uint64 `json:"dropped"`
}

type subscriber struct {
	id    string
	ch    chan<- *fftypes.ReplenishEvent
	stats SubscriberStats
}

type bus struct {
	ctx            context.Context
	metrics        metrics.Manager
	mux            sync.RWMutex
	subscribers    map[string]*subscriber
	totalPublished uint64
	closed         bool
}

func NewBus(ctx context.Context, mm metrics.Manager) Bus {
	return &bus{
		ctx:         log.WithLogField(ctx, "role", "eventbus"),
		metrics:     mm,
		subscribers: make(map[string]*subscriber),
	}
}

func (b *bus) Subscribe(id string, ch chan<- *fftypes.ReplenishEvent) error {
	b.mux.Lock()
	defer b.mux.Unlock()

	if b.closed {
		return i18n.NewError(b.ctx, i18n.MsgEventBusClosed)
	}
	if _, exists := b.subscribers[id]; exists {
		return i18n.NewError(b.ctx, i18n.MsgSubscriberExists, id)
	}
	if ch == nil {
		return i18n.NewError(b.ctx, i18n.MsgNilSubscriberChannel, id)
	}

	b.subscribers[id] = &subscriber{id: id, ch: ch}
	log.L(b.ctx).Debugf("Subscriber '%s' added", id)
	return nil
}

func (b *bus) Publish(event *fftypes.ReplenishEvent) {
	b.mux.RLock()
	defer b.mux.RUnlock()

	if b.closed {
		return
	}
	atomic.AddUint64(&b.totalPublished, 1)

	for _, s := range b.subscribers {
		select {
		case s.ch <- event:
			atomic.AddUint64(&s.stats.Sent, 1)
		default:
			atomic.AddUint64(&s.stats.Dropped, 1)
			log.L(b.ctx).Warnf("Subscriber '%s' is full, dropped event %s for buffer '%s'", s.id, event.ID, event.Buffer)
			b.metrics.EventDropped(s.id)
		}
	}
}

func (b *bus) Unsubscribe(id string) error {
	b.mux.Lock()
	defer b.mux.Unlock()

	if _, exists := b.subscribers[id]; !exists {
		return i18n.NewError(b.ctx, i18n.MsgSubscriberNotFound, id)
	}
	delete(b.subscribers, id)
	return nil
}

func (b *bus) Stats(id string) (*SubscriberStats, error) {
	b.mux.RLock()
	defer b.mux.RUnlock()

	s, exists := b.subscribers[id]
	if !exists {
		return nil, i18n.NewError(b.ctx, i18n.MsgSubscriberNotFound, id)
	}
	return &SubscriberStats{
		Sent:    atomic.LoadUint64(&s.stats.Sent),
		Dropped: atomic.LoadUint64(&s.stats.Dropped),
	}, nil
}

// Close stops delivery. Subscriber channels belong to the subscribers and are not closed here.
func (b *bus) Close() {
	b.mux.Lock()
	defer b.mux.Unlock()
	b.closed = true
	b.subscribers = make(map[string]*subscriber)
}
