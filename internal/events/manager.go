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

	"github.com/kaleido-io/mintbuffer/internal/awsconfig"
	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/log"
	"github.com/kaleido-io/mintbuffer/internal/metrics"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
)

var kinesisConfig = config.NewPluginConfig("events.kinesis")

// InitConfig registers the keys of the sinks configured through plugin prefixes
func InitConfig() {
	awsconfig.InitPrefix(kinesisConfig)
}

// Sink is an external destination for replenishment events. Deliver is called from the
// sink's own goroutine, one event at a time.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event *fftypes.ReplenishEvent) error
	Close()
}

// Manager owns the bus and drives a delivery loop per sink
type Manager interface {
	Publisher
	Bus() Bus
	Start() error
	Close()
}

type eventManager struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	bus         Bus
	metrics     metrics.Manager
	sinks       []Sink
	queueLength int
	wg          sync.WaitGroup
}

// NewConfiguredSinks builds the sinks enabled in configuration
func NewConfiguredSinks(ctx context.Context) ([]Sink, error) {
	var sinks []Sink
	if config.GetBool(config.EventsRedisEnabled) {
		rs, err := NewRedisSink(ctx, config.GetString(config.EventsRedisURL), config.GetString(config.EventsRedisChannel))
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, rs)
	}
	if config.GetBool(config.EventsKinesisEnabled) {
		ks, err := NewKinesisSink(ctx, kinesisConfig, config.GetString(config.EventsKinesisStream))
		if err != nil {
			for _, s := range sinks {
				s.Close()
			}
			return nil, err
		}
		sinks = append(sinks, ks)
	}
	return sinks, nil
}

func NewEventManager(ctx context.Context, mm metrics.Manager, sinks ...Sink) Manager {
	ctx, cancelCtx := context.WithCancel(ctx)
	return &eventManager{
		ctx:         ctx,
		cancelCtx:   cancelCtx,
		bus:         NewBus(ctx, mm),
		metrics:     mm,
		sinks:       sinks,
		queueLength: config.GetInt(config.EventsBufferLength),
	}
}

func (em *eventManager) Bus() Bus {
	return em.bus
}

func (em *eventManager) Publish(event *fftypes.ReplenishEvent) {
	em.bus.Publish(event)
}

func (em *eventManager) Start() error {
	for _, s := range em.sinks {
		ch := make(chan *fftypes.ReplenishEvent, em.queueLength)
		if err := em.bus.Subscribe("sink:"+s.Name(), ch); err != nil {
			return err
		}
		em.wg.Add(1)
		go em.sinkLoop(s, ch)
	}
	return nil
}

func (em *eventManager) sinkLoop(s Sink, ch <-chan *fftypes.ReplenishEvent) {
	defer em.wg.Done()
	ctx := log.WithLogField(em.ctx, "sink", s.Name())
	l := log.L(ctx)
	l.Debugf("Sink started")
	for {
		select {
		case <-ctx.Done():
			l.Debugf("Sink exiting")
			return
		case event := <-ch:
			err := s.Deliver(ctx, event)
			em.metrics.EventDelivered(s.Name(), err)
			if err != nil {
				l.Errorf("Failed to deliver event %s for buffer '%s': %s", event.ID, event.Buffer, err)
			}
		}
	}
}

// Close stops the sink loops, waits for them to exit and releases the sinks
func (em *eventManager) Close() {
	em.cancelCtx()
	em.bus.Close()
	em.wg.Wait()
	for _, s := range em.sinks {
		s.Close()
	}
}
