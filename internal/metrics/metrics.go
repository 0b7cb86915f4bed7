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

package metrics

import (
	"context"
	"time"

	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
)

type Manager interface {
	DescriptorAdded(state *fftypes.BufferState)
	DescriptorRejected(buffer, reason string)
	MintConfirmed(state *fftypes.BufferState, started time.Time)
	MintRejected(buffer, reason string)
	ReplenishRaised(event *fftypes.ReplenishEvent)
	EventDropped(subscriber string)
	EventDelivered(sink string, err error)
	IsMetricsEnabled() bool
}

type metricsManager struct {
	ctx            context.Context
	metricsEnabled bool
}

func NewMetricsManager(ctx context.Context) Manager {
	mm := &metricsManager{
		ctx:            ctx,
		metricsEnabled: config.GetBool(config.MetricsEnabled),
	}
	if mm.metricsEnabled {
		Registry()
	}
	return mm
}

func (mm *metricsManager) DescriptorAdded(state *fftypes.BufferState) {
	if !mm.metricsEnabled {
		return
	}
	DescriptorsAddedCounter.WithLabelValues(state.Name).Inc()
	PendingGauge.WithLabelValues(state.Name).Set(float64(state.Remaining()))
}

func (mm *metricsManager) DescriptorRejected(buffer, reason string) {
	if !mm.metricsEnabled {
		return
	}
	DescriptorsRejectedCounter.WithLabelValues(buffer, reason).Inc()
}

func (mm *metricsManager) MintConfirmed(state *fftypes.BufferState, started time.Time) {
	if !mm.metricsEnabled {
		return
	}
	MintHistogram.Observe(time.Since(started).Seconds())
	MintConfirmedCounter.WithLabelValues(state.Name).Inc()
	PendingGauge.WithLabelValues(state.Name).Set(float64(state.Remaining()))
}

func (mm *metricsManager) MintRejected(buffer, reason string) {
	if !mm.metricsEnabled {
		return
	}
	MintRejectedCounter.WithLabelValues(buffer, reason).Inc()
}

func (mm *metricsManager) ReplenishRaised(event *fftypes.ReplenishEvent) {
	if !mm.metricsEnabled {
		return
	}
	ReplenishSignalCounter.WithLabelValues(event.Buffer).Inc()
}

func (mm *metricsManager) EventDropped(subscriber string) {
	if !mm.metricsEnabled {
		return
	}
	EventsDroppedCounter.WithLabelValues(subscriber).Inc()
}

func (mm *metricsManager) EventDelivered(sink string, err error) {
	if !mm.metricsEnabled {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	EventsDeliveredCounter.WithLabelValues(sink, outcome).Inc()
}

func (mm *metricsManager) IsMetricsEnabled() bool {
	return mm.metricsEnabled
}
