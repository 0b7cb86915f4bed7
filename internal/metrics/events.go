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
	"github.com/prometheus/client_golang/prometheus"
)

var ReplenishSignalCounter *prometheus.CounterVec
var EventsDroppedCounter *prometheus.CounterVec
var EventsDeliveredCounter *prometheus.CounterVec

// ReplenishSignalCounterName is the prometheus metric for tracking low-watermark signals raised
var ReplenishSignalCounterName = "mb_replenish_signals_total"

// EventsDroppedCounterName is the prometheus metric for events dropped because a subscriber was full
var EventsDroppedCounterName = "mb_events_dropped_total"

// EventsDeliveredCounterName is the prometheus metric for events delivered to each sink
var EventsDeliveredCounterName = "mb_events_delivered_total"

func InitEventMetrics() {
	ReplenishSignalCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: ReplenishSignalCounterName,
		Help: "Number of replenishment signals raised",
	}, []string{"buffer"})
	EventsDroppedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: EventsDroppedCounterName,
		Help: "Number of events dropped for a full subscriber",
	}, []string{"subscriber"})
	EventsDeliveredCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: EventsDeliveredCounterName,
		Help: "Number of events delivered, by sink and outcome",
	}, []string{"sink", "outcome"})
}

func RegisterEventMetrics() {
	registry.MustRegister(ReplenishSignalCounter)
	registry.MustRegister(EventsDroppedCounter)
	registry.MustRegister(EventsDeliveredCounter)
}
