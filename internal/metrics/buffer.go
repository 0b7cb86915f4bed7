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

var DescriptorsAddedCounter *prometheus.CounterVec
var DescriptorsRejectedCounter *prometheus.CounterVec
var PendingGauge *prometheus.GaugeVec

// DescriptorsAddedCounterName is the prometheus metric for tracking the total number of descriptors added to buffers
var DescriptorsAddedCounterName = "mb_buffer_descriptors_added_total"

// DescriptorsRejectedCounterName is the prometheus metric for tracking producer calls that were refused
var DescriptorsRejectedCounterName = "mb_buffer_descriptors_rejected_total"

// PendingGaugeName is the prometheus metric for the current queue length of each buffer
var PendingGaugeName = "mb_buffer_pending"

func InitBufferMetrics() {
	DescriptorsAddedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: DescriptorsAddedCounterName,
		Help: "Number of descriptors added to buffers",
	}, []string{"buffer"})
	DescriptorsRejectedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: DescriptorsRejectedCounterName,
		Help: "Number of producer calls rejected, by reason",
	}, []string{"buffer", "reason"})
	PendingGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: PendingGaugeName,
		Help: "Number of descriptors waiting in each buffer",
	}, []string{"buffer"})
}

func RegisterBufferMetrics() {
	registry.MustRegister(DescriptorsAddedCounter)
	registry.MustRegister(DescriptorsRejectedCounter)
	registry.MustRegister(PendingGauge)
}
