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

var MintConfirmedCounter *prometheus.CounterVec
var MintRejectedCounter *prometheus.CounterVec
var MintHistogram prometheus.Histogram

// MintConfirmedCounterName is the prometheus metric for tracking the total number of mints confirmed
var MintConfirmedCounterName = "mb_mint_confirmed_total"

// MintRejectedCounterName is the prometheus metric for tracking the total number of mints rejected
var MintRejectedCounterName = "mb_mint_rejected_total"

// MintHistogramName is the prometheus metric for tracking the time taken to mint, including the collaborators
var MintHistogramName = "mb_mint_histogram"

func InitMintMetrics() {
	MintConfirmedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MintConfirmedCounterName,
		Help: "Number of confirmed mints",
	}, []string{"buffer"})
	MintRejectedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MintRejectedCounterName,
		Help: "Number of rejected mints, by reason",
	}, []string{"buffer", "reason"})
	MintHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: MintHistogramName,
		Help: "Histogram of mints, bucketed by time to finished",
	})
}

func RegisterMintMetrics() {
	registry.MustRegister(MintConfirmedCounter)
	registry.MustRegister(MintRejectedCounter)
	registry.MustRegister(MintHistogram)
}
