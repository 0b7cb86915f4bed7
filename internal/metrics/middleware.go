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
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelCode   = "code"
	labelMethod = "method"
	labelRoute  = "route"

	unmatchedRoute = "unmatched"
)

// Instrumentation is a mux middleware recording request counts, latency and response sizes.
// Requests are labelled with the route template, so buffer names in paths do not add series.
type Instrumentation struct {
	Namespace string
	Subsystem string

	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	responseBytes *prometheus.CounterVec
	inFlight      prometheus.Gauge
}

func NewInstrumentation(namespace, subsystem string, buckets []float64, registerer prometheus.Registerer) *Instrumentation {
	labels := []string{labelCode, labelMethod, labelRoute}
	i := &Instrumentation{
		Namespace: namespace,
		Subsystem: subsystem,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Number of requests completed",
		}, labels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Histogram of the request duration",
			Buckets:   buckets,
		}, labels),
		responseBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "response_bytes_total",
			Help:      "Bytes written in response bodies",
		}, labels),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_in_flight",
			Help:      "Requests currently being served",
		}),
	}
	registerer.MustRegister(i.requests, i.duration, i.responseBytes, i.inFlight)
	return i
}

func (i *Instrumentation) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i.inFlight.Inc()
		defer i.inFlight.Dec()

		start := time.Now()
		sw := &statusResponseWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}
		lvs := []string{strconv.Itoa(status), r.Method, routeTemplate(r)}
		i.requests.WithLabelValues(lvs...).Inc()
		i.duration.WithLabelValues(lvs...).Observe(time.Since(start).Seconds())
		i.responseBytes.WithLabelValues(lvs...).Add(float64(sw.size))
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return unmatchedRoute
}
