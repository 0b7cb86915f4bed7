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
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gotest.tools/assert"
	is "gotest.tools/assert/cmp"
)

func TestMiddlewareLabelsByRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	inst := NewInstrumentation("test", "api", prometheus.DefBuckets, reg)

	r := mux.NewRouter()
	r.Use(inst.Middleware)
	r.Path("/metrics").Handler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Path("/buffers/{name}/mint").Methods(http.MethodPost).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	})
	r.Path("/buffers/{name}").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"` + mux.Vars(r)["name"] + `"}`))
	})

	s := httptest.NewServer(r)
	defer s.Close()

	for _, name := range []string{"buffer1", "buffer2", "buffer3"} {
		res, err := s.Client().Post(fmt.Sprintf("%s/buffers/%s/mint", s.URL, name), "application/json", strings.NewReader(`{}`))
		assert.NilError(t, err)
		assert.Equal(t, http.StatusCreated, res.StatusCode)
	}
	res, err := s.Client().Get(s.URL + "/buffers/buffer1")
	assert.NilError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = s.Client().Get(s.URL + "/metrics")
	assert.NilError(t, err)
	b, err := io.ReadAll(res.Body)
	assert.NilError(t, err)
	body := string(b)

	assert.Check(t, is.Contains(body, `test_api_requests_total{code="201",method="POST",route="/buffers/{name}/mint"} 3`))
	assert.Check(t, is.Contains(body, `test_api_request_duration_seconds_count{code="201",method="POST",route="/buffers/{name}/mint"} 3`))
	assert.Check(t, is.Contains(body, `test_api_response_bytes_total{code="201",method="POST",route="/buffers/{name}/mint"} 6`))
	assert.Check(t, is.Contains(body, `test_api_requests_total{code="200",method="GET",route="/buffers/{name}"} 1`))
	assert.Check(t, !strings.Contains(body, "buffer2"))
}

func TestRouteTemplateUnmatched(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nothing", nil)
	assert.Equal(t, unmatchedRoute, routeTemplate(req))
}

func TestMiddlewareDefaultStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	inst := NewInstrumentation("test", "nowrite", prometheus.DefBuckets, reg)
	h := inst.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	mfs, err := reg.Gather()
	assert.NilError(t, err)
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "test_nowrite_requests_total" {
			found = true
			assert.Equal(t, "200", mf.GetMetric()[0].GetLabel()[0].GetValue())
		}
	}
	assert.Assert(t, found)
}
