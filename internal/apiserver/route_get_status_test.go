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

package apiserver

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetStatus(t *testing.T) {
	o, _, r := newTestAPIServer()
	req := httptest.NewRequest("GET", "/api/v1/status", nil)
	res := httptest.NewRecorder()

	o.On("GetStatus", mock.Anything).Return(&fftypes.NodeStatus{
		Plugins: fftypes.NodeStatusPlugins{
			Database:   "sqlite",
			Assets:     "simulated",
			EventSinks: []string{"redis"},
		},
	}, nil)
	r.ServeHTTP(res, req)

	assert.Equal(t, 200, res.Result().StatusCode)
	var status fftypes.NodeStatus
	json.NewDecoder(res.Body).Decode(&status)
	assert.Equal(t, "sqlite", status.Plugins.Database)
	assert.Equal(t, []string{"redis"}, status.Plugins.EventSinks)
}
