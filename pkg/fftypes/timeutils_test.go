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

package fftypes

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type timestamps struct {
	Created *FFTime `json:"created"`
	Updated *FFTime `json:"updated,omitempty"`
}

func TestUnixTimeResolutions(t *testing.T) {
	for _, in := range []int64{1621103797, 1621103797000, 1621103797000000000} {
		assert.Equal(t, "2021-05-15T18:36:37Z", UnixTime(in).String(), in)
	}
	assert.Equal(t, "2021-05-15T18:37:32.123456789Z", UnixTime(1621103852123456789).String())
}

func TestFFTimeJSON(t *testing.T) {
	b, err := json.Marshal(&timestamps{Created: &FFTime{}})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"created":null}`, string(b))

	ts := &timestamps{Created: UnixTime(1621103852123456789), Updated: Now()}
	b, err = json.Marshal(ts)
	assert.NoError(t, err)

	var parsed timestamps
	err = json.Unmarshal(b, &parsed)
	assert.NoError(t, err)
	assert.Equal(t, ts.Created.UnixNano(), parsed.Created.UnixNano())
	assert.Equal(t, ts.Updated.UnixNano(), parsed.Updated.UnixNano())

	err = json.Unmarshal([]byte(`{"created":"yesterday"}`), &parsed)
	assert.Regexp(t, "FF10165.*yesterday", err)
}

func TestFFTimeScan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
		want string
	}{
		{"nanos string", "1621108144123456789", "2021-05-15T19:49:04.123456789Z"},
		{"millis bytes", []byte("1621108144123"), "2021-05-15T19:49:04.123Z"},
		{"rfc3339 offset", "2021-05-15T19:49:04-05:00", "2021-05-16T00:49:04Z"},
		{"millis int", int64(1621108144123), "2021-05-15T19:49:04.123Z"},
		{"zero int", int64(0), ""},
		{"null", nil, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ft := *Now()
			err := ft.Scan(tc.src)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, ft.String())
		})
	}

	var ft FFTime
	assert.Regexp(t, "FF10165", ft.Scan("not a time"))
	assert.Regexp(t, "FF10125", ft.Scan(false))
}

func TestFFTimeValue(t *testing.T) {
	var unset *FFTime
	v, err := unset.Value()
	assert.NoError(t, err)
	assert.Equal(t, int64(0), v)
	assert.Equal(t, "", unset.String())

	v, err = (&FFTime{}).Value()
	assert.NoError(t, err)
	assert.Equal(t, int64(0), v)

	v, err = UnixTime(1621103797).Value()
	assert.NoError(t, err)
	assert.Equal(t, int64(1621103797000000000), v)

	now := Now()
	assert.Equal(t, time.Time(*now).UnixNano(), now.UnixNano())
}
