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
	"context"
	"database/sql/driver"
	"encoding/json"
	"strconv"
	"time"

	"github.com/kaleido-io/mintbuffer/internal/i18n"
)

// FFTime is a UTC timestamp. The API carries it as RFC3339 with nanoseconds, the
// databases as unix nanoseconds.
type FFTime time.Time

func Now() *FFTime {
	t := FFTime(time.Now().UTC())
	return &t
}

// UnixTime accepts seconds, milliseconds or nanoseconds since the epoch, judged by magnitude
func UnixTime(unixTime int64) *FFTime {
	switch {
	case unixTime < 1e10:
		unixTime *= 1e9
	case unixTime < 1e15:
		unixTime *= 1e6
	}
	t := FFTime(time.Unix(0, unixTime).UTC())
	return &t
}

func parseTime(str string) (*FFTime, error) {
	if t, err := time.Parse(time.RFC3339Nano, str); err == nil {
		ft := FFTime(t.UTC())
		return &ft, nil
	}
	if unixTime, err := strconv.ParseInt(str, 10, 64); err == nil {
		return UnixTime(unixTime), nil
	}
	return nil, i18n.NewError(context.Background(), i18n.MsgTimeParseFail, str)
}

func (ft *FFTime) isZero() bool {
	return ft == nil || time.Time(*ft).IsZero()
}

func (ft *FFTime) MarshalJSON() ([]byte, error) {
	if ft.isZero() {
		return json.Marshal(nil)
	}
	return json.Marshal(ft.String())
}

func (ft *FFTime) UnmarshalText(b []byte) error {
	t, err := parseTime(string(b))
	if err == nil {
		*ft = *t
	}
	return err
}

func (ft *FFTime) UnixNano() int64 {
	if ft.isZero() {
		return 0
	}
	return time.Time(*ft).UnixNano()
}

// Scan implements sql.Scanner. Zero and NULL both scan to the zero time.
func (ft *FFTime) Scan(src interface{}) error {
	switch src := src.(type) {
	case nil:
		*ft = FFTime{}
	case int64:
		if src == 0 {
			*ft = FFTime{}
		} else {
			*ft = *UnixTime(src)
		}
	case []byte:
		return ft.UnmarshalText(src)
	case string:
		return ft.UnmarshalText([]byte(src))
	default:
		return i18n.NewError(context.Background(), i18n.MsgScanFailed, src, ft)
	}
	return nil
}

// Value implements sql.Valuer
func (ft *FFTime) Value() (driver.Value, error) {
	return ft.UnixNano(), nil
}

func (ft *FFTime) String() string {
	if ft.isZero() {
		return ""
	}
	return time.Time(*ft).UTC().Format(time.RFC3339Nano)
}
