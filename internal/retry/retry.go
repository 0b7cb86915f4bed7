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

package retry

import (
	"context"
	"time"

	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/internal/log"
)

const (
	DefaultFactor = 2.0
)

// Retry is a concurrency safe structure that configures a simple backoff retry mechanism
type Retry struct {
	InitialDelay time.Duration
	MaximumDelay time.Duration
	Factor       float64
	MaxAttempts  int // zero for unlimited
}

// NewFromConfig builds the retry policy used by the buffer manager
func NewFromConfig() *Retry {
	return &Retry{
		InitialDelay: config.GetDuration(config.BufferRetryInitDelay),
		MaximumDelay: config.GetDuration(config.BufferRetryMaxDelay),
		Factor:       config.GetFloat64(config.BufferRetryFactor),
		MaxAttempts:  config.GetInt(config.BufferRetryMaxAttempts),
	}
}

// Do invokes the function until the function returns false, the attempts are exhausted,
// or the context is cancelled. The error of the last attempt is returned when the
// attempts are exhausted.
func (r *Retry) Do(ctx context.Context, logDescription string, f func(attempt int) (retry bool, err error)) error {
	attempt := 0
	delay := r.InitialDelay
	factor := r.Factor
	if factor < 1 { // Can't reduce
		factor = DefaultFactor
	}
	for {
		attempt++
		retry, err := f(attempt)
		if !retry || (r.MaxAttempts > 0 && attempt >= r.MaxAttempts) {
			return err
		}
		if ctx.Err() != nil {
			return i18n.NewError(ctx, i18n.MsgContextCanceled)
		}
		log.L(ctx).Debugf("%s attempt %d failed (retrying in %s): %v", logDescription, attempt, delay, err)

		// Limit the delay based on the context deadline and maximum delay
		if delay > r.MaximumDelay {
			delay = r.MaximumDelay
		}
		if deadline, ok := ctx.Deadline(); ok {
			timeleft := time.Until(deadline)
			if timeleft < delay {
				delay = timeleft
			}
		}

		// Sleep and set the delay for next time
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return i18n.NewError(ctx, i18n.MsgContextCanceled)
		case <-timer.C:
		}
		delay = time.Duration(float64(delay) * factor)
	}
}
