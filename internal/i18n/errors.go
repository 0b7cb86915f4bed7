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

package i18n

import (
	"context"

	"github.com/pkg/errors"
)

// codedError carries the message key it was built from, so the key survives
// wrapping by other packages
type codedError struct {
	key   MessageKey
	msg   string
	cause error
}

func (e *codedError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *codedError) Unwrap() error {
	return e.cause
}

// NewError creates a new error, with a stack
func NewError(ctx context.Context, msg MessageKey, inserts ...interface{}) error {
	return errors.WithStack(&codedError{key: msg, msg: ExpandWithCode(ctx, msg, inserts...)})
}

// WrapError wraps an error, with a stack
func WrapError(ctx context.Context, err error, msg MessageKey, inserts ...interface{}) error {
	return errors.WithStack(&codedError{key: msg, msg: ExpandWithCode(ctx, msg, inserts...), cause: err})
}

// KeyOf returns the key of the outermost coded error in the chain
func KeyOf(err error) (MessageKey, bool) {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.key, true
	}
	return "", false
}

// StatusHint returns the HTTP status registered for the outermost coded error in the chain
func StatusHint(err error) (int, bool) {
	key, ok := KeyOf(err)
	if !ok {
		return 0, false
	}
	return GetStatusHint(string(key))
}
