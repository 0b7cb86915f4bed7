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

package buffer

import (
	"context"
	"errors"

	"github.com/kaleido-io/mintbuffer/internal/i18n"
)

// Kind classifies a failed buffer operation. Each Kind is also an error, so callers
// can test with errors.Is(err, buffer.BufferFull).
type Kind string

const (
	UnauthorizedAccess  Kind = "UnauthorizedAccess"
	BufferFull          Kind = "BufferFull"
	EmptyBuffer         Kind = "EmptyBuffer"
	InvalidMetadata     Kind = "InvalidMetadata"
	MintFailed          Kind = "MintFailed"
	BufferNotFound      Kind = "BufferNotFound"
	BufferExists        Kind = "BufferExists"
	InvalidInput        Kind = "InvalidInput"
	BufferStateConflict Kind = "BufferStateConflict"
)

func (k Kind) Error() string {
	return string(k)
}

type kindError struct {
	kind Kind
	error
}

func (ke *kindError) Unwrap() error {
	return ke.error
}

func (ke *kindError) Is(target error) bool {
	return target == ke.kind
}

func newError(ctx context.Context, kind Kind, key i18n.MessageKey, inserts ...interface{}) error {
	return &kindError{kind: kind, error: i18n.NewError(ctx, key, inserts...)}
}

func wrapError(ctx context.Context, kind Kind, cause error, key i18n.MessageKey, inserts ...interface{}) error {
	return &kindError{kind: kind, error: i18n.WrapError(ctx, cause, key, inserts...)}
}

// KindOf returns the kind of a buffer operation error
func KindOf(err error) (Kind, bool) {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind, true
	}
	return "", false
}
