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
	"net/http"

	"github.com/kaleido-io/mintbuffer/internal/apispec"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
)

var postBuffer = &apispec.Route{
	Name:            "postBuffer",
	Path:            "buffers",
	Method:          http.MethodPost,
	Description:     i18n.MsgRoutePostBuffer,
	JSONInputValue:  func() interface{} { return &fftypes.BufferInput{} },
	JSONOutputValue: func() interface{} { return &fftypes.BufferState{} },
	JSONOutputCode:  http.StatusCreated,
	JSONHandler: func(r *apispec.APIRequest) (output interface{}, err error) {
		output, err = r.Or.Buffers().Initialize(r.Ctx, r.Input.(*fftypes.BufferInput))
		return output, err
	},
}
