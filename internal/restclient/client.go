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

package restclient

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/internal/log"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
)

const maxErrorBodyLen = 256

type callCtxKey struct{}

// callInfo is attached to the request context on the first attempt, and shared by the retries
type callInfo struct {
	id       string
	start    time.Time
	attempts int
}

func callInfoFrom(ctx context.Context) *callInfo {
	ci, _ := ctx.Value(callCtxKey{}).(*callInfo)
	return ci
}

// New builds a resty client from a config prefix registered with InitPrefix.
// Per-call settings can still be applied with the usual resty builders.
func New(ctx context.Context, conf config.Prefix) *resty.Client {
	client := resty.New()
	if hc, ok := conf.Get(HTTPCustomClient).(*http.Client); ok && hc != nil {
		client = resty.NewWithClient(hc)
	}

	baseURL := strings.TrimSuffix(conf.GetString(HTTPConfigURL), "/")
	if baseURL != "" {
		client.SetHostURL(baseURL)
	}
	if proxy := conf.GetString(HTTPConfigProxyURL); proxy != "" {
		client.SetProxy(proxy)
	}
	client.SetTimeout(conf.GetDuration(HTTPConfigRequestTimeout))

	for k, v := range conf.GetStringMap(HTTPConfigHeaders) {
		if vs, ok := v.(string); ok {
			client.SetHeader(k, vs)
		}
	}
	applyAuth(client, conf)

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		rctx := req.Context()
		ci := callInfoFrom(rctx)
		if ci == nil {
			ci = &callInfo{id: fftypes.ShortID(), start: time.Now()}
			rctx = context.WithValue(rctx, callCtxKey{}, ci)
			rctx = log.WithLogger(rctx, log.L(ctx).WithField("breq", ci.id))
			req.SetContext(rctx)
		}
		ci.attempts++
		log.L(rctx).Infof("==> %s %s%s (attempt=%d)", req.Method, baseURL, req.URL, ci.attempts)
		return nil
	})
	client.OnAfterResponse(func(c *resty.Client, res *resty.Response) error {
		OnAfterResponse(c, res)
		return nil
	})

	if conf.GetBool(HTTPConfigRetryEnabled) {
		client.
			SetRetryCount(conf.GetInt(HTTPConfigRetryCount)).
			SetRetryWaitTime(conf.GetDuration(HTTPConfigRetryInitDelay)).
			SetRetryMaxWaitTime(conf.GetDuration(HTTPConfigRetryMaxDelay)).
			AddRetryCondition(shouldRetry)
	}

	log.L(ctx).Debugf("REST client configured for '%s'", baseURL)
	return client
}

func applyAuth(client *resty.Client, conf config.Prefix) {
	username := conf.GetString(HTTPConfigAuthUsername)
	password := conf.GetString(HTTPConfigAuthPassword)
	if username != "" && password != "" {
		client.SetBasicAuth(username, password)
	}
	if token := conf.GetString(HTTPConfigAuthBearerToken); token != "" {
		client.SetAuthToken(token)
	}
}

// shouldRetry retries failed connections, throttling and server errors. Any other
// status is a rejection that would not change on a second attempt.
func shouldRetry(res *resty.Response, err error) bool {
	if res == nil {
		return err != nil
	}
	status := res.StatusCode()
	retry := err != nil || status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
	if retry {
		rctx := res.Request.Context()
		attempts := 0
		if ci := callInfoFrom(rctx); ci != nil {
			attempts = ci.attempts
		}
		log.L(rctx).Infof("Retrying after attempt %d status=%d err=%v", attempts, status, err)
	}
	return retry
}

// OnAfterResponse logs the outcome of a call. Callers using SetDoNotParseResponse(true)
// must invoke it themselves once they have the response.
func OnAfterResponse(c *resty.Client, res *resty.Response) {
	if c == nil || res == nil || res.Request == nil {
		return
	}
	rctx := res.Request.Context()
	ci := callInfoFrom(rctx)
	if ci == nil {
		return
	}
	elapsed := float64(time.Since(ci.start)) / float64(time.Millisecond)
	log.L(rctx).Infof("<== %s %s [%d] (%.2fms)", res.Request.Method, res.Request.URL, res.StatusCode(), elapsed)
}

// WrapRestErr builds an error from a failed call, including the start of the response body
func WrapRestErr(ctx context.Context, res *resty.Response, err error, key i18n.MessageKey) error {
	body := responseSnippet(res)
	if err != nil {
		return i18n.WrapError(ctx, err, key, body)
	}
	return i18n.NewError(ctx, key, body)
}

func responseSnippet(res *resty.Response) string {
	if res == nil {
		return ""
	}
	var body string
	if raw := res.RawBody(); raw != nil {
		defer raw.Close()
		if b, err := io.ReadAll(raw); err == nil {
			body = string(b)
		}
	}
	if body == "" {
		body = res.String()
	}
	if len(body) > maxErrorBodyLen {
		body = body[:maxErrorBodyLen] + "..."
	}
	return body
}
