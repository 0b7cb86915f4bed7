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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/ghodss/yaml"
	"github.com/gorilla/mux"
	"github.com/kaleido-io/mintbuffer/internal/apispec"
	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/internal/log"
	"github.com/kaleido-io/mintbuffer/internal/metrics"
	"github.com/kaleido-io/mintbuffer/internal/orchestrator"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

var (
	apiConfigPrefix     = config.NewPluginConfig("http")
	metricsConfigPrefix = config.NewPluginConfig("metrics")
)

// Server is the external interface for the API Server
type Server interface {
	Serve(ctx context.Context, o orchestrator.Orchestrator) error
}

type apiServer struct {
	defaultLimit   uint64
	maxLimit       uint64
	apiTimeout     time.Duration
	metricsEnabled bool
}

// InitConfig registers the listener keys of the API and metrics servers. Must be called after each config.Reset
func InitConfig() {
	initHTTPConfPrefx(apiConfigPrefix, 5000)
	initHTTPConfPrefx(metricsConfigPrefix, 6000)
}

func NewAPIServer() Server {
	return &apiServer{
		defaultLimit:   uint64(config.GetUint(config.APIDefaultLimit)),
		maxLimit:       uint64(config.GetUint(config.APIMaxLimit)),
		apiTimeout:     config.GetDuration(config.APIRequestTimeout),
		metricsEnabled: config.GetBool(config.MetricsEnabled),
	}
}

// Serve is the main entry point for the API Server. It returns once every listener has stopped,
// which happens when ctx is done or when any one of them fails.
func (as *apiServer) Serve(ctx context.Context, o orchestrator.Orchestrator) error {
	g, gCtx := errgroup.WithContext(ctx)

	servers := make([]*httpServer, 0, 2)
	apiHTTPServer, err := newHTTPServer(gCtx, "api", as.createMuxRouter(gCtx, o), apiConfigPrefix)
	if err != nil {
		return err
	}
	servers = append(servers, apiHTTPServer)

	if as.metricsEnabled {
		metricsHTTPServer, err := newHTTPServer(gCtx, "metrics", as.createMetricsMuxRouter(), metricsConfigPrefix)
		if err != nil {
			_ = apiHTTPServer.l.Close()
			return err
		}
		servers = append(servers, metricsHTTPServer)
	}

	for _, hs := range servers {
		hs := hs
		g.Go(func() error { return hs.serveHTTP(gCtx) })
	}
	return g.Wait()
}

func (as *apiServer) getParams(req *http.Request, route *apispec.Route) (queryParams, pathParams map[string]string) {
	queryParams = make(map[string]string)
	pathParams = make(map[string]string)
	if len(route.PathParams) > 0 {
		v := mux.Vars(req)
		for _, pp := range route.PathParams {
			pathParams[pp.Name] = v[pp.Name]
		}
	}
	for _, qp := range route.QueryParams {
		val, exists := req.URL.Query()[qp.Name]
		if exists && len(val) > 0 {
			queryParams[qp.Name] = val[0]
		}
	}
	return queryParams, pathParams
}

func (as *apiServer) getSkipLimit(ctx context.Context, queryParams map[string]string) (skip, limit uint64, err error) {
	limit = as.defaultLimit
	if s, ok := queryParams["skip"]; ok {
		if skip, err = strconv.ParseUint(s, 10, 64); err != nil {
			return 0, 0, i18n.NewError(ctx, i18n.MsgInvalidQueryParam, "skip", err)
		}
	}
	if l, ok := queryParams["limit"]; ok {
		if limit, err = strconv.ParseUint(l, 10, 64); err != nil {
			return 0, 0, i18n.NewError(ctx, i18n.MsgInvalidQueryParam, "limit", err)
		}
	}
	if limit == 0 || limit > as.maxLimit {
		limit = as.maxLimit
	}
	return skip, limit, nil
}

func (as *apiServer) routeHandler(o orchestrator.Orchestrator, route *apispec.Route) http.HandlerFunc {
	return as.apiWrapper(func(res http.ResponseWriter, req *http.Request) (int, error) {
		ctx := req.Context()

		var jsonInput interface{}
		if route.JSONInputValue != nil {
			jsonInput = route.JSONInputValue()
		}
		if jsonInput != nil && req.Method != http.MethodGet && req.Method != http.MethodDelete {
			contentType := req.Header.Get("Content-Type")
			if !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
				return http.StatusUnsupportedMediaType, i18n.NewError(ctx, i18n.MsgInvalidContentType)
			}
			if err := json.NewDecoder(req.Body).Decode(&jsonInput); err != nil {
				return http.StatusBadRequest, i18n.WrapError(ctx, err, i18n.MsgJSONDecodeFailed)
			}
		}

		queryParams, pathParams := as.getParams(req, route)
		r := &apispec.APIRequest{
			Ctx:           ctx,
			Or:            o,
			Req:           req,
			PP:            pathParams,
			QP:            queryParams,
			Input:         jsonInput,
			SuccessStatus: http.StatusOK,
		}
		if route.JSONOutputCode != 0 {
			r.SuccessStatus = route.JSONOutputCode
		}
		var err error
		if r.Skip, r.Limit, err = as.getSkipLimit(ctx, queryParams); err != nil {
			return http.StatusBadRequest, err
		}

		output, err := route.JSONHandler(r)
		if err != nil {
			return http.StatusInternalServerError, err
		}
		return as.handleOutput(ctx, res, r.SuccessStatus, output)
	})
}

func (as *apiServer) handleOutput(ctx context.Context, res http.ResponseWriter, status int, output interface{}) (int, error) {
	vOutput := reflect.ValueOf(output)
	outputKind := vOutput.Kind()
	isPointer := outputKind == reflect.Ptr
	invalid := outputKind == reflect.Invalid
	isNil := output == nil || invalid || (isPointer && vOutput.IsNil())
	if isNil {
		if status != http.StatusNoContent {
			return http.StatusNotFound, i18n.NewError(ctx, i18n.Msg404NoResult)
		}
		res.WriteHeader(http.StatusNoContent)
		return status, nil
	}
	if outputKind == reflect.Slice && vOutput.IsNil() {
		// empty lists are returned as [] rather than null
		output = []interface{}{}
	}
	b, err := json.Marshal(output)
	if err != nil {
		err = i18n.WrapError(ctx, err, i18n.MsgResponseMarshalError)
		log.L(ctx).Errorf("%s", err)
		return http.StatusInternalServerError, err
	}
	res.Header().Add("Content-Type", "application/json")
	res.WriteHeader(status)
	_, _ = res.Write(b)
	return status, nil
}

func (as *apiServer) apiWrapper(handler func(res http.ResponseWriter, req *http.Request) (status int, err error)) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {

		ctx, cancel := context.WithTimeout(req.Context(), as.apiTimeout)
		httpReqID := fftypes.ShortID()
		ctx = log.WithLogField(ctx, "httpreq", httpReqID)
		req = req.WithContext(ctx)
		defer cancel()

		l := log.L(ctx)
		l.Infof("--> %s %s", req.Method, req.URL.Path)
		startTime := time.Now()
		status, err := handler(res, req)
		durationMS := float64(time.Since(startTime)) / float64(time.Millisecond)
		if err != nil {

			// Handlers don't need to pick the status code for errors. The FF code of the
			// error is mapped to its status hint
			if statusHint, ok := i18n.StatusHint(err); ok {
				status = statusHint
			}

			if status != http.StatusRequestTimeout {
				select {
				case <-ctx.Done():
					l.Errorf("Request failed and context is closed. Returning %d (overriding %d): %s", http.StatusRequestTimeout, status, err)
					status = http.StatusRequestTimeout
					err = i18n.WrapError(ctx, err, i18n.MsgRequestTimeout, httpReqID, durationMS)
				default:
				}
			}

			if status < 300 {
				status = http.StatusInternalServerError
			}
			l.Infof("<-- %s %s [%d] (%.2fms): %s", req.Method, req.URL.Path, status, durationMS, err)
			res.Header().Add("Content-Type", "application/json")
			res.WriteHeader(status)
			_ = json.NewEncoder(res).Encode(&fftypes.RESTError{
				Error: err.Error(),
			})
		} else {
			l.Infof("<-- %s %s [%d] (%.2fms)", req.Method, req.URL.Path, status, durationMS)
		}
	}
}

func (as *apiServer) notFoundHandler(res http.ResponseWriter, req *http.Request) (status int, err error) {
	return http.StatusNotFound, i18n.NewError(req.Context(), i18n.Msg404NotFound)
}

func (as *apiServer) getPublicURL(conf config.Prefix, pathPrefix string) string {
	publicURL := conf.GetString(HTTPConfPublicURL)
	if publicURL == "" {
		proto := "https"
		if !conf.GetBool(HTTPConfTLSEnabled) {
			proto = "http"
		}
		publicURL = fmt.Sprintf("%s://%s:%s", proto, conf.GetString(HTTPConfAddress), conf.GetString(HTTPConfPort))
	}
	if pathPrefix != "" {
		publicURL += "/" + pathPrefix
	}
	return publicURL
}

func (as *apiServer) swaggerHandler(routes []*apispec.Route, url string) func(res http.ResponseWriter, req *http.Request) (status int, err error) {
	return func(res http.ResponseWriter, req *http.Request) (status int, err error) {
		vars := mux.Vars(req)
		doc := apispec.SwaggerGen(req.Context(), routes, url)
		if vars["ext"] == ".json" {
			res.Header().Add("Content-Type", "application/json")
			b, _ := json.Marshal(&doc)
			_, _ = res.Write(b)
		} else {
			res.Header().Add("Content-Type", "application/x-yaml")
			b, _ := yaml.Marshal(&doc)
			_, _ = res.Write(b)
		}
		return http.StatusOK, nil
	}
}

func (as *apiServer) createMuxRouter(ctx context.Context, o orchestrator.Orchestrator) *mux.Router {
	r := mux.NewRouter()
	if as.metricsEnabled {
		r.Use(metrics.GetRestServerInstrumentation().Middleware)
	}

	for _, route := range routes {
		if route.JSONHandler != nil {
			r.HandleFunc(fmt.Sprintf("/api/v1/%s", route.Path), as.routeHandler(o, route)).
				Methods(route.Method)
		}
	}
	publicURL := as.getPublicURL(apiConfigPrefix, "api/v1")
	r.HandleFunc(`/api/swagger{ext:\.yaml|\.json|}`, as.apiWrapper(as.swaggerHandler(routes, publicURL)))

	if ws := o.WebSockets(); ws != nil {
		wsPath := config.GetString(config.WebsocketPath)
		log.L(ctx).Debugf("WebSocket listeners served on %s", wsPath)
		r.HandleFunc(wsPath, ws.Handler())
	}

	r.NotFoundHandler = as.apiWrapper(as.notFoundHandler)
	return r
}

func (as *apiServer) createMetricsMuxRouter() *mux.Router {
	r := mux.NewRouter()

	r.Path(config.GetString(config.MetricsPath)).Handler(promhttp.InstrumentMetricHandler(metrics.Registry(),
		promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	return r
}
