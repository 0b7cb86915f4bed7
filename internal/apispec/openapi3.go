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

package apispec

import (
	"context"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
)

const (
	jsonContent    = "application/json"
	errorSchemaRef = "#/components/schemas/RESTError"
)

// SwaggerGen builds the OpenAPI document for a set of routes, served relative to url
func SwaggerGen(ctx context.Context, routes []*Route, url string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.2",
		Servers: openapi3.Servers{{URL: url}},
		Info: &openapi3.Info{
			Title:       "mintbuffer",
			Version:     "1.0",
			Description: "Copyright © 2021 Kaleido, Inc.",
		},
		Paths: openapi3.Paths{},
		Components: openapi3.Components{
			Schemas: openapi3.Schemas{
				"RESTError": schemaFor(&fftypes.RESTError{}),
			},
		},
	}
	for _, route := range routes {
		path := "/" + strings.TrimPrefix(route.Path, "/")
		pi := doc.Paths[path]
		if pi == nil {
			pi = &openapi3.PathItem{}
			doc.Paths[path] = pi
		}
		pi.SetOperation(route.Method, buildOperation(ctx, route, path))
	}
	return doc
}

func schemaFor(v interface{}) *openapi3.SchemaRef {
	schemaRef, _, _ := openapi3gen.NewSchemaRefForValue(v)
	return schemaRef
}

func jsonBody(v interface{}) openapi3.Content {
	return openapi3.Content{
		jsonContent: &openapi3.MediaType{Schema: schemaFor(v)},
	}
}

// tagFor groups operations by the resource at the start of the path
func tagFor(path string) string {
	return strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)[0]
}

func buildOperation(ctx context.Context, route *Route, path string) *openapi3.Operation {
	errDesc := i18n.Expand(ctx, i18n.MsgErrorResponse)
	op := &openapi3.Operation{
		OperationID: route.Name,
		Description: i18n.Expand(ctx, route.Description),
		Tags:        []string{tagFor(path)},
		Responses: openapi3.Responses{
			"default": &openapi3.ResponseRef{
				Value: &openapi3.Response{
					Description: &errDesc,
					Content: openapi3.Content{
						jsonContent: &openapi3.MediaType{Schema: &openapi3.SchemaRef{Ref: errorSchemaRef}},
					},
				},
			},
		},
	}

	if route.JSONInputValue != nil {
		if input := route.JSONInputValue(); input != nil {
			op.RequestBody = &openapi3.RequestBodyRef{
				Value: &openapi3.RequestBody{Required: true, Content: jsonBody(input)},
			}
		}
	}

	if route.JSONOutputValue != nil {
		if output := route.JSONOutputValue(); output != nil {
			desc := i18n.Expand(ctx, i18n.MsgSuccessResponse)
			op.Responses[strconv.Itoa(route.JSONOutputCode)] = &openapi3.ResponseRef{
				Value: &openapi3.Response{Description: &desc, Content: jsonBody(output)},
			}
		}
	}

	for _, pp := range route.PathParams {
		op.Parameters = append(op.Parameters, param(ctx, openapi3.ParameterInPath, pp.Name, pp.Description, false))
	}
	for _, qp := range route.QueryParams {
		op.Parameters = append(op.Parameters, param(ctx, openapi3.ParameterInQuery, qp.Name, qp.Description, qp.IsInteger))
	}
	return op
}

func param(ctx context.Context, in, name string, description i18n.MessageKey, isInteger bool) *openapi3.ParameterRef {
	schema := openapi3.NewStringSchema()
	if isInteger {
		schema = openapi3.NewIntegerSchema().WithMin(0)
	}
	return &openapi3.ParameterRef{
		Value: &openapi3.Parameter{
			In:          in,
			Name:        name,
			Required:    in == openapi3.ParameterInPath,
			Description: i18n.Expand(ctx, description),
			Schema:      schema.NewRef(),
		},
	}
}
