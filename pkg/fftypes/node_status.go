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

// NodeStatus is a summary of the node, and the plugins it was started with
type NodeStatus struct {
	Node        NodeStatusNode        `json:"node"`
	Plugins     NodeStatusPlugins     `json:"plugins"`
	Replenisher NodeStatusReplenisher `json:"replenisher"`
}

// NodeStatusNode is the information about the running process
type NodeStatusNode struct {
	Started *FFTime `json:"started,omitempty"`
}

// NodeStatusPlugins names the plugin selected for each concern
type NodeStatusPlugins struct {
	Database   string   `json:"database"`
	Assets     string   `json:"assets"`
	EventSinks []string `json:"eventSinks"`
}

// NodeStatusReplenisher reports the built-in producer, if it is running
type NodeStatusReplenisher struct {
	Enabled   bool   `json:"enabled"`
	Authority string `json:"authority,omitempty"`
	Received  uint64 `json:"received"`
	Dropped   uint64 `json:"dropped"`
}

// RESTError is the body of every error response from the API
type RESTError struct {
	Error string `json:"error"`
}
