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

// EventType indicates what the event means
type EventType string

const (
	// EventTypeReplenishRequired is raised after a mint leaves the queue at or below its threshold
	EventTypeReplenishRequired EventType = "ReplenishRequired"
)

// ReplenishEvent is the low-watermark signal. It is a notification only, and nothing waits for it to be consumed.
type ReplenishEvent struct {
	ID                *UUID     `json:"id"`
	Type              EventType `json:"type"`
	Buffer            string    `json:"buffer"`
	CurrentBufferSize uint64    `json:"currentBufferSize"`
	RequiredSize      uint64    `json:"requiredSize"`
	Created           *FFTime   `json:"created"`
}

func NewReplenishEvent(buffer string, current, required uint64) *ReplenishEvent {
	return &ReplenishEvent{
		ID:                NewUUID(),
		Type:              EventTypeReplenishRequired,
		Buffer:            buffer,
		CurrentBufferSize: current,
		RequiredSize:      required,
		Created:           Now(),
	}
}

// Shortfall is how many descriptors the producer needs to add to refill the buffer
func (e *ReplenishEvent) Shortfall() uint64 {
	if e.CurrentBufferSize >= e.RequiredSize {
		return 0
	}
	return e.RequiredSize - e.CurrentBufferSize
}
