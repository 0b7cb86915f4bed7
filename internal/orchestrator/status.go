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

package orchestrator

import (
	"context"

	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/replenisher"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
)

func (o *orchestrator) GetStatus(ctx context.Context) (*fftypes.NodeStatus, error) {
	status := &fftypes.NodeStatus{
		Node: fftypes.NodeStatusNode{
			Started: o.started,
		},
		Plugins: fftypes.NodeStatusPlugins{
			Database:   o.database.Name(),
			Assets:     o.assets.Name(),
			EventSinks: make([]string, 0, len(o.sinks)),
		},
	}
	for _, s := range o.sinks {
		status.Plugins.EventSinks = append(status.Plugins.EventSinks, s.Name())
	}

	if o.replenisher != nil {
		status.Replenisher.Enabled = true
		status.Replenisher.Authority = config.GetString(config.ReplenisherAuthority)
		stats, err := o.events.Bus().Stats(replenisher.SubscriberID)
		if err != nil {
			return nil, err
		}
		status.Replenisher.Received = stats.Sent
		status.Replenisher.Dropped = stats.Dropped
	}
	return status, nil
}
