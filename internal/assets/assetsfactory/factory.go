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

package assetsfactory

import (
	"context"

	"github.com/kaleido-io/mintbuffer/internal/assets/simulated"
	"github.com/kaleido-io/mintbuffer/internal/assets/solana"
	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/pkg/assets"
)

var plugins = []assets.Plugin{
	&solana.Solana{},
	&simulated.Simulated{},
}

var pluginsByName = map[string]func() assets.Plugin{
	(*solana.Solana)(nil).Name():       func() assets.Plugin { return &solana.Solana{} },
	(*simulated.Simulated)(nil).Name(): func() assets.Plugin { return &simulated.Simulated{} },
}

func InitPrefix(prefix config.Prefix) {
	for _, plugin := range plugins {
		plugin.InitPrefix(prefix.SubPrefix(plugin.Name()))
	}
}

func GetPlugin(ctx context.Context, pluginType string) (assets.Plugin, error) {
	plugin, ok := pluginsByName[pluginType]
	if !ok {
		return nil, i18n.NewError(ctx, i18n.MsgUnknownAssetsPlugin, pluginType)
	}
	return plugin(), nil
}
