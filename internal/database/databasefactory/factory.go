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

package databasefactory

import (
	"context"

	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/database/ddb"
	"github.com/kaleido-io/mintbuffer/internal/database/mysql"
	"github.com/kaleido-io/mintbuffer/internal/database/postgres"
	"github.com/kaleido-io/mintbuffer/internal/database/redis"
	"github.com/kaleido-io/mintbuffer/internal/database/sqlite"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/pkg/database"
)

var plugins = []database.Plugin{
	&postgres.Postgres{},
	&sqlite.SQLite{},
	&mysql.MySQL{},
	&redis.Redis{},
	&ddb.DynamoDB{},
}

var pluginsByName = map[string]func() database.Plugin{
	(*postgres.Postgres)(nil).Name(): func() database.Plugin { return &postgres.Postgres{} },
	(*sqlite.SQLite)(nil).Name():     func() database.Plugin { return &sqlite.SQLite{} },
	(*mysql.MySQL)(nil).Name():       func() database.Plugin { return &mysql.MySQL{} },
	(*redis.Redis)(nil).Name():       func() database.Plugin { return &redis.Redis{} },
	(*ddb.DynamoDB)(nil).Name():      func() database.Plugin { return &ddb.DynamoDB{} },
}

// InitPrefix registers the configuration of every plugin, under a sub-prefix named after the plugin
func InitPrefix(prefix config.Prefix) {
	for _, plugin := range plugins {
		plugin.InitPrefix(prefix.SubPrefix(plugin.Name()))
	}
}

func GetPlugin(ctx context.Context, pluginType string) (database.Plugin, error) {
	plugin, ok := pluginsByName[pluginType]
	if !ok {
		return nil, i18n.NewError(ctx, i18n.MsgUnknownDatabasePlugin, pluginType)
	}
	return plugin(), nil
}
