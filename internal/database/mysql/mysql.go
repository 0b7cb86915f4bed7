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

package mysql

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/database/sqlcommon"
	"github.com/kaleido-io/mintbuffer/pkg/database"

	"github.com/go-sql-driver/mysql"
)

type MySQL struct {
	sqlcommon.SQLCommon
}

func (my *MySQL) InitPrefix(prefix config.Prefix) {
	my.SQLCommon.InitPrefix(my, prefix)
}

func (my *MySQL) Init(ctx context.Context, prefix config.Prefix) error {
	capabilities := &database.Capabilities{SharedStorage: true}
	return my.SQLCommon.Init(ctx, my, prefix, capabilities)
}

func (my *MySQL) Name() string {
	return "mysql"
}

func (my *MySQL) MigrationsDir() string {
	return my.Name()
}

func (my *MySQL) Features() sqlcommon.SQLFeatures {
	features := sqlcommon.DefaultSQLProviderFeatures()
	features.PlaceholderFormat = sq.Question
	return features
}

func (my *MySQL) UpdateInsertForSequenceReturn(insert sq.InsertBuilder) (sq.InsertBuilder, bool) {
	// LastInsertId is supported by the driver
	return insert, false
}

func (my *MySQL) Open(url string) (*sql.DB, error) {
	return sql.Open(my.Name(), url)
}

func (my *MySQL) GetMigrationDriver(db *sql.DB) (migratedb.Driver, error) {
	return migratemysql.WithInstance(db, &migratemysql.Config{})
}

// ER_DUP_ENTRY
const mysqlDuplicateEntry = 1062

func (my *MySQL) IsUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
