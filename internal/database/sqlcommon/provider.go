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

package sqlcommon

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	migratedb "github.com/golang-migrate/migrate/v4/database"
)

// sequenceColumn is the autoincrement column on every table, and orders results newest first
const sequenceColumn = "seq"

// SQLFeatures are the switches that differ between databases
type SQLFeatures struct {
	PlaceholderFormat sq.PlaceholderFormat
}

func DefaultSQLProviderFeatures() SQLFeatures {
	return SQLFeatures{
		PlaceholderFormat: sq.Dollar,
	}
}

// Provider is implemented by each SQL database plugin, and supplies the driver specifics
// that the shared buffer and mint record queries need
type Provider interface {
	Name() string

	// MigrationsDir is the subdirectory of the migrations directory holding this database's scripts
	MigrationsDir() string

	Open(url string) (*sql.DB, error)

	GetMigrationDriver(*sql.DB) (migratedb.Driver, error)

	Features() SQLFeatures

	// UpdateInsertForSequenceReturn adapts an INSERT so the new seq can be read back. If runAsQuery
	// is returned the insert must be run as a query, as the driver has no LastInsertId
	UpdateInsertForSequenceReturn(insert sq.InsertBuilder) (updatedInsert sq.InsertBuilder, runAsQuery bool)

	// IsUniqueViolation detects the driver error for a unique index clash, such as two
	// buffers initialized with the same name at once
	IsUniqueViolation(err error) bool
}
