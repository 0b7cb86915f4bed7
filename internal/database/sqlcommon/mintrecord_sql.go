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
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
)

var (
	mintRecordColumns = []string{
		"id",
		"buffer_name",
		"mint_seq",
		"owner",
		"asset",
		"descriptor",
		"metadata",
		"created",
	}
)

func (s *SQLCommon) insertMintRecordTx(ctx context.Context, tx *txWrapper, mint *fftypes.MintRecord) error {
	_, err := s.insertTx(ctx, tx,
		sq.Insert("mints").
			Columns(mintRecordColumns...).
			Values(
				mint.ID,
				mint.Buffer,
				mint.Sequence,
				mint.Owner,
				mint.Asset,
				mint.Descriptor,
				mint.Metadata,
				mint.Created,
			),
	)
	return err
}

func (s *SQLCommon) mintRecordResult(ctx context.Context, row *sql.Rows) (*fftypes.MintRecord, error) {
	mint := fftypes.MintRecord{
		Asset:      &fftypes.AssetRef{},
		Descriptor: &fftypes.PendingDescriptor{},
		Metadata:   &fftypes.DescriptiveRecord{},
	}
	err := row.Scan(
		&mint.ID,
		&mint.Buffer,
		&mint.Sequence,
		&mint.Owner,
		mint.Asset,
		mint.Descriptor,
		mint.Metadata,
		&mint.Created,
	)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, "mints")
	}
	return &mint, nil
}

func (s *SQLCommon) GetMintRecords(ctx context.Context, buffer string, skip, limit uint64) (records []*fftypes.MintRecord, err error) {

	query := sq.Select(mintRecordColumns...).
		From("mints").
		Where(sq.Eq{"buffer_name": buffer}).
		OrderBy("mint_seq DESC")
	rows, err := s.query(ctx, page(query, skip, limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records = []*fftypes.MintRecord{}
	for rows.Next() {
		mint, err := s.mintRecordResult(ctx, rows)
		if err != nil {
			return nil, err
		}
		records = append(records, mint)
	}

	return records, nil
}
