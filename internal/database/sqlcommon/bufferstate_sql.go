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
	"github.com/kaleido-io/mintbuffer/internal/log"
	"github.com/kaleido-io/mintbuffer/pkg/database"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
)

var (
	bufferStateColumns = []string{
		"name",
		"authority",
		"buffer_size",
		"min_threshold",
		"collection_mint",
		"pending_nfts",
		"minted_count",
		"version",
		"created",
		"updated",
	}
)

func (s *SQLCommon) InsertBufferState(ctx context.Context, state *fftypes.BufferState) (err error) {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	// Do a select within the transaction to detemine if the name is already taken
	bufferRows, err := s.queryTx(ctx, tx,
		sq.Select("name").
			From("buffers").
			Where(sq.Eq{"name": state.Name}),
	)
	if err != nil {
		return err
	}
	existing := bufferRows.Next()
	bufferRows.Close()
	if existing {
		return database.DuplicateKey
	}

	if _, err = s.insertTx(ctx, tx,
		sq.Insert("buffers").
			Columns(bufferStateColumns...).
			Values(
				state.Name,
				state.Authority,
				state.BufferSize,
				state.MinBufferThreshold,
				state.CollectionMint,
				state.PendingNFTs,
				state.MintedCount,
				state.Version,
				state.Created,
				state.Updated,
			),
	); err != nil {
		return err
	}

	return s.commitTx(ctx, tx, autoCommit)
}

func (s *SQLCommon) bufferStateResult(ctx context.Context, row *sql.Rows) (*fftypes.BufferState, error) {
	var state fftypes.BufferState
	err := row.Scan(
		&state.Name,
		&state.Authority,
		&state.BufferSize,
		&state.MinBufferThreshold,
		&state.CollectionMint,
		&state.PendingNFTs,
		&state.MintedCount,
		&state.Version,
		&state.Created,
		&state.Updated,
	)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, "buffers")
	}
	return &state, nil
}

func (s *SQLCommon) GetBufferState(ctx context.Context, name string) (state *fftypes.BufferState, err error) {

	rows, err := s.query(ctx,
		sq.Select(bufferStateColumns...).
			From("buffers").
			Where(sq.Eq{"name": name}),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		log.L(ctx).Debugf("Buffer '%s' not found", name)
		return nil, nil
	}

	return s.bufferStateResult(ctx, rows)
}

func (s *SQLCommon) GetBufferStates(ctx context.Context, skip, limit uint64) (states []*fftypes.BufferState, err error) {

	query := sq.Select(bufferStateColumns...).
		From("buffers").
		OrderBy("name")
	rows, err := s.query(ctx, page(query, skip, limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states = []*fftypes.BufferState{}
	for rows.Next() {
		state, err := s.bufferStateResult(ctx, rows)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}

	return states, nil
}

func (s *SQLCommon) CommitBufferState(ctx context.Context, state *fftypes.BufferState, expectedVersion int64, mint *fftypes.MintRecord) (err error) {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	updated, err := s.updateTx(ctx, tx,
		sq.Update("buffers").
			Set("pending_nfts", state.PendingNFTs).
			Set("minted_count", state.MintedCount).
			Set("version", expectedVersion+1).
			Set("updated", state.Updated).
			Where(sq.Eq{
				"name":    state.Name,
				"version": expectedVersion,
			}),
	)
	if err != nil {
		return err
	}
	if updated < 1 {
		log.L(ctx).Debugf("Buffer '%s' is no longer at version %d", state.Name, expectedVersion)
		return database.VersionConflict
	}

	if mint != nil {
		if err = s.insertMintRecordTx(ctx, tx, mint); err != nil {
			return err
		}
	}

	if err = s.commitTx(ctx, tx, autoCommit); err != nil {
		return err
	}
	state.Version = expectedVersion + 1
	return nil
}
