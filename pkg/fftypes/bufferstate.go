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

import (
	"context"
	"database/sql/driver"
	"encoding/json"

	"github.com/kaleido-io/mintbuffer/internal/i18n"
)

// PendingDescriptor is a not-yet-minted record of the text and royalty data for one future asset.
// Minted is retained for compatibility with existing readers of the queue. Nothing sets it to true.
type PendingDescriptor struct {
	URI                  string `json:"uri"`
	Name                 string `json:"name"`
	Symbol               string `json:"symbol"`
	SellerFeeBasisPoints uint16 `json:"sellerFeeBasisPoints"`
	Minted               bool   `json:"minted"`
}

// PendingQueue is the FIFO of descriptors awaiting minting. Head is index zero.
// It is persisted inline with the buffer state as a JSON array.
type PendingQueue []*PendingDescriptor

// BufferState is the shared record for a single buffer instance
type BufferState struct {
	Name               string       `json:"name"`
	Authority          string       `json:"authority"`
	BufferSize         uint64       `json:"bufferSize"`
	MinBufferThreshold uint64       `json:"minBufferThreshold"`
	CollectionMint     string       `json:"collectionMint"`
	PendingNFTs        PendingQueue `json:"pendingNfts"`
	MintedCount        uint64       `json:"mintedCount"`
	Version            int64        `json:"version"`
	Created            *FFTime      `json:"created,omitempty"`
	Updated            *FFTime      `json:"updated,omitempty"`
}

// BufferInput is the payload to initialize a buffer
type BufferInput struct {
	Name               string `json:"name"`
	Authority          string `json:"authority"`
	BufferSize         uint64 `json:"bufferSize"`
	MinBufferThreshold uint64 `json:"minBufferThreshold"`
	CollectionMint     string `json:"collectionMint"`
}

// DescriptorInput is the payload of a producer call
type DescriptorInput struct {
	Caller               string `json:"caller"`
	MetadataURI          string `json:"metadataUri"`
	Name                 string `json:"name"`
	Symbol               string `json:"symbol"`
	SellerFeeBasisPoints uint16 `json:"sellerFeeBasisPoints"`
}

// MintInput is the payload of a consumer call. The metadata fields are applied to the
// minted asset, and are independent of the descriptor that is consumed.
type MintInput struct {
	Caller         string `json:"caller"`
	CreatorBump    uint8  `json:"creatorBump"`
	MetadataTitle  string `json:"metadataTitle"`
	MetadataSymbol string `json:"metadataSymbol"`
	MetadataURI    string `json:"metadataUri"`
}

// Copy returns a deep copy, so a staged mutation never leaks into the caller's state
func (bs *BufferState) Copy() *BufferState {
	c := *bs
	c.PendingNFTs = make(PendingQueue, len(bs.PendingNFTs))
	for i, d := range bs.PendingNFTs {
		dc := *d
		c.PendingNFTs[i] = &dc
	}
	return &c
}

// Remaining is the current queue length
func (bs *BufferState) Remaining() uint64 {
	return uint64(len(bs.PendingNFTs))
}

// Scan implements sql.Scanner
func (pq *PendingQueue) Scan(src interface{}) error {
	switch src := src.(type) {
	case nil:
		*pq = PendingQueue{}
		return nil

	case []byte:
		if len(src) == 0 {
			*pq = PendingQueue{}
			return nil
		}
		return json.Unmarshal(src, pq)

	case string:
		if src == "" {
			*pq = PendingQueue{}
			return nil
		}
		return json.Unmarshal([]byte(src), pq)

	default:
		return i18n.NewError(context.Background(), i18n.MsgScanFailed, src, pq)
	}

}

// Value implements sql.Valuer
func (pq PendingQueue) Value() (driver.Value, error) {
	if pq == nil {
		return "[]", nil
	}
	b, err := json.Marshal(pq)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
