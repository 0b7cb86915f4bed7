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

// AssetRef identifies a unique asset created by the issuance collaborator
type AssetRef struct {
	ID           string `json:"id"`
	Owner        string `json:"owner"`
	TokenAccount string `json:"tokenAccount,omitempty"`
	Transaction  string `json:"transaction,omitempty"`
}

// Creator is a creator entry on the descriptive record of an asset
type Creator struct {
	Identity string `json:"identity"`
	Verified bool   `json:"verified"`
	Share    uint8  `json:"share"`
}

// CollectionRef associates an asset with a collection
type CollectionRef struct {
	ID       string `json:"id"`
	Verified bool   `json:"verified"`
}

// DescriptiveRecord is the durable human-readable metadata attached to a minted asset
type DescriptiveRecord struct {
	Name                 string         `json:"name"`
	Symbol               string         `json:"symbol"`
	URI                  string         `json:"uri"`
	Creators             []*Creator     `json:"creators"`
	SellerFeeBasisPoints uint16         `json:"sellerFeeBasisPoints"`
	Collection           *CollectionRef `json:"collection,omitempty"`
	Transaction          string         `json:"transaction,omitempty"`
}

// MintRecord is the audit entry written atomically with the buffer state on every successful mint
type MintRecord struct {
	ID         *UUID              `json:"id"`
	Buffer     string             `json:"buffer"`
	Sequence   uint64             `json:"sequence"`
	Owner      string             `json:"owner"`
	Asset      *AssetRef          `json:"asset"`
	Descriptor *PendingDescriptor `json:"descriptor"`
	Metadata   *DescriptiveRecord `json:"metadata"`
	Created    *FFTime            `json:"created"`
}

func scanJSON(src interface{}, target interface{}) error {
	switch src := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(src) == 0 {
			return nil
		}
		return json.Unmarshal(src, target)
	case string:
		if src == "" {
			return nil
		}
		return json.Unmarshal([]byte(src), target)
	default:
		return i18n.NewError(context.Background(), i18n.MsgScanFailed, src, target)
	}
}

func valueJSON(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (a *AssetRef) Scan(src interface{}) error { return scanJSON(src, a) }

// Value implements sql.Valuer
func (a *AssetRef) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return valueJSON(a)
}

// Scan implements sql.Scanner
func (d *PendingDescriptor) Scan(src interface{}) error { return scanJSON(src, d) }

// Value implements sql.Valuer
func (d *PendingDescriptor) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return valueJSON(d)
}

// Scan implements sql.Scanner
func (r *DescriptiveRecord) Scan(src interface{}) error { return scanJSON(src, r) }

// Value implements sql.Valuer
func (r *DescriptiveRecord) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return valueJSON(r)
}
