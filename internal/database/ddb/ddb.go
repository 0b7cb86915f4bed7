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

package ddb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kaleido-io/mintbuffer/internal/awsconfig"
	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/internal/log"
	"github.com/kaleido-io/mintbuffer/pkg/database"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
)

const (
	// DynamoDBConfTable is the table holding buffers and mint records. It needs a string
	// partition key "pk" and a string sort key "sk".
	DynamoDBConfTable = "table"

	bufferPKPrefix = "BUFFER#"
	mintPKPrefix   = "MINT#"
	stateSK        = "STATE"
)

// API is the part of the DynamoDB client the plugin uses
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoDB keeps each buffer state in one item, replaced with a conditional write on the version.
// A mint commit writes the state and the mint record in a single transaction.
type DynamoDB struct {
	client API
	table  string
}

type bufferItem struct {
	PK                 string `dynamodbav:"pk"`
	SK                 string `dynamodbav:"sk"`
	Name               string `dynamodbav:"name"`
	Authority          string `dynamodbav:"authority"`
	BufferSize         uint64 `dynamodbav:"bufferSize"`
	MinBufferThreshold uint64 `dynamodbav:"minBufferThreshold"`
	CollectionMint     string `dynamodbav:"collectionMint"`
	PendingNFTs        string `dynamodbav:"pendingNfts"`
	MintedCount        uint64 `dynamodbav:"mintedCount"`
	Version            int64  `dynamodbav:"version"`
	Created            int64  `dynamodbav:"created"`
	Updated            int64  `dynamodbav:"updated"`
}

type mintItem struct {
	PK     string `dynamodbav:"pk"`
	SK     string `dynamodbav:"sk"`
	Record string `dynamodbav:"record"`
}

func (d *DynamoDB) Name() string {
	return "dynamodb"
}

func (d *DynamoDB) InitPrefix(prefix config.Prefix) {
	prefix.AddKnownKey(DynamoDBConfTable, "mintbuffer")
	awsconfig.InitPrefix(prefix)
}

func (d *DynamoDB) Init(ctx context.Context, prefix config.Prefix) error {
	d.table = prefix.GetString(DynamoDBConfTable)
	if d.table == "" {
		return i18n.NewError(ctx, i18n.MsgMissingPluginConfig, DynamoDBConfTable, d.Name())
	}
	if d.client == nil {
		cfg, err := awsconfig.Load(ctx, prefix)
		if err != nil {
			return err
		}
		endpoint := awsconfig.Endpoint(prefix)
		d.client = dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
			if endpoint != nil {
				o.BaseEndpoint = endpoint
			}
		})
	}
	log.L(ctx).Infof("DynamoDB database plugin using table '%s'", d.table)
	return nil
}

func (d *DynamoDB) Capabilities() *database.Capabilities {
	return &database.Capabilities{SharedStorage: true}
}

func (d *DynamoDB) Close() {}

func nanos(t *fftypes.FFTime) int64 {
	if t == nil {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) *fftypes.FFTime {
	if n == 0 {
		return nil
	}
	return fftypes.UnixTime(n)
}

func bufferKey(name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: bufferPKPrefix + name},
		"sk": &types.AttributeValueMemberS{Value: stateSK},
	}
}

func (d *DynamoDB) marshalBufferState(ctx context.Context, state *fftypes.BufferState, version int64) (map[string]types.AttributeValue, error) {
	pending, err := json.Marshal(state.PendingNFTs)
	if err == nil {
		var item map[string]types.AttributeValue
		item, err = attributevalue.MarshalMap(&bufferItem{
			PK:                 bufferPKPrefix + state.Name,
			SK:                 stateSK,
			Name:               state.Name,
			Authority:          state.Authority,
			BufferSize:         state.BufferSize,
			MinBufferThreshold: state.MinBufferThreshold,
			CollectionMint:     state.CollectionMint,
			PendingNFTs:        string(pending),
			MintedCount:        state.MintedCount,
			Version:            version,
			Created:            nanos(state.Created),
			Updated:            nanos(state.Updated),
		})
		if err == nil {
			return item, nil
		}
	}
	return nil, i18n.WrapError(ctx, err, i18n.MsgDBSerializeFailed, "buffer")
}

func (d *DynamoDB) unmarshalBufferState(ctx context.Context, av map[string]types.AttributeValue) (*fftypes.BufferState, error) {
	var item bufferItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, d.table)
	}
	state := &fftypes.BufferState{
		Name:               item.Name,
		Authority:          item.Authority,
		BufferSize:         item.BufferSize,
		MinBufferThreshold: item.MinBufferThreshold,
		CollectionMint:     item.CollectionMint,
		MintedCount:        item.MintedCount,
		Version:            item.Version,
		Created:            fromNanos(item.Created),
		Updated:            fromNanos(item.Updated),
	}
	if err := state.PendingNFTs.Scan(item.PendingNFTs); err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, d.table)
	}
	return state, nil
}

func (d *DynamoDB) InsertBufferState(ctx context.Context, state *fftypes.BufferState) error {
	item, err := d.marshalBufferState(ctx, state, state.Version)
	if err != nil {
		return err
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(pk)"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return database.DuplicateKey
	}
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgDynamoOpFailed)
	}
	return nil
}

func (d *DynamoDB) GetBufferState(ctx context.Context, name string) (*fftypes.BufferState, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.table),
		Key:            bufferKey(name),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgDynamoOpFailed)
	}
	if len(out.Item) == 0 {
		log.L(ctx).Debugf("Buffer '%s' not found", name)
		return nil, nil
	}
	return d.unmarshalBufferState(ctx, out.Item)
}

func (d *DynamoDB) GetBufferStates(ctx context.Context, skip, limit uint64) ([]*fftypes.BufferState, error) {
	states := []*fftypes.BufferState{}
	var startKey map[string]types.AttributeValue
	for {
		out, err := d.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(d.table),
			FilterExpression:  aws.String("sk = :sk"),
			ExclusiveStartKey: startKey,
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":sk": &types.AttributeValueMemberS{Value: stateSK},
			},
		})
		if err != nil {
			return nil, i18n.WrapError(ctx, err, i18n.MsgDynamoOpFailed)
		}
		for _, av := range out.Items {
			state, err := d.unmarshalBufferState(ctx, av)
			if err != nil {
				return nil, err
			}
			states = append(states, state)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Name < states[j].Name })
	return page(states, skip, limit), nil
}

func (d *DynamoDB) CommitBufferState(ctx context.Context, state *fftypes.BufferState, expectedVersion int64, mint *fftypes.MintRecord) error {
	item, err := d.marshalBufferState(ctx, state, expectedVersion+1)
	if err != nil {
		return err
	}
	condition := aws.String("#v = :v")
	names := map[string]string{"#v": "version"}
	values := map[string]types.AttributeValue{
		":v": &types.AttributeValueMemberN{Value: strconv.FormatInt(expectedVersion, 10)},
	}

	if mint == nil {
		_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                 aws.String(d.table),
			Item:                      item,
			ConditionExpression:       condition,
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
		})
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			log.L(ctx).Debugf("Buffer '%s' is no longer at version %d", state.Name, expectedVersion)
			return database.VersionConflict
		}
	} else {
		var mintAV map[string]types.AttributeValue
		if mintAV, err = d.marshalMintRecord(ctx, mint); err != nil {
			return err
		}
		_, err = d.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				{Put: &types.Put{
					TableName:                 aws.String(d.table),
					Item:                      item,
					ConditionExpression:       condition,
					ExpressionAttributeNames:  names,
					ExpressionAttributeValues: values,
				}},
				{Put: &types.Put{
					TableName:           aws.String(d.table),
					Item:                mintAV,
					ConditionExpression: aws.String("attribute_not_exists(pk)"),
				}},
			},
		})
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) && len(tce.CancellationReasons) > 0 &&
			aws.ToString(tce.CancellationReasons[0].Code) == "ConditionalCheckFailed" {
			log.L(ctx).Debugf("Buffer '%s' is no longer at version %d", state.Name, expectedVersion)
			return database.VersionConflict
		}
	}
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgDynamoOpFailed)
	}
	state.Version = expectedVersion + 1
	return nil
}

func (d *DynamoDB) marshalMintRecord(ctx context.Context, mint *fftypes.MintRecord) (map[string]types.AttributeValue, error) {
	record, err := json.Marshal(mint)
	if err == nil {
		var item map[string]types.AttributeValue
		item, err = attributevalue.MarshalMap(&mintItem{
			PK: mintPKPrefix + mint.Buffer,
			// Zero padded, so the sort key order is the sequence order
			SK:     fmt.Sprintf("%020d", mint.Sequence),
			Record: string(record),
		})
		if err == nil {
			return item, nil
		}
	}
	return nil, i18n.WrapError(ctx, err, i18n.MsgDBSerializeFailed, "mint")
}

func (d *DynamoDB) GetMintRecords(ctx context.Context, buffer string, skip, limit uint64) ([]*fftypes.MintRecord, error) {
	records := []*fftypes.MintRecord{}
	var startKey map[string]types.AttributeValue
	for {
		out, err := d.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(d.table),
			KeyConditionExpression: aws.String("pk = :pk"),
			ScanIndexForward:       aws.Bool(false),
			ExclusiveStartKey:      startKey,
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: mintPKPrefix + buffer},
			},
		})
		if err != nil {
			return nil, i18n.WrapError(ctx, err, i18n.MsgDynamoOpFailed)
		}
		for _, av := range out.Items {
			var item mintItem
			var record fftypes.MintRecord
			err := attributevalue.UnmarshalMap(av, &item)
			if err == nil {
				err = json.Unmarshal([]byte(item.Record), &record)
			}
			if err != nil {
				return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, d.table)
			}
			records = append(records, &record)
		}
		if len(out.LastEvaluatedKey) == 0 || (limit > 0 && uint64(len(records)) >= skip+limit) {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return page(records, skip, limit), nil
}

func page[T any](items []T, skip, limit uint64) []T {
	if skip >= uint64(len(items)) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < uint64(len(items)) {
		items = items[:limit]
	}
	return items
}
