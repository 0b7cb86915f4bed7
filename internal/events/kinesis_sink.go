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

package events

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/kaleido-io/mintbuffer/internal/awsconfig"
	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/internal/log"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
)

// KinesisAPI is the part of the Kinesis client the sink uses
type KinesisAPI interface {
	PutRecord(ctx context.Context, params *kinesis.PutRecordInput, optFns ...func(*kinesis.Options)) (*kinesis.PutRecordOutput, error)
}

// KinesisOption is used to override defaults when creating a new Kinesis sink
type KinesisOption func(*KinesisSink)

// WithKinesisClient overrides the default client
func WithKinesisClient(client KinesisAPI) KinesisOption {
	return func(s *KinesisSink) {
		s.client = client
	}
}

// KinesisSink puts each event on a stream, partitioned by buffer name so the events of
// one buffer stay ordered within a shard
type KinesisSink struct {
	stream string
	client KinesisAPI
}

// NewKinesisSink builds a sink for the stream. Without a client option the SDK client is
// built from the AWS settings under prefix.
func NewKinesisSink(ctx context.Context, prefix config.Prefix, stream string, opts ...KinesisOption) (*KinesisSink, error) {
	if stream == "" {
		return nil, i18n.NewError(ctx, i18n.MsgMissingPluginConfig, "stream", "kinesis")
	}
	s := &KinesisSink{
		stream: stream,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		cfg, err := awsconfig.Load(ctx, prefix)
		if err != nil {
			return nil, err
		}
		endpoint := awsconfig.Endpoint(prefix)
		s.client = kinesis.NewFromConfig(cfg, func(o *kinesis.Options) {
			if endpoint != nil {
				o.BaseEndpoint = endpoint
			}
		})
	}
	log.L(ctx).Infof("Replenishment events will be put on Kinesis stream '%s'", stream)
	return s, nil
}

func (s *KinesisSink) Name() string { return "kinesis" }

func (s *KinesisSink) Deliver(ctx context.Context, event *fftypes.ReplenishEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgDBSerializeFailed, "event")
	}
	out, err := s.client.PutRecord(ctx, &kinesis.PutRecordInput{
		StreamName:   aws.String(s.stream),
		PartitionKey: aws.String(event.Buffer),
		Data:         payload,
	})
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgKinesisPutFailed, s.stream)
	}
	log.L(ctx).Debugf("Event %s put on shard %s seq=%s", event.ID, aws.ToString(out.ShardId), aws.ToString(out.SequenceNumber))
	return nil
}

func (s *KinesisSink) Close() {}
