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

package awsconfig

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/internal/log"
)

const (
	// AWSConfigRegion is the region of the service
	AWSConfigRegion = "region"
	// AWSConfigEndpoint overrides the service endpoint, for localstack and similar
	AWSConfigEndpoint = "endpoint"
	// AWSConfigAccessKeyID selects static credentials, instead of the default credential chain
	AWSConfigAccessKeyID = "credentials.accessKeyID"
	// AWSConfigSecretAccessKey is the secret for static credentials
	AWSConfigSecretAccessKey = "credentials.secretAccessKey"
	// AWSConfigSessionToken is an optional session token for static credentials
	AWSConfigSessionToken = "credentials.sessionToken"
)

func InitPrefix(prefix config.Prefix) {
	prefix.AddKnownKey(AWSConfigRegion)
	prefix.AddKnownKey(AWSConfigEndpoint)
	prefix.AddKnownKey(AWSConfigAccessKeyID)
	prefix.AddKnownKey(AWSConfigSecretAccessKey)
	prefix.AddKnownKey(AWSConfigSessionToken)
}

// Load builds an SDK configuration from the default chain, overridden by any
// region and static credentials in the prefix
func Load(ctx context.Context, prefix config.Prefix) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region := prefix.GetString(AWSConfigRegion); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if keyID := prefix.GetString(AWSConfigAccessKeyID); keyID != "" {
		log.L(ctx).Debugf("Using static AWS credentials for key '%s'", keyID)
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			keyID,
			prefix.GetString(AWSConfigSecretAccessKey),
			prefix.GetString(AWSConfigSessionToken),
		)))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return cfg, i18n.WrapError(ctx, err, i18n.MsgConfigFailed, prefix.Resolve(AWSConfigRegion))
	}
	return cfg, nil
}

// Endpoint returns the configured endpoint override, or nil to use the SDK's resolver
func Endpoint(prefix config.Prefix) *string {
	if endpoint := prefix.GetString(AWSConfigEndpoint); endpoint != "" {
		return aws.String(endpoint)
	}
	return nil
}
