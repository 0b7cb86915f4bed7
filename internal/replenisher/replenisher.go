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

package replenisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/events"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/internal/log"
	"github.com/kaleido-io/mintbuffer/internal/restclient"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
	"github.com/patrickmn/go-cache"
	"github.com/xeipuuv/gojsonschema"
)

// SubscriberID is the name the replenisher registers on the event bus
const SubscriberID = "replenisher"

var imageServiceConfig = config.NewPluginConfig("replenisher.imageService")

func InitConfig() {
	restclient.InitPrefix(imageServiceConfig)
}

const approvedNFTsSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "metadataUri", "name"],
		"properties": {
			"id": {"type": ["string", "integer"]},
			"metadataUri": {"type": "string", "minLength": 1},
			"name": {"type": "string"},
			"price": {"type": ["integer", "null"], "minimum": 0, "maximum": 65535}
		}
	}
}`

// ApprovedNFT is an entry in the image service's pool of approved artwork
type ApprovedNFT struct {
	ID          interface{} `json:"id"`
	MetadataURI string      `json:"metadataUri"`
	Name        string      `json:"name"`
	Price       *int64      `json:"price,omitempty"`
}

// Producer is the part of the buffer manager the replenisher drives
type Producer interface {
	GetBufferState(ctx context.Context, name string) (*fftypes.BufferState, error)
	AddToBuffer(ctx context.Context, name string, input *fftypes.DescriptorInput) (*fftypes.BufferState, error)
}

// Replenisher listens for low-watermark signals on buffers whose authority it holds, and
// refills them from the image service
type Replenisher interface {
	Start() error
	Close()
}

type replenisher struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	bus         events.Bus
	producer    Producer
	client      *resty.Client
	schema      *gojsonschema.Schema
	inflight    *cache.Cache
	authority   string
	symbol      string
	defaultFee  uint16
	queueLength int
	wg          sync.WaitGroup
}

func NewReplenisher(ctx context.Context, bus events.Bus, producer Producer) (Replenisher, error) {
	if bus == nil || producer == nil {
		return nil, i18n.NewError(ctx, i18n.MsgInitializationNilDepError, "replenisher")
	}
	authority := config.GetString(config.ReplenisherAuthority)
	if err := fftypes.ValidateIdentity(ctx, authority, "authority", config.GetBool(config.BufferIdentityStrict)); err != nil {
		return nil, err
	}
	if imageServiceConfig.GetString(restclient.HTTPConfigURL) == "" {
		return nil, i18n.NewError(ctx, i18n.MsgMissingPluginConfig, imageServiceConfig.Resolve(restclient.HTTPConfigURL), "replenisher")
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(approvedNFTsSchema))
	if err != nil {
		return nil, err
	}

	ctx = log.WithLogField(ctx, "role", SubscriberID)
	ctx, cancelCtx := context.WithCancel(ctx)
	ttl := config.GetDuration(config.ReplenisherInflightTimeout)
	return &replenisher{
		ctx:         ctx,
		cancelCtx:   cancelCtx,
		bus:         bus,
		producer:    producer,
		client:      restclient.New(ctx, imageServiceConfig),
		schema:      schema,
		inflight:    cache.New(ttl, ttl),
		authority:   authority,
		symbol:      config.GetString(config.ReplenisherSymbol),
		defaultFee:  uint16(config.GetUint(config.ReplenisherDefaultFee)),
		queueLength: config.GetInt(config.ReplenisherQueueLength),
	}, nil
}

func (r *replenisher) Start() error {
	ch := make(chan *fftypes.ReplenishEvent, r.queueLength)
	if err := r.bus.Subscribe(SubscriberID, ch); err != nil {
		return err
	}
	r.wg.Add(1)
	go r.eventLoop(ch)
	log.L(r.ctx).Infof("Replenisher started for authority %s", r.authority)
	return nil
}

func (r *replenisher) eventLoop(ch <-chan *fftypes.ReplenishEvent) {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			log.L(r.ctx).Debugf("Replenisher exiting")
			return
		case event := <-ch:
			r.dispatch(event)
		}
	}
}

// dispatch starts a replenishment unless one is already running for the buffer. The in-flight
// entry expires, so a replenishment that never returns only holds the buffer for the timeout.
func (r *replenisher) dispatch(event *fftypes.ReplenishEvent) bool {
	if err := r.inflight.Add(event.Buffer, event.ID.String(), cache.DefaultExpiration); err != nil {
		log.L(r.ctx).Debugf("Replenishment already in flight for buffer '%s', ignoring event %s", event.Buffer, event.ID)
		return false
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.inflight.Delete(event.Buffer)
		r.replenish(log.WithLogField(r.ctx, "buffer", event.Buffer), event)
	}()
	return true
}

// replenish returns the number of descriptors added to the buffer
func (r *replenisher) replenish(ctx context.Context, event *fftypes.ReplenishEvent) int {
	l := log.L(ctx)
	state, err := r.producer.GetBufferState(ctx, event.Buffer)
	if err != nil {
		l.Errorf("Failed to read buffer for event %s: %s", event.ID, err)
		return 0
	}
	if state.Authority != r.authority {
		l.Debugf("Buffer authority %s is not held by this replenisher", state.Authority)
		return 0
	}

	count := event.Shortfall()
	if free := state.BufferSize - state.Remaining(); count > free {
		count = free
	}
	if count == 0 {
		l.Debugf("No space to replenish for event %s", event.ID)
		return 0
	}

	nfts, err := r.fetchApproved(ctx, count)
	if err != nil {
		l.Errorf("Failed to fetch %d approved NFTs: %s", count, err)
		return 0
	}

	added := 0
	for _, nft := range nfts {
		fee := r.defaultFee
		if nft.Price != nil && *nft.Price > 0 {
			fee = uint16(*nft.Price)
		}
		_, err := r.producer.AddToBuffer(ctx, event.Buffer, &fftypes.DescriptorInput{
			Caller:               r.authority,
			MetadataURI:          nft.MetadataURI,
			Name:                 nft.Name,
			Symbol:               r.symbol,
			SellerFeeBasisPoints: fee,
		})
		if err != nil {
			l.Errorf("Failed to add NFT %v to buffer: %s", nft.ID, err)
			continue
		}
		added++
		if err := r.markInBuffer(ctx, nft); err != nil {
			l.Errorf("Failed to update status of NFT %v: %s", nft.ID, err)
		}
	}
	l.Infof("Replenished %d/%d descriptors", added, count)
	return added
}

func (r *replenisher) fetchApproved(ctx context.Context, count uint64) ([]*ApprovedNFT, error) {
	res, err := r.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/api/events/current/nfts/random/%d", count))
	if err != nil || !res.IsSuccess() {
		return nil, restclient.WrapRestErr(ctx, res, err, i18n.MsgRESTCallError)
	}

	result, err := r.schema.Validate(gojsonschema.NewBytesLoader(res.Body()))
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgImageServicePayloadInvalid, err)
	}
	if !result.Valid() {
		errStrings := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			errStrings[i] = e.String()
		}
		return nil, i18n.NewError(ctx, i18n.MsgImageServicePayloadInvalid, strings.Join(errStrings, ","))
	}

	var nfts []*ApprovedNFT
	d := json.NewDecoder(bytes.NewReader(res.Body()))
	d.UseNumber()
	if err := d.Decode(&nfts); err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgImageServicePayloadInvalid, err)
	}
	return nfts, nil
}

func (r *replenisher) markInBuffer(ctx context.Context, nft *ApprovedNFT) error {
	res, err := r.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"status": "in_buffer"}).
		Post(fmt.Sprintf("/api/nfts/%s/status", url.PathEscape(fmt.Sprint(nft.ID))))
	if err != nil || !res.IsSuccess() {
		return restclient.WrapRestErr(ctx, res, err, i18n.MsgRESTCallError)
	}
	return nil
}

func (r *replenisher) Close() {
	r.cancelCtx()
	_ = r.bus.Unsubscribe(SubscriberID)
	r.wg.Wait()
}
