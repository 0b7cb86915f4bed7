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

package e2e

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	authority      = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	collectionMint = "So11111111111111111111111111111111111111112"
	minter         = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
)

// MintBufferE2ETestSuite drives a running node, located by MINTBUFFER_URL
type MintBufferE2ETestSuite struct {
	suite.Suite
	baseURL    string
	client     *resty.Client
	bufferName string
}

func TestMintBufferE2E(t *testing.T) {
	suite.Run(t, new(MintBufferE2ETestSuite))
}

func (suite *MintBufferE2ETestSuite) SetupSuite() {
	suite.baseURL = os.Getenv("MINTBUFFER_URL")
	if suite.baseURL == "" {
		suite.T().Skip("MINTBUFFER_URL not set")
	}
	suite.client = resty.New().
		SetHostURL(strings.TrimSuffix(suite.baseURL, "/") + "/api/v1").
		SetTimeout(30 * time.Second)
	pollForUp(suite.T(), suite.client)
}

func (suite *MintBufferE2ETestSuite) SetupTest() {
	suite.bufferName = fmt.Sprintf("e2e_%d", time.Now().UnixNano())
}

func pollForUp(t *testing.T, client *resty.Client) {
	var resp *resty.Response
	var err error
	for i := 0; i < 12; i++ {
		resp, err = client.R().SetResult(&fftypes.NodeStatus{}).Get("/status")
		if err == nil && resp.StatusCode() == http.StatusOK {
			break
		}
		time.Sleep(5 * time.Second)
	}
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
}

func (suite *MintBufferE2ETestSuite) initialize(size, threshold uint64) *fftypes.BufferState {
	var state fftypes.BufferState
	resp, err := suite.client.R().
		SetBody(&fftypes.BufferInput{
			Name:               suite.bufferName,
			Authority:          authority,
			BufferSize:         size,
			MinBufferThreshold: threshold,
			CollectionMint:     collectionMint,
		}).
		SetResult(&state).
		Post("/buffers")
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), http.StatusCreated, resp.StatusCode(), resp.String())
	return &state
}

func (suite *MintBufferE2ETestSuite) add(caller string, i int) *resty.Response {
	resp, err := suite.client.R().
		SetBody(&fftypes.DescriptorInput{
			Caller:               caller,
			MetadataURI:          fmt.Sprintf("https://example.com/nft/%d.json", i),
			Name:                 fmt.Sprintf("NFT %d", i),
			Symbol:               "E2E",
			SellerFeeBasisPoints: 500,
		}).
		Post(fmt.Sprintf("/buffers/%s/pending", suite.bufferName))
	require.NoError(suite.T(), err)
	return resp
}

func (suite *MintBufferE2ETestSuite) mint() (*fftypes.MintRecord, *resty.Response) {
	var record fftypes.MintRecord
	resp, err := suite.client.R().
		SetBody(&fftypes.MintInput{Caller: minter}).
		SetResult(&record).
		Post(fmt.Sprintf("/buffers/%s/mint", suite.bufferName))
	require.NoError(suite.T(), err)
	return &record, resp
}

func (suite *MintBufferE2ETestSuite) listen() *websocket.Conn {
	u, err := url.Parse(suite.baseURL)
	require.NoError(suite.T(), err)
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.Path = "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(suite.T(), err)
	defer resp.Body.Close()
	err = conn.WriteJSON(map[string]string{"type": "listen", "buffer": suite.bufferName})
	require.NoError(suite.T(), err)
	return conn
}

func (suite *MintBufferE2ETestSuite) TestFIFOMintWithReplenishSignal() {
	t := suite.T()
	state := suite.initialize(5, 2)
	assert.Equal(t, suite.bufferName, state.Name)
	assert.Empty(t, state.PendingNFTs)

	conn := suite.listen()
	defer conn.Close()

	for i := 0; i < 4; i++ {
		resp := suite.add(authority, i)
		assert.Equal(t, http.StatusOK, resp.StatusCode(), resp.String())
	}

	record, resp := suite.mint()
	assert.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())
	assert.Equal(t, "https://example.com/nft/0.json", record.Descriptor.URI)
	assert.Equal(t, uint16(500), record.Metadata.SellerFeeBasisPoints)
	assert.Equal(t, minter, record.Metadata.Creators[0].Identity)
	assert.False(t, record.Metadata.Collection.Verified)

	record, resp = suite.mint()
	assert.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())
	assert.Equal(t, "https://example.com/nft/1.json", record.Descriptor.URI)

	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	var event fftypes.ReplenishEvent
	err := conn.ReadJSON(&event)
	require.NoError(t, err)
	assert.Equal(t, suite.bufferName, event.Buffer)
	assert.Equal(t, uint64(2), event.CurrentBufferSize)
	assert.Equal(t, uint64(5), event.RequiredSize)

	var latest fftypes.BufferState
	resp, err = suite.client.R().SetResult(&latest).Get("/buffers/" + suite.bufferName)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, uint64(2), latest.MintedCount)
	assert.Len(t, latest.PendingNFTs, 2)

	var mints []*fftypes.MintRecord
	resp, err = suite.client.R().SetResult(&mints).Get(fmt.Sprintf("/buffers/%s/mints", suite.bufferName))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Len(t, mints, 2)
}

func (suite *MintBufferE2ETestSuite) TestRejections() {
	t := suite.T()
	suite.initialize(1, 0)

	_, resp := suite.mint()
	assert.Equal(t, http.StatusConflict, resp.StatusCode(), resp.String())

	resp = suite.add(minter, 0)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode(), resp.String())

	resp = suite.add(authority, 0)
	assert.Equal(t, http.StatusOK, resp.StatusCode(), resp.String())

	resp = suite.add(authority, 1)
	assert.Equal(t, http.StatusConflict, resp.StatusCode(), resp.String())
}
