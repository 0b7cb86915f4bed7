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

package orchestrator

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/events"
	"github.com/kaleido-io/mintbuffer/internal/wsserver"
	"github.com/kaleido-io/mintbuffer/mocks/assetsmocks"
	"github.com/kaleido-io/mintbuffer/mocks/databasemocks"
	"github.com/stretchr/testify/assert"
)

const testAuthority = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

func resetConf() {
	config.Reset()
	InitConfig()
}

func newTestOrchestrator() (*orchestrator, *databasemocks.Plugin, *assetsmocks.Plugin, func()) {
	resetConf()
	mdi := &databasemocks.Plugin{}
	mai := &assetsmocks.Plugin{}
	mdi.On("Name").Return("mockdb").Maybe()
	mai.On("Name").Return("mockassets").Maybe()
	ctx, cancel := context.WithCancel(context.Background())
	o := &orchestrator{
		database: mdi,
		assets:   mai,
	}
	err := o.Init(ctx, cancel)
	if err != nil {
		panic(err)
	}
	return o, mdi, mai, cancel
}

func TestInitDatabasePluginFail(t *testing.T) {
	resetConf()
	config.Set(config.DatabaseType, "wrong")
	o := NewOrchestrator()
	err := o.Init(context.Background(), func() {})
	assert.Regexp(t, "FF10110", err)
}

func TestInitAssetsPluginFail(t *testing.T) {
	resetConf()
	config.Set(config.AssetsType, "wrong")
	o := &orchestrator{
		database: &databasemocks.Plugin{},
	}
	err := o.Init(context.Background(), func() {})
	assert.Regexp(t, "FF10122", err)
}

func TestInitPluginsFromFactories(t *testing.T) {
	mr := miniredis.RunT(t)
	resetConf()
	config.Set(config.DatabaseType, "redis")
	databaseConfig.SubPrefix("redis").Set("url", "redis://"+mr.Addr())
	o := &orchestrator{}
	err := o.initPlugins(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "redis", o.database.Name())
	assert.Equal(t, "simulated", o.assets.Name())
	o.database.Close()
}

func TestInitSinksFail(t *testing.T) {
	resetConf()
	config.Set(config.EventsRedisEnabled, true)
	config.Set(config.EventsRedisURL, "not a url")
	o := &orchestrator{
		database: &databasemocks.Plugin{},
		assets:   &assetsmocks.Plugin{},
	}
	err := o.Init(context.Background(), func() {})
	assert.Regexp(t, "FF10162", err)
	assert.Nil(t, o.buffers)
}

func TestInitReplenisherFail(t *testing.T) {
	resetConf()
	config.Set(config.ReplenisherEnabled, true)
	o := &orchestrator{
		database: &databasemocks.Plugin{},
		assets:   &assetsmocks.Plugin{},
	}
	err := o.Init(context.Background(), func() {})
	assert.Regexp(t, "FF10133", err)
}

func TestInitWebSocketsDisabled(t *testing.T) {
	resetConf()
	config.Set(config.WebsocketEnabled, false)
	o := &orchestrator{
		database: &databasemocks.Plugin{},
		assets:   &assetsmocks.Plugin{},
	}
	err := o.Init(context.Background(), func() {})
	assert.NoError(t, err)
	assert.Nil(t, o.WebSockets())
	assert.NotNil(t, o.Buffers())
}

func TestStartStopOK(t *testing.T) {
	o, mdi, _, cancel := newTestOrchestrator()
	mdi.On("Close").Return()

	err := o.Start()
	assert.NoError(t, err)
	assert.NotNil(t, o.started)
	assert.NotNil(t, o.Buffers())
	assert.NotNil(t, o.WebSockets())

	status, err := o.GetStatus(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "mockdb", status.Plugins.Database)
	assert.Equal(t, "mockassets", status.Plugins.Assets)
	assert.Empty(t, status.Plugins.EventSinks)
	assert.False(t, status.Replenisher.Enabled)

	cancel()
	o.WaitStop()
	o.WaitStop()
	mdi.AssertNumberOfCalls(t, "Close", 1)
}

func TestWaitStopBeforeInit(t *testing.T) {
	o := NewOrchestrator()
	o.WaitStop()
}

func TestStartWebSocketsFail(t *testing.T) {
	o, _, _, cancel := newTestOrchestrator()
	defer cancel()
	ws := wsserver.NewWebSocketServer(context.Background())
	defer ws.Close()
	err := ws.Start(o.events.Bus())
	assert.NoError(t, err)

	err = o.Start()
	assert.Regexp(t, "FF10174", err)
}

func TestStartEventsFail(t *testing.T) {
	o, _, _, cancel := newTestOrchestrator()
	defer cancel()
	o.events = &failingEventManager{Manager: o.events}

	err := o.Start()
	assert.Equal(t, assert.AnError, err)
}

type failingEventManager struct {
	events.Manager
}

func (f *failingEventManager) Start() error {
	return assert.AnError
}

func TestStartWithReplenisher(t *testing.T) {
	resetConf()
	config.Set(config.ReplenisherEnabled, true)
	config.Set(config.ReplenisherAuthority, testAuthority)
	config.NewPluginConfig("replenisher.imageService").Set("url", "http://localhost:1")
	mdi := &databasemocks.Plugin{}
	mdi.On("Name").Return("mockdb")
	mdi.On("Close").Return()
	ctx, cancel := context.WithCancel(context.Background())
	o := &orchestrator{
		database: mdi,
		assets:   &assetsmocks.Plugin{},
	}
	err := o.Init(ctx, cancel)
	assert.NoError(t, err)
	o.assets.(*assetsmocks.Plugin).On("Name").Return("mockassets")

	err = o.Start()
	assert.NoError(t, err)

	status, err := o.GetStatus(ctx)
	assert.NoError(t, err)
	assert.True(t, status.Replenisher.Enabled)
	assert.Equal(t, testAuthority, status.Replenisher.Authority)
	assert.Equal(t, uint64(0), status.Replenisher.Received)

	cancel()
	o.WaitStop()
}

func TestGetStatusReplenisherNotSubscribed(t *testing.T) {
	resetConf()
	config.Set(config.ReplenisherEnabled, true)
	config.Set(config.ReplenisherAuthority, testAuthority)
	config.NewPluginConfig("replenisher.imageService").Set("url", "http://localhost:1")
	mdi := &databasemocks.Plugin{}
	mdi.On("Name").Return("mockdb")
	mai := &assetsmocks.Plugin{}
	mai.On("Name").Return("mockassets")
	o := &orchestrator{
		database: mdi,
		assets:   mai,
	}
	err := o.Init(context.Background(), func() {})
	assert.NoError(t, err)

	_, err = o.GetStatus(context.Background())
	assert.Regexp(t, "FF10175", err)
}
