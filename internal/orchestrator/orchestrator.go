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
	"sync"

	"github.com/kaleido-io/mintbuffer/internal/assets/assetsfactory"
	"github.com/kaleido-io/mintbuffer/internal/buffer"
	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/database/databasefactory"
	"github.com/kaleido-io/mintbuffer/internal/events"
	"github.com/kaleido-io/mintbuffer/internal/log"
	"github.com/kaleido-io/mintbuffer/internal/metrics"
	"github.com/kaleido-io/mintbuffer/internal/replenisher"
	"github.com/kaleido-io/mintbuffer/internal/wsserver"
	"github.com/kaleido-io/mintbuffer/pkg/assets"
	"github.com/kaleido-io/mintbuffer/pkg/database"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
)

var (
	databaseConfig = config.NewPluginConfig("database")
	assetsConfig   = config.NewPluginConfig("assets")
)

// InitConfig registers the keys of every plugin and component that configures itself
// through a prefix. Must be called after each config.Reset
func InitConfig() {
	databasefactory.InitPrefix(databaseConfig)
	assetsfactory.InitPrefix(assetsConfig)
	events.InitConfig()
	replenisher.InitConfig()
}

// Orchestrator is the main interface behind the API, owning the plugins and the components built on them
type Orchestrator interface {
	Init(ctx context.Context, cancelCtx context.CancelFunc) error
	Start() error
	WaitStop()

	Buffers() buffer.Manager
	WebSockets() wsserver.WebSocketServer
	GetStatus(ctx context.Context) (*fftypes.NodeStatus, error)
}

type orchestrator struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	started     *fftypes.FFTime
	database    database.Plugin
	assets      assets.Plugin
	metrics     metrics.Manager
	sinks       []events.Sink
	events      events.Manager
	buffers     buffer.Manager
	websockets  wsserver.WebSocketServer
	replenisher replenisher.Replenisher
	closeOnce   sync.Once
}

func NewOrchestrator() Orchestrator {
	return &orchestrator{}
}

func (o *orchestrator) Init(ctx context.Context, cancelCtx context.CancelFunc) (err error) {
	o.ctx = ctx
	o.cancelCtx = cancelCtx
	err = o.initPlugins(ctx)
	if err == nil {
		err = o.initComponents(ctx)
	}
	return err
}

func (o *orchestrator) Start() (err error) {
	if err = o.events.Start(); err != nil {
		return err
	}
	if o.websockets != nil {
		if err = o.websockets.Start(o.events.Bus()); err != nil {
			return err
		}
	}
	if o.replenisher != nil {
		if err = o.replenisher.Start(); err != nil {
			return err
		}
	}
	o.started = fftypes.Now()
	log.L(o.ctx).Infof("Started with database=%s assets=%s", o.database.Name(), o.assets.Name())
	return nil
}

// WaitStop blocks until the context passed to Init is done, then shuts down every component
func (o *orchestrator) WaitStop() {
	if o.ctx == nil {
		return
	}
	<-o.ctx.Done()
	o.closeOnce.Do(o.close)
}

func (o *orchestrator) close() {
	if o.replenisher != nil {
		o.replenisher.Close()
	}
	if o.websockets != nil {
		o.websockets.Close()
	}
	if o.events != nil {
		o.events.Close()
	}
	if o.database != nil {
		o.database.Close()
	}
	log.L(o.ctx).Infof("Shutdown complete")
}

func (o *orchestrator) Buffers() buffer.Manager {
	return o.buffers
}

func (o *orchestrator) WebSockets() wsserver.WebSocketServer {
	return o.websockets
}

func (o *orchestrator) initPlugins(ctx context.Context) (err error) {
	if o.database == nil {
		if o.database, err = o.initDatabasePlugin(ctx); err != nil {
			return err
		}
	}
	if o.assets == nil {
		if o.assets, err = o.initAssetsPlugin(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (o *orchestrator) initComponents(ctx context.Context) (err error) {
	if o.metrics == nil {
		o.metrics = metrics.NewMetricsManager(ctx)
	}

	if o.events == nil {
		if o.sinks, err = events.NewConfiguredSinks(ctx); err != nil {
			return err
		}
		o.events = events.NewEventManager(ctx, o.metrics, o.sinks...)
	}

	if o.buffers == nil {
		if o.buffers, err = buffer.NewBufferManager(ctx, o.database, o.assets, o.events, o.metrics); err != nil {
			return err
		}
	}

	if o.websockets == nil && config.GetBool(config.WebsocketEnabled) {
		o.websockets = wsserver.NewWebSocketServer(ctx)
	}

	if o.replenisher == nil && config.GetBool(config.ReplenisherEnabled) {
		if o.replenisher, err = replenisher.NewReplenisher(ctx, o.events.Bus(), o.buffers); err != nil {
			return err
		}
	}
	return nil
}

func (o *orchestrator) initDatabasePlugin(ctx context.Context) (database.Plugin, error) {
	pluginType := config.GetString(config.DatabaseType)
	plugin, err := databasefactory.GetPlugin(ctx, pluginType)
	if err != nil {
		return nil, err
	}
	err = plugin.Init(ctx, databaseConfig.SubPrefix(pluginType))
	return plugin, err
}

func (o *orchestrator) initAssetsPlugin(ctx context.Context) (assets.Plugin, error) {
	pluginType := config.GetString(config.AssetsType)
	plugin, err := assetsfactory.GetPlugin(ctx, pluginType)
	if err != nil {
		return nil, err
	}
	err = plugin.Init(ctx, assetsConfig.SubPrefix(pluginType))
	return plugin, err
}
