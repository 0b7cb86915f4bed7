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

package wsserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/events"
	"github.com/kaleido-io/mintbuffer/internal/log"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
)

const (
	busSubscriberID          = "websocket"
	defaultHeartbeatInterval = 30 * time.Second
)

// WebSocketServer broadcasts replenishment events to connected listeners
type WebSocketServer interface {
	Handler() http.HandlerFunc
	Start(bus events.Bus) error
	Close()
}

type webSocketServer struct {
	ctx               context.Context
	cancelCtx         context.CancelFunc
	mux               sync.Mutex
	upgrader          *websocket.Upgrader
	connections       map[string]*webSocketConnection
	heartbeatInterval time.Duration
	queueSize         int
	bus               events.Bus
	broadcastDone     chan struct{}
}

// NewWebSocketServer create a new server with a simplified interface
func NewWebSocketServer(ctx context.Context) WebSocketServer {
	ctx, cancelCtx := context.WithCancel(log.WithLogField(ctx, "role", "websockets"))
	heartbeatInterval := config.GetDuration(config.WebsocketHeartbeatInterval)
	if heartbeatInterval <= 0 {
		heartbeatInterval = defaultHeartbeatInterval
	}
	queueSize := config.GetInt(config.WebsocketBroadcastQueueSize)
	if queueSize < 1 {
		queueSize = 1
	}
	return &webSocketServer{
		ctx:               ctx,
		cancelCtx:         cancelCtx,
		connections:       make(map[string]*webSocketConnection),
		heartbeatInterval: heartbeatInterval,
		queueSize:         queueSize,
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  int(config.GetByteSize(config.WebsocketReadBufferSize)),
			WriteBufferSize: int(config.GetByteSize(config.WebsocketWriteBufferSize)),
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (s *webSocketServer) handler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.L(s.ctx).Errorf("WebSocket upgrade failed: %s", err)
		return
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	c := newConnection(s, conn)
	s.connections[c.id] = c
}

func (s *webSocketServer) connectionClosed(c *webSocketConnection) {
	s.mux.Lock()
	defer s.mux.Unlock()
	delete(s.connections, c.id)
}

func (s *webSocketServer) Handler() http.HandlerFunc {
	return s.handler
}

// Start subscribes to the bus, and fans each event out to the connections listening on its buffer
func (s *webSocketServer) Start(bus events.Bus) error {
	ch := make(chan *fftypes.ReplenishEvent, s.queueSize)
	if err := bus.Subscribe(busSubscriberID, ch); err != nil {
		return err
	}
	s.bus = bus
	s.broadcastDone = make(chan struct{})
	go s.broadcastLoop(ch)
	return nil
}

func (s *webSocketServer) broadcastLoop(ch <-chan *fftypes.ReplenishEvent) {
	defer close(s.broadcastDone)
	for {
		select {
		case <-s.ctx.Done():
			log.L(s.ctx).Debugf("Broadcast loop exiting")
			return
		case event := <-ch:
			s.broadcast(event)
		}
	}
}

func (s *webSocketServer) broadcast(event *fftypes.ReplenishEvent) {
	s.mux.Lock()
	connections := make([]*webSocketConnection, 0, len(s.connections))
	for _, c := range s.connections {
		connections = append(connections, c)
	}
	s.mux.Unlock()

	for _, c := range connections {
		if c.isListening(event.Buffer) {
			c.dispatch(event)
		}
	}
}

func (s *webSocketServer) Close() {
	s.cancelCtx()
	if s.bus != nil {
		_ = s.bus.Unsubscribe(busSubscriberID)
		<-s.broadcastDone
	}
	s.mux.Lock()
	connections := make([]*webSocketConnection, 0, len(s.connections))
	for _, c := range s.connections {
		connections = append(connections, c)
	}
	s.mux.Unlock()
	for _, c := range connections {
		c.close()
	}
}
