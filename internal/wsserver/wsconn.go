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
	"sync"
	"time"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/kaleido-io/mintbuffer/internal/log"
)

type webSocketConnection struct {
	id        string
	ctx       context.Context
	server    *webSocketServer
	conn      *ws.Conn
	mux       sync.Mutex
	closed    bool
	listenAll bool
	buffers   map[string]bool
	outbound  chan interface{}
	closing   chan struct{}
}

type webSocketCommandMessage struct {
	Type    string `json:"type,omitempty"`
	Buffer  string `json:"buffer,omitempty"`
	Message string `json:"message,omitempty"`
}

func newConnection(server *webSocketServer, conn *ws.Conn) *webSocketConnection {
	id := uuid.NewString()
	wsc := &webSocketConnection{
		id:       id,
		server:   server,
		conn:     conn,
		buffers:  make(map[string]bool),
		outbound: make(chan interface{}, server.queueSize),
		closing:  make(chan struct{}),
		ctx:      log.WithLogField(server.ctx, "ws", id),
	}
	go wsc.listen()
	go wsc.sender()
	return wsc
}

func (c *webSocketConnection) close() {
	c.mux.Lock()
	if c.closed {
		c.mux.Unlock()
		return
	}
	c.closed = true
	_ = c.conn.Close()
	close(c.closing)
	c.mux.Unlock()

	c.server.connectionClosed(c)
	log.L(c.ctx).Infof("WS/%s: Disconnected", c.id)
}

func (c *webSocketConnection) isListening(buffer string) bool {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.listenAll || c.buffers[buffer]
}

// dispatch queues a message for the sender without blocking. A connection that cannot
// keep up misses messages rather than stalling the broadcast.
func (c *webSocketConnection) dispatch(msg interface{}) {
	select {
	case c.outbound <- msg:
	case <-c.closing:
	default:
		log.L(c.ctx).Warnf("WS/%s: Outbound queue full, message dropped", c.id)
	}
}

func (c *webSocketConnection) sender() {
	defer c.close()
	heartbeat := time.NewTicker(c.server.heartbeatInterval)
	defer heartbeat.Stop()
	for {
		select {
		case <-c.closing:
			log.L(c.ctx).Infof("Websocket closing")
			return
		case <-heartbeat.C:
			if err := c.conn.WriteControl(ws.PingMessage, []byte{}, time.Now().Add(c.server.heartbeatInterval)); err != nil {
				log.L(c.ctx).Errorf("Heartbeat failed: %s", err)
				return
			}
		case msg := <-c.outbound:
			if err := c.conn.WriteJSON(msg); err != nil {
				log.L(c.ctx).Errorf("Send failed: %s", err)
				return
			}
		}
	}
}

func (c *webSocketConnection) listen() {
	defer c.close()
	log.L(c.ctx).Infof("Websocket connected")
	for {
		var msg webSocketCommandMessage
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			log.L(c.ctx).Infof("Websocket error: %s", err)
			return
		}
		log.L(c.ctx).Debugf("Websocket received: %+v", msg)

		switch msg.Type {
		case "listen":
			c.mux.Lock()
			if msg.Buffer == "" {
				c.listenAll = true
			} else {
				c.buffers[msg.Buffer] = true
			}
			c.mux.Unlock()
		case "unlisten":
			c.mux.Lock()
			if msg.Buffer == "" {
				c.listenAll = false
			} else {
				delete(c.buffers, msg.Buffer)
			}
			c.mux.Unlock()
		default:
			log.L(c.ctx).Errorf("Unexpected message type: %+v", msg)
			c.dispatch(&webSocketCommandMessage{
				Type:    "error",
				Message: "unexpected message type: " + msg.Type,
			})
		}
	}
}
