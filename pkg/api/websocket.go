/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mfreeman451/apsteer/pkg/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// streamEvents upgrades to a websocket and forwards every published event
// as a JSON text message until the client goes away.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "Websocket upgrade failed", logging.Err(err))
		return
	}

	defer func(conn *websocket.Conn) {
		_ = conn.Close()
	}(conn)

	ch := s.events.Subscribe()
	defer s.events.Unsubscribe(ch)

	closed := make(chan struct{})

	go func() {
		defer close(closed)

		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	ctx := r.Context()

	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := conn.WriteJSON(ev); err != nil {
				s.log.Debug(ctx, "Websocket write failed", logging.Err(err))
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
