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

// Package events fans steering and signal events out to subscribers such
// as websocket clients.
package events

import (
	"sync"

	"github.com/mfreeman451/apsteer/pkg/models"
)

const subscriberBuffer = 16

// Publisher accepts events.
type Publisher interface {
	Publish(ev models.Event)
}

// Hub delivers each published event to every subscriber. Slow subscribers
// lose events rather than block the publisher.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan models.Event]struct{}
	dropped     uint64
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[chan models.Event]struct{})}
}

var _ Publisher = (*Hub)(nil)

func (h *Hub) Subscribe() chan models.Event {
	ch := make(chan models.Event, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	return ch
}

func (h *Hub) Unsubscribe(ch chan models.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[ch]; !ok {
		return
	}

	delete(h.subscribers, ch)
	close(ch)
}

func (h *Hub) Publish(ev models.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			h.dropped++
		}
	}
}

// Dropped reports how many deliveries were skipped because a subscriber
// was full.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.dropped
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subscribers)
}
