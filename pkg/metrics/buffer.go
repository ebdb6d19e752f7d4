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

package metrics

import (
	"sync"

	"github.com/mfreeman451/apsteer/pkg/models"
)

// RingBuffer keeps the most recent size samples.
type RingBuffer struct {
	mu     sync.RWMutex
	points []models.SignalPoint
	pos    int // next write index
	count  int
}

// NewBuffer creates a SignalStore holding size samples.
func NewBuffer(size int) SignalStore {
	if size < 1 {
		size = 1
	}

	return &RingBuffer{points: make([]models.SignalPoint, size)}
}

// Add overwrites the oldest sample once the buffer is full.
func (b *RingBuffer) Add(point models.SignalPoint) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.points[b.pos] = point
	b.pos = (b.pos + 1) % len(b.points)

	if b.count < len(b.points) {
		b.count++
	}
}

// GetPoints returns the stored samples, most recent first.
func (b *RingBuffer) GetPoints() []models.SignalPoint {
	b.mu.RLock()
	defer b.mu.RUnlock()

	size := len(b.points)
	points := make([]models.SignalPoint, b.count)

	for i := 0; i < b.count; i++ {
		idx := (b.pos - i - 1 + size) % size
		points[i] = b.points[idx]
	}

	return points
}

func (b *RingBuffer) GetLastPoint() *models.SignalPoint {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return nil
	}

	idx := (b.pos - 1 + len(b.points)) % len(b.points)
	p := b.points[idx]

	return &p
}
