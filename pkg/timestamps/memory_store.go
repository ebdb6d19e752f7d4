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

// Package timestamps pkg/timestamps/memory_store.go
package timestamps

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mfreeman451/apsteer/pkg/models"
)

// MemoryBackend keeps records in a map. Contents are lost on restart.
type MemoryBackend struct {
	mu       sync.RWMutex
	records  map[Key]time.Time
	capacity int
	closed   bool
}

// NewMemoryBackend creates a backend holding at most capacity records.
func NewMemoryBackend(capacity int) (*MemoryBackend, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	return &MemoryBackend{
		records:  make(map[Key]time.Time, capacity),
		capacity: capacity,
	}, nil
}

func (m *MemoryBackend) Get(_ context.Context, key Key) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return time.Time{}, false, ErrStoreClosed
	}

	ts, ok := m.records[key]

	return ts, ok, nil
}

func (m *MemoryBackend) Put(_ context.Context, key Key, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if _, exists := m.records[key]; !exists {
		for len(m.records) >= m.capacity {
			m.evictOldestLocked()
		}
	}

	m.records[key] = ts

	return nil
}

// evictOldestLocked drops the record with the earliest timestamp. Ties go
// to the lexically smallest key so eviction order is deterministic.
func (m *MemoryBackend) evictOldestLocked() {
	var (
		victim Key
		oldest time.Time
		found  bool
	)

	for k, ts := range m.records {
		if !found || ts.Before(oldest) || (ts.Equal(oldest) && k.String() < victim.String()) {
			victim, oldest, found = k, ts, true
		}
	}

	if found {
		delete(m.records, victim)
	}
}

func (m *MemoryBackend) HasStation(_ context.Context, station models.HardwareAddr) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false, ErrStoreClosed
	}

	for k := range m.records {
		if k.Station == station {
			return true, nil
		}
	}

	return false, nil
}

func (m *MemoryBackend) Records(_ context.Context, station models.HardwareAddr) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	var out []Record

	for k, ts := range m.records {
		if k.Station == station {
			out = append(out, newRecord(k, ts))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.String() < out[j].Key.String()
	})

	return out, nil
}

func (m *MemoryBackend) Prune(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrStoreClosed
	}

	removed := 0

	for k, ts := range m.records {
		if ts.Before(cutoff) {
			delete(m.records, k)
			removed++
		}
	}

	return removed, nil
}

func (m *MemoryBackend) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.records), nil
}

func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.records = nil

	return nil
}

func newRecord(k Key, ts time.Time) Record {
	return Record{
		Key:       k,
		Scope:     k.Scope,
		Event:     k.Event.String(),
		Timestamp: ts,
	}
}
