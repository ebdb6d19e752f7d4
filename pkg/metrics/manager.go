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
	"time"

	"github.com/mfreeman451/apsteer/pkg/models"
)

type stationHistory struct {
	buffer   SignalStore
	lastSeen time.Time
}

// Manager holds per-station signal histories. When MaxStations is reached
// the station that reported least recently is dropped to make room.
type Manager struct {
	mu       sync.RWMutex
	stations map[models.HardwareAddr]*stationHistory
	config   models.MetricsConfig
}

func NewManager(cfg models.MetricsConfig) *Manager {
	return &Manager{
		stations: make(map[models.HardwareAddr]*stationHistory),
		config:   cfg,
	}
}

var _ SignalCollector = (*Manager)(nil)

func (m *Manager) AddSample(addr models.HardwareAddr, point models.SignalPoint) error {
	if !m.config.Enabled {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.stations[addr]
	if !ok {
		if m.config.MaxStations > 0 && len(m.stations) >= m.config.MaxStations {
			m.dropLeastRecentLocked()
		}

		h = &stationHistory{buffer: NewBuffer(m.config.Retention)}
		m.stations[addr] = h
	}

	h.buffer.Add(point)
	h.lastSeen = point.Timestamp

	return nil
}

func (m *Manager) dropLeastRecentLocked() {
	var (
		victim models.HardwareAddr
		oldest time.Time
		found  bool
	)

	for addr, h := range m.stations {
		if !found || h.lastSeen.Before(oldest) {
			victim, oldest, found = addr, h.lastSeen, true
		}
	}

	if found {
		delete(m.stations, victim)
	}
}

// GetHistory returns the samples for addr, newest first, or nil if the
// station has none.
func (m *Manager) GetHistory(addr models.HardwareAddr) []models.SignalPoint {
	m.mu.RLock()
	h, ok := m.stations[addr]
	m.mu.RUnlock()

	if !ok {
		return nil
	}

	return h.buffer.GetPoints()
}

// Forget discards the history for addr.
func (m *Manager) Forget(addr models.HardwareAddr) {
	m.mu.Lock()
	delete(m.stations, addr)
	m.mu.Unlock()
}

// CleanupStaleStations drops histories with no sample in the staleDuration
// before now and returns how many were dropped.
func (m *Manager) CleanupStaleStations(now time.Time, staleDuration time.Duration) int {
	cutoff := now.Add(-staleDuration)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0

	for addr, h := range m.stations {
		if h.lastSeen.Before(cutoff) {
			delete(m.stations, addr)
			removed++
		}
	}

	return removed
}

// GetActiveStations returns how many stations have a history.
func (m *Manager) GetActiveStations() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.stations)
}
