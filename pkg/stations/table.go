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

// Package stations tracks the stations associated with one interface.
// A Table is owned by the event loop and is not safe for concurrent use.
package stations

import "github.com/mfreeman451/apsteer/pkg/models"

// Table holds associated stations in association order.
type Table struct {
	order  []models.HardwareAddr
	byAddr map[models.HardwareAddr]*models.Station
}

func New() *Table {
	return &Table{byAddr: make(map[models.HardwareAddr]*models.Station)}
}

// Add starts tracking addr with zero strikes. Re-adding a tracked station
// returns the existing entry unchanged.
func (t *Table) Add(addr models.HardwareAddr) *models.Station {
	if sta, ok := t.byAddr[addr]; ok {
		return sta
	}

	sta := &models.Station{Addr: addr}
	t.byAddr[addr] = sta
	t.order = append(t.order, addr)

	return sta
}

func (t *Table) Get(addr models.HardwareAddr) (*models.Station, bool) {
	sta, ok := t.byAddr[addr]

	return sta, ok
}

// Remove stops tracking addr, discarding its strike state.
func (t *Table) Remove(addr models.HardwareAddr) bool {
	if _, ok := t.byAddr[addr]; !ok {
		return false
	}

	delete(t.byAddr, addr)

	for i, a := range t.order {
		if a == addr {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}

	return true
}

// Snapshot returns the tracked addresses. The slice is a copy, so the table
// may be modified while iterating over it.
func (t *Table) Snapshot() []models.HardwareAddr {
	out := make([]models.HardwareAddr, len(t.order))
	copy(out, t.order)

	return out
}

// Stations returns copies of every tracked station.
func (t *Table) Stations() []models.Station {
	out := make([]models.Station, 0, len(t.order))
	for _, addr := range t.order {
		out = append(out, *t.byAddr[addr])
	}

	return out
}

func (t *Table) Len() int { return len(t.order) }
