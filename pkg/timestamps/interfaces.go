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

// Package timestamps pkg/timestamps/interfaces.go
package timestamps

//go:generate mockgen -destination=mock_backend.go -package=timestamps github.com/mfreeman451/apsteer/pkg/timestamps Backend

import (
	"context"
	"fmt"
	"time"

	"github.com/mfreeman451/apsteer/pkg/models"
)

// Key identifies a single timestamp record.
type Key struct {
	Station models.HardwareAddr
	Scope   string // "i_<ifname>" or "s_<encoded ssid>"
	Event   models.SteerEvent
}

// String renders the key the way it would appear as a relative path:
// <scope>/<compact mac>.<event>.
func (k Key) String() string {
	return fmt.Sprintf("%s/%s.%d", k.Scope, k.Station.Compact(), int(k.Event))
}

// Record is a stored timestamp.
type Record struct {
	Key       Key       `json:"-"`
	Scope     string    `json:"scope"`
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
}

// Backend is the keyed storage behind a Store. Implementations hold at most
// their configured capacity and evict the record with the oldest timestamp
// when a new key has to be admitted.
type Backend interface {
	// Get returns the timestamp for key, or false if there is none.
	Get(ctx context.Context, key Key) (time.Time, bool, error)
	// Put creates or replaces the timestamp for key.
	Put(ctx context.Context, key Key, ts time.Time) error
	// HasStation reports whether any record exists for the station.
	HasStation(ctx context.Context, station models.HardwareAddr) (bool, error)
	// Records lists all records for the station.
	Records(ctx context.Context, station models.HardwareAddr) ([]Record, error)
	// Prune removes records older than cutoff and returns how many were removed.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
	// Len returns the number of stored records.
	Len(ctx context.Context) (int, error)
	Close() error
}
