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
	"time"

	"github.com/mfreeman451/apsteer/pkg/models"
)

// SignalStore is a bounded history of signal samples for one station.
type SignalStore interface {
	Add(point models.SignalPoint)
	GetPoints() []models.SignalPoint // newest first
	GetLastPoint() *models.SignalPoint
}

// SignalCollector keeps signal histories for many stations.
type SignalCollector interface {
	AddSample(addr models.HardwareAddr, point models.SignalPoint) error
	GetHistory(addr models.HardwareAddr) []models.SignalPoint
	Forget(addr models.HardwareAddr)
	CleanupStaleStations(now time.Time, staleDuration time.Duration) int
}
