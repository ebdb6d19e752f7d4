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

// Package driver pkg/driver/interfaces.go
package driver

//go:generate mockgen -destination=mock_driver.go -package=driver github.com/mfreeman451/apsteer/pkg/driver Driver

import (
	"context"

	"github.com/mfreeman451/apsteer/pkg/models"
)

// Driver reads per-station radio statistics and removes stations from an
// access point interface.
type Driver interface {
	// ReadStaData returns the current signal readings for a station.
	ReadStaData(ctx context.Context, addr models.HardwareAddr) (models.StaData, error)
	// Deauthenticate disconnects a station with the given 802.11 reason code.
	Deauthenticate(ctx context.Context, addr models.HardwareAddr, reason uint16) error
}
