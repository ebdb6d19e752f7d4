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

// Package api pkg/api/interfaces.go
package api

import (
	"context"

	"github.com/mfreeman451/apsteer/pkg/models"
)

// Service is the daemon functionality exposed over HTTP.
type Service interface {
	Probe(ctx context.Context, iface string, addr models.HardwareAddr, signal int) (bool, error)
	Associate(ctx context.Context, iface string, addr models.HardwareAddr, signal int, reassoc bool) (models.Decision, error)
	Connect(ctx context.Context, iface string, addr models.HardwareAddr) error
	Disconnect(ctx context.Context, iface string, addr models.HardwareAddr) error
	Stations(ctx context.Context, iface string) ([]models.Station, error)
	SignalHistory(addr models.HardwareAddr) []models.SignalPoint
	Capability(ctx context.Context, addr models.HardwareAddr) (models.Capability, error)
	Status(ctx context.Context) (models.DaemonStatus, error)
}

// EventSource supplies the live event stream.
type EventSource interface {
	Subscribe() chan models.Event
	Unsubscribe(ch chan models.Event)
}
