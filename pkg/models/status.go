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

package models

import (
	"errors"
	"time"
)

var (
	ErrUnknownInterface = errors.New("unknown interface")
)

// InterfaceStatus summarizes one managed interface.
type InterfaceStatus struct {
	Name          string `json:"name"`
	SSID          string `json:"ssid"`
	Target        bool   `json:"target"`
	Stations      int    `json:"stations"`
	SignalMonitor bool   `json:"signal_monitor"`
}

// DaemonStatus is reported by the status endpoint.
type DaemonStatus struct {
	Mechanism       Mechanism         `json:"mechanism"`
	TargetInterface string            `json:"target_interface,omitempty"`
	StoredRecords   int               `json:"stored_records"`
	StoreCapacity   int               `json:"store_capacity"`
	Interfaces      []InterfaceStatus `json:"interfaces"`
	StartedAt       time.Time         `json:"started_at"`
}

// TimestampRecord is a stored steering timestamp as exposed over the API.
type TimestampRecord struct {
	Scope     string        `json:"scope"`
	Event     string        `json:"event"`
	Timestamp time.Time     `json:"timestamp"`
	Age       time.Duration `json:"age"`
}

// Capability describes what is known about a station's band support.
type Capability struct {
	Station  HardwareAddr      `json:"station"`
	Known    bool              `json:"known"`
	DualBand bool              `json:"dual_band"`
	Records  []TimestampRecord `json:"records"`
}
