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

import "time"

// SignalConfig drives the periodic signal check.
type SignalConfig struct {
	Enabled      bool
	MinSignal    int // dBm; averages below this accrue strikes
	Strikes      int
	PollInterval time.Duration
	DropReason   uint16 // 802.11 reason code sent on eviction
}

// Mechanism selects how (and whether) steering is carried out.
type Mechanism string

const (
	MechanismDisabled      Mechanism = "disabled"
	MechanismAssocReject   Mechanism = "assoc-reject"
	MechanismBSSTransition Mechanism = "bss-transition"
)

// SteeringConfig holds the band steering thresholds and windows. It is
// built once at interface bring-up and never mutated afterwards.
type SteeringConfig struct {
	Mechanism       Mechanism
	TargetInterface string
	BandInterfaces  []string

	// RSSIThreshold is the minimum signal for recording a probe and the
	// floor below which an association is never steered.
	RSSIThreshold int
	// StrongRSSIThreshold is the signal at which a candidate is steered even
	// without a recent probe on the target interface.
	StrongRSSIThreshold int

	FreshWindow      time.Duration
	RecentWindow     time.Duration
	DeferWindow      time.Duration
	ExpirationWindow time.Duration
}

// Enabled reports whether steering decisions should be attempted at all.
func (c *SteeringConfig) Enabled() bool {
	return c.Mechanism != MechanismDisabled && c.Mechanism != "" && c.TargetInterface != ""
}

// StoreConfig describes where timestamp records live.
type StoreConfig struct {
	Backend  string `json:"backend"` // "memory" or "sqlite"
	Path     string `json:"path"`    // base directory for the sqlite backend
	Capacity int    `json:"capacity"`
}

// MetricsConfig controls per-station signal history retention.
type MetricsConfig struct {
	Enabled     bool `json:"metrics_enabled"`
	Retention   int  `json:"metrics_retention"`
	MaxStations int  `json:"max_stations"`
}

// SignalPoint is one sampled reading kept in a station's history.
type SignalPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Signal    int       `json:"signal"`
	AvgSignal int       `json:"avg_signal"`
	Interface string    `json:"interface"`
}
