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

// Package models pkg/models/station.go
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	errInvalidHardwareAddr = errors.New("invalid hardware address")
)

// HardwareAddr is a 6-byte 802.11 station address. It is comparable and can
// be used as a map key.
type HardwareAddr [6]byte

// ParseHardwareAddr parses a colon or dash separated EUI-48 address.
func ParseHardwareAddr(s string) (HardwareAddr, error) {
	var addr HardwareAddr

	hw, err := net.ParseMAC(strings.TrimSpace(s))
	if err != nil {
		return addr, fmt.Errorf("%w: %w", errInvalidHardwareAddr, err)
	}

	if len(hw) != len(addr) {
		return addr, fmt.Errorf("%w: %q is not EUI-48", errInvalidHardwareAddr, s)
	}

	copy(addr[:], hw)

	return addr, nil
}

// MustParseHardwareAddr is ParseHardwareAddr for constants in tests and tooling.
func MustParseHardwareAddr(s string) HardwareAddr {
	addr, err := ParseHardwareAddr(s)
	if err != nil {
		panic(err)
	}

	return addr
}

func (a HardwareAddr) String() string {
	return net.HardwareAddr(a[:]).String()
}

// Compact renders the address without separators, as used in storage keys.
func (a HardwareAddr) Compact() string {
	return fmt.Sprintf("%02x%02x%02x%02x%02x%02x", a[0], a[1], a[2], a[3], a[4], a[5])
}

func (a HardwareAddr) IsZero() bool {
	return a == HardwareAddr{}
}

func (a HardwareAddr) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *HardwareAddr) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	parsed, err := ParseHardwareAddr(s)
	if err != nil {
		return err
	}

	*a = parsed

	return nil
}

// Station is an associated client as tracked by the signal monitor.
type Station struct {
	Addr      HardwareAddr `json:"addr"`
	Signal    int          `json:"signal"`     // last instantaneous reading, dBm
	AvgSignal int          `json:"avg_signal"` // last (corrected) average, dBm
	Strikes   int          `json:"strikes"`
}

// StaData is what the driver reports for a single station.
type StaData struct {
	Signal      int // instantaneous, dBm
	LastAckRSSI int // running average of acknowledged frames, dBm
}

// PassSummary describes one signal poll pass over an interface.
type PassSummary struct {
	Interface string `json:"interface"`
	Stations  int    `json:"stations"`
	Dropped   int    `json:"dropped"`
	Skipped   int    `json:"skipped"`
}
