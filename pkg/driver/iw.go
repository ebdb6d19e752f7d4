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

// Package driver pkg/driver/iw.go
package driver

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mfreeman451/apsteer/pkg/models"
)

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// IW reads station data with iw(8) and deauthenticates through hostapd_cli.
type IW struct {
	Interface string
	run       Runner
}

var _ Driver = (*IW)(nil)

// NewIW returns a driver for ifname. A nil runner executes real commands.
func NewIW(ifname string, run Runner) *IW {
	if run == nil {
		run = execRunner
	}

	return &IW{Interface: ifname, run: run}
}

func (d *IW) ReadStaData(ctx context.Context, addr models.HardwareAddr) (models.StaData, error) {
	out, err := d.run(ctx, "iw", "dev", d.Interface, "station", "get", addr.String())
	if err != nil {
		return models.StaData{}, fmt.Errorf("%w: iw station get %s: %w", errCommandFailed, addr, err)
	}

	return ParseStationOutput(out)
}

func (d *IW) Deauthenticate(ctx context.Context, addr models.HardwareAddr, reason uint16) error {
	out, err := d.run(ctx, "hostapd_cli", "-i", d.Interface, "deauthenticate", addr.String(),
		"reason="+strconv.FormatUint(uint64(reason), 10))
	if err != nil {
		return fmt.Errorf("%w: hostapd_cli deauthenticate %s: %w", errCommandFailed, addr, err)
	}

	if status := strings.TrimSpace(string(out)); status != "OK" {
		return fmt.Errorf("%w: %s", ErrDeauthRejected, status)
	}

	return nil
}

// ParseStationOutput extracts the signal readings from `iw station get`.
// The average prefers the acknowledged-frame average and falls back to the
// beacon average, then the last acknowledged frame.
func ParseStationOutput(out []byte) (models.StaData, error) {
	var (
		data       models.StaData
		haveSignal bool

		ackAvg, avg, lastAck          int
		haveAckAvg, haveAvg, haveLast bool
	)

	scanner := bufio.NewScanner(bytes.NewReader(out))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "Station ") && strings.Contains(line, "not found"):
			return models.StaData{}, ErrStationNotFound
		case strings.HasPrefix(line, "signal avg:"):
			avg, haveAvg = parseDBM(strings.TrimPrefix(line, "signal avg:"))
		case strings.HasPrefix(line, "signal:"):
			data.Signal, haveSignal = parseDBM(strings.TrimPrefix(line, "signal:"))
		case strings.HasPrefix(line, "ack signal avg:"):
			ackAvg, haveAckAvg = parseDBM(strings.TrimPrefix(line, "ack signal avg:"))
		case strings.HasPrefix(line, "last ack signal:"):
			lastAck, haveLast = parseDBM(strings.TrimPrefix(line, "last ack signal:"))
		}
	}

	if err := scanner.Err(); err != nil {
		return models.StaData{}, fmt.Errorf("%w: %w", errScanOutput, err)
	}

	if !haveSignal {
		return models.StaData{}, ErrNoSignal
	}

	switch {
	case haveAckAvg:
		data.LastAckRSSI = ackAvg
	case haveAvg:
		data.LastAckRSSI = avg
	case haveLast:
		data.LastAckRSSI = lastAck
	default:
		data.LastAckRSSI = data.Signal
	}

	return data, nil
}

// parseDBM reads the leading integer of values like "-52 [-54, -56] dBm".
func parseDBM(s string) (int, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false
	}

	v, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}

	return v, true
}
