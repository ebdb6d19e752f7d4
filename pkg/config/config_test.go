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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreeman451/apsteer/pkg/models"
)

const sampleConfig = `{
  "listen_addr": ":9000",
  "log": {"level": "debug", "format": "json"},
  "store": {"backend": "sqlite", "path": "/var/lib/apsteer", "capacity": 50},
  "steering": {
    "mechanism": "assoc-reject",
    "target_interface": "wlan-5000mhz",
    "band_interfaces": ["wlan-2400mhz", "wlan-5000mhz"],
    "rssi_threshold": -65,
    "fresh_window": "5s",
    "expiration_window": "4m"
  },
  "signal": {"enabled": true, "min_signal": -72, "strikes": 4, "poll_interval": "2s"},
  "interfaces": [{"name": "wlan-2400mhz", "ssid": "home"}, {"name": "wlan-5000mhz", "ssid": "home"}]
}`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "apsteerd.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadAndValidate(t *testing.T) {
	var cfg DaemonConfig

	require.NoError(t, LoadAndValidate(writeConfig(t, sampleConfig), &cfg))

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, defaultGRPCAddr, cfg.GrpcAddr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 50, cfg.Store.Capacity)
	assert.Len(t, cfg.Interfaces, 2)

	steering := cfg.SteeringModel()
	assert.Equal(t, models.MechanismAssocReject, steering.Mechanism)
	assert.Equal(t, -65, steering.RSSIThreshold)
	assert.Equal(t, defaultStrongRSSIThreshold, steering.StrongRSSIThreshold)
	assert.Equal(t, 5*time.Second, steering.FreshWindow)
	assert.Equal(t, defaultRecentWindow, steering.RecentWindow)
	assert.Equal(t, defaultDeferWindow, steering.DeferWindow)
	assert.Equal(t, 4*time.Minute, steering.ExpirationWindow)
	assert.True(t, steering.Enabled())

	signal := cfg.SignalModel()
	assert.True(t, signal.Enabled)
	assert.Equal(t, -72, signal.MinSignal)
	assert.Equal(t, 4, signal.Strikes)
	assert.Equal(t, 2*time.Second, signal.PollInterval)
	assert.Equal(t, uint16(defaultDropReason), signal.DropReason)
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, defaultGRPCAddr, cfg.GrpcAddr)

	cfg, err = Load(writeConfig(t, `{"listen_addr": ":9000"}`))
	require.ErrorIs(t, err, errNoInterfaces)
	assert.Nil(t, cfg)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, errReadFile)
}

func TestLoadFile_Errors(t *testing.T) {
	var cfg DaemonConfig

	err := LoadFile(filepath.Join(t.TempDir(), "missing.json"), &cfg)
	require.ErrorIs(t, err, errReadFile)

	err = LoadFile(writeConfig(t, "{not json"), &cfg)
	require.ErrorIs(t, err, errUnmarshal)

	err = LoadFile(writeConfig(t, `{"signal": {"poll_interval": "soon"}}`), &cfg)
	require.ErrorIs(t, err, errInvalidDuration)
}

func TestDaemonConfig_Validate(t *testing.T) {
	valid := func() DaemonConfig {
		return DaemonConfig{
			Interfaces: []InterfaceConfig{{Name: "wlan0", SSID: "home"}},
			Signal:     SignalConfig{Enabled: true, Strikes: 3},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*DaemonConfig)
		wantErr error
	}{
		{"defaults", func(*DaemonConfig) {}, nil},
		{"no interfaces", func(c *DaemonConfig) { c.Interfaces = nil }, errNoInterfaces},
		{"empty interface name", func(c *DaemonConfig) { c.Interfaces[0].Name = "" }, errEmptyIfaceName},
		{"duplicate interface", func(c *DaemonConfig) {
			c.Interfaces = append(c.Interfaces, InterfaceConfig{Name: "wlan0"})
		}, errDuplicateIface},
		{"negative capacity", func(c *DaemonConfig) { c.Store.Capacity = -1 }, errInvalidCapacity},
		{"relative sqlite path", func(c *DaemonConfig) {
			c.Store.Backend = "sqlite"
			c.Store.Path = "var/lib"
		}, errRelativeStorePath},
		{"negative window", func(c *DaemonConfig) {
			c.Steering.DeferWindow = NewDuration(-time.Second)
		}, errNegativeWindow},
		{"unknown mechanism", func(c *DaemonConfig) { c.Steering.Mechanism = "shove" }, errUnknownMechanism},
		{"zero strikes", func(c *DaemonConfig) { c.Signal.Strikes = 0 }, errInvalidStrikes},
		{"negative poll", func(c *DaemonConfig) {
			c.Signal.PollInterval = NewDuration(-time.Second)
		}, errInvalidPoll},
		{"zero poll", func(c *DaemonConfig) {
			c.Signal.PollInterval = NewDuration(0)
		}, errInvalidPoll},
		{"zero strikes with signal disabled", func(c *DaemonConfig) {
			c.Signal = SignalConfig{}
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDaemonConfig_DefaultMechanism(t *testing.T) {
	cfg := DaemonConfig{Interfaces: []InterfaceConfig{{Name: "wlan0"}}}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, models.MechanismDisabled, cfg.Steering.Mechanism)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, defaultStoreCapacity, cfg.Store.Capacity)

	cfg = DaemonConfig{
		Interfaces: []InterfaceConfig{{Name: "wlan0"}},
		Steering:   SteeringConfig{TargetInterface: "wlan1"},
	}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, models.MechanismAssocReject, cfg.Steering.Mechanism)
}

func TestLoadAndValidate_ExplicitZeroKept(t *testing.T) {
	const body = `{
  "steering": {
    "target_interface": "wlan1",
    "rssi_threshold": 0,
    "strong_rssi_threshold": 0,
    "fresh_window": "0s",
    "recent_window": "0s",
    "defer_window": "0s",
    "expiration_window": "0s"
  },
  "signal": {"min_signal": 0},
  "interfaces": [{"name": "wlan0"}, {"name": "wlan1"}]
}`

	var cfg DaemonConfig

	require.NoError(t, LoadAndValidate(writeConfig(t, body), &cfg))

	steering := cfg.SteeringModel()
	assert.Equal(t, 0, steering.RSSIThreshold)
	assert.Equal(t, 0, steering.StrongRSSIThreshold)
	assert.Equal(t, time.Duration(0), steering.FreshWindow)
	assert.Equal(t, time.Duration(0), steering.RecentWindow)
	assert.Equal(t, time.Duration(0), steering.DeferWindow)
	assert.Equal(t, time.Duration(0), steering.ExpirationWindow)

	signal := cfg.SignalModel()
	assert.Equal(t, 0, signal.MinSignal)
	assert.Equal(t, defaultPollInterval, signal.PollInterval)
}

func TestSteeringModel_AbsentKeysUseDefaults(t *testing.T) {
	cfg := DaemonConfig{Steering: SteeringConfig{TargetInterface: "wlan1"}}

	steering := cfg.SteeringModel()
	assert.Equal(t, defaultRSSIThreshold, steering.RSSIThreshold)
	assert.Equal(t, defaultDeferWindow, steering.DeferWindow)
	assert.Equal(t, defaultMinSignal, cfg.SignalModel().MinSignal)
}
