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
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mfreeman451/apsteer/pkg/logging"
	"github.com/mfreeman451/apsteer/pkg/models"
)

var (
	errNegativeWindow    = errors.New("window must not be negative")
	errInvalidStrikes    = errors.New("signal strikes must be at least 1")
	errInvalidPoll       = errors.New("signal poll interval must be positive")
	errInvalidCapacity   = errors.New("store capacity must be at least 1")
	errRelativeStorePath = errors.New("store path must be absolute")
	errUnknownMechanism  = errors.New("unknown steering mechanism")
	errNoInterfaces      = errors.New("at least one interface is required")
	errDuplicateIface    = errors.New("duplicate interface")
	errEmptyIfaceName    = errors.New("interface name is required")
)

const (
	defaultListenAddr          = ":8090"
	defaultGRPCAddr            = ":50061"
	defaultStoreCapacity       = 100
	defaultRSSIThreshold       = -60
	defaultStrongRSSIThreshold = -45
	defaultFreshWindow         = 10 * time.Second
	defaultRecentWindow        = 15 * time.Second
	defaultDeferWindow         = 20 * time.Second
	defaultExpirationWindow    = 210 * time.Second
	defaultMinSignal           = -70
	defaultPollInterval        = 10 * time.Second
	defaultDropReason          = 3
	defaultMetricsRetention    = 100
	defaultMaxStations         = 512
	defaultAPIRateLimit        = 50
)

type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidDuration, err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// NewDuration returns a pointer to d for optional duration settings.
func NewDuration(d time.Duration) *Duration {
	v := Duration(d)
	return &v
}

// InterfaceConfig names an access point interface and the SSID it serves.
type InterfaceConfig struct {
	Name string `json:"name"` // e.g., wlan-2400mhz
	SSID string `json:"ssid"`
}

// SteeringConfig is the JSON form of models.SteeringConfig. Thresholds and
// windows are pointers because zero is a valid setting; nil means the key
// was absent and the default applies.
type SteeringConfig struct {
	Mechanism           models.Mechanism `json:"mechanism"`
	TargetInterface     string           `json:"target_interface"`
	BandInterfaces      []string         `json:"band_interfaces"`
	RSSIThreshold       *int             `json:"rssi_threshold"`
	StrongRSSIThreshold *int             `json:"strong_rssi_threshold"`
	FreshWindow         *Duration        `json:"fresh_window"`
	RecentWindow        *Duration        `json:"recent_window"`
	DeferWindow         *Duration        `json:"defer_window"`
	ExpirationWindow    *Duration        `json:"expiration_window"`
}

// SignalConfig is the JSON form of models.SignalConfig.
type SignalConfig struct {
	Enabled      bool      `json:"enabled"`
	MinSignal    *int      `json:"min_signal"`
	Strikes      int       `json:"strikes"`
	PollInterval *Duration `json:"poll_interval"`
	DropReason   uint16    `json:"drop_reason"` // 0 is reserved in 802.11, so it means unset
}

// DaemonConfig represents the configuration for apsteerd.
type DaemonConfig struct {
	ListenAddr   string               `json:"listen_addr"` // e.g., :8090
	GrpcAddr     string               `json:"grpc_addr"`   // e.g., :50061
	Log          logging.Config       `json:"log"`
	Store        models.StoreConfig   `json:"store"`
	Steering     SteeringConfig       `json:"steering"`
	Signal       SignalConfig         `json:"signal"`
	Interfaces   []InterfaceConfig    `json:"interfaces"`
	Metrics      models.MetricsConfig `json:"metrics"`
	APIRateLimit int                  `json:"api_rate_limit"` // requests per second
}

// Validate fills defaults for unset values and rejects settings the daemon
// cannot run with.
func (c *DaemonConfig) Validate() error {
	c.applyDefaults()

	if len(c.Interfaces) == 0 {
		return errNoInterfaces
	}

	seen := make(map[string]struct{}, len(c.Interfaces))

	for _, iface := range c.Interfaces {
		if iface.Name == "" {
			return errEmptyIfaceName
		}

		if _, dup := seen[iface.Name]; dup {
			return fmt.Errorf("%w: %s", errDuplicateIface, iface.Name)
		}

		seen[iface.Name] = struct{}{}
	}

	if c.Store.Capacity < 1 {
		return fmt.Errorf("%w: %d", errInvalidCapacity, c.Store.Capacity)
	}

	if c.Store.Backend == "sqlite" && !filepath.IsAbs(c.Store.Path) {
		return fmt.Errorf("%w: %q", errRelativeStorePath, c.Store.Path)
	}

	if err := c.Steering.validate(); err != nil {
		return err
	}

	if c.Signal.Enabled {
		if c.Signal.Strikes < 1 {
			return fmt.Errorf("%w: %d", errInvalidStrikes, c.Signal.Strikes)
		}

		if *c.Signal.PollInterval <= 0 {
			return fmt.Errorf("%w: %s", errInvalidPoll, time.Duration(*c.Signal.PollInterval))
		}
	}

	return nil
}

func (c *DaemonConfig) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	if c.GrpcAddr == "" {
		c.GrpcAddr = defaultGRPCAddr
	}

	if c.Store.Backend == "" {
		c.Store.Backend = "memory"
	}

	if c.Store.Capacity == 0 {
		c.Store.Capacity = defaultStoreCapacity
	}

	s := &c.Steering

	if s.Mechanism == "" {
		s.Mechanism = models.MechanismDisabled
		if s.TargetInterface != "" {
			s.Mechanism = models.MechanismAssocReject
		}
	}

	setDefaultInt(&s.RSSIThreshold, defaultRSSIThreshold)
	setDefaultInt(&s.StrongRSSIThreshold, defaultStrongRSSIThreshold)
	setDefaultDuration(&s.FreshWindow, defaultFreshWindow)
	setDefaultDuration(&s.RecentWindow, defaultRecentWindow)
	setDefaultDuration(&s.DeferWindow, defaultDeferWindow)
	setDefaultDuration(&s.ExpirationWindow, defaultExpirationWindow)

	setDefaultInt(&c.Signal.MinSignal, defaultMinSignal)
	setDefaultDuration(&c.Signal.PollInterval, defaultPollInterval)

	if c.Signal.DropReason == 0 {
		c.Signal.DropReason = defaultDropReason
	}

	if c.Metrics.Retention == 0 {
		c.Metrics.Retention = defaultMetricsRetention
	}

	if c.Metrics.MaxStations == 0 {
		c.Metrics.MaxStations = defaultMaxStations
	}

	if c.APIRateLimit == 0 {
		c.APIRateLimit = defaultAPIRateLimit
	}
}

func setDefaultDuration(d **Duration, def time.Duration) {
	if *d == nil {
		*d = NewDuration(def)
	}
}

func setDefaultInt(v **int, def int) {
	if *v == nil {
		*v = &def
	}
}

func durationOr(d *Duration, def time.Duration) time.Duration {
	if d == nil {
		return def
	}

	return time.Duration(*d)
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}

	return *v
}

func (s *SteeringConfig) validate() error {
	switch s.Mechanism {
	case models.MechanismDisabled, models.MechanismAssocReject, models.MechanismBSSTransition:
	default:
		return fmt.Errorf("%w: %q", errUnknownMechanism, s.Mechanism)
	}

	windows := []struct {
		name  string
		value *Duration
	}{
		{"fresh_window", s.FreshWindow},
		{"recent_window", s.RecentWindow},
		{"defer_window", s.DeferWindow},
		{"expiration_window", s.ExpirationWindow},
	}

	for _, w := range windows {
		if w.value != nil && *w.value < 0 {
			return fmt.Errorf("%w: %s", errNegativeWindow, w.name)
		}
	}

	return nil
}

// SteeringModel converts the steering section for use by the engine.
func (c *DaemonConfig) SteeringModel() models.SteeringConfig {
	s := c.Steering

	return models.SteeringConfig{
		Mechanism:           s.Mechanism,
		TargetInterface:     s.TargetInterface,
		BandInterfaces:      append([]string(nil), s.BandInterfaces...),
		RSSIThreshold:       intOr(s.RSSIThreshold, defaultRSSIThreshold),
		StrongRSSIThreshold: intOr(s.StrongRSSIThreshold, defaultStrongRSSIThreshold),
		FreshWindow:         durationOr(s.FreshWindow, defaultFreshWindow),
		RecentWindow:        durationOr(s.RecentWindow, defaultRecentWindow),
		DeferWindow:         durationOr(s.DeferWindow, defaultDeferWindow),
		ExpirationWindow:    durationOr(s.ExpirationWindow, defaultExpirationWindow),
	}
}

// SignalModel converts the signal section for use by the monitor.
func (c *DaemonConfig) SignalModel() models.SignalConfig {
	return models.SignalConfig{
		Enabled:      c.Signal.Enabled,
		MinSignal:    intOr(c.Signal.MinSignal, defaultMinSignal),
		Strikes:      c.Signal.Strikes,
		PollInterval: durationOr(c.Signal.PollInterval, defaultPollInterval),
		DropReason:   c.Signal.DropReason,
	}
}
