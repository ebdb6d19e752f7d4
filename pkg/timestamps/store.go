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

// Package timestamps pkg/timestamps/store.go
package timestamps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mfreeman451/apsteer/pkg/clock"
	"github.com/mfreeman451/apsteer/pkg/logging"
	"github.com/mfreeman451/apsteer/pkg/models"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"

	interfaceScopePrefix = "i_"
	ssidScopePrefix      = "s_"
)

// Scope binds a Store to the interface handling requests, its steering
// target and the network name they share.
type Scope struct {
	Interface string
	Target    string
	SSID      string
}

// Store records and queries steering timestamps for one interface. Several
// stores may share a Backend; records are namespaced by scope.
type Store struct {
	backend Backend
	scope   Scope
	cfg     *models.SteeringConfig
	clock   clock.Clock
	log     logging.Logger
}

// NewBackend builds the backend selected by cfg.
func NewBackend(cfg *models.StoreConfig) (Backend, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryBackend(cfg.Capacity)
	case BackendSQLite:
		return NewSQLiteBackend(cfg.Path, cfg.Capacity)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// New returns a Store bound to scope.
func New(backend Backend, scope Scope, cfg *models.SteeringConfig, clk clock.Clock, log logging.Logger) (*Store, error) {
	if scope.Interface == "" {
		return nil, ErrNoInterface
	}

	if clk == nil {
		clk = clock.Real()
	}

	if log == nil {
		log = logging.Noop()
	}

	return &Store{
		backend: backend,
		scope:   scope,
		cfg:     cfg,
		clock:   clk,
		log:     log.With(logging.String("interface", scope.Interface)),
	}, nil
}

func (s *Store) Scope() Scope { return s.scope }

// WriteProbe records that the station probed the interface in the given
// role. Probes weaker than the configured threshold are ignored and report
// false. A probe already recorded within the fresh window is left as is.
func (s *Store) WriteProbe(ctx context.Context, addr models.HardwareAddr, role models.InterfaceRole, signal int) (bool, error) {
	if signal < s.cfg.RSSIThreshold {
		return false, nil
	}

	key := s.key(addr, role, models.EventProbe)

	if age, ok := s.age(ctx, key); ok && age < s.cfg.FreshWindow {
		return true, nil
	}

	if err := s.put(ctx, key); err != nil {
		return false, err
	}

	return true, nil
}

// WriteConnect records a successful association. Connect records are keyed
// by network name so any interface sharing the SSID sees them.
func (s *Store) WriteConnect(ctx context.Context, addr models.HardwareAddr) error {
	return s.put(ctx, s.key(addr, models.CurrentInterface, models.EventConnect))
}

// WriteDisconnect records a defer instant for the station on this interface.
func (s *Store) WriteDisconnect(ctx context.Context, addr models.HardwareAddr) error {
	return s.put(ctx, s.key(addr, models.CurrentInterface, models.EventDefer))
}

// WriteAttempt records a steering attempt on this interface.
func (s *Store) WriteAttempt(ctx context.Context, addr models.HardwareAddr) error {
	return s.put(ctx, s.key(addr, models.CurrentInterface, models.EventAttempt))
}

// WriteFailed records that an attempt did not move the station.
func (s *Store) WriteFailed(ctx context.Context, addr models.HardwareAddr) error {
	return s.put(ctx, s.key(addr, models.CurrentInterface, models.EventFailed))
}

// WriteEvent stamps an arbitrary event with the current time.
func (s *Store) WriteEvent(ctx context.Context, addr models.HardwareAddr, role models.InterfaceRole, event models.SteerEvent) error {
	return s.put(ctx, s.key(addr, role, event))
}

// Lookup returns how long ago the event was recorded. Missing, unreadable
// and future-dated records all report false.
func (s *Store) Lookup(ctx context.Context, addr models.HardwareAddr, role models.InterfaceRole, event models.SteerEvent) (time.Duration, bool) {
	return s.age(ctx, s.key(addr, role, event))
}

// LookupOn is Lookup for an interface named explicitly rather than by role.
func (s *Store) LookupOn(ctx context.Context, addr models.HardwareAddr, ifname string, event models.SteerEvent) (time.Duration, bool) {
	return s.age(ctx, Key{Station: addr, Scope: InterfaceScope(ifname), Event: event})
}

// Known reports whether anything at all has been recorded for the station.
func (s *Store) Known(ctx context.Context, addr models.HardwareAddr) bool {
	found, err := s.backend.HasStation(ctx, addr)
	if err != nil {
		s.log.Warn(ctx, "Station lookup failed", logging.Stringer("station", addr), logging.Err(err))

		return false
	}

	return found
}

// Records lists everything stored for the station across all scopes.
func (s *Store) Records(ctx context.Context, addr models.HardwareAddr) ([]Record, error) {
	return s.backend.Records(ctx, addr)
}

// Prune drops records older than maxAge.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int, error) {
	return s.backend.Prune(ctx, s.clock.Now().Add(-maxAge))
}

func (s *Store) age(ctx context.Context, key Key) (time.Duration, bool) {
	ts, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.log.Warn(ctx, "Timestamp lookup failed", logging.String("key", key.String()), logging.Err(err))

		return 0, false
	}

	if !ok {
		return 0, false
	}

	age := s.clock.Now().Sub(ts)
	if age < 0 {
		s.log.Warn(ctx, "Ignoring future timestamp", logging.String("key", key.String()))

		return 0, false
	}

	return age, true
}

func (s *Store) put(ctx context.Context, key Key) error {
	if err := s.backend.Put(ctx, key, s.clock.Now()); err != nil {
		return fmt.Errorf("%w %s: %w", errPutTimestamp, key, err)
	}

	return nil
}

func (s *Store) key(addr models.HardwareAddr, role models.InterfaceRole, event models.SteerEvent) Key {
	var scope string

	switch {
	case event == models.EventConnect:
		scope = SSIDScope(s.scope.SSID)
	case role == models.TargetInterface:
		scope = InterfaceScope(s.scope.Target)
	default:
		scope = InterfaceScope(s.scope.Interface)
	}

	return Key{Station: addr, Scope: scope, Event: event}
}

// InterfaceScope names the namespace for records about one interface.
func InterfaceScope(ifname string) string {
	return interfaceScopePrefix + ifname
}

// SSIDScope names the namespace for records about one network. Bytes other
// than letters, digits, '-' and '_' are escaped so any SSID yields a safe
// name: spaces become '+', everything else becomes '=' and two hex digits.
func SSIDScope(ssid string) string {
	const hexDigits = "0123456789ABCDEF"

	var b strings.Builder

	b.WriteString(ssidScopePrefix)

	for i := 0; i < len(ssid); i++ {
		c := ssid[i]

		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteByte(c)
		case c == ' ':
			b.WriteByte('+')
		default:
			b.WriteByte('=')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0x0f])
		}
	}

	return b.String()
}
