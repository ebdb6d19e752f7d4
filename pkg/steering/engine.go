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

// Package steering decides, when a station associates, whether it should be
// pushed toward the preferred band instead.
package steering

import (
	"context"
	"time"

	"github.com/mfreeman451/apsteer/pkg/events"
	"github.com/mfreeman451/apsteer/pkg/logging"
	"github.com/mfreeman451/apsteer/pkg/metrics"
	"github.com/mfreeman451/apsteer/pkg/models"
	"github.com/mfreeman451/apsteer/pkg/timestamps"
)

// Engine evaluates association requests for one interface. It must only be
// used from the event loop that owns the interface.
type Engine struct {
	iface     string
	cfg       *models.SteeringConfig
	store     *timestamps.Store
	log       logging.Logger
	collector *metrics.Collector
	events    events.Publisher
	now       func() time.Time
}

type Option func(*Engine)

// WithCollector counts decisions by reason.
func WithCollector(c *metrics.Collector) Option {
	return func(e *Engine) { e.collector = c }
}

// WithPublisher announces every decision.
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.events = p }
}

// WithClock sets the clock used to stamp published events.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine binds an engine to the store for its interface.
func NewEngine(store *timestamps.Store, cfg *models.SteeringConfig, log logging.Logger, opts ...Option) *Engine {
	if log == nil {
		log = logging.Noop()
	}

	iface := store.Scope().Interface

	e := &Engine{
		iface: iface,
		cfg:   cfg,
		store: store,
		log:   log.With(logging.String("interface", iface)),
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Decide evaluates an association request. The first matching rule wins.
func (e *Engine) Decide(ctx context.Context, addr models.HardwareAddr, signal int, reassoc bool) models.Decision {
	d := e.decide(ctx, addr, signal, reassoc)

	e.log.Info(ctx, "Steering decision",
		logging.Stringer("station", addr),
		logging.Int("signal", signal),
		logging.Bool("steer", d.Steer),
		logging.Stringer("reason", d.Reason),
		logging.Duration("since_probe", d.SinceProbe),
		logging.Duration("since_steer", d.SinceSteer),
		logging.Duration("since_defer", d.SinceDefer))

	e.collector.ObserveDecision(e.iface, d.Reason)

	if e.events != nil {
		decision := d
		e.events.Publish(models.Event{
			Kind:      models.KindDecision,
			Interface: e.iface,
			Station:   addr,
			Signal:    signal,
			Decision:  &decision,
			Timestamp: e.now(),
		})
	}

	return d
}

func (e *Engine) decide(ctx context.Context, addr models.HardwareAddr, signal int, reassoc bool) models.Decision {
	if reassoc {
		return models.Decision{Reason: models.NoSteerReassoc}
	}

	if !e.cfg.Enabled() {
		return models.Decision{Reason: models.NoSteerUnspecified}
	}

	if e.iface == e.cfg.TargetInterface {
		return models.Decision{Reason: models.NoSteerTargetInterface}
	}

	if !e.store.Known(ctx, addr) {
		return models.Decision{Reason: models.NoSteerNewStation}
	}

	sinceProbe, probed := e.store.Lookup(ctx, addr, models.TargetInterface, models.EventProbe)
	if !probed {
		return models.Decision{Reason: models.NoSteerNonCandidate}
	}

	sinceSteer, attempted := e.store.Lookup(ctx, addr, models.CurrentInterface, models.EventAttempt)

	if sinceDefer, ok := e.lastSteer(ctx, addr, sinceSteer, attempted); ok && sinceDefer < e.cfg.DeferWindow {
		return models.Decision{Reason: models.NoSteerDeferred, SinceDefer: sinceDefer}
	}

	if attempted && sinceSteer < e.cfg.ExpirationWindow {
		if err := e.store.WriteFailed(ctx, addr); err != nil {
			e.log.Warn(ctx, "Failed to record failed steer",
				logging.Stringer("station", addr), logging.Err(err))
		}

		return models.Decision{
			Reason:     models.NoSteerRecentlySteered,
			SinceProbe: sinceProbe,
			SinceSteer: sinceSteer,
		}
	}

	if signal < e.cfg.RSSIThreshold ||
		(sinceProbe >= e.cfg.RecentWindow && signal < e.cfg.StrongRSSIThreshold) {
		return models.Decision{Reason: models.NoSteerWeakSignal, SinceProbe: sinceProbe}
	}

	if err := e.store.WriteAttempt(ctx, addr); err != nil {
		e.log.Error(ctx, "Failed to record steer attempt",
			logging.Stringer("station", addr), logging.Err(err))

		return models.Decision{Reason: models.NoSteerUnspecified, SinceProbe: sinceProbe}
	}

	if !attempted {
		sinceSteer = 0
	}

	return models.Decision{
		Steer:      true,
		Reason:     models.Steer,
		SinceProbe: sinceProbe,
		SinceSteer: sinceSteer,
	}
}

// lastSteer returns the age of the most recent steering event: an attempt
// here or a disconnect from the target.
func (e *Engine) lastSteer(ctx context.Context, addr models.HardwareAddr,
	sinceAttempt time.Duration, attempted bool) (time.Duration, bool) {
	sinceDefer, deferred := e.store.Lookup(ctx, addr, models.TargetInterface, models.EventDefer)

	switch {
	case attempted && deferred:
		return min(sinceAttempt, sinceDefer), true
	case attempted:
		return sinceAttempt, true
	case deferred:
		return sinceDefer, true
	default:
		return 0, false
	}
}

// OnProbe records a probe request received on this interface.
func (e *Engine) OnProbe(ctx context.Context, addr models.HardwareAddr, signal int) (bool, error) {
	return e.store.WriteProbe(ctx, addr, models.CurrentInterface, signal)
}

// OnConnect records a completed association.
func (e *Engine) OnConnect(ctx context.Context, addr models.HardwareAddr) error {
	return e.store.WriteConnect(ctx, addr)
}

// OnDisconnect records a disassociation, which defers steering back to
// this interface for a while.
func (e *Engine) OnDisconnect(ctx context.Context, addr models.HardwareAddr) error {
	return e.store.WriteDisconnect(ctx, addr)
}

// DualBandCapable reports whether the station has probed on both of the
// configured band interfaces.
func (e *Engine) DualBandCapable(ctx context.Context, addr models.HardwareAddr) bool {
	if len(e.cfg.BandInterfaces) < 2 {
		return false
	}

	for _, ifname := range e.cfg.BandInterfaces[:2] {
		if _, ok := e.store.LookupOn(ctx, addr, ifname, models.EventProbe); !ok {
			return false
		}
	}

	return true
}

// Interface returns the name of the interface the engine serves.
func (e *Engine) Interface() string { return e.iface }
