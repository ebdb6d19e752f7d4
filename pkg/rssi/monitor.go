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

// Package rssi pkg/rssi/monitor.go periodically samples the signal of every
// associated station and deauthenticates stations whose signal stays below
// the configured minimum for several consecutive passes.
package rssi

import (
	"context"

	"github.com/mfreeman451/apsteer/pkg/clock"
	"github.com/mfreeman451/apsteer/pkg/driver"
	"github.com/mfreeman451/apsteer/pkg/eloop"
	"github.com/mfreeman451/apsteer/pkg/events"
	"github.com/mfreeman451/apsteer/pkg/logging"
	"github.com/mfreeman451/apsteer/pkg/metrics"
	"github.com/mfreeman451/apsteer/pkg/models"
	"github.com/mfreeman451/apsteer/pkg/stations"
)

// anomalyMargin is how far below the average an instantaneous reading may
// fall before the sample is treated as a glitch and ignored.
const anomalyMargin = 5

// Monitor runs signal check passes for one interface. It must only be used
// from the event loop that drives it.
type Monitor struct {
	iface  string
	cfg    models.SignalConfig
	table  *stations.Table
	driver driver.Driver
	log    logging.Logger

	clock     clock.Clock
	history   metrics.SignalCollector
	collector *metrics.Collector
	events    events.Publisher

	ctx     context.Context
	sched   eloop.Scheduler
	timeout *eloop.Timeout
	running bool
}

type Option func(*Monitor)

// WithHistory appends every sample to a per-station signal history.
func WithHistory(h metrics.SignalCollector) Option {
	return func(m *Monitor) { m.history = h }
}

// WithCollector reports passes and samples to Prometheus.
func WithCollector(c *metrics.Collector) Option {
	return func(m *Monitor) { m.collector = c }
}

// WithPublisher announces evictions and pass summaries.
func WithPublisher(p events.Publisher) Option {
	return func(m *Monitor) { m.events = p }
}

func WithClock(c clock.Clock) Option {
	return func(m *Monitor) { m.clock = c }
}

func NewMonitor(iface string, cfg models.SignalConfig, table *stations.Table, drv driver.Driver,
	log logging.Logger, opts ...Option) *Monitor {
	if log == nil {
		log = logging.Noop()
	}

	m := &Monitor{
		iface:  iface,
		cfg:    cfg,
		table:  table,
		driver: drv,
		log:    log.With(logging.String("interface", iface)),
		clock:  clock.Real(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Check performs one pass over the stations associated when it starts.
func (m *Monitor) Check(ctx context.Context) models.PassSummary {
	summary := models.PassSummary{Interface: m.iface}

	for _, addr := range m.table.Snapshot() {
		sta, ok := m.table.Get(addr)
		if !ok {
			continue
		}

		data, err := m.driver.ReadStaData(ctx, addr)
		if err != nil {
			summary.Skipped++

			m.log.Debug(ctx, "Failed to read station data",
				logging.Stringer("station", addr), logging.Err(err))

			continue
		}

		summary.Stations++

		if m.evaluate(ctx, sta, data) {
			summary.Dropped++
		}
	}

	m.log.Info(ctx, "Signal poll",
		logging.Int("stations", summary.Stations),
		logging.Int("dropped", summary.Dropped))

	m.collector.ObservePass(summary)
	m.publish(models.Event{Kind: models.KindPoll, Summary: &summary})

	return summary
}

// evaluate applies one sample to sta and reports whether it was evicted.
func (m *Monitor) evaluate(ctx context.Context, sta *models.Station, data models.StaData) bool {
	inst, avg := data.Signal, data.LastAckRSSI
	if inst > avg {
		avg = inst
	}

	sta.Signal = inst
	sta.AvgSignal = avg

	evicted := false

	if inst > avg-anomalyMargin {
		if avg < m.cfg.MinSignal {
			sta.Strikes++

			if sta.Strikes >= m.cfg.Strikes {
				m.evict(ctx, sta)
				evicted = true
			}
		} else {
			sta.Strikes = 0
		}
	}

	m.log.Debug(ctx, "Station signal",
		logging.Stringer("station", sta.Addr),
		logging.Int("signal", data.Signal),
		logging.Int("avg_signal", data.LastAckRSSI),
		logging.Int("strikes", sta.Strikes))

	if !evicted {
		m.record(sta)
	}

	return evicted
}

func (m *Monitor) evict(ctx context.Context, sta *models.Station) {
	if err := m.driver.Deauthenticate(ctx, sta.Addr, m.cfg.DropReason); err != nil {
		m.log.Warn(ctx, "Failed to deauthenticate station",
			logging.Stringer("station", sta.Addr), logging.Err(err))
	}

	m.table.Remove(sta.Addr)

	if m.history != nil {
		m.history.Forget(sta.Addr)
	}

	m.publish(models.Event{
		Kind:    models.KindEviction,
		Station: sta.Addr,
		Signal:  sta.AvgSignal,
	})
}

func (m *Monitor) record(sta *models.Station) {
	m.collector.ObserveSignal(m.iface, sta.AvgSignal)

	if m.history == nil {
		return
	}

	_ = m.history.AddSample(sta.Addr, models.SignalPoint{
		Timestamp: m.clock.Now(),
		Signal:    sta.Signal,
		AvgSignal: sta.AvgSignal,
		Interface: m.iface,
	})
}

func (m *Monitor) publish(ev models.Event) {
	if m.events == nil {
		return
	}

	ev.Interface = m.iface
	ev.Timestamp = m.clock.Now()

	m.events.Publish(ev)
}

// Start schedules the first pass. Each pass schedules the next one until
// Stop is called. It does nothing when signal checking is disabled.
func (m *Monitor) Start(ctx context.Context, sched eloop.Scheduler) {
	if !m.cfg.Enabled || m.running {
		return
	}

	m.ctx = ctx
	m.sched = sched
	m.running = true
	m.schedule()

	m.log.Info(ctx, "Signal monitor started",
		logging.Int("min_signal", m.cfg.MinSignal),
		logging.Int("strikes", m.cfg.Strikes),
		logging.Duration("poll_interval", m.cfg.PollInterval))
}

func (m *Monitor) schedule() {
	m.timeout = m.sched.RegisterTimeout(m.cfg.PollInterval, m.tick)
}

func (m *Monitor) tick() {
	if !m.running {
		return
	}

	m.Check(m.ctx)

	if m.running {
		m.schedule()
	}
}

// Stop cancels the pending pass.
func (m *Monitor) Stop() {
	m.running = false
	m.timeout.Cancel()
	m.timeout = nil
}

// Running reports whether passes are scheduled.
func (m *Monitor) Running() bool { return m.running }
