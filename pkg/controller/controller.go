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

// Package controller pkg/controller/controller.go wires one timestamp store
// and a signal monitor plus steering engine per interface onto a single
// event loop, and serves them to the API.
package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/mfreeman451/apsteer/pkg/api"
	"github.com/mfreeman451/apsteer/pkg/clock"
	"github.com/mfreeman451/apsteer/pkg/config"
	"github.com/mfreeman451/apsteer/pkg/driver"
	"github.com/mfreeman451/apsteer/pkg/eloop"
	"github.com/mfreeman451/apsteer/pkg/events"
	"github.com/mfreeman451/apsteer/pkg/lifecycle"
	"github.com/mfreeman451/apsteer/pkg/logging"
	"github.com/mfreeman451/apsteer/pkg/metrics"
	"github.com/mfreeman451/apsteer/pkg/models"
	"github.com/mfreeman451/apsteer/pkg/rssi"
	"github.com/mfreeman451/apsteer/pkg/stations"
	"github.com/mfreeman451/apsteer/pkg/steering"
	"github.com/mfreeman451/apsteer/pkg/timestamps"
)

const (
	housekeepingInterval = time.Minute
	recordRetention      = 24 * time.Hour
	historyRetention     = time.Hour
)

// DriverFactory returns the driver for a named interface.
type DriverFactory func(ifname string) driver.Driver

type iface struct {
	cfg     config.InterfaceConfig
	table   *stations.Table
	store   *timestamps.Store
	engine  *steering.Engine
	monitor *rssi.Monitor
}

// Controller owns the daemon's steering state. All state is touched only
// from the event loop.
type Controller struct {
	steering  models.SteeringConfig
	signal    models.SignalConfig
	storeCfg  models.StoreConfig
	loop      *eloop.Loop
	backend   timestamps.Backend
	ifaces    map[string]*iface
	order     []string
	history   *metrics.Manager
	collector *metrics.Collector
	hub       *events.Hub
	clock     clock.Clock
	log       logging.Logger
	startedAt time.Time
	done      chan struct{}
}

var (
	_ api.Service       = (*Controller)(nil)
	_ lifecycle.Service = (*Controller)(nil)
)

type Option func(*Controller)

// WithBackend uses an existing backend instead of building one from the
// store configuration.
func WithBackend(b timestamps.Backend) Option {
	return func(c *Controller) { c.backend = b }
}

func WithCollector(col *metrics.Collector) Option {
	return func(c *Controller) { c.collector = col }
}

func WithClock(clk clock.Clock) Option {
	return func(c *Controller) { c.clock = clk }
}

// New builds the per-interface components described by cfg. cfg must
// already be validated.
func New(cfg *config.DaemonConfig, drivers DriverFactory, log logging.Logger, opts ...Option) (*Controller, error) {
	if log == nil {
		log = logging.Noop()
	}

	c := &Controller{
		steering: cfg.SteeringModel(),
		signal:   cfg.SignalModel(),
		storeCfg: cfg.Store,
		loop:     eloop.New(),
		ifaces:   make(map[string]*iface, len(cfg.Interfaces)),
		hub:      events.NewHub(),
		clock:    clock.Real(),
		log:      log,
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	if cfg.Metrics.Enabled {
		c.history = metrics.NewManager(cfg.Metrics)
	}

	if c.backend == nil {
		backend, err := timestamps.NewBackend(&c.storeCfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errCreateBackend, err)
		}

		c.backend = backend
	}

	for _, ic := range cfg.Interfaces {
		if err := c.addInterface(ic, drivers); err != nil {
			_ = c.backend.Close()
			return nil, err
		}
	}

	return c, nil
}

func (c *Controller) addInterface(ic config.InterfaceConfig, drivers DriverFactory) error {
	drv := drivers(ic.Name)
	if drv == nil {
		return fmt.Errorf("%w: %s", errNoDriver, ic.Name)
	}

	store, err := timestamps.New(c.backend, timestamps.Scope{
		Interface: ic.Name,
		Target:    c.steering.TargetInterface,
		SSID:      ic.SSID,
	}, &c.steering, c.clock, c.log)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errCreateStore, ic.Name, err)
	}

	table := stations.New()

	monitorOpts := []rssi.Option{
		rssi.WithCollector(c.collector),
		rssi.WithPublisher(c.hub),
		rssi.WithClock(c.clock),
	}
	if c.history != nil {
		monitorOpts = append(monitorOpts, rssi.WithHistory(c.history))
	}

	c.ifaces[ic.Name] = &iface{
		cfg:   ic,
		table: table,
		store: store,
		engine: steering.NewEngine(store, &c.steering, c.log,
			steering.WithCollector(c.collector),
			steering.WithPublisher(c.hub),
			steering.WithClock(c.clock.Now)),
		monitor: rssi.NewMonitor(ic.Name, c.signal, table, drv, c.log, monitorOpts...),
	}
	c.order = append(c.order, ic.Name)

	return nil
}

// Events returns the hub decisions and evictions are published on.
func (c *Controller) Events() *events.Hub { return c.hub }

// Start runs the event loop until ctx is canceled.
func (c *Controller) Start(ctx context.Context) error {
	defer close(c.done)

	if err := c.loop.Post(func() { c.startInterfaces(ctx) }); err != nil {
		return err
	}

	c.log.Info(ctx, "Controller started",
		logging.Int("interfaces", len(c.order)),
		logging.String("mechanism", string(c.steering.Mechanism)),
		logging.String("target_interface", c.steering.TargetInterface))

	return c.loop.Run(ctx)
}

func (c *Controller) startInterfaces(ctx context.Context) {
	c.startedAt = c.clock.Now()

	for _, name := range c.order {
		c.ifaces[name].monitor.Start(ctx, c.loop)
	}

	c.scheduleHousekeeping(ctx)
}

func (c *Controller) scheduleHousekeeping(ctx context.Context) {
	c.loop.RegisterTimeout(housekeepingInterval, func() {
		c.housekeep(ctx)
		c.scheduleHousekeeping(ctx)
	})
}

// housekeep drops timestamp records and signal histories nobody has
// touched in a long time.
func (c *Controller) housekeep(ctx context.Context) {
	removed, err := c.backend.Prune(ctx, c.clock.Now().Add(-recordRetention))
	if err != nil {
		c.log.Warn(ctx, "Failed to prune timestamp records", logging.Err(err))
	} else if removed > 0 {
		c.log.Debug(ctx, "Pruned timestamp records", logging.Int("removed", removed))
	}

	if c.history != nil {
		if n := c.history.CleanupStaleStations(c.clock.Now(), historyRetention); n > 0 {
			c.log.Debug(ctx, "Dropped stale signal histories", logging.Int("removed", n))
		}
	}
}

// Stop waits for the loop to exit, then closes the store backend.
func (c *Controller) Stop(ctx context.Context) error {
	select {
	case <-c.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := c.backend.Close(); err != nil {
		return fmt.Errorf("%w: %w", errCloseBackend, err)
	}

	return nil
}

func (c *Controller) lookup(name string) (*iface, error) {
	ifc, ok := c.ifaces[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownInterface, name)
	}

	return ifc, nil
}

// Probe records a probe request heard on the named interface.
func (c *Controller) Probe(ctx context.Context, name string, addr models.HardwareAddr, signal int) (bool, error) {
	ifc, err := c.lookup(name)
	if err != nil {
		return false, err
	}

	var (
		recorded bool
		probeErr error
	)

	if err := c.loop.Call(ctx, func() {
		recorded, probeErr = ifc.engine.OnProbe(ctx, addr, signal)
	}); err != nil {
		return false, err
	}

	return recorded, probeErr
}

// Associate decides whether an association on the named interface should
// be steered away. A station that is allowed to stay is tracked by the
// signal monitor.
func (c *Controller) Associate(ctx context.Context, name string, addr models.HardwareAddr, signal int, reassoc bool) (models.Decision, error) {
	ifc, err := c.lookup(name)
	if err != nil {
		return models.Decision{}, err
	}

	var d models.Decision

	if err := c.loop.Call(ctx, func() {
		d = ifc.engine.Decide(ctx, addr, signal, reassoc)
		if !d.Steer {
			ifc.table.Add(addr)
		}
	}); err != nil {
		return models.Decision{}, err
	}

	return d, nil
}

// Connect records a completed association.
func (c *Controller) Connect(ctx context.Context, name string, addr models.HardwareAddr) error {
	ifc, err := c.lookup(name)
	if err != nil {
		return err
	}

	var connectErr error

	if err := c.loop.Call(ctx, func() {
		ifc.table.Add(addr)
		connectErr = ifc.engine.OnConnect(ctx, addr)
	}); err != nil {
		return err
	}

	return connectErr
}

// Disconnect stops tracking the station, drops its signal history and
// records the disassociation.
func (c *Controller) Disconnect(ctx context.Context, name string, addr models.HardwareAddr) error {
	ifc, err := c.lookup(name)
	if err != nil {
		return err
	}

	var disconnectErr error

	if err := c.loop.Call(ctx, func() {
		ifc.table.Remove(addr)
		disconnectErr = ifc.engine.OnDisconnect(ctx, addr)

		if c.history != nil {
			c.history.Forget(addr)
		}
	}); err != nil {
		return err
	}

	return disconnectErr
}

// Stations lists the stations the signal monitor tracks on an interface.
func (c *Controller) Stations(ctx context.Context, name string) ([]models.Station, error) {
	ifc, err := c.lookup(name)
	if err != nil {
		return nil, err
	}

	var out []models.Station

	if err := c.loop.Call(ctx, func() { out = ifc.table.Stations() }); err != nil {
		return nil, err
	}

	return out, nil
}

// SignalHistory returns the recent samples for a station, newest first.
func (c *Controller) SignalHistory(addr models.HardwareAddr) []models.SignalPoint {
	if c.history == nil {
		return nil
	}

	return c.history.GetHistory(addr)
}

// Capability reports what the store knows about a station.
func (c *Controller) Capability(ctx context.Context, addr models.HardwareAddr) (models.Capability, error) {
	capability := models.Capability{Station: addr}

	var recordsErr error

	if err := c.loop.Call(ctx, func() {
		ifc := c.ifaces[c.order[0]]

		capability.Known = ifc.store.Known(ctx, addr)
		capability.DualBand = ifc.engine.DualBandCapable(ctx, addr)

		var records []timestamps.Record

		records, recordsErr = ifc.store.Records(ctx, addr)

		now := c.clock.Now()
		capability.Records = make([]models.TimestampRecord, 0, len(records))

		for _, r := range records {
			capability.Records = append(capability.Records, models.TimestampRecord{
				Scope:     r.Scope,
				Event:     r.Event,
				Timestamp: r.Timestamp,
				Age:       now.Sub(r.Timestamp),
			})
		}
	}); err != nil {
		return models.Capability{}, err
	}

	return capability, recordsErr
}

// Status summarizes the daemon.
func (c *Controller) Status(ctx context.Context) (models.DaemonStatus, error) {
	status := models.DaemonStatus{
		Mechanism:       c.steering.Mechanism,
		TargetInterface: c.steering.TargetInterface,
		StoreCapacity:   c.storeCfg.Capacity,
	}

	var lenErr error

	if err := c.loop.Call(ctx, func() {
		status.StartedAt = c.startedAt
		status.StoredRecords, lenErr = c.backend.Len(ctx)

		for _, name := range c.order {
			ifc := c.ifaces[name]
			status.Interfaces = append(status.Interfaces, models.InterfaceStatus{
				Name:          name,
				SSID:          ifc.cfg.SSID,
				Target:        name == c.steering.TargetInterface,
				Stations:      ifc.table.Len(),
				SignalMonitor: ifc.monitor.Running(),
			})
		}
	}); err != nil {
		return models.DaemonStatus{}, err
	}

	return status, lenErr
}
