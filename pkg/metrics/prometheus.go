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

package metrics

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mfreeman451/apsteer/pkg/models"
)

var errIncompatibleCollector = errors.New("collector already registered with incompatible type")

// Collector exposes signal monitor and steering metrics to Prometheus.
// A nil *Collector is valid and records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Passes          *prometheus.CounterVec
	SampleFailures  *prometheus.CounterVec
	Evictions       *prometheus.CounterVec
	Decisions       *prometheus.CounterVec
	TrackedStations *prometheus.GaugeVec
	Signal          *prometheus.HistogramVec
}

// NewCollector registers the metrics against reg, reusing collectors that
// are already registered under the same name.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}

	var err error

	if c.Passes, err = registerCounterVec(reg, prometheus.CounterOpts{
		Name: "apsteer_signal_passes_total",
		Help: "Signal check passes run per interface.",
	}, "interface"); err != nil {
		return nil, err
	}

	if c.SampleFailures, err = registerCounterVec(reg, prometheus.CounterOpts{
		Name: "apsteer_signal_sample_failures_total",
		Help: "Stations skipped because the driver could not be read.",
	}, "interface"); err != nil {
		return nil, err
	}

	if c.Evictions, err = registerCounterVec(reg, prometheus.CounterOpts{
		Name: "apsteer_stations_evicted_total",
		Help: "Stations deauthenticated for persistently weak signal.",
	}, "interface"); err != nil {
		return nil, err
	}

	if c.Decisions, err = registerCounterVec(reg, prometheus.CounterOpts{
		Name: "apsteer_steering_decisions_total",
		Help: "Association-time steering decisions by reason.",
	}, "interface", "reason"); err != nil {
		return nil, err
	}

	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "apsteer_tracked_stations",
		Help: "Stations currently tracked by the signal monitor.",
	}, []string{"interface"})
	if err = reg.Register(gauge); err != nil {
		existing, ok := alreadyRegistered[*prometheus.GaugeVec](err)
		if !ok {
			return nil, fmt.Errorf("%w: apsteer_tracked_stations: %w", errIncompatibleCollector, err)
		}

		gauge = existing
	}

	c.TrackedStations = gauge

	hist := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "apsteer_station_signal_dbm",
		Help:    "Corrected average signal of sampled stations.",
		Buckets: []float64{-90, -85, -80, -75, -70, -65, -60, -55, -50, -45, -40, -30},
	}, []string{"interface"})
	if err = reg.Register(hist); err != nil {
		existing, ok := alreadyRegistered[*prometheus.HistogramVec](err)
		if !ok {
			return nil, fmt.Errorf("%w: apsteer_station_signal_dbm: %w", errIncompatibleCollector, err)
		}

		hist = existing
	}

	c.Signal = hist

	return c, nil
}

func registerCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, labels ...string) (*prometheus.CounterVec, error) {
	vec := prometheus.NewCounterVec(opts, labels)
	if err := reg.Register(vec); err != nil {
		existing, ok := alreadyRegistered[*prometheus.CounterVec](err)
		if !ok {
			return nil, fmt.Errorf("%w: %s: %w", errIncompatibleCollector, opts.Name, err)
		}

		return existing, nil
	}

	return vec, nil
}

func alreadyRegistered[T prometheus.Collector](err error) (T, bool) {
	var zero T

	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return zero, false
	}

	existing, ok := are.ExistingCollector.(T)

	return existing, ok
}

// Handler serves the registered metrics.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}

	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObservePass records a completed signal check pass.
func (c *Collector) ObservePass(summary models.PassSummary) {
	if c == nil {
		return
	}

	c.Passes.WithLabelValues(summary.Interface).Inc()
	c.SampleFailures.WithLabelValues(summary.Interface).Add(float64(summary.Skipped))
	c.Evictions.WithLabelValues(summary.Interface).Add(float64(summary.Dropped))
	c.TrackedStations.WithLabelValues(summary.Interface).Set(float64(summary.Stations - summary.Dropped))
}

// ObserveSignal records one station sample.
func (c *Collector) ObserveSignal(iface string, avgSignal int) {
	if c == nil {
		return
	}

	c.Signal.WithLabelValues(iface).Observe(float64(avgSignal))
}

// ObserveDecision counts a steering decision.
func (c *Collector) ObserveDecision(iface string, reason models.Reason) {
	if c == nil {
		return
	}

	c.Decisions.WithLabelValues(iface, reason.String()).Inc()
}
