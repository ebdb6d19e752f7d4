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

package rssi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mfreeman451/apsteer/pkg/driver"
	"github.com/mfreeman451/apsteer/pkg/eloop"
	"github.com/mfreeman451/apsteer/pkg/events"
	"github.com/mfreeman451/apsteer/pkg/logging"
	"github.com/mfreeman451/apsteer/pkg/metrics"
	"github.com/mfreeman451/apsteer/pkg/models"
	"github.com/mfreeman451/apsteer/pkg/stations"
)

var (
	staA = models.MustParseHardwareAddr("02:00:00:00:00:0a")
	staB = models.MustParseHardwareAddr("02:00:00:00:00:0b")
)

func signalConfig() models.SignalConfig {
	return models.SignalConfig{
		Enabled:      true,
		MinSignal:    -70,
		Strikes:      3,
		PollInterval: 10 * time.Second,
		DropReason:   3,
	}
}

type scheduled struct {
	d  time.Duration
	fn func()
}

// fakeScheduler records registrations instead of running them.
type fakeScheduler struct {
	pending []scheduled
}

func (f *fakeScheduler) RegisterTimeout(d time.Duration, fn func()) *eloop.Timeout {
	f.pending = append(f.pending, scheduled{d: d, fn: fn})

	return &eloop.Timeout{}
}

// fire runs the oldest registration.
func (f *fakeScheduler) fire(t *testing.T) {
	t.Helper()
	require.NotEmpty(t, f.pending, "nothing scheduled")

	next := f.pending[0]
	f.pending = f.pending[1:]
	next.fn()
}

func TestMonitor_StrikesAndEviction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	drv := driver.NewMockDriver(ctrl)
	table := stations.New()
	table.Add(staA)

	log := logging.NewRecorder()
	m := NewMonitor("wlan-2400mhz", signalConfig(), table, drv, log)

	averages := []int{-65, -72, -73, -74}
	wantStrikes := []int{0, 1, 2, 3}

	for _, avg := range averages {
		drv.EXPECT().ReadStaData(ctx, staA).Return(models.StaData{Signal: avg, LastAckRSSI: avg}, nil)
	}

	drv.EXPECT().Deauthenticate(ctx, staA, uint16(3)).Return(nil).Times(1)

	for i := range averages {
		summary := m.Check(ctx)
		assert.Equal(t, 1, summary.Stations)

		entries := log.Messages("Station signal")
		require.Len(t, entries, i+1)
		assert.Equal(t, wantStrikes[i], entries[i].Fields["strikes"], "pass %d", i+1)

		if i < len(averages)-1 {
			assert.Equal(t, 0, summary.Dropped)

			sta, ok := table.Get(staA)
			require.True(t, ok)
			assert.Equal(t, wantStrikes[i], sta.Strikes)
		} else {
			assert.Equal(t, 1, summary.Dropped)
		}
	}

	_, ok := table.Get(staA)
	assert.False(t, ok, "evicted station is no longer tracked")

	// The table is empty now, so further passes touch nothing.
	summary := m.Check(ctx)
	assert.Equal(t, models.PassSummary{Interface: "wlan-2400mhz"}, summary)

	polls := log.Messages("Signal poll")
	require.Len(t, polls, 5)
	assert.Equal(t, 1, polls[3].Fields["dropped"])
}

func TestMonitor_Evaluation(t *testing.T) {
	tests := []struct {
		name        string
		strikes     int
		data        models.StaData
		wantStrikes int
		wantAvg     int
	}{
		{
			name:        "recovered sample resets strikes",
			strikes:     2,
			data:        models.StaData{Signal: -60, LastAckRSSI: -62},
			wantStrikes: 0,
			wantAvg:     -62,
		},
		{
			name:        "glitch below average is ignored",
			strikes:     2,
			data:        models.StaData{Signal: -80, LastAckRSSI: -72},
			wantStrikes: 2,
			wantAvg:     -72,
		},
		{
			name:        "exactly five below average is ignored",
			strikes:     1,
			data:        models.StaData{Signal: -77, LastAckRSSI: -72},
			wantStrikes: 1,
			wantAvg:     -72,
		},
		{
			name:        "four below average is evaluated",
			strikes:     1,
			data:        models.StaData{Signal: -76, LastAckRSSI: -72},
			wantStrikes: 2,
			wantAvg:     -72,
		},
		{
			name:        "strong instantaneous reading raises the average",
			strikes:     2,
			data:        models.StaData{Signal: -60, LastAckRSSI: -75},
			wantStrikes: 0,
			wantAvg:     -60,
		},
		{
			name:        "average at minimum is acceptable",
			strikes:     1,
			data:        models.StaData{Signal: -70, LastAckRSSI: -70},
			wantStrikes: 0,
			wantAvg:     -70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			ctx := context.Background()
			drv := driver.NewMockDriver(ctrl)
			table := stations.New()
			table.Add(staA).Strikes = tt.strikes

			drv.EXPECT().ReadStaData(ctx, staA).Return(tt.data, nil)

			m := NewMonitor("wlan0", signalConfig(), table, drv, nil)
			summary := m.Check(ctx)
			assert.Equal(t, 0, summary.Dropped)

			sta, ok := table.Get(staA)
			require.True(t, ok)
			assert.Equal(t, tt.wantStrikes, sta.Strikes)
			assert.Equal(t, tt.wantAvg, sta.AvgSignal)
			assert.Equal(t, tt.data.Signal, sta.Signal)
		})
	}
}

func TestMonitor_DriverFailureSkipsStation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	drv := driver.NewMockDriver(ctrl)
	table := stations.New()
	table.Add(staA).Strikes = 2
	table.Add(staB)

	drv.EXPECT().ReadStaData(ctx, staA).Return(models.StaData{}, errors.New("no such station"))
	drv.EXPECT().ReadStaData(ctx, staB).Return(models.StaData{Signal: -50, LastAckRSSI: -50}, nil)

	log := logging.NewRecorder()
	m := NewMonitor("wlan0", signalConfig(), table, drv, log)

	summary := m.Check(ctx)
	assert.Equal(t, models.PassSummary{Interface: "wlan0", Stations: 1, Skipped: 1}, summary)

	sta, _ := table.Get(staA)
	assert.Equal(t, 2, sta.Strikes)

	records := log.Messages("Station signal")
	require.Len(t, records, 1)
	assert.Equal(t, staB.String(), records[0].Fields["station"])
}

func TestMonitor_DeauthFailureStillRemoves(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	drv := driver.NewMockDriver(ctrl)
	table := stations.New()
	table.Add(staA).Strikes = 2

	drv.EXPECT().ReadStaData(ctx, staA).Return(models.StaData{Signal: -80, LastAckRSSI: -80}, nil)
	drv.EXPECT().Deauthenticate(ctx, staA, uint16(3)).Return(errors.New("hostapd unreachable"))

	log := logging.NewRecorder()
	m := NewMonitor("wlan0", signalConfig(), table, drv, log)

	summary := m.Check(ctx)
	assert.Equal(t, 1, summary.Dropped)
	assert.Equal(t, 0, table.Len())

	warnings := log.Messages("Failed to deauthenticate station")
	require.Len(t, warnings, 1)
	assert.Equal(t, "warn", warnings[0].Level)
}

func TestMonitor_StationRemovedMidPass(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	drv := driver.NewMockDriver(ctrl)
	table := stations.New()
	table.Add(staA)
	table.Add(staB)

	drv.EXPECT().ReadStaData(ctx, staA).DoAndReturn(
		func(context.Context, models.HardwareAddr) (models.StaData, error) {
			table.Remove(staB)

			return models.StaData{Signal: -50, LastAckRSSI: -50}, nil
		})

	m := NewMonitor("wlan0", signalConfig(), table, drv, nil)

	summary := m.Check(ctx)
	assert.Equal(t, 1, summary.Stations)
	assert.Equal(t, 0, summary.Skipped)
}

func TestMonitor_Reschedules(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	drv := driver.NewMockDriver(ctrl)
	sched := &fakeScheduler{}

	m := NewMonitor("wlan0", signalConfig(), stations.New(), drv, nil)
	m.Start(ctx, sched)
	m.Start(ctx, sched)

	require.Len(t, sched.pending, 1)
	assert.Equal(t, 10*time.Second, sched.pending[0].d)
	assert.True(t, m.Running())

	sched.fire(t)
	require.Len(t, sched.pending, 1, "each pass schedules the next")

	sched.fire(t)
	require.Len(t, sched.pending, 1)

	m.Stop()
	assert.False(t, m.Running())

	sched.fire(t)
	assert.Empty(t, sched.pending, "no pass after stop")
}

func TestMonitor_DisabledNeverStarts(t *testing.T) {
	cfg := signalConfig()
	cfg.Enabled = false

	sched := &fakeScheduler{}
	m := NewMonitor("wlan0", cfg, stations.New(), nil, nil)
	m.Start(context.Background(), sched)

	assert.Empty(t, sched.pending)
	assert.False(t, m.Running())
}

func TestMonitor_PublishesAndRecords(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	drv := driver.NewMockDriver(ctrl)
	table := stations.New()
	table.Add(staA).Strikes = 2
	table.Add(staB)

	hub := events.NewHub()
	sub := hub.Subscribe()
	history := metrics.NewManager(models.MetricsConfig{Enabled: true, Retention: 10})

	// staA has history from an earlier pass; eviction must clear it.
	require.NoError(t, history.AddSample(staA, models.SignalPoint{Signal: -74, AvgSignal: -74, Interface: "wlan0"}))

	drv.EXPECT().ReadStaData(ctx, staA).Return(models.StaData{Signal: -75, LastAckRSSI: -78}, nil)
	drv.EXPECT().Deauthenticate(ctx, staA, uint16(3)).Return(nil)
	drv.EXPECT().ReadStaData(ctx, staB).Return(models.StaData{Signal: -52, LastAckRSSI: -55}, nil)

	m := NewMonitor("wlan0", signalConfig(), table, drv, nil,
		WithPublisher(hub), WithHistory(history), WithCollector(nil))
	m.Check(ctx)

	eviction := <-sub
	assert.Equal(t, models.KindEviction, eviction.Kind)
	assert.Equal(t, staA, eviction.Station)
	assert.Equal(t, "wlan0", eviction.Interface)
	assert.Equal(t, -75, eviction.Signal)

	poll := <-sub
	assert.Equal(t, models.KindPoll, poll.Kind)
	require.NotNil(t, poll.Summary)
	assert.Equal(t, 1, poll.Summary.Dropped)

	assert.Nil(t, history.GetHistory(staA), "evicted station keeps no history")

	points := history.GetHistory(staB)
	require.Len(t, points, 1)
	assert.Equal(t, -52, points[0].AvgSignal)
}
