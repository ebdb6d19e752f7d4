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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreeman451/apsteer/pkg/models"
)

func point(ts time.Time, signal int) models.SignalPoint {
	return models.SignalPoint{Timestamp: ts, Signal: signal, AvgSignal: signal, Interface: "wlan0"}
}

func TestRingBuffer(t *testing.T) {
	buf := NewBuffer(3)
	assert.Nil(t, buf.GetLastPoint())
	assert.Empty(t, buf.GetPoints())

	now := time.Now()
	for i := 0; i < 5; i++ {
		buf.Add(point(now.Add(time.Duration(i)*time.Second), -50-i))
	}

	points := buf.GetPoints()
	require.Len(t, points, 3)
	assert.Equal(t, []int{-54, -53, -52}, []int{points[0].Signal, points[1].Signal, points[2].Signal})

	last := buf.GetLastPoint()
	require.NotNil(t, last)
	assert.Equal(t, -54, last.Signal)
}

func TestManager(t *testing.T) {
	cfg := models.MetricsConfig{
		Enabled:     true,
		Retention:   10,
		MaxStations: 2,
	}

	a := models.MustParseHardwareAddr("02:00:00:00:00:01")
	b := models.MustParseHardwareAddr("02:00:00:00:00:02")
	c := models.MustParseHardwareAddr("02:00:00:00:00:03")

	t.Run("tracks stations and drops least recent", func(t *testing.T) {
		manager := NewManager(cfg)
		now := time.Now()

		require.NoError(t, manager.AddSample(a, point(now, -60)))
		require.NoError(t, manager.AddSample(b, point(now.Add(time.Second), -61)))
		assert.Equal(t, 2, manager.GetActiveStations())

		require.NoError(t, manager.AddSample(c, point(now.Add(2*time.Second), -62)))
		assert.Equal(t, 2, manager.GetActiveStations())
		assert.Nil(t, manager.GetHistory(a))
		assert.Len(t, manager.GetHistory(c), 1)

		manager.Forget(b)
		assert.Nil(t, manager.GetHistory(b))
	})

	t.Run("disabled history", func(t *testing.T) {
		manager := NewManager(models.MetricsConfig{Enabled: false})

		require.NoError(t, manager.AddSample(a, point(time.Now(), -60)))
		assert.Nil(t, manager.GetHistory(a))
	})

	t.Run("stale cleanup", func(t *testing.T) {
		manager := NewManager(cfg)

		require.NoError(t, manager.AddSample(a, point(time.Now().Add(-time.Hour), -60)))
		require.NoError(t, manager.AddSample(b, point(time.Now(), -60)))

		assert.Equal(t, 1, manager.CleanupStaleStations(time.Now(), time.Minute))
		assert.Nil(t, manager.GetHistory(a))
		assert.NotNil(t, manager.GetHistory(b))
	})

	t.Run("concurrent access", func(t *testing.T) {
		manager := NewManager(models.MetricsConfig{Enabled: true, Retention: 100})

		const goroutines = 10

		const iterations = 100

		var wg sync.WaitGroup

		for i := 0; i < goroutines; i++ {
			wg.Add(1)

			go func(id int) {
				defer wg.Done()

				for j := 0; j < iterations; j++ {
					_ = manager.AddSample(a, point(time.Now(), -(id + j)))
					_ = manager.GetHistory(a)
				}
			}(i)
		}

		wg.Wait()

		assert.Len(t, manager.GetHistory(a), 100)
	})
}
