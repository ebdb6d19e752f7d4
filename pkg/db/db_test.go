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

package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanOldData(t *testing.T) {
	ctx := context.Background()

	database, err := New(filepath.Join(t.TempDir(), "steering.db"))
	require.NoError(t, err)

	defer func() { _ = database.Close() }()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	rows := []struct {
		station string
		age     time.Duration
	}{
		{"020000000001", time.Hour},
		{"020000000002", 2 * time.Minute},
		{"020000000003", time.Second},
	}

	for _, r := range rows {
		_, err := database.ExecContext(ctx,
			`INSERT INTO steering_timestamps (station, scope, event, ts) VALUES (?, 'i_wlan0', 1, ?)`,
			r.station, now.Add(-r.age).UnixNano())
		require.NoError(t, err)
	}

	removed, err := database.CleanOldData(ctx, now, 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var count int
	require.NoError(t, database.QueryRowContext(ctx, `SELECT COUNT(*) FROM steering_timestamps`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestNew_InMemory(t *testing.T) {
	database, err := New(":memory:")
	require.NoError(t, err)

	defer func() { _ = database.Close() }()

	var name string
	err = database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'steering_timestamps'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "steering_timestamps", name)
}
