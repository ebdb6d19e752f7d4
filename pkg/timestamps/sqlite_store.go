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

// Package timestamps pkg/timestamps/sqlite_store.go
package timestamps

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mfreeman451/apsteer/pkg/db"
	"github.com/mfreeman451/apsteer/pkg/models"
)

const (
	dbOperationTimeout = 5 * time.Second
	dbFileName         = "steering.db"
	dirPermissions     = 0o755
)

// SQLiteBackend persists records in a SQLite database under a base
// directory so they survive a daemon restart.
type SQLiteBackend struct {
	db       *db.DB
	capacity int
}

// NewSQLiteBackend opens (or creates) the database in dir.
func NewSQLiteBackend(dir string, capacity int) (*SQLiteBackend, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	if !filepath.IsAbs(dir) {
		return nil, fmt.Errorf("%w: %q", ErrRelativePath, dir)
	}

	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: %w", errCreateStorageDir, err)
	}

	database, err := db.New(filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, err
	}

	return &SQLiteBackend{db: database, capacity: capacity}, nil
}

func (s *SQLiteBackend) Get(ctx context.Context, key Key) (time.Time, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
	defer cancel()

	const query = `SELECT ts FROM steering_timestamps WHERE station = ? AND scope = ? AND event = ?`

	var nanos int64

	err := s.db.QueryRowContext(ctx, query, key.Station.Compact(), key.Scope, int(key.Event)).Scan(&nanos)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}

	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %w", errGetTimestamp, err)
	}

	return time.Unix(0, nanos), true, nil
}

func (s *SQLiteBackend) Put(ctx context.Context, key Key, ts time.Time) (err error) {
	ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", db.ErrFailedToBeginTx, err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	station := key.Station.Compact()

	var exists int

	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM steering_timestamps WHERE station = ? AND scope = ? AND event = ?`,
		station, key.Scope, int(key.Event)).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%w: %w", errCountTimestamps, err)
	}

	if exists == 0 {
		if err = s.makeRoom(ctx, tx); err != nil {
			return err
		}
	}

	const upsert = `
        INSERT INTO steering_timestamps (station, scope, event, ts)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(station, scope, event) DO UPDATE SET ts = excluded.ts
    `

	if _, err = tx.ExecContext(ctx, upsert, station, key.Scope, int(key.Event), ts.UnixNano()); err != nil {
		return fmt.Errorf("%w: %w", errPutTimestamp, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", errPutTimestamp, err)
	}

	return nil
}

// makeRoom evicts the oldest rows until one more record fits.
func (s *SQLiteBackend) makeRoom(ctx context.Context, tx *sql.Tx) error {
	var count int

	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM steering_timestamps`).Scan(&count); err != nil {
		return fmt.Errorf("%w: %w", errCountTimestamps, err)
	}

	excess := count - s.capacity + 1
	if excess <= 0 {
		return nil
	}

	const evict = `
        DELETE FROM steering_timestamps WHERE rowid IN (
            SELECT rowid FROM steering_timestamps
            ORDER BY ts ASC, scope || '/' || station || '.' || event ASC
            LIMIT ?
        )
    `

	if _, err := tx.ExecContext(ctx, evict, excess); err != nil {
		return fmt.Errorf("%w: %w", errEvictTimestamp, err)
	}

	return nil
}

func (s *SQLiteBackend) HasStation(ctx context.Context, station models.HardwareAddr) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
	defer cancel()

	var found int

	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM steering_timestamps WHERE station = ?)`,
		station.Compact()).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("%w: %w", errGetTimestamp, err)
	}

	return found == 1, nil
}

func (s *SQLiteBackend) Records(ctx context.Context, station models.HardwareAddr) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT scope, event, ts FROM steering_timestamps WHERE station = ? ORDER BY scope, event`,
		station.Compact())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errListTimestamps, err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var out []Record

	for rows.Next() {
		var (
			scope string
			event int
			nanos int64
		)

		if err := rows.Scan(&scope, &event, &nanos); err != nil {
			return nil, fmt.Errorf("%w: %w", db.ErrFailedToScan, err)
		}

		key := Key{Station: station, Scope: scope, Event: models.SteerEvent(event)}
		out = append(out, newRecord(key, time.Unix(0, nanos)))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errListTimestamps, err)
	}

	return out, nil
}

// Prune delegates to the database retention cleanup.
func (s *SQLiteBackend) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	removed, err := s.db.CleanOldData(ctx, cutoff, 0)
	if err != nil {
		return 0, err
	}

	return int(removed), nil
}

func (s *SQLiteBackend) Len(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
	defer cancel()

	var count int

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM steering_timestamps`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %w", errCountTimestamps, err)
	}

	return count, nil
}

func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}
