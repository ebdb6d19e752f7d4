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

// Package db pkg/db/db.go provides SQLite database functionality for apsteer.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	// SQL statements for database initialization.
	createTablesSQL = `
	-- Steering timestamps, one row per (station, scope, event)
	CREATE TABLE IF NOT EXISTS steering_timestamps (
		station TEXT NOT NULL,
		scope TEXT NOT NULL,
		event INTEGER NOT NULL,
		ts INTEGER NOT NULL,
		PRIMARY KEY (station, scope, event)
	);

	CREATE INDEX IF NOT EXISTS idx_steering_timestamps_ts
		ON steering_timestamps(ts);
	CREATE INDEX IF NOT EXISTS idx_steering_timestamps_station
		ON steering_timestamps(station);
	`
)

// DB represents the database connection and operations.
type DB struct {
	*sql.DB
}

// New creates a new database connection and initializes the schema.
func New(dbPath string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	// Each connection to ":memory:" is a separate database.
	sqlDB.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent access
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedToEnableWAL, err)
	}

	db := &DB{sqlDB}
	if err := db.initSchema(); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedToInit, err)
	}

	return db, nil
}

// initSchema creates the database tables if they don't exist.
func (db *DB) initSchema() error {
	_, err := db.Exec(createTablesSQL)

	return err
}

// CleanOldData removes steering timestamps written before now-retention.
func (db *DB) CleanOldData(ctx context.Context, now time.Time, retentionPeriod time.Duration) (int64, error) {
	cutoff := now.Add(-retentionPeriod).UnixNano()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFailedToBeginTx, err)
	}

	defer rollbackOnError(tx, &err)

	res, err := tx.ExecContext(ctx, "DELETE FROM steering_timestamps WHERE ts < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w steering timestamps: %w", ErrFailedToClean, err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFailedToClean, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFailedToClean, err)
	}

	return removed, nil
}

func rollbackOnError(tx *sql.Tx, err *error) {
	if *err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("Error rolling back transaction: %v", rbErr)
		}
	}
}
