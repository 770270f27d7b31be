// Zaparoo SimJoin
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo SimJoin.
//
// Zaparoo SimJoin is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo SimJoin is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo SimJoin.  If not, see <http://www.gnu.org/licenses/>.

// Package resultsdb stores join runs and their pairs in SQLite so results
// can be inspected after the CLI exits.
package resultsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/pairs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

var ErrNullSQL = errors.New("results database is not connected")

const sqliteConnParams = "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"

// Run describes one join execution.
type Run struct {
	Started   time.Time
	Measure   string
	CompOp    string
	Tokenizer string
	LeftPath  string
	RightPath string
	Threshold float64
	Duration  time.Duration
	NJobs     int
	PairCount int
	ID        uuid.UUID
}

// StoredPair is a pair read back from the store. Score is NaN for pairs
// with a missing join value.
type StoredPair struct {
	LKey  string
	RKey  string
	ID    int
	Score float64
}

type DB struct {
	sql *sql.DB
}

// Open opens or creates the database at path and applies migrations.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory for database: %w", err)
	}
	sqlInstance, err := sql.Open("sqlite3", path+sqliteConnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db := New(sqlInstance)
	if err := db.MigrateUp(); err != nil {
		_ = sqlInstance.Close()
		return nil, err
	}
	return db, nil
}

// New wraps an open connection without migrating it.
func New(sqlDB *sql.DB) *DB {
	return &DB{sql: sqlDB}
}

func (db *DB) MigrateUp() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	if err := migrateUp(db.sql); err != nil {
		return fmt.Errorf("failed to run results database migrations: %w", err)
	}
	return nil
}

// SaveRun stores run and the pairs of out in one transaction. The run id
// and pair count are taken from out.
//
//nolint:gocritic // struct passed for DB insertion
func (db *DB) SaveRun(ctx context.Context, run Run, out *pairs.Output) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	run.ID = out.RunID
	run.PairCount = out.Len()
	run.Duration = out.Duration

	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := sqlInsertRun(ctx, tx, run); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := sqlInsertPairs(ctx, tx, run.ID, out.Pairs); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	log.Info().
		Str("run", run.ID.String()).
		Int("pairs", run.PairCount).
		Msg("stored join run")
	return nil
}

// Runs lists stored runs, newest first.
func (db *DB) Runs(ctx context.Context) ([]Run, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetRuns(ctx, db.sql)
}

// Pairs returns the pairs of one run ordered by pair id.
func (db *DB) Pairs(ctx context.Context, runID uuid.UUID) ([]StoredPair, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetPairs(ctx, db.sql, runID)
}

func (db *DB) Close() error {
	if db.sql == nil {
		return nil
	}
	if err := db.sql.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
