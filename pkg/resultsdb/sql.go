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

package resultsdb

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/pairs"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type execer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

func closeStmt(stmt *sql.Stmt) {
	if err := stmt.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close sql statement")
	}
}

//nolint:gocritic // struct passed for DB insertion
func sqlInsertRun(ctx context.Context, db execer, run Run) error {
	stmt, err := db.PrepareContext(ctx, `
		insert into Runs(
			RunID, Started, DurationMs, Measure, CompOp, Threshold,
			Tokenizer, NJobs, LeftPath, RightPath, PairCount
		) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare run insert statement: %w", err)
	}
	defer closeStmt(stmt)

	_, err = stmt.ExecContext(ctx,
		run.ID.String(),
		run.Started.Unix(),
		run.Duration.Milliseconds(),
		run.Measure,
		run.CompOp,
		run.Threshold,
		run.Tokenizer,
		run.NJobs,
		run.LeftPath,
		run.RightPath,
		run.PairCount,
	)
	if err != nil {
		return fmt.Errorf("failed to execute run insert: %w", err)
	}
	return nil
}

// sqlInsertPairs stores the pairs of one run. NaN scores are stored as
// NULL.
func sqlInsertPairs(ctx context.Context, db execer, runID uuid.UUID, ps []pairs.Pair) error {
	stmt, err := db.PrepareContext(ctx, `
		insert into Pairs(RunID, PairID, LKey, RKey, Score) values (?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare pair insert statement: %w", err)
	}
	defer closeStmt(stmt)

	id := runID.String()
	for _, p := range ps {
		score := sql.NullFloat64{Float64: p.Score, Valid: !math.IsNaN(p.Score)}
		if _, err := stmt.ExecContext(ctx, id, p.ID, p.LKey.V, p.RKey.V, score); err != nil {
			return fmt.Errorf("failed to execute pair insert: %w", err)
		}
	}
	return nil
}

func sqlGetRuns(ctx context.Context, db *sql.DB) ([]Run, error) {
	rows, err := db.QueryContext(ctx, `
		select
		RunID, Started, DurationMs, Measure, CompOp, Threshold,
		Tokenizer, NJobs, LeftPath, RightPath, PairCount
		from Runs
		order by Started desc, RunID;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql rows")
		}
	}()

	var list []Run
	for rows.Next() {
		var (
			run        Run
			id         string
			started    int64
			durationMs int64
		)
		scanErr := rows.Scan(
			&id,
			&started,
			&durationMs,
			&run.Measure,
			&run.CompOp,
			&run.Threshold,
			&run.Tokenizer,
			&run.NJobs,
			&run.LeftPath,
			&run.RightPath,
			&run.PairCount,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", scanErr)
		}
		run.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid run id %q: %w", id, err)
		}
		run.Started = time.Unix(started, 0)
		run.Duration = time.Duration(durationMs) * time.Millisecond
		list = append(list, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}
	return list, nil
}

func sqlGetPairs(ctx context.Context, db *sql.DB, runID uuid.UUID) ([]StoredPair, error) {
	rows, err := db.QueryContext(ctx, `
		select PairID, LKey, RKey, Score
		from Pairs
		where RunID = ?
		order by PairID;
	`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query pairs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql rows")
		}
	}()

	var list []StoredPair
	for rows.Next() {
		var (
			p     StoredPair
			score sql.NullFloat64
		)
		if err := rows.Scan(&p.ID, &p.LKey, &p.RKey, &score); err != nil {
			return nil, fmt.Errorf("failed to scan pair row: %w", err)
		}
		p.Score = math.NaN()
		if score.Valid {
			p.Score = score.Float64
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pair rows: %w", err)
	}
	return list, nil
}
