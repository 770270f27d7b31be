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

package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/config"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/join"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/measures"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/pairs"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/resultsdb"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/tokenizers"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var ErrMissingInput = errors.New("input path is required")

// Result summarizes a finished job.
type Result struct {
	OutPath string
	Rows    int
	RunID   uuid.UUID
	Stored  bool
}

// Run executes the job described by vals: a join, or a matcher when a
// candidate set is configured. Tables are read from and written to fs; the
// results database is always on the OS filesystem.
//
//nolint:gocritic // config struct copied for immutability
func Run(ctx context.Context, fs afero.Fs, vals config.Values, clock clockwork.Clock) (*Result, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	left, right, err := loadInputs(fs, &vals)
	if err != nil {
		return nil, err
	}
	if vals.Matcher.Candset != "" {
		return runMatcher(ctx, fs, &vals, clock, left, right)
	}
	return runJoin(ctx, fs, &vals, clock, left, right)
}

func loadInputs(fs afero.Fs, vals *config.Values) (left, right *table.Table, err error) {
	if vals.Left.Path == "" || vals.Right.Path == "" {
		return nil, nil, ErrMissingInput
	}
	left, err = table.ReadCSV(fs, vals.Left.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("left table: %w", err)
	}
	right, err = table.ReadCSV(fs, vals.Right.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("right table: %w", err)
	}
	if !vals.Join.Normalize {
		return left, right, nil
	}

	left, err = left.NormalizeColumn(vals.Left.JoinAttr)
	if err != nil {
		return nil, nil, fmt.Errorf("left join attribute: %w", err)
	}
	right, err = right.NormalizeColumn(vals.Right.JoinAttr)
	if err != nil {
		return nil, nil, fmt.Errorf("right join attribute: %w", err)
	}
	return left, right, nil
}

// joinTokenizer builds the configured tokenizer. The edit distance join
// only filters on q-grams, so other kinds fall back to q-grams of the
// configured length.
func joinTokenizer(tv config.Tokenizer, m measures.Measure) (tokenizers.Tokenizer, error) {
	if m == measures.EditDistance && tv.Kind != config.TokenizerQgram {
		log.Warn().Str("kind", tv.Kind).Msg("edit distance join uses a qgram tokenizer")
		tv.Kind = config.TokenizerQgram
	}
	tok, err := tv.Build()
	if err != nil {
		return nil, err //nolint:wrapcheck // already prefixed by Build
	}
	return tok, nil
}

func runJoin(
	ctx context.Context,
	fs afero.Fs,
	vals *config.Values,
	clock clockwork.Clock,
	left, right *table.Table,
) (*Result, error) {
	m, err := vals.Join.ParseMeasure()
	if err != nil {
		return nil, err //nolint:wrapcheck // already prefixed
	}
	op, err := vals.Join.ParseCompOp()
	if err != nil {
		return nil, err //nolint:wrapcheck // already prefixed
	}
	tok, err := joinTokenizer(vals.Tokenizer, m)
	if err != nil {
		return nil, err
	}

	started := clock.Now()
	out, err := join.Join(ctx, left, right, m, join.Options{
		Tokenizer:           tok,
		Clock:               clock,
		Spec:                vals.Spec(),
		Threshold:           vals.Join.Threshold,
		NJobs:               vals.Join.NJobs,
		CompOp:              op,
		AllowEmpty:          vals.Join.AllowEmpty,
		AllowMissing:        vals.Join.AllowMissing,
		DisableSuffixFilter: vals.Join.DisableSuffixFilter,
	})
	if err != nil {
		return nil, fmt.Errorf("join failed: %w", err)
	}

	if err := writeTable(fs, vals.Output.Path, out.Table()); err != nil {
		return nil, err
	}
	res := &Result{OutPath: vals.Output.Path, Rows: out.Len(), RunID: out.RunID}

	if vals.Output.Database != "" {
		run := resultsdb.Run{
			Started:   started,
			Measure:   m.String(),
			CompOp:    op.Or(measures.DefaultCompOp(m)).String(),
			Tokenizer: tok.String(),
			LeftPath:  vals.Left.Path,
			RightPath: vals.Right.Path,
			Threshold: vals.Join.Threshold,
			NJobs:     vals.Join.NJobs,
		}
		if err := storeRun(ctx, vals.Output.Database, run, out); err != nil {
			return nil, err
		}
		res.Stored = true
	}

	log.Info().
		Str("run", out.RunID.String()).
		Str("measure", m.String()).
		Int("pairs", out.Len()).
		Str("out", vals.Output.Path).
		Msg("join written")
	return res, nil
}

//nolint:gocritic // struct passed for DB insertion
func storeRun(ctx context.Context, path string, run resultsdb.Run, out *pairs.Output) error {
	db, err := resultsdb.Open(path)
	if err != nil {
		return fmt.Errorf("results database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close results database")
		}
	}()
	if err := db.SaveRun(ctx, run, out); err != nil {
		return fmt.Errorf("results database: %w", err)
	}
	return nil
}

func runMatcher(
	ctx context.Context,
	fs afero.Fs,
	vals *config.Values,
	clock clockwork.Clock,
	left, right *table.Table,
) (*Result, error) {
	scorer, err := measures.LookupScorer(vals.Matcher.Scorer)
	if err != nil {
		return nil, fmt.Errorf("matcher scorer: %w", err)
	}
	op, err := vals.Join.ParseCompOp()
	if err != nil {
		return nil, err //nolint:wrapcheck // already prefixed
	}
	candset, err := table.ReadCSV(fs, vals.Matcher.Candset)
	if err != nil {
		return nil, fmt.Errorf("candidate set: %w", err)
	}

	spec := vals.Spec()
	out, err := join.ApplyMatcher(ctx, candset, left, right, scorer, join.MatcherOptions{
		Clock:        clock,
		LJoinAttr:    spec.LJoinAttr,
		RJoinAttr:    spec.RJoinAttr,
		LOutPrefix:   spec.LOutPrefix,
		ROutPrefix:   spec.ROutPrefix,
		LOutAttrs:    spec.LOutAttrs,
		ROutAttrs:    spec.ROutAttrs,
		Keys:         vals.CandsetKeys(),
		Threshold:    vals.Join.Threshold,
		NJobs:        vals.Join.NJobs,
		CompOp:       op,
		AllowMissing: vals.Join.AllowMissing,
	})
	if err != nil {
		return nil, err //nolint:wrapcheck // ApplyMatcher errors are already prefixed
	}
	if err := writeTable(fs, vals.Output.Path, out); err != nil {
		return nil, err
	}
	return &Result{OutPath: vals.Output.Path, Rows: out.Len()}, nil
}

func writeTable(fs afero.Fs, path string, t *table.Table) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := table.WriteCSV(fs, path, t); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	return nil
}
