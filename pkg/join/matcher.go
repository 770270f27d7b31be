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

package join

import (
	"context"
	"fmt"
	"math"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/measures"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/pairs"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/validation"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// RowScorer scores a candidate pair from its full left and right rows, so a
// score may draw on columns besides the join attributes. Implementations must
// be safe for concurrent use.
type RowScorer interface {
	ScoreRows(l, r table.Row) float64
}

// RowScorerFunc adapts a plain function to RowScorer.
type RowScorerFunc func(l, r table.Row) float64

func (f RowScorerFunc) ScoreRows(l, r table.Row) float64 {
	return f(l, r)
}

// AttrScorer scores rows with a string scorer applied to the values at
// column positions lIdx and rIdx.
func AttrScorer(s measures.Scorer, lIdx, rIdx int) RowScorer {
	return RowScorerFunc(func(l, r table.Row) float64 {
		return s.Score(l[lIdx].V, r[rIdx].V)
	})
}

// MatcherOptions configures ApplyMatcher. An unset CompOp means >=.
type MatcherOptions struct {
	Clock      clockwork.Clock
	LJoinAttr  string
	RJoinAttr  string
	LOutPrefix string
	ROutPrefix string
	LOutAttrs  []string
	ROutAttrs  []string
	Keys       pairs.CandsetKeys
	Threshold  float64
	NJobs      int
	CompOp     measures.CompOp
	// RowScorer replaces the string scorer when set. Candidates with a null
	// join value are still handled by AllowMissing and never reach it.
	RowScorer RowScorer
	// AllowMissing keeps candidates with a null join value, scored NaN.
	AllowMissing bool
}

// ApplyMatcher scores every row of candset and keeps the rows
// whose score satisfies the operator. The result has the candidate set
// columns, then the prefixed output attributes of both tables, then
// _sim_score. Rows stay in candidate set order. The string scorer is applied
// to the join attributes unless opts.RowScorer is set, in which case scorer
// may be nil.
func ApplyMatcher(
	ctx context.Context,
	candset, left, right *table.Table,
	scorer measures.Scorer,
	opts MatcherOptions,
) (*table.Table, error) {
	var check any = scorer
	if opts.RowScorer != nil {
		check = opts.RowScorer
	}
	if err := validation.ValidateMatcher(validation.MatcherParams{
		Scorer:    check,
		CompOp:    opts.CompOp,
		Threshold: opts.Threshold,
		NJobs:     opts.NJobs,
	}); err != nil {
		return nil, fmt.Errorf("invalid matcher: %w", err)
	}
	op := opts.CompOp.Or(measures.OpGE)
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	start := clock.Now()

	lj, err := left.ColumnIndex(opts.LJoinAttr)
	if err != nil {
		return nil, fmt.Errorf("left join attribute: %w", err)
	}
	rj, err := right.ColumnIndex(opts.RJoinAttr)
	if err != nil {
		return nil, fmt.Errorf("right join attribute: %w", err)
	}
	lPrefix, rPrefix := opts.LOutPrefix, opts.ROutPrefix
	if lPrefix == "" {
		lPrefix = pairs.DefaultLOutPrefix
	}
	if rPrefix == "" {
		rPrefix = pairs.DefaultROutPrefix
	}
	lOut, lCols, err := outColumns(left, opts.LOutAttrs, lPrefix)
	if err != nil {
		return nil, fmt.Errorf("left output attribute: %w", err)
	}
	rOut, rCols, err := outColumns(right, opts.ROutAttrs, rPrefix)
	if err != nil {
		return nil, fmt.Errorf("right output attribute: %w", err)
	}
	rowScorer := opts.RowScorer
	if rowScorer == nil {
		rowScorer = AttrScorer(scorer, lj, rj)
	}

	kept, err := pairs.ScanCandset(ctx, candset, left, right, opts.Keys, opts.NJobs,
		func(l, r table.Row) (float64, bool) {
			if l[lj].IsNull() || r[rj].IsNull() {
				return math.NaN(), opts.AllowMissing
			}
			score := rowScorer.ScoreRows(l, r)
			return score, op.Compare(score, opts.Threshold)
		})
	if err != nil {
		return nil, fmt.Errorf("matcher failed: %w", err)
	}

	columns := make([]string, 0, len(candset.Columns)+len(lCols)+len(rCols)+1)
	columns = append(columns, candset.Columns...)
	columns = append(columns, lCols...)
	columns = append(columns, rCols...)
	columns = append(columns, pairs.ScoreColumn)

	out := &table.Table{Columns: columns, Rows: make([]table.Row, 0, len(kept))}
	for _, m := range kept {
		row := make(table.Row, 0, len(columns))
		row = append(row, candset.Rows[m.Index]...)
		for _, idx := range lOut {
			row = append(row, m.L[idx])
		}
		for _, idx := range rOut {
			row = append(row, m.R[idx])
		}
		row = append(row, pairs.FormatScore(m.Score))
		out.Rows = append(out.Rows, row)
	}

	log.Info().
		Int("candidates", candset.Len()).
		Int("kept", out.Len()).
		Str("op", op.String()).
		Float64("threshold", opts.Threshold).
		Dur("duration", clock.Since(start)).
		Msg("matcher applied")
	return out, nil
}

func outColumns(t *table.Table, attrs []string, prefix string) (idxs []int, cols []string, err error) {
	for _, a := range attrs {
		idx, err := t.ColumnIndex(a)
		if err != nil {
			return nil, nil, err //nolint:wrapcheck // wrapped by caller
		}
		idxs = append(idxs, idx)
		cols = append(cols, prefix+a)
	}
	return idxs, cols, nil
}
