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

package pairs

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/parallel"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Match is a pair found by a Generator. L indexes the build table and R the
// probe partition passed to the generator.
type Match struct {
	L     int
	R     int
	Score float64
}

// Generator finds all matching pairs between the build table and one probe
// partition. Both tables only contain rows with a non-null join attribute.
// Generators run concurrently on different partitions and must not mutate
// either table.
type Generator func(ctx context.Context, build, probe *table.Table) ([]Match, error)

// Options controls execution.
type Options struct {
	Clock        clockwork.Clock
	Label        string
	NJobs        int
	AllowMissing bool
}

func (o Options) clock() clockwork.Clock {
	if o.Clock == nil {
		return clockwork.NewRealClock()
	}
	return o.Clock
}

// Execute runs gen over the probe (right) table split into NJobs
// partitions and assembles the output. With AllowMissing, pairs with a null
// join value on either side are appended after the generated pairs: every
// null-left row against every right row, then every null-right row against
// every non-null left row.
func Execute(
	ctx context.Context,
	left, right *table.Table,
	spec Spec,
	opts Options,
	gen Generator,
) (*Output, error) {
	res, err := spec.Resolve(left, right)
	if err != nil {
		return nil, err
	}

	clock := opts.clock()
	start := clock.Now()
	runID := uuid.New()

	lPresent, lMissing := left.SplitNull(res.LJoin)
	rPresent, rMissing := right.SplitNull(res.RJoin)

	log.Debug().
		Str("run", runID.String()).
		Str("join", opts.Label).
		Int("left", left.Len()).
		Int("right", right.Len()).
		Int("leftMissing", lMissing.Len()).
		Int("rightMissing", rMissing.Len()).
		Int("nJobs", opts.NJobs).
		Msg("starting join")

	found, err := parallel.Run(ctx, rPresent.Len(), opts.NJobs,
		func(ctx context.Context, _ int, r parallel.Range) ([]Pair, error) {
			probe := rPresent.Slice(r.Start, r.End)
			matches, err := gen(ctx, lPresent, probe)
			if err != nil {
				return nil, err
			}
			slices.SortFunc(matches, compareMatches)
			out := make([]Pair, len(matches))
			for i, m := range matches {
				out[i] = res.pair(lPresent.Rows[m.L], probe.Rows[m.R], m.Score)
			}
			return out, nil
		})
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", opts.Label, err)
	}

	if opts.AllowMissing {
		nan := math.NaN()
		for _, lrow := range lMissing.Rows {
			for _, rrow := range right.Rows {
				found = append(found, res.pair(lrow, rrow, nan))
			}
		}
		for _, rrow := range rMissing.Rows {
			for _, lrow := range lPresent.Rows {
				found = append(found, res.pair(lrow, rrow, nan))
			}
		}
	}

	for i := range found {
		found[i].ID = i
	}

	out := &Output{
		RunID:     runID,
		Columns:   res.Columns,
		Pairs:     found,
		WithScore: spec.OutSimScore,
		Duration:  clock.Since(start),
	}
	log.Info().
		Str("run", runID.String()).
		Str("join", opts.Label).
		Int("pairs", out.Len()).
		Dur("duration", out.Duration).
		Msg("join finished")
	return out, nil
}

// compareMatches orders matches by probe row, then build row, so the output
// does not depend on how the probe table was partitioned.
func compareMatches(a, b Match) int {
	if c := cmp.Compare(a.R, b.R); c != 0 {
		return c
	}
	return cmp.Compare(a.L, b.L)
}

func (r *Resolved) pair(lrow, rrow table.Row, score float64) Pair {
	return Pair{
		LKey:  lrow[r.LKey],
		RKey:  rrow[r.RKey],
		LOut:  pick(lrow, r.LOut),
		ROut:  pick(rrow, r.ROut),
		Score: score,
	}
}
