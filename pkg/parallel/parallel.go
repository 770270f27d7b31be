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

// Package parallel runs a row-partitioned computation across worker
// goroutines and concatenates the per-partition results in partition order.
package parallel

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Range is a half-open row interval [Start, End).
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int {
	return r.End - r.Start
}

// NumJobs resolves a requested job count against the number of rows to
// process. Negative values count back from the CPU count, so -1 means every
// CPU and -2 every CPU but one. The result is at least 1 and never more than
// max(rows, 1).
func NumJobs(nJobs, rows int) int {
	n := nJobs
	if n < 0 {
		n = runtime.NumCPU() + 1 + n
	}
	n = min(n, max(rows, 1))
	return max(n, 1)
}

// Split cuts n rows into parts contiguous ranges with boundaries at
// round(i*n/parts). Ranges may be empty when parts exceeds n.
func Split(n, parts int) []Range {
	if parts < 1 {
		parts = 1
	}
	bounds := make([]int, parts+1)
	for i := range parts + 1 {
		bounds[i] = int(math.Round(float64(i) * float64(n) / float64(parts)))
	}
	ranges := make([]Range, parts)
	for i := range parts {
		ranges[i] = Range{Start: bounds[i], End: bounds[i+1]}
	}
	return ranges
}

// Func processes one partition and returns its results.
type Func[T any] func(ctx context.Context, part int, r Range) ([]T, error)

// Run splits n rows into NumJobs(nJobs, n) partitions and runs fn on each.
// A single partition runs on the calling goroutine. The first failing
// partition cancels the others and Run returns its error with no results.
func Run[T any](ctx context.Context, n, nJobs int, fn Func[T]) ([]T, error) {
	jobs := NumJobs(nJobs, n)
	ranges := Split(n, jobs)
	progress := newProgress(jobs, n)

	if jobs == 1 {
		out, err := fn(ctx, 0, ranges[0])
		if err != nil {
			return nil, fmt.Errorf("partition 0 failed: %w", err)
		}
		progress.finish(0, ranges[0], len(out))
		return out, nil
	}

	results := make([][]T, jobs)
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("partition %d cancelled: %w", i, err)
			}
			out, err := fn(gctx, i, r)
			if err != nil {
				return fmt.Errorf("partition %d failed: %w", i, err)
			}
			results[i] = out
			progress.finish(i, r, len(out))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // partition errors are already wrapped
	}

	total := 0
	for _, part := range results {
		total += len(part)
	}
	out := make([]T, 0, total)
	for _, part := range results {
		out = append(out, part...)
	}

	log.Debug().Int("partitions", jobs).Int("rows", n).Int("results", total).
		Msg("parallel run complete")
	return out, nil
}
