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

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/filters"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/measures"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/pairs"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
)

// OverlapJoin joins left and right on the number of join attribute tokens
// they share. The overlap filter's inverted index counts shared tokens
// exactly, so no separate verification is needed.
func OverlapJoin(ctx context.Context, left, right *table.Table, opts Options) (*pairs.Output, error) {
	op := opts.CompOp.Or(measures.DefaultCompOp(measures.Overlap))

	return run(ctx, left, right, measures.Overlap, opts,
		func(ctx context.Context, p *filters.Prepared) ([]pairs.Match, error) {
			var out []pairs.Match
			err := filters.InvertedCandidates(ctx, p, func(l, r, overlap int) {
				score := float64(overlap)
				if op.Compare(score, opts.Threshold) {
					out = append(out, pairs.Match{L: l, R: r, Score: score})
				}
			})
			if err != nil {
				return nil, fmt.Errorf("overlap candidates: %w", err)
			}
			return out, nil
		})
}

// OverlapCoefficientJoin joins left and right on |A∩B| / min(|A|, |B|) of
// their join attribute token sets.
func OverlapCoefficientJoin(ctx context.Context, left, right *table.Table, opts Options) (*pairs.Output, error) {
	op := opts.CompOp.Or(measures.DefaultCompOp(measures.OverlapCoefficient))

	return run(ctx, left, right, measures.OverlapCoefficient, opts,
		func(ctx context.Context, p *filters.Prepared) ([]pairs.Match, error) {
			out := emptyMatches(p, opts, op)
			err := filters.InvertedCandidates(ctx, p, func(l, r, overlap int) {
				smaller := min(len(p.Build[l]), len(p.Probe[r]))
				score := measures.RoundScore(float64(overlap) / float64(smaller))
				if op.Compare(score, opts.Threshold) {
					out = append(out, pairs.Match{L: l, R: r, Score: score})
				}
			})
			if err != nil {
				return nil, fmt.Errorf("overlap coefficient candidates: %w", err)
			}
			return out, nil
		})
}
