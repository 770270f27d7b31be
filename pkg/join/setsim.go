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

// SetSimJoin joins left and right on the Jaccard, Cosine or Dice similarity
// of their join attribute token sets. Candidates come from the position
// filter, pass the suffix filter and are verified with the exact score.
func SetSimJoin(
	ctx context.Context,
	left, right *table.Table,
	m measures.Measure,
	opts Options,
) (*pairs.Output, error) {
	switch m {
	case measures.Jaccard, measures.Cosine, measures.Dice:
	default:
		return nil, fmt.Errorf("%w: set similarity join does not support %s", ErrUnsupportedMeasure, m)
	}

	op := opts.CompOp.Or(measures.DefaultCompOp(m))
	var bounds measures.Bounds
	if opts.Tokenizer != nil {
		bounds = measures.NewBounds(m, opts.Threshold, opts.Tokenizer.Qval())
	}

	return run(ctx, left, right, m, opts, func(ctx context.Context, p *filters.Prepared) ([]pairs.Match, error) {
		probe := filters.NewPositionProbe(p, bounds)
		cands := make(map[int]*filters.Candidate)
		out := emptyMatches(p, opts, op)

		for r, toks := range p.Probe {
			if err := filters.CheckContext(ctx, r); err != nil {
				return nil, err //nolint:wrapcheck // carries the row position
			}
			if p.ProbeBlank[r] || len(toks) == 0 {
				continue
			}

			clear(cands)
			probe.Candidates(toks, cands)
			for l, c := range cands {
				if c.Overlap == 0 {
					continue
				}
				lt := p.Build[l]
				if !opts.DisableSuffixFilter &&
					filters.SuffixPrunes(lt, toks, c.LPos, c.RPos, bounds.OverlapThreshold(len(lt), len(toks))) {
					continue
				}
				score := measures.SetScore(m, lt, toks)
				if op.Compare(score, opts.Threshold) {
					out = append(out, pairs.Match{L: l, R: r, Score: score})
				}
			}
		}
		return out, nil
	})
}

func JaccardJoin(ctx context.Context, left, right *table.Table, opts Options) (*pairs.Output, error) {
	return SetSimJoin(ctx, left, right, measures.Jaccard, opts)
}

func CosineJoin(ctx context.Context, left, right *table.Table, opts Options) (*pairs.Output, error) {
	return SetSimJoin(ctx, left, right, measures.Cosine, opts)
}

func DiceJoin(ctx context.Context, left, right *table.Table, opts Options) (*pairs.Output, error) {
	return SetSimJoin(ctx, left, right, measures.Dice, opts)
}
