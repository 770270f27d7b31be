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
	"unicode/utf8"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/filters"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/measures"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/pairs"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/tokenizers"
)

// EditDistanceJoin joins left and right on the Levenshtein distance of their
// join attributes. Candidates come from the prefix filter over q-gram
// multisets (a q-gram tokenizer with q=DefaultQval when none is given), are
// narrowed by the length difference and verified with the exact distance.
func EditDistanceJoin(ctx context.Context, left, right *table.Table, opts Options) (*pairs.Output, error) {
	if opts.Tokenizer == nil {
		opts.Tokenizer = tokenizers.NewQgram(DefaultQval)
	}
	op := opts.CompOp.Or(measures.DefaultCompOp(measures.EditDistance))

	prefix, err := filters.NewPrefixFilter(filters.Config{
		Tokenizer: opts.Tokenizer,
		Measure:   measures.EditDistance,
		Threshold: opts.Threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid edit distance join: %w", err)
	}
	maxDist := int(opts.Threshold)

	return run(ctx, left, right, measures.EditDistance, opts,
		func(ctx context.Context, p *filters.Prepared) ([]pairs.Match, error) {
			buildLen := runeLengths(p.BuildRaw)
			probeLen := runeLengths(p.ProbeRaw)

			var out []pairs.Match
			err := prefix.Candidates(ctx, p, func(l, r int) {
				if helpers.AbsDiff(buildLen[l], probeLen[r]) > maxDist {
					return
				}
				dist := float64(measures.Levenshtein(p.BuildRaw[l], p.ProbeRaw[r]))
				if op.Compare(dist, opts.Threshold) {
					out = append(out, pairs.Match{L: l, R: r, Score: dist})
				}
			})
			if err != nil {
				return nil, err
			}
			return out, nil
		})
}

func runeLengths(vals []string) []int {
	out := make([]int, len(vals))
	for i, v := range vals {
		out[i] = utf8.RuneCountInString(v)
	}
	return out
}
