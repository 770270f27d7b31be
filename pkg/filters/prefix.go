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

package filters

import (
	"context"
	"math"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/index"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/measures"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/pairs"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
)

// PrefixFilter drops pairs whose ordered token prefixes share no token.
//
// For edit distance the q-gram count bound max(nl, nr) - q·t is zero or
// negative when both strings are short, and shared q-grams prove nothing.
// Such pairs are always kept, and FilterTables finds them through a size
// index over token counts.
type PrefixFilter struct {
	base
}

func NewPrefixFilter(cfg Config) (*PrefixFilter, error) {
	b, err := newBase("prefix", cfg,
		measures.Cosine, measures.Dice, measures.EditDistance, measures.Jaccard, measures.Overlap)
	if err != nil {
		return nil, err
	}
	return &PrefixFilter{base: b}, nil
}

func (f *PrefixFilter) FilterPair(lv, rv table.Value) bool {
	l, r, dropped, decided := f.orderPair(lv, rv)
	if decided {
		return dropped
	}
	if f.cfg.Measure == measures.EditDistance && f.bounds.OverlapThreshold(len(l), len(r)) <= 0 {
		return false
	}
	lp := l[:f.bounds.PrefixLength(len(l))]
	rp := r[:f.bounds.PrefixLength(len(r))]
	return measures.OverlapSize(lp, rp) == 0
}

func (f *PrefixFilter) FilterTables(
	ctx context.Context,
	left, right *table.Table,
	spec pairs.Spec,
	nJobs int,
) (*pairs.Output, error) {
	return f.runTables(ctx, left, right, spec, nJobs, false,
		func(ctx context.Context, p *Prepared) ([]pairs.Match, error) {
			var out []pairs.Match
			err := f.Candidates(ctx, p, func(l, r int) {
				out = append(out, pairs.Match{L: l, R: r, Score: math.NaN()})
			})
			return out, err
		})
}

// ShortStringLimit is the token count at or below which an edit distance
// pair may qualify without sharing a q-gram.
func (f *PrefixFilter) ShortStringLimit() int {
	return f.bounds.Qval * int(f.cfg.Threshold)
}

// Candidates calls emit once for every candidate pair of p. For set
// measures AllowEmpty pairs are emitted too.
func (f *PrefixFilter) Candidates(ctx context.Context, p *Prepared, emit func(l, r int)) error {
	isED := f.cfg.Measure == measures.EditDistance
	idx := index.NewPrefix(p.Build, f.bounds)
	limit := f.ShortStringLimit()

	var short *index.SizeIndex
	if isED {
		short = index.NewSize()
		for l, toks := range p.Build {
			if !p.BuildBlank[l] && len(toks) <= limit {
				short.Add(l, len(toks))
			}
		}
	}

	seen := make(map[int]struct{})
	visit := func(l, r int) {
		if _, ok := seen[l]; ok {
			return
		}
		seen[l] = struct{}{}
		emit(l, r)
	}

	for r, toks := range p.Probe {
		if err := CheckContext(ctx, r); err != nil {
			return err
		}
		if p.ProbeBlank[r] {
			continue
		}
		if len(toks) == 0 && !isED {
			if f.cfg.AllowEmpty && f.cfg.Measure != measures.Overlap {
				for _, l := range p.EmptyBuildRows() {
					emit(l, r)
				}
			}
			continue
		}

		clear(seen)
		for _, tok := range toks[:f.bounds.PrefixLength(len(toks))] {
			for _, l := range idx.Probe(tok) {
				visit(l, r)
			}
		}
		if isED && len(toks) <= limit {
			short.Range(0, limit, func(_ int, rows []int) {
				for _, l := range rows {
					visit(l, r)
				}
			})
		}
	}
	return nil
}

func (f *PrefixFilter) FilterCandset(
	ctx context.Context,
	candset, left, right *table.Table,
	keys pairs.CandsetKeys,
	lJoinAttr, rJoinAttr string,
	nJobs int,
) (*table.Table, error) {
	return f.filterCandset(ctx, candset, left, right, keys, lJoinAttr, rJoinAttr, nJobs, f.FilterPair)
}
