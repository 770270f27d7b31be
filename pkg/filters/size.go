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

// SizeFilter drops pairs whose token counts are too far apart for the
// measure to reach the threshold.
type SizeFilter struct {
	base
}

func NewSizeFilter(cfg Config) (*SizeFilter, error) {
	b, err := newBase("size", cfg,
		measures.Cosine, measures.Dice, measures.EditDistance, measures.Jaccard, measures.Overlap)
	if err != nil {
		return nil, err
	}
	return &SizeFilter{base: b}, nil
}

func (f *SizeFilter) FilterPair(lv, rv table.Value) bool {
	l, r, dropped, decided := f.orderPair(lv, rv)
	if decided {
		return dropped
	}
	lo, hi := f.bounds.SizeWindow(len(r))
	return len(l) < lo || len(l) > hi
}

func (f *SizeFilter) FilterTables(
	ctx context.Context,
	left, right *table.Table,
	spec pairs.Spec,
	nJobs int,
) (*pairs.Output, error) {
	return f.runTables(ctx, left, right, spec, nJobs, false, f.candidates)
}

func (f *SizeFilter) candidates(ctx context.Context, p *Prepared) ([]pairs.Match, error) {
	isED := f.cfg.Measure == measures.EditDistance
	idx := index.NewSize()
	for l, toks := range p.Build {
		if p.BuildBlank[l] || (len(toks) == 0 && !isED) {
			continue
		}
		idx.Add(l, len(toks))
	}

	var out []pairs.Match
	for r, toks := range p.Probe {
		if err := CheckContext(ctx, r); err != nil {
			return nil, err
		}
		if p.ProbeBlank[r] {
			continue
		}
		if len(toks) == 0 && !isED {
			if f.cfg.AllowEmpty && f.cfg.Measure != measures.Overlap {
				out = append(out, p.EmptyMatches(r, math.NaN())...)
			}
			continue
		}
		lo, hi := f.bounds.SizeWindow(len(toks))
		idx.Range(lo, hi, func(_ int, rows []int) {
			for _, l := range rows {
				out = append(out, pairs.Match{L: l, R: r, Score: math.NaN()})
			}
		})
	}
	return out, nil
}

func (f *SizeFilter) FilterCandset(
	ctx context.Context,
	candset, left, right *table.Table,
	keys pairs.CandsetKeys,
	lJoinAttr, rJoinAttr string,
	nJobs int,
) (*table.Table, error) {
	return f.filterCandset(ctx, candset, left, right, keys, lJoinAttr, rJoinAttr, nJobs, f.FilterPair)
}
