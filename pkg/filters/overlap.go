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

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/index"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/measures"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/pairs"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
)

// OverlapFilter counts the exact number of shared tokens through an inverted
// index and compares it with the threshold. For the overlap measure this is
// also the exact verification.
type OverlapFilter struct {
	base
}

func NewOverlapFilter(cfg Config) (*OverlapFilter, error) {
	cfg.Measure = measures.Overlap
	b, err := newBase("overlap", cfg, measures.Overlap)
	if err != nil {
		return nil, err
	}
	return &OverlapFilter{base: b}, nil
}

func (f *OverlapFilter) FilterPair(lv, rv table.Value) bool {
	l, r, dropped, decided := f.orderPair(lv, rv)
	if decided {
		return dropped
	}
	return !f.cfg.CompOp.Compare(float64(measures.OverlapSize(l, r)), f.cfg.Threshold)
}

// FilterTables reports the overlap size as the pair score.
func (f *OverlapFilter) FilterTables(
	ctx context.Context,
	left, right *table.Table,
	spec pairs.Spec,
	nJobs int,
) (*pairs.Output, error) {
	return f.runTables(ctx, left, right, spec, nJobs, true,
		func(ctx context.Context, p *Prepared) ([]pairs.Match, error) {
			var out []pairs.Match
			err := InvertedCandidates(ctx, p, func(l, r, overlap int) {
				score := float64(overlap)
				if f.cfg.CompOp.Compare(score, f.cfg.Threshold) {
					out = append(out, pairs.Match{L: l, R: r, Score: score})
				}
			})
			return out, err
		})
}

// InvertedCandidates calls emit with the exact overlap of every pair of p
// sharing at least one token.
func InvertedCandidates(ctx context.Context, p *Prepared, emit func(l, r, overlap int)) error {
	idx := index.NewInverted(p.Build)
	counts := make(map[int]int)
	for r, toks := range p.Probe {
		if err := CheckContext(ctx, r); err != nil {
			return err
		}
		if p.ProbeBlank[r] || len(toks) == 0 {
			continue
		}
		clear(counts)
		for _, tok := range toks {
			for _, l := range idx.Probe(tok) {
				counts[l]++
			}
		}
		for l, n := range counts {
			emit(l, r, n)
		}
	}
	return nil
}

func (f *OverlapFilter) FilterCandset(
	ctx context.Context,
	candset, left, right *table.Table,
	keys pairs.CandsetKeys,
	lJoinAttr, rJoinAttr string,
	nJobs int,
) (*table.Table, error) {
	return f.filterCandset(ctx, candset, left, right, keys, lJoinAttr, rJoinAttr, nJobs, f.FilterPair)
}
