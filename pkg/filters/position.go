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

// PositionFilter tightens the prefix filter with token positions: a shared
// prefix token at positions (lPos, rPos) leaves room for at most
// 1 + min(nl-lPos-1, nr-rPos-1) more common tokens, and a pair that can no
// longer reach the overlap threshold is pruned.
type PositionFilter struct {
	base
}

func NewPositionFilter(cfg Config) (*PositionFilter, error) {
	b, err := newBase("position", cfg, measures.Cosine, measures.Dice, measures.Jaccard, measures.Overlap)
	if err != nil {
		return nil, err
	}
	return &PositionFilter{base: b}, nil
}

func (f *PositionFilter) FilterPair(lv, rv table.Value) bool {
	l, r, dropped, decided := f.orderPair(lv, rv)
	if decided {
		return dropped
	}

	nl, nr := len(l), len(r)
	lPrefix := make(map[int]int, nl)
	for pos, tok := range l[:f.bounds.PrefixLength(nl)] {
		lPrefix[tok] = pos
	}
	alpha := f.bounds.OverlapThreshold(nl, nr)

	overlap := 0
	for rPos, tok := range r[:f.bounds.PrefixLength(nr)] {
		lPos, ok := lPrefix[tok]
		if !ok {
			continue
		}
		ub := 1 + min(nl-lPos-1, nr-rPos-1)
		if overlap+ub < alpha {
			return true
		}
		overlap++
	}
	return overlap == 0
}

// Candidate is the accumulator entry of one build row while a probe row is
// scanned. LPos and RPos record where the first shared prefix token was
// found and are kept when the overlap is reset.
type Candidate struct {
	Overlap int
	LPos    int
	RPos    int
}

// PositionProbe is a position index over the build rows of p.
type PositionProbe struct {
	idx    *index.PositionIndex
	bounds measures.Bounds
}

func NewPositionProbe(p *Prepared, bounds measures.Bounds) *PositionProbe {
	return &PositionProbe{idx: index.NewPosition(p.Build, bounds), bounds: bounds}
}

// Candidates scans the prefix of one ordered probe row. A candidate whose
// running overlap plus remaining positional bound falls short of the overlap
// threshold is reset to zero rather than removed, so a later prefix token
// can start it counting again. Callers must ignore candidates whose overlap
// is zero.
func (pp *PositionProbe) Candidates(probe []int, into map[int]*Candidate) {
	nr := len(probe)
	lo, hi := pp.bounds.SizeWindow(nr)
	lo = max(lo, pp.idx.MinSize())
	hi = min(hi, pp.idx.MaxSize())
	alphaBySize := make(map[int]int)

	for rPos, tok := range probe[:pp.bounds.PrefixLength(nr)] {
		for _, post := range pp.idx.Probe(tok) {
			nl := pp.idx.Size(post.Row)
			if nl < lo || nl > hi {
				continue
			}
			alpha, ok := alphaBySize[nl]
			if !ok {
				alpha = pp.bounds.OverlapThreshold(nl, nr)
				alphaBySize[nl] = alpha
			}

			cand, ok := into[post.Row]
			if !ok {
				cand = &Candidate{LPos: post.Pos, RPos: rPos}
				into[post.Row] = cand
			}
			ub := 1 + min(nr-rPos-1, nl-post.Pos-1)
			if cand.Overlap+ub >= alpha {
				cand.Overlap++
			} else {
				cand.Overlap = 0
			}
		}
	}
}

func (f *PositionFilter) FilterTables(
	ctx context.Context,
	left, right *table.Table,
	spec pairs.Spec,
	nJobs int,
) (*pairs.Output, error) {
	return f.runTables(ctx, left, right, spec, nJobs, false,
		func(ctx context.Context, p *Prepared) ([]pairs.Match, error) {
			return f.candidates(ctx, p, nil)
		})
}

// candidates returns every build row with positive overlap for each probe
// row. When keep is set it decides which of those are emitted.
func (f *PositionFilter) candidates(
	ctx context.Context,
	p *Prepared,
	keep func(l, r int, c *Candidate) bool,
) ([]pairs.Match, error) {
	probe := NewPositionProbe(p, f.bounds)
	cands := make(map[int]*Candidate)

	var out []pairs.Match
	for r, toks := range p.Probe {
		if err := CheckContext(ctx, r); err != nil {
			return nil, err
		}
		if p.ProbeBlank[r] {
			continue
		}
		if len(toks) == 0 {
			if f.cfg.AllowEmpty && f.cfg.Measure != measures.Overlap {
				out = append(out, p.EmptyMatches(r, math.NaN())...)
			}
			continue
		}

		clear(cands)
		probe.Candidates(toks, cands)
		for l, c := range cands {
			if c.Overlap == 0 {
				continue
			}
			if keep != nil && !keep(l, r, c) {
				continue
			}
			out = append(out, pairs.Match{L: l, R: r, Score: math.NaN()})
		}
	}
	return out, nil
}

func (f *PositionFilter) FilterCandset(
	ctx context.Context,
	candset, left, right *table.Table,
	keys pairs.CandsetKeys,
	lJoinAttr, rJoinAttr string,
	nJobs int,
) (*table.Table, error) {
	return f.filterCandset(ctx, candset, left, right, keys, lJoinAttr, rJoinAttr, nJobs, f.FilterPair)
}
