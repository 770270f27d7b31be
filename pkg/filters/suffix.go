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
	"sort"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/measures"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/pairs"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
)

const maxSuffixDepth = 2

// SuffixFilter bounds the Hamming distance between the token suffixes of a
// pair. Two sets of nl and nr tokens with at least α common tokens are within
// Hamming distance nl+nr-2α, so a lower bound on the suffix distance above
// what remains of that budget drops the pair.
//
// FilterPair splits each side after its prefix and charges the prefix length
// difference to the budget. That split relies on the pair-local ordering,
// where tokens unique to one side sort before shared ones. Table level
// candidates are ordered over the whole build side, so FilterTables splits
// after the first shared token instead.
type SuffixFilter struct {
	base
	position *PositionFilter
}

func NewSuffixFilter(cfg Config) (*SuffixFilter, error) {
	b, err := newBase("suffix", cfg, measures.Cosine, measures.Dice, measures.Jaccard, measures.Overlap)
	if err != nil {
		return nil, err
	}
	return &SuffixFilter{base: b, position: &PositionFilter{base: b}}, nil
}

func (f *SuffixFilter) FilterPair(lv, rv table.Value) bool {
	l, r, dropped, decided := f.orderPair(lv, rv)
	if decided {
		return dropped
	}

	lp, rp := f.bounds.PrefixLength(len(l)), f.bounds.PrefixLength(len(r))
	if lp <= 0 || rp <= 0 {
		return true
	}
	alpha := f.bounds.OverlapThreshold(len(l), len(r))
	hmax := len(l) + len(r) - 2*alpha - helpers.AbsDiff(lp, rp)
	return hammingLowerBound(l[lp:], r[rp:], hmax, 1) > hmax
}

// SuffixPrunes reports whether a pair whose smallest shared token sits at
// l[lPos] and r[rPos] cannot reach alpha common tokens. Tokens before the
// shared one are all distinct, so they are charged to the budget in full.
func SuffixPrunes(l, r []int, lPos, rPos, alpha int) bool {
	hmax := len(l) + len(r) - 2*alpha - (lPos + rPos)
	return hammingLowerBound(l[lPos+1:], r[rPos+1:], hmax, 1) > hmax
}

// hammingLowerBound estimates the Hamming distance between two ascending
// token sets from below. It splits r at its middle token w, locates w in l
// inside the window the budget allows, and recurses on both halves up to
// maxSuffixDepth. Any value above hmax means the true distance exceeds hmax.
func hammingLowerBound(l, r []int, hmax, depth int) int {
	absDiff := helpers.AbsDiff(len(l), len(r))
	if depth > maxSuffixDepth || len(l) == 0 || len(r) == 0 {
		return absDiff
	}

	mid := len(r) / 2
	w := r[mid]

	// The window widens by the size difference on the side where l has the
	// extra tokens.
	o := float64(hmax-absDiff) / 2
	oL, oR := 0, 1
	if len(l) < len(r) {
		oL, oR = 1, 0
	}
	left := int(float64(mid) - o - float64(absDiff*oL))
	right := int(float64(mid) + o + float64(absDiff*oR))

	ll, lr, diff, ok := partition(l, w, left, right)
	if !ok {
		return hmax + 1
	}
	rl, rr := r[:mid], r[mid+1:]

	hr := helpers.AbsDiff(len(lr), len(rr))
	h := helpers.AbsDiff(len(ll), len(rl)) + hr + diff
	if h > hmax {
		return h
	}

	hl := hammingLowerBound(ll, rl, hmax-hr-diff, depth+1)
	h = hl + hr + diff
	if h > hmax {
		return h
	}
	return hl + hammingLowerBound(lr, rr, hmax-hl-diff, depth+1) + diff
}

// partition splits tokens around w, which must sort at a position within
// [left, right]. diff is 0 when w is present and 1 otherwise. A window that
// starts before tokens is not checked against tokens[0], and one that ends
// past them is not checked against the last token.
func partition(tokens []int, w, left, right int) (lt, rt []int, diff int, ok bool) {
	if left > right || left >= len(tokens) || right < 0 {
		return nil, nil, 1, false
	}
	if left >= 0 && tokens[left] > w {
		return nil, nil, 1, false
	}
	if right < len(tokens) && tokens[right] < w {
		return nil, nil, 1, false
	}

	lo := max(left, 0)
	hi := min(right+1, len(tokens))
	pos := lo + sort.SearchInts(tokens[lo:hi], w)
	if pos < len(tokens) && tokens[pos] == w {
		return tokens[:pos], tokens[pos+1:], 0, true
	}
	return tokens[:pos], tokens[pos:], 1, true
}

// FilterTables generates position filter candidates and applies the suffix
// bound to each.
func (f *SuffixFilter) FilterTables(
	ctx context.Context,
	left, right *table.Table,
	spec pairs.Spec,
	nJobs int,
) (*pairs.Output, error) {
	return f.runTables(ctx, left, right, spec, nJobs, false,
		func(ctx context.Context, p *Prepared) ([]pairs.Match, error) {
			return f.position.candidates(ctx, p, func(l, r int, c *Candidate) bool {
				lt, rt := p.Build[l], p.Probe[r]
				return !SuffixPrunes(lt, rt, c.LPos, c.RPos, f.bounds.OverlapThreshold(len(lt), len(rt)))
			})
		})
}

func (f *SuffixFilter) FilterCandset(
	ctx context.Context,
	candset, left, right *table.Table,
	keys pairs.CandsetKeys,
	lJoinAttr, rJoinAttr string,
	nJobs int,
) (*table.Table, error) {
	return f.filterCandset(ctx, candset, left, right, keys, lJoinAttr, rJoinAttr, nJobs, f.FilterPair)
}
