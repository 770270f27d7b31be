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

// Package oracle computes join results by scoring every pair of rows. Tests
// compare the filtered joins and the candidate filters against it.
package oracle

import (
	"cmp"
	"slices"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/measures"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/tokenizers"
)

// Pair is one matching pair identified by its key values.
type Pair struct {
	LKey  string
	RKey  string
	Score float64
}

// Key returns the pair's keys.
func (p Pair) Key() [2]string {
	return [2]string{p.LKey, p.RKey}
}

// Options selects the columns, tokenizer, measure and comparison to use.
type Options struct {
	Tokenizer  tokenizers.Tokenizer
	LKeyAttr   string
	RKeyAttr   string
	LJoinAttr  string
	RJoinAttr  string
	Measure    measures.Measure
	CompOp     measures.CompOp
	Threshold  float64
	AllowEmpty bool
}

// Join scores every pair of left and right rows. Rows with a null or empty
// join value never match. The result is sorted by left key, then right key.
func Join(left, right *table.Table, opts Options) []Pair {
	lk, lj := mustColumn(left, opts.LKeyAttr), mustColumn(left, opts.LJoinAttr)
	rk, rj := mustColumn(right, opts.RKeyAttr), mustColumn(right, opts.RJoinAttr)
	op := opts.CompOp.Or(measures.DefaultCompOp(opts.Measure))

	var out []Pair
	for _, lrow := range left.Rows {
		for _, rrow := range right.Rows {
			lv, rv := lrow[lj], rrow[rj]
			if lv.IsNull() || rv.IsNull() || lv.V == "" || rv.V == "" {
				continue
			}
			score, ok := Score(opts, lv.V, rv.V)
			if ok && op.Compare(score, opts.Threshold) {
				out = append(out, Pair{LKey: lrow[lk].V, RKey: rrow[rk].V, Score: score})
			}
		}
	}
	Sort(out)
	return out
}

// Score returns the exact score of one pair of join values. ok is false
// when the pair cannot be scored, which happens for set measures when
// either side has no tokens, unless both are empty and AllowEmpty is set.
func Score(opts Options, l, r string) (score float64, ok bool) {
	if opts.Measure == measures.EditDistance {
		return float64(measures.Levenshtein(l, r)), true
	}

	tok := opts.Tokenizer.WithReturnSet(true)
	lt, rt := tok.Tokenize(l), tok.Tokenize(r)
	switch {
	case len(lt) == 0 && len(rt) == 0:
		if !opts.AllowEmpty || opts.Measure == measures.Overlap {
			return 0, false
		}
		return 1, true
	case len(lt) == 0 || len(rt) == 0:
		return 0, false
	}
	ord := tokenizers.NewOrdering(lt, rt)
	return measures.SetScore(opts.Measure, ord.Order(lt), ord.Order(rt)), true
}

// Sort orders pairs by left key, then right key.
func Sort(ps []Pair) {
	slices.SortFunc(ps, func(a, b Pair) int {
		if c := cmp.Compare(a.LKey, b.LKey); c != 0 {
			return c
		}
		return cmp.Compare(a.RKey, b.RKey)
	})
}

// Keys returns the key pairs of ps in order.
func Keys(ps []Pair) [][2]string {
	out := make([][2]string, len(ps))
	for i, p := range ps {
		out[i] = p.Key()
	}
	return out
}

func mustColumn(t *table.Table, name string) int {
	i, err := t.ColumnIndex(name)
	if err != nil {
		panic(err)
	}
	return i
}
