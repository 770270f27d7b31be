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

package tokenizers

import (
	"slices"
	"sort"
)

// Ordering maps each token to its global rank. Rank 1 is the least frequent
// token; tokens with equal frequency are ranked in lexicographic order.
//
// An Ordering is built fresh for every join call from every token of both
// participating columns, so prefixes computed on either side are comparable.
type Ordering map[string]int

// OrderingBuilder accumulates token frequencies.
type OrderingBuilder struct {
	freq map[string]int
}

func NewOrderingBuilder() *OrderingBuilder {
	return &OrderingBuilder{freq: make(map[string]int)}
}

// Add counts every token of one tokenized value. Duplicates count once per
// occurrence, so multiset tokenizers weigh repeated q-grams.
func (b *OrderingBuilder) Add(tokens []string) {
	for _, tok := range tokens {
		b.freq[tok]++
	}
}

// Build assigns ranks. The builder may keep accumulating afterwards.
func (b *OrderingBuilder) Build() Ordering {
	type tokenFreq struct {
		token string
		count int
	}
	all := make([]tokenFreq, 0, len(b.freq))
	for tok, n := range b.freq {
		all = append(all, tokenFreq{token: tok, count: n})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count < all[j].count
		}
		return all[i].token < all[j].token
	})

	ord := make(Ordering, len(all))
	for i, tf := range all {
		ord[tf.token] = i + 1
	}
	return ord
}

// NewOrdering is a shortcut building an ordering from token lists.
func NewOrdering(tokenLists ...[]string) Ordering {
	b := NewOrderingBuilder()
	for _, toks := range tokenLists {
		b.Add(toks)
	}
	return b.Build()
}

// Order maps tokens to ranks and sorts them ascending, rarest first. Tokens
// unknown to the ordering are dropped.
func (o Ordering) Order(tokens []string) []int {
	ordered := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		if rank, ok := o[tok]; ok {
			ordered = append(ordered, rank)
		}
	}
	slices.Sort(ordered)
	return ordered
}
