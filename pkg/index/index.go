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

// Package index holds the in-memory token indexes built over the build side
// of a join. Every index maps ordered token ranks (see tokenizers.Ordering)
// to build row numbers. Indexes are built once per join call and are read
// only afterwards, so probes may run concurrently.
package index

import "github.com/ZaparooProject/zaparoo-simjoin/pkg/measures"

// InvertedIndex maps every token of a row to the rows containing it.
type InvertedIndex struct {
	postings map[int][]int
	sizes    []int
}

// NewInverted indexes all tokens of each ordered row. A row listing a token
// more than once is posted once for it.
func NewInverted(rows [][]int) *InvertedIndex {
	idx := &InvertedIndex{
		postings: make(map[int][]int),
		sizes:    make([]int, len(rows)),
	}
	for row, tokens := range rows {
		idx.sizes[row] = len(tokens)
		prev := -1
		for _, tok := range tokens {
			if tok == prev {
				continue
			}
			idx.postings[tok] = append(idx.postings[tok], row)
			prev = tok
		}
	}
	return idx
}

// Probe returns the rows containing tok.
func (idx *InvertedIndex) Probe(tok int) []int {
	return idx.postings[tok]
}

// Size returns the token count of an indexed row.
func (idx *InvertedIndex) Size(row int) int {
	return idx.sizes[row]
}

// PrefixIndex maps the tokens in each row's prefix to that row.
type PrefixIndex struct {
	postings map[int][]int
}

// NewPrefix indexes the first bounds.PrefixLength(n) tokens of every ordered
// row. Repeated tokens inside one prefix post the row once.
func NewPrefix(rows [][]int, bounds measures.Bounds) *PrefixIndex {
	idx := &PrefixIndex{postings: make(map[int][]int)}
	for row, tokens := range rows {
		prefix := tokens[:bounds.PrefixLength(len(tokens))]
		prev := -1
		for _, tok := range prefix {
			if tok == prev {
				continue
			}
			idx.postings[tok] = append(idx.postings[tok], row)
			prev = tok
		}
	}
	return idx
}

func (idx *PrefixIndex) Probe(tok int) []int {
	return idx.postings[tok]
}
