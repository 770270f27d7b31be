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

package index

import (
	"math"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/measures"
)

// Posting is a row and the position of a token inside that row's ordered
// token sequence.
type Posting struct {
	Row int
	Pos int
}

// PositionIndex maps prefix tokens to (row, position) postings and caches
// every row's token count.
type PositionIndex struct {
	postings map[int][]Posting
	sizes    []int
	minSize  int
	maxSize  int
}

// NewPosition indexes the prefix of every ordered row. Rows without tokens
// are sized but not posted and do not count toward MinSize and MaxSize.
func NewPosition(rows [][]int, bounds measures.Bounds) *PositionIndex {
	idx := &PositionIndex{
		postings: make(map[int][]Posting),
		sizes:    make([]int, len(rows)),
		minSize:  math.MaxInt,
		maxSize:  0,
	}
	for row, tokens := range rows {
		n := len(tokens)
		idx.sizes[row] = n
		if n == 0 {
			continue
		}
		idx.minSize = min(idx.minSize, n)
		idx.maxSize = max(idx.maxSize, n)
		for pos, tok := range tokens[:bounds.PrefixLength(n)] {
			idx.postings[tok] = append(idx.postings[tok], Posting{Row: row, Pos: pos})
		}
	}
	if idx.minSize == math.MaxInt {
		idx.minSize = 0
	}
	return idx
}

func (idx *PositionIndex) Probe(tok int) []Posting {
	return idx.postings[tok]
}

func (idx *PositionIndex) Size(row int) int {
	return idx.sizes[row]
}

// MinSize is the smallest non-zero row size, or 0 for an empty index.
func (idx *PositionIndex) MinSize() int {
	return idx.minSize
}

// MaxSize is the largest row size, or 0 for an empty index.
func (idx *PositionIndex) MaxSize() int {
	return idx.maxSize
}
