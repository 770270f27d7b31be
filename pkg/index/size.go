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

import "github.com/ZaparooProject/zaparoo-simjoin/pkg/helpers"

// SizeIndex maps a size (token count or string length) to the rows of that
// size.
type SizeIndex struct {
	rows    map[int][]int
	minSize int
	maxSize int
}

// NewSize returns an empty index. An empty index has MinSize 0 and MaxSize
// -1, so every probe range is empty.
func NewSize() *SizeIndex {
	return &SizeIndex{rows: make(map[int][]int), minSize: 0, maxSize: -1}
}

// Add records row under size.
func (idx *SizeIndex) Add(row, size int) {
	if idx.maxSize < 0 {
		idx.minSize, idx.maxSize = size, size
	} else {
		idx.minSize = min(idx.minSize, size)
		idx.maxSize = max(idx.maxSize, size)
	}
	idx.rows[size] = append(idx.rows[size], row)
}

// Range calls fn for every indexed size in [lo, hi], clamped to the indexed
// sizes, in ascending order.
func (idx *SizeIndex) Range(lo, hi int, fn func(size int, rows []int)) {
	if idx.maxSize < 0 {
		return
	}
	lo = helpers.Clamp(lo, idx.minSize, idx.maxSize+1)
	hi = helpers.Clamp(hi, idx.minSize-1, idx.maxSize)
	for size := lo; size <= hi; size++ {
		if rows, ok := idx.rows[size]; ok {
			fn(size, rows)
		}
	}
}

func (idx *SizeIndex) MinSize() int {
	return idx.minSize
}

func (idx *SizeIndex) MaxSize() int {
	return idx.maxSize
}
