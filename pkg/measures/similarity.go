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

package measures

import (
	"math"

	"github.com/hbollon/go-edlib"
)

// OverlapSize counts the common elements of two ascending sequences. Repeated
// elements are matched pairwise, so multisets are supported.
func OverlapSize(l, r []int) int {
	i, j, n := 0, 0, 0
	for i < len(l) && j < len(r) {
		switch {
		case l[i] == r[j]:
			n++
			i++
			j++
		case l[i] < r[j]:
			i++
		default:
			j++
		}
	}
	return n
}

// JaccardScore is |A∩B| / |A∪B|.
func JaccardScore(l, r []int) float64 {
	if len(l) == 0 && len(r) == 0 {
		return 1
	}
	ov := OverlapSize(l, r)
	return float64(ov) / float64(len(l)+len(r)-ov)
}

// CosineScore is |A∩B| / sqrt(|A|·|B|).
func CosineScore(l, r []int) float64 {
	if len(l) == 0 && len(r) == 0 {
		return 1
	}
	if len(l) == 0 || len(r) == 0 {
		return 0
	}
	return float64(OverlapSize(l, r)) / math.Sqrt(float64(len(l))*float64(len(r)))
}

// DiceScore is 2|A∩B| / (|A|+|B|).
func DiceScore(l, r []int) float64 {
	if len(l) == 0 && len(r) == 0 {
		return 1
	}
	return 2 * float64(OverlapSize(l, r)) / float64(len(l)+len(r))
}

// OverlapCoefficientScore is |A∩B| / min(|A|,|B|).
func OverlapCoefficientScore(l, r []int) float64 {
	if len(l) == 0 && len(r) == 0 {
		return 1
	}
	if len(l) == 0 || len(r) == 0 {
		return 0
	}
	return float64(OverlapSize(l, r)) / float64(min(len(l), len(r)))
}

// SetScore computes a token based measure over two ordered token sequences,
// rounded to four decimals. EditDistance is not token based and yields NaN.
func SetScore(m Measure, l, r []int) float64 {
	switch m {
	case Jaccard:
		return RoundScore(JaccardScore(l, r))
	case Cosine:
		return RoundScore(CosineScore(l, r))
	case Dice:
		return RoundScore(DiceScore(l, r))
	case Overlap:
		return float64(OverlapSize(l, r))
	case OverlapCoefficient:
		return RoundScore(OverlapCoefficientScore(l, r))
	default:
		return math.NaN()
	}
}

// Levenshtein returns the edit distance between two strings in runes.
func Levenshtein(l, r string) int {
	return edlib.LevenshteinDistance(l, r)
}
