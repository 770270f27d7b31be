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

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/helpers"
)

const scorePrecision = 10000.0

// RoundScore rounds a score to four decimal places. Every bound below is
// computed on rounded products, which can only widen a bound.
func RoundScore(x float64) float64 {
	return math.Round(x*scorePrecision) / scorePrecision
}

func ceil4(x float64) int {
	return int(math.Ceil(RoundScore(x)))
}

func floor4(x float64) int {
	return int(math.Floor(RoundScore(x)))
}

// Bounds computes the size, prefix and overlap bounds of one measure and
// threshold. Qval is the q-gram length and only matters for EditDistance.
type Bounds struct {
	Measure   Measure
	Threshold float64
	Qval      int
}

func NewBounds(m Measure, threshold float64, qval int) Bounds {
	return Bounds{Measure: m, Threshold: threshold, Qval: qval}
}

// intThreshold is the threshold of the integer valued measures.
func (b Bounds) intThreshold() int {
	return ceil4(b.Threshold)
}

// SizeLower returns the smallest token count a partner of a row with n
// tokens can have.
func (b Bounds) SizeLower(n int) int {
	t := b.Threshold
	switch b.Measure {
	case Jaccard:
		return ceil4(t * float64(n))
	case Cosine:
		return ceil4(t * t * float64(n))
	case Dice:
		return ceil4(t / (2 - t) * float64(n))
	case Overlap:
		return b.intThreshold()
	case EditDistance:
		return n - int(t)
	case OverlapCoefficient:
		return 1
	default:
		return 0
	}
}

// SizeUpper returns the largest token count a partner of a row with n
// tokens can have. Measures without an upper bound return math.MaxInt.
func (b Bounds) SizeUpper(n int) int {
	t := b.Threshold
	switch b.Measure {
	case Jaccard:
		return floor4(float64(n) / t)
	case Cosine:
		return floor4(float64(n) / (t * t))
	case Dice:
		return floor4((2 - t) / t * float64(n))
	case EditDistance:
		return n + int(t)
	default:
		return math.MaxInt
	}
}

// PrefixLength returns how many of the rarest tokens of a row with n tokens
// must be indexed or probed so that every qualifying pair shares at least
// one prefix token.
func (b Bounds) PrefixLength(n int) int {
	if n <= 0 {
		return 0
	}
	var p int
	switch b.Measure {
	case Jaccard, Cosine, Dice:
		p = n - b.SizeLower(n) + 1
	case Overlap:
		p = n - b.intThreshold() + 1
	case EditDistance:
		p = b.Qval*int(b.Threshold) + 1
	default:
		p = n
	}
	return helpers.Clamp(p, 0, n)
}

// OverlapThreshold returns the minimum number of shared tokens two rows of
// nl and nr tokens need to qualify. For EditDistance this is the q-gram count
// lemma and may be zero or negative for short strings, in which case token
// overlap proves nothing.
func (b Bounds) OverlapThreshold(nl, nr int) int {
	t := b.Threshold
	switch b.Measure {
	case Jaccard:
		return ceil4(t / (1 + t) * float64(nl+nr))
	case Cosine:
		return ceil4(t * math.Sqrt(float64(nl)*float64(nr)))
	case Dice:
		return ceil4(t / 2 * float64(nl+nr))
	case Overlap:
		return b.intThreshold()
	case EditDistance:
		return max(nl, nr) - b.Qval*int(t)
	case OverlapCoefficient:
		return ceil4(t * float64(min(nl, nr)))
	default:
		return 0
	}
}

// SizeWindow returns SizeLower and SizeUpper for n, with the lower bound
// clamped at zero.
func (b Bounds) SizeWindow(n int) (lo, hi int) {
	return max(b.SizeLower(n), 0), b.SizeUpper(n)
}
