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
	"slices"
	"testing"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/tokenizers"
	"pgregory.net/rapid"
)

// ============================================================================
// Generators
// ============================================================================

// rankSetGen generates an ascending set of token ranks.
func rankSetGen() *rapid.Generator[[]int] {
	return rapid.Custom(func(t *rapid.T) []int {
		set := rapid.SliceOfNDistinct(rapid.IntRange(1, 12), 0, 10, rapid.ID[int]).Draw(t, "set")
		slices.Sort(set)
		return set
	})
}

func ratioMeasureGen() *rapid.Generator[Measure] {
	return rapid.SampledFrom([]Measure{Jaccard, Cosine, Dice})
}

func ratioThresholdGen() *rapid.Generator[float64] {
	return rapid.SampledFrom([]float64{0.1, 0.3, 0.5, 0.6, 0.7, 0.75, 0.8, 0.9, 1.0})
}

func prefixesIntersect(l, r []int, pl, pr int) bool {
	return OverlapSize(l[:pl], r[:pr]) > 0
}

// ============================================================================
// Bound Property Tests
// ============================================================================

// TestPropertyRatioBoundsAreSound verifies every qualifying pair satisfies the
// size window, the overlap threshold and the prefix principle.
func TestPropertyRatioBoundsAreSound(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		m := ratioMeasureGen().Draw(t, "measure")
		threshold := ratioThresholdGen().Draw(t, "threshold")
		l := rankSetGen().Draw(t, "l")
		r := rankSetGen().Draw(t, "r")
		if len(l) == 0 || len(r) == 0 {
			return
		}

		if SetScore(m, l, r) < threshold {
			return
		}

		b := NewBounds(m, threshold, 0)
		if lo, hi := b.SizeWindow(len(r)); len(l) < lo || len(l) > hi {
			t.Fatalf("%s %.2f: size %d outside [%d, %d] of %d", m, threshold, len(l), lo, hi, len(r))
		}
		if ov := OverlapSize(l, r); ov < b.OverlapThreshold(len(l), len(r)) {
			t.Fatalf("%s %.2f: overlap %d below threshold %d", m, threshold, ov,
				b.OverlapThreshold(len(l), len(r)))
		}
		if !prefixesIntersect(l, r, b.PrefixLength(len(l)), b.PrefixLength(len(r))) {
			t.Fatalf("%s %.2f: prefixes of %v and %v do not intersect", m, threshold, l, r)
		}
	})
}

// TestPropertyOverlapBoundsAreSound checks the same laws for the integer overlap measure.
func TestPropertyOverlapBoundsAreSound(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		threshold := rapid.IntRange(1, 6).Draw(t, "threshold")
		l := rankSetGen().Draw(t, "l")
		r := rankSetGen().Draw(t, "r")

		if OverlapSize(l, r) < threshold {
			return
		}

		b := NewBounds(Overlap, float64(threshold), 0)
		if len(l) < b.SizeLower(len(r)) {
			t.Fatalf("size %d below lower bound %d", len(l), b.SizeLower(len(r)))
		}
		if !prefixesIntersect(l, r, b.PrefixLength(len(l)), b.PrefixLength(len(r))) {
			t.Fatalf("prefixes of %v and %v do not intersect", l, r)
		}
	})
}

// TestPropertyEditDistanceCountFilter verifies the q-gram count lemma and the
// prefix principle whenever the overlap threshold is positive.
func TestPropertyEditDistanceCountFilter(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		q := rapid.IntRange(1, 3).Draw(t, "q")
		threshold := rapid.IntRange(0, 3).Draw(t, "threshold")
		ls := rapid.StringMatching(`[ab]{1,8}`).Draw(t, "l")
		rs := rapid.StringMatching(`[ab]{1,8}`).Draw(t, "r")

		if Levenshtein(ls, rs) > threshold {
			return
		}

		tok := tokenizers.NewQgram(q)
		lt, rt := tok.Tokenize(ls), tok.Tokenize(rs)
		ord := tokenizers.NewOrdering(lt, rt)
		l, r := ord.Order(lt), ord.Order(rt)

		b := NewBounds(EditDistance, float64(threshold), q)
		alpha := b.OverlapThreshold(len(l), len(r))
		if ov := OverlapSize(l, r); ov < alpha {
			t.Fatalf("q=%d t=%d %q/%q: overlap %d below %d", q, threshold, ls, rs, ov, alpha)
		}
		if alpha > 0 && !prefixesIntersect(l, r, b.PrefixLength(len(l)), b.PrefixLength(len(r))) {
			t.Fatalf("q=%d t=%d %q/%q: prefixes do not intersect", q, threshold, ls, rs)
		}
	})
}
