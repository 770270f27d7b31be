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
	"testing"
	"unicode/utf8"

	"pgregory.net/rapid"
)

// ============================================================================
// Generators
// ============================================================================

func shortStringGen() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-c ]{0,12}`)
}

// ============================================================================
// Tokenizer Property Tests
// ============================================================================

// TestPropertyPaddedQgramCount verifies a padded string of n runes yields n+q-1 q-grams.
func TestPropertyPaddedQgramCount(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[a-zé]{1,15}`).Draw(t, "s")
		q := rapid.IntRange(1, 4).Draw(t, "q")

		got := NewQgram(q).Tokenize(s)
		want := utf8.RuneCountInString(s) + q - 1
		if len(got) != want {
			t.Fatalf("Tokenize(%q) with q=%d returned %d tokens, want %d", s, q, len(got), want)
		}
	})
}

// TestPropertySetHasNoDuplicates verifies set tokenizers never repeat a token.
func TestPropertySetHasNoDuplicates(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		s := shortStringGen().Draw(t, "s")
		tok := rapid.SampledFrom([]Tokenizer{
			NewQgram(2, WithSet()),
			NewWhitespace().WithReturnSet(true),
		}).Draw(t, "tok")

		got := tok.Tokenize(s)
		seen := make(map[string]bool, len(got))
		for _, tkn := range got {
			if seen[tkn] {
				t.Fatalf("%s returned duplicate token %q for %q", tok, tkn, s)
			}
			seen[tkn] = true
		}
	})
}

// ============================================================================
// Ordering Property Tests
// ============================================================================

// TestPropertyOrderingIsSortedPermutation verifies ranks are 1..n and Order output is sorted.
func TestPropertyOrderingIsSortedPermutation(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		lists := rapid.SliceOfN(rapid.SliceOfN(rapid.StringMatching(`[a-e]`), 0, 6), 0, 6).
			Draw(t, "lists")
		ord := NewOrdering(lists...)

		ranks := make([]int, 0, len(ord))
		for _, r := range ord {
			ranks = append(ranks, r)
		}
		slices.Sort(ranks)
		for i, r := range ranks {
			if r != i+1 {
				t.Fatalf("ranks are not a permutation of 1..%d: %v", len(ranks), ranks)
			}
		}

		for _, toks := range lists {
			ordered := ord.Order(toks)
			if len(ordered) != len(toks) {
				t.Fatalf("Order dropped known tokens: %v -> %v", toks, ordered)
			}
			if !slices.IsSorted(ordered) {
				t.Fatalf("Order output not sorted: %v", ordered)
			}
		}
	})
}
