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
	"slices"
	"testing"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/measures"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/pairs"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/testing/fixtures"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/testing/oracle"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/tokenizers"
	"pgregory.net/rapid"
)

// ============================================================================
// Generators
// ============================================================================

func ratioMeasureGen() *rapid.Generator[measures.Measure] {
	return rapid.SampledFrom([]measures.Measure{measures.Jaccard, measures.Cosine, measures.Dice})
}

func ratioThresholdGen() *rapid.Generator[float64] {
	return rapid.SampledFrom([]float64{0.1, 0.3, 0.5, 0.6, 0.7, 0.75, 0.8, 0.9, 1})
}

func qgramGen() *rapid.Generator[*tokenizers.QgramTokenizer] {
	return rapid.Custom(func(t *rapid.T) *tokenizers.QgramTokenizer {
		q := rapid.IntRange(1, 3).Draw(t, "q")
		padding := rapid.Bool().Draw(t, "padding")
		return tokenizers.NewQgram(q, tokenizers.WithPadding(padding))
	})
}

func oracleOptions(cfg Config) oracle.Options {
	return oracle.Options{
		Tokenizer:  cfg.Tokenizer,
		LKeyAttr:   fixtures.KeyColumn,
		RKeyAttr:   fixtures.KeyColumn,
		LJoinAttr:  fixtures.NameColumn,
		RJoinAttr:  fixtures.NameColumn,
		Measure:    cfg.Measure,
		CompOp:     cfg.CompOp,
		Threshold:  cfg.Threshold,
		AllowEmpty: cfg.AllowEmpty,
	}
}

func requireSuperset(t *rapid.T, name string, got [][2]string, want []oracle.Pair) {
	have := make(map[[2]string]bool, len(got))
	for _, k := range got {
		have[k] = true
	}
	for _, p := range want {
		if !have[p.Key()] {
			t.Fatalf("%s filter dropped matching pair %v (score %v)", name, p.Key(), p.Score)
		}
	}
}

func requirePairKept(t *rapid.T, name string, f Filter, left, right *table.Table, want []oracle.Pair) {
	lookup := func(tbl *table.Table, key string) table.Value {
		for _, row := range tbl.Rows {
			if row[0].V == key {
				return row[1]
			}
		}
		t.Fatalf("key %q not found", key)
		return table.Null
	}
	for _, p := range want {
		if f.FilterPair(lookup(left, p.LKey), lookup(right, p.RKey)) {
			t.Fatalf("%s FilterPair dropped matching pair %v", name, p.Key())
		}
	}
}

// ============================================================================
// Properties
// ============================================================================

// TestPropertySetFiltersSound checks that no set similarity filter drops a
// pair whose exact score meets the threshold.
func TestPropertySetFiltersSound(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		cfg := Config{
			Tokenizer:  fixtures.SetTokenizer().Draw(t, "tokenizer"),
			Measure:    ratioMeasureGen().Draw(t, "measure"),
			Threshold:  ratioThresholdGen().Draw(t, "threshold"),
			AllowEmpty: rapid.Bool().Draw(t, "allowEmpty"),
		}
		left := fixtures.Table("l", fixtures.MixedValues()).Draw(t, "left")
		right := fixtures.Table("r", fixtures.MixedValues()).Draw(t, "right")
		nJobs := rapid.IntRange(1, 4).Draw(t, "nJobs")
		want := oracle.Join(left, right, oracleOptions(cfg))

		size, err := NewSizeFilter(cfg)
		if err != nil {
			t.Fatal(err)
		}
		prefix, err := NewPrefixFilter(cfg)
		if err != nil {
			t.Fatal(err)
		}
		position, err := NewPositionFilter(cfg)
		if err != nil {
			t.Fatal(err)
		}
		suffix, err := NewSuffixFilter(cfg)
		if err != nil {
			t.Fatal(err)
		}

		for name, f := range map[string]Filter{
			"size": size, "prefix": prefix, "position": position, "suffix": suffix,
		} {
			out, err := f.FilterTables(context.Background(), left, right, nameSpec(), nJobs)
			if err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			requireSuperset(t, name, out.KeyPairs(), want)
			requirePairKept(t, name, f, left, right, want)
		}
	})
}

// TestPropertyOverlapFilterExact checks that the overlap filter returns
// exactly the pairs found by brute force.
func TestPropertyOverlapFilterExact(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		cfg := Config{
			Tokenizer: fixtures.SetTokenizer().Draw(t, "tokenizer"),
			Measure:   measures.Overlap,
			Threshold: float64(rapid.IntRange(1, 4).Draw(t, "threshold")),
			CompOp:    rapid.SampledFrom(measures.SimilarityOps).Draw(t, "op"),
		}
		left := fixtures.Table("l", fixtures.MixedValues()).Draw(t, "left")
		right := fixtures.Table("r", fixtures.MixedValues()).Draw(t, "right")

		f, err := NewOverlapFilter(cfg)
		if err != nil {
			t.Fatal(err)
		}
		spec := nameSpec()
		spec.OutSimScore = true
		out, err := f.FilterTables(context.Background(), left, right, spec, rapid.IntRange(1, 3).Draw(t, "nJobs"))
		if err != nil {
			t.Fatal(err)
		}

		got := make([]oracle.Pair, len(out.Pairs))
		for i, p := range out.Pairs {
			got[i] = oracle.Pair{LKey: p.LKey.V, RKey: p.RKey.V, Score: p.Score}
		}
		oracle.Sort(got)
		want := oracle.Join(left, right, oracleOptions(cfg))
		if !slices.Equal(got, want) {
			t.Fatalf("overlap filter mismatch:\n got %v\nwant %v", got, want)
		}
	})
}

// TestPropertyEditDistanceFiltersSound checks the size and prefix filters
// against exact edit distances, including strings too short to share a
// q-gram.
func TestPropertyEditDistanceFiltersSound(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		cfg := Config{
			Tokenizer: qgramGen().Draw(t, "tokenizer"),
			Measure:   measures.EditDistance,
			Threshold: float64(rapid.IntRange(0, 3).Draw(t, "threshold")),
		}
		left := fixtures.Table("l", fixtures.ShortValues()).Draw(t, "left")
		right := fixtures.Table("r", fixtures.ShortValues()).Draw(t, "right")
		nJobs := rapid.IntRange(1, 3).Draw(t, "nJobs")
		want := oracle.Join(left, right, oracleOptions(cfg))

		size, err := NewSizeFilter(cfg)
		if err != nil {
			t.Fatal(err)
		}
		prefix, err := NewPrefixFilter(cfg)
		if err != nil {
			t.Fatal(err)
		}
		for name, f := range map[string]Filter{"size": size, "prefix": prefix} {
			out, err := f.FilterTables(context.Background(), left, right, nameSpec(), nJobs)
			if err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			requireSuperset(t, name, out.KeyPairs(), want)
			requirePairKept(t, name, f, left, right, want)
		}
	})
}

// TestPropertyHammingLowerBound checks that the suffix bound never exceeds
// its budget when the true Hamming distance is within it.
func TestPropertyHammingLowerBound(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		universe := rapid.IntRange(1, 30)
		x := rapid.SliceOfNDistinct(universe, 0, 12, rapid.ID[int]).Draw(t, "x")
		y := rapid.SliceOfNDistinct(universe, 0, 12, rapid.ID[int]).Draw(t, "y")
		slices.Sort(x)
		slices.Sort(y)
		hmax := rapid.IntRange(0, 24).Draw(t, "hmax")

		common := 0
		for _, v := range x {
			if _, ok := slices.BinarySearch(y, v); ok {
				common++
			}
		}
		hamming := len(x) + len(y) - 2*common

		if got := hammingLowerBound(x, y, hmax, 1); hamming <= hmax && got > hmax {
			t.Fatalf("bound %d exceeds budget %d although distance is %d", got, hmax, hamming)
		}
	})
}

// TestPropertyPrefixFilterIdempotent checks that re-filtering a prefix
// filter result with the same filter keeps every row.
func TestPropertyPrefixFilterIdempotent(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		cfg := Config{
			Tokenizer: fixtures.SetTokenizer().Draw(t, "tokenizer"),
			Measure:   ratioMeasureGen().Draw(t, "measure"),
			Threshold: ratioThresholdGen().Draw(t, "threshold"),
		}
		left := fixtures.Table("l", fixtures.MixedValues()).Draw(t, "left")
		right := fixtures.Table("r", fixtures.MixedValues()).Draw(t, "right")

		f, err := NewPrefixFilter(cfg)
		if err != nil {
			t.Fatal(err)
		}
		out, err := f.FilterTables(context.Background(), left, right, nameSpec(), 1)
		if err != nil {
			t.Fatal(err)
		}
		keys := pairs.CandsetKeys{CandLKey: "l_id", CandRKey: "r_id", LKey: "id", RKey: "id"}
		once, err := f.FilterCandset(context.Background(), out.Table(), left, right, keys, "name", "name", 2)
		if err != nil {
			t.Fatal(err)
		}
		twice, err := f.FilterCandset(context.Background(), once, left, right, keys, "name", "name", 3)
		if err != nil {
			t.Fatal(err)
		}
		if len(once.Rows) != len(twice.Rows) {
			t.Fatalf("re-filtering dropped rows: %d then %d", len(once.Rows), len(twice.Rows))
		}
	})
}
