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
	"testing"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/measures"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/pairs"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/testing/fixtures"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/tokenizers"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsConfig(m measures.Measure, threshold float64) Config {
	return Config{Tokenizer: tokenizers.NewWhitespace(), Measure: m, Threshold: threshold}
}

func edConfig(threshold float64) Config {
	return Config{Tokenizer: tokenizers.NewQgram(2), Measure: measures.EditDistance, Threshold: threshold}
}

func nameSpec() pairs.Spec {
	return pairs.Spec{
		LKeyAttr:  fixtures.KeyColumn,
		RKeyAttr:  fixtures.KeyColumn,
		LJoinAttr: fixtures.NameColumn,
		RJoinAttr: fixtures.NameColumn,
	}
}

type pairCase struct {
	name    string
	l       table.Value
	r       table.Value
	dropped bool
}

func runPairCases(t *testing.T, f Filter, cases []pairCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.dropped, f.FilterPair(tc.l, tc.r))
		})
	}
}

func TestNewFilterErrors(t *testing.T) {
	t.Parallel()

	_, err := NewPositionFilter(edConfig(1))
	require.ErrorIs(t, err, ErrUnsupportedMeasure)

	_, err = NewSuffixFilter(edConfig(1))
	require.ErrorIs(t, err, ErrUnsupportedMeasure)

	_, err = NewSizeFilter(wsConfig(measures.OverlapCoefficient, 0.5))
	require.ErrorIs(t, err, ErrUnsupportedMeasure)

	_, err = NewSizeFilter(wsConfig(measures.Jaccard, 1.5))
	require.Error(t, err)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasField("threshold"))

	_, err = NewPrefixFilter(Config{Tokenizer: tokenizers.NewWhitespace(), Measure: measures.EditDistance, Threshold: 1})
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasField("tokenizer"))

	_, err = NewPrefixFilter(Config{Measure: measures.Jaccard, Threshold: 0.5})
	require.Error(t, err)
}

func TestSizeFilterPair(t *testing.T) {
	t.Parallel()

	f, err := NewSizeFilter(wsConfig(measures.Jaccard, 0.5))
	require.NoError(t, err)

	runPairCases(t, f, []pairCase{
		{name: "within window", l: table.Str("data science rocks"), r: table.Str("data science")},
		{name: "disjoint but same size", l: table.Str("cats and dogs"), r: table.Str("data science")},
		{name: "too large", l: table.Str("a b c d e f"), r: table.Str("a"), dropped: true},
		{name: "too small", l: table.Str("a"), r: table.Str("a b c d e f"), dropped: true},
		{name: "null left", l: table.Null, r: table.Str("a"), dropped: true},
		{name: "null right", l: table.Str("a"), r: table.Null, dropped: true},
		{name: "empty", l: table.Str(""), r: table.Str("a"), dropped: true},
		{name: "both without tokens", l: table.Str(" "), r: table.Str("  "), dropped: true},
		{name: "one without tokens", l: table.Str(" "), r: table.Str("a"), dropped: true},
	})
}

func TestSizeFilterPairEditDistance(t *testing.T) {
	t.Parallel()

	f, err := NewSizeFilter(edConfig(1))
	require.NoError(t, err)

	runPairCases(t, f, []pairCase{
		{name: "close lengths", l: table.Str("kitten"), r: table.Str("sitting")},
		{name: "far lengths", l: table.Str("a"), r: table.Str("abcdef"), dropped: true},
	})
}

func TestFilterPairMissingAndEmpty(t *testing.T) {
	t.Parallel()

	cfg := wsConfig(measures.Jaccard, 0.5)
	cfg.AllowMissing = true
	cfg.AllowEmpty = true
	f, err := NewPrefixFilter(cfg)
	require.NoError(t, err)

	assert.False(t, f.FilterPair(table.Null, table.Str("a")))
	assert.False(t, f.FilterPair(table.Str("a"), table.Null))
	assert.False(t, f.FilterPair(table.Str(" "), table.Str(" ")))
	assert.True(t, f.FilterPair(table.Str(" "), table.Str("a")))
	assert.True(t, f.FilterPair(table.Str(""), table.Str("")))

	ov := wsConfig(measures.Overlap, 1)
	ov.AllowEmpty = true
	of, err := NewOverlapFilter(ov)
	require.NoError(t, err)
	assert.True(t, of.FilterPair(table.Str(" "), table.Str(" ")))

	unpadded := Config{
		Tokenizer: tokenizers.NewQgram(3, tokenizers.WithPadding(false)),
		Measure:   measures.EditDistance,
		Threshold: 1,
	}
	ef, err := NewPrefixFilter(unpadded)
	require.NoError(t, err)
	assert.False(t, ef.FilterPair(table.Str("ab"), table.Str("a")))
}

func TestPrefixFilterPair(t *testing.T) {
	t.Parallel()

	f, err := NewPrefixFilter(wsConfig(measures.Jaccard, 0.5))
	require.NoError(t, err)

	runPairCases(t, f, []pairCase{
		{name: "shared prefix token", l: table.Str("data science rocks"), r: table.Str("data science")},
		{name: "no shared token", l: table.Str("cats and dogs"), r: table.Str("data science"), dropped: true},
		{name: "shared token outside prefix", l: table.Str("a b c d e"), r: table.Str("b x y z w"), dropped: true},
		{name: "identical", l: table.Str("a b"), r: table.Str("b a")},
	})
}

func TestPrefixFilterPairEditDistance(t *testing.T) {
	t.Parallel()

	loose, err := NewPrefixFilter(edConfig(3))
	require.NoError(t, err)
	tight, err := NewPrefixFilter(edConfig(1))
	require.NoError(t, err)

	assert.False(t, loose.FilterPair(table.Str("kitten"), table.Str("sitting")))
	assert.True(t, tight.FilterPair(table.Str("kitten"), table.Str("sitting")))

	short, err := NewPrefixFilter(edConfig(2))
	require.NoError(t, err)
	assert.Equal(t, 4, short.ShortStringLimit())
	assert.False(t, short.FilterPair(table.Str("ab"), table.Str("cd")))
}

func TestPositionFilterPair(t *testing.T) {
	t.Parallel()

	f, err := NewPositionFilter(wsConfig(measures.Jaccard, 0.6))
	require.NoError(t, err)
	prefix, err := NewPrefixFilter(wsConfig(measures.Jaccard, 0.6))
	require.NoError(t, err)

	// Three shared tokens out of five: the prefixes meet, but the shared
	// run is too short to reach four common tokens.
	l, r := table.Str("a b c d e"), table.Str("c d e f g")
	assert.False(t, prefix.FilterPair(l, r))
	assert.True(t, f.FilterPair(l, r))

	runPairCases(t, f, []pairCase{
		{name: "four shared", l: table.Str("a b c d e"), r: table.Str("b c d e f")},
		{name: "identical", l: table.Str("a b c"), r: table.Str("c b a")},
		{name: "disjoint", l: table.Str("a b c"), r: table.Str("x y z"), dropped: true},
	})
}

func TestSuffixFilterPair(t *testing.T) {
	t.Parallel()

	f, err := NewSuffixFilter(wsConfig(measures.Jaccard, 0.6))
	require.NoError(t, err)

	runPairCases(t, f, []pairCase{
		// Both suffixes after the three token prefixes are the shared d e,
		// so the suffix bound alone keeps the pair.
		{name: "shared suffix", l: table.Str("a b c d e"), r: table.Str("c d e f g")},
		{name: "four shared", l: table.Str("a b c d e"), r: table.Str("b c d e f")},
		{name: "identical", l: table.Str("a b c d"), r: table.Str("d c b a")},
		{name: "disjoint", l: table.Str("a b"), r: table.Str("c d"), dropped: true},
		{name: "size gap", l: table.Str("a"), r: table.Str("a b c d e f"), dropped: true},
		{name: "one shared of four", l: table.Str("a b c d"), r: table.Str("a e f g")},
	})

	half, err := NewSuffixFilter(wsConfig(measures.Jaccard, 0.5))
	require.NoError(t, err)
	assert.False(t, half.FilterPair(table.Str("data science rocks"), table.Str("data science")))
}

func TestSuffixFilterPairSplitsAfterPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		l         string
		r         string
		measure   measures.Measure
		threshold float64
		dropped   bool
	}{
		// Single token prefixes leave empty suffixes within a zero budget.
		{name: "single distinct tokens", l: "g", r: "j", measure: measures.Jaccard, threshold: 0.7},
		{name: "disjoint triples", l: "a b c", r: "d e f", measure: measures.Jaccard, threshold: 0.8, dropped: true},
		{name: "disjoint triples cosine", l: "a b c", r: "d e f", measure: measures.Cosine, threshold: 0.9, dropped: true},
		{name: "overlap one short", l: "a b c", r: "c d e", measure: measures.Overlap, threshold: 2},
		{name: "overlap beyond size", l: "a b", r: "a b c", measure: measures.Overlap, threshold: 3, dropped: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, err := NewSuffixFilter(wsConfig(tt.measure, tt.threshold))
			require.NoError(t, err)
			assert.Equal(t, tt.dropped, f.FilterPair(table.Str(tt.l), table.Str(tt.r)))
		})
	}
}

func TestOverlapFilterPair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		op      measures.CompOp
		t       float64
		dropped bool
	}{
		{name: "at least two", op: measures.OpGE, t: 2},
		{name: "at least three", op: measures.OpGE, t: 3, dropped: true},
		{name: "more than two", op: measures.OpGT, t: 2, dropped: true},
		{name: "more than one", op: measures.OpGT, t: 1},
		{name: "exactly two", op: measures.OpEQ, t: 2},
		{name: "exactly one", op: measures.OpEQ, t: 1, dropped: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := wsConfig(measures.Overlap, tt.t)
			cfg.CompOp = tt.op
			f, err := NewOverlapFilter(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.dropped, f.FilterPair(table.Str("a b c"), table.Str("b c d")))
		})
	}

	cfg := wsConfig(measures.Overlap, 1)
	cfg.CompOp = measures.OpLE
	_, err := NewOverlapFilter(cfg)
	require.Error(t, err)
}

func TestHammingLowerBound(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, hammingLowerBound([]int{1, 2, 3}, []int{1, 2, 3}, 2, 1))
	assert.Equal(t, 0, hammingLowerBound(nil, nil, 0, 1))
	assert.Equal(t, 3, hammingLowerBound([]int{1, 2, 3}, nil, 5, 1))
	// The middle token of r cannot sit inside the window of l.
	assert.Equal(t, 3, hammingLowerBound([]int{1, 2, 3, 4}, []int{5, 6, 7, 8}, 2, 1))
	assert.LessOrEqual(t, hammingLowerBound([]int{1, 2, 3, 4}, []int{5, 6, 7, 8}, 8, 1), 8)
	assert.Equal(t, 2, hammingLowerBound([]int{1, 2, 3}, []int{1, 2, 3, 4, 5}, 1, 1))
	// A window clamped to the end of l admits a token past its last one.
	assert.Equal(t, 2, hammingLowerBound([]int{2}, []int{5}, 2, 1))
	assert.Equal(t, 2, hammingLowerBound([]int{2}, []int{5}, 1, 1))
}

func TestPartition(t *testing.T) {
	t.Parallel()

	tokens := []int{2, 4, 6, 8}
	tests := []struct {
		name        string
		wantL       []int
		wantR       []int
		w           int
		left, right int
		wantDiff    int
		wantOK      bool
	}{
		{name: "present", w: 6, left: 1, right: 3, wantL: []int{2, 4}, wantR: []int{8}, wantOK: true},
		{name: "absent", w: 5, left: 1, right: 3, wantL: []int{2, 4}, wantR: []int{6, 8}, wantDiff: 1, wantOK: true},
		{name: "left token above w", w: 3, left: 2, right: 3, wantDiff: 1},
		{name: "right token below w", w: 7, left: 0, right: 2, wantDiff: 1},
		{name: "empty window", w: 4, left: 2, right: 1, wantDiff: 1},
		{name: "window past tokens", w: 9, left: 4, right: 6, wantDiff: 1},
		{name: "window before tokens", w: 1, left: -3, right: -1, wantDiff: 1},
		{name: "clamped left", w: 1, left: -2, right: 1, wantR: []int{2, 4, 6, 8}, wantDiff: 1, wantOK: true},
		{name: "clamped right", w: 9, left: 2, right: 5, wantL: []int{2, 4, 6, 8}, wantDiff: 1, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l, r, diff, ok := partition(tokens, tt.w, tt.left, tt.right)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantDiff, diff)
			if ok {
				assert.Equal(t, tt.wantL, append([]int(nil), l...))
				assert.Equal(t, tt.wantR, append([]int(nil), r...))
			}
		})
	}
}

func TestSuffixPrunes(t *testing.T) {
	t.Parallel()

	// l and r share their last three tokens; four are required.
	assert.True(t, SuffixPrunes([]int{1, 2, 5, 6, 7}, []int{3, 4, 5, 6, 7}, 2, 2, 4))
	assert.False(t, SuffixPrunes([]int{1, 2, 5, 6, 7}, []int{3, 4, 5, 6, 7}, 2, 2, 3))
	assert.False(t, SuffixPrunes([]int{4, 5, 6}, []int{5, 6}, 1, 0, 2))
}

func TestPositionResetKeepsEntry(t *testing.T) {
	t.Parallel()

	p := &Prepared{Build: [][]int{
		{1, 2, 5, 6, 7},
		{3, 4, 5, 6, 7},
	}}
	probe := NewPositionProbe(p, measures.NewBounds(measures.Jaccard, 0.6, 0))

	cands := make(map[int]*Candidate)
	probe.Candidates([]int{3, 4, 5, 6, 7}, cands)

	require.Contains(t, cands, 0)
	assert.Equal(t, Candidate{Overlap: 0, LPos: 2, RPos: 2}, *cands[0])
	require.Contains(t, cands, 1)
	assert.Equal(t, Candidate{Overlap: 3, LPos: 0, RPos: 0}, *cands[1])
}

func TestPositionReadmitsAfterReset(t *testing.T) {
	t.Parallel()

	p := &Prepared{Build: [][]int{{1, 2, 5, 6, 7}}}
	probe := NewPositionProbe(p, measures.NewBounds(measures.Jaccard, 0.6, 0))

	// An entry left at zero by an earlier scan is counted again from zero
	// by the next one rather than being skipped.
	cands := map[int]*Candidate{0: {Overlap: 0, LPos: 4, RPos: 4}}
	probe.Candidates([]int{1, 2, 5, 6, 7}, cands)
	assert.Equal(t, 3, cands[0].Overlap)
	assert.Equal(t, 4, cands[0].LPos)
}

func scenarioTables() (*table.Table, *table.Table) {
	return fixtures.Names("data science rocks", "cats and dogs"), fixtures.Names("data science")
}

func TestFilterTables(t *testing.T) {
	t.Parallel()

	newSize := func(c Config) (Filter, error) { return NewSizeFilter(c) }
	newPrefix := func(c Config) (Filter, error) { return NewPrefixFilter(c) }
	newPosition := func(c Config) (Filter, error) { return NewPositionFilter(c) }
	newSuffix := func(c Config) (Filter, error) { return NewSuffixFilter(c) }

	tests := []struct {
		newFilter func(Config) (Filter, error)
		name      string
		want      [][2]string
	}{
		{name: "size", newFilter: newSize, want: [][2]string{{"1", "1"}, {"2", "1"}}},
		{name: "prefix", newFilter: newPrefix, want: [][2]string{{"1", "1"}}},
		{name: "position", newFilter: newPosition, want: [][2]string{{"1", "1"}}},
		{name: "suffix", newFilter: newSuffix, want: [][2]string{{"1", "1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, err := tt.newFilter(wsConfig(measures.Jaccard, 0.5))
			require.NoError(t, err)

			left, right := scenarioTables()
			spec := nameSpec()
			spec.OutSimScore = true
			out, err := f.FilterTables(context.Background(), left, right, spec, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.KeyPairs())
			assert.NotContains(t, out.Columns, pairs.ScoreColumn)
		})
	}
}

func TestOverlapFilterTables(t *testing.T) {
	t.Parallel()

	f, err := NewOverlapFilter(wsConfig(measures.Overlap, 1))
	require.NoError(t, err)

	left, right := scenarioTables()
	spec := nameSpec()
	spec.OutSimScore = true
	out, err := f.FilterTables(context.Background(), left, right, spec, 2)
	require.NoError(t, err)

	require.Equal(t, 1, out.Len())
	assert.Equal(t, [][2]string{{"1", "1"}}, out.KeyPairs())
	assert.InDelta(t, 2.0, out.Pairs[0].Score, 0)
	assert.Contains(t, out.Columns, pairs.ScoreColumn)
}

func TestFilterTablesAllowMissing(t *testing.T) {
	t.Parallel()

	cfg := wsConfig(measures.Jaccard, 0.5)
	cfg.AllowMissing = true
	f, err := NewPositionFilter(cfg)
	require.NoError(t, err)

	left := fixtures.Values(table.Null)
	right := fixtures.Names("x")
	out, err := f.FilterTables(context.Background(), left, right, nameSpec(), 1)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"1", "1"}}, out.KeyPairs())
}

func TestFilterTablesAllowEmpty(t *testing.T) {
	t.Parallel()

	cfg := wsConfig(measures.Dice, 0.5)
	cfg.AllowEmpty = true
	f, err := NewPositionFilter(cfg)
	require.NoError(t, err)

	left := fixtures.Names(" ", "a b", "")
	right := fixtures.Names(" ", "", "a")
	out, err := f.FilterTables(context.Background(), left, right, nameSpec(), 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, [][2]string{{"1", "1"}, {"2", "3"}}, out.KeyPairs())
}

func TestFilterTablesEditDistanceShortStrings(t *testing.T) {
	t.Parallel()

	f, err := NewPrefixFilter(edConfig(2))
	require.NoError(t, err)

	left := fixtures.Names("ab", "kitten")
	right := fixtures.Names("cd", "sitting")
	out, err := f.FilterTables(context.Background(), left, right, nameSpec(), 1)
	require.NoError(t, err)
	assert.Contains(t, out.KeyPairs(), [2]string{"1", "1"})
}

func TestFilterTablesErrors(t *testing.T) {
	t.Parallel()

	f, err := NewSizeFilter(wsConfig(measures.Jaccard, 0.5))
	require.NoError(t, err)
	left, right := scenarioTables()

	_, err = f.FilterTables(context.Background(), left, right, nameSpec(), 0)
	require.Error(t, err)

	dup := fixtures.Names("a", "b")
	dup.Rows[1][0] = table.Str("1")
	_, err = f.FilterTables(context.Background(), dup, right, nameSpec(), 1)
	require.ErrorIs(t, err, validation.ErrDuplicateKey)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.FilterTables(ctx, left, right, nameSpec(), 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFilterCandset(t *testing.T) {
	t.Parallel()

	f, err := NewPrefixFilter(wsConfig(measures.Jaccard, 0.5))
	require.NoError(t, err)

	left, right := scenarioTables()
	candset := table.New([]string{"_id", "l_id", "r_id"},
		table.Strings("0", "1", "1"),
		table.Strings("1", "2", "1"),
	)
	keys := pairs.CandsetKeys{CandLKey: "l_id", CandRKey: "r_id", LKey: "id", RKey: "id"}

	out, err := f.FilterCandset(context.Background(), candset, left, right, keys, "name", "name", 2)
	require.NoError(t, err)
	assert.Equal(t, candset.Columns, out.Columns)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "0", out.Rows[0][0].V)

	_, err = f.FilterCandset(context.Background(), candset, left, right, keys, "title", "name", 1)
	require.ErrorIs(t, err, table.ErrUnknownColumn)

	bad := table.New(candset.Columns, table.Strings("0", "9", "1"))
	_, err = f.FilterCandset(context.Background(), bad, left, right, keys, "name", "name", 1)
	require.ErrorIs(t, err, pairs.ErrUnknownKey)
}
