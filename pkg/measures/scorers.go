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
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/tokenizers"
	"github.com/hbollon/go-edlib"
)

var ErrUnknownScorer = errors.New("unknown scorer")

// Scorer scores a pair of raw attribute values. Scorers are treated as black
// boxes by ApplyMatcher and must be safe for concurrent use.
type Scorer interface {
	Score(l, r string) float64
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(l, r string) float64

func (f ScorerFunc) Score(l, r string) float64 {
	return f(l, r)
}

var namedScorers = map[string]Scorer{
	"levenshtein": ScorerFunc(func(l, r string) float64 {
		return float64(edlib.LevenshteinDistance(l, r))
	}),
	"damerau_levenshtein": ScorerFunc(func(l, r string) float64 {
		return float64(edlib.DamerauLevenshteinDistance(l, r))
	}),
	"osa": ScorerFunc(func(l, r string) float64 {
		return float64(edlib.OSADamerauLevenshteinDistance(l, r))
	}),
	"jaro": ScorerFunc(func(l, r string) float64 {
		return RoundScore(float64(edlib.JaroSimilarity(l, r)))
	}),
	"jaro_winkler": ScorerFunc(func(l, r string) float64 {
		return RoundScore(float64(edlib.JaroWinklerSimilarity(l, r)))
	}),
	"lcs": ScorerFunc(func(l, r string) float64 {
		return float64(edlib.LCS(l, r))
	}),
}

// LookupScorer returns a string scorer by name. Names are case-insensitive;
// hyphens are accepted in place of underscores.
func LookupScorer(name string) (Scorer, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	if s, ok := namedScorers[key]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScorer, name)
}

// ScorerNames lists the registered string scorers, sorted.
func ScorerNames() []string {
	names := make([]string, 0, len(namedScorers))
	for name := range namedScorers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// TokenScorer scores raw values with one of the join measures. Token based
// measures tokenize both values into sets with tok; EditDistance ignores tok
// and returns the Levenshtein distance.
func TokenScorer(tok tokenizers.Tokenizer, m Measure) Scorer {
	if m == EditDistance {
		return ScorerFunc(func(l, r string) float64 {
			return float64(Levenshtein(l, r))
		})
	}
	setTok := tok.WithReturnSet(true)
	return ScorerFunc(func(l, r string) float64 {
		lt, rt := setTok.Tokenize(l), setTok.Tokenize(r)
		ord := tokenizers.NewOrdering(lt, rt)
		return SetScore(m, ord.Order(lt), ord.Order(rt))
	})
}
