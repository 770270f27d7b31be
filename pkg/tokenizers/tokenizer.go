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

// Package tokenizers splits join attribute values into tokens and builds the
// frequency-based token ordering shared by both sides of a join.
//
// Two tokenizer families are supported:
//   - q-gram: fixed-length character n-grams over runes, optionally padded
//   - delimiter: split on fixed delimiter strings (whitespace is a special case)
//
// Every tokenizer returns no tokens for an empty string. Tokenizers are
// immutable values; WithReturnSet returns a copy with the flag changed.
package tokenizers

import "errors"

// Kind identifies the tokenizer family.
type Kind int

const (
	KindQgram Kind = iota + 1
	KindDelimiter
)

func (k Kind) String() string {
	switch k {
	case KindQgram:
		return "qgram"
	case KindDelimiter:
		return "delimiter"
	default:
		return "unknown"
	}
}

var ErrInvalidTokenizer = errors.New("invalid tokenizer")

// Tokenizer converts a string into tokens.
type Tokenizer interface {
	// Tokenize returns the tokens of s. When ReturnSet is true, duplicate
	// tokens are removed keeping the first occurrence.
	Tokenize(s string) []string
	Kind() Kind
	// Qval returns the q-gram length, or 0 for non q-gram tokenizers.
	Qval() int
	ReturnSet() bool
	WithReturnSet(returnSet bool) Tokenizer
	String() string
}

// dedupe removes repeated tokens in place, keeping first occurrences.
func dedupe(tokens []string) []string {
	if len(tokens) < 2 {
		return tokens
	}
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
