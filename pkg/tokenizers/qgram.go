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
	"fmt"
	"strings"
)

const (
	DefaultPrefixPad = '#'
	DefaultSuffixPad = '$'
)

// QgramTokenizer produces overlapping character q-grams.
//
// With padding enabled (the default) the input is surrounded by q-1 prefix
// and q-1 suffix pad characters, so a string of n runes yields n+q-1 q-grams:
//
//	NewQgram(2).Tokenize("ab") → ["#a", "ab", "b$"]
//
// Without padding a string shorter than q yields no q-grams.
type QgramTokenizer struct {
	q         int
	prefixPad rune
	suffixPad rune
	padding   bool
	returnSet bool
}

// QgramOption configures a QgramTokenizer.
type QgramOption func(*QgramTokenizer)

// WithPadding toggles padding.
func WithPadding(padding bool) QgramOption {
	return func(t *QgramTokenizer) {
		t.padding = padding
	}
}

// WithPads sets the prefix and suffix pad characters.
func WithPads(prefix, suffix rune) QgramOption {
	return func(t *QgramTokenizer) {
		t.prefixPad = prefix
		t.suffixPad = suffix
	}
}

// WithSet makes the tokenizer return a token set.
func WithSet() QgramOption {
	return func(t *QgramTokenizer) {
		t.returnSet = true
	}
}

// NewQgram returns a padded q-gram tokenizer. It panics if q < 1; use
// ParseQgram when q comes from user input.
func NewQgram(q int, opts ...QgramOption) *QgramTokenizer {
	t, err := ParseQgram(q, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseQgram is NewQgram with an error instead of a panic.
func ParseQgram(q int, opts ...QgramOption) (*QgramTokenizer, error) {
	if q < 1 {
		return nil, fmt.Errorf("%w: q-gram length must be at least 1, got %d", ErrInvalidTokenizer, q)
	}
	t := &QgramTokenizer{
		q:         q,
		padding:   true,
		prefixPad: DefaultPrefixPad,
		suffixPad: DefaultSuffixPad,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *QgramTokenizer) Tokenize(s string) []string {
	if s == "" {
		return nil
	}

	runes := []rune(s)
	if t.padding && t.q > 1 {
		padded := make([]rune, 0, len(runes)+2*(t.q-1))
		for range t.q - 1 {
			padded = append(padded, t.prefixPad)
		}
		padded = append(padded, runes...)
		for range t.q - 1 {
			padded = append(padded, t.suffixPad)
		}
		runes = padded
	}

	if len(runes) < t.q {
		return nil
	}

	tokens := make([]string, 0, len(runes)-t.q+1)
	for i := range len(runes) - t.q + 1 {
		tokens = append(tokens, string(runes[i:i+t.q]))
	}

	if t.returnSet {
		return dedupe(tokens)
	}
	return tokens
}

func (*QgramTokenizer) Kind() Kind {
	return KindQgram
}

func (t *QgramTokenizer) Qval() int {
	return t.q
}

func (t *QgramTokenizer) ReturnSet() bool {
	return t.returnSet
}

func (t *QgramTokenizer) WithReturnSet(returnSet bool) Tokenizer {
	cp := *t
	cp.returnSet = returnSet
	return &cp
}

func (t *QgramTokenizer) String() string {
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "qgram(q=%d", t.q)
	if !t.padding {
		sb.WriteString(",nopad")
	}
	if t.returnSet {
		sb.WriteString(",set")
	}
	sb.WriteString(")")
	return sb.String()
}
