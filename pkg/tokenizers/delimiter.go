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

// DelimiterTokenizer splits on any of a fixed set of delimiter strings.
// Empty tokens produced by adjacent delimiters are discarded.
type DelimiterTokenizer struct {
	delims     []string
	whitespace bool
	returnSet  bool
}

// NewDelimiter returns a tokenizer splitting on the given delimiters.
func NewDelimiter(delims ...string) (*DelimiterTokenizer, error) {
	if len(delims) == 0 {
		return nil, fmt.Errorf("%w: at least one delimiter is required", ErrInvalidTokenizer)
	}
	for _, d := range delims {
		if d == "" {
			return nil, fmt.Errorf("%w: empty delimiter", ErrInvalidTokenizer)
		}
	}
	cp := make([]string, len(delims))
	copy(cp, delims)
	return &DelimiterTokenizer{delims: cp}, nil
}

// NewWhitespace returns a tokenizer splitting on runs of Unicode whitespace.
func NewWhitespace() *DelimiterTokenizer {
	return &DelimiterTokenizer{delims: []string{" "}, whitespace: true}
}

func (t *DelimiterTokenizer) Tokenize(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string
	switch {
	case t.whitespace:
		tokens = strings.Fields(s)
	case len(t.delims) == 1:
		tokens = dropEmpty(strings.Split(s, t.delims[0]))
	default:
		tokens = t.splitMulti(s)
	}

	if t.returnSet {
		return dedupe(tokens)
	}
	return tokens
}

// splitMulti cuts s at the leftmost occurrence of any delimiter, preferring
// the longest delimiter when several start at the same offset.
func (t *DelimiterTokenizer) splitMulti(s string) []string {
	var tokens []string
	for s != "" {
		cut, width := -1, 0
		for _, d := range t.delims {
			i := strings.Index(s, d)
			if i < 0 {
				continue
			}
			if cut < 0 || i < cut || (i == cut && len(d) > width) {
				cut, width = i, len(d)
			}
		}
		if cut < 0 {
			tokens = append(tokens, s)
			break
		}
		if cut > 0 {
			tokens = append(tokens, s[:cut])
		}
		s = s[cut+width:]
	}
	return tokens
}

func dropEmpty(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (*DelimiterTokenizer) Kind() Kind {
	return KindDelimiter
}

func (*DelimiterTokenizer) Qval() int {
	return 0
}

func (t *DelimiterTokenizer) ReturnSet() bool {
	return t.returnSet
}

func (t *DelimiterTokenizer) WithReturnSet(returnSet bool) Tokenizer {
	cp := *t
	cp.returnSet = returnSet
	return &cp
}

func (t *DelimiterTokenizer) String() string {
	name := fmt.Sprintf("delimiter(%q)", t.delims)
	if t.whitespace {
		name = "whitespace"
	}
	if t.returnSet {
		return name + "[set]"
	}
	return name
}
