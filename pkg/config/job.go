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

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/measures"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/pairs"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/tokenizers"
)

const (
	TokenizerWhitespace = "whitespace"
	TokenizerDelimiter  = "delimiter"
	TokenizerQgram      = "qgram"
)

var ErrUnknownTokenizer = errors.New("unknown tokenizer kind")

// Build returns the configured tokenizer.
func (t Tokenizer) Build() (tokenizers.Tokenizer, error) {
	switch strings.ToLower(strings.TrimSpace(t.Kind)) {
	case "", TokenizerWhitespace, "ws":
		return tokenizers.NewWhitespace(), nil
	case TokenizerDelimiter:
		tok, err := tokenizers.NewDelimiter(t.Delimiters...)
		if err != nil {
			return nil, fmt.Errorf("tokenizer: %w", err)
		}
		return tok, nil
	case TokenizerQgram:
		padding := t.Padding == nil || *t.Padding
		tok, err := tokenizers.ParseQgram(t.Q, tokenizers.WithPadding(padding))
		if err != nil {
			return nil, fmt.Errorf("tokenizer: %w", err)
		}
		return tok, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTokenizer, t.Kind)
	}
}

// ParseMeasure returns the configured measure.
func (j Join) ParseMeasure() (measures.Measure, error) {
	m, err := measures.ParseMeasure(j.Measure)
	if err != nil {
		return 0, fmt.Errorf("join measure: %w", err)
	}
	return m, nil
}

// ParseCompOp returns the configured operator; empty means the measure's
// default.
func (j Join) ParseCompOp() (measures.CompOp, error) {
	op, err := measures.ParseCompOp(j.CompOp)
	if err != nil {
		return measures.OpUnset, fmt.Errorf("join comp_op: %w", err)
	}
	return op, nil
}

// Spec returns the attribute selection for the two inputs.
func (v *Values) Spec() pairs.Spec {
	return pairs.Spec{
		LKeyAttr:    v.Left.KeyAttr,
		RKeyAttr:    v.Right.KeyAttr,
		LJoinAttr:   v.Left.JoinAttr,
		RJoinAttr:   v.Right.JoinAttr,
		LOutPrefix:  v.Left.OutPrefix,
		ROutPrefix:  v.Right.OutPrefix,
		LOutAttrs:   v.Left.OutAttrs,
		ROutAttrs:   v.Right.OutAttrs,
		OutSimScore: v.Join.OutSimScore,
	}
}

// CandsetKeys returns the key columns used to read a candidate set.
func (v *Values) CandsetKeys() pairs.CandsetKeys {
	spec := v.Spec()
	keys := pairs.CandsetKeys{
		CandLKey: v.Matcher.CandLKey,
		CandRKey: v.Matcher.CandRKey,
		LKey:     spec.LKeyAttr,
		RKey:     spec.RKeyAttr,
	}
	if keys.CandLKey == "" {
		keys.CandLKey = spec.LPrefix() + spec.LKeyAttr
	}
	if keys.CandRKey == "" {
		keys.CandRKey = spec.RPrefix() + spec.RKeyAttr
	}
	return keys
}
