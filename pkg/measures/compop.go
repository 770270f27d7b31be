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
	"fmt"
	"strings"
)

// CompOp is the comparison applied between a computed score and the join
// threshold. The zero value means "use the measure's default".
type CompOp int

const (
	OpUnset CompOp = iota
	OpGE
	OpGT
	OpLE
	OpLT
	OpEQ
	OpNE
)

var compOpSymbols = map[CompOp]string{
	OpGE: ">=",
	OpGT: ">",
	OpLE: "<=",
	OpLT: "<",
	OpEQ: "=",
	OpNE: "!=",
}

func (op CompOp) String() string {
	if sym, ok := compOpSymbols[op]; ok {
		return sym
	}
	return ""
}

// ParseCompOp accepts the operator symbols; "==" is an alias for "=".
// An empty string yields OpUnset.
func ParseCompOp(s string) (CompOp, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return OpUnset, nil
	case "==":
		return OpEQ, nil
	}
	for op, sym := range compOpSymbols {
		if sym == s {
			return op, nil
		}
	}
	return OpUnset, fmt.Errorf("%w: %q", ErrUnknownCompOp, s)
}

// Or returns op, or def when op is unset.
func (op CompOp) Or(def CompOp) CompOp {
	if op == OpUnset {
		return def
	}
	return op
}

// DefaultCompOp is ">=" for similarity measures and "<=" for distances.
func DefaultCompOp(m Measure) CompOp {
	if m.IsDistance() {
		return OpLE
	}
	return OpGE
}

// Compare evaluates "score op threshold".
func (op CompOp) Compare(score, threshold float64) bool {
	switch op {
	case OpGE:
		return score >= threshold
	case OpGT:
		return score > threshold
	case OpLE:
		return score <= threshold
	case OpLT:
		return score < threshold
	case OpEQ:
		return score == threshold
	case OpNE:
		return score != threshold
	default:
		return false
	}
}

// SimilarityOps are the operators a similarity join accepts.
var SimilarityOps = []CompOp{OpGE, OpGT, OpEQ}

// DistanceOps are the operators an edit distance join accepts.
var DistanceOps = []CompOp{OpLE, OpLT, OpEQ}

// AllOps are accepted when scoring an existing candidate set.
var AllOps = []CompOp{OpGE, OpGT, OpLE, OpLT, OpEQ, OpNE}
