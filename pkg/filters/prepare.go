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
	"fmt"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/pairs"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/tokenizers"
)

// ctxCheckInterval is how many probe rows are processed between context
// checks.
const ctxCheckInterval = 256

// Prepared is a build table and one probe partition tokenized once and
// mapped through a token ordering built from both.
type Prepared struct {
	// Build and Probe hold each row's ordered tokens.
	Build [][]int
	Probe [][]int
	// BuildBlank and ProbeBlank mark rows whose join value is the empty
	// string. Blank rows never produce candidates.
	BuildBlank []bool
	ProbeBlank []bool
	// BuildRaw and ProbeRaw are the join values themselves.
	BuildRaw []string
	ProbeRaw []string

	emptyBuild []int
}

// Prepare tokenizes the join columns of both tables with tok.
func Prepare(tok tokenizers.Tokenizer, build, probe *table.Table, lCol, rCol int) *Prepared {
	p := &Prepared{}
	ob := tokenizers.NewOrderingBuilder()

	tokenizeColumn := func(t *table.Table, col int) ([][]string, []bool, []string) {
		toks := make([][]string, t.Len())
		blank := make([]bool, t.Len())
		raw := make([]string, t.Len())
		for i, row := range t.Rows {
			raw[i] = row[col].V
			if row[col].V == "" {
				blank[i] = true
				continue
			}
			toks[i] = tok.Tokenize(row[col].V)
			ob.Add(toks[i])
		}
		return toks, blank, raw
	}

	bt, bblank, braw := tokenizeColumn(build, lCol)
	pt, pblank, praw := tokenizeColumn(probe, rCol)
	ord := ob.Build()

	p.Build = make([][]int, len(bt))
	for i, toks := range bt {
		p.Build[i] = ord.Order(toks)
		if !bblank[i] && len(toks) == 0 {
			p.emptyBuild = append(p.emptyBuild, i)
		}
	}
	p.Probe = make([][]int, len(pt))
	for i, toks := range pt {
		p.Probe[i] = ord.Order(toks)
	}
	p.BuildBlank, p.ProbeBlank = bblank, pblank
	p.BuildRaw, p.ProbeRaw = braw, praw
	return p
}

// EmptyBuildRows returns the non-blank build rows without any token.
func (p *Prepared) EmptyBuildRows() []int {
	return p.emptyBuild
}

// EmptyMatches pairs probe row r with every empty build row at score.
func (p *Prepared) EmptyMatches(r int, score float64) []pairs.Match {
	out := make([]pairs.Match, len(p.emptyBuild))
	for i, l := range p.emptyBuild {
		out[i] = pairs.Match{L: l, R: r, Score: score}
	}
	return out
}

// CheckContext returns ctx.Err() every ctxCheckInterval rows.
func CheckContext(ctx context.Context, row int) error {
	if row%ctxCheckInterval != 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("join cancelled at probe row %d: %w", row, err)
	}
	return nil
}
