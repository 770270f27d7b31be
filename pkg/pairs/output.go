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

package pairs

import (
	"math"
	"strconv"
	"time"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
	"github.com/google/uuid"
)

// Pair is one output row. Score is NaN for pairs with a missing join value.
type Pair struct {
	LKey  table.Value
	RKey  table.Value
	LOut  []table.Value
	ROut  []table.Value
	ID    int
	Score float64
}

// Output is the result of one join or matcher run.
type Output struct {
	Columns   []string
	Pairs     []Pair
	Duration  time.Duration
	RunID     uuid.UUID
	WithScore bool
}

func (o *Output) Len() int {
	return len(o.Pairs)
}

// FormatScore renders a score for tabular output; NaN becomes null.
func FormatScore(score float64) table.Value {
	if math.IsNaN(score) {
		return table.Null
	}
	return table.Str(strconv.FormatFloat(score, 'f', -1, 64))
}

// Table renders the output as rows of
// (_id, l_key, r_key, l outs..., r outs..., [_sim_score]).
func (o *Output) Table() *table.Table {
	t := &table.Table{Columns: o.Columns, Rows: make([]table.Row, 0, len(o.Pairs))}
	for _, p := range o.Pairs {
		row := make(table.Row, 0, len(o.Columns))
		row = append(row, table.Str(strconv.Itoa(p.ID)), p.LKey, p.RKey)
		row = append(row, p.LOut...)
		row = append(row, p.ROut...)
		if o.WithScore {
			row = append(row, FormatScore(p.Score))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// KeyPairs returns the (l_key, r_key) tuples of the output, mainly for
// comparing results independent of order.
func (o *Output) KeyPairs() [][2]string {
	out := make([][2]string, len(o.Pairs))
	for i, p := range o.Pairs {
		out[i] = [2]string{p.LKey.V, p.RKey.V}
	}
	return out
}
