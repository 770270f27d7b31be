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

// Package pairs assembles join output: it resolves which columns a join
// reads and emits, runs a pair generator over row partitions of the probe
// table, appends missing-value pairs and numbers the result.
package pairs

import (
	"fmt"
	"slices"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
)

const (
	DefaultLOutPrefix = "l_"
	DefaultROutPrefix = "r_"
	IDColumn          = "_id"
	ScoreColumn       = "_sim_score"
)

// Spec names the key, join and output attributes of both tables. Empty
// prefixes fall back to DefaultLOutPrefix and DefaultROutPrefix.
type Spec struct {
	LKeyAttr    string   `toml:"l_key_attr" validate:"required"`
	RKeyAttr    string   `toml:"r_key_attr" validate:"required"`
	LJoinAttr   string   `toml:"l_join_attr" validate:"required"`
	RJoinAttr   string   `toml:"r_join_attr" validate:"required"`
	LOutPrefix  string   `toml:"l_out_prefix"`
	ROutPrefix  string   `toml:"r_out_prefix"`
	LOutAttrs   []string `toml:"l_out_attrs"`
	ROutAttrs   []string `toml:"r_out_attrs"`
	OutSimScore bool     `toml:"out_sim_score"`
}

// Resolved holds column positions for one pair of tables.
type Resolved struct {
	Columns []string
	LOut    []int
	ROut    []int
	LKey    int
	RKey    int
	LJoin   int
	RJoin   int
}

func (s Spec) LPrefix() string {
	if s.LOutPrefix == "" {
		return DefaultLOutPrefix
	}
	return s.LOutPrefix
}

func (s Spec) RPrefix() string {
	if s.ROutPrefix == "" {
		return DefaultROutPrefix
	}
	return s.ROutPrefix
}

// OutAttrs returns the output attribute lists with the key attributes and
// repeated names removed.
func (s Spec) OutAttrs() (lOut, rOut []string) {
	return dedupeAttrs(s.LOutAttrs, s.LKeyAttr), dedupeAttrs(s.ROutAttrs, s.RKeyAttr)
}

func dedupeAttrs(attrs []string, key string) []string {
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if a == key || slices.Contains(out, a) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Resolve looks up every attribute of the spec in l and r.
func (s Spec) Resolve(l, r *table.Table) (*Resolved, error) {
	var (
		res Resolved
		err error
	)
	if res.LKey, err = l.ColumnIndex(s.LKeyAttr); err != nil {
		return nil, fmt.Errorf("left key attribute: %w", err)
	}
	if res.RKey, err = r.ColumnIndex(s.RKeyAttr); err != nil {
		return nil, fmt.Errorf("right key attribute: %w", err)
	}
	if res.LJoin, err = l.ColumnIndex(s.LJoinAttr); err != nil {
		return nil, fmt.Errorf("left join attribute: %w", err)
	}
	if res.RJoin, err = r.ColumnIndex(s.RJoinAttr); err != nil {
		return nil, fmt.Errorf("right join attribute: %w", err)
	}

	lOut, rOut := s.OutAttrs()
	res.Columns = []string{IDColumn, s.LPrefix() + s.LKeyAttr, s.RPrefix() + s.RKeyAttr}
	for _, a := range lOut {
		idx, err := l.ColumnIndex(a)
		if err != nil {
			return nil, fmt.Errorf("left output attribute: %w", err)
		}
		res.LOut = append(res.LOut, idx)
		res.Columns = append(res.Columns, s.LPrefix()+a)
	}
	for _, a := range rOut {
		idx, err := r.ColumnIndex(a)
		if err != nil {
			return nil, fmt.Errorf("right output attribute: %w", err)
		}
		res.ROut = append(res.ROut, idx)
		res.Columns = append(res.Columns, s.RPrefix()+a)
	}
	if s.OutSimScore {
		res.Columns = append(res.Columns, ScoreColumn)
	}
	return &res, nil
}

// pick copies the cells at idxs out of row.
func pick(row table.Row, idxs []int) []table.Value {
	if len(idxs) == 0 {
		return nil
	}
	out := make([]table.Value, len(idxs))
	for i, idx := range idxs {
		out[i] = row[idx]
	}
	return out
}
