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
	"context"
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/parallel"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
)

var ErrUnknownKey = errors.New("candidate key not found")

// CandsetKeys ties a candidate set to its base tables: CandLKey and CandRKey
// are candidate set columns holding values of the LKey and RKey columns.
type CandsetKeys struct {
	CandLKey string `toml:"cand_l_key" validate:"required"`
	CandRKey string `toml:"cand_r_key" validate:"required"`
	LKey     string `toml:"l_key" validate:"required"`
	RKey     string `toml:"r_key" validate:"required"`
}

// CandMatch is a candidate set row kept by a scan.
type CandMatch struct {
	L     table.Row
	R     table.Row
	Index int
	Score float64
}

// CandFunc decides whether a candidate pair is kept and scores it.
type CandFunc func(l, r table.Row) (score float64, keep bool)

type keyLookup map[string]table.Row

func buildLookup(t *table.Table, keyAttr string) (keyLookup, error) {
	idx, err := t.ColumnIndex(keyAttr)
	if err != nil {
		return nil, err
	}
	lookup := make(keyLookup, t.Len())
	for _, row := range t.Rows {
		lookup[row[idx].V] = row
	}
	return lookup, nil
}

// ScanCandset resolves every candidate set row to its left and right rows
// and applies fn, running over nJobs partitions of the candidate set. Kept
// rows are returned in candidate set order. A key absent from its base
// table fails the scan with ErrUnknownKey.
func ScanCandset(
	ctx context.Context,
	candset, left, right *table.Table,
	keys CandsetKeys,
	nJobs int,
	fn CandFunc,
) ([]CandMatch, error) {
	cl, err := candset.ColumnIndex(keys.CandLKey)
	if err != nil {
		return nil, fmt.Errorf("candidate set left key: %w", err)
	}
	cr, err := candset.ColumnIndex(keys.CandRKey)
	if err != nil {
		return nil, fmt.Errorf("candidate set right key: %w", err)
	}
	lookupL, err := buildLookup(left, keys.LKey)
	if err != nil {
		return nil, fmt.Errorf("left key attribute: %w", err)
	}
	lookupR, err := buildLookup(right, keys.RKey)
	if err != nil {
		return nil, fmt.Errorf("right key attribute: %w", err)
	}

	matches, err := parallel.Run(ctx, candset.Len(), nJobs,
		func(ctx context.Context, _ int, r parallel.Range) ([]CandMatch, error) {
			var out []CandMatch
			for i := r.Start; i < r.End; i++ {
				if err := ctx.Err(); err != nil {
					return nil, fmt.Errorf("candidate scan cancelled: %w", err)
				}
				crow := candset.Rows[i]
				lrow, ok := lookupL[crow[cl].V]
				if !ok || crow[cl].IsNull() {
					return nil, fmt.Errorf("%w: left key %q in candidate row %d", ErrUnknownKey, crow[cl].V, i)
				}
				rrow, ok := lookupR[crow[cr].V]
				if !ok || crow[cr].IsNull() {
					return nil, fmt.Errorf("%w: right key %q in candidate row %d", ErrUnknownKey, crow[cr].V, i)
				}
				if score, keep := fn(lrow, rrow); keep {
					out = append(out, CandMatch{Index: i, L: lrow, R: rrow, Score: score})
				}
			}
			return out, nil
		})
	if err != nil {
		return nil, fmt.Errorf("candidate set scan failed: %w", err)
	}
	return matches, nil
}
