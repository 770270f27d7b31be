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

package validation

import (
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/pairs"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
)

var (
	ErrDuplicateKey = errors.New("duplicate key value")
	ErrNullKey      = errors.New("null key value")
)

// ValidateTables checks that every attribute named by spec exists and that
// both key columns are unique and non-null.
func ValidateTables(left, right *table.Table, spec pairs.Spec) error {
	res, err := spec.Resolve(left, right)
	if err != nil {
		return fmt.Errorf("invalid join attributes: %w", err)
	}
	if err := ValidateKey(left, res.LKey); err != nil {
		return fmt.Errorf("left table key %q: %w", spec.LKeyAttr, err)
	}
	if err := ValidateKey(right, res.RKey); err != nil {
		return fmt.Errorf("right table key %q: %w", spec.RKeyAttr, err)
	}
	return nil
}

// ValidateKey checks that column col of t has unique non-null values.
func ValidateKey(t *table.Table, col int) error {
	seen := make(map[string]int, t.Len())
	for i, row := range t.Rows {
		v := row[col]
		if v.IsNull() {
			return fmt.Errorf("%w in row %d", ErrNullKey, i)
		}
		if prev, ok := seen[v.V]; ok {
			return fmt.Errorf("%w %q in rows %d and %d", ErrDuplicateKey, v.V, prev, i)
		}
		seen[v.V] = i
	}
	return nil
}
