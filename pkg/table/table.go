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

// Package table is the minimal row/column model the join engine consumes:
// named columns, rows of nullable string values, and CSV I/O.
package table

import (
	"errors"
	"fmt"
)

var ErrUnknownColumn = errors.New("unknown column")

// Value is a nullable string cell.
type Value struct {
	V     string
	Valid bool
}

// Null is the missing value.
var Null = Value{}

// Str returns a non-null value.
func Str(s string) Value {
	return Value{V: s, Valid: true}
}

func (v Value) IsNull() bool {
	return !v.Valid
}

// String returns the cell text, or "" for null.
func (v Value) String() string {
	return v.V
}

// Row is one tuple of cells, aligned with Table.Columns.
type Row []Value

// Strings builds a row of non-null values.
func Strings(vals ...string) Row {
	row := make(Row, len(vals))
	for i, v := range vals {
		row[i] = Str(v)
	}
	return row
}

// Table is an ordered collection of rows. Rows are shared between tables
// derived with Slice, Project keeps its own cells; neither mutates the source.
type Table struct {
	Columns []string
	Rows    []Row
}

func New(columns []string, rows ...Row) *Table {
	return &Table{Columns: columns, Rows: rows}
}

func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of a named column.
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, c := range t.Columns {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, err := t.ColumnIndex(name)
	return err == nil
}

// Column returns every value of a named column.
func (t *Table) Column(name string) ([]Value, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	vals := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		vals[i] = row[idx]
	}
	return vals, nil
}

// Project returns a table with only the named columns, in the given order.
func (t *Table) Project(columns ...string) (*Table, error) {
	idxs := make([]int, len(columns))
	for i, name := range columns {
		idx, err := t.ColumnIndex(name)
		if err != nil {
			return nil, err
		}
		idxs[i] = idx
	}

	out := &Table{Columns: append([]string(nil), columns...), Rows: make([]Row, len(t.Rows))}
	for i, row := range t.Rows {
		projected := make(Row, len(idxs))
		for j, idx := range idxs {
			projected[j] = row[idx]
		}
		out.Rows[i] = projected
	}
	return out, nil
}

// Slice returns rows [start, end) as a new table sharing the row storage.
func (t *Table) Slice(start, end int) *Table {
	return &Table{Columns: t.Columns, Rows: t.Rows[start:end]}
}

// SplitNull separates rows whose cell at col is null from the others,
// preserving order within each part.
func (t *Table) SplitNull(col int) (present, missing *Table) {
	present = &Table{Columns: t.Columns}
	missing = &Table{Columns: t.Columns}
	for _, row := range t.Rows {
		if row[col].IsNull() {
			missing.Rows = append(missing.Rows, row)
		} else {
			present.Rows = append(present.Rows, row)
		}
	}
	return present, missing
}

// MapColumn returns a copy of the table with fn applied to every non-null
// cell of col.
func (t *Table) MapColumn(col int, fn func(string) string) *Table {
	out := &Table{Columns: t.Columns, Rows: make([]Row, len(t.Rows))}
	for i, row := range t.Rows {
		cp := make(Row, len(row))
		copy(cp, row)
		if cp[col].Valid {
			cp[col].V = fn(cp[col].V)
		}
		out.Rows[i] = cp
	}
	return out
}
