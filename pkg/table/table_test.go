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

package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return New([]string{"id", "name", "city"},
		Strings("1", "alice", "paris"),
		Row{Str("2"), Null, Str("lyon")},
		Strings("3", "carol", "nice"),
	)
}

func TestColumnIndex(t *testing.T) {
	t.Parallel()

	tbl := sampleTable()
	idx, err := tbl.ColumnIndex("city")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = tbl.ColumnIndex("zip")
	require.ErrorIs(t, err, ErrUnknownColumn)
	assert.True(t, tbl.HasColumn("name"))
	assert.False(t, tbl.HasColumn("zip"))
}

func TestColumn(t *testing.T) {
	t.Parallel()

	vals, err := sampleTable().Column("name")
	require.NoError(t, err)
	assert.Equal(t, []Value{Str("alice"), Null, Str("carol")}, vals)
}

func TestProject(t *testing.T) {
	t.Parallel()

	tbl := sampleTable()
	p, err := tbl.Project("city", "id")
	require.NoError(t, err)

	assert.Equal(t, []string{"city", "id"}, p.Columns)
	assert.Equal(t, Strings("paris", "1"), p.Rows[0])

	p.Rows[0][0] = Str("changed")
	assert.Equal(t, "paris", tbl.Rows[0][2].V, "projection must not alias the source")

	_, err = tbl.Project("id", "zip")
	require.ErrorIs(t, err, ErrUnknownColumn)
}

func TestSliceAndSplitNull(t *testing.T) {
	t.Parallel()

	tbl := sampleTable()
	s := tbl.Slice(1, 3)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "3", s.Rows[1][0].V)

	present, missing := tbl.SplitNull(1)
	assert.Equal(t, 2, present.Len())
	assert.Equal(t, 1, missing.Len())
	assert.Equal(t, "2", missing.Rows[0][0].V)
}

func TestValue(t *testing.T) {
	t.Parallel()

	assert.True(t, Null.IsNull())
	assert.False(t, Str("").IsNull())
	assert.Equal(t, "x", Str("x").String())
	assert.Empty(t, Null.String())
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{input: "Ｃａｆé  Noir", expected: "cafe noir"},
		{input: "  Pokémon\tRed ", expected: "pokemon red"},
		{input: "ÀÉÎÕÜ", expected: "aeiou"},
		{input: "", expected: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Normalize(tt.input), tt.input)
	}
}

func TestNormalizeColumnKeepsNulls(t *testing.T) {
	t.Parallel()

	tbl := New([]string{"id", "name"},
		Strings("1", "ÉCOLE"),
		Row{Str("2"), Null},
	)
	out, err := tbl.NormalizeColumn("name")
	require.NoError(t, err)

	assert.Equal(t, "ecole", out.Rows[0][1].V)
	assert.True(t, out.Rows[1][1].IsNull())
	assert.Equal(t, "ÉCOLE", tbl.Rows[0][1].V)

	_, err = tbl.NormalizeColumn("zip")
	require.ErrorIs(t, err, ErrUnknownColumn)
}

func TestCSVRoundTrip(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	tbl := sampleTable()

	require.NoError(t, WriteCSV(fs, "/data/people.csv", tbl))

	raw, err := afero.ReadFile(fs, "/data/people.csv")
	require.NoError(t, err)
	assert.Equal(t, "id,name,city\n1,alice,paris\n2,,lyon\n3,carol,nice\n", string(raw))

	got, err := ReadCSV(fs, "/data/people.csv")
	require.NoError(t, err)
	assert.Equal(t, tbl, got)
}

func TestDecodeCSVErrors(t *testing.T) {
	t.Parallel()

	_, err := DecodeCSV(strings.NewReader(""))
	require.ErrorIs(t, err, ErrEmptyCSV)

	_, err = DecodeCSV(strings.NewReader("a,b\n1,2,3\n"))
	require.Error(t, err)

	_, err = ReadCSV(afero.NewMemMapFs(), "/missing.csv")
	require.Error(t, err)
}

func TestEncodeCSVQuotes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tbl := New([]string{"id", "name"}, Strings("1", "smith, john"))
	require.NoError(t, EncodeCSV(&buf, tbl))
	assert.Equal(t, "id,name\n1,\"smith, john\"\n", buf.String())
}

func TestEncodeCSVRowWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		row  Row
	}{
		{name: "wider than header", row: Strings("1", "alice", "extra")},
		{name: "narrower than header", row: Strings("1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			tbl := New([]string{"id", "name"}, Strings("0", "bob"), tt.row)
			err := EncodeCSV(&buf, tbl)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "row 2 has")
		})
	}

	err := WriteCSV(afero.NewMemMapFs(), "/out.csv", New([]string{"id"}, Strings("1", "2")))
	require.Error(t, err)
}
