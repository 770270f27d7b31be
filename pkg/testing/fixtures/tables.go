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

// Package fixtures provides sample tables and table generators for tests.
package fixtures

import (
	"strconv"
	"strings"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/tokenizers"
	"pgregory.net/rapid"
)

// Column names used by every fixture table.
const (
	KeyColumn  = "id"
	NameColumn = "name"
)

// Names builds an id/name table with keys "1", "2", ...
func Names(values ...string) *table.Table {
	vals := make([]table.Value, len(values))
	for i, v := range values {
		vals[i] = table.Str(v)
	}
	return Values(vals...)
}

// Values is Names for values that may be null.
func Values(values ...table.Value) *table.Table {
	t := table.New([]string{KeyColumn, NameColumn})
	for i, v := range values {
		t.Rows = append(t.Rows, table.Row{table.Str(strconv.Itoa(i + 1)), v})
	}
	return t
}

// Products is a small catalog of product titles with a price column.
func Products() *table.Table {
	return table.New([]string{KeyColumn, NameColumn, "price"},
		table.Strings("a1", "apple iphone 12 pro max", "999"),
		table.Strings("a2", "samsung galaxy s21 ultra", "1199"),
		table.Strings("a3", "google pixel 5", "699"),
		table.Row{table.Str("a4"), table.Null, table.Str("10")},
		table.Strings("a5", "apple ipad air", "599"),
		table.Strings("a6", "", "0"),
	)
}

// Listings is a set of marketplace listings that partly match Products.
func Listings() *table.Table {
	return table.New([]string{KeyColumn, NameColumn, "seller"},
		table.Strings("b1", "iphone 12 pro max apple", "shopA"),
		table.Strings("b2", "galaxy s21 ultra samsung 5g", "shopB"),
		table.Strings("b3", "pixel 5 google phone", "shopC"),
		table.Strings("b4", "nokia 3310", "shopD"),
		table.Row{table.Str("b5"), table.Null, table.Str("shopE")},
		table.Strings("b6", "apple ipad air 4th gen", "shopA"),
	)
}

var vocab = []string{"data", "science", "rocks", "cats", "and", "dogs", "big", "small", "red", "blue"}

// MixedValues draws up to six words from a small vocabulary separated by a
// space, a comma or both, so tokens repeat across rows and delimiter
// tokenizers see adjacent delimiters. Some values are a single blank.
func MixedValues() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		if rapid.IntRange(0, 15).Draw(t, "blank") == 0 {
			return " "
		}
		n := rapid.IntRange(0, 6).Draw(t, "words")
		var b strings.Builder
		for i := range n {
			if i > 0 {
				b.WriteString(rapid.SampledFrom([]string{" ", ",", ", "}).Draw(t, "sep"))
			}
			b.WriteString(rapid.SampledFrom(vocab).Draw(t, "word"))
		}
		return b.String()
	})
}

// SetTokenizer draws a tokenizer for set similarity tests: whitespace,
// q-grams with q in 1..3 with or without padding, or a comma and space
// delimiter tokenizer.
func SetTokenizer() *rapid.Generator[tokenizers.Tokenizer] {
	return rapid.Custom(func(t *rapid.T) tokenizers.Tokenizer {
		switch rapid.IntRange(0, 2).Draw(t, "tokenizerKind") {
		case 1:
			q := rapid.IntRange(1, 3).Draw(t, "q")
			return tokenizers.NewQgram(q, tokenizers.WithPadding(rapid.Bool().Draw(t, "padding")))
		case 2:
			tok, err := tokenizers.NewDelimiter(",", " ")
			if err != nil {
				t.Fatal(err)
			}
			return tok
		default:
			return tokenizers.NewWhitespace()
		}
	})
}

// ShortValues draws short strings over a four letter alphabet for edit
// distance tests.
func ShortValues() *rapid.Generator[string] {
	return rapid.StringOfN(rapid.RuneFrom([]rune("abcd")), 0, 8, -1)
}

// Table draws an id/name table whose keys start with keyPrefix. About one
// row in eight has a null name.
func Table(keyPrefix string, values *rapid.Generator[string]) *rapid.Generator[*table.Table] {
	return rapid.Custom(func(t *rapid.T) *table.Table {
		n := rapid.IntRange(0, 12).Draw(t, "rows")
		tbl := table.New([]string{KeyColumn, NameColumn})
		for i := range n {
			v := table.Str(values.Draw(t, "value"))
			if rapid.IntRange(0, 7).Draw(t, "null") == 0 {
				v = table.Null
			}
			tbl.Rows = append(tbl.Rows, table.Row{table.Str(keyPrefix + strconv.Itoa(i)), v})
		}
		return tbl
	})
}
