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
	"errors"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var ErrEmptyCSV = errors.New("csv has no header row")

// ReadCSV loads a table from a CSV file with a header row. Empty cells are
// read as null.
func ReadCSV(fs afero.Fs, path string) (*Table, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("path", path).Msg("failed to close csv file")
		}
	}()

	t, err := DecodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("rows", t.Len()).Strs("columns", t.Columns).Msg("loaded table")
	return t, nil
}

// DecodeCSV reads a table from r.
func DecodeCSV(r io.Reader) (*Table, error) {
	reader := gocsv.DefaultCSVReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyCSV
	}

	t := &Table{Columns: records[0], Rows: make([]Row, 0, len(records)-1)}
	for i, rec := range records[1:] {
		if len(rec) != len(t.Columns) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(rec), len(t.Columns))
		}
		row := make(Row, len(rec))
		for j, cell := range rec {
			if cell != "" {
				row[j] = Str(cell)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteCSV stores a table as CSV, creating or truncating path. Null cells
// are written empty.
func WriteCSV(fs afero.Fs, path string, t *Table) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	if err := EncodeCSV(f, t); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close csv file: %w", err)
	}
	return nil
}

// EncodeCSV writes a header row followed by every row of t.
func EncodeCSV(w io.Writer, t *Table) error {
	writer := gocsv.DefaultCSVWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	rec := make([]string, len(t.Columns))
	for n, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d fields, header has %d", n+1, len(row), len(t.Columns))
		}
		for i, v := range row {
			rec[i] = v.String()
		}
		if err := writer.Write(rec); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
