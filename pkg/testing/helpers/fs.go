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

// Package helpers provides filesystem helpers for tests that stage input
// tables and job files on an in-memory afero filesystem.
package helpers

import (
	"fmt"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
	"github.com/spf13/afero"
)

// FSHelper provides utilities for filesystem mocking in tests
type FSHelper struct {
	Fs afero.Fs
}

// NewMemoryFS creates a new in-memory filesystem for testing
func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// WriteTable stores t as CSV at path, creating parent directories.
func (h *FSHelper) WriteTable(path string, t *table.Table) error {
	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for table: %w", err)
	}
	if err := table.WriteCSV(h.Fs, path, t); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

// ReadTable loads the CSV at path.
func (h *FSHelper) ReadTable(path string) (*table.Table, error) {
	t, err := table.ReadCSV(h.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	return t, nil
}

// WriteJob stores a job config file with the given content.
func (h *FSHelper) WriteJob(path, content string) error {
	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for job file: %w", err)
	}
	if err := afero.WriteFile(h.Fs, path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write job file: %w", err)
	}
	return nil
}

// ReadFile reads file content from the filesystem
func (h *FSHelper) ReadFile(path string) (string, error) {
	data, err := afero.ReadFile(h.Fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return string(data), nil
}

// FileExists checks if a file exists in the filesystem
func (h *FSHelper) FileExists(path string) bool {
	exists, err := afero.Exists(h.Fs, path)
	return err == nil && exists
}
