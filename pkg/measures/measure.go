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

// Package measures defines the similarity measures and comparison operators
// supported by the join engine, the closed-form bounds each measure admits
// for filtering, and the exact scorers used for verification.
package measures

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownMeasure = errors.New("unknown similarity measure")
	ErrUnknownCompOp  = errors.New("unknown comparison operator")
)

// Measure is a similarity or distance measure.
type Measure int

const (
	Cosine Measure = iota + 1
	Dice
	EditDistance
	Jaccard
	Overlap
	OverlapCoefficient
)

var measureNames = map[Measure]string{
	Cosine:             "cosine",
	Dice:               "dice",
	EditDistance:       "edit_distance",
	Jaccard:            "jaccard",
	Overlap:            "overlap",
	OverlapCoefficient: "overlap_coefficient",
}

func (m Measure) String() string {
	if name, ok := measureNames[m]; ok {
		return name
	}
	return fmt.Sprintf("measure(%d)", int(m))
}

// Valid reports whether m is one of the defined measures.
func (m Measure) Valid() bool {
	_, ok := measureNames[m]
	return ok
}

// IsDistance reports whether lower scores mean more similar strings.
func (m Measure) IsDistance() bool {
	return m == EditDistance
}

// IsRatio reports whether the measure scores in (0, 1] and accepts a
// fractional threshold.
func (m Measure) IsRatio() bool {
	switch m {
	case Cosine, Dice, Jaccard, OverlapCoefficient:
		return true
	default:
		return false
	}
}

// ParseMeasure accepts measure names case-insensitively. Hyphens and spaces
// are treated as underscores, so "edit-distance" and "EDIT_DISTANCE" match.
func ParseMeasure(s string) (Measure, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	switch norm {
	case "ed", "levenshtein":
		return EditDistance, nil
	case "overlap_coeff":
		return OverlapCoefficient, nil
	}
	for m, name := range measureNames {
		if name == norm {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMeasure, s)
}

// MeasureNames lists the canonical measure names in a stable order.
func MeasureNames() []string {
	return []string{
		Cosine.String(),
		Dice.String(),
		EditDistance.String(),
		Jaccard.String(),
		Overlap.String(),
		OverlapCoefficient.String(),
	}
}
