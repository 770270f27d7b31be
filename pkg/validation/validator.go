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

// Package validation checks join requests before any join work starts:
// parameter ranges and combinations through go-playground/validator with
// custom tags for join types, and table preconditions such as unique,
// non-null keys.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/measures"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/tokenizers"
	"github.com/go-playground/validator/v10"
)

// Validator wraps a configured validator instance.
type Validator struct {
	validate *validator.Validate
}

// Params describes a similarity join or filter.
type Params struct {
	Tokenizer tokenizers.Tokenizer `label:"tokenizer" validate:"required"`
	Measure   measures.Measure     `label:"measure" validate:"measure"`
	CompOp    measures.CompOp      `label:"comp_op" validate:"compop"`
	Threshold float64              `label:"threshold"`
	NJobs     int                  `label:"n_jobs" validate:"ne=0"`
}

// MatcherParams describes an ApplyMatcher run. Scorer holds the string or
// row scorer in use. Any threshold is accepted since the scorer's range is
// unknown.
type MatcherParams struct {
	Scorer    any             `label:"scorer" validate:"required"`
	CompOp    measures.CompOp `label:"comp_op" validate:"compop"`
	Threshold float64         `label:"threshold"`
	NJobs     int             `label:"n_jobs" validate:"ne=0"`
}

// NewValidator creates a Validator with the join specific tags and struct
// rules registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("label"); name != "" {
			return name
		}
		return fld.Name
	})

	_ = v.RegisterValidation("measure", validateMeasure)
	_ = v.RegisterValidation("compop", validateCompOp)
	v.RegisterStructValidation(validateParams, Params{})
	v.RegisterStructValidation(validateMatcherParams, MatcherParams{})

	return &Validator{validate: v}
}

// DefaultValidator is the shared instance used by the package functions.
var DefaultValidator = NewValidator()

// Validate validates a struct and returns an *Error on failure.
func (v *Validator) Validate(params any) error {
	if err := v.validate.Struct(params); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewError(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// ValidateParams validates join or filter parameters.
func ValidateParams(p Params) error {
	return DefaultValidator.Validate(&p)
}

// ValidateMatcher validates ApplyMatcher parameters.
func ValidateMatcher(p MatcherParams) error {
	return DefaultValidator.Validate(&p)
}

// ValidateNJobs rejects a zero job count.
func ValidateNJobs(nJobs int) error {
	return DefaultValidator.Validate(&struct {
		NJobs int `label:"n_jobs" validate:"ne=0"`
	}{NJobs: nJobs})
}

func validateMeasure(fl validator.FieldLevel) bool {
	m, ok := fl.Field().Interface().(measures.Measure)
	return ok && m.Valid()
}

// validateCompOp accepts any defined operator or the unset value.
func validateCompOp(fl validator.FieldLevel) bool {
	op, ok := fl.Field().Interface().(measures.CompOp)
	return ok && (op == measures.OpUnset || slices.Contains(measures.AllOps, op))
}

func isInteger(f float64) bool {
	return f == math.Trunc(f) && !math.IsInf(f, 0)
}

// validateParams checks the rules that span several fields: threshold range
// per measure, the operators each measure accepts, and the q-gram tokenizer
// edit distance needs.
func validateParams(sl validator.StructLevel) {
	p, ok := sl.Current().Interface().(Params)
	if !ok || !p.Measure.Valid() {
		return
	}

	switch {
	case p.Measure.IsRatio():
		if !(p.Threshold > 0 && p.Threshold <= 1) {
			sl.ReportError(p.Threshold, "threshold", "Threshold", "ratio", p.Measure.String())
		}
	case p.Measure == measures.Overlap:
		if !isInteger(p.Threshold) || p.Threshold <= 0 {
			sl.ReportError(p.Threshold, "threshold", "Threshold", "posint", p.Measure.String())
		}
	case p.Measure == measures.EditDistance:
		if !isInteger(p.Threshold) || p.Threshold < 0 {
			sl.ReportError(p.Threshold, "threshold", "Threshold", "nonnegint", p.Measure.String())
		}
	}

	allowed := measures.SimilarityOps
	if p.Measure.IsDistance() {
		allowed = measures.DistanceOps
	}
	if p.CompOp != measures.OpUnset && !slices.Contains(allowed, p.CompOp) {
		sl.ReportError(p.CompOp, "comp_op", "CompOp", "compop_measure", p.Measure.String())
	}

	if p.Measure == measures.EditDistance && p.Tokenizer != nil && p.Tokenizer.Kind() != tokenizers.KindQgram {
		sl.ReportError(p.Tokenizer.String(), "tokenizer", "Tokenizer", "qgram", "")
	}
}

func validateMatcherParams(sl validator.StructLevel) {
	p, ok := sl.Current().Interface().(MatcherParams)
	if !ok {
		return
	}
	if math.IsNaN(p.Threshold) {
		sl.ReportError(p.Threshold, "threshold", "Threshold", "number", "")
	}
}
