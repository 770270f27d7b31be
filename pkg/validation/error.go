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
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error wraps validation errors with formatted messages.
type Error struct {
	Fields []FieldError
}

// FieldError represents a single field validation error.
type FieldError struct {
	Value   any
	Field   string
	Tag     string
	Message string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, fe := range e.Fields {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// HasField reports whether any failure concerns the named field.
func (e *Error) HasField(name string) bool {
	for _, fe := range e.Fields {
		if fe.Field == name {
			return true
		}
	}
	return false
}

// NewError creates an Error from validator.ValidationErrors.
func NewError(errs validator.ValidationErrors) *Error {
	ve := &Error{
		Fields: make([]FieldError, len(errs)),
	}
	for i, fe := range errs {
		ve.Fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fe.Value(),
			Message: formatValidationError(fe),
		}
	}
	return ve
}

// formatValidationError creates a human-readable error message.
func formatValidationError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "measure":
		return fmt.Sprintf("%s %v is not a supported measure", field, fe.Value())
	case "compop":
		return fmt.Sprintf("%s %v is not a comparison operator", field, fe.Value())
	case "compop_measure":
		return fmt.Sprintf("%s %v is not allowed for %s", field, fe.Value(), fe.Param())
	case "ratio":
		return fmt.Sprintf("%s for %s must be in (0, 1], got %v", field, fe.Param(), fe.Value())
	case "posint":
		return fmt.Sprintf("%s for %s must be a positive integer, got %v", field, fe.Param(), fe.Value())
	case "nonnegint":
		return fmt.Sprintf("%s for %s must be a non-negative integer, got %v", field, fe.Param(), fe.Value())
	case "qgram":
		return fmt.Sprintf("edit distance requires a qgram %s, got %v", field, fe.Value())
	case "number":
		return field + " must be a number"
	case "ne":
		return fmt.Sprintf("%s must not be %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
