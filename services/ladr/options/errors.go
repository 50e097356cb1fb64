// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package options

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for option registry operations.
var (
	// ErrUnknownOption indicates an ID that the registry never issued.
	ErrUnknownOption = errors.New("unknown option")

	// ErrDuplicateOption indicates a Define call for a name already in use
	// by an option of the same kind.
	ErrDuplicateOption = errors.New("duplicate option")

	// ErrOutOfRange indicates an integer parameter value outside its range.
	ErrOutOfRange = errors.New("parameter value out of range")

	// ErrBadValue indicates a string parameter value that is not one of
	// the allowed values.
	ErrBadValue = errors.New("bad parameter value")
)

// RangeError reports a rejected integer parameter assignment.
type RangeError struct {
	Name  string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %d not in [%d, %d]", e.Name, e.Value, e.Min, e.Max)
}

// Unwrap returns ErrOutOfRange.
func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// ValueError reports a rejected string parameter assignment.
type ValueError struct {
	Name    string
	Value   string
	Allowed []string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %q not one of [%s]", e.Name, e.Value, strings.Join(e.Allowed, ", "))
}

// Unwrap returns ErrBadValue.
func (e *ValueError) Unwrap() error { return ErrBadValue }
