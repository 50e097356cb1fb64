// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package term

import (
	"errors"
	"fmt"
)

// Sentinel errors for term construction.
var (
	// ErrVarOutOfRange indicates a variable number outside [0, MaxVar].
	ErrVarOutOfRange = errors.New("variable number out of range")

	// ErrArityMismatch indicates an argument count that differs from the
	// symbol's arity.
	ErrArityMismatch = errors.New("arity mismatch")

	// ErrTooManyVariables indicates a term needing more than MaxVar+1
	// distinct variables.
	ErrTooManyVariables = errors.New("too many variables")

	// ErrNotSymbol indicates a symbol operation applied to a variable.
	ErrNotSymbol = errors.New("term is a variable")

	// ErrNilTerm indicates a nil term where a term is required.
	ErrNilTerm = errors.New("nil term")
)

// ArityError describes a construction with the wrong number of arguments.
type ArityError struct {
	// Symbol is the "name/arity" of the symbol being applied.
	Symbol string

	// Got is the number of arguments supplied.
	Got int
}

// Error implements the error interface.
func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: %s applied to %d arguments", ErrArityMismatch, e.Symbol, e.Got)
}

// Unwrap returns ErrArityMismatch for errors.Is.
func (e *ArityError) Unwrap() error {
	return ErrArityMismatch
}

// IsArityMismatch reports whether err is an arity mismatch.
func IsArityMismatch(err error) bool {
	return errors.Is(err, ErrArityMismatch)
}
