// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package symbols

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for symbol table operations.
//
// These errors can be checked using errors.Is() to determine the
// category of failure without inspecting error messages.
var (
	// ErrInvalidName indicates an empty symbol name.
	ErrInvalidName = errors.New("invalid symbol name")

	// ErrArityTooLarge indicates an arity above MaxArity.
	ErrArityTooLarge = errors.New("arity too large")

	// ErrUnknownSymbol indicates a symbol ID that was never assigned.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrSymbolConflict indicates incompatible declarations for a name.
	//
	// Common causes:
	//   - A symbol used both as a relation and as a function
	//   - A name interned with more than one arity where the caller
	//     expects a single arity per name
	ErrSymbolConflict = errors.New("symbol conflict")

	// ErrBadPrecedence indicates a precedence outside
	// [MinPrecedence, MaxPrecedence].
	ErrBadPrecedence = errors.New("precedence out of range")

	// ErrUnknownRole indicates a redeclare target that is not an
	// operator role.
	ErrUnknownRole = errors.New("unknown operator role")

	// ErrSymbolTableFull indicates MaxSymbols has been reached.
	ErrSymbolTableFull = errors.New("symbol table full")
)

// ConflictError describes a SymbolConflict in detail.
//
// Example:
//
//	if err := tab.CheckSingleArity("f"); err != nil {
//	    var ce *symbols.ConflictError
//	    if errors.As(err, &ce) {
//	        fmt.Println(ce.Name, ce.Arities)
//	    }
//	}
type ConflictError struct {
	// Name is the symbol name involved.
	Name string

	// Arities lists every arity the name is interned with. Set for
	// multiple-arity conflicts only.
	Arities []int

	// Have and Want are the existing and requested kinds. Set for kind
	// conflicts only.
	Have, Want Kind
}

// Error returns a formatted description of the conflict.
func (e *ConflictError) Error() string {
	if len(e.Arities) > 0 {
		parts := make([]string, len(e.Arities))
		for i, a := range e.Arities {
			parts[i] = fmt.Sprintf("%s/%d", e.Name, a)
		}
		return fmt.Sprintf("symbol conflict: %s used with multiple arities (%s)",
			e.Name, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("symbol conflict: %s is a %s, cannot also be a %s",
		e.Name, e.Have, e.Want)
}

// Unwrap returns ErrSymbolConflict so errors.Is works on the sentinel.
func (e *ConflictError) Unwrap() error {
	return ErrSymbolConflict
}

func newArityConflict(name string, arities []int) *ConflictError {
	sorted := append([]int(nil), arities...)
	sort.Ints(sorted)
	return &ConflictError{Name: name, Arities: sorted}
}

// IsSymbolConflict checks if an error is or wraps ErrSymbolConflict.
func IsSymbolConflict(err error) bool {
	return errors.Is(err, ErrSymbolConflict)
}
