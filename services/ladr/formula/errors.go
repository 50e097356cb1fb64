// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package formula

import "errors"

var (
	// ErrNotAtom is returned when the atom term of a non-atomic formula
	// is requested.
	ErrNotAtom = errors.New("formula is not an atom")

	// ErrNotQuantified is returned when the bound variable of a formula
	// without a quantifier at its root is requested.
	ErrNotQuantified = errors.New("formula is not quantified")

	// ErrVariableAtom is returned when a bare variable appears where an
	// atomic formula is expected.
	ErrVariableAtom = errors.New("variable used as an atomic formula")

	// ErrBadQuantifier is returned for a quantifier whose bound position
	// is not a name.
	ErrBadQuantifier = errors.New("quantifier must bind a name")
)
