// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package reader

import (
	"errors"
	"fmt"
)

// ErrMalformedTerm is the sentinel wrapped by every syntax error.
var ErrMalformedTerm = errors.New("malformed term")

// SyntaxError describes a term that could not be read.
type SyntaxError struct {
	// Stream names the input, if known.
	Stream string

	// Line is the 1-based line where the error was detected.
	Line int

	// Column is the 1-based column where the error was detected.
	Column int

	// Message describes the problem.
	Message string

	// Detail is the diagnostic log of the failed attempt: the text of the
	// tokens read for the term before the error.
	Detail string

	// Cause is an underlying error, such as an I/O failure.
	Cause error
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Line, e.Column)
	if e.Stream != "" {
		loc = e.Stream + ":" + loc
	}
	msg := fmt.Sprintf("%s: %s", loc, e.Message)
	if e.Detail != "" {
		msg += " (after: " + e.Detail + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns both the sentinel and the cause.
func (e *SyntaxError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrMalformedTerm, e.Cause}
	}
	return []error{ErrMalformedTerm}
}

// IsSyntaxError reports whether err is a reader syntax error.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}
