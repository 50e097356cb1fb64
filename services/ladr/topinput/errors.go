// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package topinput

import (
	"errors"
	"fmt"
)

// Sentinel errors for directive processing.
//
// Every error returned by the Interpreter is a *DirectiveError whose Kind
// is one of these, reader.ErrMalformedTerm, or symbols.ErrSymbolConflict.
var (
	// ErrUnknownDirectiveTarget indicates a flag or parameter name the
	// option registry does not know. Fatal only under UnknownError, or
	// inside an if() condition.
	ErrUnknownDirectiveTarget = errors.New("unknown directive target")

	// ErrUnrecognizedDirective indicates a top-level term that is not a
	// directive.
	ErrUnrecognizedDirective = errors.New("unrecognized directive")

	// ErrUnterminatedConditional indicates end of stream inside an if().
	ErrUnterminatedConditional = errors.New("unterminated conditional")

	// ErrUnbalancedEndIf indicates an end_if with no open if().
	ErrUnbalancedEndIf = errors.New("unbalanced end_if")

	// ErrMissingListTerminator indicates end of stream before end_of_list.
	ErrMissingListTerminator = errors.New("missing end_of_list")

	// ErrMalformedDirective indicates a directive whose arguments have the
	// wrong shape, such as a non-constant flag name or a bad op() type.
	ErrMalformedDirective = errors.New("malformed directive")
)

// DirectiveError describes a fatal problem in one input stream.
type DirectiveError struct {
	// Kind is the sentinel for the failure category.
	Kind error

	// Directive is the printed offending term, if there is one.
	Directive string

	// Stream names the input.
	Stream string

	// Message adds detail.
	Message string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *DirectiveError) Error() string {
	msg := e.Kind.Error()
	if e.Stream != "" {
		msg = e.Stream + ": " + msg
	}
	if e.Directive != "" {
		msg += fmt.Sprintf(" %s", e.Directive)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the kind and the cause.
func (e *DirectiveError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// IsDirectiveError reports whether err came from an Interpreter.
func IsDirectiveError(err error) bool {
	var de *DirectiveError
	return errors.As(err, &de)
}
