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

import "fmt"

// standardParseTypes is the LADR operator table.
var standardParseTypes = []struct {
	name string
	prec int
	typ  ParseType
}{
	{"#", 810, InfixRight},
	{"<->", 800, Infix},
	{"->", 800, Infix},
	{"<-", 800, Infix},
	{"|", 790, InfixRight},
	{"&", 780, InfixRight},
	{"=", 700, Infix},
	{"!=", 700, Infix},
	{"==", 700, Infix},
	{"<", 700, Infix},
	{"<=", 700, Infix},
	{">", 700, Infix},
	{">=", 700, Infix},
	{"@<", 700, Infix},
	{"@<=", 700, Infix},
	{"@>", 700, Infix},
	{"@>=", 700, Infix},
	{"+", 500, InfixRight},
	{"*", 500, InfixRight},
	{"@", 500, Infix},
	{"/", 500, Infix},
	{"\\", 500, Infix},
	{"^", 500, Infix},
	{"-", 350, Prefix},
	{"'", 300, Postfix},
}

// DeclareStandardParseTypes installs the standard operator table.
//
// Existing declarations for the same names are overwritten; other names
// are left alone.
func (t *Table) DeclareStandardParseTypes() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, op := range standardParseTypes {
		t.parse[op.name] = ParseInfo{Precedence: op.prec, Type: op.typ}
	}
}

// SetParseType declares name as an operator.
//
// Inputs:
//
//	name - Operator name. Applies to every arity of the name.
//	prec - Precedence in [MinPrecedence, MaxPrecedence].
//	typ - Fixity. NothingSpecial clears the declaration.
//
// Outputs:
//
//	error - ErrInvalidName or ErrBadPrecedence.
func (t *Table) SetParseType(name string, prec int, typ ParseType) error {
	if name == "" {
		return ErrInvalidName
	}
	if typ == NothingSpecial {
		t.ClearParseType(name)
		return nil
	}
	if prec < MinPrecedence || prec > MaxPrecedence {
		return fmt.Errorf("%w: %s %d", ErrBadPrecedence, name, prec)
	}
	t.mu.Lock()
	t.parse[name] = ParseInfo{Precedence: prec, Type: typ}
	t.mu.Unlock()
	return nil
}

// ClearParseType removes any operator declaration for name.
func (t *Table) ClearParseType(name string) {
	t.mu.Lock()
	delete(t.parse, name)
	t.mu.Unlock()
}

// ParseInfo returns the operator declaration for name, if any.
func (t *Table) ParseInfo(name string) (ParseInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	pi, ok := t.parse[name]
	return pi, ok
}
