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

// Role is a built-in meaning that a symbol name can be bound to.
//
// The formula model finds connectives through roles rather than fixed
// spellings, so redeclare(disjunction, or) makes "or" the disjunction.
type Role int

const (
	RoleConjunction Role = iota
	RoleDisjunction
	RoleNegation
	RoleImplication
	RoleBackwardImplication
	RoleEquivalence
	RoleUniversal
	RoleExistential
	RoleTrue
	RoleFalse
	RoleEquality
	RoleNegatedEquality
	RoleAttribute
)

var roleNames = map[string]Role{
	"conjunction":                RoleConjunction,
	"disjunction":                RoleDisjunction,
	"negation":                   RoleNegation,
	"implication":                RoleImplication,
	"backward_implication":       RoleBackwardImplication,
	"equivalence":                RoleEquivalence,
	"universal_quantification":   RoleUniversal,
	"existential_quantification": RoleExistential,
	"true":                       RoleTrue,
	"false":                      RoleFalse,
	"equality":                   RoleEquality,
	"negated_equality":           RoleNegatedEquality,
	"attribute":                  RoleAttribute,
}

func defaultRoles() map[Role]string {
	return map[Role]string{
		RoleConjunction:         "&",
		RoleDisjunction:         "|",
		RoleNegation:            "-",
		RoleImplication:         "->",
		RoleBackwardImplication: "<-",
		RoleEquivalence:         "<->",
		RoleUniversal:           "all",
		RoleExistential:         "exists",
		RoleTrue:                "$T",
		RoleFalse:               "$F",
		RoleEquality:            "=",
		RoleNegatedEquality:     "!=",
		RoleAttribute:           "#",
	}
}

// RoleFromString returns the role named in a redeclare() directive.
func RoleFromString(s string) (Role, bool) {
	r, ok := roleNames[s]
	return r, ok
}

// RoleSymbol returns the name currently bound to a role.
func (t *Table) RoleSymbol(r Role) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.roles[r]
}

// HasRole reports whether name is the symbol bound to role r.
func (t *Table) HasRole(name string, r Role) bool {
	return t.RoleSymbol(r) == name
}

// Redeclare binds a role to a new symbol name.
//
// Description:
//
//	The old name's parse type moves to the new name, as LADR does, so
//	redeclare(disjunction, or) lets the reader parse "p or q".
//
// Inputs:
//
//	role - Role name as written in the directive, e.g. "disjunction".
//	name - New symbol name. Must not be empty.
//
// Outputs:
//
//	error - ErrUnknownRole or ErrInvalidName.
func (t *Table) Redeclare(role, name string) error {
	r, ok := RoleFromString(role)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	if name == "" {
		return ErrInvalidName
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	old := t.roles[r]
	if pi, ok := t.parse[old]; ok && old != name {
		t.parse[name] = pi
		delete(t.parse, old)
	}
	t.roles[r] = name
	return nil
}
