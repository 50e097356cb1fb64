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
	"strconv"

	"github.com/AleutianAI/AleutianLADR/services/ladr/symbols"
)

// List and boolean symbol names.
const (
	ConsName  = "$cons"
	NilName   = "$nil"
	TrueName  = "true"
	FalseName = "false"
)

// IsNil reports whether t is the empty list.
func IsNil(tab *symbols.Table, t *Term) bool {
	return IsTerm(tab, t, NilName, 0)
}

// IsCons reports whether t is a list cell.
func IsCons(tab *symbols.Table, t *Term) bool {
	return IsTerm(tab, t, ConsName, 2)
}

// IsProperList reports whether t is a chain of cells ending in $nil.
func IsProperList(tab *symbols.Table, t *Term) bool {
	for IsCons(tab, t) {
		t = t.args[1]
	}
	return IsNil(tab, t)
}

// ListToSlice returns the elements of a proper list. ok is false for
// anything else.
func ListToSlice(tab *symbols.Table, t *Term) (items []*Term, ok bool) {
	items = []*Term{}
	for IsCons(tab, t) {
		items = append(items, t.args[0])
		t = t.args[1]
	}
	if !IsNil(tab, t) {
		return nil, false
	}
	return items, true
}

// SliceToList builds a proper list of items.
func SliceToList(tab *symbols.Table, items []*Term) (*Term, error) {
	return SliceToListTail(tab, items, nil)
}

// SliceToListTail builds a list of items ending in tail; nil tail means
// $nil.
func SliceToListTail(tab *symbols.Table, items []*Term, tail *Term) (*Term, error) {
	l := tail
	if l == nil {
		var err error
		if l, err = Constant(tab, NilName); err != nil {
			return nil, err
		}
	}
	for i := len(items) - 1; i >= 0; i-- {
		var err error
		if l, err = Application(tab, ConsName, items[i], l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// IntToTerm returns the constant for n. Negative numbers are -(|n|).
func IntToTerm(tab *symbols.Table, n int) (*Term, error) {
	if n >= 0 {
		return Constant(tab, strconv.Itoa(n))
	}
	c, err := Constant(tab, strconv.Itoa(-n))
	if err != nil {
		return nil, err
	}
	return Application(tab, tab.RoleSymbol(symbols.RoleNegation), c)
}

// TermToInt reads an integer constant, also accepting the negation of one.
func TermToInt(tab *symbols.Table, t *Term) (int, bool) {
	if t == nil || t.kind == KindVariable {
		return 0, false
	}
	if t.kind == KindComplex {
		if !IsTerm(tab, t, tab.RoleSymbol(symbols.RoleNegation), 1) || !t.args[0].IsConstant() {
			return 0, false
		}
		n, ok := TermToInt(tab, t.args[0])
		if !ok || n < 0 {
			return 0, false
		}
		return -n, true
	}
	n, err := strconv.Atoi(tab.Name(t.sym))
	if err != nil {
		return 0, false
	}
	return n, true
}

// BoolToTerm returns the constant true or false.
func BoolToTerm(tab *symbols.Table, b bool) (*Term, error) {
	if b {
		return Constant(tab, TrueName)
	}
	return Constant(tab, FalseName)
}

// TermToBool reads the constant true or false.
func TermToBool(tab *symbols.Table, t *Term) (value, ok bool) {
	switch {
	case IsTerm(tab, t, TrueName, 0):
		return true, true
	case IsTerm(tab, t, FalseName, 0):
		return false, true
	default:
		return false, false
	}
}
