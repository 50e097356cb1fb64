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
	"fmt"
	"sort"
	"strconv"

	"github.com/AleutianAI/AleutianLADR/services/ladr/symbols"
)

var standardVarNames = [...]string{"x", "y", "z", "u", "v", "w"}

// VariableName returns the canonical print name of variable n.
//
// Standard style uses x y z u v w for 0..5 and v6, v7, ... after that.
// Prolog style uses A..F, then V6, V7, ... . Integer style prints n.
func VariableName(style symbols.VariableStyle, n int) string {
	switch style {
	case symbols.PrologStyle:
		if n >= 0 && n < 6 {
			return string(rune('A' + n))
		}
		return "V" + strconv.Itoa(n)
	case symbols.IntegerStyle:
		return strconv.Itoa(n)
	default:
		if n >= 0 && n < len(standardVarNames) {
			return standardVarNames[n]
		}
		return "v" + strconv.Itoa(n)
	}
}

// VarMap numbers variable names in order of first occurrence.
//
// One VarMap shared across several Bind calls gives one numbering for all
// of them, which is how a formula's atoms agree on their variables.
type VarMap struct {
	nums  map[string]int
	names []string
}

// NewVarMap returns an empty map.
func NewVarMap() *VarMap {
	return &VarMap{nums: make(map[string]int)}
}

// Number returns the number for name, assigning the next one if new.
func (m *VarMap) Number(name string) (int, error) {
	if n, ok := m.nums[name]; ok {
		return n, nil
	}
	n := len(m.names)
	if n > MaxVar {
		return 0, fmt.Errorf("%w: %s", ErrTooManyVariables, name)
	}
	m.nums[name] = n
	m.names = append(m.names, name)
	return n, nil
}

// Lookup returns the number already assigned to name.
func (m *VarMap) Lookup(name string) (int, bool) {
	n, ok := m.nums[name]
	return n, ok
}

// Name returns the source name of variable n, or "" when unknown.
func (m *VarMap) Name(n int) string {
	if n < 0 || n >= len(m.names) {
		return ""
	}
	return m.names[n]
}

// Len returns the number of assigned variables.
func (m *VarMap) Len() int { return len(m.names) }

// Bind turns every constant whose name satisfies isVar into a variable
// numbered through m. Existing variables are kept.
func Bind(tab *symbols.Table, t *Term, m *VarMap, isVar func(name string) bool) (*Term, error) {
	return Map(t, func(leaf *Term) (*Term, error) {
		if leaf.kind != KindConstant {
			return leaf, nil
		}
		name := tab.Name(leaf.sym)
		if !isVar(name) {
			return leaf, nil
		}
		n, err := m.Number(name)
		if err != nil {
			return nil, err
		}
		return Variable(n)
	})
}

// SetVariables converts the variable-style constants of t, as decided by
// the table's variable style, into variables numbered by first
// occurrence.
//
// Outputs:
//
//	*Term - The converted term.
//	*VarMap - Maps the assigned numbers back to source names.
//	error - ErrTooManyVariables.
func SetVariables(tab *symbols.Table, t *Term) (*Term, *VarMap, error) {
	m := NewVarMap()
	out, err := Bind(tab, t, m, tab.IsVariableName)
	if err != nil {
		return nil, nil, err
	}
	return out, m, nil
}

func sortedKeys(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
