// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package term implements immutable first-order terms.
//
// A term is a variable, a constant, or a symbol applied to arguments.
// Symbols live in a symbols.Table; constructors that take a name intern it
// as a side effect, which is the only place a term touches the table.
//
// # Thread Safety
//
// A *Term is never modified after construction, so terms may be shared
// freely between goroutines. Operations that return a "new" term never
// alias mutable state with their input.
package term

import (
	"fmt"

	"github.com/AleutianAI/AleutianLADR/services/ladr/symbols"
)

// MaxVar is the largest variable number.
const MaxVar = 32767

// Kind is the variant of a term.
type Kind int

const (
	KindVariable Kind = iota
	KindConstant
	KindComplex
)

// String returns the lowercase variant name.
func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindConstant:
		return "constant"
	default:
		return "complex"
	}
}

// Term is an immutable term tree.
type Term struct {
	kind   Kind
	varnum int
	sym    symbols.ID
	args   []*Term
}

// Variable returns the variable with number n.
//
// Outputs:
//
//	*Term - The variable term.
//	error - ErrVarOutOfRange when n is outside [0, MaxVar].
func Variable(n int) (*Term, error) {
	if n < 0 || n > MaxVar {
		return nil, fmt.Errorf("%w: %d", ErrVarOutOfRange, n)
	}
	return &Term{kind: KindVariable, varnum: n}, nil
}

// MustVariable is Variable for literal numbers; it panics on error.
func MustVariable(n int) *Term {
	v, err := Variable(n)
	if err != nil {
		panic(err)
	}
	return v
}

// Constant interns name/0 and returns the constant term.
func Constant(tab *symbols.Table, name string) (*Term, error) {
	id, err := tab.Intern(name, 0)
	if err != nil {
		return nil, err
	}
	return &Term{kind: KindConstant, sym: id}, nil
}

// Application interns name with arity len(args) and applies it.
//
// Description:
//
//	With no arguments this is Constant. The argument slice is copied, so
//	the caller may reuse it. Arguments are shared, not copied; terms are
//	immutable so sharing is safe.
//
// Outputs:
//
//	*Term - The new term.
//	error - A symbols error for a bad name or arity, or ErrNilTerm.
func Application(tab *symbols.Table, name string, args ...*Term) (*Term, error) {
	id, err := tab.Intern(name, len(args))
	if err != nil {
		return nil, err
	}
	return build(id, args)
}

// FromSymbol applies an existing symbol to args.
//
// Outputs:
//
//	*Term - The new term.
//	error - symbols.ErrUnknownSymbol, or *ArityError when len(args)
//	        differs from the symbol's arity.
func FromSymbol(tab *symbols.Table, id symbols.ID, args ...*Term) (*Term, error) {
	s, ok := tab.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", symbols.ErrUnknownSymbol, id)
	}
	if s.Arity != len(args) {
		return nil, &ArityError{Symbol: s.String(), Got: len(args)}
	}
	return build(id, args)
}

// Apply re-applies the symbol carried by t to a new argument list.
func Apply(tab *symbols.Table, t *Term, args ...*Term) (*Term, error) {
	if t == nil {
		return nil, ErrNilTerm
	}
	if t.kind == KindVariable {
		return nil, ErrNotSymbol
	}
	return FromSymbol(tab, t.sym, args...)
}

func build(id symbols.ID, args []*Term) (*Term, error) {
	if len(args) == 0 {
		return &Term{kind: KindConstant, sym: id}, nil
	}
	cp := make([]*Term, len(args))
	for i, a := range args {
		if a == nil {
			return nil, ErrNilTerm
		}
		cp[i] = a
	}
	return &Term{kind: KindComplex, sym: id, args: cp}, nil
}

// Kind returns the variant of t.
func (t *Term) Kind() Kind { return t.kind }

// IsVariable reports whether t is a variable.
func (t *Term) IsVariable() bool { return t.kind == KindVariable }

// IsConstant reports whether t is a constant.
func (t *Term) IsConstant() bool { return t.kind == KindConstant }

// IsComplex reports whether t is an application with arguments.
func (t *Term) IsComplex() bool { return t.kind == KindComplex }

// VarNum returns the variable number, or -1 for non-variables.
func (t *Term) VarNum() int {
	if t.kind != KindVariable {
		return -1
	}
	return t.varnum
}

// Symbol returns the head symbol, or 0 for variables.
func (t *Term) Symbol() symbols.ID {
	if t.kind == KindVariable {
		return 0
	}
	return t.sym
}

// Arity returns the number of arguments.
func (t *Term) Arity() int { return len(t.args) }

// Arg returns argument i, or nil when out of range.
func (t *Term) Arg(i int) *Term {
	if i < 0 || i >= len(t.args) {
		return nil
	}
	return t.args[i]
}

// Args returns a copy of the argument slice.
func (t *Term) Args() []*Term {
	out := make([]*Term, len(t.args))
	copy(out, t.args)
	return out
}

// IsTerm reports whether t is the non-variable term name/arity.
func IsTerm(tab *symbols.Table, t *Term, name string, arity int) bool {
	return t != nil && t.kind != KindVariable && tab.Is(t.sym, name, arity)
}

// Ident reports structural equality.
//
// Variables are equal when their numbers match. Other terms are equal when
// their symbols match and their arguments are pairwise equal.
func Ident(a, b *Term) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}
	if a.kind == KindVariable {
		return a.varnum == b.varnum
	}
	if a.sym != b.sym || len(a.args) != len(b.args) {
		return false
	}
	for i := range a.args {
		if !Ident(a.args[i], b.args[i]) {
			return false
		}
	}
	return true
}

// Copy returns an independently allocated tree identical to t.
func Copy(t *Term) *Term {
	if t == nil {
		return nil
	}
	c := &Term{kind: t.kind, varnum: t.varnum, sym: t.sym}
	if len(t.args) > 0 {
		c.args = make([]*Term, len(t.args))
		for i, a := range t.args {
			c.args[i] = Copy(a)
		}
	}
	return c
}

// IsGround reports whether t contains no variables.
func IsGround(t *Term) bool {
	if t.kind == KindVariable {
		return false
	}
	for _, a := range t.args {
		if !IsGround(a) {
			return false
		}
	}
	return true
}

// Depth returns 0 for leaves and 1 + the deepest argument otherwise.
func Depth(t *Term) int {
	d := 0
	for _, a := range t.args {
		if ad := Depth(a) + 1; ad > d {
			d = ad
		}
	}
	return d
}

// SymbolCount returns the number of nodes in t.
func SymbolCount(t *Term) int {
	n := 1
	for _, a := range t.args {
		n += SymbolCount(a)
	}
	return n
}

// OccursIn reports whether needle is structurally equal to haystack or to
// any of its subterms.
func OccursIn(needle, haystack *Term) bool {
	if Ident(needle, haystack) {
		return true
	}
	for _, a := range haystack.args {
		if OccursIn(needle, a) {
			return true
		}
	}
	return false
}

// FreeVariables returns the distinct variable numbers in t, ascending.
func FreeVariables(t *Term) []int {
	seen := make(map[int]bool)
	collectVars(t, seen)
	return sortedKeys(seen)
}

func collectVars(t *Term, seen map[int]bool) {
	if t.kind == KindVariable {
		seen[t.varnum] = true
		return
	}
	for _, a := range t.args {
		collectVars(a, seen)
	}
}

// MaxVariable returns the largest variable number in t, or -1.
func MaxVariable(t *Term) int {
	if t.kind == KindVariable {
		return t.varnum
	}
	m := -1
	for _, a := range t.args {
		if v := MaxVariable(a); v > m {
			m = v
		}
	}
	return m
}

// Substitute replaces every occurrence of variable varnum with r.
//
// Unchanged subtrees are shared with t.
func Substitute(t *Term, varnum int, r *Term) *Term {
	if t.kind == KindVariable {
		if t.varnum == varnum {
			return r
		}
		return t
	}
	if len(t.args) == 0 {
		return t
	}
	var out []*Term
	for i, a := range t.args {
		na := Substitute(a, varnum, r)
		if na != a && out == nil {
			out = make([]*Term, len(t.args))
			copy(out, t.args[:i])
		}
		if out != nil {
			out[i] = na
		}
	}
	if out == nil {
		return t
	}
	return &Term{kind: KindComplex, sym: t.sym, args: out}
}

// Map rebuilds t bottom-up, calling fn on every leaf. fn returns the
// replacement leaf.
func Map(t *Term, fn func(leaf *Term) (*Term, error)) (*Term, error) {
	if len(t.args) == 0 {
		return fn(t)
	}
	out := make([]*Term, len(t.args))
	changed := false
	for i, a := range t.args {
		na, err := Map(a, fn)
		if err != nil {
			return nil, err
		}
		out[i] = na
		changed = changed || na != a
	}
	if !changed {
		return t, nil
	}
	return &Term{kind: KindComplex, sym: t.sym, args: out}, nil
}
