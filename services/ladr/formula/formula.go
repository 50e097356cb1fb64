// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package formula implements first-order formulas over terms.
//
// A formula is an atom, a connective node (And, Or, Not, Iff, Imp,
// Impby) or a quantifier (All, Exists). And and Or are n-ary; And with no
// kids is TRUE and Or with no kids is FALSE. Quantifiers bind a variable
// number and remember the name the variable had when the formula was
// read, so printing reproduces the source spelling.
//
// Formulas are immutable. Transformations return new formulas and share
// unchanged subtrees with their input.
package formula

import (
	"sort"

	"github.com/AleutianAI/AleutianLADR/services/ladr/symbols"
	"github.com/AleutianAI/AleutianLADR/services/ladr/term"
)

// Kind is the node type of a formula.
type Kind int

const (
	KindAtom Kind = iota
	KindAnd
	KindOr
	KindNot
	KindIff
	KindImp
	KindImpby
	KindAll
	KindExists
)

var kindNames = [...]string{"atom", "and", "or", "not", "iff", "imp", "impby", "all", "exists"}

// String returns the lowercase kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Formula is an immutable formula tree.
type Formula struct {
	kind  Kind
	atom  *term.Term
	kids  []*Formula
	qvar  int
	qname string
	attrs []*term.Term
}

// Atom wraps t as an atomic formula.
func Atom(t *term.Term) *Formula {
	return &Formula{kind: KindAtom, atom: t}
}

// True returns the empty conjunction.
func True() *Formula { return &Formula{kind: KindAnd} }

// False returns the empty disjunction.
func False() *Formula { return &Formula{kind: KindOr} }

// And builds a conjunction of kids.
func And(kids ...*Formula) *Formula { return nary(KindAnd, kids) }

// Or builds a disjunction of kids.
func Or(kids ...*Formula) *Formula { return nary(KindOr, kids) }

func nary(k Kind, kids []*Formula) *Formula {
	cp := make([]*Formula, len(kids))
	copy(cp, kids)
	return &Formula{kind: k, kids: cp}
}

// Negate builds the negation of f.
func Negate(f *Formula) *Formula {
	return &Formula{kind: KindNot, kids: []*Formula{f}}
}

// Imp builds a -> b.
func Imp(a, b *Formula) *Formula { return &Formula{kind: KindImp, kids: []*Formula{a, b}} }

// Impby builds a <- b.
func Impby(a, b *Formula) *Formula { return &Formula{kind: KindImpby, kids: []*Formula{a, b}} }

// Iff builds a <-> b.
func Iff(a, b *Formula) *Formula { return &Formula{kind: KindIff, kids: []*Formula{a, b}} }

// All binds variable v in f. name is the print name of the binder; empty
// means the canonical variable name.
func All(v int, name string, f *Formula) *Formula {
	return &Formula{kind: KindAll, qvar: v, qname: name, kids: []*Formula{f}}
}

// Exists is the existential counterpart of All.
func Exists(v int, name string, f *Formula) *Formula {
	return &Formula{kind: KindExists, qvar: v, qname: name, kids: []*Formula{f}}
}

// Kind returns the node type.
func (f *Formula) Kind() Kind { return f.kind }

// Arity returns the number of subformulas: 0 for atoms, 1 for Not and
// quantifiers.
func (f *Formula) Arity() int { return len(f.kids) }

// Kid returns subformula i, or nil when out of range.
func (f *Formula) Kid(i int) *Formula {
	if i < 0 || i >= len(f.kids) {
		return nil
	}
	return f.kids[i]
}

// Kids returns a copy of the subformula slice.
func (f *Formula) Kids() []*Formula {
	out := make([]*Formula, len(f.kids))
	copy(out, f.kids)
	return out
}

// Atom returns the term of an atomic formula.
func (f *Formula) Atom() (*term.Term, error) {
	if f.kind != KindAtom {
		return nil, ErrNotAtom
	}
	return f.atom, nil
}

// QVar returns the print name of the bound variable.
func (f *Formula) QVar() (string, error) {
	if !f.IsQuantified() {
		return "", ErrNotQuantified
	}
	if f.qname == "" {
		return term.VariableName(symbols.StandardStyle, f.qvar), nil
	}
	return f.qname, nil
}

// QVarNum returns the bound variable number.
func (f *Formula) QVarNum() (int, error) {
	if !f.IsQuantified() {
		return 0, ErrNotQuantified
	}
	return f.qvar, nil
}

// Attributes returns the attribute terms attached with '#'.
func (f *Formula) Attributes() []*term.Term {
	out := make([]*term.Term, len(f.attrs))
	copy(out, f.attrs)
	return out
}

// WithAttributes returns f with attrs appended to its attributes.
func (f *Formula) WithAttributes(attrs ...*term.Term) *Formula {
	c := *f
	c.attrs = append(append([]*term.Term(nil), f.attrs...), attrs...)
	return &c
}

// IsQuantified reports whether f is an All or Exists node.
func (f *Formula) IsQuantified() bool {
	return f.kind == KindAll || f.kind == KindExists
}

// IsTrue reports whether f is the empty conjunction.
func (f *Formula) IsTrue() bool { return f.kind == KindAnd && len(f.kids) == 0 }

// IsFalse reports whether f is the empty disjunction.
func (f *Formula) IsFalse() bool { return f.kind == KindOr && len(f.kids) == 0 }

// IsLiteral reports whether f is an atom or a negated atom.
func IsLiteral(f *Formula) bool {
	if f.kind == KindAtom {
		return true
	}
	return f.kind == KindNot && f.kids[0].kind == KindAtom
}

// IsClausal reports whether f is a literal or a disjunction whose kids are
// all clausal.
func IsClausal(f *Formula) bool {
	if IsLiteral(f) {
		return true
	}
	if f.kind != KindOr {
		return false
	}
	for _, k := range f.kids {
		if !IsClausal(k) {
			return false
		}
	}
	return true
}

// Ident reports structural equality. Bound variables compare by number;
// binder names and attributes are ignored. Unbound binders compare by name.
func Ident(a, b *Formula) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind || len(a.kids) != len(b.kids) {
		return false
	}
	switch a.kind {
	case KindAtom:
		return term.Ident(a.atom, b.atom)
	case KindAll, KindExists:
		if a.qvar != b.qvar || (a.qvar == unbound && a.qname != b.qname) {
			return false
		}
	}
	for i := range a.kids {
		if !Ident(a.kids[i], b.kids[i]) {
			return false
		}
	}
	return true
}

// Copy returns an independently allocated copy of f.
func Copy(f *Formula) *Formula {
	c := &Formula{kind: f.kind, qvar: f.qvar, qname: f.qname}
	if f.atom != nil {
		c.atom = term.Copy(f.atom)
	}
	if len(f.kids) > 0 {
		c.kids = make([]*Formula, len(f.kids))
		for i, k := range f.kids {
			c.kids[i] = Copy(k)
		}
	}
	for _, a := range f.attrs {
		c.attrs = append(c.attrs, term.Copy(a))
	}
	return c
}

// Size returns the number of formula nodes in f.
func Size(f *Formula) int {
	n := 1
	for _, k := range f.kids {
		n += Size(k)
	}
	return n
}

// FreeVariables returns the numbers of the variables not bound by an
// enclosing quantifier, ascending.
func FreeVariables(f *Formula) []int {
	free := make(map[int]bool)
	collectFree(f, map[int]int{}, free)
	out := make([]int, 0, len(free))
	for v := range free {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func collectFree(f *Formula, bound map[int]int, free map[int]bool) {
	switch f.kind {
	case KindAtom:
		for _, v := range term.FreeVariables(f.atom) {
			if bound[v] == 0 {
				free[v] = true
			}
		}
	case KindAll, KindExists:
		bound[f.qvar]++
		collectFree(f.kids[0], bound, free)
		bound[f.qvar]--
	default:
		for _, k := range f.kids {
			collectFree(k, bound, free)
		}
	}
}

// IsClosed reports whether f has no free variables.
func IsClosed(f *Formula) bool { return len(FreeVariables(f)) == 0 }

// maxVar returns the largest variable number used or bound in f, or -1.
func maxVar(f *Formula) int {
	m := -1
	switch f.kind {
	case KindAtom:
		m = term.MaxVariable(f.atom)
	case KindAll, KindExists:
		m = f.qvar
	}
	for _, k := range f.kids {
		if v := maxVar(k); v > m {
			m = v
		}
	}
	return m
}

