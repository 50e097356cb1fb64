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

import (
	"github.com/AleutianAI/AleutianLADR/services/ladr/term"
)

// UniversalClosure binds the lowest-numbered free variable of f.
//
// Only one binder is added per call. A closed formula is returned as is.
// Use UniversalClosureAll to bind every free variable.
func UniversalClosure(f *Formula) *Formula {
	free := FreeVariables(f)
	if len(free) == 0 {
		return f
	}
	return All(free[0], "", f)
}

// UniversalClosureAll binds every free variable of f, the lowest-numbered
// outermost.
func UniversalClosureAll(f *Formula) *Formula {
	free := FreeVariables(f)
	for i := len(free) - 1; i >= 0; i-- {
		f = All(free[i], "", f)
	}
	return f
}

// NNF returns the negation normal form of f.
//
// Implications and equivalences are expanded, negations are pushed to the
// atoms with De Morgan and quantifier duality, and double negations are
// removed. Attributes of the root are kept.
func NNF(f *Formula) *Formula {
	out := nnf(f, false)
	if len(f.attrs) > 0 {
		out = out.WithAttributes(f.attrs...)
	}
	return out
}

func nnf(f *Formula, neg bool) *Formula {
	switch f.kind {
	case KindAtom:
		if neg {
			return Negate(f)
		}
		return f
	case KindNot:
		return nnf(f.kids[0], !neg)
	case KindAnd, KindOr:
		kids := make([]*Formula, len(f.kids))
		for i, k := range f.kids {
			kids[i] = nnf(k, neg)
		}
		if (f.kind == KindAnd) != neg {
			return And(kids...)
		}
		return Or(kids...)
	case KindImp:
		return nnf(Or(Negate(f.kids[0]), f.kids[1]), neg)
	case KindImpby:
		return nnf(Or(f.kids[0], Negate(f.kids[1])), neg)
	case KindIff:
		a, b := f.kids[0], f.kids[1]
		return nnf(And(Or(Negate(a), b), Or(a, Negate(b))), neg)
	case KindAll, KindExists:
		k := f.kind
		if neg {
			k = dualKind(k)
		}
		return &Formula{kind: k, qvar: f.qvar, qname: f.qname, kids: []*Formula{nnf(f.kids[0], neg)}}
	}
	return f
}

// Flatten merges And kids of And nodes and Or kids of Or nodes into their
// parent, keeping left-to-right order. Flatten(Flatten(f)) equals
// Flatten(f).
func Flatten(f *Formula) *Formula {
	switch f.kind {
	case KindAtom:
		return f
	case KindAnd, KindOr:
		var kids []*Formula
		for _, k := range f.kids {
			fk := Flatten(k)
			if fk.kind == f.kind && len(fk.attrs) == 0 {
				kids = append(kids, fk.kids...)
			} else {
				kids = append(kids, fk)
			}
		}
		return &Formula{kind: f.kind, kids: kids, attrs: f.attrs}
	}
	kids := make([]*Formula, len(f.kids))
	for i, k := range f.kids {
		kids[i] = Flatten(k)
	}
	c := *f
	c.kids = kids
	return &c
}

// Dual swaps And with Or and All with Exists throughout f. Other nodes
// are unchanged.
func Dual(f *Formula) *Formula {
	if f.kind == KindAtom {
		return f
	}
	kids := make([]*Formula, len(f.kids))
	for i, k := range f.kids {
		kids[i] = Dual(k)
	}
	c := *f
	c.kind = dualKind(f.kind)
	c.kids = kids
	return &c
}

func dualKind(k Kind) Kind {
	switch k {
	case KindAnd:
		return KindOr
	case KindOr:
		return KindAnd
	case KindAll:
		return KindExists
	case KindExists:
		return KindAll
	}
	return k
}

// SubstituteVar replaces the free occurrences of variable v in f with r.
// Occurrences under a quantifier that rebinds v are left alone.
func SubstituteVar(f *Formula, v int, r *term.Term) *Formula {
	switch f.kind {
	case KindAtom:
		a := term.Substitute(f.atom, v, r)
		if a == f.atom {
			return f
		}
		return &Formula{kind: KindAtom, atom: a, attrs: f.attrs}
	case KindAll, KindExists:
		if f.qvar == v {
			return f
		}
	}
	kids := make([]*Formula, len(f.kids))
	for i, k := range f.kids {
		kids[i] = SubstituteVar(k, v, r)
	}
	c := *f
	c.kids = kids
	return &c
}
