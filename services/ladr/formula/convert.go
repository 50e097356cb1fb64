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
	"fmt"

	"github.com/AleutianAI/AleutianLADR/services/ladr/symbols"
	"github.com/AleutianAI/AleutianLADR/services/ladr/term"
)

// unbound marks a quantifier whose binder is still a constant name.
const unbound = -1

type converter struct {
	tab *symbols.Table
}

// TermToFormula converts a term as produced by the reader into a formula.
//
// Description:
//
//	Connectives are recognized through the table's operator roles, so a
//	redeclared disjunction symbol is honoured. a != b becomes -(a = b).
//	The constants $T and $F become TRUE and FALSE. Attributes attached
//	with # are kept on the formula. Atoms are wrapped as they are: names
//	that look like variables stay constants, and a quantifier over a
//	constant keeps the name unbound. SetVariables turns them into
//	variables.
//
// Outputs:
//
//	*Formula - The converted formula.
//	error - ErrVariableAtom, ErrBadQuantifier.
func TermToFormula(tab *symbols.Table, t *term.Term) (*Formula, error) {
	c := &converter{tab: tab}
	return c.convert(t)
}

// TermToFormulaNames is TermToFormula followed by SetVariables. It also
// returns the variable numbering, mapping numbers back to source names.
func TermToFormulaNames(tab *symbols.Table, t *term.Term) (*Formula, *term.VarMap, error) {
	f, err := TermToFormula(tab, t)
	if err != nil {
		return nil, nil, err
	}
	return SetVariables(tab, f)
}

func (c *converter) is(t *term.Term, r symbols.Role, arity int) bool {
	return term.IsTerm(c.tab, t, c.tab.RoleSymbol(r), arity)
}

func (c *converter) convert(t *term.Term) (*Formula, error) {
	if t == nil {
		return nil, term.ErrNilTerm
	}
	if t.IsVariable() {
		return nil, ErrVariableAtom
	}

	switch {
	case c.is(t, symbols.RoleTrue, 0):
		return True(), nil
	case c.is(t, symbols.RoleFalse, 0):
		return False(), nil
	case c.is(t, symbols.RoleAttribute, 2):
		f, err := c.convert(t.Arg(0))
		if err != nil {
			return nil, err
		}
		var attrs []*term.Term
		a := t.Arg(1)
		for c.is(a, symbols.RoleAttribute, 2) {
			attrs = append(attrs, a.Arg(0))
			a = a.Arg(1)
		}
		attrs = append(attrs, a)
		return f.WithAttributes(attrs...), nil
	case c.is(t, symbols.RoleUniversal, 2):
		return c.quantified(KindAll, t)
	case c.is(t, symbols.RoleExistential, 2):
		return c.quantified(KindExists, t)
	case c.is(t, symbols.RoleNegation, 1):
		k, err := c.convert(t.Arg(0))
		if err != nil {
			return nil, err
		}
		return Negate(k), nil
	case c.is(t, symbols.RoleNegatedEquality, 2):
		eq, err := term.Application(c.tab, c.tab.RoleSymbol(symbols.RoleEquality), t.Arg(0), t.Arg(1))
		if err != nil {
			return nil, err
		}
		return Negate(Atom(eq)), nil
	}

	binary := []struct {
		role  symbols.Role
		build func(a, b *Formula) *Formula
	}{
		{symbols.RoleConjunction, func(a, b *Formula) *Formula { return And(a, b) }},
		{symbols.RoleDisjunction, func(a, b *Formula) *Formula { return Or(a, b) }},
		{symbols.RoleImplication, Imp},
		{symbols.RoleBackwardImplication, Impby},
		{symbols.RoleEquivalence, Iff},
	}
	for _, op := range binary {
		if !c.is(t, op.role, 2) {
			continue
		}
		a, err := c.convert(t.Arg(0))
		if err != nil {
			return nil, err
		}
		b, err := c.convert(t.Arg(1))
		if err != nil {
			return nil, err
		}
		return op.build(a, b), nil
	}
	return Atom(t), nil
}

func (c *converter) quantified(k Kind, t *term.Term) (*Formula, error) {
	v := t.Arg(0)
	body, err := c.convert(t.Arg(1))
	if err != nil {
		return nil, err
	}
	if v.IsVariable() {
		return &Formula{kind: k, qvar: v.VarNum(), kids: []*Formula{body}}, nil
	}
	if !v.IsConstant() {
		return nil, fmt.Errorf("%w: %s", ErrBadQuantifier, term.Sprint(c.tab, t))
	}
	return &Formula{kind: k, qvar: unbound, qname: c.tab.Name(v.Symbol()), kids: []*Formula{body}}, nil
}

type binder struct {
	tab   *symbols.Table
	vars  *term.VarMap
	bound map[string]int
}

// SetVariables turns variable names in f into variables.
//
// A constant becomes a variable when its name is a variable under the
// table's variable style, or when an enclosing quantifier binds it.
// Variables are numbered by first occurrence across the whole formula,
// attributes included. The returned map gives each number's source name.
func SetVariables(tab *symbols.Table, f *Formula) (*Formula, *term.VarMap, error) {
	b := &binder{tab: tab, vars: term.NewVarMap(), bound: make(map[string]int)}
	g, err := b.walk(f)
	if err != nil {
		return nil, nil, err
	}
	return g, b.vars, nil
}

func (b *binder) isVar(name string) bool {
	return b.bound[name] > 0 || b.tab.IsVariableName(name)
}

func (b *binder) bind(t *term.Term) (*term.Term, error) {
	return term.Bind(b.tab, t, b.vars, b.isVar)
}

func (b *binder) walk(f *Formula) (*Formula, error) {
	g := &Formula{kind: f.kind, qvar: f.qvar, qname: f.qname}
	switch {
	case f.kind == KindAtom:
		a, err := b.bind(f.atom)
		if err != nil {
			return nil, err
		}
		g.atom = a
	case f.IsQuantified() && f.qvar == unbound:
		n, err := b.vars.Number(f.qname)
		if err != nil {
			return nil, err
		}
		g.qvar = n
		b.bound[f.qname]++
		body, err := b.walk(f.kids[0])
		b.bound[f.qname]--
		if err != nil {
			return nil, err
		}
		g.kids = []*Formula{body}
	default:
		if len(f.kids) > 0 {
			g.kids = make([]*Formula, len(f.kids))
		}
		for i, k := range f.kids {
			kid, err := b.walk(k)
			if err != nil {
				return nil, err
			}
			g.kids[i] = kid
		}
	}
	// attributes see the variables of the whole formula
	for _, a := range f.attrs {
		bound, err := b.bind(a)
		if err != nil {
			return nil, err
		}
		g.attrs = append(g.attrs, bound)
	}
	return g, nil
}

// FormulaToTerm converts f back into a term built from the role symbols.
//
// Bound quantifiers bind variable terms and unbound ones their constant
// name, so converting the result back gives a formula identical to f.
// TRUE and FALSE become $T and $F.
func FormulaToTerm(tab *symbols.Table, f *Formula) (*term.Term, error) {
	t, err := toTerm(tab, f)
	if err != nil || len(f.attrs) == 0 {
		return t, err
	}
	hash := tab.RoleSymbol(symbols.RoleAttribute)
	attr := f.attrs[len(f.attrs)-1]
	for i := len(f.attrs) - 2; i >= 0; i-- {
		if attr, err = term.Application(tab, hash, f.attrs[i], attr); err != nil {
			return nil, err
		}
	}
	return term.Application(tab, hash, t, attr)
}

func toTerm(tab *symbols.Table, f *Formula) (*term.Term, error) {
	role := func(r symbols.Role) string { return tab.RoleSymbol(r) }

	kids := make([]*term.Term, len(f.kids))
	for i, k := range f.kids {
		kt, err := FormulaToTerm(tab, k)
		if err != nil {
			return nil, err
		}
		kids[i] = kt
	}

	switch f.kind {
	case KindAtom:
		return f.atom, nil
	case KindAnd:
		return chain(tab, role(symbols.RoleConjunction), role(symbols.RoleTrue), kids)
	case KindOr:
		return chain(tab, role(symbols.RoleDisjunction), role(symbols.RoleFalse), kids)
	case KindNot:
		return term.Application(tab, role(symbols.RoleNegation), kids[0])
	case KindImp:
		return term.Application(tab, role(symbols.RoleImplication), kids...)
	case KindImpby:
		return term.Application(tab, role(symbols.RoleBackwardImplication), kids...)
	case KindIff:
		return term.Application(tab, role(symbols.RoleEquivalence), kids...)
	case KindAll, KindExists:
		r := symbols.RoleUniversal
		if f.kind == KindExists {
			r = symbols.RoleExistential
		}
		var v *term.Term
		var err error
		if f.qvar == unbound {
			v, err = term.Constant(tab, f.qname)
		} else {
			v, err = term.Variable(f.qvar)
		}
		if err != nil {
			return nil, err
		}
		return term.Application(tab, role(r), v, kids[0])
	}
	return nil, fmt.Errorf("formula kind %s has no term form", f.kind)
}

func chain(tab *symbols.Table, op, empty string, kids []*term.Term) (*term.Term, error) {
	if len(kids) == 0 {
		return term.Constant(tab, empty)
	}
	t := kids[len(kids)-1]
	for i := len(kids) - 2; i >= 0; i-- {
		var err error
		if t, err = term.Application(tab, op, kids[i], t); err != nil {
			return nil, err
		}
	}
	return t, nil
}
