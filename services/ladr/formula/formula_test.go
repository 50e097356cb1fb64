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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianLADR/services/ladr/reader"
	"github.com/AleutianAI/AleutianLADR/services/ladr/symbols"
	"github.com/AleutianAI/AleutianLADR/services/ladr/term"
)

func parse(t *testing.T, tab *symbols.Table, src string) *Formula {
	t.Helper()
	raw, err := reader.ParseString(tab, src)
	require.NoError(t, err)
	f, _, err := TermToFormulaNames(tab, raw)
	require.NoError(t, err)
	return f
}

func atom(t *testing.T, tab *symbols.Table, name string, args ...*term.Term) *Formula {
	t.Helper()
	a, err := term.Application(tab, name, args...)
	require.NoError(t, err)
	return Atom(a)
}

func TestAccessors(t *testing.T) {
	tab := symbols.New()
	p := atom(t, tab, "p")
	q := atom(t, tab, "q")

	a, err := p.Atom()
	require.NoError(t, err)
	assert.True(t, term.IsTerm(tab, a, "p", 0))
	assert.Equal(t, 0, p.Arity())

	and := And(p, q)
	_, err = and.Atom()
	assert.ErrorIs(t, err, ErrNotAtom)
	_, err = and.QVar()
	assert.ErrorIs(t, err, ErrNotQuantified)
	_, err = and.QVarNum()
	assert.ErrorIs(t, err, ErrNotQuantified)
	assert.Equal(t, 2, and.Arity())
	assert.Same(t, q, and.Kid(1))
	assert.Nil(t, and.Kid(2))

	all := All(0, "x", p)
	name, err := all.QVar()
	require.NoError(t, err)
	assert.Equal(t, "x", name)
	assert.Equal(t, 1, all.Arity())

	assert.True(t, True().IsTrue())
	assert.True(t, False().IsFalse())
	assert.Equal(t, 0, True().Arity())
}

func TestTermToFormula_Connectives(t *testing.T) {
	tab := symbols.New()

	tests := []struct {
		src  string
		kind Kind
	}{
		{"p(a)", KindAtom},
		{"p & q", KindAnd},
		{"p | q", KindOr},
		{"-p", KindNot},
		{"p -> q", KindImp},
		{"p <- q", KindImpby},
		{"p <-> q", KindIff},
		{"all x p(x)", KindAll},
		{"exists x p(x)", KindExists},
		{"$T", KindAnd},
		{"$F", KindOr},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.kind, parse(t, tab, tt.src).Kind())
		})
	}
}

func TestTermToFormula_NegatedEquality(t *testing.T) {
	tab := symbols.New()
	f := parse(t, tab, "a != b")

	require.Equal(t, KindNot, f.Kind())
	a, err := f.Kid(0).Atom()
	require.NoError(t, err)
	assert.True(t, term.IsTerm(tab, a, "=", 2))
}

func TestTermToFormula_Variables(t *testing.T) {
	tab := symbols.New()
	f := parse(t, tab, "p(x) | q(y,x)")

	assert.Equal(t, []int{0, 1}, FreeVariables(f))

	bound := parse(t, tab, "all a p(a,b)")
	assert.True(t, IsClosed(UniversalClosure(bound)))
	body, err := bound.Kid(0).Atom()
	require.NoError(t, err)
	assert.True(t, body.Arg(0).IsVariable())
	assert.True(t, body.Arg(1).IsConstant())

	_, err = TermToFormula(tab, term.MustVariable(0))
	assert.ErrorIs(t, err, ErrVariableAtom)
}

func TestTermToFormula_Redeclared(t *testing.T) {
	tab := symbols.New()
	require.NoError(t, tab.Redeclare("disjunction", "or"))

	f := parse(t, tab, "p or q")
	assert.Equal(t, KindOr, f.Kind())
	assert.Equal(t, "p or q", Sprint(tab, f))
}

func TestTermToFormula_Attributes(t *testing.T) {
	tab := symbols.New()
	f := parse(t, tab, "p(x) # label(one) # answer(x)")

	assert.Equal(t, KindAtom, f.Kind())
	attrs := f.Attributes()
	require.Len(t, attrs, 2)
	assert.True(t, term.IsTerm(tab, attrs[0], "label", 1))
	assert.True(t, attrs[1].Arg(0).IsVariable())
	assert.Equal(t, "p(x) # label(one) # answer(x)", Sprint(tab, f))
}

func TestAtomRoundTrip(t *testing.T) {
	tab := symbols.New()
	for _, src := range []string{
		"p(a, f(b))",
		"p(x, f(y))",
		"x = y",
		"q(u, [v:w])",
	} {
		t.Run(src, func(t *testing.T) {
			a, err := reader.ParseString(tab, src)
			require.NoError(t, err)

			f, err := TermToFormula(tab, a)
			require.NoError(t, err)
			require.Equal(t, KindAtom, f.Kind())
			back, err := FormulaToTerm(tab, f)
			require.NoError(t, err)
			assert.True(t, term.Ident(a, back), Sprint(tab, f))
		})
	}
}

func TestTermToFormula_LeavesNamesUnbound(t *testing.T) {
	tab := symbols.New()
	raw, err := reader.ParseString(tab, "all a p(a,x)")
	require.NoError(t, err)

	f, err := TermToFormula(tab, raw)
	require.NoError(t, err)
	body, err := f.Kid(0).Atom()
	require.NoError(t, err)
	assert.True(t, body.Arg(0).IsConstant())
	assert.True(t, body.Arg(1).IsConstant())
	name, err := f.QVar()
	require.NoError(t, err)
	assert.Equal(t, "a", name)

	back, err := FormulaToTerm(tab, f)
	require.NoError(t, err)
	assert.True(t, term.Ident(raw, back))
}

func TestSetVariables(t *testing.T) {
	tab := symbols.New()
	raw, err := reader.ParseString(tab, "all a (p(a,x) | q(b)) # answer(x)")
	require.NoError(t, err)
	f, err := TermToFormula(tab, raw)
	require.NoError(t, err)

	got, names, err := SetVariables(tab, f)
	require.NoError(t, err)
	n, err := got.QVarNum()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	p, err := got.Kid(0).Kid(0).Atom()
	require.NoError(t, err)
	assert.Equal(t, 0, p.Arg(0).VarNum())
	assert.Equal(t, 1, p.Arg(1).VarNum())
	q, err := got.Kid(0).Kid(1).Atom()
	require.NoError(t, err)
	assert.True(t, q.Arg(0).IsConstant())
	assert.Equal(t, 1, got.Attributes()[0].Arg(0).VarNum())
	assert.True(t, IsClosed(UniversalClosureAll(got)))
	assert.Equal(t, "x", names.Name(1))

	// the input is not modified
	body, err := f.Kid(0).Kid(0).Atom()
	require.NoError(t, err)
	assert.True(t, body.Arg(0).IsConstant())
}

func TestFormulaToTerm_RoundTrip(t *testing.T) {
	tab := symbols.New()
	for _, src := range []string{
		"all x (p(x) -> exists y q(x,y))",
		"-(p & q) | r",
		"p <-> -q",
		"$T & p",
	} {
		t.Run(src, func(t *testing.T) {
			f := parse(t, tab, src)
			tm, err := FormulaToTerm(tab, f)
			require.NoError(t, err)
			g, err := TermToFormula(tab, tm)
			require.NoError(t, err)
			assert.True(t, Ident(f, g))
		})
	}
}

func TestFlatten(t *testing.T) {
	tab := symbols.New()
	a, b, c := atom(t, tab, "a"), atom(t, tab, "b"), atom(t, tab, "c")

	got := Flatten(And(And(a, b), c))
	require.Equal(t, KindAnd, got.Kind())
	require.Equal(t, 3, got.Arity())
	assert.Same(t, a, got.Kid(0))
	assert.Same(t, b, got.Kid(1))
	assert.Same(t, c, got.Kid(2))

	assert.True(t, Ident(got, Flatten(got)))

	mixed := Flatten(Or(a, And(b, c), Or(c, a)))
	assert.Equal(t, 4, mixed.Arity())
	assert.Equal(t, KindAnd, mixed.Kid(1).Kind())
}

func TestIsLiteralAndClausal(t *testing.T) {
	tab := symbols.New()

	tests := []struct {
		src     string
		literal bool
		clausal bool
	}{
		{"p", true, true},
		{"-p", true, true},
		{"p | -q | r", false, true},
		{"p & q", false, false},
		{"- -p", false, false},
		{"p | (q & r)", false, false},
		{"all x p(x)", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			f := parse(t, tab, tt.src)
			assert.Equal(t, tt.literal, IsLiteral(f))
			assert.Equal(t, tt.clausal, IsClausal(f))
		})
	}
}

func TestIdentAndCopy(t *testing.T) {
	tab := symbols.New()
	f := parse(t, tab, "all x (p(x) | -q(x,a))")
	g := parse(t, tab, "all x (p(x) | -q(x,a))")
	h := parse(t, tab, "all x (p(x) | q(x,a))")

	assert.True(t, Ident(f, g))
	assert.False(t, Ident(f, h))
	assert.True(t, Ident(Copy(f), f))
	assert.Equal(t, 5, Size(f))
}

func TestUniversalClosure(t *testing.T) {
	tab := symbols.New()
	f := parse(t, tab, "p(x,y)")

	once := UniversalClosure(f)
	require.Equal(t, KindAll, once.Kind())
	v, err := once.QVarNum()
	require.NoError(t, err)
	assert.Equal(t, 0, v)
	assert.Equal(t, []int{1}, FreeVariables(once))

	twice := UniversalClosure(once)
	assert.True(t, IsClosed(twice))

	closed := parse(t, tab, "p(a)")
	assert.Same(t, closed, UniversalClosure(closed))

	all := UniversalClosureAll(f)
	assert.True(t, IsClosed(all))
	assert.Equal(t, "all x all y p(x,y)", Sprint(tab, all))
}
