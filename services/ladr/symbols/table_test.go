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

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntern_Idempotent(t *testing.T) {
	tab := New()

	id1, err := tab.Intern("f", 2)
	require.NoError(t, err)
	id2, err := tab.Intern("f", 2)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, tab.Len())
}

func TestIntern_SameNameDifferentArity(t *testing.T) {
	tab := New()

	f1, err := tab.Intern("f", 1)
	require.NoError(t, err)
	f2, err := tab.Intern("f", 2)
	require.NoError(t, err)

	assert.NotEqual(t, f1, f2)

	s1, ok := tab.Lookup(f1)
	require.True(t, ok)
	s2, ok := tab.Lookup(f2)
	require.True(t, ok)
	assert.Equal(t, 1, s1.Arity)
	assert.Equal(t, 2, s2.Arity)
	assert.Equal(t, []int{1, 2}, tab.Arities("f"))

	err = tab.CheckSingleArity("f")
	require.Error(t, err)
	assert.True(t, IsSymbolConflict(err))
	var ce *ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []int{1, 2}, ce.Arities)

	assert.NoError(t, tab.CheckSingleArity("g"))
}

func TestIntern_Errors(t *testing.T) {
	tab := New()

	_, err := tab.Intern("", 0)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = tab.Intern("f", MaxArity+1)
	assert.ErrorIs(t, err, ErrArityTooLarge)

	_, err = tab.Intern("f", -1)
	assert.ErrorIs(t, err, ErrArityTooLarge)
}

func TestIntern_MonotonicIDs(t *testing.T) {
	tab := New()
	var prev ID
	for _, name := range []string{"a", "b", "c", "d"} {
		id, err := tab.Intern(name, 0)
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestIntern_Concurrent(t *testing.T) {
	tab := New()
	names := []string{"a", "b", "c", "d", "e"}

	var wg sync.WaitGroup
	results := make([][]ID, 8)
	for g := range results {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for _, n := range names {
				id, err := tab.Intern(n, 0)
				if err == nil {
					results[g] = append(results[g], id)
				}
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, len(names), tab.Len())
	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func TestLookup_Unknown(t *testing.T) {
	tab := New()
	_, ok := tab.Lookup(0)
	assert.False(t, ok)
	_, ok = tab.Lookup(42)
	assert.False(t, ok)
	assert.Equal(t, "", tab.Name(42))
	assert.Equal(t, -1, tab.Arity(42))
}

func TestSetKind_Conflict(t *testing.T) {
	tab := New()
	p, _ := tab.Intern("p", 1)

	require.NoError(t, tab.SetKind(p, KindRelation))
	require.NoError(t, tab.SetKind(p, KindRelation))

	err := tab.SetKind(p, KindFunction)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSymbolConflict)
	assert.Contains(t, err.Error(), "relation")

	assert.ErrorIs(t, tab.SetKind(99, KindFunction), ErrUnknownSymbol)
}

func TestAssocCommAndCommutative(t *testing.T) {
	tab := New()

	require.NoError(t, tab.SetAssocComm("+", true))
	require.NoError(t, tab.SetCommutative("*", true))

	plus, ok := tab.Find("+", 2)
	require.True(t, ok)
	s, _ := tab.Lookup(plus)
	assert.True(t, s.AssocComm())
	assert.True(t, s.Commutative())

	times, _ := tab.Find("*", 2)
	s, _ = tab.Lookup(times)
	assert.False(t, s.AssocComm())
	assert.True(t, s.Commutative())

	require.NoError(t, tab.SetAssocComm("+", false))
	s, _ = tab.Lookup(plus)
	assert.False(t, s.AssocComm())
}

func TestMetadataSetters(t *testing.T) {
	tab := New()
	f, _ := tab.Intern("f", 2)

	require.NoError(t, tab.SetKBWeight(f, 3))
	require.NoError(t, tab.SetLRPOStatus(f, LRPOMultiset))
	require.NoError(t, tab.SetLexVal(f, 7))

	s, _ := tab.Lookup(f)
	assert.Equal(t, 3, s.KBWeight)
	assert.Equal(t, LRPOMultiset, s.LRPOStatus)
	assert.Equal(t, 7, s.LexVal)
	assert.Equal(t, "f/2", s.String())
}

func TestNextSkolemSymbol(t *testing.T) {
	tab := New()

	// A user symbol already named c1 must be skipped.
	_, err := tab.Intern("c1", 3)
	require.NoError(t, err)

	c, err := tab.NextSkolemSymbol(0)
	require.NoError(t, err)
	f, err := tab.NextSkolemSymbol(2)
	require.NoError(t, err)
	c2, err := tab.NextSkolemSymbol(0)
	require.NoError(t, err)

	sc, _ := tab.Lookup(c)
	sf, _ := tab.Lookup(f)
	sc2, _ := tab.Lookup(c2)

	assert.Equal(t, "c2", sc.Name)
	assert.Equal(t, "f1", sf.Name)
	assert.Equal(t, 2, sf.Arity)
	assert.Equal(t, "c3", sc2.Name)
	assert.True(t, sc.Skolem)
	assert.True(t, sf.Skolem)
}

func TestVariableStyle(t *testing.T) {
	tab := New()

	tests := []struct {
		style VariableStyle
		name  string
		want  bool
	}{
		{StandardStyle, "x", true},
		{StandardStyle, "u1", true},
		{StandardStyle, "a", false},
		{StandardStyle, "X", false},
		{PrologStyle, "X", true},
		{PrologStyle, "_G", true},
		{PrologStyle, "x", false},
		{IntegerStyle, "12", true},
		{IntegerStyle, "x", false},
	}
	for _, tt := range tests {
		tab.SetVariableStyle(tt.style)
		assert.Equal(t, tt.want, tab.IsVariableName(tt.name), "%v %q", tt.style, tt.name)
	}
	assert.False(t, tab.IsVariableName(""))
}

func TestParseTypes(t *testing.T) {
	tab := New()

	pi, ok := tab.ParseInfo("|")
	require.True(t, ok)
	assert.Equal(t, ParseInfo{Precedence: 790, Type: InfixRight}, pi)

	require.NoError(t, tab.SetParseType("@@", 600, InfixLeft))
	pi, ok = tab.ParseInfo("@@")
	require.True(t, ok)
	assert.Equal(t, InfixLeft, pi.Type)

	assert.ErrorIs(t, tab.SetParseType("@@", 1000, Infix), ErrBadPrecedence)
	assert.ErrorIs(t, tab.SetParseType("", 100, Infix), ErrInvalidName)

	require.NoError(t, tab.SetParseType("@@", 0, NothingSpecial))
	_, ok = tab.ParseInfo("@@")
	assert.False(t, ok)

	pt, ok := ParseTypeFromString("infix_right")
	require.True(t, ok)
	assert.Equal(t, InfixRight, pt)
	_, ok = ParseTypeFromString("sideways")
	assert.False(t, ok)
}

func TestRedeclare(t *testing.T) {
	tab := New()

	require.NoError(t, tab.Redeclare("disjunction", "or"))
	assert.Equal(t, "or", tab.RoleSymbol(RoleDisjunction))
	assert.True(t, tab.HasRole("or", RoleDisjunction))

	pi, ok := tab.ParseInfo("or")
	require.True(t, ok)
	assert.Equal(t, 790, pi.Precedence)
	_, ok = tab.ParseInfo("|")
	assert.False(t, ok)

	assert.ErrorIs(t, tab.Redeclare("sideways", "x"), ErrUnknownRole)
}
