// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package options

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFlag(t *testing.T, r *Registry, name string) FlagID {
	t.Helper()
	id, ok := r.ResolveFlag(name)
	require.True(t, ok, name)
	return id
}

func mustParm(t *testing.T, r *Registry, name string) ParmID {
	t.Helper()
	id, ok := r.ResolveParm(name)
	require.True(t, ok, name)
	return id
}

func TestDefine(t *testing.T) {
	r := New()

	f, err := r.DefineFlag("x", false)
	require.NoError(t, err)
	_, err = r.DefineFlag("x", true)
	assert.ErrorIs(t, err, ErrDuplicateOption)

	// flags and parms have separate namespaces
	_, err = r.DefineParm("x", 3, 0, 10)
	require.NoError(t, err)

	_, err = r.DefineParm("y", 11, 0, 10)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = r.DefineStringParm("s", "c", "a", "b")
	assert.ErrorIs(t, err, ErrBadValue)

	got, ok := r.ResolveFlag("x")
	require.True(t, ok)
	assert.Equal(t, f, got)
	assert.Equal(t, "x", r.FlagName(f))

	_, ok = r.ResolveFlag("nope")
	assert.False(t, ok)
}

func TestSetParm_Range(t *testing.T) {
	r := New()
	id, err := r.DefineParm("n", 0, -1, 5)
	require.NoError(t, err)

	require.NoError(t, r.SetParm(id, 5))
	assert.Equal(t, 5, r.Parm(id))

	err = r.SetParm(id, 6)
	var re *RangeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "n", re.Name)
	assert.Equal(t, 5, r.Parm(id))

	assert.ErrorIs(t, r.SetParm(ParmID(99), 1), ErrUnknownOption)
}

func TestSetStringParm(t *testing.T) {
	r := New()
	id, err := r.DefineStringParm("order", "lpo", "lpo", "kbo")
	require.NoError(t, err)

	require.NoError(t, r.SetStringParm(id, "kbo"))
	assert.Equal(t, "kbo", r.StringParm(id))
	assert.ErrorIs(t, r.SetStringParm(id, "rpo"), ErrBadValue)
	assert.Equal(t, "kbo", r.StringParm(id))
}

func TestSetFlag_UnknownID(t *testing.T) {
	r := New()
	_, err := r.SetFlag(FlagID(3), true)
	assert.ErrorIs(t, err, ErrUnknownOption)
	assert.False(t, r.Flag(FlagID(3)))
}

func TestSetFlag_Dependencies(t *testing.T) {
	r := New()
	a, _ := r.DefineFlag("a", false)
	b, _ := r.DefineFlag("b", false)
	c, _ := r.DefineFlag("c", true)
	n, _ := r.DefineParm("n", 0, 0, 10)

	require.NoError(t, r.FlagFlagDependency(a, true, b, true))
	require.NoError(t, r.FlagFlagDependency(b, true, c, false))
	require.NoError(t, r.FlagParmDependency(a, true, n, 7))
	require.NoError(t, r.FlagFlagDependency(a, false, b, false))

	cons, err := r.SetFlag(a, true)
	require.NoError(t, err)
	require.Len(t, cons, 3)
	assert.Equal(t, "set(b)", cons[0].String())
	assert.Equal(t, "set(a)", cons[0].Cause)
	assert.Equal(t, "clear(c)", cons[1].String())
	assert.Equal(t, "set(b)", cons[1].Cause)
	assert.Equal(t, "assign(n, 7)", cons[2].String())

	assert.True(t, r.Flag(b))
	assert.False(t, r.Flag(c))
	assert.Equal(t, 7, r.Parm(n))

	cons, err = r.SetFlag(a, false)
	require.NoError(t, err)
	require.Len(t, cons, 1)
	assert.Equal(t, "clear(b)", cons[0].String())
}

func TestSetFlag_DependencyCycleTerminates(t *testing.T) {
	r := New()
	a, _ := r.DefineFlag("a", false)
	b, _ := r.DefineFlag("b", false)
	require.NoError(t, r.FlagFlagDependency(a, true, b, true))
	require.NoError(t, r.FlagFlagDependency(b, true, a, true))

	cons, err := r.SetFlag(a, true)
	require.NoError(t, err)
	require.Len(t, cons, 2)
	assert.True(t, r.Flag(b))
}

func TestDependency_Validation(t *testing.T) {
	r := New()
	a, _ := r.DefineFlag("a", false)
	n, _ := r.DefineParm("n", 0, 0, 1)
	s, _ := r.DefineStringParm("s", "x", "x", "y")

	assert.ErrorIs(t, r.FlagParmDependency(a, true, n, 2), ErrOutOfRange)
	assert.ErrorIs(t, r.FlagStringParmDependency(a, true, s, "z"), ErrBadValue)
	assert.ErrorIs(t, r.FlagFlagDependency(a, true, FlagID(9), true), ErrUnknownOption)
}

func TestStandard_Auto(t *testing.T) {
	r := NewStandard()
	auto := mustFlag(t, r, FlagAuto)
	assert.True(t, r.Flag(auto))

	cons, err := r.SetFlag(auto, false)
	require.NoError(t, err)
	var names []string
	for _, c := range cons {
		names = append(names, c.String())
	}
	assert.Equal(t, []string{
		"clear(auto_setup)",
		"clear(auto_limits)",
		"clear(auto_denials)",
		"clear(auto_inference)",
		"clear(auto_process)",
	}, names)
	assert.False(t, r.Flag(mustFlag(t, r, "auto_process")))
}

func TestStandard_LightestFirst(t *testing.T) {
	r := NewStandard()
	_, err := r.SetFlag(mustFlag(t, r, "lightest_first"), true)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Parm(mustParm(t, r, "weight_part")))
	assert.Equal(t, 0, r.Parm(mustParm(t, r, "age_part")))
}

func TestStandard_IgnoreDependencies(t *testing.T) {
	r := NewStandard()
	_, err := r.SetFlag(mustFlag(t, r, IgnoreDependenciesFlag), true)
	require.NoError(t, err)

	cons, err := r.SetFlag(mustFlag(t, r, FlagAuto), false)
	require.NoError(t, err)
	assert.Empty(t, cons)
	assert.True(t, r.Flag(mustFlag(t, r, "auto_setup")))
}

func TestStandard_Independent(t *testing.T) {
	a, b := NewStandard(), NewStandard()
	id := mustFlag(t, a, FlagPrologStyleVariables)
	_, err := a.SetFlag(id, true)
	require.NoError(t, err)
	assert.True(t, a.Flag(id))
	assert.False(t, b.Flag(id))
}

func TestChanged(t *testing.T) {
	r := NewStandard()
	_, err := r.SetFlag(mustFlag(t, r, "paramodulation"), true)
	require.NoError(t, err)
	require.NoError(t, r.SetParm(mustParm(t, r, ParmMaxSeconds), 30))
	order, ok := r.ResolveStringParm(StringParmOrder)
	require.True(t, ok)
	require.NoError(t, r.SetStringParm(order, "kbo"))

	got := r.Changed()
	assert.Equal(t, map[string]bool{"paramodulation": true}, got.Flags)
	assert.Equal(t, map[string]int{"max_seconds": 30}, got.Parms)
	assert.Equal(t, []string{
		"set(paramodulation).",
		"assign(max_seconds, 30).",
		"assign(order, kbo).",
	}, got.Directives())

	assert.Len(t, r.Snapshot().Flags, len(standardFlags))
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewStandard()
	id := mustFlag(t, r, "paramodulation")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(v bool) {
			defer wg.Done()
			_, _ = r.SetFlag(id, v)
			_ = r.Flag(id)
			_ = r.Snapshot()
		}(i%2 == 0)
	}
	wg.Wait()
}
