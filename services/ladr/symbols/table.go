// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package symbols provides the symbol table shared by the term reader,
// the term and formula models, and the directive interpreter.
//
// The table maps (name, arity) pairs to stable integer IDs and owns the
// metadata attached to each symbol: kind, unification theory, ordering
// weights and skolem marks. Operator parse types, ordering declarations
// and operator roles are keyed by name, so a declaration made before a
// symbol is first interned still applies to it.
//
// # Ownership Model
//
// There is no package-level table. Callers construct one with New() and
// pass it to every component that needs it; tests get isolation by using
// a fresh table.
//
// # Thread Safety
//
// Table is safe for concurrent use. Interning and metadata updates take
// an exclusive lock, so ID assignment stays strictly monotonic.
package symbols

import (
	"fmt"
	"sort"
	"sync"
)

type symKey struct {
	name  string
	arity int
}

// Table is the symbol registry.
type Table struct {
	mu sync.RWMutex

	syms   []Symbol // index is ID-1
	byKey  map[symKey]ID
	byName map[string][]ID

	parse map[string]ParseInfo

	lexRank  map[string]int
	predRank map[string]int
	funcRank map[string]int
	skolems  map[string]bool

	roles    map[Role]string
	varStyle VariableStyle

	nextSkolemConst int
	nextSkolemFunc  int
}

// New creates a table with the default operator roles and the standard
// LADR parse types declared.
//
// Outputs:
//
//	*Table - Ready to use. Safe for concurrent use.
func New() *Table {
	t := &Table{
		byKey:    make(map[symKey]ID),
		byName:   make(map[string][]ID),
		parse:    make(map[string]ParseInfo),
		lexRank:  make(map[string]int),
		predRank: make(map[string]int),
		funcRank: make(map[string]int),
		skolems:  make(map[string]bool),
		roles:    defaultRoles(),
	}
	t.DeclareStandardParseTypes()
	return t
}

// Intern returns the ID for (name, arity), creating the symbol if absent.
//
// Description:
//
//	Idempotent: the same pair always yields the same ID. The same name
//	with a different arity is a different symbol with its own ID. Use
//	CheckSingleArity when a name must have only one arity.
//
// Inputs:
//
//	name - Symbol name. Must not be empty.
//	arity - Number of arguments, 0..MaxArity.
//
// Outputs:
//
//	ID - The symbol ID.
//	error - ErrInvalidName, ErrArityTooLarge, or ErrSymbolTableFull.
//
// Thread Safety: Safe for concurrent use.
func (t *Table) Intern(name string, arity int) (ID, error) {
	if name == "" {
		return 0, ErrInvalidName
	}
	if arity < 0 || arity > MaxArity {
		return 0, fmt.Errorf("%w: %s/%d", ErrArityTooLarge, name, arity)
	}

	k := symKey{name: name, arity: arity}

	t.mu.RLock()
	id, ok := t.byKey[k]
	t.mu.RUnlock()
	if ok {
		return id, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.byKey[k]; ok {
		return id, nil
	}
	return t.insertLocked(name, arity)
}

func (t *Table) insertLocked(name string, arity int) (ID, error) {
	if len(t.syms) >= MaxSymbols {
		return 0, ErrSymbolTableFull
	}
	id := ID(len(t.syms) + 1)
	t.syms = append(t.syms, Symbol{
		ID:     id,
		Name:   name,
		Arity:  arity,
		Skolem: t.skolems[name],
	})
	t.byKey[symKey{name: name, arity: arity}] = id
	t.byName[name] = append(t.byName[name], id)
	return id, nil
}

// Find returns the ID for (name, arity) without creating it.
func (t *Table) Find(name string, arity int) (ID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byKey[symKey{name: name, arity: arity}]
	return id, ok
}

// Lookup returns a snapshot of the symbol with the given ID.
//
// The returned Symbol has Parse filled in from the name's parse type.
func (t *Table) Lookup(id ID) (Symbol, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.getLocked(id)
	if !ok {
		return Symbol{}, false
	}
	s.Parse = t.parse[s.Name]
	return *s, true
}

func (t *Table) getLocked(id ID) (*Symbol, bool) {
	if id <= 0 || int(id) > len(t.syms) {
		return nil, false
	}
	return &t.syms[id-1], true
}

// Name returns the name of a symbol, or "" for an unknown ID.
func (t *Table) Name(id ID) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.getLocked(id); ok {
		return s.Name
	}
	return ""
}

// Arity returns the arity of a symbol, or -1 for an unknown ID.
func (t *Table) Arity(id ID) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.getLocked(id); ok {
		return s.Arity
	}
	return -1
}

// Is reports whether id is the symbol (name, arity).
func (t *Table) Is(id ID, name string, arity int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.getLocked(id)
	return ok && s.Name == name && s.Arity == arity
}

// Arities returns every arity the name is interned with, ascending.
func (t *Table) Arities(name string) []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := t.byName[name]
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.syms[id-1].Arity)
	}
	sort.Ints(out)
	return out
}

// CheckSingleArity returns a *ConflictError when name is interned with
// more than one arity.
func (t *Table) CheckSingleArity(name string) error {
	if arities := t.Arities(name); len(arities) > 1 {
		return newArityConflict(name, arities)
	}
	return nil
}

// Len returns the number of interned symbols.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.syms)
}

// All returns snapshots of every symbol in ID order.
func (t *Table) All() []Symbol {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Symbol, len(t.syms))
	for i, s := range t.syms {
		s.Parse = t.parse[s.Name]
		out[i] = s
	}
	return out
}

// SetKind declares a symbol as a function or relation.
//
// Redeclaring with the same kind is a no-op. Declaring a symbol whose kind
// is already set to something else returns a *ConflictError.
func (t *Table) SetKind(id ID, kind Kind) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.getLocked(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSymbol, id)
	}
	if s.Kind != KindUnspecified && kind != KindUnspecified && s.Kind != kind {
		return &ConflictError{Name: s.Name, Have: s.Kind, Want: kind}
	}
	s.Kind = kind
	return nil
}

// SetLexVal assigns an explicit lexical value. Zero clears it.
func (t *Table) SetLexVal(id ID, v int) error {
	return t.update(id, func(s *Symbol) { s.LexVal = v })
}

// SetKBWeight assigns the Knuth-Bendix weight.
func (t *Table) SetKBWeight(id ID, w int) error {
	return t.update(id, func(s *Symbol) { s.KBWeight = w })
}

// SetLRPOStatus assigns the LRPO status.
func (t *Table) SetLRPOStatus(id ID, st LRPOStatus) error {
	return t.update(id, func(s *Symbol) { s.LRPOStatus = st })
}

// SetSkolem marks a symbol as a skolem symbol.
func (t *Table) SetSkolem(id ID) error {
	return t.update(id, func(s *Symbol) { s.Skolem = true })
}

func (t *Table) update(id ID, fn func(*Symbol)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.getLocked(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSymbol, id)
	}
	fn(s)
	return nil
}

// SetAssocComm marks or unmarks name/2 as associative-commutative.
func (t *Table) SetAssocComm(name string, on bool) error {
	return t.setTheory(name, TheoryAssocComm, on)
}

// SetCommutative marks or unmarks name/2 as commutative.
func (t *Table) SetCommutative(name string, on bool) error {
	return t.setTheory(name, TheoryCommutative, on)
}

func (t *Table) setTheory(name string, th Theory, on bool) error {
	id, err := t.Intern(name, 2)
	if err != nil {
		return err
	}
	return t.update(id, func(s *Symbol) {
		switch {
		case on:
			s.Theory = th
		case s.Theory == th:
			s.Theory = TheoryNone
		}
	})
}

// NextSkolemSymbol creates a fresh skolem symbol of the given arity.
//
// Description:
//
//	Constants are named c1, c2, ... and functions f1, f2, ... . Names
//	already present in the table with any arity are skipped, so the new
//	symbol never collides with a declared name.
//
// Outputs:
//
//	ID - The new symbol, marked Skolem.
//	error - ErrArityTooLarge or ErrSymbolTableFull.
//
// Thread Safety: Safe for concurrent use.
func (t *Table) NextSkolemSymbol(arity int) (ID, error) {
	if arity < 0 || arity > MaxArity {
		return 0, fmt.Errorf("%w: skolem/%d", ErrArityTooLarge, arity)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	prefix, counter := "f", &t.nextSkolemFunc
	if arity == 0 {
		prefix, counter = "c", &t.nextSkolemConst
	}
	for {
		*counter++
		name := fmt.Sprintf("%s%d", prefix, *counter)
		if _, used := t.byName[name]; used {
			continue
		}
		id, err := t.insertLocked(name, arity)
		if err != nil {
			return 0, err
		}
		t.syms[id-1].Skolem = true
		return id, nil
	}
}

// SetVariableStyle selects which names the reader treats as variables.
func (t *Table) SetVariableStyle(st VariableStyle) {
	t.mu.Lock()
	t.varStyle = st
	t.mu.Unlock()
}

// VariableStyle returns the current variable style.
func (t *Table) VariableStyle() VariableStyle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.varStyle
}

// IsVariableName reports whether name denotes a variable under the
// current variable style.
func (t *Table) IsVariableName(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	switch t.VariableStyle() {
	case PrologStyle:
		return (c >= 'A' && c <= 'Z') || c == '_'
	case IntegerStyle:
		for i := 0; i < len(name); i++ {
			if name[i] < '0' || name[i] > '9' {
				return false
			}
		}
		return true
	default:
		return c >= 'u' && c <= 'z'
	}
}
