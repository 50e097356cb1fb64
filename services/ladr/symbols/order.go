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

import "fmt"

// SetLexOrder ranks names in ascending precedence: the first name is the
// smallest. Every arity of a name shares its rank, including symbols
// interned after the call. A later call replaces the ranking.
func (t *Table) SetLexOrder(names []string) error {
	return t.setRanks(&t.lexRank, names)
}

// SetPredicateOrder ranks relation symbols. It takes priority over the
// lex order for symbols of kind Relation.
func (t *Table) SetPredicateOrder(names []string) error {
	return t.setRanks(&t.predRank, names)
}

// SetFunctionOrder ranks function symbols. It takes priority over the
// lex order for symbols of kind Function.
func (t *Table) SetFunctionOrder(names []string) error {
	return t.setRanks(&t.funcRank, names)
}

func (t *Table) setRanks(dst *map[string]int, names []string) error {
	ranks := make(map[string]int, len(names))
	for i, n := range names {
		if n == "" {
			return ErrInvalidName
		}
		if _, dup := ranks[n]; dup {
			return fmt.Errorf("%w: %s listed twice", ErrSymbolConflict, n)
		}
		ranks[n] = i + 1
	}
	t.mu.Lock()
	*dst = ranks
	t.mu.Unlock()
	return nil
}

// SetSkolemNames marks every symbol with one of the names as a skolem
// symbol, now and when interned later.
func (t *Table) SetSkolemNames(names []string) error {
	for _, n := range names {
		if n == "" {
			return ErrInvalidName
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, n := range names {
		t.skolems[n] = true
		for _, id := range t.byName[n] {
			t.syms[id-1].Skolem = true
		}
	}
	return nil
}

// LexRank returns the generic lex rank of a name, 0 when unranked.
func (t *Table) LexRank(name string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lexRank[name]
}

// effectiveLexLocked returns the rank used for precedence; 0 is unassigned.
func (t *Table) effectiveLexLocked(s *Symbol) int {
	if s.LexVal > 0 {
		return s.LexVal
	}
	switch s.Kind {
	case KindRelation:
		if r, ok := t.predRank[s.Name]; ok {
			return r
		}
	case KindFunction:
		if r, ok := t.funcRank[s.Name]; ok {
			return r
		}
	}
	return t.lexRank[s.Name]
}

// PrecedenceCompare compares the precedence of two symbols.
//
// Description:
//
//	Symbols with an assigned lex value compare by it. Every unassigned
//	symbol is greater than every assigned one, and unassigned symbols
//	compare by insertion order. Ties between distinct symbols also fall
//	back to insertion order, so the relation is total: EQ only for a == b.
//
// Outputs:
//
//	Order - LT, GT or EQ. Unknown IDs compare as EQ.
func (t *Table) PrecedenceCompare(a, b ID) Order {
	if a == b {
		return EQ
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	sa, okA := t.getLocked(a)
	sb, okB := t.getLocked(b)
	if !okA || !okB {
		return EQ
	}

	la, lb := t.effectiveLexLocked(sa), t.effectiveLexLocked(sb)
	switch {
	case la > 0 && lb == 0:
		return LT
	case la == 0 && lb > 0:
		return GT
	case la < lb:
		return LT
	case la > lb:
		return GT
	case a < b:
		return LT
	default:
		return GT
	}
}
