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
	"github.com/AleutianAI/AleutianLADR/services/ladr/symbols"
	"github.com/AleutianAI/AleutianLADR/services/ladr/term"
)

// Skolemize replaces existentially quantified variables with skolem terms.
//
// Description:
//
//	f is first put in negation normal form. Each existential variable is
//	replaced by a fresh skolem symbol from the table applied to the
//	universal variables in scope, outermost first. A universal that
//	rebinds a variable already bound outside it is renamed to a fresh
//	number so skolem arguments stay distinct. Free variables are not
//	treated as universally bound; close the formula first when they
//	should be.
//
// Outputs:
//
//	*Formula - A formula with no Exists nodes.
//	error - A symbols error when no skolem symbol can be created.
func Skolemize(tab *symbols.Table, f *Formula) (*Formula, error) {
	s := &skolemizer{tab: tab, next: maxVar(f) + 1}
	return s.walk(NNF(f), nil)
}

type skolemizer struct {
	tab  *symbols.Table
	next int
}

func (s *skolemizer) walk(f *Formula, univ []int) (*Formula, error) {
	switch f.kind {
	case KindAtom:
		return f, nil
	case KindAll:
		v, name, body := f.qvar, f.qname, f.kids[0]
		if containsInt(univ, v) {
			nv, err := term.Variable(s.next)
			if err != nil {
				return nil, err
			}
			body = SubstituteVar(body, v, nv)
			v, name = s.next, ""
			s.next++
		}
		scope := append(append([]int(nil), univ...), v)
		nb, err := s.walk(body, scope)
		if err != nil {
			return nil, err
		}
		return All(v, name, nb), nil
	case KindExists:
		id, err := s.tab.NextSkolemSymbol(len(univ))
		if err != nil {
			return nil, err
		}
		args := make([]*term.Term, len(univ))
		for i, v := range univ {
			args[i] = term.MustVariable(v)
		}
		sk, err := term.FromSymbol(s.tab, id, args...)
		if err != nil {
			return nil, err
		}
		return s.walk(SubstituteVar(f.kids[0], f.qvar, sk), univ)
	}
	kids := make([]*Formula, len(f.kids))
	for i, k := range f.kids {
		nk, err := s.walk(k, univ)
		if err != nil {
			return nil, err
		}
		kids[i] = nk
	}
	c := *f
	c.kids = kids
	return &c, nil
}

func containsInt(a []int, v int) bool {
	for _, x := range a {
		if x == v {
			return true
		}
	}
	return false
}

// RemoveUniversalQuantifiers strips every All node, leaving its variable
// free.
func RemoveUniversalQuantifiers(f *Formula) *Formula {
	if f.kind == KindAll {
		return RemoveUniversalQuantifiers(f.kids[0])
	}
	if f.kind == KindAtom {
		return f
	}
	kids := make([]*Formula, len(f.kids))
	for i, k := range f.kids {
		kids[i] = RemoveUniversalQuantifiers(k)
	}
	c := *f
	c.kids = kids
	return &c
}

// clause is a disjunction of literals.
type clause []*Formula

// CNF returns the conjunctive normal form of a quantifier-free formula.
//
// Description:
//
//	The formula is put in negation normal form and disjunction is
//	distributed over conjunction. Duplicate literals within a clause are
//	merged and clauses containing a literal and its complement are
//	dropped. The result is TRUE when no clauses remain, FALSE when an
//	empty clause is produced, a single clause when one remains, and
//	otherwise a flat And of clauses. Each clause is a literal or a flat
//	Or of literals.
//
//	Quantifier nodes are treated as opaque literals.
func CNF(f *Formula) *Formula {
	return fromClauses(cnfClauses(NNF(f)))
}

// DNF returns the disjunctive normal form of a quantifier-free formula.
// It is the dual of the CNF of the dual.
func DNF(f *Formula) *Formula {
	return Dual(CNF(Dual(NNF(f))))
}

func cnfClauses(f *Formula) []clause {
	switch f.kind {
	case KindAnd:
		var out []clause
		for _, k := range f.kids {
			out = append(out, cnfClauses(k)...)
		}
		return out
	case KindOr:
		acc := []clause{{}}
		for _, k := range f.kids {
			kc := cnfClauses(k)
			next := make([]clause, 0, len(acc)*len(kc))
			for _, a := range acc {
				for _, b := range kc {
					merged := make(clause, 0, len(a)+len(b))
					merged = append(append(merged, a...), b...)
					next = append(next, merged)
				}
			}
			acc = next
		}
		return simplify(acc)
	default:
		return []clause{{f}}
	}
}

func simplify(cs []clause) []clause {
	out := make([]clause, 0, len(cs))
	for _, c := range cs {
		var lits clause
		taut := false
		for _, l := range c {
			dup := false
			for _, m := range lits {
				if Ident(l, m) {
					dup = true
					break
				}
				if complementary(l, m) {
					taut = true
				}
			}
			if !dup {
				lits = append(lits, l)
			}
		}
		if !taut {
			out = append(out, lits)
		}
	}
	return out
}

func complementary(a, b *Formula) bool {
	if a.kind == KindNot {
		return Ident(a.kids[0], b)
	}
	if b.kind == KindNot {
		return Ident(a, b.kids[0])
	}
	return false
}

func fromClauses(cs []clause) *Formula {
	if len(cs) == 0 {
		return True()
	}
	out := make([]*Formula, 0, len(cs))
	for _, c := range cs {
		switch len(c) {
		case 0:
			return False()
		case 1:
			out = append(out, c[0])
		default:
			out = append(out, Or(c...))
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return And(out...)
}

// ClausifyPrepare runs the clausification pipeline on f: universal
// closure, negation normal form, skolemization, removal of universal
// quantifiers, flattening and CNF.
func ClausifyPrepare(tab *symbols.Table, f *Formula) (*Formula, error) {
	sk, err := Skolemize(tab, UniversalClosureAll(f))
	if err != nil {
		return nil, err
	}
	return CNF(Flatten(RemoveUniversalQuantifiers(sk))), nil
}

// Clauses returns the clauses of a CNF formula: the kids of a
// conjunction, nothing for TRUE, or f itself.
func Clauses(f *Formula) []*Formula {
	if f.kind == KindAnd {
		return f.Kids()
	}
	return []*Formula{f}
}
