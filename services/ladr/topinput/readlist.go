// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package topinput

import (
	"github.com/AleutianAI/AleutianLADR/services/ladr/formula"
	"github.com/AleutianAI/AleutianLADR/services/ladr/symbols"
	"github.com/AleutianAI/AleutianLADR/services/ladr/term"
)

// WildcardName is the list name that collects unmatched lists.
const WildcardName = "*"

// ListKind is what a Readlist holds.
type ListKind int

const (
	// FormulaList holds formulas, from formulas() or clauses().
	FormulaList ListKind = iota
	// TermList holds terms, from list() or terms().
	TermList
)

func (k ListKind) String() string {
	if k == TermList {
		return "terms"
	}
	return "formulas"
}

// Readlist is a named list of formulas or terms.
type Readlist struct {
	Name     string
	Kind     ListKind
	Wildcard bool

	// Formulas is set for FormulaList, Terms for TermList.
	Formulas []*formula.Formula
	Terms    []*term.Term
}

// Len returns the number of items.
func (l *Readlist) Len() int {
	if l.Kind == TermList {
		return len(l.Terms)
	}
	return len(l.Formulas)
}

// Result is the outcome of interpreting all streams.
type Result struct {
	Symbols *symbols.Table
	Options OptionRegistry

	// Lists in the order they were created.
	Lists []*Readlist

	// Streams are the names of the streams read.
	Streams []string

	// Directives counts the directives applied.
	Directives int
}

// List returns the list with the exact name and kind.
func (r *Result) List(name string, kind ListKind) (*Readlist, bool) {
	return findList(r.Lists, name, kind)
}

// Formulas returns the items of a formula list, or nil.
func (r *Result) Formulas(name string) []*formula.Formula {
	if l, ok := r.List(name, FormulaList); ok {
		return l.Formulas
	}
	return nil
}

// Terms returns the items of a term list, or nil.
func (r *Result) Terms(name string) []*term.Term {
	if l, ok := r.List(name, TermList); ok {
		return l.Terms
	}
	return nil
}

func findList(lists []*Readlist, name string, kind ListKind) (*Readlist, bool) {
	for _, l := range lists {
		if l.Name == name && l.Kind == kind {
			return l, true
		}
	}
	return nil, false
}

// list returns the list for (name, kind), creating it if needed.
func (in *Interpreter) list(name string, kind ListKind) *Readlist {
	if l, ok := findList(in.lists, name, kind); ok {
		return l
	}
	l := &Readlist{Name: name, Kind: kind, Wildcard: name == WildcardName}
	in.lists = append(in.lists, l)
	return l
}

// target resolves a list directive to the list that receives its items:
// the exact match, then the wildcard list of the same kind, then a new
// list.
func (in *Interpreter) target(name string, kind ListKind) *Readlist {
	if l, ok := findList(in.lists, name, kind); ok {
		return l
	}
	if !in.cfg.DisableWildcard {
		if l, ok := findList(in.lists, WildcardName, kind); ok {
			return l
		}
	}
	return in.list(name, kind)
}
