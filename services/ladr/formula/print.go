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
	"strings"

	"github.com/AleutianAI/AleutianLADR/services/ladr/symbols"
	"github.com/AleutianAI/AleutianLADR/services/ladr/term"
)

// quantifierPrecedence is the binding strength of a quantifier body.
const quantifierPrecedence = 350

// Sprint renders f with the table's connective symbols and parse types.
// Bound variables print with their binder names.
func Sprint(tab *symbols.Table, f *Formula) string {
	p := &printer{tab: tab, names: make(map[int][]string)}
	var b strings.Builder
	p.write(&b, f, symbols.MaxPrecedence)
	return b.String()
}

type printer struct {
	tab   *symbols.Table
	names map[int][]string
}

func (p *printer) varName(n int) string {
	if s := p.names[n]; len(s) > 0 {
		return s[len(s)-1]
	}
	return ""
}

func (p *printer) op(r symbols.Role, prec int, typ symbols.ParseType) (string, symbols.ParseInfo) {
	name := p.tab.RoleSymbol(r)
	if pi, ok := p.tab.ParseInfo(name); ok {
		return name, pi
	}
	return name, symbols.ParseInfo{Precedence: prec, Type: typ}
}

func (p *printer) write(b *strings.Builder, f *Formula, max int) {
	if len(f.attrs) > 0 {
		hash, pi := p.op(symbols.RoleAttribute, 810, symbols.InfixRight)
		bare := *f
		bare.attrs = nil
		paren(b, pi.Precedence > max, func() {
			p.write(b, &bare, pi.Precedence-1)
			tp := term.Printer{Tab: p.tab, VarName: p.varName}
			for _, a := range f.attrs {
				b.WriteString(" " + hash + " ")
				tp.Write(b, a, pi.Precedence-1)
			}
		})
		return
	}

	switch f.kind {
	case KindAtom:
		term.Printer{Tab: p.tab, VarName: p.varName}.Write(b, f.atom, max)
	case KindAnd, KindOr:
		role, empty := symbols.RoleConjunction, symbols.RoleTrue
		dflt := 780
		if f.kind == KindOr {
			role, empty, dflt = symbols.RoleDisjunction, symbols.RoleFalse, 790
		}
		switch len(f.kids) {
		case 0:
			b.WriteString(p.tab.RoleSymbol(empty))
			return
		case 1:
			p.write(b, f.kids[0], max)
			return
		}
		name, pi := p.op(role, dflt, symbols.InfixRight)
		p.infixChain(b, name, pi, f.kids, max)
	case KindNot:
		name, pi := p.op(symbols.RoleNegation, 350, symbols.Prefix)
		amax := pi.Precedence
		if pi.Type == symbols.PrefixParen {
			amax--
		}
		paren(b, pi.Precedence > max, func() {
			var kid strings.Builder
			p.write(&kid, f.kids[0], amax)
			b.WriteString(name)
			if fuses(name, kid.String()) {
				b.WriteString(" ")
			}
			b.WriteString(kid.String())
		})
	case KindImp, KindImpby, KindIff:
		role := map[Kind]symbols.Role{
			KindImp:   symbols.RoleImplication,
			KindImpby: symbols.RoleBackwardImplication,
			KindIff:   symbols.RoleEquivalence,
		}[f.kind]
		name, pi := p.op(role, 800, symbols.Infix)
		p.infixChain(b, name, pi, f.kids, max)
	case KindAll, KindExists:
		role := symbols.RoleUniversal
		if f.kind == KindExists {
			role = symbols.RoleExistential
		}
		qname, _ := f.QVar()
		p.names[f.qvar] = append(p.names[f.qvar], qname)
		paren(b, quantifierPrecedence > max, func() {
			b.WriteString(p.tab.RoleSymbol(role) + " " + qname + " ")
			p.write(b, f.kids[0], quantifierPrecedence)
		})
		p.names[f.qvar] = p.names[f.qvar][:len(p.names[f.qvar])-1]
	}
}

func (p *printer) infixChain(b *strings.Builder, name string, pi symbols.ParseInfo, kids []*Formula, max int) {
	lmax, rmax := pi.Precedence-1, pi.Precedence-1
	switch pi.Type {
	case symbols.InfixLeft:
		lmax = pi.Precedence
	case symbols.InfixRight:
		rmax = pi.Precedence
	}
	paren(b, pi.Precedence > max, func() {
		for i, k := range kids {
			if i > 0 {
				b.WriteString(" " + name + " ")
			}
			m := lmax
			if i == len(kids)-1 {
				m = rmax
			}
			p.write(b, k, m)
		}
	})
}

func paren(b *strings.Builder, on bool, fn func()) {
	if on {
		b.WriteString("(")
	}
	fn()
	if on {
		b.WriteString(")")
	}
}

func fuses(op, next string) bool {
	if op == "" || next == "" {
		return false
	}
	last, first := op[len(op)-1], next[0]
	return (term.IsNameChar(last) && term.IsNameChar(first)) ||
		(term.IsSymbolChar(last) && term.IsSymbolChar(first))
}
