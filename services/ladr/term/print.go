// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package term

import (
	"strings"

	"github.com/AleutianAI/AleutianLADR/services/ladr/symbols"
)

const symbolChars = "+-*/\\^<>=`~:?@&|!#';"

// IsNameChar reports whether c may appear in an alphanumeric name.
func IsNameChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// IsSymbolChar reports whether c may appear in an operator-like name.
func IsSymbolChar(c byte) bool {
	return strings.IndexByte(symbolChars, c) >= 0
}

// QuoteName returns name, in double quotes when it is neither all name
// characters nor all symbol characters.
func QuoteName(name string) string {
	if name == "" {
		return `""`
	}
	allName, allSym := true, true
	for i := 0; i < len(name); i++ {
		allName = allName && IsNameChar(name[i])
		allSym = allSym && IsSymbolChar(name[i])
	}
	if allName || allSym {
		return name
	}
	return `"` + name + `"`
}

// Printer renders terms using the table's parse types, so the output can
// be read back by the reader.
type Printer struct {
	Tab *symbols.Table

	// VarName names variable n. Nil uses VariableName with the table's
	// variable style.
	VarName func(n int) string
}

// Sprint renders t with canonical variable names.
func Sprint(tab *symbols.Table, t *Term) string {
	return Printer{Tab: tab}.String(t)
}

// String renders t.
func (p Printer) String(t *Term) string {
	var b strings.Builder
	p.Write(&b, t, symbols.MaxPrecedence)
	return b.String()
}

// Write renders t into b. Operator terms whose precedence exceeds max are
// parenthesized.
func (p Printer) Write(b *strings.Builder, t *Term, max int) {
	if t == nil {
		b.WriteString("<nil>")
		return
	}
	if t.kind == KindVariable {
		b.WriteString(p.varName(t.varnum))
		return
	}
	s, ok := p.Tab.Lookup(t.sym)
	if !ok {
		b.WriteString("?")
		return
	}
	if (s.Name == ConsName && s.Arity == 2) || (s.Name == NilName && s.Arity == 0) {
		p.writeList(b, t)
		return
	}
	if t.kind == KindConstant {
		b.WriteString(QuoteName(s.Name))
		return
	}

	pi := s.Parse
	switch {
	case s.Arity == 2 && pi.Type.IsInfix():
		lmax, rmax := pi.Precedence-1, pi.Precedence-1
		switch pi.Type {
		case symbols.InfixLeft:
			lmax = pi.Precedence
		case symbols.InfixRight:
			rmax = pi.Precedence
		}
		p.wrap(b, pi.Precedence > max, func() {
			p.Write(b, t.args[0], lmax)
			b.WriteString(" ")
			b.WriteString(QuoteName(s.Name))
			b.WriteString(" ")
			p.Write(b, t.args[1], rmax)
		})
	case s.Arity == 1 && pi.Type.IsPrefix():
		amax := pi.Precedence
		if pi.Type == symbols.PrefixParen {
			amax--
		}
		p.wrap(b, pi.Precedence > max, func() {
			var arg strings.Builder
			p.Write(&arg, t.args[0], amax)
			b.WriteString(QuoteName(s.Name))
			if needsSpace(s.Name, arg.String()) {
				b.WriteString(" ")
			}
			b.WriteString(arg.String())
		})
	case s.Arity == 1 && pi.Type.IsPostfix():
		amax := pi.Precedence
		if pi.Type == symbols.PostfixParen {
			amax--
		}
		p.wrap(b, pi.Precedence > max, func() {
			p.Write(b, t.args[0], amax)
			b.WriteString(QuoteName(s.Name))
		})
	default:
		b.WriteString(QuoteName(s.Name))
		b.WriteString("(")
		for i, a := range t.args {
			if i > 0 {
				b.WriteString(",")
			}
			p.Write(b, a, symbols.MaxPrecedence)
		}
		b.WriteString(")")
	}
}

func (p Printer) writeList(b *strings.Builder, t *Term) {
	b.WriteString("[")
	first := true
	for IsCons(p.Tab, t) {
		if !first {
			b.WriteString(",")
		}
		first = false
		p.Write(b, t.args[0], symbols.MaxPrecedence)
		t = t.args[1]
	}
	if !IsNil(p.Tab, t) {
		b.WriteString(":")
		p.Write(b, t, symbols.MaxPrecedence)
	}
	b.WriteString("]")
}

func (p Printer) wrap(b *strings.Builder, paren bool, fn func()) {
	if paren {
		b.WriteString("(")
	}
	fn()
	if paren {
		b.WriteString(")")
	}
}

func (p Printer) varName(n int) string {
	if p.VarName != nil {
		if s := p.VarName(n); s != "" {
			return s
		}
	}
	return VariableName(p.Tab.VariableStyle(), n)
}

// needsSpace reports whether op and the following text would fuse into one
// token when printed together.
func needsSpace(op, next string) bool {
	if op == "" || next == "" {
		return false
	}
	last, first := op[len(op)-1], next[0]
	return (IsNameChar(last) && IsNameChar(first)) || (IsSymbolChar(last) && IsSymbolChar(first))
}
