// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package reader

import (
	"github.com/AleutianAI/AleutianLADR/services/ladr/symbols"
	"github.com/AleutianAI/AleutianLADR/services/ladr/term"
)

// quantifierPrecedence is the binding strength of a quantifier body, the
// same as prefix negation.
const quantifierPrecedence = 350

// parse reads a term whose outermost operator has precedence at most max.
// It returns the term and its precedence, which is 0 for anything that is
// not a bare operator application.
func (r *Reader) parse(max int) (*term.Term, int, error) {
	left, lprec, err := r.primary()
	if err != nil {
		return nil, 0, err
	}

	for {
		tok, err := r.peek(0)
		if err != nil {
			return nil, 0, err
		}
		pi, ok := r.operator(tok)
		if !ok || pi.Precedence > max {
			return left, lprec, nil
		}
		p := pi.Precedence

		switch {
		case pi.Type.IsInfix():
			lmax, rmax := p-1, p-1
			switch pi.Type {
			case symbols.InfixLeft:
				lmax = p
			case symbols.InfixRight:
				rmax = p
			}
			if lprec > lmax {
				return left, lprec, nil
			}
			if _, err := r.take(); err != nil {
				return nil, 0, err
			}
			right, _, err := r.parse(rmax)
			if err != nil {
				return nil, 0, err
			}
			if left, err = r.apply(tok, tok.text, left, right); err != nil {
				return nil, 0, err
			}
			lprec = p

		case pi.Type.IsPostfix():
			amax := p
			if pi.Type == symbols.PostfixParen {
				amax = p - 1
			}
			if lprec > amax {
				return left, lprec, nil
			}
			if _, err := r.take(); err != nil {
				return nil, 0, err
			}
			if left, err = r.apply(tok, tok.text, left); err != nil {
				return nil, 0, err
			}
			lprec = p

		default:
			return left, lprec, nil
		}
	}
}

// primary reads an operand: a parenthesized term, a list, an application,
// a quantified formula, a prefix operation, or a constant.
func (r *Reader) primary() (*term.Term, int, error) {
	tok, err := r.take()
	if err != nil {
		return nil, 0, err
	}

	switch tok.kind {
	case tokLParen, tokCallParen:
		t, _, err := r.parse(symbols.MaxPrecedence)
		if err != nil {
			return nil, 0, err
		}
		if err := r.expect(tokRParen, "expected ')'"); err != nil {
			return nil, 0, err
		}
		return t, 0, nil

	case tokLBracket:
		t, err := r.list(tok)
		return t, 0, err

	case tokName, tokSymbol, tokQuoted:
		next, err := r.peek(0)
		if err != nil {
			return nil, 0, err
		}
		if next.kind == tokCallParen {
			t, err := r.application(tok)
			return t, 0, err
		}
		if tok.kind == tokQuoted {
			t, err := r.apply(tok, tok.text)
			return t, 0, err
		}
		if r.isQuantifier(tok.text) {
			if t, ok, err := r.quantified(tok); ok || err != nil {
				return t, quantifierPrecedence, err
			}
		}
		if pi, ok := r.tab.ParseInfo(tok.text); ok && pi.Type.IsPrefix() {
			starts, err := r.startsTerm(0)
			if err != nil {
				return nil, 0, err
			}
			if starts {
				amax := pi.Precedence
				if pi.Type == symbols.PrefixParen {
					amax--
				}
				arg, _, err := r.parse(amax)
				if err != nil {
					return nil, 0, err
				}
				t, err := r.apply(tok, tok.text, arg)
				return t, pi.Precedence, err
			}
		}
		t, err := r.apply(tok, tok.text)
		return t, 0, err
	}

	return nil, 0, r.errorAt(tok, "unexpected "+describe(tok))
}

// application reads the argument list of name(...). The call paren is the
// next token.
func (r *Reader) application(name token) (*term.Term, error) {
	if _, err := r.take(); err != nil {
		return nil, err
	}
	if next, err := r.peek(0); err != nil {
		return nil, err
	} else if next.kind == tokRParen {
		return nil, r.errorAt(next, "empty argument list for "+describe(name))
	}

	var args []*term.Term
	for {
		arg, _, err := r.parse(symbols.MaxPrecedence)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		sep, err := r.take()
		if err != nil {
			return nil, err
		}
		switch sep.kind {
		case tokComma:
			continue
		case tokRParen:
			return r.apply(name, name.text, args...)
		default:
			return nil, r.errorAt(sep, "expected ',' or ')', found "+describe(sep))
		}
	}
}

// list reads the rest of a bracketed list after '['.
func (r *Reader) list(open token) (*term.Term, error) {
	next, err := r.peek(0)
	if err != nil {
		return nil, err
	}
	if next.kind == tokRBracket {
		_, _ = r.take()
		return r.apply(open, term.NilName)
	}

	var items []*term.Term
	var tail *term.Term
	for {
		item, _, err := r.parse(symbols.MaxPrecedence)
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		sep, err := r.take()
		if err != nil {
			return nil, err
		}
		switch {
		case sep.kind == tokComma:
			continue
		case sep.kind == tokSymbol && sep.text == ":":
			if tail, _, err = r.parse(symbols.MaxPrecedence); err != nil {
				return nil, err
			}
			if err := r.expect(tokRBracket, "expected ']' after list tail"); err != nil {
				return nil, err
			}
		case sep.kind == tokRBracket:
		default:
			return nil, r.errorAt(sep, "expected ',' or ']', found "+describe(sep))
		}

		t, err := term.SliceToListTail(r.tab, items, tail)
		if err != nil {
			return nil, r.wrap(open, err)
		}
		return t, nil
	}
}

func (r *Reader) isQuantifier(name string) bool {
	return r.tab.HasRole(name, symbols.RoleUniversal) || r.tab.HasRole(name, symbols.RoleExistential)
}

// quantified reads "all x y F" after the quantifier token. It reports
// false, consuming nothing, when no bound variable follows.
func (r *Reader) quantified(q token) (*term.Term, bool, error) {
	var vars []token
	for i := 0; ; i++ {
		tok, err := r.peek(i)
		if err != nil {
			return nil, false, err
		}
		if tok.kind != tokName || r.isQuantifier(tok.text) {
			break
		}
		after, err := r.peek(i + 1)
		if err != nil {
			return nil, false, err
		}
		if after.kind == tokCallParen {
			break
		}
		if _, isOp := r.tab.ParseInfo(tok.text); isOp {
			break
		}
		starts, err := r.startsTerm(i + 1)
		if err != nil {
			return nil, false, err
		}
		if !starts {
			break
		}
		vars = append(vars, tok)
	}
	if len(vars) == 0 {
		return nil, false, nil
	}
	for range vars {
		if _, err := r.take(); err != nil {
			return nil, true, err
		}
	}

	body, _, err := r.parse(quantifierPrecedence)
	if err != nil {
		return nil, true, err
	}
	for i := len(vars) - 1; i >= 0; i-- {
		v, err := r.apply(vars[i], vars[i].text)
		if err != nil {
			return nil, true, err
		}
		if body, err = r.apply(q, q.text, v, body); err != nil {
			return nil, true, err
		}
	}
	return body, true, nil
}

// startsTerm reports whether the token i positions ahead can begin an
// operand. An infix or postfix operator cannot, unless it is applied
// with a call paren.
func (r *Reader) startsTerm(i int) (bool, error) {
	tok, err := r.peek(i)
	if err != nil {
		return false, err
	}
	switch tok.kind {
	case tokQuoted, tokLParen, tokCallParen, tokLBracket:
		return true, nil
	case tokName, tokSymbol:
		pi, ok := r.tab.ParseInfo(tok.text)
		if !ok || pi.Type.IsPrefix() {
			return true, nil
		}
		after, err := r.peek(i + 1)
		if err != nil {
			return false, err
		}
		return after.kind == tokCallParen, nil
	}
	return false, nil
}

// operator returns the infix or postfix declaration of tok, if it has one.
// Quoted names are never operators.
func (r *Reader) operator(tok token) (symbols.ParseInfo, bool) {
	if tok.kind != tokName && tok.kind != tokSymbol {
		return symbols.ParseInfo{}, false
	}
	pi, ok := r.tab.ParseInfo(tok.text)
	if !ok || pi.Type.IsPrefix() {
		return symbols.ParseInfo{}, false
	}
	return pi, true
}

func (r *Reader) apply(at token, name string, args ...*term.Term) (*term.Term, error) {
	t, err := term.Application(r.tab, name, args...)
	if err != nil {
		return nil, r.wrap(at, err)
	}
	return t, nil
}

func (r *Reader) wrap(at token, err error) *SyntaxError {
	se := r.errorAt(at, "cannot build term")
	se.Cause = err
	return se
}
