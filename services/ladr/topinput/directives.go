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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/AleutianAI/AleutianLADR/services/ladr/formula"
	"github.com/AleutianAI/AleutianLADR/services/ladr/options"
	"github.com/AleutianAI/AleutianLADR/services/ladr/symbols"
	"github.com/AleutianAI/AleutianLADR/services/ladr/term"
)

// EndOfList is the constant that closes a list.
const EndOfList = "end_of_list"

// defaultOpPrecedence is used by op/2 for a name with no precedence yet.
const defaultOpPrecedence = 500

type directive int

const (
	dirUnrecognized directive = iota
	dirSet
	dirClear
	dirAssign
	dirAssocComm
	dirCommutative
	dirOp2
	dirOp3
	dirRedeclare
	dirLex
	dirPredicateOrder
	dirFunctionOrder
	dirSkolem
	dirFormulas
	dirClauses
	dirTerms
	dirList
	dirIf
	dirEndIf
)

type signature struct {
	name  string
	arity int
}

var directives = map[signature]directive{
	{"set", 1}:             dirSet,
	{"clear", 1}:           dirClear,
	{"assign", 2}:          dirAssign,
	{"assoc_comm", 1}:      dirAssocComm,
	{"commutative", 1}:     dirCommutative,
	{"op", 2}:              dirOp2,
	{"op", 3}:              dirOp3,
	{"redeclare", 2}:       dirRedeclare,
	{"lex", 1}:             dirLex,
	{"predicate_order", 1}: dirPredicateOrder,
	{"function_order", 1}:  dirFunctionOrder,
	{"skolem", 1}:          dirSkolem,
	{"formulas", 1}:        dirFormulas,
	{"clauses", 1}:         dirClauses,
	{"terms", 1}:           dirTerms,
	{"list", 1}:            dirList,
	{"if", 1}:              dirIf,
	{"end_if", 0}:          dirEndIf,
}

var directiveNames = func() map[directive]string {
	m := make(map[directive]string, len(directives))
	for sig, d := range directives {
		m[d] = sig.name
	}
	return m
}()

func (d directive) String() string {
	if s, ok := directiveNames[d]; ok {
		return s
	}
	return "unrecognized"
}

func (in *Interpreter) classify(t *term.Term) directive {
	if t.IsVariable() {
		return dirUnrecognized
	}
	s, ok := in.tab.Lookup(t.Symbol())
	if !ok {
		return dirUnrecognized
	}
	return directives[signature{s.Name, s.Arity}]
}

// directive applies one top-level term in the Normal state.
func (in *Interpreter) directive(ctx context.Context, src TermSource, t *term.Term) error {
	d := in.classify(t)
	err := in.apply(ctx, src, d, t)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	recordDirective(ctx, d.String(), outcome)
	if err == nil {
		in.applied++
	}
	return err
}

func (in *Interpreter) apply(ctx context.Context, src TermSource, d directive, t *term.Term) error {
	switch d {
	case dirSet, dirClear:
		return in.setFlag(ctx, t, d == dirSet)
	case dirAssign:
		return in.assign(ctx, t)
	case dirAssocComm, dirCommutative:
		return in.theory(t, d == dirAssocComm)
	case dirOp2, dirOp3:
		return in.op(t)
	case dirRedeclare:
		return in.redeclare(t)
	case dirLex, dirPredicateOrder, dirFunctionOrder, dirSkolem:
		return in.order(t, d)
	case dirFormulas, dirClauses:
		if d == dirClauses {
			in.deprecated(t, "formulas")
		}
		return in.readList(ctx, src, t, FormulaList)
	case dirTerms, dirList:
		if d == dirTerms {
			in.deprecated(t, "list")
		}
		return in.readList(ctx, src, t, TermList)
	case dirIf:
		return in.conditional(ctx, src, t)
	case dirEndIf:
		if in.ifDepth == 0 {
			return in.fail(ErrUnbalancedEndIf, t, "no open if()", nil)
		}
		in.ifDepth--
		in.echo(t)
		return nil
	default:
		return in.fail(ErrUnrecognizedDirective, t, "", nil)
	}
}

func (in *Interpreter) deprecated(t *term.Term, use string) {
	in.logger.Warn("deprecated directive",
		slog.String("stream", in.stream),
		slog.String("directive", term.Sprint(in.tab, t)),
		slog.String("use", use),
	)
}

// constantName returns the name of a constant term.
func (in *Interpreter) constantName(t *term.Term) (string, bool) {
	if t == nil || !t.IsConstant() {
		return "", false
	}
	return in.tab.Name(t.Symbol()), true
}

// unknown applies the unknown-target policy. It returns nil when the
// directive should be skipped.
func (in *Interpreter) unknown(ctx context.Context, t *term.Term, what, name string) error {
	recordUnknownTarget(ctx, what)
	switch in.cfg.Unknown {
	case UnknownError:
		return in.fail(ErrUnknownDirectiveTarget, t, what+" "+name, nil)
	case UnknownWarn:
		in.logger.Warn("unknown "+what,
			slog.String("stream", in.stream),
			slog.String("name", name),
		)
	}
	return nil
}

func (in *Interpreter) setFlag(ctx context.Context, t *term.Term, value bool) error {
	name, ok := in.constantName(t.Arg(0))
	if !ok {
		return in.fail(ErrMalformedDirective, t, "flag name must be a constant", nil)
	}
	id, ok := in.opts.ResolveFlag(name)
	if !ok {
		return in.unknown(ctx, t, "flag", name)
	}
	in.echo(t)
	cons, err := in.opts.SetFlag(id, value)
	if err != nil {
		return in.fail(ErrMalformedDirective, t, "", err)
	}
	for _, c := range cons {
		in.echof("%% %s -> %s.\n", c.Cause, c.String())
	}
	in.syncVariableStyle()
	return nil
}

// syncVariableStyle makes the table follow prolog_style_variables.
func (in *Interpreter) syncVariableStyle() {
	id, ok := in.opts.ResolveFlag(options.FlagPrologStyleVariables)
	if !ok {
		return
	}
	style := symbols.StandardStyle
	if in.opts.Flag(id) {
		style = symbols.PrologStyle
	}
	if in.tab.VariableStyle() != style {
		in.tab.SetVariableStyle(style)
	}
}

func (in *Interpreter) assign(ctx context.Context, t *term.Term) error {
	name, ok := in.constantName(t.Arg(0))
	if !ok {
		return in.fail(ErrMalformedDirective, t, "parameter name must be a constant", nil)
	}
	val := t.Arg(1)

	if id, ok := in.opts.ResolveParm(name); ok {
		n, ok := term.TermToInt(in.tab, val)
		if !ok {
			return in.fail(ErrMalformedDirective, t, "value must be an integer", nil)
		}
		if err := in.opts.SetParm(id, n); err != nil {
			return in.fail(ErrMalformedDirective, t, "", err)
		}
		in.echo(t)
		return nil
	}

	if id, ok := in.opts.ResolveStringParm(name); ok {
		s, ok := in.constantName(val)
		if !ok {
			return in.fail(ErrMalformedDirective, t, "value must be a constant", nil)
		}
		if err := in.opts.SetStringParm(id, s); err != nil {
			return in.fail(ErrMalformedDirective, t, "", err)
		}
		in.echo(t)
		return nil
	}

	if _, ok := in.constantName(val); !ok {
		if _, isInt := term.TermToInt(in.tab, val); !isInt {
			return in.fail(ErrMalformedDirective, t, "value must be a constant", nil)
		}
	}
	return in.unknown(ctx, t, "parameter", name)
}

func (in *Interpreter) theory(t *term.Term, ac bool) error {
	name, ok := in.constantName(t.Arg(0))
	if !ok {
		return in.fail(ErrMalformedDirective, t, "argument must be a bare symbol", nil)
	}
	set := in.tab.SetCommutative
	if ac {
		set = in.tab.SetAssocComm
	}
	if err := set(name, true); err != nil {
		return in.symbolError(t, err)
	}
	in.echo(t)
	return nil
}

// symbolNames accepts a constant or a proper list of constants.
func (in *Interpreter) symbolNames(t *term.Term) ([]string, bool) {
	if name, ok := in.constantName(t); ok && !term.IsNil(in.tab, t) {
		return []string{name}, true
	}
	return in.constantList(t)
}

func (in *Interpreter) constantList(t *term.Term) ([]string, bool) {
	items, ok := term.ListToSlice(in.tab, t)
	if !ok {
		return nil, false
	}
	names := make([]string, 0, len(items))
	for _, it := range items {
		name, ok := in.constantName(it)
		if !ok {
			return nil, false
		}
		names = append(names, name)
	}
	return names, true
}

// op handles op(prec, type, syms), op(syms, prec, type) and op(sym, type).
func (in *Interpreter) op(t *term.Term) error {
	var (
		symArg, typeArg *term.Term
		prec            = -1
	)
	switch t.Arity() {
	case 3:
		if n, ok := term.TermToInt(in.tab, t.Arg(0)); ok {
			prec, typeArg, symArg = n, t.Arg(1), t.Arg(2)
		} else if n, ok := term.TermToInt(in.tab, t.Arg(1)); ok {
			symArg, prec, typeArg = t.Arg(0), n, t.Arg(2)
		} else {
			return in.fail(ErrMalformedDirective, t, "precedence must be an integer", nil)
		}
	default:
		symArg, typeArg = t.Arg(0), t.Arg(1)
	}

	typName, ok := in.constantName(typeArg)
	if !ok {
		return in.fail(ErrMalformedDirective, t, "type must be a constant", nil)
	}
	typ, ok := symbols.ParseTypeFromString(typName)
	if !ok {
		return in.fail(ErrMalformedDirective, t, "unknown operator type "+typName, nil)
	}
	names, ok := in.symbolNames(symArg)
	if !ok {
		return in.fail(ErrMalformedDirective, t, "symbol must be a constant or a list of constants", nil)
	}

	for _, name := range names {
		p := prec
		if p < 0 {
			p = defaultOpPrecedence
			if pi, ok := in.tab.ParseInfo(name); ok {
				p = pi.Precedence
			}
		}
		if err := in.tab.SetParseType(name, p, typ); err != nil {
			return in.fail(ErrMalformedDirective, t, "", err)
		}
	}
	in.echo(t)
	return nil
}

// redeclare accepts redeclare(role, sym) and redeclare(sym, role).
func (in *Interpreter) redeclare(t *term.Term) error {
	a, ok1 := in.constantName(t.Arg(0))
	b, ok2 := in.constantName(t.Arg(1))
	if !ok1 || !ok2 {
		return in.fail(ErrMalformedDirective, t, "arguments must be constants", nil)
	}
	role, name := a, b
	if _, isRole := symbols.RoleFromString(a); !isRole {
		if _, isRole := symbols.RoleFromString(b); isRole {
			role, name = b, a
		}
	}
	if err := in.tab.Redeclare(role, name); err != nil {
		return in.fail(ErrMalformedDirective, t, "", err)
	}
	in.echo(t)
	return nil
}

func (in *Interpreter) order(t *term.Term, d directive) error {
	names, ok := in.constantList(t.Arg(0))
	if !ok {
		return in.fail(ErrMalformedDirective, t, "argument must be a list of symbols", nil)
	}
	var err error
	switch d {
	case dirLex:
		err = in.tab.SetLexOrder(names)
	case dirPredicateOrder:
		err = in.tab.SetPredicateOrder(names)
	case dirFunctionOrder:
		err = in.tab.SetFunctionOrder(names)
	case dirSkolem:
		err = in.tab.SetSkolemNames(names)
	}
	if err != nil {
		return in.symbolError(t, err)
	}
	in.echo(t)
	return nil
}

func (in *Interpreter) symbolError(t *term.Term, err error) error {
	if errors.Is(err, symbols.ErrSymbolConflict) {
		return in.fail(symbols.ErrSymbolConflict, t, "", err)
	}
	return in.fail(ErrMalformedDirective, t, "", err)
}

// readList collects the terms up to end_of_list.
func (in *Interpreter) readList(ctx context.Context, src TermSource, t *term.Term, kind ListKind) error {
	name, ok := in.constantName(t.Arg(0))
	if !ok {
		return in.fail(ErrMalformedDirective, t, "list name must be a constant", nil)
	}
	in.echo(t)

	var (
		forms []*formula.Formula
		terms []*term.Term
	)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		item, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return in.fail(ErrMissingListTerminator, t, "end of stream in list "+name, nil)
		}
		if err != nil {
			return in.readError(err)
		}
		if term.IsTerm(in.tab, item, EndOfList, 0) {
			break
		}

		switch kind {
		case FormulaList:
			f, err := formula.TermToFormula(in.tab, item)
			if err == nil {
				f, _, err = formula.SetVariables(in.tab, f)
			}
			if err != nil {
				return in.fail(ErrMalformedDirective, item, "bad formula in list "+name, err)
			}
			forms = append(forms, f)
			in.echoLine(formula.Sprint(in.tab, f))
		case TermList:
			v, _, err := term.SetVariables(in.tab, item)
			if err != nil {
				return in.fail(ErrMalformedDirective, item, "bad term in list "+name, err)
			}
			terms = append(terms, v)
			in.echoLine(term.Sprint(in.tab, v))
		}
	}
	in.echoLine(EndOfList)

	l := in.target(name, kind)
	l.Formulas = append(l.Formulas, forms...)
	l.Terms = append(l.Terms, terms...)
	recordListItems(ctx, kind.String(), len(forms)+len(terms))
	return nil
}

// conditional evaluates if(cond). A false condition skips to the
// matching end_if.
func (in *Interpreter) conditional(ctx context.Context, src TermSource, t *term.Term) error {
	ok, err := in.condition(t)
	if err != nil {
		return err
	}
	in.echo(t)
	if ok {
		in.ifDepth++
		return nil
	}
	return in.skip(ctx, src)
}

// condition evaluates flag(name), parm(name), or a bare flag name.
// Unknown names are always fatal here.
func (in *Interpreter) condition(t *term.Term) (bool, error) {
	c := t.Arg(0)
	kind, arg := "flag", c
	switch {
	case term.IsTerm(in.tab, c, "flag", 1):
		arg = c.Arg(0)
	case term.IsTerm(in.tab, c, "parm", 1):
		kind, arg = "parm", c.Arg(0)
	case c.IsConstant():
	default:
		return false, in.fail(ErrMalformedDirective, t, "condition must be flag(name) or parm(name)", nil)
	}

	name, ok := in.constantName(arg)
	if !ok {
		return false, in.fail(ErrMalformedDirective, t, "condition name must be a constant", nil)
	}
	if kind == "parm" {
		id, ok := in.opts.ResolveParm(name)
		if !ok {
			return false, in.fail(ErrUnknownDirectiveTarget, t, "parameter "+name+" in condition", nil)
		}
		return in.opts.Parm(id) != 0, nil
	}
	id, ok := in.opts.ResolveFlag(name)
	if !ok {
		return false, in.fail(ErrUnknownDirectiveTarget, t, "flag "+name+" in condition", nil)
	}
	return in.opts.Flag(id), nil
}

// skip discards terms until the end_if that closes the current if().
// Nested if() terms are counted, not evaluated.
func (in *Interpreter) skip(ctx context.Context, src TermSource) error {
	depth := 1
	for depth > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return in.fail(ErrUnterminatedConditional, nil, "end of stream in skipped if()", nil)
		}
		if err != nil {
			return in.readError(err)
		}
		switch in.classify(t) {
		case dirIf:
			depth++
		case dirEndIf:
			depth--
		}
	}
	in.logger.Debug("skipped conditional block", slog.String("stream", in.stream))
	return nil
}

func (in *Interpreter) echo(t *term.Term) {
	in.echoLine(term.Sprint(in.tab, t))
}

func (in *Interpreter) echoLine(s string) {
	in.echof("%s.\n", s)
}

func (in *Interpreter) echof(format string, args ...any) {
	if in.cfg.Echo == nil {
		return
	}
	if _, err := fmt.Fprintf(in.cfg.Echo, format, args...); err != nil {
		in.logger.Debug("echo failed", slog.String("error", err.Error()))
	}
}
