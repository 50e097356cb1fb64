// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine provides the finishing steps that run after all input
// has been interpreted.
//
// Standard implements topinput.Engine. It checks the option values that
// the rest of a prover depends on, and it declares every symbol used in
// the lists as a relation or a function, rejecting input that uses one
// name as both.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianLADR/services/ladr/formula"
	"github.com/AleutianAI/AleutianLADR/services/ladr/options"
	"github.com/AleutianAI/AleutianLADR/services/ladr/symbols"
	"github.com/AleutianAI/AleutianLADR/services/ladr/term"
	"github.com/AleutianAI/AleutianLADR/services/ladr/topinput"
)

var tracer = otel.Tracer("aleutian.ladr.engine")

// ErrBadOption indicates an option value the finishing steps reject.
var ErrBadOption = errors.New("bad option value")

// Standard is the default Engine.
type Standard struct {
	// Strict makes a name used with several arities an error instead of
	// a warning.
	Strict bool

	// Logger receives the option summary and warnings. Nil means
	// slog.Default().
	Logger *slog.Logger
}

var _ topinput.Engine = (*Standard)(nil)

func (s *Standard) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

type changer interface {
	Changed() options.Snapshot
}

// ProcessStandardOptions validates limits and logs the changed options.
//
// Description:
//
//	The table's variable style is set from prolog_style_variables, in
//	case the registry was changed without going through a directive.
//	max_seconds must be at least -1.
//
// Outputs:
//
//	error - ErrBadOption for a rejected value.
func (s *Standard) ProcessStandardOptions(ctx context.Context, res *topinput.Result) error {
	_, span := tracer.Start(ctx, "Standard.ProcessStandardOptions")
	defer span.End()

	opts := res.Options
	if id, ok := opts.ResolveFlag(options.FlagPrologStyleVariables); ok {
		style := symbols.StandardStyle
		if opts.Flag(id) {
			style = symbols.PrologStyle
		}
		res.Symbols.SetVariableStyle(style)
	}

	if id, ok := opts.ResolveParm(options.ParmMaxSeconds); ok {
		if v := opts.Parm(id); v < -1 {
			err := fmt.Errorf("%w: %s = %d", ErrBadOption, options.ParmMaxSeconds, v)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	if c, ok := opts.(changer); ok {
		changed := c.Changed().Directives()
		span.SetAttributes(attribute.Int("ladr.options_changed", len(changed)))
		s.logger().Info("effective options",
			slog.Int("changed", len(changed)),
			slog.Any("directives", changed),
		)
	}
	return nil
}

// CheckAndDeclareSymbols declares the kind of every symbol in the lists.
//
// Description:
//
//	Atom heads in formula lists become relations. Every other symbol
//	inside an atom, and every symbol in a term list, becomes a function.
//	Then each name used in the lists is checked for a single arity.
//
// Outputs:
//
//	error - A *symbols.ConflictError (Is symbols.ErrSymbolConflict) for a
//	        kind clash, or for several arities when Strict is set.
func (s *Standard) CheckAndDeclareSymbols(ctx context.Context, res *topinput.Result) (err error) {
	_, span := tracer.Start(ctx, "Standard.CheckAndDeclareSymbols")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	d := &declarer{tab: res.Symbols, names: make(map[string]bool)}
	for _, l := range res.Lists {
		for _, f := range l.Formulas {
			if err := d.formula(f); err != nil {
				return fmt.Errorf("list %s: %w", l.Name, err)
			}
		}
		for _, t := range l.Terms {
			if err := d.function(t); err != nil {
				return fmt.Errorf("list %s: %w", l.Name, err)
			}
		}
	}
	span.SetAttributes(attribute.Int("ladr.symbols_checked", len(d.names)))
	return s.checkArities(span, d)
}

func (s *Standard) checkArities(span trace.Span, d *declarer) error {
	names := make([]string, 0, len(d.names))
	for n := range d.names {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		err := d.tab.CheckSingleArity(name)
		if err == nil {
			continue
		}
		if s.Strict {
			return err
		}
		span.AddEvent("multiple arities", trace.WithAttributes(attribute.String("symbol", name)))
		s.logger().Warn("symbol used with several arities",
			slog.String("symbol", name),
			slog.Any("arities", d.tab.Arities(name)),
		)
	}
	return nil
}

type declarer struct {
	tab   *symbols.Table
	names map[string]bool
}

func (d *declarer) formula(f *formula.Formula) error {
	if f.Kind() != formula.KindAtom {
		for _, k := range f.Kids() {
			if err := d.formula(k); err != nil {
				return err
			}
		}
		return nil
	}
	a, err := f.Atom()
	if err != nil {
		return err
	}
	if a.IsVariable() {
		return nil
	}
	if err := d.declare(a, symbols.KindRelation); err != nil {
		return err
	}
	for _, arg := range a.Args() {
		if err := d.function(arg); err != nil {
			return err
		}
	}
	return nil
}

func (d *declarer) function(t *term.Term) error {
	if t.IsVariable() {
		return nil
	}
	if err := d.declare(t, symbols.KindFunction); err != nil {
		return err
	}
	for _, arg := range t.Args() {
		if err := d.function(arg); err != nil {
			return err
		}
	}
	return nil
}

func (d *declarer) declare(t *term.Term, kind symbols.Kind) error {
	d.names[d.tab.Name(t.Symbol())] = true
	return d.tab.SetKind(t.Symbol(), kind)
}
