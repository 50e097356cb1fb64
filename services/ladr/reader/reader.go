// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package reader reads LADR terms from a byte stream.
//
// Each call to Next returns one top-level term, terminated by a period
// outside a quoted name. Operators are
// parsed with the parse types declared in the symbol table, so op() and
// redeclare() directives take effect for the terms read after them.
//
// Variable-style names are returned as constants. Deciding which names are
// variables is left to the consumer: term lists use term.SetVariables and
// formula lists use formula.TermToFormula and formula.SetVariables.
//
// # Thread Safety
//
// A Reader is not safe for concurrent use.
package reader

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianLADR/services/ladr/symbols"
	"github.com/AleutianAI/AleutianLADR/services/ladr/term"
)

// Reader reads top-level terms from an input stream.
type Reader struct {
	tab    *symbols.Table
	lex    *lexer
	name   string
	logger *slog.Logger

	queue    []token
	consumed []string
	boundary bool // last token taken was a terminator or end of input
}

// Option configures a Reader.
type Option func(*Reader)

// WithName sets the stream name used in errors and metrics.
func WithName(name string) Option {
	return func(r *Reader) { r.name = name }
}

// WithLogger sets the logger for parse diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Reader over src.
//
// Inputs:
//
//	tab - Symbol table used for parse types and interning. Must not be nil.
//	src - Input stream. Wrapped in a bufio.Reader unless it already is one.
//	opts - Optional settings.
//
// Outputs:
//
//	*Reader - Ready to read.
func New(tab *symbols.Table, src io.Reader, opts ...Option) *Reader {
	r := &Reader{
		tab:    tab,
		lex:    newLexer(src),
		name:   "input",
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Name returns the stream name.
func (r *Reader) Name() string { return r.name }

// Next reads the next top-level term.
//
// Description:
//
//	On success the stream has been consumed up to and including the
//	terminating period, and nothing after it. On a syntax error the rest
//	of the offending term, up to its terminator, is skipped so a later
//	call starts at the following term.
//
// Inputs:
//
//	ctx - Checked before reading and used for metrics.
//
// Outputs:
//
//	*term.Term - The term. Variable-style names are still constants.
//	error - io.EOF at end of input, *SyntaxError (Is ErrMalformedTerm)
//	        for bad input, or ctx.Err().
func (r *Reader) Next(ctx context.Context) (*term.Term, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	r.consumed = r.consumed[:0]
	r.boundary = false

	first, err := r.peek(0)
	if err != nil {
		return nil, r.fail(ctx, start, err)
	}
	if first.kind == tokEOF {
		return nil, io.EOF
	}

	t, _, err := r.parse(symbols.MaxPrecedence)
	if err == nil {
		err = r.expect(tokPeriod, "expected '.' after term")
	}
	if err != nil {
		r.recover()
		return nil, r.fail(ctx, start, err)
	}
	recordRead(ctx, r.name, time.Since(start), true)
	return t, nil
}

func (r *Reader) fail(ctx context.Context, start time.Time, err error) error {
	var se *SyntaxError
	if !errors.As(err, &se) {
		se = &SyntaxError{Line: r.lex.line, Column: r.lex.col, Message: "read failed", Cause: err}
	}
	se.Stream = r.name
	if se.Detail == "" {
		se.Detail = strings.Join(r.consumed, " ")
	}
	recordRead(ctx, r.name, time.Since(start), false)
	r.logger.Debug("malformed term",
		slog.String("stream", r.name),
		slog.Int("line", se.Line),
		slog.Int("column", se.Column),
		slog.String("message", se.Message),
		slog.String("detail", se.Detail),
	)
	return se
}

// recover skips tokens through the next terminator.
func (r *Reader) recover() {
	for !r.boundary {
		tok, err := r.take()
		var se *SyntaxError
		if err != nil && !errors.As(err, &se) {
			return
		}
		_ = tok
	}
}

// peek returns the token i positions ahead. It never reads past a
// terminator or the end of input: looking further returns that token.
func (r *Reader) peek(i int) (token, error) {
	for len(r.queue) <= i {
		if n := len(r.queue); n > 0 {
			if last := r.queue[n-1]; last.kind == tokPeriod || last.kind == tokEOF {
				return last, nil
			}
		}
		tok, err := r.lex.next()
		if err != nil {
			return token{}, err
		}
		r.queue = append(r.queue, tok)
	}
	return r.queue[i], nil
}

func (r *Reader) take() (token, error) {
	tok, err := r.peek(0)
	if err != nil {
		return tok, err
	}
	r.queue = r.queue[1:]
	r.boundary = tok.kind == tokPeriod || tok.kind == tokEOF
	if tok.text != "" {
		r.consumed = append(r.consumed, tok.text)
	}
	return tok, nil
}

func (r *Reader) expect(k tokenKind, msg string) error {
	tok, err := r.take()
	if err != nil {
		return err
	}
	if tok.kind != k {
		return r.errorAt(tok, msg+", found "+describe(tok))
	}
	return nil
}

func (r *Reader) errorAt(tok token, msg string) *SyntaxError {
	return &SyntaxError{Line: tok.line, Column: tok.col, Message: msg}
}

func describe(tok token) string {
	if tok.isNameLike() {
		return "'" + tok.text + "'"
	}
	return tok.kind.String()
}

// ReadAll reads every remaining term.
func (r *Reader) ReadAll(ctx context.Context) ([]*term.Term, error) {
	var out []*term.Term
	for {
		t, err := r.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
}

// ParseString reads exactly one term from s. The terminating period is
// optional.
func ParseString(tab *symbols.Table, s string) (*term.Term, error) {
	src := strings.TrimSpace(s)
	if !strings.HasSuffix(src, ".") {
		src += "."
	}
	r := New(tab, strings.NewReader(src), WithName("string"))
	ctx := context.Background()
	t, err := r.Next(ctx)
	if errors.Is(err, io.EOF) {
		return nil, &SyntaxError{Stream: "string", Line: 1, Column: 1, Message: "empty input"}
	}
	if err != nil {
		return nil, err
	}
	if tok, err := r.peek(0); err != nil || tok.kind != tokEOF {
		return nil, &SyntaxError{Stream: "string", Line: tok.line, Column: tok.col, Message: "unexpected input after term"}
	}
	return t, nil
}
