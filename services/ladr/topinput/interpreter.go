// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package topinput interprets a stream of top-level LADR directives.
//
// An Interpreter pulls terms from a TermSource and classifies each one as
// a command (set, assign, op, lex, ...), a conditional (if, end_if), or a
// list opener (formulas, list, ...). Commands update the symbol table and
// the option registry as they are read. List openers collect the terms
// up to end_of_list into named Readlists, which Finish hands to an Engine.
//
// Example:
//
//	tab := symbols.New()
//	in := topinput.New(tab, options.NewStandard(), topinput.Config{})
//	if err := in.Read(ctx, f, "input.in"); err != nil {
//	    return err
//	}
//	res, err := in.Finish(ctx)
//
// # Thread Safety
//
// An Interpreter is not safe for concurrent use. Interpreters that share
// a symbol table must not run at the same time; give each its own table
// to interpret streams in parallel.
//
// # Ownership Model
//
// The Interpreter owns its Readlists until Finish, which transfers them to
// the Result. The symbol table and option registry are borrowed.
package topinput

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/AleutianAI/AleutianLADR/services/ladr/options"
	"github.com/AleutianAI/AleutianLADR/services/ladr/reader"
	"github.com/AleutianAI/AleutianLADR/services/ladr/symbols"
	"github.com/AleutianAI/AleutianLADR/services/ladr/term"
)

// TermSource yields top-level terms. Next returns io.EOF at end of stream.
type TermSource interface {
	Next(ctx context.Context) (*term.Term, error)
}

// OptionRegistry is the option store the directives read and write.
type OptionRegistry interface {
	ResolveFlag(name string) (options.FlagID, bool)
	ResolveParm(name string) (options.ParmID, bool)
	ResolveStringParm(name string) (options.StringParmID, bool)
	Flag(id options.FlagID) bool
	SetFlag(id options.FlagID, value bool) ([]options.Consequence, error)
	Parm(id options.ParmID) int
	SetParm(id options.ParmID, value int) error
	StringParm(id options.StringParmID) string
	SetStringParm(id options.StringParmID, value string) error
}

// Engine receives the interpreted input.
type Engine interface {
	// ProcessStandardOptions applies option post-processing once all
	// directives have been read.
	ProcessStandardOptions(ctx context.Context, res *Result) error

	// CheckAndDeclareSymbols declares symbol kinds from the lists and
	// rejects inconsistent use.
	CheckAndDeclareSymbols(ctx context.Context, res *Result) error
}

// UnknownPolicy decides what happens to set/clear/assign of an unknown
// option.
type UnknownPolicy int

const (
	// UnknownIgnore skips the directive silently.
	UnknownIgnore UnknownPolicy = iota
	// UnknownWarn skips the directive and logs a warning.
	UnknownWarn
	// UnknownError fails with ErrUnknownDirectiveTarget.
	UnknownError
)

var policyNames = map[string]UnknownPolicy{
	"ignore": UnknownIgnore,
	"warn":   UnknownWarn,
	"error":  UnknownError,
}

// ParseUnknownPolicy accepts "ignore", "warn" or "error".
func ParseUnknownPolicy(s string) (UnknownPolicy, bool) {
	p, ok := policyNames[s]
	return p, ok
}

func (p UnknownPolicy) String() string {
	for name, v := range policyNames {
		if v == p {
			return name
		}
	}
	return "unknown"
}

// ListSpec names a list that exists before any input is read.
type ListSpec struct {
	Name string
	Kind ListKind
}

// Config configures an Interpreter. The zero value is usable: unknown
// options are ignored, nothing is echoed, and wildcard fallback is on.
type Config struct {
	// Unknown is the policy for unknown flags and parameters.
	Unknown UnknownPolicy

	// Echo receives each accepted directive, if not nil.
	Echo io.Writer

	// DisableWildcard turns off routing of unmatched list names to a "*"
	// list of the same kind.
	DisableWildcard bool

	// Lists are created, empty, before any input. A list named "*" is a
	// wildcard list.
	Lists []ListSpec

	// Engine runs the finishing steps in Finish. Nil skips them.
	Engine Engine

	// Logger receives warnings. Nil means slog.Default().
	Logger *slog.Logger
}

// Interpreter applies directives from one or more streams.
type Interpreter struct {
	tab    *symbols.Table
	opts   OptionRegistry
	cfg    Config
	logger *slog.Logger

	lists   []*Readlist
	streams []string
	applied int

	// per stream
	stream  string
	ifDepth int
}

// New creates an Interpreter.
//
// Inputs:
//
//	tab - Symbol table the directives update. Must not be nil.
//	opts - Option registry. Must not be nil.
//	cfg - Settings. The zero value is usable.
//
// Outputs:
//
//	*Interpreter - Ready to read. Lists from cfg.Lists already exist.
func New(tab *symbols.Table, opts OptionRegistry, cfg Config) *Interpreter {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	in := &Interpreter{tab: tab, opts: opts, cfg: cfg, logger: logger}
	for _, spec := range cfg.Lists {
		in.list(spec.Name, spec.Kind)
	}
	return in
}

// Read interprets one stream, parsing it with the table's operators.
func (in *Interpreter) Read(ctx context.Context, src io.Reader, name string) error {
	r := reader.New(in.tab, src, reader.WithName(name), reader.WithLogger(in.logger))
	return in.ReadSource(ctx, r, name)
}

// ReadSource interprets the terms of one stream.
//
// Description:
//
//	Directives take effect in order as they are read. Conditional state
//	starts fresh for every stream, while lists carry over. Any error ends
//	the stream; directives before it stay applied.
//
// Inputs:
//
//	ctx - Checked between directives. Cancellation returns ctx.Err().
//	src - Term source.
//	name - Stream name for errors, echo and metrics.
//
// Outputs:
//
//	error - nil, ctx.Err(), or a *DirectiveError.
func (in *Interpreter) ReadSource(ctx context.Context, src TermSource, name string) (err error) {
	ctx, span := startReadSpan(ctx, name)
	defer span.End()
	start := time.Now()
	before := in.applied

	in.stream = name
	in.ifDepth = 0
	in.streams = append(in.streams, name)

	defer func() {
		setReadSpanResult(span, in.applied-before, err)
		recordStream(ctx, name, time.Since(start), err == nil)
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return in.readError(err)
		}
		if err := in.directive(ctx, src, t); err != nil {
			return err
		}
	}

	if in.ifDepth != 0 {
		return in.fail(ErrUnterminatedConditional, nil, "end of stream inside if()", nil)
	}
	return nil
}

func (in *Interpreter) readError(err error) error {
	var se *reader.SyntaxError
	if errors.As(err, &se) {
		return &DirectiveError{Kind: reader.ErrMalformedTerm, Stream: in.stream, Message: "cannot read term", Cause: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &DirectiveError{Kind: reader.ErrMalformedTerm, Stream: in.stream, Message: "read failed", Cause: err}
}

// fail builds a DirectiveError for t in the current stream.
func (in *Interpreter) fail(kind error, t *term.Term, msg string, cause error) *DirectiveError {
	de := &DirectiveError{Kind: kind, Stream: in.stream, Message: msg, Cause: cause}
	if t != nil {
		de.Directive = term.Sprint(in.tab, t)
	}
	return de
}

// Finish runs the engine's finishing steps and returns the lists.
//
// Outputs:
//
//	*Result - The accumulated lists and the borrowed table and options.
//	error - The first engine error. The Result is returned either way.
func (in *Interpreter) Finish(ctx context.Context) (*Result, error) {
	res := in.Snapshot()
	if in.cfg.Engine == nil {
		return res, nil
	}
	if err := in.cfg.Engine.ProcessStandardOptions(ctx, res); err != nil {
		return res, err
	}
	if err := in.cfg.Engine.CheckAndDeclareSymbols(ctx, res); err != nil {
		return res, err
	}
	return res, nil
}

// Snapshot returns what has been read so far without running the engine.
// Use it to inspect the lists after a failed Read.
func (in *Interpreter) Snapshot() *Result {
	return &Result{
		Symbols:    in.tab,
		Options:    in.opts,
		Lists:      in.lists,
		Streams:    in.streams,
		Directives: in.applied,
	}
}

// Source is one named input for Run.
type Source struct {
	Name   string
	Reader io.Reader
}

// Run reads every source in order and then calls Finish. It stops at the
// first failing source.
func Run(ctx context.Context, tab *symbols.Table, opts OptionRegistry, cfg Config, srcs ...Source) (*Result, error) {
	in := New(tab, opts, cfg)
	for _, s := range srcs {
		if err := in.Read(ctx, s.Reader, s.Name); err != nil {
			return nil, err
		}
	}
	return in.Finish(ctx)
}
