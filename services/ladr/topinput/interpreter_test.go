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
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianLADR/services/ladr/formula"
	"github.com/AleutianAI/AleutianLADR/services/ladr/options"
	"github.com/AleutianAI/AleutianLADR/services/ladr/reader"
	"github.com/AleutianAI/AleutianLADR/services/ladr/symbols"
	"github.com/AleutianAI/AleutianLADR/services/ladr/term"
)

type fixture struct {
	tab  *symbols.Table
	opts *options.Registry
	logs *bytes.Buffer
	cfg  Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	opts := options.New()
	for _, name := range []string{"x", "flagA", "flagB"} {
		_, err := opts.DefineFlag(name, false)
		require.NoError(t, err)
	}
	_, err := opts.DefineParm("n", 0, -10, 10)
	require.NoError(t, err)
	_, err = opts.DefineStringParm("order", "lpo", "lpo", "kbo")
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	return &fixture{
		tab:  symbols.New(),
		opts: opts,
		logs: logs,
		cfg: Config{
			Logger: slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		},
	}
}

func (f *fixture) run(t *testing.T, src string) (*Result, error) {
	t.Helper()
	in := New(f.tab, f.opts, f.cfg)
	if err := in.Read(context.Background(), strings.NewReader(src), "test.in"); err != nil {
		return nil, err
	}
	return in.Finish(context.Background())
}

func (f *fixture) flag(t *testing.T, name string) bool {
	t.Helper()
	id, ok := f.opts.ResolveFlag(name)
	require.True(t, ok)
	return f.opts.Flag(id)
}

func (f *fixture) parm(t *testing.T, name string) int {
	t.Helper()
	id, ok := f.opts.ResolveParm(name)
	require.True(t, ok)
	return f.opts.Parm(id)
}

func TestRead_SetAndFormulas(t *testing.T) {
	f := newFixture(t)
	res, err := f.run(t, "set(x).formulas(goals). p(a,b). end_of_list.")
	require.NoError(t, err)

	assert.True(t, f.flag(t, "x"))
	assert.Equal(t, map[string]bool{"x": true}, f.opts.Changed().Flags)
	assert.Empty(t, f.opts.Changed().Parms)

	goals := res.Formulas("goals")
	require.Len(t, goals, 1)
	want, err := term.Application(f.tab, "p", mustConst(t, f.tab, "a"), mustConst(t, f.tab, "b"))
	require.NoError(t, err)
	assert.True(t, formula.Ident(formula.Atom(want), goals[0]))
	assert.Equal(t, 2, res.Directives)
	assert.Equal(t, []string{"test.in"}, res.Streams)
}

func mustConst(t *testing.T, tab *symbols.Table, name string) *term.Term {
	t.Helper()
	c, err := term.Constant(tab, name)
	require.NoError(t, err)
	return c
}

func TestRead_MixedQuantifiers(t *testing.T) {
	f := newFixture(t)
	res, err := f.run(t, "formulas(assumptions). all x exists y p(x,y). end_of_list.")
	require.NoError(t, err)

	items := res.Formulas("assumptions")
	require.Len(t, items, 1)
	got := items[0]
	var binders []formula.Kind
	var vars []int
	for got.IsQuantified() {
		binders = append(binders, got.Kind())
		n, err := got.QVarNum()
		require.NoError(t, err)
		vars = append(vars, n)
		got = got.Kid(0)
	}
	assert.Equal(t, []formula.Kind{formula.KindAll, formula.KindExists}, binders)
	assert.Equal(t, []int{0, 1}, vars)

	a, err := got.Atom()
	require.NoError(t, err)
	assert.Equal(t, 0, a.Arg(0).VarNum())
	assert.Equal(t, 1, a.Arg(1).VarNum())
	assert.Equal(t, "all x exists y p(x,y)", formula.Sprint(f.tab, items[0]))
}

func TestRead_FalseConditionSkips(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "if(flagA). assign(n,1). end_if.")
	require.NoError(t, err)
	assert.Equal(t, 0, f.parm(t, "n"))
}

func TestRead_SkippedBlockStillInterns(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "if(flagA). c1(z). end_if.")
	require.NoError(t, err)

	_, ok := f.tab.Find("c1", 1)
	assert.True(t, ok)
}

func TestRead_TrueConditionApplies(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "set(flagA). if(flag(flagA)). assign(n,3). end_if.")
	require.NoError(t, err)
	assert.Equal(t, 3, f.parm(t, "n"))
}

func TestRead_ParmCondition(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "if(parm(n)). set(x). end_if. assign(n, -2). if(parm(n)). set(flagB). end_if.")
	require.NoError(t, err)
	assert.False(t, f.flag(t, "x"))
	assert.True(t, f.flag(t, "flagB"))
	assert.Equal(t, -2, f.parm(t, "n"))
}

func TestRead_NestedSkip(t *testing.T) {
	f := newFixture(t)
	src := `
		if(flagA).
		  if(no_such_flag). set(x). end_if.
		  set(x).
		  unrecognized(stuff).
		end_if.
		set(flagB).`
	_, err := f.run(t, src)
	require.NoError(t, err)
	assert.False(t, f.flag(t, "x"))
	assert.True(t, f.flag(t, "flagB"))
}

func TestRead_ConditionalErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"unbalanced end_if", "end_if.", ErrUnbalancedEndIf},
		{"missing end_if", "set(flagA). if(flagA). set(x).", ErrUnterminatedConditional},
		{"missing end_if while skipping", "if(flagA). set(x).", ErrUnterminatedConditional},
		{"unknown flag in condition", "if(flag(nope)). end_if.", ErrUnknownDirectiveTarget},
		{"unknown parm in condition", "if(parm(nope)). end_if.", ErrUnknownDirectiveTarget},
		{"bad condition shape", "if(f(a,b)). end_if.", ErrMalformedDirective},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.run(t, tt.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsDirectiveError(err))
		})
	}
}

func TestRead_LexOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "lex([b,a,c]).")
	require.NoError(t, err)

	id := func(name string) symbols.ID {
		got, ok := f.tab.Find(name, 0)
		require.True(t, ok)
		return got
	}
	assert.Equal(t, symbols.GT, f.tab.PrecedenceCompare(id("a"), id("b")))
	assert.Equal(t, symbols.LT, f.tab.PrecedenceCompare(id("b"), id("c")))
	assert.Equal(t, symbols.GT, f.tab.PrecedenceCompare(id("c"), id("a")))
}

func TestRead_OrderDirectivesNeedLists(t *testing.T) {
	for _, src := range []string{"lex(a).", "predicate_order([p, f(x)]).", "skolem([a:b])."} {
		t.Run(src, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.run(t, src)
			assert.ErrorIs(t, err, ErrMalformedDirective)
		})
	}
}

func TestRead_UnknownPolicy(t *testing.T) {
	t.Run("ignore", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.Unknown = UnknownIgnore
		_, err := f.run(t, "set(nope). assign(nothing, 3). set(x).")
		require.NoError(t, err)
		assert.True(t, f.flag(t, "x"))
		assert.NotContains(t, f.logs.String(), "unknown flag")
	})

	t.Run("warn", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.Unknown = UnknownWarn
		_, err := f.run(t, "clear(nope). assign(nothing, 3).")
		require.NoError(t, err)
		assert.Contains(t, f.logs.String(), "unknown flag")
		assert.Contains(t, f.logs.String(), "name=nope")
		assert.Contains(t, f.logs.String(), "unknown parameter")
	})

	t.Run("error", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.Unknown = UnknownError
		_, err := f.run(t, "set(x). set(nope). set(flagA).")
		require.ErrorIs(t, err, ErrUnknownDirectiveTarget)
		assert.Contains(t, err.Error(), "set(nope)")
		assert.True(t, f.flag(t, "x"))
		assert.False(t, f.flag(t, "flagA"))
	})
}

func TestParseUnknownPolicy(t *testing.T) {
	p, ok := ParseUnknownPolicy("warn")
	require.True(t, ok)
	assert.Equal(t, UnknownWarn, p)
	assert.Equal(t, "error", UnknownError.String())
	_, ok = ParseUnknownPolicy("loud")
	assert.False(t, ok)
}

func TestRead_Assign(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "assign(n, 7). assign(order, kbo).")
	require.NoError(t, err)
	assert.Equal(t, 7, f.parm(t, "n"))
	id, _ := f.opts.ResolveStringParm("order")
	assert.Equal(t, "kbo", f.opts.StringParm(id))

	for _, src := range []string{"assign(n, 11).", "assign(n, abc).", "assign(order, rpo).", "assign(n, f(1))."} {
		t.Run(src, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.run(t, src)
			assert.ErrorIs(t, err, ErrMalformedDirective)
		})
	}

	f = newFixture(t)
	_, err = f.run(t, "assign(n, 11).")
	assert.ErrorIs(t, err, options.ErrOutOfRange)
}

func TestRead_UnrecognizedDirective(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "set(x). foo(a).")
	var de *DirectiveError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, ErrUnrecognizedDirective)
	assert.Equal(t, "foo(a)", de.Directive)
	assert.Equal(t, "test.in", de.Stream)

	f = newFixture(t)
	_, err = f.run(t, "set(x, y).")
	assert.ErrorIs(t, err, ErrUnrecognizedDirective)
}

func TestRead_MalformedTerm(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "set(x).\nset(flagA.\nset(flagB).")
	require.ErrorIs(t, err, reader.ErrMalformedTerm)
	var se *reader.SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Line)
	assert.True(t, f.flag(t, "x"))
	assert.False(t, f.flag(t, "flagB"))
}

func TestRead_MissingListTerminator(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "formulas(assumptions). p. q.")
	assert.ErrorIs(t, err, ErrMissingListTerminator)
}

func TestRead_ListsAccumulate(t *testing.T) {
	f := newFixture(t)
	src := `
		formulas(assumptions). p. end_of_list.
		formulas(goals). q. end_of_list.
		formulas(assumptions). r. end_of_list.`
	res, err := f.run(t, src)
	require.NoError(t, err)
	require.Len(t, res.Lists, 2)
	assert.Equal(t, "assumptions", res.Lists[0].Name)
	assert.Equal(t, 2, res.Lists[0].Len())
	assert.Len(t, res.Formulas("goals"), 1)
}

func TestRead_Wildcard(t *testing.T) {
	src := "formulas(*). p. end_of_list. formulas(other). q. end_of_list. list(other). a. end_of_list."

	f := newFixture(t)
	res, err := f.run(t, src)
	require.NoError(t, err)
	wild, ok := res.List(WildcardName, FormulaList)
	require.True(t, ok)
	assert.True(t, wild.Wildcard)
	assert.Equal(t, 2, wild.Len())
	_, ok = res.List("other", FormulaList)
	assert.False(t, ok)
	// the wildcard list only catches lists of its own kind
	assert.Len(t, res.Terms("other"), 1)

	f = newFixture(t)
	f.cfg.DisableWildcard = true
	res, err = f.run(t, src)
	require.NoError(t, err)
	assert.Len(t, res.Formulas("other"), 1)
}

func TestRead_ExactMatchBeatsWildcard(t *testing.T) {
	f := newFixture(t)
	f.cfg.Lists = []ListSpec{{Name: WildcardName, Kind: FormulaList}, {Name: "goals", Kind: FormulaList}}
	res, err := f.run(t, "formulas(goals). p. end_of_list. formulas(hints). q. end_of_list.")
	require.NoError(t, err)
	assert.Len(t, res.Formulas("goals"), 1)
	assert.Len(t, res.Formulas(WildcardName), 1)
	assert.Nil(t, res.Formulas("hints"))
}

func TestRead_TermListSetsVariables(t *testing.T) {
	f := newFixture(t)
	res, err := f.run(t, "list(demods). f(x,a). end_of_list.")
	require.NoError(t, err)
	items := res.Terms("demods")
	require.Len(t, items, 1)
	assert.True(t, items[0].Arg(0).IsVariable())
	assert.True(t, items[0].Arg(1).IsConstant())
}

func TestRead_DeprecatedSpellings(t *testing.T) {
	f := newFixture(t)
	res, err := f.run(t, "clauses(sos). p | q. end_of_list. terms(t). a. end_of_list.")
	require.NoError(t, err)
	assert.Len(t, res.Formulas("sos"), 1)
	assert.Len(t, res.Terms("t"), 1)
	assert.Contains(t, f.logs.String(), "deprecated directive")
	assert.Contains(t, f.logs.String(), "use=formulas")
	assert.Contains(t, f.logs.String(), "use=list")
}

func TestRead_SymbolDirectives(t *testing.T) {
	f := newFixture(t)
	src := `
		op(400, infix, [~~, ##]).
		op(pp, 300, prefix).
		assoc_comm(+).
		commutative(*).
		redeclare(disjunction, or).
		formulas(a). p ~~ q or pp r. end_of_list.`
	res, err := f.run(t, src)
	require.NoError(t, err)

	pi, ok := f.tab.ParseInfo("~~")
	require.True(t, ok)
	assert.Equal(t, symbols.ParseInfo{Precedence: 400, Type: symbols.Infix}, pi)
	_, ok = f.tab.ParseInfo("##")
	assert.True(t, ok)

	plus, ok := f.tab.Find("+", 2)
	require.True(t, ok)
	s, _ := f.tab.Lookup(plus)
	assert.True(t, s.AssocComm())

	got := res.Formulas("a")
	require.Len(t, got, 1)
	assert.Equal(t, formula.KindOr, got[0].Kind())
	assert.Equal(t, "p ~~ q or pp r", formula.Sprint(f.tab, got[0]))
}

func TestRead_OpOrdinaryAndDefaultPrecedence(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "op(~~, infix). op(@, ordinary).")
	require.NoError(t, err)
	pi, ok := f.tab.ParseInfo("~~")
	require.True(t, ok)
	assert.Equal(t, defaultOpPrecedence, pi.Precedence)
	_, ok = f.tab.ParseInfo("@")
	assert.False(t, ok)

	for _, src := range []string{"op(400, sideways, ~~).", "op(400, infix, f(a)).", "op(a, b, c).", "redeclare(nonsense, or)."} {
		t.Run(src, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.run(t, src)
			assert.ErrorIs(t, err, ErrMalformedDirective)
		})
	}
}

func TestRead_AssocCommNeedsBareSymbol(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "assoc_comm(f(x)).")
	assert.ErrorIs(t, err, ErrMalformedDirective)
}

func TestRead_PrologStyleVariables(t *testing.T) {
	tab := symbols.New()
	in := New(tab, options.NewStandard(), Config{})
	src := "set(prolog_style_variables). list(l). f(X, x). end_of_list."
	require.NoError(t, in.Read(context.Background(), strings.NewReader(src), "p.in"))
	res, err := in.Finish(context.Background())
	require.NoError(t, err)

	assert.Equal(t, symbols.PrologStyle, tab.VariableStyle())
	items := res.Terms("l")
	require.Len(t, items, 1)
	assert.True(t, items[0].Arg(0).IsVariable())
	assert.True(t, items[0].Arg(1).IsConstant())
}

func TestRead_Echo(t *testing.T) {
	var out bytes.Buffer
	tab := symbols.New()
	in := New(tab, options.NewStandard(), Config{Echo: &out})
	src := "clear(auto).\nformulas(goals).\np(x).\nend_of_list.\n"
	require.NoError(t, in.Read(context.Background(), strings.NewReader(src), "e.in"))

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "clear(auto).\n% clear(auto) -> clear(auto_setup).\n"), got)
	assert.Contains(t, got, "formulas(goals).\np(x).\nend_of_list.\n")
}

func TestRead_CommentsAreIgnored(t *testing.T) {
	f := newFixture(t)
	src := "% a comment\nset(x). % trailing\n%BEGIN\nset(flagA).\n%END\n"
	_, err := f.run(t, src)
	require.NoError(t, err)
	assert.True(t, f.flag(t, "x"))
	assert.False(t, f.flag(t, "flagA"))
}

func TestRead_Canceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(f.tab, f.opts, f.cfg).Read(ctx, strings.NewReader("set(x)."), "c.in")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, f.flag(t, "x"))
}

type recordingEngine struct {
	calls []string
	fail  error
}

func (e *recordingEngine) ProcessStandardOptions(_ context.Context, _ *Result) error {
	e.calls = append(e.calls, "options")
	return e.fail
}

func (e *recordingEngine) CheckAndDeclareSymbols(_ context.Context, _ *Result) error {
	e.calls = append(e.calls, "symbols")
	return nil
}

func TestFinish_CallsEngine(t *testing.T) {
	f := newFixture(t)
	eng := &recordingEngine{}
	f.cfg.Engine = eng
	_, err := f.run(t, "set(x).")
	require.NoError(t, err)
	assert.Equal(t, []string{"options", "symbols"}, eng.calls)

	boom := errors.New("boom")
	eng = &recordingEngine{fail: boom}
	f.cfg.Engine = eng
	_, err = f.run(t, "set(x).")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"options"}, eng.calls)
}

func TestSnapshot_AfterFailure(t *testing.T) {
	f := newFixture(t)
	eng := &recordingEngine{}
	f.cfg.Engine = eng
	in := New(f.tab, f.opts, f.cfg)
	err := in.Read(context.Background(), strings.NewReader("formulas(goals). p. end_of_list. end_if."), "s.in")
	require.ErrorIs(t, err, ErrUnbalancedEndIf)

	res := in.Snapshot()
	assert.Len(t, res.Formulas("goals"), 1)
	assert.Equal(t, []string{"s.in"}, res.Streams)
	assert.Empty(t, eng.calls, "Snapshot must not run the engine")
}

func TestRun_MultipleStreams(t *testing.T) {
	f := newFixture(t)
	res, err := Run(context.Background(), f.tab, f.opts, f.cfg,
		Source{Name: "one.in", Reader: strings.NewReader("formulas(goals). p. end_of_list.")},
		Source{Name: "two.in", Reader: strings.NewReader("formulas(goals). q. end_of_list.")},
	)
	require.NoError(t, err)
	assert.Len(t, res.Formulas("goals"), 2)
	assert.Equal(t, []string{"one.in", "two.in"}, res.Streams)

	_, err = Run(context.Background(), f.tab, f.opts, f.cfg,
		Source{Name: "bad.in", Reader: strings.NewReader("set(flagA). if(flagA).")},
		Source{Name: "never.in", Reader: strings.NewReader("set(x).")},
	)
	var de *DirectiveError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "bad.in", de.Stream)
}

type sliceSource struct {
	terms []*term.Term
}

func (s *sliceSource) Next(_ context.Context) (*term.Term, error) {
	if len(s.terms) == 0 {
		return nil, io.EOF
	}
	t := s.terms[0]
	s.terms = s.terms[1:]
	return t, nil
}

func TestReadSource_CustomTermSource(t *testing.T) {
	f := newFixture(t)
	set, err := term.Application(f.tab, "set", mustConst(t, f.tab, "x"))
	require.NoError(t, err)

	in := New(f.tab, f.opts, f.cfg)
	require.NoError(t, in.ReadSource(context.Background(), &sliceSource{terms: []*term.Term{set}}, "slice"))
	assert.True(t, f.flag(t, "x"))
}
