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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []token {
	t.Helper()
	l := newLexer(strings.NewReader(src))
	var out []token
	for {
		tok, err := l.next()
		require.NoError(t, err)
		if tok.kind == tokEOF {
			return out
		}
		out = append(out, tok)
	}
}

func kinds(toks []token) []tokenKind {
	out := make([]tokenKind, len(toks))
	for i, tok := range toks {
		out[i] = tok.kind
	}
	return out
}

func texts(toks []token) []string {
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.text
	}
	return out
}

func TestLexer_Tokens(t *testing.T) {
	toks := lexAll(t, "f(x, -y) = [a:b].")
	assert.Equal(t, []string{"f", "(", "x", ",", "-", "y", ")", "=", "[", "a", ":", "b", "]", "."}, texts(toks))
	assert.Equal(t, tokCallParen, toks[1].kind)
	assert.Equal(t, tokSymbol, toks[4].kind)
	assert.Equal(t, tokPeriod, toks[13].kind)
}

func TestLexer_DetachedParen(t *testing.T) {
	toks := lexAll(t, "f (x)")
	assert.Equal(t, []tokenKind{tokName, tokLParen, tokName, tokRParen}, kinds(toks))

	toks = lexAll(t, "-(x)")
	assert.Equal(t, []tokenKind{tokSymbol, tokCallParen, tokName, tokRParen}, kinds(toks))
}

func TestLexer_Comments(t *testing.T) {
	src := "a % to end of line\n%BEGIN\nignored. stuff\n%END b"
	assert.Equal(t, []string{"a", "b"}, texts(lexAll(t, src)))
}

func TestLexer_UnterminatedBlock(t *testing.T) {
	l := newLexer(strings.NewReader("a %BEGIN never closed"))
	_, err := l.next()
	require.NoError(t, err)
	_, err = l.next()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedTerm)
}

func TestLexer_PeriodEndsSymbolRun(t *testing.T) {
	toks := lexAll(t, "a = b.c.")
	assert.Equal(t, []string{"a", "=", "b", ".", "c", "."}, texts(toks))
	assert.Equal(t, tokPeriod, toks[3].kind)

	toks = lexAll(t, "x'.y")
	assert.Equal(t, []string{"x", "'", ".", "y"}, texts(toks))
}

func TestLexer_Quoted(t *testing.T) {
	toks := lexAll(t, `"hello world"(a)`)
	require.Len(t, toks, 4)
	assert.Equal(t, tokQuoted, toks[0].kind)
	assert.Equal(t, "hello world", toks[0].text)
	assert.Equal(t, tokCallParen, toks[1].kind)

	_, err := newLexer(strings.NewReader(`"open`)).next()
	assert.ErrorIs(t, err, ErrMalformedTerm)
}

func TestLexer_Positions(t *testing.T) {
	toks := lexAll(t, "a\n  bc")
	require.Len(t, toks, 2)
	assert.Equal(t, 1, toks[0].line)
	assert.Equal(t, 1, toks[0].col)
	assert.Equal(t, 2, toks[1].line)
	assert.Equal(t, 3, toks[1].col)
}

func TestLexer_IllegalCharacter(t *testing.T) {
	l := newLexer(strings.NewReader("{"))
	_, err := l.next()
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Message, "illegal character")
}
