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
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/AleutianAI/AleutianLADR/services/ladr/term"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokName
	tokSymbol
	tokQuoted
	tokLParen    // "(" after whitespace or punctuation
	tokCallParen // "(" directly after a name or symbol
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokPeriod
)

var tokenNames = map[tokenKind]string{
	tokEOF:       "end of input",
	tokName:      "name",
	tokSymbol:    "symbol",
	tokQuoted:    "quoted name",
	tokLParen:    "'('",
	tokCallParen: "'('",
	tokRParen:    "')'",
	tokLBracket:  "'['",
	tokRBracket:  "']'",
	tokComma:     "','",
	tokPeriod:    "'.'",
}

func (k tokenKind) String() string { return tokenNames[k] }

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

// isNameLike reports whether the token can name a symbol.
func (t token) isNameLike() bool {
	return t.kind == tokName || t.kind == tokSymbol || t.kind == tokQuoted
}

const (
	blockBegin = "BEGIN"
	blockEnd   = "%END"
)

// lexer turns a byte stream into tokens without reading past a
// terminating period.
type lexer struct {
	r      *bufio.Reader
	line   int
	col    int
	attach bool
}

func newLexer(r io.Reader) *lexer {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &lexer{r: br, line: 1, col: 1}
}

func (l *lexer) read() (byte, error) {
	c, err := l.r.ReadByte()
	if err != nil {
		return 0, err
	}
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c, nil
}

// peekAt returns the byte i positions ahead without consuming it.
func (l *lexer) peekAt(i int) (byte, bool) {
	b, _ := l.r.Peek(i + 1)
	if len(b) <= i {
		return 0, false
	}
	return b[i], true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func (l *lexer) skipTrivia() error {
	for {
		c, ok := l.peekAt(0)
		switch {
		case !ok:
			return nil
		case isSpace(c):
			l.attach = false
			if _, err := l.read(); err != nil {
				return err
			}
		case c == '%':
			l.attach = false
			if err := l.skipComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (l *lexer) skipComment() error {
	if _, err := l.read(); err != nil {
		return err
	}
	if b, _ := l.r.Peek(len(blockBegin)); string(b) == blockBegin {
		return l.skipBlock()
	}
	for {
		c, err := l.read()
		if err != nil || c == '\n' {
			return nil
		}
	}
}

func (l *lexer) skipBlock() error {
	line, col := l.line, l.col
	var window []byte
	for {
		c, err := l.read()
		if err != nil {
			return &SyntaxError{Line: line, Column: col - 1, Message: "unterminated %BEGIN comment"}
		}
		window = append(window, c)
		if len(window) > len(blockEnd) {
			window = window[1:]
		}
		if string(window) == blockEnd {
			return nil
		}
	}
}

// next returns the next token. I/O errors other than io.EOF are returned
// as is.
func (l *lexer) next() (token, error) {
	if err := l.skipTrivia(); err != nil {
		return token{}, err
	}
	tok := token{line: l.line, col: l.col}
	c, err := l.read()
	if errors.Is(err, io.EOF) {
		tok.kind = tokEOF
		return tok, nil
	}
	if err != nil {
		return tok, err
	}

	attached := l.attach
	l.attach = false

	switch {
	case term.IsNameChar(c):
		tok.kind = tokName
		tok.text = l.run(c, term.IsNameChar)
		l.attach = true
	case c == '"':
		s, err := l.quoted(tok)
		if err != nil {
			return tok, err
		}
		tok.kind, tok.text = tokQuoted, s
		l.attach = true
	case c == '(':
		tok.kind, tok.text = tokLParen, "("
		if attached {
			tok.kind = tokCallParen
		}
	case c == ')':
		tok.kind, tok.text = tokRParen, ")"
	case c == '[':
		tok.kind, tok.text = tokLBracket, "["
	case c == ']':
		tok.kind, tok.text = tokRBracket, "]"
	case c == ',':
		tok.kind, tok.text = tokComma, ","
	case c == '.':
		tok.kind, tok.text = tokPeriod, "."
	case term.IsSymbolChar(c):
		tok.kind = tokSymbol
		tok.text = l.run(c, term.IsSymbolChar)
		l.attach = true
	default:
		return tok, &SyntaxError{Line: tok.line, Column: tok.col, Message: "illegal character " + strconv.QuoteRune(rune(c))}
	}
	return tok, nil
}

func (l *lexer) run(first byte, in func(byte) bool) string {
	var b strings.Builder
	b.WriteByte(first)
	for {
		c, ok := l.peekAt(0)
		if !ok || !in(c) {
			return b.String()
		}
		_, _ = l.read()
		b.WriteByte(c)
	}
}

func (l *lexer) quoted(start token) (string, error) {
	var b strings.Builder
	for {
		c, err := l.read()
		if err != nil {
			return "", &SyntaxError{Line: start.line, Column: start.col, Message: "unterminated quoted name"}
		}
		if c == '"' {
			return b.String(), nil
		}
		b.WriteByte(c)
	}
}

