// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package symbols

import "strconv"

// Limits on the table. They mirror the LADR build constants.
const (
	MaxArity      = 255
	MaxSymbols    = 1 << 20
	MinPrecedence = 1
	MaxPrecedence = 999
)

// ID identifies an interned (name, arity) pair.
//
// IDs are assigned from 1 upward in insertion order and are never reused.
// The zero ID is never a valid symbol.
type ID int

// Kind classifies how a symbol is used.
type Kind int

const (
	// KindUnspecified is the kind of every symbol until it is declared.
	KindUnspecified Kind = iota

	// KindFunction marks symbols that build terms.
	KindFunction

	// KindRelation marks symbols that head atomic formulas.
	KindRelation
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindRelation:
		return "relation"
	default:
		return "unspecified"
	}
}

// ParseType is the fixity the reader uses for a symbol name.
//
// Precedence semantics follow LADR: a larger precedence binds more
// loosely, and an argument must have a precedence below (or, for the
// associative side, at) the operator's.
type ParseType int

const (
	NothingSpecial ParseType = iota
	Infix                    // xfx
	InfixLeft                // yfx
	InfixRight               // xfy
	Prefix                   // fy
	PrefixParen              // fx
	Postfix                  // yf
	PostfixParen             // xf
)

var parseTypeNames = map[ParseType]string{
	NothingSpecial: "ordinary",
	Infix:          "infix",
	InfixLeft:      "infix_left",
	InfixRight:     "infix_right",
	Prefix:         "prefix",
	PrefixParen:    "prefix_paren",
	Postfix:        "postfix",
	PostfixParen:   "postfix_paren",
}

// String returns the directive spelling of the parse type.
func (p ParseType) String() string {
	if s, ok := parseTypeNames[p]; ok {
		return s
	}
	return "unknown"
}

// ParseTypeFromString returns the parse type named by an op() directive.
func ParseTypeFromString(s string) (ParseType, bool) {
	for pt, name := range parseTypeNames {
		if name == s {
			return pt, true
		}
	}
	return NothingSpecial, false
}

// IsInfix reports whether the parse type takes two operands.
func (p ParseType) IsInfix() bool {
	return p == Infix || p == InfixLeft || p == InfixRight
}

// IsPrefix reports whether the parse type is a prefix operator.
func (p ParseType) IsPrefix() bool {
	return p == Prefix || p == PrefixParen
}

// IsPostfix reports whether the parse type is a postfix operator.
func (p ParseType) IsPostfix() bool {
	return p == Postfix || p == PostfixParen
}

// ParseInfo is the operator declaration attached to a name.
type ParseInfo struct {
	Precedence int
	Type       ParseType
}

// Theory is the unification theory of a binary symbol.
type Theory int

const (
	TheoryNone Theory = iota
	TheoryCommutative
	TheoryAssocComm
)

// LRPOStatus selects how LRPO compares arguments of a symbol.
type LRPOStatus int

const (
	LRPOLeftToRight LRPOStatus = iota
	LRPOMultiset
)

// VariableStyle decides which names the reader treats as variables.
type VariableStyle int

const (
	// StandardStyle: names beginning with u through z.
	StandardStyle VariableStyle = iota

	// PrologStyle: names beginning with an uppercase letter or '_'.
	PrologStyle

	// IntegerStyle: names that are non-negative integers.
	IntegerStyle
)

// Symbol is a snapshot of one table entry.
//
// Values returned by the table are copies; mutating them does not change
// the table.
type Symbol struct {
	ID         ID
	Name       string
	Arity      int
	Kind       Kind
	Parse      ParseInfo
	Theory     Theory
	LexVal     int // 0 when unassigned
	KBWeight   int
	LRPOStatus LRPOStatus
	Skolem     bool
}

// AssocComm reports whether the symbol is associative-commutative.
func (s Symbol) AssocComm() bool { return s.Theory == TheoryAssocComm }

// Commutative reports whether the symbol is commutative. AC symbols are
// commutative too.
func (s Symbol) Commutative() bool { return s.Theory != TheoryNone }

// String returns "name/arity".
func (s Symbol) String() string {
	return s.Name + "/" + strconv.Itoa(s.Arity)
}

// Order is the result of a precedence comparison.
type Order int

const (
	EQ Order = iota
	LT
	GT
)

// String returns "LT", "GT" or "EQ".
func (o Order) String() string {
	switch o {
	case LT:
		return "LT"
	case GT:
		return "GT"
	default:
		return "EQ"
	}
}
