// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package lexer

import (
	"strings"

	"github.com/probechain/lupy/lang/token"
)

// matcher recognizes one token category at the start of its input and
// returns the matched length, or 0.
type matcher struct {
	kind  token.Kind
	match func(s string) int
}

// matchers is ordered by priority.
var matchers = []matcher{
	{token.Keyword, matchKeyword},
	{token.Operator, matchOperator},
	{token.Identifier, matchIdentifier},
	{token.Number, matchNumber},
	{token.Divider, matchDivider},
	{token.String, matchString},
}

// Longest alternatives come first so that "<=" never splits into "<" "=".
var (
	symbolOperators = []string{"**", "==", "!=", "<=", ">=", "+", "-", "*", "/", "%", "=", "<", ">"}
	wordOperators   = []string{"not", "and", "or"}
)

const dividers = ",()[]{}:"

func isLetter(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// word returns the length of the identifier-shaped word at the start of s.
func word(s string) int {
	if s == "" || !isLetter(s[0]) {
		return 0
	}
	n := 1
	for n < len(s) && (isLetter(s[n]) || isDigit(s[n])) {
		n++
	}
	return n
}

func matchKeyword(s string) int {
	if n := word(s); n > 0 && token.IsKeyword(s[:n]) {
		return n
	}
	return 0
}

func matchOperator(s string) int {
	for _, op := range symbolOperators {
		if strings.HasPrefix(s, op) {
			return len(op)
		}
	}
	n := word(s)
	for _, op := range wordOperators {
		if s[:n] == op {
			return n
		}
	}
	return 0
}

func matchIdentifier(s string) int {
	return word(s)
}

func digits(s string) int {
	n := 0
	for n < len(s) && isDigit(s[n]) {
		n++
	}
	return n
}

// matchNumber accepts 12, 12., 12.5, .5 and any of them with an exponent.
func matchNumber(s string) int {
	n := digits(s)
	switch {
	case n > 0:
		if n < len(s) && s[n] == '.' {
			n++
			n += digits(s[n:])
		}
	case len(s) > 1 && s[0] == '.' && isDigit(s[1]):
		n = 1 + digits(s[1:])
	default:
		return 0
	}
	return n + exponent(s[n:])
}

func exponent(s string) int {
	if s == "" || (s[0] != 'e' && s[0] != 'E') {
		return 0
	}
	n := 1
	if n < len(s) && (s[n] == '+' || s[n] == '-') {
		n++
	}
	if d := digits(s[n:]); d > 0 {
		return n + d
	}
	return 0
}

func matchDivider(s string) int {
	if s != "" && strings.IndexByte(dividers, s[0]) >= 0 {
		return 1
	}
	return 0
}

// matchString accepts a single line literal delimited by matching quotes.
func matchString(s string) int {
	if s == "" || (s[0] != '"' && s[0] != '\'') {
		return 0
	}
	quote := s[0]
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case quote:
			return i + 1
		case '\n':
			return 0
		}
	}
	return 0
}
