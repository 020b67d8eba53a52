// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package translate

import (
	"errors"

	"github.com/probechain/lupy/lang/lexer"
	"github.com/probechain/lupy/lang/parser"
	"github.com/probechain/lupy/lang/semantic"
)

// Kind classifies a translation failure by the stage that produced it.
type Kind int

const (
	None Kind = iota
	Lexical
	Indent
	NoNewLine
	Syntactic
	Semantic
	Internal
)

var kindNames = [...]string{"none", "lexical", "indent", "no-newline", "syntactic", "semantic", "internal"}

func (k Kind) String() string {
	if k < None || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// KindOf returns the kind of err. Any failure not attributable to the
// source text, such as a malformed grammar or generator fault, is Internal.
func KindOf(err error) Kind {
	var (
		lexErr    *lexer.LexicalError
		indentErr *lexer.IndentError
		synErr    *parser.SyntaxError
		semErr    *semantic.Error
	)
	switch {
	case err == nil:
		return None
	case errors.As(err, &lexErr):
		return Lexical
	case errors.As(err, &indentErr):
		return Indent
	case errors.Is(err, parser.ErrNoNewLine):
		return NoNewLine
	case errors.As(err, &synErr):
		return Syntactic
	case errors.As(err, &semErr):
		return Semantic
	}
	return Internal
}
