// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package token defines the lexical tokens of the Python subset accepted by lupy.
//
// Tokens carry a coarse kind, their literal content and a 0-based source
// position. Indentation is expressed with synthetic divider tokens whose
// content is "newline", "indent" or "dedent".
package token

import "fmt"

// Kind is the lexical category of a token.
type Kind int

const (
	Identifier Kind = iota
	Keyword
	Operator
	Divider
	Number
	String
)

var kindNames = [...]string{
	Identifier: "Identifier",
	Keyword:    "Keyword",
	Operator:   "Operator",
	Divider:    "Divider",
	Number:     "Number",
	String:     "String",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Synthetic divider contents.
const (
	Newline = "newline"
	Indent  = "indent"
	Dedent  = "dedent"
)

// Grammar symbols for the content-carrying categories.
const (
	IdentifierSymbol = "<Identifier>"
	NumberSymbol     = "<Number>"
	StringSymbol     = "<String>"
)

// Keywords lists every reserved word in source order of the lexer table.
var Keywords = []string{
	"def", "return", "break", "continue", "pass",
	"for", "while", "if", "elif", "else",
	"print", "range", "len", "in", "dict",
	"True", "False", "None",
}

var keywords map[string]bool

func init() {
	keywords = make(map[string]bool, len(Keywords))
	for _, kw := range Keywords {
		keywords[kw] = true
	}
}

// IsKeyword reports whether word is a reserved word.
func IsKeyword(word string) bool {
	return keywords[word]
}

// Position is a 0-based source location. Columns count a leading tab as
// four columns.
type Position struct {
	Line   int
	Column int
}

// String renders the position 1-based, the way diagnostics show it.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

// Token is a single lexical token. Tokens are values and are never mutated
// once the lexer has produced them.
type Token struct {
	Kind    Kind
	Content string
	Pos     Position
}

// New creates a token at the given position.
func New(kind Kind, content string, line, column int) Token {
	return Token{Kind: kind, Content: content, Pos: Position{Line: line, Column: column}}
}

// Symbol is the grammar symbol the token matches: the category name for
// identifiers, numbers and strings, the literal content otherwise.
func (t Token) Symbol() string {
	switch t.Kind {
	case Identifier:
		return IdentifierSymbol
	case Number:
		return NumberSymbol
	case String:
		return StringSymbol
	}
	return t.Content
}

// End returns the position right after the token's text on its line.
// Synthetic dividers occupy no columns.
func (t Token) End() Position {
	if t.IsSynthetic() {
		return t.Pos
	}
	return Position{Line: t.Pos.Line, Column: t.Pos.Column + len(t.Content)}
}

// IsSynthetic reports whether the token was produced for layout rather than
// read from the source text.
func (t Token) IsSynthetic() bool {
	if t.Kind != Divider {
		return false
	}
	return t.Content == Newline || t.Content == Indent || t.Content == Dedent
}

// Relocate returns a clone of the token moved to a new position. It is used
// when a fragment is rendered away from where it appeared in the source.
func (t Token) Relocate(line, column int) Token {
	t.Pos = Position{Line: line, Column: column}
	return t
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Pos, t.Kind, t.Content)
}
