// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package lexer turns Python subset source text into a token sequence.
//
// Scanning rules:
//   - At every offset the category matchers are tried in a fixed priority
//     order (keyword, operator, identifier, number, divider, string) and the
//     first match wins.
//   - Blocks are delimited by leading tabs only. Every change of the tab
//     count emits one "indent" or "dedent" divider per level.
//   - Whitespace-only lines keep the current indentation level.
//   - A line break emits a "newline" divider.
package lexer

import (
	"strings"

	"github.com/probechain/lupy/lang/token"
)

// TabWidth is the number of columns a leading tab occupies.
const TabWidth = 4

// Lexer holds the state for a single tokenization run.
type Lexer struct {
	src string

	pos   int // byte offset of the next unread character
	line  int // 0-based current line
	col   int // 0-based current column
	depth int // current indentation level in tabs

	tokens []token.Token
}

// New creates a lexer for src.
func New(src string) *Lexer {
	return &Lexer{src: src}
}

// Lex tokenizes src in one call.
func Lex(src string) ([]token.Token, error) {
	return New(src).Tokenize()
}

// Tokenize scans the whole input and returns the token sequence, or the
// first LexicalError or IndentError encountered.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	if err := l.indentation(); err != nil {
		return nil, err
	}
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		switch {
		case ch == '\n':
			l.emit(token.Divider, token.Newline)
			l.pos++
			l.line++
			l.col = 0
			if err := l.indentation(); err != nil {
				return nil, err
			}

		case ch == ' ' || ch == '\t' || ch == '\r':
			l.pos++
			l.col++

		default:
			kind, n := l.match()
			if n == 0 {
				return nil, &LexicalError{Line: l.line, Column: l.col, Text: l.lineText(l.line)}
			}
			l.emit(kind, l.src[l.pos:l.pos+n])
			l.pos += n
			l.col += n
		}
	}
	return l.tokens, nil
}

// emit appends a token at the current position.
func (l *Lexer) emit(kind token.Kind, content string) {
	l.tokens = append(l.tokens, token.New(kind, content, l.line, l.col))
}

// indentation consumes the leading tabs of the line starting at l.pos and
// emits the indent or dedent dividers needed to reach the new level.
func (l *Lexer) indentation() error {
	tabs := 0
	for l.pos+tabs < len(l.src) && l.src[l.pos+tabs] == '\t' {
		tabs++
	}
	if l.blankLine() {
		// Nothing on this line can open or close a block. End of input
		// closes every open block.
		if l.lineEnd() == len(l.src) {
			l.pos += tabs
			l.col = tabs * TabWidth
			l.changeDepth(0)
		}
		return nil
	}
	if next := l.pos + tabs; next < len(l.src) && l.src[next] == ' ' {
		return &IndentError{Line: l.line, Column: tabs * TabWidth, Text: l.lineText(l.line)}
	}
	l.pos += tabs
	l.col = tabs * TabWidth
	l.changeDepth(tabs)
	return nil
}

func (l *Lexer) changeDepth(depth int) {
	for ; l.depth < depth; l.depth++ {
		l.emit(token.Divider, token.Indent)
	}
	for ; l.depth > depth; l.depth-- {
		l.emit(token.Divider, token.Dedent)
	}
}

// blankLine reports whether the line starting at l.pos holds only whitespace.
func (l *Lexer) blankLine() bool {
	return strings.TrimLeft(l.src[l.pos:l.lineEnd()], " \t\r") == ""
}

// lineEnd returns the offset of the newline ending the current line, or the
// input length for the last line.
func (l *Lexer) lineEnd() int {
	if i := strings.IndexByte(l.src[l.pos:], '\n'); i >= 0 {
		return l.pos + i
	}
	return len(l.src)
}

// lineText returns the source text of a 0-based line.
func (l *Lexer) lineText(line int) string {
	lines := strings.Split(l.src, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line], "\r")
}

// match runs the category matchers in priority order at the current offset.
func (l *Lexer) match() (token.Kind, int) {
	rest := l.src[l.pos:]
	for _, m := range matchers {
		if n := m.match(rest); n > 0 {
			return m.kind, n
		}
	}
	return 0, 0
}
