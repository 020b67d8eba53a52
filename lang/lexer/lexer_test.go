// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package lexer_test

import (
	"errors"
	"math/rand"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probechain/lupy/lang/lexer"
	"github.com/probechain/lupy/lang/token"
)

// tokenCase is a single expected token in a table-driven test.
type tokenCase struct {
	kind    token.Kind
	content string
}

// runTokenize lexes input and checks that it produces exactly the expected
// sequence of kinds and contents.
func runTokenize(t *testing.T, name, input string, want []tokenCase) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		toks, err := lexer.Lex(input)
		if err != nil {
			t.Fatalf("lex failed: %v", err)
		}
		if len(toks) != len(want) {
			t.Errorf("got %d tokens, want %d", len(toks), len(want))
			for i, tok := range toks {
				t.Logf("  [%d] %s", i, tok)
			}
			return
		}
		for i, w := range want {
			got := toks[i]
			if got.Kind != w.kind {
				t.Errorf("token[%d]: kind = %s, want %s (content %q)", i, got.Kind, w.kind, got.Content)
			}
			if got.Content != w.content {
				t.Errorf("token[%d]: content = %q, want %q", i, got.Content, w.content)
			}
		}
	})
}

func id(s string) tokenCase  { return tokenCase{token.Identifier, s} }
func kw(s string) tokenCase  { return tokenCase{token.Keyword, s} }
func op(s string) tokenCase  { return tokenCase{token.Operator, s} }
func div(s string) tokenCase { return tokenCase{token.Divider, s} }
func num(s string) tokenCase { return tokenCase{token.Number, s} }
func str(s string) tokenCase { return tokenCase{token.String, s} }

var (
	nl     = div(token.Newline)
	indent = div(token.Indent)
	dedent = div(token.Dedent)
)

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

func TestCategories(t *testing.T) {
	runTokenize(t, "assignment", "a = 1\nprint(a)\n", []tokenCase{
		id("a"), op("="), num("1"), nl,
		kw("print"), div("("), id("a"), div(")"), nl,
	})
	runTokenize(t, "operators", "a <= b ** 2 != c >= d == e", []tokenCase{
		id("a"), op("<="), id("b"), op("**"), num("2"), op("!="), id("c"), op(">="), id("d"), op("=="), id("e"),
	})
	runTokenize(t, "word operators", "not a and b or note", []tokenCase{
		op("not"), id("a"), op("and"), id("b"), op("or"), id("note"),
	})
	runTokenize(t, "keywords need whole words", "define in dict_ None", []tokenCase{
		id("define"), kw("in"), id("dict_"), kw("None"),
	})
	runTokenize(t, "numbers", "1.5e3 .5 42. 7E-2", []tokenCase{
		num("1.5e3"), num(".5"), num("42."), num("7E-2"),
	})
	runTokenize(t, "sign is an operator", "x = -3", []tokenCase{
		id("x"), op("="), op("-"), num("3"),
	})
	runTokenize(t, "strings", `print("a, b", 'c')`, []tokenCase{
		kw("print"), div("("), str(`"a, b"`), div(","), str(`'c'`), div(")"),
	})
	runTokenize(t, "walrus splits", "a := 1\n", []tokenCase{
		id("a"), div(":"), op("="), num("1"), nl,
	})
	runTokenize(t, "collections", "{'k': [1, 2]}", []tokenCase{
		div("{"), str("'k'"), div(":"), div("["), num("1"), div(","), num("2"), div("]"), div("}"),
	})
}

// ---------------------------------------------------------------------------
// Indentation
// ---------------------------------------------------------------------------

func TestIndentation(t *testing.T) {
	runTokenize(t, "single block", "if x:\n\tpass\n", []tokenCase{
		kw("if"), id("x"), div(":"), nl, indent, kw("pass"), nl, dedent,
	})
	runTokenize(t, "multi level dedent", "def f():\n\tif x:\n\t\tpass\ny = 1\n", []tokenCase{
		kw("def"), id("f"), div("("), div(")"), div(":"), nl,
		indent, kw("if"), id("x"), div(":"), nl,
		indent, kw("pass"), nl,
		dedent, dedent, id("y"), op("="), num("1"), nl,
	})
	runTokenize(t, "blank lines keep the level", "if x:\n\tpass\n\n\t\n\tpass\n", []tokenCase{
		kw("if"), id("x"), div(":"), nl, indent, kw("pass"), nl, nl, nl, kw("pass"), nl, dedent,
	})
	runTokenize(t, "missing trailing newline", "while x:\n\tbreak", []tokenCase{
		kw("while"), id("x"), div(":"), nl, indent, kw("break"),
	})
	runTokenize(t, "carriage return before newline", "x = 1\r\nprint(x)\r\n", []tokenCase{
		id("x"), op("="), num("1"), nl,
		kw("print"), div("("), id("x"), div(")"), nl,
	})
}

func TestCarriageReturnPositions(t *testing.T) {
	toks, err := lexer.Lex("x = 1\r\nprint(x)\r\n")
	require.NoError(t, err)
	require.Len(t, toks, 9)

	assert.Equal(t, token.Position{Line: 0, Column: 4}, toks[2].Pos)
	assert.Equal(t, token.Position{Line: 1, Column: 0}, toks[4].Pos)
	assert.Equal(t, token.Position{Line: 1, Column: 6}, toks[6].Pos)
}

func TestPositions(t *testing.T) {
	toks, err := lexer.Lex("if x:\n\tprint(x)\n")
	require.NoError(t, err)

	want := []token.Position{
		{Line: 0, Column: 0}, // if
		{Line: 0, Column: 3}, // x
		{Line: 0, Column: 4}, // :
		{Line: 0, Column: 5}, // newline
		{Line: 1, Column: 4}, // indent
		{Line: 1, Column: 4}, // print
		{Line: 1, Column: 9}, // (
		{Line: 1, Column: 10},
		{Line: 1, Column: 11},
		{Line: 1, Column: 12}, // newline
		{Line: 2, Column: 0},  // dedent
	}
	require.Len(t, toks, len(want))
	for i, pos := range want {
		assert.Equal(t, pos, toks[i].Pos, "token %d (%s)", i, toks[i])
	}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestLexicalError(t *testing.T) {
	_, err := lexer.Lex("a = 1\nprint(a) # comment\n")
	var lexErr *lexer.LexicalError
	require.True(t, errors.As(err, &lexErr), "got %v", err)
	assert.Equal(t, 1, lexErr.Line)
	assert.Equal(t, 9, lexErr.Column)
	assert.Equal(t, "print(a) # comment", lexErr.Text)
	assert.Equal(t, "lexical error at 2:10: unexpected character\n    print(a) # comment\n             ^", err.Error())
}

func TestUnterminatedString(t *testing.T) {
	_, err := lexer.Lex("s = 'abc\n")
	var lexErr *lexer.LexicalError
	require.True(t, errors.As(err, &lexErr), "got %v", err)
	assert.Equal(t, 0, lexErr.Line)
	assert.Equal(t, 4, lexErr.Column)
}

func TestIndentError(t *testing.T) {
	_, err := lexer.Lex("if x:\n  pass\n")
	var indentErr *lexer.IndentError
	require.True(t, errors.As(err, &indentErr), "got %v", err)
	assert.Equal(t, 1, indentErr.Line)
	assert.Equal(t, 0, indentErr.Column)
}

func TestSpacesAfterTabs(t *testing.T) {
	_, err := lexer.Lex("if x:\n\t pass\n")
	var indentErr *lexer.IndentError
	require.True(t, errors.As(err, &indentErr), "got %v", err)
	assert.Equal(t, lexer.TabWidth, indentErr.Column)
}

func TestCaret(t *testing.T) {
	assert.Equal(t, "    x = $\n    ^", lexer.Caret("x = $", 0))
	assert.Equal(t, "        x = $\n            ^", lexer.Caret("\tx = $", 8))
}

// ---------------------------------------------------------------------------
// Randomized input
// ---------------------------------------------------------------------------

const alphabet = "abcxyz019_ \t\n\r+-*/%=<>!(),:[]{}'\".#$"

func precedes(p, q token.Position) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Column < q.Column)
}

func TestRandomInput(t *testing.T) {
	f := fuzz.New().RandSource(rand.NewSource(7)).Funcs(func(s *string, c fuzz.Continue) {
		b := make([]byte, c.Intn(60))
		for i := range b {
			b[i] = alphabet[c.Intn(len(alphabet))]
		}
		*s = string(b)
	})
	for i := 0; i < 2000; i++ {
		var src string
		f.Fuzz(&src)

		toks, err := lexer.Lex(src)
		if err != nil {
			var (
				lexErr    *lexer.LexicalError
				indentErr *lexer.IndentError
			)
			if !errors.As(err, &lexErr) && !errors.As(err, &indentErr) {
				t.Fatalf("input %q: unexpected error type %T", src, err)
			}
			continue
		}
		for j := 1; j < len(toks); j++ {
			if precedes(toks[j].Pos, toks[j-1].Pos) {
				t.Fatalf("input %q: token %d (%s) precedes token %d (%s)", src, j, toks[j], j-1, toks[j-1])
			}
		}
	}
}
