// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package parser_test

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probechain/lupy/lang/ast"
	"github.com/probechain/lupy/lang/grammar"
	"github.com/probechain/lupy/lang/lexer"
	"github.com/probechain/lupy/lang/parser"
	"github.com/probechain/lupy/lang/token"
)

func lex(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lex failed: %v", err)
	}
	return toks
}

// mustParse parses src with the built-in grammar and fails the test on error.
func mustParse(t *testing.T, src string) (*ast.Node, []token.Token) {
	t.Helper()
	toks := lex(t, src)
	tree, err := parser.New(grammar.Default()).Parse(toks)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return tree, toks
}

var programs = map[string]string{
	"assignment":    "a = 1\nprint(a)\n",
	"function":      "def foo(x, y):\n\treturn x ** y\nprint(foo(2, 3))\n",
	"if else":       "if x > 4:\n\tprint(1)\nelif x != 2: print(3)\nelse:\n\tprint(2)\n",
	"loops":         "for i in range(1, 10, 2):\n\twhile not i == 0 and True:\n\t\tbreak\n\tcontinue\n",
	"collections":   "a = [1, 2, 3,]\nb = {'k': a[0], 2: None}\nc = dict(x=1, y=len(a))\nd = {1, 2}\ne = {}\n",
	"blank lines":   "def f():\n\n\tx = 1\n\n\treturn -x\n\n\nf()\n",
	"inline blocks": "if a: pass\nwhile b: b = b - 1\ndef g(): return\n",
	"nested":        "def f(n):\n\tif n:\n\t\tfor x in n:\n\t\t\tprint(x)\n\telse:\n\t\tpass\n",
}

func TestParsePrograms(t *testing.T) {
	for name, src := range programs {
		t.Run(name, func(t *testing.T) {
			tree, toks := mustParse(t, src)
			assert.Equal(t, "<program>", tree.Label)
			if diff := cmp.Diff(toks, tree.Leaves()); diff != "" {
				t.Errorf("leaves differ from tokens (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStatementList(t *testing.T) {
	tree, _ := mustParse(t, "a = 1\nb = 2\n\nprint(a)\n")
	stmts := tree.Find("<statements>").Items()
	require.Len(t, stmts, 4)
	assert.Equal(t, "<simple_statement>", stmts[0].Child(0).Label)
	assert.Equal(t, token.Newline, stmts[2].Child(0).Token.Content)
}

func TestCategoryWrapping(t *testing.T) {
	tree, _ := mustParse(t, "a = 1\n")
	assign := tree.Find("<statements>").Items()[0].Child(0).Child(0)
	require.Equal(t, "<assignment>", assign.Label)
	target := assign.Child(0)
	assert.Equal(t, token.IdentifierSymbol, target.Label)
	require.Len(t, target.Children, 1)
	assert.True(t, target.Child(0).IsLeaf())
	assert.Equal(t, "a", target.Child(0).Token.Content)
}

func TestWalrusIsSyntaxError(t *testing.T) {
	toks := lex(t, "a := 1\n")
	_, err := parser.New(grammar.Default()).Parse(toks)

	var syntaxErr *parser.SyntaxError
	require.True(t, errors.As(err, &syntaxErr), "got %v", err)
	require.NotNil(t, syntaxErr.Token)
	assert.Equal(t, ":", syntaxErr.Token.Content)
	assert.Contains(t, syntaxErr.Expected, "=")
	assert.True(t, strings.HasPrefix(err.Error(), `syntax error at 1:3: unexpected ":"`), err.Error())
}

func TestUnexpectedEnd(t *testing.T) {
	toks := lex(t, "def f():\n")
	_, err := parser.New(grammar.Default()).Parse(toks)

	var syntaxErr *parser.SyntaxError
	require.True(t, errors.As(err, &syntaxErr), "got %v", err)
	assert.Nil(t, syntaxErr.Token)
	assert.Contains(t, syntaxErr.Expected, token.Indent)
}

func TestNoNewLine(t *testing.T) {
	p := parser.New(grammar.Default())
	for _, src := range []string{"a = 1", "", "if a:\n\tb = 1"} {
		_, err := p.Parse(lex(t, src))
		assert.True(t, errors.Is(err, parser.ErrNoNewLine), "%q: got %v", src, err)
	}
	// Trailing dedents are skipped.
	_, err := p.Parse(lex(t, "if a:\n\tb = 1\n"))
	assert.NoError(t, err)
}

func TestDeepNesting(t *testing.T) {
	depth := 300
	src := "x = " + strings.Repeat("(", depth) + "1" + strings.Repeat(")", depth) + "\n"
	tree, toks := mustParse(t, src)
	assert.Equal(t, len(toks), len(tree.Leaves()))
}

// ---------------------------------------------------------------------------
// Ambiguity
// ---------------------------------------------------------------------------

const ambiguous = `
S -> E newline
E -> E + E | <Identifier>
`

func TestAmbiguityFirstDerivationWins(t *testing.T) {
	g, err := grammar.Load(ambiguous)
	require.NoError(t, err)
	p := parser.New(g)

	toks := lex(t, "a + b + c\n")
	want := "(S (E (E (E (<Identifier> a)) + (E (<Identifier> b))) + (E (<Identifier> c))) newline)"
	for i := 0; i < 5; i++ {
		tree, err := p.Parse(toks)
		require.NoError(t, err)
		assert.Equal(t, want, tree.String())
	}
}

func TestTagPrediction(t *testing.T) {
	g, err := grammar.Load("S -> <Number> Op <Number> newline\nOp -> + | - | *\n")
	require.NoError(t, err)
	p := parser.New(g)

	chart := p.Recognize(lex(t, "1 - 2\n"))
	require.NotNil(t, p.Accepting(chart))
	// Only the "-" rule of the tag is predicted at position 1.
	var predicted []string
	for _, s := range chart.Entries[1].States {
		if s.Rule.LHS == "Op" && s.Dot == 0 {
			predicted = append(predicted, s.Rule.String())
		}
	}
	assert.Equal(t, []string{"Op -> -"}, predicted)

	_, err = p.Parse(lex(t, "1 / 2\n"))
	var syntaxErr *parser.SyntaxError
	require.True(t, errors.As(err, &syntaxErr), "got %v", err)
	assert.Equal(t, []string{"*", "+", "-"}, syntaxErr.Expected)
}

func TestChartShape(t *testing.T) {
	p := parser.New(grammar.Default())
	toks := lex(t, "a = 1\n")
	chart := p.Recognize(toks)
	require.Len(t, chart.Entries, len(toks)+1)
	accept := p.Accepting(chart)
	require.NotNil(t, accept, spew.Sdump(chart.Entries[len(toks)].States))
	assert.Equal(t, 0, accept.Origin)
	assert.Equal(t, len(toks), accept.End)
	assert.Greater(t, chart.Size(), len(toks))
}

// ---------------------------------------------------------------------------
// Randomized token streams
// ---------------------------------------------------------------------------

var pool = []token.Token{
	token.New(token.Identifier, "a", 0, 0),
	token.New(token.Number, "1", 0, 0),
	token.New(token.Operator, "=", 0, 0),
	token.New(token.Operator, "+", 0, 0),
	token.New(token.Divider, "(", 0, 0),
	token.New(token.Divider, ")", 0, 0),
	token.New(token.Divider, ":", 0, 0),
	token.New(token.Keyword, "if", 0, 0),
	token.New(token.Keyword, "print", 0, 0),
	token.New(token.Divider, token.Newline, 0, 0),
	token.New(token.Divider, token.Indent, 0, 0),
	token.New(token.Divider, token.Dedent, 0, 0),
}

func TestRandomTokens(t *testing.T) {
	p := parser.New(grammar.Default())
	f := fuzz.New().RandSource(rand.NewSource(11)).Funcs(func(toks *[]token.Token, c fuzz.Continue) {
		n := c.Intn(12)
		*toks = make([]token.Token, n, n+1)
		for i := range *toks {
			(*toks)[i] = pool[c.Intn(len(pool))]
		}
		*toks = append(*toks, pool[len(pool)-3])
	})
	for i := 0; i < 500; i++ {
		var toks []token.Token
		f.Fuzz(&toks)

		tree, err := p.Parse(toks)
		if err != nil {
			var syntaxErr *parser.SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("%s: unexpected error %v", spew.Sdump(toks), err)
			}
			continue
		}
		if diff := cmp.Diff(toks, tree.Leaves()); diff != "" {
			t.Fatalf("leaves differ from tokens (-want +got):\n%s", diff)
		}
	}
}
