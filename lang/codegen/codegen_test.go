// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package codegen

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probechain/lupy/lang/ast"
	"github.com/probechain/lupy/lang/grammar"
	"github.com/probechain/lupy/lang/lexer"
	"github.com/probechain/lupy/lang/parser"
	"github.com/probechain/lupy/lang/token"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	tree, err := parser.New(grammar.Default()).Parse(toks)
	require.NoError(t, err)
	out, err := Generate(tree)
	require.NoError(t, err)
	return out
}

var generateTests = []struct {
	name string
	src  string
	want string
}{
	{"assignment", "x = 1\n", "x = 1\n"},
	{"blank lines kept", "x = 1\n\n\ny = 2\n", "x = 1\n\n\ny = 2\n"},
	{"constants", "a = True\nb = False\nc = None\n", "a = true\nb = false\nc = nil\n"},
	{"operators", "x = 2 ** 3 != 1\n", "x = 2 ^ 3 ~= 1\n"},
	{"unary plus", "a = +1\n", "a = 1\n"},
	{"double minus", "x = a--1\n", "x = a- -1\n"},
	{"string", "s = 'hi'\n", "s = 'hi'\n"},
	{"subscript", "a[0] = 1\n", "a[0] = 1\n"},
	{
		"if else",
		"if x > 4:\n\tprint(1)\nelse:\n\tprint(2)\n",
		"if x > 4 then\n    print(1)\nelse\n    print(2)\nend\n",
	},
	{
		"elif chain",
		"if a:\n\tx = 1\nelif b:\n\tx = 2\nelse:\n\tx = 3\n",
		"if a then\n    x = 1\nelseif b then\n    x = 2\nelse\n    x = 3\nend\n",
	},
	{"inline if with pass", "if a: pass\n", "if a then end\n"},
	{"inline while", "while b: b = b - 1\n", "while b do b = b - 1 end\n"},
	{
		"function",
		"def foo(x, y):\n\treturn x ** y\n",
		"function foo(x, y)\n    return x ^ y\nend\n",
	},
	{
		"empty function body",
		"def f():\n\tpass\nx = 1\n",
		"function f()\n\nend\nx = 1\n",
	},
	{
		"nested blocks",
		"def f(x):\n\tif x:\n\t\treturn 1\n\treturn 2\n",
		"function f(x)\n    if x then\n        return 1\n    end\n    return 2\nend\n",
	},
	{
		"range one argument",
		"for i in range(5):\n\tprint(i)\n",
		"for i = 0, 4 do\n    print(i)\nend\n",
	},
	{"range two arguments", "for i in range(1, n): print(i)\n", "for i = 1, n - 1 do print(i) end\n"},
	{"range negative step", "for i in range(10, 0, -1): print(i)\n", "for i = 10, 1, -1 do print(i) end\n"},
	{"range expression bound", "for i in range(len(a)): print(i)\n", "for i = 0, (#a) - 1 do print(i) end\n"},
	{
		"for over collection",
		"for x in items:\n\tprint(x)\n",
		"for x in pairs(items) do\n    print(x)\nend\n",
	},
	{"len", "n = len(a) + 1\n", "n = #a + 1\n"},
	{"len of sum", "n = len(a + b)\n", "n = #(a + b)\n"},
	{"list", "a = [1, 2, 3]\n", "a = {[0] = 1, [1] = 2, [2] = 3}\n"},
	{"empty list", "a = []\n", "a = {}\n"},
	{"dict", "d = {'a': 1}\n", "d = {['a'] = 1}\n"},
	{"empty dict", "d = {}\n", "d = {}\n"},
	{"dict call", "c = dict(x=1, y=2)\n", "c = {[\"x\"]=1, [\"y\"]=2}\n"},
	{"empty dict call", "d = dict()\n", "d = {}\n"},
	{"set", "s = {1, 2}\n", "s = {[1] = true, [2] = true}\n"},
	{"not comparison", "b = not x == 1\n", "b = not (x == 1)\n"},
	{"not name", "b = not x\n", "b = not x\n"},
}

func TestGenerate(t *testing.T) {
	for _, tt := range generateTests {
		t.Run(tt.name, func(t *testing.T) {
			out := generate(t, tt.src)
			assert.Equal(t, tt.want, out)
			assert.NoError(t, Verify(out))
		})
	}
}

func TestGenerateKeepsLines(t *testing.T) {
	src := "a = 1\ndef f(x):\n\treturn x\nb = f(a)\nprint(b)\n"
	out := generate(t, src)
	lines := strings.Split(out, "\n")
	// One "end" line is added for the function.
	require.Len(t, lines, strings.Count(src, "\n")+2)
	assert.Equal(t, "b = f(a)", lines[4])
	assert.Equal(t, "print(b)", lines[5])
}

func TestGenerateEmpty(t *testing.T) {
	out := generate(t, "\n")
	assert.Equal(t, "", strings.TrimSpace(out))
}

func TestGenerateMalformed(t *testing.T) {
	kw := token.New(token.Keyword, "for", 0, 0)
	tree := ast.NewNode("<for>", ast.NewLeaf("for", kw))
	_, err := Generate(tree)
	var shape *ShapeError
	require.True(t, errors.As(err, &shape), "got %v", err)
	assert.Equal(t, "<for>", shape.Label)
}

func TestVerify(t *testing.T) {
	assert.NoError(t, Verify("x = 1\nprint(x)\n"))

	err := Verify("while true do continue end\n")
	var verr *VerifyError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, 1, verr.Line)
	assert.Contains(t, verr.Error(), "does not parse")
}
