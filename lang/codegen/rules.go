// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package codegen

import (
	"fmt"
	"strconv"

	"github.com/probechain/lupy/lang/ast"
	"github.com/probechain/lupy/lang/token"
)

var keywords = map[string]string{
	"def":   "function",
	"elif":  "elseif",
	"True":  "true",
	"False": "false",
	"None":  "nil",
}

var operators = map[string]string{
	"**": "^",
	"!=": "~=",
}

// leaf renders a token that no construct rule has claimed.
func (g *Generator) leaf(tok *token.Token) {
	if tok.IsSynthetic() {
		return
	}
	text := tok.Content
	switch tok.Kind {
	case token.Keyword:
		if text == "pass" {
			return
		}
		if lua, ok := keywords[text]; ok {
			text = lua
		}
	case token.Operator:
		if lua, ok := operators[text]; ok {
			text = lua
		}
	}
	g.emit(tok, text)
}

// expand dispatches on the node label.
func (g *Generator) expand(n *ast.Node) {
	if n.IsLeaf() {
		g.leaf(n.Token)
		return
	}
	switch n.Label {
	case "<function>":
		g.block(n, g.drop)
	case "<if>":
		g.block(n, g.then)
	case "<else>":
		if n.Child(0).Token.Content == "else" {
			g.schedule(g.parts(n, g.drop)...)
		} else {
			g.schedule(g.parts(n, g.then)...)
		}
	case "<while>":
		g.block(n, g.loop)
	case "<for>":
		g.forLoop(n)
	case "<len>":
		g.length(n)
	case "<list>", "<set>":
		g.table(n)
	case "<dict>":
		g.dict(n)
	case "<pair>":
		key, colon, value := n.Child(0), n.Child(1), n.Child(2)
		g.schedule(
			do(func() { g.prefix(key, "[") }),
			visit(key),
			do(func() { g.emit(colon.Token, "] =") }),
			visit(value),
		)
	case "<keyword_argument>":
		key := n.Child(0).First()
		g.schedule(
			do(func() { g.emit(key, "["+strconv.Quote(key.Content)+"]") }),
			visit(n.Child(1)),
			visit(n.Child(2)),
		)
	case "<inversion>":
		g.inversion(n)
	case "<factor>":
		if op := n.Child(0); op.IsLeaf() && op.Token.Content == "+" {
			// Lua has no unary plus.
			g.schedule(do(func() { g.drop(op.Token) }), visit(n.Child(1)))
			return
		}
		g.schedule(g.parts(n, nil)...)
	default:
		g.schedule(g.parts(n, nil)...)
	}
}

// parts returns one task per child. A ":" divider is handed to colon when
// it is non-nil.
func (g *Generator) parts(n *ast.Node, colon func(*token.Token)) []task {
	tasks := make([]task, 0, len(n.Children))
	for _, c := range n.Children {
		if c.IsLeaf() && c.Token.Content == ":" && colon != nil {
			tok := c.Token
			tasks = append(tasks, do(func() { colon(tok) }))
			continue
		}
		tasks = append(tasks, visit(c))
	}
	return tasks
}

func (g *Generator) then(tok *token.Token) { g.keyword(tok, "then") }

func (g *Generator) loop(tok *token.Token) { g.keyword(tok, "do") }

// block renders a construct owning a body and closes it with "end". For an
// if statement the body closed is the last one of the elif/else chain.
func (g *Generator) block(n *ast.Node, colon func(*token.Token)) {
	opener := n.Child(0).Token
	body := lastBody(n)
	if body == nil {
		g.fail(n, "no body")
		return
	}
	g.schedule(append(g.parts(n, colon), do(func() { g.end(opener, body) }))...)
}

func lastBody(n *ast.Node) *ast.Node {
	body := n.Find("<block>")
	for alt := n.Find("<else>"); alt != nil; alt = alt.Find("<else>") {
		body = alt.Find("<block>")
	}
	return body
}

// inline reports whether a body sits on the line of its header.
func inline(body *ast.Node) bool {
	return body.Child(0).Is("<simple_statement>")
}

// forLoop renders a numeric loop for range(...) and a pairs loop otherwise.
func (g *Generator) forLoop(n *ast.Node) {
	if len(n.Children) != 6 {
		g.fail(n, "have %d children", len(n.Children))
		return
	}
	kw, name, in, iter, colon, body := n.Child(0), n.Child(1), n.Child(2), n.Child(3), n.Child(4), n.Child(5)

	var header []task
	if iter.Is("<range>") {
		bounds, err := rangeBounds(iter)
		if err != nil {
			g.err = err
			return
		}
		last := iter.Children[len(iter.Children)-1].Token
		header = []task{visit(kw), visit(name), do(func() { g.span(in.Token, last, "= "+bounds) })}
	} else {
		header = []task{
			visit(kw), visit(name), visit(in),
			do(func() { g.prefix(iter, "pairs(") }),
			visit(iter),
			do(func() { g.insert(")") }),
		}
	}
	g.schedule(append(header,
		do(func() { g.loop(colon.Token) }),
		visit(body),
		do(func() { g.end(kw.Token, body) }),
	)...)
}

// rangeBounds renders the "start, stop[, step]" part of a numeric loop.
// Python stops before the end value, Lua includes it.
func rangeBounds(r *ast.Node) (string, error) {
	var args []*ast.Node
	for _, c := range r.Children {
		if c.Is("<expression>") {
			args = append(args, c)
		}
	}
	texts := make([]string, len(args))
	for i, a := range args {
		text, err := fragment(a)
		if err != nil {
			return "", err
		}
		texts[i] = text
	}
	switch len(args) {
	case 1:
		return "0, " + bound(args[0], texts[0], false), nil
	case 2:
		return texts[0] + ", " + bound(args[1], texts[1], false), nil
	case 3:
		return texts[0] + ", " + bound(args[1], texts[1], negative(args[2])) + ", " + texts[2], nil
	}
	return "", &ShapeError{Label: r.Label, Msg: fmt.Sprintf("have %d arguments", len(args))}
}

// bound turns an exclusive end into an inclusive one, folding integer
// literals.
func bound(end *ast.Node, text string, down bool) string {
	step, op := -1, " - 1"
	if down {
		step, op = 1, " + 1"
	}
	leaves := end.Leaves()
	if len(leaves) == 1 {
		if leaves[0].Kind == token.Number {
			if v, err := strconv.Atoi(leaves[0].Content); err == nil {
				return strconv.Itoa(v + step)
			}
		}
		return text + op
	}
	return "(" + text + ")" + op
}

// negative reports whether a step is a negative numeric literal.
func negative(step *ast.Node) bool {
	leaves := step.Leaves()
	return len(leaves) == 2 && leaves[0].Content == "-" && leaves[1].Kind == token.Number
}

// length renders len(x) as #x, keeping the parentheses around anything
// looser than a primary expression.
func (g *Generator) length(n *ast.Node) {
	kw, open, arg, close := n.Child(0), n.Child(1), n.Child(2), n.Child(3)
	if close == nil {
		g.fail(n, "have %d children", len(n.Children))
		return
	}
	if isPrimary(arg) {
		g.schedule(
			do(func() { g.emit(kw.Token, "#") }),
			do(func() { g.drop(open.Token) }),
			visit(arg),
			do(func() { g.drop(close.Token) }),
		)
		return
	}
	g.schedule(do(func() { g.emit(kw.Token, "#") }), visit(open), visit(arg), visit(close))
}

// isPrimary reports whether n reduces to a primary expression through
// single-child nodes.
func isPrimary(n *ast.Node) bool {
	for cur := n; cur != nil && !cur.IsLeaf(); {
		if cur.Is("<primary>") {
			return true
		}
		if len(cur.Children) != 1 {
			return false
		}
		cur = cur.Child(0)
	}
	return false
}

// table renders list literals with explicit 0-based keys and set literals
// as tables mapping every element to true.
func (g *Generator) table(n *ast.Node) {
	first, last := n.Child(0), n.Children[len(n.Children)-1]
	tasks := []task{do(func() { g.emit(first.Token, "{") })}
	if items := n.Find("<items>"); items != nil {
		i := 0
		for _, c := range items.Flatten() {
			if c.IsLeaf() {
				tasks = append(tasks, visit(c))
				continue
			}
			item := c
			if n.Is("<list>") {
				key := fmt.Sprintf("[%d] = ", i)
				tasks = append(tasks, do(func() { g.prefix(item, key) }), visit(item))
			} else {
				tasks = append(tasks,
					do(func() { g.prefix(item, "[") }),
					visit(item),
					do(func() { g.insert("] = true") }),
				)
			}
			i++
		}
		if trailing := n.Children[len(n.Children)-2]; trailing.IsLeaf() {
			tasks = append(tasks, visit(trailing))
		}
	}
	tasks = append(tasks, do(func() { g.emit(last.Token, "}") }))
	g.schedule(tasks...)
}

// dict renders dict(k=v) as a table; brace literals only need their pairs
// rewritten.
func (g *Generator) dict(n *ast.Node) {
	kw := n.Child(0)
	if kw.Token.Content != "dict" {
		g.schedule(g.parts(n, nil)...)
		return
	}
	open, last := n.Child(1), n.Children[len(n.Children)-1]
	tasks := []task{
		do(func() { g.emit(kw.Token, "{") }),
		do(func() { g.drop(open.Token) }),
	}
	if args := n.Find("<keywords>"); args != nil {
		tasks = append(tasks, visit(args))
	}
	tasks = append(tasks, do(func() { g.emit(last.Token, "}") }))
	g.schedule(tasks...)
}

// inversion parenthesizes a comparison under "not", which binds tighter
// than comparisons in Lua.
func (g *Generator) inversion(n *ast.Node) {
	operand := n.Child(1)
	if operand == nil {
		g.schedule(g.parts(n, nil)...)
		return
	}
	if cmp := operand.Child(0); !cmp.Is("<comparison>") || len(cmp.Children) != 3 {
		g.schedule(g.parts(n, nil)...)
		return
	}
	g.schedule(
		visit(n.Child(0)),
		do(func() { g.prefix(operand, "(") }),
		visit(operand),
		do(func() { g.insert(")") }),
	)
}
