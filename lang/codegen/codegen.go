// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package codegen renders a checked parse tree as Lua source.
//
// Rendering is driven by a cursor over the output. Before a token is written
// the cursor is moved forward to the token's source line and column, so the
// Lua text stays aligned line for line with the Python text. Two offsets
// keep the mapping exact:
//   - shift counts the lines inserted for block-closing "end" keywords.
//   - delta is the difference between output and source columns on the
//     current line, accumulated whenever a token is rendered wider or
//     narrower than it was written, or dropped.
//
// The tree is walked with an explicit task stack. A task either visits a
// subtree or runs a deferred action, such as closing a block.
package codegen

import (
	"fmt"
	"strings"

	"github.com/probechain/lupy/lang/ast"
	"github.com/probechain/lupy/lang/token"
)

// ShapeError reports a tree that does not have the structure produced by
// the built-in grammar.
type ShapeError struct {
	Label string
	Msg   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("codegen: malformed %s: %s", e.Label, e.Msg)
}

// task is a subtree to render or an action to run.
type task struct {
	node   *ast.Node
	action func()
}

func visit(n *ast.Node) task { return task{node: n} }

func do(f func()) task { return task{action: f} }

// Generator renders one tree. Use Generate; a Generator is not reusable.
type Generator struct {
	out  strings.Builder
	last byte // last byte written

	line  int // output cursor
	col   int
	shift int
	delta int

	tasks []task
	err   error
}

// Generate renders tree as Lua source. Non-empty output ends in a newline.
func Generate(tree *ast.Node) (string, error) {
	g := new(Generator)
	if err := g.run(tree); err != nil {
		return "", err
	}
	if g.out.Len() > 0 && g.last != '\n' {
		g.raw("\n")
	}
	return g.out.String(), nil
}

// fragment renders a subtree on its own, as if it started at line 0,
// column 0. It is used where an expression is re-emitted inside synthetic
// text.
func fragment(n *ast.Node) (string, error) {
	g := new(Generator)
	if err := g.run(relocate(n)); err != nil {
		return "", err
	}
	return g.out.String(), nil
}

func (g *Generator) run(tree *ast.Node) error {
	g.tasks = append(g.tasks, visit(tree))
	for len(g.tasks) > 0 && g.err == nil {
		t := g.tasks[len(g.tasks)-1]
		g.tasks = g.tasks[:len(g.tasks)-1]
		if t.action != nil {
			t.action()
			continue
		}
		g.expand(t.node)
	}
	return g.err
}

// schedule pushes tasks so that they run in argument order, before any
// work that was already pending.
func (g *Generator) schedule(tasks ...task) {
	for i := len(tasks) - 1; i >= 0; i-- {
		g.tasks = append(g.tasks, tasks[i])
	}
}

func (g *Generator) fail(n *ast.Node, format string, args ...interface{}) {
	if g.err == nil {
		g.err = &ShapeError{Label: n.Label, Msg: fmt.Sprintf(format, args...)}
	}
}

// ---------------------------------------------------------------------------
// Cursor
// ---------------------------------------------------------------------------

// raw appends text without any spacing logic. The text must not move the
// cursor across lines except through trailing newlines handled by callers.
func (g *Generator) raw(text string) {
	if text == "" {
		return
	}
	g.out.WriteString(text)
	g.last = text[len(text)-1]
}

// newlines moves the cursor down to the start of line.
func (g *Generator) newlines(line int) {
	if line <= g.line {
		return
	}
	g.raw(strings.Repeat("\n", line-g.line))
	g.line, g.col, g.delta = line, 0, 0
}

// pad moves the cursor right to col.
func (g *Generator) pad(col int) {
	if col > g.col {
		g.raw(strings.Repeat(" ", col-g.col))
		g.col = col
	}
}

// advance moves the cursor to where tok belongs in the output. It never
// moves backward.
func (g *Generator) advance(tok *token.Token) {
	g.newlines(tok.Pos.Line + g.shift)
	g.pad(tok.Pos.Column + g.delta)
}

// write appends text on the current line, separating it from the previous
// text where concatenation would change its meaning in Lua.
func (g *Generator) write(text string) {
	if text == "" {
		return
	}
	if g.out.Len() > 0 && glued(g.last, text[0]) {
		g.raw(" ")
		g.col++
	}
	g.raw(text)
	g.col += len(text)
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// glued reports whether writing next right after prev would merge two
// tokens: two words, "--" (a comment) or "[[" (a long string).
func glued(prev, next byte) bool {
	switch {
	case isWordByte(prev) && isWordByte(next):
		return true
	case prev == '-' && next == '-', prev == '[' && next == '[':
		return true
	}
	return false
}

// emit renders tok as text at its position.
func (g *Generator) emit(tok *token.Token, text string) {
	g.advance(tok)
	start := g.col
	g.write(text)
	g.delta += g.col - start - len(tok.Content)
}

// span renders the tokens from first through last, all on one line, as text.
func (g *Generator) span(first, last *token.Token, text string) {
	g.advance(first)
	start := g.col
	g.write(text)
	g.delta += g.col - start - (last.End().Column - first.Pos.Column)
}

// insert writes synthetic text that replaces nothing in the source.
func (g *Generator) insert(text string) {
	start := g.col
	g.write(text)
	g.delta += g.col - start
}

// prefix writes synthetic text right before the token starting n.
func (g *Generator) prefix(n *ast.Node, text string) {
	g.advance(n.First())
	g.insert(text)
}

// drop removes tok from the output while keeping later tokens on its line
// in place.
func (g *Generator) drop(tok *token.Token) {
	if tok.Pos.Line+g.shift == g.line {
		g.delta -= len(tok.Content)
	}
}

// keyword renders tok as a Lua keyword separated by one space from the
// text before it.
func (g *Generator) keyword(tok *token.Token, word string) {
	g.advance(tok)
	if g.last != ' ' {
		word = " " + word
	}
	g.emit(tok, word)
}

// end closes the block opened by kw. A body on the opener's line closes on
// the same line; an indented body closes on a new line under the opener.
func (g *Generator) end(kw *token.Token, body *ast.Node) {
	if inline(body) {
		g.insert(" end")
		return
	}
	line := lastLine(body) + g.shift + 1
	if line <= g.line {
		line = g.line + 1
	}
	g.newlines(line)
	g.pad(kw.Pos.Column)
	g.write("end")
	g.shift++
}

// lastLine returns the source line of the last written token under n.
func lastLine(n *ast.Node) int {
	leaves := n.Leaves()
	for i := len(leaves) - 1; i >= 0; i-- {
		if !leaves[i].IsSynthetic() {
			return leaves[i].Pos.Line
		}
	}
	return n.First().Pos.Line
}

// relocate clones a subtree with its tokens moved so that the first one
// sits at line 0, column 0.
func relocate(n *ast.Node) *ast.Node {
	origin := n.First().Pos
	clone := &ast.Node{Label: n.Label}
	type pair struct{ src, dst *ast.Node }
	stack := []pair{{n, clone}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.src.IsLeaf() {
			tok := *p.src.Token
			col := tok.Pos.Column
			if tok.Pos.Line == origin.Line {
				col -= origin.Column
			}
			moved := tok.Relocate(tok.Pos.Line-origin.Line, col)
			p.dst.Token = &moved
			continue
		}
		p.dst.Children = make([]*ast.Node, len(p.src.Children))
		for i, c := range p.src.Children {
			p.dst.Children[i] = &ast.Node{Label: c.Label}
			stack = append(stack, pair{c, p.dst.Children[i]})
		}
	}
	return clone
}
