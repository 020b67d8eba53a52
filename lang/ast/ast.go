// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package ast defines the concrete parse tree produced by the chart parser.
//
// Design overview:
//
//   - Interior nodes are labelled with the grammar symbol they derive, such as
//     "<function>" or "<expression>". Later stages dispatch on these labels.
//   - Leaves hold the tokens in source order. A token matched by a category
//     terminal (<Identifier>, <Number>, <String>) sits under a single-child
//     node carrying the category label.
//   - Traversals use explicit stacks so arbitrarily deep programs never
//     exhaust the goroutine stack.
package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/probechain/lupy/lang/token"
)

// Node is a parse tree node. Leaf nodes have a non-nil Token and no children.
type Node struct {
	Label    string
	Children []*Node
	Token    *token.Token
}

// NewNode creates an interior node.
func NewNode(label string, children ...*Node) *Node {
	return &Node{Label: label, Children: children}
}

// NewLeaf creates a leaf for a token matched by the terminal symbol.
func NewLeaf(symbol string, tok token.Token) *Node {
	return &Node{Label: symbol, Token: &tok}
}

// IsLeaf reports whether the node holds a token.
func (n *Node) IsLeaf() bool {
	return n.Token != nil
}

// Is reports whether the node carries the given label.
func (n *Node) Is(label string) bool {
	return n != nil && n.Label == label
}

// Child returns the i-th child, or nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Find returns the first direct child with the given label, or nil.
func (n *Node) Find(label string) *Node {
	for _, c := range n.Children {
		if c.Label == label {
			return c
		}
	}
	return nil
}

// HasLeaf reports whether a direct child is a leaf with the given content.
func (n *Node) HasLeaf(content string) bool {
	for _, c := range n.Children {
		if c.IsLeaf() && c.Token.Content == content {
			return true
		}
	}
	return false
}

// Leaves returns the tokens under n in source order.
func (n *Node) Leaves() []token.Token {
	var (
		toks  []token.Token
		stack = []*Node{n}
	)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.IsLeaf() {
			toks = append(toks, *cur.Token)
			continue
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
	return toks
}

// First returns the first token under n, or nil for an empty subtree.
func (n *Node) First() *token.Token {
	for cur := n; cur != nil; cur = cur.Child(0) {
		if cur.IsLeaf() {
			return cur.Token
		}
	}
	return nil
}

// Text joins the contents of the leaves under n with single spaces.
func (n *Node) Text() string {
	leaves := n.Leaves()
	parts := make([]string, len(leaves))
	for i, tok := range leaves {
		parts[i] = tok.Content
	}
	return strings.Join(parts, " ")
}

// Flatten unrolls a left-recursive list node such as "<statements>" or
// "<arguments>" into its elements and separators in source order.
func (n *Node) Flatten() []*Node {
	var chunks [][]*Node
	cur := n
	for {
		if head := cur.Child(0); head != nil && !head.IsLeaf() && head.Label == n.Label {
			chunks = append(chunks, cur.Children[1:])
			cur = head
			continue
		}
		chunks = append(chunks, cur.Children)
		break
	}
	var flat []*Node
	for i := len(chunks) - 1; i >= 0; i-- {
		flat = append(flat, chunks[i]...)
	}
	return flat
}

// Items is Flatten without the "," separators.
func (n *Node) Items() []*Node {
	var items []*Node
	for _, c := range n.Flatten() {
		if c.IsLeaf() && c.Token.Content == "," {
			continue
		}
		items = append(items, c)
	}
	return items
}

// Fprint writes an indented rendering of the tree to w.
func Fprint(w io.Writer, n *Node) error {
	type entry struct {
		node  *Node
		depth int
	}
	stack := []entry{{n, 0}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		pad := strings.Repeat("  ", e.depth)
		var err error
		if e.node.IsLeaf() {
			_, err = fmt.Fprintf(w, "%s%q @%s\n", pad, e.node.Token.Content, e.node.Token.Pos)
		} else {
			_, err = fmt.Fprintf(w, "%s%s\n", pad, e.node.Label)
		}
		if err != nil {
			return err
		}
		for i := len(e.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, entry{e.node.Children[i], e.depth + 1})
		}
	}
	return nil
}

// String renders the tree in bracketed form, e.g. (<atom> (<Identifier> x)).
func (n *Node) String() string {
	var b strings.Builder
	type entry struct {
		node  *Node
		close bool
	}
	stack := []entry{{node: n}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch {
		case e.close:
			b.WriteByte(')')
		case e.node.IsLeaf():
			b.WriteByte(' ')
			b.WriteString(e.node.Token.Content)
		default:
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString("(" + e.node.Label)
			stack = append(stack, entry{node: e.node, close: true})
			for i := len(e.node.Children) - 1; i >= 0; i-- {
				stack = append(stack, entry{node: e.node.Children[i]})
			}
		}
	}
	return b.String()
}
