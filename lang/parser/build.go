// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package parser

import (
	"fmt"

	"github.com/probechain/lupy/lang/ast"
	"github.com/probechain/lupy/lang/grammar"
	"github.com/probechain/lupy/lang/token"
)

// frame is one state being unfolded during tree reconstruction.
type frame struct {
	state *State
	node  *ast.Node
	sym   int // next right-hand symbol to unfold
	back  int // next unused back-pointer
}

// build unfolds root and its back-pointers into a parse tree. Non-terminal
// symbols consume the next back-pointer, terminals consume the next token,
// so every token ends up as exactly one leaf in source order.
func build(g *grammar.Grammar, root *State, tokens []token.Token) (*ast.Node, error) {
	tree := ast.NewNode(root.Rule.LHS)
	stack := []*frame{{state: root, node: tree}}
	next := 0

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if f.sym == len(f.state.Rule.RHS) {
			if f.back != len(f.state.Back) {
				return nil, &InternalError{Msg: fmt.Sprintf("unused back-pointers in %s", f.state)}
			}
			stack = stack[:len(stack)-1]
			continue
		}
		sym := f.state.Rule.RHS[f.sym]
		f.sym++

		if !g.IsTerminal(sym) {
			if f.back >= len(f.state.Back) || f.state.Back[f.back].Rule.LHS != sym {
				return nil, &InternalError{Msg: fmt.Sprintf("no derivation of %s in %s", sym, f.state)}
			}
			child := f.state.Back[f.back]
			f.back++
			node := ast.NewNode(sym)
			f.node.Children = append(f.node.Children, node)
			stack = append(stack, &frame{state: child, node: node})
			continue
		}

		if next >= len(tokens) {
			return nil, &InternalError{Msg: fmt.Sprintf("ran out of tokens at %s", sym)}
		}
		leaf := ast.NewLeaf(sym, tokens[next])
		next++
		if grammar.IsCategory(sym) {
			leaf = ast.NewNode(sym, leaf)
		}
		f.node.Children = append(f.node.Children, leaf)
	}
	if next != len(tokens) {
		return nil, &InternalError{Msg: fmt.Sprintf("consumed %d of %d tokens", next, len(tokens))}
	}
	return tree, nil
}
