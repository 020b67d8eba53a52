// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package semantic validates name scoping and call arity on a parse tree.
//
// Checking runs in two phases over the tree:
//
//  1. Collect records every function signature, the complete set of names
//     bound inside each function and the final set of program-level names.
//     A second definition of a function name fails here.
//  2. Validate walks the tree top-down with an explicit scope stack. At
//     program level names must be bound before use. Inside a function body
//     names resolve against the enclosing functions and then the final
//     program-level set, so bodies may refer to functions and globals that
//     are defined further down the file.
package semantic

import (
	"fmt"

	mapset "github.com/deckarep/golang-set"

	"github.com/probechain/lupy/lang/ast"
	"github.com/probechain/lupy/lang/token"
)

// Error is a scope or arity violation at a specific token.
type Error struct {
	Token  token.Token
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("semantic error at %s: %s", e.Token.Pos, e.Reason)
}

func errorf(tok token.Token, format string, args ...interface{}) *Error {
	return &Error{Token: tok, Reason: fmt.Sprintf(format, args...)}
}

// Check runs both phases on tree and returns the first violation found.
func Check(tree *ast.Node) error {
	tables, err := Collect(tree)
	if err != nil {
		return err
	}
	return Validate(tree, tables)
}

// ---------------------------------------------------------------------------
// Phase 1: collect
// ---------------------------------------------------------------------------

// Collect gathers function signatures and declarations.
func Collect(tree *ast.Node) (*Tables, error) {
	t := &Tables{
		Functions: make(map[string]*Signature),
		Globals:   mapset.NewSet(),
		byNode:    make(map[*ast.Node]*Signature),
	}
	type entry struct {
		node *ast.Node
		fn   *Signature
	}
	stack := []entry{{tree, nil}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, fn := e.node, e.fn

		declare := func(tok *token.Token) {
			if fn != nil {
				fn.Locals.Add(tok.Content)
			} else {
				t.Globals.Add(tok.Content)
			}
		}
		switch n.Label {
		case "<function>":
			name := n.Child(1).First()
			if prev, ok := t.Functions[name.Content]; ok {
				return nil, errorf(*name, "function %q is already defined at %s", name.Content, prev.Def.Pos)
			}
			sig := &Signature{Name: name.Content, Def: *name, Locals: mapset.NewSet(), node: n}
			if params := n.Find("<parameters>"); params != nil {
				for _, p := range params.Items() {
					sig.Locals.Add(p.First().Content)
					sig.Params++
				}
			}
			t.Functions[sig.Name] = sig
			t.Globals.Add(sig.Name)
			t.byNode[n] = sig
			fn = sig

		case "<assignment>":
			if target := n.Child(0); target.Is(token.IdentifierSymbol) {
				declare(target.First())
			}

		case "<for>":
			declare(n.Child(1).First())
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			if c := n.Children[i]; !c.IsLeaf() {
				stack = append(stack, entry{c, fn})
			}
		}
	}
	return t, nil
}

// ---------------------------------------------------------------------------
// Phase 2: validate
// ---------------------------------------------------------------------------

// task is a unit of validation work: a subtree to visit or an action to run
// once the subtrees pushed above it are done.
type task struct {
	node   *ast.Node
	action func() error
}

type validator struct {
	tables *Tables
	scopes []*scope
	tasks  []task
}

// Validate checks every name use in tree against tables.
func Validate(tree *ast.Node, tables *Tables) error {
	v := &validator{
		tables: tables,
		scopes: []*scope{{declared: mapset.NewSet()}},
	}
	v.visit(tree)
	for len(v.tasks) > 0 {
		t := v.tasks[len(v.tasks)-1]
		v.tasks = v.tasks[:len(v.tasks)-1]
		if t.action != nil {
			if err := t.action(); err != nil {
				return err
			}
			continue
		}
		if err := v.expand(t.node); err != nil {
			return err
		}
	}
	return nil
}

// visit schedules n on top of the pending work.
func (v *validator) visit(n *ast.Node) {
	v.tasks = append(v.tasks, task{node: n})
}

// schedule pushes work items so that they run in argument order.
func (v *validator) schedule(items ...task) {
	for i := len(items) - 1; i >= 0; i-- {
		v.tasks = append(v.tasks, items[i])
	}
}

func node(n *ast.Node) task { return task{node: n} }

func action(f func() error) task { return task{action: f} }

func (v *validator) top() *scope { return v.scopes[len(v.scopes)-1] }

func (v *validator) atProgramLevel() bool { return v.top().fn == nil }

// expand handles one node, scheduling its children according to its role.
func (v *validator) expand(n *ast.Node) error {
	switch n.Label {
	case "<function>":
		sig := v.tables.byNode[n]
		if v.atProgramLevel() {
			v.top().declared.Add(sig.Name)
		}
		v.schedule(
			action(func() error { v.scopes = append(v.scopes, &scope{fn: sig, declared: sig.Locals}); return nil }),
			node(n.Find("<block>")),
			action(func() error { v.scopes = v.scopes[:len(v.scopes)-1]; return nil }),
		)
		return nil

	case "<assignment>":
		target, value := n.Child(0), n.Child(2)
		if target.Is(token.IdentifierSymbol) {
			v.schedule(node(value), action(func() error { v.declare(target.First()); return nil }))
		} else {
			v.schedule(node(target), node(value))
		}
		return nil

	case "<for>":
		iterable, body := n.Child(3), n.Find("<block>")
		v.schedule(node(iterable), action(func() error { v.declare(n.Child(1).First()); return nil }), node(body))
		return nil

	case "<function_call>":
		callee := n.Child(0).First()
		argc := 0
		args := n.Find("<arguments>")
		if args != nil {
			argc = len(args.Items())
		}
		if err := v.call(callee, argc); err != nil {
			return err
		}
		if args != nil {
			v.visit(args)
		}
		return nil

	case "<keyword_argument>":
		// The key is a literal name, not a reference.
		v.visit(n.Child(2))
		return nil

	case token.IdentifierSymbol:
		return v.reference(n.First())
	}
	var children []task
	for _, c := range n.Children {
		if !c.IsLeaf() {
			children = append(children, node(c))
		}
	}
	v.schedule(children...)
	return nil
}

// declare binds a name at the current level. Function scopes already hold
// every local from the collect phase.
func (v *validator) declare(tok *token.Token) {
	if v.atProgramLevel() {
		v.top().declared.Add(tok.Content)
	}
}

// local reports whether name is bound by an enclosing function.
func (v *validator) local(name string) bool {
	for i := len(v.scopes) - 1; i > 0; i-- {
		if v.scopes[i].declared.Contains(name) {
			return true
		}
	}
	return false
}

// resolved reports whether name is visible at the current position.
func (v *validator) resolved(name string) bool {
	if v.atProgramLevel() {
		return v.top().declared.Contains(name)
	}
	return v.local(name) || v.tables.Globals.Contains(name)
}

func (v *validator) reference(tok *token.Token) error {
	if v.resolved(tok.Content) {
		return nil
	}
	if v.atProgramLevel() {
		return errorf(*tok, "name %q is used before it is defined", tok.Content)
	}
	return errorf(*tok, "name %q is not defined in %s or at program level", tok.Content, v.top().name())
}

// call validates a call site. A local binding shadows a function of the
// same name and is called with unknown arity.
func (v *validator) call(tok *token.Token, argc int) error {
	name := tok.Content
	if v.local(name) {
		return nil
	}
	if sig, ok := v.tables.Function(name); ok {
		if v.atProgramLevel() && !v.top().declared.Contains(name) {
			return errorf(*tok, "function %q is called before it is defined", name)
		}
		if sig.Params != argc {
			return errorf(*tok, "function %q takes %d arguments but %d were given", name, sig.Params, argc)
		}
		return nil
	}
	if v.resolved(name) {
		return nil
	}
	return errorf(*tok, "function %q is not defined", name)
}
