// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package semantic

import (
	mapset "github.com/deckarep/golang-set"

	"github.com/probechain/lupy/lang/ast"
	"github.com/probechain/lupy/lang/token"
)

// ProgramContext names the top-level scope.
const ProgramContext = "<program>"

// Signature is what the collect phase learns about a function definition.
type Signature struct {
	Name   string
	Params int
	Def    token.Token // the name token at the definition site
	Locals mapset.Set  // parameters plus every name bound in the body

	node *ast.Node
}

// scope is one level of the validation stack. The program scope grows as
// declarations are passed; a function scope starts out complete.
type scope struct {
	fn       *Signature // nil at program level
	declared mapset.Set
}

func (s *scope) name() string {
	if s.fn == nil {
		return ProgramContext
	}
	return s.fn.Name
}

// Tables holds the result of the collect phase.
type Tables struct {
	Functions map[string]*Signature
	Globals   mapset.Set // program-level names and every function name

	byNode map[*ast.Node]*Signature
}

// Function returns the signature of a defined function.
func (t *Tables) Function(name string) (*Signature, bool) {
	sig, ok := t.Functions[name]
	return sig, ok
}
