// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package grammar loads the context-free production rules driving the chart
// parser.
//
// The rule text format is one left-hand side per line:
//
//	LHS -> A B C | D E
//
// Each "|" separated alternative becomes one Rule. Blank lines are skipped
// and "#" starts a comment running to the end of the line. A symbol with no
// rules of its own is a terminal.
package grammar

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/sha3"
)

//go:embed python.grammar
var defaultText string

// Rule is a single production. Rules are immutable after loading and are
// compared by identity.
type Rule struct {
	LHS string
	RHS []string
}

func (r *Rule) String() string {
	return r.LHS + " -> " + strings.Join(r.RHS, " ")
}

// Grammar is a loaded, read-only rule table. It is safe for concurrent use.
type Grammar struct {
	start  string
	rules  []*Rule
	byLHS  map[string][]*Rule
	tags   map[string]bool
	digest []byte
}

// LoadError reports a malformed line of rule text.
type LoadError struct {
	Line int // 1-based
	Msg  string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("grammar line %d: %s", e.Line, e.Msg)
}

// Load parses rule text into a Grammar. The start symbol is the left-hand
// side of the first rule.
func Load(text string) (*Grammar, error) {
	g := &Grammar{byLHS: make(map[string][]*Rule)}
	for i, line := range strings.Split(text, "\n") {
		if hash := strings.IndexByte(line, '#'); hash >= 0 {
			line = line[:hash]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "->", 2)
		if len(parts) != 2 {
			return nil, &LoadError{Line: i + 1, Msg: "missing \"->\""}
		}
		lhs := strings.Fields(parts[0])
		if len(lhs) != 1 {
			return nil, &LoadError{Line: i + 1, Msg: fmt.Sprintf("left-hand side must be one symbol, have %d", len(lhs))}
		}
		for _, alt := range strings.Split(parts[1], "|") {
			rhs := strings.Fields(alt)
			if len(rhs) == 0 {
				return nil, &LoadError{Line: i + 1, Msg: fmt.Sprintf("empty alternative for %s", lhs[0])}
			}
			g.add(&Rule{LHS: lhs[0], RHS: rhs})
		}
	}
	if len(g.rules) == 0 {
		return nil, &LoadError{Line: 1, Msg: "no rules"}
	}
	g.start = g.rules[0].LHS
	g.index()
	return g, nil
}

// LoadFile reads and parses a rule file.
func LoadFile(path string) (*Grammar, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := Load(string(text))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

var (
	defaultOnce    sync.Once
	defaultGrammar *Grammar
)

// Default returns the built-in Python subset grammar.
func Default() *Grammar {
	defaultOnce.Do(func() {
		g, err := Load(defaultText)
		if err != nil {
			panic(fmt.Sprintf("invalid built-in grammar: %v", err))
		}
		defaultGrammar = g
	})
	return defaultGrammar
}

// DefaultText returns the rule text of the built-in grammar.
func DefaultText() string {
	return defaultText
}

func (g *Grammar) add(r *Rule) {
	g.rules = append(g.rules, r)
	g.byLHS[r.LHS] = append(g.byLHS[r.LHS], r)
}

// index computes tags and the content digest once all rules are known.
func (g *Grammar) index() {
	g.tags = make(map[string]bool)
	for lhs, rules := range g.byLHS {
		tag := true
		for _, r := range rules {
			for _, sym := range r.RHS {
				if !g.IsTerminal(sym) {
					tag = false
				}
			}
		}
		g.tags[lhs] = tag
	}
	hasher := sha3.NewLegacyKeccak256()
	for _, r := range g.rules {
		hasher.Write([]byte(r.String()))
		hasher.Write([]byte{'\n'})
	}
	g.digest = hasher.Sum(nil)
}

// Start returns the start symbol.
func (g *Grammar) Start() string { return g.start }

// Rules returns every rule in load order.
func (g *Grammar) Rules() []*Rule { return g.rules }

// RulesFor returns the rules of a symbol in load order.
func (g *Grammar) RulesFor(symbol string) []*Rule { return g.byLHS[symbol] }

// IsTerminal reports whether symbol has no rules.
func (g *Grammar) IsTerminal(symbol string) bool { return len(g.byLHS[symbol]) == 0 }

// IsTag reports whether symbol is a non-terminal all of whose rules consist
// of terminals only.
func (g *Grammar) IsTag(symbol string) bool { return g.tags[symbol] }

// IsCategory reports whether a terminal names a token category rather than
// literal token content.
func IsCategory(symbol string) bool {
	return len(symbol) > 2 && strings.HasPrefix(symbol, "<") && strings.HasSuffix(symbol, ">")
}

// Digest is the Keccak-256 hash of the normalized rules. Two grammars with
// the same digest parse identically.
func (g *Grammar) Digest() []byte { return g.digest }

// Symbols returns the non-terminals in first-definition order.
func (g *Grammar) Symbols() []string {
	var (
		seen = make(map[string]bool)
		syms []string
	)
	for _, r := range g.rules {
		if !seen[r.LHS] {
			seen[r.LHS] = true
			syms = append(syms, r.LHS)
		}
	}
	return syms
}
