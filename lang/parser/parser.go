// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package parser implements an Earley chart parser with back-pointer tree
// reconstruction.
//
// The chart has one entry per input position plus one. Each entry is
// processed until no new states appear, running the predictor, scanner and
// completer over states added during the pass itself. Input is matched
// against the symbol projection of the token stream (token.Symbol), never
// against raw text.
//
// For ambiguous grammars the first derivation inserted for a given
// (rule, dot, origin) is kept; later equal states are discarded together
// with their back-pointers.
package parser

import (
	"github.com/probechain/lupy/lang/ast"
	"github.com/probechain/lupy/lang/grammar"
	"github.com/probechain/lupy/lang/token"
)

// acceptSymbol is the left-hand side of the augmented start rule.
const acceptSymbol = "γ"

// Parser parses token sequences with a fixed grammar. A Parser holds no
// per-parse state and is safe for concurrent use.
type Parser struct {
	g      *grammar.Grammar
	accept *grammar.Rule
}

// New creates a parser for g.
func New(g *grammar.Grammar) *Parser {
	return &Parser{
		g:      g,
		accept: &grammar.Rule{LHS: acceptSymbol, RHS: []string{g.Start()}},
	}
}

// Grammar returns the grammar the parser was built with.
func (p *Parser) Grammar() *grammar.Grammar { return p.g }

// Parse checks the trailing newline, builds the chart and reconstructs the
// parse tree of the whole token sequence.
func (p *Parser) Parse(tokens []token.Token) (*ast.Node, error) {
	if err := CheckNewline(tokens); err != nil {
		return nil, err
	}
	chart := p.Recognize(tokens)
	accept := p.Accepting(chart)
	if accept == nil {
		return nil, p.syntaxError(chart, tokens)
	}
	return build(p.g, accept.Back[0], tokens)
}

// CheckNewline verifies that the tokens, ignoring trailing dedents, end in a
// newline divider.
func CheckNewline(tokens []token.Token) error {
	i := len(tokens) - 1
	for i >= 0 && tokens[i].Kind == token.Divider && tokens[i].Content == token.Dedent {
		i--
	}
	if i < 0 || tokens[i].Kind != token.Divider || tokens[i].Content != token.Newline {
		return ErrNoNewLine
	}
	return nil
}

// Recognize builds the Earley chart for tokens.
func (p *Parser) Recognize(tokens []token.Token) *Chart {
	n := len(tokens)
	input := make([]string, n)
	for i, tok := range tokens {
		input[i] = tok.Symbol()
	}
	chart := newChart(n)
	chart.Entries[0].add(&State{Rule: p.accept})

	for i := 0; i <= n; i++ {
		entry := chart.Entries[i]
		// The entry grows while it is walked.
		for j := 0; j < len(entry.States); j++ {
			s := entry.States[j]
			switch {
			case s.Complete():
				p.complete(chart, s, i)
			case p.g.IsTerminal(s.Next()):
				if i < n && input[i] == s.Next() {
					chart.Entries[i+1].add(s.advance(i+1, nil))
				}
			default:
				p.predict(chart, s.Next(), i, input)
			}
		}
	}
	return chart
}

// predict adds a zero-dot state at position i for every rule of symbol.
// Rules of a tag can only survive if their first terminal is the next input
// symbol, so the others are not added.
func (p *Parser) predict(chart *Chart, symbol string, i int, input []string) {
	tag := p.g.IsTag(symbol)
	for _, r := range p.g.RulesFor(symbol) {
		if tag && (i >= len(input) || r.RHS[0] != input[i]) {
			continue
		}
		chart.Entries[i].add(&State{Rule: r, Origin: i, End: i})
	}
}

// complete advances every state at the origin of s that was waiting for the
// symbol s recognized.
func (p *Parser) complete(chart *Chart, s *State, i int) {
	for _, prev := range chart.Entries[s.Origin].waiting[s.Rule.LHS] {
		chart.Entries[i].add(prev.advance(i, s))
	}
}

// Accepting returns the complete augmented start state spanning the whole
// input, or nil.
func (p *Parser) Accepting(chart *Chart) *State {
	last := chart.Entries[len(chart.Entries)-1]
	for _, s := range last.States {
		if s.Rule == p.accept && s.Complete() && s.Origin == 0 {
			return s
		}
	}
	return nil
}
