// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package parser

import (
	"fmt"
	"strings"

	"github.com/probechain/lupy/lang/grammar"
)

// State is an Earley item: Rule recognized up to Dot over [Origin, End).
// Back holds one completed state per non-terminal left of the dot, in order.
// States are never modified once inserted into the chart.
type State struct {
	Rule   *grammar.Rule
	Dot    int
	Origin int
	End    int
	Back   []*State
}

// Complete reports whether the dot is at the end of the rule.
func (s *State) Complete() bool {
	return s.Dot == len(s.Rule.RHS)
}

// Next returns the symbol right of the dot. It must not be called on a
// complete state.
func (s *State) Next() string {
	return s.Rule.RHS[s.Dot]
}

// advance returns the state moved one symbol forward and ending at end.
// A completed sub-state is appended to a fresh copy of the back-pointers.
func (s *State) advance(end int, completed *State) *State {
	back := s.Back
	if completed != nil {
		back = make([]*State, len(s.Back), len(s.Back)+1)
		copy(back, s.Back)
		back = append(back, completed)
	}
	return &State{Rule: s.Rule, Dot: s.Dot + 1, Origin: s.Origin, End: end, Back: back}
}

func (s *State) String() string {
	rhs := make([]string, 0, len(s.Rule.RHS)+1)
	rhs = append(rhs, s.Rule.RHS[:s.Dot]...)
	rhs = append(rhs, "•")
	rhs = append(rhs, s.Rule.RHS[s.Dot:]...)
	return fmt.Sprintf("%s -> %s [%d, %d]", s.Rule.LHS, strings.Join(rhs, " "), s.Origin, s.End)
}

type stateKey struct {
	rule   *grammar.Rule
	dot    int
	origin int
}

// Entry is the deduplicated set of states at one chart position. States are
// kept in insertion order.
type Entry struct {
	States []*State

	seen    map[stateKey]bool
	waiting map[string][]*State // incomplete states by expected symbol
}

func newEntry() *Entry {
	return &Entry{
		seen:    make(map[stateKey]bool),
		waiting: make(map[string][]*State),
	}
}

// add inserts s unless an equal state is already present. The first
// insertion wins, which fixes the derivation chosen for ambiguous input.
func (e *Entry) add(s *State) bool {
	key := stateKey{s.Rule, s.Dot, s.Origin}
	if e.seen[key] {
		return false
	}
	e.seen[key] = true
	e.States = append(e.States, s)
	if !s.Complete() {
		e.waiting[s.Next()] = append(e.waiting[s.Next()], s)
	}
	return true
}

// Chart holds N+1 entries for N input symbols.
type Chart struct {
	Entries []*Entry
}

func newChart(n int) *Chart {
	c := &Chart{Entries: make([]*Entry, n+1)}
	for i := range c.Entries {
		c.Entries[i] = newEntry()
	}
	return c
}

// Size returns the total number of states in the chart.
func (c *Chart) Size() int {
	size := 0
	for _, e := range c.Entries {
		size += len(e.States)
	}
	return size
}

// furthest returns the last position holding any state.
func (c *Chart) furthest() int {
	for i := len(c.Entries) - 1; i > 0; i-- {
		if len(c.Entries[i].States) > 0 {
			return i
		}
	}
	return 0
}
