// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package parser

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/probechain/lupy/lang/token"
)

// ErrNoNewLine is returned when the input does not end with a line break.
var ErrNoNewLine = errors.New("syntax error: no newline at end of file")

// maxExpected bounds the number of expected symbols listed in a message.
const maxExpected = 8

// SyntaxError reports that no derivation of the start symbol covers the
// input. Token is the first token the chart could not consume, or nil when
// the input ended too early.
type SyntaxError struct {
	Token    *token.Token
	Expected []string
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	if e.Token == nil {
		b.WriteString("syntax error: unexpected end of input")
	} else {
		fmt.Fprintf(&b, "syntax error at %s: unexpected %q", e.Token.Pos, e.Token.Content)
	}
	if len(e.Expected) > 0 {
		expected := e.Expected
		more := ""
		if len(expected) > maxExpected {
			expected, more = expected[:maxExpected], ", ..."
		}
		fmt.Fprintf(&b, " (expected %s%s)", strings.Join(expected, ", "), more)
	}
	return b.String()
}

// syntaxError describes where the chart stopped making progress.
func (p *Parser) syntaxError(chart *Chart, tokens []token.Token) error {
	at := chart.furthest()
	err := new(SyntaxError)
	if at < len(tokens) {
		tok := tokens[at]
		err.Token = &tok
	}
	seen := make(map[string]bool)
	for _, s := range chart.Entries[at].States {
		if s.Complete() {
			continue
		}
		next := s.Next()
		switch {
		case p.g.IsTerminal(next):
			seen[next] = true
		case p.g.IsTag(next):
			for _, r := range p.g.RulesFor(next) {
				seen[r.RHS[0]] = true
			}
		}
	}
	for sym := range seen {
		err.Expected = append(err.Expected, sym)
	}
	sort.Strings(err.Expected)
	return err
}

// InternalError reports a broken invariant during tree reconstruction.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "parser: internal error: " + e.Msg
}
