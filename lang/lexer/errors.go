// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package lexer

import (
	"fmt"
	"strings"
)

// LexicalError reports a character run that matches no token category.
type LexicalError struct {
	Line   int    // 0-based
	Column int    // 0-based, leading tabs count TabWidth columns
	Text   string // the offending source line
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("lexical error at %d:%d: unexpected character\n%s", e.Line+1, e.Column+1, Caret(e.Text, e.Column))
}

// IndentError reports a line indented with spaces instead of tabs.
type IndentError struct {
	Line   int
	Column int
	Text   string
}

func (e *IndentError) Error() string {
	return fmt.Sprintf("indentation error at %d:%d: unexpected spaces at the start of the line\n%s", e.Line+1, e.Column+1, Caret(e.Text, e.Column))
}

// Caret renders a source line followed by a caret under column. Leading
// tabs are expanded so the caret lines up with lexer columns.
func Caret(line string, column int) string {
	tabs := len(line) - len(strings.TrimLeft(line, "\t"))
	expanded := strings.Repeat(" ", tabs*TabWidth) + line[tabs:]
	if column < 0 {
		column = 0
	}
	return fmt.Sprintf("    %s\n    %s^", expanded, strings.Repeat(" ", column))
}
