// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package codegen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/gopher-lua/parse"
)

// VerifyError is a Lua syntax error found in generated code. Line and
// Column are 1-based, as reported by the Lua parser.
type VerifyError struct {
	Line    int
	Column  int
	Message string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("generated lua does not parse at %d:%d: %s", e.Line, e.Column, e.Message)
}

// Verify parses lua with a Lua 5.1 parser and returns the first syntax
// error, or nil when the code is well formed.
func Verify(lua string) error {
	_, err := parse.Parse(strings.NewReader(lua), "<generated>")
	if err == nil {
		return nil
	}
	var perr *parse.Error
	if errors.As(err, &perr) {
		return &VerifyError{Line: perr.Pos.Line, Column: perr.Pos.Column, Message: perr.Message}
	}
	return &VerifyError{Message: err.Error()}
}
