// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package sandbox executes generated Lua and captures what it prints.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// RuntimeError is a Lua error raised while loading or running a chunk.
// Output holds what was printed before the failure.
type RuntimeError struct {
	Msg    string
	Output string
}

func (e *RuntimeError) Error() string {
	return "lua runtime error: " + e.Msg
}

// Run executes code in a fresh Lua state and returns everything passed to
// print, one line per call with arguments separated by tabs. The state is
// closed before Run returns. Cancelling ctx aborts execution.
func Run(ctx context.Context, code string) (string, error) {
	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)

	var out bytes.Buffer
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		top := L.GetTop()
		for i := 1; i <= top; i++ {
			if i > 1 {
				out.WriteByte('\t')
			}
			out.WriteString(L.ToStringMeta(L.Get(i)).String())
		}
		out.WriteByte('\n')
		return 0
	}))

	if err := L.DoString(code); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out.String(), fmt.Errorf("lua execution aborted: %w", ctxErr)
		}
		var apiErr *lua.ApiError
		if errors.As(err, &apiErr) {
			return out.String(), &RuntimeError{Msg: apiErr.Object.String(), Output: out.String()}
		}
		return out.String(), &RuntimeError{Msg: err.Error(), Output: out.String()}
	}
	return out.String(), nil
}
