// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package log

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Setup installs the root handler: records at lvl or more severe are
// written to f, colored when f is a terminal. format is "terminal" or
// "logfmt".
func Setup(f *os.File, lvl Lvl, format string) {
	root.SetHandler(LvlFilterHandler(lvl, NewHandler(f, format)))
}

// NewHandler returns a stream handler for f in the named format.
func NewHandler(f *os.File, format string) Handler {
	if format == "logfmt" {
		return StreamHandler(f, LogfmtFormat())
	}
	usecolor := (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && os.Getenv("TERM") != "dumb"
	var out io.Writer = f
	if usecolor {
		out = colorable.NewColorable(f)
	}
	return StreamHandler(out, TerminalFormat(usecolor))
}
