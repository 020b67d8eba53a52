// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/lupy/internal/sandbox"
	"github.com/probechain/lupy/translate"
)

var (
	runFlag = cli.BoolFlag{
		Name:  "run",
		Usage: "Run every translated snippet",
	}

	consoleCommand = cli.Command{
		Action:   console,
		Name:     "console",
		Usage:    "Start an interactive translation session",
		Flags:    []cli.Flag{runFlag, unsafeFlag, grammarFlag, timeoutFlag},
		Category: "TRANSLATION COMMANDS",
		Description: `
The console reads a Python snippet line by line. An empty line submits the
snippet, which is translated and printed as Lua. Tab inserts a tab and four
leading spaces are read as one tab.`,
	}
)

const historyFile = ".lupy_history"

func console(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	tr, release := makeTranslator(&cfg)
	defer release()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(s string) []string { return []string{s + "\t"} })

	history := ""
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, historyFile)
		if f, err := os.Open(history); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Println("Welcome to the lupy console. Submit a snippet with an empty line, exit with Ctrl-D.")
	var snippet strings.Builder
	for {
		prompt := ">>> "
		if snippet.Len() > 0 {
			prompt = "... "
		}
		input, err := line.Prompt(prompt)
		switch {
		case err == liner.ErrPromptAborted:
			snippet.Reset()
			continue
		case err == io.EOF:
			fmt.Println()
			saveHistory(line, history)
			return nil
		case err != nil:
			return err
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
			snippet.WriteString(retab(input))
			snippet.WriteByte('\n')
			continue
		}
		if snippet.Len() == 0 {
			continue
		}
		evaluate(ctx, tr, snippet.String())
		snippet.Reset()
	}
}

// retab turns every leading run of four spaces into a tab.
func retab(line string) string {
	tabs := 0
	for strings.HasPrefix(line, "    ") {
		line = line[4:]
		tabs++
	}
	return strings.Repeat("\t", tabs) + line
}

func evaluate(ctx *cli.Context, tr *translate.Translator, src string) {
	lua, err := tr.Translate(src)
	if err != nil {
		fmt.Println(failure(translate.KindOf(err).String()+" error:"), err)
		return
	}
	fmt.Print(lua)
	if !ctx.Bool(runFlag.Name) {
		return
	}
	runctx, cancel := context.WithTimeout(context.Background(), ctx.Duration(timeoutFlag.Name))
	defer cancel()
	out, err := sandbox.Run(runctx, lua)
	fmt.Print(out)
	if err != nil {
		fmt.Println(failure("runtime error:"), err)
	}
}

func saveHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	if f, err := os.Create(path); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
}
