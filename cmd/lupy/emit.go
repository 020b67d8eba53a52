// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/lupy/internal/sandbox"
	"github.com/probechain/lupy/lang/ast"
	"github.com/probechain/lupy/lang/grammar"
	"github.com/probechain/lupy/lang/token"
)

var (
	stageFlag = cli.StringFlag{
		Name:  "stage",
		Usage: "Stage to print: tokens, tree, statements, lua, grammar or symbols",
		Value: "lua",
	}
	timeoutFlag = cli.DurationFlag{
		Name:  "timeout",
		Usage: "Maximum running time of the Lua program",
		Value: 5 * time.Second,
	}

	emitCommand = cli.Command{
		Action:    emit,
		Name:      "emit",
		Usage:     "Print an intermediate stage of one translation",
		ArgsUsage: "<file.py>",
		Flags:     []cli.Flag{stageFlag, unsafeFlag, grammarFlag},
		Category:  "TRANSLATION COMMANDS",
	}
	runCommand = cli.Command{
		Action:    run,
		Name:      "run",
		Usage:     "Translate a file and run the Lua result",
		ArgsUsage: "<file.py>",
		Flags:     []cli.Flag{timeoutFlag, unsafeFlag, grammarFlag},
		Category:  "TRANSLATION COMMANDS",
	}
)

func readArg(ctx *cli.Context) string {
	if ctx.NArg() != 1 {
		fatalf("This command requires exactly one source file")
	}
	src, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		fatalf("Could not read source: %v", err)
	}
	return string(src)
}

func emit(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	stage := ctx.String(stageFlag.Name)
	if stage == "grammar" {
		text := grammar.DefaultText()
		if file := cfg.Translate.GrammarFile; file != "" {
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			text = string(raw)
		}
		fmt.Print(text)
		return nil
	}
	var src string
	if stage != "symbols" {
		src = readArg(ctx)
	}
	tr, release := makeTranslator(&cfg)
	defer release()

	if stage == "symbols" {
		writeSymbols(os.Stdout, tr.Grammar())
		return nil
	}
	res, err := tr.Stages(src)
	switch stage {
	case "tokens":
		for _, tok := range res.Tokens {
			fmt.Println(tok)
		}
	case "tree":
		if res.Tree != nil {
			ast.Fprint(os.Stdout, res.Tree)
		}
	case "statements":
		if res.Tree != nil {
			writeStatements(os.Stdout, res.Tree)
		}
	case "lua":
		fmt.Print(res.Lua)
	default:
		return fmt.Errorf("unknown stage %q", stage)
	}
	return err
}

// writeSymbols lists the non-terminals of g with their rule counts.
func writeSymbols(w io.Writer, g *grammar.Grammar) {
	fmt.Fprintf(w, "start %s, digest %x\n", g.Start(), g.Digest()[:4])
	for _, sym := range g.Symbols() {
		tag := ""
		if g.IsTag(sym) {
			tag = " (tag)"
		}
		fmt.Fprintf(w, "%-22s %d%s\n", sym, len(g.RulesFor(sym)), tag)
	}
}

// writeStatements prints every top-level statement of tree on one line,
// prefixed with its position. Blank lines are skipped.
func writeStatements(w io.Writer, tree *ast.Node) {
	list := tree.Find("<statements>")
	if list == nil {
		return
	}
	for _, stmt := range list.Flatten() {
		first := stmt.First()
		if first == nil || first.Kind == token.Divider && first.Content == token.Newline {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", first.Pos, stmt.Text())
	}
}

func run(ctx *cli.Context) error {
	src := readArg(ctx)
	cfg := makeConfig(ctx)
	tr, release := makeTranslator(&cfg)
	defer release()

	lua, err := tr.Translate(src)
	if err != nil {
		return err
	}
	runctx, cancel := context.WithTimeout(context.Background(), ctx.Duration(timeoutFlag.Name))
	defer cancel()

	out, err := sandbox.Run(runctx, lua)
	fmt.Print(out)
	var rerr *sandbox.RuntimeError
	if errors.As(err, &rerr) {
		return cli.NewExitError(rerr.Error(), 2)
	}
	return err
}
