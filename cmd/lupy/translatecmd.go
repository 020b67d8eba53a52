// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/lupy/internal/batch"
)

var translateCommand = cli.Command{
	Action:    translateFiles,
	Name:      "translate",
	Usage:     "Translate a file or a directory tree of Python sources",
	ArgsUsage: " ",
	Flags:     translateFlags,
	Category:  "TRANSLATION COMMANDS",
	Description: `
Every .py file under --input is translated into a .lua file at the mirrored
path under --output. A file that fails to translate is reported and skipped.
The command exits with status 1 when any file failed.`,
}

var (
	success = color.New(color.FgGreen, color.Bold).SprintFunc()
	failure = color.New(color.FgRed, color.Bold).SprintFunc()
)

// translateFiles is the translate command and the default action.
func translateFiles(ctx *cli.Context) error {
	if ctx.NArg() > 0 {
		return fmt.Errorf("invalid command: %q", ctx.Args().Get(0))
	}
	cfg := makeConfig(ctx)
	tr, release := makeTranslator(&cfg)
	defer release()

	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("Translation started")
	report, err := batch.Run(sigctx, tr, cfg.Batch, func(res batch.Result) {
		printResult(color.Output, res)
	})
	if err != nil {
		return err
	}
	report.Render(os.Stdout)
	if n := report.Failed(); n > 0 {
		return cli.NewExitError(fmt.Sprintf("%d of %d files failed", n, len(report.Results)), 1)
	}
	return nil
}

func printResult(w io.Writer, res batch.Result) {
	fmt.Fprintln(w, res.Source)
	if res.Err == nil {
		fmt.Fprintln(w, "Status:", success("SUCCESS"))
		return
	}
	fmt.Fprintln(w, "Status:", failure("ERROR"))
	fmt.Fprintln(w, "Description:", res.Err)
	fmt.Fprintln(w, "File skipped")
}
