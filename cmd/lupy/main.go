// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// lupy translates Python programs into Lua.
package main

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/lupy/log"
	"github.com/probechain/lupy/params"
)

const clientIdentifier = "lupy"

var (
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""

	app = cli.NewApp()
)

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
	logFormatFlag = cli.StringFlag{
		Name:  "log.format",
		Usage: "Log format: terminal or logfmt",
		Value: "terminal",
	}
)

var (
	inputFlag = cli.StringFlag{
		Name:  "input, i",
		Usage: "Source file or directory",
		Value: "./input",
	}
	outputFlag = cli.StringFlag{
		Name:  "output, o",
		Usage: "Output directory",
		Value: "./output",
	}
	unsafeFlag = cli.BoolFlag{
		Name:  "unsafe",
		Usage: "Skip the scope and arity checks",
	}
	verifyFlag = cli.BoolFlag{
		Name:  "verify",
		Usage: "Parse the generated Lua before writing it",
	}
	grammarFlag = cli.StringFlag{
		Name:  "grammar",
		Usage: "Grammar rule file replacing the built-in grammar",
	}
	workersFlag = cli.IntFlag{
		Name:  "workers",
		Usage: "Number of files translated in parallel",
		Value: 4,
	}
	copyAssetsFlag = cli.BoolFlag{
		Name:  "copy-assets",
		Usage: "Copy files that are not Python sources into the output tree",
	}
	cacheDirFlag = cli.StringFlag{
		Name:  "cachedir",
		Usage: "Directory of the persistent translation cache",
	}

	translateFlags = []cli.Flag{
		inputFlag,
		outputFlag,
		unsafeFlag,
		verifyFlag,
		grammarFlag,
		workersFlag,
		copyAssetsFlag,
		cacheDirFlag,
	}
)

func init() {
	app.Name = clientIdentifier
	app.Usage = "the Python to Lua translator"
	app.Version = params.VersionWithCommit(gitCommit, gitDate)
	app.Action = translateFiles
	app.HideVersion = true
	app.Copyright = "Copyright 2024 The ProbeChain Authors"
	app.Commands = []cli.Command{
		translateCommand,
		emitCommand,
		runCommand,
		watchCommand,
		consoleCommand,
		serveCommand,
		dumpConfigCommand,
		versionCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))

	app.Flags = append([]cli.Flag{configFileFlag, verbosityFlag, logFormatFlag}, translateFlags...)

	app.Before = func(ctx *cli.Context) error {
		verbosity := ctx.GlobalInt(verbosityFlag.Name)
		if verbosity <= 0 {
			log.Root().SetHandler(log.DiscardHandler())
			return nil
		}
		log.Setup(os.Stderr, log.Lvl(verbosity), ctx.GlobalString(logFormatFlag.Name))
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var versionCommand = cli.Command{
	Action:    printVersion,
	Name:      "version",
	Usage:     "Print version numbers",
	ArgsUsage: " ",
	Category:  "MISCELLANEOUS COMMANDS",
}

func printVersion(ctx *cli.Context) error {
	fmt.Println(clientIdentifier)
	fmt.Println("Version:", params.VersionWithMeta)
	if gitCommit != "" {
		fmt.Println("Git Commit:", gitCommit)
	}
	if gitDate != "" {
		fmt.Println("Git Commit Date:", gitDate)
	}
	return nil
}

// fatalf formats a message to standard error and exits the program.
func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}
