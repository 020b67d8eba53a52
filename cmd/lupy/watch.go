// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rjeczalik/notify"
	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/lupy/internal/batch"
	"github.com/probechain/lupy/log"
	"github.com/probechain/lupy/translate"
)

var watchCommand = cli.Command{
	Action:   watch,
	Name:     "watch",
	Usage:    "Retranslate sources whenever they change",
	Flags:    translateFlags,
	Category: "TRANSLATION COMMANDS",
	Description: `
The watch command translates the whole --input tree once and then keeps
retranslating every .py file that is created or written under it.`,
}

// settle is how long a file must stay unchanged before it is retranslated.
const settle = 100 * time.Millisecond

func watch(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	tr, release := makeTranslator(&cfg)
	defer release()

	input, err := filepath.Abs(cfg.Batch.Input)
	if err != nil {
		return err
	}
	cfg.Batch.Input = input
	report, err := batch.Run(context.Background(), tr, cfg.Batch, func(res batch.Result) {
		printResult(color.Output, res)
	})
	if err != nil {
		return err
	}
	log.Info("Initial translation done", "files", len(report.Results), "failed", report.Failed())

	events := make(chan notify.EventInfo, 64)
	if err := notify.Watch(filepath.Join(input, "..."), events, notify.Create, notify.Write); err != nil {
		return err
	}
	defer notify.Stop(events)
	log.Info("Watching for changes", "dir", input)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	defer signal.Stop(sigc)

	var (
		pending = make(map[string]time.Time)
		ticker  = time.NewTicker(settle)
	)
	defer ticker.Stop()
	for {
		select {
		case ev := <-events:
			if strings.HasSuffix(ev.Path(), batch.SourceExt) {
				pending[ev.Path()] = time.Now()
			}
		case now := <-ticker.C:
			for path, changed := range pending {
				if now.Sub(changed) < settle {
					continue
				}
				delete(pending, path)
				retranslate(tr, cfg.Batch, path)
			}
		case <-sigc:
			return nil
		}
	}
}

func retranslate(tr *translate.Translator, cfg batch.Config, path string) {
	res := batch.Result{Source: path}
	start := time.Now()
	res.Target, res.Err = batch.Mirror(cfg.Input, cfg.Output, path)
	if res.Err == nil {
		res.Err = batch.TranslateFile(tr, path, res.Target)
	}
	res.Elapsed = time.Since(start)
	printResult(color.Output, res)
}
