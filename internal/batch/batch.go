// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package batch translates every source file of a directory tree into a
// mirrored output tree. A failing file is reported and skipped; it never
// stops the rest of the batch.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/cp"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"

	"github.com/probechain/lupy/log"
	"github.com/probechain/lupy/translate"
)

// Translator is the pipeline a batch runs every source through.
type Translator interface {
	Translate(src string) (string, error)
}

// Config describes one batch.
type Config struct {
	Input      string
	Output     string
	Workers    int  // parallel translations, 1 when not positive
	CopyAssets bool // copy files that are not sources into the output tree
}

// Result is the outcome for one file.
type Result struct {
	Source  string
	Target  string
	Asset   bool
	Err     error
	Kind    translate.Kind
	Elapsed time.Duration
}

// Report collects the results of a batch in discovery order.
type Report struct {
	RunID   string
	Started time.Time
	Elapsed time.Duration
	Results []Result
}

// Failed returns the number of files that were skipped.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Render writes the report as a table.
func (r *Report) Render(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Output", "Status", "Time"})
	for _, res := range r.Results {
		status := "ok"
		switch {
		case res.Err != nil:
			status = res.Kind.String() + " error"
		case res.Asset:
			status = "copied"
		}
		table.Append([]string{res.Source, res.Target, status, res.Elapsed.Round(time.Microsecond).String()})
	}
	table.SetFooter([]string{"", "", fmt.Sprintf("%d failed", r.Failed()), r.Elapsed.Round(time.Millisecond).String()})
	table.Render()
}

// Run translates the sources under cfg.Input into cfg.Output. done, when
// non-nil, is called once per finished file, never concurrently. The
// returned error is only set when the batch could not run at all.
func Run(ctx context.Context, tr Translator, cfg Config, done func(Result)) (*Report, error) {
	report := &Report{RunID: uuid.New().String(), Started: time.Now()}
	logger := log.New("run", report.RunID)

	sources, assets, err := Discover(cfg.Input)
	if err != nil {
		return nil, err
	}
	logger.Info("Translation started", "input", cfg.Input, "sources", len(sources), "assets", len(assets))

	jobs := make([]Result, 0, len(sources)+len(assets))
	for _, src := range sources {
		jobs = append(jobs, Result{Source: src})
	}
	if cfg.CopyAssets {
		for _, asset := range assets {
			jobs = append(jobs, Result{Source: asset, Asset: true})
		}
	}
	for i := range jobs {
		if jobs[i].Target, err = Mirror(cfg.Input, cfg.Output, jobs[i].Source); err != nil {
			return nil, err
		}
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	var (
		g, gctx  = errgroup.WithContext(ctx)
		finished = make(chan int)
		reported = make(chan struct{})
	)
	g.SetLimit(workers)

	// Results are announced from a single goroutine.
	go func() {
		defer close(reported)
		for i := range finished {
			if done != nil {
				done(jobs[i])
			}
		}
	}()
	for i := range jobs {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			start := time.Now()
			job := &jobs[i]
			if job.Asset {
				job.Err = copyAsset(job.Source, job.Target)
			} else {
				job.Err = TranslateFile(tr, job.Source, job.Target)
			}
			if job.Err != nil {
				job.Kind = translate.KindOf(job.Err)
				logger.Debug("File skipped", "file", job.Source, "kind", job.Kind, "err", job.Err)
			}
			job.Elapsed = time.Since(start)
			finished <- i
			return nil
		})
	}
	g.Wait()
	close(finished)
	<-reported

	report.Results = jobs
	report.Elapsed = time.Since(report.Started)
	logger.Info("Translation finished", "files", len(jobs), "failed", report.Failed(), "elapsed", report.Elapsed)
	return report, ctx.Err()
}

// TranslateFile translates the source file into target, creating its
// directory as needed.
func TranslateFile(tr Translator, source, target string) error {
	src, err := readSource(source)
	if err != nil {
		return err
	}
	lua, err := tr.Translate(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	return os.WriteFile(target, []byte(lua), 0644)
}

func copyAsset(source, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	return cp.CopyFile(target, source)
}
