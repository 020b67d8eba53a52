// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/lupy/internal/batch"
	"github.com/probechain/lupy/internal/cache"
	"github.com/probechain/lupy/internal/server"
	"github.com/probechain/lupy/log"
	"github.com/probechain/lupy/translate"
)

var dumpConfigCommand = cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Show configuration values",
	ArgsUsage:   "[file]",
	Flags:       append(translateFlags, serveFlags...),
	Category:    "MISCELLANEOUS COMMANDS",
	Description: `The dumpconfig command shows configuration values.`,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type cacheConfig struct {
	Dir         string `toml:",omitempty"`
	MemoryBytes int
}

type lupyConfig struct {
	Translate translate.Config
	Batch     batch.Config
	Cache     cacheConfig
	Server    server.Config
}

func defaultConfig() lupyConfig {
	return lupyConfig{
		Batch: batch.Config{
			Input:   inputFlag.Value,
			Output:  outputFlag.Value,
			Workers: workersFlag.Value,
		},
		Cache: cacheConfig{MemoryBytes: 32 * 1024 * 1024},
		Server: server.Config{
			Addr:        httpAddrFlag.Value,
			CORSOrigins: []string{"*"},
			RateBurst:   httpBurstFlag.Value,
		},
	}
}

func loadConfig(file string, cfg *lupyConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the defaults, the configuration file and the flags, in
// that order.
func makeConfig(ctx *cli.Context) lupyConfig {
	cfg := defaultConfig()
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			fatalf("%v", err)
		}
	}
	applyTranslateFlags(ctx, &cfg)
	applyServeFlags(ctx, &cfg.Server)
	return cfg
}

func applyTranslateFlags(ctx *cli.Context, cfg *lupyConfig) {
	if ctx.IsSet("input") {
		cfg.Batch.Input = ctx.String("input")
	}
	if ctx.IsSet("output") {
		cfg.Batch.Output = ctx.String("output")
	}
	if ctx.IsSet(workersFlag.Name) {
		cfg.Batch.Workers = ctx.Int(workersFlag.Name)
	}
	if ctx.IsSet(copyAssetsFlag.Name) {
		cfg.Batch.CopyAssets = ctx.Bool(copyAssetsFlag.Name)
	}
	if ctx.IsSet(unsafeFlag.Name) {
		cfg.Translate.Unsafe = ctx.Bool(unsafeFlag.Name)
	}
	if ctx.IsSet(verifyFlag.Name) {
		cfg.Translate.Verify = ctx.Bool(verifyFlag.Name)
	}
	if ctx.IsSet(grammarFlag.Name) {
		cfg.Translate.GrammarFile = ctx.String(grammarFlag.Name)
	}
	if ctx.IsSet(cacheDirFlag.Name) {
		cfg.Cache.Dir = ctx.String(cacheDirFlag.Name)
	}
}

// makeTranslator creates the translator described by cfg. The returned
// function releases the cache.
func makeTranslator(cfg *lupyConfig) (*translate.Translator, func()) {
	release := func() {}
	if cfg.Cache.Dir != "" {
		store, err := cache.New(cfg.Cache.Dir, cfg.Cache.MemoryBytes)
		if err != nil {
			fatalf("Failed to open the translation cache: %v", err)
		}
		cfg.Translate.Cache = store
		release = func() {
			stats := store.Stats()
			log.Debug("Translation cache stats", "memory", stats.MemoryHits, "disk", stats.DiskHits, "misses", stats.Misses)
			store.Close()
		}
	}
	tr, err := translate.New(cfg.Translate)
	if err != nil {
		fatalf("%v", err)
	}
	return tr, release
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	dump.Write(out)
	return nil
}
