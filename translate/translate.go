// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package translate wires the lexer, parser, checker and generator into a
// single source-to-source call.
package translate

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/probechain/lupy/lang/ast"
	"github.com/probechain/lupy/lang/codegen"
	"github.com/probechain/lupy/lang/grammar"
	"github.com/probechain/lupy/lang/lexer"
	"github.com/probechain/lupy/lang/parser"
	"github.com/probechain/lupy/lang/semantic"
	"github.com/probechain/lupy/lang/token"
	"github.com/probechain/lupy/log"
)

// Cache memoizes successful translations. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(key []byte) ([]byte, bool)
	Put(key, value []byte)
}

// Config selects how a Translator works. The zero value translates with
// the built-in grammar and full checking.
type Config struct {
	GrammarFile string `toml:",omitempty"` // rule file replacing the built-in grammar
	Unsafe      bool   // skip the semantic checker
	Verify      bool   // parse the generated Lua before returning it

	Cache Cache `toml:"-"`
}

// grammars shares loaded rule files between translators.
var grammars = grammar.NewCache(16)

// Translator runs the pipeline with a fixed configuration. It is immutable
// and safe for concurrent use.
type Translator struct {
	cfg    Config
	parser *parser.Parser
	mode   byte
	log    log.Logger
}

// New creates a translator for cfg.
func New(cfg Config) (*Translator, error) {
	g := grammar.Default()
	if cfg.GrammarFile != "" {
		text, err := os.ReadFile(cfg.GrammarFile)
		if err != nil {
			return nil, fmt.Errorf("reading grammar: %w", err)
		}
		if g, err = grammars.Load(string(text)); err != nil {
			return nil, fmt.Errorf("loading grammar %s: %w", cfg.GrammarFile, err)
		}
	}
	var mode byte
	if cfg.Unsafe {
		mode |= 1
	}
	if cfg.Verify {
		mode |= 2
	}
	return &Translator{
		cfg:    cfg,
		parser: parser.New(g),
		mode:   mode,
		log:    log.New("grammar", fmt.Sprintf("%x", g.Digest()[:4])),
	}, nil
}

var (
	defaultOnce sync.Once
	defaultT    *Translator
)

// Translate translates src with the built-in grammar and full checking.
func Translate(src string) (string, error) {
	defaultOnce.Do(func() {
		defaultT, _ = New(Config{})
	})
	return defaultT.Translate(src)
}

// Grammar returns the grammar the translator parses with.
func (t *Translator) Grammar() *grammar.Grammar { return t.parser.Grammar() }

// Translate returns the Lua translation of src. Errors come back as
// produced by the failing stage; classify them with KindOf.
func (t *Translator) Translate(src string) (string, error) {
	var key []byte
	if t.cfg.Cache != nil {
		key = t.key(src)
		if lua, ok := t.cfg.Cache.Get(key); ok {
			t.log.Trace("Translation cache hit", "src", log.Snippet(src))
			return string(lua), nil
		}
	}
	res, err := t.Stages(src)
	if err != nil {
		return "", err
	}
	if key != nil {
		t.cfg.Cache.Put(key, []byte(res.Lua))
	}
	return res.Lua, nil
}

// Result holds every intermediate product of one translation.
type Result struct {
	Tokens  []token.Token
	Tree    *ast.Node
	Lua     string
	Elapsed time.Duration
}

// Stages runs the pipeline and returns the intermediate products. On
// failure the stages completed so far are still filled in.
func (t *Translator) Stages(src string) (*Result, error) {
	start := time.Now()
	res := new(Result)

	tokens, err := lexer.Lex(src)
	if err != nil {
		return res, err
	}
	res.Tokens = tokens
	t.log.Trace("Lexed source", "tokens", len(tokens))

	tree, err := t.parser.Parse(tokens)
	if err != nil {
		return res, err
	}
	res.Tree = tree

	if !t.cfg.Unsafe {
		if err := semantic.Check(tree); err != nil {
			return res, err
		}
	}
	lua, err := codegen.Generate(tree)
	if err != nil {
		return res, err
	}
	if t.cfg.Verify {
		if err := codegen.Verify(lua); err != nil {
			return res, err
		}
	}
	res.Lua = lua
	res.Elapsed = time.Since(start)
	t.log.Debug("Translated source", "tokens", len(tokens), "bytes", len(lua), "elapsed", res.Elapsed)
	return res, nil
}

// key derives the cache key for src under this translator's grammar and
// mode.
func (t *Translator) key(src string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(t.parser.Grammar().Digest())
	h.Write([]byte{t.mode})
	h.Write([]byte(src))
	return h.Sum(nil)
}
