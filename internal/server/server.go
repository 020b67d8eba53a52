// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package server exposes the translator over HTTP.
//
//	POST /translate   body: {"source": "..."} or the raw source text
//	GET  /health
package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/probechain/lupy/log"
	"github.com/probechain/lupy/params"
	"github.com/probechain/lupy/translate"
)

// maxRequestSize bounds request bodies.
const maxRequestSize = 1 << 20

// Translator is the pipeline the service runs requests through.
type Translator interface {
	Translate(src string) (string, error)
}

// Config configures the service.
type Config struct {
	Addr        string
	CORSOrigins []string
	RateLimit   float64 // requests per second, unlimited when zero
	RateBurst   int
}

// TranslateRequest is the JSON form of a request.
type TranslateRequest struct {
	Source string `json:"source"`
}

// TranslateResult is the response to every translation request, successful
// or not.
type TranslateResult struct {
	Lua     string `json:"lua"`
	Success bool   `json:"success"`
	Kind    string `json:"kind,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Server serves translation requests.
type Server struct {
	tr      Translator
	limiter *rate.Limiter
	handler http.Handler
	log     log.Logger
}

// New creates a service for tr.
func New(tr Translator, cfg Config) *Server {
	s := &Server{tr: tr, log: log.New("module", "http")}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	router := httprouter.New()
	router.POST("/translate", s.translate)
	router.GET("/health", s.health)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"*"},
		MaxAge:         600,
	})
	s.handler = c.Handler(router)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("HTTP server started", "endpoint", addr)
	return srv.ListenAndServe()
}

func (s *Server) translate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.limiter != nil && !s.limiter.Allow() {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize+1))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(body) > maxRequestSize {
		http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
		return
	}

	src := string(body)
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "application/json" {
		var req TranslateRequest
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		src = req.Source
	}

	start := time.Now()
	lua, err := s.tr.Translate(src)
	res := TranslateResult{Lua: lua, Success: err == nil}
	if err != nil {
		res.Kind = translate.KindOf(err).String()
		res.Error = err.Error()
	}
	s.log.Debug("Served translation", "bytes", len(src), "success", res.Success, "elapsed", time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": params.Version})
}
