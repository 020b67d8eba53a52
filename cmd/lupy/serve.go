// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"strings"

	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/lupy/internal/server"
)

var (
	httpAddrFlag = cli.StringFlag{
		Name:  "http.addr",
		Usage: "HTTP server listening address",
		Value: "localhost:8547",
	}
	httpCORSFlag = cli.StringFlag{
		Name:  "http.corsdomain",
		Usage: "Comma separated list of domains from which to accept cross origin requests (browser enforced)",
	}
	httpRateFlag = cli.Float64Flag{
		Name:  "http.ratelimit",
		Usage: "Maximum translation requests per second (0 = unlimited)",
	}
	httpBurstFlag = cli.IntFlag{
		Name:  "http.burst",
		Usage: "Requests allowed above the rate limit in a burst",
		Value: 10,
	}

	serveFlags = []cli.Flag{httpAddrFlag, httpCORSFlag, httpRateFlag, httpBurstFlag}

	serveCommand = cli.Command{
		Action:   serve,
		Name:     "serve",
		Usage:    "Serve translations over HTTP",
		Flags:    append([]cli.Flag{unsafeFlag, verifyFlag, grammarFlag, cacheDirFlag}, serveFlags...),
		Category: "TRANSLATION COMMANDS",
	}
)

func applyServeFlags(ctx *cli.Context, cfg *server.Config) {
	if ctx.IsSet(httpAddrFlag.Name) {
		cfg.Addr = ctx.String(httpAddrFlag.Name)
	}
	if ctx.IsSet(httpCORSFlag.Name) {
		cfg.CORSOrigins = splitAndTrim(ctx.String(httpCORSFlag.Name))
	}
	if ctx.IsSet(httpRateFlag.Name) {
		cfg.RateLimit = ctx.Float64(httpRateFlag.Name)
	}
	if ctx.IsSet(httpBurstFlag.Name) {
		cfg.RateBurst = ctx.Int(httpBurstFlag.Name)
	}
}

// splitAndTrim splits input separated by a comma
// and trims excessive white space from the substrings.
func splitAndTrim(input string) (ret []string) {
	l := strings.Split(input, ",")
	for _, r := range l {
		if r = strings.TrimSpace(r); r != "" {
			ret = append(ret, r)
		}
	}
	return ret
}

func serve(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	tr, release := makeTranslator(&cfg)
	defer release()

	return server.New(tr, cfg.Server).ListenAndServe(cfg.Server.Addr)
}
