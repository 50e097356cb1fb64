// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianLADR/cmd/ladr/config"
	"github.com/AleutianAI/AleutianLADR/pkg/logging"
	"github.com/AleutianAI/AleutianLADR/services/ladr/engine"
	"github.com/AleutianAI/AleutianLADR/services/ladr/options"
	"github.com/AleutianAI/AleutianLADR/services/ladr/symbols"
	"github.com/AleutianAI/AleutianLADR/services/ladr/telemetry"
	"github.com/AleutianAI/AleutianLADR/services/ladr/topinput"
)

// errFailed marks an error that has already been reported; run exits 1
// without printing it again.
var errFailed = errors.New("failed")

// app is the state shared by every subcommand.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// persistent flags
	configPath  string
	logLevel    string
	unknown     string
	metricsAddr string

	cfg      config.LADRConfig
	logger   *logging.Logger
	shutdown func(context.Context) error

	bg       *errgroup.Group
	bgCancel context.CancelFunc
}

// run executes the command line and returns the exit status.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(); cerr != nil && err == nil {
		err = cerr
	}
	if err == nil {
		return 0
	}
	if !errors.Is(err, errFailed) {
		fmt.Fprintf(stderr, "ladr: %v\n", err)
	}
	return 1
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ladr",
		Short:         "Interpret LADR (Prover9) input files",
		Long:          "ladr reads Prover9 style input: set/clear/assign directives, operator declarations and formula lists.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context(), cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default $LADR_CONFIG or ~/.aleutian/ladr.yaml)")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&a.unknown, "unknown", "", "unknown option policy: ignore, warn or error")
	pf.StringVar(&a.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")

	root.AddCommand(a.readCmd(), a.checkCmd(), a.watchCmd(), a.runsCmd(), a.configCmd())
	return root
}

// setup loads configuration and starts logging and telemetry.
func (a *app) setup(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.unknown != "" {
		cfg.UnknownAction = a.unknown
	}
	if a.metricsAddr != "" {
		cfg.Telemetry.MetricExporter = telemetry.ExporterPrometheus
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	a.cfg = cfg

	lc, err := cfg.LoggerConfig("ladr")
	if err != nil {
		return err
	}
	lc.Output = a.stderr
	a.logger = logging.New(lc)
	slog.SetDefault(a.logger.Slog())

	shutdown, err := telemetry.Init(ctx, cfg.TelemetrySettings())
	if err != nil {
		return err
	}
	a.shutdown = shutdown

	if a.metricsAddr != "" {
		bctx, cancel := context.WithCancel(ctx)
		a.bgCancel = cancel
		a.bg, bctx = errgroup.WithContext(bctx)
		a.bg.Go(func() error {
			return telemetry.ServeMetrics(bctx, a.metricsAddr, a.logger.Slog())
		})
	}
	a.logger.Debug("configured", "command", cmd.Name(), "unknown_action", cfg.UnknownAction)
	return nil
}

func (a *app) close() error {
	var errs []error
	if a.bg != nil {
		a.bgCancel()
		errs = append(errs, a.bg.Wait())
	}
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(context.Background()))
	}
	if a.logger != nil {
		errs = append(errs, a.logger.Close())
	}
	return errors.Join(errs...)
}

// interpretation is the outcome of interpreting a set of sources. Result
// is set even when Err is, holding what was read before the failure.
type interpretation struct {
	Result *topinput.Result
	Err    error
}

// interpret reads srcs in order into a fresh symbol table and option
// registry, then runs the standard engine.
func (a *app) interpret(ctx context.Context, echo io.Writer, srcs ...topinput.Source) interpretation {
	tab := symbols.New()
	reg := options.NewStandard()
	if err := a.cfg.Options.Apply(reg); err != nil {
		return interpretation{Result: &topinput.Result{Symbols: tab, Options: reg}, Err: err}
	}

	icfg, err := a.cfg.InterpreterConfig()
	if err != nil {
		return interpretation{Result: &topinput.Result{Symbols: tab, Options: reg}, Err: err}
	}
	icfg.Logger = a.logger.Slog()
	icfg.Engine = &engine.Standard{Strict: a.cfg.StrictArity, Logger: a.logger.Slog()}
	if echo != nil {
		icfg.Echo = echo
	} else if a.cfg.Echo {
		icfg.Echo = a.stdout
	}

	in := topinput.New(tab, reg, icfg)
	for _, s := range srcs {
		if err := in.Read(ctx, s.Reader, s.Name); err != nil {
			return interpretation{Result: in.Snapshot(), Err: err}
		}
	}
	res, err := in.Finish(ctx)
	return interpretation{Result: res, Err: err}
}

// openSources opens each path, or stdin when there are none. The returned
// function closes every opened file.
func (a *app) openSources(paths []string) ([]topinput.Source, func(), error) {
	if len(paths) == 0 {
		return []topinput.Source{{Name: "stdin", Reader: a.stdin}}, func() {}, nil
	}
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	srcs := make([]topinput.Source, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		files = append(files, f)
		srcs = append(srcs, topinput.Source{Name: p, Reader: f})
	}
	return srcs, closeAll, nil
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
