// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/odexpatch/lib/config"
	"github.com/bureau-foundation/odexpatch/lib/odex"
	"github.com/bureau-foundation/odexpatch/lib/process"
	"github.com/bureau-foundation/odexpatch/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code, err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		process.Fatal(err)
	}
	os.Exit(code)
}

// options holds the parsed command line.
type options struct {
	configPath    string
	sdkRoot       string
	workers       int
	scratch       string
	output        string
	bootClasspath []string
	timeout       string
	compression   string
	jsonOutput    bool
	reportPath    string
	purge         bool
}

func newFlagSet(name string, stderr io.Writer, opts *options) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.configPath, "config", "", "path to config file (default: $"+config.EnvironmentVariable+" if set)")
	flagSet.StringVar(&opts.sdkRoot, "sdk-root", "", "Android source tree containing art/compiler/dex2oat (default: dex2oat from PATH)")
	flagSet.IntVarP(&opts.workers, "workers", "j", 0, "archives processed concurrently (default 4)")
	flagSet.StringVar(&opts.scratch, "scratch", "", "scratch workspace directory (default tmp_odex_patcher)")
	flagSet.StringVarP(&opts.output, "output", "o", "", "directory for rewritten archives (default .)")
	flagSet.StringSliceVar(&opts.bootClasspath, "boot-classpath", nil, "boot image jars passed to dex2oat, in order")
	flagSet.StringVar(&opts.timeout, "timeout", "", "per-archive dex2oat deadline, e.g. 90s (default none)")
	flagSet.StringVar(&opts.compression, "compression", "", "zip method for .oat/.vdex entries: store, deflate, zstd")
	flagSet.BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")
	flagSet.StringVar(&opts.reportPath, "report", "", "also write a CBOR report of the batch to this file")
	flagSet.BoolVar(&opts.purge, "purge", false, "empty the scratch workspace after the batch")
	flagSet.BoolP("help", "h", false, "show help")
	return flagSet
}

// run executes one command and returns the process exit status. A
// non-nil error is fatal: the batch never started.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (int, error) {
	if len(args) == 0 {
		printUsage(stderr)
		return process.ExitFatal, nil
	}

	command, args := args[0], args[1:]
	switch command {
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, version.Info())
		return process.ExitSuccess, nil
	case "help", "--help", "-h":
		printUsage(stdout)
		return process.ExitSuccess, nil
	}

	operation, err := odex.ParseOperation(command)
	if err != nil {
		printUsage(stderr)
		return process.ExitFatal, err
	}

	var opts options
	flagSet := newFlagSet("odexpatch "+command, stderr, &opts)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(stdout)
			return process.ExitSuccess, nil
		}
		return process.ExitFatal, err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printUsage(stdout)
		return process.ExitSuccess, nil
	}
	sources := flagSet.Args()
	if len(sources) == 0 {
		return process.ExitFatal, fmt.Errorf("%s: at least one archive is required", command)
	}

	cfg, err := loadConfig(flagSet, &opts)
	if err != nil {
		return process.ExitFatal, err
	}
	patcherConfig, err := cfg.Patcher()
	if err != nil {
		return process.ExitFatal, fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if os.Getenv("ODEXPATCH_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel}))

	patcher, err := odex.New(patcherConfig, odex.WithLogger(logger))
	if err != nil {
		return process.ExitFatal, err
	}
	logger.Debug("compiler resolved", "path", patcher.Compiler(), "scratch", patcher.ScratchRoot())

	results := patcher.Process(ctx, sources, operation)
	report := odex.NewReport(operation, results)

	if opts.jsonOutput {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return process.ExitFatal, fmt.Errorf("writing results: %w", err)
		}
	} else {
		printResults(stdout, report)
	}

	if opts.reportPath != "" {
		if err := odex.WriteReport(opts.reportPath, report); err != nil {
			return process.ExitFatal, err
		}
	}
	if opts.purge {
		if err := patcher.Purge(); err != nil {
			logger.Warn("purging scratch workspace", "error", err)
		}
	}

	return process.ExitCode(report.Summary.Failed), nil
}

// loadConfig reads the config file, if any, and applies flags that
// were set explicitly on top of it.
func loadConfig(flagSet *pflag.FlagSet, opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case opts.configPath != "":
		cfg, err = config.LoadFile(opts.configPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if flagSet.Changed("sdk-root") {
		cfg.SDKRoot = opts.sdkRoot
	}
	if flagSet.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flagSet.Changed("scratch") {
		cfg.ScratchDirectory = opts.scratch
	}
	if flagSet.Changed("output") {
		cfg.OutputDirectory = opts.output
	}
	if flagSet.Changed("boot-classpath") {
		cfg.BootClasspath = opts.bootClasspath
	}
	if flagSet.Changed("timeout") {
		cfg.CompileTimeout = opts.timeout
	}
	if flagSet.Changed("compression") {
		cfg.ArtifactCompression = opts.compression
	}
	return cfg, nil
}

func printResults(w io.Writer, report odex.Report) {
	for _, result := range report.Results {
		switch result.Status {
		case odex.StatusSuccess:
			fmt.Fprintf(w, "ok       %s: %s\n", result.Source, result.Message)
		case odex.StatusWarning:
			fmt.Fprintf(w, "warning  %s: %s (output: %s)\n", result.Source, result.Message, result.OutputPath)
		default:
			fmt.Fprintf(w, "error    %s: [%s] %s\n", result.Source, result.Kind, result.Message)
		}
	}
	fmt.Fprintf(w, "%s: %s\n", report.Operation, report.Summary)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `odexpatch - compile or strip Android archive bytecode

USAGE
    odexpatch odex   [flags] <archive>...
    odexpatch deodex [flags] <archive>...

COMMANDS
    odex      Compile classes.dex with dex2oat; write <name>-odexed.apk
    deodex    Remove classes.dex and oat/; write <name>-deodexed.apk
    version   Show version

FLAGS
    --config PATH            Config file (YAML, or JSON with comments)
    --sdk-root DIR           Android source tree with art/compiler/dex2oat
    -j, --workers N          Archives processed concurrently (default 4)
    --scratch DIR            Scratch workspace (default tmp_odex_patcher)
    -o, --output DIR         Output directory (default .)
    --boot-classpath A,B     Boot image jars for dex2oat
    --timeout DURATION       Per-archive dex2oat deadline
    --compression METHOD     store, deflate (default), or zstd
    --json                   Print results as JSON
    --report PATH            Write a CBOR batch report
    --purge                  Empty the scratch workspace afterwards

EXIT STATUS
    0  every archive produced output (warnings included)
    1  the batch could not start
    2  at least one archive failed

ENVIRONMENT
    ODEXPATCH_CONFIG   Config file used when --config is absent
    ODEXPATCH_DEBUG    Enable debug logging
`)
}
