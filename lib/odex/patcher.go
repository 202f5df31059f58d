// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package odex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bureau-foundation/odexpatch/lib/apk"
	"github.com/bureau-foundation/odexpatch/lib/dex2oat"
	"github.com/bureau-foundation/odexpatch/lib/digest"
	"github.com/bureau-foundation/odexpatch/lib/scratch"
)

const (
	// DefaultWorkers is the batch pool size when Config.Workers is not
	// positive.
	DefaultWorkers = 4

	// DefaultScratchDirectory is the workspace root when
	// Config.ScratchDirectory is empty. Relative to the working
	// directory.
	DefaultScratchDirectory = "tmp_odex_patcher"

	// DefaultOutputDirectory is where output archives go when
	// Config.OutputDirectory is empty.
	DefaultOutputDirectory = "."
)

// Config configures a Patcher.
type Config struct {
	// SDKRoot locates dex2oat at <SDKRoot>/art/compiler/dex2oat. Empty
	// means resolve dex2oat through PATH.
	SDKRoot string

	// Workers is the number of archives processed concurrently.
	Workers int

	// ScratchDirectory is the workspace root for extracted bytecode and
	// compiler outputs.
	ScratchDirectory string

	// OutputDirectory receives "<base>-odexed.apk" and
	// "<base>-deodexed.apk". Created on first use. WithOutputDirectory
	// overrides it for one call.
	OutputDirectory string

	// BootClasspath is passed to the compiler as the boot image.
	// WithBootClasspath overrides it for one call.
	BootClasspath []string

	// CompileTimeout bounds each compiler invocation. Zero disables the
	// deadline.
	CompileTimeout time.Duration

	// ArtifactMethod compresses the .oat and .vdex entries. The zero
	// value is apk.Store, a valid method, so New cannot tell it apart
	// from an unset field: start from DefaultConfig to get deflate.
	ArtifactMethod apk.Method
}

// DefaultConfig returns a Config with every default filled in. Build
// Configs from it rather than from a literal.
func DefaultConfig() Config {
	return Config{
		Workers:          DefaultWorkers,
		ScratchDirectory: DefaultScratchDirectory,
		OutputDirectory:  DefaultOutputDirectory,
		ArtifactMethod:   apk.Deflate,
	}
}

// Option customizes a Patcher.
type Option func(*Patcher)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Patcher) { p.logger = logger }
}

// WithRunner replaces the process runner used to invoke dex2oat.
func WithRunner(runner dex2oat.Runner) Option {
	return func(p *Patcher) { p.compiler.Runner = runner }
}

// RunOption overrides part of the Config for a single Odex, Strip, or
// Process call.
type RunOption func(*runSettings)

type runSettings struct {
	outputDirectory string
	bootClasspath   []string
}

// WithOutputDirectory writes this call's archives to directory instead
// of Config.OutputDirectory. An empty directory keeps the default.
func WithOutputDirectory(directory string) RunOption {
	return func(s *runSettings) {
		if directory != "" {
			s.outputDirectory = directory
		}
	}
}

// WithBootClasspath compiles this call's archives against jars instead
// of Config.BootClasspath. No jars omits the boot image.
func WithBootClasspath(jars ...string) RunOption {
	return func(s *runSettings) { s.bootClasspath = jars }
}

func (p *Patcher) settings(options []RunOption) runSettings {
	settings := runSettings{
		outputDirectory: p.config.OutputDirectory,
		bootClasspath:   p.config.BootClasspath,
	}
	for _, option := range options {
		option(&settings)
	}
	return settings
}

// Patcher runs odex and strip pipelines.
type Patcher struct {
	config    Config
	compiler  *dex2oat.Compiler
	workspace *scratch.Workspace
	logger    *slog.Logger
}

// New resolves dex2oat and opens the scratch workspace. Its errors are
// the only fatal ones: once a Patcher exists, every failure is reported
// per archive in a Result.
func New(config Config, options ...Option) (*Patcher, error) {
	if config.Workers <= 0 {
		config.Workers = DefaultWorkers
	}
	if config.ScratchDirectory == "" {
		config.ScratchDirectory = DefaultScratchDirectory
	}
	if config.OutputDirectory == "" {
		config.OutputDirectory = DefaultOutputDirectory
	}

	binary, err := dex2oat.Locate(config.SDKRoot)
	if err != nil {
		return nil, classify(err)
	}

	workspace, err := scratch.Open(config.ScratchDirectory)
	if err != nil {
		return nil, err
	}

	patcher := &Patcher{
		config: config,
		compiler: &dex2oat.Compiler{
			Binary:  binary,
			Timeout: config.CompileTimeout,
		},
		workspace: workspace,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(patcher)
	}
	return patcher, nil
}

// Compiler returns the resolved compiler path.
func (p *Patcher) Compiler() string { return p.compiler.Binary }

// ScratchRoot returns the workspace root directory.
func (p *Patcher) ScratchRoot() string { return p.workspace.Root() }

// Purge removes and recreates the scratch workspace. Call it between
// batches, not during one.
func (p *Patcher) Purge() error {
	return p.workspace.Purge()
}

// Odex runs extract → compile → repackage for one archive.
func (p *Patcher) Odex(ctx context.Context, source string, options ...RunOption) Result {
	logger := p.logger.With("source", source, "operation", OperationOdex)
	if err := ctx.Err(); err != nil {
		return p.report(logger, failed(source, OperationOdex, err))
	}

	run, err := p.workspace.Acquire(source)
	if err != nil {
		return p.report(logger, failed(source, OperationOdex, err))
	}
	logger = logger.With("run", run.Token)
	defer func() {
		if err := run.Release(); err != nil {
			logger.Debug("scratch cleanup incomplete", "error", err)
		}
	}()

	return p.report(logger, p.odex(ctx, logger, source, run, p.settings(options)))
}

func (p *Patcher) odex(ctx context.Context, logger *slog.Logger, source string, run *scratch.Run, settings runSettings) Result {
	dexPath, err := extract(source, run.Directory)
	if err != nil {
		return failed(source, OperationOdex, err)
	}
	logger.Debug("extracted bytecode", "dex", dexPath)

	artifacts, err := p.compiler.Compile(ctx, dexPath, run.Directory, scratch.Stem(source), settings.bootClasspath)
	run.Track(artifacts.Paths()...)
	if err != nil {
		return failed(source, OperationOdex, err)
	}
	logger.Debug("compiled bytecode", "oat", artifacts.CompiledCode, "vdex", artifacts.VerificationData)

	outputPath := OutputPath(settings.outputDirectory, source, OperationOdex)
	if err := repackage(source, artifacts, outputPath, p.config.ArtifactMethod); err != nil {
		return failed(source, OperationOdex, err)
	}

	outputDigest, err := digest.HashFile(outputPath)
	if err != nil {
		return failed(source, OperationOdex, err)
	}
	return succeeded(source, OperationOdex, outputPath, digest.FormatDigest(outputDigest),
		fmt.Sprintf("Odexed APK created at: %s", outputPath))
}

// Strip writes "<base>-deodexed.apk" without classes.dex or oat/
// entries. An archive with no classes.dex still produces output but
// yields a warning.
func (p *Patcher) Strip(ctx context.Context, source string, options ...RunOption) Result {
	logger := p.logger.With("source", source, "operation", OperationStrip)
	if err := ctx.Err(); err != nil {
		return p.report(logger, failed(source, OperationStrip, err))
	}

	outputPath := OutputPath(p.settings(options).outputDirectory, source, OperationStrip)
	foundBytecode, err := strip(source, outputPath)
	if err != nil {
		return p.report(logger, failed(source, OperationStrip, err))
	}

	outputDigest, err := digest.HashFile(outputPath)
	if err != nil {
		return p.report(logger, failed(source, OperationStrip, err))
	}
	formatted := digest.FormatDigest(outputDigest)

	if !foundBytecode {
		warning := fmt.Errorf("%w: no classes.dex found in %s, already deodexed?", ErrAlreadyStripped, source)
		return p.report(logger, warned(source, OperationStrip, warning, outputPath, formatted))
	}
	return p.report(logger, succeeded(source, OperationStrip, outputPath, formatted,
		fmt.Sprintf("Deodexed APK created at: %s (OAT/VDEX removed)", outputPath)))
}

// report logs a finished run and returns it unchanged.
func (p *Patcher) report(logger *slog.Logger, result Result) Result {
	switch result.Status {
	case StatusSuccess:
		logger.Info("archive processed", "output", result.OutputPath, "digest", result.OutputDigest)
	case StatusWarning:
		logger.Warn("archive processed with warning", "kind", result.Kind, "message", result.Message,
			"output", result.OutputPath)
	default:
		logger.Error("archive failed", "kind", result.Kind, "error", result.Message)
	}
	return result
}
