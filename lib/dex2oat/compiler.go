// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dex2oat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrCompileFailed matches a [*CompileError]: the compiler ran and
	// exited non-zero.
	ErrCompileFailed = errors.New("dex2oat failed")

	// ErrLaunchFailed indicates the compiler process could not be
	// started at all (binary missing, not executable, exec failure).
	ErrLaunchFailed = errors.New("dex2oat could not be launched")

	// ErrTimeout indicates the compiler was killed after exceeding
	// [Compiler].Timeout.
	ErrTimeout = errors.New("dex2oat timed out")
)

// Runner runs an external binary to completion and returns its
// captured standard error. A process that ran and exited non-zero must
// be reported with an error implementing ExitCode() int (as
// *exec.ExitError does); any other error means the process never ran.
type Runner interface {
	Run(ctx context.Context, binary string, args []string) (stderr string, err error)
}

// ExecRunner is the os/exec Runner. Cancelling ctx kills the process.
type ExecRunner struct{}

// Run executes binary with args, discarding stdout and capturing
// stderr.
func (ExecRunner) Run(ctx context.Context, binary string, args []string) (string, error) {
	var stderr bytes.Buffer
	command := exec.CommandContext(ctx, binary, args...)
	command.Stderr = &stderr
	err := command.Run()
	return strings.TrimSpace(stderr.String()), err
}

// CompileError reports a non-zero compiler exit.
type CompileError struct {
	DexFile  string
	ExitCode int
	Stderr   string
}

func (e *CompileError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("error odexing %s: dex2oat exited with status %d", e.DexFile, e.ExitCode)
	}
	return fmt.Sprintf("error odexing %s: %s", e.DexFile, e.Stderr)
}

// Unwrap makes errors.Is(err, ErrCompileFailed) hold.
func (e *CompileError) Unwrap() error { return ErrCompileFailed }

// Artifacts is the pair of files one compilation produces.
type Artifacts struct {
	// CompiledCode is the .oat file.
	CompiledCode string

	// VerificationData is the .vdex file.
	VerificationData string
}

// Paths returns both artifact paths.
func (a Artifacts) Paths() []string {
	return []string{a.CompiledCode, a.VerificationData}
}

// Compiler invokes dex2oat.
type Compiler struct {
	// Binary is the resolved compiler path, normally from Locate.
	Binary string

	// Timeout bounds a single invocation. Zero means no deadline.
	Timeout time.Duration

	// Runner executes the process. Nil means ExecRunner.
	Runner Runner
}

// Compile compiles dexPath into "<baseName>.oat" and "<baseName>.vdex"
// inside outputDirectory, against bootClasspath (nil omits the boot
// image). The artifact paths are returned even on failure so callers
// can remove anything a failed run left behind.
func (c *Compiler) Compile(ctx context.Context, dexPath, outputDirectory, baseName string, bootClasspath []string) (Artifacts, error) {
	artifacts := Artifacts{
		CompiledCode:     filepath.Join(outputDirectory, baseName+".oat"),
		VerificationData: filepath.Join(outputDirectory, baseName+".vdex"),
	}
	args := Arguments(Request{
		DexFile:       dexPath,
		OatFile:       artifacts.CompiledCode,
		VdexFile:      artifacts.VerificationData,
		BootClasspath: bootClasspath,
	})

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	runner := c.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	stderr, err := runner.Run(runCtx, c.Binary, args)
	if err == nil {
		return artifacts, nil
	}

	// A killed process also reports an exit status, so the contexts are
	// checked first. Only an expired Timeout is ErrTimeout; the caller's
	// own cancellation or deadline is passed through unchanged.
	dexName := filepath.Base(dexPath)
	if callerErr := ctx.Err(); callerErr != nil {
		return artifacts, fmt.Errorf("compiling %s: %w", dexName, callerErr)
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return artifacts, fmt.Errorf("%w: compiling %s exceeded %v", ErrTimeout, dexName, c.Timeout)
	}

	var exited interface{ ExitCode() int }
	if errors.As(err, &exited) {
		return artifacts, &CompileError{DexFile: dexName, ExitCode: exited.ExitCode(), Stderr: stderr}
	}
	return artifacts, fmt.Errorf("%w: %s (check the SDK root or PATH): %w", ErrLaunchFailed, c.Binary, err)
}
