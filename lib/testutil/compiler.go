// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// FakeCompiler stands in for the dex2oat process. On success it writes
// the oat file as "oat:" followed by the dex bytes and the vdex file as
// "vdex:" followed by the dex bytes.
type FakeCompiler struct {
	// Failures maps an archive base name (the oat file name without
	// ".oat") to an exit status. Matching runs exit with that status
	// and Stderr, writing nothing.
	Failures map[string]int

	// Stderr is reported for failing runs.
	Stderr string

	// LaunchError, when set, is returned for every run as though the
	// binary could not be started.
	LaunchError error

	// Started, when non-nil, receives each run's archive base name as
	// the run begins.
	Started chan string

	// Release, when non-nil, blocks each run until a value is received
	// or the channel is closed (or the context ends).
	Release chan struct{}

	mu    sync.Mutex
	calls [][]string
}

type fakeExit struct {
	code int
}

func (e *fakeExit) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func (e *fakeExit) ExitCode() int { return e.code }

// Run implements the dex2oat Runner interface.
func (f *FakeCompiler) Run(ctx context.Context, binary string, args []string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{binary}, args...))
	f.mu.Unlock()

	if f.LaunchError != nil {
		return "", f.LaunchError
	}

	dexPath := flagValue(args, "--dex-file=")
	oatPath := flagValue(args, "--output-oat-file=")
	vdexPath := flagValue(args, "--output-vdex-file=")
	baseName := strings.TrimSuffix(filepath.Base(oatPath), ".oat")

	if f.Started != nil {
		select {
		case f.Started <- baseName:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.Release != nil {
		select {
		case <-f.Release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if code, ok := f.Failures[baseName]; ok {
		return f.Stderr, &fakeExit{code: code}
	}

	dex, err := os.ReadFile(dexPath)
	if err != nil {
		return fmt.Sprintf("cannot open dex file: %v", err), &fakeExit{code: 1}
	}
	if err := os.WriteFile(oatPath, append([]byte("oat:"), dex...), 0o644); err != nil {
		return err.Error(), &fakeExit{code: 1}
	}
	if err := os.WriteFile(vdexPath, append([]byte("vdex:"), dex...), 0o644); err != nil {
		return err.Error(), &fakeExit{code: 1}
	}
	return "", nil
}

// Calls returns the argument vectors of every run so far, each
// starting with the binary.
func (f *FakeCompiler) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([][]string, len(f.calls))
	copy(calls, f.calls)
	return calls
}

func flagValue(args []string, prefix string) string {
	for _, arg := range args {
		if strings.HasPrefix(arg, prefix) {
			return strings.TrimPrefix(arg, prefix)
		}
	}
	return ""
}

// StubExecutable writes a /bin/sh script named name into directory and
// returns its path. Tests are skipped where /bin/sh does not exist.
func StubExecutable(t *testing.T, directory, name, body string) string {
	t.Helper()

	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skipf("/bin/sh not available: %v", err)
	}
	path := filepath.Join(directory, name)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		t.Fatalf("creating %s: %v", directory, err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("writing stub %s: %v", path, err)
	}
	return path
}
