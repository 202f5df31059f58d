// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scratch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/odexpatch/lib/digest"
)

// Workspace is the scratch root shared by all runs.
type Workspace struct {
	root string
}

// Open returns the workspace at root, creating the directory if needed.
func Open(root string) (*Workspace, error) {
	if root == "" {
		return nil, errors.New("scratch workspace root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating scratch workspace %s: %w", root, err)
	}
	return &Workspace{root: root}, nil
}

// Root returns the workspace directory.
func (w *Workspace) Root() string { return w.root }

// Acquire creates a private directory for one run over source.
func (w *Workspace) Acquire(source string) (*Run, error) {
	token := digest.RunToken(source)
	directory := filepath.Join(w.root, Stem(source)+"-"+token)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("creating run directory %s: %w", directory, err)
	}
	return &Run{Directory: directory, Token: token}, nil
}

// Purge removes everything under the workspace and recreates the
// empty root. Runs in flight lose their files, so Purge belongs
// between batches.
func (w *Workspace) Purge() error {
	if err := os.RemoveAll(w.root); err != nil {
		return fmt.Errorf("removing scratch workspace %s: %w", w.root, err)
	}
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return fmt.Errorf("recreating scratch workspace %s: %w", w.root, err)
	}
	return nil
}

// Run is the scratch state owned by one pipeline run.
type Run struct {
	// Directory is the run's private sub-directory.
	Directory string

	// Token is the unique run identifier embedded in Directory.
	Token string

	files []string
}

// Track registers files outside Directory that Release must remove.
// Files inside Directory need not be tracked.
func (r *Run) Track(paths ...string) {
	r.files = append(r.files, paths...)
}

// Release removes tracked files and the run directory. Missing files
// are not errors.
func (r *Run) Release() error {
	var errs []error
	for _, path := range r.files {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if err := os.RemoveAll(r.Directory); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Stem returns the file name of path without directory or extension:
// "/data/app/Settings.apk" → "Settings". A name that would lose every
// character (".apk") is returned whole.
func Stem(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		// A name that is all extension (".apk") keeps its dot.
		return base
	}
	return stem
}
