// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package odex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/odexpatch/lib/apk"
)

// checkSource fails with ErrSourceNotFound unless source is an existing
// regular file. It runs before any archive access.
func checkSource(source string) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, source)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrSourceNotFound, source)
	}
	return nil
}

// extract streams classes.dex out of source into directory (created if
// absent) and returns the extracted file's path.
func extract(source, directory string) (string, error) {
	if err := checkSource(source); err != nil {
		return "", err
	}

	reader, err := apk.Open(source)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	entry, ok := reader.Lookup(apk.PrimaryBytecode)
	if !ok {
		return "", fmt.Errorf("%w in %s", ErrMissingPrimaryBytecode, source)
	}

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", directory, err)
	}
	dexPath := filepath.Join(directory, apk.PrimaryBytecode)

	payload, err := entry.Open()
	if err != nil {
		return "", err
	}
	defer payload.Close()

	output, err := os.Create(dexPath)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dexPath, err)
	}
	if _, err := io.Copy(output, payload); err != nil {
		output.Close()
		return "", fmt.Errorf("extracting %s from %s: %w: %w", apk.PrimaryBytecode, source, apk.ErrInvalidArchive, err)
	}
	if err := output.Close(); err != nil {
		return "", fmt.Errorf("writing %s: %w", dexPath, err)
	}
	return dexPath, nil
}
