// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package odex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/odexpatch/lib/apk"
	"github.com/bureau-foundation/odexpatch/lib/dex2oat"
	"github.com/bureau-foundation/odexpatch/lib/scratch"
)

const (
	odexedSuffix   = "-odexed.apk"
	deodexedSuffix = "-deodexed.apk"
)

// OutputPath returns where the given operation writes its archive for
// source under outputDirectory.
func OutputPath(outputDirectory, source string, operation Operation) string {
	suffix := odexedSuffix
	if operation == OperationStrip {
		suffix = deodexedSuffix
	}
	return filepath.Join(outputDirectory, scratch.Stem(source)+suffix)
}

// createOutput creates the output directory and the archive inside it.
func createOutput(path string) (*apk.Writer, error) {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w: %w", directory, apk.ErrInvalidArchive, err)
	}
	return apk.Create(path)
}

// repackage writes the odexed archive: every source entry except
// classes.dex, byte for byte, followed by the compiled artifacts at
// their sharded paths. Both artifacts must exist before the output file
// is created.
func repackage(source string, artifacts dex2oat.Artifacts, outputPath string, method apk.Method) error {
	for _, path := range artifacts.Paths() {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %s", ErrArtifactMissing, path)
		}
	}

	reader, err := apk.Open(source)
	if err != nil {
		return err
	}
	defer reader.Close()

	writer, err := createOutput(outputPath)
	if err != nil {
		return err
	}

	for _, entry := range reader.Entries() {
		if entry.Name() == apk.PrimaryBytecode {
			continue
		}
		if err := writer.Copy(entry); err != nil {
			writer.Abort()
			return err
		}
	}

	for _, path := range artifacts.Paths() {
		name := apk.ArtifactPath(filepath.Base(path))
		if err := writer.AddFile(name, path, method); err != nil {
			writer.Abort()
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %w", ErrArtifactMissing, err)
			}
			return err
		}
	}

	return writer.Close()
}
