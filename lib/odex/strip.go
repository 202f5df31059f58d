// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package odex

import (
	"github.com/bureau-foundation/odexpatch/lib/apk"
)

// strip writes the deodexed archive: every source entry except
// classes.dex and anything under oat/. It reports whether classes.dex
// was present. This only filters entries; no bytecode is recovered
// from the compiled artifacts.
func strip(source, outputPath string) (foundBytecode bool, err error) {
	if err := checkSource(source); err != nil {
		return false, err
	}

	reader, err := apk.Open(source)
	if err != nil {
		return false, err
	}
	defer reader.Close()

	writer, err := createOutput(outputPath)
	if err != nil {
		return false, err
	}

	for _, entry := range reader.Entries() {
		name := entry.Name()
		if name == apk.PrimaryBytecode {
			foundBytecode = true
			continue
		}
		if apk.IsArtifact(name) {
			continue
		}
		if err := writer.Copy(entry); err != nil {
			writer.Abort()
			return foundBytecode, err
		}
	}

	return foundBytecode, writer.Close()
}
