// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"os"
)

// Exit statuses.
const (
	// ExitSuccess means every archive produced output.
	ExitSuccess = 0

	// ExitFatal means the run could not start (bad configuration,
	// compiler not found).
	ExitFatal = 1

	// ExitPartial means the batch ran but at least one archive failed.
	ExitPartial = 2
)

// Fatal writes "error: err" to stderr and exits with ExitFatal. Use it
// in main() for errors from run() where the structured logger may not
// be initialized.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(ExitFatal)
}

// ExitCode returns ExitPartial when failed is positive, else
// ExitSuccess. Warnings do not affect the status.
func ExitCode(failed int) int {
	if failed > 0 {
		return ExitPartial
	}
	return ExitSuccess
}
