// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dex2oat

import (
	"fmt"
	"os"
)

// checkExecutable returns nil when path is a regular file with any
// execute bit set.
func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}
