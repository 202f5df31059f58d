// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dex2oat

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
)

// BinaryName is the compiler executable's file name.
const BinaryName = "dex2oat"

// ErrToolNotFound indicates that the compiler executable could not be
// resolved.
var ErrToolNotFound = errors.New("dex2oat not found")

// SDKPath returns where Locate expects the compiler under an SDK root.
func SDKPath(sdkRoot string) string {
	return filepath.Join(sdkRoot, "art", "compiler", BinaryName)
}

// Locate resolves the compiler executable. With a non-empty sdkRoot
// the binary must be an executable regular file at SDKPath(sdkRoot);
// PATH is not consulted. With an empty sdkRoot the binary is resolved
// through PATH.
func Locate(sdkRoot string) (string, error) {
	if sdkRoot != "" {
		path := SDKPath(sdkRoot)
		if err := checkExecutable(path); err != nil {
			return "", fmt.Errorf("%w at expected location %s (check the SDK root): %v",
				ErrToolNotFound, path, err)
		}
		return path, nil
	}

	path, err := exec.LookPath(BinaryName)
	if err != nil {
		return "", fmt.Errorf("%w on PATH: add it to PATH or configure an SDK root: %v",
			ErrToolNotFound, err)
	}
	return path, nil
}
