// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest provides BLAKE3 content hashing for archives and the
// run tokens that name scratch directories.
//
// Output archives carry a [HashFile] digest in their pipeline result so
// that callers can verify what was written without re-reading it.
// Scratch directories are named by [RunToken], a keyed hash of the
// source path and a process-wide sequence number, so two concurrent
// runs over archives that share a base name can never share a
// directory.
//
// The API surface:
//
//   - [HashFile] -- streams a file through BLAKE3 with constant memory
//   - [FormatDigest] and [ParseDigest] -- canonical hex encoding
//   - [RunToken] -- short unique identifier for one pipeline run
//
// This package has no dependencies on other odexpatch packages.
package digest
