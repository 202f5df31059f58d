// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for odexpatch packages.
//
// [WriteArchive] and [ReadArchive] build and inspect zip fixtures at
// the byte level, independent of lib/apk, so that lib/apk's own tests
// can use them without an import cycle. [ReadArchive] reports each
// entry's stored method alongside the decompressed payload, which is
// what entry-fidelity assertions compare.
//
// [FakeCompiler] is an in-process stand-in for the dex2oat process. It
// satisfies the dex2oat Runner interface structurally, writes the two
// artifact files named by its --output-*-file arguments, and can be
// told to fail, block, or exit non-zero. [StubExecutable] writes a
// shell script for tests that need a real process on disk.
//
// [RequireReceive] is the timeout safety valve for channel receives in
// concurrency tests.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no odexpatch-internal dependencies.
package testutil
