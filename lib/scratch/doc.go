// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package scratch manages the temporary workspace shared by concurrent
// pipeline runs.
//
// A [Workspace] is a root directory created when the workspace is
// opened; opening an existing root is not an error. Each pipeline run
// calls [Workspace.Acquire] to get a [Run]: a private sub-directory
// named "<archive base name>-<run token>" plus a list of extra files
// the run produced elsewhere. [Run.Release] removes both. Because the
// token is unique per run, two archives with the same base name
// processed at the same time never see each other's files.
//
// Release is written to be deferred immediately after Acquire. It
// tolerates files that are already gone and reports anything else as
// an error, which callers log and otherwise ignore so that cleanup
// never masks the result of the run.
package scratch
