// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package odex converts Android application archives between their
// dex-only form and their "odexed" form, which carries an ahead-of-time
// compiled .oat file and its .vdex verification data.
//
// The odex pipeline runs three stages in strict order for each archive:
//
//  1. Extract: copy classes.dex out of the archive into the run's
//     scratch directory.
//  2. Compile: run dex2oat once over the extracted bytecode.
//  3. Repackage: write "<base>-odexed.apk" with every original entry
//     except classes.dex copied verbatim, then the two artifacts at
//     "oat/<c>/<name>".
//
// A failing stage ends the run; later stages never execute. The strip
// pipeline ("deodex") is a single filtering pass that writes
// "<base>-deodexed.apk" without classes.dex or anything under oat/. It
// removes compiled artifacts; it does not reconstruct bytecode from
// them.
//
// A [Patcher] owns the compiler and the scratch workspace. It is
// created with [New], which fails only when dex2oat cannot be resolved
// or the workspace cannot be created. Everything after construction
// reports failures as data: each archive yields exactly one [Result]
// with a [Status], a [Kind] for non-success outcomes, and a message.
// [Patcher.Process] runs a batch across a fixed pool of workers and
// never lets one archive's failure affect another's.
//
// Every odex run holds a scratch run directory (see lib/scratch) that
// is released on every exit path, whichever stage failed.
package odex
