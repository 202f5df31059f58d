// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package dex2oat provides typed access to the ART ahead-of-time
// compiler. The compiler is an opaque external process: this package
// resolves its binary, builds the argument vector, runs it once, and
// classifies the outcome. It never inspects the produced artifacts.
//
// Resolution happens once, via [Locate], either at an explicit SDK
// root ("<root>/art/compiler/dex2oat", which must be an executable
// regular file) or through PATH. Failure wraps [ErrToolNotFound] and is
// meant to be fatal for whoever is constructing a compiler.
//
// A [Compiler] runs through a [Runner], a one-method interface over
// "run this binary with these arguments and give me stderr". The
// production [ExecRunner] uses os/exec; tests substitute an in-process
// fake. Outcomes:
//
//   - exit status 0: the two artifact paths are returned
//   - non-zero exit: a [*CompileError] carrying the captured stderr,
//     matching [ErrCompileFailed]
//   - the binary could not be started: [ErrLaunchFailed]
//   - [Compiler].Timeout elapsed: the process is killed, [ErrTimeout]
//
// There is no retry. One Compile call is one process invocation.
package dex2oat
