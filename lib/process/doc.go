// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. These centralize
// the raw stderr writes and exits that happen before the structured
// logger exists or after main has decided the outcome:
//
//   - [Fatal] reports an unrecoverable error and exits 1.
//   - [ExitCode] maps a finished run to the process status.
package process
