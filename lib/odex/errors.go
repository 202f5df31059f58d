// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package odex

import (
	"context"
	"errors"

	"github.com/bureau-foundation/odexpatch/lib/apk"
	"github.com/bureau-foundation/odexpatch/lib/dex2oat"
)

// Kind classifies a non-success outcome so that callers can react
// without parsing messages.
type Kind string

const (
	KindToolNotFound           Kind = "tool_not_found"
	KindSourceNotFound         Kind = "source_not_found"
	KindInvalidArchive         Kind = "invalid_archive"
	KindMissingPrimaryBytecode Kind = "missing_primary_bytecode"
	KindCompileFailed          Kind = "compile_failed"
	KindCompileTimeout         Kind = "compile_timeout"
	KindLaunchFailed           Kind = "launch_failed"
	KindArtifactMissing        Kind = "artifact_missing"
	KindInvalidOperation       Kind = "invalid_operation"
	KindDuplicateOutput        Kind = "duplicate_output"
	KindCanceled               Kind = "canceled"
	KindInternal               Kind = "internal"

	// KindAlreadyStripped is a warning, not an error.
	KindAlreadyStripped Kind = "already_stripped"
)

var (
	// ErrSourceNotFound indicates the input path is not an existing
	// regular file.
	ErrSourceNotFound = errors.New("archive not found")

	// ErrMissingPrimaryBytecode indicates odex was requested for an
	// archive without classes.dex.
	ErrMissingPrimaryBytecode = errors.New("classes.dex not found")

	// ErrArtifactMissing indicates a compiled artifact was absent at
	// packaging time.
	ErrArtifactMissing = errors.New("compiled artifact missing")

	// ErrAlreadyStripped accompanies the strip warning for archives
	// without classes.dex.
	ErrAlreadyStripped = errors.New("already stripped")

	// ErrInvalidOperation indicates an unrecognized operation selector.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrDuplicateOutput indicates two inputs in one batch would write
	// the same output archive.
	ErrDuplicateOutput = errors.New("duplicate output name")
)

// Error is a classified pipeline error. Unwrap exposes the underlying
// chain, so errors.Is works against the sentinels of this package,
// lib/apk, and lib/dex2oat.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// classify wraps err in an *Error with its Kind.
func classify(err error) *Error {
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}
	return &Error{Kind: KindOf(err), Err: err}
}

// KindOf returns the Kind for err by walking its chain.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}

	// Order matters where one failure wraps another: a missing artifact
	// also wraps fs.ErrNotExist, and a timeout is reported before the
	// exit status of the killed process.
	switch {
	case err == nil:
		return ""
	case errors.Is(err, dex2oat.ErrToolNotFound):
		return KindToolNotFound
	case errors.Is(err, ErrSourceNotFound):
		return KindSourceNotFound
	case errors.Is(err, ErrMissingPrimaryBytecode):
		return KindMissingPrimaryBytecode
	case errors.Is(err, ErrArtifactMissing):
		return KindArtifactMissing
	case errors.Is(err, ErrAlreadyStripped):
		return KindAlreadyStripped
	case errors.Is(err, dex2oat.ErrTimeout):
		return KindCompileTimeout
	case errors.Is(err, dex2oat.ErrCompileFailed):
		return KindCompileFailed
	case errors.Is(err, dex2oat.ErrLaunchFailed):
		return KindLaunchFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, apk.ErrInvalidArchive):
		return KindInvalidArchive
	case errors.Is(err, ErrInvalidOperation):
		return KindInvalidOperation
	case errors.Is(err, ErrDuplicateOutput):
		return KindDuplicateOutput
	default:
		return KindInternal
	}
}
