// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package odex

import (
	"fmt"
	"strings"
)

// Operation selects the pipeline a batch runs.
type Operation string

const (
	// OperationOdex extracts, compiles, and repackages.
	OperationOdex Operation = "odex"

	// OperationStrip removes classes.dex and compiled artifacts.
	OperationStrip Operation = "strip"
)

// ParseOperation parses an operation name. "deodex" is accepted as a
// synonym for "strip".
func ParseOperation(name string) (Operation, error) {
	switch strings.ToLower(name) {
	case "odex":
		return OperationOdex, nil
	case "strip", "deodex":
		return OperationStrip, nil
	default:
		return Operation(name), fmt.Errorf("%w: %q (want odex or deodex)", ErrInvalidOperation, name)
	}
}

// Status is the outcome class of one run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Result is the outcome of one pipeline run over one archive. Source
// always names the input archive; batch results arrive in completion
// order and must be matched to inputs by Source.
type Result struct {
	Source    string    `json:"source"`
	Operation Operation `json:"operation"`
	Status    Status    `json:"status"`

	// Kind is empty on success.
	Kind Kind `json:"kind,omitempty"`

	Message string `json:"message"`

	// OutputPath and OutputDigest (BLAKE3, hex) are set whenever an
	// output archive was written, including for warnings.
	OutputPath   string `json:"output_path,omitempty"`
	OutputDigest string `json:"output_digest,omitempty"`

	// Err is the classified error for warnings and errors.
	Err error `json:"-"`
}

// Failed reports whether the run ended in an error.
func (r Result) Failed() bool { return r.Status == StatusError }

func succeeded(source string, operation Operation, outputPath, outputDigest, message string) Result {
	return Result{
		Source:       source,
		Operation:    operation,
		Status:       StatusSuccess,
		Message:      message,
		OutputPath:   outputPath,
		OutputDigest: outputDigest,
	}
}

func warned(source string, operation Operation, err error, outputPath, outputDigest string) Result {
	classified := classify(err)
	return Result{
		Source:       source,
		Operation:    operation,
		Status:       StatusWarning,
		Kind:         classified.Kind,
		Message:      classified.Error(),
		OutputPath:   outputPath,
		OutputDigest: outputDigest,
		Err:          classified,
	}
}

func failed(source string, operation Operation, err error) Result {
	classified := classify(err)
	return Result{
		Source:    source,
		Operation: operation,
		Status:    StatusError,
		Kind:      classified.Kind,
		Message:   classified.Error(),
		Err:       classified,
	}
}
