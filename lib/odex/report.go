// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package odex

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/odexpatch/lib/codec"
	"github.com/bureau-foundation/odexpatch/lib/digest"
)

// Report is the on-disk record of one batch, CBOR-encoded. Result.Err
// is not persisted; Kind and Message carry the classification.
type Report struct {
	Operation Operation `json:"operation"`
	Summary   Summary   `json:"summary"`
	Results   []Result  `json:"results"`
}

// NewReport builds the Report for a finished batch.
func NewReport(operation Operation, results []Result) Report {
	return Report{
		Operation: operation,
		Summary:   Summarize(results),
		Results:   results,
	}
}

// WriteReport encodes report to path, replacing any existing file.
func WriteReport(path string, report Report) error {
	data, err := codec.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// ReadReport decodes a report written by WriteReport. Every recorded
// output digest must be a well-formed BLAKE3 hex digest.
func ReadReport(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("reading report %s: %w", path, err)
	}
	var report Report
	if err := codec.Unmarshal(data, &report); err != nil {
		return Report{}, fmt.Errorf("decoding report %s: %w", path, err)
	}
	for _, result := range report.Results {
		if result.OutputDigest == "" {
			continue
		}
		if _, err := digest.ParseDigest(result.OutputDigest); err != nil {
			return Report{}, fmt.Errorf("report %s: output digest for %s: %w", path, result.Source, err)
		}
	}
	return report, nil
}
