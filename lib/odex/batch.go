// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package odex

import (
	"context"
	"fmt"
	"sync"

	"github.com/bureau-foundation/odexpatch/lib/scratch"
)

// Process runs operation over every source on a pool of at most
// Config.Workers goroutines and returns one Result per source, in
// completion order. A failure in one run never prevents or alters the
// others.
//
// An unrecognized operation produces an error Result for every source
// without running anything. When two sources share a base name, only
// the first is run; the others get KindDuplicateOutput rather than
// overwriting its output.
//
// options apply to every run in the batch, so one Patcher can serve
// batches with different output directories or boot images.
func (p *Patcher) Process(ctx context.Context, sources []string, operation Operation, options ...RunOption) []Result {
	results := make([]Result, 0, len(sources))
	if len(sources) == 0 {
		return results
	}

	var run func(context.Context, string, ...RunOption) Result
	switch operation {
	case OperationOdex:
		run = p.Odex
	case OperationStrip:
		run = p.Strip
	default:
		err := fmt.Errorf("%w: %q", ErrInvalidOperation, operation)
		for _, source := range sources {
			results = append(results, failed(source, operation, err))
		}
		p.logger.Error("batch rejected", "operation", operation, "archives", len(sources))
		return results
	}

	var (
		mu      sync.Mutex
		pending []string
		owners  = make(map[string]string, len(sources))
	)
	for _, source := range sources {
		stem := scratch.Stem(source)
		if owner, taken := owners[stem]; taken {
			err := fmt.Errorf("%w: %s would overwrite the output of %s", ErrDuplicateOutput, source, owner)
			results = append(results, p.report(p.logger.With("source", source, "operation", operation),
				failed(source, operation, err)))
			continue
		}
		owners[stem] = source
		pending = append(pending, source)
	}

	workers := min(p.config.Workers, len(pending))
	p.logger.Info("batch starting", "operation", operation, "archives", len(pending), "workers", workers)

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for source := range jobs {
				result := run(ctx, source, options...)
				mu.Lock()
				results = append(results, result)
				mu.Unlock()
			}
		}()
	}
	for _, source := range pending {
		jobs <- source
	}
	close(jobs)
	wg.Wait()

	p.logger.Info("batch finished", "operation", operation, "summary", Summarize(results))
	return results
}

// Summary counts a batch's outcomes by status.
type Summary struct {
	Succeeded int `json:"succeeded"`
	Warned    int `json:"warned"`
	Failed    int `json:"failed"`
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	var summary Summary
	for _, result := range results {
		switch result.Status {
		case StatusSuccess:
			summary.Succeeded++
		case StatusWarning:
			summary.Warned++
		default:
			summary.Failed++
		}
	}
	return summary
}

func (s Summary) String() string {
	return fmt.Sprintf("%d succeeded, %d warned, %d failed", s.Succeeded, s.Warned, s.Failed)
}
