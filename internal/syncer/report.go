package syncer

import (
	"errors"
	"fmt"

	"go.dot.industries/workspace-env/internal/apperr"
)

// Result records what happened to one planned write.
type Result struct {
	Write
	Outcome Outcome `json:"outcome,omitempty"`
	Bytes   int     `json:"bytes"`
	Err     error   `json:"-"`
}

// Report is the outcome of one sync run, in plan order.
type Report struct {
	DryRun  bool     `json:"dryRun"`
	Results []Result `json:"results"`
}

// Counts tallies successful results by outcome.
func (r *Report) Counts() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, res := range r.Results {
		if res.Err == nil {
			counts[res.Outcome]++
		}
	}
	return counts
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err aggregates every failed write into a single sync I/O error, or returns
// nil when all writes succeeded.
func (r *Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}

	errs := make([]error, 0, len(failed))
	for _, res := range failed {
		errs = append(errs, fmt.Errorf("%s -> %s: %w", res.Source, res.Destination, res.Err))
	}

	return apperr.Wrapf(errors.Join(errs...), apperr.CodeSyncIO, "%d of %d writes failed", len(failed), len(r.Results))
}
