package etl

import (
	"context"
	"fmt"
	"time"
)

// ── Engine ─────────────────────────────────────────────────
// Orchestrates one dataset pipeline: schema lookup → source fetch →
// fixed-width decode → destination write.

// Run statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SyncResult is the outcome of running one dataset's pipeline.
type SyncResult struct {
	DatasetID   string        `json:"datasetId"`
	Status      string        `json:"status"` // "success" | "error"
	RowsRead    int           `json:"rowsRead"`
	RowsWritten int           `json:"rowsWritten"`
	StartedAt   time.Time     `json:"startedAt"`
	Duration    time.Duration `json:"duration"`
	Err         error         `json:"-"`
}

// ErrorMessage returns the error text, or "" on success.
func (r *SyncResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// BatchSummary collects every dataset's result for one batch pass. It is
// a first-class value so the end-of-run report does not depend on log
// side effects.
type BatchSummary struct {
	Results []SyncResult `json:"results"`
}

// Failed returns the results of datasets that did not complete.
func (b *BatchSummary) Failed() []SyncResult {
	var failed []SyncResult
	for _, r := range b.Results {
		if r.Status != StatusSuccess {
			failed = append(failed, r)
		}
	}
	return failed
}

// OK reports whether every dataset completed.
func (b *BatchSummary) OK() bool { return len(b.Failed()) == 0 }

// Engine runs dataset pipelines against a configured source and
// destination. It holds no cross-dataset state, so concurrent
// RunDataset calls for different datasets need no locking.
type Engine struct {
	Source Source
	Dest   Destination
}

// RunDataset executes one dataset's pipeline end-to-end. Failures are
// reported in the result rather than raised, so callers can collect
// per-dataset outcomes and keep going.
func (e *Engine) RunDataset(ctx context.Context, ds Dataset) *SyncResult {
	start := time.Now()
	result := &SyncResult{DatasetID: ds.ID, StartedAt: start}

	fail := func(err error) *SyncResult {
		result.Status = StatusError
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	schema, err := LookupSchema(ds.ID)
	if err != nil {
		return fail(err)
	}

	text, err := e.Source.Fetch(ctx, ds)
	if err != nil {
		return fail(fmt.Errorf("fetch %s: %w", ds.ID, err))
	}

	records := Decode(text, schema)
	result.RowsRead = len(records)

	written, err := e.Dest.Write(ctx, ds.ID, schema, records)
	result.RowsWritten = written
	if err != nil {
		return fail(fmt.Errorf("write %s: %w", ds.ID, err))
	}

	result.Status = StatusSuccess
	result.Duration = time.Since(start)
	return result
}
