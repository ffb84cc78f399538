package dto

import "time"

// BatchResult is the structured outcome of one batch operation. Batch
// operations always complete; per-item failures are collected in Errors.
type BatchResult struct {
	Operation   string         `json:"operation"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
	Counts      map[string]int `json:"counts"`
	Errors      []string       `json:"errors"`
}

// NewBatchResult creates an empty result for the given operation.
func NewBatchResult(operation string) *BatchResult {
	return &BatchResult{
		Operation: operation,
		StartedAt: time.Now().UTC(),
		Counts:    map[string]int{},
	}
}

// Add increments a named counter.
func (r *BatchResult) Add(counter string) {
	r.Counts[counter]++
}

// AddError records a per-item failure without aborting the batch.
func (r *BatchResult) AddError(err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, err.Error())
}

// Finish stamps the completion time and returns the result.
func (r *BatchResult) Finish() *BatchResult {
	r.CompletedAt = time.Now().UTC()
	return r
}

// Merge folds another result's counters and errors into r.
func (r *BatchResult) Merge(other *BatchResult) {
	for counter, n := range other.Counts {
		r.Counts[counter] += n
	}
	r.Errors = append(r.Errors, other.Errors...)
}
