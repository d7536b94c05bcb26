package adjudication

import (
	"context"
	"fmt"
	"sync"
)

// DefaultBatchConcurrency bounds AdjudicateAll when no limit is given.
const DefaultBatchConcurrency = 10

// BatchResult is the outcome for one claim of a batch.
type BatchResult struct {
	ClaimID string  `json:"claim_id"`
	Result  *Result `json:"result,omitempty"`
	Err     error   `json:"-"`
}

// AdjudicateAll decides every claim, running at most maxConcurrency
// adjudications at once. Results are in input order. A claim that fails or
// panics only fails its own entry.
func (e *Engine) AdjudicateAll(ctx context.Context, claimIDs []string, maxConcurrency int) []BatchResult {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultBatchConcurrency
	}
	semaphore := make(chan struct{}, maxConcurrency)
	results := make([]BatchResult, len(claimIDs))

	var wg sync.WaitGroup
	for i, id := range claimIDs {
		results[i].ClaimID = id
		wg.Add(1)
		go func(index int, claimID string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[index].Err = fmt.Errorf("panic adjudicating %s: %v", claimID, r)
				}
			}()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				results[index].Err = ctx.Err()
				return
			}

			results[index].Result, results[index].Err = e.Adjudicate(ctx, claimID)
		}(i, id)
	}
	wg.Wait()
	return results
}
