// Package batch runs an operation over a list of items with bounded
// concurrency. Bulk admin operations (re-analyze all, delete all, bulk
// import) share this so only a fixed number of expensive calls are in
// flight at once.
package batch

import (
	"context"
	"sync"
)

// ItemError records a single item's failure inside a batch.
type ItemError struct {
	Item string `json:"item"`
	Err  string `json:"error"`
}

// Summary reports the outcome of a batch run. Succeeded+Failed always equals
// Total; item failures never abort the run.
type Summary struct {
	Total     int         `json:"total"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Errors    []ItemError `json:"errors,omitempty"`
}

// Run processes items in fixed-size waves of at most width concurrent calls.
// Each wave fully drains before the next begins. Context cancellation stops
// new waves from starting; in-flight calls finish on their own.
// Parameters:
//   - ctx: context checked between waves.
//   - items: item identifiers passed to fn.
//   - width: max concurrent calls; values < 1 are treated as 1.
//   - fn: the per-item operation.
//
// Returns:
//   - Summary: per-run counters and per-item errors.
func Run(ctx context.Context, items []string, width int, fn func(ctx context.Context, item string) error) Summary {
	if width < 1 {
		width = 1
	}

	summary := Summary{Total: len(items)}
	var mu sync.Mutex

	for start := 0; start < len(items); start += width {
		if ctx.Err() != nil {
			mu.Lock()
			for _, item := range items[start:] {
				summary.Failed++
				summary.Errors = append(summary.Errors, ItemError{Item: item, Err: ctx.Err().Error()})
			}
			mu.Unlock()
			break
		}

		end := start + width
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for _, item := range items[start:end] {
			wg.Add(1)
			go func(item string) {
				defer wg.Done()
				err := fn(ctx, item)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					summary.Failed++
					summary.Errors = append(summary.Errors, ItemError{Item: item, Err: err.Error()})
					return
				}
				summary.Succeeded++
			}(item)
		}
		wg.Wait()
	}

	return summary
}
