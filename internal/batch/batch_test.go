package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestRunCounters(t *testing.T) {
	testCases := []struct {
		name          string
		items         []string
		width         int
		failOn        map[string]bool
		wantSucceeded int
		wantFailed    int
	}{
		{
			name:          "all succeed",
			items:         []string{"a", "b", "c", "d", "e"},
			width:         2,
			wantSucceeded: 5,
		},
		{
			name:          "some fail",
			items:         []string{"a", "b", "c", "d"},
			width:         3,
			failOn:        map[string]bool{"b": true, "d": true},
			wantSucceeded: 2,
			wantFailed:    2,
		},
		{
			name:       "all fail",
			items:      []string{"a", "b"},
			width:      5,
			failOn:     map[string]bool{"a": true, "b": true},
			wantFailed: 2,
		},
		{
			name:  "empty items",
			items: nil,
			width: 3,
		},
		{
			name:          "width below one treated as one",
			items:         []string{"a", "b", "c"},
			width:         0,
			wantSucceeded: 3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			summary := Run(context.Background(), tc.items, tc.width, func(ctx context.Context, item string) error {
				if tc.failOn[item] {
					return errors.New("boom")
				}
				return nil
			})

			if summary.Total != len(tc.items) {
				t.Errorf("Total = %d, want %d", summary.Total, len(tc.items))
			}
			if summary.Succeeded != tc.wantSucceeded {
				t.Errorf("Succeeded = %d, want %d", summary.Succeeded, tc.wantSucceeded)
			}
			if summary.Failed != tc.wantFailed {
				t.Errorf("Failed = %d, want %d", summary.Failed, tc.wantFailed)
			}
			if summary.Succeeded+summary.Failed != summary.Total {
				t.Errorf("Succeeded+Failed = %d, want Total %d", summary.Succeeded+summary.Failed, summary.Total)
			}
			if len(summary.Errors) != tc.wantFailed {
				t.Errorf("len(Errors) = %d, want %d", len(summary.Errors), tc.wantFailed)
			}
		})
	}
}

func TestRunContinuesAfterFailures(t *testing.T) {
	items := make([]string, 20)
	for i := range items {
		items[i] = fmt.Sprintf("item-%d", i)
	}

	var calls int32
	summary := Run(context.Background(), items, 4, func(ctx context.Context, item string) error {
		atomic.AddInt32(&calls, 1)
		if strings.HasSuffix(item, "3") {
			return errors.New("fail")
		}
		return nil
	})

	if int(calls) != len(items) {
		t.Errorf("fn called %d times, want %d; failures must not abort the run", calls, len(items))
	}
	if summary.Failed != 2 { // item-3 and item-13
		t.Errorf("Failed = %d, want 2", summary.Failed)
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	items := make([]string, 17)
	for i := range items {
		items[i] = fmt.Sprintf("%d", i)
	}

	Run(context.Background(), items, 5, func(ctx context.Context, item string) error {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil
	})

	if maxInFlight > 5 {
		t.Errorf("observed %d concurrent calls, want at most 5", maxInFlight)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := Run(ctx, []string{"a", "b", "c"}, 2, func(ctx context.Context, item string) error {
		t.Errorf("fn must not run after cancellation, got item %s", item)
		return nil
	})

	if summary.Failed != 3 {
		t.Errorf("Failed = %d, want 3 for a cancelled run", summary.Failed)
	}
	if summary.Succeeded+summary.Failed != summary.Total {
		t.Errorf("counters do not add up: %+v", summary)
	}
}
