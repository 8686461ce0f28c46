package combination

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/billmatch/internal/domain"
)

// TruncationReason explains why a search stopped before full enumeration.
type TruncationReason string

// Truncation reasons.
const (
	TruncationNone       TruncationReason = ""
	TruncationMaxItems   TruncationReason = "max_items"
	TruncationMaxResults TruncationReason = "max_results"
	TruncationMaxSteps   TruncationReason = "max_steps"
	TruncationTimeBudget TruncationReason = "time_budget"
	// TruncationCancelled means the caller's context ended the search.
	TruncationCancelled TruncationReason = "cancelled"
)

// Stats describes the work done by one search.
type Stats struct {
	Candidates int
	Skipped    int
	Steps      int
	Qualified  int
	Elapsed    time.Duration
}

// Result is the ranked outcome of a search. Truncated results are partial but valid.
type Result struct {
	combinations []Combination
	reason       TruncationReason
	stats        Stats
}

// NewResult creates a search result.
func NewResult(combinations []Combination, reason TruncationReason, stats Stats) Result {
	return Result{combinations: combinations, reason: reason, stats: stats}
}

// Combinations returns the ranked combinations, best first.
func (r *Result) Combinations() []Combination { return r.combinations }

// Truncated reports whether the search stopped early or dropped results.
func (r *Result) Truncated() bool { return r.reason != TruncationNone }

// Reason returns the truncation reason (empty when complete).
func (r *Result) Reason() TruncationReason { return r.reason }

// Stats returns search counters.
func (r *Result) Stats() Stats { return r.stats }

// Err returns ErrSearchBudgetExceeded wrapped with the reason, or nil for a complete search.
func (r *Result) Err() error {
	if !r.Truncated() {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrSearchBudgetExceeded, r.reason)
}
