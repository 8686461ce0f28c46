package combination

import (
	"time"

	"github.com/kailas-cloud/billmatch/internal/domain"
)

// Options bounds the cost of a search. A zero cap means unlimited.
type Options struct {
	// MaxItems limits how many candidates (in input order) are considered.
	MaxItems int
	// MaxResults keeps only the best N combinations.
	MaxResults int
	// MaxSteps limits the number of subsets visited.
	MaxSteps int
	// TimeBudget limits wall-clock search time.
	TimeBudget time.Duration
	// SkipZeroAmounts drops zero-amount items before the search.
	SkipZeroAmounts bool
}

// Validate rejects negative caps.
func (o Options) Validate() error {
	if o.MaxItems < 0 {
		return domain.NewInvalidArgument("max_items", "must not be negative")
	}
	if o.MaxResults < 0 {
		return domain.NewInvalidArgument("max_results", "must not be negative")
	}
	if o.MaxSteps < 0 {
		return domain.NewInvalidArgument("max_steps", "must not be negative")
	}
	if o.TimeBudget < 0 {
		return domain.NewInvalidArgument("time_budget", "must not be negative")
	}
	return nil
}

// Tighten returns o with each cap replaced by the stricter of o and other.
// SkipZeroAmounts is kept when either side sets it.
func (o Options) Tighten(other Options) Options {
	return Options{
		MaxItems:        minCap(o.MaxItems, other.MaxItems),
		MaxResults:      minCap(o.MaxResults, other.MaxResults),
		MaxSteps:        minCap(o.MaxSteps, other.MaxSteps),
		TimeBudget:      time.Duration(minCap(int64(o.TimeBudget), int64(other.TimeBudget))),
		SkipZeroAmounts: o.SkipZeroAmounts || other.SkipZeroAmounts,
	}
}

// minCap picks the smaller positive cap; zero means unlimited.
func minCap[T int | int64](a, b T) T {
	switch {
	case a == 0:
		return b
	case b == 0:
		return a
	case a < b:
		return a
	default:
		return b
	}
}
