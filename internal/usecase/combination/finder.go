package combination

import (
	"context"
	"time"

	domcomb "github.com/kailas-cloud/billmatch/internal/domain/combination"
	"github.com/kailas-cloud/billmatch/internal/domain/money"
)

// checkEvery is the number of visited subsets between context and clock checks.
const checkEvery = 1024

// Find enumerates the subsets of req's items whose total lies within the
// tolerance band around the target and returns them ranked best first.
//
// The search is a depth-first walk over subsets in increasing index order, so
// each subset is visited once. A branch is cut as soon as its sum passes
// req.UpperBound(): amounts are non-negative, so extending it cannot help.
// The empty subset qualifies like any other when the band reaches zero
// (tolerance of 1 or more).
//
// Budget exhaustion is not an error: the partial result carries the reason.
// Find is safe for concurrent use and does not modify req.
func Find(ctx context.Context, req *domcomb.Request) domcomb.Result {
	start := time.Now()
	opts := req.Options()

	items, skipped := candidates(req.Items(), opts.SkipZeroAmounts)
	capped := false
	if opts.MaxItems > 0 && len(items) > opts.MaxItems {
		items = items[:opts.MaxItems]
		capped = true
	}

	s := &searcher{
		items:  items,
		target: req.Target(),
		lower:  req.LowerBound(),
		upper:  req.UpperBound(),
		opts:   opts,
		out:    newCollector(opts.MaxResults),
	}
	if opts.TimeBudget > 0 {
		s.deadline = start.Add(opts.TimeBudget)
	}

	reason := s.run(ctx)
	switch {
	case reason != domcomb.TruncationNone:
	case capped:
		reason = domcomb.TruncationMaxItems
	case s.out.dropped:
		reason = domcomb.TruncationMaxResults
	}

	return domcomb.NewResult(s.out.ranked(), reason, domcomb.Stats{
		Candidates: len(items),
		Skipped:    skipped,
		Steps:      s.steps,
		Qualified:  s.qualified,
		Elapsed:    time.Since(start),
	})
}

// candidates drops zero-amount items when asked to.
func candidates(items []domcomb.Item, skipZero bool) ([]domcomb.Item, int) {
	if !skipZero {
		return items, 0
	}
	out := make([]domcomb.Item, 0, len(items))
	for _, it := range items {
		if it.Amount() == 0 {
			continue
		}
		out = append(out, it)
	}
	return out, len(items) - len(out)
}

type searcher struct {
	items    []domcomb.Item
	target   money.Amount
	lower    money.Amount
	upper    money.Amount
	opts     domcomb.Options
	deadline time.Time
	out      *collector

	steps     int
	qualified int
}

// run walks the subset tree with an explicit stack.
// Frame d holds the next index to try and the sum of the d items in path.
func (s *searcher) run(ctx context.Context) domcomb.TruncationReason {
	if reason := s.interrupted(ctx); reason != domcomb.TruncationNone {
		return reason
	}

	n := len(s.items)
	path := make([]int, 0, n)
	next := make([]int, 1, n+1)
	sums := make([]money.Amount, 1, n+1)

	if s.lower == 0 {
		s.record(path)
	}

	for len(next) > 0 {
		d := len(next) - 1
		i := next[d]
		if i >= n {
			next = next[:d]
			sums = sums[:d]
			if d > 0 {
				path = path[:d-1]
			}
			continue
		}
		next[d] = i + 1

		sum := sums[d] + s.items[i].Amount()
		if sum > s.upper {
			continue
		}

		if s.opts.MaxSteps > 0 && s.steps == s.opts.MaxSteps {
			return domcomb.TruncationMaxSteps
		}
		s.steps++
		if s.steps%checkEvery == 0 {
			if reason := s.interrupted(ctx); reason != domcomb.TruncationNone {
				return reason
			}
		}

		path = append(path, i)
		if sum >= s.lower {
			s.record(path)
		}
		next = append(next, i+1)
		sums = append(sums, sum)
	}
	return domcomb.TruncationNone
}

func (s *searcher) interrupted(ctx context.Context) domcomb.TruncationReason {
	if ctx.Err() != nil {
		return domcomb.TruncationCancelled
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		return domcomb.TruncationTimeBudget
	}
	return domcomb.TruncationNone
}

// record snapshots the current path; path itself keeps changing.
func (s *searcher) record(path []int) {
	s.qualified++
	picked := make([]domcomb.Item, len(path))
	for k, idx := range path {
		picked[k] = s.items[idx]
	}
	s.out.add(&candidate{
		comb:    domcomb.New(picked, s.target),
		indices: append([]int(nil), path...),
	})
}
