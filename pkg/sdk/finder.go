package billmatch

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	domcomb "github.com/kailas-cloud/billmatch/internal/domain/combination"
	"github.com/kailas-cloud/billmatch/internal/domain/money"
	"github.com/kailas-cloud/billmatch/internal/usecase/combination"
)

// Finder searches item combinations under a fixed set of caps.
// Safe for concurrent use.
type Finder struct {
	opts domcomb.Options
	obs  *observer
}

// New creates a Finder. Without options the search is exhaustive.
func New(opts ...Option) (*Finder, error) {
	cfg := &finderConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	dopts := domcomb.Options{
		MaxItems:        cfg.maxItems,
		MaxResults:      cfg.maxResults,
		MaxSteps:        cfg.maxSteps,
		TimeBudget:      cfg.timeBudget,
		SkipZeroAmounts: cfg.skipZeroAmounts,
	}
	if err := dopts.Validate(); err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return &Finder{opts: dopts, obs: obs}, nil
}

// Find returns every combination of items whose total is within
// tolerance × target of target, best first. tolerance is a fraction (0.1 = 10%).
//
// Invalid input fails with ErrInvalidArgument before any search work.
// A search stopped by a cap or by ctx returns partial results with
// Truncated set and a nil error; Result.Err reports the truncation.
func (f *Finder) Find(ctx context.Context, items []Item, target decimal.Decimal, tolerance float64) (*Result, error) {
	start := time.Now()

	req, err := f.request(items, target, tolerance)
	if err != nil {
		f.obs.observe(ctx, start, nil, err)
		return nil, err
	}

	res := combination.Find(ctx, &req)
	out := fromResult(&res)
	f.obs.observe(ctx, start, out, nil)
	return out, nil
}

func (f *Finder) request(items []Item, target decimal.Decimal, tolerance float64) (domcomb.Request, error) {
	tgt, err := money.FromDecimal(target)
	if err != nil {
		return domcomb.Request{}, err
	}
	tol, err := domcomb.ToleranceFromFloat(tolerance)
	if err != nil {
		return domcomb.Request{}, err
	}
	ditems, err := toItems(items)
	if err != nil {
		return domcomb.Request{}, err
	}
	return domcomb.NewRequest(ditems, tgt, tol, f.opts)
}

// FindCombinations runs an exhaustive search with no caps.
func FindCombinations(items []Item, target decimal.Decimal, tolerance float64) ([]Combination, error) {
	f := &Finder{}
	res, err := f.Find(context.Background(), items, target, tolerance)
	if err != nil {
		return nil, err
	}
	return res.Combinations, nil
}
