package combination

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/billmatch/internal/domain"
	"github.com/kailas-cloud/billmatch/internal/domain/money"
)

// Request is a validated combination search.
type Request struct {
	items     []Item
	target    money.Amount
	tolerance decimal.Decimal
	maxDiff   money.Amount
	opts      Options
}

// NewRequest validates search parameters.
// Target must be positive, tolerance a positive fraction (0.1 = 10%),
// item ids unique. The input slice is copied.
func NewRequest(items []Item, target money.Amount, tolerance decimal.Decimal, opts Options) (Request, error) {
	if target <= 0 {
		return Request{}, domain.NewInvalidArgument("target_amount", "must be positive, got %s", target.Decimal())
	}
	if target > money.Max {
		return Request{}, domain.NewInvalidArgument("target_amount", "exceeds maximum %s", money.Max)
	}
	if !tolerance.IsPositive() {
		return Request{}, domain.NewInvalidArgument("tolerance", "must be positive, got %s", tolerance)
	}
	if err := opts.Validate(); err != nil {
		return Request{}, err
	}

	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.id == "" {
			return Request{}, domain.NewInvalidArgument("items", "item id is required")
		}
		if !it.amount.Valid() {
			return Request{}, domain.NewInvalidArgument("items", "item %q amount out of range", it.id)
		}
		if _, dup := seen[it.id]; dup {
			return Request{}, domain.NewInvalidArgument("items", "duplicate item id %q", it.id)
		}
		seen[it.id] = struct{}{}
	}

	band := decimal.NewFromInt(target.Minor()).Mul(tolerance).Floor()
	maxDiff := money.Max
	if band.LessThan(decimal.NewFromInt(money.Max.Minor())) {
		maxDiff = money.Amount(band.IntPart())
	}

	return Request{
		items:     append([]Item(nil), items...),
		target:    target,
		tolerance: tolerance,
		maxDiff:   maxDiff,
		opts:      opts,
	}, nil
}

// ToleranceFromFloat converts a float fraction, rejecting NaN and infinities.
func ToleranceFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, domain.NewInvalidArgument("tolerance", "must be finite")
	}
	return decimal.NewFromFloat(f), nil
}

// Items returns the candidate items in input order.
func (r *Request) Items() []Item { return r.items }

// Target returns the target amount.
func (r *Request) Target() money.Amount { return r.target }

// Tolerance returns the allowed relative deviation as a fraction.
func (r *Request) Tolerance() decimal.Decimal { return r.tolerance }

// Options returns the search budget.
func (r *Request) Options() Options { return r.opts }

// MaxDifference returns floor(target × tolerance): the widest allowed deviation.
func (r *Request) MaxDifference() money.Amount { return r.maxDiff }

// UpperBound returns the largest qualifying sum, target × (1 + tolerance).
func (r *Request) UpperBound() money.Amount { return r.target + r.maxDiff }

// LowerBound returns the smallest qualifying sum, floored at zero.
func (r *Request) LowerBound() money.Amount {
	if r.maxDiff >= r.target {
		return 0
	}
	return r.target - r.maxDiff
}
