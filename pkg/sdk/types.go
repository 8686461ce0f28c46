package billmatch

import (
	"time"

	"github.com/shopspring/decimal"

	domcomb "github.com/kailas-cloud/billmatch/internal/domain/combination"
	"github.com/kailas-cloud/billmatch/internal/domain/money"
)

// Item is a candidate bill. Amount must be non-negative with at most two decimals.
type Item struct {
	ID     string
	Amount decimal.Decimal
}

// Combination is a group of items whose total lies within the tolerance band.
type Combination struct {
	Items                []Item
	TotalAmount          decimal.Decimal
	AbsoluteDifference   decimal.Decimal
	PercentageDifference decimal.Decimal
}

// IDs returns the item ids in input order.
func (c Combination) IDs() []string {
	ids := make([]string, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ID
	}
	return ids
}

// TruncationReason names the cap that stopped a search early.
type TruncationReason string

// Truncation reasons.
const (
	TruncationMaxItems   TruncationReason = TruncationReason(domcomb.TruncationMaxItems)
	TruncationMaxResults TruncationReason = TruncationReason(domcomb.TruncationMaxResults)
	TruncationMaxSteps   TruncationReason = TruncationReason(domcomb.TruncationMaxSteps)
	TruncationTimeBudget TruncationReason = TruncationReason(domcomb.TruncationTimeBudget)
	TruncationCancelled  TruncationReason = TruncationReason(domcomb.TruncationCancelled)
)

// Stats describes the work done by one search.
type Stats struct {
	Candidates int
	Skipped    int
	Steps      int
	Qualified  int
	Elapsed    time.Duration
}

// Result holds ranked combinations. A truncated result is partial but valid.
type Result struct {
	Combinations []Combination
	Truncated    bool
	Reason       TruncationReason
	Stats        Stats
	err          error
}

// Err returns an error wrapping ErrSearchBudgetExceeded when the search was truncated.
func (r *Result) Err() error { return r.err }

func toItems(items []Item) ([]domcomb.Item, error) {
	out := make([]domcomb.Item, len(items))
	for i, it := range items {
		amt, err := money.FromDecimal(it.Amount)
		if err != nil {
			return nil, err
		}
		di, err := domcomb.NewItem(it.ID, amt)
		if err != nil {
			return nil, err
		}
		out[i] = di
	}
	return out, nil
}

func fromResult(res *domcomb.Result) *Result {
	combos := res.Combinations()
	out := &Result{
		Combinations: make([]Combination, len(combos)),
		Truncated:    res.Truncated(),
		Reason:       TruncationReason(res.Reason()),
		Stats:        Stats(res.Stats()),
		err:          res.Err(),
	}
	for i := range combos {
		out.Combinations[i] = fromCombination(&combos[i])
	}
	return out
}

func fromCombination(c *domcomb.Combination) Combination {
	items := make([]Item, c.Len())
	for i, it := range c.Items() {
		items[i] = Item{ID: it.ID(), Amount: it.Amount().Decimal()}
	}
	return Combination{
		Items:                items,
		TotalAmount:          c.TotalAmount().Decimal(),
		AbsoluteDifference:   c.AbsoluteDifference().Decimal(),
		PercentageDifference: c.PercentageDifference(),
	}
}
