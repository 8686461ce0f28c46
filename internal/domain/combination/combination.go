package combination

import (
	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/billmatch/internal/domain/money"
)

var hundred = decimal.NewFromInt(100)

// Combination is a qualifying subset of items with its distance to the target.
type Combination struct {
	items  []Item
	total  money.Amount
	target money.Amount
}

// New creates a Combination; total is computed from items.
func New(items []Item, target money.Amount) Combination {
	var total money.Amount
	for _, it := range items {
		total += it.amount
	}
	return Combination{items: items, total: total, target: target}
}

// Items returns the subset in search order.
func (c *Combination) Items() []Item { return c.items }

// IDs returns the item identifiers in search order.
func (c *Combination) IDs() []string {
	ids := make([]string, len(c.items))
	for i, it := range c.items {
		ids[i] = it.id
	}
	return ids
}

// Len returns the number of items.
func (c *Combination) Len() int { return len(c.items) }

// TotalAmount returns the exact sum of item amounts.
func (c *Combination) TotalAmount() money.Amount { return c.total }

// Target returns the target the combination was measured against.
func (c *Combination) Target() money.Amount { return c.target }

// AbsoluteDifference returns |total − target|.
func (c *Combination) AbsoluteDifference() money.Amount {
	if c.total >= c.target {
		return c.total - c.target
	}
	return c.target - c.total
}

// SignedDifference returns total − target (positive when over target).
func (c *Combination) SignedDifference() int64 { return c.total.Minor() - c.target.Minor() }

// PercentageDifference returns |total − target| / target × 100.
func (c *Combination) PercentageDifference() decimal.Decimal {
	if c.target == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(c.AbsoluteDifference().Minor()).
		Mul(hundred).
		Div(decimal.NewFromInt(c.target.Minor()))
}
