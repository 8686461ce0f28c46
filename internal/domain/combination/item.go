package combination

import (
	"github.com/kailas-cloud/billmatch/internal/domain"
	"github.com/kailas-cloud/billmatch/internal/domain/money"
)

// Item is a candidate for a combination: an identified, non-negative amount.
type Item struct {
	id     string
	amount money.Amount
}

// NewItem validates and creates an Item.
func NewItem(id string, amount money.Amount) (Item, error) {
	if id == "" {
		return Item{}, domain.NewInvalidArgument("items", "item id is required")
	}
	if !amount.Valid() {
		return Item{}, domain.NewInvalidArgument("items", "item %q amount out of range: %d", id, amount)
	}
	return Item{id: id, amount: amount}, nil
}

// ID returns the item identifier.
func (i Item) ID() string { return i.id }

// Amount returns the item amount.
func (i Item) Amount() money.Amount { return i.amount }
