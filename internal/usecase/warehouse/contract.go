package warehouse

import (
	"context"

	"github.com/kailas-cloud/billmatch/internal/domain/bill"
)

// Repository defines the storage contract for warehouse bills.
// Create fails with domain.ErrAlreadyExists when the contract code is taken.
type Repository interface {
	Create(ctx context.Context, b bill.Bill) error
	Get(ctx context.Context, id string) (bill.Bill, error)
	Update(ctx context.Context, b bill.Bill) error
	ListByStatus(ctx context.Context, status *bill.Status) ([]bill.Bill, error)
}
