package combination

import (
	"context"

	"github.com/kailas-cloud/billmatch/internal/domain/bill"
)

// BillLister reads bills by status for combination search.
type BillLister interface {
	ListByStatus(ctx context.Context, status *bill.Status) ([]bill.Bill, error)
}
