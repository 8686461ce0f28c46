package warehouse

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/billmatch/internal/domain"
	"github.com/kailas-cloud/billmatch/internal/domain/bill"
	"github.com/kailas-cloud/billmatch/internal/logger"
)

// MaxBulk is the largest batch accepted by AddMany and UpdateStatusMany.
const MaxBulk = 100

// ItemResult is the outcome for one entry of a batch.
// Err is nil on success; Bill is set only then.
type ItemResult struct {
	Index int
	ID    string
	Bill  bill.Bill
	Err   error
}

// BulkResult collects per-entry outcomes in request order.
type BulkResult struct {
	Items     []ItemResult
	Succeeded int
	Failed    int
}

func (r *BulkResult) add(it ItemResult) {
	if it.Err != nil {
		r.Failed++
	} else {
		r.Succeeded++
	}
	r.Items = append(r.Items, it)
}

// CheckBatch rejects empty batches and batches larger than MaxBulk.
func CheckBatch(field string, n int) error {
	if n == 0 {
		return domain.NewInvalidArgument(field, "must not be empty")
	}
	if n > MaxBulk {
		return domain.NewInvalidArgument(field, "at most %d entries per request, got %d", MaxBulk, n)
	}
	return nil
}

// AddMany adds each bill independently. A failing entry does not stop the
// batch; only an invalid batch shape is returned as an error.
func (s *Service) AddMany(ctx context.Context, details []bill.Details) (BulkResult, error) {
	if err := CheckBatch("bills", len(details)); err != nil {
		return BulkResult{}, err
	}
	res := BulkResult{Items: make([]ItemResult, 0, len(details))}
	for i := range details {
		b, err := s.Add(ctx, details[i])
		res.add(ItemResult{Index: i, ID: b.ID(), Bill: b, Err: err})
	}

	logger.FromContext(ctx).Info("bills_bulk_added",
		zap.Int("total", len(details)),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

// UpdateStatusMany moves each listed bill to next, independently.
func (s *Service) UpdateStatusMany(ctx context.Context, ids []string, next bill.Status) (BulkResult, error) {
	if err := CheckBatch("bill_ids", len(ids)); err != nil {
		return BulkResult{}, err
	}
	if !next.IsValid() {
		return BulkResult{}, domain.NewInvalidArgument("status", "unknown status %q", next)
	}
	res := BulkResult{Items: make([]ItemResult, 0, len(ids))}
	for i, id := range ids {
		b, err := s.UpdateStatus(ctx, id, next)
		res.add(ItemResult{Index: i, ID: id, Bill: b, Err: err})
	}

	logger.FromContext(ctx).Info("bills_bulk_status_changed",
		zap.String("to", string(next)),
		zap.Int("total", len(ids)),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}
