package warehouse

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kailas-cloud/billmatch/internal/domain"
	"github.com/kailas-cloud/billmatch/internal/domain/bill"
	"github.com/kailas-cloud/billmatch/internal/domain/money"
	"github.com/kailas-cloud/billmatch/internal/logger"
	"github.com/kailas-cloud/billmatch/internal/metrics"
)

// recentWindow is how far back Statistics counts new arrivals.
const recentWindow = 7 * 24 * time.Hour

// Page is one page of a bill listing.
type Page struct {
	Bills   []bill.Bill
	Total   int
	Page    int
	PerPage int
	Pages   int
}

// AmountRange counts available bills in [Min, Max). Max of zero means unbounded.
type AmountRange struct {
	Label string
	Min   money.Amount
	Max   money.Amount
	Count int
}

// Stats summarises the available stock.
type Stats struct {
	Count           int
	TotalValue      money.Amount
	AverageValue    decimal.Decimal
	Ranges          []AmountRange
	RecentAdditions int
}

func amountRanges() []AmountRange {
	return []AmountRange{
		{Label: "0-100k", Min: 0, Max: money.FromMajor(100_000)},
		{Label: "100k-500k", Min: money.FromMajor(100_000), Max: money.FromMajor(500_000)},
		{Label: "500k-1M", Min: money.FromMajor(500_000), Max: money.FromMajor(1_000_000)},
		{Label: "1M+", Min: money.FromMajor(1_000_000)},
	}
}

// Service manages the bill warehouse.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

// New creates a warehouse service. A nil clock uses time.Now.
func New(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now, newID: uuid.NewString}
}

// Add validates details and stores a new IN_WAREHOUSE bill.
func (s *Service) Add(ctx context.Context, d bill.Details) (bill.Bill, error) {
	b, err := bill.New(s.newID(), d, s.now())
	if err != nil {
		return bill.Bill{}, err
	}
	err = s.repo.Create(ctx, b)
	metrics.ObserveWarehouse("add", err)
	if err != nil {
		return bill.Bill{}, fmt.Errorf("create bill: %w", err)
	}

	logger.FromContext(ctx).Info("bill_added",
		zap.String("bill_id", b.ID()),
		zap.String("contract_code", b.ContractCode()),
		zap.String("amount", b.Amount().String()),
	)
	return b, nil
}

// Get returns a bill by id.
func (s *Service) Get(ctx context.Context, id string) (bill.Bill, error) {
	if id == "" {
		return bill.Bill{}, domain.NewInvalidArgument("id", "is required")
	}
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return bill.Bill{}, fmt.Errorf("get bill: %w", err)
	}
	return b, nil
}

// Update edits the descriptive fields of a bill.
func (s *Service) Update(ctx context.Context, id string, p *bill.Patch) (bill.Bill, error) {
	if p.IsEmpty() {
		return bill.Bill{}, domain.NewInvalidArgument("body", "no fields to update")
	}
	b, err := s.Get(ctx, id)
	if err != nil {
		return bill.Bill{}, err
	}
	updated, err := b.WithDetails(p, s.now())
	if err != nil {
		return bill.Bill{}, err
	}
	err = s.repo.Update(ctx, updated)
	metrics.ObserveWarehouse("update", err)
	if err != nil {
		return bill.Bill{}, fmt.Errorf("update bill: %w", err)
	}

	logger.FromContext(ctx).Info("bill_updated",
		zap.String("bill_id", updated.ID()),
		zap.String("amount", updated.Amount().String()),
	)
	return updated, nil
}

// Export returns every IN_WAREHOUSE bill, newest first.
func (s *Service) Export(ctx context.Context) ([]bill.Bill, error) {
	available := bill.StatusInWarehouse
	bills, err := s.repo.ListByStatus(ctx, &available)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	sortNewestFirst(bills)
	return bills, nil
}

// List returns bills matching q, newest first.
func (s *Service) List(ctx context.Context, q *bill.Query) (Page, error) {
	status := q.Status()
	all, err := s.repo.ListByStatus(ctx, &status)
	if err != nil {
		return Page{}, fmt.Errorf("list bills: %w", err)
	}

	matched := make([]bill.Bill, 0, len(all))
	for i := range all {
		if q.Matches(&all[i]) {
			matched = append(matched, all[i])
		}
	}
	sortNewestFirst(matched)

	p := Page{Total: len(matched), Page: q.Page(), PerPage: q.PerPage()}
	p.Pages = (p.Total + p.PerPage - 1) / p.PerPage
	if off := q.Offset(); off < len(matched) {
		end := min(off+q.PerPage(), len(matched))
		p.Bills = matched[off:end]
	}
	return p, nil
}

func sortNewestFirst(bills []bill.Bill) {
	sort.Slice(bills, func(i, j int) bool {
		ai, aj := bills[i].AddedAt(), bills[j].AddedAt()
		if !ai.Equal(aj) {
			return ai.After(aj)
		}
		return bills[i].ID() < bills[j].ID()
	})
}

// Remove takes a bill off sale by cancelling it. Sold bills cannot be removed.
func (s *Service) Remove(ctx context.Context, id string) (bill.Bill, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return bill.Bill{}, err
	}
	if b.Status().IsSold() {
		return bill.Bill{}, fmt.Errorf("%w: bill %s is %s", domain.ErrBillNotRemovable, id, b.Status())
	}
	updated, err := s.transition(ctx, &b, bill.StatusCancelled, "remove")
	if err != nil {
		return bill.Bill{}, err
	}
	return updated, nil
}

// UpdateStatus moves a bill along its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, id string, next bill.Status) (bill.Bill, error) {
	if !next.IsValid() {
		return bill.Bill{}, domain.NewInvalidArgument("status", "unknown status %q", next)
	}
	b, err := s.Get(ctx, id)
	if err != nil {
		return bill.Bill{}, err
	}
	return s.transition(ctx, &b, next, "update_status")
}

func (s *Service) transition(ctx context.Context, b *bill.Bill, next bill.Status, op string) (bill.Bill, error) {
	prev := b.Status()
	updated, err := b.WithStatus(next, s.now())
	if err != nil {
		return bill.Bill{}, err
	}
	err = s.repo.Update(ctx, updated)
	metrics.ObserveWarehouse(op, err)
	if err != nil {
		return bill.Bill{}, fmt.Errorf("update bill: %w", err)
	}

	logger.FromContext(ctx).Info("bill_status_changed",
		zap.String("bill_id", updated.ID()),
		zap.String("from", string(prev)),
		zap.String("to", string(next)),
	)
	return updated, nil
}

// Statistics summarises the IN_WAREHOUSE stock.
func (s *Service) Statistics(ctx context.Context) (Stats, error) {
	available := bill.StatusInWarehouse
	bills, err := s.repo.ListByStatus(ctx, &available)
	if err != nil {
		return Stats{}, fmt.Errorf("list bills: %w", err)
	}

	st := Stats{Ranges: amountRanges(), AverageValue: decimal.Zero}
	since := s.now().Add(-recentWindow)
	for i := range bills {
		amt := bills[i].Amount()
		st.Count++
		st.TotalValue += amt
		for r := range st.Ranges {
			if amt >= st.Ranges[r].Min && (st.Ranges[r].Max == 0 || amt < st.Ranges[r].Max) {
				st.Ranges[r].Count++
				break
			}
		}
		if !bills[i].AddedAt().Before(since) {
			st.RecentAdditions++
		}
	}
	if st.Count > 0 {
		st.AverageValue = st.TotalValue.Decimal().
			Div(decimal.NewFromInt(int64(st.Count))).
			Round(money.Scale)
	}
	return st, nil
}
