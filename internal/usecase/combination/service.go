package combination

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kailas-cloud/billmatch/internal/domain/bill"
	domcomb "github.com/kailas-cloud/billmatch/internal/domain/combination"
	"github.com/kailas-cloud/billmatch/internal/domain/money"
	"github.com/kailas-cloud/billmatch/internal/logger"
	"github.com/kailas-cloud/billmatch/internal/metrics"
)

// SearchParams is a combination search over the warehouse.
// Options may only tighten the service defaults.
type SearchParams struct {
	Target    money.Amount
	Tolerance decimal.Decimal
	Options   domcomb.Options
}

// Match is a combination together with the bills it was built from.
type Match struct {
	Combination domcomb.Combination
	Bills       []bill.Bill
}

// Outcome is the result of a warehouse search.
type Outcome struct {
	SearchID   string
	Matches    []Match
	Truncated  bool
	Reason     domcomb.TruncationReason
	Stats      domcomb.Stats
	Candidates int
}

// Service finds bill combinations among available warehouse bills.
type Service struct {
	bills    BillLister
	defaults domcomb.Options
}

// New creates a combination service. defaults are the server-side search caps.
func New(bills BillLister, defaults domcomb.Options) *Service {
	return &Service{bills: bills, defaults: defaults}
}

// Search runs the finder over every IN_WAREHOUSE bill.
func (s *Service) Search(ctx context.Context, p SearchParams) (Outcome, error) {
	log := logger.FromContext(ctx)

	if err := p.Options.Validate(); err != nil {
		metrics.ObserveSearch("invalid", 0, 0, 0, 0)
		return Outcome{}, err
	}
	opts := s.defaults.Tighten(p.Options)

	// Validate target and tolerance before touching storage.
	if _, err := domcomb.NewRequest(nil, p.Target, p.Tolerance, opts); err != nil {
		metrics.ObserveSearch("invalid", 0, 0, 0, 0)
		return Outcome{}, err
	}

	available := bill.StatusInWarehouse
	bills, err := s.bills.ListByStatus(ctx, &available)
	if err != nil {
		metrics.ObserveSearch("error", 0, 0, 0, 0)
		return Outcome{}, fmt.Errorf("list available bills: %w", err)
	}

	byID := make(map[string]bill.Bill, len(bills))
	items := make([]domcomb.Item, 0, len(bills))
	for i := range bills {
		b := bills[i]
		it, err := domcomb.NewItem(b.ID(), b.Amount())
		if err != nil {
			return Outcome{}, fmt.Errorf("bill %s: %w", b.ID(), err)
		}
		byID[b.ID()] = b
		items = append(items, it)
	}

	req, err := domcomb.NewRequest(items, p.Target, p.Tolerance, opts)
	if err != nil {
		return Outcome{}, fmt.Errorf("build request: %w", err)
	}

	res := Find(ctx, &req)
	stats := res.Stats()

	combos := res.Combinations()
	matches := make([]Match, len(combos))
	for i, c := range combos {
		picked := make([]bill.Bill, 0, c.Len())
		for _, id := range c.IDs() {
			picked = append(picked, byID[id])
		}
		matches[i] = Match{Combination: c, Bills: picked}
	}

	out := Outcome{
		SearchID:   uuid.NewString(),
		Matches:    matches,
		Truncated:  res.Truncated(),
		Reason:     res.Reason(),
		Stats:      stats,
		Candidates: len(bills),
	}

	outcome := "complete"
	if out.Truncated {
		outcome = string(out.Reason)
	}
	metrics.ObserveSearch(outcome, stats.Elapsed, stats.Steps, len(matches), stats.Candidates)

	log.Info("combination_search",
		zap.String("search_id", out.SearchID),
		zap.String("target", p.Target.String()),
		zap.String("tolerance", p.Tolerance.String()),
		zap.Int("bills", len(bills)),
		zap.Int("candidates", stats.Candidates),
		zap.Int("steps", stats.Steps),
		zap.Int("qualified", stats.Qualified),
		zap.Int("returned", len(matches)),
		zap.String("truncation", string(out.Reason)),
		zap.Duration("elapsed", stats.Elapsed),
	)

	return out, nil
}
