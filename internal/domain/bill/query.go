package bill

import (
	"strings"

	"github.com/kailas-cloud/billmatch/internal/domain"
	"github.com/kailas-cloud/billmatch/internal/domain/money"
)

// Listing limits.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
	MaxSearchLen   = 200
)

// Query is a validated warehouse listing request.
type Query struct {
	search    string
	minAmount *money.Amount
	maxAmount *money.Amount
	status    Status
	page      int
	perPage   int
}

// NewQuery validates and normalizes listing parameters.
// Defaults: status=IN_WAREHOUSE, page=1, perPage=20 (clamped to 100).
func NewQuery(search string, minAmount, maxAmount *money.Amount, status Status, page, perPage int) (Query, error) {
	search = strings.TrimSpace(search)
	if len(search) > MaxSearchLen {
		return Query{}, domain.NewInvalidArgument("search", "too long (max %d chars)", MaxSearchLen)
	}
	if status == "" {
		status = StatusInWarehouse
	}
	if !status.IsValid() {
		return Query{}, domain.NewInvalidArgument("status", "unknown status %q", status)
	}
	if minAmount != nil && maxAmount != nil && *minAmount > *maxAmount {
		return Query{}, domain.NewInvalidArgument("min_amount", "greater than max_amount")
	}
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Query{
		search:    strings.ToLower(search),
		minAmount: minAmount,
		maxAmount: maxAmount,
		status:    status,
		page:      page,
		perPage:   perPage,
	}, nil
}

// Status returns the status filter.
func (q *Query) Status() Status { return q.status }

// Page returns the 1-based page number.
func (q *Query) Page() int { return q.page }

// PerPage returns the page size.
func (q *Query) PerPage() int { return q.perPage }

// Offset returns the index of the first bill on the page.
func (q *Query) Offset() int { return (q.page - 1) * q.perPage }

// Matches reports whether b satisfies every filter except pagination.
func (q *Query) Matches(b *Bill) bool {
	if b.Status() != q.status {
		return false
	}
	if q.minAmount != nil && b.Amount() < *q.minAmount {
		return false
	}
	if q.maxAmount != nil && b.Amount() > *q.maxAmount {
		return false
	}
	if q.search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.ContractCode()), q.search) ||
		strings.Contains(strings.ToLower(b.CustomerName()), q.search) ||
		strings.Contains(strings.ToLower(b.Address()), q.search)
}
