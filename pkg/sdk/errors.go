package billmatch

import "github.com/kailas-cloud/billmatch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidArgument      = domain.ErrInvalidArgument
	ErrSearchBudgetExceeded = domain.ErrSearchBudgetExceeded
)
