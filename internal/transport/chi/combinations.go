package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kailas-cloud/billmatch/internal/domain"
	domcomb "github.com/kailas-cloud/billmatch/internal/domain/combination"
	"github.com/kailas-cloud/billmatch/internal/domain/money"
	combinationuc "github.com/kailas-cloud/billmatch/internal/usecase/combination"
)

// SearchCombinations handles POST /api/v1/combinations/search.
// A truncated search still answers 200 with truncated=true.
func (s *Server) SearchCombinations(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	params, err := s.searchParams(&req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	out, err := s.combinations.Search(r.Context(), params)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomeToResponse(&out, params.Target, params.Tolerance))
}

func (s *Server) searchParams(req *searchRequest) (combinationuc.SearchParams, error) {
	if req.TargetAmount == nil {
		return combinationuc.SearchParams{}, domain.NewInvalidArgument("target_amount", "is required")
	}
	target, err := money.FromDecimal(*req.TargetAmount)
	if err != nil {
		var iae *domain.InvalidArgumentError
		if errors.As(err, &iae) {
			return combinationuc.SearchParams{}, domain.NewInvalidArgument("target_amount", "%s", iae.Reason)
		}
		return combinationuc.SearchParams{}, err
	}

	tolerance := s.defaultTolerance
	if req.Tolerance != nil {
		tolerance = *req.Tolerance
	}

	opts := domcomb.Options{
		MaxItems:        deref(req.MaxItems),
		MaxResults:      deref(req.MaxResults),
		MaxSteps:        deref(req.MaxSteps),
		TimeBudget:      time.Duration(deref(req.TimeBudgetMS)) * time.Millisecond,
		SkipZeroAmounts: deref(req.SkipZeroAmounts),
	}
	return combinationuc.SearchParams{Target: target, Tolerance: tolerance, Options: opts}, nil
}
