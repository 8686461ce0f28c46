package chi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/billmatch/internal/domain/bill"
	domcomb "github.com/kailas-cloud/billmatch/internal/domain/combination"
	"github.com/kailas-cloud/billmatch/internal/domain/money"
	combinationuc "github.com/kailas-cloud/billmatch/internal/usecase/combination"
	healthuc "github.com/kailas-cloud/billmatch/internal/usecase/health"
	warehouseuc "github.com/kailas-cloud/billmatch/internal/usecase/warehouse"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Amounts accept JSON strings or numbers and are written as strings.
type createBillRequest struct {
	ContractCode string           `json:"contract_code"`
	CustomerName string           `json:"customer_name"`
	Address      string           `json:"address"`
	Amount       *decimal.Decimal `json:"amount"`
	Period       string           `json:"period"`
	MeterNumber  string           `json:"meter_number"`
	Notes        string           `json:"notes"`
}

// Nil fields are left unchanged.
type updateBillRequest struct {
	CustomerName *string          `json:"customer_name"`
	Address      *string          `json:"address"`
	Amount       *decimal.Decimal `json:"amount"`
	Period       *string          `json:"period"`
	MeterNumber  *string          `json:"meter_number"`
	Notes        *string          `json:"notes"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type bulkAddRequest struct {
	Bills []createBillRequest `json:"bills"`
}

type bulkStatusRequest struct {
	BillIDs []string `json:"bill_ids"`
	Status  string   `json:"status"`
}

type searchRequest struct {
	TargetAmount    *decimal.Decimal `json:"target_amount"`
	Tolerance       *decimal.Decimal `json:"tolerance"`
	MaxResults      *int             `json:"max_results"`
	MaxSteps        *int             `json:"max_steps"`
	MaxItems        *int             `json:"max_items"`
	TimeBudgetMS    *int             `json:"time_budget_ms"`
	SkipZeroAmounts *bool            `json:"skip_zero_amounts"`
}

type billResponse struct {
	ID           string          `json:"id"`
	ContractCode string          `json:"contract_code"`
	CustomerName string          `json:"customer_name"`
	Address      string          `json:"address,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Period       string          `json:"period,omitempty"`
	MeterNumber  string          `json:"meter_number,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Status       string          `json:"status"`
	AddedAt      time.Time       `json:"added_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type billListResponse struct {
	Bills   []billResponse `json:"bills"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Pages   int            `json:"pages"`
}

type bulkItemResponse struct {
	Index int            `json:"index"`
	ID    string         `json:"id,omitempty"`
	Bill  *billResponse  `json:"bill,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type bulkSummaryResponse struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

type bulkResponse struct {
	Results []bulkItemResponse  `json:"results"`
	Summary bulkSummaryResponse `json:"summary"`
}

type exportResponse struct {
	Bills  []billResponse `json:"bills"`
	Total  int            `json:"total"`
	Format string         `json:"format"`
}

type amountRangeResponse struct {
	Label string           `json:"label"`
	Min   decimal.Decimal  `json:"min"`
	Max   *decimal.Decimal `json:"max"`
	Count int              `json:"count"`
}

type statisticsResponse struct {
	Count           int                   `json:"count"`
	TotalValue      decimal.Decimal       `json:"total_value"`
	AverageValue    decimal.Decimal       `json:"average_value"`
	Ranges          []amountRangeResponse `json:"ranges"`
	RecentAdditions int                   `json:"recent_additions"`
}

type combinationResponse struct {
	BillIDs              []string        `json:"bill_ids"`
	Bills                []billResponse  `json:"bills"`
	ItemCount            int             `json:"item_count"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	Difference           decimal.Decimal `json:"difference"`
	SignedDifference     decimal.Decimal `json:"signed_difference"`
	PercentageDifference decimal.Decimal `json:"percentage_difference"`
}

type searchStatsResponse struct {
	Candidates int   `json:"candidates"`
	Skipped    int   `json:"skipped"`
	Steps      int   `json:"steps"`
	Qualified  int   `json:"qualified"`
	ElapsedMS  int64 `json:"elapsed_ms"`
}

type searchResponse struct {
	SearchID         string                `json:"search_id"`
	TargetAmount     decimal.Decimal       `json:"target_amount"`
	Tolerance        decimal.Decimal       `json:"tolerance"`
	Combinations     []combinationResponse `json:"combinations"`
	Truncated        bool                  `json:"truncated"`
	TruncationReason string                `json:"truncation_reason,omitempty"`
	AvailableBills   int                   `json:"available_bills"`
	Stats            searchStatsResponse   `json:"stats"`
}

type healthResponse struct {
	Status    string            `json:"status"`
	Backend   string            `json:"backend"`
	Checks    map[string]string `json:"checks"`
	LatencyMS int64             `json:"latency_ms"`
	Version   string            `json:"version"`
}

func billToResponse(b *bill.Bill) billResponse {
	return billResponse{
		ID:           b.ID(),
		ContractCode: b.ContractCode(),
		CustomerName: b.CustomerName(),
		Address:      b.Address(),
		Amount:       b.Amount().Decimal(),
		Period:       b.Period(),
		MeterNumber:  b.MeterNumber(),
		Notes:        b.Notes(),
		Status:       string(b.Status()),
		AddedAt:      b.AddedAt(),
		UpdatedAt:    b.UpdatedAt(),
	}
}

func billsToResponse(bills []bill.Bill) []billResponse {
	out := make([]billResponse, len(bills))
	for i := range bills {
		out[i] = billToResponse(&bills[i])
	}
	return out
}

func pageToResponse(p *warehouseuc.Page) billListResponse {
	return billListResponse{
		Bills:   billsToResponse(p.Bills),
		Total:   p.Total,
		Page:    p.Page,
		PerPage: p.PerPage,
		Pages:   p.Pages,
	}
}

func statsToResponse(st *warehouseuc.Stats) statisticsResponse {
	ranges := make([]amountRangeResponse, len(st.Ranges))
	for i, r := range st.Ranges {
		ranges[i] = amountRangeResponse{Label: r.Label, Min: r.Min.Decimal(), Count: r.Count}
		if r.Max > 0 {
			m := r.Max.Decimal()
			ranges[i].Max = &m
		}
	}
	return statisticsResponse{
		Count:           st.Count,
		TotalValue:      st.TotalValue.Decimal(),
		AverageValue:    st.AverageValue,
		Ranges:          ranges,
		RecentAdditions: st.RecentAdditions,
	}
}

func outcomeToResponse(out *combinationuc.Outcome, target money.Amount, tolerance decimal.Decimal) searchResponse {
	combos := make([]combinationResponse, len(out.Matches))
	for i := range out.Matches {
		combos[i] = matchToResponse(&out.Matches[i])
	}
	return searchResponse{
		SearchID:         out.SearchID,
		TargetAmount:     target.Decimal(),
		Tolerance:        tolerance,
		Combinations:     combos,
		Truncated:        out.Truncated,
		TruncationReason: string(out.Reason),
		AvailableBills:   out.Candidates,
		Stats:            statsFromDomain(out.Stats),
	}
}

func matchToResponse(m *combinationuc.Match) combinationResponse {
	c := &m.Combination
	return combinationResponse{
		BillIDs:              c.IDs(),
		Bills:                billsToResponse(m.Bills),
		ItemCount:            c.Len(),
		TotalAmount:          c.TotalAmount().Decimal(),
		Difference:           c.AbsoluteDifference().Decimal(),
		SignedDifference:     decimal.New(c.SignedDifference(), -money.Scale),
		PercentageDifference: c.PercentageDifference().Round(4),
	}
}

func statsFromDomain(st domcomb.Stats) searchStatsResponse {
	return searchStatsResponse{
		Candidates: st.Candidates,
		Skipped:    st.Skipped,
		Steps:      st.Steps,
		Qualified:  st.Qualified,
		ElapsedMS:  st.Elapsed.Milliseconds(),
	}
}

func healthToResponse(r *healthuc.Report, version string) healthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return healthResponse{
		Status:    string(r.Status),
		Backend:   r.Backend,
		Checks:    checks,
		LatencyMS: r.Latency.Milliseconds(),
		Version:   version,
	}
}
