package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kailas-cloud/billmatch/internal/domain"
	"github.com/kailas-cloud/billmatch/internal/domain/bill"
	"github.com/kailas-cloud/billmatch/internal/domain/money"
	warehouseuc "github.com/kailas-cloud/billmatch/internal/usecase/warehouse"
)

// listBillsParams mirrors the GET /bills query string.
type listBillsParams struct {
	Search    *string
	MinAmount *string
	MaxAmount *string
	Status    *string
	Page      *int
	PerPage   *int
}

func bindListBillsParams(r *http.Request) (listBillsParams, error) {
	var p listBillsParams
	q := r.URL.Query()
	binds := []struct {
		name string
		dest any
	}{
		{"search", &p.Search},
		{"min_amount", &p.MinAmount},
		{"max_amount", &p.MaxAmount},
		{"status", &p.Status},
		{"page", &p.Page},
		{"per_page", &p.PerPage},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return listBillsParams{}, domain.NewInvalidArgument(b.name, "invalid format")
		}
	}
	return p, nil
}

func (p *listBillsParams) query() (bill.Query, error) {
	minAmount, err := optionalAmount("min_amount", p.MinAmount)
	if err != nil {
		return bill.Query{}, err
	}
	maxAmount, err := optionalAmount("max_amount", p.MaxAmount)
	if err != nil {
		return bill.Query{}, err
	}
	return bill.NewQuery(
		deref(p.Search),
		minAmount, maxAmount,
		bill.Status(deref(p.Status)),
		deref(p.Page), deref(p.PerPage),
	)
}

func optionalAmount(field string, s *string) (*money.Amount, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	a, err := money.Parse(*s)
	if err != nil {
		return nil, domain.NewInvalidArgument(field, "not a valid amount: %q", *s)
	}
	return &a, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// ListBills handles GET /api/v1/bills.
func (s *Server) ListBills(w http.ResponseWriter, r *http.Request) {
	params, err := bindListBillsParams(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	q, err := params.query()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	page, err := s.warehouse.List(r.Context(), &q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageToResponse(&page))
}

func (req *createBillRequest) details() (bill.Details, error) {
	if req.Amount == nil {
		return bill.Details{}, domain.NewInvalidArgument("amount", "is required")
	}
	amount, err := money.FromDecimal(*req.Amount)
	if err != nil {
		return bill.Details{}, err
	}
	return bill.Details{
		ContractCode: req.ContractCode,
		CustomerName: req.CustomerName,
		Address:      req.Address,
		Amount:       amount,
		Period:       req.Period,
		MeterNumber:  req.MeterNumber,
		Notes:        req.Notes,
	}, nil
}

func (req *updateBillRequest) patch() (bill.Patch, error) {
	p := bill.Patch{
		CustomerName: req.CustomerName,
		Address:      req.Address,
		Period:       req.Period,
		MeterNumber:  req.MeterNumber,
		Notes:        req.Notes,
	}
	if req.Amount != nil {
		amount, err := money.FromDecimal(*req.Amount)
		if err != nil {
			return bill.Patch{}, err
		}
		p.Amount = &amount
	}
	return p, nil
}

// CreateBill handles POST /api/v1/bills.
func (s *Server) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	d, err := req.details()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	b, err := s.warehouse.Add(r.Context(), d)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, billToResponse(&b))
}

// GetBill handles GET /api/v1/bills/{id}.
func (s *Server) GetBill(w http.ResponseWriter, r *http.Request) {
	b, err := s.warehouse.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, billToResponse(&b))
}

// UpdateBill handles PUT /api/v1/bills/{id}.
func (s *Server) UpdateBill(w http.ResponseWriter, r *http.Request) {
	var req updateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	p, err := req.patch()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	b, err := s.warehouse.Update(r.Context(), chi.URLParam(r, "id"), &p)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, billToResponse(&b))
}

// RemoveBill handles DELETE /api/v1/bills/{id}.
// The bill is cancelled, not erased.
func (s *Server) RemoveBill(w http.ResponseWriter, r *http.Request) {
	b, err := s.warehouse.Remove(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, billToResponse(&b))
}

// UpdateBillStatus handles PUT /api/v1/bills/{id}/status.
func (s *Server) UpdateBillStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	b, err := s.warehouse.UpdateStatus(r.Context(), chi.URLParam(r, "id"), bill.Status(req.Status))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, billToResponse(&b))
}

// BillStatistics handles GET /api/v1/bills/statistics.
func (s *Server) BillStatistics(w http.ResponseWriter, r *http.Request) {
	st, err := s.warehouse.Statistics(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsToResponse(&st))
}

// ExportBills handles GET /api/v1/bills/export.
func (s *Server) ExportBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.warehouse.Export(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{
		Bills:  billsToResponse(bills),
		Total:  len(bills),
		Format: "json",
	})
}

// BulkAddBills handles POST /api/v1/bills/bulk.
// Entries succeed or fail independently; the response is 200 either way.
func (s *Server) BulkAddBills(w http.ResponseWriter, r *http.Request) {
	var req bulkAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := warehouseuc.CheckBatch("bills", len(req.Bills)); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	// Entries that fail to decode never reach the service; origin maps the
	// service's indexes back to request positions.
	items := make([]warehouseuc.ItemResult, len(req.Bills))
	details := make([]bill.Details, 0, len(req.Bills))
	origin := make([]int, 0, len(req.Bills))
	for i := range req.Bills {
		d, err := req.Bills[i].details()
		if err != nil {
			items[i] = warehouseuc.ItemResult{Index: i, Err: err}
			continue
		}
		details = append(details, d)
		origin = append(origin, i)
	}

	if len(details) > 0 {
		res, err := s.warehouse.AddMany(r.Context(), details)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		for _, it := range res.Items {
			it.Index = origin[it.Index]
			items[it.Index] = it
		}
	}
	writeJSON(w, http.StatusOK, s.bulkToResponse(r, items))
}

// BulkUpdateBillStatus handles PUT /api/v1/bills/bulk/status.
func (s *Server) BulkUpdateBillStatus(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := s.warehouse.UpdateStatusMany(r.Context(), req.BillIDs, bill.Status(req.Status))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.bulkToResponse(r, res.Items))
}

func (s *Server) bulkToResponse(r *http.Request, items []warehouseuc.ItemResult) bulkResponse {
	out := bulkResponse{
		Results: make([]bulkItemResponse, len(items)),
		Summary: bulkSummaryResponse{Total: len(items)},
	}
	for i := range items {
		it := &items[i]
		item := bulkItemResponse{Index: it.Index, ID: it.ID}
		if it.Err != nil {
			body, known := errorBody(it.Err)
			if !known {
				s.log(r).Error("bulk entry failed", zap.Int("index", it.Index), zap.Error(it.Err))
			}
			item.Error = &body
			out.Summary.Failed++
		} else {
			br := billToResponse(&it.Bill)
			item.Bill = &br
			out.Summary.Successful++
		}
		out.Results[i] = item
	}
	return out
}
