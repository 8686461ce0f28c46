package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kailas-cloud/billmatch/internal/logger"
	"github.com/kailas-cloud/billmatch/internal/metrics"
	combinationuc "github.com/kailas-cloud/billmatch/internal/usecase/combination"
	healthuc "github.com/kailas-cloud/billmatch/internal/usecase/health"
	warehouseuc "github.com/kailas-cloud/billmatch/internal/usecase/warehouse"
	"github.com/kailas-cloud/billmatch/internal/version"
)

// Server serves the billmatch JSON API.
type Server struct {
	combinations     *combinationuc.Service
	warehouse        *warehouseuc.Service
	health           *healthuc.Service
	logger           *zap.Logger
	defaultTolerance decimal.Decimal
	errorHandlers    []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	combinations *combinationuc.Service,
	warehouse *warehouseuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		combinations:     combinations,
		warehouse:        warehouse,
		health:           health,
		logger:           logger,
		defaultTolerance: decimal.New(1, -1),
		errorHandlers:    defaultErrorHandlers(),
	}
}

// WithDefaultTolerance sets the tolerance used when a search omits it.
func (s *Server) WithDefaultTolerance(t decimal.Decimal) *Server {
	if t.IsPositive() {
		s.defaultTolerance = t
	}
	return s
}

// Handler builds the full middleware chain and routes.
// An empty apiKeys list disables authentication.
func (s *Server) Handler(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())
	s.Mount(r)
	return r
}

// Mount registers the API routes on r.
func (s *Server) Mount(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/combinations/search", s.SearchCombinations)

		r.Route("/bills", func(r chi.Router) {
			r.Get("/", s.ListBills)
			r.Post("/", s.CreateBill)
			r.Get("/statistics", s.BillStatistics)
			r.Get("/export", s.ExportBills)
			r.Post("/bulk", s.BulkAddBills)
			r.Put("/bulk/status", s.BulkUpdateBillStatus)
			r.Get("/{id}", s.GetBill)
			r.Put("/{id}", s.UpdateBill)
			r.Delete("/{id}", s.RemoveBill)
			r.Put("/{id}/status", s.UpdateBillStatus)
		})
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthToResponse(&report, version.Version))
}

// log returns the request-scoped logger, falling back to the server logger.
func (s *Server) log(r *http.Request) *zap.Logger {
	if l := logger.FromContext(r.Context()); l.Core().Enabled(zap.ErrorLevel) {
		return l
	}
	return s.logger
}
