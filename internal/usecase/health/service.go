package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates the warehouse store answers.
	Healthy Status = "ok"
	// Unhealthy indicates the warehouse store is unreachable; searches cannot run.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status  Status
	Backend string
	Checks  map[string]CheckResult
	Latency time.Duration
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	backend string
	timeout time.Duration
}

// New creates a Service. backend names the configured storage driver.
// A non-positive timeout defaults to two seconds.
func New(db DBPinger, backend string, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Service{db: db, backend: backend, timeout: timeout}
}

// Check pings the warehouse store.
func (s *Service) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.db.Ping(ctx)
	r := Report{
		Status:  Healthy,
		Backend: s.backend,
		Checks:  map[string]CheckResult{"database": CheckOK},
		Latency: time.Since(start),
	}
	if err != nil {
		r.Status = Unhealthy
		r.Checks["database"] = CheckError
	}
	return r
}
