package billmatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	searches *prometheus.CounterVec
	duration *prometheus.HistogramVec
	steps    prometheus.Histogram
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billmatch",
			Subsystem: "sdk",
			Name:      "searches_total",
			Help:      "Total SDK searches by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "billmatch",
			Subsystem: "sdk",
			Name:      "search_duration_seconds",
			Help:      "SDK search duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		steps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "billmatch",
			Subsystem: "sdk",
			Name:      "search_steps",
			Help:      "Subsets visited per SDK search.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 12),
		}),
	}
	if err := registerOrReuse(reg, &m.searches); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.steps); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("billmatch: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("billmatch: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for SDK searches.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// observe records one search. res is nil when the search was rejected.
func (o *observer) observe(ctx context.Context, start time.Time, res *Result, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	outcome := "complete"
	switch {
	case err != nil:
		outcome = "invalid"
	case res.Truncated:
		outcome = string(res.Reason)
	}

	if o.metrics != nil {
		o.metrics.searches.WithLabelValues(outcome).Inc()
		o.metrics.duration.WithLabelValues(outcome).Observe(dur.Seconds())
		if res != nil {
			o.metrics.steps.Observe(float64(res.Stats.Steps))
		}
	}

	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.WarnContext(ctx, "search rejected",
			"duration", dur,
			"error", err,
		)
		return
	}
	level := slog.LevelDebug
	if res.Truncated {
		level = slog.LevelInfo
	}
	o.logger.Log(ctx, level, "search completed",
		"outcome", outcome,
		"candidates", res.Stats.Candidates,
		"steps", res.Stats.Steps,
		"qualified", res.Stats.Qualified,
		"returned", len(res.Combinations),
		"duration", dur,
	)
}
