package billmatch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Finder.
type Option interface {
	apply(*finderConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*finderConfig)

func (f optionFunc) apply(c *finderConfig) { f(c) }

type finderConfig struct {
	maxItems        int
	maxResults      int
	maxSteps        int
	timeBudget      time.Duration
	skipZeroAmounts bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithMaxItems considers only the first n items (after zero-amount skipping).
// Zero means unlimited (default).
func WithMaxItems(n int) Option {
	return optionFunc(func(c *finderConfig) {
		c.maxItems = n
	})
}

// WithMaxResults keeps only the best n combinations. Zero means unlimited (default).
func WithMaxResults(n int) Option {
	return optionFunc(func(c *finderConfig) {
		c.maxResults = n
	})
}

// WithMaxSteps bounds the number of subsets visited. Zero means unlimited (default).
func WithMaxSteps(n int) Option {
	return optionFunc(func(c *finderConfig) {
		c.maxSteps = n
	})
}

// WithTimeBudget bounds wall-clock search time. Zero means unlimited (default).
func WithTimeBudget(d time.Duration) Option {
	return optionFunc(func(c *finderConfig) {
		c.timeBudget = d
	})
}

// WithSkipZeroAmounts drops zero-amount items, which otherwise multiply
// equivalent combinations. Off by default.
func WithSkipZeroAmounts(skip bool) Option {
	return optionFunc(func(c *finderConfig) {
		c.skipZeroAmounts = skip
	})
}

// WithLogger enables structured logging for searches.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *finderConfig) {
		c.logger = l
	})
}

// WithPrometheus registers search metrics (counts, durations, steps)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *finderConfig) {
		c.metricsReg = reg
	})
}
