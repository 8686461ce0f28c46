package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Combination search and warehouse Prometheus metrics.
var (
	CombinationSearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "billmatch",
			Name:      "combination_searches_total",
			Help:      "Total combination searches by outcome",
		},
		[]string{"outcome"}, // complete / max_steps / time_budget / ... / invalid / error
	)

	CombinationSearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "billmatch",
			Name:      "combination_search_duration_seconds",
			Help:      "Time spent enumerating combinations",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
	)

	CombinationSearchSteps = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "billmatch",
			Name:      "combination_search_steps",
			Help:      "Subsets visited per search",
			Buckets:   prometheus.ExponentialBuckets(1, 8, 10),
		},
	)

	CombinationSearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "billmatch",
			Name:      "combination_search_results",
			Help:      "Combinations returned per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 500},
		},
	)

	CombinationCandidates = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "billmatch",
			Name:      "combination_candidates",
			Help:      "Bills considered by the most recent search",
		},
	)

	WarehouseOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "billmatch",
			Name:      "warehouse_operations_total",
			Help:      "Warehouse operations by kind and result",
		},
		[]string{"op", "result"},
	)
)

var registerCombination sync.Once

// RegisterCombinationMetrics registers search and warehouse metrics. Safe to call more than once.
func RegisterCombinationMetrics() {
	registerCombination.Do(func() {
		prometheus.MustRegister(
			CombinationSearchesTotal,
			CombinationSearchDuration,
			CombinationSearchSteps,
			CombinationSearchResults,
			CombinationCandidates,
			WarehouseOperationsTotal,
		)
	})
}

// ObserveSearch records one finished search.
func ObserveSearch(outcome string, elapsed time.Duration, steps, results, candidates int) {
	CombinationSearchesTotal.WithLabelValues(outcome).Inc()
	CombinationSearchDuration.Observe(elapsed.Seconds())
	CombinationSearchSteps.Observe(float64(steps))
	CombinationSearchResults.Observe(float64(results))
	CombinationCandidates.Set(float64(candidates))
}

// ObserveWarehouse records one warehouse operation.
func ObserveWarehouse(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	WarehouseOperationsTotal.WithLabelValues(op, result).Inc()
}
