package billmatch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func scenarioItems() []Item {
	return []Item{
		{ID: "1", Amount: dec("300000")},
		{ID: "2", Amount: dec("500000")},
		{ID: "3", Amount: dec("700000")},
	}
}

func TestFindCombinations_ScenarioA(t *testing.T) {
	combos, err := FindCombinations(scenarioItems(), dec("1000000"), 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(combos) != 1 {
		t.Fatalf("expected 1 combination, got %d", len(combos))
	}
	c := combos[0]
	if strings.Join(c.IDs(), ",") != "1,3" {
		t.Errorf("ids = %v, want [1 3]", c.IDs())
	}
	if !c.TotalAmount.Equal(dec("1000000")) || !c.PercentageDifference.IsZero() || !c.AbsoluteDifference.IsZero() {
		t.Errorf("unexpected combination: %+v", c)
	}
}

func TestFindCombinations_ScenarioB(t *testing.T) {
	combos, err := FindCombinations([]Item{{ID: "1", Amount: dec("1000000")}}, dec("1000000"), 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(combos) != 1 || combos[0].IDs()[0] != "1" {
		t.Fatalf("unexpected result: %+v", combos)
	}
}

func TestFindCombinations_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		items     []Item
		target    string
		tolerance float64
	}{
		{"negative target", scenarioItems(), "-5", 0.1},
		{"zero target", scenarioItems(), "0", 0.1},
		{"zero tolerance", scenarioItems(), "100", 0},
		{"negative tolerance", scenarioItems(), "100", -0.1},
		{"nan tolerance", scenarioItems(), "100", math.NaN()},
		{"inf tolerance", scenarioItems(), "100", math.Inf(1)},
		{"negative amount", []Item{{ID: "x", Amount: dec("-1")}}, "100", 0.1},
		{"sub-cent amount", []Item{{ID: "x", Amount: dec("0.001")}}, "100", 0.1},
		{"empty id", []Item{{Amount: dec("1")}}, "100", 0.1},
		{"duplicate id", []Item{{ID: "x", Amount: dec("1")}, {ID: "x", Amount: dec("2")}}, "100", 0.1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			combos, err := FindCombinations(tc.items, dec(tc.target), tc.tolerance)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			if combos != nil {
				t.Errorf("expected no result, got %v", combos)
			}
		})
	}
}

func TestFindCombinations_EmptyInput(t *testing.T) {
	combos, err := FindCombinations(nil, dec("100"), 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(combos) != 0 {
		t.Errorf("expected no combinations, got %d", len(combos))
	}
}

func TestFindCombinations_DecimalAmounts(t *testing.T) {
	items := []Item{
		{ID: "a", Amount: dec("0.10")},
		{ID: "b", Amount: dec("0.20")},
		{ID: "c", Amount: dec("0.05")},
	}
	combos, err := FindCombinations(items, dec("0.30"), 0.01)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(combos) != 1 || !combos[0].TotalAmount.Equal(dec("0.3")) {
		t.Fatalf("unexpected result: %+v", combos)
	}
}

func TestFindCombinations_RankedByDifference(t *testing.T) {
	items := []Item{
		{ID: "a", Amount: dec("90")},
		{ID: "b", Amount: dec("101")},
		{ID: "c", Amount: dec("5")},
	}
	combos, err := FindCombinations(items, dec("100"), 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(combos); i++ {
		if combos[i].PercentageDifference.LessThan(combos[i-1].PercentageDifference) {
			t.Fatalf("not ranked at %d: %s < %s", i,
				combos[i].PercentageDifference, combos[i-1].PercentageDifference)
		}
	}
	// b=101 (1%), a+c=95 (5%), b+c=106 (6%), a=90 (10%)
	want := []string{"b", "a,c", "b,c", "a"}
	if len(combos) != len(want) {
		t.Fatalf("expected %d combinations, got %d", len(want), len(combos))
	}
	for i, w := range want {
		if got := strings.Join(combos[i].IDs(), ","); got != w {
			t.Errorf("combination %d = %s, want %s", i, got, w)
		}
	}
}

func TestNew_RejectsNegativeCaps(t *testing.T) {
	for _, opt := range []Option{
		WithMaxItems(-1),
		WithMaxResults(-1),
		WithMaxSteps(-1),
		WithTimeBudget(-time.Second),
	} {
		if _, err := New(opt); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	}
}

func TestFinder_MaxResultsTruncates(t *testing.T) {
	f, err := New(WithMaxResults(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	items := []Item{
		{ID: "a", Amount: dec("100")},
		{ID: "b", Amount: dec("99")},
		{ID: "c", Amount: dec("98")},
	}
	res, err := f.Find(context.Background(), items, dec("100"), 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Truncated || res.Reason != TruncationMaxResults {
		t.Errorf("expected max_results truncation, got %+v", res)
	}
	if len(res.Combinations) != 1 || res.Combinations[0].IDs()[0] != "a" {
		t.Errorf("expected best combination kept, got %+v", res.Combinations)
	}
	if !errors.Is(res.Err(), ErrSearchBudgetExceeded) {
		t.Errorf("Err() = %v, want ErrSearchBudgetExceeded", res.Err())
	}
}

func TestFinder_SkipZeroAmounts(t *testing.T) {
	items := []Item{
		{ID: "a", Amount: dec("100")},
		{ID: "z", Amount: dec("0")},
	}
	ctx := context.Background()

	keep, _ := New()
	res, err := keep.Find(ctx, items, dec("100"), 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Combinations) != 2 {
		t.Errorf("expected zero item to form a second combination, got %d", len(res.Combinations))
	}

	skip, _ := New(WithSkipZeroAmounts(true))
	res, err = skip.Find(ctx, items, dec("100"), 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Combinations) != 1 || res.Stats.Skipped != 1 {
		t.Errorf("expected zero item skipped, got %+v", res)
	}
}

func TestFinder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := make([]Item, 30)
	for i := range items {
		items[i] = Item{ID: string(rune('A' + i)), Amount: decimal.NewFromInt(int64(i + 1))}
	}
	f, _ := New()
	res, err := f.Find(ctx, items, dec("200"), 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Truncated || res.Reason != TruncationCancelled {
		t.Errorf("expected cancelled truncation, got reason %q", res.Reason)
	}
}

func TestFinder_Observability(t *testing.T) {
	reg := prometheus.NewRegistry()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	f, err := New(WithPrometheus(reg), WithLogger(logger))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if _, err := f.Find(ctx, scenarioItems(), dec("1000000"), 0.1); err != nil {
		t.Fatalf("Find: %v", err)
	}
	if _, err := f.Find(ctx, scenarioItems(), dec("-1"), 0.1); err == nil {
		t.Fatal("expected error")
	}

	if got := testutil.ToFloat64(f.obs.metrics.searches.WithLabelValues("complete")); got != 1 {
		t.Errorf("complete searches = %f, want 1", got)
	}
	if got := testutil.ToFloat64(f.obs.metrics.searches.WithLabelValues("invalid")); got != 1 {
		t.Errorf("invalid searches = %f, want 1", got)
	}
	if n := testutil.CollectAndCount(f.obs.metrics.steps); n != 1 {
		t.Errorf("steps histogram series = %d, want 1", n)
	}

	out := buf.String()
	if !strings.Contains(out, "search completed") || !strings.Contains(out, "search rejected") {
		t.Errorf("unexpected log output: %s", out)
	}
}

func TestNew_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	f1, err := New(WithPrometheus(reg))
	if err != nil {
		t.Fatalf("first New: %v", err)
	}
	f2, err := New(WithPrometheus(reg))
	if err != nil {
		t.Fatalf("second New: %v", err)
	}
	if f1.obs.metrics.searches != f2.obs.metrics.searches {
		t.Error("expected second finder to reuse the registered counter")
	}
}

func TestRegisterOrReuse_IncompatibleType(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "billmatch_sdk_searches_total", Help: "x"})
	reg.MustRegister(counter)

	if _, err := New(WithPrometheus(reg)); err == nil {
		t.Error("expected error for incompatible collector")
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe(context.Background(), time.Now(), nil, errors.New("err"))
	obs.observe(context.Background(), time.Now(), &Result{}, nil)
}
