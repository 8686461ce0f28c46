package combination

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/billmatch/internal/domain"
	"github.com/kailas-cloud/billmatch/internal/domain/money"
)

func mustItem(t *testing.T, id string, major int64) Item {
	t.Helper()
	it, err := NewItem(id, money.FromMajor(major))
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	return it
}

func TestNewItem_Invalid(t *testing.T) {
	if _, err := NewItem("", 100); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("empty id: got %v", err)
	}
	if _, err := NewItem("a", -1); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("negative amount: got %v", err)
	}
}

func TestNewRequest_Bounds(t *testing.T) {
	items := []Item{mustItem(t, "1", 300000)}
	r, err := NewRequest(items, money.FromMajor(1000000), decimal.RequireFromString("0.1"), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.MaxDifference() != money.FromMajor(100000) {
		t.Errorf("MaxDifference() = %d", r.MaxDifference())
	}
	if r.UpperBound() != money.FromMajor(1100000) {
		t.Errorf("UpperBound() = %d", r.UpperBound())
	}
	if r.LowerBound() != money.FromMajor(900000) {
		t.Errorf("LowerBound() = %d", r.LowerBound())
	}
}

func TestNewRequest_BandIsFloored(t *testing.T) {
	// 333 minor units × 0.1 = 33.3 → 33
	r, err := NewRequest(nil, 333, decimal.RequireFromString("0.1"), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.MaxDifference() != 33 {
		t.Errorf("MaxDifference() = %d, want 33", r.MaxDifference())
	}
}

func TestNewRequest_LargeToleranceClamped(t *testing.T) {
	r, err := NewRequest(nil, money.Max, decimal.NewFromInt(1000), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.MaxDifference() != money.Max {
		t.Errorf("MaxDifference() = %d, want clamp to Max", r.MaxDifference())
	}
	if r.LowerBound() != 0 {
		t.Errorf("LowerBound() = %d, want 0", r.LowerBound())
	}
}

func TestNewRequest_CopiesItems(t *testing.T) {
	items := []Item{mustItem(t, "1", 1), mustItem(t, "2", 2)}
	r, _ := NewRequest(items, 100, decimal.RequireFromString("0.5"), Options{})
	items[0] = mustItem(t, "9", 9)
	if r.Items()[0].ID() != "1" {
		t.Error("request must not alias caller slice")
	}
}

func TestNewRequest_Invalid(t *testing.T) {
	tol := decimal.RequireFromString("0.1")
	dup := []Item{mustItem(t, "1", 1), mustItem(t, "1", 2)}

	tests := []struct {
		name   string
		items  []Item
		target money.Amount
		tol    decimal.Decimal
		opts   Options
	}{
		{"negative target", nil, -500, tol, Options{}},
		{"zero target", nil, 0, tol, Options{}},
		{"target above max", nil, money.Max + 1, tol, Options{}},
		{"zero tolerance", nil, 100, decimal.Zero, Options{}},
		{"negative tolerance", nil, 100, decimal.NewFromInt(-1), Options{}},
		{"duplicate ids", dup, 100, tol, Options{}},
		{"zero-value item", []Item{{}}, 100, tol, Options{}},
		{"negative max steps", nil, 100, tol, Options{MaxSteps: -1}},
		{"negative time budget", nil, 100, tol, Options{TimeBudget: -time.Second}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRequest(tc.items, tc.target, tc.tol, tc.opts)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestToleranceFromFloat(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := ToleranceFromFloat(f); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("ToleranceFromFloat(%v): got %v", f, err)
		}
	}
	d, err := ToleranceFromFloat(0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("got %s", d)
	}
}

func TestOptions_Tighten(t *testing.T) {
	server := Options{MaxItems: 60, MaxResults: 100, MaxSteps: 1000, TimeBudget: 2 * time.Second}
	req := Options{MaxResults: 10, MaxSteps: 5000, SkipZeroAmounts: true}

	got := server.Tighten(req)
	want := Options{MaxItems: 60, MaxResults: 10, MaxSteps: 1000, TimeBudget: 2 * time.Second, SkipZeroAmounts: true}
	if got != want {
		t.Errorf("Tighten() = %+v, want %+v", got, want)
	}
}

func TestCombination_Differences(t *testing.T) {
	target := money.FromMajor(1000000)
	under := New([]Item{mustItem(t, "1", 300000), mustItem(t, "2", 650000)}, target)
	over := New([]Item{mustItem(t, "3", 1025000)}, target)

	if under.TotalAmount() != money.FromMajor(950000) {
		t.Errorf("TotalAmount() = %d", under.TotalAmount())
	}
	if under.AbsoluteDifference() != money.FromMajor(50000) || under.SignedDifference() >= 0 {
		t.Errorf("under: abs=%d signed=%d", under.AbsoluteDifference(), under.SignedDifference())
	}
	if !under.PercentageDifference().Equal(decimal.NewFromInt(5)) {
		t.Errorf("under pct = %s, want 5", under.PercentageDifference())
	}
	if !over.PercentageDifference().Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("over pct = %s, want 2.5", over.PercentageDifference())
	}
	if ids := under.IDs(); len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
		t.Errorf("IDs() = %v", ids)
	}
}

func TestResult_Err(t *testing.T) {
	complete := NewResult(nil, TruncationNone, Stats{})
	if complete.Truncated() || complete.Err() != nil {
		t.Error("complete result must not be truncated")
	}

	partial := NewResult(nil, TruncationMaxSteps, Stats{Steps: 10})
	if !partial.Truncated() {
		t.Fatal("expected truncated")
	}
	if !errors.Is(partial.Err(), domain.ErrSearchBudgetExceeded) {
		t.Errorf("Err() = %v", partial.Err())
	}
}
