package combination

import (
	"testing"

	domcomb "github.com/kailas-cloud/billmatch/internal/domain/combination"
	"github.com/kailas-cloud/billmatch/internal/domain/money"
)

func cand(t *testing.T, target int64, amounts []int64, indices ...int) *candidate {
	t.Helper()
	picked := make([]domcomb.Item, len(amounts))
	for i, a := range amounts {
		it, err := domcomb.NewItem(string(rune('a'+indices[i])), money.Amount(a))
		if err != nil {
			t.Fatalf("NewItem: %v", err)
		}
		picked[i] = it
	}
	return &candidate{comb: domcomb.New(picked, money.Amount(target)), indices: indices}
}

func TestBetter(t *testing.T) {
	tests := []struct {
		name string
		a, b *candidate
	}{
		{"smaller difference", cand(t, 100, []int64{99}, 5), cand(t, 100, []int64{90}, 0)},
		{"fewer items", cand(t, 100, []int64{100}, 3), cand(t, 100, []int64{50, 50}, 0, 1)},
		{"lower total", cand(t, 100, []int64{95}, 1), cand(t, 100, []int64{105}, 0)},
		{"earlier indices", cand(t, 100, []int64{40, 60}, 0, 3), cand(t, 100, []int64{40, 60}, 1, 2)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !better(tc.a, tc.b) {
				t.Error("expected a ranked before b")
			}
			if better(tc.b, tc.a) {
				t.Error("expected b not ranked before a")
			}
		})
	}

	same := cand(t, 100, []int64{100}, 0)
	if better(same, same) {
		t.Error("better must be irreflexive")
	}
}

func TestCollector_Unlimited(t *testing.T) {
	c := newCollector(0)
	c.add(cand(t, 100, []int64{80}, 0))
	c.add(cand(t, 100, []int64{100}, 1))
	c.add(cand(t, 100, []int64{90}, 2))

	got := c.ranked()
	if len(got) != 3 || c.dropped {
		t.Fatalf("len=%d dropped=%v", len(got), c.dropped)
	}
	for i, want := range []money.Amount{100, 90, 80} {
		if got[i].TotalAmount() != want {
			t.Errorf("rank %d: total %d, want %d", i, got[i].TotalAmount(), want)
		}
	}
}

func TestCollector_KeepsBestWithinLimit(t *testing.T) {
	c := newCollector(2)
	for i, a := range []int64{60, 95, 70, 100, 80} {
		c.add(cand(t, 100, []int64{a}, i))
	}

	got := c.ranked()
	if !c.dropped {
		t.Error("expected dropped")
	}
	if len(got) != 2 || got[0].TotalAmount() != 100 || got[1].TotalAmount() != 95 {
		t.Errorf("got %d results: %v", len(got), got)
	}
}
