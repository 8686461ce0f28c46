package warehouse

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/billmatch/internal/db"
	"github.com/kailas-cloud/billmatch/internal/domain/bill"
	"github.com/kailas-cloud/billmatch/internal/domain/money"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	delFn          func(ctx context.Context, key string) error
	existsFn       func(ctx context.Context, key string) (bool, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	getFn          func(ctx context.Context, key string) ([]byte, error)
	setNXFn        func(ctx context.Context, key string, value []byte) (bool, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	if m.setNXFn != nil {
		return m.setNXFn(ctx, key, value)
	}
	return true, nil
}

var testNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func newBill(t *testing.T, id, code string, major int64) bill.Bill {
	t.Helper()
	b, err := bill.New(id, bill.Details{
		ContractCode: code,
		CustomerName: "Customer " + id,
		Address:      "Av. Central " + id,
		Amount:       money.FromMajor(major),
		Period:       "2026-04",
		MeterNumber:  "M-" + id,
		Notes:        "note",
	}, testNow)
	if err != nil {
		t.Fatalf("bill.New: %v", err)
	}
	return b
}

func assertSameBill(t *testing.T, got, want *bill.Bill) {
	t.Helper()
	if got.ID() != want.ID() || got.Details() != want.Details() || got.Status() != want.Status() {
		t.Errorf("bill mismatch:\n got  %s %+v %s\n want %s %+v %s",
			got.ID(), got.Details(), got.Status(), want.ID(), want.Details(), want.Status())
	}
	if !got.AddedAt().Equal(want.AddedAt()) || !got.UpdatedAt().Equal(want.UpdatedAt()) {
		t.Errorf("timestamps: got %v/%v, want %v/%v",
			got.AddedAt(), got.UpdatedAt(), want.AddedAt(), want.UpdatedAt())
	}
}
