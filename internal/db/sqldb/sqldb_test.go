package sqldb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/kailas-cloud/billmatch/internal/db"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	d, err := Open(context.Background(), Config{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "nested", "billmatch.db"),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestOpen_SQLiteMigrates(t *testing.T) {
	d := openTemp(t)

	if d.Driver() != DriverSQLite {
		t.Errorf("Driver() = %q", d.Driver())
	}
	var n int
	err := d.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'bills'`).Scan(&n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("bills table missing")
	}

	// Migrations are idempotent.
	if err := d.migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: "mysql", DSN: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := Open(context.Background(), Config{Driver: DriverPostgres}); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestPingAndWaitForReady(t *testing.T) {
	d := openTemp(t)
	if err := d.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := d.WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("WaitForReady: %v", err)
	}

	_ = d.Close()
	var dbErr *db.Error
	if err := d.Ping(context.Background()); !errors.As(err, &dbErr) {
		t.Errorf("expected db.Error after close, got %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	d := openTemp(t)
	ctx := context.Background()
	insert := `INSERT INTO bills (id, contract_code, customer_name, amount_minor, status, added_at, updated_at)
		VALUES ($1, $2, 'x', 1, 'IN_WAREHOUSE', 0, 0)`

	if _, err := d.ExecContext(ctx, insert, "1", "PE1"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err := d.ExecContext(ctx, insert, "2", "PE1")
	if !IsUniqueViolation(err) {
		t.Errorf("expected unique violation, got %v", err)
	}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"pq unique", fmt.Errorf("wrapped: %w", &pq.Error{Code: "23505"}), true},
		{"pq other", &pq.Error{Code: "23503"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range tests {
		if got := IsUniqueViolation(tc.err); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}
