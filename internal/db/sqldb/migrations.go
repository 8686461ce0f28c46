package sqldb

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/billmatch/internal/db"
)

// schema is valid on both Postgres and SQLite. Amounts are minor units,
// timestamps are unix microseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS bills (
		id            TEXT PRIMARY KEY,
		contract_code TEXT NOT NULL,
		customer_name TEXT NOT NULL,
		address       TEXT NOT NULL DEFAULT '',
		amount_minor  BIGINT NOT NULL,
		period        TEXT NOT NULL DEFAULT '',
		meter_number  TEXT NOT NULL DEFAULT '',
		notes         TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL,
		added_at      BIGINT NOT NULL,
		updated_at    BIGINT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS bills_contract_code_idx ON bills (contract_code)`,
	`CREATE INDEX IF NOT EXISTS bills_status_added_idx ON bills (status, added_at)`,
}

func (d *DB) migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			return &db.Error{Op: db.OpMigrate, Err: fmt.Errorf("statement %d: %w", i, err)}
		}
	}
	return nil
}
