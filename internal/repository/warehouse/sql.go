package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kailas-cloud/billmatch/internal/db"
	"github.com/kailas-cloud/billmatch/internal/db/sqldb"
	"github.com/kailas-cloud/billmatch/internal/domain"
	"github.com/kailas-cloud/billmatch/internal/domain/bill"
	"github.com/kailas-cloud/billmatch/internal/domain/money"
)

// conn is the consumer interface for the SQL warehouse; *sqldb.DB satisfies it.
type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Placeholders appear once each in ascending order so the same text runs on Postgres and SQLite.
const (
	billColumns = `id, contract_code, customer_name, address, amount_minor, period,
		meter_number, notes, status, added_at, updated_at`

	insertBill = `INSERT INTO bills (` + billColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	updateBill = `UPDATE bills SET contract_code = $1, customer_name = $2, address = $3,
		amount_minor = $4, period = $5, meter_number = $6, notes = $7, status = $8,
		updated_at = $9 WHERE id = $10`

	selectBill = `SELECT ` + billColumns + ` FROM bills WHERE id = $1`

	selectAll = `SELECT ` + billColumns + ` FROM bills ORDER BY added_at DESC, id`

	selectByStatus = `SELECT ` + billColumns + ` FROM bills WHERE status = $1 ORDER BY added_at DESC, id`
)

// SQLRepo stores bills in a single bills table.
type SQLRepo struct {
	conn conn
}

// NewSQLRepo creates a SQL-backed warehouse repository.
func NewSQLRepo(c conn) *SQLRepo {
	return &SQLRepo{conn: c}
}

// Create inserts a bill. A duplicate contract code maps to ErrAlreadyExists.
func (r *SQLRepo) Create(ctx context.Context, b bill.Bill) error {
	_, err := r.conn.ExecContext(ctx, insertBill,
		b.ID(), b.ContractCode(), b.CustomerName(), b.Address(), b.Amount().Minor(),
		b.Period(), b.MeterNumber(), b.Notes(), string(b.Status()),
		b.AddedAt().UnixMicro(), b.UpdatedAt().UnixMicro(),
	)
	if err != nil {
		if sqldb.IsUniqueViolation(err) {
			return fmt.Errorf("%w: contract code %s", domain.ErrAlreadyExists, b.ContractCode())
		}
		return &db.Error{Op: db.OpExec, Err: fmt.Errorf("insert bill %s: %w", b.ID(), err)}
	}
	return nil
}

// Get returns a bill by id.
func (r *SQLRepo) Get(ctx context.Context, id string) (bill.Bill, error) {
	b, err := scanBill(r.conn.QueryRowContext(ctx, selectBill, id))
	if errors.Is(err, sql.ErrNoRows) {
		return bill.Bill{}, fmt.Errorf("%w: bill %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return bill.Bill{}, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("select bill %s: %w", id, err)}
	}
	return b, nil
}

// Update overwrites an existing bill.
func (r *SQLRepo) Update(ctx context.Context, b bill.Bill) error {
	res, err := r.conn.ExecContext(ctx, updateBill,
		b.ContractCode(), b.CustomerName(), b.Address(), b.Amount().Minor(),
		b.Period(), b.MeterNumber(), b.Notes(), string(b.Status()),
		b.UpdatedAt().UnixMicro(), b.ID(),
	)
	if err != nil {
		if sqldb.IsUniqueViolation(err) {
			return fmt.Errorf("%w: contract code %s", domain.ErrAlreadyExists, b.ContractCode())
		}
		return &db.Error{Op: db.OpExec, Err: fmt.Errorf("update bill %s: %w", b.ID(), err)}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &db.Error{Op: db.OpExec, Err: err}
	}
	if n == 0 {
		return fmt.Errorf("%w: bill %s", domain.ErrNotFound, b.ID())
	}
	return nil
}

// ListByStatus returns bills in the given status, or every bill when status is nil, newest first.
func (r *SQLRepo) ListByStatus(ctx context.Context, status *bill.Status) ([]bill.Bill, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status == nil {
		rows, err = r.conn.QueryContext(ctx, selectAll)
	} else {
		rows, err = r.conn.QueryContext(ctx, selectByStatus, string(*status))
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("list bills: %w", err)}
	}
	defer rows.Close()

	var out []bill.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("scan bill: %w", err)}
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBill(s scanner) (bill.Bill, error) {
	var (
		id, status     string
		d              bill.Details
		amount         int64
		added, updated int64
	)
	err := s.Scan(&id, &d.ContractCode, &d.CustomerName, &d.Address, &amount,
		&d.Period, &d.MeterNumber, &d.Notes, &status, &added, &updated)
	if err != nil {
		return bill.Bill{}, err //nolint:wrapcheck // callers wrap with context
	}
	d.Amount = money.FromMinor(amount)
	return bill.Reconstruct(id, d, bill.Status(status), fromMicro(added), fromMicro(updated)), nil
}
