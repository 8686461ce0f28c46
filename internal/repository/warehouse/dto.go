package warehouse

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/billmatch/internal/domain/bill"
	"github.com/kailas-cloud/billmatch/internal/domain/money"
)

// Hash field names.
const (
	fieldID           = "id"
	fieldContractCode = "contract_code"
	fieldCustomerName = "customer_name"
	fieldAddress      = "address"
	fieldAmountMinor  = "amount_minor"
	fieldPeriod       = "period"
	fieldMeterNumber  = "meter_number"
	fieldNotes        = "notes"
	fieldStatus       = "status"
	fieldAddedAt      = "added_at"
	fieldUpdatedAt    = "updated_at"
)

// buildHashFields flattens a bill for HSET. Timestamps are unix microseconds.
func buildHashFields(b *bill.Bill) map[string]string {
	return map[string]string{
		fieldID:           b.ID(),
		fieldContractCode: b.ContractCode(),
		fieldCustomerName: b.CustomerName(),
		fieldAddress:      b.Address(),
		fieldAmountMinor:  strconv.FormatInt(b.Amount().Minor(), 10),
		fieldPeriod:       b.Period(),
		fieldMeterNumber:  b.MeterNumber(),
		fieldNotes:        b.Notes(),
		fieldStatus:       string(b.Status()),
		fieldAddedAt:      strconv.FormatInt(b.AddedAt().UnixMicro(), 10),
		fieldUpdatedAt:    strconv.FormatInt(b.UpdatedAt().UnixMicro(), 10),
	}
}

// parseHashFields rebuilds a bill from its hash.
func parseHashFields(m map[string]string) (bill.Bill, error) {
	amount, err := strconv.ParseInt(m[fieldAmountMinor], 10, 64)
	if err != nil {
		return bill.Bill{}, fmt.Errorf("parse %s: %w", fieldAmountMinor, err)
	}
	added, err := strconv.ParseInt(m[fieldAddedAt], 10, 64)
	if err != nil {
		return bill.Bill{}, fmt.Errorf("parse %s: %w", fieldAddedAt, err)
	}
	updated, err := strconv.ParseInt(m[fieldUpdatedAt], 10, 64)
	if err != nil {
		return bill.Bill{}, fmt.Errorf("parse %s: %w", fieldUpdatedAt, err)
	}

	return bill.Reconstruct(m[fieldID], bill.Details{
		ContractCode: m[fieldContractCode],
		CustomerName: m[fieldCustomerName],
		Address:      m[fieldAddress],
		Amount:       money.FromMinor(amount),
		Period:       m[fieldPeriod],
		MeterNumber:  m[fieldMeterNumber],
		Notes:        m[fieldNotes],
	}, bill.Status(m[fieldStatus]), fromMicro(added), fromMicro(updated)), nil
}

func fromMicro(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}
