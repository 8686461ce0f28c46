package bill

import (
	"strings"
	"time"

	"github.com/kailas-cloud/billmatch/internal/domain"
	"github.com/kailas-cloud/billmatch/internal/domain/money"
)

// Field length limits.
const (
	MaxContractCodeLength = 50
	MaxCustomerNameLength = 100
	MaxPeriodLength       = 10
	MaxMeterNumberLength  = 50
)

// Details holds the descriptive, caller-supplied part of a bill.
type Details struct {
	ContractCode string
	CustomerName string
	Address      string
	Amount       money.Amount
	Period       string
	MeterNumber  string
	Notes        string
}

// Bill is a utility-contract debt unit held in the warehouse.
type Bill struct {
	id        string
	details   Details
	status    Status
	addedAt   time.Time
	updatedAt time.Time
}

// New validates details and creates a bill in the warehouse.
func New(id string, d Details, now time.Time) (Bill, error) {
	if id == "" {
		return Bill{}, domain.NewInvalidArgument("id", "is required")
	}
	if err := normalize(&d); err != nil {
		return Bill{}, err
	}

	now = now.UTC()
	return Bill{
		id:        id,
		details:   d,
		status:    StatusInWarehouse,
		addedAt:   now,
		updatedAt: now,
	}, nil
}

func normalize(d *Details) error {
	d.ContractCode = strings.TrimSpace(d.ContractCode)
	d.CustomerName = strings.TrimSpace(d.CustomerName)
	if d.ContractCode == "" {
		return domain.NewInvalidArgument("contract_code", "is required")
	}
	if len(d.ContractCode) > MaxContractCodeLength {
		return domain.NewInvalidArgument("contract_code", "too long (max %d)", MaxContractCodeLength)
	}
	if d.CustomerName == "" {
		return domain.NewInvalidArgument("customer_name", "is required")
	}
	if len(d.CustomerName) > MaxCustomerNameLength {
		return domain.NewInvalidArgument("customer_name", "too long (max %d)", MaxCustomerNameLength)
	}
	if len(d.Period) > MaxPeriodLength {
		return domain.NewInvalidArgument("period", "too long (max %d)", MaxPeriodLength)
	}
	if len(d.MeterNumber) > MaxMeterNumberLength {
		return domain.NewInvalidArgument("meter_number", "too long (max %d)", MaxMeterNumberLength)
	}
	if !d.Amount.Valid() {
		return domain.NewInvalidArgument("amount", "out of range: %d", d.Amount)
	}
	return nil
}

// Reconstruct creates a Bill without validation (storage hydration).
func Reconstruct(id string, d Details, status Status, addedAt, updatedAt time.Time) Bill {
	return Bill{id: id, details: d, status: status, addedAt: addedAt, updatedAt: updatedAt}
}

// ID returns the bill identifier.
func (b *Bill) ID() string { return b.id }

// ContractCode returns the unique utility contract code.
func (b *Bill) ContractCode() string { return b.details.ContractCode }

// CustomerName returns the name on the utility contract.
func (b *Bill) CustomerName() string { return b.details.CustomerName }

// Address returns the service address.
func (b *Bill) Address() string { return b.details.Address }

// Amount returns the outstanding bill amount.
func (b *Bill) Amount() money.Amount { return b.details.Amount }

// Period returns the billing period, e.g. "08/2025".
func (b *Bill) Period() string { return b.details.Period }

// MeterNumber returns the meter identifier.
func (b *Bill) MeterNumber() string { return b.details.MeterNumber }

// Notes returns free-form warehouse notes.
func (b *Bill) Notes() string { return b.details.Notes }

// Details returns a copy of the descriptive fields.
func (b *Bill) Details() Details { return b.details }

// Status returns the lifecycle status.
func (b *Bill) Status() Status { return b.status }

// AddedAt returns when the bill entered the warehouse.
func (b *Bill) AddedAt() time.Time { return b.addedAt }

// UpdatedAt returns the last modification time.
func (b *Bill) UpdatedAt() time.Time { return b.updatedAt }

// WithStatus returns a copy moved to next, enforcing the lifecycle.
func (b *Bill) WithStatus(next Status, now time.Time) (Bill, error) {
	if !next.IsValid() {
		return Bill{}, domain.NewInvalidArgument("status", "unknown status %q", next)
	}
	if !b.status.CanTransitionTo(next) {
		return Bill{}, &TransitionError{From: b.status, To: next}
	}
	out := *b
	out.status = next
	out.updatedAt = now.UTC()
	return out, nil
}

// Patch lists the editable details of a bill. Nil fields are left unchanged.
// The contract code is fixed once a bill is added.
type Patch struct {
	CustomerName *string
	Address      *string
	Amount       *money.Amount
	Period       *string
	MeterNumber  *string
	Notes        *string
}

// IsEmpty reports whether p changes nothing.
func (p *Patch) IsEmpty() bool {
	return p.CustomerName == nil && p.Address == nil && p.Amount == nil &&
		p.Period == nil && p.MeterNumber == nil && p.Notes == nil
}

// WithDetails returns a copy with p applied and revalidated.
func (b *Bill) WithDetails(p *Patch, now time.Time) (Bill, error) {
	d := b.details
	if p.CustomerName != nil {
		d.CustomerName = *p.CustomerName
	}
	if p.Address != nil {
		d.Address = *p.Address
	}
	if p.Amount != nil {
		d.Amount = *p.Amount
	}
	if p.Period != nil {
		d.Period = *p.Period
	}
	if p.MeterNumber != nil {
		d.MeterNumber = *p.MeterNumber
	}
	if p.Notes != nil {
		d.Notes = *p.Notes
	}
	if err := normalize(&d); err != nil {
		return Bill{}, err
	}
	out := *b
	out.details = d
	out.updatedAt = now.UTC()
	return out, nil
}

// TransitionError wraps ErrInvalidStatusTransition with both ends of the move.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return domain.ErrInvalidStatusTransition.Error() + ": " + string(e.From) + " -> " + string(e.To)
}

func (e *TransitionError) Unwrap() error { return domain.ErrInvalidStatusTransition }
