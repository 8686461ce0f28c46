// Package money holds exact currency amounts as integer minor units.
package money

import (
	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/billmatch/internal/domain"
)

// Scale is the number of fractional digits kept for an amount.
const Scale = 2

// Max is the largest representable amount (Numeric(15,2) upper bound).
const Max Amount = 999_999_999_999_999

// Amount is a non-negative currency value in minor units (1/100 of the major unit).
type Amount int64

// FromMinor creates an Amount from minor units without validation.
func FromMinor(v int64) Amount { return Amount(v) }

// FromMajor creates an Amount from whole major units.
func FromMajor(v int64) Amount { return Amount(v * 100) }

// FromDecimal converts a decimal value into an Amount.
// Rejects negatives, more than two fractional digits and values above Max.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return 0, domain.NewInvalidArgument("amount", "must not be negative, got %s", d.String())
	}
	if !d.Equal(d.Truncate(Scale)) {
		return 0, domain.NewInvalidArgument("amount", "at most %d fractional digits allowed, got %s", Scale, d.String())
	}
	minor := d.Shift(Scale)
	if minor.GreaterThan(decimal.NewFromInt(int64(Max))) {
		return 0, domain.NewInvalidArgument("amount", "exceeds maximum %s", Max.String())
	}
	return Amount(minor.IntPart()), nil
}

// Parse converts decimal text such as "1250000" or "99.50" into an Amount.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, domain.NewInvalidArgument("amount", "not a decimal number: %q", s)
	}
	return FromDecimal(d)
}

// Minor returns the amount in minor units.
func (a Amount) Minor() int64 { return int64(a) }

// Decimal returns the amount in major units as an exact decimal.
func (a Amount) Decimal() decimal.Decimal { return decimal.New(int64(a), -Scale) }

// String formats the amount in major units with two fractional digits.
func (a Amount) String() string { return a.Decimal().StringFixed(Scale) }

// Valid reports whether the amount lies in [0, Max].
func (a Amount) Valid() bool { return a >= 0 && a <= Max }
