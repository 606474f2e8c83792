// Package valueobject holds the amount rules shared by the ledger and the
// review workflows. Amounts are Chilean pesos.
package valueobject

import (
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AmountPlaces is the fixed-point precision of deposit and ledger amounts.
const AmountPlaces int32 = 2

// MaxAmount is the largest amount a DECIMAL(14,2) column holds.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// HasPrecision reports whether d carries no more than places decimal digits.
func HasPrecision(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// ValidateAmount checks that d is positive, has at most two decimals and
// fits the stored range.
func ValidateAmount(field string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return shared.NewValidationError(field, "Amount must be greater than zero")
	}
	if !HasPrecision(d, AmountPlaces) {
		return shared.NewValidationError(field, "Amount cannot have more than two decimals")
	}
	if d.GreaterThan(MaxAmount) {
		return shared.NewValidationError(field, "Amount exceeds "+FormatAmount(MaxAmount))
	}
	return nil
}

// FormatAmount renders an amount with the fixed two-decimal precision.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountPlaces)
}
