// Package core provides amount parsing and formatting utilities.
//
// Amounts are stored as float64 rupee values. Parsing and summation go through
// shopspring/decimal so that repeated additions and the two-decimal rendering
// used in messages do not accumulate binary rounding noise.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount is the inclusive upper bound for a single record.
const MaxAmount = 1_000_000

// DefaultCurrencySymbol prefixes formatted amounts.
const DefaultCurrencySymbol = "₹"

var maxAmount = decimal.NewFromInt(MaxAmount)

// ParseAmount converts a decimal string into a validated amount.
//
// The value must be finite and within (0, 1,000,000].
//
// Examples:
//
//	ParseAmount("4.5")      -> 4.5, nil
//	ParseAmount("1000000")  -> 1000000, nil
//	ParseAmount("0")        -> 0, ValidationError
//	ParseAmount("abc")      -> 0, ValidationError
func ParseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, NewValidationError("amount", MsgInvalidAmount)
	}
	if !d.IsPositive() || d.GreaterThan(maxAmount) {
		return 0, NewValidationError("amount", MsgInvalidAmount)
	}
	return d.InexactFloat64(), nil
}

// ValidateAmount applies the ParseAmount bounds to an already numeric value.
func ValidateAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 || v > MaxAmount {
		return NewValidationError("amount", MsgInvalidAmount)
	}
	return nil
}

// FormatAmount renders an amount with two decimals and the currency symbol.
func FormatAmount(symbol string, v float64) string {
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	return symbol + decimal.NewFromFloat(v).StringFixed(2)
}
