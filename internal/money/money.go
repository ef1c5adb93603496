// Package money normalises operator-typed numeric input and rounds currency
// values. Malformed input is treated as "no value" rather than an error,
// matching how the till handles blank or mistyped fields.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a possibly malformed amount string into a non-negative
// decimal. Empty strings, non-numeric text and negative values all yield zero.
func ParseAmount(value string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ParseQty converts a quantity string into a non-negative integer, falling
// back to zero on any parse failure.
func ParseQty(value string) int {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil || d.IsNegative() {
		return 0
	}
	return int(d.IntPart())
}

// ParsePercent parses a percentage string and clamps the result into [0, 100].
func ParsePercent(value string) decimal.Decimal {
	return ClampPercent(ParseAmount(value))
}

// ClampPercent clamps a percentage into the [0, 100] range.
func ClampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// RoundCurrency rounds a monetary value to two decimal places, half up.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Fraction converts a percentage into its multiplier form (15 -> 0.15).
func Fraction(percent decimal.Decimal) decimal.Decimal {
	return percent.Div(hundred)
}
