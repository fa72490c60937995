package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// currencyPlaces is the precision applied to derived currency amounts.
const currencyPlaces = 2

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a decimal string (major currency units) to a decimal.
// Blank or malformed input yields zero, matching how the catalog treats a
// missing price.
// Examples: "99.00" → 99, "1234.56" → 1234.56, "" → 0
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// PercentOff returns base reduced by pct percent, rounded to cents.
// pct is clamped to [0, 100].
func PercentOff(base, pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	factor := hundred.Sub(pct).Div(hundred)
	return base.Mul(factor).Round(currencyPlaces)
}

// AmountOff returns base minus amount, never below zero.
func AmountOff(base, amount decimal.Decimal) decimal.Decimal {
	out := base.Sub(amount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// Cents converts an amount in major units to integer minor units.
func Cents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}
