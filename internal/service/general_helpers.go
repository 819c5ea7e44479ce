package service

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoundingPlaces is the number of decimal places summary figures are reported with.
const RoundingPlaces = 2

var hundred = decimal.NewFromInt(100)

// round rounds a decimal value to RoundingPlaces decimal places.
// It is applied to summary figures at the output boundary only; internal accumulation
// stays at full precision.
//
// The rounding is "round half away from zero" as implemented by decimal.Round.
//
// Example:
//
//	round(decimal.RequireFromString("123.456789"))  // returns 123.46
//	round(decimal.RequireFromString("0.005"))       // returns 0.01
//	round(decimal.RequireFromString("1.994"))       // returns 1.99
func round(value decimal.Decimal) decimal.Decimal {
	return value.Round(RoundingPlaces)
}

// percentage returns profitLoss as a percentage of cost.
// A non-positive cost yields exactly zero.
func percentage(profitLoss, cost decimal.Decimal) decimal.Decimal {
	if !cost.IsPositive() {
		return decimal.Zero
	}
	return profitLoss.Div(cost).Mul(hundred)
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "unknown date"
	}
	return t.Format("2006-01-02")
}
