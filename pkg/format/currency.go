// Package format renders engine values for display. Rounding to cents
// happens here and nowhere else.
package format

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Cents rounds an amount half away from zero to two decimal places.
// Non-finite amounts round to zero.
func Cents(amount float64) decimal.Decimal {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(amount).Round(2)
}

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
// Non-finite amounts render as "NaN", "+Inf" or "-Inf".
func Currency(amount float64) string {
	if s, ok := nonFinite(amount); ok {
		return s
	}
	rounded := Cents(amount)
	if rounded.IsNegative() {
		return printer.Sprintf("-$%.2f", rounded.Abs().InexactFloat64())
	}
	return printer.Sprintf("$%.2f", rounded.InexactFloat64())
}

// PlainCurrency returns the amount rounded to cents with no separators, for
// machine-readable output such as CSV.
func PlainCurrency(amount float64) string {
	if s, ok := nonFinite(amount); ok {
		return s
	}
	return Cents(amount).StringFixed(2)
}

// Percentage formats a 0-100 value with two decimals (e.g., "16.67%").
func Percentage(value float64) string {
	if s, ok := nonFinite(value); ok {
		return s + "%"
	}
	return decimal.NewFromFloat(value).Round(2).StringFixed(2) + "%"
}

func nonFinite(value float64) (string, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'f', -1, 64), true
	}
	return "", false
}
