package format

import (
	"math"
	"testing"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"Zero", 0, "$0.00"},
		{"Small amount", 5.5, "$5.50"},
		{"Thousands", 1798.6515754, "$1,798.65"},
		{"Millions", 1234567.891, "$1,234,567.89"},
		{"Negative", -1234.56, "-$1,234.56"},
		{"Rounds half away from zero", 2.675, "$2.68"},
		{"Negative rounding to zero", -0.001, "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Currency(tt.amount); got != tt.expected {
				t.Errorf("Currency(%v) = %q, expected %q", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestPlainCurrency(t *testing.T) {
	if got := PlainCurrency(1234567.891); got != "1234567.89" {
		t.Errorf("PlainCurrency() = %q, expected %q", got, "1234567.89")
	}
}

func TestPercentage(t *testing.T) {
	if got := Percentage(16.666666); got != "16.67%" {
		t.Errorf("Percentage() = %q, expected %q", got, "16.67%")
	}
	if got := Percentage(50); got != "50.00%" {
		t.Errorf("Percentage() = %q, expected %q", got, "50.00%")
	}
}

func TestNonFiniteAmounts(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		plain    string
	}{
		{"NaN", math.NaN(), "NaN", "NaN"},
		{"Positive infinity", math.Inf(1), "+Inf", "+Inf"},
		{"Negative infinity", math.Inf(-1), "-Inf", "-Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Currency(tt.amount); got != tt.currency {
				t.Errorf("Currency(%v) = %q, expected %q", tt.amount, got, tt.currency)
			}
			if got := PlainCurrency(tt.amount); got != tt.plain {
				t.Errorf("PlainCurrency(%v) = %q, expected %q", tt.amount, got, tt.plain)
			}
			if got := Cents(tt.amount); !got.IsZero() {
				t.Errorf("Cents(%v) = %s, expected 0", tt.amount, got)
			}
		})
	}

	if got := Percentage(math.NaN()); got != "NaN%" {
		t.Errorf("Percentage(NaN) = %q, expected %q", got, "NaN%")
	}
}
