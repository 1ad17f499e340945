// Package units defines the two rate units used across the tracker so that a
// fraction and a percentage can never be mixed up silently.
package units

import "github.com/iwvelando/finance-tracker/pkg/constants"

// Rate is an annual rate expressed as a decimal fraction, e.g. 0.065 for 6.5%.
type Rate float64

// Percent is a percentage on the 0-100 scale, e.g. 50 for a 50% match.
type Percent float64

// RateFromPercent converts a user-facing percentage such as 6.5 into a Rate.
func RateFromPercent(percent float64) Rate {
	return Rate(percent / constants.PercentageMultiplier)
}

// Monthly returns the periodic monthly rate.
func (r Rate) Monthly() float64 {
	return float64(r) / constants.MonthsPerYear
}

// Percent returns the rate on the 0-100 scale.
func (r Rate) Percent() Percent {
	return Percent(float64(r) * constants.PercentageMultiplier)
}

// Float64 returns the raw fraction.
func (r Rate) Float64() float64 {
	return float64(r)
}

// Fraction returns the percentage as a decimal fraction.
func (p Percent) Fraction() float64 {
	return float64(p) / constants.PercentageMultiplier
}

// Rate converts the percentage into a Rate.
func (p Percent) Rate() Rate {
	return Rate(p.Fraction())
}
