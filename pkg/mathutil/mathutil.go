// Package mathutil provides numeric helpers shared by the calculators.
package mathutil

import "math"

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// SumBy adds up the value selected from each item, in order.
func SumBy[T any](items []T, value func(T) float64) float64 {
	total := 0.0
	for _, item := range items {
		total += value(item)
	}
	return total
}
