package domain

import "math"

// Money is held internally as int64 cents. The upstream wallet and odds
// collaborators speak decimal currency units, so conversion happens at
// the boundary.

// Cents converts a decimal currency amount to cents.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Amount converts cents back to a decimal currency amount.
func Amount(cents int64) float64 {
	return float64(cents) / 100
}
