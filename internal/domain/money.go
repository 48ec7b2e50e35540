package domain

import "fmt"

// Money amounts are carried as int64 minor currency units (cents). Arithmetic
// that can produce fractional cents rounds half-up so that repeated
// calculations over the same cart stay deterministic.

const basisPointDenominator = 10000

// RoundHalfUp divides numerator by denominator rounding half-up.
// Both arguments must be non-negative; denominator must be positive.
func RoundHalfUp(numerator, denominator int64) int64 {
	if denominator <= 0 {
		return 0
	}
	quotient := numerator / denominator
	remainder := numerator % denominator
	if remainder*2 >= denominator {
		quotient++
	}
	return quotient
}

// PercentOf applies a basis-point rate to an amount, rounding half-up.
// 1000 bps = 10%.
func PercentOf(amount, bps int64) int64 {
	if amount <= 0 || bps <= 0 {
		return 0
	}
	return RoundHalfUp(amount*bps, basisPointDenominator)
}

// ClampDiscount bounds a discount amount to the chargeable range [0, limit].
func ClampDiscount(amount, limit int64) int64 {
	if amount < 0 {
		return 0
	}
	if limit < 0 {
		limit = 0
	}
	if amount > limit {
		return limit
	}
	return amount
}

// FormatCents renders a minor-unit amount as a decimal string, e.g. 10400 -> "104.00".
func FormatCents(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
