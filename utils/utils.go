package utils

import (
	"math"

	"github.com/dustin/go-humanize"
)

// RoundFloat rounds f to the given number of decimal places, NaN and Inf pass through.
func RoundFloat(f float64, places int) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	pow := math.Pow(10, float64(places))
	return math.Round(f*pow) / pow
}

// FormatMoney renders v as prefix + whole units with thousands separators.
// Fractions are rounded half away from zero, so 1234567.6 becomes "$1,234,568".
func FormatMoney(prefix string, v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return prefix + humanize.Ftoa(v)
	}
	r := math.Round(v)
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return prefix + humanize.Commaf(r)
}

// FormatMoneyDigits is FormatMoney keeping up to digits fraction digits,
// trailing zeros dropped.
func FormatMoneyDigits(prefix string, v float64, digits int) string {
	if digits <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return FormatMoney(prefix, v)
	}
	return prefix + humanize.Commaf(RoundFloat(v, digits))
}
