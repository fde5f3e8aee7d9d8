package common

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount with exactly two decimal places.
func FormatMoney(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Sprintf("%.2f", amount)
	}
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// Truncate shortens s to at most limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
