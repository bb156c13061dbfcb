package dataset

import "github.com/shopspring/decimal"

// Round2 rounds a monetary value to two decimals using decimal arithmetic,
// so .005 boundaries round the same way everywhere.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// SplitAmount divides amount at ratio into two rounded parts. The parts sum
// back to the rounded amount except for at most one cent lost to rounding.
func SplitAmount(amount float64, ratio float64) (float64, float64) {
	total := decimal.NewFromFloat(amount)
	first := total.Mul(decimal.NewFromFloat(ratio)).Round(2)
	second := total.Sub(first).Round(2)
	return first.InexactFloat64(), second.InexactFloat64()
}
