package services

import "github.com/shopspring/decimal"

// round2 rounds half away from zero to 2 decimal places.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func pct(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return decimal.NewFromFloat(part).Div(decimal.NewFromFloat(whole)).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}
