package costs

import (
	"math"

	"github.com/shopspring/decimal"
)

// Money rounds an amount to cents for presentation. NaN and infinities have no decimal
// form and come back as zero with ok=false.
func Money(v float64) (decimal.Decimal, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(v).Round(2), true
}

// SumMoney adds the cent-rounded amounts, skipping undefined ones.
func SumMoney(vs ...float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range vs {
		if d, ok := Money(v); ok {
			total = total.Add(d)
		}
	}
	return total
}
