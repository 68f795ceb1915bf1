package usecase

import (
	"math"

	"github.com/shopspring/decimal"
)

// roundPrice rounds a currency amount to cents.
func roundPrice(v float64) float64 {
	return roundTo(v, 2)
}

// roundQty rounds an asset quantity; assets need finer precision than currency.
func roundQty(v float64) float64 {
	return roundTo(v, 4)
}

// roundTo leaves non-finite values untouched; decimal cannot represent them.
func roundTo(v float64, places int32) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
