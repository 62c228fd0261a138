package engine

import (
	"github.com/shopspring/decimal"
)

// Decision is the outcome of turning a forecast into candidate limit
// prices.
type Decision struct {
	Beneficial bool
	Buy        float64
	Sell       float64
}

// Decide derives conservative buy/sell limit prices from the forecast
// extremes and decides whether the spread clears the round-trip
// commission. Buy rides the forecast minimum up by the accuracy margin,
// sell rides the maximum down; both snap to the minimum price increment.
func Decide(predicted [][]float64, accuracyMargin, minIncrement, commissionRate float64) Decision {
	low, high := matrixExtremes(predicted)

	buy := RoundToIncrement((1+accuracyMargin)*low, minIncrement)
	sell := RoundToIncrement((1-accuracyMargin)*high, minIncrement)

	// The spread must exceed commission on the combined notional, not the
	// rate alone.
	spread := decimal.NewFromFloat(sell).Sub(decimal.NewFromFloat(buy))
	cost := decimal.NewFromFloat(sell).Add(decimal.NewFromFloat(buy)).Mul(decimal.NewFromFloat(commissionRate))

	return Decision{
		Beneficial: spread.GreaterThan(cost),
		Buy:        buy,
		Sell:       sell,
	}
}

// RoundToIncrement snaps a price to the nearest multiple of the minimum
// tradable price increment.
func RoundToIncrement(price, increment float64) float64 {
	if increment <= 0 {
		return price
	}
	p := decimal.NewFromFloat(price)
	step := decimal.NewFromFloat(increment)
	out, _ := p.Div(step).Round(0).Mul(step).Float64()
	return out
}

// Notional is the full cash value of an order: unit price x quantity x
// lot size.
func Notional(price float64, quantity, lotSize int64) float64 {
	out, _ := decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(quantity)).
		Mul(decimal.NewFromInt(lotSize)).
		Float64()
	return out
}

func matrixExtremes(m [][]float64) (low, high float64) {
	first := true
	for _, row := range m {
		for _, x := range row {
			if first {
				low, high = x, x
				first = false
				continue
			}
			if x < low {
				low = x
			}
			if x > high {
				high = x
			}
		}
	}
	return low, high
}
