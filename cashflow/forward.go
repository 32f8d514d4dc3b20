package cashflow

import (
	"fmt"
	"math"
)

// ForwardPrice is S·e^((r-q)T) for an asset with continuous yield q.
func ForwardPrice(spot, rate, yield, maturity float64) (float64, error) {
	if !finite(spot, rate, yield, maturity) || spot <= 0 || maturity < 0 {
		return 0, fmt.Errorf("%w: forward on spot %v over %v years", ErrInvalidCashflow, spot, maturity)
	}
	return spot * math.Exp((rate-yield)*maturity), nil
}

// ForwardValue is the value to the long side of a contract struck at delivery with remaining years left.
func ForwardValue(spot, delivery, rate, remaining float64) (float64, error) {
	if !finite(spot, delivery, rate, remaining) || spot <= 0 || delivery <= 0 || remaining < 0 {
		return 0, fmt.Errorf("%w: forward value on spot %v, delivery %v, %v years", ErrInvalidCashflow, spot, delivery, remaining)
	}
	return spot - delivery*math.Exp(-rate*remaining), nil
}
