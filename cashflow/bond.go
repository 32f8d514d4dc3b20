package cashflow

import (
	"fmt"
	"math"
)

// Bond pays Face*CouponRate/Frequency every period and Face at Maturity.
// Frequency zero means annual coupons.
type Bond struct {
	Face       float64 `json:"face" yaml:"face"`
	CouponRate float64 `json:"coupon_rate" yaml:"coupon_rate"`
	Maturity   float64 `json:"maturity" yaml:"maturity"`
	Frequency  int     `json:"frequency" yaml:"frequency"`
}

// Flows lays out the coupon schedule, with principal added to the last payment.
func (b Bond) Flows() ([]Flow, error) {
	freq := b.Frequency
	if freq == 0 {
		freq = 1
	}
	switch {
	case !finite(b.Face, b.CouponRate, b.Maturity):
		return nil, fmt.Errorf("%w: bond terms must be finite", ErrInvalidCashflow)
	case b.Face <= 0:
		return nil, fmt.Errorf("%w: face must be positive, got %v", ErrInvalidCashflow, b.Face)
	case b.CouponRate < 0:
		return nil, fmt.Errorf("%w: coupon rate must be non-negative, got %v", ErrInvalidCashflow, b.CouponRate)
	case freq < 0:
		return nil, fmt.Errorf("%w: frequency must be positive, got %d", ErrInvalidCashflow, b.Frequency)
	}

	periods := b.Maturity * float64(freq)
	n := int(math.Round(periods))
	if n < 1 || math.Abs(periods-float64(n)) > 1e-9 {
		return nil, fmt.Errorf("%w: maturity %v is not a whole number of coupon periods", ErrInvalidCashflow, b.Maturity)
	}

	coupon := b.Face * b.CouponRate / float64(freq)
	flows := make([]Flow, n)
	for k := 1; k <= n; k++ {
		flows[k-1] = Flow{Time: float64(k) / float64(freq), Amount: coupon}
	}
	flows[n-1].Amount += b.Face
	return flows, nil
}

// BondPrice discounts the bond's flows at a continuously compounded yield.
func BondPrice(b Bond, yield float64) (float64, error) {
	flows, err := b.Flows()
	if err != nil {
		return 0, err
	}
	s, err := PresentValueContinuous(flows, yield)
	if err != nil {
		return 0, err
	}
	return s.Total, nil
}

// BondDuration is the present-value weighted mean time to payment under continuous compounding.
func BondDuration(b Bond, yield float64) (float64, error) {
	flows, err := b.Flows()
	if err != nil {
		return 0, err
	}
	s, err := PresentValueContinuous(flows, yield)
	if err != nil {
		return 0, err
	}
	var weighted float64
	for _, f := range s.Flows {
		weighted += f.Time * f.PresentValue
	}
	return weighted / s.Total, nil
}

// DurationPriceChange is the first-order estimate ΔB = -D·B·Δy.
func DurationPriceChange(price, duration, yieldChange float64) float64 {
	return -duration * price * yieldChange
}
