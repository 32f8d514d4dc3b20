package positions

import (
	"sort"

	"github.com/bcdannyboy/qfin/models"
)

func (l Leg) quantity() float64 {
	if l.Quantity == 0 {
		return 1
	}
	return float64(l.Quantity)
}

func (l Leg) sign() float64 {
	if l.Side == Short {
		return -1
	}
	return 1
}

// Payoff is the leg's cash flow at expiry, ignoring the premium.
func (l Leg) Payoff(price float64) float64 {
	return l.sign() * l.quantity() * l.Type.Intrinsic(price, l.Strike)
}

// Profit is the payoff net of the premium paid (long) or received (short).
func (l Leg) Profit(price float64) float64 {
	return l.sign() * l.quantity() * (l.Type.Intrinsic(price, l.Strike) - l.Premium)
}

// Cost is the net premium paid to open the strategy; negative for a net credit.
func (s Strategy) Cost() float64 {
	cost := 0.0
	for _, leg := range s.Legs {
		cost += leg.sign() * leg.quantity() * leg.Premium
	}
	return cost
}

func (s Strategy) Payoff(price float64) float64 {
	total := 0.0
	for _, leg := range s.Legs {
		total += leg.Payoff(price)
	}
	return total
}

func (s Strategy) Profit(price float64) float64 {
	total := 0.0
	for _, leg := range s.Legs {
		total += leg.Profit(price)
	}
	return total
}

// strikes returns the distinct strikes in ascending order.
func (s Strategy) strikes() []float64 {
	seen := make(map[float64]bool, len(s.Legs))
	var out []float64
	for _, leg := range s.Legs {
		if !seen[leg.Strike] {
			seen[leg.Strike] = true
			out = append(out, leg.Strike)
		}
	}
	sort.Float64s(out)
	return out
}

// tailSlope is d(profit)/d(price) beyond the highest strike.
func (s Strategy) tailSlope() float64 {
	slope := 0.0
	for _, leg := range s.Legs {
		if leg.Type == models.Call {
			slope += leg.sign() * leg.quantity()
		}
	}
	return slope
}
