package positions

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/qfin/models"
)

const breakevenTolerance = 1e-9

func (s Strategy) Validate() error {
	if len(s.Legs) == 0 {
		return fmt.Errorf("%w: %q has no legs", ErrInvalidStrategy, s.Name)
	}
	for i, leg := range s.Legs {
		switch {
		case leg.Type != models.Call && leg.Type != models.Put:
			return fmt.Errorf("%w: leg %d has unknown type %q", ErrInvalidStrategy, i, leg.Type)
		case leg.Side != Long && leg.Side != Short:
			return fmt.Errorf("%w: leg %d has unknown side %q", ErrInvalidStrategy, i, leg.Side)
		case !(leg.Strike > 0):
			return fmt.Errorf("%w: leg %d strike must be positive, got %v", ErrInvalidStrategy, i, leg.Strike)
		case !(leg.Premium >= 0):
			return fmt.Errorf("%w: leg %d premium must be non-negative, got %v", ErrInvalidStrategy, i, leg.Premium)
		case leg.Quantity < 0:
			return fmt.Errorf("%w: leg %d quantity must be non-negative, got %d", ErrInvalidStrategy, i, leg.Quantity)
		}
	}
	return nil
}

// ProfitTable evaluates the strategy at expiry for prices from..to inclusive.
func ProfitTable(s Strategy, from, to, step float64) ([]ProfitRow, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if !(step > 0) || !(from >= 0) || !(to >= from) {
		return nil, fmt.Errorf("%w: bad price range [%v, %v] step %v", ErrInvalidStrategy, from, to, step)
	}

	count := int(math.Floor((to-from)/step+breakevenTolerance)) + 1
	rows := make([]ProfitRow, 0, count)
	for k := 0; k < count; k++ {
		price := from + float64(k)*step
		row := ProfitRow{
			Price: price,
			Legs:  make([]float64, len(s.Legs)),
		}
		for i, leg := range s.Legs {
			row.Legs[i] = leg.Profit(price)
			row.Total += row.Legs[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Breakevens returns the expiry prices at which profit is zero, ascending.
// Profit is piecewise linear with kinks at the strikes, so roots are exact.
func Breakevens(s Strategy) ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	xs := append([]float64{0}, s.strikes()...)
	var out []float64
	add := func(x float64) {
		if x <= 0 {
			return
		}
		if n := len(out); n > 0 && math.Abs(out[n-1]-x) < breakevenTolerance {
			return
		}
		out = append(out, x)
	}

	for i := 0; i+1 < len(xs); i++ {
		a, b := xs[i], xs[i+1]
		fa, fb := s.Profit(a), s.Profit(b)
		if math.Abs(fa) < breakevenTolerance {
			add(a)
		}
		if fa*fb < 0 {
			add(a + (b-a)*(-fa)/(fb-fa))
		}
	}

	last := xs[len(xs)-1]
	fl := s.Profit(last)
	if math.Abs(fl) < breakevenTolerance {
		add(last)
	} else if slope := s.tailSlope(); slope != 0 && -fl/slope > 0 {
		add(last - fl/slope)
	}
	return out, nil
}

func StrategyExtremes(s Strategy) (Extremes, error) {
	if err := s.Validate(); err != nil {
		return Extremes{}, err
	}

	best, worst := math.Inf(-1), math.Inf(1)
	for _, x := range append([]float64{0}, s.strikes()...) {
		v := s.Profit(x)
		best = math.Max(best, v)
		worst = math.Min(worst, v)
	}

	slope := s.tailSlope()
	return Extremes{
		MaxProfit:       best,
		MaxLoss:         math.Max(-worst, 0),
		UnlimitedProfit: slope > 0,
		UnlimitedLoss:   slope < 0,
	}, nil
}
