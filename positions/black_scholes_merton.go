package positions

import (
	"fmt"

	"github.com/bcdannyboy/qfin/models"
)

// LegPricer returns the fair premium of a single leg.
type LegPricer func(leg Leg) (float64, error)

func BlackScholesPricer(m Market) LegPricer {
	return func(leg Leg) (float64, error) {
		res, err := models.BlackScholesMerton(m.Spot, leg.Strike, m.Maturity, m.Rate, m.Yield, m.Volatility, leg.Type)
		if err != nil {
			return 0, err
		}
		return res.Price, nil
	}
}

// LatticePricer prices legs on a binomial lattice, which allows American exercise.
func LatticePricer(m Market, steps int, style models.ExerciseStyle, underlying models.Underlying) LegPricer {
	return func(leg Leg) (float64, error) {
		res, err := models.PriceBinomial(models.LatticeParams{
			Spot:       m.Spot,
			Strike:     leg.Strike,
			Rate:       m.Rate,
			Yield:      m.Yield,
			Volatility: m.Volatility,
			Maturity:   m.Maturity,
			Steps:      steps,
			Type:       leg.Type,
			Underlying: underlying,
		}, style)
		if err != nil {
			return 0, err
		}
		return res.Value, nil
	}
}

// PriceStrategy returns a copy of s with every leg's premium set by pricer.
func PriceStrategy(s Strategy, pricer LegPricer) (Strategy, error) {
	priced := Strategy{Name: s.Name, Legs: make([]Leg, len(s.Legs))}
	copy(priced.Legs, s.Legs)
	for i := range priced.Legs {
		premium, err := pricer(priced.Legs[i])
		if err != nil {
			return Strategy{}, fmt.Errorf("pricing %s leg %d: %w", s.Name, i, err)
		}
		priced.Legs[i].Premium = premium
	}
	return priced, priced.Validate()
}
