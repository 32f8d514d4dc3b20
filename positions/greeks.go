package positions

import (
	"fmt"

	"github.com/bcdannyboy/qfin/models"
)

// StrategyGreeks sums the Black-Scholes-Merton sensitivities of every leg, signed by side and
// scaled by quantity. Price is the net fair value of the position.
func StrategyGreeks(s Strategy, m Market) (models.BSMResult, error) {
	if err := s.Validate(); err != nil {
		return models.BSMResult{}, err
	}

	var total models.BSMResult
	for i, leg := range s.Legs {
		res, err := models.BlackScholesMerton(m.Spot, leg.Strike, m.Maturity, m.Rate, m.Yield, m.Volatility, leg.Type)
		if err != nil {
			return models.BSMResult{}, fmt.Errorf("greeks for %s leg %d: %w", s.Name, i, err)
		}
		w := leg.sign() * leg.quantity()
		total.Price += w * res.Price
		total.Delta += w * res.Delta
		total.Gamma += w * res.Gamma
		total.Theta += w * res.Theta
		total.Vega += w * res.Vega
		total.Rho += w * res.Rho
	}
	return total, nil
}
