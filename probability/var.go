package probability

import (
	"fmt"
	"math"
	"sort"

	"github.com/bcdannyboy/qfin/positions"
)

// RiskResult summarises a strategy's simulated profit at expiry.
// VaR and ExpectedShortfall are losses, so positive numbers are bad.
type RiskResult struct {
	Strategy            string  `json:"strategy"`
	Paths               int     `json:"paths"`
	Confidence          float64 `json:"confidence"`
	ProbabilityOfProfit float64 `json:"probability_of_profit"`
	ExpectedProfit      float64 `json:"expected_profit"`
	VaR                 float64 `json:"value_at_risk"`
	ExpectedShortfall   float64 `json:"expected_shortfall"`
}

func losses(s positions.Strategy, simulations []float64) []float64 {
	out := make([]float64, len(simulations))
	for i, finalPrice := range simulations {
		out[i] = -s.Profit(finalPrice)
	}
	sort.Float64s(out)
	return out
}

// quantileIndex is the position of the confidence quantile in an ascending sample.
func quantileIndex(n int, confidence float64) int {
	idx := int(math.Ceil(confidence*float64(n)-1e-9)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}

func checkConfidence(confidence float64, n int) error {
	if !(confidence > 0 && confidence < 1) {
		return fmt.Errorf("%w: confidence must be in (0, 1), got %v", ErrInvalidSimulation, confidence)
	}
	if n == 0 {
		return fmt.Errorf("%w: no simulated prices", ErrInvalidSimulation)
	}
	return nil
}

// CalculateVaR returns the loss that is not exceeded with the given confidence.
func CalculateVaR(s positions.Strategy, simulations []float64, confidence float64) (float64, error) {
	if err := checkConfidence(confidence, len(simulations)); err != nil {
		return 0, err
	}
	l := losses(s, simulations)
	return l[quantileIndex(len(l), confidence)], nil
}

// ExpectedShortfall is the mean loss at or beyond the VaR quantile.
func ExpectedShortfall(s positions.Strategy, simulations []float64, confidence float64) (float64, error) {
	if err := checkConfidence(confidence, len(simulations)); err != nil {
		return 0, err
	}
	l := losses(s, simulations)
	tail := l[quantileIndex(len(l), confidence):]
	var sum float64
	for _, v := range tail {
		sum += v
	}
	return sum / float64(len(tail)), nil
}

// Analyze simulates the underlying and evaluates the strategy at expiry on every path.
// ExpectedProfit is undiscounted.
func Analyze(s positions.Strategy, p SimulationParams, confidence float64) (RiskResult, error) {
	if err := s.Validate(); err != nil {
		return RiskResult{}, err
	}
	prices, err := SimulateTerminalPrices(p)
	if err != nil {
		return RiskResult{}, err
	}
	if err := checkConfidence(confidence, len(prices)); err != nil {
		return RiskResult{}, err
	}

	var wins int
	var total float64
	for _, price := range prices {
		pnl := s.Profit(price)
		if pnl > 0 {
			wins++
		}
		total += pnl
	}

	l := losses(s, prices)
	idx := quantileIndex(len(l), confidence)
	var tail float64
	for _, v := range l[idx:] {
		tail += v
	}

	return RiskResult{
		Strategy:            s.Name,
		Paths:               len(prices),
		Confidence:          confidence,
		ProbabilityOfProfit: float64(wins) / float64(len(prices)),
		ExpectedProfit:      total / float64(len(prices)),
		VaR:                 l[idx],
		ExpectedShortfall:   tail / float64(len(l)-idx),
	}, nil
}
