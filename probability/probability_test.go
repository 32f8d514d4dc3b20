package probability

import (
	"math"
	"testing"

	"github.com/bcdannyboy/qfin/models"
	"github.com/bcdannyboy/qfin/positions"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestSimulateTerminalPrices_Mean(t *testing.T) {
	p := SimulationParams{Spot: 100, Rate: 0.05, Yield: 0.01, Volatility: 0.2, Maturity: 1, Paths: 200000, Seed: 7}
	prices, err := SimulateTerminalPrices(p)
	require.NoError(t, err)
	require.Len(t, prices, 200000)

	forward := 100 * math.Exp(0.04)
	require.InDelta(t, forward, stat.Mean(prices, nil), 0.3)
	for _, s := range prices {
		require.Greater(t, s, 0.0)
	}
}

func TestSimulateTerminalPrices_Seeded(t *testing.T) {
	p := SimulationParams{Spot: 50, Rate: 0.03, Volatility: 0.4, Maturity: 0.5, Paths: 1000, Workers: 4, Seed: 99}
	a, err := SimulateTerminalPrices(p)
	require.NoError(t, err)
	b, err := SimulateTerminalPrices(p)
	require.NoError(t, err)
	require.Equal(t, a, b)

	p.Volatility = 0
	flat, err := SimulateTerminalPrices(p)
	require.NoError(t, err)
	require.InDelta(t, 50*math.Exp(0.015), flat[0], 1e-9)
}

func TestSimulateTerminalPrices_Invalid(t *testing.T) {
	for _, p := range []SimulationParams{
		{Spot: 0, Volatility: 0.2, Maturity: 1},
		{Spot: 100, Volatility: -0.2, Maturity: 1},
		{Spot: 100, Volatility: 0.2, Maturity: 0},
		{Spot: 100, Volatility: math.NaN(), Maturity: 1},
		{Spot: 100, Volatility: 0.2, Maturity: 1, Paths: -1},
	} {
		_, err := SimulateTerminalPrices(p)
		require.ErrorIs(t, err, ErrInvalidSimulation)
	}
}

func TestVaRAndExpectedShortfall(t *testing.T) {
	call := positions.LongCall(100, 5)
	sims := []float64{80, 90, 100, 110, 120, 130, 140, 150, 160, 170}

	v, err := CalculateVaR(call, sims, 0.95)
	require.NoError(t, err)
	require.InDelta(t, 5, v, 1e-12)

	v, err = CalculateVaR(call, sims, 0.5)
	require.NoError(t, err)
	require.InDelta(t, -25, v, 1e-12)

	es, err := ExpectedShortfall(call, sims, 0.5)
	require.NoError(t, err)
	require.InDelta(t, -5, es, 1e-12)

	_, err = CalculateVaR(call, sims, 1)
	require.ErrorIs(t, err, ErrInvalidSimulation)
	_, err = ExpectedShortfall(call, nil, 0.95)
	require.ErrorIs(t, err, ErrInvalidSimulation)
}

func TestAnalyze(t *testing.T) {
	p := SimulationParams{Spot: 100, Rate: 0.05, Yield: 0.02, Volatility: 0.2, Maturity: 1, Paths: 200000, Seed: 11}

	res, err := Analyze(positions.LongCall(100, 0), p, 0.95)
	require.NoError(t, err)
	// P(S_T > K) = N(d2) with d2 = (0.05 - 0.02 - 0.02) / 0.2 = 0.05
	require.InDelta(t, 0.5199, res.ProbabilityOfProfit, 0.01)
	require.Equal(t, 200000, res.Paths)
	require.LessOrEqual(t, res.VaR, res.ExpectedShortfall)

	// without the yield d2 = 0.15
	noYield := p
	noYield.Yield = 0
	res, err = Analyze(positions.LongCall(100, 0), noYield, 0.95)
	require.NoError(t, err)
	require.InDelta(t, 0.5596, res.ProbabilityOfProfit, 0.01)

	m := positions.Market{Spot: 100, Rate: 0.05, Volatility: 0.2, Maturity: 1}
	straddle, err := positions.Build("straddle", 100)
	require.NoError(t, err)
	straddle, err = positions.PriceStrategy(straddle, positions.BlackScholesPricer(m))
	require.NoError(t, err)

	p.Yield = 0
	res, err = Analyze(straddle, p, 0.99)
	require.NoError(t, err)
	// a fairly priced position grows at the risk-free rate
	require.InDelta(t, straddle.Cost()*(math.Exp(0.05)-1), res.ExpectedProfit, 0.15)
	// the worst case is expiring at the strike
	require.Less(t, res.VaR, straddle.Cost())
	require.Greater(t, res.VaR, straddle.Cost()-1)

	_, err = Analyze(positions.Strategy{}, p, 0.95)
	require.ErrorIs(t, err, positions.ErrInvalidStrategy)

	bsm, err := models.BlackScholesMerton(100, 100, 1, 0.05, 0, 0.2, models.Call)
	require.NoError(t, err)
	require.Greater(t, straddle.Cost(), bsm.Price)
}
