package positions

import (
	"testing"

	"github.com/bcdannyboy/qfin/models"
	"github.com/stretchr/testify/require"
)

func TestSingleLegProfits(t *testing.T) {
	cases := []struct {
		name      string
		strategy  Strategy
		price     float64
		want      float64
		breakeven float64
	}{
		{"long call in the money", LongCall(150, 5), 170, 15, 155},
		{"long call out of the money", LongCall(150, 5), 120, -5, 155},
		{"short call", ShortCall(150, 5), 170, -15, 155},
		{"long put", LongPut(150, 5), 120, 25, 145},
		{"short put", ShortPut(150, 5), 160, 5, 145},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.want, tc.strategy.Profit(tc.price), 1e-12)

			be, err := Breakevens(tc.strategy)
			require.NoError(t, err)
			require.Len(t, be, 1)
			require.InDelta(t, tc.breakeven, be[0], 1e-9)
		})
	}
}

func TestStrangleBreakevensAndExtremes(t *testing.T) {
	s := Strangle(40, 45, 4, 3)
	require.InDelta(t, 7, s.Cost(), 1e-12)

	be, err := Breakevens(s)
	require.NoError(t, err)
	require.Equal(t, []float64{33, 52}, be)

	ext, err := StrategyExtremes(s)
	require.NoError(t, err)
	require.InDelta(t, 7, ext.MaxLoss, 1e-12)
	require.True(t, ext.UnlimitedProfit)
	require.False(t, ext.UnlimitedLoss)
	// at zero the put pays 40 less the 7 paid
	require.InDelta(t, 33, ext.MaxProfit, 1e-12)

	for _, price := range []float64{40, 42, 45} {
		require.InDelta(t, -7, s.Profit(price), 1e-12)
	}
}

func TestSpreadsAndButterflies(t *testing.T) {
	bull := BullCallSpread(25, 30, 6, 2.5)
	require.InDelta(t, 3.5, bull.Cost(), 1e-12)
	require.InDelta(t, -3.5, bull.Profit(20), 1e-12)
	require.InDelta(t, 1.5, bull.Profit(40), 1e-12)

	ext, err := StrategyExtremes(bull)
	require.NoError(t, err)
	require.False(t, ext.UnlimitedProfit)
	require.False(t, ext.UnlimitedLoss)
	require.InDelta(t, 1.5, ext.MaxProfit, 1e-12)
	require.InDelta(t, 3.5, ext.MaxLoss, 1e-12)

	bear := BearPutSpread(25, 30, 1, 3)
	require.InDelta(t, 2, bear.Cost(), 1e-12)
	require.InDelta(t, 3, bear.Profit(20), 1e-12)

	fly := CallButterfly(25, 30, 35, 8, 4, 1)
	require.InDelta(t, 1, fly.Cost(), 1e-12)
	require.InDelta(t, 4, fly.Profit(30), 1e-12)
	require.InDelta(t, -1, fly.Profit(40), 1e-12)
	be, err := Breakevens(fly)
	require.NoError(t, err)
	require.Equal(t, []float64{26, 34}, be)

	credit := BullPutSpread(90, 100, 1, 4)
	require.InDelta(t, -3, credit.Cost(), 1e-12)
	require.InDelta(t, 3, credit.Profit(110), 1e-12)
	require.InDelta(t, -7, credit.Profit(80), 1e-12)

	bc := BearCallSpread(100, 110, 4, 1)
	ext, err = StrategyExtremes(bc)
	require.NoError(t, err)
	require.InDelta(t, 3, ext.MaxProfit, 1e-12)
	require.InDelta(t, 7, ext.MaxLoss, 1e-12)
}

func TestShortCallUnlimitedLoss(t *testing.T) {
	ext, err := StrategyExtremes(ShortCall(100, 2))
	require.NoError(t, err)
	require.True(t, ext.UnlimitedLoss)
	require.InDelta(t, 2, ext.MaxProfit, 1e-12)
}

func TestProfitTable(t *testing.T) {
	s := Straddle(30, 3, 2)
	rows, err := ProfitTable(s, 20, 40, 5)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	require.Equal(t, 20.0, rows[0].Price)
	require.InDelta(t, 5, rows[0].Total, 1e-12)
	require.InDelta(t, -5, rows[2].Total, 1e-12)
	require.Len(t, rows[4].Legs, 2)
	require.InDelta(t, rows[4].Legs[0]+rows[4].Legs[1], rows[4].Total, 1e-12)

	_, err = ProfitTable(s, 40, 20, 1)
	require.ErrorIs(t, err, ErrInvalidStrategy)
	_, err = ProfitTable(s, 0, 10, 0)
	require.ErrorIs(t, err, ErrInvalidStrategy)
}

func TestValidate(t *testing.T) {
	require.ErrorIs(t, Strategy{Name: "empty"}.Validate(), ErrInvalidStrategy)

	bad := LongCall(100, 1)
	bad.Legs[0].Side = "sideways"
	require.ErrorIs(t, bad.Validate(), ErrInvalidStrategy)

	bad = LongPut(-5, 1)
	require.ErrorIs(t, bad.Validate(), ErrInvalidStrategy)

	_, err := Build("iron-condor", 1, 2, 3, 4)
	require.ErrorIs(t, err, ErrInvalidStrategy)
	_, err = Build("strangle", 45, 40)
	require.ErrorIs(t, err, ErrInvalidStrategy)
	_, err = Build("straddle", 1, 2)
	require.ErrorIs(t, err, ErrInvalidStrategy)

	for _, kind := range Kinds() {
		strikes := []float64{25, 30, 35}
		var n int
		switch kind {
		case "bull-call", "bear-put", "bull-put", "bear-call", "strangle":
			n = 2
		case "call-butterfly", "put-butterfly":
			n = 3
		default:
			n = 1
		}
		s, err := Build(kind, strikes[:n]...)
		require.NoError(t, err, kind)
		require.NotEmpty(t, s.Legs)
	}
}

func TestPriceStrategy_BlackScholesCosts(t *testing.T) {
	m6 := Market{Spot: 32, Rate: 0.05, Volatility: 0.30, Maturity: 0.5}
	m12 := Market{Spot: 32, Rate: 0.05, Volatility: 0.30, Maturity: 1}

	cases := []struct {
		kind    string
		market  Market
		strikes []float64
		cost    float64
	}{
		{"bull-call", m6, []float64{25, 30}, 3.7129815835540576},
		{"bear-put", m6, []float64{25, 30}, 1.16356797658761},
		{"call-butterfly", m12, []float64{25, 30, 35}, 1.0009096879706796},
		{"put-butterfly", m12, []float64{25, 30, 35}, 1.0009096879706707},
		{"straddle", m6, []float64{30}, 5.62672130157711},
		{"strangle", m6, []float64{25, 35}, 2.1328040823930485},
	}
	for _, tc := range cases {
		t.Run(tc.kind, func(t *testing.T) {
			s, err := Build(tc.kind, tc.strikes...)
			require.NoError(t, err)
			priced, err := PriceStrategy(s, BlackScholesPricer(tc.market))
			require.NoError(t, err)
			require.InDelta(t, tc.cost, priced.Cost(), 1e-9)

			greeks, err := StrategyGreeks(priced, tc.market)
			require.NoError(t, err)
			require.InDelta(t, priced.Cost(), greeks.Price, 1e-9)
		})
	}
}

func TestPriceStrategy_Lattice(t *testing.T) {
	m := Market{Spot: 50, Rate: 0.05, Volatility: 0.30, Maturity: 2}
	s, err := Build("long-put", 52)
	require.NoError(t, err)

	eu, err := PriceStrategy(s, LatticePricer(m, 2, models.European, models.Stock))
	require.NoError(t, err)
	am, err := PriceStrategy(s, LatticePricer(m, 2, models.American, models.Stock))
	require.NoError(t, err)

	require.InDelta(t, 6.245708445206439, eu.Cost(), 1e-9)
	require.InDelta(t, 7.428401902704835, am.Cost(), 1e-9)
	// the input strategy is not modified
	require.Equal(t, 0.0, s.Legs[0].Premium)

	_, err = PriceStrategy(s, LatticePricer(m, 0, models.European, models.Stock))
	require.ErrorIs(t, err, models.ErrInvalidParameters)
}
