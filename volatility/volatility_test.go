package volatility

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func flatBars(n int) []Bar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]Bar, n)
	for i := range bars {
		bars[i] = Bar{Date: start.AddDate(0, 0, i), Open: 100, High: 101, Low: 99, Close: 100}
	}
	return bars
}

func TestRangeEstimators_FlatBars(t *testing.T) {
	bars := flatBars(10)
	hl := math.Log(101.0 / 99.0)

	p, err := Parkinson(bars)
	require.NoError(t, err)
	require.InDelta(t, math.Sqrt(hl*hl/(4*math.Ln2)*TradingDays), p, 1e-12)

	gk, err := GarmanKlass(bars)
	require.NoError(t, err)
	require.InDelta(t, math.Sqrt(0.5*hl*hl*TradingDays), gk, 1e-12)

	rsVar := math.Log(1.01)*math.Log(1.01) + math.Log(0.99)*math.Log(0.99)
	rs, err := RogersSatchell(bars)
	require.NoError(t, err)
	require.InDelta(t, math.Sqrt(rsVar*TradingDays), rs, 1e-12)

	cc, err := CloseToClose(bars)
	require.NoError(t, err)
	require.InDelta(t, 0, cc, 1e-15)

	yz, err := YangZhang(bars)
	require.NoError(t, err)
	k := 0.34 / (1.34 + 11.0/9.0)
	require.InDelta(t, math.Sqrt((1-k)*rsVar*TradingDays), yz, 1e-12)
}

func TestCloseToClose_RecoversSimulatedVolatility(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	const sigma = 0.2
	dt := 1.0 / TradingDays

	bars := make([]Bar, 2000)
	price := 100.0
	for i := range bars {
		open := price
		price = open * math.Exp(-0.5*sigma*sigma*dt+sigma*math.Sqrt(dt)*rng.NormFloat64())
		bars[i] = Bar{Open: open, High: math.Max(open, price), Low: math.Min(open, price), Close: price}
	}

	cc, err := CloseToClose(bars)
	require.NoError(t, err)
	require.InDelta(t, sigma, cc, 0.015)
}

func TestValidate(t *testing.T) {
	require.ErrorIs(t, Validate(flatBars(2), 3), ErrInvalidBars)

	bad := flatBars(5)
	bad[3].Low = 102
	require.ErrorIs(t, Validate(bad, 1), ErrInvalidBars)

	bad = flatBars(5)
	bad[1].Close = 0
	_, err := YangZhang(bad)
	require.ErrorIs(t, err, ErrInvalidBars)
}

func TestEstimates(t *testing.T) {
	ests, err := Estimates(flatBars(30), DefaultWindows)
	require.NoError(t, err)
	require.Len(t, ests, 2)
	require.Equal(t, "1w", ests[0].Window)
	require.Equal(t, 21, ests[1].Days)
	require.InDelta(t, ests[0].Parkinson, ests[1].Parkinson, 1e-12)
	require.Greater(t, ests[0].Mean(), 0.0)

	_, err = Estimates(flatBars(4), DefaultWindows)
	require.ErrorIs(t, err, ErrInvalidBars)
}

func TestReadCSV(t *testing.T) {
	in := `date,open,high,low,close,volume
2024-03-01, 100, 102, 99, 101, 1000
2024-03-04,101,103,100,102.5,1200
`
	bars, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	require.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), bars[1].Date)
	require.Equal(t, 102.5, bars[1].Close)

	_, err = ReadCSV(strings.NewReader("2024-03-01,100,102,99\n"))
	require.ErrorIs(t, err, ErrInvalidBars)
	_, err = ReadCSV(strings.NewReader("03/01/2024,100,102,99,101\n"))
	require.ErrorIs(t, err, ErrInvalidBars)
	_, err = ReadCSV(strings.NewReader("2024-03-01,100,x,99,101\n"))
	require.ErrorIs(t, err, ErrInvalidBars)
}
