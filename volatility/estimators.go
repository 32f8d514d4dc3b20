package volatility

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CloseToClose is the sample standard deviation of daily log returns.
func CloseToClose(bars []Bar) (float64, error) {
	if err := Validate(bars, 3); err != nil {
		return 0, err
	}
	returns := make([]float64, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		returns[i-1] = math.Log(bars[i].Close / bars[i-1].Close)
	}
	return stat.StdDev(returns, nil) * math.Sqrt(TradingDays), nil
}

// Parkinson uses the daily high-low range only.
func Parkinson(bars []Bar) (float64, error) {
	if err := Validate(bars, 1); err != nil {
		return 0, err
	}
	sum := 0.0
	for _, b := range bars {
		hl := math.Log(b.High / b.Low)
		sum += hl * hl
	}
	return math.Sqrt(sum/(4*float64(len(bars))*math.Ln2)) * math.Sqrt(TradingDays), nil
}

func GarmanKlass(bars []Bar) (float64, error) {
	if err := Validate(bars, 1); err != nil {
		return 0, err
	}
	sum := 0.0
	for _, b := range bars {
		hl := math.Log(b.High / b.Low)
		co := math.Log(b.Close / b.Open)
		sum += 0.5*hl*hl - (2*math.Ln2-1)*co*co
	}
	return math.Sqrt(math.Max(sum, 0) / float64(len(bars)) * TradingDays), nil
}

// RogersSatchell is drift independent.
func RogersSatchell(bars []Bar) (float64, error) {
	if err := Validate(bars, 1); err != nil {
		return 0, err
	}
	return math.Sqrt(rogersSatchellVariance(bars) * TradingDays), nil
}

func rogersSatchellVariance(bars []Bar) float64 {
	sum := 0.0
	for _, b := range bars {
		sum += math.Log(b.High/b.Close)*math.Log(b.High/b.Open) +
			math.Log(b.Low/b.Close)*math.Log(b.Low/b.Open)
	}
	return sum / float64(len(bars))
}

// YangZhang combines overnight, open-to-close and Rogers-Satchell variances.
func YangZhang(bars []Bar) (float64, error) {
	if err := Validate(bars, 3); err != nil {
		return 0, err
	}
	n := float64(len(bars))

	overnight := make([]float64, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		overnight[i-1] = math.Log(bars[i].Open / bars[i-1].Close)
	}
	openClose := make([]float64, len(bars))
	for i, b := range bars {
		openClose[i] = math.Log(b.Close / b.Open)
	}

	k := 0.34 / (1.34 + (n+1)/(n-1))
	variance := stat.Variance(overnight, nil) + k*stat.Variance(openClose, nil) + (1-k)*rogersSatchellVariance(bars)
	return math.Sqrt(math.Max(variance, 0) * TradingDays), nil
}
