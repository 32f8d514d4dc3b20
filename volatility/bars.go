// Package volatility estimates annualised volatility from daily OHLC bars.
package volatility

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

const TradingDays = 252

var ErrInvalidBars = errors.New("invalid price bars")

type Bar struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

func (b Bar) valid() bool {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close} {
		if !(v > 0) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.High >= b.Low && b.High >= math.Max(b.Open, b.Close) && b.Low <= math.Min(b.Open, b.Close)
}

// Validate requires at least min bars, each with positive prices and a consistent range.
func Validate(bars []Bar, min int) error {
	if len(bars) < min {
		return fmt.Errorf("%w: need %d bars, got %d", ErrInvalidBars, min, len(bars))
	}
	for i, b := range bars {
		if !b.valid() {
			return fmt.Errorf("%w: bar %d (%s) o=%v h=%v l=%v c=%v", ErrInvalidBars, i, b.Date.Format("2006-01-02"), b.Open, b.High, b.Low, b.Close)
		}
	}
	return nil
}

// ReadCSV parses date,open,high,low,close rows. A header row is detected and skipped;
// extra columns such as volume are ignored.
func ReadCSV(r io.Reader) ([]Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var bars []Bar
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < 5 {
			return nil, fmt.Errorf("%w: line %d has %d fields", ErrInvalidBars, line, len(rec))
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "date") {
			continue
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidBars, line, err)
		}
		var ohlc [4]float64
		for k := range ohlc {
			if ohlc[k], err = strconv.ParseFloat(strings.TrimSpace(rec[k+1]), 64); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidBars, line, err)
			}
		}
		bars = append(bars, Bar{Date: date, Open: ohlc[0], High: ohlc[1], Low: ohlc[2], Close: ohlc[3]})
	}
	return bars, nil
}
