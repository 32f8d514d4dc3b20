package volatility

import (
	"fmt"
)

type Window struct {
	Name string
	Days int
}

// DefaultWindows are the trailing lookbacks reported by Estimates.
var DefaultWindows = []Window{
	{"1w", 5},
	{"1m", 21},
	{"3m", 63},
	{"6m", 126},
	{"1y", 252},
}

// Estimate holds every estimator's value over one trailing window.
type Estimate struct {
	Window         string  `json:"window"`
	Days           int     `json:"days"`
	CloseToClose   float64 `json:"close_to_close"`
	Parkinson      float64 `json:"parkinson"`
	GarmanKlass    float64 `json:"garman_klass"`
	RogersSatchell float64 `json:"rogers_satchell"`
	YangZhang      float64 `json:"yang_zhang"`
}

// Mean averages the five estimators.
func (e Estimate) Mean() float64 {
	return (e.CloseToClose + e.Parkinson + e.GarmanKlass + e.RogersSatchell + e.YangZhang) / 5
}

func estimate(w Window, bars []Bar) (Estimate, error) {
	est := Estimate{Window: w.Name, Days: w.Days}
	var err error
	for _, f := range []struct {
		dst *float64
		fn  func([]Bar) (float64, error)
	}{
		{&est.CloseToClose, CloseToClose},
		{&est.Parkinson, Parkinson},
		{&est.GarmanKlass, GarmanKlass},
		{&est.RogersSatchell, RogersSatchell},
		{&est.YangZhang, YangZhang},
	} {
		if *f.dst, err = f.fn(bars); err != nil {
			return Estimate{}, fmt.Errorf("window %s: %w", w.Name, err)
		}
	}
	return est, nil
}

// Estimates evaluates each window over the most recent bars, skipping windows longer than
// the history.
func Estimates(bars []Bar, windows []Window) ([]Estimate, error) {
	if err := Validate(bars, 3); err != nil {
		return nil, err
	}
	var out []Estimate
	for _, w := range windows {
		if w.Days < 3 || w.Days > len(bars) {
			continue
		}
		est, err := estimate(w, bars[len(bars)-w.Days:])
		if err != nil {
			return nil, err
		}
		out = append(out, est)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %d bars is shorter than every window", ErrInvalidBars, len(bars))
	}
	return out, nil
}
