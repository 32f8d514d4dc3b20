// Package cashflow discounts cash flow schedules and prices plain bonds and forwards.
package cashflow

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidCashflow = errors.New("invalid cash flow")

// Flow is an amount received at Time years from now.
type Flow struct {
	Time   float64 `json:"time"`
	Amount float64 `json:"amount"`
}

type DiscountedFlow struct {
	Flow
	Factor       float64 `json:"discount_factor"`
	PresentValue float64 `json:"present_value"`
}

type Schedule struct {
	Flows []DiscountedFlow `json:"flows"`
	Total float64          `json:"total"`
}

// Annual places amounts at years 1, 2, ... n.
func Annual(amounts ...float64) []Flow {
	flows := make([]Flow, len(amounts))
	for i, a := range amounts {
		flows[i] = Flow{Time: float64(i + 1), Amount: a}
	}
	return flows
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func checkFlows(flows []Flow, rate float64) error {
	if len(flows) == 0 {
		return fmt.Errorf("%w: empty schedule", ErrInvalidCashflow)
	}
	if !finite(rate) {
		return fmt.Errorf("%w: rate must be finite", ErrInvalidCashflow)
	}
	for i, f := range flows {
		if !finite(f.Time, f.Amount) || f.Time < 0 {
			return fmt.Errorf("%w: flow %d at t=%v amount %v", ErrInvalidCashflow, i, f.Time, f.Amount)
		}
	}
	return nil
}

func discount(flows []Flow, factor func(t float64) float64) Schedule {
	s := Schedule{Flows: make([]DiscountedFlow, len(flows))}
	for i, f := range flows {
		df := factor(f.Time)
		s.Flows[i] = DiscountedFlow{Flow: f, Factor: df, PresentValue: f.Amount * df}
		s.Total += s.Flows[i].PresentValue
	}
	return s
}

// PresentValueContinuous discounts each flow by e^(-rt).
func PresentValueContinuous(flows []Flow, rate float64) (Schedule, error) {
	if err := checkFlows(flows, rate); err != nil {
		return Schedule{}, err
	}
	return discount(flows, func(t float64) float64 {
		return math.Exp(-rate * t)
	}), nil
}

// PresentValueDiscrete discounts with rate compounded freq times a year: (1 + r/m)^(-mt).
func PresentValueDiscrete(flows []Flow, rate float64, freq int) (Schedule, error) {
	if err := checkFlows(flows, rate); err != nil {
		return Schedule{}, err
	}
	if freq < 1 {
		return Schedule{}, fmt.Errorf("%w: compounding frequency must be at least 1, got %d", ErrInvalidCashflow, freq)
	}
	m := float64(freq)
	if rate/m <= -1 {
		return Schedule{}, fmt.Errorf("%w: rate %v too negative for frequency %d", ErrInvalidCashflow, rate, freq)
	}
	return discount(flows, func(t float64) float64 {
		return math.Pow(1+rate/m, -m*t)
	}), nil
}

// NPV is the continuously discounted value of flows less the initial outlay.
func NPV(initial float64, flows []Flow, rate float64) (float64, error) {
	if !finite(initial) {
		return 0, fmt.Errorf("%w: initial outlay must be finite", ErrInvalidCashflow)
	}
	s, err := PresentValueContinuous(flows, rate)
	if err != nil {
		return 0, err
	}
	return s.Total - initial, nil
}
