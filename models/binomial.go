package models

import (
	"fmt"
	"math"
	"sync"
)

// minParallelRow is the narrowest row worth splitting across goroutines.
const minParallelRow = 256

// PayoffFunc maps an underlying price to a claim value at exercise.
type PayoffFunc func(s float64) float64

type LatticeParams struct {
	Spot       float64 // S0, or F0 for futures
	Strike     float64
	Rate       float64 // continuously compounded risk-free rate
	Yield      float64 // dividend / carry yield, ignored for futures
	Volatility float64
	Maturity   float64 // years
	Steps      int
	Type       OptionType
	Underlying Underlying

	// Payoff overrides the vanilla call/put payoff when set.
	Payoff PayoffFunc
	// Parallelism > 1 splits wide rows of the backward induction across goroutines.
	Parallelism int
}

// Lattice is a recombining Cox-Ross-Rubinstein tree with d = 1/u.
type Lattice struct {
	params   LatticeParams
	payoff   PayoffFunc
	dt       float64
	u        float64
	d        float64
	p        float64
	discount float64
}

func NewLattice(params LatticeParams) (*Lattice, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	dt := params.Maturity / float64(params.Steps)
	u := math.Exp(params.Volatility * math.Sqrt(dt))
	d := 1 / u

	var growth float64
	switch params.Underlying {
	case Futures:
		growth = 1
	default:
		growth = math.Exp((params.Rate - params.Yield) * dt)
	}
	p := (growth - d) / (u - d)

	if math.IsNaN(p) || p < 0 || p > 1 {
		return nil, fmt.Errorf("%w: risk-neutral probability %.6f outside [0,1] (u=%.6f d=%.6f dt=%.6f)", ErrInvalidParameters, p, u, d, dt)
	}

	payoff := params.Payoff
	if payoff == nil {
		optType, strike := params.Type, params.Strike
		payoff = func(s float64) float64 {
			return optType.Intrinsic(s, strike)
		}
	}

	return &Lattice{
		params:   params,
		payoff:   payoff,
		dt:       dt,
		u:        u,
		d:        d,
		p:        p,
		discount: math.Exp(-params.Rate * dt),
	}, nil
}

func (p LatticeParams) validate() error {
	for name, v := range map[string]float64{
		"spot":       p.Spot,
		"strike":     p.Strike,
		"rate":       p.Rate,
		"yield":      p.Yield,
		"volatility": p.Volatility,
		"maturity":   p.Maturity,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParameters, name)
		}
	}
	switch {
	case p.Spot <= 0:
		return fmt.Errorf("%w: spot must be positive, got %v", ErrInvalidParameters, p.Spot)
	case p.Strike <= 0:
		return fmt.Errorf("%w: strike must be positive, got %v", ErrInvalidParameters, p.Strike)
	case p.Volatility <= 0:
		return fmt.Errorf("%w: volatility must be positive, got %v", ErrInvalidParameters, p.Volatility)
	case p.Maturity <= 0:
		return fmt.Errorf("%w: maturity must be positive, got %v", ErrInvalidParameters, p.Maturity)
	case p.Steps < 1:
		return fmt.Errorf("%w: steps must be at least 1, got %d", ErrInvalidParameters, p.Steps)
	case p.Payoff == nil && !p.Type.valid():
		return fmt.Errorf("%w: unknown option type %q", ErrInvalidParameters, p.Type)
	case p.Underlying != Stock && p.Underlying != Futures:
		return fmt.Errorf("%w: unknown underlying %v", ErrInvalidParameters, p.Underlying)
	}
	return nil
}

func (l *Lattice) Params() LatticeParams { return l.params }
func (l *Lattice) Up() float64           { return l.u }
func (l *Lattice) Down() float64         { return l.d }
func (l *Lattice) Probability() float64  { return l.p }
func (l *Lattice) Discount() float64     { return l.discount }
func (l *Lattice) Dt() float64           { return l.dt }

// UnderlyingPrice is S0·u^(i−j)·d^j for step i and down-count j.
func (l *Lattice) UnderlyingPrice(i, j int) float64 {
	return l.params.Spot * math.Pow(l.u, float64(i-j)) * math.Pow(l.d, float64(j))
}

// Price runs backward induction over the lattice. The returned grids are owned by the caller.
func (l *Lattice) Price(style ExerciseStyle) *LatticeResult {
	n := l.params.Steps

	prices := make([][]float64, n+1)
	values := make([][]float64, n+1)
	exercise := make([][]bool, n+1)
	for i := 0; i <= n; i++ {
		prices[i] = make([]float64, i+1)
		values[i] = make([]float64, i+1)
		exercise[i] = make([]bool, i+1)
		for j := 0; j <= i; j++ {
			prices[i][j] = l.UnderlyingPrice(i, j)
		}
	}

	for j := 0; j <= n; j++ {
		values[n][j] = l.payoff(prices[n][j])
	}

	for i := n - 1; i >= 0; i-- {
		l.stepBack(style, prices[i], values[i], exercise[i], values[i+1])
	}

	early := false
	for i := 0; i < n && !early; i++ {
		for _, ex := range exercise[i] {
			if ex {
				early = true
				break
			}
		}
	}

	return &LatticeResult{
		Value:         values[0][0],
		EarlyExercise: early,
		Style:         style,
		Up:            l.u,
		Down:          l.d,
		Probability:   l.p,
		Discount:      l.discount,
		Dt:            l.dt,
		Prices:        prices,
		Values:        values,
		Exercise:      exercise,
	}
}

// stepBack resolves one row from the fully resolved row after it.
func (l *Lattice) stepBack(style ExerciseStyle, prices, values []float64, exercise []bool, next []float64) {
	width := len(values)
	workers := l.params.Parallelism
	if workers <= 1 || width < minParallelRow {
		l.evalRange(style, prices, values, exercise, next, 0, width)
		return
	}
	if workers > width {
		workers = width
	}

	chunk := (width + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < width; lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > width {
			hi = width
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.evalRange(style, prices, values, exercise, next, lo, hi)
		}()
	}
	wg.Wait()
}

func (l *Lattice) evalRange(style ExerciseStyle, prices, values []float64, exercise []bool, next []float64, lo, hi int) {
	for j := lo; j < hi; j++ {
		continuation := l.discount * (l.p*next[j] + (1-l.p)*next[j+1])
		if style == American {
			intrinsic := l.payoff(prices[j])
			if intrinsic > continuation {
				values[j] = intrinsic
				exercise[j] = true
				continue
			}
		}
		values[j] = continuation
	}
}

// PriceBinomial validates params, builds the lattice and prices it in one call.
func PriceBinomial(params LatticeParams, style ExerciseStyle) (*LatticeResult, error) {
	l, err := NewLattice(params)
	if err != nil {
		return nil, err
	}
	return l.Price(style), nil
}

// CompareStyles prices the European and American versions of the same contract on one lattice.
func CompareStyles(params LatticeParams) (*StyleComparison, error) {
	l, err := NewLattice(params)
	if err != nil {
		return nil, err
	}
	eu := l.Price(European)
	am := l.Price(American)
	return &StyleComparison{
		European: eu,
		American: am,
		Premium:  am.Value - eu.Value,
	}, nil
}
