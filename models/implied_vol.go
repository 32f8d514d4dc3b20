package models

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

const (
	maxIterations = 100
	epsilon       = 1e-8

	// calibration stops once the lattice reprices the target this closely
	latticeTolerance = 1e-6
)

var ErrNoConvergence = errors.New("implied volatility did not converge")

// ImpliedVolatility inverts Black-Scholes-Merton with Newton-Raphson on vega.
func ImpliedVolatility(target, S, K, T, r, q float64, optType OptionType) (float64, error) {
	if err := checkClosedForm(S, K, T, 1); err != nil {
		return 0, err
	}
	if !optType.valid() {
		return 0, fmt.Errorf("%w: unknown option type %q", ErrInvalidParameters, optType)
	}

	isCall := optType == Call
	lower, upper := priceBounds(S, K, T, r, q, isCall)
	if !(target > lower && target < upper) {
		return 0, fmt.Errorf("%w: price %v outside no-arbitrage bounds (%v, %v)", ErrInvalidParameters, target, lower, upper)
	}

	sigma := 0.5
	for i := 0; i < maxIterations; i++ {
		res := calculateBSM(S, K, T, r, q, sigma, isCall)
		diff := res.Price - target
		if math.Abs(diff) < epsilon {
			return sigma, nil
		}
		if res.Vega < epsilon {
			break
		}
		sigma -= diff / res.Vega
		if sigma <= 0 {
			sigma = 0.0001
		}
	}
	return 0, fmt.Errorf("%w after %d iterations", ErrNoConvergence, maxIterations)
}

func priceBounds(S, K, T, r, q float64, isCall bool) (float64, float64) {
	fwdS := S * math.Exp(-q*T)
	pvK := K * math.Exp(-r*T)
	if isCall {
		return math.Max(fwdS-pvK, 0), fwdS
	}
	return math.Max(pvK-fwdS, 0), pvK
}

// LatticeImpliedVolatility finds the volatility at which the lattice reproduces target.
// params.Volatility is used as the starting guess when positive.
func LatticeImpliedVolatility(target float64, params LatticeParams, style ExerciseStyle) (float64, error) {
	if !(target > 0) {
		return 0, fmt.Errorf("%w: target price must be positive, got %v", ErrInvalidParameters, target)
	}
	guess := params.Volatility
	if !(guess > 0) {
		guess = 0.3
	}
	start := params
	start.Volatility = guess
	if err := start.validate(); err != nil {
		return 0, err
	}

	// search in log-volatility so the solver never proposes a negative sigma
	objective := func(x []float64) float64 {
		trial := params
		trial.Volatility = math.Exp(x[0])
		res, err := PriceBinomial(trial, style)
		if err != nil {
			return math.Inf(1)
		}
		diff := res.Value - target
		return diff * diff
	}

	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{
		FuncEvaluations: 2000,
		Converger: &optimize.FunctionConverge{
			Absolute:   latticeTolerance * latticeTolerance,
			Iterations: 50,
		},
	}
	result, err := optimize.Minimize(problem, []float64{math.Log(guess)}, settings, &optimize.NelderMead{})
	if err != nil && result == nil {
		return 0, fmt.Errorf("lattice calibration: %w", err)
	}

	sigma := math.Exp(result.X[0])
	if math.Sqrt(result.F) > 1e-4 {
		return sigma, fmt.Errorf("%w: residual %.6g at sigma %.6f", ErrNoConvergence, math.Sqrt(result.F), sigma)
	}
	return sigma, nil
}
