package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

func checkClosedForm(S, K, T, sigma float64) error {
	switch {
	case !(S > 0):
		return fmt.Errorf("%w: underlying price must be positive, got %v", ErrInvalidParameters, S)
	case !(K > 0):
		return fmt.Errorf("%w: strike must be positive, got %v", ErrInvalidParameters, K)
	case !(T > 0):
		return fmt.Errorf("%w: maturity must be positive, got %v", ErrInvalidParameters, T)
	case !(sigma > 0):
		return fmt.Errorf("%w: volatility must be positive, got %v", ErrInvalidParameters, sigma)
	}
	return nil
}

// BlackScholesMerton prices a European option on an asset paying a continuous yield q.
// Theta is per year, vega and rho per unit (not per percentage point).
func BlackScholesMerton(S, K, T, r, q, sigma float64, optType OptionType) (BSMResult, error) {
	if err := checkClosedForm(S, K, T, sigma); err != nil {
		return BSMResult{}, err
	}
	if !optType.valid() {
		return BSMResult{}, fmt.Errorf("%w: unknown option type %q", ErrInvalidParameters, optType)
	}
	return calculateBSM(S, K, T, r, q, sigma, optType == Call), nil
}

// Black76 prices a European option on a futures price F.
func Black76(F, K, T, r, sigma float64, optType OptionType) (BSMResult, error) {
	res, err := BlackScholesMerton(F, K, T, r, r, sigma, optType)
	if err != nil {
		return BSMResult{}, err
	}
	// the futures price carries no rate sensitivity of its own
	res.Rho = -T * res.Price
	return res, nil
}

func calculateBSM(S, K, T, r, q, sigma float64, isCall bool) BSMResult {
	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r-q+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	dfR := math.Exp(-r * T)
	dfQ := math.Exp(-q * T)
	pdf := distuv.UnitNormal.Prob(d1)

	var price, delta, theta, rho float64
	if isCall {
		price = S*dfQ*normCDF(d1) - K*dfR*normCDF(d2)
		delta = dfQ * normCDF(d1)
		theta = -S*dfQ*pdf*sigma/(2*sqrtT) - r*K*dfR*normCDF(d2) + q*S*dfQ*normCDF(d1)
		rho = K * T * dfR * normCDF(d2)
	} else {
		price = K*dfR*normCDF(-d2) - S*dfQ*normCDF(-d1)
		delta = dfQ * (normCDF(d1) - 1)
		theta = -S*dfQ*pdf*sigma/(2*sqrtT) + r*K*dfR*normCDF(-d2) - q*S*dfQ*normCDF(-d1)
		rho = -K * T * dfR * normCDF(-d2)
	}

	return BSMResult{
		Price: price,
		Delta: delta,
		Gamma: dfQ * pdf / (S * sigma * sqrtT),
		Theta: theta,
		Vega:  S * dfQ * pdf * sqrtT,
		Rho:   rho,
	}
}

func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}
