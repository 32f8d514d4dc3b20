package models

import (
	"fmt"
	"math"
)

// Put-call parity for European options on an asset with continuous yield q:
//
//	C + K·e^(−rT) = P + S·e^(−qT)
//
// For futures pass q = r, which turns S·e^(−qT) into F·e^(−rT).

// ParityGap returns (C + K·e^(−rT)) − (P + S·e^(−qT)).
func ParityGap(call, put, S, K, T, r, q float64) float64 {
	return call + K*math.Exp(-r*T) - put - S*math.Exp(-q*T)
}

func PutFromCall(call, S, K, T, r, q float64) float64 {
	return call + K*math.Exp(-r*T) - S*math.Exp(-q*T)
}

func CallFromPut(put, S, K, T, r, q float64) float64 {
	return put + S*math.Exp(-q*T) - K*math.Exp(-r*T)
}

type ParityCheck struct {
	Left  float64 `json:"left"`  // C + K·e^(−rT)
	Right float64 `json:"right"` // P + S·e^(−qT)
	Gap   float64 `json:"gap"`
	Holds bool    `json:"holds"`
}

func CheckParity(call, put, S, K, T, r, q, tol float64) (ParityCheck, error) {
	if !(T >= 0) || !(tol >= 0) {
		return ParityCheck{}, fmt.Errorf("%w: maturity and tolerance must be non-negative", ErrInvalidParameters)
	}
	left := call + K*math.Exp(-r*T)
	right := put + S*math.Exp(-q*T)
	return ParityCheck{
		Left:  left,
		Right: right,
		Gap:   left - right,
		Holds: math.Abs(left-right) <= tol,
	}, nil
}

// LatticeParity compares European call and put values computed on the same lattice.
// The carry term follows the lattice's underlying: q for stock, r for futures.
func LatticeParity(params LatticeParams, tol float64) (ParityCheck, error) {
	params.Payoff = nil
	params.Type = Call
	call, err := PriceBinomial(params, European)
	if err != nil {
		return ParityCheck{}, err
	}
	params.Type = Put
	put, err := PriceBinomial(params, European)
	if err != nil {
		return ParityCheck{}, err
	}

	q := params.Yield
	if params.Underlying == Futures {
		q = params.Rate
	}
	return CheckParity(call.Value, put.Value, params.Spot, params.Strike, params.Maturity, params.Rate, q, tol)
}
