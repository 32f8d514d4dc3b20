package models

import (
	"errors"
	"fmt"
)

// ErrInvalidParameters is returned when model inputs are not usable, including lattices whose
// risk-neutral probability falls outside [0,1].
var ErrInvalidParameters = errors.New("invalid parameters")

type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// ParseOptionType accepts "call"/"put" and the single letter forms.
func ParseOptionType(s string) (OptionType, error) {
	switch s {
	case "call", "Call", "CALL", "c", "C":
		return Call, nil
	case "put", "Put", "PUT", "p", "P":
		return Put, nil
	}
	return "", fmt.Errorf("%w: unknown option type %q", ErrInvalidParameters, s)
}

// Intrinsic returns the exercise value of the option at underlying price s.
func (t OptionType) Intrinsic(s, strike float64) float64 {
	if t == Call {
		if s > strike {
			return s - strike
		}
		return 0
	}
	if strike > s {
		return strike - s
	}
	return 0
}

func (t OptionType) valid() bool {
	return t == Call || t == Put
}

type ExerciseStyle int

const (
	European ExerciseStyle = iota
	American
)

func (s ExerciseStyle) String() string {
	switch s {
	case European:
		return "european"
	case American:
		return "american"
	}
	return fmt.Sprintf("ExerciseStyle(%d)", int(s))
}

func (s ExerciseStyle) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func ParseExerciseStyle(s string) (ExerciseStyle, error) {
	switch s {
	case "european", "European", "EUROPEAN", "e", "E":
		return European, nil
	case "american", "American", "AMERICAN", "a", "A":
		return American, nil
	}
	return 0, fmt.Errorf("%w: unknown exercise style %q", ErrInvalidParameters, s)
}

// Underlying selects the risk-neutral drift of the lattice.
type Underlying int

const (
	Stock Underlying = iota
	Futures
)

func (u Underlying) String() string {
	switch u {
	case Stock:
		return "stock"
	case Futures:
		return "futures"
	}
	return fmt.Sprintf("Underlying(%d)", int(u))
}

func ParseUnderlying(s string) (Underlying, error) {
	switch s {
	case "stock", "Stock", "STOCK", "":
		return Stock, nil
	case "futures", "future", "Futures", "FUTURES":
		return Futures, nil
	}
	return 0, fmt.Errorf("%w: unknown underlying %q", ErrInvalidParameters, s)
}

type BSMResult struct {
	Price float64 `json:"price"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

type LatticeGreeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
}

// LatticeResult carries the root value of a pricing run and the full node grids.
// Row i of each grid has i+1 entries indexed by down-count j.
type LatticeResult struct {
	Value         float64       `json:"value"`
	EarlyExercise bool          `json:"early_exercise"`
	Style         ExerciseStyle `json:"style"`

	Up          float64 `json:"up"`
	Down        float64 `json:"down"`
	Probability float64 `json:"probability"`
	Discount    float64 `json:"discount"`
	Dt          float64 `json:"dt"`

	Prices   [][]float64 `json:"prices"`
	Values   [][]float64 `json:"values"`
	Exercise [][]bool    `json:"exercise"`
}

// Steps is the number of time steps in the lattice.
func (r *LatticeResult) Steps() int {
	return len(r.Prices) - 1
}

type StyleComparison struct {
	European *LatticeResult `json:"european"`
	American *LatticeResult `json:"american"`
	// Premium is the value of the early exercise right at the root.
	Premium float64 `json:"early_exercise_premium"`
}
