package probability

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"golang.org/x/exp/rand"
)

const (
	defaultPaths   = 100000
	defaultWorkers = 8
)

var ErrInvalidSimulation = errors.New("invalid simulation parameters")

var rngPool = sync.Pool{
	New: func() interface{} {
		return rand.New(rand.NewSource(uint64(rand.Int63())))
	},
}

// SimulationParams describes a geometric Brownian motion under the risk-neutral measure.
// A zero Seed draws generators from a shared pool; any other value makes runs reproducible.
type SimulationParams struct {
	Spot       float64
	Rate       float64
	Yield      float64
	Volatility float64
	Maturity   float64
	Paths      int
	Workers    int
	Seed       uint64
}

func (p SimulationParams) withDefaults() SimulationParams {
	if p.Paths == 0 {
		p.Paths = defaultPaths
	}
	if p.Workers <= 0 {
		p.Workers = defaultWorkers
	}
	if p.Workers > p.Paths {
		p.Workers = p.Paths
	}
	return p
}

func (p SimulationParams) validate() error {
	for _, v := range []float64{p.Spot, p.Rate, p.Yield, p.Volatility, p.Maturity} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite input", ErrInvalidSimulation)
		}
	}
	switch {
	case p.Spot <= 0:
		return fmt.Errorf("%w: spot must be positive, got %v", ErrInvalidSimulation, p.Spot)
	case p.Volatility < 0:
		return fmt.Errorf("%w: volatility must be non-negative, got %v", ErrInvalidSimulation, p.Volatility)
	case p.Maturity <= 0:
		return fmt.Errorf("%w: maturity must be positive, got %v", ErrInvalidSimulation, p.Maturity)
	case p.Paths < 0:
		return fmt.Errorf("%w: paths must be non-negative, got %d", ErrInvalidSimulation, p.Paths)
	}
	return nil
}

// SimulateTerminalPrices draws p.Paths prices at maturity:
// S_T = S exp((r - q - σ²/2)T + σ√T Z).
func SimulateTerminalPrices(p SimulationParams) ([]float64, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	p = p.withDefaults()

	drift := (p.Rate - p.Yield - 0.5*p.Volatility*p.Volatility) * p.Maturity
	diffusion := p.Volatility * math.Sqrt(p.Maturity)

	prices := make([]float64, p.Paths)
	chunk := (p.Paths + p.Workers - 1) / p.Workers

	var wg sync.WaitGroup
	for w := 0; w < p.Workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > p.Paths {
			hi = p.Paths
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(worker, lo, hi int) {
			defer wg.Done()

			var rng *rand.Rand
			if p.Seed != 0 {
				rng = rand.New(rand.NewSource(p.Seed + uint64(worker)))
			} else {
				rng = rngPool.Get().(*rand.Rand)
				defer rngPool.Put(rng)
			}

			for i := lo; i < hi; i++ {
				prices[i] = p.Spot * math.Exp(drift+diffusion*rng.NormFloat64())
			}
		}(w, lo, hi)
	}
	wg.Wait()

	return prices, nil
}
