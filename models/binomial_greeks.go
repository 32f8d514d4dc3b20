package models

import "fmt"

// Greeks reads delta, gamma and theta off the first two steps of a priced lattice.
// Theta is per year. The lattice needs at least two steps.
func (r *LatticeResult) Greeks() (LatticeGreeks, error) {
	if r.Steps() < 2 {
		return LatticeGreeks{}, fmt.Errorf("%w: greeks need at least 2 steps, got %d", ErrInvalidParameters, r.Steps())
	}
	s, v := r.Prices, r.Values

	delta := (v[1][0] - v[1][1]) / (s[1][0] - s[1][1])

	deltaUp := (v[2][0] - v[2][1]) / (s[2][0] - s[2][1])
	deltaDown := (v[2][1] - v[2][2]) / (s[2][1] - s[2][2])
	gamma := (deltaUp - deltaDown) / (0.5 * (s[2][0] - s[2][2]))

	// node (2,1) sits at the spot again, two steps later
	theta := (v[2][1] - v[0][0]) / (2 * r.Dt)

	return LatticeGreeks{
		Delta: delta,
		Gamma: gamma,
		Theta: theta,
	}, nil
}
