package analysis

import "fmt"

// TablePoint is one calibration measurement: the elastic deformation of the
// machine itself at a given force.
type TablePoint struct {
	ForceN         float64
	DisplacementMM float64
}

// Table is the machine compliance lookup, ascending by force. It defines a
// piecewise-linear correction function, clamped to the boundary values
// outside its domain.
type Table []TablePoint

// Validate checks the table invariants: at least two points, strictly
// ascending force.
func (t Table) Validate() error {
	if len(t) < 2 {
		return fmt.Errorf("%w: got %d points, need at least 2", ErrInvalidTable, len(t))
	}
	for i := 1; i < len(t); i++ {
		if t[i].ForceN <= t[i-1].ForceN {
			return fmt.Errorf("%w: force not ascending at point %d", ErrInvalidTable, i)
		}
	}
	return nil
}

// Interpolate returns the system displacement at the given force,
// interpolated linearly between the bracketing table points and clamped to
// the first/last displacement outside the table's force range.
func (t Table) Interpolate(force float64) float64 {
	if force <= t[0].ForceN {
		return t[0].DisplacementMM
	}
	if force >= t[len(t)-1].ForceN {
		return t[len(t)-1].DisplacementMM
	}
	// Find the bracketing segment. Forces landing exactly on a table point
	// return that point's displacement bit-for-bit.
	for i := 1; i < len(t); i++ {
		if force == t[i].ForceN {
			return t[i].DisplacementMM
		}
		if force < t[i].ForceN {
			lo, hi := t[i-1], t[i]
			frac := (force - lo.ForceN) / (hi.ForceN - lo.ForceN)
			return lo.DisplacementMM + frac*(hi.DisplacementMM-lo.DisplacementMM)
		}
	}
	return t[len(t)-1].DisplacementMM // unreachable, clamped above
}

// Correct subtracts the machine's own deformation from each measured
// displacement: corrected = measured − Interpolate(force). The inputs are not
// mutated; the result is a fresh slice.
func (t Table) Correct(force, displacement []float64) ([]float64, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if len(force) != len(displacement) {
		return nil, fmt.Errorf("analysis: force and displacement length mismatch: %d vs %d",
			len(force), len(displacement))
	}
	out := make([]float64, len(force))
	for i := range force {
		out[i] = displacement[i] - t.Interpolate(force[i])
	}
	return out, nil
}
