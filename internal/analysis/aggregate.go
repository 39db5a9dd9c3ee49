package analysis

import "math"

// Property selects which scalar a collection statistic is computed over.
type Property int

const (
	PropTensileStrength Property = iota
	PropEModulus
	PropElongation
)

// Stats is a mean with sample standard deviation over N values.
type Stats struct {
	Mean float64
	SD   float64
	N    int
}

// Collection is an insertion-ordered list of labeled specimens for overlay
// and cross-specimen statistics. Labels need not be unique.
type Collection struct {
	labels    []string
	specimens []*Specimen
}

// Add appends a specimen under the given label.
func (c *Collection) Add(label string, s *Specimen) {
	c.labels = append(c.labels, label)
	c.specimens = append(c.specimens, s)
}

// Len returns the number of specimens.
func (c *Collection) Len() int { return len(c.specimens) }

// At returns the i'th label and specimen in insertion order.
func (c *Collection) At(i int) (string, *Specimen) {
	return c.labels[i], c.specimens[i]
}

// Stats computes mean and sample standard deviation (N−1 denominator) of the
// selected property. Specimens without an available modulus are skipped for
// PropEModulus. Fewer than two values reports ErrInsufficientData instead of
// fabricating a NaN.
func (c *Collection) Stats(p Property) (Stats, error) {
	var values []float64
	for _, s := range c.specimens {
		switch p {
		case PropTensileStrength:
			values = append(values, s.TensileStrengthMPa)
		case PropEModulus:
			if s.EModulus != nil {
				values = append(values, s.EModulus.MPa)
			}
		case PropElongation:
			values = append(values, s.ElongationAtBreakPct)
		}
	}
	if len(values) < 2 {
		return Stats{}, ErrInsufficientData
	}

	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	sd := math.Sqrt(ss / float64(len(values)-1))
	return Stats{Mean: m, SD: sd, N: len(values)}, nil
}
