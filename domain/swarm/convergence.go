package swarm

import (
	"math"

	gstat "gonum.org/v1/gonum/stat"
)

// ConvergenceDetector watches consecutive posterior snapshots and signals
// early stopping once the KL divergence between them stays below epsilon for
// patience iterations in a row. Dirichlet smoothing keeps every component of
// the compared distributions strictly positive, so the divergence is always
// well-defined.
type ConvergenceDetector struct {
	epsilon  float64
	patience int

	prev   *[NumCategories]float64
	streak int
}

// NewConvergenceDetector creates a detector with the given threshold and
// patience. The first snapshot can never trigger convergence.
func NewConvergenceDetector(epsilon float64, patience int) *ConvergenceDetector {
	return &ConvergenceDetector{epsilon: epsilon, patience: patience}
}

// Observe feeds the detector one posterior snapshot and reports whether
// convergence triggered on it.
func (d *ConvergenceDetector) Observe(mean [NumCategories]float64) bool {
	if d.prev == nil {
		current := mean
		d.prev = &current
		return false
	}

	kl := KLDivergenceBits(mean[:], d.prev[:])
	current := mean
	d.prev = &current

	if kl < d.epsilon {
		d.streak++
	} else {
		d.streak = 0
	}
	return d.streak >= d.patience
}

// Streak returns the current consecutive-below-threshold count
func (d *ConvergenceDetector) Streak() int {
	return d.streak
}

// KLDivergenceBits computes D_KL(p || q) in bits. Zero exactly when the two
// distributions are identical, non-negative otherwise.
func KLDivergenceBits(p, q []float64) float64 {
	return gstat.KullbackLeibler(p, q) / math.Ln2
}
