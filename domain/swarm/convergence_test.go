package swarm

import (
	"math"
	"testing"
)

// TestKLDivergenceIdentical tests that identical distributions diverge by zero
func TestKLDivergenceIdentical(t *testing.T) {
	p := []float64{0.5, 0.3, 0.2}
	if kl := KLDivergenceBits(p, p); kl != 0 {
		t.Errorf("Expected zero divergence for identical distributions, got %v", kl)
	}
}

// TestKLDivergenceNonNegative tests non-negativity over a grid of
// strictly positive distributions
func TestKLDivergenceNonNegative(t *testing.T) {
	dists := [][]float64{
		{1.0 / 3, 1.0 / 3, 1.0 / 3},
		{0.8, 0.1, 0.1},
		{0.05, 0.9, 0.05},
		{0.4, 0.35, 0.25},
	}
	for i, p := range dists {
		for j, q := range dists {
			kl := KLDivergenceBits(p, q)
			if kl < 0 {
				t.Errorf("D(dists[%d] || dists[%d]) = %v, want >= 0", i, j, kl)
			}
			if i != j && kl == 0 {
				t.Errorf("D(dists[%d] || dists[%d]) = 0 for distinct distributions", i, j)
			}
		}
	}
}

// TestKLDivergenceBitsUnits tests the nats-to-bits conversion on a known value
func TestKLDivergenceBitsUnits(t *testing.T) {
	// D(p || q) with p=(1/2,1/4,1/4), q=(1/4,1/2,1/4) is exactly 1/4 bit
	p := []float64{0.5, 0.25, 0.25}
	q := []float64{0.25, 0.5, 0.25}
	if kl := KLDivergenceBits(p, q); math.Abs(kl-0.25) > 1e-12 {
		t.Errorf("Expected 0.25 bits, got %v", kl)
	}
}

// TestConvergenceFirstSnapshotNeverTriggers tests that the detector only
// compares consecutive pairs
func TestConvergenceFirstSnapshotNeverTriggers(t *testing.T) {
	d := NewConvergenceDetector(math.Inf(1), 1)
	if d.Observe([NumCategories]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}) {
		t.Error("First snapshot must not trigger convergence even with infinite epsilon")
	}
}

// TestConvergencePatience tests that the streak must reach patience before
// triggering
func TestConvergencePatience(t *testing.T) {
	d := NewConvergenceDetector(0.01, 2)
	stable := [NumCategories]float64{0.6, 0.3, 0.1}

	if d.Observe(stable) {
		t.Error("Snapshot 1: no previous snapshot, must not converge")
	}
	if d.Observe(stable) {
		t.Error("Snapshot 2: streak 1 of 2, must not converge")
	}
	if !d.Observe(stable) {
		t.Error("Snapshot 3: streak 2 of 2, expected convergence")
	}
}

// TestConvergenceStreakResets tests that one divergent snapshot restarts the
// count
func TestConvergenceStreakResets(t *testing.T) {
	d := NewConvergenceDetector(0.001, 2)
	stable := [NumCategories]float64{0.6, 0.3, 0.1}
	jump := [NumCategories]float64{0.2, 0.7, 0.1}

	d.Observe(stable)
	d.Observe(stable) // streak 1
	if d.Observe(jump) {
		t.Error("Divergent snapshot must not converge")
	}
	if d.Streak() != 0 {
		t.Errorf("Expected streak reset to 0, got %d", d.Streak())
	}
	d.Observe(jump) // streak 1 again
	if !d.Observe(jump) {
		t.Error("Expected convergence after rebuilt streak")
	}
}

// TestConvergenceZeroEpsilon tests that epsilon 0 never converges, since KL
// is compared strictly below the threshold
func TestConvergenceZeroEpsilon(t *testing.T) {
	d := NewConvergenceDetector(0, 1)
	stable := [NumCategories]float64{0.5, 0.25, 0.25}
	for i := 0; i < 10; i++ {
		if d.Observe(stable) {
			t.Fatalf("Epsilon 0 converged at snapshot %d", i+1)
		}
	}
}
