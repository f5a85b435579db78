package swarm

import (
	"math"
	randv2 "math/rand/v2"

	"github.com/montanaflynn/stats"
	gstat "gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"veritas/domain/core"
)

// PosteriorEstimator maintains running vote counts across all ballots seen so
// far and derives the Dirichlet-multinomial posterior. A uniform Dirichlet
// (1,1,1) prior keeps every category strictly inside (0,1) even at zero
// ballots (Cromwell's rule).
type PosteriorEstimator struct {
	counts  [NumCategories]int
	dropped int
}

// NewPosteriorEstimator creates an estimator with zero counts
func NewPosteriorEstimator() *PosteriorEstimator {
	return &PosteriorEstimator{}
}

// Update increments the counter for the ballot's vote. Ballots with an
// unrecognized vote are counted as dropped, never merged into a category.
// Returns true when the ballot was counted.
func (p *PosteriorEstimator) Update(b Ballot) bool {
	idx := b.Vote.Index()
	if idx < 0 {
		p.dropped++
		return false
	}
	p.counts[idx]++
	return true
}

// Counts returns the running (n_yes, n_no, n_null) vector
func (p *PosteriorEstimator) Counts() [NumCategories]int {
	return p.counts
}

// Total returns the number of counted ballots
func (p *PosteriorEstimator) Total() int {
	return p.counts[0] + p.counts[1] + p.counts[2]
}

// Dropped returns the number of ballots excluded for unrecognized votes
func (p *PosteriorEstimator) Dropped() int {
	return p.dropped
}

// Mean returns the posterior mean (n_k + 1) / (N + 3) per category.
// Components always sum to 1 and each lies strictly in (0,1).
func (p *PosteriorEstimator) Mean() [NumCategories]float64 {
	total := float64(p.Total() + NumCategories)
	var mean [NumCategories]float64
	for i, n := range p.counts {
		mean[i] = float64(n+1) / total
	}
	return mean
}

// Entropy returns the Shannon entropy of the posterior mean, in bits
func (p *PosteriorEstimator) Entropy() float64 {
	mean := p.Mean()
	return EntropyBits(mean[:])
}

// CredibleIntervals estimates equal-tailed credible intervals per category by
// drawing samples independent Dirichlet variates from the posterior
// Dirichlet(n_yes+1, n_no+1, n_null+1). Each variate comes from normalized
// Gamma(alpha_k, 1) draws. The seed makes the simulation reproducible.
func (p *PosteriorEstimator) CredibleIntervals(seed uint64, confidence float64, samples int) (map[Vote]CredibleInterval, error) {
	if confidence <= 0 || confidence >= 1 {
		return nil, core.ErrInvalidConfidence
	}
	if samples < 1 {
		return nil, core.ErrInvalidSampleCount
	}

	src := randv2.NewPCG(seed, seed)
	gammas := [NumCategories]distuv.Gamma{}
	for i, n := range p.counts {
		gammas[i] = distuv.Gamma{Alpha: float64(n + 1), Beta: 1, Src: src}
	}

	draws := [NumCategories][]float64{}
	for i := range draws {
		draws[i] = make([]float64, samples)
	}
	for s := 0; s < samples; s++ {
		var g [NumCategories]float64
		var sum float64
		for i := range gammas {
			g[i] = gammas[i].Rand()
			sum += g[i]
		}
		for i := range g {
			draws[i][s] = g[i] / sum
		}
	}

	tail := (1 - confidence) / 2 * 100
	intervals := make(map[Vote]CredibleInterval, NumCategories)
	for i, cat := range Categories {
		lo, err := stats.Percentile(draws[i], tail)
		if err != nil {
			return nil, err
		}
		hi, err := stats.Percentile(draws[i], 100-tail)
		if err != nil {
			return nil, err
		}
		intervals[cat] = CredibleInterval{Lower: lo, Upper: hi}
	}
	return intervals, nil
}

// EntropyBits computes Shannon entropy of a probability vector in bits
func EntropyBits(p []float64) float64 {
	return gstat.Entropy(p) / math.Ln2
}
