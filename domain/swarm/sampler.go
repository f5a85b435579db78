package swarm

import (
	"math/rand"

	"veritas/domain/core"
)

// SampleCommittee draws m distinct archetypes from the pool, uniformly
// without replacement. Pure function of the pool and the RNG stream;
// independent across calls so no archetype is systematically omitted.
func SampleCommittee(rng *rand.Rand, pool []Archetype, m int) ([]Archetype, error) {
	if m < 1 {
		return nil, core.ErrCommitteeEmpty
	}
	if m > len(pool) {
		return nil, core.ErrCommitteeTooLarge
	}

	// Partial Fisher-Yates over an index permutation; the pool itself is
	// never reordered.
	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}
	committee := make([]Archetype, m)
	for i := 0; i < m; i++ {
		j := i + rng.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		committee[i] = pool[idx[i]]
	}
	return committee, nil
}
