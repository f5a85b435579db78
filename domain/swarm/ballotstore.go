package swarm

import (
	"veritas/domain/core"
)

// BallotStore is the append-only record of every ballot in one run, ordered
// by (iteration, arrival). It is owned and mutated by a single driver; no
// internal locking.
type BallotStore struct {
	ballots []Ballot
}

// NewBallotStore creates an empty store for a fresh run
func NewBallotStore() *BallotStore {
	return &BallotStore{ballots: make([]Ballot, 0, 64)}
}

// Append records a ballot in arrival order
func (s *BallotStore) Append(b Ballot) {
	s.ballots = append(s.ballots, b)
}

// Len returns the number of recorded ballots
func (s *BallotStore) Len() int {
	return len(s.ballots)
}

// All returns a copy of the full history in append order
func (s *BallotStore) All() []Ballot {
	out := make([]Ballot, len(s.ballots))
	copy(out, s.ballots)
	return out
}

// ByIteration builds the iteration x category count table over recognized
// votes, keyed by iteration index. Input to Fleiss' kappa.
func (s *BallotStore) ByIteration() map[int][NumCategories]int {
	table := make(map[int][NumCategories]int)
	for _, b := range s.ballots {
		idx := b.Vote.Index()
		if idx < 0 {
			continue
		}
		row := table[b.Iteration]
		row[idx]++
		table[b.Iteration] = row
	}
	return table
}

// ByModel groups recognized votes by backing-model id. Input to the
// effective-sample-size correction.
func (s *BallotStore) ByModel() map[core.ModelID][]Vote {
	clusters := make(map[core.ModelID][]Vote)
	for _, b := range s.ballots {
		if !b.Vote.IsValid() {
			continue
		}
		clusters[b.Model] = append(clusters[b.Model], b.Vote)
	}
	return clusters
}
