package swarm

import (
	"testing"
)

func storeWith(ballots ...Ballot) *BallotStore {
	s := NewBallotStore()
	for _, b := range ballots {
		s.Append(b)
	}
	return s
}

// TestBallotStoreAppendOrder tests that All preserves arrival order
func TestBallotStoreAppendOrder(t *testing.T) {
	s := storeWith(
		Ballot{Iteration: 1, Vote: VoteYes, Reasoning: "first"},
		Ballot{Iteration: 1, Vote: VoteNo, Reasoning: "second"},
		Ballot{Iteration: 2, Vote: VoteNull, Reasoning: "third"},
	)

	if s.Len() != 3 {
		t.Fatalf("Expected 3 ballots, got %d", s.Len())
	}
	all := s.All()
	for i, want := range []string{"first", "second", "third"} {
		if all[i].Reasoning != want {
			t.Errorf("Position %d: expected %q, got %q", i, want, all[i].Reasoning)
		}
	}
}

// TestBallotStoreAllIsCopy tests that callers cannot mutate the history
func TestBallotStoreAllIsCopy(t *testing.T) {
	s := storeWith(Ballot{Vote: VoteYes, Reasoning: "original"})

	all := s.All()
	all[0].Reasoning = "tampered"

	if s.All()[0].Reasoning != "original" {
		t.Error("Mutating the returned slice leaked into the store")
	}
}

// TestBallotStoreByIteration tests the kappa input table
func TestBallotStoreByIteration(t *testing.T) {
	s := storeWith(
		Ballot{Iteration: 1, Vote: VoteYes},
		Ballot{Iteration: 1, Vote: VoteYes},
		Ballot{Iteration: 1, Vote: VoteNo},
		Ballot{Iteration: 2, Vote: VoteNull},
		Ballot{Iteration: 2, Vote: Vote("MAYBE")}, // unrecognized, skipped
	)

	table := s.ByIteration()
	if got := table[1]; got != [NumCategories]int{2, 1, 0} {
		t.Errorf("Iteration 1: expected counts {2,1,0}, got %v", got)
	}
	if got := table[2]; got != [NumCategories]int{0, 0, 1} {
		t.Errorf("Iteration 2: expected counts {0,0,1}, got %v", got)
	}
}

// TestBallotStoreByModel tests the ESS input clustering
func TestBallotStoreByModel(t *testing.T) {
	s := storeWith(
		Ballot{Model: "model-a", Vote: VoteYes},
		Ballot{Model: "model-b", Vote: VoteNo},
		Ballot{Model: "model-a", Vote: VoteNull},
		Ballot{Model: "model-a", Vote: Vote("???")}, // unrecognized, skipped
	)

	clusters := s.ByModel()
	if len(clusters["model-a"]) != 2 {
		t.Errorf("Expected 2 recognized votes for model-a, got %d", len(clusters["model-a"]))
	}
	if len(clusters["model-b"]) != 1 {
		t.Errorf("Expected 1 vote for model-b, got %d", len(clusters["model-b"]))
	}
}
