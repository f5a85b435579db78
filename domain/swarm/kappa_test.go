package swarm

import (
	"math"
	"math/rand"
	"testing"
)

// TestFleissKappaUnanimity tests that perfect split agreement scores 1
func TestFleissKappaUnanimity(t *testing.T) {
	// Each iteration is unanimous but the iterations disagree, so expected
	// agreement stays below 1 and kappa is exactly 1.
	table := map[int][NumCategories]int{
		1: {3, 0, 0},
		2: {0, 3, 0},
	}
	k := FleissKappa(table)
	if !k.Defined {
		t.Fatal("Expected kappa to be defined")
	}
	if math.Abs(k.Value-1.0) > 1e-12 {
		t.Errorf("Expected kappa 1, got %v", k.Value)
	}
}

// TestFleissKappaKnownValue tests an exactly computable negative case
func TestFleissKappaKnownValue(t *testing.T) {
	// Two subjects, both split 2/1/0:
	// P_obs = 1/3, P_exp = 5/9, kappa = -1/2
	table := map[int][NumCategories]int{
		1: {2, 1, 0},
		2: {2, 1, 0},
	}
	k := FleissKappa(table)
	if !k.Defined {
		t.Fatal("Expected kappa to be defined")
	}
	if math.Abs(k.Value-(-0.5)) > 1e-12 {
		t.Errorf("Expected kappa -0.5, got %v", k.Value)
	}
}

// TestFleissKappaSingleSubject tests that one iteration yields undefined
// agreement rather than a number
func TestFleissKappaSingleSubject(t *testing.T) {
	table := map[int][NumCategories]int{
		1: {2, 1, 0},
	}
	if k := FleissKappa(table); k.Defined {
		t.Errorf("Expected undefined kappa for a single subject, got %v", k.Value)
	}
}

// TestFleissKappaDegenerateMarginal tests the all-one-category history
func TestFleissKappaDegenerateMarginal(t *testing.T) {
	// Every ballot is YES: trivial perfect agreement, kappa 1
	unanimous := map[int][NumCategories]int{
		1: {3, 0, 0},
		2: {3, 0, 0},
		3: {3, 0, 0},
	}
	k := FleissKappa(unanimous)
	if !k.Defined || k.Value != 1.0 {
		t.Errorf("Expected kappa 1 for uniform unanimous history, got %+v", k)
	}
}

// TestFleissKappaExcludesThinSubjects tests that iterations with fewer than
// two recognized ballots are dropped from the table
func TestFleissKappaExcludesThinSubjects(t *testing.T) {
	withThin := map[int][NumCategories]int{
		1: {3, 0, 0},
		2: {0, 3, 0},
		3: {1, 0, 0}, // starved down to one ballot
	}
	without := map[int][NumCategories]int{
		1: {3, 0, 0},
		2: {0, 3, 0},
	}
	a, b := FleissKappa(withThin), FleissKappa(without)
	if a != b {
		t.Errorf("Expected thin subject to be excluded: %+v vs %+v", a, b)
	}

	// Only thin subjects: nothing left to compare
	allThin := map[int][NumCategories]int{
		1: {1, 0, 0},
		2: {0, 1, 0},
	}
	if k := FleissKappa(allThin); k.Defined {
		t.Errorf("Expected undefined kappa with all subjects excluded, got %v", k.Value)
	}
}

// TestFleissKappaRandomAgreementNearZero tests that a balanced disagreement
// pattern lands near zero
func TestFleissKappaRandomAgreementNearZero(t *testing.T) {
	// Marginals are uniform and per-subject splits sit close to chance
	table := map[int][NumCategories]int{
		1: {2, 2, 2},
		2: {2, 2, 2},
		3: {2, 2, 2},
	}
	k := FleissKappa(table)
	if !k.Defined {
		t.Fatal("Expected kappa to be defined")
	}
	// P_obs = (3*(4-2)/ (6*5)) ... all subjects identical: (12-6)/30 = 0.2
	// P_exp = 3*(1/3)^2 = 1/3, kappa = (0.2 - 1/3)/(2/3) = -0.2
	if math.Abs(k.Value-(-0.2)) > 1e-12 {
		t.Errorf("Expected kappa -0.2, got %v", k.Value)
	}
}

// TestFleissKappaUniformVotesNearZero tests that independently uniform votes
// over many iterations score close to chance agreement
func TestFleissKappaUniformVotesNearZero(t *testing.T) {
	src := rand.New(rand.NewSource(77))

	table := map[int][NumCategories]int{}
	for iter := 1; iter <= 500; iter++ {
		var row [NumCategories]int
		for rater := 0; rater < 5; rater++ {
			row[src.Intn(NumCategories)]++
		}
		table[iter] = row
	}

	k := FleissKappa(table)
	if !k.Defined {
		t.Fatal("Expected kappa to be defined over 500 subjects")
	}
	if math.Abs(k.Value) > 0.06 {
		t.Errorf("Expected kappa near 0 for uniform independent votes, got %v", k.Value)
	}
}

// TestFleissKappaBounded tests the <=1 upper bound over varied tables
func TestFleissKappaBounded(t *testing.T) {
	tables := []map[int][NumCategories]int{
		{1: {5, 0, 0}, 2: {0, 5, 0}, 3: {0, 0, 5}},
		{1: {4, 1, 0}, 2: {1, 4, 0}, 3: {0, 1, 4}},
		{1: {2, 2, 1}, 2: {1, 2, 2}, 3: {2, 1, 2}},
	}
	for i, table := range tables {
		k := FleissKappa(table)
		if !k.Defined {
			t.Errorf("Table %d: expected defined kappa", i)
			continue
		}
		if k.Value > 1.0+1e-12 {
			t.Errorf("Table %d: kappa %v exceeds 1", i, k.Value)
		}
	}
}
