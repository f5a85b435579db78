package swarm

import (
	"veritas/domain/core"
)

// Vote is one evaluator's categorical answer to the question
type Vote string

const (
	VoteYes  Vote = "YES"
	VoteNo   Vote = "NO"
	VoteNull Vote = "NULL"
)

// Categories lists the vote categories in canonical order (YES, NO, NULL).
// Every count vector and probability vector in this package follows it.
var Categories = []Vote{VoteYes, VoteNo, VoteNull}

// NumCategories is the size of the vote space
const NumCategories = 3

// IsValid reports whether v is one of the recognized categories
func (v Vote) IsValid() bool {
	return v == VoteYes || v == VoteNo || v == VoteNull
}

// Index returns the canonical position of v, or -1 for unrecognized votes
func (v Vote) Index() int {
	switch v {
	case VoteYes:
		return 0
	case VoteNo:
		return 1
	case VoteNull:
		return 2
	}
	return -1
}

// Archetype is an opaque evaluator style used purely as a sampling label.
// All evaluation behavior lives behind the evaluator port.
type Archetype struct {
	ID          core.ArchetypeID `json:"id"`
	DisplayName string           `json:"display_name"`
}

// EvidenceItem is one frozen piece of source material, owned upstream.
// The engine references items only by ID and never re-scores them.
type EvidenceItem struct {
	ID           int            `json:"id"`
	Source       string         `json:"source"`
	Snippet      string         `json:"snippet"`
	QualityScore float64        `json:"quality_score"`
	Timestamp    core.Timestamp `json:"timestamp"`
}

// EvidenceBundle is the hash-committed evidence set a question is judged against
type EvidenceBundle struct {
	Question   string              `json:"question"`
	Rubric     []string            `json:"rubric"`
	Evidence   []EvidenceItem      `json:"evidence"`
	Commitment core.CommitmentHash `json:"commitment"`
}

// Ballot is one evaluator's structured vote plus rationale for one iteration.
// Immutable once appended to the store.
type Ballot struct {
	ID           core.BallotID      `json:"id"`
	Iteration    int                `json:"iteration"`
	Archetype    core.ArchetypeID   `json:"archetype"`
	Model        core.ModelID       `json:"model"`
	Vote         Vote               `json:"vote"`
	Supporting   []int              `json:"supporting_evidence_ids"`
	Refuting     []int              `json:"refuting_evidence_ids"`
	RubricScores map[string]float64 `json:"rubric_scores"`
	Reasoning    string             `json:"reasoning"`
}

// IterationSnapshot is the posterior state after one completed iteration
type IterationSnapshot struct {
	Iteration     int                    `json:"iteration"`
	Counts        [NumCategories]int     `json:"counts"`
	PosteriorMean [NumCategories]float64 `json:"posterior_mean"`
	Entropy       float64                `json:"entropy"`
	Timestamp     core.Timestamp         `json:"timestamp"`
}

// CredibleInterval is a Bayesian interval for one category's probability
type CredibleInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Kappa carries Fleiss' kappa with an explicit defined flag, so the
// degenerate cases surface as "undefined" instead of a silent NaN.
type Kappa struct {
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
}

// TerminationReason records how a run ended
type TerminationReason string

const (
	TerminationConverged TerminationReason = "converged"
	TerminationExhausted TerminationReason = "exhausted"
	TerminationFailed    TerminationReason = "failed"
)

// VerdictDistribution is the final result of one run. Produced exactly once,
// immutable afterwards.
type VerdictDistribution struct {
	RunID               core.RunID                `json:"run_id"`
	Question            string                    `json:"question"`
	Commitment          core.CommitmentHash       `json:"commitment"`
	PosteriorMean       [NumCategories]float64    `json:"posterior_mean"`
	CredibleIntervals   map[Vote]CredibleInterval `json:"credible_intervals_95"`
	Entropy             float64                   `json:"entropy"`
	FleissKappa         Kappa                     `json:"fleiss_kappa"`
	EffectiveSampleSize float64                   `json:"effective_sample_size"`
	Iterations          int                       `json:"iterations"`
	CommitteeSize       int                       `json:"committee_size"`
	ConvergedAt         *int                      `json:"converged_at_iteration"`
	Termination         TerminationReason         `json:"termination"`
	Incomplete          bool                      `json:"incomplete"`
	Ballots             []Ballot                  `json:"ballots"`
	Snapshots           []IterationSnapshot       `json:"snapshots"`
	CreatedAt           core.Timestamp            `json:"created_at"`
}

// PYes returns the posterior mean for YES
func (v *VerdictDistribution) PYes() float64 { return v.PosteriorMean[0] }

// PNo returns the posterior mean for NO
func (v *VerdictDistribution) PNo() float64 { return v.PosteriorMean[1] }

// PNull returns the posterior mean for NULL
func (v *VerdictDistribution) PNull() float64 { return v.PosteriorMean[2] }
