package ports

import (
	"context"

	"veritas/domain/core"
	"veritas/domain/swarm"
)

// EvaluationRequest carries everything one committee member needs to vote
type EvaluationRequest struct {
	Iteration   int
	Archetype   swarm.Archetype
	Model       core.ModelID
	Bundle      *swarm.EvidenceBundle
	Temperature float64
}

// EvaluatorPort is the black box that turns an evaluation request into a
// structured ballot. The engine never inspects how the vote was produced;
// a failed or unparseable evaluation surfaces as an error and is excluded.
type EvaluatorPort interface {
	Evaluate(ctx context.Context, req EvaluationRequest) (*swarm.Ballot, error)
}
