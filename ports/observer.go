package ports

import (
	"veritas/domain/swarm"
)

// RunObserver receives asynchronous run events: one snapshot per completed
// iteration and exactly one verdict at termination. Implementations must not
// block the orchestration loop.
type RunObserver interface {
	OnSnapshot(snapshot swarm.IterationSnapshot)
	OnVerdict(verdict *swarm.VerdictDistribution)
}
