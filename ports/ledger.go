package ports

import (
	"context"

	"veritas/domain/core"
	"veritas/domain/swarm"
)

// VerdictWriterPort provides append-only write access to finished runs.
// This is the ONLY way to persist a verdict - one write per run.
type VerdictWriterPort interface {
	StoreVerdict(ctx context.Context, verdict *swarm.VerdictDistribution) error
}

// VerdictReaderPort provides read-only access to stored runs for audit,
// replay, and UI/API access.
type VerdictReaderPort interface {
	GetVerdict(ctx context.Context, runID core.RunID) (*swarm.VerdictDistribution, error)
	ListVerdicts(ctx context.Context, limit, offset int) ([]swarm.VerdictDistribution, error)
	GetBallots(ctx context.Context, runID core.RunID) ([]swarm.Ballot, error)
}

// VerdictLedgerPort combines read and write access
type VerdictLedgerPort interface {
	VerdictWriterPort
	VerdictReaderPort
}
