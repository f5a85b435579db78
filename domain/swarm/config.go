package swarm

import (
	"time"

	"veritas/domain/core"
)

// RunConfig holds the tunables for one run. Validated before the first
// iteration; an invalid configuration never starts a run.
type RunConfig struct {
	MaxIterations        int           `json:"max_iterations"`
	CommitteeSize        int           `json:"committee_size"`
	ConvergenceEpsilon   float64       `json:"convergence_epsilon"`
	ConvergencePatience  int           `json:"convergence_patience"`
	CredibleSamples      int           `json:"credible_interval_samples"`
	CredibleConfidence   float64       `json:"credible_interval_confidence"`
	PerMemberTimeout     time.Duration `json:"per_member_timeout"`
	IterationTimeout     time.Duration `json:"iteration_timeout"`
	MaxStarvedIterations int           `json:"max_consecutive_starved_iterations"`
	Temperature          float64       `json:"temperature"`
	Seed                 int64         `json:"seed"`
}

// DefaultRunConfig mirrors the settings the demo runs with
func DefaultRunConfig() RunConfig {
	return RunConfig{
		MaxIterations:        10,
		CommitteeSize:        3,
		ConvergenceEpsilon:   0.01,
		ConvergencePatience:  2,
		CredibleSamples:      10000,
		CredibleConfidence:   0.95,
		PerMemberTimeout:     45 * time.Second,
		IterationTimeout:     2 * time.Minute,
		MaxStarvedIterations: 3,
		Temperature:          0.8,
	}
}

// Validate rejects invalid parameters against the archetype pool size
func (c RunConfig) Validate(poolSize int) error {
	if c.MaxIterations < 1 {
		return core.ErrInvalidMaxIterations
	}
	if c.CommitteeSize < 1 {
		return core.ErrCommitteeEmpty
	}
	if c.CommitteeSize > poolSize {
		return core.ErrCommitteeTooLarge
	}
	if c.ConvergenceEpsilon < 0 {
		return core.ErrNegativeEpsilon
	}
	if c.ConvergencePatience < 1 {
		return core.ErrInvalidPatience
	}
	if c.CredibleSamples < 1 {
		return core.ErrInvalidSampleCount
	}
	if c.CredibleConfidence <= 0 || c.CredibleConfidence >= 1 {
		return core.ErrInvalidConfidence
	}
	if c.MaxStarvedIterations < 1 {
		return core.NewConfigError("max_consecutive_starved_iterations", "must be >= 1")
	}
	return nil
}
