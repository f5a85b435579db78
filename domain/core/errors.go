package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrRunNotFound     = fmt.Errorf("%w: run", ErrNotFound)
	ErrVerdictNotFound = fmt.Errorf("%w: verdict", ErrNotFound)

	// Configuration errors - rejected before any iteration runs
	ErrInvalidConfig        = errors.New("invalid run configuration")
	ErrCommitteeTooLarge    = fmt.Errorf("%w: committee size exceeds archetype pool", ErrInvalidConfig)
	ErrCommitteeEmpty       = fmt.Errorf("%w: committee size must be at least 1", ErrInvalidConfig)
	ErrNegativeEpsilon      = fmt.Errorf("%w: convergence epsilon must be >= 0", ErrInvalidConfig)
	ErrInvalidPatience      = fmt.Errorf("%w: convergence patience must be >= 1", ErrInvalidConfig)
	ErrInvalidConfidence    = fmt.Errorf("%w: credible interval confidence must lie in (0, 1)", ErrInvalidConfig)
	ErrInvalidSampleCount   = fmt.Errorf("%w: credible interval sample count must be > 0", ErrInvalidConfig)
	ErrInvalidMaxIterations = fmt.Errorf("%w: max iterations must be > 0", ErrInvalidConfig)

	// Run errors
	ErrRunAborted     = errors.New("run aborted")
	ErrRunNotIdle     = errors.New("run already started")
	ErrStarvedRun     = fmt.Errorf("%w: too many consecutive starved iterations", ErrRunAborted)
	ErrRunCancelled   = fmt.Errorf("%w: cancelled by caller", ErrRunAborted)
	ErrEvidenceCommit = errors.New("evidence commitment mismatch")

	// Metric errors
	ErrMetricUndefined = errors.New("metric undefined")
)

// Error constructors with context
func NewConfigError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, reason)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

func IsRunAbort(err error) bool {
	return errors.Is(err, ErrRunAborted)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
