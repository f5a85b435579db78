package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named
	// operation. Identical (name, seed) pairs replay identical streams, so a
	// rerun with the same seed samples the same committees.
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)
}
