package rng

import (
	"context"
	"hash/fnv"
	"math/rand"
)

// Adapter implements ports.RNGPort with FNV-derived stream seeds so distinct
// operation names get independent deterministic streams from one base seed.
type Adapter struct{}

// NewAdapter creates an RNG adapter
func NewAdapter() *Adapter {
	return &Adapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (a *Adapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	h := fnv.New64a()
	h.Write([]byte(name))
	derived := int64(h.Sum64()) ^ seed
	return rand.New(rand.NewSource(derived)), nil
}
