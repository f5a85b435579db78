package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// ZeroHash is the commitment of an empty evidence bundle
const ZeroHash Hash = "0x0000000000000000000000000000000000000000000000000000000000000000"

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Hex returns the hash without any 0x prefix
func (h Hash) Hex() string {
	return strings.TrimPrefix(string(h), "0x")
}

// Domain-specific hash types
type (
	CommitmentHash Hash
	QuestionHash   Hash
)

// Constructors
func NewQuestionHash(question string) QuestionHash {
	return QuestionHash(NewHash([]byte(question)))
}

// String conversions
func (h CommitmentHash) String() string { return Hash(h).String() }
func (h QuestionHash) String() string   { return Hash(h).String() }

// ComputeCommitment builds a Merkle root over the ordered evidence leaves.
// Odd levels duplicate the trailing leaf so every node has two children.
func ComputeCommitment(leaves []string) CommitmentHash {
	if len(leaves) == 0 {
		return CommitmentHash(ZeroHash)
	}

	level := make([]string, len(leaves))
	for i, leaf := range leaves {
		level[i] = NewHash([]byte(leaf)).String()
	}

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]string, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, NewHash([]byte(level[i]+level[i+1])).String())
		}
		level = next
	}

	return CommitmentHash("0x" + level[0])
}
