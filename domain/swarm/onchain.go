package swarm

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"veritas/domain/core"
)

// Fixed-point encoding helpers for the ledger collaborator. The contract
// stores probabilities and kappa as uint256 scaled by 1e18; the engine only
// prepares the encoding and stays agnostic to the transport.

var wad = new(big.Float).SetFloat64(1e18)

// ToFixedPoint converts a probability in [0,1] to its 1e18-scaled integer
func ToFixedPoint(value float64) (*big.Int, error) {
	if value < 0 || value > 1 {
		return nil, fmt.Errorf("value %f outside [0,1]", value)
	}
	scaled := new(big.Float).Mul(new(big.Float).SetFloat64(value), wad)
	out, _ := scaled.Int(nil)
	return out, nil
}

// FromFixedPoint converts a 1e18-scaled integer back to a float
func FromFixedPoint(value *big.Int) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(value), wad).Float64()
	return f
}

// ToBytes32 left-pads a hex hash (with or without 0x prefix) to 32 bytes
func ToBytes32(h core.Hash) ([32]byte, error) {
	var out [32]byte
	clean := strings.TrimPrefix(string(h), "0x")
	if len(clean) > 64 {
		return out, fmt.Errorf("hash %q longer than 32 bytes", h)
	}
	clean = strings.Repeat("0", 64-len(clean)) + clean
	decoded, err := hex.DecodeString(clean)
	if err != nil {
		return out, fmt.Errorf("invalid hex in hash %q: %w", h, err)
	}
	copy(out[:], decoded)
	return out, nil
}

// LedgerRecord is the fixed-point projection of a verdict for posting
type LedgerRecord struct {
	QuestionHash [32]byte
	Commitment   [32]byte
	PYes         *big.Int
	PNo          *big.Int
	PNull        *big.Int
	FleissKappa  *big.Int
}

// EncodeForLedger projects a verdict into its on-chain representation.
// An undefined kappa encodes as zero.
func EncodeForLedger(v *VerdictDistribution) (*LedgerRecord, error) {
	qh, err := ToBytes32(core.Hash(core.NewQuestionHash(v.Question)))
	if err != nil {
		return nil, err
	}
	ch, err := ToBytes32(core.Hash(v.Commitment))
	if err != nil {
		return nil, err
	}

	rec := &LedgerRecord{QuestionHash: qh, Commitment: ch}
	if rec.PYes, err = ToFixedPoint(v.PYes()); err != nil {
		return nil, err
	}
	if rec.PNo, err = ToFixedPoint(v.PNo()); err != nil {
		return nil, err
	}
	if rec.PNull, err = ToFixedPoint(v.PNull()); err != nil {
		return nil, err
	}
	kappa := 0.0
	if v.FleissKappa.Defined && v.FleissKappa.Value > 0 {
		kappa = v.FleissKappa.Value
	}
	if rec.FleissKappa, err = ToFixedPoint(kappa); err != nil {
		return nil, err
	}
	return rec, nil
}
