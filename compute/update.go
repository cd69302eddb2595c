package compute

import (
	"fmt"

	"github.com/consensys/pedersen/backend"
	"github.com/consensys/pedersen/curve"
	"github.com/consensys/pedersen/sequence"
)

// UpdateCommitments folds new column data into existing commitments in place,
// using the homomorphism Commit(a)+Commit(b) = Commit(a+b): for each column k
// it computes the delta commitment of cols[k] and composes it with
// commitments[k] by group addition.
//
// Dense columns commit at offset against the canonical stream; sparse columns
// address generators through their own indices and ignore offset. A nil or
// empty prior commitment stands for the identity, so UpdateCommitments also
// bootstraps fresh commitments.
//
// The composition is only meaningful when the prior commitment was produced
// by the same generator stream and group; the engine cannot detect a
// mismatch, it is the caller's contract.
func UpdateCommitments(commitments []Commitment, cols []*sequence.Sequence, offset uint64) error {
	if len(commitments) != len(cols) {
		return fmt.Errorf("%w: %d commitments, %d columns", ErrLengthMismatch, len(commitments), len(cols))
	}
	eng, err := backend.DefaultEngine()
	if err != nil {
		return err
	}
	return updateWith(eng, commitments, cols, offset)
}

func updateWith(eng backend.Engine, commitments []Commitment, cols []*sequence.Sequence, offset uint64) error {
	// Decode every prior commitment before writing anything back, so a
	// malformed input leaves the whole batch untouched.
	priors := make([]curve.Point, len(cols))
	for i, c := range commitments {
		g := cols[i].Curve().Group()
		if len(c) == 0 {
			priors[i] = g.Identity()
			continue
		}
		p, err := g.Decompress(c)
		if err != nil {
			return fmt.Errorf("commitment %d: %w", i, err)
		}
		priors[i] = p
	}

	deltas, err := eng.ComputeCommitments(cols, nil, offset)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrComputeBackendFailed, err)
	}

	for i := range deltas {
		commitments[i] = priors[i].Add(deltas[i]).Bytes()
	}
	return nil
}
