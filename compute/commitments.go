// Package compute is the batched Pedersen commitment engine: it validates
// column batches, addresses generators, and dispatches multi-scalar
// multiplications to the process-wide compute backend.
//
// A commitment to a column is Σ data[i]·generator[i+offset] in the column's
// group, returned in compressed wire form. Columns in one batch are
// independent; batching exists to amortize dispatch overhead.
//
// Every entry point initializes the backend implicitly with defaults; call
// backend.EnsureReady early to keep that latency off the hot path.
package compute

import (
	"errors"
	"fmt"

	"github.com/consensys/pedersen/backend"
	"github.com/consensys/pedersen/curve"
	"github.com/consensys/pedersen/sequence"
)

var (
	// ErrLengthMismatch is returned when the output buffer does not have one
	// slot per input column.
	ErrLengthMismatch = errors.New("commitments length differs from column count")

	// ErrGeneratorRangeTooSmall is returned when caller-supplied generators
	// do not cover every row (or sparse index) of a column.
	ErrGeneratorRangeTooSmall = errors.New("generator range too small for input data")

	// ErrCurveMismatch is returned when a column's group differs from the
	// supplied generators' group.
	ErrCurveMismatch = errors.New("column group differs from generators group")

	// ErrComputeBackendFailed wraps a failure inside the compute backend.
	// Such failures are device or resource faults and are never retried.
	ErrComputeBackendFailed = errors.New("compute backend failed")
)

// Commitment is a compressed group element, the wire form of a column
// commitment. Width depends on the column's group.
type Commitment []byte

// ComputeCommitments commits every column against the canonical generator
// stream, column row i against generator i+offset (sparse rows against their
// own indices), and writes the compressed results into commitments in column
// order. Columns may mix groups and lengths.
//
// No output slot is written unless the whole batch succeeds.
func ComputeCommitments(commitments []Commitment, cols []*sequence.Sequence, offset uint64) error {
	if len(commitments) != len(cols) {
		return fmt.Errorf("%w: %d commitments, %d columns", ErrLengthMismatch, len(commitments), len(cols))
	}
	eng, err := backend.DefaultEngine()
	if err != nil {
		return err
	}
	return computeWith(eng, commitments, cols, nil, offset)
}

// ComputeCommitmentsWithGenerators commits every column against
// caller-supplied generators instead of the canonical stream: column row i
// uses gens[i], sparse rows index into gens directly. All columns must belong
// to the generators' group, and gens must cover the longest column and every
// sparse index.
func ComputeCommitmentsWithGenerators(commitments []Commitment, cols []*sequence.Sequence, gens []curve.Point) error {
	if len(commitments) != len(cols) {
		return fmt.Errorf("%w: %d commitments, %d columns", ErrLengthMismatch, len(commitments), len(cols))
	}
	if err := validateGenerators(cols, gens); err != nil {
		return err
	}
	eng, err := backend.DefaultEngine()
	if err != nil {
		return err
	}
	return computeWith(eng, commitments, cols, gens, 0)
}

func computeWith(eng backend.Engine, commitments []Commitment, cols []*sequence.Sequence, gens []curve.Point, offset uint64) error {
	results, err := eng.ComputeCommitments(cols, gens, offset)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrComputeBackendFailed, err)
	}
	for i := range results {
		commitments[i] = results[i].Bytes()
	}
	return nil
}

func validateGenerators(cols []*sequence.Sequence, gens []curve.Point) error {
	for k, col := range cols {
		if col.Len() == 0 {
			continue
		}
		if len(gens) == 0 {
			return fmt.Errorf("%w: column %d has %d rows, no generators supplied", ErrGeneratorRangeTooSmall, k, col.Len())
		}
		if id := gens[0].Curve(); col.Curve() != id {
			return fmt.Errorf("%w: column %d is %s, generators are %s", ErrCurveMismatch, k, col.Curve(), id)
		}
		if col.IsSparse() {
			if max := col.MaxIndex(); max >= uint64(len(gens)) {
				return fmt.Errorf("%w: column %d indexes generator %d, have %d", ErrGeneratorRangeTooSmall, k, max, len(gens))
			}
		} else if col.Len() > len(gens) {
			return fmt.Errorf("%w: column %d has %d rows, have %d generators", ErrGeneratorRangeTooSmall, k, col.Len(), len(gens))
		}
	}
	return nil
}
