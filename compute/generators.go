package compute

import (
	"fmt"

	"github.com/consensys/pedersen/backend"
	"github.com/consensys/pedersen/curve"
)

// Generators returns count points of the canonical generator stream starting
// at offset. The stream is deterministic: identical arguments yield identical
// points, across processes and backend kinds, so independent verifiers can
// regenerate the same generators.
func Generators(id curve.ID, count, offset uint64) ([]curve.Point, error) {
	if id.Group() == nil {
		return nil, fmt.Errorf("unknown group %d", id)
	}
	eng, err := backend.DefaultEngine()
	if err != nil {
		return nil, err
	}
	gens, err := eng.FetchGenerators(id, count, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrComputeBackendFailed, err)
	}
	return gens, nil
}

// DecompressGenerators converts compressed wire-form points into the internal
// form the compute backend works with. It fails with curve.ErrInvalidEncoding
// on the first malformed point; callers always decompress before dispatching
// a batch with their own generators.
func DecompressGenerators(id curve.ID, wire [][]byte) ([]curve.Point, error) {
	g := id.Group()
	if g == nil {
		return nil, fmt.Errorf("unknown group %d", id)
	}
	out := make([]curve.Point, len(wire))
	for i, b := range wire {
		p, err := g.Decompress(b)
		if err != nil {
			return nil, fmt.Errorf("generator %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

// OneCommit returns the identity when n is 0, otherwise the sum of the first
// n canonical generators. It is the commitment to a column of n ones at
// offset 0, computed as a prefix sum over the stream.
func OneCommit(id curve.ID, n uint64) (curve.Point, error) {
	if id.Group() == nil {
		return nil, fmt.Errorf("unknown group %d", id)
	}
	eng, err := backend.DefaultEngine()
	if err != nil {
		return nil, err
	}
	p, err := eng.OneCommit(id, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrComputeBackendFailed, err)
	}
	return p, nil
}
