// Package sequence normalizes caller column data into a uniform view the
// commitment engine can consume: a row count, a canonical scalar per row and,
// for sparse columns, a generator index per row.
//
// A Sequence is an immutable view over caller-owned memory; constructing one
// copies nothing and computing with one mutates nothing.
package sequence

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/pedersen/curve"
)

var (
	// ErrInvalidWidth is returned when a byte column's length is not a
	// multiple of its element width, or the width is outside [1, 32].
	ErrInvalidWidth = errors.New("invalid element width")

	// ErrLengthMismatch is returned when a sparse column's index slice does
	// not have one entry per row.
	ErrLengthMismatch = errors.New("indices length differs from row count")
)

// MaxElementWidth is the widest dense byte element supported; it matches the
// canonical scalar width.
const MaxElementWidth = 32

type kind uint8

const (
	denseBytes kind = iota
	denseScalars
	sparse
)

// Sequence is a single column in one of three shapes: dense bytes with a fixed
// element width, pre-typed scalars, or sparse (index, value) pairs.
type Sequence struct {
	id          curve.ID
	kind        kind
	data        []byte
	elementSize int
	scalars     []curve.Scalar
	indices     []uint64
}

// NewDense returns a dense byte column view over data, where each element
// spans elementSize bytes in little-endian order.
func NewDense(id curve.ID, data []byte, elementSize int) (*Sequence, error) {
	if err := checkWidth(len(data), elementSize); err != nil {
		return nil, err
	}
	return &Sequence{id: id, kind: denseBytes, data: data, elementSize: elementSize}, nil
}

// NewScalars returns a dense column view over already-typed scalars.
func NewScalars(id curve.ID, scalars []curve.Scalar) *Sequence {
	return &Sequence{id: id, kind: denseScalars, scalars: scalars, elementSize: MaxElementWidth}
}

// NewSparse returns a sparse column view: row i holds value data[i·w,(i+1)·w)
// bound to generator indices[i]. Indices need not be sorted or unique;
// duplicate indices accumulate additively during commitment.
func NewSparse(id curve.ID, indices []uint64, data []byte, elementSize int) (*Sequence, error) {
	if err := checkWidth(len(data), elementSize); err != nil {
		return nil, err
	}
	if rows := len(data) / elementSize; rows != len(indices) {
		return nil, fmt.Errorf("%w: %d rows, %d indices", ErrLengthMismatch, rows, len(indices))
	}
	return &Sequence{id: id, kind: sparse, data: data, elementSize: elementSize, indices: indices}, nil
}

func checkWidth(dataLen, elementSize int) error {
	if elementSize < 1 || elementSize > MaxElementWidth {
		return fmt.Errorf("%w: element width %d not in [1, %d]", ErrInvalidWidth, elementSize, MaxElementWidth)
	}
	if dataLen%elementSize != 0 {
		return fmt.Errorf("%w: buffer length %d is not a multiple of element width %d", ErrInvalidWidth, dataLen, elementSize)
	}
	return nil
}

// Curve returns the group the column commits in.
func (s *Sequence) Curve() curve.ID { return s.id }

// IsSparse reports whether the column carries explicit generator indices.
func (s *Sequence) IsSparse() bool { return s.kind == sparse }

// Len returns the number of rows.
func (s *Sequence) Len() int {
	if s.kind == denseScalars {
		return len(s.scalars)
	}
	return len(s.data) / s.elementSize
}

// Scalar returns row i as a canonical scalar, zero-extending narrow elements
// to the full 32-byte little-endian width.
func (s *Sequence) Scalar(i int) curve.Scalar {
	if s.kind == denseScalars {
		return s.scalars[i]
	}
	var out curve.Scalar
	copy(out[:], s.data[i*s.elementSize:(i+1)*s.elementSize])
	return out
}

// Index returns the generator index bound to row i. It panics on dense
// columns, which address generators by offset instead.
func (s *Sequence) Index(i int) uint64 {
	if s.kind != sparse {
		panic("sequence: Index called on a dense column")
	}
	return s.indices[i]
}

// MaxIndex returns the largest generator index in a sparse column, 0 when the
// column is empty or dense.
func (s *Sequence) MaxIndex() uint64 {
	var max uint64
	for _, idx := range s.indices {
		if idx > max {
			max = idx
		}
	}
	return max
}

// HasDistinctIndices reports whether every row of a sparse column addresses a
// distinct generator. Duplicate indices are legal (their contributions sum);
// this helper exists for callers that treat them as a data bug. Dense columns
// trivially report true. Memory use is proportional to MaxIndex.
func (s *Sequence) HasDistinctIndices() bool {
	if s.kind != sparse || len(s.indices) == 0 {
		return true
	}
	seen := bitset.New(uint(s.MaxIndex()) + 1)
	for _, idx := range s.indices {
		if seen.Test(uint(idx)) {
			return false
		}
		seen.Set(uint(idx))
	}
	return true
}
