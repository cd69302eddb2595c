package sequence

import (
	"encoding/binary"
	"testing"

	"github.com/consensys/pedersen/curve"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u16Column(values ...uint16) []byte {
	out := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[2*i:], v)
	}
	return out
}

func TestNewDenseRejectsInvalidWidth(t *testing.T) {
	assert := assert.New(t)

	_, err := NewDense(curve.RISTRETTO255, make([]byte, 7), 2)
	assert.ErrorIs(err, ErrInvalidWidth)

	_, err = NewDense(curve.RISTRETTO255, make([]byte, 8), 0)
	assert.ErrorIs(err, ErrInvalidWidth)

	_, err = NewDense(curve.RISTRETTO255, make([]byte, 33), 33)
	assert.ErrorIs(err, ErrInvalidWidth)

	_, err = NewDense(curve.RISTRETTO255, nil, 4)
	assert.NoError(err, "empty column is valid")
}

func TestDenseScalarExtraction(t *testing.T) {
	require := require.New(t)

	values := []uint16{2000, 7500, 5000, 1500}
	s, err := NewDense(curve.BN254, u16Column(values...), 2)
	require.NoError(err)

	require.Equal(4, s.Len())
	require.False(s.IsSparse())
	require.Equal(curve.BN254, s.Curve())

	for i, v := range values {
		want := curve.ScalarFromUint64(uint64(v))
		if diff := cmp.Diff(want, s.Scalar(i)); diff != "" {
			t.Fatalf("row %d scalar mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestScalarsColumn(t *testing.T) {
	require := require.New(t)

	scalars := []curve.Scalar{curve.ScalarFromUint64(1), curve.ScalarFromUint64(1 << 40)}
	s := NewScalars(curve.RISTRETTO255, scalars)

	require.Equal(2, s.Len())
	require.False(s.IsSparse())
	require.Equal(scalars[1], s.Scalar(1))
}

func TestSparseConstruction(t *testing.T) {
	require := require.New(t)

	data := u16Column(7, 9, 11)

	_, err := NewSparse(curve.RISTRETTO255, []uint64{0, 4}, data, 2)
	require.ErrorIs(err, ErrLengthMismatch)

	_, err = NewSparse(curve.RISTRETTO255, []uint64{0, 4, 2}, u16Column(7, 9)[:3], 2)
	require.ErrorIs(err, ErrInvalidWidth)

	s, err := NewSparse(curve.RISTRETTO255, []uint64{0, 4, 2}, data, 2)
	require.NoError(err)
	require.True(s.IsSparse())
	require.Equal(3, s.Len())
	require.Equal(uint64(4), s.Index(1))
	require.Equal(uint64(4), s.MaxIndex())
	require.Equal(curve.ScalarFromUint64(11), s.Scalar(2))
}

func TestHasDistinctIndices(t *testing.T) {
	assert := assert.New(t)

	distinct, err := NewSparse(curve.BN254, []uint64{5, 0, 3}, u16Column(1, 2, 3), 2)
	assert.NoError(err)
	assert.True(distinct.HasDistinctIndices())

	dup, err := NewSparse(curve.BN254, []uint64{5, 0, 5}, u16Column(1, 2, 3), 2)
	assert.NoError(err)
	assert.False(dup.HasDistinctIndices())

	dense, err := NewDense(curve.BN254, u16Column(1, 2), 2)
	assert.NoError(err)
	assert.True(dense.HasDistinctIndices())
}

func TestIndexPanicsOnDense(t *testing.T) {
	s, err := NewDense(curve.BN254, u16Column(1, 2), 2)
	require.NoError(t, err)
	assert.Panics(t, func() { s.Index(0) })
}
