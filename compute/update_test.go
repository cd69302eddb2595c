package compute

import (
	"bytes"
	"testing"

	"github.com/consensys/pedersen/curve"
	"github.com/consensys/pedersen/sequence"
	"github.com/stretchr/testify/require"
)

func TestUpdateBootstrapsFromEmptyCommitment(t *testing.T) {
	for _, id := range curve.Implemented() {
		t.Run(id.String(), func(t *testing.T) {
			require := require.New(t)

			col := u32Column(t, id, 1, 0, 2, 0, 3)
			fresh := make([]Commitment, 1)
			require.NoError(ComputeCommitments(fresh, []*sequence.Sequence{col}, 0))

			updated := make([]Commitment, 1) // nil prior = identity
			require.NoError(UpdateCommitments(updated, []*sequence.Sequence{col}, 0))
			require.Equal(fresh[0], updated[0])
		})
	}
}

// update(C, data, offset) must equal C + compute([data], offset)[0].
func TestUpdateEquivalence(t *testing.T) {
	for _, id := range curve.Implemented() {
		t.Run(id.String(), func(t *testing.T) {
			require := require.New(t)
			g := id.Group()

			base := u32Column(t, id, 1, 0, 2, 0, 3, 4, 0, 0, 0, 9, 0)
			delta := u32Column(t, id, 5000, 1500)

			commitments := make([]Commitment, 1)
			require.NoError(ComputeCommitments(commitments, []*sequence.Sequence{base}, 0))

			deltaCommit := make([]Commitment, 1)
			require.NoError(ComputeCommitments(deltaCommit, []*sequence.Sequence{delta}, 2))

			prior, err := g.Decompress(commitments[0])
			require.NoError(err)
			dc, err := g.Decompress(deltaCommit[0])
			require.NoError(err)
			want := prior.Add(dc).Bytes()

			require.NoError(UpdateCommitments(commitments, []*sequence.Sequence{delta}, 2))
			require.Equal(Commitment(want), commitments[0])

			// Same end state as committing the elementwise-updated column.
			expected := u32Column(t, id, 1, 0, 5002, 1500, 3, 4, 0, 0, 0, 9, 0)
			expectedCommitments := make([]Commitment, 1)
			require.NoError(ComputeCommitments(expectedCommitments, []*sequence.Sequence{expected}, 0))
			require.Equal(expectedCommitments[0], commitments[0])
		})
	}
}

func TestUpdateMultipleColumns(t *testing.T) {
	require := require.New(t)
	id := curve.RISTRETTO255

	cols := []*sequence.Sequence{
		u32Column(t, id, 1, 0, 2, 0, 3, 4, 0, 0, 0, 9, 0),
		u32Column(t, id, 1, 4, 3, 9, 3, 3, 4, 7, 1232, 32, 32),
	}
	deltas := []*sequence.Sequence{
		u32Column(t, id, 5000, 1500),
		u32Column(t, id, 3000),
	}
	expected := []*sequence.Sequence{
		u32Column(t, id, 1, 0, 2, 0, 3, 5004, 1500, 0, 0, 9, 0),
		u32Column(t, id, 1, 4, 3, 9, 3, 3003, 4, 7, 1232, 32, 32),
	}

	commitments := make([]Commitment, 2)
	require.NoError(UpdateCommitments(commitments, cols, 0))
	require.NoError(UpdateCommitments(commitments, deltas, 5))

	want := make([]Commitment, 2)
	require.NoError(ComputeCommitments(want, expected, 0))
	require.Equal(want, commitments)
}

// Sparse columns carry their own generator indices; the offset argument must
// not shift them.
func TestUpdateSparseIgnoresOffset(t *testing.T) {
	require := require.New(t)
	id := curve.BN254

	sparseCol, err := sequence.NewSparse(id, []uint64{2, 3}, []byte{100, 200}, 1)
	require.NoError(err)

	atZero := make([]Commitment, 1)
	require.NoError(UpdateCommitments(atZero, []*sequence.Sequence{sparseCol}, 0))

	atLarge := make([]Commitment, 1)
	require.NoError(UpdateCommitments(atLarge, []*sequence.Sequence{sparseCol}, 999))

	require.Equal(atZero[0], atLarge[0])

	// And the result matches the dense picture of the same table.
	dense := u32Column(t, id, 0, 0, 100, 200)
	want := make([]Commitment, 1)
	require.NoError(ComputeCommitments(want, []*sequence.Sequence{dense}, 0))
	require.Equal(want[0], atZero[0])
}

func TestUpdateRejectsMalformedPrior(t *testing.T) {
	require := require.New(t)
	id := curve.RISTRETTO255

	good := u32Column(t, id, 1, 2)
	commitments := make([]Commitment, 2)
	require.NoError(ComputeCommitments(commitments, []*sequence.Sequence{good, good}, 0))

	intact := bytes.Clone(commitments[1])
	commitments[0] = bytes.Repeat([]byte{0xff}, 32)

	err := UpdateCommitments(commitments, []*sequence.Sequence{good, good}, 0)
	require.ErrorIs(err, curve.ErrInvalidEncoding)
	require.Equal(Commitment(intact), commitments[1], "no partial writes on failure")
}

func TestUpdateLengthMismatch(t *testing.T) {
	col := u32Column(t, curve.RISTRETTO255, 1)
	err := UpdateCommitments(make([]Commitment, 2), []*sequence.Sequence{col}, 0)
	require.ErrorIs(t, err, ErrLengthMismatch)
}
