package backend

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/consensys/pedersen/curve"
	"github.com/consensys/pedersen/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	inits    atomic.Int32
	computes atomic.Int32
	kind     Kind
	npre     uint64
	failInit bool
}

func (s *stubEngine) Init(kind Kind, numPrecomputedGenerators uint64) error {
	s.inits.Add(1)
	if s.failInit {
		return errors.New("no compatible device")
	}
	s.kind = kind
	s.npre = numPrecomputedGenerators
	return nil
}

func (s *stubEngine) ComputeCommitments(cols []*sequence.Sequence, gens []curve.Point, offset uint64) ([]curve.Point, error) {
	s.computes.Add(1)
	out := make([]curve.Point, len(cols))
	for i, col := range cols {
		out[i] = col.Curve().Group().Identity()
	}
	return out, nil
}

func (s *stubEngine) FetchGenerators(id curve.ID, count, offset uint64) ([]curve.Point, error) {
	out := make([]curve.Point, count)
	for i := range out {
		out[i] = id.Group().Identity()
	}
	return out, nil
}

func (s *stubEngine) OneCommit(id curve.ID, n uint64) (curve.Point, error) {
	return id.Group().Identity(), nil
}

func stubManager(s *stubEngine) *Manager {
	return NewManager(func(Kind) Engine { return s })
}

func TestEnsureReadyExactlyOnce(t *testing.T) {
	require := require.New(t)

	stub := &stubEngine{}
	m := stubManager(stub)
	require.Equal(Uninitialized, m.Status())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			eng, err := m.EnsureReady()
			assert.NoError(t, err)
			assert.NotNil(t, eng)
		}()
	}
	wg.Wait()

	require.EqualValues(1, stub.inits.Load())
	require.Equal(Ready, m.Status())
}

func TestEnsureReadyOnlyFirstConfigApplies(t *testing.T) {
	require := require.New(t)

	stub := &stubEngine{}
	m := stubManager(stub)

	_, err := m.EnsureReady(WithPrecomputedGenerators(5))
	require.NoError(err)
	require.EqualValues(5, stub.npre)

	// Different precomputation count on a ready backend is a no-op.
	_, err = m.EnsureReady(WithPrecomputedGenerators(50))
	require.NoError(err)
	require.EqualValues(1, stub.inits.Load())
	require.EqualValues(5, stub.npre)
}

func TestEnsureReadyRejectsKindSwitch(t *testing.T) {
	require := require.New(t)

	stub := &stubEngine{}
	m := stubManager(stub)

	_, err := m.EnsureReady(WithKind(CPU))
	require.NoError(err)
	require.Equal(CPU, m.Kind())

	_, err = m.EnsureReady(WithKind(GPU))
	require.ErrorIs(err, ErrBackendMismatch)

	// Implicit kind matches whatever is pinned.
	_, err = m.EnsureReady()
	require.NoError(err)
}

func TestEnsureReadyFailureIsSticky(t *testing.T) {
	require := require.New(t)

	stub := &stubEngine{failInit: true}
	m := stubManager(stub)

	_, err := m.EnsureReady()
	require.ErrorIs(err, ErrBackendInitFailed)
	require.Equal(Failed, m.Status())

	_, err = m.EnsureReady()
	require.ErrorIs(err, ErrBackendInitFailed)
	require.EqualValues(1, stub.inits.Load(), "failed init must not be retried")
}

func TestWithKindRejectsUnknown(t *testing.T) {
	m := stubManager(&stubEngine{})
	_, err := m.EnsureReady(WithKind(Kind(42)))
	require.Error(t, err)
	require.Equal(t, Uninitialized, m.Status())
}

func TestDefaultKind(t *testing.T) {
	if HasIcicle {
		assert.Equal(t, GPU, DefaultKind())
	} else {
		assert.Equal(t, CPU, DefaultKind())
	}
}

func TestCPUEngineRejectsGPUKind(t *testing.T) {
	err := newCPUEngine().Init(GPU, 0)
	require.Error(t, err)
}

func TestCPUEngineGeneratorsStableAcrossCacheBoundary(t *testing.T) {
	require := require.New(t)

	// Same stream positions, different precomputation windows.
	small := newCPUEngine()
	require.NoError(small.Init(CPU, 2))
	large := newCPUEngine()
	require.NoError(large.Init(CPU, 16))

	a, err := small.FetchGenerators(curve.RISTRETTO255, 8, 0)
	require.NoError(err)
	b, err := large.FetchGenerators(curve.RISTRETTO255, 8, 0)
	require.NoError(err)

	for i := range a {
		require.True(a[i].Equal(b[i]), "generator %d differs across cache sizes", i)
	}

	// Overlapping windows agree.
	c, err := small.FetchGenerators(curve.RISTRETTO255, 5, 3)
	require.NoError(err)
	for i := range c {
		require.True(c[i].Equal(a[i+3]))
	}
}

func TestCPUEngineOneCommit(t *testing.T) {
	for _, id := range curve.Implemented() {
		t.Run(id.String(), func(t *testing.T) {
			require := require.New(t)

			e := newCPUEngine()
			require.NoError(e.Init(CPU, 4))

			zero, err := e.OneCommit(id, 0)
			require.NoError(err)
			require.True(zero.IsIdentity())

			gens, err := e.FetchGenerators(id, 7, 0)
			require.NoError(err)

			sum := id.Group().Identity()
			for n := uint64(1); n <= 7; n++ {
				sum = sum.Add(gens[n-1])
				got, err := e.OneCommit(id, n)
				require.NoError(err)
				require.True(got.Equal(sum), "one commit mismatch at n=%d", n)
			}
		})
	}
}

func TestCPUEngineEmptyColumn(t *testing.T) {
	require := require.New(t)

	e := newCPUEngine()
	require.NoError(e.Init(CPU, 0))

	col, err := sequence.NewDense(curve.BN254, nil, 4)
	require.NoError(err)

	out, err := e.ComputeCommitments([]*sequence.Sequence{col}, nil, 0)
	require.NoError(err)
	require.Len(out, 1)
	require.True(out[0].IsIdentity())
}
