package backend

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/consensys/pedersen/curve"
	"github.com/consensys/pedersen/logger"
	"github.com/consensys/pedersen/sequence"
	"golang.org/x/sync/errgroup"
)

// cpuEngine computes commitments with the host MSM implementations behind
// curve.Group. One instance serves the whole process; all state after Init is
// the read-only generator cache.
type cpuEngine struct {
	cache map[curve.ID]*generatorCache
}

// generatorCache holds the precomputed prefix of the canonical stream for one
// group. prefix[i] is the sum of the first i generators, so prefix[0] is the
// identity and OneCommit(n) for a cached n is a lookup.
type generatorCache struct {
	gens   []curve.Point
	prefix []curve.Point
}

func newCPUEngine() *cpuEngine {
	return &cpuEngine{cache: make(map[curve.ID]*generatorCache)}
}

func (e *cpuEngine) Init(kind Kind, numPrecomputedGenerators uint64) error {
	if kind != CPU {
		return fmt.Errorf("%s backend requested but binary built without the 'icicle' build tag", kind)
	}
	start := time.Now()
	for _, id := range curve.Implemented() {
		c, err := precomputeGenerators(id, numPrecomputedGenerators)
		if err != nil {
			return err
		}
		e.cache[id] = c
	}
	log := logger.Logger()
	log.Debug().Uint64("n", numPrecomputedGenerators).Dur("took", time.Since(start)).Msg("generator precomputation done")
	return nil
}

func precomputeGenerators(id curve.ID, n uint64) (*generatorCache, error) {
	g := id.Group()
	c := &generatorCache{
		gens:   make([]curve.Point, 0, n),
		prefix: make([]curve.Point, 1, n+1),
	}
	c.prefix[0] = g.Identity()
	for i := uint64(0); i < n; i++ {
		p, err := deriveGenerator(g, i)
		if err != nil {
			return nil, err
		}
		c.gens = append(c.gens, p)
		c.prefix = append(c.prefix, c.prefix[i].Add(p))
	}
	return c, nil
}

// generatorDST returns the hash-to-group domain separation tag for a group's
// canonical stream. Changing it changes every commitment ever computed.
func generatorDST(id curve.ID) []byte {
	return []byte("pedersen-commitment-generators-" + id.String())
}

func deriveGenerator(g curve.Group, index uint64) (curve.Point, error) {
	var msg [8]byte
	binary.LittleEndian.PutUint64(msg[:], index)
	return g.HashToPoint(msg[:], generatorDST(g.ID()))
}

func (e *cpuEngine) FetchGenerators(id curve.ID, count, offset uint64) ([]curve.Point, error) {
	g := id.Group()
	out := make([]curve.Point, count)
	cached := e.cache[id]
	for i := uint64(0); i < count; i++ {
		idx := offset + i
		if cached != nil && idx < uint64(len(cached.gens)) {
			out[i] = cached.gens[idx]
			continue
		}
		p, err := deriveGenerator(g, idx)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func (e *cpuEngine) generatorAt(id curve.ID, index uint64) (curve.Point, error) {
	if cached := e.cache[id]; cached != nil && index < uint64(len(cached.gens)) {
		return cached.gens[index], nil
	}
	return deriveGenerator(id.Group(), index)
}

func (e *cpuEngine) OneCommit(id curve.ID, n uint64) (curve.Point, error) {
	g := id.Group()
	cached := e.cache[id]
	if cached == nil {
		cached = &generatorCache{prefix: []curve.Point{g.Identity()}}
	}
	if n < uint64(len(cached.prefix)) {
		return cached.prefix[n], nil
	}
	// Past the precomputed window: continue the running sum from the last
	// cached prefix.
	from := uint64(len(cached.prefix)) - 1
	sum := cached.prefix[from]
	for i := from; i < n; i++ {
		p, err := deriveGenerator(g, i)
		if err != nil {
			return nil, err
		}
		sum = sum.Add(p)
	}
	return sum, nil
}

func (e *cpuEngine) ComputeCommitments(cols []*sequence.Sequence, gens []curve.Point, offset uint64) ([]curve.Point, error) {
	start := time.Now()
	out := make([]curve.Point, len(cols))
	g, _ := errgroup.WithContext(context.TODO())
	for k := range cols {
		k := k
		g.Go(func() error {
			p, err := e.commitColumn(cols[k], gens, offset)
			if err != nil {
				return err
			}
			out[k] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log := logger.Logger()
	log.Debug().Int("columns", len(cols)).Dur("took", time.Since(start)).Msg("commitment batch done")
	return out, nil
}

func (e *cpuEngine) commitColumn(col *sequence.Sequence, gens []curve.Point, offset uint64) (curve.Point, error) {
	g := col.Curve().Group()
	n := col.Len()
	if n == 0 {
		return g.Identity(), nil
	}

	scalars := make([]curve.Scalar, n)
	for i := 0; i < n; i++ {
		scalars[i] = col.Scalar(i)
	}

	var points []curve.Point
	switch {
	case col.IsSparse() && gens != nil:
		points = make([]curve.Point, n)
		for i := 0; i < n; i++ {
			points[i] = gens[col.Index(i)]
		}
	case col.IsSparse():
		points = make([]curve.Point, n)
		for i := 0; i < n; i++ {
			p, err := e.generatorAt(col.Curve(), col.Index(i))
			if err != nil {
				return nil, err
			}
			points[i] = p
		}
	case gens != nil:
		points = gens[:n]
	default:
		var err error
		points, err = e.FetchGenerators(col.Curve(), uint64(n), offset)
		if err != nil {
			return nil, err
		}
	}

	return g.MultiScalarMul(scalars, points)
}

var _ Engine = (*cpuEngine)(nil)
