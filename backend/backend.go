// Package backend owns the process-wide compute target: which engine (CPU or
// GPU) executes multi-scalar multiplications, and the exactly-once
// initialization of that engine.
//
// The default engine is selected at build time: a plain build carries the CPU
// engine, a build with the "icicle" tag carries the ICICLE GPU engine. The
// first successful EnsureReady pins the target for the life of the process;
// later calls are no-ops unless they name a different Kind, which is rejected.
package backend

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/consensys/pedersen/curve"
	"github.com/consensys/pedersen/logger"
	"github.com/consensys/pedersen/sequence"
)

var (
	// ErrBackendInitFailed is returned when engine initialization fails. The
	// failure is sticky: every later call on the same manager returns it too.
	ErrBackendInitFailed = errors.New("backend initialization failed")

	// ErrBackendMismatch is returned when EnsureReady names a Kind different
	// from the one the process is already pinned to.
	ErrBackendMismatch = errors.New("backend kind already pinned")
)

// Kind identifies a compute target.
type Kind uint8

const (
	CPU Kind = iota + 1
	GPU
)

func (k Kind) String() string {
	switch k {
	case CPU:
		return "cpu"
	case GPU:
		return "gpu"
	default:
		return "unknown"
	}
}

// DefaultKind returns the compute target a build of this binary prefers: GPU
// when built with the icicle tag, CPU otherwise.
func DefaultKind() Kind {
	if HasIcicle {
		return GPU
	}
	return CPU
}

// DefaultPrecomputedGenerators is the number of canonical generators the
// engine precomputes when the caller does not say otherwise.
const DefaultPrecomputedGenerators = 20

// Config is the engine configuration resolved from Options. Only the first
// EnsureReady's Config takes effect.
type Config struct {
	// Kind selects the compute target; zero means DefaultKind().
	Kind Kind

	// NumPrecomputedGenerators is how many canonical generators (and their
	// running prefix sums) the engine computes once at init for reuse.
	NumPrecomputedGenerators uint64
}

// Option alters the engine configuration in EnsureReady.
type Option func(*Config) error

// WithKind requests an explicit compute target.
func WithKind(k Kind) Option {
	return func(c *Config) error {
		if k != CPU && k != GPU {
			return fmt.Errorf("unknown backend kind %d", k)
		}
		c.Kind = k
		return nil
	}
}

// WithPrecomputedGenerators sets how many canonical generators the engine
// precomputes at initialization.
func WithPrecomputedGenerators(n uint64) Option {
	return func(c *Config) error {
		c.NumPrecomputedGenerators = n
		return nil
	}
}

// Engine is the compute capability the commitment layer dispatches to. The
// production engines live in this package (cpu.go, icicle.go); tests inject
// doubles.
//
// Engines never validate: callers check lengths and generator ranges before
// dispatch, and any error an engine returns is an unrecoverable compute
// fault.
type Engine interface {
	// Init prepares the engine for kind and precomputes the first
	// numPrecomputedGenerators canonical generators per group. Called exactly
	// once, before any other method.
	Init(kind Kind, numPrecomputedGenerators uint64) error

	// ComputeCommitments returns one commitment per column, in column order.
	// When gens is nil the canonical stream provides generators: dense rows
	// use positions offset, offset+1, ... and sparse rows their own indices.
	// When gens is non-nil it stands in for the stream window: dense row i
	// uses gens[i] and sparse rows index into gens directly; offset is then
	// ignored.
	ComputeCommitments(cols []*sequence.Sequence, gens []curve.Point, offset uint64) ([]curve.Point, error)

	// FetchGenerators returns count canonical generators starting at offset.
	// Deterministic: identical arguments yield identical points, across
	// processes and engine kinds.
	FetchGenerators(id curve.ID, count, offset uint64) ([]curve.Point, error)

	// OneCommit returns the sum of the first n canonical generators, the
	// identity when n is 0.
	OneCommit(id curve.ID, n uint64) (curve.Point, error)
}

// State is the lifecycle position of a Manager.
type State uint32

const (
	Uninitialized State = iota
	Initializing
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Manager drives the Uninitialized → Initializing → Ready transition exactly
// once, no matter how many goroutines race on first use. Concurrent callers
// block until the transition completes and then all observe the same outcome.
type Manager struct {
	newEngine func(Kind) Engine

	once   sync.Once
	state  atomic.Uint32
	engine Engine
	kind   Kind
	err    error
}

// NewManager returns a Manager that builds its engine with newEngine on first
// EnsureReady.
func NewManager(newEngine func(Kind) Engine) *Manager {
	return &Manager{newEngine: newEngine}
}

// EnsureReady initializes the engine on first call and returns it. Later
// calls return the already-initialized engine and ignore opts, except that an
// explicit Kind differing from the pinned one is rejected with
// ErrBackendMismatch.
func (m *Manager) EnsureReady(opts ...Option) (Engine, error) {
	var cfg Config
	cfg.NumPrecomputedGenerators = DefaultPrecomputedGenerators
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	m.once.Do(func() {
		m.state.Store(uint32(Initializing))
		kind := cfg.Kind
		if kind == 0 {
			kind = DefaultKind()
		}
		log := logger.Logger()
		eng := m.newEngine(kind)
		if err := eng.Init(kind, cfg.NumPrecomputedGenerators); err != nil {
			m.err = fmt.Errorf("%w: %v", ErrBackendInitFailed, err)
			m.state.Store(uint32(Failed))
			log.Error().Str("kind", kind.String()).Err(err).Msg("backend initialization failed")
			return
		}
		m.engine = eng
		m.kind = kind
		m.state.Store(uint32(Ready))
		log.Debug().Str("kind", kind.String()).Uint64("precomputedGenerators", cfg.NumPrecomputedGenerators).Msg("backend ready")
	})

	if m.err != nil {
		return nil, m.err
	}
	if cfg.Kind != 0 && cfg.Kind != m.kind {
		return nil, fmt.Errorf("%w: have %s, requested %s", ErrBackendMismatch, m.kind, cfg.Kind)
	}
	return m.engine, nil
}

// Status returns the manager's lifecycle state.
func (m *Manager) Status() State {
	return State(m.state.Load())
}

// Kind returns the pinned compute target; valid once Status() == Ready.
func (m *Manager) Kind() Kind {
	return m.kind
}

var defaultManager = NewManager(newDefaultEngine)

// EnsureReady initializes the process-wide backend. Commitment operations
// call it implicitly with defaults; call it early and explicitly to keep the
// first-use latency spike off the hot path.
func EnsureReady(opts ...Option) error {
	_, err := defaultManager.EnsureReady(opts...)
	return err
}

// DefaultEngine returns the process-wide engine, initializing it with
// defaults if needed.
func DefaultEngine() (Engine, error) {
	return defaultManager.EnsureReady()
}

// Status returns the lifecycle state of the process-wide backend.
func Status() State {
	return defaultManager.Status()
}
