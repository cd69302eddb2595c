// Package curve enumerates the groups commitments can be computed over and
// abstracts their point arithmetic behind a small Group/Point interface pair.
//
// Scalars cross package boundaries in a single canonical shape: 32 bytes,
// little-endian, reduced modulo the group order when converted to a field
// element. Points cross boundaries either in their compressed wire form
// ([]byte, group-specific width) or as an opaque Point in the internal
// representation the compute engine works with.
package curve

import (
	"encoding/binary"
	"errors"
)

// ErrInvalidEncoding is returned when a compressed point does not decode to a
// valid group element.
var ErrInvalidEncoding = errors.New("invalid point encoding")

// ID represent a unique ID for a supported group
type ID uint16

const (
	UNKNOWN ID = iota
	RISTRETTO255
	BN254
	BLS12_381
)

// Implemented return the list of groups implemented in this module
func Implemented() []ID {
	return []ID{RISTRETTO255, BN254, BLS12_381}
}

// String returns the string representation of a group ID
func (id ID) String() string {
	switch id {
	case RISTRETTO255:
		return "ristretto255"
	case BN254:
		return "bn254"
	case BLS12_381:
		return "bls12_381"
	default:
		return "unknown"
	}
}

// Group returns the arithmetic implementation for id, or nil for an unknown
// ID. The returned value is stateless and safe for concurrent use.
func (id ID) Group() Group {
	switch id {
	case RISTRETTO255:
		return r255Group{}
	case BN254:
		return bn254Group{}
	case BLS12_381:
		return bls12381Group{}
	default:
		return nil
	}
}

// Scalar is the canonical scalar encoding shared by all groups: 32 bytes,
// little-endian. Values are reduced modulo the group order when converted, so
// two scalars commit identically iff their reduced encodings are equal.
type Scalar [32]byte

// ScalarFromUint64 returns the canonical encoding of v.
func ScalarFromUint64(v uint64) Scalar {
	var s Scalar
	binary.LittleEndian.PutUint64(s[:8], v)
	return s
}

// Point is a group element in the internal representation used by the compute
// engine. Implementations are immutable; Add returns a new Point.
type Point interface {
	// Curve returns the ID of the group the point belongs to.
	Curve() ID

	// Add returns the group sum of the receiver and q. It panics if q
	// belongs to a different group; callers mixing groups have already
	// violated the commitment contract.
	Add(q Point) Point

	// Equal reports whether two points are the same group element.
	Equal(q Point) bool

	// Bytes returns the compressed wire form of the point.
	Bytes() []byte

	// IsIdentity reports whether the point is the group identity.
	IsIdentity() bool
}

// Group gathers the per-group operations the commitment engine needs. It is
// deliberately small: everything else (batching, validation, lifecycle) is
// group-agnostic.
type Group interface {
	// ID returns the group identifier.
	ID() ID

	// CompressedSize returns the wire width of a compressed point in bytes.
	CompressedSize() int

	// Identity returns the group identity element.
	Identity() Point

	// Decompress decodes a compressed point. Returns ErrInvalidEncoding if
	// in is malformed or not a valid group element.
	Decompress(in []byte) (Point, error)

	// HashToPoint maps msg to a group element, deterministically for a given
	// (msg, dst) pair and with unknown discrete log relation between outputs.
	HashToPoint(msg, dst []byte) (Point, error)

	// MultiScalarMul computes Σ scalars[i]·points[i]. Scalars are reduced
	// modulo the group order. len(scalars) must equal len(points).
	MultiScalarMul(scalars []Scalar, points []Point) (Point, error)
}
