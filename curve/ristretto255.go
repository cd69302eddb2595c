package curve

import (
	"errors"
	"fmt"

	"github.com/gtank/ristretto255"
	"golang.org/x/crypto/sha3"
)

const r255CompressedSize = 32

type r255Group struct{}

func (r255Group) ID() ID              { return RISTRETTO255 }
func (r255Group) CompressedSize() int { return r255CompressedSize }

func (r255Group) Identity() Point {
	return &r255Point{e: ristretto255.NewElement()}
}

func (r255Group) Decompress(in []byte) (Point, error) {
	if len(in) != r255CompressedSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidEncoding, r255CompressedSize, len(in))
	}
	e := ristretto255.NewElement()
	if err := e.Decode(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return &r255Point{e: e}, nil
}

func (r255Group) HashToPoint(msg, dst []byte) (Point, error) {
	// ristretto255 maps 64 uniform bytes to a group element; SHAKE256 over
	// dst||msg supplies them.
	h := sha3.NewShake256()
	h.Write(dst)
	h.Write(msg)
	var uniform [64]byte
	if _, err := h.Read(uniform[:]); err != nil {
		return nil, err
	}
	return &r255Point{e: ristretto255.NewElement().FromUniformBytes(uniform[:])}, nil
}

func (r255Group) MultiScalarMul(scalars []Scalar, points []Point) (Point, error) {
	if len(scalars) != len(points) {
		return nil, errors.New("ristretto255: multi scalar mul length mismatch")
	}
	if len(points) == 0 {
		return r255Group{}.Identity(), nil
	}
	ss := make([]*ristretto255.Scalar, len(scalars))
	ps := make([]*ristretto255.Element, len(points))
	for i := range scalars {
		ss[i] = r255ScalarFromCanonical(scalars[i])
		p, ok := points[i].(*r255Point)
		if !ok {
			return nil, fmt.Errorf("ristretto255: point %d belongs to %s", i, points[i].Curve())
		}
		ps[i] = p.e
	}
	return &r255Point{e: ristretto255.NewElement().VarTimeMultiScalarMult(ss, ps)}, nil
}

// r255ScalarFromCanonical widens the 32-byte little-endian encoding to the 64
// uniform bytes the ristretto255 API reduces from, so out-of-range inputs
// reduce modulo the group order instead of erroring.
func r255ScalarFromCanonical(s Scalar) *ristretto255.Scalar {
	var wide [64]byte
	copy(wide[:32], s[:])
	return ristretto255.NewScalar().FromUniformBytes(wide[:])
}

type r255Point struct {
	e *ristretto255.Element
}

func (p *r255Point) Curve() ID { return RISTRETTO255 }

func (p *r255Point) Add(q Point) Point {
	qq := q.(*r255Point)
	return &r255Point{e: ristretto255.NewElement().Add(p.e, qq.e)}
}

func (p *r255Point) Equal(q Point) bool {
	qq, ok := q.(*r255Point)
	if !ok {
		return false
	}
	return p.e.Equal(qq.e) == 1
}

func (p *r255Point) Bytes() []byte {
	return p.e.Encode(nil)
}

func (p *r255Point) IsIdentity() bool {
	return p.e.Equal(ristretto255.NewElement()) == 1
}
