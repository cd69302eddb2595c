package curve

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

type bn254Group struct{}

func (bn254Group) ID() ID              { return BN254 }
func (bn254Group) CompressedSize() int { return bn254.SizeOfG1AffineCompressed }

func (bn254Group) Identity() Point {
	return &bn254Point{} // zero value is the point at infinity
}

func (bn254Group) Decompress(in []byte) (Point, error) {
	if len(in) != bn254.SizeOfG1AffineCompressed {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidEncoding, bn254.SizeOfG1AffineCompressed, len(in))
	}
	var p bn254Point
	if _, err := p.p.SetBytes(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return &p, nil
}

func (bn254Group) HashToPoint(msg, dst []byte) (Point, error) {
	p, err := bn254.HashToG1(msg, dst)
	if err != nil {
		return nil, err
	}
	return &bn254Point{p: p}, nil
}

func (g bn254Group) MultiScalarMul(scalars []Scalar, points []Point) (Point, error) {
	if len(scalars) != len(points) {
		return nil, errors.New("bn254: multi scalar mul length mismatch")
	}
	if len(points) == 0 {
		return g.Identity(), nil
	}
	ps := make([]bn254.G1Affine, len(points))
	ss := make([]fr.Element, len(scalars))
	for i := range points {
		p, ok := points[i].(*bn254Point)
		if !ok {
			return nil, fmt.Errorf("bn254: point %d belongs to %s", i, points[i].Curve())
		}
		ps[i] = p.p
		ss[i].SetBytes(scalarBigEndian(scalars[i]))
	}
	var res bn254Point
	if _, err := res.p.MultiExp(ps, ss, ecc.MultiExpConfig{NbTasks: runtime.NumCPU()}); err != nil {
		return nil, err
	}
	return &res, nil
}

// scalarBigEndian reverses the canonical little-endian encoding for
// gnark-crypto's big-endian SetBytes, which reduces modulo the group order.
func scalarBigEndian(s Scalar) []byte {
	be := make([]byte, len(s))
	for i := range s {
		be[len(s)-1-i] = s[i]
	}
	return be
}

type bn254Point struct {
	p bn254.G1Affine
}

func (p *bn254Point) Curve() ID { return BN254 }

func (p *bn254Point) Add(q Point) Point {
	qq := q.(*bn254Point)
	var j bn254.G1Jac
	j.FromAffine(&p.p)
	j.AddMixed(&qq.p)
	var res bn254Point
	res.p.FromJacobian(&j)
	return &res
}

func (p *bn254Point) Equal(q Point) bool {
	qq, ok := q.(*bn254Point)
	if !ok {
		return false
	}
	return p.p.Equal(&qq.p)
}

func (p *bn254Point) Bytes() []byte {
	b := p.p.Bytes()
	return b[:]
}

func (p *bn254Point) IsIdentity() bool {
	return p.p.IsInfinity()
}
