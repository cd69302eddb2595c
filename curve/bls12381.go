package curve

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

type bls12381Group struct{}

func (bls12381Group) ID() ID              { return BLS12_381 }
func (bls12381Group) CompressedSize() int { return bls12381.SizeOfG1AffineCompressed }

func (bls12381Group) Identity() Point {
	return &bls12381Point{}
}

func (bls12381Group) Decompress(in []byte) (Point, error) {
	if len(in) != bls12381.SizeOfG1AffineCompressed {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidEncoding, bls12381.SizeOfG1AffineCompressed, len(in))
	}
	var p bls12381Point
	if _, err := p.p.SetBytes(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return &p, nil
}

func (bls12381Group) HashToPoint(msg, dst []byte) (Point, error) {
	p, err := bls12381.HashToG1(msg, dst)
	if err != nil {
		return nil, err
	}
	return &bls12381Point{p: p}, nil
}

func (g bls12381Group) MultiScalarMul(scalars []Scalar, points []Point) (Point, error) {
	if len(scalars) != len(points) {
		return nil, errors.New("bls12_381: multi scalar mul length mismatch")
	}
	if len(points) == 0 {
		return g.Identity(), nil
	}
	ps := make([]bls12381.G1Affine, len(points))
	ss := make([]fr.Element, len(scalars))
	for i := range points {
		p, ok := points[i].(*bls12381Point)
		if !ok {
			return nil, fmt.Errorf("bls12_381: point %d belongs to %s", i, points[i].Curve())
		}
		ps[i] = p.p
		ss[i].SetBytes(scalarBigEndian(scalars[i]))
	}
	var res bls12381Point
	if _, err := res.p.MultiExp(ps, ss, ecc.MultiExpConfig{NbTasks: runtime.NumCPU()}); err != nil {
		return nil, err
	}
	return &res, nil
}

type bls12381Point struct {
	p bls12381.G1Affine
}

func (p *bls12381Point) Curve() ID { return BLS12_381 }

func (p *bls12381Point) Add(q Point) Point {
	qq := q.(*bls12381Point)
	var j bls12381.G1Jac
	j.FromAffine(&p.p)
	j.AddMixed(&qq.p)
	var res bls12381Point
	res.p.FromJacobian(&j)
	return &res
}

func (p *bls12381Point) Equal(q Point) bool {
	qq, ok := q.(*bls12381Point)
	if !ok {
		return false
	}
	return p.p.Equal(&qq.p)
}

func (p *bls12381Point) Bytes() []byte {
	b := p.p.Bytes()
	return b[:]
}

func (p *bls12381Point) IsIdentity() bool {
	return p.p.IsInfinity()
}
