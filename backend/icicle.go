//go:build icicle

package backend

import (
	"fmt"

	bn254curve "github.com/consensys/gnark-crypto/ecc/bn254"
	bn254fp "github.com/consensys/gnark-crypto/ecc/bn254/fp"
	bn254fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/pedersen/curve"
	"github.com/consensys/pedersen/logger"
	"github.com/consensys/pedersen/sequence"
	icicle_core "github.com/ingonyama-zk/icicle-gnark/v3/wrappers/golang/core"
	icicle_bn254 "github.com/ingonyama-zk/icicle-gnark/v3/wrappers/golang/curves/bn254"
	icicle_bn254_msm "github.com/ingonyama-zk/icicle-gnark/v3/wrappers/golang/curves/bn254/msm"
	icicle_runtime "github.com/ingonyama-zk/icicle-gnark/v3/wrappers/golang/runtime"
)

// gpuEngine dispatches MSMs to an ICICLE device. The canonical generator
// stream, prefix sums and every group ICICLE has no backend for (ristretto255)
// stay on the embedded CPU engine, so both engine kinds address identical
// generators.
type gpuEngine struct {
	*cpuEngine
	device icicle_runtime.Device
}

func newGPUEngine() *gpuEngine {
	return &gpuEngine{cpuEngine: newCPUEngine()}
}

func (e *gpuEngine) Init(kind Kind, numPrecomputedGenerators uint64) error {
	if kind != GPU {
		return fmt.Errorf("gpu engine initialized with kind %s", kind)
	}
	log := logger.Logger()
	if err := icicle_runtime.LoadBackendFromEnvOrDefault(); err != icicle_runtime.Success {
		return fmt.Errorf("ICICLE backend loading error: %s", err.AsString())
	}
	e.device = icicle_runtime.CreateDevice("CUDA", 0)
	log.Debug().Int32("id", e.device.Id).Str("type", e.device.GetDeviceType()).Msg("ICICLE device created")

	var warmupErr icicle_runtime.EIcicleError
	icicle_runtime.RunOnDevice(&e.device, func(args ...any) {
		stream, err := icicle_runtime.CreateStream()
		if err != icicle_runtime.Success {
			warmupErr = err
			return
		}
		warmupErr = icicle_runtime.WarmUpDevice(stream)
	})
	if warmupErr != icicle_runtime.Success {
		return fmt.Errorf("ICICLE device warmup error: %s", warmupErr.AsString())
	}

	// Generator precomputation runs on the host either way.
	return e.cpuEngine.Init(CPU, numPrecomputedGenerators)
}

func (e *gpuEngine) ComputeCommitments(cols []*sequence.Sequence, gens []curve.Point, offset uint64) ([]curve.Point, error) {
	out := make([]curve.Point, len(cols))
	for k, col := range cols {
		if col.Curve() != curve.BN254 {
			// No ICICLE backend for this group; host path.
			p, err := e.cpuEngine.commitColumn(col, gens, offset)
			if err != nil {
				return nil, err
			}
			out[k] = p
			continue
		}
		p, err := e.commitColumnOnDevice(col, gens, offset)
		if err != nil {
			return nil, err
		}
		out[k] = p
	}
	return out, nil
}

func (e *gpuEngine) commitColumnOnDevice(col *sequence.Sequence, gens []curve.Point, offset uint64) (curve.Point, error) {
	g := col.Curve().Group()
	n := col.Len()
	if n == 0 {
		return g.Identity(), nil
	}

	points := make([]curve.Point, n)
	switch {
	case col.IsSparse() && gens != nil:
		for i := 0; i < n; i++ {
			points[i] = gens[col.Index(i)]
		}
	case col.IsSparse():
		for i := 0; i < n; i++ {
			p, err := e.generatorAt(col.Curve(), col.Index(i))
			if err != nil {
				return nil, err
			}
			points[i] = p
		}
	case gens != nil:
		copy(points, gens[:n])
	default:
		var err error
		points, err = e.FetchGenerators(col.Curve(), uint64(n), offset)
		if err != nil {
			return nil, err
		}
	}

	icicleScalars := make([]icicle_bn254.ScalarField, n)
	icicleBases := make([]icicle_bn254.Affine, n)
	for i := 0; i < n; i++ {
		var fe bn254fr.Element
		sc := col.Scalar(i)
		fe.SetBytes(scalarBytesBigEndian(sc))
		b := fe.Bytes()
		icicleScalars[i].FromBytesLittleEndian(reverseBytes(b[:]))

		aff, err := bn254AffineOf(points[i])
		if err != nil {
			return nil, err
		}
		xb := aff.X.Bytes()
		yb := aff.Y.Bytes()
		icicleBases[i].X.FromBytesLittleEndian(reverseBytes(xb[:]))
		icicleBases[i].Y.FromBytesLittleEndian(reverseBytes(yb[:]))
	}

	cfg := icicle_core.GetDefaultMSMConfig()
	results := make(icicle_core.HostSlice[icicle_bn254.Projective], 1)
	var msmErr icicle_runtime.EIcicleError
	icicle_runtime.RunOnDevice(&e.device, func(args ...any) {
		msmErr = icicle_bn254_msm.Msm(
			icicle_core.HostSliceFromElements(icicleScalars),
			icicle_core.HostSliceFromElements(icicleBases),
			&cfg,
			results,
		)
	})
	if msmErr != icicle_runtime.Success {
		return nil, fmt.Errorf("ICICLE msm error: %s", msmErr.AsString())
	}

	resAffine := results[0].ProjectiveToAffine()
	var x, y bn254fp.Element
	x.SetBytes(reverseBytes(resAffine.X.ToBytesLittleEndian()))
	y.SetBytes(reverseBytes(resAffine.Y.ToBytesLittleEndian()))
	var affine bn254curve.G1Affine
	affine.X = x
	affine.Y = y
	return curve.BN254.Group().Decompress(compressAffine(&affine))
}

func compressAffine(p *bn254curve.G1Affine) []byte {
	b := p.Bytes()
	return b[:]
}

func scalarBytesBigEndian(s curve.Scalar) []byte {
	return reverseBytes(s[:])
}

func reverseBytes(in []byte) []byte {
	out := make([]byte, len(in))
	for i := range in {
		out[len(in)-1-i] = in[i]
	}
	return out
}

var _ Engine = (*gpuEngine)(nil)
