//go:build icicle

package backend

// HasIcicle reports whether the binary was built with the ICICLE GPU backend.
const HasIcicle = true

func newDefaultEngine(kind Kind) Engine {
	if kind == CPU {
		return newCPUEngine()
	}
	return newGPUEngine()
}
