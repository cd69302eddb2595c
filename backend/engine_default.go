//go:build !icicle

package backend

// HasIcicle reports whether the binary was built with the ICICLE GPU backend.
const HasIcicle = false

func newDefaultEngine(kind Kind) Engine {
	return newCPUEngine()
}
