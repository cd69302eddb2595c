// Package debug exposes the build-time debug flag.
//
// Building with the "debug" tag turns on verbose logging even under go test.
package debug
