//go:build !manifold

// Package manifold binds the Manifold mesh-boolean library as a geometry
// kernel. Without the "manifold" build tag only this stub is compiled and
// New reports ErrUnavailable, so callers can fall back to sdfx.
//
// Build with: go build -tags=manifold
package manifold

import "github.com/chazu/lathe/pkg/kernel"

// Available reports whether the Manifold kernel was compiled in.
const Available = false

// New returns ErrUnavailable.
func New() (kernel.Kernel, error) {
	return nil, ErrUnavailable
}
