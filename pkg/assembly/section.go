package assembly

import (
	"context"
	"fmt"
	"math"

	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/sweep"
)

// Slab is a thin plate perpendicular to the Z axis at height Z, built as a
// grid of parallel capsules running along X. Capsules are Thickness wide
// and their axes Spacing apart, covering [−HalfWidth, HalfWidth] in Y.
type Slab struct {
	Z         float64
	HalfWidth float64
	Thickness float64
	// Spacing between capsule axes. Zero uses half the thickness, which
	// keeps neighbours overlapping by more than their radius.
	Spacing float64
}

func (s Slab) spacing() float64 {
	if s.Spacing > 0 {
		return s.Spacing
	}
	return s.Thickness / 2
}

// Primitives lays out the capsule grid.
func (s Slab) Primitives() ([]sweep.Primitive, error) {
	if !(s.HalfWidth > 0) || !(s.Thickness > 0) {
		return nil, fmt.Errorf("assembly: slab half-width %g and thickness %g must be positive", s.HalfWidth, s.Thickness)
	}
	r := s.Thickness / 2
	if s.spacing() > 2*r {
		return nil, fmt.Errorf("assembly: slab spacing %g leaves gaps between capsules of radius %g", s.spacing(), r)
	}
	n := int(math.Ceil(2 * s.HalfWidth / s.spacing()))
	prims := make([]sweep.Primitive, 0, n+1)
	for i := 0; i <= n; i++ {
		y := -s.HalfWidth + 2*s.HalfWidth*float64(i)/float64(n)
		prims = append(prims, sweep.Capsule(
			kernel.Vec3{X: -s.HalfWidth, Y: y, Z: s.Z},
			kernel.Vec3{X: s.HalfWidth, Y: y, Z: s.Z},
			r, r))
	}
	return prims, nil
}

// Section intersects shell with the slab. The result is only used for
// inspection.
func Section(ctx context.Context, k kernel.Kernel, shell kernel.Solid, slab Slab) (kernel.Solid, error) {
	prims, err := slab.Primitives()
	if err != nil {
		return nil, err
	}
	plate, err := sweep.Build(ctx, k, prims)
	if err != nil {
		return nil, fmt.Errorf("assembly: slab: %w", err)
	}
	s, err := k.Intersection(shell, plate)
	if err != nil {
		return nil, fmt.Errorf("assembly: section: %w", err)
	}
	return s, nil
}
