// Package sweep turns sampled curves into chains of kernel primitives and
// folds primitive lists into single solids.
//
// A sweep of n+1 samples is exactly n capsules, one per consecutive pair.
// Consecutive capsules share their joint sphere, so the chain is always
// connected; how smooth it looks depends on segment length relative to
// radius (see Overlap).
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/chazu/lathe/pkg/curve"
	"github.com/chazu/lathe/pkg/kernel"
)

var (
	// ErrEmpty is returned when folding an empty primitive or solid list.
	ErrEmpty = errors.New("sweep: nothing to build")
	// ErrRadius is returned when a sample radius plus offset is not
	// positive.
	ErrRadius = errors.New("sweep: non-positive radius")
)

// Kind distinguishes the two primitive shapes the kernel accepts.
type Kind int

const (
	KindCapsule Kind = iota
	KindFrustum
	KindSphere
)

func (k Kind) String() string {
	switch k {
	case KindCapsule:
		return "capsule"
	case KindFrustum:
		return "frustum"
	case KindSphere:
		return "sphere"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Primitive describes one kernel primitive. Spheres use P0 and R0 only.
type Primitive struct {
	Kind   Kind
	P0, P1 kernel.Vec3
	R0, R1 float64
}

// Capsule returns a capsule primitive.
func Capsule(p0, p1 kernel.Vec3, r0, r1 float64) Primitive {
	return Primitive{Kind: KindCapsule, P0: p0, P1: p1, R0: r0, R1: r1}
}

// Frustum returns a flat-capped frustum primitive.
func Frustum(p0, p1 kernel.Vec3, r0, r1 float64) Primitive {
	return Primitive{Kind: KindFrustum, P0: p0, P1: p1, R0: r0, R1: r1}
}

// Sphere returns a sphere primitive.
func Sphere(c kernel.Vec3, r float64) Primitive {
	return Primitive{Kind: KindSphere, P0: c, P1: c, R0: r, R1: r}
}

// Solid asks k to construct p.
func (p Primitive) Solid(k kernel.Kernel) (kernel.Solid, error) {
	switch p.Kind {
	case KindSphere:
		return k.Sphere(p.P0, p.R0)
	case KindFrustum:
		return k.Frustum(p.P0, p.P1, p.R0, p.R1)
	}
	return k.Capsule(p.P0, p.P1, p.R0, p.R1)
}

// Box returns a bounding box of the primitive. Frustums are bounded as if
// they had round caps.
func (p Primitive) Box() kernel.Box {
	a := kernel.V(p.R0, p.R0, p.R0)
	b := kernel.V(p.R1, p.R1, p.R1)
	return kernel.Box{Min: p.P0.Sub(a), Max: p.P0.Add(a)}.
		Union(kernel.Box{Min: p.P1.Sub(b), Max: p.P1.Add(b)})
}

// Capsules converts a sample sequence into one capsule per consecutive
// pair, growing every radius by offset. A sequence of fewer than two
// samples, or one whose samples all coincide, collapses to a single sphere
// with the largest radius so degenerate curves still yield a valid solid.
func Capsules(samples []curve.Sample, offset float64) ([]Primitive, error) {
	return chain(samples, offset, Capsule)
}

// Frustums is Capsules with flat-capped segments. Swept along an axis it
// yields a stack of thin frustums whose ends are planar.
func Frustums(samples []curve.Sample, offset float64) ([]Primitive, error) {
	return chain(samples, offset, Frustum)
}

func chain(samples []curve.Sample, offset float64, seg func(p0, p1 kernel.Vec3, r0, r1 float64) Primitive) ([]Primitive, error) {
	if len(samples) == 0 {
		return nil, nil
	}
	for i, s := range samples {
		if r := s.Radius + offset; !(r > 0) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("%w: sample %d radius %g + offset %g", ErrRadius, i, s.Radius, offset)
		}
	}
	if degenerate(samples) {
		r := samples[0].Radius
		for _, s := range samples[1:] {
			r = math.Max(r, s.Radius)
		}
		return []Primitive{Sphere(samples[0].Point, r+offset)}, nil
	}

	prims := make([]Primitive, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		a, b := samples[i-1], samples[i]
		prims = append(prims, seg(a.Point, b.Point, a.Radius+offset, b.Radius+offset))
	}
	return prims, nil
}

func degenerate(samples []curve.Sample) bool {
	if len(samples) < 2 {
		return true
	}
	first := samples[0].Point
	for _, s := range samples[1:] {
		if s.Point != first {
			return false
		}
	}
	return true
}

// Overlap returns the smallest ratio of joint radius to segment length
// along the sweep. Ratios below MinOverlap produce visibly faceted tubes;
// a zero-length segment counts as infinite overlap.
func Overlap(samples []curve.Sample) float64 {
	best := math.Inf(1)
	for i := 1; i < len(samples); i++ {
		l := samples[i-1].Point.Dist(samples[i].Point)
		if l == 0 {
			continue
		}
		r := math.Min(samples[i-1].Radius, samples[i].Radius)
		best = math.Min(best, r/l)
	}
	return best
}

// MinOverlap is the radius-to-segment-length ratio below which a sweep is
// considered too coarse to print as a smooth tube.
const MinOverlap = 0.5

// Build constructs every primitive and folds the results into one solid.
func Build(ctx context.Context, k kernel.Kernel, prims []Primitive) (kernel.Solid, error) {
	if len(prims) == 0 {
		return nil, ErrEmpty
	}
	solids := make([]kernel.Solid, len(prims))
	for i, p := range prims {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		s, err := p.Solid(k)
		if err != nil {
			return nil, fmt.Errorf("sweep: %s %d: %w", p.Kind, i, err)
		}
		solids[i] = s
	}
	return Fold(ctx, k, solids)
}

// Fold unions solids into one. The reduction is pairwise (a balanced tree
// rather than a left-leaning chain) and always combines neighbours in list
// order, so the same input always yields the same tree.
func Fold(ctx context.Context, k kernel.Kernel, solids []kernel.Solid) (kernel.Solid, error) {
	if len(solids) == 0 {
		return nil, ErrEmpty
	}
	level := append([]kernel.Solid(nil), solids...)
	for len(level) > 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next := make([]kernel.Solid, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			u, err := k.Union(level[i], level[i+1])
			if err != nil {
				return nil, fmt.Errorf("sweep: union: %w", err)
			}
			next = append(next, u)
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		level = next
	}
	return level[0], nil
}

// Tube sweeps samples into a solid, growing radii by offset.
func Tube(ctx context.Context, k kernel.Kernel, samples []curve.Sample, offset float64) (kernel.Solid, error) {
	prims, err := Capsules(samples, offset)
	if err != nil {
		return nil, err
	}
	return Build(ctx, k, prims)
}
