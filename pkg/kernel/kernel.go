// Package kernel defines the boundary between the sweep pipeline and the
// geometry kernel that stores and combines solids. Implementations (sdfx,
// manifold) provide the two primitive constructors, the three boolean
// operations and mesh extraction behind this interface, so the rest of the
// system never sees a kernel-specific type.
package kernel

import "errors"

// ErrInvalidPrimitive is returned by primitive constructors when asked for a
// shape with a non-positive or non-finite radius or position.
var ErrInvalidPrimitive = errors.New("kernel: invalid primitive")

// Solid is an opaque handle to a kernel solid. Solids are immutable: every
// boolean operation returns a new Solid and leaves its operands untouched.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Sampler is implemented by solids that can answer point queries. Distance
// returns a signed distance estimate that is negative inside the solid.
type Sampler interface {
	Distance(p Vec3) float64
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives. Capsule has spherical end caps, Frustum flat ones.
	Capsule(p0, p1 Vec3, r0, r1 float64) (Solid, error)
	Frustum(p0, p1 Vec3, r0, r1 float64) (Solid, error)
	Sphere(center Vec3, radius float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) (Solid, error)
	Difference(a, b Solid) (Solid, error)
	Intersection(a, b Solid) (Solid, error)

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Contains reports whether p lies inside s. Solids that do not implement
// Sampler report false.
func Contains(s Solid, p Vec3) bool {
	sm, ok := s.(Sampler)
	if !ok {
		return false
	}
	return sm.Distance(p) <= 0
}
