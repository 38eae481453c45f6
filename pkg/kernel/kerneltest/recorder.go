// Package kerneltest provides a geometry-free kernel.Kernel for tests that
// care about which primitives and booleans a builder issues rather than the
// shape they produce.
package kerneltest

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/chazu/lathe/pkg/kernel"
)

// ErrInjected is the failure returned by operations named in Recorder.FailOn.
var ErrInjected = errors.New("kerneltest: injected failure")

// Op names a kernel operation.
type Op string

const (
	OpCapsule      Op = "capsule"
	OpFrustum      Op = "frustum"
	OpSphere       Op = "sphere"
	OpUnion        Op = "union"
	OpDifference   Op = "difference"
	OpIntersection Op = "intersection"
	OpToMesh       Op = "mesh"
)

// Solid is a recorded solid: its bounding box plus the number of primitives
// folded into it.
type Solid struct {
	Box        kernel.Box
	Primitives int
	// Tag is the operation that produced the solid.
	Tag Op
}

// BoundingBox returns the tracked bounding box.
func (s *Solid) BoundingBox() (min, max [3]float64) {
	return s.Box.Min.Array(), s.Box.Max.Array()
}

// Recorder implements kernel.Kernel by counting calls. Bounding boxes
// follow the usual CSG rules: unions grow, differences keep the minuend's
// box, intersections take the overlap. It is safe for concurrent use.
type Recorder struct {
	// FailOn makes the named operation return ErrInjected.
	FailOn map[Op]bool

	mu     sync.Mutex
	counts map[Op]int
	log    []Op
}

var _ kernel.Kernel = (*Recorder)(nil)

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{counts: make(map[Op]int)}
}

// Count returns how many times op was called.
func (r *Recorder) Count(op Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[op]
}

// Log returns the sequence of operations in call order.
func (r *Recorder) Log() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.log...)
}

// Reset clears all counts.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = make(map[Op]int)
	r.log = nil
}

func (r *Recorder) record(op Op) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[Op]int)
	}
	r.counts[op]++
	r.log = append(r.log, op)
	if r.FailOn[op] {
		return fmt.Errorf("%w: %s", ErrInjected, op)
	}
	return nil
}

func recorded(s kernel.Solid) (*Solid, error) {
	rs, ok := s.(*Solid)
	if !ok || rs == nil {
		return nil, fmt.Errorf("kerneltest: foreign solid %T", s)
	}
	return rs, nil
}

// Capsule records a capsule primitive.
func (r *Recorder) Capsule(p0, p1 kernel.Vec3, r0, r1 float64) (kernel.Solid, error) {
	if err := r.record(OpCapsule); err != nil {
		return nil, err
	}
	if r0 <= 0 || r1 <= 0 || !p0.IsFinite() || !p1.IsFinite() {
		return nil, fmt.Errorf("%w: capsule %v-%v r=%g,%g", kernel.ErrInvalidPrimitive, p0, p1, r0, r1)
	}
	a := ball(p0, r0)
	b := ball(p1, r1)
	return &Solid{Box: a.Union(b), Primitives: 1, Tag: OpCapsule}, nil
}

// Frustum records a flat-capped frustum primitive. Its box only covers the
// axial span between the end points.
func (r *Recorder) Frustum(p0, p1 kernel.Vec3, r0, r1 float64) (kernel.Solid, error) {
	if err := r.record(OpFrustum); err != nil {
		return nil, err
	}
	if r0 <= 0 || r1 <= 0 || !p0.IsFinite() || !p1.IsFinite() {
		return nil, fmt.Errorf("%w: frustum %v-%v r=%g,%g", kernel.ErrInvalidPrimitive, p0, p1, r0, r1)
	}
	return &Solid{Box: rim(p0, p1, r0).Union(rim(p1, p0, r1)), Primitives: 1, Tag: OpFrustum}, nil
}

// rim bounds the circle of radius r centered at c, perpendicular to the
// axis through c and o.
func rim(c, o kernel.Vec3, r float64) kernel.Box {
	axis := o.Sub(c).Normalize()
	e := kernel.Vec3{
		X: r * math.Sqrt(math.Max(0, 1-axis.X*axis.X)),
		Y: r * math.Sqrt(math.Max(0, 1-axis.Y*axis.Y)),
		Z: r * math.Sqrt(math.Max(0, 1-axis.Z*axis.Z)),
	}
	return kernel.Box{Min: c.Sub(e), Max: c.Add(e)}
}

// Sphere records a sphere primitive.
func (r *Recorder) Sphere(center kernel.Vec3, radius float64) (kernel.Solid, error) {
	if err := r.record(OpSphere); err != nil {
		return nil, err
	}
	if radius <= 0 || !center.IsFinite() {
		return nil, fmt.Errorf("%w: sphere %v r=%g", kernel.ErrInvalidPrimitive, center, radius)
	}
	return &Solid{Box: ball(center, radius), Primitives: 1, Tag: OpSphere}, nil
}

func ball(c kernel.Vec3, r float64) kernel.Box {
	d := kernel.V(r, r, r)
	return kernel.Box{Min: c.Sub(d), Max: c.Add(d)}
}

func (r *Recorder) binary(op Op, a, b kernel.Solid, box func(a, b kernel.Box) kernel.Box) (kernel.Solid, error) {
	if err := r.record(op); err != nil {
		return nil, err
	}
	ra, err := recorded(a)
	if err != nil {
		return nil, err
	}
	rb, err := recorded(b)
	if err != nil {
		return nil, err
	}
	return &Solid{
		Box:        box(ra.Box, rb.Box),
		Primitives: ra.Primitives + rb.Primitives,
		Tag:        op,
	}, nil
}

// Union records a union.
func (r *Recorder) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return r.binary(OpUnion, a, b, kernel.Box.Union)
}

// Difference records a difference; the result keeps a's bounding box.
func (r *Recorder) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return r.binary(OpDifference, a, b, func(a, _ kernel.Box) kernel.Box { return a })
}

// Intersection records an intersection.
func (r *Recorder) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return r.binary(OpIntersection, a, b, kernel.Box.Intersect)
}

// ToMesh returns an empty mesh.
func (r *Recorder) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	if err := r.record(OpToMesh); err != nil {
		return nil, err
	}
	if _, err := recorded(s); err != nil {
		return nil, err
	}
	return &kernel.Mesh{}, nil
}
