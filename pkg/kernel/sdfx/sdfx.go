// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/lathe/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface checks.
var (
	_ kernel.Kernel  = (*SdfxKernel)(nil)
	_ kernel.Sampler = (*sdfxSolid)(nil)
)

// defaultMeshCells controls marching cubes tessellation resolution along
// the longest axis of the solid.
const defaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Distance evaluates the signed distance field at p.
func (s *sdfxSolid) Distance(p kernel.Vec3) float64 {
	return s.s.Evaluate(toV3(p))
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	meshCells int
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithMeshCells sets the marching cubes resolution used by ToMesh.
func WithMeshCells(n int) Option {
	return func(k *SdfxKernel) {
		if n > 0 {
			k.meshCells = n
		}
	}
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{meshCells: defaultMeshCells}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) (sdf.SDF3, error) {
	ss, ok := s.(*sdfxSolid)
	if !ok || ss == nil {
		return nil, fmt.Errorf("sdfx: foreign solid %T", s)
	}
	return ss.s, nil
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

func toV3(p kernel.Vec3) v3.Vec {
	return v3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

func validRadius(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}

// Capsule creates a sphere-swept frustum from p0 (radius r0) to p1
// (radius r1). Coincident endpoints give a sphere of the larger radius.
func (k *SdfxKernel) Capsule(p0, p1 kernel.Vec3, r0, r1 float64) (kernel.Solid, error) {
	if !validRadius(r0) || !validRadius(r1) {
		return nil, fmt.Errorf("%w: capsule radii %g, %g", kernel.ErrInvalidPrimitive, r0, r1)
	}
	if !p0.IsFinite() || !p1.IsFinite() {
		return nil, fmt.Errorf("%w: capsule endpoints %v, %v", kernel.ErrInvalidPrimitive, p0, p1)
	}
	return wrap(newRoundCone(p0, p1, r0, r1)), nil
}

// Frustum creates a flat-capped truncated cone from p0 (radius r0) to p1
// (radius r1). Coincident endpoints give a sphere of the larger radius.
func (k *SdfxKernel) Frustum(p0, p1 kernel.Vec3, r0, r1 float64) (kernel.Solid, error) {
	if !validRadius(r0) || !validRadius(r1) {
		return nil, fmt.Errorf("%w: frustum radii %g, %g", kernel.ErrInvalidPrimitive, r0, r1)
	}
	if !p0.IsFinite() || !p1.IsFinite() {
		return nil, fmt.Errorf("%w: frustum endpoints %v, %v", kernel.ErrInvalidPrimitive, p0, p1)
	}
	if p0 == p1 {
		return k.Sphere(p0, math.Max(r0, r1))
	}
	return wrap(newCappedCone(p0, p1, r0, r1)), nil
}

// Sphere creates a sphere at center.
func (k *SdfxKernel) Sphere(center kernel.Vec3, radius float64) (kernel.Solid, error) {
	if !validRadius(radius) || !center.IsFinite() {
		return nil, fmt.Errorf("%w: sphere %v r=%g", kernel.ErrInvalidPrimitive, center, radius)
	}
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Sphere3D: %w", err)
	}
	return wrap(sdf.Transform3D(s, sdf.Translate3d(toV3(center)))), nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return combine(a, b, func(a, b sdf.SDF3) sdf.SDF3 { return newUnion(a, b) })
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return combine(a, b, sdf.Difference3D)
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return combine(a, b, sdf.Intersect3D)
}

func combine(a, b kernel.Solid, op func(a, b sdf.SDF3) sdf.SDF3) (kernel.Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	return wrap(op(sa, sb)), nil
}

// ToMesh runs uniform marching cubes over the solid. Triangles do not share
// vertices, so every vertex carries its face normal.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ss, err := unwrap(s)
	if err != nil {
		return nil, err
	}

	tris := render.ToTriangles(ss, render.NewMarchingCubesUniform(k.meshCells))
	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(tris)*9),
		Normals:  make([]float32, 0, len(tris)*9),
		Indices:  make([]uint32, 0, len(tris)*3),
	}
	for _, tri := range tris {
		n := tri.Normal()
		for _, v := range tri {
			m.Indices = append(m.Indices, uint32(m.VertexCount()))
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
	}
	return m, nil
}
