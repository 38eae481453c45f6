//go:build manifold

// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library (https://github.com/elalish/manifold). Manifold provides
// guaranteed-manifold mesh boolean operations, which makes it a better fit
// than the SDF kernel when exact facet output matters more than speed.
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/chazu/lathe/pkg/kernel"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*ManifoldKernel)(nil)
var _ kernel.Solid = (*manifoldSolid)(nil)

// circularSegments is the facet count used for cylinders and spheres.
const circularSegments = 32

// manifoldSolid wraps a C ManifoldManifold pointer and implements kernel.Solid.
type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

// BoundingBox returns the axis-aligned bounding box of the solid.
func (s *manifoldSolid) BoundingBox() (min, max [3]float64) {
	alloc := C.manifold_alloc_box()
	bbox := C.manifold_bounding_box(alloc, s.ptr)
	defer C.manifold_delete_box(bbox)

	min[0] = float64(C.manifold_box_min_x(bbox))
	min[1] = float64(C.manifold_box_min_y(bbox))
	min[2] = float64(C.manifold_box_min_z(bbox))
	max[0] = float64(C.manifold_box_max_x(bbox))
	max[1] = float64(C.manifold_box_max_y(bbox))
	max[2] = float64(C.manifold_box_max_z(bbox))
	return min, max
}

// newSolid wraps a C ManifoldManifold pointer with Go-side finalizer
// for automatic memory management.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

func unwrap(s kernel.Solid) (*manifoldSolid, error) {
	ms, ok := s.(*manifoldSolid)
	if !ok || ms == nil || ms.ptr == nil {
		return nil, fmt.Errorf("manifold: foreign solid %T", s)
	}
	return ms, nil
}

// Available reports whether the Manifold kernel was compiled in.
const Available = true

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
type ManifoldKernel struct{}

// New creates a new ManifoldKernel. Returns an error if the Manifold
// C library cannot be initialized.
func New() (kernel.Kernel, error) {
	return &ManifoldKernel{}, nil
}

func validRadius(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}

func sphereAt(center kernel.Vec3, radius float64) *manifoldSolid {
	alloc := C.manifold_alloc_manifold()
	ball := C.manifold_sphere(alloc, C.double(radius), C.int(circularSegments))
	defer C.manifold_delete_manifold(ball)

	moved := C.manifold_alloc_manifold()
	ptr := C.manifold_translate(moved, ball,
		C.double(center.X), C.double(center.Y), C.double(center.Z),
	)
	return newSolid(ptr)
}

// Sphere creates a sphere at center.
func (k *ManifoldKernel) Sphere(center kernel.Vec3, radius float64) (kernel.Solid, error) {
	if !validRadius(radius) || !center.IsFinite() {
		return nil, fmt.Errorf("%w: sphere %v r=%g", kernel.ErrInvalidPrimitive, center, radius)
	}
	return sphereAt(center, radius), nil
}

// frustumSolid builds a tapered cylinder along +Z from the origin, tilts it
// by the polar angle around Y, swings it by the azimuth around Z, then
// moves it to p0.
func frustumSolid(p0, p1 kernel.Vec3, r0, r1 float64) *manifoldSolid {
	d := p1.Sub(p0)
	length := d.Length()
	dir := d.Scale(1 / length)
	polar := math.Acos(math.Max(-1, math.Min(1, dir.Z))) * 180 / math.Pi
	azimuth := math.Atan2(dir.Y, dir.X) * 180 / math.Pi

	alloc := C.manifold_alloc_manifold()
	cyl := C.manifold_cylinder(alloc,
		C.double(length),
		C.double(r0), // radius_low
		C.double(r1), // radius_high
		C.int(circularSegments),
		C.int(0), // center=false: base at z=0
	)
	defer C.manifold_delete_manifold(cyl)

	rotAlloc := C.manifold_alloc_manifold()
	rot := C.manifold_rotate(rotAlloc, cyl, C.double(0), C.double(polar), C.double(azimuth))
	defer C.manifold_delete_manifold(rot)

	moveAlloc := C.manifold_alloc_manifold()
	return newSolid(C.manifold_translate(moveAlloc, rot,
		C.double(p0.X), C.double(p0.Y), C.double(p0.Z),
	))
}

func checkSegment(kind string, p0, p1 kernel.Vec3, r0, r1 float64) error {
	if !validRadius(r0) || !validRadius(r1) {
		return fmt.Errorf("%w: %s radii %g, %g", kernel.ErrInvalidPrimitive, kind, r0, r1)
	}
	if !p0.IsFinite() || !p1.IsFinite() {
		return fmt.Errorf("%w: %s endpoints %v, %v", kernel.ErrInvalidPrimitive, kind, p0, p1)
	}
	return nil
}

// Frustum creates a flat-capped tapered cylinder from p0 to p1.
func (k *ManifoldKernel) Frustum(p0, p1 kernel.Vec3, r0, r1 float64) (kernel.Solid, error) {
	if err := checkSegment("frustum", p0, p1, r0, r1); err != nil {
		return nil, err
	}
	if p0 == p1 {
		return sphereAt(p0, math.Max(r0, r1)), nil
	}
	return frustumSolid(p0, p1, r0, r1), nil
}

// Capsule creates a tapered cylinder from p0 to p1 capped by spheres of
// radius r0 and r1.
func (k *ManifoldKernel) Capsule(p0, p1 kernel.Vec3, r0, r1 float64) (kernel.Solid, error) {
	if err := checkSegment("capsule", p0, p1, r0, r1); err != nil {
		return nil, err
	}
	if p0.Dist(p1) <= math.Abs(r0-r1) {
		if r1 > r0 {
			return sphereAt(p1, r1), nil
		}
		return sphereAt(p0, r0), nil
	}

	s, err := k.Union(frustumSolid(p0, p1, r0, r1), sphereAt(p0, r0))
	if err != nil {
		return nil, err
	}
	return k.Union(s, sphereAt(p1, r1))
}

// Union returns the boolean union of two solids.
func (k *ManifoldKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return boolean("union", a, b)
}

// Difference returns a minus b.
func (k *ManifoldKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return boolean("difference", a, b)
}

// Intersection returns the boolean intersection of two solids.
func (k *ManifoldKernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return boolean("intersection", a, b)
}

func boolean(op string, a, b kernel.Solid) (kernel.Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}

	alloc := C.manifold_alloc_manifold()
	var ptr *C.ManifoldManifold
	switch op {
	case "union":
		ptr = C.manifold_union(alloc, sa.ptr, sb.ptr)
	case "difference":
		ptr = C.manifold_difference(alloc, sa.ptr, sb.ptr)
	default:
		ptr = C.manifold_intersection(alloc, sa.ptr, sb.ptr)
	}
	if status := C.manifold_status(ptr); status != C.MANIFOLD_NO_ERROR {
		C.manifold_delete_manifold(ptr)
		return nil, fmt.Errorf("manifold: %s failed with status %d", op, int(status))
	}
	return newSolid(ptr), nil
}

// ToMesh copies the solid's MeshGL out of Manifold. MeshGL interleaves
// numProp floats per vertex, position first; when fewer than six are present
// the normals are rebuilt from the faces.
func (k *ManifoldKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ms, err := unwrap(s)
	if err != nil {
		return nil, err
	}

	meshGL := C.manifold_get_meshgl(C.manifold_alloc_meshgl(), ms.ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))
	numProp := int(C.manifold_meshgl_num_prop(meshGL))
	if numVert == 0 || numTri == 0 {
		return &kernel.Mesh{}, nil
	}
	if numProp < 3 {
		return nil, fmt.Errorf("manifold: mesh has %d properties per vertex, need 3", numProp)
	}

	props := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties((*C.float)(unsafe.Pointer(&props[0])), meshGL)

	m := &kernel.Mesh{
		Vertices: make([]float32, 0, numVert*3),
		Indices:  make([]uint32, numTri*3),
	}
	C.manifold_meshgl_tri_verts((*C.uint32_t)(unsafe.Pointer(&m.Indices[0])), meshGL)

	withNormals := numProp >= 6
	if withNormals {
		m.Normals = make([]float32, 0, numVert*3)
	}
	for v := range numVert {
		p := props[v*numProp:]
		m.Vertices = append(m.Vertices, p[0], p[1], p[2])
		if withNormals {
			m.Normals = append(m.Normals, p[3], p[4], p[5])
		}
	}
	if !withNormals {
		m.Normals = m.VertexNormals()
	}
	return m, nil
}
