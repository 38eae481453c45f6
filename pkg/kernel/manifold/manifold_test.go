//go:build manifold

package manifold

import (
	"math"
	"testing"

	"github.com/chazu/lathe/pkg/kernel"
)

func mustNew(t *testing.T) kernel.Kernel {
	t.Helper()
	k, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return k
}

func TestSphereBounds(t *testing.T) {
	k := mustNew(t)
	s, err := k.Sphere(kernel.V(10, 0, 0), 5)
	if err != nil {
		t.Fatalf("Sphere() error = %v", err)
	}
	min, max := s.BoundingBox()
	// Facets sit inside the true sphere, so allow a little slack.
	if math.Abs(min[0]-5) > 0.5 || math.Abs(max[0]-15) > 0.5 {
		t.Errorf("sphere X bounds = [%f, %f], want ~[5, 15]", min[0], max[0])
	}
}

func TestCapsuleAlongX(t *testing.T) {
	k := mustNew(t)
	c, err := k.Capsule(kernel.V(0, 0, 0), kernel.V(100, 0, 0), 10, 4)
	if err != nil {
		t.Fatalf("Capsule() error = %v", err)
	}
	min, max := c.BoundingBox()
	if math.Abs(min[0]+10) > 0.5 || math.Abs(max[0]-104) > 0.5 {
		t.Errorf("capsule X bounds = [%f, %f], want ~[-10, 104]", min[0], max[0])
	}
	if max[2]-min[2] > 21 {
		t.Errorf("capsule Z extent = %f, want <= 20", max[2]-min[2])
	}
}

func TestCapsuleDegenerate(t *testing.T) {
	k := mustNew(t)
	c, err := k.Capsule(kernel.V(1, 1, 1), kernel.V(1, 1, 1), 2, 3)
	if err != nil {
		t.Fatalf("Capsule() error = %v", err)
	}
	min, max := c.BoundingBox()
	if math.Abs((max[0]-min[0])-6) > 0.5 {
		t.Errorf("degenerate capsule width = %f, want ~6", max[0]-min[0])
	}
}

func TestDifferenceMesh(t *testing.T) {
	k := mustNew(t)
	body, err := k.Capsule(kernel.V(0, 0, 0), kernel.V(0, 0, 50), 20, 20)
	if err != nil {
		t.Fatal(err)
	}
	bore, err := k.Capsule(kernel.V(0, 0, -30), kernel.V(0, 0, 80), 5, 5)
	if err != nil {
		t.Fatal(err)
	}
	diff, err := k.Difference(body, bore)
	if err != nil {
		t.Fatalf("Difference() error = %v", err)
	}
	mesh, err := k.ToMesh(diff)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if mesh.IsEmpty() || mesh.TriangleCount() == 0 {
		t.Fatal("difference mesh is empty")
	}
	if len(mesh.Normals) != len(mesh.Vertices) {
		t.Errorf("normals length %d != vertices length %d", len(mesh.Normals), len(mesh.Vertices))
	}
}

func TestFrustumFlatEnds(t *testing.T) {
	k := mustNew(t)
	f, err := k.Frustum(kernel.V(0, 0, 0), kernel.V(0, 0, 10), 6, 3)
	if err != nil {
		t.Fatalf("Frustum() error = %v", err)
	}
	min, max := f.BoundingBox()
	if math.Abs(min[2]) > 1e-6 || math.Abs(max[2]-10) > 1e-6 {
		t.Errorf("frustum Z bounds = [%f, %f], want [0, 10]", min[2], max[2])
	}
}
