// Package export writes meshes and section images to disk.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lathe/pkg/kernel"
)

// ErrEmptyMesh is returned when asked to save a mesh without triangles.
var ErrEmptyMesh = errors.New("export: empty mesh")

// triangles converts m to sdfx triangles.
func triangles(m *kernel.Mesh) []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, m.TriangleCount())
	for i := range out {
		corners := m.Triangle(i)
		var t sdf.Triangle3
		for j, c := range corners {
			t[j] = v3.Vec{X: c.X, Y: c.Y, Z: c.Z}
		}
		out[i] = &t
	}
	return out
}

// SaveSTL writes m to path as binary STL.
func SaveSTL(path string, m *kernel.Mesh) error {
	if m == nil || m.TriangleCount() == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyMesh, path)
	}
	if err := render.SaveSTL(path, triangles(m)); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

// PartPath is the file name of a part mesh in dir.
func PartPath(dir, part string) string {
	return filepath.Join(dir, part+".stl")
}

// SaveParts writes each mesh to dir as <PartName>.stl, creating dir if
// needed, and returns the written paths in mesh order.
func SaveParts(dir string, meshes []*kernel.Mesh) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	paths := make([]string, 0, len(meshes))
	for _, m := range meshes {
		if m.PartName == "" {
			return paths, fmt.Errorf("export: mesh without part name")
		}
		p := PartPath(dir, m.PartName)
		if err := SaveSTL(p, m); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
