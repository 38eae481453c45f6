package kernel

import "math"

// Mesh is the tessellated form of one part. Arrays are flat: three floats
// per vertex in Vertices and Normals, three indices per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // shell, channels or section part name
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Triangle returns the three corner positions of triangle i.
func (m *Mesh) Triangle(i int) [3]Vec3 {
	var tri [3]Vec3
	for j := 0; j < 3; j++ {
		v := m.Indices[i*3+j] * 3
		tri[j] = Vec3{float64(m.Vertices[v]), float64(m.Vertices[v+1]), float64(m.Vertices[v+2])}
	}
	return tri
}

// Bounds returns the bounding box of the mesh vertices. An empty mesh
// yields the zero Box.
func (m *Mesh) Bounds() Box {
	if m.IsEmpty() {
		return Box{}
	}
	lo := Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		x, y, z := float64(m.Vertices[i]), float64(m.Vertices[i+1]), float64(m.Vertices[i+2])
		lo = Vec3{math.Min(lo.X, x), math.Min(lo.Y, y), math.Min(lo.Z, z)}
		hi = Vec3{math.Max(hi.X, x), math.Max(hi.Y, y), math.Max(hi.Z, z)}
	}
	return Box{Min: lo, Max: hi}
}

// VertexNormals returns one unit normal per vertex, the area-weighted sum
// of the faces that use it. Vertices with no usable face get a zero normal.
func (m *Mesh) VertexNormals() []float32 {
	sums := make([]Vec3, m.VertexCount())
	for t := 0; t < m.TriangleCount(); t++ {
		tri := m.Triangle(t)
		// The cross product's length is twice the face area.
		n := tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0]))
		for _, idx := range m.Indices[t*3 : t*3+3] {
			sums[idx] = sums[idx].Add(n)
		}
	}
	out := make([]float32, 0, len(sums)*3)
	for _, n := range sums {
		if n.Length() > 1e-12 {
			n = n.Normalize()
		} else {
			n = Vec3{}
		}
		out = append(out, float32(n.X), float32(n.Y), float32(n.Z))
	}
	return out
}
