package kernel

import "math"

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max Vec3
}

// Bounds returns the bounding box of s as a Box.
func Bounds(s Solid) Box {
	lo, hi := s.BoundingBox()
	return Box{
		Min: Vec3{lo[0], lo[1], lo[2]},
		Max: Vec3{hi[0], hi[1], hi[2]},
	}
}

// Size returns the extent of the box along each axis.
func (b Box) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Volume returns the box volume, or zero for an inverted box.
func (b Box) Volume() float64 {
	s := b.Size()
	if s.X <= 0 || s.Y <= 0 || s.Z <= 0 {
		return 0
	}
	return s.X * s.Y * s.Z
}

// Contains reports whether o lies within b, allowing tol of slack on
// every face.
func (b Box) Contains(o Box, tol float64) bool {
	return o.Min.X >= b.Min.X-tol && o.Min.Y >= b.Min.Y-tol && o.Min.Z >= b.Min.Z-tol &&
		o.Max.X <= b.Max.X+tol && o.Max.Y <= b.Max.Y+tol && o.Max.Z <= b.Max.Z+tol
}

// Union returns the smallest box enclosing b and o.
func (b Box) Union(o Box) Box {
	return Box{
		Min: Vec3{math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y), math.Min(b.Min.Z, o.Min.Z)},
		Max: Vec3{math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y), math.Max(b.Max.Z, o.Max.Z)},
	}
}

// Intersect returns the overlap of b and o. The result may be inverted
// (Min > Max on some axis) when the boxes are disjoint.
func (b Box) Intersect(o Box) Box {
	return Box{
		Min: Vec3{math.Max(b.Min.X, o.Min.X), math.Max(b.Min.Y, o.Min.Y), math.Max(b.Min.Z, o.Min.Z)},
		Max: Vec3{math.Min(b.Max.X, o.Max.X), math.Min(b.Max.Y, o.Max.Y), math.Min(b.Max.Z, o.Max.Z)},
	}
}

// Distance returns the distance from p to the box, zero when p is inside.
func (b Box) Distance(p Vec3) float64 {
	dx := math.Max(math.Max(b.Min.X-p.X, 0), p.X-b.Max.X)
	dy := math.Max(math.Max(b.Min.Y-p.Y, 0), p.Y-b.Max.Y)
	dz := math.Max(math.Max(b.Min.Z-p.Z, 0), p.Z-b.Max.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
