package sdfx

import (
	"math"

	"github.com/chazu/lathe/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// roundCone is the exact signed distance field of the convex hull of two
// spheres: a frustum with spherical end caps. It is the capsule primitive
// every sweep is built from.
type roundCone struct {
	a, b   kernel.Vec3
	r1, r2 float64
	// Precomputed segment terms.
	ba      kernel.Vec3
	l2, rr  float64
	a2, il2 float64
	sphere  bool
	center  kernel.Vec3
	radius  float64
	bb      sdf.Box3
}

func newRoundCone(a, b kernel.Vec3, r1, r2 float64) *roundCone {
	c := &roundCone{a: a, b: b, r1: r1, r2: r2}
	c.ba = b.Sub(a)
	c.l2 = c.ba.Dot(c.ba)
	c.rr = r1 - r2
	c.a2 = c.l2 - c.rr*c.rr

	// One end sphere swallows the other (or they coincide): the hull is
	// just the larger sphere.
	if math.Sqrt(c.l2) <= math.Abs(c.rr) || c.l2 == 0 {
		c.sphere = true
		c.center, c.radius = a, r1
		if r2 > r1 {
			c.center, c.radius = b, r2
		}
	} else {
		c.il2 = 1 / c.l2
	}

	c.bb = sdf.Box3{
		Min: v3.Vec{
			X: math.Min(a.X-r1, b.X-r2),
			Y: math.Min(a.Y-r1, b.Y-r2),
			Z: math.Min(a.Z-r1, b.Z-r2),
		},
		Max: v3.Vec{
			X: math.Max(a.X+r1, b.X+r2),
			Y: math.Max(a.Y+r1, b.Y+r2),
			Z: math.Max(a.Z+r1, b.Z+r2),
		},
	}
	return c
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// Evaluate returns the signed distance from p to the round cone.
func (c *roundCone) Evaluate(p v3.Vec) float64 {
	q := kernel.Vec3{X: p.X, Y: p.Y, Z: p.Z}
	if c.sphere {
		return q.Dist(c.center) - c.radius
	}
	pa := q.Sub(c.a)
	y := pa.Dot(c.ba)
	z := y - c.l2
	w := pa.Scale(c.l2).Sub(c.ba.Scale(y))
	x2 := w.Dot(w)
	y2 := y * y * c.l2
	z2 := z * z * c.l2

	k := sign(c.rr) * c.rr * c.rr * x2
	if sign(z)*c.a2*z2 > k {
		return math.Sqrt(x2+z2)*c.il2 - c.r2
	}
	if sign(y)*c.a2*y2 < k {
		return math.Sqrt(x2+y2)*c.il2 - c.r1
	}
	return (math.Sqrt(x2*c.a2*c.il2)+y*c.rr)*c.il2 - c.r1
}

// BoundingBox returns the bounding box of the round cone.
func (c *roundCone) BoundingBox() sdf.Box3 {
	return c.bb
}

// cappedCone is the exact signed distance field of a flat-capped
// truncated cone between two points. Stacked along an axis these are the
// thin frustums a solid of revolution is approximated with.
type cappedCone struct {
	a, b   kernel.Vec3
	ra, rb float64
	ba     kernel.Vec3
	baba   float64
	rba, k float64
	bb     sdf.Box3
}

func newCappedCone(a, b kernel.Vec3, ra, rb float64) *cappedCone {
	c := &cappedCone{a: a, b: b, ra: ra, rb: rb}
	c.ba = b.Sub(a)
	c.baba = c.ba.Dot(c.ba)
	c.rba = rb - ra
	c.k = c.rba*c.rba + c.baba
	// The rims are circles perpendicular to the axis; bound them per axis.
	axis := c.ba.Normalize()
	ext := func(r float64) kernel.Vec3 {
		return kernel.Vec3{
			X: r * math.Sqrt(math.Max(0, 1-axis.X*axis.X)),
			Y: r * math.Sqrt(math.Max(0, 1-axis.Y*axis.Y)),
			Z: r * math.Sqrt(math.Max(0, 1-axis.Z*axis.Z)),
		}
	}
	ea, eb := ext(ra), ext(rb)
	box := kernel.Box{Min: a.Sub(ea), Max: a.Add(ea)}.Union(kernel.Box{Min: b.Sub(eb), Max: b.Add(eb)})
	c.bb = sdf.Box3{Min: toV3(box.Min), Max: toV3(box.Max)}
	return c
}

// Evaluate returns the signed distance from p to the capped cone.
func (c *cappedCone) Evaluate(p v3.Vec) float64 {
	q := kernel.Vec3{X: p.X, Y: p.Y, Z: p.Z}
	pa := q.Sub(c.a)
	papa := pa.Dot(pa)
	paba := pa.Dot(c.ba) / c.baba
	x := math.Sqrt(math.Max(0, papa-paba*paba*c.baba))

	capR := c.ra
	if paba >= 0.5 {
		capR = c.rb
	}
	cax := math.Max(0, x-capR)
	cay := math.Abs(paba-0.5) - 0.5

	f := math.Max(0, math.Min(1, (c.rba*(x-c.ra)+paba*c.baba)/c.k))
	cbx := x - c.ra - f*c.rba
	cby := paba - f

	s := 1.0
	if cbx < 0 && cay < 0 {
		s = -1
	}
	return s * math.Sqrt(math.Min(cax*cax+cay*cay*c.baba, cbx*cbx+cby*cby*c.baba))
}

// BoundingBox returns the bounding box of the capped cone.
func (c *cappedCone) BoundingBox() sdf.Box3 {
	return c.bb
}

// unionNode is a hard-min union of two fields that skips evaluating a
// child whose bounding box is already farther away than the best distance
// found so far. Sweeps are folded into balanced trees of these nodes, so a
// query only descends into the few branches near the point.
type unionNode struct {
	a, b   sdf.SDF3
	ba, bb kernel.Box
	bb3    sdf.Box3
}

func newUnion(a, b sdf.SDF3) *unionNode {
	u := &unionNode{a: a, b: b, ba: toBox(a.BoundingBox()), bb: toBox(b.BoundingBox())}
	all := u.ba.Union(u.bb)
	u.bb3 = sdf.Box3{Min: toV3(all.Min), Max: toV3(all.Max)}
	return u
}

func toBox(b sdf.Box3) kernel.Box {
	return kernel.Box{
		Min: kernel.Vec3{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		Max: kernel.Vec3{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
}

// Evaluate returns min(a(p), b(p)), evaluating the nearer child first.
func (u *unionNode) Evaluate(p v3.Vec) float64 {
	q := kernel.Vec3{X: p.X, Y: p.Y, Z: p.Z}
	first, second := u.a, u.b
	secondBox := u.bb
	if u.bb.Distance(q) < u.ba.Distance(q) {
		first, second = second, first
		secondBox = u.ba
	}
	d := first.Evaluate(p)
	// Outside the second box its field is at least the box distance.
	if sd := secondBox.Distance(q); sd > 0 && sd >= d {
		return d
	}
	return math.Min(d, second.Evaluate(p))
}

// BoundingBox returns the union of the children's bounding boxes.
func (u *unionNode) BoundingBox() sdf.Box3 {
	return u.bb3
}
