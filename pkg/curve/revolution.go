package curve

import (
	"math"

	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/profile"
)

// Revolution walks the Z axis from Z0 to Z1. Swept with its radii it
// approximates the solid of revolution of the profile as a stack of thin
// frustums.
type Revolution struct {
	Z0, Z1 float64
	Radius profile.Func
}

// Eval implements Curve.
func (r Revolution) Eval(t float64) Sample {
	z := profile.Lerp(r.Z0, r.Z1, t)
	return Sample{Point: kernel.Vec3{Z: z}, Radius: r.Radius(z)}
}

// Ring is a circle of radius Radius around the Z axis at height Z. Width is
// the sweep radius of the band.
type Ring struct {
	Z      float64
	Radius float64
	Width  float64
	// Depth is reported as the sample Phase; grooves use it to record how
	// far they cut.
	Depth float64
}

// Eval implements Curve. t=0 and t=1 coincide, closing the loop.
func (r Ring) Eval(t float64) Sample {
	a := 2 * math.Pi * t
	return Sample{
		Point:  kernel.Vec3{X: r.Radius * math.Cos(a), Y: r.Radius * math.Sin(a), Z: r.Z},
		Radius: r.Width,
		Phase:  r.Depth,
	}
}

// Line is a straight segment with linearly interpolated radius.
type Line struct {
	A, B   kernel.Vec3
	RA, RB float64
}

// Eval implements Curve.
func (l Line) Eval(t float64) Sample {
	return Sample{Point: l.A.Lerp(l.B, t), Radius: profile.Lerp(l.RA, l.RB, t)}
}
