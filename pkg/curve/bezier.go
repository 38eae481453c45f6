package curve

import (
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/profile"
)

// Bezier is a cubic Bézier space curve with a radius that eases from R0 at
// P0 to R1 at P3.
type Bezier struct {
	P0, P1, P2, P3 kernel.Vec3
	R0, R1         float64
}

// Point evaluates the Bernstein form
// (1−t)³P0 + 3(1−t)²tP1 + 3(1−t)t²P2 + t³P3.
func (b Bezier) Point(t float64) kernel.Vec3 {
	mt := 1 - t
	return b.P0.Scale(mt * mt * mt).
		Add(b.P1.Scale(3 * mt * mt * t)).
		Add(b.P2.Scale(3 * mt * t * t)).
		Add(b.P3.Scale(t * t * t))
}

// Tangent returns the first derivative dB/dt.
func (b Bezier) Tangent(t float64) kernel.Vec3 {
	mt := 1 - t
	return b.P1.Sub(b.P0).Scale(3 * mt * mt).
		Add(b.P2.Sub(b.P1).Scale(6 * mt * t)).
		Add(b.P3.Sub(b.P2).Scale(3 * t * t))
}

// Radius returns lerp(R0, R1, smoothstep(t)).
func (b Bezier) Radius(t float64) float64 {
	return profile.Lerp(b.R0, b.R1, profile.Smoothstep(t))
}

// Eval implements Curve.
func (b Bezier) Eval(t float64) Sample {
	return Sample{Point: b.Point(t), Radius: b.Radius(t)}
}

// Straight returns a Bézier whose control points are evenly spaced on the
// segment from a to b, so it traces the segment at uniform speed.
func Straight(a, b kernel.Vec3, r0, r1 float64) Bezier {
	return Bezier{
		P0: a,
		P1: a.Lerp(b, 1.0/3),
		P2: a.Lerp(b, 2.0/3),
		P3: b,
		R0: r0,
		R1: r1,
	}
}
