package curve

import (
	"math"

	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/profile"
)

// Meridian runs up the outside of a body of revolution at a fixed angle,
// optionally drifting by Drift radians over its length. Sculpted ribs use
// it with a Width that swells toward the middle.
type Meridian struct {
	Angle  float64
	Drift  float64
	Z0, Z1 float64
	Radial profile.Func
	Width  profile.Func
}

// Eval implements Curve. Phase carries the angle of the sample.
func (m Meridian) Eval(t float64) Sample {
	a := m.Angle + m.Drift*t
	z := profile.Lerp(m.Z0, m.Z1, t)
	r := m.Radial(z)
	return Sample{
		Point:  kernel.Vec3{X: r * math.Cos(a), Y: r * math.Sin(a), Z: z},
		Radius: m.Width(z),
		Phase:  a,
	}
}
