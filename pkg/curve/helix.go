package curve

import (
	"math"

	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/profile"
)

// Helix winds around the Z axis from Z0 to Z1, turning Twists full turns.
// Radial gives the distance from the axis at each axial position, Width the
// sweep radius.
type Helix struct {
	StartAngle float64 // radians
	Z0, Z1     float64
	Twists     float64
	Radial     profile.Func
	Width      profile.Func
	// Breathing is the amplitude k of the 1 + k·sin(2πt) modulation applied
	// to the sweep radius. Zero disables it.
	Breathing float64
}

// Angle returns startAngle + 2π·twists·t.
func (h Helix) Angle(t float64) float64 {
	return h.StartAngle + 2*math.Pi*h.Twists*t
}

// Eval implements Curve. The sample Phase carries the helix angle.
func (h Helix) Eval(t float64) Sample {
	a := h.Angle(t)
	z := profile.Lerp(h.Z0, h.Z1, t)
	r := h.Radial(z)
	w := h.Width(z)
	if h.Breathing != 0 {
		w *= profile.Breathing(h.Breathing)(t)
	}
	return Sample{
		Point:  kernel.Vec3{X: r * math.Cos(a), Y: r * math.Sin(a), Z: z},
		Radius: w,
		Phase:  a,
	}
}
