package profile

import (
	"errors"
	"fmt"
	"math"
)

// Blend selects how a region interpolates between its end radii.
type Blend int

const (
	// BlendSmoothstep eases each region with t²(3−2t): value-continuous,
	// zero slope at every seam.
	BlendSmoothstep Blend = iota
	// BlendLinear interpolates each region with a straight lerp. The
	// profile has slope jumps at the seams.
	BlendLinear
	// BlendHermite uses cubic Hermite segments with explicit tangents:
	// zero at the chamber seam and at the throat, the diverging secant at
	// the exit. The profile is C¹ across every seam and the bell keeps
	// flaring at the exit plane instead of flattening out.
	BlendHermite
)

var blendNames = map[Blend]string{
	BlendSmoothstep: "smoothstep",
	BlendLinear:     "linear",
	BlendHermite:    "hermite",
}

func (b Blend) String() string {
	if s, ok := blendNames[b]; ok {
		return s
	}
	return fmt.Sprintf("Blend(%d)", int(b))
}

// ParseBlend converts a name ("smoothstep", "linear", "hermite") to a Blend.
// The empty string selects BlendSmoothstep.
func ParseBlend(s string) (Blend, error) {
	if s == "" {
		return BlendSmoothstep, nil
	}
	for b, name := range blendNames {
		if name == s {
			return b, nil
		}
	}
	return 0, fmt.Errorf("profile: unknown blend %q", s)
}

// ErrNonPhysical reports a profile whose dimensions cannot describe a real
// flow path.
var ErrNonPhysical = errors.New("profile: non-physical parameters")

// Nozzle is the three-region flow profile of a rocket engine: a cylindrical
// chamber, a converging cone to the throat and a diverging bell to the exit.
// z = 0 is the injector face.
type Nozzle struct {
	ChamberRadius    float64
	ThroatRadius     float64
	ExitRadius       float64
	ChamberLength    float64
	ConvergingLength float64
	DivergingLength  float64
	Blend            Blend
}

// TotalLength returns the axial extent of the flow path.
func (n Nozzle) TotalLength() float64 {
	return n.ChamberLength + n.ConvergingLength + n.DivergingLength
}

// ThroatZ returns the axial position of the throat.
func (n Nozzle) ThroatZ() float64 {
	return n.ChamberLength + n.ConvergingLength
}

// Validate checks that every radius and region length is positive and that
// the throat is the narrowest point.
func (n Nozzle) Validate() error {
	checks := []struct {
		name string
		v    float64
	}{
		{"chamber radius", n.ChamberRadius},
		{"throat radius", n.ThroatRadius},
		{"exit radius", n.ExitRadius},
		{"chamber length", n.ChamberLength},
		{"converging length", n.ConvergingLength},
		{"diverging length", n.DivergingLength},
	}
	for _, c := range checks {
		if !(c.v > 0) || math.IsInf(c.v, 0) {
			return fmt.Errorf("%w: %s is %g, must be positive", ErrNonPhysical, c.name, c.v)
		}
	}
	if n.ThroatRadius > n.ChamberRadius || n.ThroatRadius > n.ExitRadius {
		return fmt.Errorf("%w: throat radius %g wider than chamber %g or exit %g",
			ErrNonPhysical, n.ThroatRadius, n.ChamberRadius, n.ExitRadius)
	}
	if _, ok := blendNames[n.Blend]; !ok {
		return fmt.Errorf("%w: %s", ErrNonPhysical, n.Blend)
	}
	return nil
}

// Radius returns the flow radius at axial position z in [0, TotalLength].
func (n Nozzle) Radius(z float64) float64 {
	throatZ := n.ThroatZ()
	switch {
	case z < n.ChamberLength:
		return n.ChamberRadius
	case z < throatZ:
		t := (z - n.ChamberLength) / n.ConvergingLength
		return n.blend(n.ChamberRadius, n.ThroatRadius, 0, n.throatSlope(), n.ConvergingLength, t)
	default:
		t := clamp01((z - throatZ) / n.DivergingLength)
		return n.blend(n.ThroatRadius, n.ExitRadius, n.throatSlope(), n.exitSlope(), n.DivergingLength, t)
	}
}

// Func returns n.Radius as a Func.
func (n Nozzle) Func() Func {
	return n.Radius
}

// blend interpolates one region. s0 and s1 are dr/dz slopes at the region
// ends, only used by BlendHermite.
func (n Nozzle) blend(r0, r1, s0, s1, length, t float64) float64 {
	switch n.Blend {
	case BlendLinear:
		return Lerp(r0, r1, t)
	case BlendHermite:
		return Hermite(r0, r1, s0*length, s1*length, t)
	default:
		return Lerp(r0, r1, Smoothstep(t))
	}
}

// throatSlope is zero: the throat is a minimum of the profile, and a
// Hermite curve with a zero tangent there cannot undershoot it.
func (n Nozzle) throatSlope() float64 {
	return 0
}

// exitSlope continues the diverging secant at the exit plane.
func (n Nozzle) exitSlope() float64 {
	return (n.ExitRadius - n.ThroatRadius) / n.DivergingLength
}
