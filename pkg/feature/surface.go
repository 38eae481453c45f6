package feature

import (
	"math"

	"github.com/chazu/lathe/pkg/curve"
	"github.com/chazu/lathe/pkg/profile"
)

// Band places Count ring-shaped bands around the body, evenly spaced
// between Z0 and Z1 (a single band sits halfway).
type Band struct {
	Count  int
	Z0, Z1 float64
	// Width is the sweep radius of the band.
	Width float64
	// Protrusion is how far a rib stands proud of the outer surface; Depth
	// is how far a groove cuts into it.
	Protrusion float64
	Depth      float64
	Segments   int
}

func (bd Band) positions() []float64 {
	zs := make([]float64, bd.Count)
	for i := range zs {
		if bd.Count == 1 {
			zs[i] = (bd.Z0 + bd.Z1) / 2
			continue
		}
		zs[i] = profile.Lerp(bd.Z0, bd.Z1, float64(i)/float64(bd.Count-1))
	}
	return zs
}

func (bd Band) check(name string) error {
	if bd.Count < 1 {
		return invalid(name, "count is %d", bd.Count)
	}
	if bd.Z1 < bd.Z0 {
		return invalid(name, "range [%g, %g] is reversed", bd.Z0, bd.Z1)
	}
	return positive(name, "width", bd.Width)
}

// Ribs are additive rings. Each ring's centerline sits at
// outer(z) + Protrusion − Width, so the band reaches Protrusion beyond the
// surface and 2·Width − Protrusion into it; Protrusion < 2·Width keeps it
// fused to the shell.
func Ribs(b Body, bd Band) (Feature, error) {
	const name = "ribs"
	if err := b.validate(name); err != nil {
		return Feature{}, err
	}
	if err := bd.check(name); err != nil {
		return Feature{}, err
	}
	if err := positive(name, "protrusion", bd.Protrusion); err != nil {
		return Feature{}, err
	}
	if bd.Protrusion >= 2*bd.Width {
		return Feature{}, invalid(name, "protrusion %g does not overlap the shell (width %g)", bd.Protrusion, bd.Width)
	}
	outer := b.Outer()
	var curves []curve.Curve
	for _, z := range bd.positions() {
		curves = append(curves, curve.Ring{Z: z, Radius: outer(z) + bd.Protrusion - bd.Width, Width: bd.Width})
	}
	prims, err := tubes(curves, bd.Segments, 0)
	if err != nil {
		return Feature{}, err
	}
	return Feature{Name: name, Role: RoleAdditive, Prims: prims}, nil
}

// Grooves are subtractive rings cut Depth into the outer surface. The
// centerline sits at outer(z) + Width − Depth.
func Grooves(b Body, bd Band) (Feature, error) {
	const name = "grooves"
	if err := b.validate(name); err != nil {
		return Feature{}, err
	}
	if err := bd.check(name); err != nil {
		return Feature{}, err
	}
	if err := positive(name, "depth", bd.Depth); err != nil {
		return Feature{}, err
	}
	if bd.Depth >= b.Wall+b.Skin {
		return Feature{}, invalid(name, "depth %g breaches the wall (%g)", bd.Depth, b.Wall+b.Skin)
	}
	outer := b.Outer()
	var curves []curve.Curve
	for _, z := range bd.positions() {
		curves = append(curves, curve.Ring{Z: z, Radius: outer(z) + bd.Width - bd.Depth, Width: bd.Width, Depth: bd.Depth})
	}
	prims, err := tubes(curves, bd.Segments, 0)
	if err != nil {
		return Feature{}, err
	}
	return Feature{Name: name, Role: RoleSubtractive, Prims: prims}, nil
}

// Fins describes helical bands wound around the outside of the body.
type Fins struct {
	Count      int
	Z0, Z1     float64
	Twists     float64
	Width      float64
	Protrusion float64
	Segments   int
}

// TwistedFins sweeps Count helical bands, evenly spaced in angle, placed
// like Ribs relative to the outer surface.
func TwistedFins(b Body, f Fins) (Feature, error) {
	const name = "fins"
	if err := b.validate(name); err != nil {
		return Feature{}, err
	}
	if f.Count < 1 {
		return Feature{}, invalid(name, "count is %d", f.Count)
	}
	if err := positive(name, "width", f.Width); err != nil {
		return Feature{}, err
	}
	if !(f.Protrusion > 0) || f.Protrusion >= 2*f.Width {
		return Feature{}, invalid(name, "protrusion %g must be in (0, %g)", f.Protrusion, 2*f.Width)
	}
	radial := profile.Offset(b.Outer(), f.Protrusion-f.Width)
	curves := make([]curve.Curve, f.Count)
	for i := range curves {
		curves[i] = curve.Helix{
			StartAngle: 2 * math.Pi * float64(i) / float64(f.Count),
			Z0:         f.Z0,
			Z1:         f.Z1,
			Twists:     f.Twists,
			Radial:     radial,
			Width:      profile.Constant(f.Width),
		}
	}
	prims, err := tubes(curves, f.Segments, 0)
	if err != nil {
		return Feature{}, err
	}
	return Feature{Name: name, Role: RoleAdditive, Prims: prims}, nil
}

// Sculpt describes ribs running up the body that swell from MinWidth at
// their ends to MaxWidth halfway along.
type Sculpt struct {
	Count              int
	Z0, Z1             float64
	Drift              float64
	MinWidth, MaxWidth float64
	Protrusion         float64
	Segments           int
}

// Width returns the swelling width profile.
func (s Sculpt) Width() profile.Func {
	return func(z float64) float64 {
		u := (z - s.Z0) / (s.Z1 - s.Z0)
		return profile.Lerp(s.MinWidth, s.MaxWidth, math.Sin(math.Pi*math.Max(0, math.Min(1, u))))
	}
}

// SculptedRibs sweeps Count meridional ribs. Every rib keeps a constant
// Protrusion beyond the surface while its width swells, so the embedded
// part grows with the width.
func SculptedRibs(b Body, s Sculpt) (Feature, error) {
	const name = "sculpted-ribs"
	if err := b.validate(name); err != nil {
		return Feature{}, err
	}
	if s.Count < 1 {
		return Feature{}, invalid(name, "count is %d", s.Count)
	}
	if err := positive(name, "min width", s.MinWidth); err != nil {
		return Feature{}, err
	}
	if s.MaxWidth < s.MinWidth {
		return Feature{}, invalid(name, "max width %g below min width %g", s.MaxWidth, s.MinWidth)
	}
	if s.Z1 <= s.Z0 {
		return Feature{}, invalid(name, "range [%g, %g] is empty", s.Z0, s.Z1)
	}
	if !(s.Protrusion > 0) || s.Protrusion >= 2*s.MinWidth {
		return Feature{}, invalid(name, "protrusion %g must be in (0, %g)", s.Protrusion, 2*s.MinWidth)
	}
	outer, width := b.Outer(), s.Width()
	radial := func(z float64) float64 { return outer(z) + s.Protrusion - width(z) }
	curves := make([]curve.Curve, s.Count)
	for i := range curves {
		curves[i] = curve.Meridian{
			Angle:  2 * math.Pi * float64(i) / float64(s.Count),
			Drift:  s.Drift,
			Z0:     s.Z0,
			Z1:     s.Z1,
			Radial: radial,
			Width:  width,
		}
	}
	prims, err := tubes(curves, s.Segments, 0)
	if err != nil {
		return Feature{}, err
	}
	return Feature{Name: name, Role: RoleAdditive, Prims: prims}, nil
}
