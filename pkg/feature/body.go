package feature

import (
	"fmt"
	"math"

	"github.com/chazu/lathe/pkg/curve"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/profile"
	"github.com/chazu/lathe/pkg/sweep"
)

// Body is the revolved engine body: the nozzle flow path, the wall around
// it and the injector plate closing the chamber at z = 0.
type Body struct {
	Nozzle profile.Nozzle
	Wall   float64
	// Skin is an extra cosmetic offset added to the outer surface.
	Skin float64
	// Plate is the thickness of the injector plate. The flow bore starts
	// at z = Plate.
	Plate float64
	// Segments is the number of axial segments used for revolved
	// surfaces.
	Segments int
}

// Length returns the axial extent of the body.
func (b Body) Length() float64 {
	return b.Nozzle.TotalLength()
}

// Flow returns the flow radius, with z clamped to the body.
func (b Body) Flow() profile.Func {
	return profile.Clamp(b.Nozzle.Func(), 0, b.Length())
}

// Outer returns flow radius + wall + skin, with z clamped to the body.
func (b Body) Outer() profile.Func {
	return profile.Offset(b.Flow(), b.Wall+b.Skin)
}

func (b Body) validate(name string) error {
	if err := b.Nozzle.Validate(); err != nil {
		return fmt.Errorf("feature: %s: %w", name, err)
	}
	if err := positive(name, "wall", b.Wall); err != nil {
		return err
	}
	if b.Skin < 0 {
		return invalid(name, "skin is %g, must not be negative", b.Skin)
	}
	if b.Plate < 0 || b.Plate >= b.Length() {
		return invalid(name, "injector plate %g outside body [0, %g)", b.Plate, b.Length())
	}
	if b.Segments < 1 {
		return invalid(name, "segments is %d", b.Segments)
	}
	return nil
}

// OuterShell is the outer envelope of the body: a stack of flat-capped
// frustums following the outer profile from z = 0 to the exit plane.
func OuterShell(b Body) (Feature, error) {
	const name = "outer-shell"
	if err := b.validate(name); err != nil {
		return Feature{}, err
	}
	samples, err := curve.Samples(curve.Revolution{Z0: 0, Z1: b.Length(), Radius: b.Outer()}, b.Segments)
	if err != nil {
		return Feature{}, err
	}
	prims, err := sweep.Frustums(samples, 0)
	if err != nil {
		return Feature{}, err
	}
	return Feature{Name: name, Role: RoleBody, Prims: prims}, nil
}

// FlowChannel is the zero-offset flow bore. It starts on top of the
// injector plate and runs one wall thickness past the exit plane so the
// nozzle is open.
func FlowChannel(b Body) (Feature, error) {
	const name = "flow"
	if err := b.validate(name); err != nil {
		return Feature{}, err
	}
	end := b.Length() + b.Wall
	n := int(math.Ceil(float64(b.Segments) * (end - b.Plate) / b.Length()))
	samples, err := curve.Samples(curve.Revolution{Z0: b.Plate, Z1: end, Radius: b.Flow()}, n)
	if err != nil {
		return Feature{}, err
	}
	prims, err := sweep.Frustums(samples, 0)
	if err != nil {
		return Feature{}, err
	}
	return Feature{Name: name, Role: RoleSubtractive, Prims: prims}, nil
}

// Channels describes a bundle of helical cooling channels buried in the
// wall.
type Channels struct {
	Count  int
	Radius float64
	Twists float64
	// Depth below the outer surface of the channel centerline, a Gaussian
	// bump peaking at the throat: DepthMin far away, DepthMax at the
	// throat, Spread in squared length units.
	DepthMin, DepthMax float64
	Spread             float64
	Breathing          float64
	// Z0 and Z1 bound the channel centerlines.
	Z0, Z1   float64
	Segments int
}

// Depth returns the channel-depth profile.
func (c Channels) Depth(b Body) profile.Func {
	return profile.GaussianBump{
		Center: b.Nozzle.ThroatZ(),
		Spread: c.Spread,
		Min:    c.DepthMin,
		Max:    c.DepthMax,
	}.Func()
}

// CoolingChannels sweeps Count helices evenly spaced in angle. Each
// centerline sits Depth(z) below the outer surface.
func CoolingChannels(b Body, c Channels) (Feature, error) {
	const name = "channels"
	if err := b.validate(name); err != nil {
		return Feature{}, err
	}
	if c.Count < 1 {
		return Feature{}, invalid(name, "count is %d", c.Count)
	}
	for _, f := range []struct {
		field string
		v     float64
	}{{"radius", c.Radius}, {"spread", c.Spread}} {
		if err := positive(name, f.field, f.v); err != nil {
			return Feature{}, err
		}
	}
	if c.Z1 <= c.Z0 {
		return Feature{}, invalid(name, "range [%g, %g] is empty", c.Z0, c.Z1)
	}

	radial := profile.Sub(b.Outer(), c.Depth(b))
	width := profile.Constant(c.Radius)
	curves := make([]curve.Curve, c.Count)
	for i := range curves {
		curves[i] = curve.Helix{
			StartAngle: 2 * math.Pi * float64(i) / float64(c.Count),
			Z0:         c.Z0,
			Z1:         c.Z1,
			Twists:     c.Twists,
			Radial:     radial,
			Width:      width,
			Breathing:  c.Breathing,
		}
	}
	prims, err := tubes(curves, c.Segments, 0)
	if err != nil {
		return Feature{}, fmt.Errorf("feature: %s: %w", name, err)
	}
	return Feature{Name: name, Role: RoleSubtractive, Prims: prims}, nil
}

// axial returns a point on the Z axis.
func axial(z float64) kernel.Vec3 {
	return kernel.Vec3{Z: z}
}
