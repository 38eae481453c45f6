package feature

import (
	"fmt"
	"math"

	"github.com/chazu/lathe/pkg/curve"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/sweep"
)

// Flange is the mounting plate under the body: a disk from z = −Thickness
// to z = 0, a fillet bead where the shell meets its top face, and bolt holes
// on a bolt circle.
type Flange struct {
	Radius    float64
	Thickness float64
	// BlendRadius is the radius of the bead swept around the shell foot.
	// It must not exceed Thickness so the underside stays flat.
	BlendRadius float64
	Bolts       int
	BoltRadius  float64
	BoltCircle  float64
	// Segments samples the bead ring.
	Segments int
}

// Base builds the flange disk and the fillet bead: a ring of spheres swept
// on z = 0 at the shell's outer radius, which fills the inside corner
// between shell and flange.
func Base(b Body, f Flange) (Feature, error) {
	const name = "base"
	if err := b.validate(name); err != nil {
		return Feature{}, err
	}
	for _, c := range []struct {
		field string
		v     float64
	}{{"radius", f.Radius}, {"thickness", f.Thickness}} {
		if err := positive(name, c.field, c.v); err != nil {
			return Feature{}, err
		}
	}
	prims := []sweep.Primitive{
		sweep.Frustum(axial(-f.Thickness), axial(0), f.Radius, f.Radius),
	}
	if f.BlendRadius > 0 {
		if f.BlendRadius > f.Thickness {
			return Feature{}, invalid(name, "blend radius %g exceeds thickness %g", f.BlendRadius, f.Thickness)
		}
		shell := b.Outer()(0)
		if shell+f.BlendRadius >= f.Radius {
			return Feature{}, invalid(name, "blend bead at %g overhangs flange radius %g", shell+f.BlendRadius, f.Radius)
		}
		bead, err := tubes([]curve.Curve{curve.Ring{Radius: shell, Width: f.BlendRadius}}, f.Segments, 0)
		if err != nil {
			return Feature{}, fmt.Errorf("feature: %s: %w", name, err)
		}
		prims = append(prims, bead...)
	}
	return Feature{Name: name, Role: RoleAdditive, Prims: prims}, nil
}

// BoltHoles builds f.Bolts through-holes evenly spaced on the bolt circle.
// The hole capsules' round ends reach past both faces of the flange.
func BoltHoles(f Flange) (Feature, error) {
	const name = "bolt-holes"
	if f.Bolts < 1 {
		return Feature{}, invalid(name, "bolt count is %d", f.Bolts)
	}
	if err := positive(name, "bolt radius", f.BoltRadius); err != nil {
		return Feature{}, err
	}
	if f.BoltCircle+f.BoltRadius >= f.Radius {
		return Feature{}, invalid(name, "bolt circle %g does not fit flange radius %g", f.BoltCircle, f.Radius)
	}
	prims := make([]sweep.Primitive, f.Bolts)
	for i := range prims {
		a := 2 * math.Pi * float64(i) / float64(f.Bolts)
		x, y := f.BoltCircle*math.Cos(a), f.BoltCircle*math.Sin(a)
		prims[i] = sweep.Capsule(
			kernel.Vec3{X: x, Y: y, Z: -f.Thickness},
			kernel.Vec3{X: x, Y: y, Z: 0},
			f.BoltRadius, f.BoltRadius)
	}
	return Feature{Name: name, Role: RoleSubtractive, Prims: prims}, nil
}
