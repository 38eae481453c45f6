package feature

import (
	"github.com/chazu/lathe/pkg/curve"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/sweep"
)

// Port is an opening of a manifold. Direction points out of the part.
type Port struct {
	Point     kernel.Vec3
	Direction kernel.Vec3
	Radius    float64
}

// Manifold is a branching flow part: every port is connected to one
// junction by a Bézier branch that leaves the junction toward the port and
// arrives along the port direction.
type Manifold struct {
	Junction       kernel.Vec3
	JunctionRadius float64
	Ports          []Port
	Wall           float64
	Segments       int
}

func (m Manifold) check(name string) error {
	if len(m.Ports) < 2 {
		return invalid(name, "need at least 2 ports, got %d", len(m.Ports))
	}
	if err := positive(name, "junction radius", m.JunctionRadius); err != nil {
		return err
	}
	if err := positive(name, "wall", m.Wall); err != nil {
		return err
	}
	for i, p := range m.Ports {
		if err := positive(name, "port radius", p.Radius); err != nil {
			return err
		}
		if p.Direction.Length() == 0 {
			return invalid(name, "port %d has no direction", i)
		}
		if p.Point.Dist(m.Junction) <= m.JunctionRadius {
			return invalid(name, "port %d lies inside the junction", i)
		}
	}
	return nil
}

// Branch returns the centerline from the junction to port p. The radius
// eases from the junction radius to the port radius.
func (m Manifold) Branch(p Port) curve.Bezier {
	d := p.Direction.Normalize()
	reach := m.Junction.Dist(p.Point) / 3
	return curve.Bezier{
		P0: m.Junction,
		P1: m.Junction.Lerp(p.Point, 1.0/3),
		P2: p.Point.Sub(d.Scale(reach)),
		P3: p.Point,
		R0: m.JunctionRadius,
		R1: p.Radius,
	}
}

func (m Manifold) branches(offset float64) ([]sweep.Primitive, error) {
	curves := make([]curve.Curve, len(m.Ports))
	for i, p := range m.Ports {
		curves[i] = m.Branch(p)
	}
	prims, err := tubes(curves, m.Segments, offset)
	if err != nil {
		return nil, err
	}
	return append(prims, sweep.Sphere(m.Junction, m.JunctionRadius+offset)), nil
}

// ManifoldShell is every branch thickened by the wall plus a sphere at the
// junction that blends the merge.
func ManifoldShell(m Manifold) (Feature, error) {
	const name = "manifold-shell"
	if err := m.check(name); err != nil {
		return Feature{}, err
	}
	prims, err := m.branches(m.Wall)
	if err != nil {
		return Feature{}, err
	}
	return Feature{Name: name, Role: RoleBody, Prims: prims}, nil
}

// ManifoldBore is the zero-offset bore through every branch. A short
// capsule past each port runs through the shell's end cap to open it.
func ManifoldBore(m Manifold) (Feature, error) {
	const name = "manifold-bore"
	if err := m.check(name); err != nil {
		return Feature{}, err
	}
	prims, err := m.branches(0)
	if err != nil {
		return Feature{}, err
	}
	for _, p := range m.Ports {
		out := p.Point.Add(p.Direction.Normalize().Scale(2 * m.Wall))
		prims = append(prims, sweep.Capsule(p.Point, out, p.Radius, p.Radius))
	}
	return Feature{Name: name, Role: RoleSubtractive, Prims: prims}, nil
}
