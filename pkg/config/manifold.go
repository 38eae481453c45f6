package config

import (
	"github.com/chazu/lathe/pkg/feature"
	"github.com/chazu/lathe/pkg/kernel"
)

// Manifold is the configuration of a branching manifold: one inlet and
// several outlets joined at a junction.
type Manifold struct {
	Junction       Vec     `yaml:"junction,flow"`
	JunctionRadius float64 `yaml:"junction_radius"`
	Wall           float64 `yaml:"wall"`
	Inlet          Port    `yaml:"inlet"`
	Outlets        []Port  `yaml:"outlets"`
}

// Port is an inlet or outlet. Direction points out of the part.
type Port struct {
	Point     Vec     `yaml:"point,flow"`
	Direction Vec     `yaml:"direction,flow"`
	Radius    float64 `yaml:"radius"`
}

func (v Vec) vec3() kernel.Vec3 {
	return kernel.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// Params returns the manifold parameters, inlet first.
func (m *Manifold) Params(res Resolution) feature.Manifold {
	ports := make([]feature.Port, 0, len(m.Outlets)+1)
	for _, p := range append([]Port{m.Inlet}, m.Outlets...) {
		ports = append(ports, feature.Port{
			Point:     p.Point.vec3(),
			Direction: p.Direction.vec3(),
			Radius:    p.Radius,
		})
	}
	return feature.Manifold{
		Junction:       m.Junction.vec3(),
		JunctionRadius: m.JunctionRadius,
		Ports:          ports,
		Wall:           m.Wall,
		Segments:       res.Branch,
	}
}
