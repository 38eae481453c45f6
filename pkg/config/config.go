// Package config holds the numeric model configurations (rocket engines and
// branching manifolds), their presets and their YAML form.
//
// A Model is read-only once loaded: every builder reads from it and none
// writes back.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind selects the generator a model is built with.
type Kind string

const (
	KindEngine   Kind = "engine"
	KindManifold Kind = "manifold"
)

// Vec is a point or direction, written as [x, y, z] in YAML.
type Vec [3]float64

// Model is one buildable configuration.
type Model struct {
	Name       string     `yaml:"name"`
	Kind       Kind       `yaml:"kind"`
	Engine     *Engine    `yaml:"engine,omitempty"`
	Manifold   *Manifold  `yaml:"manifold,omitempty"`
	Section    Section    `yaml:"section"`
	Resolution Resolution `yaml:"resolution"`
}

// Resolution holds the sampling constants. Sweeps are only smooth and
// connected when segments are short relative to the swept radius, so these
// are manufacturability parameters as much as precision ones.
type Resolution struct {
	// Profile is the number of axial segments for revolved surfaces.
	Profile int `yaml:"profile"`
	// Channel is the number of segments per cooling channel.
	Channel int `yaml:"channel"`
	// Ring is the number of segments per rib or groove ring.
	Ring int `yaml:"ring"`
	// Helix is the number of segments per fin or sculpted rib.
	Helix int `yaml:"helix"`
	// Branch is the number of segments per manifold branch.
	Branch int `yaml:"branch"`
	// MeshCells is the marching-cubes cell count along the longest axis.
	MeshCells int `yaml:"mesh_cells"`
}

// DefaultResolution returns the sampling constants used by the presets.
func DefaultResolution() Resolution {
	return Resolution{
		Profile:   260,
		Channel:   260,
		Ring:      72,
		Helix:     120,
		Branch:    48,
		MeshCells: 200,
	}
}

// Section places the inspection slab: a slab of the given thickness
// perpendicular to the Z axis at height Z, covering [−HalfWidth,
// HalfWidth] in X and Y. A zero HalfWidth is sized from the shell.
type Section struct {
	Z         float64 `yaml:"z"`
	Thickness float64 `yaml:"thickness"`
	HalfWidth float64 `yaml:"half_width,omitempty"`
}

// Parse decodes a YAML model.
func Parse(data []byte) (*Model, error) {
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return &m, nil
}

// Load reads a YAML model from path.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Marshal encodes m as YAML.
func Marshal(m *Model) ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	return data, nil
}

// Save writes m to path as YAML.
func Save(path string, m *Model) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
