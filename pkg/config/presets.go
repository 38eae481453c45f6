package config

import (
	"fmt"
	"sort"
)

// DefaultEngine is the reference engine: a 30 mm chamber 100 mm long, a
// 15 mm throat 40 mm further on, a 45 mm exit after a 120 mm bell, a 3 mm
// wall with 24 cooling channels, and 4 injector rings of 8 under the
// plus-two policy, on a 6 mm flange.
func DefaultEngine() *Model {
	return &Model{
		Name: "engine",
		Kind: KindEngine,
		Engine: &Engine{
			ChamberRadius:    30,
			ThroatRadius:     15,
			ExitRadius:       45,
			ChamberLength:    100,
			ConvergingLength: 40,
			DivergingLength:  120,
			Wall:             3,
			Plate:            6,
			Channels: Channels{
				Count:     24,
				Radius:    0.7,
				Twists:    0.5,
				DepthMin:  1.0,
				DepthMax:  1.8,
				Spread:    400,
				Breathing: 0.05,
			},
			Injector: Injector{
				Rings:      4,
				PerRing:    8,
				HoleRadius: 1.2,
				Policy:     "plus-two",
			},
			Flange: &Flange{
				Radius:      55,
				Thickness:   6,
				BlendRadius: 5,
				Bolts:       8,
				BoltRadius:  2.5,
				BoltCircle:  46,
			},
		},
		Section:    Section{Z: 140, Thickness: 2},
		Resolution: DefaultResolution(),
	}
}

// RibbedEngine is the reference engine with a cosmetic skin carrying
// structural ribs around the chamber and grooves on the bell. Its
// injector uses the linear policy.
func RibbedEngine() *Model {
	m := DefaultEngine()
	m.Name = "ribbed-engine"
	e := m.Engine
	e.Skin = 1
	e.Channels.DepthMin = 2.0
	e.Channels.DepthMax = 2.8
	e.Injector.PerRing = 4
	e.Injector.Policy = "linear"
	e.Ribs = &Band{Count: 4, Start: 20, End: 90, Width: 1.5, Protrusion: 2}
	e.Grooves = &Band{Count: 5, Start: 170, End: 240, Width: 1, Depth: 0.8}
	return m
}

// FinnedEngine is the reference engine with helical fins on the bell and
// swelling sculpted ribs along the chamber, using the plus-three policy
// and Hermite seams.
func FinnedEngine() *Model {
	m := DefaultEngine()
	m.Name = "finned-engine"
	e := m.Engine
	e.Blend = "hermite"
	e.Injector.PerRing = 6
	e.Injector.Policy = "plus-three"
	e.Fins = &Fins{Count: 6, Start: 160, End: 250, Twists: 0.25, Width: 1.5, Protrusion: 2}
	e.Sculpted = &Sculpt{Count: 8, Start: 10, End: 95, Drift: 0.3, MinWidth: 1.2, MaxWidth: 2.4, Protrusion: 1.6}
	return m
}

// DefaultManifold is a tee: an inlet from below splitting into two
// outlets that leave sideways.
func DefaultManifold() *Model {
	return &Model{
		Name: "manifold",
		Kind: KindManifold,
		Manifold: &Manifold{
			Junction:       Vec{0, 0, 30},
			JunctionRadius: 8,
			Wall:           2.5,
			Inlet:          Port{Point: Vec{0, 0, 0}, Direction: Vec{0, 0, -1}, Radius: 8},
			Outlets: []Port{
				{Point: Vec{50, 0, 60}, Direction: Vec{1, 0, 0}, Radius: 5},
				{Point: Vec{-50, 0, 60}, Direction: Vec{-1, 0, 0}, Radius: 5},
			},
		},
		Section:    Section{Z: 30, Thickness: 2},
		Resolution: DefaultResolution(),
	}
}

var presets = map[string]func() *Model{
	"engine":        DefaultEngine,
	"ribbed-engine": RibbedEngine,
	"finned-engine": FinnedEngine,
	"manifold":      DefaultManifold,
}

// Presets lists the preset names in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Preset returns a fresh copy of the named preset.
func Preset(name string) (*Model, error) {
	f, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("config: unknown preset %q (want one of %v)", name, Presets())
	}
	return f(), nil
}
