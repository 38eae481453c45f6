package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetsAreValid(t *testing.T) {
	for _, name := range Presets() {
		t.Run(name, func(t *testing.T) {
			m, err := Preset(name)
			require.NoError(t, err)
			findings := m.Validate()
			assert.Empty(t, findings, "findings for %s:\n%s", name, spew.Sdump(findings))
			assert.NoError(t, findings.Err())
		})
	}
}

func TestPresetReturnsFreshCopy(t *testing.T) {
	a, err := Preset("engine")
	require.NoError(t, err)
	a.Engine.Wall = 99
	b, err := Preset("engine")
	require.NoError(t, err)
	assert.Equal(t, 3.0, b.Engine.Wall)
}

func TestUnknownPreset(t *testing.T) {
	_, err := Preset("submarine")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine")
}

func TestDefaultEngineFixture(t *testing.T) {
	e := DefaultEngine().Engine
	assert.Equal(t, 260.0, e.Length())
	assert.Equal(t, 24, e.Channels.Count)
	assert.Equal(t, 4, e.Injector.Rings)
	assert.Equal(t, 8, e.Injector.PerRing)

	inj, err := e.InjectorParams()
	require.NoError(t, err)
	assert.Equal(t, []int{10, 12, 14, 16}, inj.Holes.Counts(4))
	assert.Equal(t, -6.0, inj.Floor)
	assert.Equal(t, 6.0, inj.Top)
}

func TestChannelParamsDefaultBounds(t *testing.T) {
	m := DefaultEngine()
	p := m.Engine.ChannelParams(m.Resolution)
	r := m.Engine.Channels.MaxRadius()
	assert.InDelta(t, 6+2*r, p.Z0, 1e-12)
	assert.InDelta(t, 260-2*r, p.Z1, 1e-12)
	assert.Equal(t, 260, p.Segments)

	m.Engine.Channels.Start, m.Engine.Channels.End = 20, 200
	p = m.Engine.ChannelParams(m.Resolution)
	assert.Equal(t, 20.0, p.Z0)
	assert.Equal(t, 200.0, p.Z1)
}

func TestSaveLoadKeepsModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ribbed.yaml")
	want := RibbedEngine()
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got, spew.Sdump(got))
}

func TestParseYAML(t *testing.T) {
	src := `
name: tee
kind: manifold
manifold:
  junction: [0, 0, 30]
  junction_radius: 8
  wall: 2.5
  inlet: {point: [0, 0, 0], direction: [0, 0, -1], radius: 8}
  outlets:
    - {point: [50, 0, 60], direction: [1, 0, 0], radius: 5}
    - {point: [-50, 0, 60], direction: [-1, 0, 0], radius: 5}
section: {z: 30, thickness: 2}
resolution: {profile: 260, channel: 260, ring: 72, helix: 120, branch: 48, mesh_cells: 128}
`
	m, err := Parse([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, KindManifold, m.Kind)
	require.Len(t, m.Manifold.Outlets, 2)
	assert.Equal(t, Vec{-50, 0, 60}, m.Manifold.Outlets[1].Point)
	assert.Empty(t, m.Validate())

	p := m.Manifold.Params(m.Resolution)
	require.Len(t, p.Ports, 3)
	assert.Equal(t, 8.0, p.Ports[0].Radius, "inlet comes first")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kind: [engine"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func hasFinding(v ValidationErrors, field string, s Severity) bool {
	for _, e := range v {
		if e.Field == field && e.Severity == s {
			return true
		}
	}
	return false
}

func TestValidateEngineErrors(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(m *Model)
		field string
	}{
		{"negative radius", func(m *Model) { m.Engine.ThroatRadius = -15 }, "engine"},
		{"zero-length region", func(m *Model) { m.Engine.ConvergingLength = 0 }, "engine"},
		{"unknown blend", func(m *Model) { m.Engine.Blend = "cubic" }, "engine.blend"},
		{"zero wall", func(m *Model) { m.Engine.Wall = 0 }, "engine.wall"},
		{"plate past chamber", func(m *Model) { m.Engine.Plate = 120 }, "engine.injector_plate"},
		{"missing policy", func(m *Model) { m.Engine.Injector.Policy = "" }, "engine.injector.policy"},
		{"ring with no holes", func(m *Model) {
			m.Engine.Injector.Policy = "linear"
			m.Engine.Injector.PerRing = 0
		}, "engine.injector.ring[1]"},
		{"holes merge", func(m *Model) { m.Engine.Injector.PerRing = 40 }, "engine.injector.ring[1]"},
		{"ring span gone", func(m *Model) {
			m.Engine.Injector.Rings = 1
			m.Engine.Injector.HoleRadius = 10
		}, "engine.injector.hole_radius"},
		{"channels breach flow", func(m *Model) { m.Engine.Channels.DepthMax = 2.6 }, "engine.channels.depth_max"},
		{"channels breach surface", func(m *Model) { m.Engine.Channels.DepthMin = 0.5 }, "engine.channels.depth_min"},
		{"channels merge", func(m *Model) { m.Engine.Channels.Count = 80 }, "engine.channels.count"},
		{"flange too small", func(m *Model) { m.Engine.Flange.Radius = 30 }, "engine.flange.radius"},
		{"bolts cut shell", func(m *Model) { m.Engine.Flange.BoltCircle = 34 }, "engine.flange.bolt_circle"},
		{"blend pokes through", func(m *Model) { m.Engine.Flange.BlendRadius = 8 }, "engine.flange.blend_radius"},
		{"blend past rim", func(m *Model) { m.Engine.Flange.Radius = 37 }, "engine.flange.blend_radius"},
		{"floating rib", func(m *Model) { m.Engine.Ribs = &Band{Count: 2, Start: 20, End: 40, Width: 1, Protrusion: 2} }, "engine.ribs.protrusion"},
		{"deep groove", func(m *Model) { m.Engine.Grooves = &Band{Count: 2, Start: 20, End: 40, Width: 1, Depth: 0.5} }, "engine.grooves.depth"},
		{"fins off the end", func(m *Model) {
			m.Engine.Fins = &Fins{Count: 3, Start: 200, End: 260, Twists: 1, Width: 1, Protrusion: 1}
		}, "engine.fins"},
		{"sculpted widths reversed", func(m *Model) {
			m.Engine.Sculpted = &Sculpt{Count: 3, Start: 20, End: 80, MinWidth: 2, MaxWidth: 1, Protrusion: 1}
		}, "engine.sculpted_ribs"},
		{"no segments", func(m *Model) { m.Resolution.Ring = 0 }, "resolution.ring"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DefaultEngine()
			tt.mut(m)
			findings := m.Validate()
			assert.True(t, hasFinding(findings, tt.field, SeverityError), "want error on %s, got:\n%s", tt.field, spew.Sdump(findings))
			err := findings.Err()
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidateWarnsOnCoarseSweeps(t *testing.T) {
	m := DefaultEngine()
	m.Resolution.Channel = 40
	findings := m.Validate()
	assert.NoError(t, findings.Err())
	assert.True(t, hasFinding(findings.Warnings(), "resolution.channel", SeverityWarning), spew.Sdump(findings))
}

func TestChannelOverlapMeasuredPerChannel(t *testing.T) {
	m := DefaultEngine()
	for _, f := range m.Validate().Warnings() {
		assert.NotEqual(t, "resolution.channel", f.Field, "stock resolution flagged: %s", f.Message)
	}

	// 40 segments over a ~270 mm half-turn helix of radius 0.7 give a
	// ratio near 0.1. The jump between channels would read as 0.00.
	m.Resolution.Channel = 40
	var msg string
	for _, f := range m.Validate().Warnings() {
		if f.Field == "resolution.channel" {
			msg = f.Message
		}
	}
	require.NotEmpty(t, msg)
	assert.NotContains(t, msg, "overlap 0.00")
}

func TestValidateManifold(t *testing.T) {
	m := DefaultManifold()
	m.Manifold.Outlets[0].Point = Vec{0, 0, 35}
	m.Manifold.Outlets[1].Direction = Vec{}
	findings := m.Validate()
	assert.True(t, hasFinding(findings, "manifold.outlets[0].point", SeverityError))
	assert.True(t, hasFinding(findings, "manifold.outlets[1].direction", SeverityError))
}

func TestValidateKindMismatch(t *testing.T) {
	m := DefaultEngine()
	m.Kind = KindManifold
	assert.True(t, hasFinding(m.Validate(), "manifold", SeverityError))

	m.Kind = "boat"
	assert.True(t, hasFinding(m.Validate(), "kind", SeverityError))
}

func TestValidationErrorFormat(t *testing.T) {
	e := ValidationError{Field: "engine.wall", Message: "is 0", Severity: SeverityError}
	assert.Equal(t, "[error] engine.wall: is 0", e.Error())
	assert.Equal(t, "[warning] coarse", ValidationError{Message: "coarse", Severity: SeverityWarning}.Error())
	assert.True(t, strings.HasPrefix(Severity(7).String(), "Severity("))
}
