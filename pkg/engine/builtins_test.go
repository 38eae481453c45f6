package engine

import (
	"reflect"
	"strings"
	"testing"

	"github.com/chazu/lathe/pkg/config"
)

// evalModel evaluates source and fails the test on any error.
func evalModel(t *testing.T, source string) *config.Model {
	t.Helper()
	m, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if m == nil {
		t.Fatal("expected non-nil model")
	}
	return m
}

// evalFails evaluates source and returns the first eval error message.
func evalFails(t *testing.T, source string) string {
	t.Helper()
	m, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if m != nil {
		t.Fatal("expected nil model")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected an eval error")
	}
	return evalErrs[0].Message
}

func TestPresetMatchesConfig(t *testing.T) {
	for _, name := range config.Presets() {
		t.Run(name, func(t *testing.T) {
			m := evalModel(t, `(preset "`+name+`")`)
			want, err := config.Preset(name)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(m, want) {
				t.Errorf("preset %s differs:\n got %+v\nwant %+v", name, m, want)
			}
		})
	}
}

func TestPresetAcceptsKeyword(t *testing.T) {
	m := evalModel(t, `(preset :ribbed-engine)`)
	if m.Name != "ribbed-engine" || m.Engine.Ribs == nil {
		t.Errorf("got %q with ribs %v", m.Name, m.Engine.Ribs)
	}
}

func TestUnknownPreset(t *testing.T) {
	msg := evalFails(t, `(preset "rocket")`)
	if !strings.Contains(msg, "unknown preset") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestEngineKeepsReferenceValues(t *testing.T) {
	m := evalModel(t, `(engine "short" :diverging-length 80)`)
	ref := config.DefaultEngine()

	if m.Name != "short" || m.Kind != config.KindEngine {
		t.Fatalf("got %q kind %q", m.Name, m.Kind)
	}
	if m.Engine.DivergingLength != 80 {
		t.Errorf("diverging length = %v, want 80", m.Engine.DivergingLength)
	}
	if m.Engine.ChamberRadius != ref.Engine.ChamberRadius {
		t.Errorf("chamber radius = %v, want %v", m.Engine.ChamberRadius, ref.Engine.ChamberRadius)
	}
	if !reflect.DeepEqual(m.Engine.Injector, ref.Engine.Injector) {
		t.Errorf("injector = %+v, want %+v", m.Engine.Injector, ref.Engine.Injector)
	}
}

func TestEngineFullScript(t *testing.T) {
	source := `
;; a ribbed engine with a custom injector
(def r 0.6)
(engine "custom"
  :chamber-radius 28 :throat-radius 14 :exit-radius 40
  :chamber-length 90 :converging-length 35 :diverging-length 110
  :blend :hermite
  :wall 3 :skin 1 :injector-plate 5
  :channels (channels :count 20 :radius r :twists 0.75
                      :depth-min 1.1 :depth-max 2 :spread 300 :breathing 0.1)
  :injector (injector :rings 3 :per-ring 6 :hole-radius 1 :policy :plus-three)
  :flange (flange :radius 50 :thickness 5 :blend-radius 4 :bolts 6
                  :bolt-radius 2 :bolt-circle 43)
  :ribs (ribs :count 3 :start 20 :end 80 :width 1.5 :protrusion 2)
  :grooves (grooves :count 4 :start 150 :end 220 :width 1 :depth 0.4)
  :fins (fins :count 6 :start 140 :end 230 :twists 0.25 :width 1.2 :protrusion 2)
  :sculpted-ribs (sculpted-ribs :count 8 :start 10 :end 85 :drift 0.2
                                :min-width 0.8 :max-width 2 :protrusion 1.5))
`
	m := evalModel(t, source)
	e := m.Engine

	if e.ChamberLength != 90 || e.ConvergingLength != 35 || e.DivergingLength != 110 {
		t.Errorf("lengths = %v/%v/%v", e.ChamberLength, e.ConvergingLength, e.DivergingLength)
	}
	if e.Blend != "hermite" {
		t.Errorf("blend = %q, want hermite", e.Blend)
	}
	if e.Skin != 1 || e.Plate != 5 {
		t.Errorf("skin = %v plate = %v", e.Skin, e.Plate)
	}
	wantCh := config.Channels{Count: 20, Radius: 0.6, Twists: 0.75, DepthMin: 1.1, DepthMax: 2, Spread: 300, Breathing: 0.1}
	if e.Channels != wantCh {
		t.Errorf("channels = %+v, want %+v", e.Channels, wantCh)
	}
	wantInj := config.Injector{Rings: 3, PerRing: 6, HoleRadius: 1, Policy: "plus-three"}
	if e.Injector != wantInj {
		t.Errorf("injector = %+v, want %+v", e.Injector, wantInj)
	}
	if e.Flange == nil || e.Flange.BoltCircle != 43 || e.Flange.Bolts != 6 {
		t.Errorf("flange = %+v", e.Flange)
	}
	if e.Ribs == nil || e.Ribs.Protrusion != 2 || e.Ribs.Depth != 0 {
		t.Errorf("ribs = %+v", e.Ribs)
	}
	if e.Grooves == nil || e.Grooves.Depth != 0.4 || e.Grooves.Protrusion != 0 {
		t.Errorf("grooves = %+v", e.Grooves)
	}
	if e.Fins == nil || e.Fins.Twists != 0.25 {
		t.Errorf("fins = %+v", e.Fins)
	}
	if e.Sculpted == nil || e.Sculpted.MaxWidth != 2 || e.Sculpted.Drift != 0.2 {
		t.Errorf("sculpted ribs = %+v", e.Sculpted)
	}

	// Without a section call the slab sits at the throat.
	if m.Section.Z != 125 || m.Section.Thickness != 2 {
		t.Errorf("section = %+v, want z 125 thickness 2", m.Section)
	}
	if errs := m.Validate().Errors(); len(errs) > 0 {
		t.Errorf("script model should validate: %v", errs)
	}
}

func TestEngineRemovesFlange(t *testing.T) {
	m := evalModel(t, `(engine "bare" :flange nil)`)
	if m.Engine.Flange != nil {
		t.Errorf("flange = %+v, want nil", m.Engine.Flange)
	}
}

func TestManifoldScript(t *testing.T) {
	source := `
(manifold "wye"
  :junction (vec3 0 0 25) :junction-radius 7 :wall 2
  :inlet (port (vec3 0 0 0) (vec3 0 0 -1) 7)
  :outlets (list (port :point (vec3 40 0 50) :direction (vec3 1 0 0) :radius 4)
                 (port (vec3 -40 0 50) [-1 0 0] 4)
                 (port (vec3 0 40 50) (vec3 0 1 0) 4)))
`
	m := evalModel(t, source)
	if m.Kind != config.KindManifold || m.Name != "wye" {
		t.Fatalf("got %q kind %q", m.Name, m.Kind)
	}
	mf := m.Manifold
	if mf.Junction != (config.Vec{0, 0, 25}) || mf.JunctionRadius != 7 || mf.Wall != 2 {
		t.Errorf("junction = %v r %v wall %v", mf.Junction, mf.JunctionRadius, mf.Wall)
	}
	if mf.Inlet.Radius != 7 || mf.Inlet.Direction != (config.Vec{0, 0, -1}) {
		t.Errorf("inlet = %+v", mf.Inlet)
	}
	if len(mf.Outlets) != 3 {
		t.Fatalf("outlets = %d, want 3", len(mf.Outlets))
	}
	if mf.Outlets[1].Direction != (config.Vec{-1, 0, 0}) {
		t.Errorf("outlet 1 direction = %v", mf.Outlets[1].Direction)
	}
	if m.Section.Z != 25 {
		t.Errorf("section z = %v, want junction height 25", m.Section.Z)
	}
}

func TestSectionAndResolution(t *testing.T) {
	source := `
(section :z 60 :thickness 1.5 :half-width 70)
(resolution :profile 120 :mesh-cells 96)
(preset "engine")
`
	m := evalModel(t, source)
	want := config.Section{Z: 60, Thickness: 1.5, HalfWidth: 70}
	if m.Section != want {
		t.Errorf("section = %+v, want %+v", m.Section, want)
	}
	if m.Resolution.Profile != 120 || m.Resolution.MeshCells != 96 {
		t.Errorf("resolution = %+v", m.Resolution)
	}
	if m.Resolution.Channel != config.DefaultResolution().Channel {
		t.Errorf("unset counts should keep defaults, got channel %d", m.Resolution.Channel)
	}
}

func TestVec3(t *testing.T) {
	m := evalModel(t, `(manifold :junction (vec3 1.5 -2 3))`)
	if m.Manifold.Junction != (config.Vec{1.5, -2, 3}) {
		t.Errorf("junction = %v", m.Manifold.Junction)
	}
	if m.Name != "manifold" {
		t.Errorf("unnamed manifold should keep the reference name, got %q", m.Name)
	}

	msg := evalFails(t, `(manifold :junction (vec3 1 2))`)
	if !strings.Contains(msg, "vec3") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"unknown keyword", `(engine "x" :nozzle 3)`, "unknown keyword :nozzle"},
		{"wrong fragment", `(engine "x" :channels (injector :rings 2))`, "expected (channels ...)"},
		{"ribs as grooves", `(engine "x" :grooves (ribs :count 2))`, "expected (grooves ...)"},
		{"grooves reject protrusion", `(grooves :count 2 :protrusion 1)`, "unknown keyword :protrusion"},
		{"non-integer count", `(channels :count 2.5)`, "expected integer"},
		{"string for number", `(engine "x" :wall "thick")`, "expected number"},
		{"two models", "(preset \"engine\")\n(preset \"manifold\")", "already defined"},
		{"two sections", "(section :z 1)\n(section :z 2)", "section already defined"},
		{"section without z", `(section :thickness 2)`, "requires :z"},
		{"positional to fragment", `(flange 55)`, "unexpected positional"},
		{"bad outlet", `(manifold :outlets (list (vec3 1 2 3)))`, "outlet 0"},
		{"bad port", `(port (vec3 0 0 0) 4)`, "port requires"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := evalFails(t, tt.source)
			if !strings.Contains(msg, tt.want) {
				t.Errorf("message %q does not contain %q", msg, tt.want)
			}
		})
	}
}

func TestScriptModelIsNotValidated(t *testing.T) {
	// Evaluation builds the model; validation is the caller's decision.
	m := evalModel(t, `(engine "bad" :throat-radius 40)`)
	if m.Validate().Err() == nil {
		t.Error("expected validation to reject a throat wider than the chamber")
	}
}
