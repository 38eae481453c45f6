package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/lathe/pkg/config"
)

var errNoModel = errors.New("script defines no model (call engine, manifold or preset)")

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpSpec carries a configuration fragment built by one builtin (channels,
// flange, ribs...) to the builtin that consumes it.
type sexpSpec struct {
	kind string
	val  any
}

func (s *sexpSpec) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %+v)", s.kind, s.val)
}
func (s *sexpSpec) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a config.Vec.
type sexpVec3 struct {
	vec config.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec[0], v.vec[1], v.vec[2])
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpModel is returned by engine, manifold and preset.
type sexpModel struct {
	name string
	kind config.Kind
}

func (m *sexpModel) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", m.kind, m.name)
}
func (m *sexpModel) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// A trailing keyword has no value; binding reports it.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// fields maps keyword names to their destinations. A destination is a
// *float64, *int, *string, *config.Vec or a setter func(zygo.Sexp) error.
type fields map[string]any

// bind stores every keyword of pa in its destination. Unknown keywords are
// errors; keywords are visited in sorted order so the first error reported
// is stable.
func bind(fn string, pa kwArgs, f fields) error {
	names := make([]string, 0, len(pa.kw))
	for k := range pa.kw {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, k := range names {
		v := pa.kw[k]
		dst, ok := f[k]
		if !ok {
			return fmt.Errorf("%s: unknown keyword :%s", fn, k)
		}
		var err error
		switch d := dst.(type) {
		case *float64:
			*d, err = toFloat64(v)
		case *int:
			*d, err = toInt(v)
		case *string:
			*d, err = toKeywordString(v)
		case *config.Vec:
			*d, err = toVec3(v)
		case func(zygo.Sexp) error:
			err = d(v)
		default:
			panic(fmt.Sprintf("engine: unsupported field type %T for :%s", dst, k))
		}
		if err != nil {
			return fmt.Errorf("%s: %s: %w", fn, k, err)
		}
	}
	return nil
}

// fragment returns a setter that accepts a sexpSpec of the given kind and
// stores its value in dst. nil stores the zero value, which removes
// optional features.
func fragment[T any](kind string, dst *T) func(zygo.Sexp) error {
	return func(s zygo.Sexp) error {
		if s == zygo.SexpNull {
			var zero T
			*dst = zero
			return nil
		}
		sp, ok := s.(*sexpSpec)
		if !ok || sp.kind != kind {
			return fmt.Errorf("expected (%s ...), got %s", kind, s.SexpString(nil))
		}
		v, ok := sp.val.(T)
		if !ok {
			return fmt.Errorf("expected (%s ...), got %T", kind, sp.val)
		}
		*dst = v
		return nil
	}
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer. Floats are accepted when they are whole.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == float64(int(v.Val)) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_linear) and plain strings ("linear").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toVec3 extracts a point from (vec3 x y z) or a three-element list.
func toVec3(s zygo.Sexp) (config.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil || len(items) != 3 {
		return config.Vec{}, fmt.Errorf("expected (vec3 x y z), got %s", s.SexpString(nil))
	}
	var out config.Vec
	for i, it := range items {
		if out[i], err = toFloat64(it); err != nil {
			return config.Vec{}, err
		}
	}
	return out, nil
}

// toPort extracts a manifold port built by (port ...).
func toPort(s zygo.Sexp) (config.Port, error) {
	var p config.Port
	err := fragment("port", &p)(s)
	return p, err
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Script state
// ---------------------------------------------------------------------------

// script collects what a model script defines. Exactly one model is
// allowed; section and resolution apply to it whatever the call order.
type script struct {
	model      *config.Model
	section    *config.Section
	resolution *config.Resolution
}

func (s *script) define(m *config.Model) (zygo.Sexp, error) {
	if s.model != nil {
		return zygo.SexpNull, fmt.Errorf("model %q already defined; a script defines one model", s.model.Name)
	}
	s.model = m
	return &sexpModel{name: m.Name, kind: m.Kind}, nil
}

// result returns the defined model. Without an explicit section the slab
// sits at the throat of an engine or the junction of a manifold.
func (s *script) result() (*config.Model, error) {
	if s.model == nil {
		return nil, errNoModel
	}
	m := s.model
	if s.resolution != nil {
		m.Resolution = *s.resolution
	}
	if s.section != nil {
		m.Section = *s.section
	} else if m.Section.Thickness == 0 {
		m.Section = defaultSection(m)
	}
	return m, nil
}

func defaultSection(m *config.Model) config.Section {
	sec := config.Section{Thickness: 2}
	switch {
	case m.Engine != nil:
		sec.Z = m.Engine.Nozzle().ThroatZ()
	case m.Manifold != nil:
		sec.Z = m.Manifold.Junction[2]
	}
	return sec
}

// modelName reads the optional leading positional name argument.
func modelName(fn string, pa kwArgs, fallback string) (string, error) {
	switch len(pa.positional) {
	case 0:
		return fallback, nil
	case 1:
		n, err := toString(pa.positional[0])
		if err != nil {
			return "", fmt.Errorf("%s: name: %w", fn, err)
		}
		return n, nil
	}
	return "", fmt.Errorf("%s: expected at most one positional name, got %d", fn, len(pa.positional))
}

func noPositional(fn string, pa kwArgs) error {
	if len(pa.positional) > 0 {
		return fmt.Errorf("%s: unexpected positional argument %s", fn, pa.positional[0].SexpString(nil))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the model DSL builtins into a zygomys
// environment. Calls to engine, manifold or preset define the script's
// model in s.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *script) {

	// -----------------------------------------------------------------------
	// (vec3 x y z)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var v config.Vec
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: argument %d: %w", i+1, err)
			}
			v[i] = f
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (port (vec3 50 0 60) (vec3 1 0 0) 5)
	// (port :point (vec3 50 0 60) :direction (vec3 1 0 0) :radius 5)
	// -----------------------------------------------------------------------
	env.AddFunction("port", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var p config.Port
		switch len(pa.positional) {
		case 0:
		case 3:
			var err error
			if p.Point, err = toVec3(pa.positional[0]); err != nil {
				return zygo.SexpNull, fmt.Errorf("port: point: %w", err)
			}
			if p.Direction, err = toVec3(pa.positional[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("port: direction: %w", err)
			}
			if p.Radius, err = toFloat64(pa.positional[2]); err != nil {
				return zygo.SexpNull, fmt.Errorf("port: radius: %w", err)
			}
		default:
			return zygo.SexpNull, fmt.Errorf("port requires a point, a direction and a radius")
		}
		err := bind("port", pa, fields{
			"point":     &p.Point,
			"direction": &p.Direction,
			"radius":    &p.Radius,
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSpec{kind: "port", val: p}, nil
	})

	// -----------------------------------------------------------------------
	// (channels :count 24 :radius 0.7 :twists 0.5 :depth-min 1 :depth-max 1.8
	//           :spread 400 :breathing 0.05)
	// -----------------------------------------------------------------------
	env.AddFunction("channels", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := noPositional("channels", pa); err != nil {
			return zygo.SexpNull, err
		}
		var c config.Channels
		err := bind("channels", pa, fields{
			"count":     &c.Count,
			"radius":    &c.Radius,
			"twists":    &c.Twists,
			"depth-min": &c.DepthMin,
			"depth-max": &c.DepthMax,
			"spread":    &c.Spread,
			"breathing": &c.Breathing,
			"start":     &c.Start,
			"end":       &c.End,
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSpec{kind: "channels", val: c}, nil
	})

	// -----------------------------------------------------------------------
	// (injector :rings 4 :per-ring 8 :hole-radius 1.2 :policy :plus-two)
	// -----------------------------------------------------------------------
	env.AddFunction("injector", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := noPositional("injector", pa); err != nil {
			return zygo.SexpNull, err
		}
		var inj config.Injector
		err := bind("injector", pa, fields{
			"rings":       &inj.Rings,
			"per-ring":    &inj.PerRing,
			"hole-radius": &inj.HoleRadius,
			"policy":      &inj.Policy,
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSpec{kind: "injector", val: inj}, nil
	})

	// -----------------------------------------------------------------------
	// (flange :radius 55 :thickness 6 :blend-radius 5 :bolts 8
	//         :bolt-radius 2.5 :bolt-circle 46)
	// -----------------------------------------------------------------------
	env.AddFunction("flange", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := noPositional("flange", pa); err != nil {
			return zygo.SexpNull, err
		}
		f := &config.Flange{}
		err := bind("flange", pa, fields{
			"radius":       &f.Radius,
			"thickness":    &f.Thickness,
			"blend-radius": &f.BlendRadius,
			"bolts":        &f.Bolts,
			"bolt-radius":  &f.BoltRadius,
			"bolt-circle":  &f.BoltCircle,
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSpec{kind: "flange", val: f}, nil
	})

	// -----------------------------------------------------------------------
	// (ribs :count 4 :start 20 :end 90 :width 1.5 :protrusion 2)
	// (grooves :count 5 :start 170 :end 240 :width 1 :depth 0.8)
	// -----------------------------------------------------------------------
	band := func(kind, depthKey string) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if err := noPositional(kind, pa); err != nil {
				return zygo.SexpNull, err
			}
			b := &config.Band{}
			f := fields{
				"count": &b.Count,
				"start": &b.Start,
				"end":   &b.End,
				"width": &b.Width,
			}
			if depthKey == "depth" {
				f["depth"] = &b.Depth
			} else {
				f["protrusion"] = &b.Protrusion
			}
			if err := bind(kind, pa, f); err != nil {
				return zygo.SexpNull, err
			}
			return &sexpSpec{kind: kind, val: b}, nil
		}
	}
	env.AddFunction("ribs", band("ribs", "protrusion"))
	env.AddFunction("grooves", band("grooves", "depth"))

	// -----------------------------------------------------------------------
	// (fins :count 6 :start 160 :end 250 :twists 0.25 :width 1.2 :protrusion 3)
	// -----------------------------------------------------------------------
	env.AddFunction("fins", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := noPositional("fins", pa); err != nil {
			return zygo.SexpNull, err
		}
		f := &config.Fins{}
		err := bind("fins", pa, fields{
			"count":      &f.Count,
			"start":      &f.Start,
			"end":        &f.End,
			"twists":     &f.Twists,
			"width":      &f.Width,
			"protrusion": &f.Protrusion,
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSpec{kind: "fins", val: f}, nil
	})

	// -----------------------------------------------------------------------
	// (sculpted-ribs :count 8 :start 10 :end 95 :drift 0.3
	//                :min-width 0.8 :max-width 2 :protrusion 1.5)
	// -----------------------------------------------------------------------
	env.AddFunction("sculpted_ribs", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := noPositional("sculpted-ribs", pa); err != nil {
			return zygo.SexpNull, err
		}
		sc := &config.Sculpt{}
		err := bind("sculpted-ribs", pa, fields{
			"count":      &sc.Count,
			"start":      &sc.Start,
			"end":        &sc.End,
			"drift":      &sc.Drift,
			"min-width":  &sc.MinWidth,
			"max-width":  &sc.MaxWidth,
			"protrusion": &sc.Protrusion,
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSpec{kind: "sculpted-ribs", val: sc}, nil
	})

	// -----------------------------------------------------------------------
	// (engine "name" :chamber-radius 30 ... :channels (channels ...)
	//                :injector (injector ...) :flange nil)
	// Unspecified parameters keep the reference engine's values.
	// -----------------------------------------------------------------------
	env.AddFunction("engine", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		m := config.DefaultEngine()
		n, err := modelName("engine", pa, m.Name)
		if err != nil {
			return zygo.SexpNull, err
		}
		m.Name = n
		e := m.Engine
		err = bind("engine", pa, fields{
			"chamber-radius":    &e.ChamberRadius,
			"throat-radius":     &e.ThroatRadius,
			"exit-radius":       &e.ExitRadius,
			"chamber-length":    &e.ChamberLength,
			"converging-length": &e.ConvergingLength,
			"diverging-length":  &e.DivergingLength,
			"blend":             &e.Blend,
			"wall":              &e.Wall,
			"skin":              &e.Skin,
			"injector-plate":    &e.Plate,
			"channels":          fragment("channels", &e.Channels),
			"injector":          fragment("injector", &e.Injector),
			"flange":            fragment("flange", &e.Flange),
			"ribs":              fragment("ribs", &e.Ribs),
			"grooves":           fragment("grooves", &e.Grooves),
			"fins":              fragment("fins", &e.Fins),
			"sculpted-ribs":     fragment("sculpted-ribs", &e.Sculpted),
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		// The reference section sits at the reference throat.
		m.Section = config.Section{}
		return s.define(m)
	})

	// -----------------------------------------------------------------------
	// (manifold "tee" :junction (vec3 0 0 30) :junction-radius 8 :wall 2.5
	//                 :inlet (port ...) :outlets (list (port ...) ...))
	// Unspecified parameters keep the reference tee's values.
	// -----------------------------------------------------------------------
	env.AddFunction("manifold", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		m := config.DefaultManifold()
		n, err := modelName("manifold", pa, m.Name)
		if err != nil {
			return zygo.SexpNull, err
		}
		m.Name = n
		mf := m.Manifold
		err = bind("manifold", pa, fields{
			"junction":        &mf.Junction,
			"junction-radius": &mf.JunctionRadius,
			"wall":            &mf.Wall,
			"inlet":           fragment("port", &mf.Inlet),
			"outlets": func(v zygo.Sexp) error {
				items, err := sexpListToSlice(v)
				if err != nil {
					return err
				}
				mf.Outlets = make([]config.Port, 0, len(items))
				for i, it := range items {
					p, err := toPort(it)
					if err != nil {
						return fmt.Errorf("outlet %d: %w", i, err)
					}
					mf.Outlets = append(mf.Outlets, p)
				}
				return nil
			},
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		m.Section = config.Section{}
		return s.define(m)
	})

	// -----------------------------------------------------------------------
	// (preset "ribbed-engine")
	// -----------------------------------------------------------------------
	env.AddFunction("preset", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("preset requires exactly one name")
		}
		n, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("preset: %w", err)
		}
		m, err := config.Preset(n)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("preset: %w", err)
		}
		return s.define(m)
	})

	// -----------------------------------------------------------------------
	// (section :z 140 :thickness 2 :half-width 60)
	// -----------------------------------------------------------------------
	env.AddFunction("section", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := noPositional("section", pa); err != nil {
			return zygo.SexpNull, err
		}
		if s.section != nil {
			return zygo.SexpNull, fmt.Errorf("section already defined")
		}
		sec := config.Section{Thickness: 2}
		err := bind("section", pa, fields{
			"z":          &sec.Z,
			"thickness":  &sec.Thickness,
			"half-width": &sec.HalfWidth,
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		if _, ok := pa.kw["z"]; !ok {
			return zygo.SexpNull, fmt.Errorf("section requires :z")
		}
		s.section = &sec
		return &sexpSpec{kind: "section", val: sec}, nil
	})

	// -----------------------------------------------------------------------
	// (resolution :profile 260 :channel 260 :ring 72 :helix 120 :branch 48
	//             :mesh-cells 200)
	// Unspecified counts keep their defaults.
	// -----------------------------------------------------------------------
	env.AddFunction("resolution", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := noPositional("resolution", pa); err != nil {
			return zygo.SexpNull, err
		}
		if s.resolution != nil {
			return zygo.SexpNull, fmt.Errorf("resolution already defined")
		}
		r := config.DefaultResolution()
		err := bind("resolution", pa, fields{
			"profile":    &r.Profile,
			"channel":    &r.Channel,
			"ring":       &r.Ring,
			"helix":      &r.Helix,
			"branch":     &r.Branch,
			"mesh-cells": &r.MeshCells,
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		s.resolution = &r
		return &sexpSpec{kind: "resolution", val: r}, nil
	})
}
