// Package assembly composes feature solids into the final part in a fixed
// order and cuts the inspection section.
//
// The order is load-bearing: the body is unioned with every additive
// feature before anything is subtracted, so a subtractive feature removes
// material even where an additive feature overlaps it.
package assembly

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/lathe/pkg/config"
	"github.com/chazu/lathe/pkg/feature"
	"github.com/chazu/lathe/pkg/kernel"
)

// Stage is one phase of the combination order.
type Stage int

const (
	StageBody Stage = iota
	StageAdditive
	StageSubtractive
	StageSection
)

func (s Stage) String() string {
	switch s {
	case StageBody:
		return "body"
	case StageAdditive:
		return "additive"
	case StageSubtractive:
		return "subtractive"
	case StageSection:
		return "section"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

func stageOf(r feature.Role) Stage {
	switch r {
	case feature.RoleAdditive:
		return StageAdditive
	case feature.RoleSubtractive:
		return StageSubtractive
	}
	return StageBody
}

// Step records one combination applied to the accumulating shell.
type Step struct {
	Stage   Stage
	Feature string
}

func (s Step) String() string {
	return s.Stage.String() + ":" + s.Feature
}

// Plan is the ordered feature list for a model: one body, then additive
// features, then subtractive features, each group in declaration order.
type Plan struct {
	Features []feature.Feature
	// Auxiliary names the feature kept as a separate visualization solid.
	Auxiliary string
	Slab      Slab
}

// Steps lists the combination order.
func (p *Plan) Steps() []Step {
	steps := make([]Step, len(p.Features))
	for i, f := range p.Features {
		steps[i] = Step{Stage: stageOf(f.Role), Feature: f.Name}
	}
	return steps
}

// PrimitiveCount returns the number of primitives across all features.
func (p *Plan) PrimitiveCount() int {
	n := 0
	for _, f := range p.Features {
		n += len(f.Prims)
	}
	return n
}

// NewPlan validates m and lays out its features.
func NewPlan(m *config.Model) (*Plan, error) {
	if err := m.Validate().Err(); err != nil {
		return nil, err
	}
	var (
		fs  []feature.Feature
		aux string
		err error
	)
	switch m.Kind {
	case config.KindEngine:
		fs, err = engineFeatures(m.Engine, m.Resolution)
		aux = "channels"
		if m.Engine.Channels.Count == 0 {
			aux = "flow"
		}
	case config.KindManifold:
		fs, err = manifoldFeatures(m.Manifold, m.Resolution)
		aux = "manifold-bore"
	default:
		err = fmt.Errorf("assembly: unknown model kind %q", m.Kind)
	}
	if err != nil {
		return nil, err
	}
	if err := checkOrder(fs); err != nil {
		return nil, err
	}
	return &Plan{
		Features:  fs,
		Auxiliary: aux,
		Slab:      Slab{Z: m.Section.Z, HalfWidth: m.Section.HalfWidth, Thickness: m.Section.Thickness},
	}, nil
}

// checkOrder enforces exactly one body, first, and no additive feature
// after a subtractive one.
func checkOrder(fs []feature.Feature) error {
	if len(fs) == 0 || fs[0].Role != feature.RoleBody {
		return fmt.Errorf("assembly: plan must start with a body")
	}
	last := StageBody
	for _, f := range fs[1:] {
		s := stageOf(f.Role)
		if s == StageBody {
			return fmt.Errorf("assembly: second body %q", f.Name)
		}
		if s < last {
			return fmt.Errorf("assembly: %s feature %q after %s features", s, f.Name, last)
		}
		last = s
	}
	return nil
}

type builder func() (feature.Feature, error)

func collect(bs ...builder) ([]feature.Feature, error) {
	fs := make([]feature.Feature, 0, len(bs))
	for _, b := range bs {
		f, err := b()
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	return fs, nil
}

func engineFeatures(e *config.Engine, res config.Resolution) ([]feature.Feature, error) {
	body := e.Body(res)
	bs := []builder{func() (feature.Feature, error) { return feature.OuterShell(body) }}

	if f := e.Flange; f != nil {
		bs = append(bs, func() (feature.Feature, error) { return feature.Base(body, f.Params(res)) })
	}
	if r := e.Ribs; r != nil {
		bs = append(bs, func() (feature.Feature, error) { return feature.Ribs(body, r.Params(res)) })
	}
	if f := e.Fins; f != nil {
		bs = append(bs, func() (feature.Feature, error) { return feature.TwistedFins(body, f.Params(res)) })
	}
	if s := e.Sculpted; s != nil {
		bs = append(bs, func() (feature.Feature, error) { return feature.SculptedRibs(body, s.Params(res)) })
	}

	bs = append(bs, func() (feature.Feature, error) { return feature.FlowChannel(body) })
	if e.Channels.Count > 0 {
		bs = append(bs, func() (feature.Feature, error) { return feature.CoolingChannels(body, e.ChannelParams(res)) })
	}
	bs = append(bs, func() (feature.Feature, error) {
		inj, err := e.InjectorParams()
		if err != nil {
			return feature.Feature{}, err
		}
		return feature.InjectorHoles(body, inj)
	})
	if g := e.Grooves; g != nil {
		bs = append(bs, func() (feature.Feature, error) { return feature.Grooves(body, g.Params(res)) })
	}
	if f := e.Flange; f != nil && f.Bolts > 0 {
		bs = append(bs, func() (feature.Feature, error) { return feature.BoltHoles(f.Params(res)) })
	}
	return collect(bs...)
}

func manifoldFeatures(m *config.Manifold, res config.Resolution) ([]feature.Feature, error) {
	p := m.Params(res)
	return collect(
		func() (feature.Feature, error) { return feature.ManifoldShell(p) },
		func() (feature.Feature, error) { return feature.ManifoldBore(p) },
	)
}

// Result is the assembled part plus the solids kept for visualization.
type Result struct {
	Name     string
	Shell    kernel.Solid
	Channels kernel.Solid
	Section  kernel.Solid
	// Slab is the slab the section was cut with, half width resolved.
	Slab Slab
	// Steps is the combination order actually applied, ending with the
	// section.
	Steps          []Step
	PrimitiveCount int
}

// Assemble builds m with k.
func Assemble(ctx context.Context, k kernel.Kernel, m *config.Model) (*Result, error) {
	p, err := NewPlan(m)
	if err != nil {
		return nil, err
	}
	res, err := p.Assemble(ctx, k)
	if err != nil {
		return nil, err
	}
	res.Name = m.Name
	return res, nil
}

// Assemble builds every feature concurrently, then combines them serially
// in plan order. The result does not depend on goroutine scheduling.
func (p *Plan) Assemble(ctx context.Context, k kernel.Kernel) (*Result, error) {
	log := Logger()
	start := time.Now()
	log.Info("assembly: start", "features", len(p.Features), "primitives", p.PrimitiveCount())

	solids := make([]kernel.Solid, len(p.Features))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range p.Features {
		g.Go(func() error {
			s, err := f.Build(gctx, k)
			if err != nil {
				return err
			}
			log.Debug("assembly: built", "feature", f.Name, "primitives", len(f.Prims))
			solids[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{PrimitiveCount: p.PrimitiveCount()}
	shell := solids[0]
	res.Steps = append(res.Steps, Step{Stage: StageBody, Feature: p.Features[0].Name})
	for i, f := range p.Features[1:] {
		s := solids[i+1]
		step := Step{Stage: stageOf(f.Role), Feature: f.Name}
		var err error
		switch step.Stage {
		case StageAdditive:
			shell, err = k.Union(shell, s)
		case StageSubtractive:
			shell, err = k.Difference(shell, s)
		}
		if err != nil {
			return nil, fmt.Errorf("assembly: %s: %w", step, err)
		}
		log.Debug("assembly: combined", "step", step.String())
		res.Steps = append(res.Steps, step)
		if f.Name == p.Auxiliary {
			res.Channels = s
		}
	}
	res.Shell = shell

	slab := p.Slab
	if slab.HalfWidth == 0 {
		slab.HalfWidth = halfWidth(shell)
	}
	prims, err := slab.Primitives()
	if err != nil {
		return nil, err
	}
	section, err := Section(ctx, k, shell, slab)
	if err != nil {
		return nil, err
	}
	res.Section = section
	res.Slab = slab
	res.Steps = append(res.Steps, Step{Stage: StageSection, Feature: "section"})
	res.PrimitiveCount += len(prims)

	log.Info("assembly: done", "steps", len(res.Steps), "elapsed", time.Since(start))
	return res, nil
}

// halfWidth covers the shell's footprint with a small margin.
func halfWidth(s kernel.Solid) float64 {
	b := kernel.Bounds(s)
	h := 0.0
	for _, v := range []float64{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y} {
		h = math.Max(h, math.Abs(v))
	}
	return h + 1
}
