package assembly

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/chazu/lathe/pkg/config"
	"github.com/chazu/lathe/pkg/curve"
	"github.com/chazu/lathe/pkg/feature"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/kernel/kerneltest"
	"github.com/chazu/lathe/pkg/kernel/sdfx"
	"github.com/chazu/lathe/pkg/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func steps(names ...string) []string { return names }

func stepNames(ss []Step) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.String()
	}
	return out
}

// coarse lowers the sampling so real-geometry tests stay fast. Coarse
// sweeps only draw warnings.
func coarse(m *config.Model) *config.Model {
	m.Resolution.Profile = 40
	m.Resolution.Channel = 40
	m.Resolution.Ring = 24
	m.Resolution.Helix = 24
	m.Resolution.Branch = 12
	return m
}

func TestPlanOrder(t *testing.T) {
	tests := []struct {
		preset string
		want   []string
	}{
		{"engine", steps(
			"body:outer-shell", "additive:base",
			"subtractive:flow", "subtractive:channels", "subtractive:injector", "subtractive:bolt-holes")},
		{"ribbed-engine", steps(
			"body:outer-shell", "additive:base", "additive:ribs",
			"subtractive:flow", "subtractive:channels", "subtractive:injector",
			"subtractive:grooves", "subtractive:bolt-holes")},
		{"finned-engine", steps(
			"body:outer-shell", "additive:base", "additive:fins", "additive:sculpted-ribs",
			"subtractive:flow", "subtractive:channels", "subtractive:injector", "subtractive:bolt-holes")},
		{"manifold", steps("body:manifold-shell", "subtractive:manifold-bore")},
	}
	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			m, err := config.Preset(tt.preset)
			require.NoError(t, err)
			p, err := NewPlan(m)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stepNames(p.Steps()))
		})
	}
}

func TestCheckOrderRejectsAdditiveAfterSubtractive(t *testing.T) {
	body := feature.Feature{Name: "outer", Role: feature.RoleBody}
	add := feature.Feature{Name: "rib", Role: feature.RoleAdditive}
	sub := feature.Feature{Name: "flow", Role: feature.RoleSubtractive}

	assert.NoError(t, checkOrder([]feature.Feature{body, add, sub}))
	assert.Error(t, checkOrder([]feature.Feature{body, sub, add}))
	assert.Error(t, checkOrder([]feature.Feature{add, body}))
	assert.Error(t, checkOrder([]feature.Feature{body, body}))
	assert.Error(t, checkOrder(nil))
}

func TestAssembleAppliesPlanOrder(t *testing.T) {
	m, err := config.Preset("ribbed-engine")
	require.NoError(t, err)
	p, err := NewPlan(m)
	require.NoError(t, err)

	rec := kerneltest.New()
	res, err := p.Assemble(context.Background(), rec)
	require.NoError(t, err)

	want := append(p.Steps(), Step{Stage: StageSection, Feature: "section"})
	assert.Equal(t, want, res.Steps)
	assert.Equal(t, 5, rec.Count(kerneltest.OpDifference))
	assert.Equal(t, 1, rec.Count(kerneltest.OpIntersection))
	assert.NotNil(t, res.Channels)

	// Every additive union lands before the first difference.
	log := rec.Log()
	firstDiff := -1
	for i, op := range log {
		if op == kerneltest.OpDifference {
			firstDiff = i
			break
		}
	}
	require.GreaterOrEqual(t, firstDiff, 0)
	unions := 0
	for _, op := range log[firstDiff:] {
		if op == kerneltest.OpUnion {
			unions++
		}
	}
	// After the first difference only the slab is still being folded.
	assert.Equal(t, halfWidth(res.Shell), res.Slab.HalfWidth)
	assert.Equal(t, 140.0, res.Slab.Z)
	slab, err := res.Slab.Primitives()
	require.NoError(t, err)
	assert.Equal(t, len(slab)-1, unions)
}

func TestEndToEndExtent(t *testing.T) {
	m := config.DefaultEngine()
	res, err := Assemble(context.Background(), kerneltest.New(), m)
	require.NoError(t, err)
	b := kernel.Bounds(res.Shell)
	assert.InDelta(t, -6, b.Min.Z, 1e-9)
	assert.InDelta(t, 260, b.Max.Z, 1e-9)
	assert.InDelta(t, 266, b.Size().Z, 1e-9)
	assert.Equal(t, "engine", res.Name)
	assert.Greater(t, res.PrimitiveCount, 24*260)
}

// The reference engine at full resolution is one solid: the only voids are
// the flow bore, the channels and the injector and bolt bores.
func TestReferenceEngineHasNoStrayVoids(t *testing.T) {
	m := config.DefaultEngine()
	res, err := Assemble(context.Background(), sdfx.New(), m)
	require.NoError(t, err)

	e := m.Engine
	body := e.Body(m.Resolution)
	flow, outer := body.Flow(), body.Outer()
	ch := e.ChannelParams(m.Resolution)
	depth := ch.Depth(body)
	widest := ch.Radius * (1 + ch.Breathing)
	angles := []float64{0, 0.4, 1.3, 2.2, 3.1, 4.0, 5.5}
	at := func(r, a, z float64) kernel.Vec3 { return kernel.V(r*math.Cos(a), r*math.Sin(a), z) }

	t.Run("wall between bore and channels", func(t *testing.T) {
		for z := ch.Z0; z <= ch.Z1; z += 1 {
			inner := outer(z) - depth(z) - widest
			require.Greater(t, inner, flow(z), "no wall left at z=%g", z)
			r := (flow(z) + inner) / 2
			for _, a := range angles {
				require.True(t, kernel.Contains(res.Shell, at(r, a, z)), "void in the wall at r=%.2f a=%g z=%g", r, a, z)
			}
			assert.False(t, kernel.Contains(res.Shell, kernel.V(0, 0, z)), "bore closed at z=%g", z)
		}
	})

	t.Run("channels are open", func(t *testing.T) {
		h := curve.Helix{Z0: ch.Z0, Z1: ch.Z1, Twists: ch.Twists, Radial: profile.Sub(outer, depth), Width: profile.Constant(ch.Radius)}
		for _, tt := range []float64{0.1, 0.35, 0.6, 0.9} {
			p := h.Eval(tt).Point
			assert.False(t, kernel.Contains(res.Shell, p), "channel blocked at %v", p)
			assert.True(t, kernel.Contains(res.Channels, p))
		}
	})

	t.Run("plate between bores", func(t *testing.T) {
		inj, err := e.InjectorParams()
		require.NoError(t, err)
		rc := e.ChamberRadius
		// Circles halfway between rings, and one past the outer ring.
		radii := []float64{inj.RingRadius(rc, 1) / 2}
		for i := 1; i < inj.Rings; i++ {
			radii = append(radii, (inj.RingRadius(rc, i)+inj.RingRadius(rc, i+1))/2)
		}
		radii = append(radii, (inj.RingRadius(rc, inj.Rings)+inj.HoleRadius+rc)/2)
		for _, r := range radii {
			for a := 0.0; a < 2*math.Pi; a += math.Pi / 36 {
				for _, z := range []float64{0.5, e.Plate / 2, e.Plate - 0.5} {
					require.True(t, kernel.Contains(res.Shell, at(r, a, z)), "void in the plate at r=%.2f a=%.2f z=%g", r, a, z)
				}
			}
		}
		assert.False(t, kernel.Contains(res.Shell, kernel.V(inj.RingRadius(rc, 1), 0, e.Plate/2)), "first ring bore closed")
		assert.False(t, kernel.Contains(res.Shell, kernel.V(0, 0, e.Plate/2)), "central bore closed")
	})

	t.Run("flange joins plate and shell", func(t *testing.T) {
		r := e.ChamberRadius - 2
		for z := e.Floor() + 0.5; z < e.Plate; z += 0.5 {
			for _, a := range angles {
				require.True(t, kernel.Contains(res.Shell, at(r, a, z)), "gap at r=%g a=%g z=%g", r, a, z)
			}
		}
		blend := e.Flange.BlendRadius
		foot := outer(0) + 0.5*blend
		for _, a := range angles {
			assert.True(t, kernel.Contains(res.Shell, at(foot, a, 0.3*blend)), "no fillet at a=%g", a)
		}
	})
}

func TestSubtractionNeverGrowsShell(t *testing.T) {
	m := coarse(config.DefaultEngine())
	k := sdfx.New()
	ctx := context.Background()

	p, err := NewPlan(m)
	require.NoError(t, err)
	res, err := p.Assemble(ctx, k)
	require.NoError(t, err)

	outer, err := p.Features[0].Build(ctx, k)
	require.NoError(t, err)
	base, err := p.Features[1].Build(ctx, k)
	require.NoError(t, err)
	additive, err := k.Union(outer, base)
	require.NoError(t, err)

	before, after := kernel.Bounds(additive), kernel.Bounds(res.Shell)
	assert.True(t, before.Contains(after, 1e-9), "shell %v grew past %v", after, before)
	assert.InDelta(t, 266, after.Size().Z, 1e-9)
	assert.LessOrEqual(t, after.Volume(), before.Volume()+1e-9)

	// The channel bundle lies inside the body.
	assert.True(t, before.Contains(kernel.Bounds(res.Channels), 1e-9))
}

func TestSectionIsSubsetOfShell(t *testing.T) {
	for _, preset := range []string{"engine", "manifold"} {
		t.Run(preset, func(t *testing.T) {
			m, err := config.Preset(preset)
			require.NoError(t, err)
			res, err := Assemble(context.Background(), sdfx.New(), coarse(m))
			require.NoError(t, err)

			inside := 0
			for a := 0.0; a < 2*math.Pi; a += math.Pi / 12 {
				for r := 0.0; r <= 60; r += 0.25 {
					for _, dz := range []float64{-0.5, 0, 0.5} {
						p := kernel.V(r*math.Cos(a), r*math.Sin(a), m.Section.Z+dz)
						if kernel.Contains(res.Section, p) {
							inside++
							require.True(t, kernel.Contains(res.Shell, p), "section point %v outside shell", p)
						}
					}
				}
			}
			assert.Greater(t, inside, 0, "section is empty")
		})
	}
}

func TestSectionCutsThroughWall(t *testing.T) {
	m := coarse(config.DefaultEngine())
	res, err := Assemble(context.Background(), sdfx.New(), m)
	require.NoError(t, err)
	z := m.Section.Z
	// Inside the throat: flow, not material.
	assert.False(t, kernel.Contains(res.Section, kernel.V(0, 0, z)))
	// Outside the engine: nothing.
	assert.False(t, kernel.Contains(res.Section, kernel.V(40, 0, z)))
	// Just inside the outer surface, above the channels: material.
	outer := m.Engine.Body(m.Resolution).Outer()(z)
	assert.True(t, kernel.Contains(res.Section, kernel.V(0, outer-0.2, z)))
}

func TestAssembleIsDeterministic(t *testing.T) {
	m := coarse(config.DefaultManifold())
	k := sdfx.New()
	a, err := Assemble(context.Background(), k, m)
	require.NoError(t, err)
	b, err := Assemble(context.Background(), k, m)
	require.NoError(t, err)

	sa, sb := a.Shell.(kernel.Sampler), b.Shell.(kernel.Sampler)
	for x := -60.0; x <= 60; x += 7.5 {
		for z := -10.0; z <= 70; z += 5 {
			p := kernel.V(x, 0.5, z)
			assert.Equal(t, sa.Distance(p), sb.Distance(p), "at %v", p)
		}
	}
}

func TestUnionOrderDoesNotMatter(t *testing.T) {
	m := coarse(config.RibbedEngine())
	p, err := NewPlan(m)
	require.NoError(t, err)
	k := sdfx.New()
	ctx := context.Background()
	base, err := p.Features[1].Build(ctx, k)
	require.NoError(t, err)
	ribs, err := p.Features[2].Build(ctx, k)
	require.NoError(t, err)

	ab, err := k.Union(base, ribs)
	require.NoError(t, err)
	ba, err := k.Union(ribs, base)
	require.NoError(t, err)
	for z := -8.0; z <= 100; z += 4 {
		for r := 0.0; r <= 60; r += 6 {
			p := kernel.V(r, r/3, z)
			assert.InDelta(t, ab.(kernel.Sampler).Distance(p), ba.(kernel.Sampler).Distance(p), 1e-12)
		}
	}
	assert.Equal(t, kernel.Bounds(ab), kernel.Bounds(ba))
}

func TestAssemblePropagatesKernelFailures(t *testing.T) {
	for _, op := range []kerneltest.Op{
		kerneltest.OpFrustum, kerneltest.OpCapsule, kerneltest.OpUnion,
		kerneltest.OpDifference, kerneltest.OpIntersection,
	} {
		t.Run(string(op), func(t *testing.T) {
			rec := kerneltest.New()
			rec.FailOn = map[kerneltest.Op]bool{op: true}
			_, err := Assemble(context.Background(), rec, config.DefaultEngine())
			assert.ErrorIs(t, err, kerneltest.ErrInjected)
		})
	}
}

func TestAssembleRejectsInvalidModel(t *testing.T) {
	m := config.DefaultEngine()
	m.Engine.ThroatRadius = 0
	_, err := Assemble(context.Background(), kerneltest.New(), m)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestAssembleHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Assemble(ctx, kerneltest.New(), config.DefaultEngine())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSlabPrimitives(t *testing.T) {
	s := Slab{Z: 10, HalfWidth: 20, Thickness: 2}
	prims, err := s.Primitives()
	require.NoError(t, err)
	require.Len(t, prims, 41)
	for i, p := range prims {
		assert.Equal(t, 10.0, p.P0.Z)
		assert.Equal(t, -20.0, p.P0.X)
		assert.Equal(t, 20.0, p.P1.X)
		assert.Equal(t, 1.0, p.R0)
		if i > 0 {
			assert.InDelta(t, 1, p.P0.Y-prims[i-1].P0.Y, 1e-12)
		}
	}
	assert.Equal(t, -20.0, prims[0].P0.Y)
	assert.InDelta(t, 20, prims[40].P0.Y, 1e-12)

	_, err = Slab{HalfWidth: 20, Thickness: 2, Spacing: 3}.Primitives()
	assert.Error(t, err)
	_, err = Slab{HalfWidth: 0, Thickness: 2}.Primitives()
	assert.Error(t, err)
}

func TestSlabIsContinuous(t *testing.T) {
	s := Slab{Z: 0, HalfWidth: 10, Thickness: 2}
	prims, err := s.Primitives()
	require.NoError(t, err)
	k := sdfx.New()
	plate, err := feature.Feature{Name: "slab", Prims: prims}.Build(context.Background(), k)
	require.NoError(t, err)
	for y := -10.0; y <= 10; y += 0.25 {
		assert.True(t, kernel.Contains(plate, kernel.V(3, y, 0.8)), "gap at y=%g", y)
	}
	assert.False(t, kernel.Contains(plate, kernel.V(0, 0, 1.1)))
}

func TestLoggerRecordsSteps(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	_, err := Assemble(context.Background(), kerneltest.New(), config.DefaultManifold())
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "assembly: start")
	assert.Contains(t, out, "step=subtractive:manifold-bore")
	assert.Contains(t, out, "assembly: done")
}

func TestHalfWidthCoversFootprint(t *testing.T) {
	s := &kerneltest.Solid{Box: kernel.Box{Min: kernel.V(-30, -12, 0), Max: kernel.V(8, 44, 5)}}
	assert.Equal(t, 45.0, halfWidth(s))
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "subtractive", StageSubtractive.String())
	assert.Equal(t, "Stage(9)", Stage(9).String())
}
