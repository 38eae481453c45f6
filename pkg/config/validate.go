package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/chazu/lathe/pkg/curve"
	"github.com/chazu/lathe/pkg/feature"
	"github.com/chazu/lathe/pkg/profile"
	"github.com/chazu/lathe/pkg/sweep"
)

// Severity indicates whether a validation finding blocks a build or is
// merely informational.
type Severity int

const (
	SeverityError   Severity = iota // blocks the build
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Field    string   // dotted path of the offending field
	Message  string   // human-readable description
	Severity Severity // error or warning
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Field, e.Message)
}

// ErrInvalid wraps every blocking validation finding.
var ErrInvalid = errors.New("config: invalid model")

// ValidationErrors is the list of findings for one model.
type ValidationErrors []ValidationError

// Errors returns the blocking findings.
func (v ValidationErrors) Errors() ValidationErrors {
	return v.filter(SeverityError)
}

// Warnings returns the advisory findings.
func (v ValidationErrors) Warnings() ValidationErrors {
	return v.filter(SeverityWarning)
}

func (v ValidationErrors) filter(s Severity) ValidationErrors {
	var out ValidationErrors
	for _, e := range v {
		if e.Severity == s {
			out = append(out, e)
		}
	}
	return out
}

// Err returns nil when there are no blocking findings, otherwise an error
// wrapping ErrInvalid that lists them.
func (v ValidationErrors) Err() error {
	errs := v.Errors()
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%w:\n  %s", ErrInvalid, strings.Join(msgs, "\n  "))
}

type validator struct {
	findings ValidationErrors
}

func (v *validator) errorf(field, format string, args ...any) {
	v.findings = append(v.findings, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (v *validator) warnf(field, format string, args ...any) {
	v.findings = append(v.findings, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

func (v *validator) positive(field string, x float64) bool {
	if !(x > 0) || math.IsInf(x, 0) {
		v.errorf(field, "is %g, must be positive", x)
		return false
	}
	return true
}

// Validate checks m without modifying it. An empty result means the model
// is buildable and every sweep is dense enough to stay connected.
func (m *Model) Validate() ValidationErrors {
	v := &validator{}
	v.resolution(m.Resolution)
	switch m.Kind {
	case KindEngine:
		if m.Engine == nil {
			v.errorf("engine", "kind is engine but no engine section")
			break
		}
		v.engine(m.Engine, m.Resolution)
	case KindManifold:
		if m.Manifold == nil {
			v.errorf("manifold", "kind is manifold but no manifold section")
			break
		}
		v.manifold(m.Manifold, m.Resolution)
	default:
		v.errorf("kind", "unknown model kind %q", m.Kind)
	}
	if m.Section.Thickness < 0 {
		v.errorf("section.thickness", "is %g, must not be negative", m.Section.Thickness)
	}
	return v.findings
}

func (v *validator) resolution(r Resolution) {
	for _, c := range []struct {
		field string
		n     int
	}{
		{"resolution.profile", r.Profile},
		{"resolution.channel", r.Channel},
		{"resolution.ring", r.Ring},
		{"resolution.helix", r.Helix},
		{"resolution.branch", r.Branch},
	} {
		if c.n < 1 {
			v.errorf(c.field, "is %d, need at least 1 segment", c.n)
		} else if c.n < 36 {
			v.warnf(c.field, "%d segments will look faceted", c.n)
		}
	}
	if r.MeshCells < 8 {
		v.errorf("resolution.mesh_cells", "is %d, need at least 8", r.MeshCells)
	}
}

func (v *validator) engine(e *Engine, res Resolution) {
	if _, err := profile.ParseBlend(e.Blend); err != nil {
		v.errorf("engine.blend", "%v", err)
	}
	if err := e.Nozzle().Validate(); err != nil {
		v.errorf("engine", "%v", err)
		return
	}
	v.positive("engine.wall", e.Wall)
	if e.Skin < 0 {
		v.errorf("engine.skin", "is %g, must not be negative", e.Skin)
	}
	length := e.Length()
	if e.Plate <= 0 || e.Plate >= e.ChamberLength {
		v.errorf("engine.injector_plate", "is %g, must be in (0, %g)", e.Plate, e.ChamberLength)
	}
	if len(v.findings.Errors()) > 0 {
		return
	}
	body := e.Body(res)
	outer := body.Outer()
	skin := e.Wall + e.Skin

	v.channels(e, res, skin)
	v.injector(e)
	if f := e.Flange; f != nil {
		v.flange(f, outer(0))
	}
	if b := e.Ribs; b != nil {
		v.band("engine.ribs", b, length)
		if b.Protrusion <= 0 || b.Protrusion >= 2*b.Width {
			v.errorf("engine.ribs.protrusion", "is %g, must be in (0, %g) to fuse with the shell", b.Protrusion, 2*b.Width)
		}
	}
	if b := e.Grooves; b != nil {
		v.band("engine.grooves", b, length)
		limit := skin
		if e.Channels.Count > 0 {
			limit = math.Min(limit, e.Channels.DepthMin-e.Channels.MaxRadius())
		}
		if b.Depth <= 0 || b.Depth >= limit {
			v.errorf("engine.grooves.depth", "is %g, must be in (0, %g) to stay clear of the wall and channels", b.Depth, limit)
		}
	}
	if f := e.Fins; f != nil {
		v.span("engine.fins", f.Count, f.Start, f.End, f.Width, length)
		if f.Protrusion <= 0 || f.Protrusion >= 2*f.Width {
			v.errorf("engine.fins.protrusion", "is %g, must be in (0, %g) to fuse with the shell", f.Protrusion, 2*f.Width)
		}
	}
	if s := e.Sculpted; s != nil {
		v.span("engine.sculpted_ribs", s.Count, s.Start, s.End, s.MaxWidth, length)
		if s.MinWidth <= 0 || s.MaxWidth < s.MinWidth {
			v.errorf("engine.sculpted_ribs", "widths [%g, %g] must be positive and ordered", s.MinWidth, s.MaxWidth)
		} else if s.Protrusion <= 0 || s.Protrusion >= 2*s.MinWidth {
			v.errorf("engine.sculpted_ribs.protrusion", "is %g, must be in (0, %g) to fuse with the shell", s.Protrusion, 2*s.MinWidth)
		}
	}
}

func (v *validator) channels(e *Engine, res Resolution, skin float64) {
	c := e.Channels
	if c.Count == 0 {
		return
	}
	if c.Count < 0 {
		v.errorf("engine.channels.count", "is %d", c.Count)
		return
	}
	ok := v.positive("engine.channels.radius", c.Radius)
	ok = v.positive("engine.channels.spread", c.Spread) && ok
	if !ok {
		return
	}
	r := c.MaxRadius()
	if c.DepthMin > c.DepthMax {
		v.errorf("engine.channels.depth_min", "%g exceeds depth_max %g", c.DepthMin, c.DepthMax)
	}
	if c.DepthMin-r <= 0 {
		v.errorf("engine.channels.depth_min", "%g with radius %g breaks the outer surface", c.DepthMin, r)
	}
	if c.DepthMax+r >= skin {
		v.errorf("engine.channels.depth_max", "%g with radius %g breaks into the flow (wall %g)", c.DepthMax, r, skin)
	}
	p := e.ChannelParams(res)
	if p.Z0 < e.Plate || p.Z1 > e.Length() || p.Z1 <= p.Z0 {
		v.errorf("engine.channels", "range [%g, %g] must lie in [%g, %g]", p.Z0, p.Z1, e.Plate, e.Length())
		return
	}

	// Neighbouring channels must not merge where the body is narrowest.
	body := e.Body(res)
	throat := body.Outer()(e.Nozzle().ThroatZ()) - c.DepthMax
	if gap := 2*throat*math.Sin(math.Pi/float64(c.Count)) - 2*r; gap <= 0 {
		v.errorf("engine.channels.count", "%d channels of radius %g merge at the throat", c.Count, r)
	}

	f, err := feature.CoolingChannels(body, p)
	if err != nil {
		v.errorf("engine.channels", "%v", err)
		return
	}
	// Each helix is its own chain; the jump between neighbours is not a segment.
	worst := math.Inf(1)
	for i := 0; i+p.Segments <= len(f.Prims); i += p.Segments {
		worst = math.Min(worst, overlap(f.Prims[i:i+p.Segments]))
	}
	if worst < sweep.MinOverlap {
		v.warnf("resolution.channel", "channel overlap %.2f below %.2f; raise the segment count", worst, sweep.MinOverlap)
	}
}

// overlap is sweep.Overlap over a primitive chain.
func overlap(prims []sweep.Primitive) float64 {
	samples := make([]curve.Sample, 0, len(prims)+1)
	for i, p := range prims {
		if i == 0 {
			samples = append(samples, curve.Sample{Point: p.P0, Radius: p.R0})
		}
		samples = append(samples, curve.Sample{Point: p.P1, Radius: p.R1})
	}
	return sweep.Overlap(samples)
}

func (v *validator) injector(e *Engine) {
	inj, err := e.InjectorParams()
	if err != nil {
		v.errorf("engine.injector.policy", "%v", err)
		return
	}
	if !v.positive("engine.injector.hole_radius", inj.HoleRadius) {
		return
	}
	if inj.Rings < 0 {
		v.errorf("engine.injector.rings", "is %d", inj.Rings)
		return
	}
	rc := e.ChamberRadius
	if rc-3*inj.HoleRadius <= 0 {
		v.errorf("engine.injector.hole_radius", "%g leaves no ring span in the %g chamber", inj.HoleRadius, rc)
		return
	}
	if inj.Rings > 0 && inj.RingRadius(rc, inj.Rings)+inj.HoleRadius >= rc {
		v.errorf("engine.injector", "outer ring does not fit the %g chamber", rc)
		return
	}
	for i, n := range inj.Holes.Counts(inj.Rings) {
		field := fmt.Sprintf("engine.injector.ring[%d]", i+1)
		if n < 1 {
			v.errorf(field, "has %d holes", n)
			continue
		}
		r := inj.RingRadius(rc, i+1)
		if n > 1 && 2*r*math.Sin(math.Pi/float64(n)) <= 2*inj.HoleRadius {
			v.errorf(field, "%d holes of radius %g merge on a ring of radius %g", n, inj.HoleRadius, r)
		}
	}
}

func (v *validator) flange(f *Flange, shell float64) {
	if !v.positive("engine.flange.radius", f.Radius) || !v.positive("engine.flange.thickness", f.Thickness) {
		return
	}
	if f.Radius <= shell {
		v.errorf("engine.flange.radius", "is %g, must exceed the shell radius %g", f.Radius, shell)
	}
	if f.BlendRadius < 0 || f.BlendRadius > f.Thickness {
		v.errorf("engine.flange.blend_radius", "is %g, must be in [0, %g]", f.BlendRadius, f.Thickness)
	} else if shell+f.BlendRadius >= f.Radius {
		v.errorf("engine.flange.blend_radius", "bead reaches %g, past the rim %g", shell+f.BlendRadius, f.Radius)
	}
	if f.Bolts == 0 {
		return
	}
	if f.Bolts < 0 || !v.positive("engine.flange.bolt_radius", f.BoltRadius) {
		v.errorf("engine.flange.bolts", "invalid bolt pattern")
		return
	}
	if f.BoltCircle-f.BoltRadius <= shell || f.BoltCircle+f.BoltRadius >= f.Radius {
		v.errorf("engine.flange.bolt_circle", "is %g, holes must fall between shell %g and rim %g", f.BoltCircle, shell, f.Radius)
	}
}

func (v *validator) band(field string, b *Band, length float64) {
	v.span(field, b.Count, b.Start, b.End, b.Width, length)
}

// span checks that count features of the given sweep radius placed in
// [start, end] stay on the body.
func (v *validator) span(field string, count int, start, end, width, length float64) {
	if count < 1 {
		v.errorf(field+".count", "is %d", count)
	}
	if !v.positive(field+".width", width) {
		return
	}
	if end < start {
		v.errorf(field, "range [%g, %g] is reversed", start, end)
	}
	if start-width < 0 || end+width > length {
		v.errorf(field, "range [%g, %g] with width %g leaves the body [0, %g]", start, end, width, length)
	}
}

func (v *validator) manifold(m *Manifold, res Resolution) {
	v.positive("manifold.wall", m.Wall)
	v.positive("manifold.junction_radius", m.JunctionRadius)
	if len(m.Outlets) == 0 {
		v.errorf("manifold.outlets", "need at least one outlet")
	}
	for i, p := range append([]Port{m.Inlet}, m.Outlets...) {
		field := "manifold.inlet"
		if i > 0 {
			field = fmt.Sprintf("manifold.outlets[%d]", i-1)
		}
		v.positive(field+".radius", p.Radius)
		if p.Direction.vec3().Length() == 0 {
			v.errorf(field+".direction", "is zero")
		}
		if d := p.Point.vec3().Dist(m.Junction.vec3()); d <= m.JunctionRadius+m.Wall {
			v.errorf(field+".point", "lies %g from the junction, inside its shell", d)
		}
	}
	if len(v.findings.Errors()) > 0 {
		return
	}
	f, err := feature.ManifoldShell(m.Params(res))
	if err != nil {
		v.errorf("manifold", "%v", err)
		return
	}
	per := res.Branch
	for i := 0; i+per <= len(f.Prims)-1; i += per {
		if o := overlap(f.Prims[i : i+per]); o < sweep.MinOverlap {
			v.warnf("resolution.branch", "branch overlap %.2f below %.2f; raise the segment count", o, sweep.MinOverlap)
			break
		}
	}
}
