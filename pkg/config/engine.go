package config

import (
	"github.com/chazu/lathe/pkg/feature"
	"github.com/chazu/lathe/pkg/profile"
)

// Engine is the configuration of a rocket-engine shell. Lengths are in
// millimetres; z = 0 is the injector face.
type Engine struct {
	ChamberRadius    float64 `yaml:"chamber_radius"`
	ThroatRadius     float64 `yaml:"throat_radius"`
	ExitRadius       float64 `yaml:"exit_radius"`
	ChamberLength    float64 `yaml:"chamber_length"`
	ConvergingLength float64 `yaml:"converging_length"`
	DivergingLength  float64 `yaml:"diverging_length"`
	// Blend is the profile blend: smoothstep (default), linear or hermite.
	Blend string  `yaml:"blend,omitempty"`
	Wall  float64 `yaml:"wall"`
	Skin  float64 `yaml:"skin,omitempty"`
	Plate float64 `yaml:"injector_plate"`

	Channels Channels `yaml:"channels"`
	Injector Injector `yaml:"injector"`

	Flange   *Flange `yaml:"flange,omitempty"`
	Ribs     *Band   `yaml:"ribs,omitempty"`
	Grooves  *Band   `yaml:"grooves,omitempty"`
	Fins     *Fins   `yaml:"fins,omitempty"`
	Sculpted *Sculpt `yaml:"sculpted_ribs,omitempty"`
}

// Channels configures the cooling-channel bundle. A zero Count disables it.
// Start and End bound the centerlines; zero values keep the channels two
// radii clear of the injector plate and the exit plane.
type Channels struct {
	Count     int     `yaml:"count"`
	Radius    float64 `yaml:"radius"`
	Twists    float64 `yaml:"twists"`
	DepthMin  float64 `yaml:"depth_min"`
	DepthMax  float64 `yaml:"depth_max"`
	Spread    float64 `yaml:"spread"`
	Breathing float64 `yaml:"breathing,omitempty"`
	Start     float64 `yaml:"start,omitempty"`
	End       float64 `yaml:"end,omitempty"`
}

// MaxRadius is the largest swept radius once breathing is applied.
func (c Channels) MaxRadius() float64 {
	b := c.Breathing
	if b < 0 {
		b = -b
	}
	return c.Radius * (1 + b)
}

// Injector configures the injector hole pattern. Policy names the
// hole-count policy and has no default.
type Injector struct {
	Rings      int     `yaml:"rings"`
	PerRing    int     `yaml:"per_ring"`
	HoleRadius float64 `yaml:"hole_radius"`
	Policy     string  `yaml:"policy"`
}

// Flange configures the mounting flange under the injector face.
type Flange struct {
	Radius      float64 `yaml:"radius"`
	Thickness   float64 `yaml:"thickness"`
	BlendRadius float64 `yaml:"blend_radius,omitempty"`
	Bolts       int     `yaml:"bolts"`
	BoltRadius  float64 `yaml:"bolt_radius"`
	BoltCircle  float64 `yaml:"bolt_circle"`
}

// Band configures ribs (Protrusion) or grooves (Depth).
type Band struct {
	Count      int     `yaml:"count"`
	Start      float64 `yaml:"start"`
	End        float64 `yaml:"end"`
	Width      float64 `yaml:"width"`
	Protrusion float64 `yaml:"protrusion,omitempty"`
	Depth      float64 `yaml:"depth,omitempty"`
}

// Fins configures helical fins.
type Fins struct {
	Count      int     `yaml:"count"`
	Start      float64 `yaml:"start"`
	End        float64 `yaml:"end"`
	Twists     float64 `yaml:"twists"`
	Width      float64 `yaml:"width"`
	Protrusion float64 `yaml:"protrusion"`
}

// Sculpt configures sculpted meridional ribs.
type Sculpt struct {
	Count      int     `yaml:"count"`
	Start      float64 `yaml:"start"`
	End        float64 `yaml:"end"`
	Drift      float64 `yaml:"drift,omitempty"`
	MinWidth   float64 `yaml:"min_width"`
	MaxWidth   float64 `yaml:"max_width"`
	Protrusion float64 `yaml:"protrusion"`
}

// Nozzle returns the flow profile. An unknown blend name falls back to
// smoothstep; Validate reports it.
func (e *Engine) Nozzle() profile.Nozzle {
	blend, _ := profile.ParseBlend(e.Blend)
	return profile.Nozzle{
		ChamberRadius:    e.ChamberRadius,
		ThroatRadius:     e.ThroatRadius,
		ExitRadius:       e.ExitRadius,
		ChamberLength:    e.ChamberLength,
		ConvergingLength: e.ConvergingLength,
		DivergingLength:  e.DivergingLength,
		Blend:            blend,
	}
}

// Length returns the axial extent of the flow path.
func (e *Engine) Length() float64 {
	return e.ChamberLength + e.ConvergingLength + e.DivergingLength
}

// Body returns the revolved body parameters.
func (e *Engine) Body(res Resolution) feature.Body {
	return feature.Body{
		Nozzle:   e.Nozzle(),
		Wall:     e.Wall,
		Skin:     e.Skin,
		Plate:    e.Plate,
		Segments: res.Profile,
	}
}

// ChannelParams returns the cooling-channel parameters with defaulted
// bounds.
func (e *Engine) ChannelParams(res Resolution) feature.Channels {
	c := e.Channels
	z0, z1 := c.Start, c.End
	if z0 == 0 {
		z0 = e.Plate + 2*c.MaxRadius()
	}
	if z1 == 0 {
		z1 = e.Length() - 2*c.MaxRadius()
	}
	return feature.Channels{
		Count:     c.Count,
		Radius:    c.Radius,
		Twists:    c.Twists,
		DepthMin:  c.DepthMin,
		DepthMax:  c.DepthMax,
		Spread:    c.Spread,
		Breathing: c.Breathing,
		Z0:        z0,
		Z1:        z1,
		Segments:  res.Channel,
	}
}

// Floor returns the lowest point of the part: the flange underside, or the
// injector face without a flange.
func (e *Engine) Floor() float64 {
	if e.Flange != nil {
		return -e.Flange.Thickness
	}
	return 0
}

// InjectorParams returns the injector parameters. The bores run from the
// floor up through the plate.
func (e *Engine) InjectorParams() (feature.Injector, error) {
	inj := feature.Injector{
		Rings:      e.Injector.Rings,
		HoleRadius: e.Injector.HoleRadius,
		Floor:      e.Floor(),
		Top:        e.Plate,
	}
	if inj.Rings > 0 {
		h, err := feature.ParseHoleCount(e.Injector.Policy, e.Injector.PerRing)
		if err != nil {
			return feature.Injector{}, err
		}
		inj.Holes = h
	}
	return inj, nil
}

// Params returns the flange parameters.
func (f *Flange) Params(res Resolution) feature.Flange {
	return feature.Flange{
		Radius:      f.Radius,
		Thickness:   f.Thickness,
		BlendRadius: f.BlendRadius,
		Bolts:       f.Bolts,
		BoltRadius:  f.BoltRadius,
		BoltCircle:  f.BoltCircle,
		Segments:    res.Ring,
	}
}

// Params returns the band parameters.
func (b *Band) Params(res Resolution) feature.Band {
	return feature.Band{
		Count:      b.Count,
		Z0:         b.Start,
		Z1:         b.End,
		Width:      b.Width,
		Protrusion: b.Protrusion,
		Depth:      b.Depth,
		Segments:   res.Ring,
	}
}

// Params returns the fin parameters.
func (f *Fins) Params(res Resolution) feature.Fins {
	return feature.Fins{
		Count:      f.Count,
		Z0:         f.Start,
		Z1:         f.End,
		Twists:     f.Twists,
		Width:      f.Width,
		Protrusion: f.Protrusion,
		Segments:   res.Helix,
	}
}

// Params returns the sculpted-rib parameters.
func (s *Sculpt) Params(res Resolution) feature.Sculpt {
	return feature.Sculpt{
		Count:      s.Count,
		Z0:         s.Start,
		Z1:         s.End,
		Drift:      s.Drift,
		MinWidth:   s.MinWidth,
		MaxWidth:   s.MaxWidth,
		Protrusion: s.Protrusion,
		Segments:   res.Helix,
	}
}
