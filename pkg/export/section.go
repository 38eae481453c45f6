package export

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gg"

	"github.com/chazu/lathe/pkg/kernel"
)

// Plane is the square window of the section plane z = Z spanning
// [-HalfWidth, HalfWidth] in X and Y, rendered at Pixels per side.
type Plane struct {
	Z         float64
	HalfWidth float64
	Pixels    int
}

// Layer paints the points of the plane inside Solid in color R, G, B.
// Later layers paint over earlier ones.
type Layer struct {
	Solid   kernel.Sampler
	R, G, B float64
}

// ErrNotSampled is returned when a solid cannot answer point queries.
var ErrNotSampled = errors.New("export: solid does not support point queries")

// AsLayer wraps s as a layer if its kernel supports point queries.
func AsLayer(s kernel.Solid, r, g, b float64) (Layer, error) {
	sm, ok := s.(kernel.Sampler)
	if !ok {
		return Layer{}, fmt.Errorf("%w (%T)", ErrNotSampled, s)
	}
	return Layer{Solid: sm, R: r, G: g, B: b}, nil
}

func (p Plane) validate() error {
	if p.Pixels < 2 || p.HalfWidth <= 0 {
		return fmt.Errorf("export: section plane needs pixels >= 2 and a positive half width, got %d and %g", p.Pixels, p.HalfWidth)
	}
	return nil
}

// point maps pixel (i, j) to the plane. Row 0 is the top, +Y.
func (p Plane) point(i, j int) kernel.Vec3 {
	step := 2 * p.HalfWidth / float64(p.Pixels)
	return kernel.Vec3{
		X: -p.HalfWidth + (float64(i)+0.5)*step,
		Y: p.HalfWidth - (float64(j)+0.5)*step,
		Z: p.Z,
	}
}

// DrawSection rasterizes the layers on a white background.
func DrawSection(p Plane, layers ...Layer) (image.Image, error) {
	dc, err := draw(p, layers)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	return dc.Image(), nil
}

// RenderSection rasterizes the layers and saves the image as PNG.
func RenderSection(path string, p Plane, layers ...Layer) error {
	dc, err := draw(p, layers)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

func draw(p Plane, layers []Layer) (*gg.Context, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	dc := gg.NewContext(p.Pixels, p.Pixels)
	dc.ClearWithColor(gg.White)

	for _, l := range layers {
		dc.SetRGB(l.R, l.G, l.B)
		for j := 0; j < p.Pixels; j++ {
			// Paint each inside run of the row as one rectangle.
			start := -1
			for i := 0; i <= p.Pixels; i++ {
				in := i < p.Pixels && l.Solid.Distance(p.point(i, j)) <= 0
				switch {
				case in && start < 0:
					start = i
				case !in && start >= 0:
					dc.DrawRectangle(float64(start), float64(j), float64(i-start), 1)
					start = -1
				}
			}
		}
		if err := dc.Fill(); err != nil {
			dc.Close()
			return nil, fmt.Errorf("export: fill section: %w", err)
		}
	}
	return dc, nil
}
