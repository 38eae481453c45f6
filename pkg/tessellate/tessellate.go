// Package tessellate turns an assembled model into triangle meshes using a
// geometry kernel. One mesh is produced per part.
package tessellate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/lathe/pkg/assembly"
	"github.com/chazu/lathe/pkg/kernel"
)

// Part is one named solid to mesh.
type Part struct {
	Name  string
	Solid kernel.Solid
}

// Part name suffixes for the auxiliary solids.
const (
	SuffixChannels = "-channels"
	SuffixSection  = "-section"
)

// Parts lists the solids of an assembly result in output order: the
// shell, then the channel visualization and the section when present.
func Parts(res *assembly.Result) []Part {
	if res == nil {
		return nil
	}
	var parts []Part
	if res.Shell != nil {
		parts = append(parts, Part{Name: res.Name, Solid: res.Shell})
	}
	if res.Channels != nil {
		parts = append(parts, Part{Name: res.Name + SuffixChannels, Solid: res.Channels})
	}
	if res.Section != nil {
		parts = append(parts, Part{Name: res.Name + SuffixSection, Solid: res.Section})
	}
	return parts
}

// Tessellate produces one mesh per part of res, in the order of Parts.
// The tessellator is read-only and never mutates the result.
func Tessellate(ctx context.Context, k kernel.Kernel, res *assembly.Result) ([]*kernel.Mesh, error) {
	return Meshes(ctx, k, Parts(res))
}

// Meshes meshes parts concurrently. The returned slice is index-aligned
// with parts.
func Meshes(ctx context.Context, k kernel.Kernel, parts []Part) ([]*kernel.Mesh, error) {
	meshes := make([]*kernel.Mesh, len(parts))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range parts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mesh, err := k.ToMesh(p.Solid)
			if err != nil {
				return fmt.Errorf("tessellate: ToMesh failed for part %s: %w", p.Name, err)
			}
			mesh.PartName = p.Name
			meshes[i] = mesh
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return meshes, nil
}
