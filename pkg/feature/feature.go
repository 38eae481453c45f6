// Package feature builds the semantic parts of a model (shell, flow path,
// cooling channels, injector, ribs, flanges, manifold branches) as lists of
// kernel primitives.
//
// Builders are pure functions of their parameters. They return a Feature
// whose primitive plan can be inspected (and counted) before any kernel
// work happens; Build hands the plan to a kernel.
package feature

import (
	"context"
	"errors"
	"fmt"

	"github.com/chazu/lathe/pkg/curve"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/sweep"
)

// ErrInvalid is returned by builders given parameters that cannot describe
// the feature.
var ErrInvalid = errors.New("feature: invalid parameters")

// Role says how a feature enters the final solid.
type Role int

const (
	// RoleBody is the envelope every other feature is combined with.
	RoleBody Role = iota
	// RoleAdditive features are unioned onto the body.
	RoleAdditive
	// RoleSubtractive features are carved out after every additive
	// feature has been unioned.
	RoleSubtractive
)

func (r Role) String() string {
	switch r {
	case RoleBody:
		return "body"
	case RoleAdditive:
		return "additive"
	case RoleSubtractive:
		return "subtractive"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Feature is a named, planned part of a model.
type Feature struct {
	Name  string
	Role  Role
	Prims []sweep.Primitive
}

// Build folds the feature's primitives into one solid.
func (f Feature) Build(ctx context.Context, k kernel.Kernel) (kernel.Solid, error) {
	s, err := sweep.Build(ctx, k, f.Prims)
	if err != nil {
		return nil, fmt.Errorf("feature %s: %w", f.Name, err)
	}
	return s, nil
}

// Box returns the union of the primitive bounding boxes.
func (f Feature) Box() kernel.Box {
	if len(f.Prims) == 0 {
		return kernel.Box{}
	}
	b := f.Prims[0].Box()
	for _, p := range f.Prims[1:] {
		b = b.Union(p.Box())
	}
	return b
}

func invalid(name, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, name, fmt.Sprintf(format, args...))
}

func positive(name, field string, v float64) error {
	if !(v > 0) {
		return invalid(name, "%s is %g, must be positive", field, v)
	}
	return nil
}

// tubes samples every curve with n segments and concatenates the capsule
// chains, growing radii by offset.
func tubes(curves []curve.Curve, n int, offset float64) ([]sweep.Primitive, error) {
	var prims []sweep.Primitive
	for _, c := range curves {
		samples, err := curve.Samples(c, n)
		if err != nil {
			return nil, err
		}
		p, err := sweep.Capsules(samples, offset)
		if err != nil {
			return nil, err
		}
		prims = append(prims, p...)
	}
	return prims, nil
}
