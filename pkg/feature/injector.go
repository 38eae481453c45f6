package feature

import (
	"fmt"
	"math"

	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/sweep"
)

// HoleCount returns the number of injector holes on ring i, counting rings
// from 1.
type HoleCount func(ring int) int

// Linear puts perRing·i holes on ring i.
func Linear(perRing int) HoleCount {
	return func(i int) int { return perRing * i }
}

// PlusTwo puts perRing+2·i holes on ring i.
func PlusTwo(perRing int) HoleCount {
	return func(i int) int { return perRing + 2*i }
}

// PlusThree puts perRing+3·i holes on ring i.
func PlusThree(perRing int) HoleCount {
	return func(i int) int { return perRing + 3*i }
}

// Hole-count policy names accepted by ParseHoleCount.
const (
	PolicyLinear    = "linear"
	PolicyPlusTwo   = "plus-two"
	PolicyPlusThree = "plus-three"
)

var policies = map[string]func(int) HoleCount{
	PolicyLinear:    Linear,
	PolicyPlusTwo:   PlusTwo,
	PolicyPlusThree: PlusThree,
}

// Policies lists the accepted policy names.
func Policies() []string {
	return []string{PolicyLinear, PolicyPlusTwo, PolicyPlusThree}
}

// ParseHoleCount returns the named policy for perRing. There is no default:
// an empty name is an error.
func ParseHoleCount(name string, perRing int) (HoleCount, error) {
	p, ok := policies[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown hole-count policy %q (want one of %v)", ErrInvalid, name, Policies())
	}
	return p(perRing), nil
}

// Counts evaluates h for rings 1..rings.
func (h HoleCount) Counts(rings int) []int {
	out := make([]int, rings)
	for i := range out {
		out[i] = h(i + 1)
	}
	return out
}

// Injector is the hole pattern drilled through the injector plate:
// concentric rings of axial bores around one central bore.
type Injector struct {
	Rings      int
	HoleRadius float64
	Holes      HoleCount
	// Floor and Top bound every bore axially. Floor is normally the
	// bottom of the base flange, Top the chamber side of the plate.
	Floor, Top float64
}

// RingRadius returns i·(chamberRadius − 3·holeRadius)/(rings+1). The span
// must be positive; InjectorHoles rejects patterns where it is not.
func (inj Injector) RingRadius(chamberRadius float64, i int) float64 {
	return float64(i) * (chamberRadius - 3*inj.HoleRadius) / float64(inj.Rings+1)
}

// InjectorHoles lays out the bores. Ring i carries inj.Holes(i) holes
// evenly spaced in angle.
func InjectorHoles(b Body, inj Injector) (Feature, error) {
	const name = "injector"
	if err := b.validate(name); err != nil {
		return Feature{}, err
	}
	if err := positive(name, "hole radius", inj.HoleRadius); err != nil {
		return Feature{}, err
	}
	if inj.Rings < 0 {
		return Feature{}, invalid(name, "ring count is %d", inj.Rings)
	}
	if inj.Rings > 0 && inj.Holes == nil {
		return Feature{}, invalid(name, "no hole-count policy")
	}
	if inj.Top <= inj.Floor {
		return Feature{}, invalid(name, "bore range [%g, %g] is empty", inj.Floor, inj.Top)
	}
	rc := b.Nozzle.ChamberRadius
	if rc-3*inj.HoleRadius <= 0 {
		return Feature{}, invalid(name, "hole radius %g leaves no ring span in a %g chamber", inj.HoleRadius, rc)
	}
	if inj.Rings > 0 && inj.RingRadius(rc, inj.Rings)+inj.HoleRadius >= rc {
		return Feature{}, invalid(name, "outer ring does not fit the chamber")
	}

	bore := func(x, y float64) sweep.Primitive {
		return sweep.Capsule(
			kernel.Vec3{X: x, Y: y, Z: inj.Floor},
			kernel.Vec3{X: x, Y: y, Z: inj.Top},
			inj.HoleRadius, inj.HoleRadius)
	}
	prims := []sweep.Primitive{bore(0, 0)}
	for i := 1; i <= inj.Rings; i++ {
		n := inj.Holes(i)
		if n < 1 {
			return Feature{}, invalid(name, "ring %d has %d holes", i, n)
		}
		r := inj.RingRadius(rc, i)
		for j := 0; j < n; j++ {
			a := 2 * math.Pi * float64(j) / float64(n)
			prims = append(prims, bore(r*math.Cos(a), r*math.Sin(a)))
		}
	}
	return Feature{Name: name, Role: RoleSubtractive, Prims: prims}, nil
}
