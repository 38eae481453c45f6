// Package profile holds the scalar functions of axial position that shape
// every swept feature: flow radius, outer radius, channel depth, twist.
// All functions are pure. Callers clamp positions to the declared domain
// before evaluating; behaviour outside it is unspecified.
package profile

import "math"

// Func maps a 1D position (axial distance or curve parameter) to a scalar.
type Func func(z float64) float64

// Constant returns a Func that always yields v.
func Constant(v float64) Func {
	return func(float64) float64 { return v }
}

// Lerp interpolates linearly between a (t=0) and b (t=1).
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Smoothstep is the cubic ease t²(3−2t). t is clamped to [0,1], so the
// result is monotone non-decreasing with zero slope at both ends.
func Smoothstep(t float64) float64 {
	t = clamp01(t)
	return t * t * (3 - 2*t)
}

// Hermite evaluates the cubic Hermite segment from p0 to p1 with end
// tangents m0 and m1 (per unit t).
func Hermite(p0, p1, m0, m1, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return (2*t3-3*t2+1)*p0 + (t3-2*t2+t)*m0 + (-2*t3+3*t2)*p1 + (t3-t2)*m1
}

func clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}

// Offset returns f shifted by d, e.g. outer radius = flow radius + wall.
func Offset(f Func, d float64) Func {
	return func(z float64) float64 { return f(z) + d }
}

// Sub returns f − g pointwise.
func Sub(f, g Func) Func {
	return func(z float64) float64 { return f(z) - g(z) }
}

// Clamp restricts the argument of f to [lo, hi].
func Clamp(f Func, lo, hi float64) Func {
	return func(z float64) float64 { return f(math.Max(lo, math.Min(hi, z))) }
}

// GaussianBump is a bell-shaped profile centered at Center: Min far away,
// Max at the center. Spread is the denominator of the exponent, in squared
// length units.
type GaussianBump struct {
	Center float64
	Spread float64
	Min    float64
	Max    float64
}

// At evaluates lerp(Min, Max, exp(−(z−Center)²/Spread)).
func (g GaussianBump) At(z float64) float64 {
	d := z - g.Center
	return Lerp(g.Min, g.Max, math.Exp(-d*d/g.Spread))
}

// Func returns g as a Func.
func (g GaussianBump) Func() Func {
	return g.At
}

// Breathing returns the radial perturbation 1 + k·sin(2πt). It keeps long
// helical channels from having a perfectly constant cross-section.
func Breathing(k float64) Func {
	return func(t float64) float64 {
		return 1 + k*math.Sin(2*math.Pi*t)
	}
}
