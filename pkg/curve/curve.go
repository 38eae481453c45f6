// Package curve samples parametric space curves into ordered point
// sequences, pairing every point with the radius a sweep should have there.
//
// Every curve is evaluated on t ∈ [0, 1]. Curves are plain values: build
// one per feature, sample it, drop it.
package curve

import (
	"errors"
	"fmt"

	"github.com/chazu/lathe/pkg/kernel"
)

// ErrNoSegments is returned when a curve is sampled with fewer than one
// segment.
var ErrNoSegments = errors.New("curve: sample count must be at least 1 segment")

// Sample is a point on a curve with the sweep radius at that point.
type Sample struct {
	Point  kernel.Vec3
	Radius float64
	// Phase is a curve-specific attribute: the helix angle for helices,
	// the groove depth for sculpted features, zero otherwise.
	Phase float64
	// T is the curve parameter the sample was taken at.
	T float64
}

// Curve is a parametric curve on t ∈ [0, 1].
type Curve interface {
	Eval(t float64) Sample
}

// Samples evaluates c at n+1 parameters stepping uniformly from 0 to 1
// inclusive, i.e. n segments.
func Samples(c Curve, n int) ([]Sample, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNoSegments, n)
	}
	out := make([]Sample, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		s := c.Eval(t)
		s.T = t
		out[i] = s
	}
	return out, nil
}

// Length approximates the arc length of a sampled curve.
func Length(samples []Sample) float64 {
	var l float64
	for i := 1; i < len(samples); i++ {
		l += samples[i-1].Point.Dist(samples[i].Point)
	}
	return l
}
