package feature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoleCountPolicies(t *testing.T) {
	tests := []struct {
		name string
		want []int
	}{
		{PolicyLinear, []int{10, 20, 30}},
		{PolicyPlusTwo, []int{12, 14, 16}},
		{PolicyPlusThree, []int{13, 16, 19}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseHoleCount(tt.name, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.Counts(3))
		})
	}
}

func TestParseHoleCountRequiresExplicitPolicy(t *testing.T) {
	for _, name := range []string{"", "quadratic"} {
		_, err := ParseHoleCount(name, 10)
		assert.ErrorIs(t, err, ErrInvalid)
	}
}

func TestInjectorRingsAndCentralBore(t *testing.T) {
	b := testBody()
	inj := Injector{Rings: 4, HoleRadius: 1.5, Holes: PlusTwo(8), Floor: -6, Top: 6}
	f, err := InjectorHoles(b, inj)
	require.NoError(t, err)
	assert.Equal(t, RoleSubtractive, f.Role)
	// 1 central bore + 10 + 12 + 14 + 16.
	require.Len(t, f.Prims, 53)

	center := f.Prims[0]
	assert.Equal(t, 0.0, center.P0.X)
	assert.Equal(t, 0.0, center.P0.Y)

	idx := 1
	for i, n := range inj.Holes.Counts(4) {
		want := float64(i+1) * (30 - 3*1.5) / 5
		for j := 0; j < n; j++ {
			p := f.Prims[idx]
			assert.InDelta(t, want, math.Hypot(p.P0.X, p.P0.Y), 1e-9, "ring %d hole %d", i+1, j)
			assert.Equal(t, -6.0, p.P0.Z)
			assert.Equal(t, 6.0, p.P1.Z)
			assert.Equal(t, 1.5, p.R0)
			idx++
		}
	}
}

func TestInjectorRejectsDegeneratePatterns(t *testing.T) {
	b := testBody()
	tests := map[string]Injector{
		"zero holes on a ring": {Rings: 2, HoleRadius: 1, Holes: Linear(0), Floor: -6, Top: 6},
		"no policy":            {Rings: 2, HoleRadius: 1, Floor: -6, Top: 6},
		"holes too wide":       {Rings: 2, HoleRadius: 12, Holes: Linear(1), Floor: -6, Top: 6},
		"zero ring span":       {Rings: 1, HoleRadius: 10, Holes: Linear(1), Floor: -6, Top: 6},
		"span gone, no rings":  {HoleRadius: 10, Floor: -6, Top: 6},
		"empty bore":           {Rings: 1, HoleRadius: 1, Holes: Linear(4), Floor: 6, Top: 6},
	}
	for name, inj := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := InjectorHoles(b, inj)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestInjectorWithoutRingsIsCentralBore(t *testing.T) {
	f, err := InjectorHoles(testBody(), Injector{HoleRadius: 2, Floor: -6, Top: 6})
	require.NoError(t, err)
	assert.Len(t, f.Prims, 1)
}
