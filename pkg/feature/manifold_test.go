package feature

import (
	"context"
	"testing"

	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/kernel/sdfx"
	"github.com/chazu/lathe/pkg/sweep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManifold() Manifold {
	return Manifold{
		Junction:       kernel.V(0, 0, 20),
		JunctionRadius: 6,
		Ports: []Port{
			{Point: kernel.V(0, 0, -20), Direction: kernel.V(0, 0, -1), Radius: 6},
			{Point: kernel.V(40, 0, 50), Direction: kernel.V(1, 0, 0), Radius: 4},
			{Point: kernel.V(-40, 0, 50), Direction: kernel.V(-1, 0, 0), Radius: 4},
		},
		Wall:     2,
		Segments: 48,
	}
}

func TestManifoldBranchArrivesAlongPort(t *testing.T) {
	m := testManifold()
	for _, p := range m.Ports {
		br := m.Branch(p)
		assert.Equal(t, m.Junction, br.Point(0))
		assert.InDelta(t, 0, p.Point.Dist(br.Point(1)), 1e-9)
		dir := br.Tangent(1).Normalize()
		assert.InDelta(t, 1, dir.Dot(p.Direction.Normalize()), 1e-9)
		assert.Equal(t, p.Radius, br.Radius(1))
	}
}

func TestManifoldPrimitiveCounts(t *testing.T) {
	m := testManifold()
	shell, err := ManifoldShell(m)
	require.NoError(t, err)
	// One capsule per segment per branch plus the junction sphere.
	assert.Len(t, shell.Prims, 3*48+1)
	assert.Equal(t, 1, countKind(shell.Prims, sweep.KindSphere))

	bore, err := ManifoldBore(m)
	require.NoError(t, err)
	// Plus one opening capsule per port.
	assert.Len(t, bore.Prims, 3*48+1+3)
}

func TestManifoldShellIsWallThickerThanBore(t *testing.T) {
	m := testManifold()
	shell, err := ManifoldShell(m)
	require.NoError(t, err)
	bore, err := ManifoldBore(m)
	require.NoError(t, err)
	for i := range shell.Prims[:3*48] {
		assert.InDelta(t, m.Wall, shell.Prims[i].R0-bore.Prims[i].R0, 1e-9)
	}
}

func TestManifoldPortsOpen(t *testing.T) {
	m := testManifold()
	k := sdfx.New()
	ctx := context.Background()
	shellF, err := ManifoldShell(m)
	require.NoError(t, err)
	boreF, err := ManifoldBore(m)
	require.NoError(t, err)
	shell, err := shellF.Build(ctx, k)
	require.NoError(t, err)
	bore, err := boreF.Build(ctx, k)
	require.NoError(t, err)
	part, err := k.Difference(shell, bore)
	require.NoError(t, err)

	for _, p := range m.Ports {
		d := p.Direction.Normalize()
		// Just outside the shell's end cap on the axis: open, not material.
		assert.False(t, kernel.Contains(part, p.Point.Add(d.Scale(p.Radius+m.Wall-0.1))))
		// Inside the wall of the branch near the port: material.
		side := d.Cross(kernel.V(0, 1, 0))
		if side.Length() == 0 {
			side = d.Cross(kernel.V(1, 0, 0))
		}
		side = side.Normalize()
		assert.True(t, kernel.Contains(part, p.Point.Sub(d.Scale(1)).Add(side.Scale(p.Radius+m.Wall/2))))
	}
	assert.False(t, kernel.Contains(part, m.Junction), "junction must be hollow")
}

func TestManifoldRejectsBadPorts(t *testing.T) {
	m := testManifold()
	m.Ports = m.Ports[:1]
	_, err := ManifoldShell(m)
	assert.ErrorIs(t, err, ErrInvalid)

	m = testManifold()
	m.Ports[1].Direction = kernel.Vec3{}
	_, err = ManifoldBore(m)
	assert.ErrorIs(t, err, ErrInvalid)

	m = testManifold()
	m.Ports[0].Point = kernel.V(0, 0, 22)
	_, err = ManifoldShell(m)
	assert.ErrorIs(t, err, ErrInvalid)
}
