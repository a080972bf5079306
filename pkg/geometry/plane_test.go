package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/material"
)

func TestPlane_Intersect(t *testing.T) {
	// Horizontal plane at y=0
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), material.NewMaterial())

	tests := []struct {
		name           string
		ray            core.Ray
		shouldHit      bool
		expectedT      float64
		expectedNormal core.Vec3
		expectedFront  bool
	}{
		{
			name:           "from above",
			ray:            core.NewRay(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0)),
			shouldHit:      true,
			expectedT:      5,
			expectedNormal: core.NewVec3(0, 1, 0),
			expectedFront:  true,
		},
		{
			name:           "from below",
			ray:            core.NewRay(core.NewVec3(0, -2, 0), core.NewVec3(0, 1, 0)),
			shouldHit:      true,
			expectedT:      2,
			expectedNormal: core.NewVec3(0, -1, 0),
			expectedFront:  false,
		},
		{
			name: "parallel ray",
			ray:  core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0)),
		},
		{
			name: "plane behind the origin",
			ray:  core.NewRay(core.NewVec3(0, 5, 0), core.NewVec3(0, 1, 0)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := plane.Intersect(tt.ray)
			require.Equal(t, tt.shouldHit, ok)
			if !tt.shouldHit {
				return
			}
			assert.InDelta(t, tt.expectedT, hit.Distance, 1e-9)
			assertVecNear(t, tt.expectedNormal, hit.Normal, 1e-9)
			assert.Equal(t, tt.expectedFront, hit.FrontFace)
		})
	}
}

func TestPlane_NormalIsNormalized(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 3, 0), material.NewMaterial())
	assert.InDelta(t, 1.0, plane.Normal.Length(), 1e-12)

	hit, ok := plane.Intersect(core.NewRay(core.NewVec3(0, 2, 0), core.NewVec3(0, -1, 0)))
	require.True(t, ok)
	assert.InDelta(t, 2.0, hit.Distance, 1e-9)
}

func TestPlane_SurfaceCoordinates(t *testing.T) {
	t.Run("horizontal plane", func(t *testing.T) {
		plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), material.NewMaterial())
		hit, ok := plane.Intersect(core.NewRay(core.NewVec3(0.3, 4, 0.7), core.NewVec3(0, -1, 0)))
		require.True(t, ok)
		assert.InDelta(t, 0.3, hit.U, 1e-9)
		assert.InDelta(t, 0.7, hit.V, 1e-9)
	})

	t.Run("vertical plane", func(t *testing.T) {
		plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), material.NewMaterial())
		hit, ok := plane.Intersect(core.NewRay(core.NewVec3(0.25, -0.5, 3), core.NewVec3(0, 0, -1)))
		require.True(t, ok)
		assert.InDelta(t, 0.25, hit.U, 1e-9)
		assert.InDelta(t, 0.5, hit.V, 1e-9)
	})

	t.Run("offset origin", func(t *testing.T) {
		plane := NewPlane(core.NewVec3(2, 1, -3), core.NewVec3(0, 1, 0), material.NewMaterial())
		hit, ok := plane.Intersect(core.NewRay(core.NewVec3(2.5, 4, -1), core.NewVec3(0, -1, 0)))
		require.True(t, ok)
		assert.InDelta(t, 0.5, hit.U, 1e-9)
		assert.InDelta(t, 2.0, hit.V, 1e-9)
	})
}

func TestPlaneUV_SkewedBasis(t *testing.T) {
	// For a tilted normal the U and V axes are unit length but not orthogonal;
	// each coordinate is still the projection onto its own axis
	n := core.NewVec3(1, 1, 1).Normalize()
	p0 := core.NewVec3(0, 0, 0)
	U := core.NewVec3(1, -1, 0).Normalize()
	V := core.NewVec3(0, -1, 1).Normalize()

	p := U.Multiply(0.8).Add(V.Multiply(-0.3))
	u, v := planeUV(p0, p, n)
	assert.InDelta(t, p.Dot(U), u, 1e-9)
	assert.InDelta(t, p.Dot(V), v, 1e-9)
}

func TestDisk_Intersect(t *testing.T) {
	disk := NewDisk(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), 1.0, material.NewMaterial())

	tests := []struct {
		name      string
		origin    core.Vec3
		shouldHit bool
	}{
		{"center", core.NewVec3(0, 1, 0), true},
		{"inside radius", core.NewVec3(0.5, 1, 0.5), true},
		{"on the rim", core.NewVec3(1, 1, 0), true},
		{"outside radius", core.NewVec3(1.5, 1, 0), false},
		{"outside diagonally", core.NewVec3(0.8, 1, 0.8), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := disk.Intersect(core.NewRay(tt.origin, core.NewVec3(0, -1, 0)))
			require.Equal(t, tt.shouldHit, ok)
			if ok {
				assert.InDelta(t, 1.0, hit.Distance, 1e-9)
				assertVecNear(t, core.NewVec3(0, 1, 0), hit.Normal, 1e-9)
			}
		})
	}
}

func TestDisk_ParallelRayMisses(t *testing.T) {
	disk := NewDisk(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), 1.0, material.NewMaterial())
	_, ok := disk.Intersect(core.NewRay(core.NewVec3(-2, 0, 0), core.NewVec3(1, 0, 0)))
	assert.False(t, ok)
}
