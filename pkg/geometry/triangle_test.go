package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/material"
)

func TestTriangle_Intersect(t *testing.T) {
	// Create a triangle in the XY plane
	triangle := NewTriangle(
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
		material.NewMaterial(),
	)

	tests := []struct {
		name           string
		ray            core.Ray
		shouldHit      bool
		expectedT      float64
		expectedNormal core.Vec3
	}{
		{
			name:           "from above toward -z",
			ray:            core.NewRay(core.NewVec3(0.2, 0.2, 1), core.NewVec3(0, 0, -1)),
			shouldHit:      true,
			expectedT:      1.0,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "from behind gets a flipped normal",
			ray:            core.NewRay(core.NewVec3(0.25, 0.25, -1), core.NewVec3(0, 0, 1)),
			shouldHit:      true,
			expectedT:      1.0,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
		{
			name:           "on an edge",
			ray:            core.NewRay(core.NewVec3(0.5, 0, 1), core.NewVec3(0, 0, -1)),
			shouldHit:      true,
			expectedT:      1.0,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name: "outside the triangle",
			ray:  core.NewRay(core.NewVec3(1, 1, 1), core.NewVec3(0, 0, -1)),
		},
		{
			name: "parallel to the plane",
			ray:  core.NewRay(core.NewVec3(0.25, 0.25, 0), core.NewVec3(1, 0, 0)),
		},
		{
			name: "triangle behind the origin",
			ray:  core.NewRay(core.NewVec3(0.2, 0.2, 1), core.NewVec3(0, 0, 1)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := triangle.Intersect(tt.ray)
			require.Equal(t, tt.shouldHit, ok)
			if !tt.shouldHit {
				return
			}
			assert.InDelta(t, tt.expectedT, hit.Distance, 1e-9)
			assertVecNear(t, tt.expectedNormal, hit.Normal, 1e-9)
			assert.GreaterOrEqual(t, hit.U, 0.0)
			assert.GreaterOrEqual(t, hit.V, 0.0)
			assert.LessOrEqual(t, hit.U+hit.V, 1.0)
		})
	}
}

func TestTriangle_Intersect_Barycentrics(t *testing.T) {
	triangle := NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), material.NewMaterial())

	hit, ok := triangle.Intersect(core.NewRay(core.NewVec3(0.2, 0.3, 1), core.NewVec3(0, 0, -1)))
	require.True(t, ok)
	assert.InDelta(t, 0.2, hit.U, 1e-9)
	assert.InDelta(t, 0.3, hit.V, 1e-9)
}

func TestTriangle_Intersect_DegenerateMisses(t *testing.T) {
	// Collinear vertices have a zero determinant for every ray
	triangle := NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 0), core.NewVec3(2, 2, 0), material.NewMaterial())
	_, ok := triangle.Intersect(core.NewRay(core.NewVec3(1, 1, 1), core.NewVec3(0, 0, -1)))
	assert.False(t, ok)
}

func TestTriangle_Intersect_NormalIsUnit(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	randomPoint := func() core.Vec3 {
		return core.NewVec3(random.Float64()*10-5, random.Float64()*10-5, random.Float64()*10-5)
	}

	hits := 0
	for i := 0; i < 500; i++ {
		a, b, c := randomPoint(), randomPoint(), randomPoint()
		if b.Subtract(a).Cross(c.Subtract(a)).Length() < 1e-3 {
			continue
		}
		centroid := a.Add(b).Add(c).Multiply(1.0 / 3)
		origin := randomPoint().Multiply(4)
		ray := core.NewRay(origin, centroid.Subtract(origin).Normalize())

		hit, ok := intersectTriangle(a, b, c, ray)
		if !ok {
			continue
		}
		hits++
		assert.InDelta(t, 1.0, hit.Normal.Length(), 1e-5)
		assert.LessOrEqual(t, hit.Normal.Dot(ray.Direction), 0.0)
		assert.False(t, math.IsNaN(hit.Distance))
	}
	assert.Greater(t, hits, 100)
}
