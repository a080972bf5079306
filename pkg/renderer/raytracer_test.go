package renderer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/geometry"
	"github.com/df07/go-raytracy/pkg/material"
	"github.com/df07/go-raytracy/pkg/scene"
)

func assertColor(t *testing.T, expected, actual core.Vec3) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, 1e-9, "red of %v", actual)
	assert.InDelta(t, expected.Y, actual.Y, 1e-9, "green of %v", actual)
	assert.InDelta(t, expected.Z, actual.Z, 1e-9, "blue of %v", actual)
}

var towardSphere = core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))

func TestCast_MissReturnsBackground(t *testing.T) {
	s := scene.NewScene()
	s.Background = core.NewVec3(0.25, 0.5, 0.75)
	rt := NewRaytracer(s, 3)

	assertColor(t, s.Background, rt.Cast(towardSphere, 0))
	assert.Equal(t, TraceStats{}, rt.Stats())
}

func TestCast_LocalShading(t *testing.T) {
	s := scene.NewScene()
	mat := material.Material{Color: core.NewVec3(1, 0.5, 0.25), Ka: 0.1, Kd: 0.5, Ks: 0.2, Shininess: 10}
	s.AddObject(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, mat))
	s.AddLight(core.Vec3{}, core.NewVec3(1, 1, 1))
	rt := NewRaytracer(s, 3)

	// Light at the eye: full diffuse and a specular highlight of exactly Ks
	expected := mat.Color.Multiply(0.1 + 0.5).Add(core.NewVec3(0.2, 0.2, 0.2))
	assertColor(t, expected, rt.Cast(towardSphere, 0))
	assert.Equal(t, 1, rt.Stats().ShadowRays)
}

func TestCast_ShadowedLightContributesNothing(t *testing.T) {
	s := scene.NewScene()
	floor := material.Material{Color: core.NewVec3(1, 1, 1), Ka: 0.1, Kd: 0.9}
	s.AddObject(geometry.NewPlane(core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0), floor))
	s.AddLight(core.NewVec3(0, 5, -5), core.NewVec3(1, 1, 1))
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, -1, -5).Normalize())

	lit := NewRaytracer(s, 3).Cast(ray, 0)
	assertColor(t, core.NewVec3(1, 1, 1), lit)

	s.AddObject(geometry.NewSphere(core.NewVec3(0, 2, -5), 0.5, material.NewMaterial()))
	shadowed := NewRaytracer(s, 3).Cast(ray, 0)
	assertColor(t, core.NewVec3(0.1, 0.1, 0.1), shadowed)
}

func TestCast_MaxDepthIsLocalOnly(t *testing.T) {
	s := scene.NewScene()
	s.Background = core.NewVec3(0, 0, 1)
	mirror := material.Material{Color: core.NewVec3(1, 0, 0), Ka: 0.2, Reflectivity: 1}
	s.AddObject(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, mirror))
	rt := NewRaytracer(s, 3)

	assertColor(t, core.NewVec3(0.2, 0, 0), rt.Cast(towardSphere, 3))
	assert.Equal(t, 0, rt.Stats().SecondaryRays)

	// Below the limit the mirror reflects the background straight back
	assertColor(t, core.NewVec3(0.2, 0, 1), rt.Cast(towardSphere, 2))
	assert.Equal(t, 1, rt.Stats().SecondaryRays)
}

func TestCast_RefractionThroughSphere(t *testing.T) {
	s := scene.NewScene()
	s.Background = core.NewVec3(0, 1, 0)
	glass := material.Material{IOR: 1.5}
	s.AddObject(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, glass))
	rt := NewRaytracer(s, 3)

	// From the center the ray leaves at normal incidence: kr = 0.04, and the
	// internal reflection ends at the depth limit with a black local term
	inside := core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(1, 0, 0))
	assertColor(t, core.NewVec3(0, 0.96, 0), rt.Cast(inside, 2))
	assert.Equal(t, 2, rt.Stats().SecondaryRays)
}

func TestCast_TotalInternalReflectionSkipsRefraction(t *testing.T) {
	s := scene.NewScene()
	s.Background = core.NewVec3(0, 1, 0)
	glass := material.Material{IOR: 1.5}
	s.AddObject(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, glass))
	rt := NewRaytracer(s, 3)

	// sin(incidence) = 0.9 inside glass: 1.5 * 0.9 > 1
	grazing := core.NewRay(core.NewVec3(0, 0.9, -5), core.NewVec3(1, 0, 0))
	assertColor(t, core.Vec3{}, rt.Cast(grazing, 2))
	assert.Equal(t, 1, rt.Stats().SecondaryRays, "only the reflection ray is cast")
}

func TestRefract(t *testing.T) {
	normal := core.NewVec3(0, 1, 0)

	t.Run("snell", func(t *testing.T) {
		sin30, cos30 := 0.5, math.Sqrt(3)/2
		refracted, kr, ok := refract(core.NewVec3(sin30, -cos30, 0), normal, true, 1.5)
		require.True(t, ok)
		assert.InDelta(t, sin30/1.5, refracted.X, 1e-12)
		assert.InDelta(t, -math.Sqrt(1-sin30*sin30/2.25), refracted.Y, 1e-12)
		assert.Greater(t, kr, 0.0)
		assert.Less(t, kr, 0.1)
	})

	t.Run("normal incidence", func(t *testing.T) {
		refracted, kr, ok := refract(core.NewVec3(0, -1, 0), normal, true, 1.5)
		require.True(t, ok)
		assertDirection(t, core.NewVec3(0, -1, 0), refracted)
		assert.InDelta(t, 0.04, kr, 1e-12)
	})

	t.Run("total internal reflection", func(t *testing.T) {
		sin60, cos60 := math.Sqrt(3)/2, 0.5
		_, kr, ok := refract(core.NewVec3(sin60, -cos60, 0), normal, false, 1.5)
		assert.False(t, ok)
		assert.Equal(t, 1.0, kr)
	})

	t.Run("exiting below the critical angle", func(t *testing.T) {
		sin20 := math.Sin(20 * math.Pi / 180)
		refracted, _, ok := refract(core.NewVec3(sin20, -math.Cos(20*math.Pi/180), 0), normal, false, 1.5)
		require.True(t, ok)
		assert.InDelta(t, 1.5*sin20, refracted.X, 1e-12)
	})
}

func TestMaterialColor(t *testing.T) {
	s := scene.NewScene()
	stripes, err := material.NewTexture(2, 1, 3, []byte{255, 0, 0, 0, 255, 0})
	require.NoError(t, err)
	s.AddTexture(stripes)
	s.AddTexture(scene.NewCheckerboardTexture(4, 1, core.NewVec3(1, 1, 1), core.Vec3{}, true))
	rt := NewRaytracer(s, 3)

	mat := material.Material{Color: core.NewVec3(1, 1, 0.5), Texture: material.NewTextureRef(0)}
	assertColor(t, core.NewVec3(1, 0, 0), rt.materialColor(&mat, geometry.Hit{U: 0.25, Distance: 1}))
	assertColor(t, core.NewVec3(0, 1, 0), rt.materialColor(&mat, geometry.Hit{U: 0.75, Distance: 1}))
	// Scale 2 repeats the texture: u = 0.3 samples at 0.6
	mat.Texture.Scale = 2
	assertColor(t, core.NewVec3(0, 1, 0), rt.materialColor(&mat, geometry.Hit{U: 0.3, Distance: 1}))

	untextured := material.Material{Color: core.NewVec3(0.1, 0.2, 0.3)}
	assertColor(t, untextured.Color, rt.materialColor(&untextured, geometry.Hit{}))

	// Far away a mipmapped checkerboard averages to gray
	checker := material.Material{Color: core.NewVec3(1, 1, 1), Texture: material.NewTextureRef(1)}
	rt.SetSampleAngle(0.01)
	far := rt.materialColor(&checker, geometry.Hit{U: 0.1, V: 0.1, Distance: 1e6})
	assertColor(t, core.NewVec3(128.0/255, 128.0/255, 128.0/255), far)

	near := rt.materialColor(&checker, geometry.Hit{U: 0.1, V: 0.1, Distance: 1})
	assertColor(t, core.NewVec3(1, 1, 1), near)
}

func TestToChannel(t *testing.T) {
	assert.Equal(t, uint8(0), toChannel(-0.5))
	assert.Equal(t, uint8(127), toChannel(0.5))
	assert.Equal(t, uint8(255), toChannel(1))
	assert.Equal(t, uint8(255), toChannel(3))
}
