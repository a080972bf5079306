package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/geometry"
	"github.com/df07/go-raytracy/pkg/material"
)

func TestScene_Validate(t *testing.T) {
	s := NewScene()
	s.AddObject(geometry.NewSphere(core.NewVec3(0, 0, -3), 1, newTextured(material.NewMaterial(), 0, 1)))

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "object 0 references texture 0")

	s.AddTexture(NewGradientTexture(2, 2, core.NewVec3(1, 1, 1), core.NewVec3(0, 0, 0)))
	assert.NoError(t, s.Validate())

	bad := material.NewMaterial()
	bad.Reflectivity = 2
	s.AddObject(geometry.NewPlane(core.Vec3{}, core.NewVec3(0, 1, 0), bad))
	err = s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "object 1")
}

func TestScene_PrimitiveCountAndClear(t *testing.T) {
	s := NewScene()
	s.Background = core.NewVec3(1, 0, 0)
	s.AddObject(geometry.NewSphere(core.NewVec3(0, 0, -3), 1, material.NewMaterial()))
	s.AddObject(mustMesh(NewTorusMeshData(1, 0.25, 8, 4), material.NewMaterial(), core.Vec3{}, core.Vec3{}, 1))
	s.AddLight(core.NewVec3(0, 5, 0), core.NewVec3(1, 1, 1))
	texture := NewCheckerboardTexture(8, 2, core.NewVec3(1, 1, 1), core.Vec3{}, true)
	assert.Equal(t, 0, s.AddTexture(texture))

	// Torus: segments * rings quads, two triangles each
	assert.Equal(t, 1+8*4*2, s.GetPrimitiveCount())

	s.Clear()
	assert.Empty(t, s.Objects)
	assert.Empty(t, s.Lights)
	assert.Empty(t, s.Textures)
	assert.Equal(t, core.Vec3{}, s.Background)
	assert.Equal(t, 0, texture.Levels())
}

func TestProceduralTextures(t *testing.T) {
	checker := NewCheckerboardTexture(4, 2, core.NewVec3(1, 1, 1), core.NewVec3(0, 0, 0), false)
	assert.Equal(t, 4, checker.Width())
	assert.Equal(t, 3, checker.BytesPerPixel())
	assert.False(t, checker.HasMipmap())

	data := checker.LevelData(0)
	assert.Equal(t, uint8(255), data[0])           // (0,0) first cell
	assert.Equal(t, uint8(0), data[2*3])           // (2,0) second cell
	assert.Equal(t, uint8(0), data[(2*4)*3])       // (0,2) second cell row
	assert.Equal(t, uint8(255), data[(2*4+2)*3+1]) // (2,2) back to the first color

	gradient := NewGradientTexture(1, 3, core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1))
	data = gradient.LevelData(0)
	assert.Equal(t, []byte{255, 0, 0}, data[0:3])
	assert.Equal(t, []byte{128, 0, 128}, data[3:6])
	assert.Equal(t, []byte{0, 0, 255}, data[6:9])

	assert.Equal(t, 1, NewUVDebugTexture(0, -3).Width(), "sizes clamp to one texel")
}

func TestNewTorusMeshData(t *testing.T) {
	data := NewTorusMeshData(2, 0.5, 6, 4)

	assert.Len(t, data.Vertices, 7*5)
	assert.Len(t, data.UVs, len(data.Vertices))
	assert.Equal(t, 6*4*2, data.TriangleCount())
	for _, index := range data.Indices {
		assert.Less(t, int(index), len(data.Vertices))
	}

	// Every vertex lies on the tube surface
	for _, v := range data.Vertices {
		ring := core.NewVec3(v.X, 0, v.Z).Normalize().Multiply(2)
		assert.InDelta(t, 0.5, v.Subtract(ring).Length(), 1e-9)
	}
}

func TestBuiltinScenesAreValid(t *testing.T) {
	for _, name := range BuiltinNames() {
		t.Run(name, func(t *testing.T) {
			s, err := Builtin(name)
			require.NoError(t, err)
			require.NoError(t, s.Validate())
			assert.NotEmpty(t, s.Objects)
			assert.NotEmpty(t, s.Lights)

			// The camera looks down -z from the origin
			for i, object := range s.Objects {
				hit, ok := object.Intersect(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)))
				if ok {
					_, isPlane := object.(*geometry.Plane)
					assert.True(t, isPlane, "object %d sits behind the camera (t=%g)", i, hit.Distance)
				}
			}
			s.Clear()
		})
	}
}

func TestSphereGridScene(t *testing.T) {
	s := NewSphereGridScene(3)
	// Floor plus 3x3 spheres
	assert.Len(t, s.Objects, 10)

	s = NewSphereGridScene(0)
	assert.Len(t, s.Objects, 5, "grid size is clamped to 2")
}

func TestOklchToRGB(t *testing.T) {
	// Zero chroma is a neutral gray
	gray := oklchToRGB(0.5, 0, 123)
	assert.InDelta(t, gray.X, gray.Y, 1e-6)
	assert.InDelta(t, gray.Y, gray.Z, 1e-6)

	white := oklchToRGB(1, 0, 0)
	assert.InDelta(t, 1.0, white.X, 1e-3)

	c := oklchToRGB(0.7, 0.4, 30)
	for _, channel := range []float64{c.X, c.Y, c.Z} {
		assert.GreaterOrEqual(t, channel, 0.0)
		assert.LessOrEqual(t, channel, 1.0)
	}
}
