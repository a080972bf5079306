package scene

import (
	"github.com/pkg/errors"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/geometry"
	"github.com/df07/go-raytracy/pkg/material"
)

// Light is a point light; Color scales the specular highlight it produces
type Light struct {
	Position core.Vec3
	Color    core.Vec3
}

// Scene contains all the elements needed for rendering. It is built once,
// read concurrently while rendering and torn down by Clear.
type Scene struct {
	Background core.Vec3
	Objects    []geometry.Object
	Lights     []Light
	Textures   []*material.Texture
}

// NewScene creates an empty scene with a black background
func NewScene() *Scene {
	return &Scene{}
}

// AddObject appends an object to the scene
func (s *Scene) AddObject(object geometry.Object) {
	s.Objects = append(s.Objects, object)
}

// AddLight appends a point light
func (s *Scene) AddLight(position, color core.Vec3) {
	s.Lights = append(s.Lights, Light{Position: position, Color: color})
}

// AddTexture appends a texture and returns its index for material references
func (s *Scene) AddTexture(texture *material.Texture) int {
	s.Textures = append(s.Textures, texture)
	return len(s.Textures) - 1
}

// Validate checks every material, including that texture references point at
// a loaded texture
func (s *Scene) Validate() error {
	for i, object := range s.Objects {
		mat := object.GetMaterial()
		if err := mat.Validate(); err != nil {
			return errors.Wrapf(err, "object %d", i)
		}
		if mat.Texture != nil && mat.Texture.Index >= len(s.Textures) {
			return errors.Errorf("object %d references texture %d but the scene has %d", i, mat.Texture.Index, len(s.Textures))
		}
	}
	return nil
}

// GetPrimitiveCount returns the total number of primitives, counting each mesh triangle
func (s *Scene) GetPrimitiveCount() int {
	count := 0
	for _, object := range s.Objects {
		switch obj := object.(type) {
		case *geometry.Mesh:
			count += obj.TriangleCount()
		default:
			count++
		}
	}
	return count
}

// Clear releases mesh and texture buffers and empties the scene
func (s *Scene) Clear() {
	for _, object := range s.Objects {
		if mesh, ok := object.(*geometry.Mesh); ok {
			mesh.Release()
		}
	}
	for _, texture := range s.Textures {
		texture.Release()
	}

	s.Background = core.Vec3{}
	s.Objects = nil
	s.Lights = nil
	s.Textures = nil
}
