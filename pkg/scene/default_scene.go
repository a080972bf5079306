package scene

import (
	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/geometry"
	"github.com/df07/go-raytracy/pkg/material"
)

// The camera sits at the origin looking down -z, so every built-in scene is
// laid out in front of it.

// newPhong returns an opaque material with the given lighting coefficients
func newPhong(color core.Vec3, ka, kd, ks, shininess float64) material.Material {
	return material.Material{Color: color, Ka: ka, Kd: kd, Ks: ks, Shininess: shininess}
}

// newTextured attaches a texture reference to a material
func newTextured(mat material.Material, texture int, scale float64) material.Material {
	mat.Texture = &material.TextureRef{Index: texture, Scale: scale}
	return mat
}

// NewDefaultScene creates a classic recursive ray tracing scene: a glass
// sphere, a mirror sphere and a shiny diffuse sphere over a checkered floor
func NewDefaultScene() *Scene {
	s := NewScene()
	s.Background = core.NewVec3(0.45, 0.6, 0.85)

	checker := s.AddTexture(NewCheckerboardTexture(256, 32,
		core.NewVec3(0.9, 0.9, 0.9),
		core.NewVec3(0.15, 0.15, 0.2),
		true,
	))

	floor := newTextured(newPhong(core.NewVec3(1, 1, 1), 0.15, 0.85, 0, 0), checker, 0.125)
	floor.Reflectivity = 0.15
	s.AddObject(geometry.NewPlane(core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0), floor))

	glass := newPhong(core.NewVec3(1, 1, 1), 0, 0.05, 0.9, 80)
	glass.IOR = 1.5
	s.AddObject(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, glass))

	mirror := newPhong(core.NewVec3(0.8, 0.8, 0.9), 0.05, 0.2, 0.8, 60)
	mirror.Reflectivity = 0.8
	s.AddObject(geometry.NewSphere(core.NewVec3(-2.3, 0, -7.5), 1, mirror))

	s.AddObject(geometry.NewSphere(core.NewVec3(2.3, 0, -7.5), 1, newPhong(core.NewVec3(0.9, 0.25, 0.2), 0.1, 0.8, 0.5, 20)))

	s.AddObject(geometry.NewDisk(core.NewVec3(0, 2.2, -11), core.NewVec3(0, 0, 1), 1.2,
		newPhong(core.NewVec3(0.95, 0.8, 0.2), 0.2, 0.8, 0.2, 10)))
	s.AddObject(geometry.NewTriangle(
		core.NewVec3(-4.5, -1, -11),
		core.NewVec3(-2.5, -1, -11),
		core.NewVec3(-3.5, 1.2, -11),
		newPhong(core.NewVec3(0.2, 0.75, 0.3), 0.1, 0.9, 0.3, 15),
	))

	s.AddLight(core.NewVec3(-4, 5, 0), core.NewVec3(1, 1, 1))
	s.AddLight(core.NewVec3(4, 6, -3), core.NewVec3(0.8, 0.8, 0.7))

	return s
}
