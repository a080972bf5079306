package scene

import (
	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/geometry"
	"github.com/df07/go-raytracy/pkg/material"
)

// addQuad adds the quad a-b-c-d as two triangles
func addQuad(s *Scene, a, b, c, d core.Vec3, mat material.Material) {
	s.AddObject(geometry.NewTriangle(a, b, c, mat))
	s.AddObject(geometry.NewTriangle(a, c, d, mat))
}

// NewCornellScene creates a Cornell box with triangle walls, one point light
// under the ceiling, a mirror sphere and a glass sphere
func NewCornellScene() *Scene {
	s := NewScene()

	white := newPhong(core.NewVec3(0.73, 0.73, 0.73), 0.1, 0.8, 0, 0)
	red := newPhong(core.NewVec3(0.65, 0.05, 0.05), 0.1, 0.8, 0, 0)
	green := newPhong(core.NewVec3(0.12, 0.45, 0.15), 0.1, 0.8, 0, 0)

	// Box spans x and y in [-1.5, 1.5], z in [-7, -4]; the front is open
	const size, near, far = 1.5, -4.0, -7.0
	corner := func(x, y, z float64) core.Vec3 { return core.NewVec3(x*size, y*size, z) }

	// Floor, ceiling and back wall (white)
	addQuad(s, corner(-1, -1, near), corner(1, -1, near), corner(1, -1, far), corner(-1, -1, far), white)
	addQuad(s, corner(-1, 1, near), corner(-1, 1, far), corner(1, 1, far), corner(1, 1, near), white)
	addQuad(s, corner(-1, -1, far), corner(1, -1, far), corner(1, 1, far), corner(-1, 1, far), white)

	// Left wall (red) and right wall (green)
	addQuad(s, corner(-1, -1, near), corner(-1, -1, far), corner(-1, 1, far), corner(-1, 1, near), red)
	addQuad(s, corner(1, -1, near), corner(1, 1, near), corner(1, 1, far), corner(1, -1, far), green)

	mirror := newPhong(core.NewVec3(0.8, 0.8, 0.9), 0, 0.1, 0.9, 100)
	mirror.Reflectivity = 0.9
	s.AddObject(geometry.NewSphere(core.NewVec3(-0.6, -0.9, -6), 0.6, mirror))

	glass := newPhong(core.NewVec3(1, 1, 1), 0, 0, 0.9, 100)
	glass.IOR = 1.5
	s.AddObject(geometry.NewSphere(core.NewVec3(0.7, -1.0, -5), 0.5, glass))

	s.AddLight(core.NewVec3(0, 1.3, -5.5), core.NewVec3(1, 1, 1))

	return s
}
