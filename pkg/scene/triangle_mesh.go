package scene

import (
	"math"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/geometry"
	"github.com/df07/go-raytracy/pkg/loaders"
	"github.com/df07/go-raytracy/pkg/material"
)

// NewTorusMeshData tessellates a torus around the Y axis. The seam vertices
// are duplicated so texture coordinates run 0..1 in both directions.
func NewTorusMeshData(majorRadius, minorRadius float64, segments, rings int) *loaders.MeshData {
	segments, rings = max(3, segments), max(3, rings)
	data := &loaders.MeshData{}

	for i := 0; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		for j := 0; j <= rings; j++ {
			phi := 2 * math.Pi * float64(j) / float64(rings)
			ring := majorRadius + minorRadius*math.Cos(phi)
			data.Vertices = append(data.Vertices, core.NewVec3(
				ring*math.Cos(theta),
				minorRadius*math.Sin(phi),
				ring*math.Sin(theta),
			))
			data.UVs = append(data.UVs, core.NewVec2(float64(i)/float64(segments), float64(j)/float64(rings)))
		}
	}

	stride := uint32(rings + 1)
	for i := uint32(0); i < uint32(segments); i++ {
		for j := uint32(0); j < uint32(rings); j++ {
			a := i*stride + j
			b := (i+1)*stride + j
			data.Indices = append(data.Indices, a, b, b+1, a, b+1, a+1)
		}
	}

	return data
}

// mustMesh builds a mesh from generated data whose shape is known to be valid
func mustMesh(data *loaders.MeshData, mat material.Material, position, rotation core.Vec3, scale float64) *geometry.Mesh {
	mesh, err := geometry.NewMesh(data.Vertices, data.Indices, data.UVs, mat)
	if err == nil {
		err = mesh.SetTransformation(position, rotation, scale)
	}
	if err != nil {
		panic(err)
	}
	return mesh
}

// NewTriangleMeshScene shows transformed, textured triangle meshes: a tilted
// checkered torus and a textured quad behind it
func NewTriangleMeshScene() *Scene {
	s := NewScene()
	s.Background = core.NewVec3(0.6, 0.7, 0.9)

	checker := s.AddTexture(NewCheckerboardTexture(128, 16,
		core.NewVec3(0.95, 0.95, 0.95),
		core.NewVec3(0.8, 0.3, 0.1),
		true,
	))
	uvDebug := s.AddTexture(NewUVDebugTexture(64, 64))

	s.AddObject(geometry.NewPlane(core.NewVec3(0, -1.5, 0), core.NewVec3(0, 1, 0),
		newPhong(core.NewVec3(0.6, 0.6, 0.6), 0.1, 0.8, 0, 0)))

	torus := newTextured(newPhong(core.NewVec3(1, 1, 1), 0.1, 0.8, 0.6, 40), checker, 4)
	s.AddObject(mustMesh(NewTorusMeshData(1, 0.35, 48, 24), torus,
		core.NewVec3(0, 0, -5), core.NewVec3(60, 0, 20), 1))

	quad := &loaders.MeshData{
		Vertices: []core.Vec3{
			core.NewVec3(-1, -1, 0), core.NewVec3(1, -1, 0),
			core.NewVec3(1, 1, 0), core.NewVec3(-1, 1, 0),
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
		UVs: []core.Vec2{
			core.NewVec2(0, 0), core.NewVec2(1, 0),
			core.NewVec2(1, 1), core.NewVec2(0, 1),
		},
	}
	s.AddObject(mustMesh(quad, newTextured(newPhong(core.NewVec3(1, 1, 1), 0.3, 0.7, 0, 0), uvDebug, 1),
		core.NewVec3(2.5, 0.5, -9), core.NewVec3(0, -30, 0), 1.5))

	s.AddLight(core.NewVec3(-3, 5, 0), core.NewVec3(1, 1, 1))
	s.AddLight(core.NewVec3(4, 3, -2), core.NewVec3(0.6, 0.6, 0.6))

	return s
}

// NewTextureScene demonstrates texture mapping and mip filtering: a long
// checkered floor that recedes into the distance, a gradient sphere and a
// UV-mapped disk
func NewTextureScene() *Scene {
	s := NewScene()
	s.Background = core.NewVec3(0.1, 0.1, 0.15)

	checker := s.AddTexture(NewCheckerboardTexture(512, 16,
		core.NewVec3(0.9, 0.9, 0.9),
		core.NewVec3(0.2, 0.2, 0.8),
		true,
	))
	gradient := s.AddTexture(NewGradientTexture(64, 64,
		core.NewVec3(1.0, 0.2, 0.2),
		core.NewVec3(0.2, 1.0, 0.2),
	))
	uvDebug := s.AddTexture(NewUVDebugTexture(64, 64))

	s.AddObject(geometry.NewPlane(core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0),
		newTextured(newPhong(core.NewVec3(1, 1, 1), 0.2, 0.8, 0, 0), checker, 0.05)))
	s.AddObject(geometry.NewSphere(core.NewVec3(-1.5, 0, -6), 1,
		newTextured(newPhong(core.NewVec3(1, 1, 1), 0.2, 0.8, 0.3, 20), gradient, 1)))
	s.AddObject(geometry.NewDisk(core.NewVec3(1.5, 0.2, -6), core.NewVec3(-0.3, 0.2, 1), 1,
		newTextured(newPhong(core.NewVec3(1, 1, 1), 0.3, 0.7, 0, 0), uvDebug, 0.5)))

	s.AddLight(core.NewVec3(0, 6, 0), core.NewVec3(1, 1, 1))

	return s
}
