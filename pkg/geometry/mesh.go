package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/material"
)

// Mesh is an indexed triangle list placed in the world by a translation,
// an XYZ rotation and a uniform scale. Intersection happens in mesh-local
// space; a BVH over the triangles replaces the linear scan but returns the
// same hit, including on distance ties.
type Mesh struct {
	Material material.Material

	vertices []core.Vec3
	uvs      []core.Vec2 // Optional, one per vertex
	indices  []uint32    // Triples; out-of-range triples are skipped

	position core.Vec3
	rotation core.Vec3 // Degrees around X, Y, Z
	scale    float64

	toLocal     core.Mat4 // S^-1 * R^-1 * T^-1
	rotationMat core.Mat4 // Maps local normals to world normals

	triangles []int // Triangle numbers whose indices are all in range
	bvh       *triangleBVH
}

// NewMesh creates a mesh at the identity placement. The mesh takes ownership
// of the slices. uvs may be nil; otherwise it must have one entry per vertex.
func NewMesh(vertices []core.Vec3, indices []uint32, uvs []core.Vec2, mat material.Material) (*Mesh, error) {
	if uvs != nil && len(uvs) != len(vertices) {
		return nil, fmt.Errorf("mesh has %d texture coordinates for %d vertices", len(uvs), len(vertices))
	}

	m := &Mesh{
		Material: mat,
		vertices: vertices,
		uvs:      uvs,
		indices:  indices,
	}
	if err := m.SetTransformation(core.Vec3{}, core.Vec3{}, 1); err != nil {
		return nil, err
	}

	count := uint32(len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		if indices[i] < count && indices[i+1] < count && indices[i+2] < count {
			m.triangles = append(m.triangles, i/3)
		}
	}
	m.bvh = newTriangleBVH(m, m.triangles)

	return m, nil
}

// SetTransformation places the mesh: scale first, then rotate (degrees, X then
// Y then Z), then translate to position.
func (m *Mesh) SetTransformation(position, rotation core.Vec3, scale float64) error {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return fmt.Errorf("mesh scale must be positive, got %g", scale)
	}

	rx, ry, rz := core.Radians(rotation.X), core.Radians(rotation.Y), core.Radians(rotation.Z)
	rotationMat := core.RotationZ(rz).Multiply(core.RotationY(ry)).Multiply(core.RotationX(rx))
	inverseRotation := rotationMat.Transpose()

	m.position = position
	m.rotation = rotation
	m.scale = scale
	m.rotationMat = rotationMat
	m.toLocal = core.Scale(1/scale, 1/scale, 1/scale).
		Multiply(inverseRotation).
		Multiply(core.Translation(-position.X, -position.Y, -position.Z))
	return nil
}

// Placement returns the position, rotation (degrees) and scale of the mesh
func (m *Mesh) Placement() (core.Vec3, core.Vec3, float64) {
	return m.position, m.rotation, m.scale
}

// GetMaterial returns the mesh's material
func (m *Mesh) GetMaterial() *material.Material {
	return &m.Material
}

// TriangleCount returns the number of triangles with valid indices
func (m *Mesh) TriangleCount() int {
	return len(m.triangles)
}

// Intersect tests the ray against every triangle of the mesh
func (m *Mesh) Intersect(ray core.Ray) (Hit, bool) {
	local := core.NewRay(m.toLocal.TransformPoint(ray.Origin), m.toLocal.TransformDirection(ray.Direction))

	found, ok := m.bvh.hit(local)
	if !ok {
		return Hit{}, false
	}
	return m.toWorldHit(found), true
}

// hitLinear is the reference nearest-hit scan the BVH must agree with
func (m *Mesh) hitLinear(local core.Ray) (meshHit, bool) {
	best := meshHit{triangle: -1}
	for _, tri := range m.triangles {
		if h, ok := m.intersectTriangle(tri, local); ok && (best.triangle < 0 || h.Distance < best.hit.Distance) {
			best = meshHit{hit: h, triangle: tri}
		}
	}
	return best, best.triangle >= 0
}

// intersectTriangle intersects triangle number tri in local space
func (m *Mesh) intersectTriangle(tri int, local core.Ray) (Hit, bool) {
	i := tri * 3
	return intersectTriangle(m.vertices[m.indices[i]], m.vertices[m.indices[i+1]], m.vertices[m.indices[i+2]], local)
}

// toWorldHit rotates the normal back to world space and resolves texture coordinates
func (m *Mesh) toWorldHit(found meshHit) Hit {
	hit := found.hit
	hit.Normal = m.rotationMat.TransformDirection(hit.Normal).Normalize()

	if m.uvs != nil {
		i := found.triangle * 3
		a, b, c := m.uvs[m.indices[i]], m.uvs[m.indices[i+1]], m.uvs[m.indices[i+2]]
		w := 1 - hit.U - hit.V
		uv := a.Multiply(w).Add(b.Multiply(hit.U)).Add(c.Multiply(hit.V))
		hit.U = uv.X
		hit.V = 1 - uv.Y
	}

	return hit
}

// triangleBounds returns the local-space bounding box of triangle number tri
func (m *Mesh) triangleBounds(tri int) core.AABB {
	i := tri * 3
	return core.NewAABBFromPoints(m.vertices[m.indices[i]], m.vertices[m.indices[i+1]], m.vertices[m.indices[i+2]])
}

// Release drops the vertex, index and texture coordinate buffers
func (m *Mesh) Release() {
	m.vertices = nil
	m.uvs = nil
	m.indices = nil
	m.triangles = nil
	m.bvh = newTriangleBVH(m, nil)
}
