package geometry

import (
	"math"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/material"
)

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	A, B, C  core.Vec3
	Material material.Material
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(a, b, c core.Vec3, mat material.Material) *Triangle {
	return &Triangle{A: a, B: b, C: c, Material: mat}
}

// GetMaterial returns the triangle's material
func (t *Triangle) GetMaterial() *material.Material {
	return &t.Material
}

// Intersect tests the ray against the triangle; (u, v) are the barycentric
// weights of B and C
func (t *Triangle) Intersect(ray core.Ray) (Hit, bool) {
	return intersectTriangle(t.A, t.B, t.C, ray)
}

// intersectTriangle implements the Möller-Trumbore algorithm
func intersectTriangle(a, b, c core.Vec3, ray core.Ray) (Hit, bool) {
	ab := b.Subtract(a)
	ac := c.Subtract(a)

	dac := ray.Direction.Cross(ac)
	det := dac.Dot(ab)

	// Ray parallel to the triangle's plane, or a degenerate triangle
	if math.Abs(det) < epsilon {
		return Hit{}, false
	}

	T := ray.Origin.Subtract(a)
	u := dac.Dot(T) / det
	if u < 0 || u > 1 {
		return Hit{}, false
	}

	tab := T.Cross(ab)
	v := tab.Dot(ray.Direction) / det
	if v < 0 || u+v > 1 {
		return Hit{}, false
	}

	distance := tab.Dot(ac) / det
	if distance <= 0 {
		return Hit{}, false
	}

	hit := Hit{Distance: distance, U: u, V: v}
	hit.setFaceNormal(ray.Direction, ab.Cross(ac).Normalize())
	return hit, true
}
