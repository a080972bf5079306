package geometry

import (
	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/material"
)

// epsilon guards determinants and denominators against parallel rays
const epsilon = 1e-12

// Hit describes the nearest point where a ray meets a primitive
type Hit struct {
	Distance  float64   // Parameter t along the ray, always > 0
	Normal    core.Vec3 // Unit normal facing against the ray direction
	U, V      float64   // Surface coordinates for texturing
	FrontFace bool      // Whether the geometric normal already faced the ray
}

// setFaceNormal orients outwardNormal against the ray and records which side was hit
func (h *Hit) setFaceNormal(direction, outwardNormal core.Vec3) {
	h.FrontFace = direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// Object is a renderable primitive: something a ray can hit, with a material
type Object interface {
	Intersect(ray core.Ray) (Hit, bool)
	GetMaterial() *material.Material
}
