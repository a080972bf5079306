package geometry

import (
	"math"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat material.Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}
}

// GetMaterial returns the sphere's material
func (s *Sphere) GetMaterial() *material.Material {
	return &s.Material
}

// Intersect tests the ray against the sphere geometrically: project the center
// onto the ray, then step back (or, from inside, forward) along the chord.
func (s *Sphere) Intersect(ray core.Ray) (Hit, bool) {
	dirLength := ray.Direction.Length()
	if dirLength == 0 {
		return Hit{}, false
	}
	direction := ray.Direction.Multiply(1 / dirLength)

	L := s.Center.Subtract(ray.Origin)
	tca := L.Dot(direction)
	lengthSquared := L.LengthSquared()
	radiusSquared := s.Radius * s.Radius
	inside := lengthSquared < radiusSquared

	// Outside and facing away: the whole sphere is behind the origin
	if !inside && tca < 0 {
		return Hit{}, false
	}

	dSquared := math.Max(0, lengthSquared-tca*tca)
	if dSquared > radiusSquared {
		return Hit{}, false
	}

	thc := math.Sqrt(radiusSquared - dSquared)
	distance := tca - thc
	if inside {
		distance = tca + thc
	}
	if distance <= 0 {
		return Hit{}, false
	}

	point := ray.Origin.Add(direction.Multiply(distance))
	outward := point.Subtract(s.Center).Normalize()

	hit := Hit{
		Distance: distance / dirLength,
		U:        0.5 + math.Atan2(outward.Z, outward.X)/math.Pi,
		V:        0.5 - math.Asin(math.Max(-1, math.Min(1, outward.Y)))/math.Pi,
	}
	hit.setFaceNormal(direction, outward)
	return hit, true
}
