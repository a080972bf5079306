package geometry

import (
	"math"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/material"
)

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point    core.Vec3 // A point on the plane, also the origin of its (u, v) space
	Normal   core.Vec3 // Unit normal
	Material material.Material
}

// NewPlane creates a new plane
func NewPlane(point, normal core.Vec3, mat material.Material) *Plane {
	return &Plane{
		Point:    point,
		Normal:   normal.Normalize(),
		Material: mat,
	}
}

// GetMaterial returns the plane's material
func (p *Plane) GetMaterial() *material.Material {
	return &p.Material
}

// Intersect tests if a ray intersects with the plane
func (p *Plane) Intersect(ray core.Ray) (Hit, bool) {
	denominator := ray.Direction.Dot(p.Normal)
	if math.Abs(denominator) < epsilon {
		return Hit{}, false
	}

	distance := p.Point.Subtract(ray.Origin).Dot(p.Normal) / denominator
	if distance <= 0 {
		return Hit{}, false
	}

	hit := Hit{Distance: distance}
	hit.setFaceNormal(ray.Direction, p.Normal)
	hit.U, hit.V = planeUV(p.Point, ray.At(distance), hit.Normal)
	return hit, true
}

// planeUV maps point p on the plane through p0 with normal n to texture space.
// The basis is built from the plane equation (special-cased when n.Y == 0) and
// each coordinate comes from the law of cosines on |L|, |L-U| and |L-V|
// rather than a direct projection; texture placement depends on this form.
func planeUV(p0, p, n core.Vec3) (float64, float64) {
	var U, V core.Vec3
	if n.Y == 0 {
		V = core.NewVec3(0, -1, 0)
		U = n.Cross(V)
	} else {
		U = core.NewVec3(p0.X+1, (p0.Y*n.Y-n.X)/n.Y, p0.Z).Subtract(p0)
		V = core.NewVec3(p0.X, (p0.Y*n.Y-n.Z)/n.Y, p0.Z+1).Subtract(p0)
	}
	U = U.Normalize()
	V = V.Normalize()

	L := p.Subtract(p0)
	l := L.Length()
	t := L.Subtract(U).Length()
	m := L.Subtract(V).Length()
	return (l*l - t*t + 1) / 2, (l*l - m*m + 1) / 2
}
