package geometry

import (
	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/material"
)

// Disk is a plane clipped to a circle of Radius around Point
type Disk struct {
	Plane
	Radius float64
}

// NewDisk creates a new disk
func NewDisk(center, normal core.Vec3, radius float64, mat material.Material) *Disk {
	return &Disk{
		Plane:  *NewPlane(center, normal, mat),
		Radius: radius,
	}
}

// Intersect hits the underlying plane and rejects points outside the radius
func (d *Disk) Intersect(ray core.Ray) (Hit, bool) {
	hit, ok := d.Plane.Intersect(ray)
	if !ok {
		return Hit{}, false
	}

	if d.Point.Subtract(ray.At(hit.Distance)).Length() > d.Radius {
		return Hit{}, false
	}

	return hit, true
}
