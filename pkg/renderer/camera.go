package renderer

import (
	"math"

	"github.com/df07/go-raytracy/pkg/core"
)

// Camera is a pinhole camera at the origin looking down -z. It maps sample
// coordinates on a virtual screen to primary rays.
type Camera struct {
	width, height  int
	scaleX, scaleY float64 // Screen half extents at unit distance
	sampleAngle    float64
}

// NewCamera creates a camera for a virtual screen of width x height samples
// and a field of view in degrees. The longer screen dimension is stretched by
// the aspect ratio so pixels stay square.
func NewCamera(width, height int, fieldOfView float64) *Camera {
	width, height = max(1, width), max(1, height)
	tanHalf := math.Tan(core.Radians(fieldOfView) / 2)

	scaleX, scaleY := tanHalf, tanHalf
	if width > height {
		scaleX *= float64(width) / float64(height)
	} else {
		scaleY *= float64(height) / float64(width)
	}

	return &Camera{
		width:       width,
		height:      height,
		scaleX:      scaleX,
		scaleY:      scaleY,
		sampleAngle: 2 * tanHalf / float64(min(width, height)),
	}
}

// GetRay returns the normalized primary ray through sample (x, y). (0, 0) is
// the top-left corner of the screen and (width, height) the bottom-right.
func (c *Camera) GetRay(x, y float64) core.Ray {
	screenX := 2*x/float64(c.width) - 1
	screenY := 1 - 2*y/float64(c.height)

	direction := core.NewVec3(screenX*c.scaleX, screenY*c.scaleY, -1).Normalize()
	return core.NewRay(core.Vec3{}, direction)
}

// SampleAngle returns the approximate angle in radians covered by one screen
// sample, used to pick texture mip levels
func (c *Camera) SampleAngle() float64 {
	return c.sampleAngle
}
