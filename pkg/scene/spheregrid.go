package scene

import (
	"math"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/geometry"
)

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0

	// OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.NewVec3(r, g, blue).Clamp(0, 1)
}

// NewSphereGridScene creates a gridSize x gridSize grid of colored, partly
// reflective spheres on a floor plane
func NewSphereGridScene(gridSize int) *Scene {
	gridSize = max(2, gridSize)

	s := NewScene()
	s.Background = core.NewVec3(0.05, 0.05, 0.08)

	floorY := -1.5
	s.AddObject(geometry.NewPlane(core.NewVec3(0, floorY, 0), core.NewVec3(0, 1, 0),
		newPhong(core.NewVec3(0.5, 0.5, 0.5), 0.1, 0.7, 0, 0)))

	// The grid covers x in [-3, 3] and z in [-5, -14]
	const width, nearZ, depth = 6.0, -5.0, 9.0
	spacingX := width / float64(gridSize-1)
	spacingZ := depth / float64(gridSize-1)
	radius := math.Max(0.05, math.Min(0.5, 0.35*math.Min(spacingX, spacingZ)))

	baseLightness := 0.65
	minChroma := 0.05
	maxChroma := 0.25

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			position := core.NewVec3(
				float64(i)*spacingX-width/2,
				floorY+radius,
				nearZ-float64(j)*spacingZ,
			)

			// Hue varies across X, chroma across depth
			hue := (float64(i) / float64(gridSize-1)) * 360.0
			chroma := minChroma + (float64(j)/float64(gridSize-1))*(maxChroma-minChroma)
			lightness := baseLightness + 0.1*math.Sin(float64(i+j)*0.5)

			mat := newPhong(oklchToRGB(lightness, chroma, hue), 0.1, 0.7, 0.6, 40)
			mat.Reflectivity = 0.1 + 0.1*float64((i+j)%3)
			s.AddObject(geometry.NewSphere(position, radius, mat))
		}
	}

	s.AddLight(core.NewVec3(5, 8, 2), core.NewVec3(1, 0.95, 0.9))
	s.AddLight(core.NewVec3(-6, 4, -4), core.NewVec3(0.4, 0.4, 0.5))

	return s
}
