package renderer

import (
	"image"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/scene"
)

// Frame is the output of one render, shared by every tile. Tiles write
// disjoint pixel ranges of Buffer, so no locking is needed.
type Frame struct {
	Buffer        []byte // Width*Height*4 bytes, B,G,R,A
	Width, Height int
	Supersampling int     // Samples per pixel along each axis
	Camera        *Camera // Covers the virtual screen Width*N x Height*N
}

// NewFrame creates a frame over buffer with a camera for the supersampled screen
func NewFrame(buffer []byte, width, height, supersampling int, fieldOfView float64) *Frame {
	return &Frame{
		Buffer:        buffer,
		Width:         width,
		Height:        height,
		Supersampling: supersampling,
		Camera:        NewCamera(width*supersampling, height*supersampling, fieldOfView),
	}
}

// TileRenderer renders rectangular regions of a frame
type TileRenderer struct {
	raytracer *Raytracer
}

// NewTileRenderer creates a new tile renderer with the given scene
func NewTileRenderer(s *scene.Scene, maxDepth int) *TileRenderer {
	return &TileRenderer{
		raytracer: NewRaytracer(s, maxDepth),
	}
}

// RenderTileBounds renders pixels within the specified bounds into the frame
// and returns the rays it cast
func (tr *TileRenderer) RenderTileBounds(frame *Frame, bounds image.Rectangle) TraceStats {
	tr.raytracer.ResetStats()
	tr.raytracer.SetSampleAngle(frame.Camera.SampleAngle())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			color := tr.samplePixel(frame, x, y)

			i := (y*frame.Width + x) * 4
			frame.Buffer[i] = toChannel(color.Z)
			frame.Buffer[i+1] = toChannel(color.Y)
			frame.Buffer[i+2] = toChannel(color.X)
			frame.Buffer[i+3] = 255
		}
	}

	stats := tr.raytracer.Stats()
	stats.Pixels = bounds.Dx() * bounds.Dy()
	return stats
}

// samplePixel box-averages the N x N grid of primary rays covering pixel (x, y)
func (tr *TileRenderer) samplePixel(frame *Frame, x, y int) core.Vec3 {
	n := frame.Supersampling
	var sum core.Vec3
	for sy := 0; sy < n; sy++ {
		for sx := 0; sx < n; sx++ {
			ray := frame.Camera.GetRay(float64(x*n+sx), float64(y*n+sy))
			tr.raytracer.stats.PrimaryRays++
			sum = sum.Add(tr.raytracer.Cast(ray, 0))
		}
	}
	return sum.Multiply(1 / float64(n*n))
}
