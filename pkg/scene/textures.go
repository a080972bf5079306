package scene

import (
	"github.com/samber/lo"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/material"
)

// newProceduralTexture fills an RGB texture from a color function. Sizes are
// clamped to at least one texel.
func newProceduralTexture(width, height int, mipmap bool, colorAt func(x, y int) core.Vec3) *material.Texture {
	width, height = max(1, width), max(1, height)

	data := make([]byte, 0, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := colorAt(x, y).Clamp(0, 1)
			data = append(data, toByte(c.X), toByte(c.Y), toByte(c.Z))
		}
	}

	texture, err := material.NewTexture(width, height, 3, data)
	if err != nil {
		// Unreachable: size and buffer length are consistent by construction
		panic(err)
	}
	if mipmap {
		texture.GenerateMipmap()
	}
	return texture
}

func toByte(v float64) uint8 {
	return uint8(lo.Clamp(v*255+0.5, 0, 255))
}

// NewCheckerboardTexture creates a checkerboard of square cells in two colors
func NewCheckerboardTexture(size, cellSize int, color1, color2 core.Vec3, mipmap bool) *material.Texture {
	cellSize = max(1, cellSize)
	return newProceduralTexture(size, size, mipmap, func(x, y int) core.Vec3 {
		if (x/cellSize+y/cellSize)%2 == 0 {
			return color1
		}
		return color2
	})
}

// NewGradientTexture creates a vertical gradient from top to bottom
func NewGradientTexture(width, height int, top, bottom core.Vec3) *material.Texture {
	return newProceduralTexture(width, height, false, func(_, y int) core.Vec3 {
		t := float64(y) / float64(max(1, height-1))
		return top.Multiply(1 - t).Add(bottom.Multiply(t))
	})
}

// NewUVDebugTexture maps u to red and v to green
func NewUVDebugTexture(width, height int) *material.Texture {
	return newProceduralTexture(width, height, false, func(x, y int) core.Vec3 {
		return core.NewVec3(float64(x)/float64(max(1, width-1)), float64(y)/float64(max(1, height-1)), 0.2)
	})
}
