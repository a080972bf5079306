package material

import (
	"fmt"
	"math"

	"github.com/df07/go-raytracy/pkg/core"
)

// mipLevel locates one level of the chain inside Texture.data
type mipLevel struct {
	offset int
	width  int
	height int
}

// Texture owns interleaved 8-bit pixel data (RGB or RGBA, row-major, top row
// first) and an optional chain of box-filtered mip levels stored contiguously
// after level 0.
type Texture struct {
	width         int
	height        int
	bytesPerPixel int
	data          []byte
	levels        []mipLevel
}

// NewTexture creates a texture of the given size. If data is nil a zeroed buffer
// is allocated, otherwise the texture takes ownership of data and the caller
// must not use it afterwards.
func NewTexture(width, height, bytesPerPixel int, data []byte) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid texture size %dx%d", width, height)
	}
	if bytesPerPixel != 3 && bytesPerPixel != 4 {
		return nil, fmt.Errorf("unsupported bytes per pixel %d (want 3 or 4)", bytesPerPixel)
	}

	size := width * height * bytesPerPixel
	if data == nil {
		data = make([]byte, size)
	} else if len(data) != size {
		return nil, fmt.Errorf("texture data has %d bytes, expected %d", len(data), size)
	}

	return &Texture{
		width:         width,
		height:        height,
		bytesPerPixel: bytesPerPixel,
		data:          data,
		levels:        []mipLevel{{offset: 0, width: width, height: height}},
	}, nil
}

// Width returns the width of level 0
func (t *Texture) Width() int { return t.width }

// Height returns the height of level 0
func (t *Texture) Height() int { return t.height }

// BytesPerPixel returns 3 for RGB textures and 4 for RGBA textures
func (t *Texture) BytesPerPixel() int { return t.bytesPerPixel }

// Levels returns the number of mip levels, including level 0
func (t *Texture) Levels() int { return len(t.levels) }

// HasMipmap reports whether a mip chain has been generated
func (t *Texture) HasMipmap() bool { return len(t.levels) > 1 }

// LevelSize returns the dimensions of a mip level
func (t *Texture) LevelSize(level int) (int, int) {
	l := t.levels[level]
	return l.width, l.height
}

// LevelData returns the raw bytes of a mip level. The slice aliases the
// texture's storage.
func (t *Texture) LevelData(level int) []byte {
	l := t.levels[level]
	return t.data[l.offset : l.offset+l.width*l.height*t.bytesPerPixel]
}

// SetPixel writes a level 0 pixel. Alpha is ignored for RGB textures.
func (t *Texture) SetPixel(x, y int, r, g, b, a uint8) {
	index := (y*t.width + x) * t.bytesPerPixel
	t.data[index] = r
	t.data[index+1] = g
	t.data[index+2] = b
	if t.bytesPerPixel == 4 {
		t.data[index+3] = a
	}
}

// GenerateMipmap builds the mip chain from level 0. Each level is the 2x2 box
// average of the previous one; generation stops once either dimension of the
// last level is below 2. Calling it again rebuilds the chain.
func (t *Texture) GenerateMipmap() {
	bpp := t.bytesPerPixel
	base := t.width * t.height * bpp

	total := base
	for w, h := t.width, t.height; w >= 2 && h >= 2; {
		w, h = w/2, h/2
		total += w * h * bpp
	}

	data := make([]byte, total)
	copy(data, t.data[:base])
	levels := []mipLevel{{offset: 0, width: t.width, height: t.height}}

	prev := levels[0]
	offset := base
	for prev.width >= 2 && prev.height >= 2 {
		next := mipLevel{offset: offset, width: prev.width / 2, height: prev.height / 2}
		prevRow := prev.width * bpp

		for y := 0; y < next.height; y++ {
			for x := 0; x < next.width; x++ {
				src := prev.offset + (2*y)*prevRow + (2*x)*bpp
				dst := next.offset + (y*next.width+x)*bpp
				for c := 0; c < bpp; c++ {
					sum := int(data[src+c]) + int(data[src+bpp+c]) +
						int(data[src+prevRow+c]) + int(data[src+prevRow+bpp+c])
					data[dst+c] = uint8((sum + 2) / 4)
				}
			}
		}

		levels = append(levels, next)
		offset += next.width * next.height * bpp
		prev = next
	}

	t.data = data
	t.levels = levels
}

// Pixel returns the normalized RGBA color at integer coordinates of a level.
// RGB textures report alpha 1.
func (t *Texture) Pixel(x, y, level int) core.Vec4 {
	l := t.levels[level]
	index := l.offset + (y*l.width+x)*t.bytesPerPixel
	color := core.Vec4{
		X: float64(t.data[index]) / 255,
		Y: float64(t.data[index+1]) / 255,
		Z: float64(t.data[index+2]) / 255,
		W: 1,
	}
	if t.bytesPerPixel == 4 {
		color.W = float64(t.data[index+3]) / 255
	}
	return color
}

// wrapCoordinate maps a texture coordinate onto [0, size) with repeat addressing
func wrapCoordinate(value float64, size int) int {
	value -= math.Trunc(value)
	if value < 0 {
		value += 1
	}
	i := int(value * float64(size))
	if i >= size {
		i = size - 1
	}
	return i
}

// Sample returns the nearest level 0 texel at wrapped (u, v)
func (t *Texture) Sample(u, v float64) core.Vec4 {
	return t.SampleLevel(u, v, 0)
}

// SampleLevel returns the nearest texel of a mip level at wrapped (u, v)
func (t *Texture) SampleLevel(u, v float64, level int) core.Vec4 {
	l := t.levels[level]
	return t.Pixel(wrapCoordinate(u, l.width), wrapCoordinate(v, l.height), level)
}

// Footprint returns the hit distance at which one level 0 texel covers one
// screen sample. scale is the material's texture scale and sampleAngle the
// angular size of one screen sample in radians.
func (t *Texture) Footprint(scale, sampleAngle float64) float64 {
	if scale == 0 || sampleAngle <= 0 {
		return 0
	}
	texelSize := 1 / (math.Abs(scale) * float64(max(t.width, t.height)))
	return texelSize / sampleAngle
}

// SampleFiltered samples the mip chain for a surface seen at distance. The
// continuous level is log2(distance/footprint)+bias; the two bracketing levels
// are blended by how far distance lies between their threshold distances
// footprint*2^(k-bias) and footprint*2^(k+1-bias).
func (t *Texture) SampleFiltered(u, v, distance, footprint, bias float64) core.Vec4 {
	if !t.HasMipmap() || footprint <= 0 || distance <= 0 {
		return t.SampleLevel(u, v, 0)
	}

	level := math.Log2(distance/footprint) + bias
	if level <= 0 {
		return t.SampleLevel(u, v, 0)
	}
	last := len(t.levels) - 1
	if level >= float64(last) {
		return t.SampleLevel(u, v, last)
	}

	k := int(math.Floor(level))
	near := footprint * math.Exp2(float64(k)-bias)
	far := footprint * math.Exp2(float64(k+1)-bias)
	weight := (distance - near) / (far - near)
	weight = max(0, min(1, weight))

	return t.SampleLevel(u, v, k).Lerp(t.SampleLevel(u, v, k+1), weight)
}

// Release drops the pixel storage. The texture must not be sampled afterwards.
func (t *Texture) Release() {
	t.data = nil
	t.levels = nil
}
