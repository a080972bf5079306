package material

import (
	"fmt"

	"github.com/df07/go-raytracy/pkg/core"
)

// TextureRef points a material at one of the scene's textures
type TextureRef struct {
	Index   int     // Index into Scene.Textures
	Scale   float64 // Multiplier applied to (u, v) before sampling
	MipBias float64 // Added to the computed mip level
}

// Material describes the Phong-style surface response of an object
type Material struct {
	Ka, Kd, Ks   float64 // Ambient, diffuse and specular coefficients
	Shininess    float64 // Specular exponent
	Color        core.Vec3
	Texture      *TextureRef // nil when untextured
	Reflectivity float64     // Mirror reflection weight in [0,1]
	IOR          float64     // Index of refraction; <= 1 means opaque
}

// NewMaterial returns a material with the loader defaults: fully ambient black
func NewMaterial() Material {
	return Material{Ka: 1}
}

// NewTextureRef returns a reference to texture index with scale 1 and no bias
func NewTextureRef(index int) *TextureRef {
	return &TextureRef{Index: index, Scale: 1}
}

// IsRefractive reports whether rays are transmitted through the surface
func (m *Material) IsRefractive() bool {
	return m.IOR > 1
}

// Validate rejects materials the caster cannot handle. An IOR strictly between
// 0 and 1 is ambiguous (neither opaque nor a denser medium) and is refused here
// rather than at trace time.
func (m *Material) Validate() error {
	if m.Ka < 0 || m.Kd < 0 || m.Ks < 0 {
		return fmt.Errorf("negative lighting coefficient (ka=%g kd=%g ks=%g)", m.Ka, m.Kd, m.Ks)
	}
	if m.Shininess < 0 {
		return fmt.Errorf("negative specular exponent %g", m.Shininess)
	}
	if m.Reflectivity < 0 || m.Reflectivity > 1 {
		return fmt.Errorf("reflectivity %g outside [0,1]", m.Reflectivity)
	}
	if m.IOR > 0 && m.IOR < 1 {
		return fmt.Errorf("index of refraction %g between 0 and 1", m.IOR)
	}
	if m.Texture != nil {
		if m.Texture.Index < 0 {
			return fmt.Errorf("negative texture index %d", m.Texture.Index)
		}
		if m.Texture.Scale == 0 {
			return fmt.Errorf("texture scale must be non-zero")
		}
	}
	return nil
}
