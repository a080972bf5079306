package renderer

import (
	"math"

	"github.com/samber/lo"

	"github.com/df07/go-raytracy/pkg/core"
	"github.com/df07/go-raytracy/pkg/geometry"
	"github.com/df07/go-raytracy/pkg/material"
	"github.com/df07/go-raytracy/pkg/scene"
)

// rayBias offsets secondary ray origins off the surface to avoid self-intersection
const rayBias = 1e-4

// Raytracer casts rays into a scene. It keeps per-worker counters, so each
// worker owns its own Raytracer; the scene itself is shared read-only.
type Raytracer struct {
	scene       *scene.Scene
	maxDepth    int
	sampleAngle float64
	stats       TraceStats
}

// NewRaytracer creates a new raytracer
func NewRaytracer(s *scene.Scene, maxDepth int) *Raytracer {
	return &Raytracer{
		scene:    s,
		maxDepth: maxDepth,
	}
}

// SetSampleAngle sets the angular size of one screen sample for mip selection.
// Zero disables mip filtering.
func (rt *Raytracer) SetSampleAngle(sampleAngle float64) {
	rt.sampleAngle = sampleAngle
}

// Stats returns the counters accumulated since the last ResetStats
func (rt *Raytracer) Stats() TraceStats {
	return rt.stats
}

// ResetStats zeroes the ray counters
func (rt *Raytracer) ResetStats() {
	rt.stats = TraceStats{}
}

// nearestHit returns the closest hit over all objects. A later object only
// replaces the current hit when it is strictly nearer.
func (rt *Raytracer) nearestHit(ray core.Ray) (geometry.Hit, geometry.Object, bool) {
	var closest geometry.Hit
	var closestObject geometry.Object

	for _, object := range rt.scene.Objects {
		if hit, ok := object.Intersect(ray); ok && (closestObject == nil || hit.Distance < closest.Distance) {
			closest = hit
			closestObject = object
		}
	}

	return closest, closestObject, closestObject != nil
}

// occluded reports whether anything lies between origin and a light at
// distance along direction
func (rt *Raytracer) occluded(origin, direction core.Vec3, distance float64) bool {
	rt.stats.ShadowRays++
	ray := core.NewRay(origin, direction)
	for _, object := range rt.scene.Objects {
		if hit, ok := object.Intersect(ray); ok && hit.Distance < distance {
			return true
		}
	}
	return false
}

// Cast returns the color seen along ray. depth counts the reflections and
// refractions that led to this ray; at maxDepth only local shading is done.
func (rt *Raytracer) Cast(ray core.Ray, depth int) core.Vec3 {
	hit, object, ok := rt.nearestHit(ray)
	if !ok {
		return rt.scene.Background
	}

	mat := object.GetMaterial()
	direction := ray.Direction.Normalize()
	point := ray.At(hit.Distance)
	baseColor := rt.materialColor(mat, hit)

	color := rt.shade(mat, baseColor, point, hit.Normal, direction)

	if depth < rt.maxDepth {
		reflectivity := mat.Reflectivity

		if mat.IsRefractive() {
			refracted, kr, ok := refract(direction, hit.Normal, hit.FrontFace, mat.IOR)
			if ok {
				rt.stats.SecondaryRays++
				origin := point.Subtract(hit.Normal.Multiply(rayBias))
				transmitted := rt.Cast(core.NewRay(origin, refracted), depth+1)
				color = color.Add(transmitted.Multiply(1 - kr))
			}
			reflectivity = kr
		}

		if reflectivity > 0 {
			rt.stats.SecondaryRays++
			origin := point.Add(hit.Normal.Multiply(rayBias))
			reflected := rt.Cast(core.NewRay(origin, direction.Reflect(hit.Normal)), depth+1)
			color = color.Add(reflected.Multiply(reflectivity))
		}
	}

	return color.Clamp(0, 1)
}

// shade computes the local Phong term: ambient, plus diffuse and specular for
// every light that is not shadowed
func (rt *Raytracer) shade(mat *material.Material, baseColor, point, normal, direction core.Vec3) core.Vec3 {
	color := baseColor.Multiply(mat.Ka)
	toEye := direction.Negate()

	for _, light := range rt.scene.Lights {
		toLight := light.Position.Subtract(point)
		lightDistance := toLight.Length()
		toLight = toLight.Normalize()

		if rt.occluded(point.Add(toLight.Multiply(rayBias)), toLight, lightDistance) {
			continue
		}

		diffuse := max(toLight.Dot(normal), 0)
		color = color.Add(baseColor.Multiply(diffuse * mat.Kd))

		specular := -toLight.Reflect(normal).Dot(toEye)
		if specular > 0 && mat.Ks > 0 {
			color = color.Add(light.Color.Multiply(math.Pow(specular, mat.Shininess) * mat.Ks))
		}
	}

	return color
}

// materialColor returns the base color, modulated by the texture when the
// material has one. Textures with a mip chain are filtered by hit distance.
func (rt *Raytracer) materialColor(mat *material.Material, hit geometry.Hit) core.Vec3 {
	ref := mat.Texture
	if ref == nil {
		return mat.Color
	}

	texture := rt.scene.Textures[ref.Index]
	u, v := hit.U*ref.Scale, hit.V*ref.Scale

	var texel core.Vec4
	if texture.HasMipmap() && rt.sampleAngle > 0 {
		footprint := texture.Footprint(ref.Scale, rt.sampleAngle)
		texel = texture.SampleFiltered(u, v, hit.Distance, footprint, ref.MipBias)
	} else {
		texel = texture.Sample(u, v)
	}
	return mat.Color.MultiplyVec(texel.XYZ())
}

// refract bends the unit direction through a surface with the given index of
// refraction. normal faces the incoming ray and frontFace tells whether the
// ray enters the material. It returns the refracted direction and the Fresnel
// reflectance; ok is false on total internal reflection, in which case the
// reflectance is 1.
func refract(direction, normal core.Vec3, frontFace bool, ior float64) (core.Vec3, float64, bool) {
	etaI, etaT := 1.0, ior
	if !frontFace {
		etaI, etaT = etaT, etaI
	}
	eta := etaI / etaT

	cosI := lo.Clamp(-direction.Dot(normal), -1, 1)
	sinT := eta * math.Sqrt(max(0, 1-cosI*cosI))
	if sinT >= 1 {
		return core.Vec3{}, 1, false
	}
	cosT := math.Sqrt(max(0, 1-sinT*sinT))

	kr := fresnel(cosI, cosT, etaI, etaT)
	refracted := direction.Multiply(eta).Add(normal.Multiply(eta*cosI - cosT)).Normalize()
	return refracted, kr, true
}

// fresnel returns the unpolarized reflectance at a boundary from medium etaI
// into medium etaT
func fresnel(cosI, cosT, etaI, etaT float64) float64 {
	rs := (etaT*cosI - etaI*cosT) / (etaT*cosI + etaI*cosT)
	rp := (etaI*cosI - etaT*cosT) / (etaI*cosI + etaT*cosT)
	return (rs*rs + rp*rp) / 2
}

// toChannel converts a color channel to an 8-bit value, truncating
func toChannel(c float64) uint8 {
	return uint8(lo.Clamp(c, 0, 1) * 255)
}
