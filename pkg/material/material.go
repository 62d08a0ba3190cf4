// Package material implements the BRDF evaluation, hemisphere-sampled reflection, emission,
// and optional mirror-specular lobe of spec §4.3 (component C3).
//
// The source system dispatches materials virtually; per spec §9's design note we use a single
// concrete variant (AssimpMaterial) behind a small interface instead, since the variant count
// in this system stays small (default, emissive, specular composites are all the same struct
// with different optional fields populated).
package material

import (
	"math"

	"github.com/felsrender/pathtracer/pkg/core"
	"github.com/felsrender/pathtracer/pkg/texture"
)

// SampleResult is the shape returned by both SampleF and SampleSpecular (spec §4.3).
type SampleResult struct {
	Radiance   core.Vec3
	PDF        float64
	Dir        core.Vec3
	IsSpecular bool
}

// Material is the capability set of spec §4.3: BRDF evaluation, sampled
// reflection, emission query, and an optional mirror-like specular lobe.
type Material interface {
	// BRDF evaluates f_r for the ray from->p->to at the given surface point.
	BRDF(from, p, to, normal core.Vec3, bary core.Barycentric, v0, v1, v2 core.TriVertex) core.Vec3

	// SampleF draws a reflected direction and the throughput/pdf for it.
	SampleF(p, normal, inDir core.Vec3, bary core.Barycentric, v0, v1, v2 core.TriVertex, sampler core.Sampler) SampleResult

	// Emission returns this material's outgoing radiance (zero when non-emissive).
	Emission() core.Vec3

	IsEmissive() bool
	HasSpecular() bool

	// SampleSpecular returns the mirror-reflection sample. Only meaningful when HasSpecular.
	SampleSpecular(p, normal, inDir core.Vec3, bary core.Barycentric, v0, v1, v2 core.TriVertex, sampler core.Sampler) SampleResult
}

// AssimpMaterial is the default material variant, named for the glTF/Assimp-style material
// model it captures: a diffuse color (optionally textured), an optional emission, an
// optional mirror-specular tint, and a glossy (Phong) ambient tint.
type AssimpMaterial struct {
	DiffuseRGB      core.Vec3
	DiffuseTexture  *texture.Texture // nil means untextured
	Emissive        *core.Vec3       // nil means non-emissive
	SpecularRGB     *core.Vec3       // nil means no mirror lobe
	AmbientRGB      core.Vec3        // glossy tint
	ParameterFactor float64          // multiplier applied to every BRDF/specular return
	GlossExponent   float64          // Phong exponent; spec uses 15
}

// NewAssimpMaterial constructs a purely diffuse material; use the With* setters to add
// emission or a specular lobe.
func NewAssimpMaterial(diffuse core.Vec3, parameterFactor float64) *AssimpMaterial {
	return &AssimpMaterial{
		DiffuseRGB:      diffuse,
		ParameterFactor: parameterFactor,
		GlossExponent:   15,
	}
}

func (m *AssimpMaterial) WithTexture(t *texture.Texture) *AssimpMaterial {
	m.DiffuseTexture = t
	return m
}

func (m *AssimpMaterial) WithEmission(e core.Vec3) *AssimpMaterial {
	m.Emissive = &e
	return m
}

func (m *AssimpMaterial) WithSpecular(rgb core.Vec3) *AssimpMaterial {
	m.SpecularRGB = &rgb
	return m
}

func (m *AssimpMaterial) WithAmbient(rgb core.Vec3) *AssimpMaterial {
	m.AmbientRGB = rgb
	return m
}

// BRDF implements spec §4.3's default-variant formula exactly: a textured (or flat) diffuse
// term plus a Phong glossy term raised to GlossExponent, both scaled by ParameterFactor.
func (m *AssimpMaterial) BRDF(from, p, to, normal core.Vec3, bary core.Barycentric, v0, v1, v2 core.TriVertex) core.Vec3 {
	kd := core.Vec3{X: 1, Y: 1, Z: 1}
	if m.DiffuseTexture != nil {
		uv := bary.InterpolateUV(v0.UV, v1.UV, v2.UV)
		kd = m.DiffuseTexture.Sample(uv)
	}

	incident := from.Subtract(p)
	reflected := incident.Reflect(normal)
	outgoing := to.Subtract(p)

	g := 0.0
	rl, ol := reflected.Length(), outgoing.Length()
	if rl > 1e-12 && ol > 1e-12 {
		g = math.Max(0, outgoing.Dot(reflected)/(rl*ol))
	}

	glossy := m.AmbientRGB.Multiply(math.Pow(g, m.GlossExponent))
	diffuse := m.DiffuseRGB.MultiplyVec(kd)
	return glossy.Add(diffuse).Multiply(m.ParameterFactor)
}

// SampleF draws a direction uniformly over the normal-facing hemisphere and evaluates the
// BRDF for it, per spec §4.3.
func (m *AssimpMaterial) SampleF(p, normal, inDir core.Vec3, bary core.Barycentric, v0, v1, v2 core.TriVertex, sampler core.Sampler) SampleResult {
	dir := sampler.SampleDirectionHemisphere(normal)
	radiance := m.BRDF(p.Add(inDir), p, p.Add(dir), normal, bary, v0, v1, v2)
	return SampleResult{
		Radiance: radiance,
		PDF:      core.HemispherePDF,
		Dir:      dir,
	}
}

func (m *AssimpMaterial) Emission() core.Vec3 {
	if m.Emissive == nil {
		return core.Vec3{}
	}
	return *m.Emissive
}

func (m *AssimpMaterial) IsEmissive() bool  { return m.Emissive != nil }
func (m *AssimpMaterial) HasSpecular() bool { return m.SpecularRGB != nil }

// SampleSpecular returns the mirror-reflection direction and radiance of spec §4.3. Callers
// must check HasSpecular first; if there is no specular lobe this returns a zero-weight
// sample rather than panicking.
func (m *AssimpMaterial) SampleSpecular(p, normal, inDir core.Vec3, bary core.Barycentric, v0, v1, v2 core.TriVertex, sampler core.Sampler) SampleResult {
	if m.SpecularRGB == nil {
		return SampleResult{PDF: 1, IsSpecular: true}
	}
	dir := normal.Multiply(2 * normal.Dot(inDir.Negate())).Add(inDir)
	return SampleResult{
		Radiance:   m.SpecularRGB.Multiply(m.ParameterFactor),
		PDF:        1,
		Dir:        dir,
		IsSpecular: true,
	}
}
