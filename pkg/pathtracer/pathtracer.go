// Package pathtracer implements the radiance estimator of spec §4.8 (component C7): direct
// illumination from area lights and the sky, hemisphere-sampled indirect bounces,
// Russian-roulette termination, and bounded recursion.
package pathtracer

import (
	"math"

	"github.com/felsrender/pathtracer/pkg/core"
	"github.com/felsrender/pathtracer/pkg/kdtree"
	"github.com/felsrender/pathtracer/pkg/scene"
)

// RayCaster is the closest-hit query the path tracer drives; *kdtree.KDTree satisfies it.
type RayCaster interface {
	Trace(origin, direction core.Vec3) (kdtree.HitRecord, bool)
}

// Config carries the path-tracer-relevant keys of spec §6's configuration table.
type Config struct {
	Recursion      int     // initial path depth budget
	MaxReflections int     // indirect-diffuse branch count
	RouletteFactor float64 // scales max(beta) in the RR survival probability
}

// PathTracer evaluates radiance along camera rays by driving a RayCaster and sampling
// materials and area lights.
type PathTracer struct {
	scene     *scene.Scene
	rayCaster RayCaster
	cfg       Config
}

func New(sc *scene.Scene, rc RayCaster, cfg Config) *PathTracer {
	return &PathTracer{scene: sc, rayCaster: rc, cfg: cfg}
}

// shadowEpsilon is the tolerance used when comparing a shadow ray's hit distance to the
// distance to the sampled light point. A shadow ray that is unoccluded will, in a closed
// scene, re-hit the light's own triangle at t == d; only a hit strictly nearer than that
// (beyond floating-point slack) counts as occlusion.
const shadowEpsilon = 32 * 1.1920929e-7

// Trace is the entry point: estimate radiance along one camera ray with a fresh path state.
func (pt *PathTracer) Trace(origin, direction core.Vec3, sampler core.Sampler) core.Vec3 {
	return pt.traceRecursive(origin, direction, true, core.Vec3{X: 1, Y: 1, Z: 1}, pt.cfg.Recursion, sampler)
}

func (pt *PathTracer) traceRecursive(origin, dir core.Vec3, includeEmission bool, beta core.Vec3, depth int, sampler core.Sampler) core.Vec3 {
	// 1. recursion budget
	if depth < 0 {
		return core.Vec3{}
	}

	// 2. Russian roulette
	p := math.Min(1, pt.cfg.RouletteFactor*beta.MaxComponent())
	if sampler.Sample() > p {
		return core.Vec3{}
	}
	if p > 0 {
		beta = beta.Divide(p)
	}

	// 3. closest hit
	hit, ok := pt.rayCaster.Trace(origin, dir)
	if !ok {
		return beta.MultiplyVec(pt.scene.Sky.Sample(dir))
	}

	m := pt.scene.Material(hit.Triangle)
	n := hit.GeometricNormal
	x := hit.Position
	a, b, c := pt.scene.Vertices(hit.Triangle)
	tv0 := core.TriVertex{Position: a.Position, UV: a.UV}
	tv1 := core.TriVertex{Position: b.Position, UV: b.UV}
	tv2 := core.TriVertex{Position: c.Position, UV: c.UV}

	var l core.Vec3

	// 5. emission term
	if includeEmission {
		l = l.Add(m.Emission().MultiplyVec(beta))
	}

	// 6. direct illumination from area lights
	for _, light := range pt.scene.AreaLights {
		y, le := light.Sample(x, sampler)

		toLight := y.Subtract(x)
		d := toLight.Length()
		if d < 1e-12 {
			continue
		}
		wi := toLight.Multiply(1.0 / d)

		if shadow, hasShadow := pt.rayCaster.Trace(x, wi); hasShadow && shadow.T < d-shadowEpsilon {
			continue // occluded
		}

		normalN := n.Normalize()
		cosSurface := math.Abs(dir.Dot(normalN))
		cosLight := math.Abs(wi.Dot(normalN))
		g := cosLight * cosSurface / (d * d * math.Pi * math.Pi)

		brdf := m.BRDF(y, x, origin, n, hit.Barycentric, tv0, tv1, tv2)
		l = l.Add(brdf.MultiplyVec(le).MultiplyVec(beta).Multiply(g * light.Area()))
	}

	// 7. sky direct sample
	ws := sampler.SampleDirectionHemisphere(n)
	if _, hasShadow := pt.rayCaster.Trace(x, ws); !hasShadow {
		brdf := m.BRDF(x.Add(ws), x, origin, n, hit.Barycentric, tv0, tv1, tv2)
		l = l.Add(beta.MultiplyVec(pt.scene.Sky.Sample(ws)).MultiplyVec(brdf))
	}

	// 8. indirect diffuse
	if pt.cfg.MaxReflections > 0 {
		for i := 0; i < pt.cfg.MaxReflections; i++ {
			r := m.SampleF(x, n, dir, hit.Barycentric, tv0, tv1, tv2, sampler)
			if r.PDF <= 0 {
				continue
			}
			betaPrime := r.Radiance.MultiplyVec(beta).Divide(r.PDF)
			bounce := pt.traceRecursive(x, r.Dir, false, betaPrime, depth-1, sampler)
			l = l.Add(bounce.Divide(float64(pt.cfg.MaxReflections)))
		}
	}

	// 9. specular branch
	if m.HasSpecular() {
		rs := m.SampleSpecular(x, n, dir, hit.Barycentric, tv0, tv1, tv2, sampler)
		if rs.PDF > 0 {
			betaPrime := rs.Radiance.MultiplyVec(beta).Divide(rs.PDF)
			l = l.Add(pt.traceRecursive(x, rs.Dir, true, betaPrime, depth-1, sampler))
		}
	}

	return l
}
