// Package lights implements the emissive-triangle area light of spec §4.4 (component C4).
package lights

import (
	"github.com/felsrender/pathtracer/pkg/core"
	"github.com/felsrender/pathtracer/pkg/material"
)

// AreaLight is an emissive triangle, built from its three world-space corners and the
// material that supplies its emitted radiance.
type AreaLight struct {
	P1, P2, P3 core.Vec3
	Material   material.Material
	area       float64
}

// NewAreaLight precomputes the triangle's area: |cross(p2-p1, p3-p1)| / 2.
func NewAreaLight(p1, p2, p3 core.Vec3, mat material.Material) *AreaLight {
	a := p2.Subtract(p1).Cross(p3.Subtract(p1)).Length() / 2.0
	return &AreaLight{P1: p1, P2: p2, P3: p3, Material: mat, area: a}
}

func (l *AreaLight) Area() float64 { return l.area }

// Sample draws a point uniformly on the light's triangle and returns it together with the
// material's emission radiance. target is accepted for interface symmetry with other light
// types but a uniformly-sampled triangle light does not need it.
func (l *AreaLight) Sample(target core.Vec3, sampler core.Sampler) (point, emission core.Vec3) {
	a, b := sampler.SamplePair()
	if a+b > 1 {
		a, b = 1-a, 1-b
	}
	point = l.P1.Add(l.P2.Subtract(l.P1).Multiply(a)).Add(l.P3.Subtract(l.P1).Multiply(b))
	emission = l.Material.Emission()
	return point, emission
}
