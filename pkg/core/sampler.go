package core

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	mrand "math/rand"
)

// Sampler is a per-thread stream of uniform floats in [0,1), plus the direction-sampling
// helpers the material and light-sampling code build on.
type Sampler interface {
	Sample() float64
	SamplePair() (float64, float64)
	SampleDirection() Vec3
	SampleDirectionHemisphere(normal Vec3) Vec3
}

// RNGSampler is the default Sampler, backed by a math/rand source private to one goroutine.
// It is not safe for concurrent use — each render worker owns exactly one.
type RNGSampler struct {
	rnd *mrand.Rand
}

// NewSampler creates a sampler seeded from a nondeterministic source.
func NewSampler() *RNGSampler {
	return &RNGSampler{rnd: mrand.New(mrand.NewSource(randomSeed()))}
}

// NewSeededSampler creates a sampler with an explicit 64-bit seed, for deterministic tests.
func NewSeededSampler(seed int64) *RNGSampler {
	return &RNGSampler{rnd: mrand.New(mrand.NewSource(seed))}
}

func randomSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0x5EED // crypto/rand should never fail; fall back to a fixed seed rather than panic.
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

func (s *RNGSampler) Sample() float64 {
	return s.rnd.Float64()
}

func (s *RNGSampler) SamplePair() (float64, float64) {
	return s.rnd.Float64(), s.rnd.Float64()
}

// SampleDirection draws uniformly on the unit sphere.
func (s *RNGSampler) SampleDirection() Vec3 {
	u1, u2 := s.SamplePair()
	theta := 2 * math.Pi * u1
	phi := math.Acos(1 - 2*u2)
	sinPhi, cosPhi := math.Sincos(phi)
	return Vec3{
		X: sinPhi * math.Cos(theta),
		Y: sinPhi * math.Sin(theta),
		Z: cosPhi,
	}
}

// SampleDirectionHemisphere draws uniformly over the hemisphere facing normal; PDF is 1/(2*pi).
func (s *RNGSampler) SampleDirectionHemisphere(normal Vec3) Vec3 {
	dir := s.SampleDirection()
	if dir.Dot(normal) < 0 {
		return dir.Negate()
	}
	return dir
}

// HemispherePDF is the constant PDF of SampleDirectionHemisphere over the facing hemisphere.
const HemispherePDF = 1.0 / (2.0 * math.Pi)
