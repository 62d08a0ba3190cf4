package renderer

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felsrender/pathtracer/pkg/core"
	"github.com/felsrender/pathtracer/pkg/kdtree"
	"github.com/felsrender/pathtracer/pkg/pathtracer"
	"github.com/felsrender/pathtracer/pkg/scene"
)

func TestCamera_CenterRayPointsTowardTarget(t *testing.T) {
	eye := core.Vec3{X: 0, Y: 0, Z: 5}
	target := core.Vec3{X: 0, Y: 0, Z: 0}
	up := core.Vec3{X: 0, Y: 1, Z: 0}
	cam := NewCamera(eye, target, up, 60, 1, 0.1, 100)

	ray := cam.RayThrough(0, 0)
	expected := target.Subtract(eye).Normalize()
	assert.InDelta(t, expected.X, ray.Direction.X, 1e-6)
	assert.InDelta(t, expected.Y, ray.Direction.Y, 1e-6)
	assert.InDelta(t, expected.Z, ray.Direction.Z, 1e-6)
	assert.Equal(t, eye, ray.Origin)
}

func TestCamera_CornerRaysDivergeFromCenter(t *testing.T) {
	cam := NewCamera(core.Vec3{X: 0, Y: 0, Z: 5}, core.Vec3{}, core.Vec3{X: 0, Y: 1, Z: 0}, 60, 1, 0.1, 100)
	center := cam.RayThrough(0, 0)
	corner := cam.RayThrough(1, 1)
	assert.NotEqual(t, center.Direction, corner.Direction)
}

func TestFramebuffer_SetAndAtRoundTrip(t *testing.T) {
	fb := NewFramebuffer(4, 3)
	c := core.Vec3{X: 0.1, Y: 0.2, Z: 0.3}
	fb.Set(2, 1, c)
	assert.Equal(t, c, fb.At(2, 1))
	assert.Equal(t, core.Vec3{}, fb.At(0, 0))
}

func TestToneMap_ClampsOverexposedPixelsToWhite(t *testing.T) {
	fb := NewFramebuffer(1, 1)
	fb.Set(0, 0, core.Vec3{X: 10, Y: 10, Z: 10})
	img := fb.ToneMap(1.0)
	r, g, b, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(255*257), r)
	assert.Equal(t, uint32(255*257), g)
	assert.Equal(t, uint32(255*257), b)
	assert.Equal(t, uint32(255*257), a)
}

func TestToneMap_AppliesSqrtGammaToMidGray(t *testing.T) {
	fb := NewFramebuffer(1, 1)
	fb.Set(0, 0, core.Vec3{X: 0.25, Y: 0.25, Z: 0.25})
	img := fb.ToneMap(1.0)
	r, _, _, _ := img.At(0, 0).RGBA()
	want := uint8(math.Sqrt(0.25)*255 + 0.5)
	assert.InDelta(t, int(want), int(uint8(r>>8)), 1)
}

func TestWritePFM_HeaderAndRowOrderMatchFormat(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.Set(0, 0, core.Vec3{X: 1, Y: 0, Z: 0}) // top-left: the last row in PFM row order
	fb.Set(0, 1, core.Vec3{X: 0, Y: 1, Z: 0}) // bottom-left

	var buf bytes.Buffer
	require.NoError(t, fb.WritePFM(&buf))

	data := buf.Bytes()
	assert.Equal(t, []byte("PF\n2 2\n-1.0\n"), data[:len("PF\n2 2\n-1.0\n")])

	payload := data[len("PF\n2 2\n-1.0\n"):]
	// Rows are written bottom-to-top, so the first row in the file is y=1 (bottom pixel: green).
	firstPixelR := math.Float32frombits(binary.LittleEndian.Uint32(payload[0:4]))
	assert.InDelta(t, 0.0, firstPixelR, 1e-6)
}

// stubCaster always misses, driving the path tracer straight to the sky term.
type stubCaster struct{}

func (stubCaster) Trace(origin, direction core.Vec3) (kdtree.HitRecord, bool) {
	return kdtree.HitRecord{}, false
}

func TestRender_FillsEveryPixelAndReportsSampleCount(t *testing.T) {
	sky := core.Vec3{X: 0.2, Y: 0.4, Z: 0.6}
	sc := &scene.Scene{Sky: scene.NewConstantSky(sky)}
	pt := pathtracer.New(sc, stubCaster{}, pathtracer.Config{Recursion: 1, MaxReflections: 0, RouletteFactor: 1})
	cam := NewCamera(core.Vec3{X: 0, Y: 0, Z: 5}, core.Vec3{}, core.Vec3{X: 0, Y: 1, Z: 0}, 60, 1, 0.1, 100)

	fb, stats := Render(cam, pt, Config{Width: 4, Height: 4, SamplesPerPixel: 2, Threads: 2, ColsPerThread: 2, ISO: 1}, nil)

	assert.Equal(t, int64(4*4*2), stats.TotalSamples)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			px := fb.At(x, y)
			assert.InDelta(t, sky.X, px.X, 1e-9)
			assert.InDelta(t, sky.Y, px.Y, 1e-9)
			assert.InDelta(t, sky.Z, px.Z, 1e-9)
		}
	}
}
