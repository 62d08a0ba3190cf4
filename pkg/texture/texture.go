// Package texture implements the 2-D RGB sampler (spec §4.2, component C2): decoding image
// data once at scene load and sampling it by UV coordinate during shading.
package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoding
	_ "image/png"  // register PNG decoding
	"math"
	"os"

	_ "golang.org/x/image/bmp"  // register BMP decoding, for glTF assets shipping BMP textures
	_ "golang.org/x/image/tiff" // register TIFF decoding

	"github.com/felsrender/pathtracer/pkg/core"
)

// Texture is a decoded, immutable 2-D RGB image sampled by UV coordinate.
type Texture struct {
	width, height int
	pixels        []core.Vec3 // row-major, origin at top-left
}

// sentinel is returned for any texture whose backing file failed to load, per spec §4.2 and §7
// (asset errors are recovered here; the core always sees a valid Texture).
var sentinel = &Texture{
	width: 1, height: 1,
	pixels: []core.Vec3{{X: 1, Y: 0, Z: 1}}, // magenta
}

// Load decodes an image file into a Texture. On any error it logs nothing and returns the
// magenta sentinel texture, never an error.
func Load(path string) *Texture {
	f, err := os.Open(path)
	if err != nil {
		return sentinel
	}
	defer f.Close()

	t, err := Decode(f)
	if err != nil {
		return sentinel
	}
	return t
}

// Decode converts already-opened image data (from any registered format) into a Texture.
func Decode(r *os.File) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// DecodeBytes decodes an in-memory image, used by the glTF loader for embedded/buffer-view
// textures.
func DecodeBytes(data []byte) (*Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("texture: decode: %w", err)
	}
	return FromImage(img), nil
}

// FromImage converts a decoded image.Image into a Texture, expanding grayscale to (v,v,v) and
// supporting 3- or 4-channel sources uniformly via the standard At/RGBA path.
func FromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]core.Vec3, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			pixels[y*w+x] = core.Vec3{
				X: float64(r) / 65535.0,
				Y: float64(g) / 65535.0,
				Z: float64(b) / 65535.0,
			}
		}
	}

	return &Texture{width: w, height: h, pixels: pixels}
}

// Sentinel returns the shared magenta placeholder texture.
func Sentinel() *Texture { return sentinel }

func (t *Texture) Width() int  { return t.width }
func (t *Texture) Height() int { return t.height }

func (t *Texture) texel(x, y int) core.Vec3 {
	x = ((x % t.width) + t.width) % t.width
	y = ((y % t.height) + t.height) % t.height
	return t.pixels[y*t.width+x]
}

// SampleNearest maps uv in [0,1)^2 (wrapping by fract) to the nearest integer pixel.
func (t *Texture) SampleNearest(uv core.Vec2) core.Vec3 {
	u, v := fract(uv.X), fract(uv.Y)
	x := int(u * float64(t.width))
	y := int(v * float64(t.height))
	return t.texel(x, y)
}

// SampleBilinear performs a 4-tap bilinear filter around uv.
func (t *Texture) SampleBilinear(uv core.Vec2) core.Vec3 {
	u, v := fract(uv.X)*float64(t.width)-0.5, fract(uv.Y)*float64(t.height)-0.5
	x0, y0 := int(math.Floor(u)), int(math.Floor(v))
	fx, fy := u-float64(x0), v-float64(y0)

	c00 := t.texel(x0, y0)
	c10 := t.texel(x0+1, y0)
	c01 := t.texel(x0, y0+1)
	c11 := t.texel(x0+1, y0+1)

	top := c00.Lerp(c10, fx)
	bottom := c01.Lerp(c11, fx)
	return top.Lerp(bottom, fy)
}

// Sample samples the texture, bilinear by default; nearest is always available via
// SampleNearest for callers/tests that need exact texel lookup.
func (t *Texture) Sample(uv core.Vec2) core.Vec3 {
	return t.SampleBilinear(uv)
}

func fract(x float64) float64 {
	f := x - math.Floor(x)
	if f < 0 {
		f += 1
	}
	return f
}
