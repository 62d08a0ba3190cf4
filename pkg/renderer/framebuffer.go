package renderer

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/felsrender/pathtracer/pkg/core"
)

// Framebuffer accumulates linear radiance per pixel. Each pixel is written by exactly one
// worker (its column range is assigned to a single goroutine), so no locking is needed.
type Framebuffer struct {
	Width, Height int
	pixels        []core.Vec3
}

func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{Width: width, Height: height, pixels: make([]core.Vec3, width*height)}
}

func (f *Framebuffer) Set(x, y int, c core.Vec3) {
	f.pixels[y*f.Width+x] = c
}

func (f *Framebuffer) At(x, y int) core.Vec3 {
	return f.pixels[y*f.Width+x]
}

// ToneMap scales linear radiance by iso, clamps to [0,1], and gamma-encodes (sqrt, the
// teacher's own gamma-2 approximation) into an 8-bit RGBA image.
func (f *Framebuffer) ToneMap(iso float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := f.At(x, y).Multiply(iso).Clamp(0, 1)
			r := uint8(math.Sqrt(c.X)*255 + 0.5)
			g := uint8(math.Sqrt(c.Y)*255 + 0.5)
			b := uint8(math.Sqrt(c.Z)*255 + 0.5)
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

// WritePFM writes the unscaled linear framebuffer as a Portable Float Map (no ecosystem
// library in the example pack targets this format; this is a deliberate stdlib-only path,
// see DESIGN.md).
func (f *Framebuffer) WritePFM(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "PF\n%d %d\n-1.0\n", f.Width, f.Height); err != nil {
		return err
	}
	// PFM rows are stored bottom-to-top.
	row := make([]byte, f.Width*3*4)
	for y := f.Height - 1; y >= 0; y-- {
		for x := 0; x < f.Width; x++ {
			c := f.At(x, y)
			off := x * 3 * 4
			binary.LittleEndian.PutUint32(row[off:], math.Float32bits(float32(c.X)))
			binary.LittleEndian.PutUint32(row[off+4:], math.Float32bits(float32(c.Y)))
			binary.LittleEndian.PutUint32(row[off+8:], math.Float32bits(float32(c.Z)))
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
