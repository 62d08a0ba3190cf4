package renderer

import "time"

// RenderStats reports on a completed render, mirroring the teacher's RenderStats shape.
type RenderStats struct {
	Width, Height   int
	SamplesPerPixel int
	TotalSamples    int64
	Duration        time.Duration
}
