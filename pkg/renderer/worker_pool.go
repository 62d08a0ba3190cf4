package renderer

import (
	"runtime"
	"sync"

	"github.com/felsrender/pathtracer/pkg/core"
	"github.com/felsrender/pathtracer/pkg/pathtracer"
)

// Config carries the renderer-relevant keys of spec §6's configuration table.
type Config struct {
	Width, Height   int
	SamplesPerPixel int
	Threads         int // 0 means auto-detect, mirroring the teacher's NumWorkers convention
	ColsPerThread   int // width of one column-stripe job
	ISO             float64
}

// columnJob is one column-stripe of the image; stripes never overlap, so each worker writes
// its own region of the framebuffer without locking, exactly as the teacher's tile workers do.
type columnJob struct {
	x0, x1 int
}

// Render drives the path tracer across the full image using a pool of worker goroutines,
// one column-stripe job at a time (spec §5's concurrency model: immutable scene/kd-tree/
// materials shared lock-free, per-tile framebuffer ownership).
func Render(cam *Camera, pt *pathtracer.PathTracer, cfg Config, logger core.Logger) (*Framebuffer, RenderStats) {
	numWorkers := cfg.Threads
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	colsPerThread := cfg.ColsPerThread
	if colsPerThread <= 0 {
		colsPerThread = 1
	}

	fb := NewFramebuffer(cfg.Width, cfg.Height)

	jobs := make(chan columnJob, (cfg.Width/colsPerThread)+1)
	for x0 := 0; x0 < cfg.Width; x0 += colsPerThread {
		x1 := x0 + colsPerThread
		if x1 > cfg.Width {
			x1 = cfg.Width
		}
		jobs <- columnJob{x0: x0, x1: x1}
	}
	close(jobs)

	var wg sync.WaitGroup
	var totalSamples int64
	var mu sync.Mutex

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sampler := core.NewSampler()
			samples := renderColumns(cam, pt, cfg, fb, sampler, jobs)
			mu.Lock()
			totalSamples += samples
			mu.Unlock()
		}()
	}
	wg.Wait()

	stats := RenderStats{
		Width:           cfg.Width,
		Height:          cfg.Height,
		SamplesPerPixel: cfg.SamplesPerPixel,
		TotalSamples:    totalSamples,
	}
	if logger != nil {
		logger.Infow("renderer: render complete",
			"width", cfg.Width,
			"height", cfg.Height,
			"samplesPerPixel", cfg.SamplesPerPixel,
			"workers", numWorkers,
			"totalSamples", totalSamples,
		)
	}
	return fb, stats
}

func renderColumns(cam *Camera, pt *pathtracer.PathTracer, cfg Config, fb *Framebuffer, sampler core.Sampler, jobs <-chan columnJob) int64 {
	var samples int64
	for job := range jobs {
		for y := 0; y < cfg.Height; y++ {
			for x := job.x0; x < job.x1; x++ {
				var sum core.Vec3
				for s := 0; s < cfg.SamplesPerPixel; s++ {
					jitterX, jitterY := sampler.SamplePair()
					jitterX -= 0.5
					jitterY -= 0.5
					ndcX := 2*((float64(x)+jitterX)/float64(cfg.Width)) - 1
					ndcY := 1 - 2*((float64(y)+jitterY)/float64(cfg.Height))

					ray := cam.RayThrough(ndcX, ndcY)
					sum = sum.Add(pt.Trace(ray.Origin, ray.Direction, sampler))
					samples++
				}
				fb.Set(x, y, sum.Divide(float64(cfg.SamplesPerPixel)))
			}
		}
	}
	return samples
}
