// Command raytracer loads a scene and a render configuration, builds the kd-tree
// accelerator over it, and writes the path-traced result as PNG (and, optionally, a linear
// PFM) to disk.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/felsrender/pathtracer/pkg/config"
	"github.com/felsrender/pathtracer/pkg/core"
	"github.com/felsrender/pathtracer/pkg/kdtree"
	"github.com/felsrender/pathtracer/pkg/loaders"
	"github.com/felsrender/pathtracer/pkg/logging"
	"github.com/felsrender/pathtracer/pkg/pathtracer"
	"github.com/felsrender/pathtracer/pkg/renderer"
	"github.com/felsrender/pathtracer/pkg/scene"
)

// cliFlags mirrors the teacher's thin flag.Config: a small set of overrides, the rest coming
// from the YAML configuration file.
type cliFlags struct {
	ScenePath  string
	ConfigPath string
	OutPath    string
	Width      int
	Height     int
	PFM        bool
	Help       bool
}

func main() {
	flags := parseFlags()
	if flags.Help {
		showHelp()
		return
	}

	logger, err := logging.NewDevelopment()
	if err != nil {
		fmt.Printf("Could not start logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	fmt.Println("Starting path tracer...")
	startTime := time.Now()

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	sc, err := loaders.LoadGLTF(flags.ScenePath, cfg.MaterialParameterFactor)
	if err != nil {
		fmt.Printf("Error loading scene: %v\n", err)
		os.Exit(1)
	}
	sc.Sky = sceneSky(cfg)

	tree, err := kdtree.Build(sc, kdtree.Config{
		MaxDepth:           cfg.KDTreeMaxDepth,
		MaxTrianglesInLeaf: cfg.KDTreeMaxTrianglesInLeaf,
		SAHResolution:      cfg.SAHResolution,
	}, logger)
	if err != nil {
		fmt.Printf("Error building kd-tree: %v\n", err)
		os.Exit(1)
	}

	pt := pathtracer.New(sc, tree, pathtracer.Config{
		Recursion:      cfg.Recursion,
		MaxReflections: cfg.MaxReflections,
		RouletteFactor: cfg.RouletteFactor,
	})

	cam := autoFrameCamera(sc, flags.Width, flags.Height)

	fb, stats := renderer.Render(cam, pt, renderer.Config{
		Width:           flags.Width,
		Height:          flags.Height,
		SamplesPerPixel: cfg.SamplesPerPixel,
		Threads:         cfg.Threads,
		ColsPerThread:   cfg.ColsPerThread,
		ISO:             cfg.ISO,
	}, logger)

	if err := writeOutputs(fb, flags, cfg.ISO); err != nil {
		fmt.Printf("Error writing output: %v\n", err)
		os.Exit(1)
	}

	renderTime := time.Since(startTime)
	fmt.Printf("Render completed in %v\n", renderTime)
	fmt.Printf("Samples per pixel: %d, total samples: %d\n", stats.SamplesPerPixel, stats.TotalSamples)
	fmt.Printf("Render saved as %s\n", flags.OutPath)
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.ScenePath, "scene", "", "Path to a .gltf/.glb scene file")
	flag.StringVar(&f.ConfigPath, "config", "render.yaml", "Path to the render configuration YAML file")
	flag.StringVar(&f.OutPath, "out", "render.png", "Output PNG path")
	flag.IntVar(&f.Width, "width", 800, "Output image width")
	flag.IntVar(&f.Height, "height", 600, "Output image height")
	flag.BoolVar(&f.PFM, "pfm", false, "Also write a linear .pfm alongside the PNG")
	flag.BoolVar(&f.Help, "help", false, "Show help information")
	flag.Parse()
	return f
}

func showHelp() {
	fmt.Println("Path Tracer")
	fmt.Println("Usage: raytracer -scene path/to/scene.gltf -config render.yaml [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
}

func sceneSky(cfg *config.Render) scene.Sky {
	return scene.NewConstantSky(core.Vec3{X: cfg.Sky[0], Y: cfg.Sky[1], Z: cfg.Sky[2]})
}

// autoFrameCamera positions a camera to view the whole scene's bounding box, since this batch
// renderer has no interactive camera controls (a named Non-goal).
func autoFrameCamera(sc *scene.Scene, width, height int) *renderer.Camera {
	center := sc.AABB.Center()
	size := sc.AABB.Size()
	radius := size.Length() * 0.5
	if radius < 1e-6 {
		radius = 1
	}
	eye := center.Add(core.Vec3{X: 0, Y: 0, Z: radius * 2.5})
	return renderer.NewCamera(eye, center, core.Vec3{X: 0, Y: 1, Z: 0}, 45, float64(width)/float64(height), 0.01, radius*10)
}

func writeOutputs(fb *renderer.Framebuffer, flags cliFlags, iso float64) error {
	img := fb.ToneMap(iso)
	f, err := os.Create(flags.OutPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return err
	}

	if flags.PFM {
		pfmPath := flags.OutPath[:len(flags.OutPath)-len(filepath.Ext(flags.OutPath))] + ".pfm"
		pf, err := os.Create(pfmPath)
		if err != nil {
			return err
		}
		defer pf.Close()
		if err := fb.WritePFM(pf); err != nil {
			return err
		}
	}
	return nil
}
