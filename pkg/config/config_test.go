package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "render.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const validYAML = `
recursion: 6
max_reflections: 3
roulette_factor: 0.8
kdtree_max_depth: 20
kdtree_max_triangles_in_leaf: 4
sah_resolution: 16
samples_per_pixel: 64
threads: 0
cols_per_thread: 8
iso: 1.0
material_parameter_factor: 1.0
sky: [0.4, 0.6, 0.9]
`

func TestLoad_AcceptsWellFormedConfig(t *testing.T) {
	path := writeConfig(t, validYAML)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Recursion)
	assert.Equal(t, 0.8, cfg.RouletteFactor)
	assert.Equal(t, [3]float64{0.4, 0.6, 0.9}, cfg.Sky)
	assert.Equal(t, 0, cfg.Threads)
}

func TestLoad_ReturnsErrorOnMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	var cfgErr *Error
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoad_ReturnsErrorOnInvalidYAML(t *testing.T) {
	path := writeConfig(t, "recursion: [this is not an int\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate_ThreadsZeroIsAllowedAsAutoDetect(t *testing.T) {
	r := Render{Recursion: 1, KDTreeMaxDepth: 1, KDTreeMaxTrianglesInLeaf: 1, SamplesPerPixel: 1, ColsPerThread: 1, ISO: 1, Threads: 0}
	assert.NoError(t, r.validate())
}

func TestValidate_RejectsNegativeThreads(t *testing.T) {
	r := Render{Recursion: 1, KDTreeMaxDepth: 1, KDTreeMaxTrianglesInLeaf: 1, SamplesPerPixel: 1, ColsPerThread: 1, ISO: 1, Threads: -1}
	err := r.validate()
	require.Error(t, err)
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "threads", cfgErr.Key)
}

func TestValidate_RejectsEachOutOfRangeKey(t *testing.T) {
	base := func() Render {
		return Render{Recursion: 1, KDTreeMaxDepth: 1, KDTreeMaxTrianglesInLeaf: 1, SamplesPerPixel: 1, ColsPerThread: 1, ISO: 1}
	}

	cases := []struct {
		name    string
		mutate  func(*Render)
		wantKey string
	}{
		{"recursion", func(r *Render) { r.Recursion = -1 }, "recursion"},
		{"max_reflections", func(r *Render) { r.MaxReflections = -1 }, "max_reflections"},
		{"roulette_factor", func(r *Render) { r.RouletteFactor = -0.1 }, "roulette_factor"},
		{"kdtree_max_depth", func(r *Render) { r.KDTreeMaxDepth = 0 }, "kdtree_max_depth"},
		{"kdtree_max_triangles_in_leaf", func(r *Render) { r.KDTreeMaxTrianglesInLeaf = 0 }, "kdtree_max_triangles_in_leaf"},
		{"samples_per_pixel", func(r *Render) { r.SamplesPerPixel = 0 }, "samples_per_pixel"},
		{"cols_per_thread", func(r *Render) { r.ColsPerThread = 0 }, "cols_per_thread"},
		{"iso", func(r *Render) { r.ISO = 0 }, "iso"},
		{"material_parameter_factor", func(r *Render) { r.MaterialParameterFactor = -1 }, "material_parameter_factor"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := base()
			tc.mutate(&r)
			err := r.validate()
			require.Error(t, err)
			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.wantKey, cfgErr.Key)
		})
	}
}
