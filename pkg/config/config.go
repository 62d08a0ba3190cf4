// Package config loads the render configuration of spec §6 from a single flat YAML
// document, matching how the original system's inc/config.h reads one key-value file
// at startup rather than per-component configs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Render is the complete set of configuration keys from spec §6.
type Render struct {
	Recursion                int        `yaml:"recursion"`
	MaxReflections           int        `yaml:"max_reflections"`
	RouletteFactor           float64    `yaml:"roulette_factor"`
	KDTreeMaxDepth           int        `yaml:"kdtree_max_depth"`
	KDTreeMaxTrianglesInLeaf int        `yaml:"kdtree_max_triangles_in_leaf"`
	SAHResolution            int        `yaml:"sah_resolution"`
	SamplesPerPixel          int        `yaml:"samples_per_pixel"`
	Threads                  int        `yaml:"threads"`
	ColsPerThread            int        `yaml:"cols_per_thread"`
	ISO                      float64    `yaml:"iso"`
	MaterialParameterFactor  float64    `yaml:"material_parameter_factor"`
	Sky                      [3]float64 `yaml:"sky"`
}

// Error wraps a configuration problem with the offending key, fatal at startup per spec §7.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Key, e.Reason)
}

// Load reads and validates a Render configuration from a YAML file at path.
func Load(path string) (*Render, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Key: path, Reason: err.Error()}
	}

	var r Render
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, &Error{Key: path, Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}

	var present map[string]interface{}
	if err := yaml.Unmarshal(data, &present); err != nil {
		return nil, &Error{Key: path, Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}
	for _, key := range []string{"recursion", "max_reflections", "roulette_factor", "kdtree_max_depth",
		"kdtree_max_triangles_in_leaf", "sah_resolution", "samples_per_pixel", "cols_per_thread",
		"iso", "material_parameter_factor", "sky"} {
		if _, ok := present[key]; !ok {
			return nil, &Error{Key: key, Reason: "missing"}
		}
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// validate enforces the value ranges spec §6/§7 require; Load has already rejected any missing
// key. Threads is the one key with an implied default: it may be omitted or set to 0
// (auto-detect CPU count), mirroring the teacher's NumWorkers <= 0 convention.
func (r *Render) validate() error {
	if r.Recursion < 0 {
		return &Error{Key: "recursion", Reason: "must be >= 0"}
	}
	if r.MaxReflections < 0 {
		return &Error{Key: "max_reflections", Reason: "must be >= 0"}
	}
	if r.RouletteFactor < 0 {
		return &Error{Key: "roulette_factor", Reason: "must be >= 0"}
	}
	if r.KDTreeMaxDepth <= 0 {
		return &Error{Key: "kdtree_max_depth", Reason: "must be > 0"}
	}
	if r.KDTreeMaxTrianglesInLeaf <= 0 {
		return &Error{Key: "kdtree_max_triangles_in_leaf", Reason: "must be > 0"}
	}
	if r.SamplesPerPixel <= 0 {
		return &Error{Key: "samples_per_pixel", Reason: "must be > 0"}
	}
	if r.Threads < 0 {
		return &Error{Key: "threads", Reason: "must be >= 0 (0 means auto-detect)"}
	}
	if r.ColsPerThread <= 0 {
		return &Error{Key: "cols_per_thread", Reason: "must be > 0"}
	}
	if r.ISO <= 0 {
		return &Error{Key: "iso", Reason: "must be > 0"}
	}
	if r.MaterialParameterFactor < 0 {
		return &Error{Key: "material_parameter_factor", Reason: "must be >= 0"}
	}
	return nil
}
