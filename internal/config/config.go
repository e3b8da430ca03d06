// Package config loads the ambient options a run of the proxy may read
// from a YAML file, supplying defaults that CLI flags then override. A
// pipeline's stage tokens are never part of this file: a pipeline is a
// run, not standing configuration (SPEC_FULL.md §5).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the optional on-disk defaults document, e.g.:
//
//	logLevel: debug
//	logFormat: text
//	metricsPort: 9090
//	healthPort: 8080
type File struct {
	LogLevel    string `yaml:"logLevel"`
	LogFormat   string `yaml:"logFormat"`
	MetricsPort int    `yaml:"metricsPort"`
	HealthPort  int    `yaml:"healthPort"`
}

// Load reads and parses path. A missing path is not an error: callers
// pass through the flag defaults unchanged in that case.
func Load(path string) (*File, error) {
	if path == "" {
		return &File{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &f, nil
}
