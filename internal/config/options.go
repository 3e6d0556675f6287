// Package config holds generator options and shared constants.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options controls generation policy. The zero value is the default
// policy: fail fast on sink rejections, plain output.
type Options struct {
	// LenientSink makes a stack-accounting failure a per-entry diagnostic
	// instead of a fatal error. The failing entry is dropped and
	// generation continues with its siblings.
	LenientSink bool `yaml:"lenient_sink,omitempty"`

	// Color controls colored CLI output: "auto" (default), "always", "never".
	Color string `yaml:"color,omitempty"`
}

// DefaultOptions returns the default generation policy.
func DefaultOptions() Options {
	return Options{Color: "auto"}
}

// LoadOptions reads options from a loom.yaml file. A missing file is not
// an error; defaults are returned.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if opts.Color == "" {
		opts.Color = "auto"
	}

	switch opts.Color {
	case "auto", "always", "never":
	default:
		return opts, fmt.Errorf("invalid color mode %q in %s (want auto, always or never)", opts.Color, path)
	}

	return opts, nil
}
