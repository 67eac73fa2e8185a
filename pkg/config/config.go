// Package config defines the driver-visible configuration surface (§6.2):
// a small object the core accepts and a YAML loader for it, the same
// gopkg.in/yaml.v3 dependency the teacher already carries (there for
// integration-test fixtures in cmd/ralph-cc) promoted here to load a real
// config file rather than just test specs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/milcore/milc/pkg/diag"
)

// Config is the configuration object the core accepts at minimum (§6.2).
type Config struct {
	Werror       bool `yaml:"werror"`
	WfatalErrors bool `yaml:"wfatal_errors"`
	FmaxErrors   int  `yaml:"fmax_errors"`
}

// SinkOptions adapts Config to the shape diag.Sink expects.
func (c Config) SinkOptions() diag.Options {
	return diag.Options{
		Werror:       c.Werror,
		WfatalErrors: c.WfatalErrors,
		FmaxErrors:   c.FmaxErrors,
	}
}

// Load reads and parses a YAML config file at path. A missing file is not
// an error: it returns the zero Config (every option off, fmax-errors
// unlimited), matching every option's documented default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return c, nil
}
