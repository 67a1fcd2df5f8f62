package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/svganim/internal/compiler"
	"github.com/ivlev/svganim/internal/gizmo"
	"github.com/ivlev/svganim/internal/timeline"
)

type Config struct {
	ScenesDir string `yaml:"scenesDir" toml:"scenesDir"`
	OutputDir string `yaml:"outputDir" toml:"outputDir"`
	Workers   int    `yaml:"workers" toml:"workers"`

	Compile  compiler.Options `yaml:"compile" toml:"compile"`
	Snap     Snap             `yaml:"snap" toml:"snap"`
	Playback Playback         `yaml:"playback" toml:"playback"`

	Verbose      bool   `yaml:"verbose" toml:"verbose"`
	ShowStats    bool   `yaml:"showStats" toml:"showStats"`
	BuildVersion string `yaml:"-" toml:"-"`
}

type Snap struct {
	GridSize     float64 `yaml:"gridSize" toml:"gridSize"`
	GridEnabled  bool    `yaml:"gridEnabled" toml:"gridEnabled"`
	RotationStep float64 `yaml:"rotationStep" toml:"rotationStep"`
}

// Settings converts to the form handle callbacks read
func (s Snap) Settings() gizmo.SnapSettings {
	return gizmo.SnapSettings{GridSize: s.GridSize, GridEnabled: s.GridEnabled, RotationStep: s.RotationStep}
}

type Playback struct {
	Rate    float64          `yaml:"rate" toml:"rate"`
	Quality timeline.Quality `yaml:"quality" toml:"quality"`
}

func Default() *Config {
	return &Config{
		ScenesDir: "scenes",
		OutputDir: "output",
		Workers:   runtime.NumCPU(),
		Compile:   compiler.DefaultOptions(),
		Snap:      Snap{GridSize: 10, RotationStep: 15},
		Playback:  Playback{Rate: 1, Quality: timeline.QualityPreview},
	}
}

// Load reads a YAML or TOML config over the defaults, by file extension
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config %s: unsupported format", path)
	}
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Playback.Rate <= 0 {
		return fmt.Errorf("playback rate must be positive, got %v", c.Playback.Rate)
	}
	if c.Snap.GridSize < 0 || c.Snap.RotationStep < 0 {
		return fmt.Errorf("snap sizes must not be negative")
	}
	switch c.Compile.Compat {
	case compiler.CompatModern, compiler.CompatLegacy:
	default:
		return fmt.Errorf("unknown compat mode %q", c.Compile.Compat)
	}
	return nil
}
