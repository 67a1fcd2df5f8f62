package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/svganim/internal/anim"
	"github.com/ivlev/svganim/internal/system"
)

// SceneVersion is written into new scene files
const SceneVersion = "1.0"

// Scene is an animated SVG document: its canvas, the animated elements and
// the animation descriptions targeting them
type Scene struct {
	Version    string             `yaml:"version"`
	Width      float64            `yaml:"width"`
	Height     float64            `yaml:"height"`
	Elements   []anim.Element     `yaml:"elements"`
	Animations []anim.Description `yaml:"animations"`
}

// WriteScene writes a scene to a YAML file
func WriteScene(scene *Scene, path string) error {
	if scene.Version == "" {
		scene.Version = SceneVersion
	}
	data, err := yaml.Marshal(scene)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadScene reads a scene from a YAML file
func ReadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := scene.check(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &scene, nil
}

// check rejects scenes whose ids cannot be addressed
func (s *Scene) check() error {
	seen := make(map[string]bool)
	for _, el := range s.Elements {
		if el.ID == "" {
			return fmt.Errorf("element without id")
		}
		if seen[el.ID] {
			return fmt.Errorf("duplicate element id %q", el.ID)
		}
		seen[el.ID] = true
	}
	clear(seen)
	for i, d := range s.Animations {
		if d.ID == "" {
			return fmt.Errorf("animation %d has no id", i)
		}
		if seen[d.ID] {
			return fmt.Errorf("duplicate animation id %q", d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}

// GenerateScenePath creates a timestamped scene filename in dir
func GenerateScenePath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("scene_%s.yaml", timestamp))
}

// FindLatestScene finds the most recent scene file in dir
func FindLatestScene(dir string) (string, error) {
	path, err := system.FindLatest(dir, ".yaml", ".yml")
	if err != nil {
		return "", fmt.Errorf("failed to find a scene: %w", err)
	}
	return path, nil
}
