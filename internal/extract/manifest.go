package extract

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestName is written next to the extracted images.
const ManifestName = "manifest.yaml"

// Manifest records where every image came from.
type Manifest struct {
	Version string  `yaml:"version"`
	Source  string  `yaml:"source"`
	DPI     int     `yaml:"dpi"`
	Images  []Image `yaml:"images"`
}

// WriteManifest writes a manifest to a YAML file
func WriteManifest(m *Manifest, dir string) (string, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, ManifestName)
	return path, os.WriteFile(path, data, 0644)
}

// ReadManifest reads a manifest from a YAML file. Append runs use it to
// carry the images of earlier runs forward.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return &m, nil
}
