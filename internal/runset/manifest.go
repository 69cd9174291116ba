// Package runset loads groups of experiment logs: YAML manifests naming the
// runs of a sweep, and concurrent parsing of many logs at once.
package runset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Entry is one run of a manifest.
type Entry struct {
	Label string `yaml:"label"`
	Path  string `yaml:"path"`
}

// Manifest describes a set of runs analysed together, such as one
// hyper-parameter sweep.
type Manifest struct {
	Name           string  `yaml:"name"`
	Weighting      string  `yaml:"weighting"`
	FeatureMode    string  `yaml:"feature_mode"`
	SkipBlankLines *bool   `yaml:"skip_blank_lines"`
	Runs           []Entry `yaml:"runs"`
}

// LoadManifest reads a manifest file. Relative run paths are resolved against
// the manifest's directory and missing labels default to the path's base name.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if len(m.Runs) == 0 {
		return nil, fmt.Errorf("manifest %s: %w", path, errors.New("no runs listed"))
	}
	base := filepath.Dir(path)
	for i := range m.Runs {
		r := &m.Runs[i]
		if r.Path == "" {
			return nil, fmt.Errorf("manifest %s: run %d has no path", path, i)
		}
		if !filepath.IsAbs(r.Path) {
			r.Path = filepath.Join(base, r.Path)
		}
		if r.Label == "" {
			r.Label = filepath.Base(r.Path)
		}
	}
	return &m, nil
}

// Paths returns the run paths in manifest order.
func (m *Manifest) Paths() []string {
	out := make([]string, len(m.Runs))
	for i, r := range m.Runs {
		out[i] = r.Path
	}
	return out
}

// Labels returns the run labels in manifest order.
func (m *Manifest) Labels() []string {
	out := make([]string, len(m.Runs))
	for i, r := range m.Runs {
		out[i] = r.Label
	}
	return out
}
