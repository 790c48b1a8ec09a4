package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and decodes a single manifest file.
// Decoding is strict: unknown keys are an error so typos surface at startup
// rather than silently dropping a constraint.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	if m.Identity.Name == "" {
		// Fall back to the file name, matching directory-based plugin layouts.
		base := filepath.Base(path)
		m.Identity.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return &m, nil
}

// LoadDir loads every *.yaml / *.yml manifest in dir, sorted by file name so
// registration order is stable across runs.
func LoadDir(dir string) ([]*Manifest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	manifests := make([]*Manifest, 0, len(paths))
	for _, path := range paths {
		m, err := Load(path)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, m)
	}
	return manifests, nil
}
