// Package manifest loads the YAML file that orders extensions and describes
// the supported document services.
package manifest

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/webclipper/internal/domain"
)

var varPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Loader reads a manifest file from disk.
type Loader struct {
	filePath string
}

// NewLoader creates a loader for filePath. An empty path yields Default().
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the manifest.
func (l *Loader) Load() (Manifest, error) {
	if l.filePath == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest file: %w", err)
	}

	data = expandVariables(data)

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest yaml: %w", err)
	}

	if err := m.validate(); err != nil {
		return Manifest{}, err
	}

	// Services not declared keep their built-in display data.
	if m.Services == nil {
		m.Services = make(map[string]domain.ServiceMeta)
	}
	for k, v := range Default().Services {
		if _, ok := m.Services[k]; !ok {
			m.Services[k] = v
		}
	}

	return m, nil
}

func (m Manifest) validate() error {
	seen := make(map[string]bool, len(m.Extensions))
	for i, e := range m.Extensions {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return fmt.Errorf("manifest extension #%d has no name", i+1)
		}
		if seen[name] {
			return fmt.Errorf("manifest lists extension %q twice", name)
		}
		seen[name] = true
	}
	return nil
}

// expandVariables replaces {{NAME}} with the value of the environment variable
// NAME, or an empty string when unset.
func expandVariables(data []byte) []byte {
	return varPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := varPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}
