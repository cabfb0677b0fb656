package manifest

import "github.com/MrSnakeDoc/webclipper/internal/domain"

// Manifest is the top-level structure of the clipper manifest file.
type Manifest struct {
	Extensions []ExtensionEntry              `yaml:"extensions"`
	Services   map[string]domain.ServiceMeta `yaml:"services"`
}

// ExtensionEntry positions one extension in the tool bar.
type ExtensionEntry struct {
	Name     string `yaml:"name"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// Order returns extension names in declaration order, disabled ones included.
func (m Manifest) Order() []string {
	out := make([]string, 0, len(m.Extensions))
	for _, e := range m.Extensions {
		out = append(out, e.Name)
	}
	return out
}

// Disabled returns the names marked disabled.
func (m Manifest) Disabled() []string {
	var out []string
	for _, e := range m.Extensions {
		if e.Disabled {
			out = append(out, e.Name)
		}
	}
	return out
}

// Default is used when no manifest file is configured.
func Default() Manifest {
	return Manifest{
		Services: map[string]domain.ServiceMeta{
			"yuque": {
				Name:     "语雀",
				Icon:     "yuque",
				HomePage: "https://www.yuque.com",
			},
		},
	}
}
