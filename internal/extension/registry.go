package extension

import (
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/logger"
)

// Registry is the ordered set of known extensions.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	byName   map[string]Extension
	disabled map[string]bool
	logger   logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		byName:   make(map[string]Extension),
		disabled: make(map[string]bool),
		logger:   log,
	}
}

// Register appends ext; names must be unique.
func (r *Registry) Register(ext Extension) error {
	name := ext.Meta().Name
	if name == "" {
		return fmt.Errorf("extension has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateExtension, name)
	}
	r.byName[name] = ext
	r.order = append(r.order, name)
	return nil
}

// MustRegister registers compiled-in extensions and panics on a name clash.
func (r *Registry) MustRegister(exts ...Extension) {
	for _, ext := range exts {
		if err := r.Register(ext); err != nil {
			panic(err)
		}
	}
}

// Get returns an enabled extension by name.
func (r *Registry) Get(name string) (Extension, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ext, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrExtensionNotFound, name)
	}
	if r.disabled[name] {
		return nil, fmt.Errorf("%w: %s", ErrExtensionDisabled, name)
	}
	return ext, nil
}

// All returns the enabled extensions in order.
func (r *Registry) All() []Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Extension, 0, len(r.order))
	for _, name := range r.order {
		if r.disabled[name] {
			continue
		}
		out = append(out, r.byName[name])
	}
	return out
}

// Metas returns the metadata of the enabled extensions in order.
func (r *Registry) Metas() []domain.ExtensionMeta {
	all := r.All()
	out := make([]domain.ExtensionMeta, 0, len(all))
	for _, ext := range all {
		out = append(out, ext.Meta())
	}
	return out
}

// Applicable filters the enabled extensions by their predicate, keeping order.
func (r *Registry) Applicable(ic InitContext) []Extension {
	all := r.All()
	out := make([]Extension, 0, len(all))
	for _, ext := range all {
		ok, err := checkApplicable(ext, ic)
		if err != nil {
			r.logger.Debug("applicability predicate failed, treating as not applicable",
				logger.String("extension", ext.Meta().Name),
				logger.Error(err))
			continue
		}
		if ok {
			out = append(out, ext)
		}
	}
	return out
}

// Arrange reorders the registry: names in order come first, the rest keep
// their registration order. Names in disabled are hidden from All and Get.
// Unknown names are logged and ignored.
func (r *Registry) Arrange(order []string, disabled []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	placed := make(map[string]bool, len(r.order))
	arranged := make([]string, 0, len(r.order))
	for _, name := range order {
		if _, ok := r.byName[name]; !ok {
			r.logger.Warn("manifest references unknown extension", logger.String("extension", name))
			continue
		}
		if placed[name] {
			continue
		}
		placed[name] = true
		arranged = append(arranged, name)
	}
	for _, name := range r.order {
		if !placed[name] {
			arranged = append(arranged, name)
		}
	}
	r.order = arranged

	r.disabled = make(map[string]bool, len(disabled))
	for _, name := range disabled {
		if _, ok := r.byName[name]; !ok {
			r.logger.Warn("manifest disables unknown extension", logger.String("extension", name))
			continue
		}
		r.disabled[name] = true
	}
}
