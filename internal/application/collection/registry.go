package collection

import (
	"fmt"
	"strings"

	"github.com/hawaiibiz/intel/internal/domain/collection"
)

// SourceAll selects every registered adapter
const SourceAll = "all"

// Registry holds the configured adapters in registration order
type Registry struct {
	adapters []collection.Adapter
	byName   map[string]collection.Adapter
}

// NewRegistry creates a registry. A later adapter with a name already taken
// replaces the earlier one.
func NewRegistry(adapters ...collection.Adapter) *Registry {
	r := &Registry{byName: make(map[string]collection.Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds an adapter
func (r *Registry) Register(a collection.Adapter) {
	name := a.Name()
	if _, ok := r.byName[name]; ok {
		for i, existing := range r.adapters {
			if existing.Name() == name {
				r.adapters[i] = a
			}
		}
	} else {
		r.adapters = append(r.adapters, a)
	}
	r.byName[name] = a
}

// Names lists the registered adapter names
func (r *Registry) Names() []string {
	names := make([]string, len(r.adapters))
	for i, a := range r.adapters {
		names[i] = a.Name()
	}
	return names
}

// Resolve maps a source to adapters: "all" (or empty) selects every adapter,
// anything else must name exactly one.
func (r *Registry) Resolve(source string) ([]collection.Adapter, string, error) {
	source = strings.ToLower(strings.TrimSpace(source))
	if source == "" || source == SourceAll {
		if len(r.adapters) == 0 {
			return nil, "", fmt.Errorf("%w: no adapters are enabled", collection.ErrUnknownAdapter)
		}
		return append([]collection.Adapter(nil), r.adapters...), SourceAll, nil
	}
	a, ok := r.byName[source]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", collection.ErrUnknownAdapter, source)
	}
	return []collection.Adapter{a}, source, nil
}
