package provider

import (
	"fmt"
	"strings"
)

// Registry is the ordered set of adapters known to the process
type Registry struct {
	providers []Provider
	byName    map[string]Provider
}

// NewRegistry registers providers in order; later duplicates replace earlier ones
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{byName: make(map[string]Provider)}
	for _, p := range providers {
		key := strings.ToLower(p.Name())
		if _, exists := r.byName[key]; exists {
			for i, existing := range r.providers {
				if strings.EqualFold(existing.Name(), p.Name()) {
					r.providers[i] = p
				}
			}
		} else {
			r.providers = append(r.providers, p)
		}
		r.byName[key] = p
	}
	return r
}

// DefaultRegistry holds every built-in adapter
func DefaultRegistry(opts ...Option) *Registry {
	return NewRegistry(
		NewOpenRouter(opts...),
		NewFeatherless(opts...),
		NewOllama(opts...),
	)
}

// Get looks a provider up by name, case-insensitively
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

// All returns the providers in registration order
func (r *Registry) All() []Provider {
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Names returns provider names in registration order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return names
}

// Default returns the first registered provider, or nil
func (r *Registry) Default() Provider {
	if len(r.providers) == 0 {
		return nil
	}
	return r.providers[0]
}

// StaticModels concatenates every provider's static list without deduplication
func (r *Registry) StaticModels() []ModelInfo {
	var out []ModelInfo
	for _, p := range r.providers {
		out = append(out, p.StaticModels()...)
	}
	return out
}
