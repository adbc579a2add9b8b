package platform

import "sort"

// Registry holds the available platform adapters by key.
type Registry struct {
	platforms map[string]Platform
}

// NewRegistry builds a registry from the given adapters.
func NewRegistry(platforms ...Platform) *Registry {
	r := &Registry{platforms: make(map[string]Platform, len(platforms))}
	for _, p := range platforms {
		r.platforms[p.Key()] = p
	}
	return r
}

// Get returns the adapter for key, or nil.
func (r *Registry) Get(key string) Platform {
	return r.platforms[key]
}

// Keys returns the registered platform keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.platforms))
	for k := range r.platforms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
