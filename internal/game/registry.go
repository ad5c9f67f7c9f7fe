package game

// Registry is the closed set of engines available to rooms, built once at
// startup. Lookup is by the plugin's string id; there is no runtime
// loading.
type Registry struct {
	plugins map[string]Plugin
}

func NewRegistry(plugins ...Plugin) *Registry {
	r := &Registry{plugins: make(map[string]Plugin, len(plugins))}
	for _, p := range plugins {
		r.plugins[p.ID()] = p
	}
	return r
}

// Lookup returns the engine registered under id, or nil.
func (r *Registry) Lookup(id string) Plugin {
	return r.plugins[id]
}

// IDs lists the registered game ids.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.plugins))
	for id := range r.plugins {
		ids = append(ids, id)
	}
	return ids
}
