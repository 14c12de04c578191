package pointer

type registration struct {
	el    Element
	enter Unsubscribe
	leave Unsubscribe
}

// Registry tracks the hover listeners attached to interactive elements.
// Every element in the registry holds exactly one enter and one leave
// listener.
type Registry struct {
	entries map[string]registration
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registration)}
}

// Sync makes elements the registered set. Each element's previous listeners
// are removed before new ones are added, and elements missing from the list
// lose theirs.
func (r *Registry) Sync(elements []Element, enter, leave Handler) {
	seen := make(map[string]bool, len(elements))
	for _, el := range elements {
		id := el.ID()
		if seen[id] {
			continue
		}
		seen[id] = true

		if old, ok := r.entries[id]; ok {
			old.enter()
			old.leave()
		}
		r.entries[id] = registration{
			el:    el,
			enter: el.Subscribe(Enter, enter),
			leave: el.Subscribe(Leave, leave),
		}
	}

	for id, reg := range r.entries {
		if seen[id] {
			continue
		}
		reg.enter()
		reg.leave()
		delete(r.entries, id)
	}
}

// Clear removes every listener the registry added.
func (r *Registry) Clear() {
	for id, reg := range r.entries {
		reg.enter()
		reg.leave()
		delete(r.entries, id)
	}
}

// Len returns the number of registered elements.
func (r *Registry) Len() int {
	return len(r.entries)
}
