// Package theme persists the light/dark preference.
package theme

// Theme is a colour scheme.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// StorageKey is the key the preference is persisted under.
const StorageKey = "theme"

// Storage persists string values across sessions.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// Preference reads and writes the theme through a Storage, falling back to
// the system preference when nothing valid is stored.
type Preference struct {
	store  Storage
	system func() Theme
}

// NewPreference returns a Preference over store. system reports the
// platform's preferred scheme; nil means Light.
func NewPreference(store Storage, system func() Theme) *Preference {
	if system == nil {
		system = func() Theme { return Light }
	}
	return &Preference{store: store, system: system}
}

// Parse returns the Theme named by s.
func Parse(s string) (Theme, bool) {
	switch Theme(s) {
	case Light, Dark:
		return Theme(s), true
	}
	return "", false
}

// Read returns the persisted theme or the system preference.
func (p *Preference) Read() Theme {
	if v, ok := p.store.Get(StorageKey); ok {
		if t, ok := Parse(v); ok {
			return t
		}
	}
	return p.system()
}

// Write persists t.
func (p *Preference) Write(t Theme) {
	p.store.Set(StorageKey, string(t))
}

// Toggle flips the current theme, persists and returns it.
func (p *Preference) Toggle() Theme {
	next := p.Read().Opposite()
	p.Write(next)
	return next
}

// Opposite returns the other theme.
func (t Theme) Opposite() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}
