package plugin

import (
	"strings"
	"sync"

	"github.com/amarbel-llc/mill/internal/millerr"
)

// Registry maps file extension to language plugin and exposes
// capability-gated accessors. Registration happens only at startup;
// lookups are read-mostly.
type Registry struct {
	mu      sync.RWMutex
	byExt   map[string]LanguagePlugin
	ordered []LanguagePlugin
}

func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]LanguagePlugin)}
}

// Register adds a plugin. If multiple plugins claim the same extension,
// the first registered wins — later registrations for that extension are
// recorded but never selected.
func (r *Registry) Register(p LanguagePlugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ordered = append(r.ordered, p)
	for _, ext := range p.Metadata().Extensions {
		ext = normalizeExt(ext)
		if _, exists := r.byExt[ext]; exists {
			continue
		}
		r.byExt[ext] = p
	}
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ForExtension returns the plugin registered for ext, or UnsupportedLanguage.
func (r *Registry) ForExtension(ext string) (LanguagePlugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byExt[normalizeExt(ext)]
	if !ok {
		return nil, millerr.UnsupportedLanguageErr(ext)
	}
	return p, nil
}

// All returns every registered plugin in registration order.
func (r *Registry) All() []LanguagePlugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]LanguagePlugin, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Extensions returns the union of extensions across all registered plugins.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	return out
}
