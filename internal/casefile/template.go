package casefile

import (
	"embed"
	"fmt"
	"slices"
	"sync"
)

//go:embed templates/*.c
var builtinTemplates embed.FS

// DefaultTemplate is used by case files without a "Template:" header.
const DefaultTemplate = "generic"

// Template wraps the code of one section into a complete translation unit.
type Template struct {
	Name string
	Head string
	Tail string
}

// Registry holds the templates case files may name.
// Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]Template
}

// NewRegistry returns a registry holding the built-in templates
// ("gvariant" and "generic").
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]Template)}
	for _, name := range []string{"gvariant", "generic"} {
		head, err := builtinTemplates.ReadFile("templates/" + name + ".head.c")
		if err != nil {
			panic(fmt.Errorf("casefile: missing built-in template %s: %w", name, err))
		}
		tail, err := builtinTemplates.ReadFile("templates/" + name + ".tail.c")
		if err != nil {
			panic(fmt.Errorf("casefile: missing built-in template %s: %w", name, err))
		}
		r.templates[name] = Template{Name: name, Head: string(head), Tail: string(tail)}
	}
	return r
}

// Add registers t, replacing a template of the same name.
func (r *Registry) Add(t Template) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.Name] = t
}

// Lookup returns the template called name.
func (r *Registry) Lookup(name string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[name]
	return t, ok
}

// Names returns the registered template names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.templates)
}
