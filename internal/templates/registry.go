// Package templates binds template ids to renderers. Lookup is
// case-insensitive and never fails: unknown ids resolve to the default
// binding.
package templates

import (
	"fmt"
	"io"
	"sync"

	"github.com/jonathan/resume-builder/internal/types"
)

// Binding pairs a catalog record with the renderer that draws it
type Binding struct {
	Template types.Template
	Renderer Renderer
}

// Render draws doc with this binding's accent color
func (b Binding) Render(w io.Writer, doc types.ContentDocument, photoRef string) error {
	return b.Renderer.Render(w, RenderInput{
		Document:    doc,
		PhotoRef:    photoRef,
		AccentColor: b.Template.AccentColor,
	})
}

// Registry maps template ids to bindings. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	bindings  map[string]Binding
	order     []string
	defaultID string
}

// NewRegistry builds a registry from a catalog, binding every entry to its
// built-in layout. A nil catalog means the embedded default.
func NewRegistry(catalog *Catalog) (*Registry, error) {
	if catalog == nil {
		var err error
		catalog, err = DefaultCatalog()
		if err != nil {
			return nil, err
		}
	}

	r := &Registry{
		bindings:  make(map[string]Binding, len(catalog.Templates)),
		defaultID: normalizeID(catalog.Default),
	}

	renderers := make(map[string]Renderer)
	for _, entry := range catalog.Templates {
		layoutName := normalizeID(entry.Layout)
		if layoutName == "" {
			layoutName = normalizeID(entry.ID)
		}
		renderer, ok := renderers[layoutName]
		if !ok {
			parsed, err := NewLayoutRenderer(layoutName)
			if err != nil {
				return nil, fmt.Errorf("template %s: %w", entry.ID, err)
			}
			renderer = parsed
			renderers[layoutName] = renderer
		}
		if err := r.Register(entry.Template, renderer); err != nil {
			return nil, err
		}
	}
	if _, ok := r.bindings[r.defaultID]; !ok {
		return nil, &TemplateError{Message: fmt.Sprintf("default template %q is not registered", r.defaultID)}
	}
	return r, nil
}

// Register adds or replaces a binding. The first registered template becomes
// the default when none was configured.
func (r *Registry) Register(t types.Template, renderer Renderer) error {
	t.ID = normalizeID(t.ID)
	if t.ID == "" {
		return &TemplateError{Message: "template id is required"}
	}
	if renderer == nil {
		return &TemplateError{Message: fmt.Sprintf("template %s: renderer is required", t.ID)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bindings[t.ID]; !exists {
		r.order = append(r.order, t.ID)
	}
	r.bindings[t.ID] = Binding{Template: t, Renderer: renderer}
	if r.defaultID == "" {
		r.defaultID = t.ID
	}
	return nil
}

// Resolve returns the binding for id, ignoring case. Unknown or empty ids
// resolve to the default binding.
func (r *Registry) Resolve(id string) Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if b, ok := r.bindings[normalizeID(id)]; ok {
		return b
	}
	return r.bindings[r.defaultID]
}

// Lookup reports whether id names a registered template
func (r *Registry) Lookup(id string) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bindings[normalizeID(id)]
	return b, ok
}

// DefaultID returns the id used for unknown templates
func (r *Registry) DefaultID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultID
}

// Templates returns the catalog records in registration order
func (r *Registry) Templates() []types.Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.bindings[id].Template)
	}
	return out
}
