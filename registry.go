package consolekit

import (
	"fmt"
	"sync"

	"github.com/a-h/templ"
)

// Hooks is the set of optional lifecycle handlers a renderer exposes.
// Renderers implement only the subset they need; missing hooks are no-ops
// at dispatch.
type Hooks struct {
	// Render produces the fragment content for a state. It is the
	// server-side renderer half of the bridge contract and must be free of
	// side effects on the Document.
	Render func(st *State) templ.Component

	// Layout is invoked once when a fragment for this renderer is first
	// inserted. It binds controls and may read st.Value to pre-populate
	// the form store.
	Layout func(st *State)

	// RenderAjax is invoked after an asynchronous fragment refresh. It
	// must be idempotent (safe against re-fetched content), re-bind
	// handlers on the new nodes, and mark the fragment fetched so mere
	// show/hide toggles do not re-fetch.
	RenderAjax func(st *State)

	// RefreshFromHash re-derives a layout purely from URL fragment state,
	// supporting deep links. It is not part of the form-tree recursion.
	RefreshFromHash func(st *State)

	// AccessOk is notification-only, fired after an approval grant so the
	// renderer can replay a previously blocked action. st.Silent requests
	// a replay without follow-up notifications.
	AccessOk func(st *State)
}

// Registry maps renderer names to their hooks. Dispatch is by explicit
// lookup; registration of a duplicate name panics, catching collisions at
// startup rather than during a request.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Hooks
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Hooks)}
}

// Register stores hooks under name. Panics on a duplicate name.
func (r *Registry) Register(name string, hooks Hooks) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[name]; exists {
		panic(fmt.Sprintf("consolekit: renderer %q registered twice", name))
	}
	r.renderers[name] = hooks
}

// Lookup returns the hooks registered under name.
func (r *Registry) Lookup(name string) (Hooks, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.renderers[name]
	return h, ok
}

// Names returns the registered renderer names in unspecified order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.renderers))
	for n := range r.renderers {
		names = append(names, n)
	}
	return names
}

// FireLayout invokes name's Layout hook, if any.
func (r *Registry) FireLayout(name string, st *State) {
	if h, ok := r.Lookup(name); ok && h.Layout != nil {
		h.Layout(st)
	}
}

// FireRenderAjax invokes name's RenderAjax hook, if any.
func (r *Registry) FireRenderAjax(name string, st *State) {
	if h, ok := r.Lookup(name); ok && h.RenderAjax != nil {
		h.RenderAjax(st)
	}
}

// FireRefreshFromHash invokes name's RefreshFromHash hook, if any.
func (r *Registry) FireRefreshFromHash(name string, st *State) {
	if h, ok := r.Lookup(name); ok && h.RefreshFromHash != nil {
		h.RefreshFromHash(st)
	}
}

// FireAccessOk invokes name's AccessOk hook, if any.
func (r *Registry) FireAccessOk(name string, st *State) {
	if h, ok := r.Lookup(name); ok && h.AccessOk != nil {
		h.AccessOk(st)
	}
}
