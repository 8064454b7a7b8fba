package consolekit

// Fragment is a unit of rendered content at a deterministic id. Fragments
// form a tree: removing one removes its subtree, and a fragment created as a
// form container owns the FormStore for every field rendered beneath it.
type Fragment struct {
	ID      string
	HTML    string
	Visible bool

	// Fetched marks content that has already been loaded once, so
	// show/hide toggles do not re-fetch it. Set by RenderAjax hooks.
	Fetched bool

	// IconOpen is the expander icon state for collapsible fragments. It is
	// kept consistent with Visible by Toggle.
	IconOpen bool

	// Unset marks a scalar input still holding its untouched default.
	// Cleared on the first explicit edit.
	Unset bool

	// Modal and RestoreOnShow model dialog behavior. A modal force-hidden
	// by the ACL controller loses its restore-on-show flag.
	Modal         bool
	RestoreOnShow bool

	// Store is non-nil when this fragment is a form container.
	Store *FormStore

	parent   string
	children map[string]struct{}
}

// Document is the explicit page model: fragments keyed by id plus the
// page-wide navigation target. It replaces DOM traversal with direct
// lookups.
//
// A document belongs to a single page and is mutated only from its single
// event-handling context; every handler runs to completion before the next
// event is processed, so no locking is involved.
type Document struct {
	frags map[string]*Fragment

	// Location is set by Navigate; "" until a full-page navigation is
	// requested.
	Location string
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{frags: make(map[string]*Fragment)}
}

// Fragment returns the fragment at id.
func (d *Document) Fragment(id string) (*Fragment, bool) {
	f, ok := d.frags[id]
	return f, ok
}

// Replace creates or replaces the fragment at id with html. A new fragment
// is inserted at the top level, visible; replacing keeps position, children
// and flags. Returns the fragment.
func (d *Document) Replace(id, html string) *Fragment {
	f, ok := d.frags[id]
	if !ok {
		f = &Fragment{ID: id, Visible: true, children: make(map[string]struct{})}
		d.frags[id] = f
	}
	f.HTML = html
	return f
}

// CreateChild inserts an empty fragment under parentID. Returns
// ErrNoFragment if the parent does not exist.
func (d *Document) CreateChild(parentID, id string) (*Fragment, error) {
	p, ok := d.frags[parentID]
	if !ok {
		return nil, ErrNoFragment
	}
	f := &Fragment{ID: id, Visible: true, parent: parentID, children: make(map[string]struct{})}
	d.frags[id] = f
	p.children[id] = struct{}{}
	return f, nil
}

// CreateFormContainer inserts a child fragment owning a fresh FormStore.
// The store lives exactly as long as the fragment: removing the container
// discards every key.
func (d *Document) CreateFormContainer(parentID, id string) (*Fragment, error) {
	f, err := d.CreateChild(parentID, id)
	if err != nil {
		return nil, err
	}
	f.Store = NewFormStore()
	return f, nil
}

// Remove detaches the fragment at id and its whole subtree, discarding any
// form stores they own. Absent ids are ignored.
func (d *Document) Remove(id string) {
	f, ok := d.frags[id]
	if !ok {
		return
	}
	for child := range f.children {
		d.Remove(child)
	}
	if f.parent != "" {
		if p, ok := d.frags[f.parent]; ok {
			delete(p.children, id)
		}
	}
	delete(d.frags, id)
}

// StoreFor returns the store of the nearest form container enclosing id,
// walking the parent chain. Used once at dispatch to attach the explicit
// store handle to a State; handlers never traverse themselves.
func (d *Document) StoreFor(id string) *FormStore {
	for cur := id; cur != ""; {
		f, ok := d.frags[cur]
		if !ok {
			return nil
		}
		if f.Store != nil {
			return f.Store
		}
		cur = f.parent
	}
	return nil
}

// Show makes the fragment at id visible.
func (d *Document) Show(id string) {
	if f, ok := d.frags[id]; ok {
		f.Visible = true
		f.IconOpen = true
	}
}

// Hide makes the fragment at id invisible.
func (d *Document) Hide(id string) {
	if f, ok := d.frags[id]; ok {
		f.Visible = false
		f.IconOpen = false
	}
}

// Toggle flips visibility of the fragment at id, keeping the expander icon
// consistent, and reports the new visibility.
func (d *Document) Toggle(id string) bool {
	f, ok := d.frags[id]
	if !ok {
		return false
	}
	f.Visible = !f.Visible
	f.IconOpen = f.Visible
	return f.Visible
}

// Navigate records a full-page navigation to url. The page owning this
// document is expected to reload; no fragment state survives that.
func (d *Document) Navigate(url string) {
	d.Location = url
}

// HideModalsExcept force-hides every visible modal other than keep and
// demotes its restore-on-show behavior. The ACL controller calls this to
// enforce its single-dialog invariant in its own transition logic.
func (d *Document) HideModalsExcept(keep string) {
	for id, f := range d.frags {
		if id == keep || !f.Modal || !f.Visible {
			continue
		}
		f.RestoreOnShow = false
		f.Visible = false
		f.IconOpen = false
	}
}
