package consolekit

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// Renderer names registered by the form engine. The schema a state refers
// to travels in the "schema" extra parameter.
const (
	RendererForm          = "Form"
	RendererEmbeddedForm  = "EmbeddedForm"
	RendererRepeatedEntry = "RepeatedEntry"
	RendererOptionForm    = "OptionForm"
)

const schemaParam = "schema"

// FormEngine registers the generic form renderers and owns the schemas they
// resolve field prefixes against. One engine serves every form on a page.
type FormEngine struct {
	schemas map[string]*Schema
}

// NewFormEngine creates an engine and registers its renderers with reg.
func NewFormEngine(reg *Registry) *FormEngine {
	e := &FormEngine{schemas: make(map[string]*Schema)}

	reg.Register(RendererForm, Hooks{
		Render: e.renderForm,
		Layout: e.layoutForm,
	})
	reg.Register(RendererEmbeddedForm, Hooks{
		Render:     e.renderEmbedded,
		RenderAjax: e.ajaxEmbedded,
	})
	reg.Register(RendererRepeatedEntry, Hooks{
		Render: e.renderEntry,
		Layout: e.layoutEntry,
	})
	reg.Register(RendererOptionForm, Hooks{
		Render:     e.renderOption,
		RenderAjax: e.ajaxOption,
	})
	return e
}

// AddSchema makes a parsed schema available to the engine's renderers.
func (e *FormEngine) AddSchema(s *Schema) {
	e.schemas[s.Name] = s
}

// NewForm instantiates a form for the named schema: a form container
// fragment owning a fresh store, plus the initial layout fetch. unique is
// the form's container id; parentID may be "" for a top-level form.
func (e *FormEngine) NewForm(doc *Document, bridge Bridge, bus *Bus, parentID, unique, schemaName string) (*Form, error) {
	s, ok := e.schemas[schemaName]
	if !ok {
		return nil, ErrNoSchema
	}

	var frag *Fragment
	if parentID == "" {
		frag = doc.Replace(unique, "")
		frag.Store = NewFormStore()
	} else {
		var err error
		frag, err = doc.CreateFormContainer(parentID, unique)
		if err != nil {
			return nil, err
		}
	}

	f := &Form{
		schema: s,
		Doc:    doc,
		Store:  frag.Store,
		Bus:    bus,
		Bridge: bridge,
		Unique: unique,
	}
	bridge.Layout(RendererForm, unique, f.state(""))
	return f, nil
}

func (e *FormEngine) schemaFor(st *State) (*Schema, bool) {
	s, ok := e.schemas[st.Param(schemaParam)]
	return s, ok
}

// renderForm renders every top-level field of the schema.
func (e *FormEngine) renderForm(st *State) templ.Component {
	s, ok := e.schemaFor(st)
	if !ok {
		return empty()
	}
	return RenderNodes(BuildForm(s), st.Store)
}

// layoutForm fires the synthetic change cascade for top-level one-of
// fields: natural change events only fire on user-driven selection changes,
// so the default option's sub-form must be fetched explicitly at first
// display.
func (e *FormEngine) layoutForm(st *State) {
	s, ok := e.schemaFor(st)
	if !ok {
		return
	}
	cascade(st, BuildForm(s))
}

// renderEmbedded renders an embedded sub-object's fields under st.Prefix.
func (e *FormEngine) renderEmbedded(st *State) templ.Component {
	s, ok := e.schemaFor(st)
	if !ok {
		return empty()
	}
	n, ok := NodeAt(s, st.Prefix)
	if !ok {
		return empty()
	}
	return RenderNodes(n.Children, st.Store)
}

// ajaxEmbedded marks the sub-form fetched, so collapse/expand cycles toggle
// visibility without re-fetching, and cascades nested one-of defaults.
// Safe to run repeatedly against re-fetched content.
func (e *FormEngine) ajaxEmbedded(st *State) {
	markFetched(st)
	s, ok := e.schemaFor(st)
	if !ok {
		return
	}
	if n, ok := NodeAt(s, st.Prefix); ok {
		cascade(st, n.Children)
	}
}

// renderEntry renders one repeated entry at st.Index.
func (e *FormEngine) renderEntry(st *State) templ.Component {
	s, ok := e.schemaFor(st)
	if !ok {
		return empty()
	}
	n, ok := NodeAt(s, st.Prefix)
	if !ok {
		return empty()
	}
	return RenderRepeatedEntry(n, st.Index, st.Store)
}

func (e *FormEngine) layoutEntry(st *State) {
	s, ok := e.schemaFor(st)
	if !ok {
		return
	}
	if n, ok := NodeAt(s, st.Prefix); ok {
		cascade(st, n.EntryNodes(st.Index))
	}
}

// renderOption renders the sub-form of the option named by st.Value.
func (e *FormEngine) renderOption(st *State) templ.Component {
	s, ok := e.schemaFor(st)
	if !ok {
		return empty()
	}
	n, ok := NodeAt(s, st.Prefix)
	if !ok {
		return empty()
	}
	return RenderNodes(n.OptionNodes(st.Value), st.Store)
}

func (e *FormEngine) ajaxOption(st *State) {
	markFetched(st)
	s, ok := e.schemaFor(st)
	if !ok {
		return
	}
	if n, ok := NodeAt(s, st.Prefix); ok {
		cascade(st, n.OptionNodes(st.Value))
	}
}

// cascade issues the option fetch for every one-of node in a freshly
// rendered set of siblings. Embedded siblings are not descended into: their
// sub-forms are still collapsed and cascade themselves when first expanded.
func cascade(st *State, nodes []*Node) {
	for _, n := range nodes {
		if n.Field.Kind == KindOneOf {
			selectOption(st, n, n.Field.DefaultOption())
		}
	}
}

// selectOption records the selection, tears down the previous option's
// namespace, and fetches the replacement sub-form. Shared by user-driven
// changes and the synthetic change at initial layout.
func selectOption(st *State, n *Node, option string) {
	if st.Store != nil {
		old := st.Store.GetString(n.Prefix)
		if old != "" && old != option {
			st.Store.ClearPrefix(JoinPrefix(n.Prefix, old))
		}
		st.Store.Set(n.Prefix, option)
	}

	sub := st.Clone()
	sub.Prefix = n.Prefix
	sub.Unique = n.Unique
	sub.Value = option
	st.Bridge.Update(RendererOptionForm, ContentID(n.Unique), sub, nil)
}

func markFetched(st *State) {
	if frag, ok := st.Doc.Fragment(ContentID(st.Unique)); ok {
		frag.Fetched = true
	}
}

func empty() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return nil
	})
}

// Form is one schema-bound form instance: the container fragment, its
// store, and the operations the bound controls perform.
type Form struct {
	schema *Schema

	Doc    *Document
	Store  *FormStore
	Bus    *Bus
	Bridge Bridge

	// Unique is the form container's fragment id and the root of every
	// derived control id.
	Unique string
}

// Schema returns the schema this form renders.
func (f *Form) Schema() *Schema {
	return f.schema
}

func (f *Form) state(prefix string) *State {
	return &State{
		Unique: prefixOr(prefix, f.Unique),
		Prefix: prefix,
		Params: map[string]string{schemaParam: f.schema.Name},
		Doc:    f.Doc,
		Store:  f.Store,
		Bus:    f.Bus,
		Bridge: f.Bridge,
	}
}

func prefixOr(prefix, fallback string) string {
	if prefix != "" {
		return prefix
	}
	return fallback
}

// EditScalar writes the current input value into the store and clears the
// field's unset marker. Called on every user edit.
func (f *Form) EditScalar(prefix string, value any) {
	f.Store.Set(prefix, value)
	if frag, ok := f.Doc.Fragment(ContentID(prefix)); ok {
		frag.Unset = false
	}
}

// ExpandEmbedded handles a click on an embedded field's opener. The first
// expand fetches the sub-form; once fetched, clicks only toggle visibility
// and the opener icon.
func (f *Form) ExpandEmbedded(prefix string) {
	id := ContentID(prefix)
	if frag, ok := f.Doc.Fragment(id); ok && frag.Fetched {
		f.Doc.Toggle(id)
		return
	}
	f.Bridge.Update(RendererEmbeddedForm, id, f.state(prefix), nil)
	f.Doc.Show(id)
}

// AddRepeatedEntry reserves the next slot of the repeated field at prefix,
// appends its container, and fetches the entry sub-form. Returns the
// assigned index.
func (f *Form) AddRepeatedEntry(prefix string) int {
	idx := f.Store.AddIndex(prefix)

	listID := ContentID(prefix)
	if _, ok := f.Doc.Fragment(listID); !ok {
		f.Doc.Replace(listID, "")
	}
	entryID := EntryID(prefix, idx)
	if _, err := f.Doc.CreateChild(listID, entryID); err != nil {
		return idx
	}

	st := f.state(prefix)
	st.Index = idx
	f.Bridge.Layout(RendererRepeatedEntry, entryID, st)
	return idx
}

// RemoveRepeatedEntry detaches the entry container at idx and purges every
// store key in that slot's namespace. The count key is left untouched:
// removed indices are never reused.
func (f *Form) RemoveRepeatedEntry(prefix string, idx int) {
	f.Doc.Remove(EntryID(prefix, idx))
	f.Store.ClearPrefix(JoinPrefix(prefix, strconv.Itoa(idx)))
}

// SelectOption handles a one-of picker change: it tears down the previous
// option's values and fetches the chosen option's sub-form.
func (f *Form) SelectOption(prefix, option string) {
	n, ok := NodeAt(f.schema, prefix)
	if !ok || n.Field.Kind != KindOneOf {
		return
	}
	selectOption(f.state(prefix), n, option)
}

// Snapshot returns the form's current values for submission.
func (f *Form) Snapshot() map[string]any {
	return f.Store.Snapshot()
}
