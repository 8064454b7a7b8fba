package consolekit

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// The rendering layer turns form nodes into fragment markup. Every control
// id follows the deterministic derivation in ids.go; nothing locates nodes
// structurally.

// RenderNodes renders a slice of sibling nodes against the current store
// contents.
func RenderNodes(nodes []*Node, store *FormStore) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sb strings.Builder
		for _, n := range nodes {
			renderNode(&sb, n, store)
		}
		_, err := io.WriteString(w, sb.String())
		return err
	})
}

// RenderNode renders a single node.
func RenderNode(n *Node, store *FormStore) templ.Component {
	return RenderNodes([]*Node{n}, store)
}

func renderNode(sb *strings.Builder, n *Node, store *FormStore) {
	switch n.Field.Kind {
	case KindScalar:
		renderScalar(sb, n, store)
	case KindEmbedded:
		renderEmbedded(sb, n)
	case KindRepeated:
		renderRepeated(sb, n)
	case KindOneOf:
		renderOneOf(sb, n, store)
	}
}

// renderScalar emits one input bound to the node's prefix. Inputs carry the
// "unset" marker class until the value is explicitly set, distinguishing an
// untouched default from a deliberate choice.
func renderScalar(sb *strings.Builder, n *Node, store *FormStore) {
	value := n.Field.Default
	unset := ` class="unset"`
	if store != nil {
		if v, ok := store.Get(n.Prefix); ok {
			value = fmt.Sprintf("%v", v)
			unset = ""
		}
	}

	label(sb, n)
	switch n.Field.Type {
	case "bool":
		checked := ""
		if value == "true" {
			checked = " checked"
		}
		fmt.Fprintf(sb, `<input type="checkbox" id=%q name=%q%s%s>`,
			ContentID(n.Unique), n.Prefix, unset, checked)
	case "enum":
		fmt.Fprintf(sb, `<select id=%q name=%q%s>`, ContentID(n.Unique), n.Prefix, unset)
		for _, e := range n.Field.Enum {
			selected := ""
			if e == value {
				selected = " selected"
			}
			fmt.Fprintf(sb, `<option value=%q%s>%s</option>`, html.EscapeString(e), selected, html.EscapeString(e))
		}
		sb.WriteString(`</select>`)
	default:
		fmt.Fprintf(sb, `<input type="text" id=%q name=%q value=%q%s>`,
			ContentID(n.Unique), n.Prefix, html.EscapeString(value), unset)
	}
}

// renderEmbedded emits the expander control and an empty, collapsed content
// container. The sub-form is fetched on first expand, not here.
func renderEmbedded(sb *strings.Builder, n *Node) {
	label(sb, n)
	fmt.Fprintf(sb, `<a id=%q class="opener closed" href="#"></a>`, "open_"+n.Unique)
	fmt.Fprintf(sb, `<div id=%q style="display: none"></div>`, ContentID(n.Unique))
}

// renderRepeated emits the entry container and the add control. Entries are
// appended one at a time by AddRepeatedEntry; none exist initially.
func renderRepeated(sb *strings.Builder, n *Node) {
	label(sb, n)
	fmt.Fprintf(sb, `<div id=%q></div>`, ContentID(n.Unique))
	fmt.Fprintf(sb, `<button id=%q>Add %s</button>`, AddID(n.Unique), html.EscapeString(displayName(n)))
}

// RenderRepeatedEntry emits the content of one repeated entry: the remove
// control followed by the entry's fields under their slot prefix.
func RenderRepeatedEntry(n *Node, idx int, store *FormStore) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sb strings.Builder
		entry := EntryID(n.Unique, idx)
		fmt.Fprintf(&sb, `<button id=%q>Remove</button>`, RemoveID(entry))
		for _, child := range n.EntryNodes(idx) {
			renderNode(&sb, child, store)
		}
		_, err := io.WriteString(w, sb.String())
		return err
	})
}

// renderOneOf emits the option picker and the content container for the
// selected option's sub-form. The picker reflects the stored selection, or
// the schema default before any change.
func renderOneOf(sb *strings.Builder, n *Node, store *FormStore) {
	selected := n.Field.DefaultOption()
	if store != nil {
		if v := store.GetString(n.Prefix); v != "" {
			selected = v
		}
	}

	label(sb, n)
	fmt.Fprintf(sb, `<select id=%q name=%q>`, PickerID(n.Prefix), n.Prefix)
	for i := range n.Field.Options {
		o := &n.Field.Options[i]
		sel := ""
		if o.Name == selected {
			sel = " selected"
		}
		text := o.Label
		if text == "" {
			text = o.Name
		}
		fmt.Fprintf(sb, `<option value=%q%s>%s</option>`, html.EscapeString(o.Name), sel, html.EscapeString(text))
	}
	sb.WriteString(`</select>`)
	fmt.Fprintf(sb, `<div id=%q></div>`, ContentID(n.Unique))
}

func label(sb *strings.Builder, n *Node) {
	fmt.Fprintf(sb, `<label for=%q>%s</label>`, ContentID(n.Unique), html.EscapeString(displayName(n)))
}

func displayName(n *Node) string {
	if n.Field.Label != "" {
		return n.Field.Label
	}
	return n.Field.Name
}

// RenderToString renders a templ component to a string. Used by hooks and
// tests that need fragment markup outside an HTTP response.
func RenderToString(c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(context.Background(), &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
