package consolekit

import (
	"fmt"
	"strings"
	"testing"
)

func newHuntForm(t *testing.T) (*Console, *Form) {
	t.Helper()
	console := NewConsole()
	console.AddSchema(parseHuntSchema(t))

	form, err := console.NewForm("", "hunt_form", "hunt")
	if err != nil {
		t.Fatalf("NewForm: %v", err)
	}
	return console, form
}

func TestNewFormRendersTopLevelFields(t *testing.T) {
	console, _ := newHuntForm(t)

	frag, ok := console.Doc.Fragment("hunt_form")
	if !ok {
		t.Fatal("form container missing")
	}
	for _, id := range []string{
		`id="content_description"`,
		`id="add_rule"`,
		`id="output_picker"`,
	} {
		if !strings.Contains(frag.HTML, id) {
			t.Errorf("form HTML missing %s", id)
		}
	}
}

func TestOneOfDefaultCascadesAtLayout(t *testing.T) {
	console, form := newHuntForm(t)

	// The synthetic change at initial layout must render the default
	// option's sub-form immediately, without a user-driven change.
	if got := form.Store.GetString("output"); got != "collection" {
		t.Errorf("output selection = %q, want default %q", got, "collection")
	}
	frag, ok := console.Doc.Fragment(ContentID("output"))
	if !ok {
		t.Fatal("option content fragment missing after layout cascade")
	}
	if !strings.Contains(frag.HTML, `name="output-collection-collection_name"`) {
		t.Errorf("default option sub-form not rendered: %q", frag.HTML)
	}
}

func TestSelectOptionTearsDownPreviousNamespace(t *testing.T) {
	console, form := newHuntForm(t)

	form.EditScalar("output-collection-collection_name", "results")
	form.SelectOption("output", "email")

	if _, ok := form.Store.Get("output-collection-collection_name"); ok {
		t.Error("previous option's value leaked across selection change")
	}
	if got := form.Store.GetString("output"); got != "email" {
		t.Errorf("selection = %q, want %q", got, "email")
	}
	frag, _ := console.Doc.Fragment(ContentID("output"))
	if !strings.Contains(frag.HTML, `name="output-email-address"`) {
		t.Errorf("replacement sub-form not rendered: %q", frag.HTML)
	}
}

func TestExpandEmbeddedFetchesOnce(t *testing.T) {
	console, form := newHuntForm(t)

	form.ExpandEmbedded("limits")

	id := ContentID("limits")
	frag, ok := console.Doc.Fragment(id)
	if !ok {
		t.Fatal("embedded content fragment missing after expand")
	}
	if !frag.Fetched {
		t.Error("fragment not marked fetched after first expand")
	}
	if !frag.Visible || !frag.IconOpen {
		t.Errorf("visible/icon = %v/%v after expand, want true/true", frag.Visible, frag.IconOpen)
	}
	if !strings.Contains(frag.HTML, `name="limits-client_limit"`) {
		t.Errorf("sub-form not rendered: %q", frag.HTML)
	}

	fetchedHTML := frag.HTML

	// Collapse and re-expand must toggle visibility without re-fetching.
	form.ExpandEmbedded("limits")
	if frag.Visible || frag.IconOpen {
		t.Errorf("visible/icon = %v/%v after collapse, want false/false", frag.Visible, frag.IconOpen)
	}
	form.ExpandEmbedded("limits")
	if !frag.Visible {
		t.Error("fragment hidden after re-expand")
	}
	if frag.HTML != fetchedHTML {
		t.Error("content re-fetched on show/hide toggle")
	}
}

func TestEditScalarClearsUnsetMarker(t *testing.T) {
	console, form := newHuntForm(t)

	frag := console.Doc.Replace(ContentID("description"), "")
	frag.Unset = true

	form.EditScalar("description", "ransomware triage")

	if got := form.Store.GetString("description"); got != "ransomware triage" {
		t.Errorf("stored value = %q", got)
	}
	if frag.Unset {
		t.Error("unset marker not cleared on explicit edit")
	}
}

func TestRepeatedAddAssignsFrozenSlots(t *testing.T) {
	console, form := newHuntForm(t)

	for want := 0; want < 3; want++ {
		if got := form.AddRepeatedEntry("rule"); got != want {
			t.Errorf("add %d: index = %d, want %d", want+1, got, want)
		}
	}
	if c := form.Store.Count("rule"); c != 3 {
		t.Errorf("count = %d, want 3", c)
	}

	// Each entry fragment exists with its remove control and fields.
	for i := 0; i < 3; i++ {
		frag, ok := console.Doc.Fragment(EntryID("rule", i))
		if !ok {
			t.Fatalf("entry %d fragment missing", i)
		}
		if !strings.Contains(frag.HTML, fmt.Sprintf(`id="remove_rule-%d"`, i)) {
			t.Errorf("entry %d missing remove control: %q", i, frag.HTML)
		}
	}

	// Entry one-of fields cascade their defaults too.
	if got := form.Store.GetString("rule-0-mode"); got != "regex" {
		t.Errorf("entry oneof default = %q, want regex", got)
	}
}

func TestRemoveRepeatedEntry(t *testing.T) {
	console, form := newHuntForm(t)

	for i := 0; i < 3; i++ {
		idx := form.AddRepeatedEntry("rule")
		form.EditScalar(fmt.Sprintf("rule-%d-attribute", idx), fmt.Sprintf("attr%d", idx))
	}

	form.RemoveRepeatedEntry("rule", 1)

	if _, ok := console.Doc.Fragment(EntryID("rule", 1)); ok {
		t.Error("entry 1 fragment still in document")
	}
	for _, kept := range []string{"rule-0-attribute", "rule-2-attribute"} {
		if _, ok := form.Store.Get(kept); !ok {
			t.Errorf("sibling key %q removed", kept)
		}
	}
	for _, k := range form.Store.Keys() {
		if strings.HasPrefix(k, "rule-1-") || k == "rule-1" {
			t.Errorf("stale key %q after removal", k)
		}
	}
	if c := form.Store.Count("rule"); c != 3 {
		t.Errorf("count = %d, want 3 (removal never decrements)", c)
	}

	// The next add takes a fresh slot, not the removed one.
	if got := form.AddRepeatedEntry("rule"); got != 3 {
		t.Errorf("index after remove = %d, want 3", got)
	}
}

func TestFormSnapshot(t *testing.T) {
	_, form := newHuntForm(t)

	form.EditScalar("description", "lateral movement hunt")
	idx := form.AddRepeatedEntry("rule")
	form.EditScalar(fmt.Sprintf("rule-%d-attribute", idx), "hostname")

	snap := form.Snapshot()
	if snap["description"] != "lateral movement hunt" {
		t.Errorf("snapshot description = %v", snap["description"])
	}
	if snap["rule-0-attribute"] != "hostname" {
		t.Errorf("snapshot rule attribute = %v", snap["rule-0-attribute"])
	}
	if snap[CountKey("rule")] != 1 {
		t.Errorf("snapshot count = %v, want 1", snap[CountKey("rule")])
	}
}

func TestNewFormUnknownSchema(t *testing.T) {
	console := NewConsole()
	if _, err := console.NewForm("", "f", "missing"); err == nil {
		t.Error("NewForm succeeded for unregistered schema")
	}
}
