package consolekit

import "testing"

func TestReplaceCreatesThenKeepsFlags(t *testing.T) {
	d := NewDocument()

	frag := d.Replace("panel", "one")
	if !frag.Visible {
		t.Error("new fragment not visible")
	}
	frag.Fetched = true

	again := d.Replace("panel", "two")
	if again != frag {
		t.Error("Replace created a new fragment for an existing id")
	}
	if again.HTML != "two" {
		t.Errorf("HTML = %q, want %q", again.HTML, "two")
	}
	if !again.Fetched {
		t.Error("Replace dropped the fetched flag")
	}
}

func TestRemoveSubtree(t *testing.T) {
	d := NewDocument()
	d.Replace("list", "")
	d.CreateChild("list", "list-0")
	d.CreateChild("list-0", "list-0-name")
	d.CreateChild("list", "list-1")

	d.Remove("list-0")

	for _, gone := range []string{"list-0", "list-0-name"} {
		if _, ok := d.Fragment(gone); ok {
			t.Errorf("fragment %q survived subtree removal", gone)
		}
	}
	if _, ok := d.Fragment("list-1"); !ok {
		t.Error("sibling fragment removed")
	}
	if _, ok := d.Fragment("list"); !ok {
		t.Error("parent fragment removed")
	}
}

func TestCreateChildUnknownParent(t *testing.T) {
	d := NewDocument()
	if _, err := d.CreateChild("ghost", "child"); err == nil {
		t.Error("CreateChild succeeded under a missing parent")
	}
}

func TestStoreForWalksToNearestContainer(t *testing.T) {
	d := NewDocument()
	d.Replace("page", "")
	outer, _ := d.CreateFormContainer("page", "outer_form")
	d.CreateChild("outer_form", "section")
	inner, _ := d.CreateFormContainer("section", "inner_form")
	d.CreateChild("inner_form", "field")

	if got := d.StoreFor("field"); got != inner.Store {
		t.Error("field not scoped to the inner form store")
	}
	if got := d.StoreFor("section"); got != outer.Store {
		t.Error("section not scoped to the outer form store")
	}
	if got := d.StoreFor("page"); got != nil {
		t.Error("store found outside any form container")
	}
}

func TestToggleTracksIcon(t *testing.T) {
	d := NewDocument()
	d.Replace("content_limits", "")

	if visible := d.Toggle("content_limits"); visible {
		t.Error("first toggle of a visible fragment should hide it")
	}
	frag, _ := d.Fragment("content_limits")
	if frag.IconOpen {
		t.Error("icon open while hidden")
	}

	d.Toggle("content_limits")
	if !frag.Visible || !frag.IconOpen {
		t.Errorf("visible/icon = %v/%v after second toggle", frag.Visible, frag.IconOpen)
	}
}

func TestHideModalsExcept(t *testing.T) {
	d := NewDocument()

	a := d.Replace("modal_a", "")
	a.Modal, a.Visible, a.RestoreOnShow = true, true, true
	b := d.Replace("modal_b", "")
	b.Modal, b.Visible = true, true
	plain := d.Replace("panel", "")
	plain.Visible = true

	d.HideModalsExcept("modal_b")

	if a.Visible || a.RestoreOnShow {
		t.Errorf("modal_a visible=%v restore=%v, want hidden and demoted", a.Visible, a.RestoreOnShow)
	}
	if !b.Visible {
		t.Error("kept modal was hidden")
	}
	if !plain.Visible {
		t.Error("non-modal fragment was hidden")
	}
}

func TestNavigate(t *testing.T) {
	d := NewDocument()
	d.Navigate("/")
	if d.Location != "/" {
		t.Errorf("Location = %q, want /", d.Location)
	}
}
