package consolekit

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func staticRenderer(content string) Hooks {
	return Hooks{
		Render: func(st *State) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				_, err := io.WriteString(w, content)
				return err
			})
		},
	}
}

func TestLayoutInstallsFragmentThenFiresHook(t *testing.T) {
	console := NewConsole()

	var order []string
	console.Registry.Register("Panel", Hooks{
		Render: func(st *State) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				order = append(order, "render")
				_, err := io.WriteString(w, "panel content")
				return err
			})
		},
		Layout: func(st *State) {
			order = append(order, "layout")
			if _, ok := st.Doc.Fragment("panel"); !ok {
				t.Error("Layout fired before fragment existed")
			}
		},
	})

	console.Bridge.Layout("Panel", "panel", &State{})

	if strings.Join(order, ",") != "render,layout" {
		t.Errorf("order = %v, want render then layout", order)
	}
	frag, _ := console.Doc.Fragment("panel")
	if frag.HTML != "panel content" {
		t.Errorf("fragment HTML = %q", frag.HTML)
	}
}

func TestUpdateFiresRenderAjaxThenOnComplete(t *testing.T) {
	console := NewConsole()

	var order []string
	hooks := staticRenderer("refreshed")
	hooks.RenderAjax = func(st *State) { order = append(order, "ajax") }
	console.Registry.Register("Panel", hooks)

	console.Bridge.Update("Panel", "panel", &State{}, func() {
		order = append(order, "complete")
	})

	if strings.Join(order, ",") != "ajax,complete" {
		t.Errorf("order = %v, want ajax then complete", order)
	}
}

func TestUnknownRendererPublishesMessage(t *testing.T) {
	console := NewConsole()

	var messages []string
	Subscribe(console.Bus, TopicMessages, "listener", func(m string) {
		messages = append(messages, m)
	})

	console.Bridge.Layout("Nope", "target", &State{})

	if len(messages) != 1 || !strings.Contains(messages[0], "Nope") {
		t.Errorf("messages = %v, want one naming the renderer", messages)
	}
	if _, ok := console.Doc.Fragment("target"); ok {
		t.Error("fragment created despite unknown renderer")
	}
}

func TestDeferredCompletionsApplyInArrivalOrder(t *testing.T) {
	console := NewConsole()
	console.Bridge.Deferred = true

	console.Registry.Register("Panel", Hooks{
		Render: func(st *State) templ.Component {
			value := st.Value
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				_, err := io.WriteString(w, value)
				return err
			})
		},
	})

	console.Bridge.Layout("Panel", "panel", &State{Value: "first"})
	console.Bridge.Layout("Panel", "panel", &State{Value: "second"})

	if _, ok := console.Doc.Fragment("panel"); ok {
		t.Fatal("deferred fetch applied before Flush")
	}

	console.Bridge.Flush()

	// No fencing: the second in-flight fetch did not cancel the first;
	// both applied and the last arrival overwrote the fragment.
	frag, ok := console.Doc.Fragment("panel")
	if !ok {
		t.Fatal("fragment missing after Flush")
	}
	if frag.HTML != "second" {
		t.Errorf("fragment HTML = %q, want last arrival to win", frag.HTML)
	}
}

func TestBridgeAttachesStoreHandle(t *testing.T) {
	console := NewConsole()

	var seen *FormStore
	hooks := staticRenderer("x")
	hooks.Layout = func(st *State) { seen = st.Store }
	console.Registry.Register("Panel", hooks)

	container, err := console.Doc.CreateFormContainer(console.Doc.Replace("root", "").ID, "form")
	if err != nil {
		t.Fatalf("CreateFormContainer: %v", err)
	}
	if _, err := console.Doc.CreateChild("form", "form_body"); err != nil {
		t.Fatalf("CreateChild: %v", err)
	}

	console.Bridge.Layout("Panel", "form_body", &State{})

	if seen != container.Store {
		t.Error("state not bound to the nearest enclosing form store")
	}
}
