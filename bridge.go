package consolekit

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
)

// Bridge is the fragment request pair backed by the server-side renderer.
//
// Layout replaces or creates the fragment at targetID with content rendered
// for renderer given st, then fires that renderer's Layout hook once the new
// content exists. Update does the same for in-place refresh of an
// already-initialized fragment, fires RenderAjax instead, and invokes
// onComplete after the hook completes - used by submit flows that must chain
// a follow-up (close dialog, redirect) only after the refresh lands.
//
// Calls return to the caller immediately in the deferred model; their effect
// is applied when the response arrives. Issuing a second fetch for the same
// targetID does not cancel the first: whichever response is applied last
// wins, regardless of send order.
type Bridge interface {
	Layout(renderer, targetID string, st *State)
	Update(renderer, targetID string, st *State, onComplete func())
}

// LocalBridge drives Registry hooks against a Document in process. It is
// the bridge used by the form tree, the ACL controller and tests.
//
// With Deferred set, completions are queued instead of applied inline;
// Flush applies them in arrival order. This reproduces the asynchronous
// round-trip: no fencing, last arrival overwrites the fragment.
type LocalBridge struct {
	Registry *Registry
	Doc      *Document
	Bus      *Bus

	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Deferred queues completions until Flush.
	Deferred bool

	queue []func()
}

// NewLocalBridge wires a bridge over the given registry, document and bus.
func NewLocalBridge(reg *Registry, doc *Document, bus *Bus) *LocalBridge {
	return &LocalBridge{Registry: reg, Doc: doc, Bus: bus}
}

func (b *LocalBridge) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// Layout implements Bridge.
func (b *LocalBridge) Layout(renderer, targetID string, st *State) {
	b.dispatch(func() {
		h, ok := b.apply(renderer, targetID, st)
		if !ok {
			return
		}
		if h.Layout != nil {
			h.Layout(st)
		}
	})
}

// Update implements Bridge.
func (b *LocalBridge) Update(renderer, targetID string, st *State, onComplete func()) {
	b.dispatch(func() {
		h, ok := b.apply(renderer, targetID, st)
		if !ok {
			return
		}
		if h.RenderAjax != nil {
			h.RenderAjax(st)
		}
		if onComplete != nil {
			onComplete()
		}
	})
}

// Flush applies queued completions in arrival order. A no-op when nothing
// is pending or the bridge is not deferred.
func (b *LocalBridge) Flush() {
	for len(b.queue) > 0 {
		next := b.queue[0]
		b.queue = b.queue[1:]
		next()
	}
}

func (b *LocalBridge) dispatch(complete func()) {
	if b.Deferred {
		b.queue = append(b.queue, complete)
		return
	}
	complete()
}

// apply renders the fragment and installs it, returning the hooks for the
// follow-up lifecycle call. Render failures are logged and published on the
// messages topic; nothing else in this layer handles them.
func (b *LocalBridge) apply(renderer, targetID string, st *State) (Hooks, bool) {
	h, ok := b.Registry.Lookup(renderer)
	if !ok {
		b.logger().Error("unknown renderer", "renderer", renderer, "target", targetID)
		Publish(b.Bus, TopicMessages, fmt.Sprintf("Error: renderer %q not registered", renderer))
		return Hooks{}, false
	}

	st.Renderer = renderer
	st.Doc = b.Doc
	st.Bus = b.Bus
	st.Bridge = b
	if st.Store == nil {
		st.Store = b.Doc.StoreFor(targetID)
	}

	html := ""
	if h.Render != nil {
		var buf bytes.Buffer
		if err := h.Render(st).Render(context.Background(), &buf); err != nil {
			b.logger().Error("fragment render failed", "renderer", renderer, "target", targetID, "error", err)
			Publish(b.Bus, TopicMessages, fmt.Sprintf("Error: %v", err))
			return Hooks{}, false
		}
		html = buf.String()
	}

	frag := b.Doc.Replace(targetID, html)
	if st.Store == nil {
		st.Store = frag.Store
	}
	return h, true
}
