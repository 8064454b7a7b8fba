// Package consolekit provides the UI toolkit for a server-driven
// incident-response console: schema-described nested forms, named renderers
// with lifecycle hooks, and a global access-approval workflow.
//
// consolekit models the console page explicitly instead of through a live
// DOM. A Document holds fragments keyed by deterministic ids, each form
// container owns a FormStore of prefix-keyed field values, and renderers
// communicate through a typed publish/subscribe Bus rather than ambient
// global state.
//
// # Core Concepts
//
// Renderers are named units registered with a Registry, exposing some subset
// of lifecycle hooks:
//   - Render: produce the fragment's content (the server-side renderer)
//   - Layout: invoked once when a fragment is first inserted
//   - RenderAjax: invoked after an asynchronous refresh; must be idempotent
//   - RefreshFromHash: re-derive a layout from URL fragment state
//   - AccessOk: notification fired after an approval grant
//
// Every hook receives a *State: a per-invocation parameter bag carrying the
// field prefix, the unique fragment token, and explicit handles to the
// owning Document, FormStore and Bus. State is never persisted; its
// serializable fields travel over the wire signed or encrypted (see
// lib/encoding).
//
// # Forms
//
// A Form binds a YAML-described field schema to a Document subtree. Field
// values live in the form's FormStore under prefix paths joined with "-";
// repeated fields track their next free slot in a reserved "<prefix>_count"
// key. BuildTree turns a schema into an explicit node tree that the
// rendering layer consumes, decoupling structural recursion from event
// wiring.
//
// # Approval Workflow
//
// A single ACLController subscribes to the unauthorized topic. Any renderer
// that hits an access error publishes there; the controller opens its dialog
// (force-hiding any other modal first), collects a reason, submits an
// ACLRequest through an ApprovalService, and on success fires the AccessOk
// hook so the blocked renderer can replay its action.
//
// # Fragments and the Bridge
//
// Fragments are created and replaced through the Bridge interface, the pair
// of layout/update operations backed by the server-side renderer. The
// in-process LocalBridge drives Registry hooks against a Document; Handler
// exposes the same operations over HTTP for remote consoles. Completions
// are applied in arrival order with no request fencing: two in-flight
// fetches for the same fragment resolve last-writer-wins.
//
// The toolkit favors explicitness over ambient state:
//   - Explicit registration (no init() side effects)
//   - Explicit store handles on State (no tree traversal for scope)
//   - Explicit typed topics (no single untyped channel)
//   - The modal exclusivity invariant lives in the controller's own
//     transition logic
package consolekit
