package consolekit

import (
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"strings"

	"github.com/a-h/templ"
)

// ACLPhase is the approval dialog's state machine phase.
type ACLPhase int

const (
	PhaseIdle ACLPhase = iota
	PhaseDialogOpen
	PhaseSubmitting
)

func (p ACLPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDialogOpen:
		return "dialog_open"
	case PhaseSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ACLRequest is an access-approval request. It is constructed only when the
// user submits the dialog with a non-blank reason and discarded immediately
// after being sent.
type ACLRequest struct {
	Subject   string
	Approver  string
	Reason    string
	Keepalive bool
}

// ApprovalService is the external collaborator that files approval
// requests. Implementations typically notify the named approver and record
// the request server-side.
type ApprovalService interface {
	Request(ctx context.Context, req ACLRequest) error
}

// ApprovalFunc adapts a function to ApprovalService.
type ApprovalFunc func(ctx context.Context, req ACLRequest) error

func (f ApprovalFunc) Request(ctx context.Context, req ACLRequest) error {
	return f(ctx, req)
}

// PageState is the page-wide state shared across renderers: the currently
// granted reason and the selected resource.
type PageState struct {
	Reason           string
	SelectedResource string
}

// Fragment ids of the approval dialog. There is exactly one dialog in the
// document at any time.
const (
	DialogID        = "acl_dialog"
	DialogFormID    = "acl_form"
	ReasonWarningID = "acl_reason_warning"
)

// Renderer names owned by the controller.
const (
	RendererCheckAccess     = "CheckAccess"
	RendererRequestApproval = "RequestApproval"
)

// Subscriber id used on the unauthorized topic.
const aclSubscriberID = "acl_dialog"

// ACLController is the single global approval-dialog state machine. Any
// renderer publishes on TopicUnauthorized when an operation is rejected;
// the controller opens its dialog, collects a reason, submits the request,
// and on success fires the blocked renderer's AccessOk hook so it can
// replay its action.
type ACLController struct {
	registry  *Registry
	bus       *Bus
	doc       *Document
	bridge    Bridge
	approvals ApprovalService
	page      *PageState

	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger

	// FullPageRefresh navigates to the root view after a grant instead of
	// dismissing the modal in place. In-place dismissal leaves the page to
	// resume the blocked action by re-checking access itself.
	FullPageRefresh bool

	// SilentReplay suppresses the selection-changed notification after a
	// grant; the blocked renderer is still replayed through AccessOk.
	SilentReplay bool

	phase    ACLPhase
	subject  string
	renderer string
}

// NewACLController wires the controller: it registers the dialog renderers,
// inserts the (hidden) dialog fragment, and subscribes to the unauthorized
// topic under the dialog's subscriber id. Call once per page.
func NewACLController(reg *Registry, bus *Bus, doc *Document, bridge Bridge, approvals ApprovalService, page *PageState) *ACLController {
	c := &ACLController{
		registry:  reg,
		bus:       bus,
		doc:       doc,
		bridge:    bridge,
		approvals: approvals,
		page:      page,
	}

	reg.Register(RendererCheckAccess, Hooks{Render: c.renderDialog})
	reg.Register(RendererRequestApproval, Hooks{Render: c.renderGrantResult})

	frag := doc.Replace(DialogID, "")
	frag.Modal = true
	frag.Visible = false
	frag.RestoreOnShow = true

	Subscribe(bus, TopicUnauthorized, aclSubscriberID, c.onUnauthorized)
	return c
}

// Phase returns the controller's current phase.
func (c *ACLController) Phase() ACLPhase {
	return c.phase
}

// Subject returns the resource the open dialog is scoped to.
func (c *ACLController) Subject() string {
	return c.subject
}

func (c *ACLController) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// onUnauthorized opens the dialog for a denial. Any other visible modal is
// force-hidden first and loses its restore-on-show behavior; the single
// dialog invariant lives here, not in z-order.
func (c *ACLController) onUnauthorized(u Unauthorized) {
	c.logger().Info("access denied", "subject", u.Subject, "message", u.Message)

	c.subject = u.Subject
	c.renderer = u.Renderer

	c.doc.HideModalsExcept(DialogID)

	if u.Subject != "" {
		st := &State{Subject: u.Subject, Value: u.Message, Unique: DialogFormID}
		c.bridge.Layout(RendererCheckAccess, DialogFormID, st)
	}
	c.doc.Show(DialogID)
	c.phase = PhaseDialogOpen
}

// Submit drives the dialog's submit control. A blank (or all-whitespace)
// reason never reaches the approval service: an inline warning is shown and
// the dialog stays open. On a service failure the dialog re-renders with
// the error content for manual retry; on success the dialog closes and the
// grant notifications fire after the confirmation fragment lands.
func (c *ACLController) Submit(reason, approver string, keepalive bool) error {
	if c.phase != PhaseDialogOpen {
		return ErrDialogNotOpen
	}

	if strings.TrimSpace(reason) == "" {
		warn := c.doc.Replace(ReasonWarningID, `<p class="text-error">Reason field is required.</p>`)
		warn.Visible = true
		return ErrBlankReason
	}
	c.doc.Remove(ReasonWarningID)

	c.phase = PhaseSubmitting
	req := ACLRequest{
		Subject:   c.subject,
		Approver:  approver,
		Reason:    reason,
		Keepalive: keepalive,
	}

	if err := c.approvals.Request(context.Background(), req); err != nil {
		c.logger().Warn("approval request failed", "subject", req.Subject, "error", err)
		st := &State{Subject: req.Subject, Reason: req.Reason, Unique: DialogFormID,
			Params: map[string]string{"error": err.Error()}}
		c.bridge.Update(RendererCheckAccess, DialogFormID, st, nil)
		c.phase = PhaseDialogOpen
		return err
	}

	st := &State{Subject: req.Subject, Reason: req.Reason, Unique: DialogFormID}
	c.bridge.Update(RendererRequestApproval, DialogFormID, st, func() {
		c.doc.Hide(DialogID)
		if c.FullPageRefresh {
			c.doc.Navigate("/")
		}
		c.phase = PhaseIdle
		c.grant(req)
	})
	return nil
}

// Dismiss closes the dialog without submitting.
func (c *ACLController) Dismiss() {
	if c.phase == PhaseIdle {
		return
	}
	c.doc.Remove(ReasonWarningID)
	c.doc.Hide(DialogID)
	c.phase = PhaseIdle
}

// grant records the granted reason in page-wide state, fires the blocked
// renderer's AccessOk hook so it can replay, and re-publishes a selection
// change so dependent renderers refresh (unless configured silent).
func (c *ACLController) grant(req ACLRequest) {
	c.logger().Info("access granted", "subject", req.Subject, "reason", req.Reason)

	c.page.Reason = req.Reason
	if req.Subject != "" {
		c.page.SelectedResource = req.Subject
	}

	if c.renderer != "" {
		st := &State{
			Subject: req.Subject,
			Reason:  req.Reason,
			Silent:  c.SilentReplay,
			Doc:     c.doc,
			Bus:     c.bus,
			Bridge:  c.bridge,
		}
		c.registry.FireAccessOk(c.renderer, st)
	}

	if !c.SilentReplay {
		Publish(c.bus, TopicSelectionChanged, SelectionChanged{
			Resource: req.Subject,
			Reason:   req.Reason,
		})
	}
}

// renderDialog produces the approval form scoped to the state's subject.
// A non-empty "error" param renders the server-supplied failure content
// above the form for retry.
func (c *ACLController) renderDialog(st *State) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sb strings.Builder
		sb.WriteString(`<div class="modal-body">`)
		if msg := st.Param("error"); msg != "" {
			fmt.Fprintf(&sb, `<div class="alert alert-error">%s</div>`, html.EscapeString(msg))
		}
		fmt.Fprintf(&sb, `<h3>Create a new approval request for %s</h3>`, html.EscapeString(st.Subject))
		if st.Value != "" {
			fmt.Fprintf(&sb, `<p>%s</p>`, html.EscapeString(st.Value))
		}
		sb.WriteString(`<label for="acl_approver">Approvers</label>`)
		sb.WriteString(`<input type="text" id="acl_approver" name="approver">`)
		sb.WriteString(`<label for="acl_reason">Reason</label>`)
		fmt.Fprintf(&sb, `<input type="text" id="acl_reason" name="reason" value=%q>`, html.EscapeString(st.Reason))
		sb.WriteString(`<input type="checkbox" id="acl_keepalive" name="keepalive"><label for="acl_keepalive">Keep client alive</label>`)
		sb.WriteString(`<button id="acl_dialog_submit" name="Submit">Request</button>`)
		sb.WriteString(`</div>`)
		_, err := io.WriteString(w, sb.String())
		return err
	})
}

// renderGrantResult produces the post-submit confirmation.
func (c *ACLController) renderGrantResult(st *State) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="modal-body"><p>Approval request for %s sent (reason: <em>%s</em>).</p></div>`,
			html.EscapeString(st.Subject), html.EscapeString(st.Reason))
		return err
	})
}
