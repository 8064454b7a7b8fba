package consolekit

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/a-h/templ"

	"github.com/pthm/consolekit/lib/encoding"
)

// consoleHeader marks requests issued by the console page's fetch layer.
// Mutating methods without it are rejected, preventing cross-origin posts
// without extra tokens.
const consoleHeader = "Console-Request"

// Handler serves the bridge contract over HTTP: layout and update requests
// for named renderers, plus hash-state refreshes for deep links. Wire state
// travels in the "s" query parameter, signed (or encrypted when Sensitive)
// with the handler's encoder.
//
// Routes, mounted relative to wherever the handler is installed:
//
//	GET  /render/{renderer}/layout
//	POST /render/{renderer}/update
//	GET  /render/{renderer}/hash
type Handler struct {
	registry *Registry
	encoder  *encoding.Encoder
	mux      *http.ServeMux

	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Sensitive selects encrypted wire state instead of signed.
	Sensitive bool

	// OnError is called when a request cannot be served. Customize to fit
	// the application's error pages.
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

// NewHandler creates a handler over reg with the given signing key.
func NewHandler(reg *Registry, key []byte) *Handler {
	enc, err := encoding.NewEncoder(key)
	if err != nil {
		panic(fmt.Sprintf("consolekit: failed to create encoder: %v", err))
	}

	h := &Handler{
		registry: reg,
		encoder:  enc,
		mux:      http.NewServeMux(),
	}
	h.OnError = func(w http.ResponseWriter, r *http.Request, err error) {
		switch {
		case IsNoRenderer(err):
			http.Error(w, "Not found", http.StatusNotFound)
		case IsDecodingError(err):
			http.Error(w, "Bad request", http.StatusBadRequest)
		default:
			http.Error(w, "Internal error", http.StatusInternalServerError)
		}
	}

	h.mux.HandleFunc("GET /render/{renderer}/layout", h.handleRender)
	h.mux.HandleFunc("POST /render/{renderer}/update", h.handleRender)
	h.mux.HandleFunc("GET /render/{renderer}/hash", h.handleHash)
	return h
}

// Encoder returns the handler's wire encoder, for clients building request
// URLs.
func (h *Handler) Encoder() *encoding.Encoder {
	return h.encoder
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		if !IsConsoleRequest(r) {
			http.Error(w, "Forbidden: console request required", http.StatusForbidden)
			return
		}
	}
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// handleRender serves layout and update fetches. The server side renders
// fragment content only; lifecycle hooks beyond Render run on the page,
// once the new content is installed.
func (h *Handler) handleRender(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("renderer")
	hooks, ok := h.registry.Lookup(name)
	if !ok || hooks.Render == nil {
		h.logger().Warn("render request for unknown renderer", "renderer", name)
		h.OnError(w, r, ErrNoRenderer)
		return
	}

	st, err := h.stateFromRequest(r)
	if err != nil {
		h.logger().Warn("bad wire state", "renderer", name, "error", err)
		h.OnError(w, r, err)
		return
	}
	st.Renderer = name

	h.logger().Debug("render", "renderer", name, "prefix", st.Prefix)
	if err := WriteFragment(w, r, hooks.Render(st)); err != nil {
		h.logger().Error("fragment render failed", "renderer", name, "error", err)
	}
}

// handleHash serves deep-link refreshes: the page forwards its URL fragment
// and the renderer re-derives a layout purely from it.
func (h *Handler) handleHash(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("renderer")
	hooks, ok := h.registry.Lookup(name)
	if !ok || hooks.Render == nil {
		h.OnError(w, r, ErrNoRenderer)
		return
	}

	st, err := ParseHashState(r.URL.Query().Get("hash"))
	if err != nil {
		h.OnError(w, r, err)
		return
	}
	st.Renderer = name

	if hooks.RefreshFromHash != nil {
		hooks.RefreshFromHash(st)
	}
	if err := WriteFragment(w, r, hooks.Render(st)); err != nil {
		h.logger().Error("fragment render failed", "renderer", name, "error", err)
	}
}

func (h *Handler) stateFromRequest(r *http.Request) (*State, error) {
	encoded := r.URL.Query().Get("s")
	if encoded == "" {
		encoded = r.PostFormValue("s")
	}
	if encoded == "" {
		return &State{}, nil
	}
	return DecodeState(h.encoder, encoded, h.Sensitive)
}

// StateURL builds the request URL for a renderer operation ("layout",
// "update" or "hash") with the encoded state attached.
func (h *Handler) StateURL(renderer, op string, st *State) (string, error) {
	encoded, err := st.Encode(h.encoder, h.Sensitive)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/render/%s/%s?s=%s", url.PathEscape(renderer), op, url.QueryEscape(encoded)), nil
}

// ParseHashState decodes URL-fragment state of the form
// "renderer=Main&prefix=field-0" into a State. Unknown keys become extra
// params so renderers can carry arbitrary deep-link data.
func ParseHashState(hash string) (*State, error) {
	vals, err := url.ParseQuery(hash)
	if err != nil {
		return nil, ErrInvalidFormat
	}

	st := &State{}
	for k := range vals {
		v := vals.Get(k)
		switch k {
		case "renderer":
			st.Renderer = v
		case "unique":
			st.Unique = v
		case "prefix":
			st.Prefix = v
		case "subject":
			st.Subject = v
		case "reason":
			st.Reason = v
		case "value":
			st.Value = v
		default:
			if st.Params == nil {
				st.Params = make(map[string]string)
			}
			st.Params[k] = v
		}
	}
	return st, nil
}

// IsConsoleRequest reports whether the request came from the console page's
// fetch layer.
func IsConsoleRequest(r *http.Request) bool {
	return r.Header.Get(consoleHeader) == "true"
}

// WriteFragment renders a fragment into an HTTP response as HTML.
func WriteFragment(w http.ResponseWriter, r *http.Request, c templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return c.Render(r.Context(), w)
}
