package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/valyala/fastjson"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/Protocol-Lattice/dreamsearch/decorate"
	"github.com/Protocol-Lattice/dreamsearch/internal/logging"
	"github.com/Protocol-Lattice/dreamsearch/registry"
	"github.com/Protocol-Lattice/dreamsearch/render"
)

const (
	// DefaultReadLimit caps a single live-preview message, in bytes.
	DefaultReadLimit = 4096
	// maxBodyBytes caps a /render request body.
	maxBodyBytes = 1 << 20

	contentTypeJSON    = "application/json"
	contentTypeMsgpack = "application/msgpack"
)

// RenderResponse is the document returned by /render.
type RenderResponse struct {
	Query string        `json:"query" msgpack:"query"`
	Units []render.Unit `json:"units" msgpack:"units"`
	Text  string        `json:"text,omitempty" msgpack:"text,omitempty"`
}

// LiveReply answers one live-preview message.
type LiveReply struct {
	ID      int64         `json:"id"`
	Session string        `json:"session,omitempty"`
	Units   []render.Unit `json:"units,omitempty"`
	Text    string        `json:"text,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Handler serves query rendering over HTTP and websocket.
type Handler struct {
	renderer     *render.Renderer
	policies     *registry.Registry
	logger       *zap.Logger
	readLimit    int64
	defaultStyle string
	parsers      fastjson.ParserPool
	upgrader     websocket.Upgrader
}

// Option configures a Handler.
type Option func(*Handler)

// WithRenderer sets the renderer. The default logs parse failures to the
// handler's logger.
func WithRenderer(r *render.Renderer) Option {
	return func(h *Handler) { h.renderer = r }
}

// WithRegistry sets the policy registry used to resolve styles.
func WithRegistry(r *registry.Registry) Option {
	return func(h *Handler) { h.policies = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithReadLimit sets the maximum size of a live-preview message.
func WithReadLimit(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.readLimit = n
		}
	}
}

// WithDefaultStyle sets the style applied to requests that name none. An
// empty style means such requests get units only.
func WithDefaultStyle(style string) Option {
	return func(h *Handler) { h.defaultStyle = style }
}

// New creates a Handler.
func New(opts ...Option) *Handler {
	h := &Handler{readLimit: DefaultReadLimit}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = logging.Default(h.logger).Named("handler")
	if h.renderer == nil {
		h.renderer = render.New(render.WithSink(render.LogSink(h.logger)))
	}
	if h.policies == nil {
		h.policies = registry.GetGlobalRegistry()
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	return h
}

// Routes returns a mux serving /render and /live.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/render", h.Render)
	mux.HandleFunc("/live", h.Live)
	return mux
}

// Render handles GET /render?q=...&style=... and POST /render with a JSON
// body {"query": "...", "style": "..."}.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	var query, style string
	switch r.Method {
	case http.MethodGet:
		query = r.URL.Query().Get("q")
		style = r.URL.Query().Get("style")
	case http.MethodPost:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			http.Error(w, "unable to read body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		query, style, err = h.decodeRequest(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if style == "" {
		style = h.defaultStyle
	}
	resp := RenderResponse{Query: query, Units: h.renderer.RenderQuery(query)}
	if style != "" {
		policy, err := h.policies.Lookup(style)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp.Text = decorate.Apply(policy, resp.Units)
	}

	if strings.Contains(r.Header.Get("Accept"), contentTypeMsgpack) {
		data, err := msgpack.Marshal(&resp)
		if err != nil {
			h.logger.Error("encode msgpack response", zap.Error(err))
			http.Error(w, "encoding failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentTypeMsgpack)
		w.Write(data)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Debug("write response", zap.Error(err))
	}
}

// decodeRequest extracts query and style from a JSON object.
func (h *Handler) decodeRequest(body []byte) (query, style string, err error) {
	p := h.parsers.Get()
	defer h.parsers.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return "", "", fmt.Errorf("invalid JSON: %w", err)
	}
	if v.Type() != fastjson.TypeObject {
		return "", "", errors.New("invalid JSON: expected an object")
	}
	if query, err = stringField(v, "query"); err != nil {
		return "", "", fmt.Errorf("invalid JSON: %w", err)
	}
	if style, err = stringField(v, "style"); err != nil {
		return "", "", fmt.Errorf("invalid JSON: %w", err)
	}
	return query, style, nil
}

// stringField returns the string member key of object v. A missing or null
// member is empty; any other non-string value is an error.
func stringField(v *fastjson.Value, key string) (string, error) {
	f := v.Get(key)
	if f == nil || f.Type() == fastjson.TypeNull {
		return "", nil
	}
	b, err := f.StringBytes()
	if err != nil {
		return "", fmt.Errorf("%q must be a string, got %s", key, f.Type())
	}
	return string(b), nil
}

// Live upgrades to a websocket and answers every message
// {"id": n, "query": "...", "style": "..."} in order until the client
// disconnects.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied to the client.
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(h.readLimit)

	session := uuid.NewString()
	logger := h.logger.With(zap.String("session", session))
	logger.Info("live session opened", zap.String("remote", r.RemoteAddr))

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("live session read failed", zap.Error(err))
			}
			logger.Info("live session closed")
			return
		}
		if err := conn.WriteJSON(h.live(session, msg)); err != nil {
			logger.Warn("live session write failed", zap.Error(err))
			return
		}
	}
}

func (h *Handler) live(session string, msg []byte) LiveReply {
	p := h.parsers.Get()
	defer h.parsers.Put(p)

	v, err := p.ParseBytes(msg)
	if err != nil {
		return LiveReply{Error: "invalid message: " + err.Error()}
	}
	if v.Type() != fastjson.TypeObject {
		return LiveReply{Error: "invalid message: expected an object"}
	}
	var id int64
	if f := v.Get("id"); f != nil {
		if id, err = f.Int64(); err != nil {
			return LiveReply{Error: fmt.Sprintf("invalid message: \"id\" must be an integer, got %s", f.Type())}
		}
	}
	query, err := stringField(v, "query")
	if err != nil {
		return LiveReply{ID: id, Error: "invalid message: " + err.Error()}
	}
	style, err := stringField(v, "style")
	if err != nil {
		return LiveReply{ID: id, Error: "invalid message: " + err.Error()}
	}
	if style == "" {
		style = h.defaultStyle
	}

	reply := LiveReply{ID: id, Session: session}
	units := h.renderer.RenderQuery(query)
	if style != "" {
		policy, err := h.policies.Lookup(style)
		if err != nil {
			return LiveReply{ID: reply.ID, Error: err.Error()}
		}
		reply.Text = decorate.Apply(policy, units)
	}
	reply.Units = units
	return reply
}

var defaultHandler = New()

// Render serves /render with the default handler.
func Render(w http.ResponseWriter, r *http.Request) {
	defaultHandler.Render(w, r)
}

// Live serves /live with the default handler.
func Live(w http.ResponseWriter, r *http.Request) {
	defaultHandler.Live(w, r)
}
