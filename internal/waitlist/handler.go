package waitlist

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/kuchbhi/workspace-mcp/internal/instrumentation"
	"github.com/kuchbhi/workspace-mcp/internal/logging"
)

// Signups is the storage surface the HTTP handler needs. Satisfied by *Store.
type Signups interface {
	Add(ctx context.Context, email string) error
	Count(ctx context.Context) (int64, error)
}

// Handler serves the waitlist API.
type Handler struct {
	store   Signups
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

// WithMetrics attaches a metrics recorder for signups.
func WithMetrics(m *instrumentation.Metrics) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler creates the waitlist API handler.
func NewHandler(store Signups, opts ...HandlerOption) *Handler {
	h := &Handler{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers the waitlist endpoints on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/waitlist", h.HandleSignup)
	mux.HandleFunc("GET /api/waitlist", h.HandleCount)
}

// NormalizeEmail lowercases and validates a submitted address. Validation
// happens before any database work; a bad address never reaches the store.
func NormalizeEmail(email string) (string, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}
	return email, true
}

// HandleSignup records a signup. Email arrives as JSON {"email": "..."} or
// as a form field, matching what the landing page posts.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	email := h.submittedEmail(r)

	normalized, ok := NormalizeEmail(email)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid email"})
		return
	}

	if err := h.store.Add(r.Context(), normalized); err != nil {
		h.logger.Error("failed to record waitlist signup",
			logging.Operation("waitlist_signup"),
			logging.Err(err),
		)
		if h.metrics != nil {
			h.metrics.RecordWaitlistSignup(r.Context(), instrumentation.StatusError)
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Something went wrong"})
		return
	}

	if h.metrics != nil {
		h.metrics.RecordWaitlistSignup(r.Context(), instrumentation.StatusSuccess)
	}
	h.logger.Info("waitlist signup",
		logging.Operation("waitlist_signup"),
		logging.UserHash(normalized),
	)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleCount reports how many addresses are on the list.
func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Count(r.Context())
	if err != nil {
		h.logger.Error("failed to count waitlist signups",
			logging.Operation("waitlist_count"),
			logging.Err(err),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Something went wrong"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *Handler) submittedEmail(r *http.Request) string {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var body struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return ""
		}
		return body.Email
	}

	if err := r.ParseForm(); err != nil {
		return ""
	}
	return r.PostFormValue("email")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
