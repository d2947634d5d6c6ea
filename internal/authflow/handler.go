package authflow

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	mcpoauth "github.com/giantswarm/mcp-oauth"

	"github.com/kuchbhi/workspace-mcp/internal/google"
	"github.com/kuchbhi/workspace-mcp/internal/instrumentation"
	"github.com/kuchbhi/workspace-mcp/internal/logging"
	"github.com/kuchbhi/workspace-mcp/internal/session"
)

// Config holds the front door's fixed configuration.
type Config struct {
	// ServerName and ServerDescription appear on the consent dialog.
	ServerName        string
	ServerDescription string

	// BaseURL is the externally visible origin of this server; the Google
	// redirect URI is BaseURL + "/callback".
	BaseURL string

	// CookieKey signs the approval cookie.
	CookieKey []byte

	// UserinfoURL overrides the profile endpoint, used in tests.
	UserinfoURL string
}

// Handler implements the authorization front door: GET/POST /authorize,
// GET /callback, and the client-facing POST /token and POST /register.
type Handler struct {
	config    Config
	exchanger *google.Exchanger
	issuer    *Issuer
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

// WithMetrics attaches a metrics recorder for flow completions.
func WithMetrics(m *instrumentation.Metrics) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler creates the front door handler.
func NewHandler(config Config, exchanger *google.Exchanger, issuer *Issuer, opts ...HandlerOption) *Handler {
	if config.UserinfoURL == "" {
		config.UserinfoURL = google.DefaultUserinfoURL
	}
	h := &Handler{
		config:    config,
		exchanger: exchanger,
		issuer:    issuer,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers the front door endpoints on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /authorize", h.HandleAuthorize)
	mux.HandleFunc("POST /authorize", h.HandleApproval)
	mux.HandleFunc("GET /callback", h.HandleCallback)
	mux.HandleFunc("POST /token", h.HandleToken)
	mux.HandleFunc("POST /register", h.HandleRegister)
}

// HandleAuthorize starts a flow. Returning browsers that already approved
// this client skip the consent dialog and go straight to Google.
func (h *Handler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	pending := ParsePendingAuthRequest(r)
	if pending.ClientID == "" {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if ClientApproved(r, pending.ClientID, h.config.CookieKey) {
		h.redirectToGoogle(w, r, pending)
		return
	}

	clientName := ""
	if client, ok := h.issuer.LookupClient(pending.ClientID); ok {
		clientName = client.Name
	}
	if err := RenderApprovalDialog(w, h.config.ServerName, h.config.ServerDescription, clientName, pending); err != nil {
		h.logger.Error("failed to render approval dialog",
			logging.Operation("authorize"),
			logging.Err(err),
		)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// HandleApproval consumes the consent form. The approval cookie is set on
// the same response that redirects to Google: one atomic hop.
func (h *Handler) HandleApproval(w http.ResponseWriter, r *http.Request) {
	pending, cookie, err := ParseApprovalForm(r, h.config.CookieKey)
	if err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, cookie)
	h.redirectToGoogle(w, r, pending)
}

func (h *Handler) redirectToGoogle(w http.ResponseWriter, r *http.Request, pending *PendingAuthRequest) {
	state, err := pending.EncodeState()
	if err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	authURL := google.AuthCodeURL(h.exchanger.ClientID(), h.redirectURI(), state, google.DefaultScopes())
	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleCallback finishes the flow after Google redirects back.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	callback := mcpoauth.ParseCallbackQuery(
		q.Get("code"),
		q.Get("state"),
		q.Get("error"),
		q.Get("error_description"),
		q.Get("error_uri"),
	)
	if err := callback.Err(); err != nil {
		h.recordAuth(r, instrumentation.StatusError)
		h.logger.Warn("authorization rejected by Google",
			logging.Operation("callback"),
			logging.Err(err),
		)
		http.Error(w, fmt.Sprintf("Authorization failed: %v", err), http.StatusBadRequest)
		return
	}

	if callback.State == "" {
		http.Error(w, "Missing state", http.StatusBadRequest)
		return
	}
	pending, err := DecodeState(callback.State)
	if err != nil || pending.ClientID == "" {
		http.Error(w, "Invalid state", http.StatusBadRequest)
		return
	}
	if callback.Code == "" {
		http.Error(w, "Missing code", http.StatusBadRequest)
		return
	}

	token, err := h.exchanger.ExchangeCode(r.Context(), callback.Code, h.redirectURI())
	if err != nil {
		h.recordAuth(r, instrumentation.StatusError)
		if upstream, ok := err.(*google.UpstreamError); ok {
			// Upstream rejections pass through verbatim.
			w.WriteHeader(upstream.Status)
			_, _ = w.Write([]byte(upstream.Body))
			return
		}
		http.Error(w, fmt.Sprintf("Token exchange failed: %v", err), http.StatusInternalServerError)
		return
	}

	user, err := google.FetchUserInfo(r.Context(), nil, h.config.UserinfoURL, token.AccessToken)
	if err != nil {
		h.recordAuth(r, instrumentation.StatusError)
		if upstream, ok := err.(*google.UpstreamError); ok {
			http.Error(w, fmt.Sprintf("Failed to fetch user info: %s", upstream.Body), http.StatusInternalServerError)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to fetch user info: %v", err), http.StatusInternalServerError)
		return
	}

	cred := session.NewCredential(token.AccessToken, token.RefreshToken, user.ID, user.Email, user.Name)

	redirectTo, err := h.issuer.CompleteAuthorization(pending, cred)
	if err != nil {
		h.recordAuth(r, instrumentation.StatusError)
		http.Error(w, fmt.Sprintf("Failed to complete authorization: %v", err), http.StatusInternalServerError)
		return
	}

	h.recordAuth(r, instrumentation.StatusSuccess)
	h.logger.Info("authorization flow completed",
		logging.Operation("callback"),
		logging.ClientID(pending.ClientID),
		logging.UserHash(user.Email),
	)
	http.Redirect(w, r, redirectTo, http.StatusFound)
}

// HandleToken exchanges a one-time authorization code for a bearer token.
func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeTokenError(w, http.StatusBadRequest, "invalid_request", "failed to parse form")
		return
	}

	if grantType := r.PostFormValue("grant_type"); grantType != "authorization_code" {
		writeTokenError(w, http.StatusBadRequest, "unsupported_grant_type", fmt.Sprintf("unsupported grant type %q", grantType))
		return
	}
	code := r.PostFormValue("code")
	clientID := r.PostFormValue("client_id")
	if code == "" || clientID == "" {
		writeTokenError(w, http.StatusBadRequest, "invalid_request", "code and client_id are required")
		return
	}

	token, err := h.issuer.ExchangeCode(code, clientID)
	if err != nil {
		writeTokenError(w, http.StatusBadRequest, "invalid_grant", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(issuedTokenTTL.Seconds()),
	})
}

// HandleRegister performs minimal dynamic client registration.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientName   string   `json:"client_name"`
		RedirectURIs []string `json:"redirect_uris"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTokenError(w, http.StatusBadRequest, "invalid_client_metadata", "body is not valid JSON")
		return
	}

	client, err := h.issuer.RegisterClient(req.ClientName, req.RedirectURIs)
	if err != nil {
		writeTokenError(w, http.StatusBadRequest, "invalid_client_metadata", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(client)
}

func (h *Handler) redirectURI() string {
	return strings.TrimSuffix(h.config.BaseURL, "/") + "/callback"
}

func (h *Handler) recordAuth(r *http.Request, result string) {
	if h.metrics != nil {
		h.metrics.RecordOAuthAuth(r.Context(), result)
	}
}

func writeTokenError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": description,
	})
}
