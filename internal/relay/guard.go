package relay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kuchbhi/workspace-mcp/internal/google"
	"github.com/kuchbhi/workspace-mcp/internal/logging"
	"github.com/kuchbhi/workspace-mcp/internal/session"
)

// ErrNotAuthorized is returned when the session credential holds no access
// token. Callers must surface a "please authorize" response without any
// network call having been made.
var ErrNotAuthorized = errors.New("session is not authorized")

// RequestBuilder is a pure function of the current access token producing an
// outbound HTTP request. It must be re-invocable: the guard calls it once
// with the existing token and, after a refresh, once more with the new one.
type RequestBuilder func(accessToken string) (*http.Request, error)

// Result is the outcome of a guarded call. The body is the upstream response
// verbatim; NeedsReauth marks an authorization failure that survived the
// guard's single refresh-and-replay.
type Result struct {
	StatusCode  int
	Body        []byte
	NeedsReauth bool
}

// OK reports whether the upstream call succeeded.
func (r *Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Refresher exchanges a refresh token for a new access token. Satisfied by
// *google.Exchanger.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*google.TokenResult, error)
}

// RefreshRecorder records refresh attempts for observability.
type RefreshRecorder interface {
	RecordTokenRefresh(ctx context.Context, result string)
}

// Guard wraps every outbound API call with the single-retry refresh policy:
//
//	INITIAL_ATTEMPT -> DONE                 (anything but 401/403)
//	INITIAL_ATTEMPT -> REFRESHING           (401/403 and refresh token present)
//	REFRESHING      -> RETRY_ATTEMPT        (refresh succeeded)
//	REFRESHING      -> DONE_WITH_ERROR      (refresh failed; original response + hint)
//	RETRY_ATTEMPT   -> DONE                 (whatever happens; never a second refresh)
type Guard struct {
	refresher  Refresher
	httpClient *http.Client
	logger     *slog.Logger
	metrics    RefreshRecorder
}

// Option configures a Guard.
type Option func(*Guard)

// WithHTTPClient overrides the HTTP client used for guarded calls.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Guard) { g.httpClient = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) { g.logger = l }
}

// WithMetrics sets an optional refresh-attempt recorder.
func WithMetrics(m RefreshRecorder) Option {
	return func(g *Guard) { g.metrics = m }
}

// NewGuard creates a Guard backed by the given refresher.
func NewGuard(refresher Refresher, opts ...Option) *Guard {
	g := &Guard{
		refresher: refresher,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Do executes build(token) under the refresh policy. Guarded calls within
// one session are serialized on the credential's call lock so two
// invocations cannot both trigger a refresh.
func (g *Guard) Do(ctx context.Context, cred *session.Credential, build RequestBuilder) (*Result, error) {
	if cred == nil || !cred.Authorized() {
		return nil, ErrNotAuthorized
	}

	cred.LockForCall()
	defer cred.UnlockAfterCall()

	result, err := g.send(ctx, build, cred.AccessToken())
	if err != nil {
		return nil, err
	}
	if !isAuthFailure(result.StatusCode) {
		return result, nil
	}

	refreshToken := cred.RefreshToken()
	if refreshToken == "" {
		g.logger.Info("authorization failed and no refresh token is present",
			logging.Operation("guarded_call"),
			slog.Int("status", result.StatusCode),
		)
		result.NeedsReauth = true
		return result, nil
	}

	token, refreshErr := g.refresher.Refresh(ctx, refreshToken)
	if refreshErr != nil || token.AccessToken == "" {
		g.recordRefresh(ctx, logging.StatusError)
		g.logger.Warn("token refresh failed, surfacing original authorization failure",
			logging.Operation("guarded_call"),
			slog.Int("status", result.StatusCode),
			logging.Err(refreshErr),
		)
		result.NeedsReauth = true
		return result, nil
	}
	g.recordRefresh(ctx, logging.StatusSuccess)

	// Only the access token is overwritten; the refresh token is preserved
	// because refresh grants typically omit a new one.
	cred.SetAccessToken(token.AccessToken)

	retry, err := g.send(ctx, build, token.AccessToken)
	if err != nil {
		return nil, err
	}
	if isAuthFailure(retry.StatusCode) {
		// Terminal: one refresh per originating call, never two.
		retry.NeedsReauth = true
	}
	return retry, nil
}

// send rebuilds and issues the request exactly once.
func (g *Guard) send(ctx context.Context, build RequestBuilder, accessToken string) (*Result, error) {
	req, err := build(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req = req.WithContext(ctx)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Result{StatusCode: resp.StatusCode, Body: body}, nil
}

func (g *Guard) recordRefresh(ctx context.Context, result string) {
	if g.metrics != nil {
		g.metrics.RecordTokenRefresh(ctx, result)
	}
}

// isAuthFailure reports whether a status triggers the refresh path. Every
// other status, including other 4xx/5xx, is returned as-is.
func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// NewJSONRequest builds a bearer-authenticated request with an optional JSON
// body. Intended for use inside RequestBuilders so call sites stay uniform.
func NewJSONRequest(method, url, accessToken string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
