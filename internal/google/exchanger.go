package google

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"encoding/json"

	"github.com/kuchbhi/workspace-mcp/internal/logging"
)

// GrantType selects the token-endpoint exchange mode.
type GrantType string

const (
	GrantAuthorizationCode GrantType = "authorization_code"
	GrantRefreshToken      GrantType = "refresh_token"
)

// TokenResult is the token endpoint's success payload. Refresh grants
// typically omit a new refresh token; callers must preserve the old one.
type TokenResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// UpstreamError carries a non-2xx token endpoint response verbatim so the
// caller can surface it without translation.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("token endpoint returned %d: %s", e.Status, e.Body)
}

// Exchanger performs single-shot exchanges against the identity provider's
// token endpoint. It never retries and never mutates stored credentials;
// both of those concerns belong to the relay guard.
type Exchanger struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
	logger       *slog.Logger
}

// ExchangerOption configures an Exchanger.
type ExchangerOption func(*Exchanger)

// WithTokenURL overrides the token endpoint (used in tests).
func WithTokenURL(u string) ExchangerOption {
	return func(e *Exchanger) { e.tokenURL = u }
}

// WithHTTPClient overrides the HTTP client used for exchanges.
func WithHTTPClient(c *http.Client) ExchangerOption {
	return func(e *Exchanger) { e.httpClient = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ExchangerOption {
	return func(e *Exchanger) { e.logger = l }
}

// NewExchanger creates an Exchanger for the configured OAuth client.
func NewExchanger(clientID, clientSecret string, opts ...ExchangerOption) *Exchanger {
	e := &Exchanger{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     DefaultTokenURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ClientID returns the configured OAuth client id.
func (e *Exchanger) ClientID() string {
	return e.clientID
}

// ExchangeCode exchanges an authorization code for the first token pair.
// redirectURI must match the one used on the authorization redirect.
func (e *Exchanger) ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenResult, error) {
	form := url.Values{
		"grant_type":    {string(GrantAuthorizationCode)},
		"client_id":     {e.clientID},
		"client_secret": {e.clientSecret},
		"code":          {code},
		"redirect_uri":  {redirectURI},
	}
	return e.exchange(ctx, GrantAuthorizationCode, form)
}

// Refresh exchanges a refresh token for a new access token.
func (e *Exchanger) Refresh(ctx context.Context, refreshToken string) (*TokenResult, error) {
	form := url.Values{
		"grant_type":    {string(GrantRefreshToken)},
		"client_id":     {e.clientID},
		"client_secret": {e.clientSecret},
		"refresh_token": {refreshToken},
	}
	return e.exchange(ctx, GrantRefreshToken, form)
}

// exchange issues exactly one form-encoded POST to the token endpoint.
func (e *Exchanger) exchange(ctx context.Context, grant GrantType, form url.Values) (*TokenResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token endpoint request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.logger.Warn("token exchange rejected",
			logging.Operation("exchange"),
			slog.String("grant_type", string(grant)),
			slog.Int("status", resp.StatusCode),
		)
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var result TokenResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if result.AccessToken == "" {
		return nil, fmt.Errorf("token response contained no access token")
	}

	e.logger.Debug("token exchange succeeded",
		logging.Operation("exchange"),
		slog.String("grant_type", string(grant)),
		slog.String("access_token", logging.SanitizeToken(result.AccessToken)),
	)
	return &result, nil
}
