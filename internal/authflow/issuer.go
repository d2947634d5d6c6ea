package authflow

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/kuchbhi/workspace-mcp/internal/logging"
	"github.com/kuchbhi/workspace-mcp/internal/session"
)

const (
	// authCodeTTL bounds the window between the completion redirect and the
	// client's token request.
	authCodeTTL = 5 * time.Minute

	// issuedTokenTTL is reported to clients as expires_in. Tokens are not
	// currently expired server-side; a restart clears all sessions.
	issuedTokenTTL = 24 * time.Hour
)

// Client is a registered MCP client allowed to start authorization flows.
type Client struct {
	ID           string   `json:"client_id"`
	Secret       string   `json:"client_secret,omitempty"`
	Name         string   `json:"client_name,omitempty"`
	RedirectURIs []string `json:"redirect_uris"`
}

// authCode is a one-time code binding a completed Google authorization to
// the client that asked for it.
type authCode struct {
	clientID   string
	credential *session.Credential
	expiresAt  time.Time
}

// SessionRegistry binds issued bearer tokens to session credentials.
// Satisfied by *server.ServerContext.
type SessionRegistry interface {
	RegisterSession(token string, cred *session.Credential)
}

// Issuer mints the client-facing credentials of the front door: dynamic
// client registrations, one-time authorization codes, and the bearer tokens
// MCP clients present on /mcp.
type Issuer struct {
	sessions SessionRegistry
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[string]*Client
	codes   map[string]*authCode
}

// NewIssuer creates an Issuer registering issued tokens with the given
// session registry.
func NewIssuer(sessions SessionRegistry, logger *slog.Logger) *Issuer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Issuer{
		sessions: sessions,
		logger:   logger,
		clients:  make(map[string]*Client),
		codes:    make(map[string]*authCode),
	}
}

// RegisterClient registers an MCP client and mints its id and secret.
func (i *Issuer) RegisterClient(name string, redirectURIs []string) (*Client, error) {
	if len(redirectURIs) == 0 {
		return nil, fmt.Errorf("at least one redirect URI is required")
	}

	client := &Client{
		ID:           newToken(),
		Secret:       newToken(),
		Name:         name,
		RedirectURIs: redirectURIs,
	}

	i.mu.Lock()
	i.clients[client.ID] = client
	i.mu.Unlock()

	i.logger.Info("registered client",
		logging.Operation("register_client"),
		logging.ClientID(client.ID),
	)
	return client, nil
}

// LookupClient returns a registered client by id.
func (i *Issuer) LookupClient(clientID string) (*Client, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	client, ok := i.clients[clientID]
	return client, ok
}

// CompleteAuthorization finishes a flow for which Google handed back a
// credential: it mints a one-time authorization code bound to the pending
// request's client and returns the redirect target on the client's own
// completion URL.
func (i *Issuer) CompleteAuthorization(pending *PendingAuthRequest, cred *session.Credential) (string, error) {
	if pending.ClientID == "" {
		return "", fmt.Errorf("pending auth request has no client id")
	}
	if pending.RedirectURI == "" {
		return "", fmt.Errorf("pending auth request has no redirect URI")
	}

	code := newToken()
	i.mu.Lock()
	i.codes[code] = &authCode{
		clientID:   pending.ClientID,
		credential: cred,
		expiresAt:  time.Now().Add(authCodeTTL),
	}
	i.mu.Unlock()

	redirect, err := url.Parse(pending.RedirectURI)
	if err != nil {
		return "", fmt.Errorf("invalid redirect URI: %w", err)
	}
	q := redirect.Query()
	q.Set("code", code)
	if pending.State != "" {
		q.Set("state", pending.State)
	}
	redirect.RawQuery = q.Encode()

	i.logger.Info("authorization completed",
		logging.Operation("complete_authorization"),
		logging.ClientID(pending.ClientID),
		logging.UserHash(cred.Email()),
	)
	return redirect.String(), nil
}

// ExchangeCode consumes a one-time authorization code and mints the bearer
// token the client will present on /mcp. The code is deleted before any
// other check so it can never be replayed.
func (i *Issuer) ExchangeCode(code, clientID string) (string, error) {
	i.mu.Lock()
	grant, ok := i.codes[code]
	if ok {
		delete(i.codes, code)
	}
	i.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("authorization code not found")
	}
	if time.Now().After(grant.expiresAt) {
		return "", fmt.Errorf("authorization code expired")
	}
	if grant.clientID != clientID {
		return "", fmt.Errorf("authorization code was issued to a different client")
	}

	token := newToken()
	i.sessions.RegisterSession(token, grant.credential)

	i.logger.Info("issued bearer token",
		logging.Operation("exchange_code"),
		logging.ClientID(clientID),
		logging.UserHash(grant.credential.Email()),
	)
	return token, nil
}

// newToken returns 32 bytes of hex-encoded randomness.
func newToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}
