package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kuchbhi/workspace-mcp/internal/docs"
	"github.com/kuchbhi/workspace-mcp/internal/drive"
	"github.com/kuchbhi/workspace-mcp/internal/gmail"
	"github.com/kuchbhi/workspace-mcp/internal/google"
	"github.com/kuchbhi/workspace-mcp/internal/instrumentation"
	"github.com/kuchbhi/workspace-mcp/internal/relay"
	"github.com/kuchbhi/workspace-mcp/internal/session"
	"github.com/kuchbhi/workspace-mcp/internal/sheets"
)

// DefaultSession is the registry key for the single session used by the
// stdio transport, seeded from the environment at startup.
const DefaultSession = "default"

type contextKey int

const credentialKey contextKey = iota

// ServerContext holds the shared state of the MCP server: the token
// exchanger, the guarded API clients, and the registry mapping bearer tokens
// to session credentials.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	exchanger *google.Exchanger
	guard     *relay.Guard

	gmail  *gmail.Client
	drive  *drive.Client
	docs   *docs.Client
	sheets *sheets.Client

	metrics *instrumentation.Metrics
	logger  *slog.Logger

	mu          sync.RWMutex
	credentials map[string]*session.Credential
	shutdown    bool
}

// ContextOption configures a ServerContext.
type ContextOption func(*ServerContext)

// WithMetrics attaches a metrics recorder. The guard records token refreshes
// through it.
func WithMetrics(m *instrumentation.Metrics) ContextOption {
	return func(sc *ServerContext) { sc.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ContextOption {
	return func(sc *ServerContext) { sc.logger = l }
}

// NewServerContext creates the shared server state. All API clients are
// built once on top of a single refresh guard backed by the exchanger.
func NewServerContext(ctx context.Context, exchanger *google.Exchanger, opts ...ContextOption) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:         shutdownCtx,
		cancel:      cancel,
		exchanger:   exchanger,
		credentials: make(map[string]*session.Credential),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}

	guardOpts := []relay.Option{relay.WithLogger(sc.logger)}
	if sc.metrics != nil {
		guardOpts = append(guardOpts, relay.WithMetrics(sc.metrics))
	}
	sc.guard = relay.NewGuard(exchanger, guardOpts...)

	sc.gmail = gmail.NewClient(sc.guard)
	sc.drive = drive.NewClient(sc.guard)
	sc.docs = docs.NewClient(sc.guard)
	sc.sheets = sheets.NewClient(sc.guard)

	return sc
}

// Context returns the server's base context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Exchanger returns the upstream token exchanger.
func (sc *ServerContext) Exchanger() *google.Exchanger {
	return sc.exchanger
}

// Guard returns the refresh guard shared by all API clients.
func (sc *ServerContext) Guard() *relay.Guard {
	return sc.guard
}

// GmailClient returns the guarded Gmail client.
func (sc *ServerContext) GmailClient() *gmail.Client {
	return sc.gmail
}

// DriveClient returns the guarded Drive client.
func (sc *ServerContext) DriveClient() *drive.Client {
	return sc.drive
}

// DocsClient returns the guarded Docs client.
func (sc *ServerContext) DocsClient() *docs.Client {
	return sc.docs
}

// SheetsClient returns the guarded Sheets client.
func (sc *ServerContext) SheetsClient() *sheets.Client {
	return sc.sheets
}

// SetGmailClient replaces the Gmail client, used in tests.
func (sc *ServerContext) SetGmailClient(c *gmail.Client) {
	sc.gmail = c
}

// SetDriveClient replaces the Drive client, used in tests.
func (sc *ServerContext) SetDriveClient(c *drive.Client) {
	sc.drive = c
}

// SetDocsClient replaces the Docs client, used in tests.
func (sc *ServerContext) SetDocsClient(c *docs.Client) {
	sc.docs = c
}

// SetSheetsClient replaces the Sheets client, used in tests.
func (sc *ServerContext) SetSheetsClient(c *sheets.Client) {
	sc.sheets = c
}

// Metrics returns the metrics recorder, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// Logger returns the logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// RegisterSession binds a bearer token to a session credential.
func (sc *ServerContext) RegisterSession(token string, cred *session.Credential) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.credentials[token] = cred

	if sc.metrics != nil {
		sc.metrics.IncrementActiveSessions(sc.ctx)
	}
}

// RevokeSession removes the credential bound to a bearer token.
func (sc *ServerContext) RevokeSession(token string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if _, ok := sc.credentials[token]; !ok {
		return
	}
	delete(sc.credentials, token)

	if sc.metrics != nil {
		sc.metrics.DecrementActiveSessions(sc.ctx)
	}
}

// CredentialForToken returns the credential bound to a bearer token.
func (sc *ServerContext) CredentialForToken(token string) (*session.Credential, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	cred, ok := sc.credentials[token]
	return cred, ok
}

// WithCredential stores a session credential in the request context so tool
// handlers can retrieve it.
func WithCredential(ctx context.Context, cred *session.Credential) context.Context {
	return context.WithValue(ctx, credentialKey, cred)
}

// SessionCredential resolves the credential for the current invocation. It
// prefers the credential carried in the request context (HTTP transport) and
// falls back to the default session (stdio transport). Returns nil when
// neither exists.
func (sc *ServerContext) SessionCredential(ctx context.Context) *session.Credential {
	if cred, ok := ctx.Value(credentialKey).(*session.Credential); ok && cred != nil {
		return cred
	}
	cred, _ := sc.CredentialForToken(DefaultSession)
	return cred
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
