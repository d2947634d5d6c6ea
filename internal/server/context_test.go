package server

import (
	"context"
	"testing"

	"github.com/kuchbhi/workspace-mcp/internal/google"
	"github.com/kuchbhi/workspace-mcp/internal/session"
)

func newTestContext(t *testing.T) *ServerContext {
	t.Helper()
	exchanger := google.NewExchanger("client-id", "client-secret")
	return NewServerContext(t.Context(), exchanger)
}

func TestSessionRegistry(t *testing.T) {
	sc := newTestContext(t)

	cred := session.NewCredential("at-1", "rt-1", "1001", "user@example.com", "Test User")
	sc.RegisterSession("bearer-1", cred)

	got, ok := sc.CredentialForToken("bearer-1")
	if !ok || got != cred {
		t.Fatal("registered credential not found")
	}

	if _, ok := sc.CredentialForToken("unknown"); ok {
		t.Error("unknown token must not resolve")
	}

	sc.RevokeSession("bearer-1")
	if _, ok := sc.CredentialForToken("bearer-1"); ok {
		t.Error("revoked token must not resolve")
	}

	// Revoking twice is harmless.
	sc.RevokeSession("bearer-1")
}

func TestSessionCredentialPrefersContext(t *testing.T) {
	sc := newTestContext(t)

	defaultCred := session.NewCredential("at-default", "", "1", "default@example.com", "Default")
	sc.RegisterSession(DefaultSession, defaultCred)

	if got := sc.SessionCredential(context.Background()); got != defaultCred {
		t.Error("bare context must fall back to the default session")
	}

	reqCred := session.NewCredential("at-req", "", "2", "req@example.com", "Req")
	ctx := WithCredential(context.Background(), reqCred)
	if got := sc.SessionCredential(ctx); got != reqCred {
		t.Error("context credential must win over the default session")
	}
}

func TestSessionCredentialNilWhenUnbound(t *testing.T) {
	sc := newTestContext(t)

	if got := sc.SessionCredential(context.Background()); got != nil {
		t.Errorf("SessionCredential() = %v, want nil", got)
	}
}

func TestShutdown(t *testing.T) {
	sc := newTestContext(t)

	if sc.IsShutdown() {
		t.Error("fresh context reports shutdown")
	}
	if err := sc.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}
	if !sc.IsShutdown() {
		t.Error("IsShutdown() = false after Shutdown()")
	}
	if err := sc.Shutdown(); err != nil {
		t.Fatalf("second Shutdown() error: %v", err)
	}

	select {
	case <-sc.Context().Done():
	default:
		t.Error("context not cancelled after shutdown")
	}
}
