package common

import (
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kuchbhi/workspace-mcp/internal/relay"
)

func textOf(result *mcp.CallToolResult) string {
	for _, content := range result.Content {
		if tc, ok := mcp.AsTextContent(content); ok {
			return tc.Text
		}
	}
	return ""
}

func TestRelayToolResultNotAuthorized(t *testing.T) {
	result := RelayToolResult("gmail_send", nil, relay.ErrNotAuthorized)

	if !result.IsError {
		t.Error("IsError = false")
	}
	if got := textOf(result); got != NotConnectedText {
		t.Errorf("text = %q, want the fixed not-connected message", got)
	}
}

func TestRelayToolResultTransportError(t *testing.T) {
	result := RelayToolResult("docs_get", nil, errors.New("connection refused"))

	if !result.IsError {
		t.Error("IsError = false")
	}
	got := textOf(result)
	if !strings.HasPrefix(got, "docs_get failed:") || !strings.Contains(got, "connection refused") {
		t.Errorf("text = %q", got)
	}
}

func TestRelayToolResultSuccessIsVerbatim(t *testing.T) {
	result := RelayToolResult("drive_list_files", &relay.Result{StatusCode: 200, Body: []byte(`{"files":[]}`)}, nil)

	if result.IsError {
		t.Error("IsError = true on success")
	}
	if got := textOf(result); got != `{"files":[]}` {
		t.Errorf("text = %q, want verbatim upstream body", got)
	}
}

func TestRelayToolResultUpstreamFailure(t *testing.T) {
	result := RelayToolResult("sheets_create", &relay.Result{StatusCode: 429, Body: []byte("rate limited")}, nil)

	got := textOf(result)
	if got != "sheets_create failed: rate limited" {
		t.Errorf("text = %q", got)
	}
	if strings.Contains(got, ReauthHint) {
		t.Error("non-auth failure must not carry the reauth hint")
	}
}

func TestRelayToolResultReauthHint(t *testing.T) {
	result := RelayToolResult("gmail_send", &relay.Result{StatusCode: 401, Body: []byte("expired"), NeedsReauth: true}, nil)

	got := textOf(result)
	if !strings.HasPrefix(got, ReauthHint) {
		t.Errorf("text = %q, want the reauth hint first", got)
	}
	if !strings.Contains(got, "gmail_send failed: expired") {
		t.Errorf("text = %q, want the upstream body preserved", got)
	}
}
