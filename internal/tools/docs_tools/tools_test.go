package docs_tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kuchbhi/workspace-mcp/internal/docs"
	"github.com/kuchbhi/workspace-mcp/internal/google"
	"github.com/kuchbhi/workspace-mcp/internal/relay"
	"github.com/kuchbhi/workspace-mcp/internal/server"
	"github.com/kuchbhi/workspace-mcp/internal/session"
	"github.com/kuchbhi/workspace-mcp/internal/tools/common"
)

func newTestServerContext(t *testing.T, handler http.HandlerFunc) (*server.ServerContext, *session.Credential) {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	exchanger := google.NewExchanger("client-id", "client-secret")
	sc := server.NewServerContext(t.Context(), exchanger)
	sc.SetDocsClient(docs.NewClient(relay.NewGuard(exchanger), docs.WithBaseURL(ts.URL)))

	cred := session.NewCredential("at-1", "rt-1", "1001", "user@example.com", "Test User")
	sc.RegisterSession(server.DefaultSession, cred)
	return sc, cred
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	return request
}

func textOf(result *mcp.CallToolResult) string {
	for _, content := range result.Content {
		if tc, ok := mcp.AsTextContent(content); ok {
			return tc.Text
		}
	}
	return ""
}

func TestHandleCreateRecordsLastDocumentID(t *testing.T) {
	sc, cred := newTestServerContext(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"documentId":"doc-1","title":"Notes"}`))
	})

	result, err := handleCreate(context.Background(), callRequest(map[string]any{"title": "Notes"}), sc)
	if err != nil {
		t.Fatalf("handleCreate() error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", textOf(result))
	}
	if cred.LastDocumentID() != "doc-1" {
		t.Errorf("LastDocumentID() = %v, want doc-1", cred.LastDocumentID())
	}
}

func TestHandleCreateMissingTitle(t *testing.T) {
	requests := 0
	sc, _ := newTestServerContext(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	result, err := handleCreate(context.Background(), callRequest(map[string]any{}), sc)
	if err != nil {
		t.Fatalf("handleCreate() error: %v", err)
	}
	if !result.IsError {
		t.Error("missing title must produce an error result")
	}
	if requests != 0 {
		t.Errorf("issued %d outbound requests, want 0", requests)
	}
}

func TestHandleAppendTextUsesLastDocumentID(t *testing.T) {
	var gotPath string
	sc, cred := newTestServerContext(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	})
	cred.SetLastDocumentID("doc-9")

	result, err := handleAppendText(context.Background(), callRequest(map[string]any{"text": "hello"}), sc)
	if err != nil {
		t.Fatalf("handleAppendText() error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", textOf(result))
	}
	if gotPath != "/v1/documents/doc-9:batchUpdate" {
		t.Errorf("path = %v, want the session's last created document", gotPath)
	}
}

func TestHandleAppendTextExplicitIDWins(t *testing.T) {
	var gotPath string
	sc, cred := newTestServerContext(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	})
	cred.SetLastDocumentID("doc-9")

	args := map[string]any{"text": "hello", "documentId": "doc-explicit"}
	if _, err := handleAppendText(context.Background(), callRequest(args), sc); err != nil {
		t.Fatalf("handleAppendText() error: %v", err)
	}
	if gotPath != "/v1/documents/doc-explicit:batchUpdate" {
		t.Errorf("path = %v, explicit documentId must win over the session default", gotPath)
	}
}

func TestHandleAppendTextNoDocumentAnywhere(t *testing.T) {
	requests := 0
	sc, _ := newTestServerContext(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	result, err := handleAppendText(context.Background(), callRequest(map[string]any{"text": "hello"}), sc)
	if err != nil {
		t.Fatalf("handleAppendText() error: %v", err)
	}
	if !result.IsError {
		t.Error("missing documentId with no session default must produce an error result")
	}
	if requests != 0 {
		t.Errorf("issued %d outbound requests, want 0", requests)
	}
}

func TestHandleGetNotAuthorized(t *testing.T) {
	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer ts.Close()

	exchanger := google.NewExchanger("client-id", "client-secret")
	sc := server.NewServerContext(t.Context(), exchanger)
	sc.SetDocsClient(docs.NewClient(relay.NewGuard(exchanger), docs.WithBaseURL(ts.URL)))

	result, err := handleGet(context.Background(), callRequest(map[string]any{"documentId": "doc-1"}), sc)
	if err != nil {
		t.Fatalf("handleGet() error: %v", err)
	}
	if textOf(result) != common.NotConnectedText {
		t.Errorf("text = %q, want the fixed not-connected message", textOf(result))
	}
	if requests != 0 {
		t.Errorf("issued %d outbound requests, want 0", requests)
	}
}

func TestHandleCreateWithContent(t *testing.T) {
	sc, cred := newTestServerContext(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/documents" {
			_, _ = w.Write([]byte(`{"documentId":"doc-1","title":"Notes"}`))
			return
		}
		_, _ = w.Write([]byte(`{"documentId":"doc-1"}`))
	})

	args := map[string]any{"title": "Notes", "content": "hello"}
	result, err := handleCreateWithContent(context.Background(), callRequest(args), sc)
	if err != nil {
		t.Fatalf("handleCreateWithContent() error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", textOf(result))
	}
	if !strings.Contains(textOf(result), "doc-1") {
		t.Errorf("text = %q, want the created document id", textOf(result))
	}
	if cred.LastDocumentID() != "doc-1" {
		t.Errorf("LastDocumentID() = %v, want doc-1", cred.LastDocumentID())
	}
}

// When creation succeeds but appending fails, the created id must still
// reach the caller so the first step is not redone.
func TestHandleCreateWithContentAppendFailure(t *testing.T) {
	sc, _ := newTestServerContext(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/documents" {
			_, _ = w.Write([]byte(`{"documentId":"doc-1"}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad insert"))
	})

	args := map[string]any{"title": "Notes", "content": "hello"}
	result, err := handleCreateWithContent(context.Background(), callRequest(args), sc)
	if err != nil {
		t.Fatalf("handleCreateWithContent() error: %v", err)
	}
	if !result.IsError {
		t.Error("append failure must produce an error result")
	}
	got := textOf(result)
	if !strings.Contains(got, "doc-1") {
		t.Errorf("text = %q, must include the created document id", got)
	}
	if !strings.Contains(got, "bad insert") {
		t.Errorf("text = %q, must include the upstream failure body", got)
	}
}
