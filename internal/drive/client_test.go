package drive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/kuchbhi/workspace-mcp/internal/google"
	"github.com/kuchbhi/workspace-mcp/internal/relay"
	"github.com/kuchbhi/workspace-mcp/internal/session"
)

type staticRefresher struct{}

func (staticRefresher) Refresh(ctx context.Context, refreshToken string) (*google.TokenResult, error) {
	return &google.TokenResult{AccessToken: "at-fresh"}, nil
}

func TestListFiles(t *testing.T) {
	var gotQuery url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/drive/v3/files" {
			t.Errorf("path = %v", r.URL.Path)
		}
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"files":[{"id":"f1"}]}`))
	}))
	defer ts.Close()

	client := NewClient(relay.NewGuard(staticRefresher{}), WithBaseURL(ts.URL))
	cred := session.NewCredential("at-1", "rt-1", "1001", "user@example.com", "Test User")

	result, err := client.ListFiles(context.Background(), cred, ListOptions{
		Query:     `name contains "Report"`,
		PageToken: "next-1",
	})
	if err != nil {
		t.Fatalf("ListFiles() error: %v", err)
	}
	if string(result.Body) != `{"files":[{"id":"f1"}]}` {
		t.Errorf("Body = %s, want verbatim upstream body", result.Body)
	}

	for key, want := range map[string]string{
		"q":         `name contains "Report"`,
		"pageSize":  "50",
		"fields":    DefaultFields,
		"pageToken": "next-1",
		"spaces":    "drive",
		"orderBy":   "modifiedTime desc",
	} {
		if got := gotQuery.Get(key); got != want {
			t.Errorf("query %s = %q, want %q", key, got, want)
		}
	}
}

func TestListFilesExplicitOptionsWin(t *testing.T) {
	var gotQuery url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	client := NewClient(relay.NewGuard(staticRefresher{}), WithBaseURL(ts.URL))
	cred := session.NewCredential("at-1", "", "1001", "user@example.com", "Test User")

	if _, err := client.ListFiles(context.Background(), cred, ListOptions{PageSize: 5, Fields: "files(id)"}); err != nil {
		t.Fatalf("ListFiles() error: %v", err)
	}
	if gotQuery.Get("pageSize") != "5" {
		t.Errorf("pageSize = %v, want 5", gotQuery.Get("pageSize"))
	}
	if gotQuery.Get("fields") != "files(id)" {
		t.Errorf("fields = %v, want files(id)", gotQuery.Get("fields"))
	}
	if gotQuery.Has("q") {
		t.Error("q must be omitted when no query is given")
	}
}
