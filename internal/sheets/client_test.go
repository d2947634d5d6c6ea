package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kuchbhi/workspace-mcp/internal/google"
	"github.com/kuchbhi/workspace-mcp/internal/relay"
	"github.com/kuchbhi/workspace-mcp/internal/session"
)

type staticRefresher struct{}

func (staticRefresher) Refresh(ctx context.Context, refreshToken string) (*google.TokenResult, error) {
	return &google.TokenResult{AccessToken: "at-fresh"}, nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *session.Credential, func()) {
	t.Helper()
	ts := httptest.NewServer(handler)
	client := NewClient(relay.NewGuard(staticRefresher{}), WithBaseURL(ts.URL))
	cred := session.NewCredential("at-1", "rt-1", "1001", "user@example.com", "Test User")
	return client, cred, ts.Close
}

func TestCreate(t *testing.T) {
	client, cred, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v4/spreadsheets" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var payload struct {
			Properties struct {
				Title string `json:"title"`
			} `json:"properties"`
		}
		_ = json.Unmarshal(body, &payload)
		if payload.Properties.Title != "Budget" {
			t.Errorf("title = %v", payload.Properties.Title)
		}
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	})
	defer cleanup()

	result, err := client.Create(context.Background(), cred, "Budget")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if id := SpreadsheetID(result.Body); id != "sheet-1" {
		t.Errorf("SpreadsheetID() = %v, want sheet-1", id)
	}
}

func TestAppendValues(t *testing.T) {
	client, cred, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v4/spreadsheets/sheet-1/values/Sheet1!A1:append" {
			t.Errorf("path = %v", r.URL.Path)
		}
		if got := r.URL.Query().Get("valueInputOption"); got != "USER_ENTERED" {
			t.Errorf("valueInputOption = %v, want USER_ENTERED", got)
		}
		body, _ := io.ReadAll(r.Body)
		var payload struct {
			Values [][]any `json:"values"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("bad append body: %v", err)
		}
		if len(payload.Values) != 2 {
			t.Errorf("values rows = %d, want 2", len(payload.Values))
		}
		_, _ = w.Write([]byte(`{"updates":{"updatedRows":2}}`))
	})
	defer cleanup()

	values := [][]any{{"a", 1.0}, {"b", true}}
	result, err := client.AppendValues(context.Background(), cred, "sheet-1", "Sheet1!A1", values, "")
	if err != nil {
		t.Fatalf("AppendValues() error: %v", err)
	}
	if !result.OK() {
		t.Fatalf("status %d", result.StatusCode)
	}
}

func TestAppendValuesRawOption(t *testing.T) {
	client, cred, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("valueInputOption"); got != "RAW" {
			t.Errorf("valueInputOption = %v, want RAW", got)
		}
		_, _ = w.Write([]byte(`{}`))
	})
	defer cleanup()

	if _, err := client.AppendValues(context.Background(), cred, "sheet-1", "A1", [][]any{{"x"}}, "RAW"); err != nil {
		t.Fatalf("AppendValues() error: %v", err)
	}
}

func TestGetValues(t *testing.T) {
	client, cred, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v4/spreadsheets/sheet-1/values/Sheet1!A1:B2" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"values":[["a","b"]]}`))
	})
	defer cleanup()

	result, err := client.GetValues(context.Background(), cred, "sheet-1", "Sheet1!A1:B2")
	if err != nil {
		t.Fatalf("GetValues() error: %v", err)
	}
	if string(result.Body) != `{"values":[["a","b"]]}` {
		t.Errorf("Body = %s, want verbatim upstream body", result.Body)
	}
}
