package resources

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kuchbhi/workspace-mcp/internal/google"
	"github.com/kuchbhi/workspace-mcp/internal/server"
	"github.com/kuchbhi/workspace-mcp/internal/session"
)

func readResourceText(t *testing.T, contents []mcp.ResourceContents) map[string]any {
	t.Helper()

	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	text, ok := contents[0].(*mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents[0] is %T, want *mcp.TextResourceContents", contents[0])
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(text.Text), &data); err != nil {
		t.Fatalf("resource text is not JSON: %v", err)
	}
	return data
}

func TestUserProfileResource(t *testing.T) {
	sc := server.NewServerContext(t.Context(), google.NewExchanger("id", "secret"))
	cred := session.NewCredential("at-1", "rt-1", "1001", "user@example.com", "Test User")
	sc.RegisterSession(server.DefaultSession, cred)

	request := mcp.ReadResourceRequest{}
	request.Params.URI = "user://profile"

	contents, err := handleUserProfile(context.Background(), request, sc)
	if err != nil {
		t.Fatalf("handleUserProfile() error: %v", err)
	}

	data := readResourceText(t, contents)
	if data["email"] != "user@example.com" || data["name"] != "Test User" || data["userId"] != "1001" {
		t.Errorf("profile = %v", data)
	}
}

func TestSessionStateResource(t *testing.T) {
	sc := server.NewServerContext(t.Context(), google.NewExchanger("id", "secret"))
	cred := session.NewCredential("at-1", "", "1001", "user@example.com", "Test User")
	cred.SetLastDocumentID("doc-1")
	sc.RegisterSession(server.DefaultSession, cred)

	request := mcp.ReadResourceRequest{}
	request.Params.URI = "user://session"

	contents, err := handleSessionState(context.Background(), request, sc)
	if err != nil {
		t.Fatalf("handleSessionState() error: %v", err)
	}

	data := readResourceText(t, contents)
	if data["authorized"] != true {
		t.Error("authorized = false, want true")
	}
	if data["canRefresh"] != false {
		t.Error("canRefresh = true, want false without a refresh token")
	}
	if data["lastDocumentId"] != "doc-1" {
		t.Errorf("lastDocumentId = %v", data["lastDocumentId"])
	}
	if data["lastSpreadsheetId"] != "" {
		t.Errorf("lastSpreadsheetId = %v, want empty", data["lastSpreadsheetId"])
	}
}

func TestResourcesRequireSession(t *testing.T) {
	sc := server.NewServerContext(t.Context(), google.NewExchanger("id", "secret"))

	request := mcp.ReadResourceRequest{}
	request.Params.URI = "user://profile"

	if _, err := handleUserProfile(context.Background(), request, sc); err == nil {
		t.Error("handleUserProfile(): want an error without a session")
	}
	if _, err := handleSessionState(context.Background(), request, sc); err == nil {
		t.Error("handleSessionState(): want an error without a session")
	}
}
