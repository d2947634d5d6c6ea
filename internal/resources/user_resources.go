package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kuchbhi/workspace-mcp/internal/server"
)

// RegisterUserResources registers session-specific user resources
// These resources provide information about the current authenticated user
func RegisterUserResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	profileResource := mcp.NewResource(
		"user://profile",
		"Current User Profile",
		mcp.WithResourceDescription("Information about the currently authorized Google account"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(profileResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleUserProfile(ctx, request, sc)
	})

	sessionResource := mcp.NewResource(
		"user://session",
		"Session State",
		mcp.WithResourceDescription("Authorization state and implicit defaults of the current session"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(sessionResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSessionState(ctx, request, sc)
	})

	return nil
}

// handleUserProfile returns the identity fixed on the session credential at
// authorization time.
func handleUserProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	cred := sc.SessionCredential(ctx)
	if cred == nil {
		return nil, fmt.Errorf("no authorized session")
	}

	profileData := map[string]any{
		"userId": cred.UserID(),
		"email":  cred.Email(),
		"name":   cred.Name(),
	}

	return jsonResource(request.Params.URI, profileData)
}

// handleSessionState reports whether the session can act and which implicit
// defaults later tool calls would pick up.
func handleSessionState(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	cred := sc.SessionCredential(ctx)
	if cred == nil {
		return nil, fmt.Errorf("no authorized session")
	}

	stateData := map[string]any{
		"authorized":        cred.Authorized(),
		"canRefresh":        cred.RefreshToken() != "",
		"lastDocumentId":    cred.LastDocumentID(),
		"lastSpreadsheetId": cred.LastSpreadsheetID(),
	}

	return jsonResource(request.Params.URI, stateData)
}

func jsonResource(uri string, data map[string]any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
