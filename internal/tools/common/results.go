package common

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kuchbhi/workspace-mcp/internal/relay"
)

const (
	// NotConnectedText is the fixed response for guarded tools invoked on a
	// session without an access token.
	NotConnectedText = "Not connected to Google. Please authorize this server first."

	// ReauthHint is prepended when an authorization failure survived the
	// guard's refresh and replay.
	ReauthHint = "Your Google authorization has expired. Please re-authorize this server and try again."
)

// RelayToolResult maps a guarded call's outcome to a tool result. Successful
// upstream responses pass through verbatim; failures carry the tool name and,
// for authorization failures that survived the refresh, the re-authorization
// hint. It never returns nil.
func RelayToolResult(toolName string, result *relay.Result, err error) *mcp.CallToolResult {
	if errors.Is(err, relay.ErrNotAuthorized) {
		return mcp.NewToolResultError(NotConnectedText)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", toolName, err))
	}
	if result.OK() {
		return mcp.NewToolResultText(string(result.Body))
	}

	msg := fmt.Sprintf("%s failed: %s", toolName, result.Body)
	if result.NeedsReauth {
		msg = ReauthHint + "\n" + msg
	}
	return mcp.NewToolResultError(msg)
}
