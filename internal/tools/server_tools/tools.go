package server_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kuchbhi/workspace-mcp/internal/server"
	"github.com/kuchbhi/workspace-mcp/internal/tools/common"
)

// RegisterServerTools registers server-level tools with the MCP server.
// contact is the operator contact string returned by the validate tool.
func RegisterServerTools(s *mcpserver.MCPServer, sc *server.ServerContext, contact string) error {
	validateTool := mcp.NewTool("validate",
		mcp.WithDescription("Validate this MCP server is reachable"),
	)

	s.AddTool(validateTool, common.InstrumentedToolHandler("validate", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleValidate(contact), nil
		}))

	return nil
}

func handleValidate(contact string) *mcp.CallToolResult {
	if contact == "" {
		return mcp.NewToolResultText("contact not configured")
	}
	return mcp.NewToolResultText(contact)
}
