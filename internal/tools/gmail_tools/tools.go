package gmail_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kuchbhi/workspace-mcp/internal/server"
	"github.com/kuchbhi/workspace-mcp/internal/tools/common"
)

// RegisterGmailTools registers all Gmail-related tools with the MCP server
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	sendTool := mcp.NewTool("gmail_send",
		mcp.WithDescription("Send a plain-text email as the authorized user"),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Plain-text email body"),
		),
	)

	s.AddTool(sendTool, common.InstrumentedToolHandlerWithService("gmail_send", "gmail", "send", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSend(ctx, request, sc)
		}))

	return nil
}

func handleSend(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	to, ok := args["to"].(string)
	if !ok || to == "" {
		return mcp.NewToolResultError("to is required"), nil
	}
	subject, ok := args["subject"].(string)
	if !ok {
		return mcp.NewToolResultError("subject is required"), nil
	}
	body, ok := args["body"].(string)
	if !ok {
		return mcp.NewToolResultError("body is required"), nil
	}

	cred := sc.SessionCredential(ctx)
	result, err := sc.GmailClient().Send(ctx, cred, to, subject, body)
	return common.RelayToolResult("gmail_send", result, err), nil
}
