package drive_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kuchbhi/workspace-mcp/internal/drive"
	"github.com/kuchbhi/workspace-mcp/internal/server"
	"github.com/kuchbhi/workspace-mcp/internal/tools/common"
)

// RegisterDriveTools registers all Google Drive-related tools with the MCP server
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("drive_list_files",
		mcp.WithDescription("List files in the user's Google Drive, most recently modified first"),
		mcp.WithString("q",
			mcp.Description(`Drive search query, e.g., name contains "Report"`),
		),
		mcp.WithNumber("pageSize",
			mcp.Description("Maximum number of files to return (1-1000, default 50)"),
		),
		mcp.WithString("fields",
			mcp.Description("Partial response field projection"),
		),
		mcp.WithString("pageToken",
			mcp.Description("Token for the next page of results"),
		),
	)

	s.AddTool(listTool, common.InstrumentedToolHandlerWithService("drive_list_files", "drive", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListFiles(ctx, request, sc)
		}))

	return nil
}

func handleListFiles(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	opts := drive.ListOptions{}
	if q, ok := args["q"].(string); ok {
		opts.Query = q
	}
	if pageSize, ok := args["pageSize"].(float64); ok {
		if pageSize < 1 || pageSize > 1000 {
			return mcp.NewToolResultError("pageSize must be between 1 and 1000"), nil
		}
		opts.PageSize = int(pageSize)
	}
	if fields, ok := args["fields"].(string); ok {
		opts.Fields = fields
	}
	if pageToken, ok := args["pageToken"].(string); ok {
		opts.PageToken = pageToken
	}

	cred := sc.SessionCredential(ctx)
	result, err := sc.DriveClient().ListFiles(ctx, cred, opts)
	return common.RelayToolResult("drive_list_files", result, err), nil
}
