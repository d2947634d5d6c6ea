package sheets_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kuchbhi/workspace-mcp/internal/server"
	"github.com/kuchbhi/workspace-mcp/internal/sheets"
	"github.com/kuchbhi/workspace-mcp/internal/tools/common"
)

// RegisterSheetsTools registers all Google Sheets-related tools with the MCP server
func RegisterSheetsTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	createTool := mcp.NewTool("sheets_create",
		mcp.WithDescription("Create an empty Google Sheet with the given title"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Spreadsheet title"),
		),
	)

	s.AddTool(createTool, common.InstrumentedToolHandlerWithService("sheets_create", "sheets", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreate(ctx, request, sc)
		}))

	appendTool := mcp.NewTool("sheets_append_values",
		mcp.WithDescription("Append rows of cell values to a Google Sheet"),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 notation, e.g., Sheet1!A1"),
		),
		mcp.WithArray("values",
			mcp.Required(),
			mcp.Description("2D array of cell values"),
		),
		mcp.WithString("spreadsheetId",
			mcp.Description("Target spreadsheet ID; defaults to the spreadsheet most recently created in this session"),
		),
		mcp.WithString("valueInputOption",
			mcp.Description("How input data is interpreted: RAW or USER_ENTERED (default)"),
		),
	)

	s.AddTool(appendTool, common.InstrumentedToolHandlerWithService("sheets_append_values", "sheets", "append", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAppendValues(ctx, request, sc)
		}))

	getTool := mcp.NewTool("sheets_get_values",
		mcp.WithDescription("Read cell values from a Google Sheet"),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 notation, e.g., Sheet1!A1:B10"),
		),
	)

	s.AddTool(getTool, common.InstrumentedToolHandlerWithService("sheets_get_values", "sheets", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetValues(ctx, request, sc)
		}))

	return nil
}

func handleCreate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	title, ok := args["title"].(string)
	if !ok || title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	cred := sc.SessionCredential(ctx)
	result, err := sc.SheetsClient().Create(ctx, cred, title)
	if err == nil && result.OK() {
		if id := sheets.SpreadsheetID(result.Body); id != "" {
			cred.SetLastSpreadsheetID(id)
		}
	}
	return common.RelayToolResult("sheets_create", result, err), nil
}

func handleAppendValues(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	a1Range, ok := args["range"].(string)
	if !ok || a1Range == "" {
		return mcp.NewToolResultError("range is required"), nil
	}

	rows, ok := args["values"].([]any)
	if !ok || len(rows) == 0 {
		return mcp.NewToolResultError("values is required and must be a non-empty 2D array"), nil
	}
	values := make([][]any, len(rows))
	for i, row := range rows {
		cells, ok := row.([]any)
		if !ok {
			return mcp.NewToolResultError("values must be a 2D array of cell values"), nil
		}
		values[i] = cells
	}

	valueInputOption, _ := args["valueInputOption"].(string)
	if valueInputOption != "" && valueInputOption != "RAW" && valueInputOption != "USER_ENTERED" {
		return mcp.NewToolResultError("valueInputOption must be RAW or USER_ENTERED"), nil
	}

	cred := sc.SessionCredential(ctx)

	// An explicit spreadsheetId always wins; the session's last created
	// spreadsheet is only the fallback.
	spreadsheetID, _ := args["spreadsheetId"].(string)
	if spreadsheetID == "" && cred != nil {
		spreadsheetID = cred.LastSpreadsheetID()
	}
	if spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required: no spreadsheet has been created in this session"), nil
	}

	result, err := sc.SheetsClient().AppendValues(ctx, cred, spreadsheetID, a1Range, values, valueInputOption)
	return common.RelayToolResult("sheets_append_values", result, err), nil
}

func handleGetValues(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	spreadsheetID, ok := args["spreadsheetId"].(string)
	if !ok || spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}
	a1Range, ok := args["range"].(string)
	if !ok || a1Range == "" {
		return mcp.NewToolResultError("range is required"), nil
	}

	cred := sc.SessionCredential(ctx)
	result, err := sc.SheetsClient().GetValues(ctx, cred, spreadsheetID, a1Range)
	return common.RelayToolResult("sheets_get_values", result, err), nil
}
