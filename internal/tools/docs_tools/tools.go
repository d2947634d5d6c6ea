package docs_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kuchbhi/workspace-mcp/internal/docs"
	"github.com/kuchbhi/workspace-mcp/internal/server"
	"github.com/kuchbhi/workspace-mcp/internal/tools/common"
)

// RegisterDocsTools registers all Google Docs-related tools with the MCP server
func RegisterDocsTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	createTool := mcp.NewTool("docs_create",
		mcp.WithDescription("Create an empty Google Doc with the given title"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Document title"),
		),
	)

	s.AddTool(createTool, common.InstrumentedToolHandlerWithService("docs_create", "docs", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreate(ctx, request, sc)
		}))

	appendTool := mcp.NewTool("docs_append_text",
		mcp.WithDescription("Append text at the end of a Google Doc"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to append"),
		),
		mcp.WithString("documentId",
			mcp.Description("Target document ID; defaults to the document most recently created in this session"),
		),
	)

	s.AddTool(appendTool, common.InstrumentedToolHandlerWithService("docs_append_text", "docs", "append", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAppendText(ctx, request, sc)
		}))

	getTool := mcp.NewTool("docs_get",
		mcp.WithDescription("Get a Google Doc by document ID"),
		mcp.WithString("documentId",
			mcp.Required(),
			mcp.Description("The ID of the Google Doc"),
		),
	)

	s.AddTool(getTool, common.InstrumentedToolHandlerWithService("docs_get", "docs", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGet(ctx, request, sc)
		}))

	createWithContentTool := mcp.NewTool("docs_create_with_content",
		mcp.WithDescription("Create a Google Doc and append initial content to it"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Document title"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Initial document content"),
		),
	)

	s.AddTool(createWithContentTool, common.InstrumentedToolHandlerWithService("docs_create_with_content", "docs", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateWithContent(ctx, request, sc)
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
	result, err := sc.DocsClient().Create(ctx, cred, title)
	if err == nil && result.OK() {
		if id := docs.DocumentID(result.Body); id != "" {
			cred.SetLastDocumentID(id)
		}
	}
	return common.RelayToolResult("docs_create", result, err), nil
}

func handleAppendText(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	text, ok := args["text"].(string)
	if !ok || text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	cred := sc.SessionCredential(ctx)

	// An explicit documentId always wins; the session's last created
	// document is only the fallback.
	documentID, _ := args["documentId"].(string)
	if documentID == "" && cred != nil {
		documentID = cred.LastDocumentID()
	}
	if documentID == "" {
		return mcp.NewToolResultError("documentId is required: no document has been created in this session"), nil
	}

	result, err := sc.DocsClient().AppendText(ctx, cred, documentID, text)
	return common.RelayToolResult("docs_append_text", result, err), nil
}

func handleGet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	documentID, ok := args["documentId"].(string)
	if !ok || documentID == "" {
		return mcp.NewToolResultError("documentId is required"), nil
	}

	cred := sc.SessionCredential(ctx)
	result, err := sc.DocsClient().Get(ctx, cred, documentID)
	return common.RelayToolResult("docs_get", result, err), nil
}

func handleCreateWithContent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	title, ok := args["title"].(string)
	if !ok || title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}
	content, ok := args["content"].(string)
	if !ok || content == "" {
		return mcp.NewToolResultError("content is required"), nil
	}

	cred := sc.SessionCredential(ctx)

	createResult, err := sc.DocsClient().Create(ctx, cred, title)
	if err != nil || !createResult.OK() {
		return common.RelayToolResult("docs_create_with_content", createResult, err), nil
	}

	documentID := docs.DocumentID(createResult.Body)
	if documentID != "" {
		cred.SetLastDocumentID(documentID)
	}

	// The append step fails independently: the document already exists, so
	// its id must reach the caller even when this step fails.
	appendResult, err := sc.DocsClient().AppendText(ctx, cred, documentID, content)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("docs_create_with_content: created document %s, but appending content failed: %v", documentID, err)), nil
	}
	if !appendResult.OK() {
		msg := fmt.Sprintf("docs_create_with_content: created document %s, but appending content failed: %s", documentID, appendResult.Body)
		if appendResult.NeedsReauth {
			msg = common.ReauthHint + "\n" + msg
		}
		return mcp.NewToolResultError(msg), nil
	}

	return mcp.NewToolResultText(string(createResult.Body)), nil
}
