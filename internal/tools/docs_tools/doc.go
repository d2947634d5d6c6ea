// Package docs_tools exposes Google Docs operations as MCP tools.
package docs_tools
