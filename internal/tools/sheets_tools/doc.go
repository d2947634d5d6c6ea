// Package sheets_tools exposes Google Sheets operations as MCP tools.
package sheets_tools
