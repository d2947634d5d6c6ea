// Package server_tools exposes server-level MCP tools that need no Google
// authorization.
package server_tools
