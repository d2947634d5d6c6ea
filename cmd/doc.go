// Package cmd implements the command-line interface for workspace-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio or streamable HTTP
//   - web: Start the marketing-site waitlist API
//
// The serve command is the default command when no subcommand is specified.
package cmd
