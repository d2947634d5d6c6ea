package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the workspace-mcp application
var rootCmd = &cobra.Command{
	Use:   "workspace-mcp",
	Short: "MCP server exposing Google Workspace APIs as tools",
	Long: `workspace-mcp bridges AI assistants to a user's Google account. It runs an
MCP (Model Context Protocol) server whose tools relay Gmail, Drive, Docs and
Sheets operations through the user's OAuth tokens, refreshing them
transparently when they expire.

It can run as:
  - An MCP server over stdio or streamable HTTP (default)
  - The marketing-site waitlist API (the "web" subcommand)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "workspace-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newWebCmd())
}
