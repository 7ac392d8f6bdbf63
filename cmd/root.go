package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the scheddy application
var rootCmd = &cobra.Command{
	Use:   "scheddy",
	Short: "Natural language calendar assistant",
	Long: `scheddy turns free-form text like "schedule lunch with Sam tomorrow at
noon" into calendar operations, using a locally running language model for
intent extraction.

It can run as:
  - An HTTP API server (default)
  - An MCP (Model Context Protocol) server for AI assistants
  - A one-shot CLI command ("scheddy do ...")`,
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
	rootCmd.SetVersionTemplate(`{{printf "scheddy version %s\n" .Version}}`)

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
	rootCmd.AddCommand(newDoCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
