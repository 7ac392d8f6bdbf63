// Package cmd implements the command-line interface for scheddy.
//
// This package provides the following commands:
//   - serve: Start the assistant server (HTTP API or MCP over stdio)
//   - do: Process a single natural language command and exit
//   - auth: Run the OAuth flow for the Google Calendar store
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
