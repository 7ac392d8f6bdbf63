package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scheddy/scheddy/internal/server"
)

func newDoCmd() *cobra.Command {
	var (
		debugMode    bool
		ollamaURL    string
		model        string
		storeBackend string
		calendarID   string
		eventID      string
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "do [command text]",
		Short: "Process a single natural language command",
		Long: `Process one natural language calendar command and print the result.

Examples:
  scheddy do "Schedule a team standup tomorrow at 9am for 30 minutes"
  scheddy do --store gcal "What meetings do I have this week?"
  scheddy do --event-id abc123 "Move it to 3pm"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(debugMode)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			store, err := buildStore(ctx, storeBackend, calendarID)
			if err != nil {
				return err
			}

			sc := server.NewServerContext(ctx, store, buildLLMClient(ollamaURL, model), logger)
			defer func() { _ = sc.Shutdown() }()

			var reqContext map[string]string
			if eventID != "" {
				reqContext = map[string]string{"event_id": eventID}
			}

			command := ""
			for i, arg := range args {
				if i > 0 {
					command += " "
				}
				command += arg
			}

			result := sc.Orchestrator().Process(ctx, command, reqContext)

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				fmt.Println(result.Message)
			}

			if !result.Success {
				return fmt.Errorf("command failed (%s)", result.Code)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&ollamaURL, "ollama-url", "", "Ollama endpoint URL. Can also use OLLAMA_URL env var.")
	cmd.Flags().StringVar(&model, "model", "", "Model name for intent extraction. Can also use SCHEDDY_MODEL env var.")
	cmd.Flags().StringVar(&storeBackend, "store", "memory", "Event store backend: memory or gcal")
	cmd.Flags().StringVar(&calendarID, "calendar-id", "", "Google Calendar id (default: primary). Only used with --store gcal.")
	cmd.Flags().StringVar(&eventID, "event-id", "", "Event id the command refers to, when known")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full result as JSON")

	return cmd
}
