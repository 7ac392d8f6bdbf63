package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scheddy/scheddy/internal/gcal"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Calendar",
		Long: `Run the OAuth flow for the Google Calendar store.

Prints an authorization URL, then reads the authorization code from stdin
and caches the resulting token. Requires SCHEDDY_GOOGLE_CLIENT_ID and
SCHEDDY_GOOGLE_CLIENT_SECRET to be set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if gcal.HasToken() {
				fmt.Println("A cached token already exists; continuing will replace it.")
			}

			fmt.Println("Open the following URL in your browser and authorize access:")
			fmt.Println()
			fmt.Println("  " + gcal.GetAuthURL())
			fmt.Println()
			fmt.Print("Enter the authorization code: ")

			reader := bufio.NewReader(os.Stdin)
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("no authorization code provided")
			}

			if err := gcal.SaveToken(context.Background(), code); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Println("Token saved.")
			return nil
		},
	}

	return cmd
}
