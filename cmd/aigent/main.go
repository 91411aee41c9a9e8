package main

import (
	"fmt"
	"os"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/cli"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "aigent",
		Short: "Aigent CLI - Knowledge management for grounded agents",
		Long: `Aigent CLI provides commands to manage the tenant knowledge base.

Environment variables:
  AIGENT_API_KEY   API key for authentication (required)
  AIGENT_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.ChatCmd())
	rootCmd.AddCommand(client.GetCmd())
	rootCmd.AddCommand(client.ListCmd())
	rootCmd.AddCommand(client.AddCmd())
	rootCmd.AddCommand(client.EditCmd())
	rootCmd.AddCommand(client.DeleteCmd())
	rootCmd.AddCommand(client.SubmitCmd())
	rootCmd.AddCommand(client.PendingCmd())
	rootCmd.AddCommand(client.ApproveCmd())
	rootCmd.AddCommand(client.RejectCmd())
	rootCmd.AddCommand(client.PullCmd())
	rootCmd.AddCommand(client.PushCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
