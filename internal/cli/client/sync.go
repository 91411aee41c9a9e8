package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// PullResponse represents the pull API response.
type PullResponse struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// PushResponse represents the push API response.
type PushResponse struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// PullCmd creates the pull command.
func PullCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Pull knowledge from the hub",
		Long:  "Fetches active documents from the hub and upserts them locally as approved seed content.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runPull(cmd, outputJSON)
		},
	}

	return cmd
}

func runPull(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/sync/pull", nil)
	if err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}

	var pullResp PullResponse
	if err := json.Unmarshal(resp.Data, &pullResp); err != nil {
		return fmt.Errorf("failed to parse pull response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(pullResp, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Pull complete: %d created, %d updated, %d skipped\n",
			pullResp.Created, pullResp.Updated, pullResp.Skipped)
	}

	return nil
}

// PushCmd creates the push command.
func PushCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push approved knowledge to the hub",
		Long:  "Publishes approved local items to the hub. Requires the super-reviewer role.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runPush(cmd, force, outputJSON)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-push items already linked to the hub and overwrite slug conflicts")

	return cmd
}

func runPush(cmd *cobra.Command, force, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/sync/push", map[string]bool{"force": force})
	if err != nil {
		return fmt.Errorf("push failed: %w", err)
	}

	var pushResp PushResponse
	if err := json.Unmarshal(resp.Data, &pushResp); err != nil {
		return fmt.Errorf("failed to parse push response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(pushResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Push complete: %d created, %d updated, %d skipped\n",
		pushResp.Created, pushResp.Updated, pushResp.Skipped)
	for _, e := range pushResp.Errors {
		fmt.Printf("  error: %s\n", e)
	}

	return nil
}
