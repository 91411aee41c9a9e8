package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteCmd creates the delete command.
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <item_id>",
		Short:   "Deactivate a knowledge item",
		Long:    "Deactivates a knowledge item so it no longer appears in search. Hub-sourced items require the super-reviewer role.",
		Aliases: []string{"deactivate"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDelete(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runDelete(cmd *cobra.Command, itemID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Delete(fmt.Sprintf("/knowledge/%s", itemID))
	if err != nil {
		return fmt.Errorf("failed to deactivate knowledge item: %w", err)
	}

	var item KnowledgeItem
	if err := json.Unmarshal(resp.Data, &item); err != nil {
		return fmt.Errorf("failed to parse knowledge item: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(item, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Deactivated %s: %s\n", item.ID, item.Title)
	}

	return nil
}
