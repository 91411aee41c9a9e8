package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// KnowledgeListResponse represents the list API response.
type KnowledgeListResponse struct {
	Items   []KnowledgeItem `json:"items"`
	Cursor  string          `json:"cursor,omitempty"`
	HasMore bool            `json:"has_more"`
}

// ListCmd creates the list command.
func ListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
		drafts bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List knowledge items",
		Long:  "Lists the tenant's knowledge items, newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runList(cmd, limit, cursor, drafts, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")
	cmd.Flags().BoolVar(&drafts, "drafts", false, "Show only draft items awaiting submission")

	return cmd
}

func runList(cmd *cobra.Command, limit int, cursor string, drafts, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if drafts {
		resp, err := api.Get("/knowledge/drafts")
		if err != nil {
			return fmt.Errorf("failed to list drafts: %w", err)
		}

		var items []KnowledgeItem
		if err := json.Unmarshal(resp.Data, &items); err != nil {
			return fmt.Errorf("failed to parse drafts: %w", err)
		}

		if outputJSON {
			output, _ := json.MarshalIndent(items, "", "  ")
			fmt.Println(string(output))
			return nil
		}
		if len(items) == 0 {
			fmt.Println("No drafts found.")
			return nil
		}
		fmt.Printf("Drafts (%d):\n", len(items))
		for _, item := range items {
			fmt.Printf("  %s: %s [%s/%s]\n", item.ID, item.Title, item.Domain, item.Category)
		}
		return nil
	}

	path := fmt.Sprintf("/knowledge/?limit=%d", limit)
	if cursor != "" {
		path += "&cursor=" + url.QueryEscape(cursor)
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("failed to list knowledge items: %w", err)
	}

	var listResp KnowledgeListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse list response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Items) == 0 {
		fmt.Println("No knowledge items found.")
		return nil
	}
	for _, item := range listResp.Items {
		status := item.ApprovalStatus
		if !item.IsActive {
			status = "inactive"
		}
		fmt.Printf("  %s: %s [%s/%s] %s\n", item.ID, item.Title, item.Domain, item.Category, status)
	}
	if listResp.HasMore && listResp.Cursor != "" {
		fmt.Printf("\nMore results available. Use --cursor %s\n", listResp.Cursor)
	}

	return nil
}
