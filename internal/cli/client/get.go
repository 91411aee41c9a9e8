package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// KnowledgeItem represents a knowledge item from the API.
type KnowledgeItem struct {
	ID                string   `json:"id"`
	TenantID          string   `json:"tenant_id"`
	Domain            string   `json:"domain"`
	Title             string   `json:"title"`
	Content           string   `json:"content"`
	Section           string   `json:"section,omitempty"`
	Category          string   `json:"category"`
	Keywords          []string `json:"keywords,omitempty"`
	CrossTags         []string `json:"cross_tags,omitempty"`
	Connections       []string `json:"connections,omitempty"`
	Source            string   `json:"source,omitempty"`
	Origin            string   `json:"origin"`
	ApprovalStatus    string   `json:"approval_status"`
	PendingApprovalID string   `json:"pending_approval_id,omitempty"`
	RemoteDocID       string   `json:"remote_doc_id,omitempty"`
	Version           int64    `json:"version"`
	IsActive          bool     `json:"is_active"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

// GetCmd creates the get command.
func GetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "get <item_id>",
		Short:   "Get a knowledge item by ID",
		Long:    "Retrieves a knowledge item by its ID and displays the full content.",
		Aliases: []string{"view"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runGet(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runGet(cmd *cobra.Command, itemID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get(fmt.Sprintf("/knowledge/%s", itemID))
	if err != nil {
		return fmt.Errorf("failed to get knowledge item: %w", err)
	}

	var item KnowledgeItem
	if err := json.Unmarshal(resp.Data, &item); err != nil {
		return fmt.Errorf("failed to parse knowledge item: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(item, "", "  ")
		fmt.Println(string(output))
	} else {
		printItem(&item)
	}

	return nil
}

func printItem(item *KnowledgeItem) {
	fmt.Printf("Title: %s\n", item.Title)
	fmt.Printf("Domain: %s / %s\n", item.Domain, item.Category)
	fmt.Printf("Status: %s (origin: %s)\n", item.ApprovalStatus, item.Origin)
	if len(item.Keywords) > 0 {
		fmt.Printf("Keywords: %s\n", strings.Join(item.Keywords, ", "))
	}
	if item.RemoteDocID != "" {
		fmt.Printf("Hub doc: %s (version %d)\n", item.RemoteDocID, item.Version)
	}
	fmt.Printf("Created: %s\n", item.CreatedAt)
	fmt.Printf("Updated: %s\n", item.UpdatedAt)
	fmt.Println()
	fmt.Println("--- Content ---")
	fmt.Println(item.Content)
}
