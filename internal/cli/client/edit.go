package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// EditKnowledgeRequest represents the edit API request.
type EditKnowledgeRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Section     string   `json:"section,omitempty"`
	Category    string   `json:"category"`
	Keywords    []string `json:"keywords,omitempty"`
	CrossTags   []string `json:"cross_tags,omitempty"`
	Connections []string `json:"connections,omitempty"`
	Source      string   `json:"source,omitempty"`
}

// EditCmd creates the edit command.
func EditCmd() *cobra.Command {
	var req EditKnowledgeRequest
	var contentFile string

	cmd := &cobra.Command{
		Use:   "edit <item_id>",
		Short: "Edit a knowledge item",
		Long: `Edits a knowledge item's content. Fields not provided keep their current
values. Editing approved hub-sourced content demotes it to draft for re-review.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			if contentFile != "" {
				data, err := os.ReadFile(contentFile)
				if err != nil {
					return fmt.Errorf("failed to read content file: %w", err)
				}
				req.Content = string(data)
			}
			return runEdit(cmd, args[0], req, outputJSON)
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "New title")
	cmd.Flags().StringVar(&req.Content, "content", "", "New content")
	cmd.Flags().StringVarP(&contentFile, "file", "f", "", "Read content from a file")
	cmd.Flags().StringVar(&req.Section, "section", "", "New section label")
	cmd.Flags().StringVarP(&req.Category, "category", "c", "", "New category")
	cmd.Flags().StringSliceVar(&req.Keywords, "keyword", nil, "Search keywords (repeatable)")
	cmd.Flags().StringSliceVar(&req.CrossTags, "cross-tag", nil, "Cross-domain tags (repeatable)")
	cmd.Flags().StringSliceVar(&req.Connections, "connection", nil, "Related item slugs (repeatable)")
	cmd.Flags().StringVar(&req.Source, "source", "", "Provenance note")

	return cmd
}

func runEdit(cmd *cobra.Command, itemID string, req EditKnowledgeRequest, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	// Merge over the current item so partial edits do not blank fields.
	current, err := api.Get(fmt.Sprintf("/knowledge/%s", itemID))
	if err != nil {
		return fmt.Errorf("failed to get knowledge item: %w", err)
	}
	var item KnowledgeItem
	if err := json.Unmarshal(current.Data, &item); err != nil {
		return fmt.Errorf("failed to parse knowledge item: %w", err)
	}

	if req.Title == "" {
		req.Title = item.Title
	}
	if req.Content == "" {
		req.Content = item.Content
	}
	if req.Section == "" {
		req.Section = item.Section
	}
	if req.Category == "" {
		req.Category = item.Category
	}
	if req.Keywords == nil {
		req.Keywords = item.Keywords
	}
	if req.CrossTags == nil {
		req.CrossTags = item.CrossTags
	}
	if req.Connections == nil {
		req.Connections = item.Connections
	}
	if req.Source == "" {
		req.Source = item.Source
	}

	resp, err := api.Put(fmt.Sprintf("/knowledge/%s", itemID), req)
	if err != nil {
		return fmt.Errorf("failed to edit knowledge item: %w", err)
	}

	var updated KnowledgeItem
	if err := json.Unmarshal(resp.Data, &updated); err != nil {
		return fmt.Errorf("failed to parse knowledge item: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(updated, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Updated %s: %s (status: %s)\n", updated.ID, updated.Title, updated.ApprovalStatus)
	}

	return nil
}
