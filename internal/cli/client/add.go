package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// CreateKnowledgeRequest represents the create API request.
type CreateKnowledgeRequest struct {
	ID          string   `json:"id,omitempty"`
	Domain      string   `json:"domain"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Section     string   `json:"section,omitempty"`
	Category    string   `json:"category"`
	Keywords    []string `json:"keywords,omitempty"`
	CrossTags   []string `json:"cross_tags,omitempty"`
	Connections []string `json:"connections,omitempty"`
	Source      string   `json:"source,omitempty"`
}

// AddCmd creates the add command.
func AddCmd() *cobra.Command {
	var req CreateKnowledgeRequest
	var contentFile string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a knowledge item",
		Long:  "Creates a new knowledge item as a draft. Drafts must pass review before publication.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			req.Title = args[0]
			if contentFile != "" {
				data, err := os.ReadFile(contentFile)
				if err != nil {
					return fmt.Errorf("failed to read content file: %w", err)
				}
				req.Content = string(data)
			}
			return runAdd(cmd, req, outputJSON)
		},
	}

	cmd.Flags().StringVar(&req.ID, "id", "", "Item slug (derived from the title when omitted)")
	cmd.Flags().StringVarP(&req.Domain, "domain", "d", "", "Knowledge domain (required)")
	cmd.Flags().StringVarP(&req.Category, "category", "c", "", "Category within the domain (required)")
	cmd.Flags().StringVar(&req.Content, "content", "", "Item content")
	cmd.Flags().StringVarP(&contentFile, "file", "f", "", "Read content from a file")
	cmd.Flags().StringVar(&req.Section, "section", "", "Section label")
	cmd.Flags().StringSliceVar(&req.Keywords, "keyword", nil, "Search keywords (repeatable)")
	cmd.Flags().StringSliceVar(&req.CrossTags, "cross-tag", nil, "Cross-domain tags (repeatable)")
	cmd.Flags().StringSliceVar(&req.Connections, "connection", nil, "Related item slugs (repeatable)")
	cmd.Flags().StringVar(&req.Source, "source", "", "Provenance note")
	cmd.MarkFlagRequired("domain")
	cmd.MarkFlagRequired("category")

	return cmd
}

func runAdd(cmd *cobra.Command, req CreateKnowledgeRequest, outputJSON bool) error {
	if req.Content == "" {
		return fmt.Errorf("content is required (use --content or --file)")
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/knowledge/", req)
	if err != nil {
		return fmt.Errorf("failed to create knowledge item: %w", err)
	}

	var item KnowledgeItem
	if err := json.Unmarshal(resp.Data, &item); err != nil {
		return fmt.Errorf("failed to parse knowledge item: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(item, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Created draft %s: %s [%s/%s]\n", item.ID, item.Title, item.Domain, item.Category)
	}

	return nil
}
