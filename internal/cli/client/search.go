package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SearchRequest represents the search API request.
type SearchRequest struct {
	Message string   `json:"message"`
	Themes  []string `json:"themes,omitempty"`
}

// SearchResult represents one ranked hit.
type SearchResult struct {
	Item      KnowledgeItem `json:"item"`
	Source    string        `json:"source"`
	Relevance int           `json:"relevance"`
}

// SearchResponse represents the search API response.
type SearchResponse struct {
	Results        []SearchResult `json:"results"`
	Sources        []string       `json:"sources"`
	TotalItems     int            `json:"total_items"`
	ShouldFallback bool           `json:"should_fallback"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var themes []string

	cmd := &cobra.Command{
		Use:   "search <message>",
		Short: "Search knowledge",
		Long:  "Routes the message across the domain knowledge stores and prints ranked hits.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch(cmd, args[0], themes, outputJSON)
		},
	}

	cmd.Flags().StringSliceVar(&themes, "theme", nil, "Conversation theme hints (repeatable)")

	return cmd
}

func runSearch(cmd *cobra.Command, message string, themes []string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/search", SearchRequest{Message: message, Themes: themes})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse search results: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(searchResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if searchResp.ShouldFallback {
		fmt.Println("No results found. A fallback answer would be used.")
		return nil
	}

	fmt.Printf("Found %d results from %s:\n\n", searchResp.TotalItems, strings.Join(searchResp.Sources, ", "))
	for i, result := range searchResp.Results {
		fmt.Printf("%d. %s (relevance %d, %s)\n", i+1, result.Item.Title, result.Relevance, result.Source)
		content := result.Item.Content
		if len(content) > 100 {
			content = content[:97] + "..."
		}
		fmt.Printf("   %s\n", content)
		fmt.Printf("   ID: %s\n", result.Item.ID)
		if i < len(searchResp.Results)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
