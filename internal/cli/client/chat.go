package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ChatRequest represents the chat API request.
type ChatRequest struct {
	Message string   `json:"message"`
	Themes  []string `json:"themes,omitempty"`
}

// ChatResponse represents the chat API response.
type ChatResponse struct {
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
	Grounded bool     `json:"grounded"`
}

// ChatCmd creates the chat command.
func ChatCmd() *cobra.Command {
	var themes []string

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Ask the assistant",
		Long:  "Answers from the knowledge stores when possible, otherwise falls back to the language model.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runChat(cmd, args[0], themes, outputJSON)
		},
	}

	cmd.Flags().StringSliceVar(&themes, "theme", nil, "Conversation theme hints (repeatable)")

	return cmd
}

func runChat(cmd *cobra.Command, message string, themes []string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/chat", ChatRequest{Message: message, Themes: themes})
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(resp.Data, &chatResp); err != nil {
		return fmt.Errorf("failed to parse chat response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(chatResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(chatResp.Answer)
	if chatResp.Grounded && len(chatResp.Sources) > 0 {
		fmt.Printf("\nSources: %s\n", strings.Join(chatResp.Sources, ", "))
	} else if !chatResp.Grounded {
		fmt.Println("\n(fallback answer, not grounded in the knowledge base)")
	}

	return nil
}
