// Package llm wraps the general-purpose language model used when the
// knowledge router finds nothing to ground an answer on.
package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the model used for fallback completions.
	DefaultChatModel = openai.GPT4oMini

	systemPrompt = "You are Aigent Nakamoto, a knowledgeable assistant. " +
		"Answer concisely. If you are unsure, say so."
)

// ErrEmptyMessage is returned when the user message is empty.
var ErrEmptyMessage = errors.New("message cannot be empty")

// ChatAPI defines the completion interface, narrowed for testing.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client wraps the OpenAI chat API for fallback answers.
type Client struct {
	api   ChatAPI
	model string
}

// NewClient creates a fallback client with the default model.
func NewClient(apiKey string) *Client {
	return &Client{
		api:   openai.NewClient(apiKey),
		model: DefaultChatModel,
	}
}

// NewClientWithAPI creates a client over a custom ChatAPI (for testing).
func NewClientWithAPI(api ChatAPI, model string) *Client {
	if model == "" {
		model = DefaultChatModel
	}
	return &Client{api: api, model: model}
}

// Complete answers a message without knowledge grounding.
func (c *Client) Complete(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", ErrEmptyMessage
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return resp.Choices[0].Message.Content, nil
}
