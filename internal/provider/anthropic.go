package provider

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	// AnthropicMessagesURL is the default Anthropic Messages API endpoint.
	AnthropicMessagesURL = "https://api.anthropic.com/v1/messages"

	anthropicVersion      = "2023-06-01"
	defaultAnthropicModel = "claude-3-5-sonnet-20240620"
	anthropicMaxTokens    = 1024
)

// AnthropicGenerator calls the Anthropic Messages API.
type AnthropicGenerator struct {
	// URL overrides AnthropicMessagesURL.
	URL string
}

func (a *AnthropicGenerator) Name() string { return "anthropic" }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

// Generate sends the request with the system prompt in the system field.
func (a *AnthropicGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if req.APIKey == "" {
		return "", ErrMissingAPIKey
	}
	model := req.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	url := a.URL
	if url == "" {
		url = AnthropicMessagesURL
	}

	body := anthropicRequest{
		Model:     model,
		MaxTokens: anthropicMaxTokens,
		System:    SystemPrompt,
		Messages:  []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}
	headers := map[string]string{
		"x-api-key":         req.APIKey,
		"anthropic-version": anthropicVersion,
	}

	raw, err := postJSON(ctx, url, headers, body)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(gjson.GetBytes(raw, "content.0.text").String())
	if text == "" {
		return "", &EmptyCompletionError{Provider: "anthropic", Message: "Empty response from Anthropic"}
	}
	return text, nil
}
