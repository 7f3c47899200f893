package provider

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"
)

// Chat completion endpoints of the OpenAI-compatible providers.
const (
	OpenAIURL     = "https://api.openai.com/v1/chat/completions"
	PerplexityURL = "https://api.perplexity.ai/chat/completions"
	OpenRouterURL = "https://openrouter.ai/api/v1/chat/completions"
)

// OpenAICompatible calls a /chat/completions endpoint. Perplexity,
// OpenRouter, Open WebUI and custom servers all speak this protocol.
type OpenAICompatible struct {
	ID string
	// URL is the fixed endpoint. When empty the request's Endpoint is used.
	URL     string
	Headers map[string]string
}

func (o *OpenAICompatible) Name() string { return o.ID }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// Generate sends the system prompt and the request as a two-message chat.
// The Authorization header is only set when a key is present.
func (o *OpenAICompatible) Generate(ctx context.Context, req Request) (string, error) {
	url := o.URL
	if url == "" {
		url = req.Endpoint
	}
	if url == "" {
		return "", ErrMissingEndpoint
	}

	headers := make(map[string]string, len(o.Headers)+1)
	for k, v := range o.Headers {
		headers[k] = v
	}
	if req.APIKey != "" {
		headers["Authorization"] = "Bearer " + req.APIKey
	}

	body := chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: 0,
	}

	raw, err := postJSON(ctx, url, headers, body)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(gjson.GetBytes(raw, "choices.0.message.content").String())
	if text == "" {
		return "", &EmptyCompletionError{Provider: o.ID, Message: "Empty response from API"}
	}
	return text, nil
}
