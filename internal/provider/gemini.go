package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	// GeminiBaseURL is the default Generative Language API root.
	GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	defaultGeminiModel = "gemini-3-flash-preview"
)

// GeminiGenerator calls the Gemini generateContent endpoint.
type GeminiGenerator struct {
	// BaseURL overrides GeminiBaseURL. Tests point it at httptest servers.
	BaseURL string
}

func (g *GeminiGenerator) Name() string { return "Gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

// Generate sends the system prompt and the request as one user turn.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if req.APIKey == "" {
		return "", ErrMissingAPIKey
	}
	model := req.Model
	if model == "" {
		model = defaultGeminiModel
	}
	base := g.BaseURL
	if base == "" {
		base = GeminiBaseURL
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(base, "/"), url.PathEscape(model))

	body := geminiRequest{Contents: []geminiContent{{
		Parts: []geminiPart{{Text: SystemPrompt + "\n\nRequest: \"" + req.Prompt + "\""}},
	}}}

	raw, err := postJSON(ctx, endpoint, map[string]string{"x-goog-api-key": req.APIKey}, body)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, part := range gjson.GetBytes(raw, "candidates.0.content.parts.#.text").Array() {
		sb.WriteString(part.String())
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", &EmptyCompletionError{Provider: "gemini", Message: "No response from Gemini"}
	}
	return text, nil
}
