package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SystemPrompt is the fixed instruction sent with every generation request.
const SystemPrompt = `You are an expert Windows System Administrator.
Convert the following natural language request into a precise, safe Windows PowerShell command.
Do not include any markdown formatting (like ` + "```" + `), explanation, or preamble.
Only return the executable command string.
If the request is dangerous or malicious, return "# Error: Unsafe request denied".`

// Request is one command generation call.
type Request struct {
	Prompt   string
	APIKey   string
	Model    string
	Endpoint string
}

// Generator turns a natural-language request into a single command string.
// One implementation exists per wire protocol.
type Generator interface {
	// Name returns the display name used in error messages.
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// httpClient is shared by all generators. A single Transport reuses
// connections across requests.
var httpClient = &http.Client{
	Timeout: 2 * time.Minute,
	Transport: &http.Transport{
		TLSHandshakeTimeout:   30 * time.Second,
		ResponseHeaderTimeout: time.Minute,
		IdleConnTimeout:       90 * time.Second,
		ForceAttemptHTTP2:     true,
		MaxIdleConnsPerHost:   4,
	},
}

// CloseIdleConnections drops idle connections from the shared transport.
func CloseIdleConnections() {
	httpClient.CloseIdleConnections()
}

// postJSON sends body to url and returns the raw response body. Non-2xx
// responses become *APIError.
func postJSON(ctx context.Context, url string, headers map[string]string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewAPIError(resp.StatusCode, raw, resp.Header)
	}
	return raw, nil
}
