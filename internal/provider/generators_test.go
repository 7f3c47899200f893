package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// captured records the last request seen by a test server.
type captured struct {
	path   string
	header http.Header
	body   map[string]any
}

func newServer(t *testing.T, status int, response string, c *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c != nil {
			c.path = r.URL.Path
			c.header = r.Header.Clone()
			raw, _ := io.ReadAll(r.Body)
			json.Unmarshal(raw, &c.body)
		}
		w.WriteHeader(status)
		io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiGenerator(t *testing.T) {
	t.Run("joins parts and trims", func(t *testing.T) {
		var c captured
		srv := newServer(t, 200, `{"candidates":[{"content":{"parts":[{"text":" Get-Process"},{"text":" | Sort CPU \n"}]}}]}`, &c)
		g := &GeminiGenerator{BaseURL: srv.URL}

		out, err := g.Generate(context.Background(), Request{Prompt: "top processes", APIKey: "g-key"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "Get-Process | Sort CPU" {
			t.Errorf("out = %q", out)
		}
		if c.path != "/models/gemini-3-flash-preview:generateContent" {
			t.Errorf("path = %q", c.path)
		}
		if c.header.Get("x-goog-api-key") != "g-key" {
			t.Errorf("missing api key header")
		}
		text := c.body["contents"].([]any)[0].(map[string]any)["parts"].([]any)[0].(map[string]any)["text"].(string)
		if !strings.HasPrefix(text, SystemPrompt) || !strings.HasSuffix(text, "\n\nRequest: \"top processes\"") {
			t.Errorf("content = %q", text)
		}
	})

	t.Run("empty response", func(t *testing.T) {
		srv := newServer(t, 200, `{"candidates":[]}`, nil)
		g := &GeminiGenerator{BaseURL: srv.URL}
		_, err := g.Generate(context.Background(), Request{Prompt: "x", APIKey: "k"})
		var empty *EmptyCompletionError
		if !errors.As(err, &empty) || empty.Message != "No response from Gemini" {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("missing key never calls out", func(t *testing.T) {
		g := &GeminiGenerator{BaseURL: "http://127.0.0.1:1"}
		if _, err := g.Generate(context.Background(), Request{Prompt: "x"}); !errors.Is(err, ErrMissingAPIKey) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestOpenAICompatible(t *testing.T) {
	t.Run("sends chat request", func(t *testing.T) {
		var c captured
		srv := newServer(t, 200, `{"choices":[{"message":{"role":"assistant","content":"  Get-ChildItem  "}}]}`, &c)
		o := &OpenAICompatible{ID: "openrouter", URL: srv.URL, Headers: map[string]string{"X-Title": "Win11 Virtual Keyboard"}}

		out, err := o.Generate(context.Background(), Request{Prompt: "list files", APIKey: "sk-1", Model: "gpt-4o"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "Get-ChildItem" {
			t.Errorf("out = %q", out)
		}
		if got := c.header.Get("Authorization"); got != "Bearer sk-1" {
			t.Errorf("Authorization = %q", got)
		}
		if c.header.Get("X-Title") != "Win11 Virtual Keyboard" {
			t.Error("missing extra header")
		}
		if c.body["model"] != "gpt-4o" || c.body["temperature"] != float64(0) {
			t.Errorf("body = %v", c.body)
		}
		msgs := c.body["messages"].([]any)
		if len(msgs) != 2 || msgs[0].(map[string]any)["role"] != "system" || msgs[1].(map[string]any)["content"] != "list files" {
			t.Errorf("messages = %v", msgs)
		}
	})

	t.Run("no key means no Authorization", func(t *testing.T) {
		var c captured
		srv := newServer(t, 200, `{"choices":[{"message":{"content":"dir"}}]}`, &c)
		o := &OpenAICompatible{ID: "custom"}
		if _, err := o.Generate(context.Background(), Request{Prompt: "x", Endpoint: srv.URL}); err != nil {
			t.Fatal(err)
		}
		if _, ok := c.header["Authorization"]; ok {
			t.Error("unexpected Authorization header")
		}
	})

	t.Run("non-2xx", func(t *testing.T) {
		srv := newServer(t, 401, `invalid key`, nil)
		o := &OpenAICompatible{ID: "openai", URL: srv.URL}
		_, err := o.Generate(context.Background(), Request{Prompt: "x", APIKey: "bad"})
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("err = %v", err)
		}
		if err.Error() != "API returned 401: invalid key" {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("empty content", func(t *testing.T) {
		srv := newServer(t, 200, `{"choices":[{"message":{"content":"   "}}]}`, nil)
		o := &OpenAICompatible{ID: "perplexity", URL: srv.URL}
		_, err := o.Generate(context.Background(), Request{Prompt: "x", APIKey: "k"})
		var empty *EmptyCompletionError
		if !errors.As(err, &empty) || empty.Message != "Empty response from API" {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("missing endpoint", func(t *testing.T) {
		o := &OpenAICompatible{ID: "openwebui"}
		if _, err := o.Generate(context.Background(), Request{Prompt: "x"}); !errors.Is(err, ErrMissingEndpoint) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestAnthropicGenerator(t *testing.T) {
	t.Run("sends messages request", func(t *testing.T) {
		var c captured
		srv := newServer(t, 200, `{"content":[{"type":"text","text":"Restart-Service spooler\n"}]}`, &c)
		a := &AnthropicGenerator{URL: srv.URL}

		out, err := a.Generate(context.Background(), Request{Prompt: "restart printing", APIKey: "sk-ant"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "Restart-Service spooler" {
			t.Errorf("out = %q", out)
		}
		if c.header.Get("x-api-key") != "sk-ant" || c.header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("headers = %v", c.header)
		}
		if c.body["model"] != "claude-3-5-sonnet-20240620" || c.body["max_tokens"] != float64(1024) || c.body["system"] != SystemPrompt {
			t.Errorf("body = %v", c.body)
		}
	})

	t.Run("empty content", func(t *testing.T) {
		srv := newServer(t, 200, `{"content":[]}`, nil)
		a := &AnthropicGenerator{URL: srv.URL}
		_, err := a.Generate(context.Background(), Request{Prompt: "x", APIKey: "k"})
		var empty *EmptyCompletionError
		if !errors.As(err, &empty) || empty.Message != "Empty response from Anthropic" {
			t.Errorf("err = %v", err)
		}
	})
}
