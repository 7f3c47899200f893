package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/batalabs/winkb/internal/config"
)

const (
	maxRetries       = 3
	retryInitialWait = time.Second
	retryMaxWait     = 10 * time.Second
	retryMultiplier  = 2

	cacheTTL = 10 * time.Minute
)

// Config selects a provider and carries its credentials.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	Endpoint string
}

// ConfigFromSettings converts the stored AI settings.
func ConfigFromSettings(ai config.AIConfig) Config {
	return Config{Provider: ai.Provider, APIKey: ai.APIKey, Model: ai.Model, Endpoint: ai.Endpoint}
}

// keyless providers may be called without an API key but need an endpoint.
func keyless(provider string) bool {
	return provider == "custom" || provider == "openwebui"
}

// DefaultGenerators returns the generator for every supported provider id.
func DefaultGenerators() map[string]Generator {
	return map[string]Generator{
		"gemini":     &GeminiGenerator{},
		"anthropic":  &AnthropicGenerator{},
		"openai":     &OpenAICompatible{ID: "openai", URL: OpenAIURL},
		"perplexity": &OpenAICompatible{ID: "perplexity", URL: PerplexityURL},
		"openrouter": &OpenAICompatible{ID: "openrouter", URL: OpenRouterURL, Headers: map[string]string{
			"HTTP-Referer": "https://github.com/batalabs/winkb",
			"X-Title":      "Win11 Virtual Keyboard",
		}},
		"openwebui": &OpenAICompatible{ID: "openwebui"},
		"custom":    &OpenAICompatible{ID: "custom"},
	}
}

// Registry selects a generator by provider id, retries transient API
// failures and caches successful results.
type Registry struct {
	generators  map[string]Generator
	fallbackKey func(provider string) string
	cache       *gocache.Cache
	log         *config.Logger

	maxRetries  int
	initialWait time.Duration
	maxWait     time.Duration
	sleep       func(ctx context.Context, d time.Duration) bool
}

// NewRegistry returns a registry over the default generators. fallbackKey
// supplies an API key when the config has none; it may be nil.
func NewRegistry(fallbackKey func(provider string) string) *Registry {
	return &Registry{
		generators:  DefaultGenerators(),
		fallbackKey: fallbackKey,
		cache:       gocache.New(cacheTTL, 2*cacheTTL),
		maxRetries:  maxRetries,
		initialWait: retryInitialWait,
		maxWait:     retryMaxWait,
		sleep:       sleepWithContext,
	}
}

// SetLogger sets the logger for request and retry lines.
func (r *Registry) SetLogger(l *config.Logger) { r.log = l }

// Register adds or replaces the generator for id.
func (r *Registry) Register(id string, g Generator) { r.generators[id] = g }

// Lookup returns the generator for id.
func (r *Registry) Lookup(id string) (Generator, bool) {
	g, ok := r.generators[id]
	return g, ok
}

// Generate resolves the key, validates the config, and calls the provider.
// Errors are typed: ErrMissingAPIKey, ErrMissingEndpoint, ErrUnknownProvider,
// *EmptyCompletionError, *APIError, or transport errors.
func (r *Registry) Generate(ctx context.Context, prompt string, cfg Config) (string, error) {
	id := cfg.Provider
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" && r.fallbackKey != nil {
		key = r.fallbackKey(id)
	}
	if key == "" && !keyless(id) {
		return "", fmt.Errorf("%s: %w", id, ErrMissingAPIKey)
	}

	gen, ok := r.generators[id]
	if !ok {
		return "", fmt.Errorf("%q: %w", id, ErrUnknownProvider)
	}
	if keyless(id) && strings.TrimSpace(cfg.Endpoint) == "" {
		return "", fmt.Errorf("%s: %w", id, ErrMissingEndpoint)
	}

	cacheKey := strings.Join([]string{id, cfg.Model, cfg.Endpoint, prompt}, "\x00")
	if v, found := r.cache.Get(cacheKey); found {
		return v.(string), nil
	}

	reqID := uuid.NewString()
	r.log.Printf("generate %s: provider=%s model=%s", reqID, id, cfg.Model)

	out, err := r.generateWithRetry(ctx, reqID, gen, Request{
		Prompt:   prompt,
		APIKey:   key,
		Model:    cfg.Model,
		Endpoint: strings.TrimSpace(cfg.Endpoint),
	})
	if err != nil {
		r.log.Printf("generate %s: failed: %v", reqID, err)
		return "", err
	}
	r.cache.Set(cacheKey, out, gocache.DefaultExpiration)
	return out, nil
}

// GenerateCommand never fails: errors come back as a "# Error: ..." line
// shown in place of the command.
func (r *Registry) GenerateCommand(ctx context.Context, prompt string, cfg Config) string {
	out, err := r.Generate(ctx, prompt, cfg)
	if err != nil {
		return ErrorLiteral(cfg.Provider, err)
	}
	return out
}

// ErrorLiteral renders a generation error as a PowerShell comment line.
func ErrorLiteral(provider string, err error) string {
	var empty *EmptyCompletionError
	switch {
	case errors.Is(err, ErrMissingAPIKey):
		if provider == "gemini" {
			return "# Error: API Key is missing. Please configure it in Settings."
		}
		return fmt.Sprintf("# Error: %s API Key is missing. Please configure it in Settings.", provider)
	case errors.Is(err, ErrMissingEndpoint):
		return "# Error: Endpoint URL is required for Custom/Open WebUI."
	case errors.Is(err, ErrUnknownProvider):
		return "# Error: Unknown Provider"
	case errors.As(err, &empty):
		return "# Error: " + empty.Message
	default:
		return fmt.Sprintf("# Error: Failed to generate command via %s. %s", provider, err.Error())
	}
}

// generateWithRetry retries rate limit and overload errors with
// exponential backoff, preferring the server's Retry-After.
func (r *Registry) generateWithRetry(ctx context.Context, reqID string, gen Generator, req Request) (string, error) {
	wait := r.initialWait

	for attempt := 0; ; attempt++ {
		out, err := gen.Generate(ctx, req)
		if err == nil {
			return out, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() || attempt >= r.maxRetries {
			return "", err
		}

		retryWait := wait
		if apiErr.RetryAfterMs > 0 {
			retryWait = time.Duration(apiErr.RetryAfterMs) * time.Millisecond
		} else if retryWait > r.maxWait {
			retryWait = r.maxWait
		}
		r.log.Printf("generate %s: HTTP %d, retrying in %s (attempt %d/%d)",
			reqID, apiErr.StatusCode, retryWait.Round(time.Millisecond), attempt+1, r.maxRetries)

		if !r.sleep(ctx, retryWait) {
			return "", fmt.Errorf("cancelled during retry wait: %w", ctx.Err())
		}

		wait *= retryMultiplier
		if wait > r.maxWait {
			wait = r.maxWait
		}
	}
}

// sleepWithContext waits for d. It returns false if ctx ends first.
func sleepWithContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
