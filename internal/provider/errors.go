package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var (
	// ErrMissingAPIKey is returned when a provider needs a key and none is
	// saved or available from the environment.
	ErrMissingAPIKey = errors.New("API key is missing")

	// ErrMissingEndpoint is returned for custom and Open WebUI providers
	// without an endpoint URL.
	ErrMissingEndpoint = errors.New("endpoint URL is required")

	// ErrUnknownProvider is returned for provider ids with no generator.
	ErrUnknownProvider = errors.New("unknown provider")
)

// EmptyCompletionError reports a successful response that carried no text.
type EmptyCompletionError struct {
	Provider string
	Message  string
}

func (e *EmptyCompletionError) Error() string { return e.Message }

// APIError represents a non-2xx API response with retry metadata.
type APIError struct {
	StatusCode   int
	ErrorType    string
	Body         string
	RetryAfterMs int
}

// Error satisfies the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("API returned %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for rate limit and overload errors.
func (e *APIError) IsRetryable() bool {
	switch e.StatusCode {
	case 429, 503, 529:
		return true
	}
	switch e.ErrorType {
	case "rate_limit_error", "overloaded_error", "RESOURCE_EXHAUSTED", "UNAVAILABLE":
		return true
	}
	return false
}

// NewAPIError creates an APIError from HTTP response metadata. The error
// type is read from the body when it is a JSON error envelope.
func NewAPIError(statusCode int, body []byte, header http.Header) *APIError {
	return &APIError{
		StatusCode:   statusCode,
		ErrorType:    errorType(body),
		Body:         string(body),
		RetryAfterMs: parseRetryAfter(header),
	}
}

// errorType extracts the error kind from OpenAI/Anthropic ({"error":{"type"}})
// and Gemini ({"error":{"status"}}) envelopes.
func errorType(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	r := gjson.GetManyBytes(body, "error.type", "error.status")
	for _, v := range r {
		if s := v.String(); s != "" {
			return s
		}
	}
	return ""
}

// parseRetryAfter extracts retry delay from HTTP headers.
// Checks retry-after-ms first, then standard Retry-After
// (seconds or HTTP-date format).
func parseRetryAfter(h http.Header) int {
	if h == nil {
		return 0
	}

	if ms := h.Get("retry-after-ms"); ms != "" {
		if v, err := strconv.Atoi(strings.TrimSpace(ms)); err == nil && v > 0 {
			return v
		}
	}

	ra := strings.TrimSpace(h.Get("Retry-After"))
	if ra == "" {
		return 0
	}

	if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
		return secs * 1000
	}

	if t, err := time.Parse(time.RFC1123, ra); err == nil {
		ms := int(time.Until(t).Milliseconds())
		if ms > 0 {
			return ms
		}
	}

	return 0
}
