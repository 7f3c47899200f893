package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ProviderEnvVars maps provider names to the environment variables checked
// when no API key is saved. Gemini also accepts the legacy API_KEY.
var ProviderEnvVars = map[string][]string{
	"gemini":     {"GEMINI_API_KEY", "API_KEY"},
	"openai":     {"OPENAI_API_KEY"},
	"anthropic":  {"ANTHROPIC_API_KEY"},
	"perplexity": {"PERPLEXITY_API_KEY"},
	"openrouter": {"OPENROUTER_API_KEY"},
	"openwebui":  {"OPENWEBUI_API_KEY"},
}

// KnownProviders lists valid provider names for validation.
var KnownProviders = []string{"gemini", "openai", "anthropic", "perplexity", "openrouter", "openwebui", "custom"}

// Themes lists the keyboard color themes.
var Themes = []string{"dark", "light", "blue", "cyber"}

// WindowLayers lists the window layering preferences.
var WindowLayers = []string{"always-on-top", "standard", "background"}

// configDirOverride and dataDirOverride are set by tests.
var (
	configDirOverride string
	dataDirOverride   string
)

// ConfigDir returns the config directory for winkb.
func ConfigDir() string {
	if configDirOverride != "" {
		return configDirOverride
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "winkb")
}

// DataDir returns ~/.local/share/winkb, creating it if needed.
func DataDir() (string, error) {
	dir := dataDirOverride
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".local", "share", "winkb")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// FallbackAPIKey returns the first non-empty environment key for provider.
func FallbackAPIKey(provider string) string {
	for _, envVar := range ProviderEnvVars[provider] {
		if key := strings.TrimSpace(os.Getenv(envVar)); key != "" {
			return key
		}
	}
	return ""
}

// ResolveAPIKeySource returns where the key for the current provider comes
// from: "config", "env", or "" if none is available.
func ResolveAPIKeySource(s Settings) string {
	if strings.TrimSpace(s.AI.APIKey) != "" {
		return "config"
	}
	if FallbackAPIKey(s.AI.Provider) != "" {
		return "env"
	}
	return ""
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
