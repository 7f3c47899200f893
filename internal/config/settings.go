package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// StorageKey is the key the settings blob is stored under.
const StorageKey = "win11-kb-settings"

// AIConfig selects the command generation provider.
type AIConfig struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey"`
	Model    string `json:"model"`
	Endpoint string `json:"endpoint"`
}

// Settings holds user-configurable display, input and AI settings. It is
// persisted as a single JSON blob under StorageKey.
type Settings struct {
	FontScale        float64  `json:"fontScale"`
	Opacity          float64  `json:"opacity"`
	ClickSound       bool     `json:"clickSound"`
	HighContrast     bool     `json:"highContrast"`
	ShowBar          bool     `json:"showBar"`
	ShowInputPreview bool     `json:"showInputPreview"`
	Theme            string   `json:"theme"`
	WindowLayer      string   `json:"windowLayer"`
	AI               AIConfig `json:"aiConfig"`

	// VoiceCommand is the speech-to-text program run while the microphone
	// is on. Each line it prints is one transcript.
	VoiceCommand string `json:"voiceCommand,omitempty"`
}

// SettingEntry holds a single key-value setting for display.
type SettingEntry struct {
	Key   string
	Value string
}

// SettingGroup holds a named group of setting entries for display.
type SettingGroup struct {
	Name    string
	Entries []SettingEntry
}

// SettingGroupDef defines a single group with a name and its keys.
type SettingGroupDef struct {
	Name string
	Keys []string
}

// SettingGroupDefs defines the setting key groupings and their display order.
var SettingGroupDefs = []SettingGroupDef{
	{
		Name: "display",
		Keys: []string{"display.theme", "display.font_scale", "display.opacity", "display.high_contrast", "display.window_layer", "display.show_bar", "display.show_input_preview"},
	},
	{
		Name: "input",
		Keys: []string{"input.click_sound", "voice.command"},
	},
	{
		Name: "ai",
		Keys: []string{"ai.provider", "ai.api_key", "ai.model", "ai.endpoint"},
	},
}

// SettingGroupNames returns the list of valid group names.
func SettingGroupNames() []string {
	names := make([]string, len(SettingGroupDefs))
	for i, g := range SettingGroupDefs {
		names[i] = g.Name
	}
	return names
}

// ValidSettingKeys returns all keys accepted by Set.
func ValidSettingKeys() []string {
	var keys []string
	for _, g := range SettingGroupDefs {
		keys = append(keys, g.Keys...)
	}
	return keys
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	return Settings{
		FontScale:        1,
		Opacity:          0.85,
		ClickSound:       false,
		HighContrast:     false,
		ShowBar:          true,
		ShowInputPreview: true,
		Theme:            "dark",
		WindowLayer:      "always-on-top",
		AI: AIConfig{
			Provider: "gemini",
			APIKey:   "",
			Model:    "gemini-3-flash-preview",
			Endpoint: "",
		},
	}
}

// DecodeSettings merges the fields present in blob over the defaults,
// including the nested aiConfig. A malformed blob returns the defaults and
// an error. Fields Set would reject fall back to their defaults one by one.
func DecodeSettings(blob []byte) (Settings, error) {
	s := DefaultSettings()
	if len(blob) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(blob, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("decoding settings: %w", err)
	}
	sanitizeSettings(&s)
	resetInvalid(&s)
	return s, nil
}

// resetInvalid restores the default of every field holding a value Set
// would reject.
func resetInvalid(s *Settings) {
	d := DefaultSettings()
	if s.FontScale < 0.5 || s.FontScale > 2 {
		s.FontScale = d.FontScale
	}
	if s.Opacity < 0.2 || s.Opacity > 1 {
		s.Opacity = d.Opacity
	}
	if !contains(Themes, s.Theme) {
		s.Theme = d.Theme
	}
	if !contains(WindowLayers, s.WindowLayer) {
		s.WindowLayer = d.WindowLayer
	}
	if !contains(KnownProviders, s.AI.Provider) {
		s.AI.Provider = d.AI.Provider
	}
}

// EncodeSettings marshals s to its stored form.
func EncodeSettings(s Settings) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	return data, nil
}

// Grouped returns all settings organized into named groups.
// Values are display-ready: API keys are masked, empty values are annotated.
func (s Settings) Grouped() []SettingGroup {
	var groups []SettingGroup
	for _, def := range SettingGroupDefs {
		var entries []SettingEntry
		for _, key := range def.Keys {
			entries = append(entries, SettingEntry{
				Key:   key,
				Value: AnnotateValue(s.displayValue(key)),
			})
		}
		groups = append(groups, SettingGroup{Name: def.Name, Entries: entries})
	}
	return groups
}

// GroupByName returns entries for a single group, or nil if not found.
func (s Settings) GroupByName(name string) *SettingGroup {
	for _, g := range s.Grouped() {
		if g.Name == name {
			return &g
		}
	}
	return nil
}

func (s Settings) displayValue(key string) string {
	if key == "ai.api_key" {
		return resolveKeyDisplay(s.AI.APIKey, s.AI.Provider)
	}
	return s.Get(key)
}

// Get returns the display value for a single key.
func (s Settings) Get(key string) string {
	switch key {
	case "display.theme":
		return s.Theme
	case "display.font_scale":
		return formatFloat(s.FontScale)
	case "display.opacity":
		return formatFloat(s.Opacity)
	case "display.high_contrast":
		return strconv.FormatBool(s.HighContrast)
	case "display.window_layer":
		return s.WindowLayer
	case "display.show_bar":
		return strconv.FormatBool(s.ShowBar)
	case "display.show_input_preview":
		return strconv.FormatBool(s.ShowInputPreview)
	case "input.click_sound":
		return strconv.FormatBool(s.ClickSound)
	case "voice.command":
		return s.VoiceCommand
	case "ai.provider":
		return s.AI.Provider
	case "ai.api_key":
		return MaskKey(s.AI.APIKey)
	case "ai.model":
		return s.AI.Model
	case "ai.endpoint":
		return s.AI.Endpoint
	default:
		return ""
	}
}

// Set updates a single key to the given value after validating it.
func (s *Settings) Set(key, value string) error {
	value = SanitizeValue(value)
	switch key {
	case "display.theme":
		if !contains(Themes, value) {
			return fmt.Errorf("invalid theme %q (use %s)", value, strings.Join(Themes, ", "))
		}
		s.Theme = value
	case "display.font_scale":
		f, err := parseRange(value, 0.5, 2)
		if err != nil {
			return fmt.Errorf("font scale: %w", err)
		}
		s.FontScale = f
	case "display.opacity":
		f, err := parseRange(value, 0.2, 1)
		if err != nil {
			return fmt.Errorf("opacity: %w", err)
		}
		s.Opacity = f
	case "display.high_contrast":
		return setBool(&s.HighContrast, value)
	case "display.window_layer":
		if !contains(WindowLayers, value) {
			return fmt.Errorf("invalid window layer %q (use %s)", value, strings.Join(WindowLayers, ", "))
		}
		s.WindowLayer = value
	case "display.show_bar":
		return setBool(&s.ShowBar, value)
	case "display.show_input_preview":
		return setBool(&s.ShowInputPreview, value)
	case "input.click_sound":
		return setBool(&s.ClickSound, value)
	case "voice.command":
		s.VoiceCommand = value
	case "ai.provider":
		if !contains(KnownProviders, value) {
			return fmt.Errorf("unknown provider %q (use %s)", value, strings.Join(KnownProviders, ", "))
		}
		s.AI.Provider = value
	case "ai.api_key":
		s.AI.APIKey = value
	case "ai.model":
		s.AI.Model = value
	case "ai.endpoint":
		s.AI.Endpoint = value
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func setBool(dst *bool, value string) error {
	b, err := ParseBoolish(value)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

func parseRange(value string, lo, hi float64) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", value)
	}
	if f < lo || f > hi {
		return 0, fmt.Errorf("%s out of range [%s, %s]", value, formatFloat(lo), formatFloat(hi))
	}
	return f, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// SanitizeValue strips null bytes, ASCII control characters (< 32 except
// \n and \t), and DEL (0x7F) from a string value and trims surrounding
// whitespace. Pasted API keys often carry such artifacts.
func SanitizeValue(s string) string {
	return strings.Map(func(r rune) rune {
		if (r < 32 && r != '\n' && r != '\t') || r == 0x7F {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// sanitizeSettings strips control characters from the string fields of a
// decoded blob.
func sanitizeSettings(s *Settings) {
	sanitize := func(v *string) { *v = SanitizeValue(*v) }
	sanitize(&s.Theme)
	sanitize(&s.WindowLayer)
	sanitize(&s.VoiceCommand)
	sanitize(&s.AI.Provider)
	sanitize(&s.AI.APIKey)
	sanitize(&s.AI.Model)
	sanitize(&s.AI.Endpoint)
}

// resolveKeyDisplay returns a masked key for display. If no key is saved
// but the provider's environment variable is set, it shows the masked env
// value with "(from env)".
func resolveKeyDisplay(key, provider string) string {
	if key != "" {
		return MaskKey(key)
	}
	if envVal := FallbackAPIKey(provider); envVal != "" {
		return MaskKey(envVal) + " (from env)"
	}
	return ""
}

// MaskKey masks an API key for display, showing only the last 4 characters.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

// ParseBoolish parses a boolean-like string value.
func ParseBoolish(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "on", "yes", "1":
		return true, nil
	case "false", "off", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value: %s (use true/false, on/off, yes/no)", s)
	}
}

// AnnotateValue shows "(not set)" for empty values.
func AnnotateValue(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

// ExecuteConfigAction handles config subcommands and returns a plain-text
// response. Changes are saved through store.
func ExecuteConfigAction(store *SettingsStore, s *Settings, args []string) (string, error) {
	sub := "list"
	if len(args) > 0 {
		sub = strings.ToLower(args[0])
	}

	switch sub {
	case "list", "show":
		return FormatSettingGroups(s.Grouped()), nil

	case "display", "input", "ai":
		group := s.GroupByName(sub)
		if group == nil {
			return "", fmt.Errorf("unknown settings group: %s", sub)
		}
		return FormatSettingGroups([]SettingGroup{*group}), nil

	case "get":
		if len(args) < 2 {
			return "", fmt.Errorf("usage: config get <key>")
		}
		if !contains(ValidSettingKeys(), args[1]) {
			return "", fmt.Errorf("unknown key: %s", args[1])
		}
		return AnnotateValue(s.displayValue(args[1])), nil

	case "set":
		if len(args) < 3 {
			return "", fmt.Errorf("usage: config set <key> <value>")
		}
		key := args[1]
		value := strings.Join(args[2:], " ")
		if err := s.Set(key, value); err != nil {
			return "", err
		}
		if err := store.Save(*s); err != nil {
			return "", fmt.Errorf("failed to save: %w", err)
		}
		return fmt.Sprintf("Set %s = %s", key, s.Get(key)), nil

	case "reset":
		*s = DefaultSettings()
		if err := store.Save(*s); err != nil {
			return "", fmt.Errorf("failed to save: %w", err)
		}
		return "Settings reset to defaults.", nil

	default:
		return "", fmt.Errorf("usage: config [list|display|input|ai|get <key>|set <key> <value>|reset]")
	}
}

// FormatSettingGroups renders setting groups as plain text.
func FormatSettingGroups(groups []SettingGroup) string {
	var lines []string
	for i, g := range groups {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, strings.ToUpper(g.Name[:1])+g.Name[1:]+":")
		for _, e := range g.Entries {
			lines = append(lines, fmt.Sprintf("  %-28s %s", e.Key, e.Value))
		}
	}
	lines = append(lines, "")
	lines = append(lines, "  Use winkb config set <key> <value> to change")
	return strings.Join(lines, "\n")
}
