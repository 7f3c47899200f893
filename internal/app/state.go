// Package app owns the keyboard's mutable state: modifiers, buffers,
// clipboard history, panels, transcript and settings. The TUI calls into a
// single State from its event loop and performs the returned Requests
// asynchronously.
package app

import (
	"errors"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/batalabs/winkb/internal/config"
	"github.com/batalabs/winkb/internal/keyboard"
	"github.com/batalabs/winkb/internal/provider"
	"github.com/batalabs/winkb/internal/speech"
)

// RequestKind names asynchronous work for a collaborator.
type RequestKind int

const (
	ReqClipboardWrite RequestKind = iota
	ReqClipboardRead
	ReqGenerate
	ReqStartListening
	ReqStopListening
)

// Request is async work produced by a key press. Text carries the clipboard
// payload or the prompt; Config is set for ReqGenerate.
type Request struct {
	Kind   RequestKind
	Text   string
	Config provider.Config
}

var errNoStore = errors.New("no settings store")

// State is the aggregate behind the keyboard. It is not safe for
// concurrent use; the event loop owns it.
type State struct {
	Layout     *keyboard.Layout
	Mods       keyboard.Modifiers
	Main       *keyboard.History
	Prompt     string
	Clipboard  keyboard.ClipboardHistory
	Transcript []Line
	Admin      bool
	Listening  bool
	Generating bool
	Notice     Notice
	Settings   config.Settings

	panels map[keyboard.Panel]bool
	store  *config.SettingsStore
	log    *config.Logger
}

// New loads settings from store (defaults when store is nil) and returns
// a fresh state over the default layout.
func New(store *config.SettingsStore, log *config.Logger) *State {
	settings := config.DefaultSettings()
	if store != nil {
		settings = store.Load()
	}
	return &State{
		Layout:     keyboard.DefaultLayout(),
		Main:       keyboard.NewHistory(),
		Transcript: []Line{{Kind: LineInfo, Text: Banner}},
		Settings:   settings,
		panels:     make(map[keyboard.Panel]bool),
		store:      store,
		log:        log,
	}
}

// Input returns the main buffer.
func (s *State) Input() string { return s.Main.Value() }

// Open reports whether panel p is showing.
func (s *State) Open(p keyboard.Panel) bool { return s.panels[p] }

// OpenPanel shows p.
func (s *State) OpenPanel(p keyboard.Panel) { s.panels[p] = true }

// ClosePanel hides p.
func (s *State) ClosePanel(p keyboard.Panel) { s.panels[p] = false }

// Path is the prompt path shown in the transcript.
func (s *State) Path() string {
	if s.Admin {
		return adminPath
	}
	return userPath
}

// ToggleAdmin flips elevated mode from the transcript title bar.
func (s *State) ToggleAdmin() { s.Admin = !s.Admin }

// Notify shows a transient notification.
func (s *State) Notify(text string) {
	s.Notice = Notice{Text: text, Seq: s.Notice.Seq + 1}
}

// ExpireNotice clears the notice if it is still notice seq.
func (s *State) ExpireNotice(seq int) {
	if s.Notice.Seq == seq {
		s.Notice.Text = ""
	}
}

func (s *State) context() keyboard.Context {
	return keyboard.Context{AIOpen: s.panels[keyboard.PanelAI]}
}

func (s *State) route() keyboard.Route {
	if s.panels[keyboard.PanelAI] {
		return keyboard.RoutePrompt
	}
	return keyboard.RouteMain
}

func (s *State) buffer(r keyboard.Route) string {
	if r == keyboard.RoutePrompt {
		return s.Prompt
	}
	return s.Main.Value()
}

// setBuffer writes the routed buffer. Main buffer writes go through the
// undo history.
func (s *State) setBuffer(r keyboard.Route, v string) {
	if r == keyboard.RoutePrompt {
		s.Prompt = v
		return
	}
	s.Main.Push(v)
}

func (s *State) addLines(lines ...Line) {
	s.Transcript = append(s.Transcript, lines...)
}

// Press dispatches the key with the given layout ID. Unknown IDs are
// ignored.
func (s *State) Press(id string) []Request {
	k, ok := s.Layout.Lookup(id)
	if !ok {
		return nil
	}
	var reqs []Request
	for _, e := range keyboard.Dispatch(k, &s.Mods, s.context()) {
		reqs = append(reqs, s.apply(e)...)
	}
	return reqs
}

func (s *State) apply(e keyboard.Effect) []Request {
	switch e.Kind {
	case keyboard.EffectAppend:
		s.setBuffer(e.Route, s.buffer(e.Route)+e.Text)
	case keyboard.EffectBackspace:
		s.setBuffer(e.Route, dropLastGrapheme(s.buffer(e.Route)))
	case keyboard.EffectClear:
		s.setBuffer(e.Route, "")
	case keyboard.EffectSubmit:
		return s.submit(e.Route)
	case keyboard.EffectEscape:
		return s.escape()
	case keyboard.EffectCopy:
		return s.copyText(s.buffer(e.Route))
	case keyboard.EffectCut:
		reqs := s.copyText(s.buffer(e.Route))
		s.setBuffer(e.Route, "")
		s.Notify("Cut")
		return reqs
	case keyboard.EffectPaste:
		return []Request{{Kind: ReqClipboardRead}}
	case keyboard.EffectSelectAll:
		s.Notify("Select All")
	case keyboard.EffectUndo:
		s.Undo()
	case keyboard.EffectToggleListening:
		return s.setListening(!s.Listening)
	case keyboard.EffectOpenPanel:
		s.OpenPanel(e.Panel)
	case keyboard.EffectClosePanel:
		s.ClosePanel(e.Panel)
	case keyboard.EffectTogglePanel:
		s.panels[e.Panel] = !s.panels[e.Panel]
	case keyboard.EffectAdmin:
		s.admin()
	case keyboard.EffectNotify:
		s.Notify(e.Text)
	}
	return nil
}

// dropLastGrapheme removes the last user-perceived character, so an emoji
// with modifiers or a letter with a combining accent goes in one press.
func dropLastGrapheme(v string) string {
	last := 0
	state := -1
	for rest := v; rest != ""; {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		last = len(cluster)
	}
	return v[:len(v)-last]
}

func (s *State) submit(r keyboard.Route) []Request {
	if r == keyboard.RoutePrompt {
		return s.generate()
	}
	input := s.Main.Value()
	s.addLines(Line{Kind: LineInput, Text: input})
	if strings.Contains(strings.ToLower(input), "help") {
		s.addLines(Line{Kind: LineInfo, Text: "Try using the AI key."})
	}
	s.Main.Push("")
	s.OpenPanel(keyboard.PanelTerminal)
	return nil
}

// generate starts a command generation unless one is already running or
// the prompt is blank.
func (s *State) generate() []Request {
	if s.Generating || strings.TrimSpace(s.Prompt) == "" {
		return nil
	}
	s.Generating = true
	s.addLines(Line{Kind: LineInput, Text: "# Request: " + s.Prompt})
	return []Request{{
		Kind:   ReqGenerate,
		Text:   s.Prompt,
		Config: provider.ConfigFromSettings(s.Settings.AI),
	}}
}

// GenerationDone applies a finished generation. Provider failures arrive
// as "# Error: ..." commands and are shown like any other output.
func (s *State) GenerationDone(command string) {
	s.Generating = false
	s.addLines(Line{Kind: LineOutput, Text: command})
	s.Main.Push(command)
	s.OpenPanel(keyboard.PanelTerminal)
	s.ClosePanel(keyboard.PanelAI)
	s.Prompt = ""
}

// GenerationFailed records a generation that could not produce even an
// error line, such as one cancelled on shutdown.
func (s *State) GenerationFailed() {
	s.Generating = false
	s.addLines(Line{Kind: LineError, Text: "Failed to generate command."})
}

func (s *State) escape() []Request {
	s.Main.Push("")
	for _, p := range []keyboard.Panel{
		keyboard.PanelAI,
		keyboard.PanelCharMap,
		keyboard.PanelNano,
		keyboard.PanelSecurity,
		keyboard.PanelClipboard,
		keyboard.PanelSettings,
	} {
		s.ClosePanel(p)
	}
	return s.setListening(false)
}

func (s *State) admin() {
	if !s.Admin {
		s.Admin = true
		s.addLines(Line{Kind: LineInfo, Text: "Administrator mode active."})
	}
	if input := s.Main.Value(); strings.TrimSpace(input) != "" {
		s.addLines(
			Line{Kind: LineInput, Text: input},
			Line{Kind: LineInfo, Text: "Command executed."},
		)
		s.Main.Push("")
	}
	s.OpenPanel(keyboard.PanelTerminal)
}

// Undo steps the main buffer back one entry.
func (s *State) Undo() {
	if s.Main.Undo() {
		s.Notify("Undo")
		return
	}
	s.Notify("Nothing to undo")
}

// copyText records text in the clipboard history and asks for a system
// clipboard write. Empty text is ignored.
func (s *State) copyText(text string) []Request {
	if text == "" {
		return nil
	}
	s.Clipboard.Add(text)
	return []Request{{Kind: ReqClipboardWrite, Text: text}}
}

// ClipboardWritten applies the result of a system clipboard write.
func (s *State) ClipboardWritten(err error) {
	if err != nil {
		s.log.Printf("clipboard: write failed: %v", err)
		s.Notify("Copied to History")
		return
	}
	s.Notify("Copied")
}

// Pasted applies the result of a system clipboard read. The text goes to
// the buffer routed when the read completes.
func (s *State) Pasted(text string, err error) {
	if err != nil {
		s.log.Printf("clipboard: read failed: %v", err)
		s.Notify("Check Clipboard History")
		s.OpenPanel(keyboard.PanelClipboard)
		return
	}
	if text == "" {
		return
	}
	r := s.route()
	s.setBuffer(r, s.buffer(r)+text)
	s.Notify("Pasted")
	s.Clipboard.Add(text)
}

// InsertText appends text to the routed buffer. The character map and the
// nano shortcut bar insert through here.
func (s *State) InsertText(text string) {
	if text == "" {
		return
	}
	r := s.route()
	s.setBuffer(r, s.buffer(r)+text)
}

// InsertClip inserts a clipboard history entry picked by its text and
// closes the panel.
func (s *State) InsertClip(text string) bool {
	if text == "" {
		return false
	}
	s.InsertText(text)
	s.ClosePanel(keyboard.PanelClipboard)
	return true
}

func (s *State) setListening(on bool) []Request {
	if s.Listening == on {
		return nil
	}
	s.Listening = on
	if on {
		return []Request{{Kind: ReqStartListening, Text: s.Settings.VoiceCommand}}
	}
	return []Request{{Kind: ReqStopListening}}
}

// Transcribed appends a final speech transcript to the routed buffer.
func (s *State) Transcribed(text string) {
	if !s.Listening || strings.TrimSpace(text) == "" {
		return
	}
	s.InsertText(text + " ")
}

// ListeningFailed stops listening after the recognizer gave up.
func (s *State) ListeningFailed(err error) {
	s.Listening = false
	if err == nil {
		return
	}
	s.log.Printf("speech: %v", err)
	switch speech.KindOf(err) {
	case speech.KindPermissionDenied:
		s.Notify("Microphone access denied.")
	case speech.KindNetwork:
		s.Notify("Network Error")
	}
}

// SetSetting edits the in-memory settings. Nothing is persisted until
// SaveSettings.
func (s *State) SetSetting(key, value string) error {
	return s.Settings.Set(key, value)
}

// SaveSettings persists the settings and closes the settings panel.
func (s *State) SaveSettings() error {
	if s.store == nil {
		s.Notify("Error Saving Settings")
		return errNoStore
	}
	if err := s.store.Save(s.Settings); err != nil {
		s.log.Printf("settings: save failed: %v", err)
		s.Notify("Error Saving Settings")
		return err
	}
	s.ClosePanel(keyboard.PanelSettings)
	s.Notify("Settings Saved Successfully")
	return nil
}
