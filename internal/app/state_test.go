package app

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/batalabs/winkb/internal/config"
	"github.com/batalabs/winkb/internal/keyboard"
	"github.com/batalabs/winkb/internal/speech"
)

type memBlobs struct {
	data   map[string][]byte
	putErr error
}

func (m *memBlobs) Get(key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memBlobs) Put(key string, value []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = value
	return nil
}

func typeText(t *testing.T, s *State, text string) {
	t.Helper()
	for _, r := range text {
		id, ok := s.Layout.KeyIDForRune(r)
		require.True(t, ok, "no key for %q", r)
		s.Press(id)
	}
}

func TestNew_Banner(t *testing.T) {
	s := New(nil, nil)
	require.Equal(t, []Line{{Kind: LineInfo, Text: "PowerShell 7.4.1\nLoading AI modules..."}}, s.Transcript)
	require.Equal(t, "", s.Input())
	require.Equal(t, config.DefaultSettings(), s.Settings)
}

func TestPress_CaseScenario(t *testing.T) {
	s := New(nil, nil)
	s.Press("KeyA")
	require.Equal(t, "a", s.Input())

	s.Press("ShiftLeft")
	require.True(t, s.Mods.Shift)
	s.Press("KeyA")
	require.Equal(t, "aA", s.Input())
	require.False(t, s.Mods.Shift)
}

func TestPress_UnknownKeyIgnored(t *testing.T) {
	s := New(nil, nil)
	require.Nil(t, s.Press("NoSuchKey"))
	require.Equal(t, "", s.Input())
	require.Equal(t, 1, s.Main.Len())
}

func TestPress_OnePushPerDispatch(t *testing.T) {
	s := New(nil, nil)
	typeText(t, s, "abc")
	require.Equal(t, 4, s.Main.Len())

	s.Press("ControlLeft")
	s.Press("KeyZ")
	require.Equal(t, "ab", s.Input())
	require.Equal(t, "Undo", s.Notice.Text)
	require.False(t, s.Mods.Ctrl)
}

func TestUndo_HelloScenario(t *testing.T) {
	s := New(nil, nil)
	typeText(t, s, "hello")
	s.Undo()
	require.Equal(t, "hell", s.Input())
}

func TestUndo_NothingToUndo(t *testing.T) {
	s := New(nil, nil)
	s.Undo()
	require.Equal(t, "Nothing to undo", s.Notice.Text)
	require.Equal(t, "", s.Input())
}

func TestPress_BackspaceIsRuneAware(t *testing.T) {
	s := New(nil, nil)
	s.InsertText("café")
	s.Press("Backspace")
	require.Equal(t, "caf", s.Input())

	s.Press("Clear")
	require.Equal(t, "", s.Input())
	s.Press("Backspace")
	require.Equal(t, "", s.Input())
}

func TestPress_BackspaceRemovesWholeGrapheme(t *testing.T) {
	s := New(nil, nil)
	s.InsertText("ok👍🏽")
	s.Press("Backspace")
	require.Equal(t, "ok", s.Input())

	s.InsertText("e\u0301")
	s.Press("Backspace")
	require.Equal(t, "ok", s.Input())
}

func TestPress_FnLayer(t *testing.T) {
	s := New(nil, nil)
	s.Press("Fn")
	s.Press("Digit5")
	require.Equal(t, "[F5]", s.Input())
	require.True(t, s.Mods.Fn)
}

func TestCut_Draft(t *testing.T) {
	s := New(nil, nil)
	typeText(t, s, "draft")

	reqs := s.Press("Cut")
	require.Equal(t, []Request{{Kind: ReqClipboardWrite, Text: "draft"}}, reqs)
	front, ok := s.Clipboard.Front()
	require.True(t, ok)
	require.Equal(t, "draft", front)
	require.Equal(t, "", s.Input())
	require.Equal(t, "Cut", s.Notice.Text)
}

func TestCopy(t *testing.T) {
	s := New(nil, nil)
	require.Nil(t, s.Press("Copy"), "empty buffer is not copied")
	require.Zero(t, s.Clipboard.Len())

	typeText(t, s, "dir")
	reqs := s.Press("Copy")
	require.Equal(t, []Request{{Kind: ReqClipboardWrite, Text: "dir"}}, reqs)
	require.Equal(t, "dir", s.Input())

	s.ClipboardWritten(nil)
	require.Equal(t, "Copied", s.Notice.Text)
	s.ClipboardWritten(errors.New("no clipboard utility"))
	require.Equal(t, "Copied to History", s.Notice.Text)
	require.Equal(t, 1, s.Clipboard.Len())
}

func TestCopy_CtrlC(t *testing.T) {
	s := New(nil, nil)
	typeText(t, s, "ls")
	s.Press("ControlLeft")
	reqs := s.Press("KeyC")
	require.Equal(t, []Request{{Kind: ReqClipboardWrite, Text: "ls"}}, reqs)
	require.Equal(t, "ls", s.Input())
}

func TestPaste(t *testing.T) {
	s := New(nil, nil)
	require.Equal(t, []Request{{Kind: ReqClipboardRead}}, s.Press("Paste"))

	s.Pasted("Get-Date", nil)
	require.Equal(t, "Get-Date", s.Input())
	require.Equal(t, "Pasted", s.Notice.Text)
	front, _ := s.Clipboard.Front()
	require.Equal(t, "Get-Date", front)
}

func TestPaste_RoutedAtCompletion(t *testing.T) {
	s := New(nil, nil)
	s.Press("Paste")
	s.Press("AI")
	s.Pasted("list files", nil)
	require.Equal(t, "list files", s.Prompt)
	require.Equal(t, "", s.Input())
}

func TestPaste_Failure(t *testing.T) {
	s := New(nil, nil)
	s.Pasted("", errors.New("denied"))
	require.Equal(t, "Check Clipboard History", s.Notice.Text)
	require.True(t, s.Open(keyboard.PanelClipboard))
	require.Equal(t, "", s.Input())
}

func TestInsertClip(t *testing.T) {
	s := New(nil, nil)
	s.Clipboard.Add("one")
	s.Clipboard.Add("two")
	s.Press("Clipboard")
	require.True(t, s.Open(keyboard.PanelClipboard))

	require.True(t, s.InsertClip("one"))
	require.Equal(t, "one", s.Input())
	require.False(t, s.Open(keyboard.PanelClipboard))
	require.False(t, s.InsertClip(""))
	require.Equal(t, "one", s.Input())
}

func TestEnter_Transcript(t *testing.T) {
	s := New(nil, nil)
	typeText(t, s, "get help")
	s.Press("Enter")

	require.Equal(t, []Line{
		{Kind: LineInfo, Text: Banner},
		{Kind: LineInput, Text: "get help"},
		{Kind: LineInfo, Text: "Try using the AI key."},
	}, s.Transcript)
	require.Equal(t, "", s.Input())
	require.True(t, s.Open(keyboard.PanelTerminal))
}

func TestGenerate_Flow(t *testing.T) {
	s := New(nil, nil)
	s.Settings.AI.APIKey = "k"
	s.Press("AI")
	typeText(t, s, "list files")
	require.Equal(t, "list files", s.Prompt)
	require.Equal(t, "", s.Input())

	reqs := s.Press("Enter")
	require.Len(t, reqs, 1)
	require.Equal(t, ReqGenerate, reqs[0].Kind)
	require.Equal(t, "list files", reqs[0].Text)
	require.Equal(t, "gemini", reqs[0].Config.Provider)
	require.Equal(t, "k", reqs[0].Config.APIKey)
	require.True(t, s.Generating)
	require.Equal(t, Line{Kind: LineInput, Text: "# Request: list files"}, s.Transcript[len(s.Transcript)-1])

	require.Nil(t, s.Press("Enter"), "one generation in flight")

	s.GenerationDone("Get-ChildItem")
	require.False(t, s.Generating)
	require.Equal(t, "Get-ChildItem", s.Input())
	require.Equal(t, "", s.Prompt)
	require.False(t, s.Open(keyboard.PanelAI))
	require.True(t, s.Open(keyboard.PanelTerminal))
	require.Equal(t, Line{Kind: LineOutput, Text: "Get-ChildItem"}, s.Transcript[len(s.Transcript)-1])
}

func TestGenerate_BlankPromptIgnored(t *testing.T) {
	s := New(nil, nil)
	s.Press("AI")
	s.Press("Space")
	require.Nil(t, s.Press("Enter"))
	require.False(t, s.Generating)
}

func TestGenerationFailed(t *testing.T) {
	s := New(nil, nil)
	s.Generating = true
	s.GenerationFailed()
	require.False(t, s.Generating)
	require.Equal(t, LineError, s.Transcript[len(s.Transcript)-1].Kind)
}

func TestAdmin(t *testing.T) {
	s := New(nil, nil)
	s.Press("PSAdmin")
	require.True(t, s.Admin)
	require.Equal(t, `C:\Windows\System32`, s.Path())
	require.Equal(t, Line{Kind: LineInfo, Text: "Administrator mode active."}, s.Transcript[1])
	require.Len(t, s.Transcript, 2)

	typeText(t, s, "whoami")
	s.Press("PSAdmin")
	require.Equal(t, []Line{
		{Kind: LineInfo, Text: Banner},
		{Kind: LineInfo, Text: "Administrator mode active."},
		{Kind: LineInput, Text: "whoami"},
		{Kind: LineInfo, Text: "Command executed."},
	}, s.Transcript)
	require.Equal(t, "", s.Input())
	require.True(t, s.Open(keyboard.PanelTerminal))

	s.ToggleAdmin()
	require.Equal(t, `C:\Users\User`, s.Path())
}

func TestPanels(t *testing.T) {
	s := New(nil, nil)
	s.Press("CharMap")
	require.True(t, s.Open(keyboard.PanelCharMap))
	s.Press("Nano")
	require.True(t, s.Open(keyboard.PanelNano))
	require.False(t, s.Open(keyboard.PanelCharMap))

	s.Press("CAD")
	require.True(t, s.Open(keyboard.PanelSecurity))
	s.Press("Settings")
	require.True(t, s.Open(keyboard.PanelSettings))

	s.Press("Clipboard")
	s.Press("Clipboard")
	require.False(t, s.Open(keyboard.PanelClipboard))

	s.Press("LeftClick")
	require.Equal(t, "Left Click", s.Notice.Text)
	s.Press("SelectAll")
	require.Equal(t, "Select All", s.Notice.Text)
}

func TestEscape(t *testing.T) {
	s := New(nil, nil)
	typeText(t, s, "abc")
	s.Press("Mic")
	for _, id := range []string{"AI", "Nano", "CAD", "Clipboard", "Settings"} {
		s.Press(id)
	}

	reqs := s.Press("Esc")
	require.Equal(t, []Request{{Kind: ReqStopListening}}, reqs)
	require.False(t, s.Listening)
	require.Equal(t, "", s.Input())
	for _, p := range []keyboard.Panel{keyboard.PanelAI, keyboard.PanelNano, keyboard.PanelSecurity, keyboard.PanelClipboard, keyboard.PanelSettings} {
		require.False(t, s.Open(p), p.String())
	}
}

func TestListening(t *testing.T) {
	s := New(nil, nil)
	s.Settings.VoiceCommand = "whisper-stream"

	reqs := s.Press("Mic")
	require.Equal(t, []Request{{Kind: ReqStartListening, Text: "whisper-stream"}}, reqs)
	require.True(t, s.Listening)

	s.Transcribed("get date")
	require.Equal(t, "get date ", s.Input())
	s.Press("AI")
	s.Transcribed("hello")
	require.Equal(t, "hello ", s.Prompt)

	require.Equal(t, []Request{{Kind: ReqStopListening}}, s.Press("Mic"))
	s.Transcribed("late")
	require.Equal(t, "hello ", s.Prompt)
}

func TestListeningFailed(t *testing.T) {
	tests := []struct {
		err    error
		notice string
	}{
		{&speech.RecognitionError{Kind: speech.KindPermissionDenied}, "Microphone access denied."},
		{&speech.RecognitionError{Kind: speech.KindNetwork}, "Network Error"},
		{&speech.RecognitionError{Kind: speech.KindStartFailed}, ""},
		{errors.New("boom"), ""},
		{nil, ""},
	}
	for _, tt := range tests {
		s := New(nil, nil)
		s.Press("Mic")
		s.ListeningFailed(tt.err)
		require.False(t, s.Listening)
		require.Equal(t, tt.notice, s.Notice.Text)
	}
}

func TestNoticeExpiry(t *testing.T) {
	s := New(nil, nil)
	s.Notify("first")
	first := s.Notice.Seq
	s.Notify("second")
	s.ExpireNotice(first)
	require.Equal(t, "second", s.Notice.Text)
	s.ExpireNotice(s.Notice.Seq)
	require.Equal(t, "", s.Notice.Text)
}

func TestSettings_SaveAndReload(t *testing.T) {
	blobs := &memBlobs{}
	store := config.NewSettingsStore(blobs, nil)
	s := New(store, nil)

	require.NoError(t, s.SetSetting("display.theme", "cyber"))
	require.Error(t, s.SetSetting("display.opacity", "5"))
	s.OpenPanel(keyboard.PanelSettings)
	require.NoError(t, s.SaveSettings())
	require.Equal(t, "Settings Saved Successfully", s.Notice.Text)
	require.False(t, s.Open(keyboard.PanelSettings))
	require.True(t, strings.Contains(string(blobs.data[config.StorageKey]), `"cyber"`))

	reloaded := New(store, nil)
	require.Equal(t, "cyber", reloaded.Settings.Theme)
}

func TestSettings_SaveError(t *testing.T) {
	store := config.NewSettingsStore(&memBlobs{putErr: errors.New("disk full")}, nil)
	s := New(store, nil)
	s.OpenPanel(keyboard.PanelSettings)
	require.Error(t, s.SaveSettings())
	require.Equal(t, "Error Saving Settings", s.Notice.Text)
	require.True(t, s.Open(keyboard.PanelSettings))

	require.Error(t, New(nil, nil).SaveSettings())
}
