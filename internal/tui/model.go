package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/batalabs/winkb/internal/app"
	"github.com/batalabs/winkb/internal/config"
	"github.com/batalabs/winkb/internal/keyboard"
	"github.com/batalabs/winkb/internal/provider"
	"github.com/batalabs/winkb/internal/speech"
)

const (
	noticeTTL     = 2 * time.Second
	flashTTL      = 150 * time.Millisecond
	defaultWidth  = 100
	defaultHeight = 40
)

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

// RepeatMsg is a press-and-hold repeat tick from the Repeater.
type RepeatMsg struct {
	KeyID string
	Gen   uint64
}

// GenerateDoneMsg carries a finished command generation. Err is set only
// when the generation was cancelled.
type GenerateDoneMsg struct {
	Command string
	Err     error
}

// TranscriptMsg is a final speech transcript from listening session Gen.
type TranscriptMsg struct {
	Gen  int
	Text string
}

// ListenEndedMsg reports that listening session Gen stopped.
type ListenEndedMsg struct {
	Gen int
	Err error
}

type noticeExpiredMsg struct{ Seq int }

type flashDoneMsg struct{ Seq int }

// ---------------------------------------------------------------------------
// Bubble Tea model
// ---------------------------------------------------------------------------

// Model is the Bubble Tea model for the keyboard.
type Model struct {
	width  int
	height int

	state     *app.State
	registry  *provider.Registry
	clipboard Clipboard
	log       *config.Logger
	spinner   spinner.Model
	repeater  *keyboard.Repeater

	// newRecognizer builds the speech recognizer for the configured command.
	newRecognizer func(command string) speech.Recognizer

	ctx    context.Context
	cancel context.CancelFunc

	listenGen    int
	listenCancel context.CancelFunc

	held      string // key held with the mouse
	flash     string // key highlighted after a physical press
	flashSeq  int
	noticeSeq int
	minimized bool

	configPicker *ConfigPicker
	clipPicker   *ClipboardPicker
	charPicker   *CharMapPicker
}

// NewModel creates the keyboard model over state. Generations go through
// registry and clipboard I/O through cb.
func NewModel(state *app.State, registry *provider.Registry, cb Clipboard, log *config.Logger) Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	if cb == nil {
		cb = SystemClipboard
	}
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		width:     defaultWidth,
		height:    defaultHeight,
		state:     state,
		registry:  registry,
		clipboard: cb,
		log:       log,
		spinner:   sp,
		repeater: keyboard.NewRepeater(keyboard.WallClock, func(t keyboard.Tick) {
			// The first activation is applied synchronously by the click.
			if t.Initial {
				return
			}
			send(RepeatMsg{KeyID: t.KeyID, Gen: t.Gen})
		}),
		newRecognizer: func(command string) speech.Recognizer {
			return speech.NewCommandRecognizer(command)
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// State returns the application state behind the model.
func (m Model) State() *app.State { return m.state }

// Init initializes the Bubble Tea model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.SetWindowTitle("Windows 11 Keyboard"))
}

// Update handles Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case RepeatMsg:
		if !m.repeater.Live(msg.Gen) {
			return m, nil
		}
		return m.press(msg.KeyID)

	case PasteMsg:
		m.state.Pasted(msg.Text, msg.Err)
		return m.settle(nil)

	case ClipboardWriteMsg:
		m.state.ClipboardWritten(msg.Err)
		return m.settle(nil)

	case GenerateDoneMsg:
		if msg.Err != nil {
			m.log.Printf("generate: %v", msg.Err)
			m.state.GenerationFailed()
		} else {
			m.state.GenerationDone(msg.Command)
		}
		return m.settle(nil)

	case TranscriptMsg:
		if msg.Gen == m.listenGen {
			m.state.Transcribed(msg.Text)
		}
		return m.settle(nil)

	case ListenEndedMsg:
		if msg.Gen != m.listenGen || !m.state.Listening {
			return m, nil
		}
		m.stopListening()
		m.state.ListeningFailed(msg.Err)
		return m.settle(nil)

	case noticeExpiredMsg:
		m.state.ExpireNotice(msg.Seq)
		return m, nil

	case flashDoneMsg:
		if msg.Seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case spinner.TickMsg:
		if m.state.Generating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	default:
		return m, nil
	}
}

// ---------------------------------------------------------------------------
// Keys
// ---------------------------------------------------------------------------

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	if m.minimized {
		if msg.Type == tea.KeyCtrlN {
			m.minimized = false
		}
		return m, nil
	}

	// Route to pickers when active.
	if m.configPicker.IsActive() {
		return m.handleConfigPickerKey(msg)
	}
	if m.clipPicker.IsActive() {
		return m.handleClipPickerKey(msg)
	}
	if m.charPicker.IsActive() {
		return m.handleCharPickerKey(msg)
	}
	if m.state.Open(keyboard.PanelSecurity) {
		if msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter {
			m.state.ClosePanel(keyboard.PanelSecurity)
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlN:
		m.releaseKey()
		m.minimized = true
		return m, nil

	case tea.KeyCtrlZ:
		m.state.Undo()
		return m.settle(nil)

	case tea.KeyCtrlV:
		return m.settle(m.run([]app.Request{{Kind: app.ReqClipboardRead}}))

	case tea.KeyRunes:
		m.state.InsertText(string(msg.Runes))
		var cmds []tea.Cmd
		if len(msg.Runes) == 1 {
			if id, ok := m.state.Layout.KeyIDForRune(msg.Runes[0]); ok {
				cmds = append(cmds, m.flashKey(id))
			}
		}
		return m.settle(cmds)
	}

	if id, ok := keyboard.KeyIDForName(msg.String()); ok {
		flash := m.flashKey(id)
		next, cmd := m.press(id)
		return next, tea.Batch(flash, cmd)
	}
	return m, nil
}

func (m Model) handleConfigPickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.configPicker
	switch msg.Type {
	case tea.KeyEsc:
		if !p.Back() {
			m.state.ClosePanel(keyboard.PanelSettings)
		}
		return m.settle(nil)
	case tea.KeyCtrlS:
		if err := m.state.SaveSettings(); err != nil {
			p.SetError("Save failed: " + err.Error())
		}
		return m.settle(nil)
	case tea.KeyUp:
		p.MoveUp()
	case tea.KeyDown:
		p.MoveDown()
	case tea.KeyEnter:
		switch p.mode {
		case configPickerGroups:
			p.EnterGroup()
		case configPickerKeys:
			if key, value, ok := p.Activate(m.state.Settings); ok {
				return m, m.applySetting(key, value)
			}
		case configPickerEdit:
			if key, value, ok := p.CommitEdit(); ok {
				return m, m.applySetting(key, value)
			}
		}
	case tea.KeySpace:
		if p.Editing() {
			p.AppendEdit(' ')
		}
	case tea.KeyBackspace, tea.KeyDelete:
		if p.Editing() {
			p.BackspaceEdit()
		}
	case tea.KeyRunes:
		if p.Editing() {
			for _, r := range msg.Runes {
				p.AppendEdit(r)
			}
		}
	}
	return m, nil
}

// applySetting edits one setting from the settings panel. Changing the
// window layer switches the alternate screen.
func (m Model) applySetting(key, value string) tea.Cmd {
	if err := m.state.SetSetting(key, value); err != nil {
		m.configPicker.SetError(err.Error())
		return nil
	}
	m.configPicker.Refresh(m.state.Settings)
	if key == "display.window_layer" {
		if m.state.Settings.WindowLayer == "always-on-top" {
			return tea.EnterAltScreen
		}
		return tea.ExitAltScreen
	}
	return nil
}

func (m Model) handleClipPickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.clipPicker
	switch msg.Type {
	case tea.KeyEsc:
		m.state.ClosePanel(keyboard.PanelClipboard)
		return m.settle(nil)
	case tea.KeyUp:
		p.MoveUp()
	case tea.KeyDown:
		p.MoveDown()
	case tea.KeyEnter:
		if text, ok := p.Selected(); ok {
			m.state.InsertClip(text)
		}
		return m.settle(nil)
	case tea.KeyBackspace:
		p.BackspaceFilter()
	case tea.KeySpace:
		p.AppendFilter(' ')
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			p.AppendFilter(r)
		}
	}
	return m, nil
}

func (m Model) handleCharPickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.charPicker
	switch msg.Type {
	case tea.KeyEsc:
		m.state.ClosePanel(keyboard.PanelCharMap)
		return m.settle(nil)
	case tea.KeyUp:
		p.MoveUp()
	case tea.KeyDown:
		p.MoveDown()
	case tea.KeyLeft:
		p.MoveLeft()
	case tea.KeyRight:
		p.MoveRight()
	case tea.KeyEnter:
		m.state.InsertText(p.Selected())
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// Mouse
// ---------------------------------------------------------------------------

func inZone(id string, msg tea.MouseMsg) bool {
	z := zone.Get(id)
	return z != nil && z.InBounds(msg)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		return m.handleClick(msg)

	case tea.MouseActionRelease:
		m.releaseKey()
		return m, nil

	case tea.MouseActionMotion:
		if m.held == "" {
			return m, nil
		}
		if id, ok := keyAt(m.state.Layout, msg); !ok || id != m.held {
			m.releaseKey()
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleClick(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.minimized {
		if inZone(zoneRestore, msg) {
			m.minimized = false
		}
		return m, nil
	}
	if m.state.Open(keyboard.PanelSecurity) {
		if inZone(zoneSecCancel, msg) {
			m.state.ClosePanel(keyboard.PanelSecurity)
		}
		return m, nil
	}
	if inZone(zoneMinimize, msg) {
		m.releaseKey()
		m.minimized = true
		return m, nil
	}
	if m.state.Open(keyboard.PanelTerminal) && inZone(zoneAdminToggle, msg) {
		m.state.ToggleAdmin()
		return m, nil
	}
	if m.clipPicker.IsActive() {
		if text, ok := m.clipPicker.entryAt(func(id string) bool { return inZone(id, msg) }); ok {
			m.state.InsertClip(text)
			return m.settle(nil)
		}
	}
	if m.charPicker.IsActive() {
		for i, ch := range keyboard.SpecialChars {
			if inZone(charZoneID(i), msg) {
				m.charPicker.selectedIdx = i
				m.state.InsertText(ch)
				return m, nil
			}
		}
	}
	if m.state.Open(keyboard.PanelNano) {
		for i, sc := range keyboard.NanoShortcuts {
			if inZone(nanoZoneID(i), msg) {
				m.state.InsertText(sc.Code)
				return m, nil
			}
		}
	}

	id, ok := keyAt(m.state.Layout, msg)
	if !ok {
		return m, nil
	}
	k, _ := m.state.Layout.Lookup(id)
	m.held = id
	m.repeater.Press(k)
	next, cmd := m.press(id)
	return next, tea.Batch(cmd, m.clickSound())
}

// releaseKey stops any press-and-hold repeat.
func (m *Model) releaseKey() {
	m.held = ""
	m.repeater.Release()
}

// ---------------------------------------------------------------------------
// State plumbing
// ---------------------------------------------------------------------------

// press dispatches one key activation and performs the resulting requests.
func (m Model) press(id string) (tea.Model, tea.Cmd) {
	return m.settle(m.run(m.state.Press(id)))
}

// run turns state requests into commands.
func (m *Model) run(reqs []app.Request) []tea.Cmd {
	var cmds []tea.Cmd
	for _, r := range reqs {
		switch r.Kind {
		case app.ReqClipboardWrite:
			cmds = append(cmds, WriteClipboardCmd(m.clipboard, r.Text))
		case app.ReqClipboardRead:
			cmds = append(cmds, ReadClipboardCmd(m.clipboard))
		case app.ReqGenerate:
			cmds = append(cmds, m.generateCmd(r), m.spinner.Tick)
		case app.ReqStartListening:
			if strings.TrimSpace(r.Text) == "" {
				m.state.ListeningFailed(nil)
				m.state.Notify("Voice input not supported")
				continue
			}
			cmds = append(cmds, m.startListening(r.Text))
		case app.ReqStopListening:
			m.stopListening()
		}
	}
	return cmds
}

// settle syncs panel overlays with the state and schedules notice expiry.
func (m Model) settle(cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	m.syncPanels()
	if n := m.state.Notice; n.Seq != m.noticeSeq && n.Text != "" {
		m.noticeSeq = n.Seq
		seq := n.Seq
		cmds = append(cmds, tea.Tick(noticeTTL, func(time.Time) tea.Msg {
			return noticeExpiredMsg{Seq: seq}
		}))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) syncPanels() {
	s := m.state
	switch {
	case !s.Open(keyboard.PanelSettings):
		m.configPicker = nil
	case !m.configPicker.IsActive():
		m.configPicker = NewConfigPicker(s.Settings)
	}
	switch {
	case !s.Open(keyboard.PanelClipboard):
		m.clipPicker = nil
	case !m.clipPicker.IsActive():
		m.clipPicker = NewClipboardPicker(s.Clipboard.Items())
	default:
		m.clipPicker.Refresh(s.Clipboard.Items())
	}
	switch {
	case !s.Open(keyboard.PanelCharMap):
		m.charPicker = nil
	case !m.charPicker.IsActive():
		m.charPicker = NewCharMapPicker()
	}
}

func (m *Model) flashKey(id string) tea.Cmd {
	m.flashSeq++
	m.flash = id
	seq := m.flashSeq
	return tea.Tick(flashTTL, func(time.Time) tea.Msg { return flashDoneMsg{Seq: seq} })
}

func (m Model) clickSound() tea.Cmd {
	if !m.state.Settings.ClickSound {
		return nil
	}
	return func() tea.Msg {
		fmt.Fprint(os.Stderr, "\a")
		return nil
	}
}

func (m Model) generateCmd(r app.Request) tea.Cmd {
	ctx, reg := m.ctx, m.registry
	return func() tea.Msg {
		cmd := reg.GenerateCommand(ctx, r.Text, r.Config)
		return GenerateDoneMsg{Command: cmd, Err: ctx.Err()}
	}
}

// startListening runs one listening session until it is stopped or gives
// up. Transcripts are posted to the program as they arrive.
func (m *Model) startListening(command string) tea.Cmd {
	m.stopListening()
	m.listenGen++
	gen := m.listenGen
	ctx, cancel := context.WithCancel(m.ctx)
	m.listenCancel = cancel

	l := speech.NewListener(m.newRecognizer(command), func(text string) {
		send(TranscriptMsg{Gen: gen, Text: text})
	}, m.log)
	return func() tea.Msg {
		return ListenEndedMsg{Gen: gen, Err: l.Run(ctx)}
	}
}

func (m *Model) stopListening() {
	if m.listenCancel != nil {
		m.listenCancel()
		m.listenCancel = nil
	}
}

// quit cancels timers, the listener and in-flight generations.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.releaseKey()
	m.repeater.Stop()
	m.stopListening()
	m.cancel()
	return m, tea.Quit
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

// View renders the keyboard and its open panels.
func (m Model) View() string {
	if m.minimized {
		return zone.Scan(minimizedBar(m.state))
	}
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	if m.state.Open(keyboard.PanelSecurity) {
		return zone.Scan(securityScreen(width))
	}

	s := m.state
	set := s.Settings
	theme := ThemeFor(set.Theme, set.HighContrast)

	var parts []string
	if set.ShowBar {
		parts = append(parts, titleBar(s, theme, width))
	}
	if s.Open(keyboard.PanelTerminal) {
		thinking := ""
		if s.Generating {
			thinking = m.spinner.View()
		}
		term := terminalView{state: s, width: width - 8, height: m.terminalRows(), thinking: thinking}
		parts = append(parts, overlay(term.render(), theme, width))
	}
	if s.Open(keyboard.PanelAI) {
		parts = append(parts, overlay(aiPanel(s, m.spinner.View(), width-8), theme, width))
	}
	if m.configPicker.IsActive() {
		parts = append(parts, overlay(m.configPicker.View(width-8), theme, width))
	}
	if m.clipPicker.IsActive() {
		parts = append(parts, overlay(m.clipPicker.View(width-8), theme, width))
	}
	if m.charPicker.IsActive() {
		parts = append(parts, overlay(m.charPicker.View(width-8), theme, width))
	}
	if set.ShowInputPreview {
		parts = append(parts, inputPreview(s, width))
	}

	kb := keyboardView{
		layout:    s.Layout,
		mods:      s.Mods,
		listening: s.Listening,
		held:      m.held,
		flash:     m.flash,
		theme:     theme,
		opacity:   set.Opacity,
		unit:      keyUnit(s.Layout, width, set.FontScale),
	}
	parts = append(parts, kb.render())
	if s.Open(keyboard.PanelNano) {
		parts = append(parts, nanoBar(width))
	}
	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) terminalRows() int {
	if m.height <= 0 {
		return 10
	}
	return min(max(m.height/4, 4), 14)
}
