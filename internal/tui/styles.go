package tui

import "github.com/charmbracelet/lipgloss"

var (
	PromptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("183"))
	InputStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	CursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	ThinkingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	FooterHead = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	FooterMeta = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	ErrorLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	InfoLineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("87"))
	OutputStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))

	TermTitleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("235")).Padding(0, 1)
	AdminTitleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("224")).Background(lipgloss.Color("88")).Padding(0, 1)
	NoticeStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("24")).Padding(0, 1)
	OverlayStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	SecurityScreenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("18")).Padding(1, 4)

	CompletionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	CompletionSelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62"))
)

// Theme colors the keyboard.
type Theme struct {
	Name   string
	Key    lipgloss.Color // key label
	Border lipgloss.Color
	Dim    lipgloss.Color // border at low opacity
	Accent lipgloss.Color // active modifiers, held keys
	Muted  lipgloss.Color // shifted and fn hints
	Bar    lipgloss.Color
}

var themes = map[string]Theme{
	"dark":  {Name: "dark", Key: "252", Border: "240", Dim: "236", Accent: "39", Muted: "244", Bar: "235"},
	"light": {Name: "light", Key: "235", Border: "248", Dim: "253", Accent: "27", Muted: "243", Bar: "254"},
	"blue":  {Name: "blue", Key: "195", Border: "25", Dim: "17", Accent: "51", Muted: "110", Bar: "18"},
	"cyber": {Name: "cyber", Key: "231", Border: "201", Dim: "53", Accent: "46", Muted: "207", Bar: "53"},
}

var highContrast = Theme{Name: "high-contrast", Key: "231", Border: "231", Dim: "231", Accent: "226", Muted: "231", Bar: "16"}

// ThemeFor returns the named theme, falling back to dark.
func ThemeFor(name string, contrast bool) Theme {
	if contrast {
		return highContrast
	}
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["dark"]
}

// borderColor maps the opacity setting onto the border shade.
func (t Theme) borderColor(opacity float64) lipgloss.Color {
	if opacity < 0.5 {
		return t.Dim
	}
	return t.Border
}
