package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/sandeepkv93/nagd/internal/model"
)

type AppData struct {
	Header       string
	LeftPane     string
	RightPane    string
	StatusLine   string
	StatusError  bool
	Footer       string
	Notification string
}

// Theme holds the styles for one resolved theme mode.
type Theme struct {
	Dark     bool
	Header   lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Panel    lipgloss.Style
	Alert    lipgloss.Style
	Footer   lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
}

// ThemeFor resolves mode to concrete styles. ThemeSystem follows the
// terminal background as reported by darkBackground.
func ThemeFor(mode model.ThemeMode, darkBackground func() bool) Theme {
	dark := true
	switch mode {
	case model.ThemeLight:
		dark = false
	case model.ThemeDark:
		dark = true
	default:
		if darkBackground != nil {
			dark = darkBackground()
		}
	}
	if dark {
		return Theme{
			Dark:     true,
			Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
			Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
			Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
			Panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
			Alert:    lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("9")).Padding(0, 1),
			Footer:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
			Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		}
	}
	return Theme{
		Dark:     false,
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("244")).Padding(0, 1),
		Alert:    lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("1")).Padding(0, 1),
		Footer:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

// GlamourStyle is the glamour standard style matching the theme.
func (t Theme) GlamourStyle() string {
	if t.Dark {
		return "dark"
	}
	return "light"
}

func RenderApp(theme Theme, data AppData) string {
	left := theme.Panel.Width(58).Render(data.LeftPane)
	row := left
	if strings.TrimSpace(data.RightPane) != "" {
		right := theme.Panel.Width(58).Render(data.RightPane)
		row = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	lines := []string{
		theme.Header.Render(data.Header),
	}
	if data.Notification != "" {
		lines = append(lines, theme.Alert.Render(data.Notification))
	}
	lines = append(lines, row)
	if data.StatusLine != "" {
		if data.StatusError {
			lines = append(lines, theme.Error.Render(data.StatusLine))
		} else {
			lines = append(lines, theme.Status.Render(data.StatusLine))
		}
	}
	if data.Footer != "" {
		lines = append(lines, theme.Footer.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

func RenderMarkdown(md string, style string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	if style == "" {
		style = "dark"
	}
	out, err := glamour.Render(md, style)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
