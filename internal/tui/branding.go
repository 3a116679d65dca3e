package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/panels/internal/config"
)

const AppName = "panels"

var LogoLines = []string{
	"┌─────┬─────┬─────┐",
	"│ ▄▄▄ │  ▄  │ ▄ ▄ │",
	"│ █▄█ │ █▀█ │ █▀█ │",
	"│ █   │ █ █ │ █ █ │",
	"└─────┴─────┴─────┘",
}

var BannerColors = []lipgloss.Color{
	lipgloss.Color("#F4A261"),
	lipgloss.Color("#E9C46A"),
	lipgloss.Color("#2A9D8F"),
	lipgloss.Color("#8AB17D"),
	lipgloss.Color("#F4A261"),
}

// Theme holds the styles derived from the configured colors.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
	Success   lipgloss.Color

	Logo       lipgloss.Style
	Title      lipgloss.Style
	Header     lipgloss.Style
	Number     lipgloss.Style
	Favorite   lipgloss.Style
	Help       lipgloss.Style
	StatusBar  lipgloss.Style
	Separator  lipgloss.Style
	StatusInfo lipgloss.Style
	StatusOK   lipgloss.Style
	StatusWarn lipgloss.Style
	StatusErr  lipgloss.Style
}

func colorOr(value, fallback string) lipgloss.Color {
	if value == "" {
		return lipgloss.Color(fallback)
	}
	return lipgloss.Color(value)
}

func NewTheme(c config.UIColors) *Theme {
	t := &Theme{
		Primary:   colorOr(c.Primary, "#F4A261"),
		Secondary: colorOr(c.Secondary, "#2A9D8F"),
		Accent:    colorOr(c.Accent, "#E9C46A"),
		Text:      colorOr(c.Text, "#EAEAEA"),
		Muted:     colorOr(c.Muted, "#94A3B8"),
		Error:     colorOr(c.Error, "#F87171"),
		Success:   colorOr(c.Success, "#4ADE80"),
	}

	t.Logo = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	t.Title = lipgloss.NewStyle().Foreground(t.Text).Bold(true).Padding(0, 1)
	t.Header = lipgloss.NewStyle().Foreground(t.Secondary).Bold(true)
	t.Number = lipgloss.NewStyle().Foreground(t.Accent)
	t.Favorite = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	t.Help = lipgloss.NewStyle().Foreground(t.Muted).Italic(true)
	t.StatusBar = lipgloss.NewStyle().Foreground(t.Muted).Padding(0, 1)
	t.Separator = lipgloss.NewStyle().Foreground(t.Muted)
	t.StatusInfo = lipgloss.NewStyle().Foreground(t.Muted)
	t.StatusOK = lipgloss.NewStyle().Foreground(t.Success)
	t.StatusWarn = lipgloss.NewStyle().Foreground(t.Accent)
	t.StatusErr = lipgloss.NewStyle().Foreground(t.Error).Bold(true)
	return t
}

func (t *Theme) status(kind StatusKind) lipgloss.Style {
	switch kind {
	case StatusSuccess:
		return t.StatusOK
	case StatusWarn:
		return t.StatusWarn
	case StatusError:
		return t.StatusErr
	default:
		return t.StatusInfo
	}
}

func (t *Theme) CompactBanner(message string) string {
	var colored []string
	for _, line := range LogoLines {
		colored = append(colored, t.Logo.Render(line))
	}
	return lipgloss.JoinVertical(
		lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, colored...),
		"",
		t.Help.Render(message),
	)
}

// ShowBanner prints the startup banner with the version tagline.
func ShowBanner(w io.Writer, version string) {
	lines := append([]string{}, LogoLines...)
	lines = append(lines, "")

	tag := "Web Comic Browser"
	if version != "" && version != "dev" {
		if version[0] != 'v' && version[0] != 'V' {
			version = "v" + version
		}
		tag = fmt.Sprintf("%s %s", tag, version)
	}
	lines = append(lines, tag)

	var colored []string
	for i, line := range lines {
		if line == "" {
			colored = append(colored, line)
			continue
		}
		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(LogoLines))
		colored = append(colored, style.Render(line))
	}

	banner := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(lipgloss.Color("#2A9D8F")).
		Padding(1, 3).
		MarginTop(1).
		Render(lipgloss.JoinVertical(lipgloss.Center, colored...))

	fmt.Fprintln(w, lipgloss.NewStyle().Width(60).Align(lipgloss.Center).Render(banner))
}
