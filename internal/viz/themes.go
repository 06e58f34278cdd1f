package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/loopsim/internal/dynamo"
)

// Theme colours the side panel of the live view.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	OnTrack lipgloss.Color
	Falling lipgloss.Color
	Landed  lipgloss.Color
	Warning lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:    "cyberpunk",
		Primary: lipgloss.Color("#ff00ff"),
		Muted:   lipgloss.Color("#666666"),
		Text:    lipgloss.Color("#ffffff"),
		OnTrack: lipgloss.Color("#00ff00"),
		Falling: lipgloss.Color("#ff0000"),
		Landed:  lipgloss.Color("#00ffff"),
		Warning: lipgloss.Color("#ff8800"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Text:    lipgloss.Color("#00ff00"),
		OnTrack: lipgloss.Color("#88ff88"),
		Falling: lipgloss.Color("#ffff00"),
		Landed:  lipgloss.Color("#00cc00"),
		Warning: lipgloss.Color("#ffff00"),
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Primary: lipgloss.Color("#00a8cc"),
		Muted:   lipgloss.Color("#4488aa"),
		Text:    lipgloss.Color("#e0f0ff"),
		OnTrack: lipgloss.Color("#00ff88"),
		Falling: lipgloss.Color("#ff4444"),
		Landed:  lipgloss.Color("#ffd700"),
		Warning: lipgloss.Color("#ffcc00"),
	}

	CurrentTheme = ThemeCyberpunk

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeOcean,
	}
)

func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Phase renders a phase label in its theme colour.
func (t Theme) Phase(p dynamo.Phase) string {
	c := t.OnTrack
	switch p {
	case dynamo.Falling:
		c = t.Falling
	case dynamo.Landed:
		c = t.Landed
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c).Render(strings.ToUpper(p.String()))
}
