package viz

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type MenuItem struct {
	Name        string
	Description string
}

// Menu lets the user pick one item with the arrow keys.
type Menu struct {
	items    []MenuItem
	cursor   int
	chosen   string
	canceled bool
}

func NewMenu(items []MenuItem) Menu {
	return Menu{items: items}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "esc", "ctrl+c":
		m.canceled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.items) > 0 {
			m.chosen = m.items[m.cursor].Name
		}
		return m, tea.Quit
	}
	return m, nil
}

// Choice is the selected item name, empty when the menu was canceled.
func (m Menu) Choice() string {
	if m.canceled {
		return ""
	}
	return m.chosen
}

func (m Menu) View() string {
	theme := CurrentTheme
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).MarginBottom(1)
	selected := lipgloss.NewStyle().Foreground(theme.OnTrack).Bold(true)
	muted := lipgloss.NewStyle().Foreground(theme.Muted)

	var s strings.Builder
	s.WriteString(title.Render("LOOPSIM") + "\n")
	for i, item := range m.items {
		name := labelStyle.Width(16).Render(item.Name)
		if i == m.cursor {
			s.WriteString(selected.Render("▸ ") + selected.Render(name) + muted.Render(item.Description) + "\n")
			continue
		}
		s.WriteString("  " + name + muted.Render(item.Description) + "\n")
	}
	s.WriteString(helpStyle.Render("↑↓ select  enter start  q quit"))
	return canvasStyle.Render(s.String())
}

// Pick runs the menu and returns the chosen item name.
func Pick(items []MenuItem) (string, error) {
	final, err := tea.NewProgram(NewMenu(items)).Run()
	if err != nil {
		return "", err
	}
	return final.(Menu).Choice(), nil
}
