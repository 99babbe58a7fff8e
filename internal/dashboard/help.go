package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sysdeck/internal/settings"
)

// Help overlay styles
var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Background(ColorSurfaceBg).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			Width(14)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)
)

// helpLines lists the registered shortcuts, one line per description so
// aliases like "k" and "Up" share a row.
func (m Model) helpLines() []string {
	var (
		order []string
		keys  = map[string][]string{}
	)
	for _, sc := range m.app.Shortcuts.All() {
		if _, seen := keys[sc.Description]; !seen {
			order = append(order, sc.Description)
		}
		keys[sc.Description] = append(keys[sc.Description], sc.Label())
	}

	lines := make([]string, len(order))
	for i, desc := range order {
		lines[i] = helpKeyStyle.Render(strings.Join(keys[desc], " / ")) + helpDescStyle.Render(desc)
	}
	return lines
}

// renderHelpOverlay renders a centered box with the keyboard shortcuts.
func (m Model) renderHelpOverlay() string {
	lines := []string{helpTitleStyle.Render("Keyboard Shortcuts")}
	lines = append(lines, m.helpLines()...)
	lines = append(lines, "", LabelStyle.Render("Press Esc or Ctrl+H to close"))
	return m.place(helpBoxStyle.Render(strings.Join(lines, "\n")))
}

// renderSettingsOverlay shows the stored preferences. Editing happens
// through `sysdeck settings set`.
func (m Model) renderSettingsOverlay() string {
	current := m.app.Settings.Get()
	lines := []string{helpTitleStyle.Render("Settings")}
	for _, key := range settings.Keys() {
		v, err := current.Get(key)
		if err != nil {
			continue
		}
		lines = append(lines, helpKeyStyle.Width(26).Render(key)+helpDescStyle.Render(fmt.Sprint(v)))
	}
	lines = append(lines,
		"",
		LabelStyle.Render("Stored in "+m.app.Settings.Path()),
		LabelStyle.Render("Change with: sysdeck settings set <key> <value>"),
	)
	return m.place(helpBoxStyle.Render(strings.Join(lines, "\n")))
}

// place centers box on the screen.
func (m Model) place(box string) string {
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(ColorDarkBg),
	)
}
