package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/util"
)

// defaultHeight is used before the first WindowSizeMsg arrives.
const defaultHeight = 24

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	switch m.overlay {
	case overlayHelp:
		return m.renderHelpOverlay()
	case overlaySettings:
		return m.renderSettingsOverlay()
	case overlayOutput:
		return m.renderOutput()
	}

	top := []string{m.renderHeader(), m.renderTabs()}
	var bottom []string
	if m.searching || m.search.Value() != "" {
		bottom = append(bottom, m.search.View())
	}
	if m.confirm != nil {
		bottom = append(bottom, m.renderConfirm())
	}
	if notices := m.renderNotices(); notices != "" {
		bottom = append(bottom, notices)
	}
	bottom = append(bottom, m.renderFooter())

	height := m.height
	if height == 0 {
		height = defaultHeight
	}
	used := lipgloss.Height(strings.Join(top, "\n")) + lipgloss.Height(strings.Join(bottom, "\n")) + 1
	body := m.renderBody(max(height-used, 3))

	return strings.Join(top, "\n") + "\n" + body + "\n" + strings.Join(bottom, "\n")
}

// renderHeader renders the title bar with host and freshness.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("sysdeck")

	var info string
	switch {
	case m.haveSnapshot:
		host := m.snapshot.OS
		info = fmt.Sprintf(" | %s | %s %s | updated %s",
			host.Hostname, host.Name, host.Version, humanize.Time(m.snapshot.FetchedAt))
	case m.snapshotErr != nil:
		info = " | no data"
	default:
		info = " | loading..."
	}
	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(info)

	return HeaderStyle.Render(title + stats)
}

// renderTabs renders the view switcher, Alt+N for each tab.
func (m Model) renderTabs() string {
	tabs := make([]string, len(Views))
	for i, v := range Views {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == m.view {
			tabs[i] = TabActiveStyle.Render(label)
		} else {
			tabs[i] = TabStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderBody(height int) string {
	switch m.view {
	case ViewPorts:
		return m.renderPorts(height)
	case ViewProcesses:
		return m.renderProcesses(height)
	case ViewContainers:
		return m.renderContainers(height)
	case ViewActions:
		return m.renderActions(height)
	default:
		return m.renderOverview()
	}
}

func (m Model) renderConfirm() string {
	a := m.confirm
	prompt := lipgloss.NewStyle().Foreground(ColorCritical).Bold(true).Render("⚠ " + a.Label + "?")
	hint := MutedStyle.Render("  " + a.Description + "  [y] confirm  [n] cancel")
	return ConfirmStyle.Render(prompt + hint)
}

func (m Model) renderNotices() string {
	active := m.app.Notices.Active()
	if len(active) == 0 {
		return ""
	}
	lines := make([]string, len(active))
	for i, n := range active {
		lines[i] = NoticeStyle(n.Kind).Render(noticeIcon(n.Kind) + " " + n.Message)
	}
	return strings.Join(lines, "\n")
}

// renderFooter renders the keyboard hints for the current view.
func (m Model) renderFooter() string {
	hints := []string{"q quit", "? help", "alt+1-5 views", "f5 refresh"}
	switch m.view {
	case ViewPorts:
		hints = append(hints, "/ search", "s category: "+string(m.portCategory), "x kill owner")
	case ViewProcesses:
		hints = append(hints, "/ search", "s sort: "+m.processSort.String(), "x kill", "H system")
	case ViewContainers:
		state := containerStates[m.containerState]
		if state == "" {
			state = "all"
		}
		hints = append(hints, "/ search", "s state: "+state, "S stop", "R restart", "l logs")
	case ViewActions:
		hints = append(hints, "/ search", "enter run")
	}
	return FooterStyle.Render(strings.Join(hints, " | "))
}

func (m Model) renderOutput() string {
	title := HeaderStyle.Render(lipgloss.NewStyle().Foreground(ColorAccent).Render(m.outputTitle))
	footer := FooterStyle.Render(fmt.Sprintf("esc close | ↑↓ scroll | %3.0f%%", m.output.ScrollPercent()*100))
	return title + "\n" + m.output.View() + "\n" + footer
}

// errorLine renders a failed fetch as its message and suggestion.
func errorLine(err error) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(ColorCritical).Render("✗ " + errors.Summary(err)))
	if hint := errors.SuggestionOf(err); hint != "" {
		b.WriteString("\n  " + MutedStyle.Render(hint))
	}
	return b.String()
}

// window returns the [start, end) slice of total rows to draw so that
// cursor stays on screen.
func window(total, cursor, size int) (start, end int) {
	if size <= 0 || total == 0 {
		return 0, 0
	}
	if cursor >= size {
		start = cursor - size + 1
	}
	return start, min(start+size, total)
}

// row pads cells to widths and joins them; the last cell is unbounded.
func row(widths []int, cells ...string) string {
	var b strings.Builder
	for i, c := range cells {
		if i < len(widths) {
			c = util.Truncate(c, widths[i])
			b.WriteString(c + strings.Repeat(" ", max(widths[i]-lipgloss.Width(c), 0)+1))
			continue
		}
		b.WriteString(c)
	}
	return strings.TrimRight(b.String(), " ")
}

// renderTable draws a header and the window of rows around the cursor.
func renderTable(header string, rows []string, cursor, height int) string {
	lines := []string{ColumnHeaderStyle.Render(header)}
	start, end := window(len(rows), cursor, height-1)
	for i := start; i < end; i++ {
		if i == cursor {
			lines = append(lines, RowSelectedStyle.Render(rows[i]))
			continue
		}
		lines = append(lines, ValueStyle.Render(rows[i]))
	}
	if len(rows) > end-start {
		lines[0] += MutedStyle.Render(fmt.Sprintf("  (%d-%d of %d)", start+1, end, len(rows)))
	}
	return strings.Join(lines, "\n")
}
