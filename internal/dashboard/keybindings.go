package dashboard

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/sysdeck/internal/actions"
	"github.com/rileyhilliard/sysdeck/internal/pipeline"
	"github.com/rileyhilliard/sysdeck/internal/settings"
	"github.com/rileyhilliard/sysdeck/internal/shortcuts"
)

// Keys handled outside the shortcut registry: answers to the inline
// confirmation, leaving the search box, and the hard quit.
const (
	KeyQuitAlt = "ctrl+c"
	KeyConfirm = "y"
	KeyDecline = "n"
	KeyEnter   = "enter"
	KeyEsc     = "esc"
)

// focus reports what holds keyboard input for shortcut resolution.
func (m Model) focus() shortcuts.Focus {
	if m.searching {
		return shortcuts.FocusText
	}
	return shortcuts.FocusNone
}

// HandleKeyMsg routes one key press and returns the follow-up command.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == KeyQuitAlt {
		return m.quit()
	}

	if m.confirm != nil {
		return m.answerConfirm(key)
	}

	if m.searching {
		switch key {
		case KeyEsc:
			m.searching = false
			m.search.Blur()
			m.search.Reset()
			m.clampCursor(m.view)
			return nil
		case KeyEnter:
			m.searching = false
			m.search.Blur()
			return nil
		}
	}

	if m.overlay == overlayOutput {
		if key == KeyEsc || key == "q" {
			return m.apply(shortcuts.ActionClose)
		}
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return cmd
	}

	sc, ok := m.app.Shortcuts.Resolve(shortcuts.FromKeyMsg(msg, m.focus()))
	if !ok {
		if m.searching {
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.cursor[m.view] = 0
			return cmd
		}
		return nil
	}
	return m.apply(sc.Action)
}

func (m *Model) answerConfirm(key string) tea.Cmd {
	a := *m.confirm
	switch key {
	case KeyConfirm, KeyEnter:
		m.confirm = nil
		return m.runAction(a, true)
	case KeyDecline, KeyEsc:
		m.confirm = nil
		m.app.Notices.Notify(actions.NotifyInfo, a.Label+" cancelled")
		return m.noticeTickCmd()
	}
	return nil
}

// apply performs a resolved shortcut action.
func (m *Model) apply(action shortcuts.Action) tea.Cmd {
	switch action {
	case shortcuts.ActionQuit, shortcuts.ActionForceQuit:
		return m.quit()

	case shortcuts.ActionRefresh:
		return m.refreshCmd(true)

	case shortcuts.ActionClose:
		switch {
		case m.overlay != overlayNone:
			m.overlay = overlayNone
		case m.search.Value() != "":
			m.search.Reset()
			m.clampCursor(m.view)
		}
		return nil

	case shortcuts.ActionHelp:
		m.toggleOverlay(overlayHelp)
		return nil

	case shortcuts.ActionSettings:
		m.toggleOverlay(overlaySettings)
		return nil

	case shortcuts.ActionOverview:
		return m.switchView(ViewOverview)
	case shortcuts.ActionPorts:
		return m.switchView(ViewPorts)
	case shortcuts.ActionProcesses:
		return m.switchView(ViewProcesses)
	case shortcuts.ActionContainers:
		return m.switchView(ViewContainers)
	case shortcuts.ActionActions:
		return m.switchView(ViewActions)
	case shortcuts.ActionNextView:
		return m.switchView(Views[(int(m.view)+1)%len(Views)])
	}

	// The rest act on the list under the overlay, so ignore them while one
	// is open.
	if m.overlay != overlayNone {
		return nil
	}

	switch action {
	case shortcuts.ActionSearch:
		if m.view == ViewOverview {
			return nil
		}
		m.searching = true
		return m.search.Focus()

	case shortcuts.ActionUp:
		m.cursor[m.view]--
		m.clampCursor(m.view)
	case shortcuts.ActionDown:
		m.cursor[m.view]++
		m.clampCursor(m.view)

	case shortcuts.ActionCycleSort:
		m.cycleSort()

	case shortcuts.ActionToggleSystem:
		return m.toggleSystemProcesses()

	case shortcuts.ActionSelect:
		if m.view == ViewActions {
			if a, ok := m.selectedAction(); ok {
				return m.dispatch(a)
			}
		}
		if m.view == ViewContainers {
			return m.containerAction(shortcuts.ActionLogs)
		}

	case shortcuts.ActionKill:
		return m.killSelected()

	case shortcuts.ActionStop, shortcuts.ActionRestart, shortcuts.ActionLogs:
		return m.containerAction(action)
	}
	return nil
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	return tea.Quit
}

func (m *Model) toggleOverlay(o overlay) {
	if m.overlay == o {
		m.overlay = overlayNone
		return
	}
	m.overlay = o
}

func (m *Model) switchView(v View) tea.Cmd {
	m.overlay = overlayNone
	if m.view == v {
		return nil
	}
	m.view = v
	m.searching = false
	m.search.Blur()
	m.search.Reset()
	m.clampCursor(v)
	return m.loadView(v)
}

// cycleSort advances the current list's ordering or filter: port
// category, process sort key, or container state.
func (m *Model) cycleSort() {
	switch m.view {
	case ViewPorts:
		cats := pipeline.PortCategories
		for i, c := range cats {
			if c == m.portCategory {
				m.portCategory = cats[(i+1)%len(cats)]
				break
			}
		}
	case ViewProcesses:
		m.processSort = m.processSort.Next()
	case ViewContainers:
		m.containerState = (m.containerState + 1) % len(containerStates)
	default:
		return
	}
	m.clampCursor(m.view)
}

func (m *Model) toggleSystemProcesses() tea.Cmd {
	next, err := m.app.Settings.Update(func(s *settings.Settings) {
		s.ShowSystemProcesses = !s.ShowSystemProcesses
	})
	if err != nil {
		m.app.Notices.Notify(actions.NotifyError, "Could not save settings: "+err.Error())
		return m.noticeTickCmd()
	}
	msg := "System processes hidden"
	if next.ShowSystemProcesses {
		msg = "System processes shown"
	}
	m.app.Notices.Notify(actions.NotifyInfo, msg)
	m.clampCursor(ViewProcesses)
	return m.noticeTickCmd()
}

// dispatch runs a, or parks it for inline confirmation when it is
// dangerous and the operator wants to be asked.
func (m *Model) dispatch(a actions.Action) tea.Cmd {
	if m.app.Dispatcher.NeedsConfirmation(a) {
		m.confirm = &a
		return nil
	}
	return m.runAction(a, false)
}

func (m *Model) killSelected() tea.Cmd {
	switch m.view {
	case ViewProcesses:
		rows := m.visibleProcesses()
		if len(rows) == 0 {
			return nil
		}
		p := rows[m.cursor[ViewProcesses]]
		return m.dispatch(actions.KillProcess(p.PID, p.Name, m.app.Engine.IsCritical(p.Name)))
	case ViewPorts:
		rows := m.visiblePorts()
		if len(rows) == 0 {
			return nil
		}
		p := rows[m.cursor[ViewPorts]].Process
		if p.PID <= 0 {
			return nil
		}
		return m.dispatch(actions.KillProcess(p.PID, p.Name, m.app.Engine.IsCritical(p.Name)))
	}
	return nil
}

func (m *Model) containerAction(action shortcuts.Action) tea.Cmd {
	if m.view != ViewContainers {
		return nil
	}
	rows := m.visibleContainers()
	if len(rows) == 0 {
		return nil
	}
	c := rows[m.cursor[ViewContainers]]
	switch action {
	case shortcuts.ActionStop:
		return m.dispatch(actions.StopContainer(c.ID, c.Name))
	case shortcuts.ActionRestart:
		return m.dispatch(actions.RestartContainer(c.ID, c.Name))
	default:
		return m.dispatch(actions.ContainerLogs(c.ID, c.Name, m.app.Config.Dashboard.LogTail))
	}
}

func (m Model) selectedAction() (actions.Action, bool) {
	rows := m.visibleActions()
	if len(rows) == 0 {
		return actions.Action{}, false
	}
	return rows[m.cursor[ViewActions]], true
}

// actionText matches catalog entries by label or description.
func actionText(text string) pipeline.Predicate[actions.Action] {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}
	return func(a actions.Action) bool {
		return strings.Contains(strings.ToLower(a.Label), text) ||
			strings.Contains(strings.ToLower(a.Description), text)
	}
}
