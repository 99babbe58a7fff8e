// Package dashboard is the interactive terminal view of one host: a
// snapshot overview, live port, process and container lists, and the
// action catalog.
//
// The model never blocks in Update. Every gateway call runs in a tea.Cmd
// and comes back as a message, so a slow SSH backend only delays the data,
// never the keyboard.
package dashboard

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/sysdeck/internal/actions"
	"github.com/rileyhilliard/sysdeck/internal/app"
	"github.com/rileyhilliard/sysdeck/internal/model"
	"github.com/rileyhilliard/sysdeck/internal/pipeline"
)

// View is one of the dashboard's tabs.
type View int

const (
	ViewOverview View = iota
	ViewPorts
	ViewProcesses
	ViewContainers
	ViewActions
)

// Views lists the tabs in display order.
var Views = []View{ViewOverview, ViewPorts, ViewProcesses, ViewContainers, ViewActions}

func (v View) String() string {
	switch v {
	case ViewPorts:
		return "Ports"
	case ViewProcesses:
		return "Processes"
	case ViewContainers:
		return "Containers"
	case ViewActions:
		return "Actions"
	default:
		return "Overview"
	}
}

// overlay is whatever is drawn on top of the current view.
type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlaySettings
	overlayOutput
)

// LayoutMode is the responsive layout picked from the terminal width.
type LayoutMode int

const (
	LayoutCompact LayoutMode = iota
	LayoutStandard
	LayoutWide
)

// Width breakpoints for layout modes
const (
	BreakpointStandard = 100
	BreakpointWide     = 140
)

// noticeInterval is how often expired notifications are swept.
const noticeInterval = 500 * time.Millisecond

// containerStates are the container filters the sort key cycles through.
var containerStates = []string{"", "running", "exited"}

// TickFunc schedules a message after d. tea.Tick in production.
type TickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	app  *app.App
	ctx  context.Context
	tick TickFunc

	view    View
	overlay overlay
	width   int
	height  int

	snapshot     model.SystemSnapshot
	haveSnapshot bool
	snapshotErr  error
	history      *History

	ports      []model.PortRecord
	processes  []model.ProcessRecord
	containers []model.Container
	dockerOK   bool
	listErr    map[View]error
	loaded     map[View]bool
	cursor     map[View]int

	search         textinput.Model
	searching      bool
	portCategory   pipeline.PortCategory
	processSort    pipeline.SortState
	containerState int

	// confirm holds a dangerous action waiting for y/n.
	confirm *actions.Action

	output      viewport.Model
	outputTitle string

	quitting bool
}

// Option configures a Model.
type Option func(*Model)

// WithContext sets the context gateway calls run under.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// WithTick replaces tea.Tick, mainly so tests never sleep.
func WithTick(fn TickFunc) Option {
	return func(m *Model) { m.tick = fn }
}

// WithView sets the tab shown first.
func WithView(v View) Option {
	return func(m *Model) { m.view = v }
}

// New creates the dashboard for a.
func New(a *app.App, opts ...Option) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "filter"
	search.CharLimit = 64
	search.PromptStyle = SearchStyle
	search.Cursor.SetMode(cursor.CursorStatic)

	m := Model{
		app:          a,
		ctx:          context.Background(),
		tick:         tea.Tick,
		history:      NewHistory(a.Config.Dashboard.History),
		listErr:      make(map[View]error),
		loaded:       make(map[View]bool),
		cursor:       make(map[View]int),
		search:       search,
		portCategory: pipeline.CategoryAll,
		processSort:  pipeline.DefaultSort,
		output:       viewport.New(80, 20),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Messages carrying gateway results back into Update.
type (
	snapshotMsg struct {
		snapshot model.SystemSnapshot
		err      error
	}
	portsMsg struct {
		items []model.PortRecord
		err   error
	}
	processesMsg struct {
		items []model.ProcessRecord
		err   error
	}
	containersMsg struct {
		items    []model.Container
		dockerOK bool
		err      error
	}
	actionDoneMsg struct {
		action  actions.Action
		outcome actions.Outcome
	}
	refreshTickMsg time.Time
	noticeTickMsg  time.Time
)

// Init loads the first snapshot and the opening tab, and arms the
// auto-refresh timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadSnapshot(false), m.loadView(m.view), m.refreshTickCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd := m.HandleKeyMsg(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.output.Width = m.width
		m.output.Height = max(m.height-4, 1)
		m.search.Width = max(m.width/3, 10)

	case snapshotMsg:
		if msg.err != nil {
			m.snapshotErr = msg.err
			return m, nil
		}
		m.snapshotErr = nil
		m.snapshot = msg.snapshot
		m.haveSnapshot = true
		m.history.Push(msg.snapshot)

	case portsMsg:
		if msg.err == nil {
			m.ports = msg.items
		}
		m.setList(ViewPorts, msg.err)

	case processesMsg:
		if msg.err == nil {
			m.processes = msg.items
		}
		m.setList(ViewProcesses, msg.err)

	case containersMsg:
		m.dockerOK = msg.dockerOK
		if msg.err == nil {
			m.containers = msg.items
		}
		m.setList(ViewContainers, msg.err)

	case refreshTickMsg:
		if m.app.Settings.Get().AutoRefresh {
			return m, tea.Batch(m.refreshCmd(false), m.refreshTickCmd())
		}
		return m, m.refreshTickCmd()

	case noticeTickMsg:
		m.app.Notices.Prune()
		if len(m.app.Notices.Active()) > 0 {
			return m, m.noticeTickCmd()
		}

	case actionDoneMsg:
		cmd := m.actionDone(msg)
		return m, cmd

	default:
		if m.searching {
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

// Layout returns the layout for the current width.
func (m Model) Layout() LayoutMode {
	switch {
	case m.width >= BreakpointWide:
		return LayoutWide
	case m.width >= BreakpointStandard:
		return LayoutStandard
	default:
		return LayoutCompact
	}
}

func (m *Model) setList(v View, err error) {
	m.loaded[v] = true
	m.listErr[v] = err
	m.clampCursor(v)
}

func (m *Model) actionDone(msg actionDoneMsg) tea.Cmd {
	cmds := []tea.Cmd{m.noticeTickCmd()}
	out := msg.outcome
	if out.OK() && msg.action.Kind == actions.KindResult {
		m.showOutput(msg.action.Label, out.Output)
	}
	if out.OK() && msg.action.Mutates {
		cmds = append(cmds, m.refreshCmd(false))
	}
	return tea.Batch(cmds...)
}

func (m *Model) showOutput(title, body string) {
	if body == "" {
		body = "(no output)"
	}
	m.outputTitle = title
	m.output.SetContent(body)
	m.output.GotoTop()
	m.overlay = overlayOutput
}

// refreshCmd reloads the current list and the snapshot. force bypasses the
// snapshot cache; without it the snapshot is only refetched once it expires.
func (m Model) refreshCmd(force bool) tea.Cmd {
	return tea.Batch(m.loadSnapshot(force), m.loadView(m.view))
}

func (m Model) loadSnapshot(force bool) tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		var (
			snap model.SystemSnapshot
			err  error
		)
		if force {
			snap, err = a.Cache.Refresh(ctx)
		} else {
			snap, err = a.Snapshot(ctx)
		}
		return snapshotMsg{snapshot: snap, err: err}
	}
}

// loadView fetches the live collection behind v. Overview and Actions
// read nothing beyond the snapshot.
func (m Model) loadView(v View) tea.Cmd {
	a, ctx := m.app, m.ctx
	switch v {
	case ViewPorts:
		return func() tea.Msg {
			items, err := a.Ports(ctx)
			return portsMsg{items: items, err: err}
		}
	case ViewProcesses:
		return func() tea.Msg {
			items, err := a.Processes(ctx)
			return processesMsg{items: items, err: err}
		}
	case ViewContainers:
		return func() tea.Msg {
			if !a.DockerAvailable(ctx) {
				return containersMsg{}
			}
			items, err := a.Containers(ctx)
			return containersMsg{items: items, dockerOK: true, err: err}
		}
	}
	return nil
}

// runAction dispatches a in the background. confirmed skips the prompt
// because the operator already answered it inline.
func (m Model) runAction(a actions.Action, confirmed bool) tea.Cmd {
	d, ctx := m.app.Dispatcher, m.ctx
	return func() tea.Msg {
		var out actions.Outcome
		if confirmed {
			out = d.RunConfirmed(ctx, a)
		} else {
			out = d.Run(ctx, a)
		}
		return actionDoneMsg{action: a, outcome: out}
	}
}

func (m Model) refreshTickCmd() tea.Cmd {
	if m.tick == nil {
		return nil
	}
	return m.tick(m.app.Settings.Get().Interval(), func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func (m Model) noticeTickCmd() tea.Cmd {
	if m.tick == nil {
		return nil
	}
	return m.tick(noticeInterval, func(t time.Time) tea.Msg {
		return noticeTickMsg(t)
	})
}

// Rows behind each list view, after search, filters and sort.

func (m Model) visiblePorts() []model.PortRecord {
	return pipeline.Ports(m.ports, pipeline.PortQuery{
		Text:     m.search.Value(),
		Category: m.portCategory,
	})
}

func (m Model) visibleProcesses() []model.ProcessRecord {
	return pipeline.Processes(m.processes, pipeline.ProcessQuery{
		Text: m.search.Value(),
		Hide: m.app.HideSystemProcesses(),
	}, m.processSort)
}

func (m Model) visibleContainers() []model.Container {
	return pipeline.Containers(m.containers, pipeline.ContainerQuery{
		Text:  m.search.Value(),
		State: containerStates[m.containerState],
	})
}

func (m Model) visibleActions() []actions.Action {
	return pipeline.Apply(m.app.Catalog.All(), actionText(m.search.Value()), nil)
}

func (m Model) rowCount(v View) int {
	switch v {
	case ViewPorts:
		return len(m.visiblePorts())
	case ViewProcesses:
		return len(m.visibleProcesses())
	case ViewContainers:
		return len(m.visibleContainers())
	case ViewActions:
		return len(m.visibleActions())
	}
	return 0
}

func (m *Model) clampCursor(v View) {
	n := m.rowCount(v)
	switch {
	case n == 0:
		m.cursor[v] = 0
	case m.cursor[v] >= n:
		m.cursor[v] = n - 1
	case m.cursor[v] < 0:
		m.cursor[v] = 0
	}
}
