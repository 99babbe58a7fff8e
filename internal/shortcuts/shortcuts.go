// Package shortcuts maps key events to named dashboard actions.
//
// The registry is a flat ordered table. Resolution walks it in registration
// order and the first matching entry wins. A modifier left as Any matches
// either state; On and Off must match exactly. Nothing resolves while a text
// field has focus, so typing into a search box never triggers a shortcut.
package shortcuts

import (
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Mod is a tri-state modifier requirement.
type Mod int

const (
	Any Mod = iota
	On
	Off
)

func (m Mod) matches(pressed bool) bool {
	switch m {
	case On:
		return pressed
	case Off:
		return !pressed
	default:
		return true
	}
}

// Focus says what currently holds keyboard input.
type Focus int

const (
	FocusNone Focus = iota
	FocusText
	FocusEditable
)

// Typing reports whether keys should go to the focused element.
func (f Focus) Typing() bool {
	return f == FocusText || f == FocusEditable
}

// Event is one key-down.
type Event struct {
	Key   string
	Ctrl  bool
	Alt   bool
	Shift bool
	Focus Focus
}

// FromKeyMsg converts a Bubble Tea key message, e.g. "ctrl+h" or "alt+1",
// into an Event.
func FromKeyMsg(msg tea.KeyMsg, focus Focus) Event {
	return Parse(msg.String(), focus)
}

// Parse converts a key string such as "ctrl+alt+x" into an Event. A lone
// uppercase letter is reported as that letter with Shift.
func Parse(s string, focus Focus) Event {
	ev := Event{Focus: focus}
	key := s
	// Search all but the last rune so "ctrl++" names the plus key.
	if i := strings.LastIndex(s[:max(len(s)-1, 0)], "+"); i >= 0 {
		for _, m := range strings.Split(s[:i], "+") {
			switch m {
			case "ctrl":
				ev.Ctrl = true
			case "alt":
				ev.Alt = true
			case "shift":
				ev.Shift = true
			}
		}
		key = s[i+1:]
	}
	if r := []rune(key); len(r) == 1 && r[0] >= 'A' && r[0] <= 'Z' {
		ev.Shift = true
		key = strings.ToLower(key)
	}
	ev.Key = key
	return ev
}

// Action names what a shortcut does; the dashboard binds it to behavior.
type Action string

const (
	ActionRefresh      Action = "refresh"
	ActionClose        Action = "close"
	ActionOverview     Action = "view:overview"
	ActionPorts        Action = "view:ports"
	ActionProcesses    Action = "view:processes"
	ActionContainers   Action = "view:containers"
	ActionActions      Action = "view:actions"
	ActionHelp         Action = "help"
	ActionSettings     Action = "settings"
	ActionSearch       Action = "search"
	ActionCycleSort    Action = "sort"
	ActionUp           Action = "up"
	ActionDown         Action = "down"
	ActionSelect       Action = "select"
	ActionKill         Action = "kill"
	ActionStop         Action = "stop"
	ActionRestart      Action = "restart"
	ActionLogs         Action = "logs"
	ActionNextView     Action = "next-view"
	ActionQuit         Action = "quit"
	ActionForceQuit    Action = "force-quit"
	ActionToggleSystem Action = "toggle-system-processes"
)

// Shortcut binds one key plus modifiers to an action.
type Shortcut struct {
	Key         string
	Ctrl        Mod
	Alt         Mod
	Shift       Mod
	Action      Action
	Description string
}

// Matches reports whether ev triggers s, ignoring focus.
func (s Shortcut) Matches(ev Event) bool {
	return strings.EqualFold(s.Key, ev.Key) &&
		s.Ctrl.matches(ev.Ctrl) &&
		s.Alt.matches(ev.Alt) &&
		s.Shift.matches(ev.Shift)
}

// Label renders the shortcut for the help overlay, e.g. "Ctrl+Shift+H".
func (s Shortcut) Label() string {
	var parts []string
	if s.Ctrl == On {
		parts = append(parts, "Ctrl")
	}
	if s.Alt == On {
		parts = append(parts, "Alt")
	}
	if s.Shift == On {
		parts = append(parts, "Shift")
	}
	return strings.Join(append(parts, displayKey(s.Key)), "+")
}

func displayKey(k string) string {
	switch k {
	case "esc":
		return "Esc"
	case "enter":
		return "Enter"
	case "up", "down", "tab":
		return strings.ToUpper(k[:1]) + k[1:]
	}
	if len(k) > 1 && k[0] == 'f' {
		return strings.ToUpper(k)
	}
	return k
}

// Registry is an ordered shortcut table. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	table []Shortcut
}

// NewRegistry creates a registry holding list in order.
func NewRegistry(list ...Shortcut) *Registry {
	r := &Registry{}
	r.Register(list...)
	return r
}

// Register appends shortcuts. An entry shadowed by an earlier one with the
// same key and modifiers never fires.
func (r *Registry) Register(list ...Shortcut) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table = append(r.table, list...)
}

// Resolve returns the first shortcut matching ev. Nothing resolves while a
// text field or editable element has focus.
func (r *Registry) Resolve(ev Event) (Shortcut, bool) {
	if ev.Focus.Typing() {
		return Shortcut{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.table {
		if s.Matches(ev) {
			return s, true
		}
	}
	return Shortcut{}, false
}

// All returns the table in registration order.
func (r *Registry) All() []Shortcut {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Shortcut, len(r.table))
	copy(out, r.table)
	return out
}

// Defaults is the dashboard's shortcut table. Global shortcuts come first so
// they win over list keys.
func Defaults() []Shortcut {
	return []Shortcut{
		{Key: "f5", Action: ActionRefresh, Description: "Refresh the current view"},
		{Key: "esc", Action: ActionClose, Description: "Close the open overlay"},
		{Key: "1", Alt: On, Action: ActionOverview, Description: "Switch to overview"},
		{Key: "2", Alt: On, Action: ActionPorts, Description: "Switch to ports"},
		{Key: "3", Alt: On, Action: ActionProcesses, Description: "Switch to processes"},
		{Key: "4", Alt: On, Action: ActionContainers, Description: "Switch to containers"},
		{Key: "5", Alt: On, Action: ActionActions, Description: "Switch to actions"},
		{Key: "h", Ctrl: On, Action: ActionHelp, Description: "Show keyboard shortcuts"},
		{Key: ",", Ctrl: On, Action: ActionSettings, Description: "Show settings"},
		{Key: "c", Ctrl: On, Action: ActionForceQuit, Description: "Quit"},

		{Key: "?", Action: ActionHelp, Description: "Show keyboard shortcuts"},
		{Key: "/", Ctrl: Off, Alt: Off, Action: ActionSearch, Description: "Search"},
		{Key: "r", Ctrl: Off, Alt: Off, Shift: Off, Action: ActionRefresh, Description: "Refresh"},
		{Key: "s", Ctrl: Off, Alt: Off, Shift: Off, Action: ActionCycleSort, Description: "Cycle sort order"},
		{Key: "s", Ctrl: Off, Alt: Off, Shift: On, Action: ActionStop, Description: "Stop container"},
		{Key: "h", Ctrl: Off, Alt: Off, Shift: On, Action: ActionToggleSystem, Description: "Show or hide system processes"},
		{Key: "k", Ctrl: Off, Alt: Off, Action: ActionUp, Description: "Move up"},
		{Key: "up", Action: ActionUp, Description: "Move up"},
		{Key: "j", Ctrl: Off, Alt: Off, Action: ActionDown, Description: "Move down"},
		{Key: "down", Action: ActionDown, Description: "Move down"},
		{Key: "enter", Action: ActionSelect, Description: "Run or open selection"},
		{Key: "tab", Action: ActionNextView, Description: "Next view"},
		{Key: "x", Ctrl: Off, Alt: Off, Action: ActionKill, Description: "Kill process"},
		{Key: "r", Ctrl: Off, Alt: Off, Shift: On, Action: ActionRestart, Description: "Restart container"},
		{Key: "l", Ctrl: Off, Alt: Off, Action: ActionLogs, Description: "Container logs"},
		{Key: "q", Ctrl: Off, Alt: Off, Action: ActionQuit, Description: "Quit"},
	}
}
