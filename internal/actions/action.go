// Package actions holds the operator action catalog and the dispatcher that
// runs actions through the gateway and reports how they went.
package actions

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rileyhilliard/sysdeck/internal/gateway"
)

// Category groups actions for display.
type Category string

const (
	CategorySystem      Category = "system"
	CategorySettings    Category = "settings"
	CategoryStorage     Category = "storage"
	CategoryNetwork     Category = "network"
	CategoryDeveloper   Category = "developer"
	CategoryCommands    Category = "commands"
	CategoryDiagnostics Category = "diagnostics"
	CategoryProcesses   Category = "processes"
	CategoryContainers  Category = "containers"
)

// Title returns the heading shown above a category.
func (c Category) Title() string {
	switch c {
	case CategorySystem:
		return "System management"
	case CategorySettings:
		return "Settings"
	case CategoryStorage:
		return "Storage"
	case CategoryNetwork:
		return "Network & security"
	case CategoryDeveloper:
		return "Developer tools"
	case CategoryCommands:
		return "Commands"
	case CategoryDiagnostics:
		return "Network diagnostics"
	case CategoryProcesses:
		return "Processes"
	case CategoryContainers:
		return "Containers"
	default:
		return string(c)
	}
}

// Kind says what an action's outcome is good for.
type Kind string

const (
	// KindFire actions only succeed or fail, like opening an applet.
	KindFire Kind = "fire"
	// KindResult actions produce text meant to be read.
	KindResult Kind = "result"
)

// RunFunc performs an action and returns its textual output, if any.
type RunFunc func(ctx context.Context, gw gateway.Gateway) (string, error)

// Action is one operator action. Actions are stateless; the dispatcher
// tracks which ones are in flight.
type Action struct {
	Key         string
	Label       string
	Description string
	Category    Category
	Kind        Kind
	// Dangerous actions ask for confirmation first.
	Dangerous bool
	// Mutates actions change host state the snapshot reflects, so the
	// snapshot cache is dropped after they succeed.
	Mutates bool
	Run     RunFunc
}

// Invoke builds a RunFunc that makes one gateway call. Text results are
// returned as output; anything else is discarded.
func Invoke(command string, args gateway.Args) RunFunc {
	return func(ctx context.Context, gw gateway.Gateway) (string, error) {
		res, err := gw.Invoke(ctx, command, args)
		if err != nil {
			return "", err
		}
		if s, ok := res.Value.(string); ok {
			return s, nil
		}
		return "", nil
	}
}

// OpenApp builds an action that launches a named system applet.
func OpenApp(key, label, app string, cat Category) Action {
	return Action{
		Key:         key,
		Label:       label,
		Description: "Open " + app,
		Category:    cat,
		Kind:        KindFire,
		Run:         Invoke(gateway.CmdOpenGUIApp, gateway.Args{"appName": app}),
	}
}

// Command builds a result action that runs a whitelisted command and
// shows its output.
func Command(key, label string, cat Category, command string, args ...string) Action {
	argv := make([]any, len(args))
	for i, a := range args {
		argv[i] = a
	}
	desc := command
	for _, a := range args {
		desc += " " + a
	}
	return Action{
		Key:         key,
		Label:       label,
		Description: desc,
		Category:    cat,
		Kind:        KindResult,
		Run:         Invoke(gateway.CmdRunCommand, gateway.Args{"command": command, "args": argv}),
	}
}

// KillProcess builds the action that terminates pid. Killing a
// system-critical process is dangerous.
func KillProcess(pid int32, name string, critical bool) Action {
	return Action{
		Key:         "kill:" + strconv.Itoa(int(pid)),
		Label:       fmt.Sprintf("Kill %s (%d)", name, pid),
		Description: "Terminate process " + strconv.Itoa(int(pid)),
		Category:    CategoryProcesses,
		Kind:        KindFire,
		Dangerous:   critical,
		Mutates:     true,
		Run:         Invoke(gateway.CmdKillProcess, gateway.Args{"pid": int(pid)}),
	}
}

// StopContainer builds the action that stops a container.
func StopContainer(id, name string) Action {
	return Action{
		Key:         "container-stop:" + id,
		Label:       "Stop " + name,
		Description: "docker stop " + id,
		Category:    CategoryContainers,
		Kind:        KindFire,
		Mutates:     true,
		Run:         Invoke(gateway.CmdStopContainer, gateway.Args{"id": id}),
	}
}

// RestartContainer builds the action that restarts a container.
func RestartContainer(id, name string) Action {
	return Action{
		Key:         "container-restart:" + id,
		Label:       "Restart " + name,
		Description: "docker restart " + id,
		Category:    CategoryContainers,
		Kind:        KindFire,
		Mutates:     true,
		Run:         Invoke(gateway.CmdRestartContainer, gateway.Args{"id": id}),
	}
}

// ContainerLogs builds the action that fetches the last tail log lines.
func ContainerLogs(id, name string, tail int) Action {
	return Action{
		Key:         "container-logs:" + id,
		Label:       "Logs for " + name,
		Description: fmt.Sprintf("docker logs --tail %d %s", tail, id),
		Category:    CategoryContainers,
		Kind:        KindResult,
		Run:         Invoke(gateway.CmdContainerLogs, gateway.Args{"id": id, "tail": tail}),
	}
}
