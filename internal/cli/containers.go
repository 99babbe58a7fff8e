package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rileyhilliard/sysdeck/internal/actions"
	"github.com/rileyhilliard/sysdeck/internal/app"
	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/model"
	"github.com/rileyhilliard/sysdeck/internal/pipeline"
	"github.com/rileyhilliard/sysdeck/internal/ui"
	"github.com/spf13/cobra"
)

// DefaultLogTail is how many log lines `containers logs` shows by default.
const DefaultLogTail = 100

// containers command flags
var (
	containersState  string
	containersSearch string
	logsTail         int
)

// containersCmd lists Docker containers
var containersCmd = &cobra.Command{
	Use:     "containers",
	Aliases: []string{"docker"},
	Short:   "List and manage Docker containers",
	Long: `List Docker containers, running ones first.

Containers can be referenced by name, full ID, or ID prefix.

Examples:
  sysdeck containers
  sysdeck containers --state running
  sysdeck containers stop web
  sysdeck containers logs web --tail 50`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return containersListCommand(cmd)
	},
}

var containersListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List containers",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return containersListCommand(cmd)
	},
}

var containersStopCmd = &cobra.Command{
	Use:   "stop <container>",
	Short: "Stop a container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return containerActionCommand(cmd, args[0], actions.StopContainer)
	},
}

var containersRestartCmd = &cobra.Command{
	Use:   "restart <container>",
	Short: "Restart a container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return containerActionCommand(cmd, args[0], actions.RestartContainer)
	},
}

var containersLogsCmd = &cobra.Command{
	Use:   "logs <container>",
	Short: "Show the last lines of a container's log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return containerLogsCommand(cmd, args[0])
	},
}

func init() {
	for _, c := range []*cobra.Command{containersCmd, containersListCmd} {
		c.Flags().StringVar(&containersState, "state", "all", "filter by state: all, running, exited, paused")
		c.Flags().StringVar(&containersSearch, "search", "", "filter by name or image")
	}
	containersLogsCmd.Flags().IntVar(&logsTail, "tail", DefaultLogTail, "number of log lines")
	containersCmd.AddCommand(containersListCmd, containersStopCmd, containersRestartCmd, containersLogsCmd)
	rootCmd.AddCommand(containersCmd)
}

// errDockerUnavailable is returned when the engine doesn't answer.
func errDockerUnavailable() error {
	return errors.New(errors.ErrUnreachable,
		"Docker is not available",
		"Start Docker Desktop or the docker daemon, then try again.")
}

func containersListCommand(cmd *cobra.Command) error {
	return withApp(func(a *app.App) error {
		containers, err := fetch(cmd, "Listing containers", func(ctx context.Context) ([]model.Container, error) {
			if !a.DockerAvailable(ctx) {
				return nil, errDockerUnavailable()
			}
			return a.Containers(ctx)
		})
		if err != nil {
			return err
		}
		containers = pipeline.Containers(containers, pipeline.ContainerQuery{Text: containersSearch, State: containersState})

		out := cmd.OutOrStdout()
		return emit(out, containers, func() error {
			if len(containers) == 0 {
				fmt.Fprintln(out, ui.MutedStyle().Render("No containers match."))
				return nil
			}
			fmt.Fprint(out, renderContainers(containers))
			return nil
		})
	})
}

func renderContainers(containers []model.Container) string {
	rows := make([][]string, len(containers))
	for i, c := range containers {
		ports := make([]string, 0, len(c.Ports))
		for _, p := range c.Ports {
			if p.HostPort > 0 {
				ports = append(ports, strconv.Itoa(int(p.HostPort))+"->"+strconv.Itoa(int(p.ContainerPort))+"/"+p.Protocol)
			}
		}
		rows[i] = []string{c.ShortID(), c.Name, c.Image, c.State, c.Status, strings.Join(ports, ", ")}
	}
	return ui.RenderSimpleTable([]ui.TableColumn{
		{Title: "ID", Width: 12},
		{Title: "NAME", Width: 24},
		{Title: "IMAGE", Width: 24},
		{Title: "STATE", Width: 9},
		{Title: "STATUS", Width: 20},
		{Title: "PORTS"},
	}, rows) + "\n"
}

// findContainer resolves a name, ID, or unique ID prefix.
func findContainer(containers []model.Container, ref string) (model.Container, error) {
	var matches []model.Container
	for _, c := range containers {
		if c.Name == ref || c.ID == ref {
			return c, nil
		}
		if strings.HasPrefix(c.ID, ref) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return model.Container{}, errors.New(errors.ErrAction,
			"No container named "+ref,
			"List containers with 'sysdeck containers'.")
	}
	return model.Container{}, errors.New(errors.ErrAction,
		fmt.Sprintf("%q matches %d containers", ref, len(matches)),
		"Use a longer ID prefix or the container name.")
}

func resolveContainer(ctx context.Context, a *app.App, ref string) (model.Container, error) {
	if !a.DockerAvailable(ctx) {
		return model.Container{}, errDockerUnavailable()
	}
	containers, err := a.Containers(ctx)
	if err != nil {
		return model.Container{}, err
	}
	return findContainer(containers, ref)
}

// ContainerResult is the --json form of stop and restart.
type ContainerResult struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Action string `json:"action"`
}

func containerActionCommand(cmd *cobra.Command, ref string, build func(id, name string) actions.Action) error {
	return withApp(func(a *app.App) error {
		ctx := cmd.Context()
		c, err := resolveContainer(ctx, a, ref)
		if err != nil {
			return err
		}
		action := build(c.ID, c.Name)
		if err := runOutcome(a.Dispatcher.Run(ctx, action)); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return emit(out, ContainerResult{ID: c.ID, Name: c.Name, Action: cmd.Name()}, func() error {
			fmt.Fprintln(out, ui.SuccessStyle().Render(ui.SymbolSuccess)+" "+action.Label+" succeeded")
			return nil
		})
	})
}

// LogsResult is the --json form of `containers logs`.
type LogsResult struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tail int    `json:"tail"`
	Logs string `json:"logs"`
}

func containerLogsCommand(cmd *cobra.Command, ref string) error {
	if logsTail <= 0 {
		return errors.New(errors.ErrConfig,
			"--tail must be positive",
			fmt.Sprintf("Try --tail %d.", DefaultLogTail))
	}
	return withApp(func(a *app.App) error {
		ctx := cmd.Context()
		c, err := resolveContainer(ctx, a, ref)
		if err != nil {
			return err
		}
		o := a.Dispatcher.Run(ctx, actions.ContainerLogs(c.ID, c.Name, logsTail))
		if err := runOutcome(o); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return emit(out, LogsResult{ID: c.ID, Name: c.Name, Tail: logsTail, Logs: o.Output}, func() error {
			fmt.Fprint(out, o.Output)
			if o.Output != "" && !strings.HasSuffix(o.Output, "\n") {
				fmt.Fprintln(out)
			}
			return nil
		})
	})
}
