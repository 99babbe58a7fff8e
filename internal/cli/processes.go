package cli

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/sysdeck/internal/actions"
	"github.com/rileyhilliard/sysdeck/internal/app"
	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/model"
	"github.com/rileyhilliard/sysdeck/internal/pipeline"
	"github.com/rileyhilliard/sysdeck/internal/ui"
	"github.com/spf13/cobra"
)

// ps command flags
var (
	psSearch string
	psSort   string
	psAsc    bool
	psLimit  int
)

// psCmd lists processes
var psCmd = &cobra.Command{
	Use:     "ps",
	Aliases: []string{"processes"},
	Short:   "List running processes",
	Long: `List processes sorted by CPU, memory, or name.

System-critical processes are marked and hidden when the
showSystemProcesses setting is off.

Examples:
  sysdeck ps
  sysdeck ps --sort memory --limit 10
  sysdeck ps --search node --sort name --asc`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return psCommand(cmd)
	},
}

// killCmd terminates a process
var killCmd = &cobra.Command{
	Use:   "kill <pid>",
	Short: "Terminate a process",
	Long: `Terminate a process by PID.

Killing a system-critical process (lsass.exe, systemd, ...) asks for
confirmation first unless confirmDangerousActions is off or --yes is set.

Examples:
  sysdeck kill 4242
  sysdeck kill 4 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil || pid <= 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' isn't a process ID", args[0]),
				"Find the PID with 'sysdeck ps'.")
		}
		return killCommand(cmd, int32(pid))
	},
}

func init() {
	psCmd.Flags().StringVar(&psSearch, "search", "", "filter by process name")
	psCmd.Flags().StringVar(&psSort, "sort", "cpu", "sort by cpu, memory, or name")
	psCmd.Flags().BoolVar(&psAsc, "asc", false, "sort ascending")
	psCmd.Flags().IntVar(&psLimit, "limit", 0, "show at most this many processes (0 for all)")
	rootCmd.AddCommand(psCmd)
	rootCmd.AddCommand(killCmd)
}

func psCommand(cmd *cobra.Command) error {
	key, err := pipeline.ParseSortKey(psSort)
	if err != nil {
		return err
	}
	sort := pipeline.SortState{Key: key, Desc: !psAsc}

	return withApp(func(a *app.App) error {
		all, err := fetch(cmd, "Listing processes", a.Processes)
		if err != nil {
			return err
		}
		procs := pipeline.Processes(all, pipeline.ProcessQuery{Text: psSearch, Hide: a.HideSystemProcesses()}, sort)
		if psLimit > 0 && len(procs) > psLimit {
			procs = procs[:psLimit]
		}

		out := cmd.OutOrStdout()
		return emit(out, procs, func() error {
			if len(procs) == 0 {
				fmt.Fprintln(out, ui.MutedStyle().Render("No processes match."))
				return nil
			}
			fmt.Fprint(out, renderProcesses(a, procs))
			return nil
		})
	})
}

func renderProcesses(a *app.App, procs []model.ProcessRecord) string {
	rows := make([][]string, len(procs))
	for i, p := range procs {
		name := p.Name
		if a.Engine.IsCritical(p.Name) {
			name += " [system]"
		}
		rows[i] = []string{
			strconv.Itoa(int(p.PID)), name,
			fmt.Sprintf("%.1f", p.CPUUsagePercent),
			humanize.IBytes(p.MemoryUsageBytes),
			p.CommandLine(),
		}
	}
	return ui.RenderSimpleTable([]ui.TableColumn{
		{Title: "PID", Width: 7},
		{Title: "NAME", Width: 28},
		{Title: "CPU%", Width: 6},
		{Title: "MEMORY", Width: 10},
		{Title: "COMMAND"},
	}, rows) + "\n"
}

// KillResult is the --json form of `sysdeck kill`.
type KillResult struct {
	PID      int32  `json:"pid"`
	Name     string `json:"name"`
	Critical bool   `json:"critical"`
}

func killCommand(cmd *cobra.Command, pid int32) error {
	return withApp(func(a *app.App) error {
		ctx := cmd.Context()

		// The name only labels the action; a PID the list doesn't show is
		// still sent to the backend.
		name := "process"
		if procs, err := a.Processes(ctx); err == nil {
			for _, p := range procs {
				if p.PID == pid {
					name = p.Name
					break
				}
			}
		}
		critical := a.Engine.IsCritical(name)

		action := actions.KillProcess(pid, name, critical)
		if err := runOutcome(a.Dispatcher.Run(ctx, action)); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return emit(out, KillResult{PID: pid, Name: name, Critical: critical}, func() error {
			fmt.Fprintln(out, ui.SuccessStyle().Render(ui.SymbolSuccess)+" "+action.Label+" succeeded")
			return nil
		})
	})
}

// runOutcome turns a declined or skipped action into an error.
func runOutcome(o actions.Outcome) error {
	switch {
	case o.Err != nil:
		return o.Err
	case o.Declined:
		return errors.New(errors.ErrAction,
			"Cancelled",
			"Pass --yes to skip the confirmation, or turn off confirmDangerousActions.")
	case o.Skipped:
		return errors.New(errors.ErrAction, "Action "+o.Key+" is already running", "Wait for it to finish.")
	}
	return nil
}
