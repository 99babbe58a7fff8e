package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/sysdeck/internal/app"
	"github.com/rileyhilliard/sysdeck/internal/dashboard"
	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/spf13/cobra"
)

var dashboardViewFlag string

// dashboardCmd starts the interactive dashboard
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive terminal dashboard",
	Long: `Open the full-screen dashboard: system overview, ports, processes,
containers, and the action catalog.

Keyboard shortcuts:
  Alt+1..5    Switch view (Tab cycles)
  F5 / r      Refresh, bypassing the snapshot cache
  /           Search the current list
  s           Cycle sort order or filter
  j/k, arrows Move the selection
  x           Kill the selected process (or the process owning a port)
  S / R / l   Stop, restart, or show logs for the selected container
  Enter       Run the selected action
  Ctrl+H / ?  Help
  Esc         Close overlay / clear search
  q / Ctrl+C  Quit

Examples:
  sysdeck dashboard
  sysdeck dashboard --view processes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd, dashboardViewFlag)
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardViewFlag, "view", "", "view to open: overview, ports, processes, containers, actions")
	rootCmd.AddCommand(dashboardCmd)
}

// parseView maps a --view name to a dashboard view.
func parseView(name string) (dashboard.View, error) {
	if name == "" {
		return dashboard.ViewOverview, nil
	}
	for _, v := range dashboard.Views {
		if strings.EqualFold(v.String(), name) {
			return v, nil
		}
	}
	return 0, errors.New(errors.ErrConfig,
		"Unknown view: "+name,
		"Use one of: overview, ports, processes, containers, actions")
}

// dashboardCommand runs the Bubble Tea program until the operator quits.
func dashboardCommand(cmd *cobra.Command, viewName string) error {
	view, err := parseView(viewName)
	if err != nil {
		return err
	}
	return withApp(func(a *app.App) error {
		ctx := cmd.Context()
		a.Start(ctx)

		m := dashboard.New(a, dashboard.WithContext(ctx), dashboard.WithView(view))
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
}
