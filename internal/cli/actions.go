package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sysdeck/internal/actions"
	"github.com/rileyhilliard/sysdeck/internal/app"
	"github.com/rileyhilliard/sysdeck/internal/ui"
	"github.com/spf13/cobra"
)

// actionsCmd groups the action catalog commands
var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List and run quick actions",
	Long: `Quick actions open system tools or run whitelisted diagnostic
commands through the gateway.

Examples:
  sysdeck actions list
  sysdeck actions run netstat`,
}

var actionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the action catalog",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return actionsListCommand(cmd)
	},
}

var actionsRunCmd = &cobra.Command{
	Use:   "run <key>",
	Short: "Run an action by key",
	Long: `Run one catalog action. Dangerous actions ask for confirmation
unless confirmDangerousActions is off or --yes is set. Command actions
print their output.`,
	Args: cobra.ExactArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return actions.DefaultCatalog().Keys(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return actionsRunCommand(cmd, args[0])
	},
}

func init() {
	actionsCmd.AddCommand(actionsListCmd, actionsRunCmd)
	rootCmd.AddCommand(actionsCmd)
}

// ActionInfo is the --json form of one catalog entry.
type ActionInfo struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Kind        string `json:"kind"`
	Dangerous   bool   `json:"dangerous"`
}

func actionsListCommand(cmd *cobra.Command) error {
	return withApp(func(a *app.App) error {
		all := a.Catalog.All()
		infos := make([]ActionInfo, len(all))
		for i, act := range all {
			infos[i] = ActionInfo{
				Key:         act.Key,
				Label:       act.Label,
				Description: act.Description,
				Category:    string(act.Category),
				Kind:        string(act.Kind),
				Dangerous:   act.Dangerous,
			}
		}
		out := cmd.OutOrStdout()
		return emit(out, infos, func() error {
			fmt.Fprint(out, renderCatalog(a.Catalog.Groups()))
			return nil
		})
	})
}

func renderCatalog(groups []actions.Group) string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorInfo)
	muted := ui.MutedStyle()

	width := 0
	for _, g := range groups {
		for _, act := range g.Actions {
			width = max(width, len(act.Key))
		}
	}

	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(heading.Render(g.Category.Title()) + "\n")
		for _, act := range g.Actions {
			label := act.Label
			if act.Dangerous {
				label += " " + ui.WarningStyle().Render(ui.SymbolWarning)
			}
			fmt.Fprintf(&b, "  %-*s  %s  %s\n", width, act.Key, label, muted.Render(act.Description))
		}
	}
	return b.String()
}

// ActionResult is the --json form of `actions run`.
type ActionResult struct {
	Key    string `json:"key"`
	Output string `json:"output,omitempty"`
}

func actionsRunCommand(cmd *cobra.Command, key string) error {
	return withApp(func(a *app.App) error {
		act, ok := a.Catalog.Get(key)
		o := a.Dispatcher.Dispatch(cmd.Context(), key)
		if err := runOutcome(o); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return emit(out, ActionResult{Key: key, Output: o.Output}, func() error {
			if ok && act.Kind == actions.KindResult {
				fmt.Fprint(out, o.Output)
				if o.Output != "" && !strings.HasSuffix(o.Output, "\n") {
					fmt.Fprintln(out)
				}
				return nil
			}
			fmt.Fprintln(out, ui.SuccessStyle().Render(ui.SymbolSuccess)+" "+act.Label+" succeeded")
			return nil
		})
	})
}
