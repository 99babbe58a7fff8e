package cli

import (
	"fmt"

	"github.com/rileyhilliard/sysdeck/internal/app"
	"github.com/rileyhilliard/sysdeck/internal/settings"
	"github.com/rileyhilliard/sysdeck/internal/ui"
	"github.com/spf13/cobra"
)

// settingsCmd shows the persisted preferences
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change persisted settings",
	Long: `Settings persist between runs in the state file.

Keys:
  autoRefresh              refresh the dashboard on a timer (true/false)
  refreshInterval          seconds between refreshes (5-3600)
  showSystemProcesses      list system-critical processes (true/false)
  confirmDangerousActions  ask before dangerous actions (true/false)
  enableAnimations         dashboard animations (true/false)
  theme                    dark or light

Examples:
  sysdeck settings
  sysdeck settings get refreshInterval
  sysdeck settings set refreshInterval 10
  sysdeck settings reset`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return settingsShowCommand(cmd)
	},
}

var settingsGetCmd = &cobra.Command{
	Use:               "get <key>",
	Short:             "Print one setting",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeSettingKey,
	RunE: func(cmd *cobra.Command, args []string) error {
		return settingsGetCommand(cmd, args[0])
	},
}

var settingsSetCmd = &cobra.Command{
	Use:               "set <key> <value>",
	Short:             "Change one setting",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeSettingKey,
	RunE: func(cmd *cobra.Command, args []string) error {
		return settingsSetCommand(cmd, args[0], args[1])
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return settingsResetCommand(cmd)
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd, settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func completeSettingKey(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return settings.Keys(), cobra.ShellCompDirectiveNoFileComp
}

func settingsShowCommand(cmd *cobra.Command) error {
	return withApp(func(a *app.App) error {
		s := a.Settings.Get()
		out := cmd.OutOrStdout()
		return emit(out, s, func() error {
			renderSettings(cmd, a.Settings.Path(), s)
			return nil
		})
	})
}

func renderSettings(cmd *cobra.Command, path string, s settings.Settings) {
	out := cmd.OutOrStdout()
	for _, key := range settings.Keys() {
		v, _ := s.Get(key)
		fmt.Fprintf(out, "%-24s %v\n", key, v)
	}
	fmt.Fprintln(out, ui.MutedStyle().Render("stored in "+path))
}

// SettingValue is the --json form of `settings get`.
type SettingValue struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func settingsGetCommand(cmd *cobra.Command, key string) error {
	return withApp(func(a *app.App) error {
		v, err := a.Settings.Get().Get(key)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return emit(out, SettingValue{Key: key, Value: v}, func() error {
			fmt.Fprintln(out, v)
			return nil
		})
	})
}

func settingsSetCommand(cmd *cobra.Command, key, value string) error {
	return withApp(func(a *app.App) error {
		next, err := a.Settings.Set(key, value)
		if err != nil {
			return err
		}
		v, _ := next.Get(key)
		out := cmd.OutOrStdout()
		return emit(out, SettingValue{Key: key, Value: v}, func() error {
			fmt.Fprintf(out, "%s %s = %v\n", ui.SuccessStyle().Render(ui.SymbolSuccess), key, v)
			return nil
		})
	})
}

func settingsResetCommand(cmd *cobra.Command) error {
	return withApp(func(a *app.App) error {
		if err := a.Settings.Reset(); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return emit(out, a.Settings.Get(), func() error {
			fmt.Fprintln(out, ui.SuccessStyle().Render(ui.SymbolSuccess)+" Settings restored to defaults")
			return nil
		})
	})
}
