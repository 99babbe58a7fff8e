package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rileyhilliard/sysdeck/internal/actions"
	"github.com/rileyhilliard/sysdeck/internal/app"
	"github.com/rileyhilliard/sysdeck/internal/config"
	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/logger"
	"github.com/rileyhilliard/sysdeck/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Global flags
var (
	cfgFile   string
	noColor   bool
	assumeYes bool
)

// loadedConfig is the config resolved in PersistentPreRunE.
var loadedConfig *config.Config

// appOptions are extra options for every App the commands build. Tests use
// it to swap in a fake gateway.
var appOptions []app.Option

// stdoutIsTerminal reports whether stdout is an interactive terminal.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sysdeck",
	Short: "System dashboard and control deck for one machine",
	Long: `sysdeck shows what a machine is doing and lets you act on it.

It reads a system snapshot (OS, CPU, memory, GPUs, disks, network), lists
open ports, processes and Docker containers, and runs a catalog of system
actions. The host can be this machine, a backend subprocess, or another
machine over SSH (gateway.transport in .sysdeck.yaml).

Run without arguments on a terminal to open the dashboard.

Examples:
  sysdeck
  sysdeck status
  sysdeck ports --category development
  sysdeck ps --sort memory --limit 10
  sysdeck kill 4242`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrDefault(cfgFile)
		if err != nil {
			return err
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
		loadedConfig = cfg
		applyColor(cfg.Output.Color)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !machineMode && stdoutIsTerminal() {
			return dashboardCommand(cmd, "")
		}
		return statusCommand(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./.sysdeck.yaml or ~/.config/sysdeck/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&machineMode, "json", false, "machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "don't ask before dangerous actions")
}

// applyColor turns colors off for --no-color, NO_COLOR, --json, or
// output.color: never.
func applyColor(setting string) {
	if noColor || machineMode || os.Getenv("NO_COLOR") != "" || setting == "never" {
		ui.DisableColors()
	}
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}

	if isUnknownCommandError(err) {
		if name := extractUnknownCommand(err); name != "" {
			err = errors.New(errors.ErrConfig,
				fmt.Sprintf("Unknown command %q", name),
				"Run 'sysdeck --help' to see available commands.")
		}
	}

	if machineMode {
		_ = WriteJSONFromError(os.Stdout, err)
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	stop()
	os.Exit(1)
}

// isUnknownCommandError reports whether cobra rejected the command line.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "unknown command") || strings.Contains(msg, "unknown flag")
}

// extractUnknownCommand pulls the name out of cobra's
// `unknown command "foo" for "sysdeck"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start == -1 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end == -1 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

// openApp builds the App for a command from the loaded config.
func openApp() (*app.App, error) {
	cfg := loadedConfig
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	var confirmer actions.Confirmer = ui.NewPromptConfirmer(assumeYes)
	if machineMode {
		// Scripts get an answer, never a prompt.
		confirmer = actions.ConfirmFunc(func(context.Context, actions.Action) bool { return assumeYes })
	}
	opts := []app.Option{
		app.WithLogger(logger.NewEnvLogger("[sysdeck]")),
		app.WithConfirmer(confirmer),
	}
	return app.New(cfg, append(opts, appOptions...)...)
}

// withApp runs fn with an App and closes it afterwards.
func withApp(fn func(a *app.App) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // best-effort transport shutdown
	return fn(a)
}
