package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sysdeck/internal/config"
	"github.com/rileyhilliard/sysdeck/internal/doctor"
	"github.com/rileyhilliard/sysdeck/internal/settings"
	"github.com/rileyhilliard/sysdeck/internal/ui"
	"github.com/spf13/cobra"
)

var doctorFix bool

// doctorCmd diagnoses config, credentials, and the gateway
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config, gateway, and Docker problems",
	Long: `Check that sysdeck can load its config, save settings, reach its
backend, and talk to Docker.

Doctor runs even when the config is broken, so it's the first thing to try
when another command fails.

Examples:
  sysdeck doctor
  sysdeck doctor --fix
  sysdeck doctor --json`,
	Args: cobra.NoArgs,
	// Doctor loads the config itself so a bad config is reported, not fatal.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		applyColor("")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd)
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
	rootCmd.AddCommand(doctorCmd)
}

// DoctorOutput is the JSON form of the doctor report.
type DoctorOutput struct {
	Categories []doctor.Section `json:"categories"`
	Summary    DoctorSummary    `json:"summary"`
}

// DoctorSummary counts the check results.
type DoctorSummary struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

func doctorCommand(cmd *cobra.Command) error {
	opts := doctor.Options{ConfigPath: cfgFile}

	cfg, err := config.LoadOrDefault(cfgFile)
	if err == nil && config.Validate(cfg) == nil {
		opts.Config = cfg
		loadedConfig = cfg
		applyColor(cfg.Output.Color)

		// A failure here is reported by the config and state checks.
		if a, err := openApp(); err == nil {
			defer a.Close() //nolint:errcheck // best-effort transport shutdown
			opts.Gateway = a.Gateway
			opts.SettingsPath = a.Settings.Path()
		} else {
			opts.SettingsPath = doctorSettingsPath(cfg)
		}
	}

	checks := doctor.NewChecks(opts)
	results, err := fetch(cmd, "Running checks", func(ctx context.Context) ([]doctor.CheckResult, error) {
		return doctor.RunAllParallel(ctx, checks), nil
	})
	if err != nil {
		return err
	}

	var fixErrs []error
	if doctorFix {
		results, fixErrs = doctor.FixAll(cmd.Context(), checks, results)
	}

	out := cmd.OutOrStdout()
	counts := doctor.CountByStatus(results)
	report := DoctorOutput{
		Categories: doctor.Group(results),
		Summary: DoctorSummary{
			Pass:     counts[doctor.StatusPass],
			Warn:     counts[doctor.StatusWarn],
			Fail:     counts[doctor.StatusFail],
			Fixable:  doctor.FixableCount(results),
			AllClear: !doctor.HasIssues(results),
		},
	}
	return emit(out, report, func() error {
		renderDoctor(out, report, results, fixErrs)
		return nil
	})
}

// doctorSettingsPath mirrors how app.New resolves the settings file.
func doctorSettingsPath(cfg *config.Config) string {
	if cfg.Settings.Path != "" {
		return config.ExpandPath(cfg.Settings.Path)
	}
	path, _ := settings.DefaultPath()
	return path
}

func renderDoctor(w io.Writer, report DoctorOutput, results []doctor.CheckResult, fixErrs []error) {
	header := lipgloss.NewStyle().Bold(true)
	muted := ui.MutedStyle()

	fmt.Fprintln(w)
	fmt.Fprintln(w, header.Render("sysdeck Diagnostic Report"))
	fmt.Fprintln(w)

	for _, section := range report.Categories {
		fmt.Fprintln(w, header.Render(section.Category))
		for _, r := range section.Results {
			renderCheckResult(w, r)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("━", 60))
	fmt.Fprintln(w)

	if report.Summary.AllClear {
		fmt.Fprintf(w, "%s %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), doctor.Summary(results))
	} else {
		fmt.Fprintf(w, "%s %s\n", ui.ErrorStyle().Render(ui.SymbolFail), doctor.Summary(results))
		if report.Summary.Fixable > 0 && !doctorFix {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "  Run with %s to attempt automatic fixes where possible.\n", muted.Render("--fix"))
		}
	}
	for _, err := range fixErrs {
		fmt.Fprintf(w, "  %s fix failed: %v\n", ui.ErrorStyle().Render(ui.SymbolFail), err)
	}
	fmt.Fprintln(w)
}

func renderCheckResult(w io.Writer, r doctor.CheckResult) {
	symbol, style := ui.SymbolComplete, ui.SuccessStyle()
	switch r.Status {
	case doctor.StatusWarn:
		symbol, style = ui.SymbolWarning, ui.WarningStyle()
	case doctor.StatusFail:
		symbol, style = ui.SymbolFail, ui.ErrorStyle()
	}

	fmt.Fprintf(w, "  %s %s\n", style.Render(symbol), r.Message)
	if r.Suggestion != "" && r.Status != doctor.StatusPass {
		for _, line := range strings.Split(r.Suggestion, "\n") {
			fmt.Fprintf(w, "    %s\n", ui.MutedStyle().Render(line))
		}
	}
}
