package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/sysdeck/internal/app"
	"github.com/rileyhilliard/sysdeck/internal/model"
	"github.com/rileyhilliard/sysdeck/internal/ui"
	"github.com/rileyhilliard/sysdeck/internal/util"
	"github.com/spf13/cobra"
)

var statusRefresh bool

// statusBarWidth is the width of the usage bars in status output.
const statusBarWidth = 20

// statusCmd prints the system snapshot
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the system snapshot",
	Long: `Print OS, CPU, memory, GPU, disk, and network information.

The snapshot is cached; --refresh fetches a fresh one.

Examples:
  sysdeck status
  sysdeck status --refresh
  sysdeck status --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusCommand(cmd)
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusRefresh, "refresh", false, "bypass the snapshot cache")
	rootCmd.AddCommand(statusCmd)
}

func statusCommand(cmd *cobra.Command) error {
	return withApp(func(a *app.App) error {
		snap, err := fetch(cmd, "Reading system information", func(ctx context.Context) (model.SystemSnapshot, error) {
			if statusRefresh {
				return a.Cache.Refresh(ctx)
			}
			return a.Snapshot(ctx)
		})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return emit(out, snap, func() error {
			renderStatus(out, snap)
			return nil
		})
	})
}

// fetch runs a gateway read behind a spinner when a person is watching.
func fetch[T any](cmd *cobra.Command, label string, fn func(ctx context.Context) (T, error)) (T, error) {
	if machineMode || !stdoutIsTerminal() {
		return fn(cmd.Context())
	}
	s := ui.NewSpinner(os.Stderr, label)
	s.Start()
	v, err := fn(cmd.Context())
	s.Stop()
	return v, err
}

func renderStatus(w io.Writer, s model.SystemSnapshot) {
	heading := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorInfo)
	label := func(l string) string { return heading.Render(fmt.Sprintf("%-8s", l)) }
	muted := ui.MutedStyle()

	osInfo := s.OS
	fmt.Fprintf(w, "%s %s %s\n",
		lipgloss.NewStyle().Bold(true).Render(osInfo.Hostname),
		strings.TrimSpace(fmt.Sprintf("%s %s %s", osInfo.Name, osInfo.Version, osInfo.Arch)),
		muted.Render("up "+util.FormatUptime(osInfo.Uptime)))

	cpu := s.Hardware.CPU
	speed := "unknown speed"
	if cpu.FrequencyHz > 0 {
		speed = humanize.SIWithDigits(float64(cpu.FrequencyHz), 2, "Hz")
	}
	fmt.Fprintf(w, "%s %s, %d %s @ %s\n", label("CPU"), cpu.Brand,
		cpu.Cores, util.Pluralize(cpu.Cores, "core", "cores"), speed)
	line := ui.RenderProgressBar(cpu.UsagePercent, statusBarWidth)
	if cpu.TemperatureC != nil {
		line += fmt.Sprintf("  %.0f°C", *cpu.TemperatureC)
	}
	fmt.Fprintf(w, "%8s %s\n", "", line)

	mem := s.Hardware.Memory
	fmt.Fprintf(w, "%s %s / %s\n", label("Memory"), humanize.IBytes(mem.UsedBytes), humanize.IBytes(mem.TotalBytes))
	fmt.Fprintf(w, "%8s %s\n", "", ui.RenderProgressBar(mem.UsagePercent, statusBarWidth))

	for _, g := range s.Hardware.GPUs {
		fmt.Fprintf(w, "%s %s", label("GPU"), g.Name)
		if g.MemoryTotalBytes > 0 {
			fmt.Fprintf(w, " %s", muted.Render(fmt.Sprintf("(%s / %s VRAM)",
				humanize.IBytes(g.MemoryUsedBytes), humanize.IBytes(g.MemoryTotalBytes))))
		}
		fmt.Fprintf(w, "\n%8s %s\n", "", ui.RenderProgressBar(g.UsagePercent, statusBarWidth))
	}

	fmt.Fprintln(w, label("Disks"))
	for _, d := range s.Disks {
		warn := ""
		if d.LowSpace {
			warn = "  " + ui.ErrorStyle().Render(ui.SymbolWarning+" low space")
		}
		fmt.Fprintf(w, "  %-12s %-6s %s  %s%s\n",
			util.Truncate(d.MountPoint, 12), d.FileSystem,
			ui.RenderProgressBar(d.UsagePercent, statusBarWidth),
			muted.Render(fmt.Sprintf("%s free of %s", humanize.IBytes(d.AvailableSpace), humanize.IBytes(d.TotalSpace))),
			warn)
	}

	conns := s.Network.ActiveConnections
	fmt.Fprintf(w, "%s %d %s\n", label("Network"), conns,
		util.Pluralize(conns, "active connection", "active connections"))
	for _, iface := range s.Network.Interfaces {
		if iface.IsLoopback {
			continue
		}
		state := ui.SuccessStyle().Render(ui.SymbolComplete)
		if !iface.IsUp {
			state = muted.Render(ui.SymbolPending)
		}
		name := iface.DisplayName
		if name == "" {
			name = iface.Name
		}
		fmt.Fprintf(w, "  %s %s %s %s\n", state, name,
			muted.Render(string(iface.Category)), util.JoinOrNone(iface.IPAddresses))
	}
}
