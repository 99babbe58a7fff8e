package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rileyhilliard/sysdeck/internal/app"
	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/model"
	"github.com/rileyhilliard/sysdeck/internal/pipeline"
	"github.com/rileyhilliard/sysdeck/internal/ui"
	"github.com/spf13/cobra"
)

// ports command flags
var (
	portsSearch   string
	portsCategory string
	portsStatus   string
)

// portsCmd lists open ports
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List open ports and the processes that own them",
	Long: `List TCP and UDP ports with their owning process and, where it can be
recognized, the development project behind them.

Categories:
  development  React, Vue, and Node.js projects
  docker       ports published by Docker
  system       everything without a detected project

Examples:
  sysdeck ports
  sysdeck ports --search 3000
  sysdeck ports --category development --status listening`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return portsCommand(cmd)
	},
}

func init() {
	portsCmd.Flags().StringVar(&portsSearch, "search", "", "filter by port, process name, or project")
	portsCmd.Flags().StringVar(&portsCategory, "category", "all", "all, development, docker, or system")
	portsCmd.Flags().StringVar(&portsStatus, "status", "", "LISTENING or ESTABLISHED")
	rootCmd.AddCommand(portsCmd)
}

func portsCommand(cmd *cobra.Command) error {
	category, err := pipeline.ParsePortCategory(portsCategory)
	if err != nil {
		return err
	}
	status, err := parsePortStatus(portsStatus)
	if err != nil {
		return err
	}

	return withApp(func(a *app.App) error {
		all, err := fetch(cmd, "Listing ports", a.Ports)
		if err != nil {
			return err
		}
		ports := pipeline.Ports(all, pipeline.PortQuery{Text: portsSearch, Category: category, Status: status})

		out := cmd.OutOrStdout()
		return emit(out, ports, func() error {
			if len(ports) == 0 {
				fmt.Fprintln(out, ui.MutedStyle().Render("No ports match."))
				return nil
			}
			fmt.Fprint(out, renderPorts(ports))
			return nil
		})
	})
}

func parsePortStatus(s string) (model.PortStatus, error) {
	switch strings.ToUpper(s) {
	case "":
		return "", nil
	case string(model.StatusListening):
		return model.StatusListening, nil
	case string(model.StatusEstablished):
		return model.StatusEstablished, nil
	}
	return "", errors.New(errors.ErrConfig,
		"Unknown port status: "+s,
		"Use LISTENING or ESTABLISHED.")
}

func renderPorts(ports []model.PortRecord) string {
	rows := make([][]string, len(ports))
	for i, p := range ports {
		pid, project := "", ""
		if p.Process.PID > 0 {
			pid = strconv.Itoa(int(p.Process.PID))
		}
		if p.Project != nil {
			project = p.Project.ProjectType + ": " + p.Project.Name
		}
		rows[i] = []string{strconv.Itoa(int(p.Port)), string(p.Protocol), string(p.Status), pid, p.Process.Name, project}
	}
	return ui.RenderSimpleTable([]ui.TableColumn{
		{Title: "PORT", Width: 6},
		{Title: "PROTO", Width: 5},
		{Title: "STATUS", Width: 11},
		{Title: "PID", Width: 7},
		{Title: "PROCESS", Width: 20},
		{Title: "PROJECT"},
	}, rows) + "\n"
}
