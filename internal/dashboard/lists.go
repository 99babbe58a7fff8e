package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/sysdeck/internal/model"
	"github.com/rileyhilliard/sysdeck/internal/util"
)

// Column widths per list; the last column takes the rest of the line.
var (
	portColumns      = []int{6, 5, 11, 7, 20}
	processColumns   = []int{7, 28, 7, 10, 10}
	containerColumns = []int{12, 22, 24, 9, 24}
	actionColumns    = []int{20, 34}
)

// listState renders the placeholder for a list that has nothing to show
// yet, or "" when rows should be drawn.
func (m Model) listState(v View, rows int, noun string) string {
	if err := m.listErr[v]; err != nil {
		return errorLine(err)
	}
	if !m.loaded[v] {
		return LabelStyle.Render("Loading " + noun + "...")
	}
	if rows == 0 {
		if m.search.Value() != "" {
			return MutedStyle.Render(fmt.Sprintf("No %s match %q", noun, m.search.Value()))
		}
		return MutedStyle.Render("No " + noun)
	}
	return ""
}

func (m Model) renderPorts(height int) string {
	ports := m.visiblePorts()
	if s := m.listState(ViewPorts, len(ports), "ports"); s != "" {
		return s
	}
	rows := make([]string, len(ports))
	for i, p := range ports {
		pid, project := "", ""
		if p.Process.PID > 0 {
			pid = strconv.Itoa(int(p.Process.PID))
		}
		if p.Project != nil {
			project = p.Project.ProjectType + ": " + p.Project.Name
		}
		rows[i] = row(portColumns,
			strconv.Itoa(int(p.Port)), string(p.Protocol), string(p.Status), pid, p.Process.Name, project)
	}
	header := row(portColumns, "PORT", "PROTO", "STATUS", "PID", "PROCESS", "PROJECT")
	return renderTable(header, rows, m.cursor[ViewPorts], height)
}

func (m Model) renderProcesses(height int) string {
	procs := m.visibleProcesses()
	if s := m.listState(ViewProcesses, len(procs), "processes"); s != "" {
		return s
	}
	rows := make([]string, len(procs))
	for i, p := range procs {
		name := p.Name
		if m.app.Engine.IsCritical(p.Name) {
			name += " [system]"
		}
		rows[i] = row(processColumns,
			strconv.Itoa(int(p.PID)), name,
			fmt.Sprintf("%.1f", p.CPUUsagePercent),
			humanize.IBytes(p.MemoryUsageBytes),
			p.Status,
			p.CommandLine())
	}
	header := row(processColumns, "PID", "NAME", "CPU%", "MEMORY", "STATUS", "COMMAND")
	return renderTable(header, rows, m.cursor[ViewProcesses], height)
}

func (m Model) renderContainers(height int) string {
	if m.loaded[ViewContainers] && !m.dockerOK && m.listErr[ViewContainers] == nil {
		return MutedStyle.Render("Docker is not available on this host.")
	}
	list := m.visibleContainers()
	if s := m.listState(ViewContainers, len(list), "containers"); s != "" {
		return s
	}
	rows := make([]string, len(list))
	for i, c := range list {
		rows[i] = row(containerColumns,
			c.ShortID(), c.Name, c.Image, c.State, c.Status, containerPorts(c.Ports))
	}
	header := row(containerColumns, "ID", "NAME", "IMAGE", "STATE", "STATUS", "PORTS")
	return renderTable(header, rows, m.cursor[ViewContainers], height)
}

func containerPorts(ports []model.ContainerPort) string {
	parts := make([]string, 0, len(ports))
	for _, p := range ports {
		if p.HostPort > 0 {
			parts = append(parts, fmt.Sprintf("%d->%d/%s", p.HostPort, p.ContainerPort, p.Protocol))
		} else {
			parts = append(parts, fmt.Sprintf("%d/%s", p.ContainerPort, p.Protocol))
		}
	}
	return strings.Join(parts, ", ")
}

func (m Model) renderActions(height int) string {
	list := m.visibleActions()
	if len(list) == 0 {
		return MutedStyle.Render(fmt.Sprintf("No actions match %q", m.search.Value()))
	}
	rows := make([]string, len(list))
	for i, a := range list {
		label := a.Label
		if a.Dangerous {
			label = "⚠ " + label
		}
		desc := a.Description
		if m.app.Dispatcher.IsBusy(a.Key) {
			desc = "running... " + desc
		}
		rows[i] = row(actionColumns, a.Category.Title(), util.Truncate(label, actionColumns[1]), desc)
	}
	header := row(actionColumns, "CATEGORY", "ACTION", "RUNS")
	return renderTable(header, rows, m.cursor[ViewActions], height)
}
