package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/sysdeck/internal/util"
)

// Card layout constants
const (
	cardMinWidth   = 36
	cardBarWidth   = 20
	cardGraphWidth = 30
	labelWidth     = 10
)

// renderOverview lays out the snapshot cards: one column when compact,
// two when there is room.
func (m Model) renderOverview() string {
	if !m.haveSnapshot {
		if m.snapshotErr != nil {
			return errorLine(m.snapshotErr)
		}
		return LabelStyle.Render("Reading system information...")
	}

	width := m.cardWidth()
	left := []string{m.renderSystemCard(width), m.renderCPUCard(width), m.renderMemoryCard(width)}
	if gpu := m.renderGPUCard(width); gpu != "" {
		left = append(left, gpu)
	}
	right := []string{m.renderDiskCard(width), m.renderNetworkCard(width)}

	var out string
	if m.Layout() == LayoutCompact {
		out = lipgloss.JoinVertical(lipgloss.Left, append(left, right...)...)
	} else {
		out = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.JoinVertical(lipgloss.Left, left...),
			lipgloss.JoinVertical(lipgloss.Left, right...))
	}
	if m.snapshotErr != nil {
		out += "\n" + errorLine(m.snapshotErr)
	}
	return out
}

// cardWidth is the inner width of a card.
func (m Model) cardWidth() int {
	if m.width == 0 {
		return cardMinWidth + 10
	}
	if m.Layout() == LayoutCompact {
		return max(m.width-6, cardMinWidth)
	}
	return max(m.width/2-6, cardMinWidth)
}

func card(title string, width int, lines ...string) string {
	body := append([]string{CardTitleStyle.Render(title)}, lines...)
	return CardStyle.Width(width).Render(strings.Join(body, "\n"))
}

func field(label, value string) string {
	return LabelStyle.Render(fmt.Sprintf("%-*s", labelWidth, label)) + ValueStyle.Render(value)
}

// usage renders "<bar> 42%" colored by severity.
func usage(percent float64) string {
	return ProgressBar(cardBarWidth, percent) + " " + TierStyle(percent).Render(fmt.Sprintf("%3.0f%%", percent))
}

func (m Model) renderSystemCard(width int) string {
	s := m.snapshot.OS
	return card("System", width,
		field("Host", s.Hostname),
		field("OS", strings.TrimSpace(s.Name+" "+s.Version)),
		field("Build", s.Build),
		field("Arch", s.Arch),
		field("Uptime", util.FormatUptime(s.Uptime)),
	)
}

func (m Model) renderCPUCard(width int) string {
	c := m.snapshot.Hardware.CPU
	lines := []string{
		field("Model", util.Truncate(c.Brand, width-labelWidth)),
		field("Cores", fmt.Sprintf("%d @ %s", c.Cores, formatHz(c.FrequencyHz))),
		field("Usage", usage(c.UsagePercent)),
	}
	if c.TemperatureC != nil {
		lines = append(lines, field("Temp", fmt.Sprintf("%.0f°C", *c.TemperatureC)))
	}
	if spark := Sparkline(m.history.CPU(cardGraphWidth), min(cardGraphWidth, width-labelWidth)); spark != "" {
		lines = append(lines, field("History", spark))
	}
	return card("CPU", width, lines...)
}

func (m Model) renderMemoryCard(width int) string {
	mem := m.snapshot.Hardware.Memory
	lines := []string{
		field("Used", fmt.Sprintf("%s / %s", humanize.IBytes(mem.UsedBytes), humanize.IBytes(mem.TotalBytes))),
		field("Free", humanize.IBytes(mem.AvailableBytes)),
		field("Usage", usage(mem.UsagePercent)),
	}
	if spark := Sparkline(m.history.Memory(cardGraphWidth), min(cardGraphWidth, width-labelWidth)); spark != "" {
		lines = append(lines, field("History", spark))
	}
	return card("Memory", width, lines...)
}

func (m Model) renderGPUCard(width int) string {
	gpus := m.snapshot.Hardware.GPUs
	if len(gpus) == 0 {
		return ""
	}
	var lines []string
	for i, g := range gpus {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, ValueStyle.Bold(true).Render(util.Truncate(g.Name, width)))
		if g.MemoryTotalBytes > 0 {
			lines = append(lines, field("VRAM", fmt.Sprintf("%s / %s",
				humanize.IBytes(g.MemoryUsedBytes), humanize.IBytes(g.MemoryTotalBytes))))
		}
		lines = append(lines, field("Usage", usage(g.UsagePercent)))
		if g.TemperatureC != nil {
			lines = append(lines, field("Temp", fmt.Sprintf("%.0f°C", *g.TemperatureC)))
		}
	}
	if spark := Sparkline(m.history.GPU(cardGraphWidth), min(cardGraphWidth, width-labelWidth)); spark != "" {
		lines = append(lines, field("History", spark))
	}
	return card("GPU", width, lines...)
}

func (m Model) renderDiskCard(width int) string {
	disks := m.snapshot.Disks
	if len(disks) == 0 {
		return card("Disks", width, MutedStyle.Render("No volumes reported"))
	}
	var lines []string
	for _, d := range disks {
		name := d.MountPoint
		if d.Name != "" && d.Name != d.MountPoint {
			name = d.Name + " " + d.MountPoint
		}
		tags := ""
		if d.IsRemovable {
			tags += " removable"
		}
		if d.LowSpace {
			tags += lipgloss.NewStyle().Foreground(ColorCritical).Render(" low space")
		}
		lines = append(lines,
			ValueStyle.Render(util.Truncate(name, width-20))+MutedStyle.Render(" "+d.FileSystem)+tags,
			"  "+usage(d.UsagePercent)+MutedStyle.Render(fmt.Sprintf("  %s free of %s",
				humanize.IBytes(d.AvailableSpace), humanize.IBytes(d.TotalSpace))),
		)
	}
	return card("Disks", width, lines...)
}

func (m Model) renderNetworkCard(width int) string {
	net := m.snapshot.Network
	lines := []string{field("Active", fmt.Sprintf("%d connections", net.ActiveConnections))}
	if sent, recv, ok := m.history.NetworkRates(); ok {
		lines = append(lines, field("Traffic", fmt.Sprintf("↑ %s/s  ↓ %s/s",
			humanize.IBytes(uint64(sent)), humanize.IBytes(uint64(recv)))))
	}
	for _, iface := range net.Interfaces {
		if iface.IsLoopback {
			continue
		}
		state := lipgloss.NewStyle().Foreground(ColorHealthy).Render("●")
		if !iface.IsUp {
			state = MutedStyle.Render("○")
		}
		name := iface.DisplayName
		if name == "" {
			name = iface.Name
		}
		line := state + " " + ValueStyle.Render(util.Truncate(name, width/2)) +
			MutedStyle.Render(" "+string(iface.Category))
		if iface.SpeedBps > 0 {
			line += MutedStyle.Render(" " + humanize.SI(float64(iface.SpeedBps), "bps"))
		}
		lines = append(lines, line)
		if len(iface.IPAddresses) > 0 {
			lines = append(lines, "  "+LabelStyle.Render(util.Truncate(strings.Join(iface.IPAddresses, ", "), width-2)))
		}
	}
	return card("Network", width, lines...)
}

// formatHz renders a clock frequency, e.g. "3.60 GHz".
func formatHz(hz uint64) string {
	if hz == 0 {
		return "unknown speed"
	}
	return humanize.SIWithDigits(float64(hz), 2, "Hz")
}
