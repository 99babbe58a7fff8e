package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/shirou/gopsutil/v4/sensors"
)

// ProcessInfo is what the backend reads about one process.
type ProcessInfo struct {
	PID        int32
	Name       string
	Exe        string
	Cmdline    []string
	CPUPercent float64
	RSS        uint64
	Status     string
	CreateTime int64 // epoch millis
}

// Probe reads host state. The gopsutil-backed implementation is the only
// production one; tests substitute fixed readings.
type Probe interface {
	Host(ctx context.Context) (*host.InfoStat, error)
	CPU(ctx context.Context) ([]cpu.InfoStat, error)
	CPUCount(ctx context.Context) (int, error)
	CPUPercent(ctx context.Context) (float64, error)
	Temperature(ctx context.Context) (float64, bool)
	Memory(ctx context.Context) (*mem.VirtualMemoryStat, error)
	Partitions(ctx context.Context) ([]disk.PartitionStat, error)
	Usage(ctx context.Context, mount string) (*disk.UsageStat, error)
	Interfaces(ctx context.Context) (net.InterfaceStatList, error)
	IOCounters(ctx context.Context) ([]net.IOCountersStat, error)
	LinkSpeed(name string) (string, bool)
	Connections(ctx context.Context) ([]net.ConnectionStat, error)
	Processes(ctx context.Context) ([]ProcessInfo, error)
	Process(ctx context.Context, pid int32) (ProcessInfo, error)
	Kill(ctx context.Context, pid int32) error
}

// cpuSampleWindow is how long CPUPercent measures. gopsutil's zero-interval
// mode compares against the previous call, which a one-shot backend process
// never made.
const cpuSampleWindow = 250 * time.Millisecond

type gopsutilProbe struct{}

// NewProbe returns the gopsutil-backed probe.
func NewProbe() Probe {
	return gopsutilProbe{}
}

func (gopsutilProbe) Host(ctx context.Context) (*host.InfoStat, error) {
	return host.InfoWithContext(ctx)
}

func (gopsutilProbe) CPU(ctx context.Context) ([]cpu.InfoStat, error) {
	return cpu.InfoWithContext(ctx)
}

func (gopsutilProbe) CPUCount(ctx context.Context) (int, error) {
	return cpu.CountsWithContext(ctx, false)
}

func (gopsutilProbe) CPUPercent(ctx context.Context) (float64, error) {
	pcts, err := cpu.PercentWithContext(ctx, cpuSampleWindow, false)
	if err != nil || len(pcts) == 0 {
		return 0, err
	}
	return pcts[0], nil
}

// Temperature returns the hottest CPU-looking sensor.
func (gopsutilProbe) Temperature(ctx context.Context) (float64, bool) {
	temps, err := sensors.TemperaturesWithContext(ctx)
	if err != nil && len(temps) == 0 {
		return 0, false
	}
	best, found := 0.0, false
	for _, t := range temps {
		key := strings.ToLower(t.SensorKey)
		if !strings.Contains(key, "core") && !strings.Contains(key, "cpu") &&
			!strings.Contains(key, "package") && !strings.Contains(key, "tdie") {
			continue
		}
		if t.Temperature > best {
			best, found = t.Temperature, true
		}
	}
	return best, found
}

func (gopsutilProbe) Memory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	return mem.VirtualMemoryWithContext(ctx)
}

func (gopsutilProbe) Partitions(ctx context.Context) ([]disk.PartitionStat, error) {
	return disk.PartitionsWithContext(ctx, false)
}

func (gopsutilProbe) Usage(ctx context.Context, mount string) (*disk.UsageStat, error) {
	return disk.UsageWithContext(ctx, mount)
}

func (gopsutilProbe) Interfaces(ctx context.Context) (net.InterfaceStatList, error) {
	return net.InterfacesWithContext(ctx)
}

func (gopsutilProbe) IOCounters(ctx context.Context) ([]net.IOCountersStat, error) {
	return net.IOCountersWithContext(ctx, true)
}

// LinkSpeed reads the negotiated speed in Mbps from sysfs. Other platforms
// don't expose it without elevated tooling.
func (gopsutilProbe) LinkSpeed(name string) (string, bool) {
	data, err := os.ReadFile(filepath.Join("/sys/class/net", name, "speed"))
	if err != nil {
		return "", false
	}
	s := strings.TrimSpace(string(data))
	if s == "" || strings.HasPrefix(s, "-") {
		return "", false
	}
	return s + " Mbps", true
}

func (gopsutilProbe) Connections(ctx context.Context) ([]net.ConnectionStat, error) {
	return net.ConnectionsWithContext(ctx, "inet")
}

func (gopsutilProbe) Processes(ctx context.Context) ([]ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProcessInfo, 0, len(procs))
	for _, proc := range procs {
		out = append(out, readProcess(ctx, proc))
	}
	return out, nil
}

func (gopsutilProbe) Process(ctx context.Context, pid int32) (ProcessInfo, error) {
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return ProcessInfo{}, err
	}
	return readProcess(ctx, proc), nil
}

func (gopsutilProbe) Kill(ctx context.Context, pid int32) error {
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return err
	}
	return proc.KillWithContext(ctx)
}

// readProcess collects what it can; processes owned by other users often
// refuse some fields, which stay zero.
func readProcess(ctx context.Context, p *process.Process) ProcessInfo {
	info := ProcessInfo{PID: p.Pid}
	info.Name, _ = p.NameWithContext(ctx)
	info.Exe, _ = p.ExeWithContext(ctx)
	info.Cmdline, _ = p.CmdlineSliceWithContext(ctx)
	info.CPUPercent, _ = p.CPUPercentWithContext(ctx)
	if m, err := p.MemoryInfoWithContext(ctx); err == nil && m != nil {
		info.RSS = m.RSS
	}
	if st, err := p.StatusWithContext(ctx); err == nil && len(st) > 0 {
		info.Status = st[0]
	}
	info.CreateTime, _ = p.CreateTimeWithContext(ctx)
	return info
}
