package backend

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/gateway"
	"github.com/rileyhilliard/sysdeck/internal/logger"
	"github.com/rileyhilliard/sysdeck/internal/model"
	"github.com/rileyhilliard/sysdeck/internal/normalize"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errProbe = stderrors.New("probe failed")

const gib = 1 << 30

// fakeProbe returns fixed readings. A nil field means the reading fails.
type fakeProbe struct {
	host       *host.InfoStat
	cpus       []cpu.InfoStat
	cores      int
	load       float64
	temp       float64
	hasTemp    bool
	memory     *mem.VirtualMemoryStat
	partitions []disk.PartitionStat
	usage      map[string]*disk.UsageStat
	ifaces     net.InterfaceStatList
	io         []net.IOCountersStat
	speeds     map[string]string
	conns      []net.ConnectionStat
	procs      []ProcessInfo
	killErr    error

	mu     sync.Mutex
	killed []int32
}

func (p *fakeProbe) Host(context.Context) (*host.InfoStat, error) {
	if p.host == nil {
		return nil, errProbe
	}
	return p.host, nil
}

func (p *fakeProbe) CPU(context.Context) ([]cpu.InfoStat, error) {
	if p.cpus == nil {
		return nil, errProbe
	}
	return p.cpus, nil
}

func (p *fakeProbe) CPUCount(context.Context) (int, error) { return p.cores, nil }

func (p *fakeProbe) CPUPercent(context.Context) (float64, error) { return p.load, nil }

func (p *fakeProbe) Temperature(context.Context) (float64, bool) { return p.temp, p.hasTemp }

func (p *fakeProbe) Memory(context.Context) (*mem.VirtualMemoryStat, error) {
	if p.memory == nil {
		return nil, errProbe
	}
	return p.memory, nil
}

func (p *fakeProbe) Partitions(context.Context) ([]disk.PartitionStat, error) {
	if p.partitions == nil {
		return nil, errProbe
	}
	return p.partitions, nil
}

func (p *fakeProbe) Usage(_ context.Context, mount string) (*disk.UsageStat, error) {
	u, ok := p.usage[mount]
	if !ok {
		return nil, errProbe
	}
	return u, nil
}

func (p *fakeProbe) Interfaces(context.Context) (net.InterfaceStatList, error) {
	if p.ifaces == nil {
		return nil, errProbe
	}
	return p.ifaces, nil
}

func (p *fakeProbe) IOCounters(context.Context) ([]net.IOCountersStat, error) {
	return p.io, nil
}

func (p *fakeProbe) LinkSpeed(name string) (string, bool) {
	s, ok := p.speeds[name]
	return s, ok
}

func (p *fakeProbe) Connections(context.Context) ([]net.ConnectionStat, error) {
	if p.conns == nil {
		return nil, errProbe
	}
	return p.conns, nil
}

func (p *fakeProbe) Processes(context.Context) ([]ProcessInfo, error) {
	if p.procs == nil {
		return nil, errProbe
	}
	return p.procs, nil
}

func (p *fakeProbe) Process(_ context.Context, pid int32) (ProcessInfo, error) {
	for _, proc := range p.procs {
		if proc.PID == pid {
			return proc, nil
		}
	}
	return ProcessInfo{}, errProbe
}

func (p *fakeProbe) Kill(_ context.Context, pid int32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.killed = append(p.killed, pid)
	return p.killErr
}

// fakeRunner answers by command line and records what ran.
type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	fail    map[string]bool
	ran     []string
	started []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: map[string]string{}, fail: map[string]bool{}}
}

func (r *fakeRunner) answer(line, out string) *fakeRunner {
	r.outputs[line] = out
	return r
}

func (r *fakeRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ran = append(r.ran, line)
	if r.fail[line] {
		return []byte("boom"), stderrors.New(name + ": exit status 1")
	}
	out, ok := r.outputs[line]
	if !ok {
		return nil, stderrors.New(name + ": executable file not found in $PATH")
	}
	return []byte(out), nil
}

func (r *fakeRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return r.Output(ctx, name, args...)
}

func (r *fakeRunner) Start(_ context.Context, name string, args ...string) error {
	line := strings.Join(append([]string{name}, args...), " ")
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[line] {
		return stderrors.New(name + ": not found")
	}
	r.started = append(r.started, line)
	return nil
}

func (r *fakeRunner) lastStarted() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.started) == 0 {
		return ""
	}
	return r.started[len(r.started)-1]
}

func healthyProbe() *fakeProbe {
	return &fakeProbe{
		host: &host.InfoStat{
			Hostname:        "devbox",
			Uptime:          7200,
			OS:              "linux",
			Platform:        "ubuntu",
			PlatformVersion: "24.04",
			KernelVersion:   "6.8.0",
			KernelArch:      "x86_64",
		},
		cpus:    []cpu.InfoStat{{ModelName: "AMD Ryzen 7 7840U ", Mhz: 3300}},
		cores:   8,
		load:    42.5,
		temp:    55,
		hasTemp: true,
		memory:  &mem.VirtualMemoryStat{Total: 16 * gib, Available: 4 * gib},
		partitions: []disk.PartitionStat{
			{Device: "/dev/nvme0n1p2", Mountpoint: "/", Fstype: "ext4"},
			{Device: "tmpfs", Mountpoint: "/run", Fstype: "tmpfs"},
			{Device: "/dev/sda1", Mountpoint: "/media/usb", Fstype: "vfat"},
		},
		usage: map[string]*disk.UsageStat{
			"/":          {Total: 500 * gib, Free: 100 * gib},
			"/run":       {Total: gib, Free: gib},
			"/media/usb": {Total: 32 * gib, Free: 30 * gib},
		},
		ifaces: net.InterfaceStatList{
			{
				Name:         "eth0",
				HardwareAddr: "aa:bb:cc:dd:ee:ff",
				Flags:        []string{"up", "broadcast"},
				Addrs:        net.InterfaceAddrList{{Addr: "192.168.1.5/24"}, {Addr: "fe80::1/64"}},
			},
			{
				Name:  "lo",
				Flags: []string{"up", "loopback"},
				Addrs: net.InterfaceAddrList{{Addr: "127.0.0.1/8"}},
			},
		},
		io:     []net.IOCountersStat{{Name: "eth0", BytesSent: 1000, BytesRecv: 5000}},
		speeds: map[string]string{"eth0": "1000 Mbps"},
		conns: []net.ConnectionStat{
			{Type: 1, Laddr: net.Addr{IP: "0.0.0.0", Port: 8080}, Status: "LISTEN", Pid: 100},
			{Type: 1, Laddr: net.Addr{IP: "127.0.0.1", Port: 8080}, Raddr: net.Addr{IP: "127.0.0.1", Port: 50000}, Status: "ESTABLISHED", Pid: 100},
			{Type: 1, Laddr: net.Addr{IP: "10.0.0.2", Port: 51000}, Raddr: net.Addr{IP: "1.1.1.1", Port: 443}, Status: "ESTABLISHED", Pid: 200},
			{Type: 2, Laddr: net.Addr{IP: "0.0.0.0", Port: 5353}},
			{Type: 1, Laddr: net.Addr{IP: "10.0.0.2", Port: 9000}, Status: "TIME_WAIT"},
		},
		procs: []ProcessInfo{
			{PID: 100, Name: "node", Exe: "/usr/bin/node", Cmdline: []string{"node", "/home/dev/app/server.js"}, CPUPercent: 12.5, RSS: 200 << 20, Status: "running", CreateTime: 1700000000000},
			{PID: 200, Name: "curl", CPUPercent: 0, RSS: 4 << 20},
		},
	}
}

func newTestRegistry(t *testing.T, probe Probe, run Runner, goos string) *gateway.Registry {
	t.Helper()
	b := New(WithProbe(probe), WithRunner(run), WithLogger(logger.Noop()), WithPlatform(goos))
	return NewRegistry(b, logger.Noop())
}

func invoke(t *testing.T, reg *gateway.Registry, command string, args gateway.Args) (gateway.Result, error) {
	t.Helper()
	return reg.Invoke(context.Background(), command, args)
}

func TestRegister_AllCommands(t *testing.T) {
	reg := newTestRegistry(t, healthyProbe(), newFakeRunner(), "linux")

	want := []string{
		gateway.CmdSystemInfo, gateway.CmdPorts, gateway.CmdProcesses, gateway.CmdKillProcess,
		gateway.CmdContainers, gateway.CmdDockerAvailable, gateway.CmdStopContainer,
		gateway.CmdRestartContainer, gateway.CmdContainerLogs, gateway.CmdRunCommand,
		gateway.CmdRunInNewWindow, gateway.CmdOpenGUIApp, gateway.CmdOpenSystemSettings,
		gateway.CmdOpenNetworkSettings, gateway.CmdOpenTaskManager, gateway.CmdOpenDeviceManager,
		gateway.CmdOpenSystemInfo, gateway.CmdOpenSecurity, gateway.CmdOpenInExplorer,
		gateway.CmdOpenWithDefault, gateway.CmdRestartExplorer, gateway.CmdCleanTempFiles,
	}
	assert.ElementsMatch(t, want, reg.Commands())
}

func TestSystemInfo_Normalizes(t *testing.T) {
	run := newFakeRunner().answer(
		"nvidia-smi --query-gpu=name,utilization.gpu,memory.used,memory.total,temperature.gpu --format=csv,noheader,nounits",
		"NVIDIA GeForce RTX 4070, 35, 2048, 12282, 61\n")
	reg := newTestRegistry(t, healthyProbe(), run, "linux")

	res, err := invoke(t, reg, gateway.CmdSystemInfo, nil)
	require.NoError(t, err)
	raw, err := res.Map()
	require.NoError(t, err)

	log := logger.NewBufferLogger()
	snap := normalize.New(log).Snapshot(raw)

	assert.Equal(t, "Ubuntu 24.04", snap.OS.Name)
	assert.Equal(t, "devbox", snap.OS.Hostname)
	assert.Equal(t, "64-bit", snap.OS.Arch)
	assert.Equal(t, "6.8.0", snap.OS.Build)

	cpuInfo := snap.Hardware.CPU
	assert.Equal(t, "AMD Ryzen 7 7840U", cpuInfo.Brand)
	assert.Equal(t, 8, cpuInfo.Cores)
	assert.Equal(t, uint64(3_300_000_000), cpuInfo.FrequencyHz)
	assert.InDelta(t, 42.5, cpuInfo.UsagePercent, 0.001)
	require.NotNil(t, cpuInfo.TemperatureC)
	assert.InDelta(t, 55, *cpuInfo.TemperatureC, 0.001)

	memInfo := snap.Hardware.Memory
	assert.Equal(t, uint64(16*gib), memInfo.TotalBytes)
	assert.Equal(t, uint64(4*gib), memInfo.AvailableBytes)
	assert.InDelta(t, 75, memInfo.UsagePercent, 0.001)

	require.Len(t, snap.Hardware.GPUs, 1)
	assert.Equal(t, "NVIDIA GeForce RTX 4070", snap.Hardware.GPUs[0].Name)
	assert.Equal(t, uint64(12282)<<20, snap.Hardware.GPUs[0].MemoryTotalBytes)

	require.Len(t, snap.Disks, 2, "tmpfs is skipped")
	assert.Equal(t, "/", snap.Disks[0].MountPoint)
	assert.Equal(t, uint64(400*gib), snap.Disks[0].UsedSpace)
	assert.True(t, snap.Disks[1].IsRemovable)

	require.Len(t, snap.Network.Interfaces, 2)
	eth := snap.Network.Interfaces[0]
	assert.Equal(t, "eth0", eth.Name)
	assert.Equal(t, []string{"192.168.1.5", "fe80::1"}, eth.IPAddresses)
	assert.True(t, eth.IsUp)
	assert.Equal(t, uint64(1_000_000_000), eth.SpeedBps)
	assert.Equal(t, uint64(5000), eth.BytesReceived)
	assert.True(t, snap.Network.Interfaces[1].IsLoopback)
	assert.Equal(t, 2, snap.Network.ActiveConnections)
}

func TestSystemInfo_ProbeFailuresLeaveGaps(t *testing.T) {
	reg := newTestRegistry(t, &fakeProbe{}, newFakeRunner(), "linux")

	res, err := invoke(t, reg, gateway.CmdSystemInfo, nil)
	require.NoError(t, err, "failed readings are not a failed command")
	raw, err := res.Map()
	require.NoError(t, err)

	assert.NotContains(t, raw, "os_info")
	assert.NotContains(t, raw, "memory_info")
	assert.Equal(t, []any{}, raw["gpu_info"])
	assert.Equal(t, []any{}, raw["disk_info"])

	snap := normalize.New(logger.Noop()).Snapshot(raw)
	assert.Equal(t, normalize.UnknownHost, snap.OS.Hostname)
	assert.Empty(t, snap.Disks)
}

func TestSystemInfo_WindowsDriveLetters(t *testing.T) {
	probe := healthyProbe()
	probe.partitions = []disk.PartitionStat{{Device: `C:`, Mountpoint: `C:\`, Fstype: "NTFS"}}
	probe.usage = map[string]*disk.UsageStat{`C:\`: {Total: 100 * gib, Free: 5 * gib}}
	reg := newTestRegistry(t, probe, newFakeRunner(), "windows")

	res, err := invoke(t, reg, gateway.CmdSystemInfo, nil)
	require.NoError(t, err)
	raw, err := res.Map()
	require.NoError(t, err)

	snap := normalize.New(logger.Noop()).Snapshot(raw)
	require.Len(t, snap.Disks, 1)
	assert.Equal(t, "C:", snap.Disks[0].Name)
	assert.Equal(t, `C:\`, snap.Disks[0].MountPoint)
	assert.Equal(t, "NTFS", snap.Disks[0].FileSystem)
}

func TestParseNvidiaSMI(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []any
	}{
		{"empty", "", []any{}},
		{
			name:   "two cards",
			output: "GPU A, 10, 100, 1000, 40\nGPU B, 90, 900, 1000, 80\n",
			want: []any{
				map[string]any{"Name": "GPU A", "Utilization": 10.0, "UsedMemoryMB": 100.0, "TotalMemoryMB": 1000.0, "Temperature": 40.0},
				map[string]any{"Name": "GPU B", "Utilization": 90.0, "UsedMemoryMB": 900.0, "TotalMemoryMB": 1000.0, "Temperature": 80.0},
			},
		},
		{
			name:   "unsupported cells are omitted",
			output: "GPU C, [N/A], 100, 1000, [N/A]",
			want: []any{
				map[string]any{"Name": "GPU C", "UsedMemoryMB": 100.0, "TotalMemoryMB": 1000.0},
			},
		},
		{"short row", "GPU D, 10", []any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseNvidiaSMI(tt.output))
		})
	}
}

func TestPorts(t *testing.T) {
	reg := newTestRegistry(t, healthyProbe(), newFakeRunner(), "linux")

	res, err := invoke(t, reg, gateway.CmdPorts, nil)
	require.NoError(t, err)
	raw, err := res.List()
	require.NoError(t, err)

	ports := normalize.New(logger.Noop()).Ports(raw)
	require.Len(t, ports, 3, "duplicates and TIME_WAIT dropped")

	assert.Equal(t, uint16(5353), ports[0].Port)
	assert.Equal(t, model.ProtocolUDP, ports[0].Protocol)
	assert.Equal(t, model.StatusListening, ports[0].Status)

	assert.Equal(t, uint16(8080), ports[1].Port)
	assert.Equal(t, model.StatusListening, ports[1].Status)
	assert.Equal(t, int32(100), ports[1].Process.PID)
	assert.Equal(t, "node", ports[1].Process.Name)
	assert.Equal(t, []string{"node", "/home/dev/app/server.js"}, ports[1].Process.Cmd)

	assert.Equal(t, uint16(51000), ports[2].Port)
	assert.Equal(t, model.StatusEstablished, ports[2].Status)
}

func TestPorts_ProbeFailure(t *testing.T) {
	reg := newTestRegistry(t, &fakeProbe{}, newFakeRunner(), "linux")

	_, err := invoke(t, reg, gateway.CmdPorts, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRejected))
}

func TestProcesses(t *testing.T) {
	reg := newTestRegistry(t, healthyProbe(), newFakeRunner(), "linux")

	res, err := invoke(t, reg, gateway.CmdProcesses, nil)
	require.NoError(t, err)
	raw, err := res.List()
	require.NoError(t, err)

	procs := normalize.New(logger.Noop()).Processes(raw)
	require.Len(t, procs, 2)
	assert.Equal(t, "node", procs[0].Name)
	assert.InDelta(t, 12.5, procs[0].CPUUsagePercent, 0.001)
	assert.Equal(t, uint64(200<<20), procs[0].MemoryUsageBytes)
	assert.Equal(t, int64(1700000000000), procs[0].StartTimeMillis)
	assert.Equal(t, "unknown", procs[1].Status)
	assert.Equal(t, []string{}, procs[1].Cmd)
}

func TestKillProcess(t *testing.T) {
	probe := healthyProbe()
	reg := newTestRegistry(t, probe, newFakeRunner(), "linux")

	_, err := invoke(t, reg, gateway.CmdKillProcess, gateway.Args{"pid": 100})
	require.NoError(t, err)
	assert.Equal(t, []int32{100}, probe.killed)

	_, err = invoke(t, reg, gateway.CmdKillProcess, gateway.Args{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRejected))
	assert.Len(t, probe.killed, 1, "invalid pid never reaches the probe")

	probe.killErr = stderrors.New("operation not permitted")
	_, err = invoke(t, reg, gateway.CmdKillProcess, gateway.Args{"pid": 1})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRejected))
	assert.Contains(t, err.Error(), "operation not permitted")
}

const dockerPS = "docker ps -a --no-trunc --format {{json .}}"

func TestContainers(t *testing.T) {
	run := newFakeRunner().answer(dockerPS, strings.Join([]string{
		`{"ID":"3f4e5d6c7b8a9","Names":"web","Image":"nginx:1.27","Status":"Up 2 hours","State":"running","Ports":"0.0.0.0:8080->80/tcp","Labels":"com.example.tier=front","Networks":"bridge","CreatedAt":"2025-01-01 10:00:00 +0000 UTC"}`,
		`not json`,
		`{"ID":"9a8b7c6d5e4f3","Names":"db","Image":"postgres:16","Status":"Exited (0) 3 days ago","State":"exited","Ports":"","Labels":"","Networks":"bridge"}`,
		``,
	}, "\n"))
	reg := newTestRegistry(t, healthyProbe(), run, "linux")

	res, err := invoke(t, reg, gateway.CmdContainers, nil)
	require.NoError(t, err)
	raw, err := res.List()
	require.NoError(t, err)
	require.Len(t, raw, 2, "unparseable line skipped")

	containers := normalize.New(logger.Noop()).Containers(raw)
	require.Len(t, containers, 2)
	assert.Equal(t, "web", containers[0].Name)
	assert.True(t, containers[0].Running())
	assert.Equal(t, "front", containers[0].Labels["com.example.tier"])
	assert.Equal(t, "exited", containers[1].State)
}

func TestDocker_Unavailable(t *testing.T) {
	reg := newTestRegistry(t, healthyProbe(), newFakeRunner(), "linux")

	res, err := invoke(t, reg, gateway.CmdDockerAvailable, nil)
	require.NoError(t, err)
	ok, err := res.Bool()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = invoke(t, reg, gateway.CmdContainers, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRejected))
}

func TestDocker_Available(t *testing.T) {
	run := newFakeRunner().answer("docker info --format {{.ServerVersion}}", "27.3.1\n")
	reg := newTestRegistry(t, healthyProbe(), run, "linux")

	res, err := invoke(t, reg, gateway.CmdDockerAvailable, nil)
	require.NoError(t, err)
	ok, err := res.Bool()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestContainerOps(t *testing.T) {
	run := newFakeRunner().
		answer("docker stop web", "web\n").
		answer("docker restart web", "web\n").
		answer("docker logs --tail 100 web", "line1\nline2\n").
		answer("docker logs --tail 10000 web", "all\n")
	reg := newTestRegistry(t, healthyProbe(), run, "linux")

	_, err := invoke(t, reg, gateway.CmdStopContainer, gateway.Args{"id": "web"})
	require.NoError(t, err)
	_, err = invoke(t, reg, gateway.CmdRestartContainer, gateway.Args{"id": "web"})
	require.NoError(t, err)

	res, err := invoke(t, reg, gateway.CmdContainerLogs, gateway.Args{"id": "web"})
	require.NoError(t, err)
	text, err := res.Text()
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\n", text)

	res, err = invoke(t, reg, gateway.CmdContainerLogs, gateway.Args{"id": "web", "tail": 1_000_000})
	require.NoError(t, err)
	text, _ = res.Text()
	assert.Equal(t, "all\n", text, "tail is capped")

	for _, id := range []string{"", "-rf", "web; rm -rf /", "../x"} {
		t.Run("rejects "+id, func(t *testing.T) {
			before := len(run.ran)
			_, err := invoke(t, reg, gateway.CmdStopContainer, gateway.Args{"id": id})
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrRejected))
			assert.Len(t, run.ran, before, "docker never invoked")
		})
	}

	run.fail["docker stop gone"] = true
	_, err = invoke(t, reg, gateway.CmdStopContainer, gateway.Args{"id": "gone"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRejected))
}

func TestResolveCommand(t *testing.T) {
	tests := []struct {
		goos, command string
		args          []string
		wantName      string
		wantArgs      []string
		wantErr       bool
	}{
		{"windows", "ipconfig", []string{"/all"}, "ipconfig", []string{"/all"}, false},
		{"windows", "NETSTAT", []string{"-an"}, "netstat", []string{"-an"}, false},
		{"linux", "ipconfig", []string{"/all"}, "ip", []string{"addr"}, false},
		{"darwin", "ipconfig", []string{"/all"}, "ifconfig", []string{"-a"}, false},
		{"linux", "route", []string{"print"}, "ip", []string{"route"}, false},
		{"darwin", "route", []string{"print"}, "netstat", []string{"-rn"}, false},
		{"linux", "netsh", []string{"wlan", "show", "profiles"}, "nmcli", []string{"connection", "show"}, false},
		{"linux", "netsh", []string{"advfirewall", "reset"}, "", nil, true},
		{"linux", "netstat", []string{"-an"}, "netstat", []string{"-an"}, false},
		{"linux", "rm", []string{"-rf", "/"}, "", nil, true},
		{"windows", "powershell", nil, "", nil, true},
		{"linux", "ping", []string{"-c", "1", "x; rm -rf /"}, "", nil, true},
		{"linux", "ping", []string{"$(id)"}, "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.command+" "+strings.Join(tt.args, " "), func(t *testing.T) {
			name, args, err := resolveCommand(tt.goos, tt.command, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrRejected))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestRunCommand(t *testing.T) {
	run := newFakeRunner().answer("ip addr", "1: lo: <LOOPBACK,UP>\n")
	reg := newTestRegistry(t, healthyProbe(), run, "linux")

	res, err := invoke(t, reg, gateway.CmdRunCommand, gateway.Args{"command": "ipconfig", "args": []any{"/all"}})
	require.NoError(t, err)
	text, err := res.Text()
	require.NoError(t, err)
	assert.Contains(t, text, "LOOPBACK")

	_, err = invoke(t, reg, gateway.CmdRunCommand, gateway.Args{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRejected))

	_, err = invoke(t, reg, gateway.CmdRunCommand, gateway.Args{"command": "uptime"})
	require.Error(t, err, "runner failure surfaces")
	assert.True(t, errors.IsCode(err, errors.ErrRejected))
}

func TestOpenApps(t *testing.T) {
	tests := []struct {
		name    string
		goos    string
		command string
		args    gateway.Args
		want    string
		wantErr bool
	}{
		{"windows applet", "windows", gateway.CmdOpenGUIApp, gateway.Args{"appName": "services.msc"}, "cmd /c start  services.msc", false},
		{"windows settings", "windows", gateway.CmdOpenSystemSettings, nil, "cmd /c start  ms-settings:", false},
		{"linux task manager", "linux", gateway.CmdOpenTaskManager, nil, "gnome-system-monitor", false},
		{"linux network", "linux", gateway.CmdOpenNetworkSettings, nil, "gnome-control-center network", false},
		{"darwin system info", "darwin", gateway.CmdOpenSystemInfo, nil, "open -a System Information", false},
		{"linux device manager unsupported", "linux", gateway.CmdOpenDeviceManager, nil, "", true},
		{"linux security unsupported", "linux", gateway.CmdOpenSecurity, nil, "", true},
		{"not allowlisted", "windows", gateway.CmdOpenGUIApp, gateway.Args{"appName": "calc & del *"}, "", true},
		{"missing app", "windows", gateway.CmdOpenGUIApp, nil, "", true},
		{"terminal", "linux", gateway.CmdRunInNewWindow, gateway.Args{"command": "powershell"}, "x-terminal-emulator", false},
		{"terminal windows", "windows", gateway.CmdRunInNewWindow, gateway.Args{"command": "powershell"}, "cmd /c start  powershell", false},
		{"arbitrary window", "windows", gateway.CmdRunInNewWindow, gateway.Args{"command": "notepad"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := newFakeRunner()
			reg := newTestRegistry(t, healthyProbe(), run, tt.goos)

			_, err := invoke(t, reg, tt.command, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrRejected))
				assert.Empty(t, run.started)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, run.lastStarted())
		})
	}
}

func TestOpenPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	tests := []struct {
		name    string
		goos    string
		command string
		path    string
		want    string
		wantErr bool
	}{
		{"linux reveal file opens its directory", "linux", gateway.CmdOpenInExplorer, file, "xdg-open " + dir, false},
		{"linux reveal dir", "linux", gateway.CmdOpenInExplorer, dir, "xdg-open " + dir, false},
		{"linux default app", "linux", gateway.CmdOpenWithDefault, file, "xdg-open " + file, false},
		{"darwin reveal", "darwin", gateway.CmdOpenInExplorer, file, "open -R " + file, false},
		{"relative path", "linux", gateway.CmdOpenWithDefault, "notes.txt", "", true},
		{"missing path", "linux", gateway.CmdOpenWithDefault, filepath.Join(dir, "nope"), "", true},
		{"plan9", "plan9", gateway.CmdOpenWithDefault, file, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := newFakeRunner()
			reg := newTestRegistry(t, healthyProbe(), run, tt.goos)

			_, err := invoke(t, reg, tt.command, gateway.Args{"path": tt.path})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrRejected))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, run.lastStarted())
		})
	}
}

func TestRestartExplorer(t *testing.T) {
	t.Run("windows", func(t *testing.T) {
		run := newFakeRunner().answer("taskkill /f /im explorer.exe", "SUCCESS")
		reg := newTestRegistry(t, healthyProbe(), run, "windows")

		_, err := invoke(t, reg, gateway.CmdRestartExplorer, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"taskkill /f /im explorer.exe"}, run.ran)
		assert.Equal(t, "cmd /c start explorer", run.lastStarted())
	})

	t.Run("kill fails", func(t *testing.T) {
		run := newFakeRunner()
		run.fail["taskkill /f /im explorer.exe"] = true
		reg := newTestRegistry(t, healthyProbe(), run, "windows")

		_, err := invoke(t, reg, gateway.CmdRestartExplorer, nil)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrRejected))
		assert.Empty(t, run.started, "no relaunch after a failed kill")
	})

	for _, goos := range []string{"linux", "darwin"} {
		t.Run(goos, func(t *testing.T) {
			run := newFakeRunner()
			reg := newTestRegistry(t, healthyProbe(), run, goos)

			_, err := invoke(t, reg, gateway.CmdRestartExplorer, nil)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrRejected))
			assert.Contains(t, err.Error(), "only available on Windows")
			assert.Empty(t, run.ran)
			assert.Empty(t, run.started)
		})
	}
}

func TestCleanTempFiles_OpensTempDir(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	run := newFakeRunner()
	reg := newTestRegistry(t, healthyProbe(), run, "linux")

	_, err := invoke(t, reg, gateway.CmdCleanTempFiles, nil)
	require.NoError(t, err)
	assert.Equal(t, "xdg-open "+tmp, run.lastStarted())
}

func TestLaunchFailure(t *testing.T) {
	run := newFakeRunner()
	run.fail["gnome-system-monitor"] = true
	reg := newTestRegistry(t, healthyProbe(), run, "linux")

	_, err := invoke(t, reg, gateway.CmdOpenTaskManager, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRejected))
	assert.Contains(t, err.Error(), "Failed to launch")
}
