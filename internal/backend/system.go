package backend

import (
	"context"
	"runtime"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/net"
)

// systemInfo answers get_system_info_detailed. Every probe failure is
// logged and leaves its section empty; the client-side normalizer fills the
// gaps with placeholders.
func (b *Backend) systemInfo(ctx context.Context) map[string]any {
	out := map[string]any{}

	if h, err := b.probe.Host(ctx); err != nil {
		b.log.Debug("host info: %v", err)
	} else {
		name := h.Platform
		if name == "" {
			name = h.OS
		}
		out["os_info"] = map[string]any{
			"Caption":        strings.TrimSpace(titleCase(name) + " " + h.PlatformVersion),
			"Version":        h.PlatformVersion,
			"BuildNumber":    h.KernelVersion,
			"OSArchitecture": archLabel(h.KernelArch),
		}
		out["hostname"] = h.Hostname
		out["uptime_seconds"] = h.Uptime
	}

	out["cpu_info"] = b.cpuInfo(ctx)

	if m, err := b.probe.Memory(ctx); err != nil {
		b.log.Debug("memory: %v", err)
	} else {
		out["memory_info"] = map[string]any{
			"TotalVisibleMemorySize": m.Total / 1024,
			"FreePhysicalMemory":     m.Available / 1024,
		}
	}

	out["gpu_info"] = b.gpuInfo(ctx)
	out["disk_info"] = b.diskInfo(ctx)
	out["network_info"] = b.networkInfo(ctx)

	if conns, err := b.probe.Connections(ctx); err != nil {
		b.log.Debug("connections: %v", err)
	} else {
		n := 0
		for _, c := range conns {
			if c.Status == "ESTABLISHED" {
				n++
			}
		}
		out["active_connections"] = n
	}
	return out
}

func (b *Backend) cpuInfo(ctx context.Context) map[string]any {
	info := map[string]any{}
	if cpus, err := b.probe.CPU(ctx); err != nil || len(cpus) == 0 {
		b.log.Debug("cpu info: %v", err)
	} else {
		info["Name"] = strings.TrimSpace(cpus[0].ModelName)
		info["MaxClockSpeed"] = cpus[0].Mhz
	}
	if n, err := b.probe.CPUCount(ctx); err == nil && n > 0 {
		info["NumberOfCores"] = n
	}
	if pct, err := b.probe.CPUPercent(ctx); err != nil {
		b.log.Debug("cpu percent: %v", err)
	} else {
		info["LoadPercentage"] = pct
	}
	if t, ok := b.probe.Temperature(ctx); ok {
		info["Temperature"] = t
	}
	return info
}

func (b *Backend) diskInfo(ctx context.Context) []any {
	parts, err := b.probe.Partitions(ctx)
	if err != nil {
		b.log.Debug("partitions: %v", err)
		return []any{}
	}
	seen := map[string]bool{}
	out := []any{}
	for _, p := range parts {
		if seen[p.Mountpoint] || pseudoFS(p.Fstype) {
			continue
		}
		seen[p.Mountpoint] = true
		u, err := b.probe.Usage(ctx, p.Mountpoint)
		if err != nil || u.Total == 0 {
			continue
		}
		d := map[string]any{
			"Name":          p.Device,
			"MountPoint":    p.Mountpoint,
			"FileSystem":    p.Fstype,
			"Size":          u.Total,
			"SizeRemaining": u.Free,
			"IsRemovable":   removable(p),
		}
		if b.goos == "windows" {
			d["DriveLetter"] = strings.TrimSuffix(strings.TrimSuffix(p.Mountpoint, `\`), ":")
		}
		out = append(out, d)
	}
	return out
}

func pseudoFS(fs string) bool {
	switch strings.ToLower(fs) {
	case "tmpfs", "devtmpfs", "overlay", "squashfs", "proc", "sysfs", "devfs", "autofs", "nullfs":
		return true
	}
	return false
}

func removable(p disk.PartitionStat) bool {
	for _, o := range p.Opts {
		if o == "removable" {
			return true
		}
	}
	return strings.HasPrefix(p.Mountpoint, "/media/") || strings.HasPrefix(p.Mountpoint, "/Volumes/")
}

func (b *Backend) networkInfo(ctx context.Context) []any {
	ifaces, err := b.probe.Interfaces(ctx)
	if err != nil {
		b.log.Debug("interfaces: %v", err)
		return []any{}
	}
	counters := map[string]net.IOCountersStat{}
	if io, err := b.probe.IOCounters(ctx); err == nil {
		for _, c := range io {
			counters[c.Name] = c
		}
	}

	out := make([]any, 0, len(ifaces))
	for _, iface := range ifaces {
		ips := make([]string, 0, len(iface.Addrs))
		for _, a := range iface.Addrs {
			ip, _, _ := strings.Cut(a.Addr, "/")
			ips = append(ips, ip)
		}
		status := "down"
		loopback := false
		for _, f := range iface.Flags {
			switch f {
			case "up":
				status = "up"
			case "loopback":
				loopback = true
			}
		}
		entry := map[string]any{
			"Name":        iface.Name,
			"MacAddress":  iface.HardwareAddr,
			"IPAddresses": ips,
			"Status":      status,
			"IsLoopback":  loopback,
		}
		if c, ok := counters[iface.Name]; ok {
			entry["BytesSent"] = c.BytesSent
			entry["BytesReceived"] = c.BytesRecv
		}
		if speed, ok := b.probe.LinkSpeed(iface.Name); ok {
			entry["LinkSpeed"] = speed
		}
		out = append(out, entry)
	}
	return out
}

// gpuInfo asks nvidia-smi; machines without it report no GPUs.
func (b *Backend) gpuInfo(ctx context.Context) []any {
	raw, err := b.run.Output(ctx, "nvidia-smi",
		"--query-gpu=name,utilization.gpu,memory.used,memory.total,temperature.gpu",
		"--format=csv,noheader,nounits")
	if err != nil {
		b.log.Debug("nvidia-smi: %v", err)
		return []any{}
	}
	return parseNvidiaSMI(string(raw))
}

// parseNvidiaSMI turns nvidia-smi CSV rows (name, util %, MiB used, MiB
// total, °C) into gpu_info entries. Unparseable cells are omitted.
func parseNvidiaSMI(output string) []any {
	out := []any{}
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		fields := strings.Split(line, ",")
		if len(fields) < 5 {
			continue
		}
		name := strings.TrimSpace(fields[0])
		if name == "" {
			continue
		}
		gpu := map[string]any{"Name": name}
		for i, key := range []string{"Utilization", "UsedMemoryMB", "TotalMemoryMB", "Temperature"} {
			cell := strings.TrimSpace(fields[i+1])
			if cell == "" || cell == "[N/A]" {
				continue
			}
			if v, err := strconv.ParseFloat(cell, 64); err == nil {
				gpu[key] = v
			}
		}
		out = append(out, gpu)
	}
	return out
}

func archLabel(arch string) string {
	switch arch {
	case "x86_64", "amd64":
		return "64-bit"
	case "i386", "i686", "x86":
		return "32-bit"
	case "":
		return runtime.GOARCH
	}
	return arch
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
