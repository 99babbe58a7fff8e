// Package normalize turns loosely typed backend payloads into the canonical
// model.
//
// Backend telemetry is partial on most hardware, so nothing here returns an
// error. Missing or unparseable fields become zero or a placeholder, every
// count is non-negative, and every percent is in [0,100]. Substitutions are
// logged at debug level only.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/sysdeck/internal/logger"
	"github.com/rileyhilliard/sysdeck/internal/model"
)

// Placeholders for required strings the backend did not report.
const (
	UnknownOS       = "Unknown OS"
	UnknownCPU      = "Unknown processor"
	UnknownHost     = "unknown"
	UnknownArch     = "unknown"
	DefaultDiskFS   = "NTFS"
	DefaultProtocol = model.ProtocolTCP
)

// Normalizer converts backend payloads. The zero value is not usable; call
// New.
type Normalizer struct {
	log logger.Logger
}

// New creates a Normalizer that reports substitutions to log.
func New(log logger.Logger) *Normalizer {
	return &Normalizer{log: logger.OrDefault(log)}
}

// Snapshot normalizes a get_system_info_detailed payload with the default
// logger.
func Snapshot(raw map[string]any) model.SystemSnapshot {
	return New(nil).Snapshot(raw)
}

// Snapshot normalizes a get_system_info_detailed payload. FetchedAt is left
// for the caller to stamp.
func (n *Normalizer) Snapshot(raw map[string]any) model.SystemSnapshot {
	root := reader{log: n.log, m: raw}

	return model.SystemSnapshot{
		OS: n.osInfo(root),
		Hardware: model.HardwareInfo{
			CPU:    n.cpu(root),
			Memory: n.memory(root),
			GPUs:   n.gpus(root),
		},
		Network: model.NetworkInfo{
			Interfaces:        n.interfaces(root),
			ActiveConnections: root.integer("active_connections"),
		},
		Disks: n.disks(root),
	}
}

func (n *Normalizer) osInfo(root reader) model.OSInfo {
	os, _ := root.child("os_info")
	uptime := root.float("uptime_seconds")
	if os.has("Uptime") {
		uptime = os.float("Uptime")
	}
	return model.OSInfo{
		Name:     os.str(UnknownOS, "Caption", "Name"),
		Version:  os.str("", "Version"),
		Build:    os.str("", "BuildNumber"),
		Arch:     os.str(UnknownArch, "OSArchitecture"),
		Hostname: root.str(UnknownHost, "hostname"),
		Uptime:   time.Duration(toUint(uptime, float64(time.Second))),
	}
}

func (n *Normalizer) cpu(root reader) model.CPUInfo {
	cpu, _ := root.child("cpu_info")
	return model.CPUInfo{
		Brand:        cpu.str(UnknownCPU, "Name"),
		Cores:        cpu.integer("NumberOfCores"),
		FrequencyHz:  toUint(cpu.float("MaxClockSpeed"), mhz),
		UsagePercent: cpu.percent("LoadPercentage"),
		TemperatureC: cpu.optFloat("Temperature"),
	}
}

func (n *Normalizer) memory(root reader) model.MemoryInfo {
	mem, _ := root.child("memory_info")
	total := toUint(mem.float("TotalVisibleMemorySize"), kib)
	free := toUint(mem.float("FreePhysicalMemory"), kib)
	if free > total {
		mem.defaulted([]string{"FreePhysicalMemory"}, "exceeds total, clamping")
		free = total
	}
	used := total - free
	return model.MemoryInfo{
		TotalBytes:     total,
		UsedBytes:      used,
		AvailableBytes: free,
		UsagePercent:   percentOf(used, total),
	}
}

func (n *Normalizer) gpus(root reader) []model.GPUInfo {
	out := []model.GPUInfo{}
	for i, v := range root.list("gpu_info") {
		g, ok := newReader(n.log, indexPath("gpu_info", i), v)
		if !ok {
			continue
		}
		name := g.str("", "Name")
		if name == "" {
			n.log.Debug("%s: no Name, skipping", g.path)
			continue
		}

		info := model.GPUInfo{Name: name, Vendor: model.VendorOther}
		if g.has("TotalMemoryMB") {
			info.MemoryTotalBytes = toUint(g.float("TotalMemoryMB"), mib)
			info.MemoryUsedBytes = toUint(g.float("UsedMemoryMB"), mib)
			info.UsagePercent = g.percent("Utilization")
			info.TemperatureC = g.optFloat("Temperature")
		} else {
			info.MemoryTotalBytes = toUint(g.float("AdapterRAM"), 1)
		}
		if info.MemoryUsedBytes > info.MemoryTotalBytes {
			info.MemoryUsedBytes = info.MemoryTotalBytes
		}
		out = append(out, info)
	}
	return out
}

func (n *Normalizer) disks(root reader) []model.DiskInfo {
	out := []model.DiskInfo{}
	for i, v := range root.list("disk_info") {
		d, ok := newReader(n.log, indexPath("disk_info", i), v)
		if !ok {
			continue
		}

		var name, mount string
		if letter := strings.TrimSuffix(d.str("", "DriveLetter"), ":"); letter != "" {
			name, mount = letter+":", letter+`:\`
		} else {
			mount = d.str("", "MountPoint")
			name = d.str(mount, "Name")
		}
		if name == "" {
			n.log.Debug("%s: no DriveLetter or MountPoint, skipping", d.path)
			continue
		}

		total := toUint(d.float("Size"), 1)
		avail := toUint(d.float("SizeRemaining"), 1)
		if avail > total {
			d.defaulted([]string{"SizeRemaining"}, "exceeds Size, clamping")
			avail = total
		}
		used := total - avail
		out = append(out, model.DiskInfo{
			Name:           name,
			MountPoint:     mount,
			FileSystem:     d.str(DefaultDiskFS, "FileSystem"),
			TotalSpace:     total,
			UsedSpace:      used,
			AvailableSpace: avail,
			UsagePercent:   percentOf(used, total),
			IsRemovable:    d.boolean(false, "IsRemovable"),
		})
	}
	return out
}

func (n *Normalizer) interfaces(root reader) []model.NetworkInterface {
	out := []model.NetworkInterface{}
	for i, v := range root.list("network_info") {
		a, ok := newReader(n.log, indexPath("network_info", i), v)
		if !ok {
			continue
		}
		name := a.str("", "Name")
		if name == "" {
			n.log.Debug("%s: no Name, skipping", a.path)
			continue
		}

		var speed uint64
		if raw, _, found := a.lookup("LinkSpeed"); found {
			if bps, parsed := ParseLinkSpeed(raw); parsed {
				speed = bps
			} else {
				a.defaulted([]string{"LinkSpeed"}, "unparseable %v, using 0", raw)
			}
		}

		up := true
		if a.has("Status") {
			up = strings.EqualFold(a.str("", "Status"), "up")
		}

		out = append(out, model.NetworkInterface{
			Name:          name,
			DisplayName:   a.str(name, "InterfaceDescription"),
			MACAddress:    a.str("", "MacAddress"),
			IPAddresses:   a.strings("IPAddresses"),
			IsUp:          up,
			IsLoopback:    a.boolean(strings.Contains(strings.ToLower(name), "loopback"), "IsLoopback"),
			SpeedBps:      speed,
			BytesSent:     toUint(optional(a, "BytesSent"), 1),
			BytesReceived: toUint(optional(a, "BytesReceived"), 1),
		})
	}
	return out
}

// optional reads a counter that many backends never report, without
// logging its absence.
func optional(r reader, key string) float64 {
	if !r.has(key) {
		return 0
	}
	return r.float(key)
}

func indexPath(key string, i int) string {
	return key + "[" + strconv.Itoa(i) + "]"
}
