package backend

import (
	"context"
	"fmt"
	"sort"

	"github.com/shirou/gopsutil/v4/net"
)

// ports answers get_all_ports: one record per (protocol, port) with the
// owning process when it can be read. Project detection happens client-side.
func (b *Backend) ports(ctx context.Context) ([]map[string]any, error) {
	conns, err := b.probe.Connections(ctx)
	if err != nil {
		return nil, err
	}

	type key struct {
		proto string
		port  uint32
	}
	seen := map[key]int{}
	procs := map[int32]map[string]any{}
	out := []map[string]any{}

	for _, c := range conns {
		status, ok := portStatus(c)
		if !ok || c.Laddr.Port == 0 {
			continue
		}
		proto := protoName(c.Type)
		k := key{proto, c.Laddr.Port}
		if i, dup := seen[k]; dup {
			// A listener outranks the connections accepted on it.
			if status == "LISTENING" {
				out[i]["status"] = status
			}
			continue
		}
		seen[k] = len(out)

		rec := map[string]any{
			"port":     c.Laddr.Port,
			"protocol": proto,
			"status":   status,
		}
		if c.Pid > 0 {
			p, cached := procs[c.Pid]
			if !cached {
				p = b.portProcess(ctx, c.Pid)
				procs[c.Pid] = p
			}
			if p != nil {
				rec["process"] = p
			}
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i]["port"].(uint32) < out[j]["port"].(uint32)
	})
	return out, nil
}

func (b *Backend) portProcess(ctx context.Context, pid int32) map[string]any {
	info, err := b.probe.Process(ctx, pid)
	if err != nil {
		b.log.Debug("port owner %d: %v", pid, err)
		return nil
	}
	return map[string]any{
		"pid":      info.PID,
		"name":     info.Name,
		"exe_path": info.Exe,
		"cmd":      nonNil(info.Cmdline),
	}
}

// portStatus maps a socket state to the wire vocabulary. UDP sockets have
// no state and count as listening when unconnected.
func portStatus(c net.ConnectionStat) (string, bool) {
	switch c.Status {
	case "LISTEN":
		return "LISTENING", true
	case "ESTABLISHED":
		return "ESTABLISHED", true
	case "", "NONE":
		if c.Type == sockDgram && c.Raddr.Port == 0 {
			return "LISTENING", true
		}
	}
	return "", false
}

// sockDgram is SOCK_DGRAM as gopsutil reports it on every platform.
const sockDgram = 2

func protoName(sockType uint32) string {
	if sockType == sockDgram {
		return "UDP"
	}
	return "TCP"
}

// processes answers get_all_processes.
func (b *Backend) processes(ctx context.Context) ([]map[string]any, error) {
	procs, err := b.probe.Processes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(procs))
	for _, p := range procs {
		status := p.Status
		if status == "" {
			status = "unknown"
		}
		out = append(out, map[string]any{
			"pid":               p.PID,
			"name":              p.Name,
			"exe_path":          p.Exe,
			"cmd":               nonNil(p.Cmdline),
			"cpu_usage":         p.CPUPercent,
			"memory_usage":      p.RSS,
			"status":            status,
			"start_time_millis": p.CreateTime,
		})
	}
	return out, nil
}

func (b *Backend) killProcess(ctx context.Context, pid int) error {
	if pid <= 0 {
		return rejected(fmt.Sprintf("invalid pid %d", pid), "")
	}
	if err := b.probe.Kill(ctx, int32(pid)); err != nil {
		return rejected(fmt.Sprintf("Failed to terminate process %d: %v", pid, err),
			"The process may have exited, or it may need elevated privileges.")
	}
	b.log.Info("terminated process %d", pid)
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
