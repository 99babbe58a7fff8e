package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/rileyhilliard/sysdeck/internal/model"
)

// Ports normalizes a get_all_ports payload with the default logger.
func Ports(raw []any) []model.PortRecord {
	return New(nil).Ports(raw)
}

// Processes normalizes a get_all_processes payload with the default logger.
func Processes(raw []any) []model.ProcessRecord {
	return New(nil).Processes(raw)
}

// Containers normalizes a get_docker_containers payload with the default
// logger.
func Containers(raw []any) []model.Container {
	return New(nil).Containers(raw)
}

// Ports normalizes port records. Entries without a usable port number are
// dropped.
func (n *Normalizer) Ports(raw []any) []model.PortRecord {
	out := make([]model.PortRecord, 0, len(raw))
	for i, v := range raw {
		r, ok := newReader(n.log, indexPath("ports", i), v)
		if !ok {
			continue
		}
		port := r.float("port")
		if port < 1 || port > math.MaxUint16 {
			n.log.Debug("%s: port %v out of range, skipping", r.path, port)
			continue
		}

		rec := model.PortRecord{
			Port:     uint16(port),
			Protocol: protocol(r.str("", "protocol")),
			Status:   portStatus(r.str("", "status")),
		}
		if p, ok := r.child("process"); ok {
			rec.Process = model.PortProcess{
				PID:     int32(r.clampPID(p.float("pid"))),
				Name:    p.str("", "name"),
				ExePath: p.str("", "exe_path"),
				Cmd:     p.strings("cmd"),
			}
		} else {
			rec.Process.Cmd = []string{}
		}
		if p, ok := r.child("project"); ok {
			rec.Project = &model.ProjectInfo{
				Name:        p.str("", "name"),
				ProjectType: p.str("", "project_type"),
				Path:        p.str("", "path"),
				Description: p.str("", "description"),
			}
		}
		out = append(out, rec)
	}
	return out
}

func (r reader) clampPID(f float64) float64 {
	if f > math.MaxInt32 {
		r.log.Debug("%s: pid %v out of range, using 0", r.path, f)
		return 0
	}
	return f
}

func protocol(s string) model.Protocol {
	if strings.EqualFold(s, "udp") {
		return model.ProtocolUDP
	}
	return DefaultProtocol
}

func portStatus(s string) model.PortStatus {
	switch strings.ToUpper(s) {
	case "ESTABLISHED":
		return model.StatusEstablished
	default:
		// LISTEN, LISTENING, and the empty status UDP sockets report.
		return model.StatusListening
	}
}

// Processes normalizes process records. Entries without a PID are dropped.
func (n *Normalizer) Processes(raw []any) []model.ProcessRecord {
	out := make([]model.ProcessRecord, 0, len(raw))
	for i, v := range raw {
		r, ok := newReader(n.log, indexPath("processes", i), v)
		if !ok {
			continue
		}
		if !r.has("pid") {
			n.log.Debug("%s: no pid, skipping", r.path)
			continue
		}

		started := int64(r.clampMillis(r.float("start_time_millis")))
		if !r.has("start_time_millis") && r.has("start_time") {
			started = int64(r.clampMillis(r.float("start_time") * 1000))
		}

		out = append(out, model.ProcessRecord{
			PID:              int32(r.clampPID(r.float("pid"))),
			Name:             r.str("", "name"),
			ExePath:          r.str("", "exe_path"),
			Cmd:              r.strings("cmd"),
			CPUUsagePercent:  r.percent("cpu_usage"),
			MemoryUsageBytes: toUint(r.float("memory_usage"), 1),
			Status:           r.str("unknown", "status"),
			StartTimeMillis:  started,
		})
	}
	return out
}

func (r reader) clampMillis(f float64) float64 {
	if f > math.MaxInt64/2 {
		return 0
	}
	return f
}

// Containers normalizes container records. Entries without an ID are
// dropped.
func (n *Normalizer) Containers(raw []any) []model.Container {
	out := make([]model.Container, 0, len(raw))
	for i, v := range raw {
		r, ok := newReader(n.log, indexPath("containers", i), v)
		if !ok {
			continue
		}
		id := r.str("", "id", "ID")
		if id == "" {
			n.log.Debug("%s: no id, skipping", r.path)
			continue
		}

		status := r.str("", "status", "Status")
		state := strings.ToLower(r.str("", "state", "State"))
		if state == "" {
			state = stateFromStatus(status)
		}

		out = append(out, model.Container{
			ID:       id,
			Name:     strings.TrimPrefix(r.str("", "name", "Names"), "/"),
			Image:    r.str("", "image", "Image"),
			Status:   status,
			State:    state,
			Ports:    n.containerPorts(r),
			Created:  r.str("", "created", "CreatedAt"),
			Labels:   labels(r),
			Networks: splitList(r, "networks", "Networks"),
			Mounts:   splitList(r, "mounts", "Mounts"),
		})
	}
	return out
}

func stateFromStatus(status string) string {
	s := strings.ToLower(status)
	switch {
	case strings.HasPrefix(s, "up"):
		if strings.Contains(s, "paused") {
			return "paused"
		}
		return "running"
	case strings.HasPrefix(s, "exited"):
		return "exited"
	case strings.HasPrefix(s, "created"):
		return "created"
	case strings.HasPrefix(s, "restarting"):
		return "restarting"
	case strings.HasPrefix(s, "dead"):
		return "dead"
	default:
		return ""
	}
}

func (n *Normalizer) containerPorts(r reader) []model.ContainerPort {
	v, _, ok := r.lookup("ports", "Ports")
	if !ok {
		return []model.ContainerPort{}
	}
	if s, isStr := v.(string); isStr {
		return ParseDockerPorts(s)
	}

	out := []model.ContainerPort{}
	for i, item := range r.list("ports", "Ports") {
		p, ok := newReader(n.log, indexPath(r.join("ports"), i), item)
		if !ok {
			continue
		}
		out = append(out, model.ContainerPort{
			ContainerPort: uint16(min(p.float("container_port"), math.MaxUint16)),
			HostPort:      uint16(min(optional(p, "host_port"), math.MaxUint16)),
			Protocol:      strings.ToLower(p.str("tcp", "protocol")),
		})
	}
	return out
}

// ParseDockerPorts reads the Ports column of `docker ps`, e.g.
// "0.0.0.0:8080->80/tcp, :::8080->80/tcp". Only published mappings are
// returned, once per host/container/protocol triple.
func ParseDockerPorts(s string) []model.ContainerPort {
	out := []model.ContainerPort{}
	seen := make(map[model.ContainerPort]struct{})
	for _, mapping := range strings.Split(s, ",") {
		mapping = strings.TrimSpace(mapping)
		hostPart, containerPart, found := strings.Cut(mapping, "->")
		if !found {
			continue
		}
		colon := strings.LastIndex(hostPart, ":")
		host, err := strconv.ParseUint(hostPart[colon+1:], 10, 16)
		if err != nil {
			continue
		}

		proto := "tcp"
		portStr := containerPart
		if p, pr, hasProto := strings.Cut(containerPart, "/"); hasProto {
			portStr, proto = p, strings.ToLower(pr)
		}
		cport, _ := strconv.ParseUint(portStr, 10, 16)

		cp := model.ContainerPort{ContainerPort: uint16(cport), HostPort: uint16(host), Protocol: proto}
		if _, dup := seen[cp]; dup {
			continue
		}
		seen[cp] = struct{}{}
		out = append(out, cp)
	}
	return out
}

func labels(r reader) map[string]string {
	out := map[string]string{}
	v, _, ok := r.lookup("labels", "Labels")
	if !ok {
		return out
	}
	if s, isStr := v.(string); isStr {
		for _, kv := range strings.Split(s, ",") {
			k, val, _ := strings.Cut(strings.TrimSpace(kv), "=")
			if k != "" {
				out[k] = val
			}
		}
		return out
	}
	m, isMap := newReader(r.log, r.join("labels"), v)
	if !isMap {
		return out
	}
	for k := range m.m {
		out[k] = m.str("", k)
	}
	return out
}

// splitList accepts either a list or the comma separated form docker's
// table output uses.
func splitList(r reader, keys ...string) []string {
	v, _, ok := r.lookup(keys...)
	if !ok {
		return []string{}
	}
	if s, isStr := v.(string); isStr {
		out := []string{}
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return r.strings(keys...)
}
