package model

import (
	"fmt"
	"strings"
)

// Protocol is a transport protocol.
type Protocol string

const (
	ProtocolTCP Protocol = "TCP"
	ProtocolUDP Protocol = "UDP"
)

// PortStatus is the socket state of a port record.
type PortStatus string

const (
	StatusListening   PortStatus = "LISTENING"
	StatusEstablished PortStatus = "ESTABLISHED"
)

// PortProcess identifies the process owning a socket.
type PortProcess struct {
	PID     int32    `json:"pid"`
	Name    string   `json:"name"`
	ExePath string   `json:"exe_path,omitempty"`
	Cmd     []string `json:"cmd"`
}

// ProjectInfo describes the development project a port appears to belong to.
type ProjectInfo struct {
	Name        string `json:"name"`
	ProjectType string `json:"project_type"`
	Path        string `json:"path,omitempty"`
	Description string `json:"description"`
}

// PortRecord is one open socket. Its identity is (Protocol, Port).
type PortRecord struct {
	Port     uint16       `json:"port"`
	Protocol Protocol     `json:"protocol"`
	Status   PortStatus   `json:"status"`
	Process  PortProcess  `json:"process"`
	Project  *ProjectInfo `json:"project,omitempty"`
}

// Key returns the identity of the record, e.g. "TCP/8080".
func (p PortRecord) Key() string {
	return fmt.Sprintf("%s/%d", p.Protocol, p.Port)
}

// ProcessRecord is one running process. PID identity holds within a
// single refresh only.
type ProcessRecord struct {
	PID              int32    `json:"pid"`
	Name             string   `json:"name"`
	ExePath          string   `json:"exe_path,omitempty"`
	Cmd              []string `json:"cmd"`
	CPUUsagePercent  float64  `json:"cpu_usage_percent"`
	MemoryUsageBytes uint64   `json:"memory_usage_bytes"`
	Status           string   `json:"status"`
	StartTimeMillis  int64    `json:"start_time_millis"`
}

// CommandLine joins the process arguments for display.
func (p ProcessRecord) CommandLine() string {
	return strings.Join(p.Cmd, " ")
}

// ContainerPort is one published container port.
type ContainerPort struct {
	ContainerPort uint16 `json:"container_port"`
	HostPort      uint16 `json:"host_port,omitempty"`
	Protocol      string `json:"protocol"`
}

// Container is one container known to the local engine.
type Container struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Image    string            `json:"image"`
	Status   string            `json:"status"`
	State    string            `json:"state"`
	Ports    []ContainerPort   `json:"ports"`
	Created  string            `json:"created"`
	Labels   map[string]string `json:"labels"`
	Networks []string          `json:"networks"`
	Mounts   []string          `json:"mounts"`
}

// Running reports whether the container is up.
func (c Container) Running() bool {
	return strings.EqualFold(c.State, "running")
}

// ShortID returns the 12-character form of the container ID.
func (c Container) ShortID() string {
	if len(c.ID) > 12 {
		return c.ID[:12]
	}
	return c.ID
}
