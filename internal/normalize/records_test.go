package normalize

import (
	"testing"

	"github.com/rileyhilliard/sysdeck/internal/logger"
	"github.com/rileyhilliard/sysdeck/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPorts(t *testing.T) {
	raw := []any{
		map[string]any{
			"port": 80.0, "protocol": "tcp", "status": "LISTEN",
			"process": map[string]any{"pid": 100.0, "name": "nginx", "cmd": []any{"nginx", "-g", "daemon off;"}},
		},
		map[string]any{
			"port": "8080", "protocol": "TCP", "status": "LISTENING",
			"process": map[string]any{"pid": "200", "name": "node", "exe_path": "/usr/bin/node"},
			"project": map[string]any{"name": "React dev server", "project_type": "React"},
		},
		map[string]any{"port": 0.0},
		map[string]any{"port": 70000.0},
		"junk",
		map[string]any{"port": 53.0, "protocol": "udp", "status": ""},
		map[string]any{"port": 443.0, "status": "established"},
	}

	ports := New(logger.Noop()).Ports(raw)
	require.Len(t, ports, 4)

	assert.Equal(t, model.PortRecord{
		Port:     80,
		Protocol: model.ProtocolTCP,
		Status:   model.StatusListening,
		Process:  model.PortProcess{PID: 100, Name: "nginx", Cmd: []string{"nginx", "-g", "daemon off;"}},
	}, ports[0])

	assert.Equal(t, uint16(8080), ports[1].Port)
	assert.Equal(t, int32(200), ports[1].Process.PID)
	assert.Equal(t, "/usr/bin/node", ports[1].Process.ExePath)
	assert.Equal(t, []string{}, ports[1].Process.Cmd)
	require.NotNil(t, ports[1].Project)
	assert.Equal(t, "React", ports[1].Project.ProjectType)

	assert.Equal(t, model.ProtocolUDP, ports[2].Protocol)
	assert.Equal(t, model.StatusListening, ports[2].Status)
	assert.Equal(t, []string{}, ports[2].Process.Cmd)
	assert.Equal(t, model.StatusEstablished, ports[3].Status)
}

func TestProcesses(t *testing.T) {
	raw := []any{
		map[string]any{"pid": 1.0, "name": "init", "cpu_usage": 150.0, "memory_usage": -5.0, "start_time": 1700000000.0},
		map[string]any{"name": "no pid"},
		map[string]any{
			"pid": "2", "name": "bash", "cpu_usage": "3.5", "memory_usage": 2048.0,
			"start_time_millis": 1700000000123.0, "cmd": []any{"bash", "-l"}, "status": "sleeping",
		},
	}

	procs := New(logger.Noop()).Processes(raw)
	require.Len(t, procs, 2)

	assert.Equal(t, int32(1), procs[0].PID)
	assert.Equal(t, 100.0, procs[0].CPUUsagePercent)
	assert.Zero(t, procs[0].MemoryUsageBytes)
	assert.Equal(t, int64(1700000000000), procs[0].StartTimeMillis)
	assert.Equal(t, "unknown", procs[0].Status)
	assert.Equal(t, []string{}, procs[0].Cmd)

	assert.Equal(t, model.ProcessRecord{
		PID:              2,
		Name:             "bash",
		Cmd:              []string{"bash", "-l"},
		CPUUsagePercent:  3.5,
		MemoryUsageBytes: 2048,
		Status:           "sleeping",
		StartTimeMillis:  1700000000123,
	}, procs[1])
}

func TestContainers(t *testing.T) {
	raw := []any{
		map[string]any{
			"ID":        "abcdef1234567890",
			"Names":     "web",
			"Image":     "nginx:1.25",
			"Status":    "Up 2 hours",
			"Ports":     "0.0.0.0:8080->80/tcp, :::8080->80/tcp, 443/tcp",
			"CreatedAt": "2024-01-01 10:00:00 +0000 UTC",
			"Labels":    "com.docker.compose.project=shop,tier=web",
			"Networks":  "bridge,shop_default",
			"Mounts":    "",
		},
		map[string]any{
			"id":       "0123456789abcdef",
			"name":     "/db",
			"image":    "postgres:16",
			"status":   "Exited (0) 3 hours ago",
			"ports":    []any{map[string]any{"container_port": 5432.0, "host_port": 5432.0, "protocol": "TCP"}},
			"labels":   map[string]any{"tier": "data"},
			"networks": []any{"shop_default"},
		},
		map[string]any{"image": "no-id"},
	}

	cs := New(logger.Noop()).Containers(raw)
	require.Len(t, cs, 2)

	web := cs[0]
	assert.Equal(t, "web", web.Name)
	assert.Equal(t, "running", web.State)
	assert.True(t, web.Running())
	assert.Equal(t, "abcdef123456", web.ShortID())
	assert.Equal(t, []model.ContainerPort{{ContainerPort: 80, HostPort: 8080, Protocol: "tcp"}}, web.Ports)
	assert.Equal(t, map[string]string{"com.docker.compose.project": "shop", "tier": "web"}, web.Labels)
	assert.Equal(t, []string{"bridge", "shop_default"}, web.Networks)
	assert.Equal(t, []string{}, web.Mounts)

	db := cs[1]
	assert.Equal(t, "db", db.Name)
	assert.Equal(t, "exited", db.State)
	assert.False(t, db.Running())
	assert.Equal(t, []model.ContainerPort{{ContainerPort: 5432, HostPort: 5432, Protocol: "tcp"}}, db.Ports)
	assert.Equal(t, map[string]string{"tier": "data"}, db.Labels)
	assert.Equal(t, []string{"shop_default"}, db.Networks)
	assert.Equal(t, []string{}, db.Mounts)
}

func TestParseDockerPorts(t *testing.T) {
	tests := []struct {
		in   string
		want []model.ContainerPort
	}{
		{"", []model.ContainerPort{}},
		{"80/tcp", []model.ContainerPort{}},
		{"0.0.0.0:5353->53/udp", []model.ContainerPort{{ContainerPort: 53, HostPort: 5353, Protocol: "udp"}}},
		{"[::]:9000->9000", []model.ContainerPort{{ContainerPort: 9000, HostPort: 9000, Protocol: "tcp"}}},
		{"0.0.0.0:x->80/tcp", []model.ContainerPort{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseDockerPorts(tt.in), tt.in)
	}
}

func TestRecords_NilInput(t *testing.T) {
	n := New(logger.Noop())
	assert.Empty(t, n.Ports(nil))
	assert.Empty(t, n.Processes(nil))
	assert.Empty(t, n.Containers(nil))
	assert.NotNil(t, n.Ports(nil))
}
