package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotClone_IsDeep(t *testing.T) {
	temp := 55.0
	orig := SystemSnapshot{
		Hardware: HardwareInfo{
			CPU:  CPUInfo{Brand: "Ryzen", TemperatureC: &temp},
			GPUs: []GPUInfo{{Name: "RTX 4070", TemperatureC: &temp}},
		},
		Network: NetworkInfo{
			Interfaces: []NetworkInterface{{Name: "eth0", IPAddresses: []string{"10.0.0.2"}}},
		},
		Disks: []DiskInfo{{Name: "/dev/sda1", UsagePercent: 40}},
	}

	clone := orig.Clone()
	require.Equal(t, orig, clone)

	*clone.Hardware.CPU.TemperatureC = 99
	clone.Hardware.GPUs[0].Name = "changed"
	clone.Network.Interfaces[0].IPAddresses[0] = "192.168.1.1"
	clone.Disks[0].UsagePercent = 99

	assert.Equal(t, 55.0, *orig.Hardware.CPU.TemperatureC)
	assert.Equal(t, "RTX 4070", orig.Hardware.GPUs[0].Name)
	assert.Equal(t, "10.0.0.2", orig.Network.Interfaces[0].IPAddresses[0])
	assert.Equal(t, 40.0, orig.Disks[0].UsagePercent)
}

func TestSnapshotClone_Empty(t *testing.T) {
	var s SystemSnapshot
	assert.Equal(t, s, s.Clone())
}

func TestPortRecordKey(t *testing.T) {
	p := PortRecord{Port: 8080, Protocol: ProtocolTCP}
	assert.Equal(t, "TCP/8080", p.Key())
}

func TestContainerHelpers(t *testing.T) {
	c := Container{ID: "0123456789abcdef", State: "Running"}
	assert.True(t, c.Running())
	assert.Equal(t, "0123456789ab", c.ShortID())

	short := Container{ID: "abc", State: "exited"}
	assert.False(t, short.Running())
	assert.Equal(t, "abc", short.ShortID())
}

func TestProcessCommandLine(t *testing.T) {
	p := ProcessRecord{Cmd: []string{"node", "server.js", "--port", "3000"}}
	assert.Equal(t, "node server.js --port 3000", p.CommandLine())
}
