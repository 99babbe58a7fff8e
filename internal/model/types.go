// Package model holds the canonical domain types every sysdeck view reads.
//
// Values of these types are snapshots. A refresh builds new values and
// replaces the old ones wholesale; nothing here is mutated in place after it
// leaves the normalizer. Units are fixed: bytes, hertz, bits per second, and
// percents in [0,100].
package model

import "time"

// SystemSnapshot is a fully populated point-in-time read of the host.
type SystemSnapshot struct {
	OS        OSInfo       `json:"os"`
	Hardware  HardwareInfo `json:"hardware"`
	Network   NetworkInfo  `json:"network"`
	Disks     []DiskInfo   `json:"disks"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// OSInfo describes the operating system.
type OSInfo struct {
	Name     string        `json:"name"`
	Version  string        `json:"version"`
	Build    string        `json:"build"`
	Arch     string        `json:"arch"`
	Hostname string        `json:"hostname"`
	Uptime   time.Duration `json:"uptime"`
}

// HardwareInfo groups CPU, memory, and GPU state.
type HardwareInfo struct {
	CPU    CPUInfo    `json:"cpu"`
	Memory MemoryInfo `json:"memory"`
	GPUs   []GPUInfo  `json:"gpus"`
}

// CPUInfo contains processor details and load.
type CPUInfo struct {
	Brand        string   `json:"brand"`
	Cores        int      `json:"cores"`
	FrequencyHz  uint64   `json:"frequency_hz"`
	UsagePercent float64  `json:"usage_percent"`
	TemperatureC *float64 `json:"temperature_c,omitempty"`
}

// MemoryInfo contains physical memory usage.
type MemoryInfo struct {
	TotalBytes     uint64  `json:"total_bytes"`
	UsedBytes      uint64  `json:"used_bytes"`
	AvailableBytes uint64  `json:"available_bytes"`
	UsagePercent   float64 `json:"usage_percent"`
}

// GPUVendor identifies a GPU manufacturer.
type GPUVendor string

const (
	VendorNVIDIA GPUVendor = "nvidia"
	VendorAMD    GPUVendor = "amd"
	VendorIntel  GPUVendor = "intel"
	VendorOther  GPUVendor = "other"
)

// GPUInfo contains a single adapter's state.
type GPUInfo struct {
	Name             string    `json:"name"`
	Vendor           GPUVendor `json:"vendor"`
	MemoryTotalBytes uint64    `json:"memory_total_bytes"`
	MemoryUsedBytes  uint64    `json:"memory_used_bytes"`
	UsagePercent     float64   `json:"usage_percent"`
	TemperatureC     *float64  `json:"temperature_c,omitempty"`
}

// NetworkInfo holds interfaces and the count of active connections.
type NetworkInfo struct {
	Interfaces        []NetworkInterface `json:"interfaces"`
	ActiveConnections int                `json:"active_connections"`
}

// InterfaceCategory is the label family an interface was classified into.
type InterfaceCategory string

const (
	CategoryWiFi     InterfaceCategory = "wifi"
	CategoryEthernet InterfaceCategory = "ethernet"
	CategoryDocker   InterfaceCategory = "docker"
	CategoryWSL      InterfaceCategory = "wsl"
	CategoryVirtual  InterfaceCategory = "virtual"
	CategoryVPN      InterfaceCategory = "vpn"
	CategoryLoopback InterfaceCategory = "loopback"
	CategoryOther    InterfaceCategory = "other"
)

// NetworkInterface is one logical network adapter.
type NetworkInterface struct {
	Name          string            `json:"name"`
	DisplayName   string            `json:"display_name"`
	MACAddress    string            `json:"mac_address"`
	IPAddresses   []string          `json:"ip_addresses"`
	IsUp          bool              `json:"is_up"`
	IsLoopback    bool              `json:"is_loopback"`
	SpeedBps      uint64            `json:"speed_bps"`
	BytesSent     uint64            `json:"bytes_sent"`
	BytesReceived uint64            `json:"bytes_received"`
	Category      InterfaceCategory `json:"category"`
}

// DiskInfo is one mounted volume.
type DiskInfo struct {
	Name           string  `json:"name"`
	MountPoint     string  `json:"mount_point"`
	FileSystem     string  `json:"file_system"`
	TotalSpace     uint64  `json:"total_space"`
	UsedSpace      uint64  `json:"used_space"`
	AvailableSpace uint64  `json:"available_space"`
	UsagePercent   float64 `json:"usage_percent"`
	IsRemovable    bool    `json:"is_removable"`
	LowSpace       bool    `json:"low_space"`
}
