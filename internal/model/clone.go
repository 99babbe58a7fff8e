package model

import "slices"

// Clone returns a deep copy of the snapshot. The cache hands these out so
// that no consumer can observe another's edits.
func (s SystemSnapshot) Clone() SystemSnapshot {
	out := s
	out.Hardware.CPU.TemperatureC = cloneFloat(s.Hardware.CPU.TemperatureC)

	if s.Hardware.GPUs != nil {
		out.Hardware.GPUs = make([]GPUInfo, len(s.Hardware.GPUs))
		for i, g := range s.Hardware.GPUs {
			g.TemperatureC = cloneFloat(g.TemperatureC)
			out.Hardware.GPUs[i] = g
		}
	}

	if s.Network.Interfaces != nil {
		out.Network.Interfaces = make([]NetworkInterface, len(s.Network.Interfaces))
		for i, iface := range s.Network.Interfaces {
			iface.IPAddresses = slices.Clone(iface.IPAddresses)
			out.Network.Interfaces[i] = iface
		}
	}

	out.Disks = slices.Clone(s.Disks)
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
