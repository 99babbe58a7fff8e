// Package classify labels, deduplicates, and orders the resources in a
// snapshot, and buckets usage percents into severity tiers.
//
// Everything name-based is driven by a rule table (rules.yaml, embedded)
// so labels can be localized or extended without code changes. The engine
// never fails: anything it cannot place gets a generic label and a debug
// log line.
package classify

import (
	"cmp"
	"slices"
	"strings"

	"github.com/rileyhilliard/sysdeck/internal/logger"
	"github.com/rileyhilliard/sysdeck/internal/model"
)

// DefaultLocale selects the English labels.
const DefaultLocale = "en"

// Engine applies a rule table to snapshot data.
type Engine struct {
	rules    *Rules
	locale   string
	critical map[string]struct{}
	log      logger.Logger
}

// NewEngine creates an engine. A nil rules table means the embedded
// defaults.
func NewEngine(rules *Rules, locale string, log logger.Logger) *Engine {
	if rules == nil {
		rules = DefaultRules()
	}
	if locale == "" {
		locale = DefaultLocale
	}
	critical := make(map[string]struct{}, len(rules.CriticalProcesses))
	for _, name := range rules.CriticalProcesses {
		critical[strings.ToLower(name)] = struct{}{}
	}
	return &Engine{
		rules:    rules,
		locale:   locale,
		critical: critical,
		log:      logger.OrDefault(log),
	}
}

// Snapshot returns a copy of s with interfaces, disks, and GPUs classified.
func (e *Engine) Snapshot(s model.SystemSnapshot) model.SystemSnapshot {
	out := s.Clone()
	out.Network.Interfaces = e.Interfaces(out.Network.Interfaces)
	out.Disks = e.Disks(out.Disks)
	out.Hardware.GPUs = e.GPUs(out.Hardware.GPUs)
	return out
}

// Interfaces repairs display names, assigns categories, drops duplicates
// (first seen wins), and sorts for presentation.
func (e *Engine) Interfaces(in []model.NetworkInterface) []model.NetworkInterface {
	seen := make(map[string]struct{}, len(in))
	out := make([]model.NetworkInterface, 0, len(in))

	for _, iface := range in {
		iface = e.RepairInterface(iface)
		key := dedupKey(iface)
		if _, dup := seen[key]; dup {
			e.log.Debug("dropping duplicate interface %q (%s)", iface.Name, key)
			continue
		}
		seen[key] = struct{}{}
		out = append(out, iface)
	}

	slices.SortStableFunc(out, func(a, b model.NetworkInterface) int {
		if c := cmp.Compare(e.rank(a.Category), e.rank(b.Category)); c != 0 {
			return c
		}
		if ha, hb := len(a.IPAddresses) > 0, len(b.IPAddresses) > 0; ha != hb {
			if ha {
				return -1
			}
			return 1
		}
		return strings.Compare(a.DisplayName, b.DisplayName)
	})
	return out
}

// RepairInterface sets the category and, when the display name is missing,
// garbled, or just the raw name, replaces it with a rule label.
func (e *Engine) RepairInterface(iface model.NetworkInterface) model.NetworkInterface {
	iface.IPAddresses = slices.Clone(iface.IPAddresses)
	rule, ok := e.matchInterface(iface)

	switch {
	case ok:
		iface.Category = rule.Category
	case iface.IsLoopback:
		iface.Category = model.CategoryLoopback
	default:
		iface.Category = model.CategoryOther
	}

	if !e.needsRepair(iface) {
		return iface
	}
	if ok {
		iface.DisplayName = rule.label(e.locale)
		return iface
	}

	format := e.rules.Interfaces.Fallback
	if l, found := e.rules.Interfaces.FallbackLabels[e.locale]; found && l != "" {
		format = l
	}
	e.log.Debug("no interface rule matched %q, using generic label", iface.Name)
	iface.DisplayName = strings.ReplaceAll(format, "%s", iface.Name)
	return iface
}

func (e *Engine) matchInterface(iface model.NetworkInterface) (InterfaceRule, bool) {
	name := strings.ToLower(iface.Name)
	display := strings.ToLower(iface.DisplayName)
	for _, r := range e.rules.Interfaces.Rules {
		if r.matches(name, display) {
			return r, true
		}
	}
	return InterfaceRule{}, false
}

func (e *Engine) needsRepair(iface model.NetworkInterface) bool {
	if iface.DisplayName == "" || iface.DisplayName == iface.Name {
		return true
	}
	for _, m := range e.rules.Interfaces.Mojibake {
		if strings.Contains(iface.DisplayName, m) {
			return true
		}
	}
	return false
}

func (e *Engine) rank(c model.InterfaceCategory) int {
	if r, ok := e.rules.Interfaces.Ranks[c]; ok {
		return r
	}
	if r, ok := e.rules.Interfaces.Ranks[model.CategoryOther]; ok {
		return r
	}
	return 10
}

func dedupKey(iface model.NetworkInterface) string {
	ips := slices.Clone(iface.IPAddresses)
	slices.Sort(ips)
	ips = slices.Compact(ips)
	return iface.DisplayName + "|" + strings.Join(ips, ",")
}

// Disks flags volumes that are nearly full.
func (e *Engine) Disks(in []model.DiskInfo) []model.DiskInfo {
	out := make([]model.DiskInfo, len(in))
	for i, d := range in {
		d.LowSpace = LowSpace(d.UsagePercent)
		out[i] = d
	}
	return out
}

// GPUs drops pseudo adapters and assigns vendors.
func (e *Engine) GPUs(in []model.GPUInfo) []model.GPUInfo {
	out := make([]model.GPUInfo, 0, len(in))
	for _, g := range in {
		name := strings.ToLower(g.Name)
		if containsAny(name, e.rules.GPUs.Skip) {
			e.log.Debug("skipping pseudo GPU %q", g.Name)
			continue
		}
		g.Vendor = model.VendorOther
		for _, v := range e.rules.GPUs.Vendors {
			if containsAny(name, v.Contains) {
				g.Vendor = v.Vendor
				break
			}
		}
		out = append(out, g)
	}
	return out
}

// Ports attaches project info to records that don't already carry it.
func (e *Engine) Ports(in []model.PortRecord) []model.PortRecord {
	out := make([]model.PortRecord, len(in))
	for i, p := range in {
		if p.Project == nil {
			p.Project = e.DetectProject(p.Process, p.Port)
		}
		out[i] = p
	}
	return out
}

// IsCritical reports whether terminating a process by this name needs
// explicit confirmation.
func (e *Engine) IsCritical(name string) bool {
	_, ok := e.critical[strings.ToLower(name)]
	return ok
}
