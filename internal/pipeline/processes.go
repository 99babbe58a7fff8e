package pipeline

import (
	"cmp"
	"strings"

	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/model"
)

// SortKey selects the process column to order by.
type SortKey string

const (
	SortCPU    SortKey = "cpu"
	SortMemory SortKey = "memory"
	SortName   SortKey = "name"
)

// SortKeys lists the keys in the order the UI cycles through them.
var SortKeys = []SortKey{SortCPU, SortMemory, SortName}

// ParseSortKey validates a sort key name.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(s)); k {
	case SortCPU, SortMemory, SortName:
		return k, nil
	case "mem":
		return SortMemory, nil
	}
	return "", errors.New(errors.ErrConfig,
		"Unknown sort key: "+s,
		"Use one of: cpu, memory, name")
}

// SortState is the current process ordering.
type SortState struct {
	Key  SortKey
	Desc bool
}

// DefaultSort is heaviest CPU users first.
var DefaultSort = SortState{Key: SortCPU, Desc: true}

// Select returns the state after the user picks key: the same key flips
// direction, a different key starts descending.
func (s SortState) Select(key SortKey) SortState {
	if key == s.Key {
		return SortState{Key: key, Desc: !s.Desc}
	}
	return SortState{Key: key, Desc: true}
}

// Next cycles to the following key in SortKeys, starting descending.
func (s SortState) Next() SortState {
	for i, k := range SortKeys {
		if k == s.Key {
			return s.Select(SortKeys[(i+1)%len(SortKeys)])
		}
	}
	return DefaultSort
}

// Compare returns the comparator for the state.
func (s SortState) Compare() Compare[model.ProcessRecord] {
	var c Compare[model.ProcessRecord]
	switch s.Key {
	case SortMemory:
		c = func(a, b model.ProcessRecord) int { return cmp.Compare(a.MemoryUsageBytes, b.MemoryUsageBytes) }
	case SortName:
		c = func(a, b model.ProcessRecord) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	default:
		c = func(a, b model.ProcessRecord) int { return cmp.Compare(a.CPUUsagePercent, b.CPUUsagePercent) }
	}
	if s.Desc {
		return Reverse(c)
	}
	return c
}

// String renders the state for a column header, e.g. "cpu ↓".
func (s SortState) String() string {
	arrow := "↑"
	if s.Desc {
		arrow = "↓"
	}
	return string(s.Key) + " " + arrow
}

// ProcessQuery is the set of active process filters.
type ProcessQuery struct {
	// Text matches the process name, case-insensitively.
	Text string
	// Hide drops processes it returns true for, e.g. system-critical ones
	// when the user has turned them off.
	Hide Predicate[model.ProcessRecord]
}

// Predicate builds the conjunction of the query's active filters.
func (q ProcessQuery) Predicate() Predicate[model.ProcessRecord] {
	var preds []Predicate[model.ProcessRecord]
	if text := strings.ToLower(strings.TrimSpace(q.Text)); text != "" {
		preds = append(preds, func(p model.ProcessRecord) bool {
			return strings.Contains(strings.ToLower(p.Name), text)
		})
	}
	if q.Hide != nil {
		hide := q.Hide
		preds = append(preds, func(p model.ProcessRecord) bool { return !hide(p) })
	}
	return All(preds...)
}

// Processes filters and orders processes.
func Processes(items []model.ProcessRecord, q ProcessQuery, sort SortState) []model.ProcessRecord {
	return Apply(items, q.Predicate(), sort.Compare())
}
