package pipeline

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/model"
)

// PortCategory groups ports by the project that owns them.
type PortCategory string

const (
	CategoryAll         PortCategory = "all"
	CategoryDevelopment PortCategory = "development"
	CategoryDocker      PortCategory = "docker"
	CategorySystem      PortCategory = "system"
)

// PortCategories lists the categories in display order.
var PortCategories = []PortCategory{CategoryAll, CategoryDevelopment, CategoryDocker, CategorySystem}

// developmentTypes are the project types the development category covers.
var developmentTypes = []string{"React", "Vue", "Node.js"}

// ParsePortCategory validates a category name. Empty means all.
func ParsePortCategory(s string) (PortCategory, error) {
	if s == "" {
		return CategoryAll, nil
	}
	c := PortCategory(strings.ToLower(s))
	if !slices.Contains(PortCategories, c) {
		return "", errors.New(errors.ErrConfig,
			"Unknown port category: "+s,
			"Use one of: all, development, docker, system")
	}
	return c, nil
}

// PortQuery is the set of active port filters. Zero fields don't filter.
type PortQuery struct {
	Text     string
	Category PortCategory
	Status   model.PortStatus
}

// Predicate builds the conjunction of the query's active filters.
func (q PortQuery) Predicate() Predicate[model.PortRecord] {
	var preds []Predicate[model.PortRecord]
	if text := strings.ToLower(strings.TrimSpace(q.Text)); text != "" {
		preds = append(preds, portText(text))
	}
	if q.Category != "" && q.Category != CategoryAll {
		preds = append(preds, portCategory(q.Category))
	}
	if q.Status != "" {
		status := q.Status
		preds = append(preds, func(p model.PortRecord) bool { return p.Status == status })
	}
	return All(preds...)
}

func portText(text string) Predicate[model.PortRecord] {
	return func(p model.PortRecord) bool {
		if strings.Contains(strconv.Itoa(int(p.Port)), text) {
			return true
		}
		if strings.Contains(strings.ToLower(p.Process.Name), text) {
			return true
		}
		return p.Project != nil && strings.Contains(strings.ToLower(p.Project.Name), text)
	}
}

func portCategory(c PortCategory) Predicate[model.PortRecord] {
	return func(p model.PortRecord) bool {
		switch c {
		case CategoryDevelopment:
			return p.Project != nil && slices.Contains(developmentTypes, p.Project.ProjectType)
		case CategoryDocker:
			return p.Project != nil && p.Project.ProjectType == "Docker"
		case CategorySystem:
			return p.Project == nil
		default:
			return true
		}
	}
}

// ByPort orders ports numerically, TCP before UDP on ties.
func ByPort(a, b model.PortRecord) int {
	if c := cmp.Compare(a.Port, b.Port); c != 0 {
		return c
	}
	return cmp.Compare(a.Protocol, b.Protocol)
}

// Ports filters ports by q and orders them by port number.
func Ports(items []model.PortRecord, q PortQuery) []model.PortRecord {
	return Apply(items, q.Predicate(), ByPort)
}
