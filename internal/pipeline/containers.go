package pipeline

import (
	"strings"

	"github.com/rileyhilliard/sysdeck/internal/model"
)

// ContainerQuery filters containers by name or image text and by state.
type ContainerQuery struct {
	Text  string
	State string
}

// Predicate builds the conjunction of the query's active filters.
func (q ContainerQuery) Predicate() Predicate[model.Container] {
	var preds []Predicate[model.Container]
	if text := strings.ToLower(strings.TrimSpace(q.Text)); text != "" {
		preds = append(preds, func(c model.Container) bool {
			return strings.Contains(strings.ToLower(c.Name), text) ||
				strings.Contains(strings.ToLower(c.Image), text)
		})
	}
	if state := strings.ToLower(q.State); state != "" && state != "all" {
		preds = append(preds, func(c model.Container) bool { return strings.EqualFold(c.State, state) })
	}
	return All(preds...)
}

// ByContainerName orders running containers first, then by name.
func ByContainerName(a, b model.Container) int {
	if ar, br := a.Running(), b.Running(); ar != br {
		if ar {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Name, b.Name)
}

// Containers filters and orders containers.
func Containers(items []model.Container, q ContainerQuery) []model.Container {
	return Apply(items, q.Predicate(), ByContainerName)
}
