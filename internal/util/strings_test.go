package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinOrNone(t *testing.T) {
	assert.Equal(t, "(none)", JoinOrNone(nil))
	assert.Equal(t, "(none)", JoinOrNone([]string{}))
	assert.Equal(t, "10.0.0.2", JoinOrNone([]string{"10.0.0.2"}))
	assert.Equal(t, "10.0.0.2, fe80::1", JoinOrNone([]string{"10.0.0.2", "fe80::1"}))
}

func TestJoinOrDefault(t *testing.T) {
	assert.Equal(t, "-", JoinOrDefault(nil, "-"))
	assert.Equal(t, "a, b", JoinOrDefault([]string{"a", "b"}, "-"))
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "container", Pluralize(1, "container", "containers"))
	assert.Equal(t, "containers", Pluralize(0, "container", "containers"))
	assert.Equal(t, "containers", Pluralize(3, "container", "containers"))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short enough", "node", 10, "node"},
		{"exact", "node", 4, "node"},
		{"cut", "react-scripts start", 8, "react-s…"},
		{"multibyte", "以太网适配器", 4, "以太网…"},
		{"one", "abc", 1, "…"},
		{"zero", "abc", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.max))
		})
	}
}
