package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/sysdeck/internal/classify"
)

// Neon palette shared with the dashboard.
const (
	ColorNeonPink   lipgloss.Color = "#FF0055"
	ColorNeonCyan   lipgloss.Color = "#00E5FF"
	ColorNeonPurple lipgloss.Color = "#B967FF"
	ColorNeonGreen  lipgloss.Color = "#39FF14"
	ColorNeonOrange lipgloss.Color = "#FF7700"
	ColorNeonAmber  lipgloss.Color = "#FFCC00"
)

// Semantic colors for status indication
const (
	ColorSuccess = ColorNeonGreen
	ColorError   = ColorNeonPink
	ColorWarning = ColorNeonAmber
	ColorInfo    = ColorNeonCyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "#E6E6F0"
	ColorSecondary lipgloss.Color = "#8A8FB0"
	ColorMuted     lipgloss.Color = "#5A5F7A"
)

// GradientColors is the spinner color cycle.
var GradientColors = []lipgloss.Color{ColorNeonPink, ColorNeonPurple, ColorNeonCyan, ColorNeonGreen}

// DisableColors switches lipgloss to plain output for --no-color and
// NO_COLOR.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// SuccessStyle renders success text.
func SuccessStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorSuccess) }

// ErrorStyle renders error text.
func ErrorStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorError) }

// WarningStyle renders warning text.
func WarningStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorWarning) }

// InfoStyle renders informational text.
func InfoStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorInfo) }

// MutedStyle renders secondary text.
func MutedStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorMuted) }

// ThresholdColor maps a usage percent to its severity color.
func ThresholdColor(percent float64) lipgloss.Color {
	switch classify.TierFor(percent) {
	case classify.TierCritical:
		return ColorNeonPink
	case classify.TierHigh:
		return ColorNeonOrange
	case classify.TierElevated:
		return ColorNeonAmber
	default:
		return ColorNeonGreen
	}
}
