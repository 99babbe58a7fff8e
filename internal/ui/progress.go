package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Progress bar block characters.
const (
	progressFilled = '█'
	progressEmpty  = '░'
)

// RenderProgressBar draws a usage bar followed by the percentage:
//
//	[████████░░░░]  67%
//
// percent is clamped to 0-100 and the bar takes its severity color.
func RenderProgressBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	percent = min(max(percent, 0), 100)

	filled := int(percent / 100 * float64(width))
	bar := "[" + strings.Repeat(string(progressFilled), filled) +
		strings.Repeat(string(progressEmpty), width-filled) + "]"

	style := lipgloss.NewStyle().Foreground(ThresholdColor(percent))
	return style.Render(bar) + fmt.Sprintf(" %3.0f%%", percent)
}
