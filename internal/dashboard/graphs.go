package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparklineBlocks are the eight vertical levels, lowest first.
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders percent samples as one row of block characters on a
// fixed 0-100 scale, colored by the severity of the newest sample. Short
// series are right-aligned so the graph grows from the right edge.
func Sparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	points := data
	if len(data) > width {
		points = resample(data, width)
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", width-len(points)))
	top := len(sparklineBlocks) - 1
	for _, v := range points {
		idx := int(clampPercent(v) / 100 * float64(top))
		b.WriteRune(sparklineBlocks[idx])
	}

	return lipgloss.NewStyle().Foreground(TierColor(data[len(data)-1])).Render(b.String())
}

// resample shrinks data to size points, keeping the peak of each bucket so
// short spikes stay visible.
func resample(data []float64, size int) []float64 {
	if size <= 0 || len(data) == 0 {
		return nil
	}
	if len(data) <= size {
		return data
	}

	out := make([]float64, size)
	bucket := float64(len(data)) / float64(size)
	for i := range out {
		start := int(float64(i) * bucket)
		end := min(int(float64(i+1)*bucket), len(data))
		if start >= end {
			start = end - 1
		}
		peak := data[start]
		for _, v := range data[start+1 : end] {
			peak = max(peak, v)
		}
		out[i] = peak
	}
	return out
}
