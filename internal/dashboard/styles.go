package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sysdeck/internal/actions"
	"github.com/rileyhilliard/sysdeck/internal/classify"
)

// Dashboard color palette
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	// Severity tiers, nominal to critical
	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorElevated = lipgloss.Color("#FFCC00")
	ColorHigh     = lipgloss.Color("#FF7700")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent    = lipgloss.Color("#FF2E97")
	ColorAccentDim = lipgloss.Color("#BF40FF")
	ColorGraph     = lipgloss.Color("#00FFFF")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	TabStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	TabActiveStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			Underline(true).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1).
			MarginBottom(1)

	CardTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ColumnHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorTextSecondary).
				Bold(true)

	RowSelectedStyle = lipgloss.NewStyle().
				Foreground(ColorTextPrimary).
				Background(ColorBorder).
				Bold(true)

	SearchStyle = lipgloss.NewStyle().
			Foreground(ColorGraph)

	ConfirmStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorCritical).
			Padding(0, 1)

	OverlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(1, 2)
)

// TierColor returns the severity color for a usage percent.
func TierColor(percent float64) lipgloss.Color {
	switch classify.TierFor(percent) {
	case classify.TierCritical:
		return ColorCritical
	case classify.TierHigh:
		return ColorHigh
	case classify.TierElevated:
		return ColorElevated
	default:
		return ColorHealthy
	}
}

// TierStyle returns a style colored for a usage percent.
func TierStyle(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(TierColor(percent))
}

// ProgressBar renders a bracketless bar colored by severity.
func ProgressBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}
	percent = clampPercent(percent)
	filled := min(int(percent/100.0*float64(width)), width)

	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
	return TierStyle(percent).Render(bar)
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// NoticeStyle returns the style for a notification of kind.
func NoticeStyle(kind actions.NotificationKind) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch kind {
	case actions.NotifySuccess:
		return base.Foreground(ColorDarkBg).Background(ColorHealthy)
	case actions.NotifyError:
		return base.Foreground(ColorTextPrimary).Background(ColorCritical)
	default:
		return base.Foreground(ColorDarkBg).Background(ColorGraph)
	}
}

// noticeIcon prefixes a notification message.
func noticeIcon(kind actions.NotificationKind) string {
	switch kind {
	case actions.NotifySuccess:
		return "✓"
	case actions.NotifyError:
		return "✗"
	default:
		return "i"
	}
}
